package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lightwood13/msc/internal/types"
)

func utilTable() *types.MemberTable {
	return &types.MemberTable{
		Members: map[string]*types.Member{
			"makePair()": {Key: "makePair()", Kind: types.MemberFunction, ReturnType: "util::Pair", Documentation: "Builds a pair\nfrom two ints"},
			"count":      {Key: "count", Kind: types.MemberField, ReturnType: "Int"},
		},
		Signatures: map[string][]*types.Signature{
			"makePair()": {
				{Label: "util::Pair makePair(Int a, Int b)", Documentation: "Builds a pair\nfrom two ints"},
				{Label: "util::Pair makePair()"},
			},
		},
	}
}

func TestTableTree(t *testing.T) {
	tree := TableTree("namespace util", utilTable())
	assert.Equal(t, "namespace util", tree.Name)
	if assert.Len(t, tree.Children, 3) {
		assert.Equal(t, "Int count", tree.Children[0].Name)
		assert.Equal(t, "util::Pair makePair(Int a, Int b)", tree.Children[1].Name)
		assert.Equal(t, "Builds a pair", tree.Children[1].Detail)
		assert.Equal(t, "util::Pair makePair()", tree.Children[2].Name)
	}

	assert.Empty(t, TableTree("class Empty", nil).Children)
}

func TestTreeFormatter_Format(t *testing.T) {
	root := &TreeNode{
		Name: "catalog",
		Children: []*TreeNode{
			{Name: "namespace util", Children: []*TreeNode{{Name: "Int count"}}},
			{Name: "class Player", Children: []*TreeNode{{Name: "String name", Detail: "Display name"}}},
		},
	}

	t.Run("plain", func(t *testing.T) {
		out := NewTreeFormatter(FormatterOptions{}).Format(root)
		want := "catalog\n" +
			"├─ namespace util\n" +
			"│  └─ Int count\n" +
			"└─ class Player\n" +
			"   └─ String name\n"
		assert.Equal(t, want, out)
	})

	t.Run("docs", func(t *testing.T) {
		out := NewTreeFormatter(FormatterOptions{ShowDocs: true}).Format(root)
		assert.Contains(t, out, "└─ String name - Display name\n")
	})

	t.Run("max depth", func(t *testing.T) {
		out := NewTreeFormatter(FormatterOptions{MaxDepth: 1}).Format(root)
		assert.Equal(t, "catalog\n├─ namespace util\n└─ class Player\n", out)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, NewTreeFormatter(FormatterOptions{}).Format(nil))
	})
}
