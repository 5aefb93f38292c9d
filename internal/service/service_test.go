package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Lightwood13/msc/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const declarations = `@namespace __default__
@class Player
# Display name
String name
Int level()
Player[] friends
@endclass
@class Block
@endclass
@class String
@endclass
@class Int
@endclass
@endnamespace
@namespace util
# Builds a pair
Pair makePair(Int a, Int b)
@class Pair
Pair(Int left, Int right)
Int left
Int sum()
Int sum(Int extra)
@endclass
@endnamespace
`

func newService(t *testing.T) *Service {
	t.Helper()
	s := New(DefaultOptions())
	require.NoError(t, s.LoadDeclarationFile("lib/util.nms", declarations))
	return s
}

func at(line, col int) types.Position {
	return types.Position{Line: line, Character: col}
}

func labels(items []types.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestCompletions_UnknownDocument(t *testing.T) {
	s := newService(t)
	items := s.GetCompletions("missing", at(0, 0))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCompletions_CommandsAndKeywords(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@bypass /\n@de\nde\n")

	assert.Equal(t, []string{"setblock", "give"}, labels(s.GetCompletions("doc", at(0, 9))))

	withoutAt := s.GetCompletions("doc", at(1, 3))
	require.NotEmpty(t, withoutAt)
	assert.Equal(t, "if (${1:condition})\n\t$2\n@fi", withoutAt[0].InsertText)

	withAt := s.GetCompletions("doc", at(2, 2))
	require.NotEmpty(t, withAt)
	assert.Equal(t, "@if (${1:condition})\n\t$2\n@fi", withAt[0].InsertText)
}

func TestCompletions_NamespaceAccess(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@var x = util::\n@var y = nope::")

	assert.Equal(t, []string{"makePair", "Pair", "Pair[]"}, labels(s.GetCompletions("doc", at(0, 15))))
	assert.Empty(t, s.GetCompletions("doc", at(1, 15)))
}

func TestCompletions_IdentifierStart(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@define Int count = 1\n@using util\n@var x = ")

	items := s.GetCompletions("doc", at(2, 9))
	assert.Equal(t, []string{
		"block", "count", "player",
		"makePair", "Pair", "Pair[]",
		"util",
		"Player", "Player[]", "Block", "Block[]", "String", "String[]", "Int", "Int[]",
	}, labels(items))

	assert.Equal(t, types.CompletionVariable, items[1].Kind)
	assert.Equal(t, "Int count", items[1].Detail)

	module := items[6]
	assert.Equal(t, types.CompletionModule, module.Kind)
	assert.Equal(t, "util::", module.InsertText)
	assert.Equal(t, types.CommandTriggerSuggest, module.TriggerCommand)
}

func TestCompletions_SkipsDeclarationOnItsOwnLine(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@define Int count = ")

	assert.NotContains(t, labels(s.GetCompletions("doc", at(0, 20))), "count")
}

func TestCompletions_MemberAccess(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@var n = player.\n@var n = player.friends[0].\n@var n = nobody.")

	assert.Equal(t, []string{"name", "level", "friends"}, labels(s.GetCompletions("doc", at(0, 16))))
	assert.Equal(t, []string{"name", "level", "friends"}, labels(s.GetCompletions("doc", at(1, 27))))
	assert.Empty(t, s.GetCompletions("doc", at(2, 16)))
}

func TestHover(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@using util\n@var p = util::makePair(1, 2)\n@var n = player.name")

	t.Run("field with documentation", func(t *testing.T) {
		hover, ok := s.GetHover("doc", at(2, 17))
		require.True(t, ok)
		assert.Equal(t, types.Hover{Type: "String", QualifiedName: "Player.name", Documentation: "Display name"}, hover)
	})

	t.Run("variable", func(t *testing.T) {
		hover, ok := s.GetHover("doc", at(2, 10))
		require.True(t, ok)
		assert.Equal(t, "Player", hover.Type)
		assert.Equal(t, "player", hover.QualifiedName)
		assert.Empty(t, hover.Documentation)
	})

	t.Run("namespace function", func(t *testing.T) {
		hover, ok := s.GetHover("doc", at(1, 15))
		require.True(t, ok)
		assert.Equal(t, "util::Pair", hover.Type)
		assert.Equal(t, "util::makePair()", hover.QualifiedName)
		assert.Equal(t, "Builds a pair", hover.Documentation)
	})

	t.Run("namespace qualifier", func(t *testing.T) {
		_, ok := s.GetHover("doc", at(1, 10))
		assert.False(t, ok)
	})

	t.Run("whitespace", func(t *testing.T) {
		_, ok := s.GetHover("doc", at(1, 4))
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok := s.GetHover("doc", at(9, 0))
		assert.False(t, ok)
	})
}

func TestSignatureHelp(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@using util\n"+
		"@var p = util::makePair(1, \n"+
		"@define Pair q = Pair(1, \n"+
		"@var n = q.sum(\n"+
		"@var x = nothing(")

	t.Run("namespace function", func(t *testing.T) {
		help := s.GetSignatureHelp("doc", at(1, 27))
		require.Len(t, help.Signatures, 1)
		assert.Equal(t, "Pair util::makePair(Int a, Int b)", help.Signatures[0].Label)
		assert.Equal(t, "Builds a pair", help.Signatures[0].Documentation)
		assert.Equal(t, []string{"Int a", "Int b"}, help.Signatures[0].Parameters)
		assert.Equal(t, 1, help.ActiveParameter)
		assert.Equal(t, 0, help.ActiveSignature)
	})

	t.Run("constructor through active namespace", func(t *testing.T) {
		help := s.GetSignatureHelp("doc", at(2, 25))
		require.Len(t, help.Signatures, 1)
		assert.Equal(t, "Pair(Int left, Int right)", help.Signatures[0].Label)
		assert.Equal(t, 1, help.ActiveParameter)
	})

	t.Run("method overloads", func(t *testing.T) {
		help := s.GetSignatureHelp("doc", at(3, 15))
		require.Len(t, help.Signatures, 2)
		assert.Equal(t, "Int util::Pair.sum()", help.Signatures[0].Label)
		assert.Equal(t, "Int util::Pair.sum(Int extra)", help.Signatures[1].Label)
		assert.Equal(t, 0, help.ActiveParameter)
	})

	t.Run("unresolved", func(t *testing.T) {
		help := s.GetSignatureHelp("doc", at(4, 17))
		assert.NotNil(t, help.Signatures)
		assert.Empty(t, help.Signatures)
	})
}

func TestSignaturesOf(t *testing.T) {
	s := newService(t)
	snap := s.Catalog().Snapshot()

	sigs, final := signaturesOf(snap, "Pair()")
	assert.Nil(t, sigs)
	assert.False(t, final)

	sigs, final = signaturesOf(snap, "util::Pair()")
	assert.True(t, final)
	assert.Len(t, sigs, 1)

	sigs, final = signaturesOf(snap, "nope::thing()")
	assert.Nil(t, sigs)
	assert.True(t, final)

	sigs, final = signaturesOf(snap, "Player.level()")
	assert.True(t, final)
	require.Len(t, sigs, 1)
	assert.Equal(t, "Int Player.level()", sigs[0].Label)
	assert.Empty(t, sigs[0].Parameters)
}

func TestDiagnostics(t *testing.T) {
	s := newService(t)

	diags := s.OpenOrUpdateDocument("doc", "@if x\n@done")
	require.Len(t, diags, 1)
	assert.Equal(t, "Mismatched @done: expected @fi", diags[0].Message)
	assert.Equal(t, diags, s.GetDiagnostics("doc"))

	assert.Empty(t, s.OpenOrUpdateDocument("doc", "@if x\n@fi"))
	assert.Empty(t, s.GetDiagnostics("doc"))

	s.CloseDocument("doc")
	assert.Empty(t, s.GetDiagnostics("doc"))
	assert.NotContains(t, s.Documents(), "doc")

	quiet := New(Options{DisableDiagnostics: true})
	assert.Empty(t, quiet.OpenOrUpdateDocument("doc", "@fi"))
}

func TestDocuments(t *testing.T) {
	s := New(DefaultOptions())
	s.OpenOrUpdateDocument("b", "")
	s.OpenOrUpdateDocument("a", "@player hi")

	s.OpenOrUpdateDocument("a", "@player bye")
	assert.Equal(t, []string{"a", "b"}, s.Documents())

	s.CloseDocument("b")
	assert.Equal(t, []string{"a"}, s.Documents())
}

func TestDeclarationLifecycle(t *testing.T) {
	s := New(DefaultOptions())
	s.OpenOrUpdateDocument("doc", "@var x = util::\n@var y = base::")
	utilAt, baseAt := at(0, 15), at(1, 15)

	err := s.LoadDeclarationFile("a.nms", "@namespace util\nInt one()\n@class Broken\n@endnamespace\n")
	require.Error(t, err)
	assert.Equal(t, []string{"one"}, labels(s.GetCompletions("doc", utilAt)))

	require.NoError(t, s.LoadDefaultDeclarations("@namespace base\nInt two()\n@endnamespace\n"))
	assert.Equal(t, []string{"two"}, labels(s.GetCompletions("doc", baseAt)))

	assert.True(t, s.RemoveDeclarationFile("a.nms"))
	assert.False(t, s.RemoveDeclarationFile("a.nms"))
	assert.Empty(t, s.GetCompletions("doc", utilAt))

	require.NoError(t, s.ReplaceWorkspace(map[string]string{
		"b.nms": "@namespace util\nInt three()\n@endnamespace\n",
	}))
	assert.Equal(t, []string{"three"}, labels(s.GetCompletions("doc", utilAt)))
	assert.Equal(t, []string{"two"}, labels(s.GetCompletions("doc", baseAt)))
}

func TestConcurrentRequests(t *testing.T) {
	s := newService(t)
	s.OpenOrUpdateDocument("doc", "@var n = player.")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.OpenOrUpdateDocument(fmt.Sprintf("doc-%d", i), "@if x\n@fi")
				_ = s.LoadDeclarationFile(fmt.Sprintf("extra-%d.nms", i), declarations)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				items := s.GetCompletions("doc", at(0, 16))
				assert.Len(t, items, 3)
			}
		}()
	}
	wg.Wait()
}
