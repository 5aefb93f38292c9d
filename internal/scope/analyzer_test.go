package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lightwood13/msc/internal/types"
)

func lookupType(t *testing.T, view *types.DocumentView, name string, line int) string {
	t.Helper()
	v, ok := view.Lookup(name, line)
	if !ok {
		return ""
	}
	return v.Type
}

func TestAnalyze_Builtins(t *testing.T) {
	view := Analyze("")
	assert.Equal(t, "Player", lookupType(t, view, "player", 0))
	assert.Equal(t, "Block", lookupType(t, view, "block", 0))
}

func TestAnalyze_ParamComment(t *testing.T) {
	view := Analyze("# (Int amount, util::Pair pair)\n@player {{amount}}")
	assert.Equal(t, "Int", lookupType(t, view, "amount", 1))
	assert.Equal(t, "util::Pair", lookupType(t, view, "pair", 0))
}

func TestAnalyze_SiblingBranchesDoNotOverlap(t *testing.T) {
	text := `@if cond
@define Int x = 1
@elseif other
@define String x = "a"
@else
@define Double x = 2
@fi
@player done`
	view := Analyze(text)

	xs := view.Variables["x"]
	require.Len(t, xs, 3)
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			a, b := xs[i], xs[j]
			overlap := a.DeclaredAtLine < b.UndeclaredAtLine && b.DeclaredAtLine < a.UndeclaredAtLine
			assert.False(t, overlap, "%+v overlaps %+v", a, b)
		}
	}

	assert.Equal(t, "Int", lookupType(t, view, "x", 1))
	assert.Equal(t, "String", lookupType(t, view, "x", 3))
	assert.Equal(t, "Double", lookupType(t, view, "x", 5))
	assert.Equal(t, "", lookupType(t, view, "x", 6), "closed at @fi")
	assert.Equal(t, "", lookupType(t, view, "x", 7))
}

func TestAnalyze_NestedShadowing(t *testing.T) {
	text := `@define Int n = 0
@for Player n in players
@if x
@define Block n
@player a
@fi
@player b
@done
@player c`
	view := Analyze(text)

	assert.Equal(t, "Int", lookupType(t, view, "n", 0))
	assert.Equal(t, "Player", lookupType(t, view, "n", 2))
	assert.Equal(t, "Block", lookupType(t, view, "n", 4))
	assert.Equal(t, "Player", lookupType(t, view, "n", 6))
	assert.Equal(t, "Int", lookupType(t, view, "n", 8))
}

func TestAnalyze_DefineForms(t *testing.T) {
	view := Analyze("@define Int a=\n@define Int b=5\n@define int bad = 1\n@define Int Bad = 1\n@define Int")
	assert.Equal(t, "Int", lookupType(t, view, "a", 1))
	assert.Equal(t, "Int", lookupType(t, view, "b", 2))
	assert.Empty(t, view.Variables["bad"])
	assert.Empty(t, view.Variables["Bad"])
}

func TestAnalyze_OnlyDefineDeclares(t *testing.T) {
	view := Analyze("@var x = 1\n@define Int y = 2\n@player done")
	assert.Empty(t, view.Variables["x"])
	assert.Equal(t, "Int", lookupType(t, view, "y", 2))
}

func TestAnalyze_ForWithoutVariableStillOpensBlock(t *testing.T) {
	text := "@if a\n@for x\n@define Int v\n@done\n@player here\n@fi"
	view := Analyze(text)
	assert.Equal(t, "", lookupType(t, view, "v", 4), "v belonged to the @for frame")
}

func TestAnalyze_StrayClosersAreSkipped(t *testing.T) {
	view := Analyze("@fi\n@done\n@define Int after")
	assert.Equal(t, "Int", lookupType(t, view, "after", 3))
}

func TestAnalyze_UnclosedBlockKeepsVariables(t *testing.T) {
	view := Analyze("@if x\n@define Int typing\n@player ")
	assert.Equal(t, "Int", lookupType(t, view, "typing", 2))
}

func TestAnalyze_Usings(t *testing.T) {
	view := Analyze("@using util\n@player x\n@using text\n@using a b\n")
	require.Len(t, view.Usings, 2)
	assert.Equal(t, types.UsingMark{AtLine: 0, Namespace: "util"}, view.Usings[0])
	assert.Equal(t, types.UsingMark{AtLine: 2, Namespace: "text"}, view.Usings[1])
}

func TestActiveNamespace(t *testing.T) {
	usings := []types.UsingMark{{AtLine: 2, Namespace: "b"}, {AtLine: 0, Namespace: "a"}}

	_, ok := ActiveNamespace(usings, 0)
	assert.False(t, ok, "the directive line itself is not covered")

	ns, ok := ActiveNamespace(usings, 1)
	assert.True(t, ok)
	assert.Equal(t, "a", ns)

	ns, _ = ActiveNamespace(usings, 2)
	assert.Equal(t, "a", ns)

	ns, _ = ActiveNamespace(usings, 10)
	assert.Equal(t, "b", ns)

	_, ok = ActiveNamespace(nil, 5)
	assert.False(t, ok)
}
