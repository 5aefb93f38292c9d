package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/scope"
)

const declarations = `@namespace __default__
@class Player
String name
Location location
Int level()
Player[] friends
@endclass
@class Block
@endclass
@class Location
Double x
Location add(Double dx, Double dy)
@endclass
@class Foo
Bar baz
@endclass
@class Bar
@endclass
@class String
@endclass
@class Int
@endclass
@class Double
@endclass
@endnamespace
@namespace util
Pair makePair(Int a, Int b)
Int count
@class Pair
Pair(Int left, Int right)
Int left
@endclass
@endnamespace
`

func newContext(t *testing.T, script string, line int) Context {
	t.Helper()
	store := catalog.NewStore()
	_, err := store.LoadFile("decl.nms", declarations)
	require.NoError(t, err)

	view := scope.Analyze(script)
	ns, _ := scope.ActiveNamespace(view.Usings, line)
	return Context{Catalog: store.Snapshot(), View: view, ActiveNamespace: ns, Line: line}
}

func resolveLine(c Context, line string) (Result, bool) {
	return c.Resolve(ScanChainBackward(line, len(line)))
}

func TestResolve_RoundTrip(t *testing.T) {
	c := newContext(t, "@define Foo f\n@player x\n", 2)
	res, ok := resolveLine(c, "@var y = f.baz.")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "Foo.baz", Type: "Bar"}, res)
}

func TestResolve_Builtins(t *testing.T) {
	c := newContext(t, "", 0)

	res, ok := resolveLine(c, "@var l = player.location.")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "Player.location", Type: "Location"}, res)

	res, ok = resolveLine(c, "@var l = player.location.add(1, 2).")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "Location.add()", Type: "Location"}, res)

	res, ok = resolveLine(c, "@var f = player.friends[0].")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "Player[]", Type: "Player"}, res)

	res, ok = resolveLine(c, "@var f = player.friends.")
	require.True(t, ok)
	assert.Equal(t, "Player[]", res.Type)
}

func TestResolve_Constructors(t *testing.T) {
	c := newContext(t, "", 0)

	res, ok := resolveLine(c, "@var l = Location(1, 2).")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "Location()", Type: "Location"}, res)

	res, ok = resolveLine(c, "@var p = util::Pair(1, 2).")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "util::Pair()", Type: "util::Pair"}, res)

	_, ok = resolveLine(c, "@var p = util::Pair.")
	assert.False(t, ok, "class name without call")
	_, ok = resolveLine(c, "@var p = Location.")
	assert.False(t, ok)
}

func TestResolve_NamespaceMembers(t *testing.T) {
	c := newContext(t, "", 0)
	_, ok := resolveLine(c, "@var p = util::makePair(1, 2).")
	assert.False(t, ok, "Pair is not a class without the active namespace")

	res, ok := resolveLine(c, "@var n = util::count.")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "util::count", Type: "Int"}, res)

	c = newContext(t, "@using util\n@var x\n", 1)
	res, ok = resolveLine(c, "@var p = util::makePair(1, 2).")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "util::makePair()", Type: "util::Pair"}, res)
}

func TestResolve_ActiveNamespaceFallback(t *testing.T) {
	c := newContext(t, "@using util\n@var x\n", 1)

	res, ok := resolveLine(c, "@var n = count.")
	require.True(t, ok)
	assert.Equal(t, Result{QualifiedName: "util::count", Type: "Int"}, res)

	res, ok = resolveLine(c, "@var n = makePair(1, 2).left.")
	require.True(t, ok, "second link qualifies Pair through the active namespace")
	assert.Equal(t, Result{QualifiedName: "util::Pair.left", Type: "Int"}, res)

	_, ok = resolveLine(c, "@var n = util::makePair(1, 2).left.")
	assert.False(t, ok, "later links do not get the active namespace fallback")

	c = newContext(t, "@using util\n@var x\n", 0)
	_, ok = resolveLine(c, "@var n = count.")
	assert.False(t, ok, "using applies to following lines only")
}

func TestResolve_Failures(t *testing.T) {
	c := newContext(t, "@define Player p\n@define Int count\n", 2)

	_, ok := resolveLine(c, "@var x = p.name[0].")
	assert.False(t, ok, "subscript on a non-array")
	_, ok = resolveLine(c, "@var x = missing.")
	assert.False(t, ok)
	_, ok = resolveLine(c, "@var x = p().")
	assert.False(t, ok, "calls never resolve to variables")
	_, ok = resolveLine(c, "@var x = p.nothing.")
	assert.False(t, ok)
	_, ok = resolveLine(c, "@var x = nope::thing.")
	assert.False(t, ok)
	_, ok = Context{}.Resolve(Chain{{Kind: TokenIdent, Name: "p"}})
	assert.False(t, ok)
	_, ok = c.Resolve(nil)
	assert.False(t, ok)
}

func TestResolve_ScopedVariable(t *testing.T) {
	script := "@if x\n@define Foo f\n@player a\n@fi\n@player b"
	_, ok := resolveLine(newContext(t, script, 2), "@var y = f.baz.")
	assert.True(t, ok)
	_, ok = resolveLine(newContext(t, script, 4), "@var y = f.baz.")
	assert.False(t, ok, "out of scope after @fi")
}

func TestFindCallUnderCursor(t *testing.T) {
	c := newContext(t, "@using util\n\n", 1)

	tests := []struct {
		name  string
		line  string
		want  CallSite
		found bool
	}{
		{"first parameter", "@var x = util::makePair(", CallSite{"util::makePair()", 0}, true},
		{"second parameter", "@var x = util::makePair(1, ", CallSite{"util::makePair()", 1}, true},
		{"nested call skipped", "@var x = util::makePair(player.level(), ", CallSite{"util::makePair()", 1}, true},
		{"string commas ignored", `@var x = util::makePair("a,b", `, CallSite{"util::makePair()", 1}, true},
		{"grouping paren resets", "@var x = util::makePair((1 + 2), (3", CallSite{"util::makePair()", 1}, true},
		{"constructor", "@var l = Location(1, 2", CallSite{"Location()", 1}, true},
		{"method", "@var l = player.location.add(1, ", CallSite{"Location.add()", 1}, true},
		{"inside subscript", "@var x = player.friends[1, ", CallSite{}, false},
		{"no call", "@var x = 1, 2", CallSite{}, false},
		{"unresolvable", "@var x = nothing(1, ", CallSite{}, false},
		{"unbalanced string", `@var x = f(")`, CallSite{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.FindCallUnderCursor(tt.line, len(tt.line))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindCallUnderCursor_NegativeCursor(t *testing.T) {
	c := newContext(t, "@using util\n\n", 1)
	got, ok := c.FindCallUnderCursor("util::makePair(", -1)
	assert.False(t, ok)
	assert.Equal(t, CallSite{}, got)
}
