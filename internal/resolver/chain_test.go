package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanChainBackward(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"simple member", "  f.baz.", "f.baz"},
		{"partial word ignored", "@var x = player.location.ad", "player.location"},
		{"start of line", "f.baz.", "f.baz"},
		{"call link", "@var x = player.location.add(1, \")\").x", "player.location.add()"},
		{"subscript", "@var p = player.friends[\"]\"].na", "player.friends[]"},
		{"call then subscript", "@var p = util::all()[0].", "util::all()[]"},
		{"namespace function", "@var p = util::makePair(1, 2).", "util::makePair()"},
		{"namespace constructor", "(util::Pair(1, 2).", "util::Pair()"},
		{"interpolation", "@player {{player.", "player"},
		{"interpolation at line start", "\"{{a.", "a"},
		{"stops at subscript open", "f[x.", "x"},
		{"stops at paren open", "g(a.", "a"},
		{"stops at operator", "@var y = 1+a.b.", "a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanChainBackward(tt.line, len(tt.line))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestScanChainBackward_TokenKinds(t *testing.T) {
	got := ScanChainBackward("@var a = util::Pair(1).items[2].", 32)
	assert.Equal(t, Chain{
		{Kind: TokenNamespace, Name: "util"},
		{Kind: TokenCall, Name: "Pair"},
		{Kind: TokenIdent, Name: "items"},
		{Kind: TokenSubscript},
	}, got)
}

func TestScanChainBackward_CursorInsideLine(t *testing.T) {
	line := "@var x = player.location.add(1)"
	got := ScanChainBackward(line, len("@var x = player.loc"))
	assert.Equal(t, "player", got.String())
}

func TestScanChainBackward_RejectsUnbalanced(t *testing.T) {
	for _, line := range []string{
		"",
		"foo",
		"f(.",
		"\"abc.",
		"x(1].",
		"a).",
		"x::y::z.",
		"a.b(.",
		"@var x = (1 + 2).",
		".",
		"a..",
		"a$b.",
		"foo(bar",
		"{{x}}\".",
		"f[0.",
		"1.",
		"x = 2a.",
	} {
		got := ScanChainBackward(line, len(line))
		assert.Empty(t, got, "line %q", line)
	}
}

func TestScanChainBackward_NegativeCursor(t *testing.T) {
	assert.Empty(t, ScanChainBackward("abc.", -1))
	assert.Empty(t, ScanChainBackward("", -3))
}

func TestScanWordAt(t *testing.T) {
	line := "@player {{player.name}} util::count util::makePair(1)"
	assert.Equal(t, "player.name", ScanWordAt(line, 18).String())
	assert.Equal(t, "player", ScanWordAt(line, 10).String())
	assert.Empty(t, ScanWordAt(line, 25), "namespace qualifier has no hover")
	assert.Equal(t, "util::count", ScanWordAt(line, 31).String())
	assert.Equal(t, "util::makePair()", ScanWordAt(line, 45).String())
	assert.Empty(t, ScanWordAt(line, 7), "space under cursor")
	assert.Empty(t, ScanWordAt(line, 500))
	assert.Empty(t, ScanWordAt("@var x = 42", 9), "number literal")
}
