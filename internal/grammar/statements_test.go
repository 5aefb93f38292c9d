package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKeyword(t *testing.T) {
	for _, k := range Keywords {
		assert.True(t, IsKeyword(k), k)
	}
	assert.False(t, IsKeyword("@iff"))
	assert.False(t, IsKeyword("if"))
}

func TestMatchFor(t *testing.T) {
	f, ok := MatchFor("@for Int i in list::range(0, 10)")
	require.True(t, ok)
	assert.Equal(t, "Int", f.Type)
	assert.Equal(t, "i", f.Variable)
	assert.Equal(t, Span{9, 10}, f.VarSpan)
	assert.Equal(t, "list::range(0, 10)", f.Iterable)

	_, ok = MatchFor("@for Int i of items")
	assert.False(t, ok)
}

func TestMatchDefine(t *testing.T) {
	d, ok := MatchDefine("@define Int count = 5")
	require.True(t, ok)
	assert.Equal(t, "count", d.Variable)
	assert.True(t, d.HasAssign)
	assert.True(t, d.HasInitializer)

	d, ok = MatchDefine("@define Int count =")
	require.True(t, ok)
	assert.True(t, d.HasAssign)
	assert.False(t, d.HasInitializer)
	assert.Equal(t, len("@define Int count ="), d.AssignEnd)

	d, ok = MatchDefine("@define String[] Names")
	require.True(t, ok)
	assert.Equal(t, "Names", d.Variable)
	assert.Equal(t, Span{17, 22}, d.VarSpan)
	assert.False(t, d.HasAssign)

	_, ok = MatchDefine("@define Int")
	assert.False(t, ok)
}

func TestMatchChatscript(t *testing.T) {
	c, ok := MatchChatscript("@chatscript 10s shop open_shop()")
	require.True(t, ok)
	assert.Equal(t, "10s", c.Time)
	assert.Equal(t, "shop", c.Group)
	assert.Equal(t, "open_shop()", c.Function)
	assert.True(t, IsCallShape(c.Function))
	assert.False(t, IsCallShape(")x("))

	_, ok = MatchChatscript("@chatscript 10s shop")
	assert.False(t, ok)
}

func TestMatchDurationStatement(t *testing.T) {
	a, ok := MatchDurationStatement("@delay", "@delay 5s")
	require.True(t, ok)
	assert.Equal(t, DurationArgument{Value: "5s", Span: Span{7, 9}}, a)

	a, ok = MatchDurationStatement("@global_cooldown", "@global_cooldown 1h")
	require.True(t, ok)
	assert.Equal(t, "1h", a.Value)

	_, ok = MatchDurationStatement("@cooldown", "@cooldown 1 h")
	assert.False(t, ok)
}

func TestIsDuration(t *testing.T) {
	for _, ok := range []string{"1", "20t", "5s", "3m", "2h", "7d", "1w", "1y"} {
		assert.True(t, IsDuration(ok), ok)
	}
	for _, bad := range []string{"", "s", "5x", "1.5s", "5ss"} {
		assert.False(t, IsDuration(bad), bad)
	}
}

func TestMatchUsing(t *testing.T) {
	ns, ok := MatchUsing("@using util")
	require.True(t, ok)
	assert.Equal(t, "util", ns)

	_, ok = MatchUsing("@using util extra")
	assert.False(t, ok)
}

func TestBannedCommands(t *testing.T) {
	tests := []struct {
		stmt string
		want []BanReason
	}{
		{"@bypass /op {{player}}", []BanReason{BanPermission}},
		{"@console lp user x parent set admin", []BanReason{BanPermission}},
		{"@command /p hello", []BanReason{BanChat}},
		{"@bypass /{{cmd}} x", []BanReason{BanExecutor}},
		{"@bypass /give {{player}} apple", nil},
		{"@player /op me", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BannedCommands(tt.stmt), tt.stmt)
	}
	assert.Equal(t, "Permission changing commands are banned in scripts", BanPermission.Message())
}
