package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipStringBackward(t *testing.T) {
	tests := []struct {
		name string
		line string
		pos  int
		want int
		ok   bool
	}{
		{"simple", `x("abc")`, 6, 2, true},
		{"escaped quote", `x("a\"b")`, 7, 2, true},
		{"interpolation with quotes", `x("a{{f("q")}}b")`, 15, 2, true},
		{"unterminated", `abc"`, 3, 0, false},
		{"stray interpolation close", `"a}}`, 3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SkipStringBackward(tt.line, tt.pos)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSkipStringForward(t *testing.T) {
	got, ok := SkipStringForward(`"a{{g("x")}}b" + 1`, 0)
	assert.True(t, ok)
	assert.Equal(t, 13, got)

	_, ok = SkipStringForward(`"never closed`, 0)
	assert.False(t, ok)

	got, ok = SkipStringForward(`"a\"b"`, 0)
	assert.True(t, ok)
	assert.Equal(t, 5, got)
}

func TestSkipBalancedBackward(t *testing.T) {
	line := `a.f(b(")"), [1]).`
	got, ok := SkipBalancedBackward(line, 15, ')')
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = SkipBalancedBackward("list[idx[0]]", 11, ']')
	assert.True(t, ok)
	assert.Equal(t, 4, got)

	got, ok = SkipBalancedBackward("abc", 2, ')')
	assert.True(t, ok, "non-closer is a no-op")
	assert.Equal(t, 2, got)

	_, ok = SkipBalancedBackward("f(a))", 4, ')')
	assert.False(t, ok)

	_, ok = SkipBalancedBackward(`f(")`, 3, ')')
	assert.False(t, ok)
}

func TestSkipBalancedToEnd(t *testing.T) {
	lines := []string{
		"Int[] values = [",
		"  1, 2, \"]\",",
		"  3",
		"]",
		"Int after",
	}
	got, ok := SkipBalancedToEnd(lines, 0, len(lines))
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = SkipBalancedToEnd([]string{"Int x = f(1)"}, 0, 1)
	assert.True(t, ok)
	assert.Equal(t, 0, got)

	_, ok = SkipBalancedToEnd([]string{"Int x = (", "1"}, 0, 2)
	assert.False(t, ok)

	_, ok = SkipBalancedToEnd([]string{"Int x = (]"}, 0, 1)
	assert.False(t, ok)
}
