package moa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSet(t *testing.T) {
	tests := []struct {
		expr string
		in   string
		out  string
	}{
		{expr: "[a-z]", in: "amz", out: "AZ0-"},
		{expr: "[^0-9_]", in: "aZ-é", out: "05_"},
		{expr: `[\]\\\-\^]`, in: `]\-^`, out: "[a"},
		{expr: "[a-]", in: "a-", out: "b"},
		{expr: "[-a]", in: "a-", out: "b"},
		{expr: `[\n\t]`, in: "\n\t", out: "nt "},
		{expr: `[\x{41}-\x{43}]`, in: "ABC", out: "D"},
		{expr: `[\d_]`, in: "09_", out: "a"},
		{expr: `[\w\-[xyz]]`, in: "a_-x", out: "+ "},
		{expr: `[^\s]`, in: "ab", out: " \t\n\v\f\r"},
		{expr: `[\p{Greek}]`, in: "αΩ", out: "a"},
		{expr: `[\P{Lu}]`, in: "a1", out: "AÄ"},
		{expr: ".", in: "a\t ☃", out: "\n"},
		{expr: `\d`, in: "7", out: "x"},
		{expr: `\D`, in: "x", out: "7"},
		{expr: `\w`, in: "_", out: "-"},
		{expr: `\W`, in: "-", out: "_"},
		{expr: `\S`, in: "x", out: " "},
		{expr: `\p{Nd}`, in: "5٣", out: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			set, err := ParseSet(tt.expr)
			require.NoError(t, err)
			for _, r := range tt.in {
				assert.True(t, set.Contains(r), "%q should contain %q", tt.expr, r)
			}
			for _, r := range tt.out {
				assert.False(t, set.Contains(r), "%q should not contain %q", tt.expr, r)
			}
		})
	}
}

func TestParseSetErrors(t *testing.T) {
	for _, expr := range []string{
		"", "a", "[", "[]", "[a-", "[z-a]", `[\`, `[a]b`, `[\x{zz}]`,
		`\q`, `\p{Nope}`, `[\p{L]`, `\pL`, "[[a]",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseSet(expr)
			assert.ErrorIs(t, err, ErrInvalidSetExpression)
		})
	}
}

func TestCodePointSet(t *testing.T) {
	s := NewCodePointSet(Range{'d', 'f'}, Range{'a', 'c'}, Range{'x', 'x'}, Range{'z', 'y'})
	assert.Equal(t, []Range{{'a', 'f'}, {'x', 'x'}}, s.Ranges())
	assert.Equal(t, "[a-fx]", s.String())

	neg := s.Negate()
	assert.False(t, neg.Contains('b'))
	assert.True(t, neg.Contains('g'))
	assert.True(t, neg.Contains(0))
	assert.Equal(t, s.Ranges(), neg.Negate().Ranges())

	assert.True(t, s.Intersects(SingleCodePoint('x')))
	assert.False(t, s.Intersects(NewCodePointSet(Range{'g', 'w'})))
	assert.True(t, NewCodePointSet().IsEmpty())
	assert.Equal(t, []Range{{'a', 'f'}, {'x', 'z'}}, s.Union(NewCodePointSet(Range{'y', 'z'})).Ranges())
	assert.Equal(t, `[\-\]]`, NewCodePointSet(Range{']', ']'}, Range{'-', '-'}).String())
}

func TestCodePointSetStringRoundTrip(t *testing.T) {
	for _, set := range []*CodePointSet{
		NewCodePointSet(Range{'a', 'z'}, Range{'0', '9'}),
		NewCodePointSet(Range{'\\', '\\'}, Range{'^', '^'}, Range{'[', '['}),
		NewCodePointSet(Range{'\n', '\n'}, Range{'\t', '\t'}, Range{0x7f, 0x7f}),
		NewCodePointSet(Range{'α', 'ω'}),
	} {
		parsed, err := ParseSet(set.String())
		require.NoError(t, err, set.String())
		assert.Equal(t, set.Ranges(), parsed.Ranges(), set.String())
	}
}
