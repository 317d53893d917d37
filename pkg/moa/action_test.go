package moa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemoryAction(t *testing.T) {
	tests := []struct {
		in   string
		want MemoryAction
	}{
		{"o(x)", Open("x")},
		{"c(group1)", Close("group1")},
		{"r(ABC9)", Ref("ABC9")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMemoryAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseMemoryActionErrors(t *testing.T) {
	for _, in := range []string{"", "o", "o()", "x(a)", "o(a", "o(a))", "oo(a)", "o(a-b)", " o(a)", "O(a)"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMemoryAction(in)
			assert.ErrorIs(t, err, ErrInvalidMemoryActionSyntax)
		})
	}
}

func TestCanonicalActions(t *testing.T) {
	got := canonicalActions([]MemoryAction{Ref("b"), Open("z"), Close("a"), Open("a"), Open("z")})
	assert.Equal(t, []MemoryAction{Open("a"), Open("z"), Close("a"), Ref("b")}, got)
	assert.Nil(t, canonicalActions(nil))
}

func TestCloseThenOpenOnOneEdge(t *testing.T) {
	// (a)(b) where one edge closes the first group and opens the second
	vars, err := NewVariableTable("x", "y")
	require.NoError(t, err)
	g := NewEdgeGraph(vars)
	require.NoError(t, g.AddState(NewLiteral(1, "a")))
	require.NoError(t, g.AddState(NewLiteral(2, "b")))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(1, Open("x"))))
	require.NoError(t, g.AddEdges(1, NewEdge(2, Close("x"), Open("y"))))
	require.NoError(t, g.AddEdges(2, NewEdge(SinkIndex, Close("y"))))
	require.NoError(t, g.Freeze())

	m := NewMatcher(g, "zab")
	require.True(t, m.NextMatch())
	x, _ := m.NamedVariableContent("x")
	y, _ := m.NamedVariableContent("y")
	assert.Equal(t, "a", x)
	assert.Equal(t, "b", y)

	start, end := m.Variables().ByName("y").Span()
	assert.Equal(t, []int{2, 3}, []int{start, end})
}

func TestBounds(t *testing.T) {
	in := []rune("ab cd")
	tests := []struct {
		ident string
		pos   int
		want  bool
	}{
		{BoundBeginning, 0, true},
		{BoundBeginningInput, 1, false},
		{BoundEnd, 5, true},
		{BoundEndInput, 4, false},
		{BoundWord, 0, true},
		{BoundWord, 1, false},
		{BoundWord, 2, true},
		{BoundWord, 5, true},
		{BoundNonWord, 1, true},
		{BoundNonWord, 3, false},
	}
	for _, tt := range tests {
		b, err := NewBound(0, tt.ident)
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.Holds(in, tt.pos), "%s at %d", tt.ident, tt.pos)
	}
	assert.Equal(t, []string{"$", `\A`, `\B`, `\b`, `\z`, "^"}, BoundIdentifiers())
}
