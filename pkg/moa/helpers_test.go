package moa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// literalGraph accepts exactly text.
func literalGraph(t *testing.T, text string) *EdgeGraph {
	t.Helper()
	g := NewEdgeGraph(nil)
	require.NoError(t, g.AddState(NewLiteral(0, text)))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(0)))
	require.NoError(t, g.AddEdges(0, NewEdge(SinkIndex)))
	require.NoError(t, g.Freeze())
	return g
}

// backrefGraph is (a+)\|\1 with the group bound to x. With anchored set,
// the pattern is wrapped in ^ and $.
func backrefGraph(t *testing.T, anchored bool) *EdgeGraph {
	t.Helper()
	vars, err := NewVariableTable("x")
	require.NoError(t, err)
	g := NewEdgeGraph(vars)
	require.NoError(t, g.AddState(NewSet(1, SingleCodePoint('a'), "[a]")))
	require.NoError(t, g.AddState(NewLiteral(2, "|")))
	require.NoError(t, g.AddState(NewReference(3, "x")))

	first, last := SourceIndex, SinkIndex
	if anchored {
		begin, err := NewBound(10, BoundBeginning)
		require.NoError(t, err)
		end, err := NewBound(11, BoundEnd)
		require.NoError(t, err)
		require.NoError(t, g.AddState(begin))
		require.NoError(t, g.AddState(end))
		require.NoError(t, g.AddEdges(SourceIndex, NewEdge(10)))
		require.NoError(t, g.AddEdges(11, NewEdge(SinkIndex)))
		first, last = 10, 11
	}

	require.NoError(t, g.AddEdges(first, NewEdge(1, Open("x"))))
	require.NoError(t, g.AddEdges(1, NewEdge(1), NewEdge(2, Close("x"))))
	require.NoError(t, g.AddEdges(2, NewEdge(3, Ref("x"))))
	require.NoError(t, g.AddEdges(3, NewEdge(last)))
	require.NoError(t, g.Freeze())
	return g
}

// wordGraph is \b[a-z]+\b with the word bound to w.
func wordGraph(t *testing.T) *EdgeGraph {
	t.Helper()
	vars, err := NewVariableTable("w")
	require.NoError(t, err)
	g := NewEdgeGraph(vars)
	lower, err := ParseSet("[a-z]")
	require.NoError(t, err)
	open, err := NewBound(1, BoundWord)
	require.NoError(t, err)
	closing, err := NewBound(3, BoundWord)
	require.NoError(t, err)
	require.NoError(t, g.AddState(open))
	require.NoError(t, g.AddState(NewSet(2, lower, "[a-z]")))
	require.NoError(t, g.AddState(closing))

	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(1)))
	require.NoError(t, g.AddEdges(1, NewEdge(2, Open("w"))))
	require.NoError(t, g.AddEdges(2, NewEdge(2), NewEdge(3, Close("w"))))
	require.NoError(t, g.AddEdges(3, NewEdge(SinkIndex)))
	require.NoError(t, g.Freeze())
	return g
}

// starGraph is a* with the run bound to x.
func starGraph(t *testing.T) *EdgeGraph {
	t.Helper()
	vars, err := NewVariableTable("x")
	require.NoError(t, err)
	g := NewEdgeGraph(vars)
	require.NoError(t, g.AddState(NewSet(1, SingleCodePoint('a'), "[a]")))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(1, Open("x")), NewEdge(SinkIndex)))
	require.NoError(t, g.AddEdges(1, NewEdge(1), NewEdge(SinkIndex, Close("x"))))
	require.NoError(t, g.Freeze())
	return g
}
