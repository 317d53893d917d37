package moa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralMatching(t *testing.T) {
	g := literalGraph(t, "a")

	m := NewMatcher(g, "a")
	assert.True(t, m.NextMatch())
	assert.True(t, m.CheckAsSingleWord())

	m.Reuse("b")
	assert.False(t, m.NextMatch())
	assert.False(t, m.CheckAsSingleWord())
}

func TestMultiCodePointLiteral(t *testing.T) {
	g := literalGraph(t, "ab")

	tests := []struct {
		input      string
		want       bool
		start, end int
	}{
		{"ab", true, 0, 2},
		{"xxab", true, 2, 4},
		{"aab", true, 1, 3},
		{"a", false, -1, -1},
		{"", false, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := NewMatcher(g, tt.input)
			assert.Equal(t, tt.want, m.NextMatch())
			assert.Equal(t, tt.start, m.Start())
			assert.Equal(t, tt.end, m.End())
		})
	}
}

func TestBackreference(t *testing.T) {
	g := backrefGraph(t, false)

	tests := []struct {
		name  string
		input string
		whole bool
	}{
		{"long equal halves", strings.Repeat("a", 19) + "|" + strings.Repeat("a", 19), true},
		{"length mismatch", "aaa|aa", false},
		{"content mismatch", "aaa|aab", false},
		{"single", "a|a", true},
		{"no separator", "aaaa", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(g, tt.input)
			assert.Equal(t, tt.whole, m.CheckAsSingleWord())
		})
	}
}

func TestBackreferenceSearch(t *testing.T) {
	unanchored := backrefGraph(t, false)
	anchored := backrefGraph(t, true)

	// search finds the shorter tail that does repeat
	m := NewMatcher(unanchored, "aaa|aa")
	require.True(t, m.NextMatch())
	assert.Equal(t, "aa|aa", m.Match())
	x, err := m.NamedVariableContent("x")
	require.NoError(t, err)
	assert.Equal(t, "aa", x)

	for _, input := range []string{"aaa|aa", "aaa|aab"} {
		m := NewMatcher(anchored, input)
		assert.False(t, m.NextMatch(), input)
	}

	m = NewMatcher(anchored, "aaa|aaa")
	require.True(t, m.NextMatch())
	assert.Equal(t, 0, m.Start())
	assert.Equal(t, 7, m.End())
}

func TestResetIsolation(t *testing.T) {
	g := backrefGraph(t, false)
	m := NewMatcher(g, "aaaa|aaaa")
	require.True(t, m.CheckAsSingleWord())
	x, err := m.VariableContent(1)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", x)

	m.Reuse("bbbb")
	x, err = m.VariableContent(1)
	require.NoError(t, err)
	assert.Empty(t, x)
	assert.False(t, m.NextMatch())

	m.Reuse("a|a")
	require.True(t, m.NextMatch())
	x, err = m.VariableContent(1)
	require.NoError(t, err)
	assert.Equal(t, "a", x)
}

func TestReplaceFirst(t *testing.T) {
	g := literalGraph(t, "cat")
	m := NewMatcher(g, "a cat and a cat")
	assert.Equal(t, "a dog and a cat", m.ReplaceFirst("dog"))

	for _, input := range []string{"", "dog", "ca t", "čat"} {
		m.Reuse(input)
		assert.Equal(t, input, m.ReplaceFirst("dog"))
	}
}

func TestReplaceAll(t *testing.T) {
	g := wordGraph(t)
	m := NewMatcher(g, "hello, big world")
	assert.Equal(t, "<>, <> <>", m.ReplaceAll("<>"))

	got := m.ReplaceAllFunc(func(m *Matcher) string {
		w, _ := m.NamedVariableContent("w")
		return strings.ToUpper(w)
	})
	assert.Equal(t, "HELLO, BIG WORLD", got)
}

func TestFindAllIndex(t *testing.T) {
	g := wordGraph(t)
	m := NewMatcher(g, "ab 12 cd_ef gh")

	assert.Equal(t, [][]int{{0, 2}, {12, 14}}, m.FindAllIndex(-1))
	assert.Equal(t, [][]int{{0, 2}}, m.FindAllIndex(1))
}

func TestEmptyMatches(t *testing.T) {
	g := NewEdgeGraph(nil)
	end, err := NewBound(0, BoundEnd)
	require.NoError(t, err)
	require.NoError(t, g.AddState(end))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(0)))
	require.NoError(t, g.AddEdges(0, NewEdge(SinkIndex)))
	require.NoError(t, g.Freeze())

	m := NewMatcher(g, "abc")
	require.True(t, m.NextMatch())
	assert.Equal(t, 3, m.Start())
	assert.Equal(t, 3, m.End())
	assert.False(t, m.NextMatch())

	m.Reuse("")
	assert.True(t, m.CheckAsSingleWord())
	assert.Equal(t, "x", m.ReplaceAll("x"))
}

func TestNextMatchStaysExhausted(t *testing.T) {
	m := NewMatcher(literalGraph(t, "a"), "a a")
	require.True(t, m.NextMatch())
	require.True(t, m.NextMatch())
	assert.Equal(t, 2, m.Start())

	for i := 0; i < 3; i++ {
		assert.False(t, m.NextMatch(), "call %d after the last match", i)
		assert.Equal(t, -1, m.Start())
	}

	m.Reset()
	require.True(t, m.NextMatch())
	assert.Equal(t, 0, m.Start())
}

func TestEmptyMatchAtEndIsNotRepeated(t *testing.T) {
	m := NewMatcher(starGraph(t), "aa")
	require.True(t, m.NextMatch())
	assert.Equal(t, "aa", m.Match())
	require.True(t, m.NextMatch())
	assert.Equal(t, 2, m.Start())
	assert.Equal(t, 2, m.End())
	assert.False(t, m.NextMatch())
	assert.False(t, m.NextMatch())
}

func TestEachMatchSkipsEmptyMatchAfterMatch(t *testing.T) {
	m := NewMatcher(starGraph(t), "baa")
	var got []string
	m.EachMatch(-1, func(m *Matcher) {
		x, err := m.NamedVariableContent("x")
		require.NoError(t, err)
		got = append(got, m.Match()+"="+x)
	})
	assert.Equal(t, []string{"=", "aa=aa"}, got)
	assert.Equal(t, [][]int{{0, 0}, {1, 3}}, m.FindAllIndex(-1))
}

func TestAnchoredImpliesSearch(t *testing.T) {
	graphs := map[string]*EdgeGraph{
		"literal": literalGraph(t, "abc"),
		"backref": backrefGraph(t, false),
		"word":    wordGraph(t),
	}
	inputs := []string{"abc", "a|a", "aa|aa", "word", "", "ab", "x y"}

	for name, g := range graphs {
		for _, input := range inputs {
			m := NewMatcher(g, input)
			if !m.CheckAsSingleWord() {
				continue
			}
			m.Reset()
			require.True(t, m.NextMatch(), "%s on %q", name, input)
			assert.Equal(t, 0, m.Start())
			assert.Equal(t, len([]rune(input)), m.End())
		}
	}
}

func TestZeroWidthCycleTerminates(t *testing.T) {
	g := NewEdgeGraph(nil)
	b1, err := NewBound(1, BoundNonWord)
	require.NoError(t, err)
	b2, err := NewBound(2, BoundNonWord)
	require.NoError(t, err)
	require.NoError(t, g.AddState(b1))
	require.NoError(t, g.AddState(b2))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(1)))
	require.NoError(t, g.AddEdges(1, NewEdge(2)))
	require.NoError(t, g.AddEdges(2, NewEdge(1)))
	require.NoError(t, g.Freeze())

	m := NewMatcher(g, "  ")
	assert.False(t, m.NextMatch())
}

func TestUnknownVariable(t *testing.T) {
	m := NewMatcher(backrefGraph(t, false), "a|a")
	_, err := m.VariableContent(2)
	assert.ErrorIs(t, err, ErrUnknownVariable)
	_, err = m.VariableContent(0)
	assert.ErrorIs(t, err, ErrUnknownVariable)
	_, err = m.NamedVariableContent("y")
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestUnclosedVariableIsEmpty(t *testing.T) {
	vars, err := NewVariableTable("x")
	require.NoError(t, err)
	g := NewEdgeGraph(vars)
	require.NoError(t, g.AddState(NewLiteral(1, "a")))
	require.NoError(t, g.AddEdges(SourceIndex, NewEdge(1, Open("x"))))
	require.NoError(t, g.AddEdges(1, NewEdge(SinkIndex)))
	require.NoError(t, g.Freeze())

	m := NewMatcher(g, "a")
	require.True(t, m.CheckAsSingleWord())
	x, err := m.NamedVariableContent("x")
	require.NoError(t, err)
	assert.Empty(t, x)
}

func TestNonASCIIInput(t *testing.T) {
	g := literalGraph(t, "ü")
	m := NewMatcher(g, "grüße")
	require.True(t, m.NextMatch())
	assert.Equal(t, 2, m.Start())
	assert.Equal(t, 3, m.End())
	assert.Equal(t, "grüsse", NewMatcher(literalGraph(t, "ß"), "grüße").ReplaceFirst("ss"))
}
