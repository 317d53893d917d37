package moa

import (
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Matcher runs a frozen EdgeGraph over one input. It owns its cursor,
// current state and capture table, and is not safe for concurrent use.
type Matcher struct {
	graph *EdgeGraph
	vars  *Variables
	input []rune
	state State
	token Token

	pos       int
	lastStart int
	lastEnd   int
	exhausted bool
}

// NewMatcher returns a matcher of g over input, positioned at the start.
func NewMatcher(g *EdgeGraph, input string) *Matcher {
	return NewRuneMatcher(g, []rune(input))
}

// NewRuneMatcher is NewMatcher for input that is already decoded. The
// matcher reads input in place; it must not change while in use.
func NewRuneMatcher(g *EdgeGraph, input []rune) *Matcher {
	m := &Matcher{
		graph: g,
		vars:  g.vars.NewVariables(),
	}
	m.ReuseRunes(input)
	return m
}

// State returns the current automaton state.
func (m *Matcher) State() State { return m.state }

// SetState moves the matcher to s.
func (m *Matcher) SetState(s State) { m.state = s }

// Graph returns the automaton the matcher runs.
func (m *Matcher) Graph() *EdgeGraph { return m.graph }

// Input returns the input being matched.
func (m *Matcher) Input() []rune { return m.input }

// Reset rewinds to the initial state at position 0 and clears captures and
// the last match.
func (m *Matcher) Reset() {
	m.state = Source
	m.pos = 0
	m.lastStart, m.lastEnd = -1, -1
	m.exhausted = false
	m.vars.Reset()
	m.token.Update(m.input, 0, 0)
}

// Reuse resets the matcher onto a new input.
func (m *Matcher) Reuse(input string) {
	m.ReuseRunes([]rune(input))
}

// ReuseRunes resets the matcher onto a new, already decoded input.
func (m *Matcher) ReuseRunes(input []rune) {
	m.input = input
	m.vars.Bind(input)
	m.Reset()
}

// NextMatch searches for the next match at or after the cursor. On success
// the match is available through Start, End, Match and the variable
// accessors, and the cursor moves to its end. On failure the cursor stays
// at the end of the input, so further calls keep returning false until
// Reset or Reuse.
func (m *Matcher) NextMatch() bool {
	if m.exhausted {
		return false
	}
	from := m.pos
	if m.lastStart >= 0 && m.lastStart == m.lastEnd {
		from++
	}
	for s := from; s <= len(m.input); s++ {
		if m.attempt(s) {
			m.lastStart, m.lastEnd = s, m.pos
			if glog.V(4) {
				glog.Infof("moa: match [%d, %d)", m.lastStart, m.lastEnd)
			}
			return true
		}
	}
	m.state = Source
	m.vars.Reset()
	m.pos = len(m.input)
	m.lastStart, m.lastEnd = -1, -1
	m.exhausted = true
	return false
}

// CheckAsSingleWord reports whether the whole input is accepted, anchored at
// both ends. No restart happens on failure.
func (m *Matcher) CheckAsSingleWord() bool {
	m.Reset()
	if !m.attempt(0) || m.pos != len(m.input) {
		m.lastStart, m.lastEnd = -1, -1
		return false
	}
	m.lastStart, m.lastEnd = 0, m.pos
	return true
}

// attempt drives the automaton from Source starting at position s until it
// reaches Sink or no transition applies.
func (m *Matcher) attempt(s int) bool {
	m.state = Source
	m.vars.Reset()
	m.pos = s

	zeroWidthRun := 0
	limit := m.graph.NumStates()
	for m.state != Sink {
		if n := m.graph.MaximalNextTokenLength(m, m.vars); n > 0 && m.pos+n <= len(m.input) {
			m.token.Update(m.input, m.pos, m.pos+n)
			if m.graph.Step(m, &m.token, m.vars) == Consumed {
				m.pos += n
				zeroWidthRun = 0
				continue
			}
		}

		m.token.Update(m.input, m.pos, m.pos)
		if m.graph.Step(m, &m.token, m.vars) != Consumed {
			return false
		}
		zeroWidthRun++
		if zeroWidthRun > limit {
			return false
		}
	}
	return true
}

// ReplaceFirst returns a copy of the input where the first match is
// replaced by replacement. The input is returned unchanged when nothing
// matches.
func (m *Matcher) ReplaceFirst(replacement string) string {
	m.Reset()
	if !m.NextMatch() {
		return string(m.input)
	}
	var b strings.Builder
	b.WriteString(string(m.input[:m.lastStart]))
	b.WriteString(replacement)
	b.WriteString(string(m.input[m.lastEnd:]))
	return b.String()
}

// ReplaceAll returns a copy of the input where every non-overlapping match
// is replaced by replacement.
func (m *Matcher) ReplaceAll(replacement string) string {
	return m.ReplaceAllFunc(func(*Matcher) string { return replacement })
}

// ReplaceAllFunc is ReplaceAll with the replacement computed per match. fn
// may read the match and its captures from the matcher it receives.
func (m *Matcher) ReplaceAllFunc(fn func(*Matcher) string) string {
	var b strings.Builder
	last := 0
	m.EachMatch(-1, func(m *Matcher) {
		b.WriteString(string(m.input[last:m.lastStart]))
		b.WriteString(fn(m))
		last = m.lastEnd
	})
	b.WriteString(string(m.input[last:]))
	return b.String()
}

// FindAllIndex returns the code-point spans of up to n successive
// non-overlapping matches, or of all of them when n < 0. An empty match
// directly after a previous match is skipped.
func (m *Matcher) FindAllIndex(n int) [][]int {
	var out [][]int
	m.EachMatch(n, func(m *Matcher) {
		out = append(out, []int{m.lastStart, m.lastEnd})
	})
	return out
}

// EachMatch resets the matcher and calls fn for up to n successive
// non-overlapping matches, all of them when n < 0. fn reads the match from
// the matcher. An empty match directly after a previous match is skipped.
func (m *Matcher) EachMatch(n int, fn func(*Matcher)) {
	m.Reset()
	prevEnd := -1
	for count := 0; n < 0 || count < n; {
		if !m.NextMatch() {
			return
		}
		if m.lastStart == m.lastEnd && m.lastStart == prevEnd {
			continue
		}
		prevEnd = m.lastEnd
		fn(m)
		count++
	}
}

// Start is the position of the last match, or -1.
func (m *Matcher) Start() int { return m.lastStart }

// End is the position just after the last match, or -1.
func (m *Matcher) End() int { return m.lastEnd }

// Match returns the text of the last match.
func (m *Matcher) Match() string {
	if m.lastStart < 0 {
		return ""
	}
	return string(m.input[m.lastStart:m.lastEnd])
}

// Variables exposes the capture table of the current or last attempt.
func (m *Matcher) Variables() *Variables { return m.vars }

// VariableContent returns the captured content of the variable with the
// given 1-based occurrence.
func (m *Matcher) VariableContent(occurrence int) (string, error) {
	v := m.vars.ByOccurrence(occurrence)
	if v == nil {
		return "", errors.Wrapf(ErrUnknownVariable, "occurrence %d", occurrence)
	}
	return m.vars.Content(v), nil
}

// NamedVariableContent returns the captured content of the named variable.
func (m *Matcher) NamedVariableContent(name string) (string, error) {
	v := m.vars.ByName(name)
	if v == nil {
		return "", errors.Wrapf(ErrUnknownVariable, "%q", name)
	}
	return m.vars.Content(v), nil
}
