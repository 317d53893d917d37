package replace

import "github.com/s4ke/moar/pkg/moa"

// MatcherCaptures exposes the last match of a matcher as Captures.
type MatcherCaptures struct {
	m *moa.Matcher
}

// FromMatcher wraps m. The wrapper reads m lazily, so it reflects whatever
// match m currently holds.
func FromMatcher(m *moa.Matcher) MatcherCaptures {
	return MatcherCaptures{m: m}
}

func (c MatcherCaptures) Whole() string { return c.m.Match() }

func (c MatcherCaptures) ByOccurrence(n int) (string, bool) {
	s, err := c.m.VariableContent(n)
	return s, err == nil
}

func (c MatcherCaptures) ByName(name string) (string, bool) {
	s, err := c.m.NamedVariableContent(name)
	return s, err == nil
}

// ExpandAll replaces every match of m in its current input with the
// expansion of t.
func ExpandAll(m *moa.Matcher, t *Template) string {
	c := FromMatcher(m)
	return m.ReplaceAllFunc(func(*moa.Matcher) string { return t.Expand(c) })
}

// ExpandFirst replaces the first match of m in its current input with the
// expansion of t.
func ExpandFirst(m *moa.Matcher, t *Template) string {
	m.Reset()
	if !m.NextMatch() {
		return string(m.Input())
	}
	in := m.Input()
	return string(in[:m.Start()]) + t.Expand(FromMatcher(m)) + string(in[m.End():])
}
