// Package moar is the user-facing API of the engine: it loads persisted
// automata, keeps a pool of matchers per pattern and offers the usual
// find/replace conveniences on strings.
//
// Positions returned by this package are byte offsets into the input
// string, like the standard library's regexp. The lower-level moa package
// works in code points.
package moar

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/s4ke/moar/pkg/moa"
	"github.com/s4ke/moar/replace"
)

// Pattern is a frozen automaton plus the expression it was built from. It
// is safe for concurrent use.
type Pattern struct {
	graph *moa.EdgeGraph
	regex string
	pool  sync.Pool
}

// Load builds a pattern from its JSON description.
func Load(data []byte) (*Pattern, error) {
	d, err := ParseDescription(data)
	if err != nil {
		return nil, err
	}
	return FromDescription(d)
}

// LoadYAML builds a pattern from its YAML description.
func LoadYAML(data []byte) (*Pattern, error) {
	d, err := ParseDescriptionYAML(data)
	if err != nil {
		return nil, err
	}
	return FromDescription(d)
}

// MustLoad is Load that panics on error. It is meant for package-level
// variables holding embedded automata.
func MustLoad(data []byte) *Pattern {
	p, err := Load(data)
	if err != nil {
		panic(errors.Wrap(err, "moar: MustLoad"))
	}
	return p
}

// FromDescription builds a pattern from a decoded description.
func FromDescription(d *Description) (*Pattern, error) {
	g, err := d.Build()
	if err != nil {
		return nil, err
	}
	return newPattern(g, d.Regex), nil
}

// FromGraph wraps a graph built in code. The graph is frozen if it is not
// already.
func FromGraph(g *moa.EdgeGraph, regex string) (*Pattern, error) {
	if err := g.Freeze(); err != nil {
		return nil, err
	}
	return newPattern(g, regex), nil
}

func newPattern(g *moa.EdgeGraph, regex string) *Pattern {
	p := &Pattern{graph: g, regex: regex}
	p.pool.New = func() any {
		return moa.NewRuneMatcher(g, nil)
	}
	return p
}

// Regex returns the expression the automaton was built from, if recorded.
func (p *Pattern) Regex() string { return p.regex }

// Graph returns the frozen automaton.
func (p *Pattern) Graph() *moa.EdgeGraph { return p.graph }

// Variables returns the variable names in occurrence order.
func (p *Pattern) Variables() []string { return p.graph.Variables().Names() }

// Describe returns the persisted form of the pattern.
func (p *Pattern) Describe() *Description { return Describe(p.graph, p.regex) }

// Marshal encodes the pattern as compact JSON.
func (p *Pattern) Marshal() ([]byte, error) {
	return json.Marshal(p.Describe())
}

// MarshalIndent encodes the pattern as indented JSON.
func (p *Pattern) MarshalIndent(prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(p.Describe(), prefix, indent)
}

// MarshalYAML encodes the pattern as YAML. It returns bytes, so Pattern
// does not implement yaml.Marshaler; encode Describe() to embed a pattern
// in a larger YAML document.
func (p *Pattern) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(p.Describe())
}

// Matcher returns a fresh matcher over input for callers that need the
// step-by-step API. It is not taken from the pool.
func (p *Pattern) Matcher(input string) *moa.Matcher {
	return moa.NewMatcher(p.graph, input)
}

func (p *Pattern) get(input string) (*moa.Matcher, *runeIndex) {
	m := p.pool.Get().(*moa.Matcher)
	rs := []rune(input)
	m.ReuseRunes(rs)
	return m, &runeIndex{s: input}
}

func (p *Pattern) put(m *moa.Matcher) {
	m.ReuseRunes(nil)
	p.pool.Put(m)
}

// CheckString reports whether the whole of s is accepted.
func (p *Pattern) CheckString(s string) bool {
	m, _ := p.get(s)
	defer p.put(m)
	return m.CheckAsSingleWord()
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) bool {
	m, _ := p.get(s)
	defer p.put(m)
	return m.NextMatch()
}

// FindString returns the text of the first match, or "".
func (p *Pattern) FindString(s string) string {
	m, idx := p.get(s)
	defer p.put(m)
	if !m.NextMatch() {
		return ""
	}
	return s[idx.offset(m.Start()):idx.offset(m.End())]
}

// FindStringIndex returns the byte span of the first match, or nil.
func (p *Pattern) FindStringIndex(s string) []int {
	m, idx := p.get(s)
	defer p.put(m)
	if !m.NextMatch() {
		return nil
	}
	return []int{idx.offset(m.Start()), idx.offset(m.End())}
}

// FindAllString returns up to n successive matches, all of them if n < 0.
func (p *Pattern) FindAllString(s string, n int) []string {
	m, idx := p.get(s)
	defer p.put(m)
	var out []string
	for _, span := range m.FindAllIndex(n) {
		out = append(out, s[idx.offset(span[0]):idx.offset(span[1])])
	}
	return out
}

// FindAllStringIndex returns the byte spans of up to n successive matches.
func (p *Pattern) FindAllStringIndex(s string, n int) [][]int {
	m, idx := p.get(s)
	defer p.put(m)
	spans := m.FindAllIndex(n)
	for _, span := range spans {
		span[0], span[1] = idx.offset(span[0]), idx.offset(span[1])
	}
	return spans
}

// FindStringSubmatch returns the first match with its captures, or nil.
func (p *Pattern) FindStringSubmatch(s string) *Match {
	m, idx := p.get(s)
	defer p.put(m)
	if !m.NextMatch() {
		return nil
	}
	return newMatch(m, idx)
}

// ReplaceFirst replaces the first match with replacement verbatim. Bytes
// outside the match are copied from s unchanged, and s itself is returned
// when nothing matches.
func (p *Pattern) ReplaceFirst(s, replacement string) string {
	return p.replace(s, 1, func(*Match) string { return replacement })
}

// ReplaceAll replaces every match with replacement verbatim.
func (p *Pattern) ReplaceAll(s, replacement string) string {
	return p.replace(s, -1, func(*Match) string { return replacement })
}

// replace substitutes up to n matches (all when n < 0) with fn's result,
// copying everything between matches from s byte for byte.
func (p *Pattern) replace(s string, n int, fn func(*Match) string) string {
	m, idx := p.get(s)
	defer p.put(m)

	var b strings.Builder
	last, matched := 0, false
	m.EachMatch(n, func(m *moa.Matcher) {
		match := newMatch(m, idx)
		b.WriteString(s[last:match.Start])
		b.WriteString(fn(match))
		last, matched = match.End, true
	})
	if !matched {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// ReplaceFirstTemplate replaces the first match with the expansion of the
// replacement template (see package replace).
func (p *Pattern) ReplaceFirstTemplate(s, template string) (string, error) {
	t, err := p.template(template)
	if err != nil {
		return "", err
	}
	return p.replace(s, 1, func(r *Match) string { return r.Expand(t) }), nil
}

// ReplaceAllTemplate replaces every match with the expansion of the
// replacement template.
func (p *Pattern) ReplaceAllTemplate(s, template string) (string, error) {
	t, err := p.template(template)
	if err != nil {
		return "", err
	}
	return p.replace(s, -1, func(r *Match) string { return r.Expand(t) }), nil
}

func (p *Pattern) template(template string) (*replace.Template, error) {
	t, err := replace.Parse(template)
	if err != nil {
		return nil, err
	}
	return t.Resolve(p.graph.Variables())
}

// Match is a single match with its variable captures.
type Match struct {
	// Text is the matched text.
	Text string
	// Start and End are byte offsets into the input.
	Start, End int
	// Groups holds variable contents in occurrence order.
	Groups []string

	names map[string]int
}

func newMatch(m *moa.Matcher, idx *runeIndex) *Match {
	vars := m.Variables()
	start, end := idx.offset(m.Start()), idx.offset(m.End())
	res := &Match{
		Text:   idx.s[start:end],
		Start:  start,
		End:    end,
		Groups: make([]string, vars.Len()),
		names:  make(map[string]int, vars.Len()),
	}
	for i := range res.Groups {
		v := vars.ByOccurrence(i + 1)
		if v.Captured() {
			from, to := v.Span()
			res.Groups[i] = idx.s[idx.offset(from):idx.offset(to)]
		}
		res.names[v.Name()] = i
	}
	return res
}

// Get returns the content of the named variable, or "".
func (r *Match) Get(name string) string {
	s, _ := r.ByName(name)
	return s
}

// Whole returns the matched text.
func (r *Match) Whole() string { return r.Text }

// ByOccurrence returns the content of the variable with 1-based occurrence n.
func (r *Match) ByOccurrence(n int) (string, bool) {
	if n < 1 || n > len(r.Groups) {
		return "", false
	}
	return r.Groups[n-1], true
}

// ByName returns the content of the named variable.
func (r *Match) ByName(name string) (string, bool) {
	i, ok := r.names[name]
	if !ok {
		return "", false
	}
	return r.Groups[i], true
}

// Expand renders a replacement template against this match.
func (r *Match) Expand(t *replace.Template) string { return t.Expand(r) }

// runeIndex converts code-point positions in s into byte offsets. Each
// invalid UTF-8 byte counts as one code point, as in []rune(s).
type runeIndex struct {
	s    string
	offs []int
}

func (ri *runeIndex) offset(pos int) int {
	if ri.offs == nil {
		ri.offs = make([]int, 0, len(ri.s)+1)
		for i := range ri.s {
			ri.offs = append(ri.offs, i)
		}
		ri.offs = append(ri.offs, len(ri.s))
	}
	return ri.offs[pos]
}
