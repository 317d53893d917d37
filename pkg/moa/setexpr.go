package moa

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/rangetable"
)

var (
	digitSet = NewCodePointSet(Range{'0', '9'})
	wordSet  = NewCodePointSet(Range{'0', '9'}, Range{'A', 'Z'}, Range{'_', '_'}, Range{'a', 'z'})
	spaceSet = NewCodePointSet(Range{'\t', '\r'}, Range{' ', ' '})
	anySet   = NewCodePointSet(Range{0, '\n' - 1}, Range{'\n' + 1, unicode.MaxRune})

	propertySets sync.Map // string -> *CodePointSet
)

// ParseSet compiles a set expression: either a bracketed expression such as
// [a-z], [^0-9_] or [\w\-[xyz]], or a named class (., \d, \D, \w, \W, \s,
// \S, \p{Name}, \P{Name}).
func ParseSet(expr string) (*CodePointSet, error) {
	if !strings.HasPrefix(expr, "[") {
		return namedClass(expr)
	}

	p := &setParser{expr: expr, rs: []rune(expr)}
	set, err := p.bracket()
	if err != nil {
		return nil, err
	}
	if p.i != len(p.rs) {
		return nil, p.fail("trailing input after closing bracket")
	}
	return set, nil
}

func namedClass(expr string) (*CodePointSet, error) {
	if expr == "." {
		return anySet, nil
	}
	p := &setParser{expr: expr, rs: []rune(expr)}
	if p.eof() || p.next() != '\\' || p.eof() {
		return nil, errors.Wrapf(ErrInvalidSetExpression, "unknown character class %q", expr)
	}
	set, _, err := p.escape()
	if err != nil {
		return nil, err
	}
	if set == nil || !p.eof() {
		return nil, errors.Wrapf(ErrInvalidSetExpression, "unknown character class %q", expr)
	}
	return set, nil
}

type setParser struct {
	expr string
	rs   []rune
	i    int
}

func (p *setParser) eof() bool  { return p.i >= len(p.rs) }
func (p *setParser) peek() rune { return p.rs[p.i] }

func (p *setParser) next() rune {
	r := p.rs[p.i]
	p.i++
	return r
}

func (p *setParser) fail(msg string) error {
	return errors.Wrapf(ErrInvalidSetExpression, "%q at offset %d: %s", p.expr, p.i, msg)
}

// bracket parses [items] or [^items] starting at the opening bracket.
func (p *setParser) bracket() (*CodePointSet, error) {
	if p.eof() || p.next() != '[' {
		return nil, p.fail("expected '['")
	}
	negate := false
	if !p.eof() && p.peek() == '^' {
		negate = true
		p.i++
	}

	set := NewCodePointSet()
	items := 0
	for {
		if p.eof() {
			return nil, p.fail("missing closing bracket")
		}
		if p.peek() == ']' {
			p.i++
			break
		}
		item, err := p.item()
		if err != nil {
			return nil, err
		}
		set = set.Union(item)
		items++
	}
	if items == 0 {
		return nil, p.fail("empty set")
	}
	if negate {
		set = set.Negate()
	}
	return set, nil
}

// item parses a nested set, a class escape, a single code point or a range.
func (p *setParser) item() (*CodePointSet, error) {
	if p.peek() == '[' {
		return p.bracket()
	}
	lo, class, err := p.atom()
	if err != nil || class != nil {
		return class, err
	}

	// a '-' right before ']' is literal
	if p.i+1 < len(p.rs) && p.peek() == '-' && p.rs[p.i+1] != ']' {
		p.i++
		hi, hiClass, err := p.atom()
		if err != nil {
			return nil, err
		}
		if hiClass != nil {
			return nil, p.fail("class escape cannot end a range")
		}
		if hi < lo {
			return nil, p.fail("range out of order")
		}
		return NewCodePointSet(Range{lo, hi}), nil
	}
	return SingleCodePoint(lo), nil
}

// atom reads one code point, or a class when it meets a class escape.
func (p *setParser) atom() (rune, *CodePointSet, error) {
	if p.eof() {
		return 0, nil, p.fail("unexpected end")
	}
	r := p.next()
	if r != '\\' {
		return r, nil, nil
	}
	if p.eof() {
		return 0, nil, p.fail("dangling escape")
	}
	set, single, err := p.escape()
	return single, set, err
}

// escape handles the character following a backslash.
func (p *setParser) escape() (*CodePointSet, rune, error) {
	r := p.next()
	switch r {
	case 'd':
		return digitSet, 0, nil
	case 'D':
		return digitSet.Negate(), 0, nil
	case 'w':
		return wordSet, 0, nil
	case 'W':
		return wordSet.Negate(), 0, nil
	case 's':
		return spaceSet, 0, nil
	case 'S':
		return spaceSet.Negate(), 0, nil
	case 'p', 'P':
		set, err := p.property()
		if err != nil {
			return nil, 0, err
		}
		if r == 'P' {
			set = set.Negate()
		}
		return set, 0, nil
	case 'n':
		return nil, '\n', nil
	case 't':
		return nil, '\t', nil
	case 'r':
		return nil, '\r', nil
	case 'f':
		return nil, '\f', nil
	case 'v':
		return nil, '\v', nil
	case 'x':
		r, err := p.hex()
		return nil, r, err
	default:
		return nil, r, nil
	}
}

// hex parses the {HEX} part of \x{HEX}.
func (p *setParser) hex() (rune, error) {
	name, err := p.braced("hex escape")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(name, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, p.fail("invalid code point " + name)
	}
	return rune(v), nil
}

func (p *setParser) braced(what string) (string, error) {
	if p.eof() || p.next() != '{' {
		return "", p.fail("expected '{' after " + what)
	}
	start := p.i
	for !p.eof() && p.peek() != '}' {
		p.i++
	}
	if p.eof() {
		return "", p.fail("unterminated " + what)
	}
	name := string(p.rs[start:p.i])
	p.i++
	return name, nil
}

func (p *setParser) property() (*CodePointSet, error) {
	name, err := p.braced("property escape")
	if err != nil {
		return nil, err
	}
	set, ok := unicodeProperty(name)
	if !ok {
		return nil, p.fail("unknown unicode property " + name)
	}
	return set, nil
}

// unicodeProperty resolves a general category or script name.
func unicodeProperty(name string) (*CodePointSet, bool) {
	if cached, ok := propertySets.Load(name); ok {
		return cached.(*CodePointSet), true
	}
	table, ok := unicode.Categories[name]
	if !ok {
		if table, ok = unicode.Scripts[name]; !ok {
			return nil, false
		}
	}

	var ranges []Range
	rangetable.Visit(rangetable.Merge(table), func(r rune) {
		if n := len(ranges); n > 0 && ranges[n-1].Hi+1 == r {
			ranges[n-1].Hi = r
			return
		}
		ranges = append(ranges, Range{r, r})
	})
	set := NewCodePointSet(ranges...)
	actual, _ := propertySets.LoadOrStore(name, set)
	return actual.(*CodePointSet), true
}
