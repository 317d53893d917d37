// Package replace parses replacement templates and expands them against the
// captures of a match.
package replace

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/s4ke/moar/pkg/moa"
)

// ErrInvalidTemplate reports a template that cannot be parsed.
var ErrInvalidTemplate = errors.New("invalid replacement template")

// SegmentType indicates the type of segment in a replacement template.
type SegmentType int

const (
	// SegmentLiteral is verbatim text.
	SegmentLiteral SegmentType = iota
	// SegmentWholeMatch is $0.
	SegmentWholeMatch
	// SegmentOccurrence is a variable referenced by occurrence ($1, ${12}).
	SegmentOccurrence
	// SegmentName is a variable referenced by name ($name, ${name}).
	SegmentName
)

// Segment is one parsed piece of a template.
type Segment struct {
	Type       SegmentType
	Literal    string
	Occurrence int
	Name       string
}

// Template is a parsed replacement template.
type Template struct {
	Original string
	Segments []Segment
}

// Captures is what a template expands against.
type Captures interface {
	// Whole returns the text of the entire match.
	Whole() string
	// ByOccurrence returns the content of the variable with the given
	// 1-based occurrence.
	ByOccurrence(n int) (string, bool)
	// ByName returns the content of the named variable.
	ByName(name string) (string, bool)
}

// Parse parses a replacement template.
//
//   - $0 or ${0}: the whole match
//   - $1 .. $99 or ${n}: variable by occurrence
//   - $name or ${name}: variable by name, name matching [a-zA-Z0-9]+
//     and not starting with a digit unless braced
//   - $$: a literal dollar sign
//
// A $ that starts none of these is literal.
func Parse(template string) (*Template, error) {
	t := &Template{Original: template, Segments: []Segment{}}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.Segments = append(t.Segments, Segment{Type: SegmentLiteral, Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			lit.WriteByte(c)
			i++
			continue
		}

		next := template[i+1]
		switch {
		case next == '$':
			lit.WriteByte('$')
			i += 2
		case next == '{':
			seg, n, err := parseBraced(template[i:])
			if err != nil {
				return nil, errors.WithMessagef(err, "at offset %d", i)
			}
			flush()
			t.Segments = append(t.Segments, seg)
			i += n
		case isDigit(next):
			end := i + 2
			if end < len(template) && isDigit(template[end]) && next != '0' {
				end++
			}
			n, _ := strconv.Atoi(template[i+1 : end])
			flush()
			t.Segments = append(t.Segments, occurrenceSegment(n))
			i = end
		case isNameByte(next):
			end := i + 2
			for end < len(template) && isNameByte(template[end]) {
				end++
			}
			flush()
			t.Segments = append(t.Segments, Segment{Type: SegmentName, Name: template[i+1 : end]})
			i = end
		default:
			lit.WriteByte('$')
			i++
		}
	}
	flush()
	return t, nil
}

// MustParse is Parse that panics on error.
func MustParse(template string) *Template {
	t, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return t
}

func parseBraced(s string) (Segment, int, error) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return Segment{}, 0, errors.Wrap(ErrInvalidTemplate, "unclosed ${")
	}
	body := s[2:end]
	if body == "" {
		return Segment{}, 0, errors.Wrap(ErrInvalidTemplate, "empty ${}")
	}
	for i := 0; i < len(body); i++ {
		if !isNameByte(body[i]) {
			return Segment{}, 0, errors.Wrapf(ErrInvalidTemplate, "invalid reference ${%s}", body)
		}
	}
	if n, err := strconv.Atoi(body); err == nil {
		return occurrenceSegment(n), end + 1, nil
	}
	return Segment{Type: SegmentName, Name: body}, end + 1, nil
}

func occurrenceSegment(n int) Segment {
	if n == 0 {
		return Segment{Type: SegmentWholeMatch}
	}
	return Segment{Type: SegmentOccurrence, Occurrence: n}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNameByte(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Resolve verifies that every referenced variable is declared in vars and
// returns a copy of the template where names are replaced by occurrences.
func (t *Template) Resolve(vars *moa.VariableTable) (*Template, error) {
	out := &Template{Original: t.Original, Segments: make([]Segment, len(t.Segments))}
	for i, seg := range t.Segments {
		switch seg.Type {
		case SegmentOccurrence:
			if seg.Occurrence > vars.Len() {
				return nil, errors.Wrapf(moa.ErrUnknownVariable, "template %q references $%d", t.Original, seg.Occurrence)
			}
		case SegmentName:
			occ, ok := vars.Occurrence(seg.Name)
			if !ok {
				return nil, errors.Wrapf(moa.ErrUnknownVariable, "template %q references $%s", t.Original, seg.Name)
			}
			seg = Segment{Type: SegmentOccurrence, Occurrence: occ}
		}
		out.Segments[i] = seg
	}
	return out, nil
}

// Expand renders the template. References to missing variables expand to
// the empty string.
func (t *Template) Expand(c Captures) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		switch seg.Type {
		case SegmentLiteral:
			b.WriteString(seg.Literal)
		case SegmentWholeMatch:
			b.WriteString(c.Whole())
		case SegmentOccurrence:
			s, _ := c.ByOccurrence(seg.Occurrence)
			b.WriteString(s)
		case SegmentName:
			s, _ := c.ByName(seg.Name)
			b.WriteString(s)
		}
	}
	return b.String()
}

// HasReferences reports whether expanding depends on the match at all.
func (t *Template) HasReferences() bool {
	for _, seg := range t.Segments {
		if seg.Type != SegmentLiteral {
			return true
		}
	}
	return false
}

func (t *Template) String() string { return t.Original }
