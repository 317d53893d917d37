package moa

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Range is an inclusive code-point range.
type Range struct {
	Lo, Hi rune
}

// CodePointSet is an immutable set of code points stored as sorted,
// non-overlapping, non-adjacent ranges.
type CodePointSet struct {
	ranges []Range
}

// NewCodePointSet builds a set from arbitrary (possibly overlapping) ranges.
// Ranges with Lo > Hi are ignored.
func NewCodePointSet(ranges ...Range) *CodePointSet {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Lo > r.Hi {
			continue
		}
		rs = append(rs, r)
	}
	slices.SortFunc(rs, func(a, b Range) int {
		if a.Lo != b.Lo {
			return int(a.Lo - b.Lo)
		}
		return int(a.Hi - b.Hi)
	})

	merged := rs[:0]
	for _, r := range rs {
		if n := len(merged); n > 0 && r.Lo <= merged[n-1].Hi+1 {
			if r.Hi > merged[n-1].Hi {
				merged[n-1].Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return &CodePointSet{ranges: merged}
}

// SingleCodePoint returns the set containing only r.
func SingleCodePoint(r rune) *CodePointSet {
	return &CodePointSet{ranges: []Range{{r, r}}}
}

// Contains reports whether r is a member of the set.
func (s *CodePointSet) Contains(r rune) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Hi >= r
	})
	return i < len(s.ranges) && s.ranges[i].Lo <= r
}

// IsEmpty reports whether the set has no members.
func (s *CodePointSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Ranges returns a copy of the normalized ranges.
func (s *CodePointSet) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// Negate returns the complement within [0, unicode.MaxRune].
func (s *CodePointSet) Negate() *CodePointSet {
	out := make([]Range, 0, len(s.ranges)+1)
	next := rune(0)
	for _, r := range s.ranges {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= unicode.MaxRune {
		out = append(out, Range{next, unicode.MaxRune})
	}
	return &CodePointSet{ranges: out}
}

// Union returns the set of code points in s or o.
func (s *CodePointSet) Union(o *CodePointSet) *CodePointSet {
	all := make([]Range, 0, len(s.ranges)+len(o.ranges))
	all = append(all, s.ranges...)
	all = append(all, o.ranges...)
	return NewCodePointSet(all...)
}

// Intersects reports whether s and o share at least one code point.
func (s *CodePointSet) Intersects(o *CodePointSet) bool {
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		if a.Hi < b.Lo {
			i++
			continue
		}
		if b.Hi < a.Lo {
			j++
			continue
		}
		return true
	}
	return false
}

// String renders the set as a bracketed expression.
func (s *CodePointSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range s.ranges {
		writeSetRune(&b, r.Lo)
		if r.Hi != r.Lo {
			b.WriteByte('-')
			writeSetRune(&b, r.Hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func writeSetRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', ']', '[', '-', '^':
		b.WriteByte('\\')
		b.WriteRune(r)
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case '\r':
		b.WriteString(`\r`)
	default:
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		} else {
			b.WriteString(`\x{`)
			b.WriteString(strings.ToUpper(strconv.FormatInt(int64(r), 16)))
			b.WriteByte('}')
		}
	}
}
