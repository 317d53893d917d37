package moa

import (
	"slices"
)

// BoundFunc is a zero-width predicate evaluated at position pos of input.
// pos ranges over [0, len(input)].
type BoundFunc func(input []rune, pos int) bool

// Bound identifiers understood by the registry.
const (
	BoundBeginning      = "^"
	BoundBeginningInput = `\A`
	BoundEnd            = "$"
	BoundEndInput       = `\z`
	BoundWord           = `\b`
	BoundNonWord        = `\B`
)

var boundRegistry = map[string]BoundFunc{
	BoundBeginning:      atBeginning,
	BoundBeginningInput: atBeginning,
	BoundEnd:            atEnd,
	BoundEndInput:       atEnd,
	BoundWord:           atWordBoundary,
	BoundNonWord: func(input []rune, pos int) bool {
		return !atWordBoundary(input, pos)
	},
}

// LookupBound resolves a bound identifier against the fixed registry.
func LookupBound(ident string) (BoundFunc, bool) {
	fn, ok := boundRegistry[ident]
	return fn, ok
}

// BoundIdentifiers lists the registered identifiers in sorted order.
func BoundIdentifiers() []string {
	idents := make([]string, 0, len(boundRegistry))
	for ident := range boundRegistry {
		idents = append(idents, ident)
	}
	slices.Sort(idents)
	return idents
}

func atBeginning(_ []rune, pos int) bool {
	return pos == 0
}

func atEnd(input []rune, pos int) bool {
	return pos == len(input)
}

func atWordBoundary(input []rune, pos int) bool {
	before := pos > 0 && isWordRune(input[pos-1])
	after := pos < len(input) && isWordRune(input[pos])
	return before != after
}

// isWordRune matches [0-9A-Za-z_].
func isWordRune(r rune) bool {
	return r == '_' ||
		('0' <= r && r <= '9') ||
		('A' <= r && r <= 'Z') ||
		('a' <= r && r <= 'z')
}
