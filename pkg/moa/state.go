package moa

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind tags the variant of a State.
type Kind uint8

const (
	// KindSentinel is the initial (SRC) or accepting (SNK) state.
	KindSentinel Kind = iota
	// KindLiteral consumes a fixed token.
	KindLiteral
	// KindSet consumes code points belonging to a set.
	KindSet
	// KindReference consumes the captured content of a variable.
	KindReference
	// KindBound is a zero-width assertion.
	KindBound
)

func (k Kind) String() string {
	switch k {
	case KindSentinel:
		return "sentinel"
	case KindLiteral:
		return "literal"
	case KindSet:
		return "set"
	case KindReference:
		return "reference"
	case KindBound:
		return "bound"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// State is a node of the automaton. The set of implementations is closed:
// *Sentinel, *Literal, *Set, *Reference and *Bound.
type State interface {
	// Index is the stable identity of the state within its graph.
	Index() int
	Kind() Kind
	// IsTerminal reports whether the state is an unambiguous final edge
	// target, i.e. a fixed token.
	IsTerminal() bool
	// Touch is invoked whenever a transition enters the state.
	Touch()
	// String is the display form used by serialization.
	String() string

	sealed()
}

// Indices of the two sentinel states present in every graph.
const (
	SourceIndex = -1
	SinkIndex   = -2
)

// Sentinel is one of the two implicit states, Source and Sink.
type Sentinel struct {
	idx  int
	name string
}

var (
	// Source is the initial state (SRC).
	Source = &Sentinel{idx: SourceIndex, name: "SRC"}
	// Sink is the accepting state (SNK). Entering it consumes the empty token.
	Sink = &Sentinel{idx: SinkIndex, name: "SNK"}
)

func (s *Sentinel) Index() int       { return s.idx }
func (s *Sentinel) Kind() Kind       { return KindSentinel }
func (s *Sentinel) IsTerminal() bool { return true }
func (s *Sentinel) Touch()           {}
func (s *Sentinel) String() string   { return s.name }
func (s *Sentinel) sealed()          {}

// Literal consumes exactly its token, compared atomically.
type Literal struct {
	idx   int
	token []rune
	text  string
}

// NewLiteral creates a literal state. The token must not be empty.
func NewLiteral(idx int, token string) *Literal {
	return &Literal{idx: idx, token: []rune(token), text: token}
}

func (l *Literal) Index() int       { return l.idx }
func (l *Literal) Kind() Kind       { return KindLiteral }
func (l *Literal) IsTerminal() bool { return true }
func (l *Literal) Touch()           {}
func (l *Literal) String() string   { return l.text }
func (l *Literal) sealed()          {}

// Token returns the literal text.
func (l *Literal) Token() string { return l.text }

// Set consumes Width code points that all belong to its code-point set.
type Set struct {
	idx     int
	width   int
	set     *CodePointSet
	display string
}

// NewSet creates a set state of width 1. display is the expression the set
// was built from; it is what serialization emits.
func NewSet(idx int, set *CodePointSet, display string) *Set {
	return NewSetWidth(idx, 1, set, display)
}

// NewSetWidth creates a set state consuming width code points.
func NewSetWidth(idx, width int, set *CodePointSet, display string) *Set {
	if display == "" && set != nil {
		display = set.String()
	}
	return &Set{idx: idx, width: width, set: set, display: display}
}

func (s *Set) Index() int       { return s.idx }
func (s *Set) Kind() Kind       { return KindSet }
func (s *Set) IsTerminal() bool { return false }
func (s *Set) Touch()           {}
func (s *Set) String() string   { return s.display }
func (s *Set) sealed()          {}

// CodePoints returns the accepted set.
func (s *Set) CodePoints() *CodePointSet { return s.set }

// Width is the number of code points consumed per transition.
func (s *Set) Width() int { return s.width }

// Reference consumes whatever a previously captured variable holds.
type Reference struct {
	idx      int
	variable string
}

// NewReference creates a backreference state for the named variable.
func NewReference(idx int, variable string) *Reference {
	return &Reference{idx: idx, variable: variable}
}

func (r *Reference) Index() int       { return r.idx }
func (r *Reference) Kind() Kind       { return KindReference }
func (r *Reference) IsTerminal() bool { return false }
func (r *Reference) Touch()           {}
func (r *Reference) String() string   { return r.variable }
func (r *Reference) sealed()          {}

// Variable returns the referenced variable name.
func (r *Reference) Variable() string { return r.variable }

// Bound is a zero-width assertion resolved against the bound registry.
type Bound struct {
	idx   int
	ident string
	fn    BoundFunc
}

// NewBound creates a bound state. It fails with ErrMalformedAutomaton for
// identifiers missing from the registry.
func NewBound(idx int, ident string) (*Bound, error) {
	fn, ok := LookupBound(ident)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedAutomaton, "unknown bound %q", ident)
	}
	return &Bound{idx: idx, ident: ident, fn: fn}, nil
}

func (b *Bound) Index() int       { return b.idx }
func (b *Bound) Kind() Kind       { return KindBound }
func (b *Bound) IsTerminal() bool { return false }
func (b *Bound) Touch()           {}
func (b *Bound) String() string   { return b.ident }
func (b *Bound) sealed()          {}

// Identifier returns the registry identifier of the bound.
func (b *Bound) Identifier() string { return b.ident }

// Holds evaluates the predicate at pos.
func (b *Bound) Holds(input []rune, pos int) bool { return b.fn(input, pos) }
