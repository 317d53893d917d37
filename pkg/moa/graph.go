// Package moa implements Memory-Occupied Automata: deterministic automata
// whose transitions may replay previously captured input, which makes
// backreferences matchable in a single pass without backtracking.
//
// An EdgeGraph is built once (states, then determinism-checked edge groups),
// frozen, and then shared read-only by any number of Matchers. Each Matcher
// owns its cursor and capture table.
package moa

import (
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// StepResult is the outcome of a single transition attempt.
type StepResult uint8

const (
	// Rejected means no outgoing edge accepted the token.
	Rejected StepResult = iota
	// Consumed means a transition was taken.
	Consumed
)

func (r StepResult) String() string {
	if r == Consumed {
		return "CONSUMED"
	}
	return "REJECTED"
}

// StateHolder is whatever carries the current automaton state across steps.
type StateHolder interface {
	State() State
	SetState(State)
}

// Edge is an outgoing transition to the state with index To, carrying a set
// of memory actions.
type Edge struct {
	To      int
	Actions []MemoryAction
}

// NewEdge returns an edge to the state with index to.
func NewEdge(to int, actions ...MemoryAction) Edge {
	return Edge{To: to, Actions: actions}
}

// edge is the resolved, committed form of an Edge.
type edge struct {
	dest    State
	actions []MemoryAction
	opens   []int // variable slots, 0-based
	closes  []int
	ref     int // slot of the referenced variable, -1 unless dest is a *Reference
}

// EdgeGraph is the automaton: the two sentinels, every other state keyed by
// index, and the outgoing edges of each state.
type EdgeGraph struct {
	vars   *VariableTable
	states map[int]State
	out    map[int][]*edge
	frozen bool
}

// NewEdgeGraph returns a graph holding only Source and Sink. vars declares
// the variables that reference states and memory actions may name; nil
// declares none.
func NewEdgeGraph(vars *VariableTable) *EdgeGraph {
	if vars == nil {
		vars, _ = NewVariableTable()
	}
	return &EdgeGraph{
		vars: vars,
		states: map[int]State{
			SourceIndex: Source,
			SinkIndex:   Sink,
		},
		out: make(map[int][]*edge),
	}
}

// Variables returns the declared variable table.
func (g *EdgeGraph) Variables() *VariableTable { return g.vars }

// Frozen reports whether construction has completed.
func (g *EdgeGraph) Frozen() bool { return g.frozen }

// NumStates counts all states including the sentinels.
func (g *EdgeGraph) NumStates() int { return len(g.states) }

// State returns the state registered under idx.
func (g *EdgeGraph) State(idx int) (State, bool) {
	s, ok := g.states[idx]
	return s, ok
}

// States returns every state ordered by index, sentinels first.
func (g *EdgeGraph) States() []State {
	out := make([]State, 0, len(g.states))
	for _, s := range g.states {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b State) int { return a.Index() - b.Index() })
	return out
}

// Edges returns the outgoing edges of the state with index from.
func (g *EdgeGraph) Edges(from int) []Edge {
	es := g.out[from]
	out := make([]Edge, len(es))
	for i, e := range es {
		out[i] = Edge{To: e.dest.Index(), Actions: slices.Clone(e.actions)}
	}
	return out
}

// AddState registers a state under its index.
func (g *EdgeGraph) AddState(s State) error {
	if g.frozen {
		return ErrFrozen
	}
	if s == nil {
		return errors.Wrap(ErrMalformedAutomaton, "nil state")
	}
	if st, ok := s.(*Sentinel); ok {
		return errors.Wrapf(ErrMalformedAutomaton, "sentinel %s cannot be added", st)
	}
	if _, dup := g.states[s.Index()]; dup {
		return errors.Wrapf(ErrDuplicateState, "index %d", s.Index())
	}

	switch st := s.(type) {
	case *Literal:
		if len(st.token) == 0 {
			return errors.Wrapf(ErrMalformedAutomaton, "state %d: empty literal", st.idx)
		}
	case *Set:
		if st.set == nil || st.width < 1 {
			return errors.Wrapf(ErrMalformedAutomaton, "state %d: set needs a code-point set and a positive width", st.idx)
		}
	case *Reference:
		if !g.vars.Has(st.variable) {
			return errors.Wrapf(ErrUnknownVariableReference, "state %d references %q", st.idx, st.variable)
		}
	case *Bound:
		if st.fn == nil {
			return errors.Wrapf(ErrMalformedAutomaton, "state %d: unresolved bound %q", st.idx, st.ident)
		}
	}

	g.states[s.Index()] = s
	return nil
}

// AddEdges registers outgoing edges of the state with index from. The
// resulting outgoing set must satisfy the determinism invariant; otherwise
// nothing is committed and a *NonDeterminismError is returned.
func (g *EdgeGraph) AddEdges(from int, edges ...Edge) error {
	if g.frozen {
		return ErrFrozen
	}
	src, ok := g.states[from]
	if !ok {
		return errors.Wrapf(ErrUnknownStateReference, "edge source %d", from)
	}
	if src == Sink {
		return errors.Wrap(ErrMalformedAutomaton, "edges cannot leave the accepting state")
	}

	candidate := slices.Clone(g.out[from])
	for _, e := range edges {
		resolved, err := g.resolve(from, e)
		if err != nil {
			return err
		}
		candidate = append(candidate, resolved)
	}
	if err := checkLocalDeterminism(from, candidate); err != nil {
		return err
	}

	// consuming edges are tried before zero-width ones
	slices.SortStableFunc(candidate, func(a, b *edge) int {
		return boolRank(isZeroWidth(a.dest)) - boolRank(isZeroWidth(b.dest))
	})
	g.out[from] = candidate
	if glog.V(3) {
		glog.Infof("moa: state %d now has %d outgoing edges", from, len(candidate))
	}
	return nil
}

func (g *EdgeGraph) resolve(from int, e Edge) (*edge, error) {
	dest, ok := g.states[e.To]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStateReference, "edge %d -> %d: destination", from, e.To)
	}
	if dest == Source {
		return nil, errors.Wrapf(ErrMalformedAutomaton, "edge %d -> %d: the initial state has no incoming edges", from, e.To)
	}

	r := &edge{dest: dest, actions: canonicalActions(e.Actions), ref: -1}
	if ref, isRef := dest.(*Reference); isRef {
		occ, _ := g.vars.Occurrence(ref.variable)
		r.ref = occ - 1
	}
	for _, a := range r.actions {
		occ, ok := g.vars.Occurrence(a.Variable)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownVariableReference, "edge %d -> %d: action %s", from, e.To, a)
		}
		switch a.Kind {
		case ActionOpen:
			r.opens = append(r.opens, occ-1)
		case ActionClose:
			r.closes = append(r.closes, occ-1)
		case ActionReference:
			ref, isRef := dest.(*Reference)
			if !isRef || ref.variable != a.Variable {
				return nil, errors.Wrapf(ErrMalformedAutomaton,
					"edge %d -> %d: %s requires a reference state for %q", from, e.To, a, a.Variable)
			}
		default:
			return nil, errors.Wrapf(ErrInvalidMemoryActionSyntax, "edge %d -> %d: action kind %d", from, e.To, a.Kind)
		}
	}
	return r, nil
}

// Freeze runs the graph-wide determinism checks and marks the graph
// immutable. Freezing a frozen graph is a no-op.
func (g *EdgeGraph) Freeze() error {
	if g.frozen {
		return nil
	}
	if err := g.checkMasking(); err != nil {
		return err
	}
	g.frozen = true
	if glog.V(2) {
		edges := 0
		for _, es := range g.out {
			edges += len(es)
		}
		glog.Infof("moa: froze graph with %d states, %d edges, %d variables",
			len(g.states), edges, g.vars.Len())
	}
	return nil
}

// MaximalNextTokenLength is the width of the token to attempt next from the
// holder's state: the largest width among its outgoing edges, where a
// reference is as wide as the variable's captured content and bounds and
// the accepting state are zero wide.
func (g *EdgeGraph) MaximalNextTokenLength(h StateHolder, vars *Variables) int {
	max := 0
	for _, e := range g.out[h.State().Index()] {
		if w := e.width(vars); w > max {
			max = w
		}
	}
	return max
}

// Step consumes tok from the holder's state. On success the holder moves to
// the destination, the edge's memory actions are applied, and Consumed is
// returned. On Rejected nothing changes.
func (g *EdgeGraph) Step(h StateHolder, tok *Token, vars *Variables) StepResult {
	for _, e := range g.out[h.State().Index()] {
		if !e.accepts(tok, vars) {
			continue
		}
		for _, slot := range e.closes {
			vars.slot(slot).close(tok.start)
		}
		for _, slot := range e.opens {
			vars.slot(slot).open(tok.start)
		}
		e.dest.Touch()
		h.SetState(e.dest)
		return Consumed
	}
	return Rejected
}

func (e *edge) width(vars *Variables) int {
	switch d := e.dest.(type) {
	case *Literal:
		return len(d.token)
	case *Set:
		return d.width
	case *Reference:
		return vars.slot(e.ref).length()
	default:
		return 0
	}
}

func (e *edge) accepts(tok *Token, vars *Variables) bool {
	switch d := e.dest.(type) {
	case *Literal:
		return tok.Equal(d.token)
	case *Set:
		if tok.Len() != d.width {
			return false
		}
		for i := 0; i < d.width; i++ {
			if !d.set.Contains(tok.At(i)) {
				return false
			}
		}
		return true
	case *Reference:
		return tok.Equal(vars.runes(vars.slot(e.ref)))
	case *Bound:
		return tok.Len() == 0 && d.fn(tok.input, tok.start)
	case *Sentinel:
		return d == Sink && tok.Len() == 0
	default:
		return false
	}
}

func isZeroWidth(s State) bool {
	switch s.(type) {
	case *Bound, *Sentinel:
		return true
	default:
		return false
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
