package moa

import (
	"maps"
	"slices"
)

// A matcher never backtracks, so from any state at most one outgoing edge
// may accept a given token. The rules enforced here are conservative: they
// compare first symbols only, which rejects some automata that a full
// prefix analysis would accept.

// checkLocalDeterminism validates the complete outgoing edge set of a state.
func checkLocalDeterminism(from int, edges []*edge) error {
	var (
		fixed     []*edge
		refs      []*edge
		zeroWidth []*edge
	)
	for _, e := range edges {
		switch e.dest.(type) {
		case *Literal, *Set:
			fixed = append(fixed, e)
		case *Reference:
			refs = append(refs, e)
		default:
			zeroWidth = append(zeroWidth, e)
		}
	}

	if len(zeroWidth) > 1 {
		return nonDeterministic(from, "zero-width edges to %s and %s", zeroWidth[0].dest, zeroWidth[1].dest)
	}
	if len(refs) > 1 {
		return nonDeterministic(from, "two backreference edges (%s, %s)", refs[0].dest, refs[1].dest)
	}
	if len(refs) == 1 && len(fixed) > 0 {
		return nonDeterministic(from, "backreference %s competes with %q", refs[0].dest, fixed[0].dest)
	}

	for i, a := range fixed {
		wa := fixedWidth(a.dest)
		fa := firstSymbols(a.dest)
		for _, b := range fixed[i+1:] {
			if wb := fixedWidth(b.dest); wa != wb {
				return nonDeterministic(from, "edges to %q and %q consume %d and %d code points", a.dest, b.dest, wa, wb)
			}
			if fa.Intersects(firstSymbols(b.dest)) {
				return nonDeterministic(from, "edges to %q and %q accept a common first symbol", a.dest, b.dest)
			}
		}
	}
	return nil
}

// checkMasking rejects a zero-width edge into a bound whose zero-width
// closure leads to consuming edges that the source's own consuming edges
// would shadow. Consuming edges are always tried first, so the path through
// the bound could never be taken for those symbols.
func (g *EdgeGraph) checkMasking() error {
	for _, from := range slices.Sorted(maps.Keys(g.out)) {
		edges := g.out[from]
		own, ownRef := g.consumingSymbols(edges)
		if own.IsEmpty() && !ownRef {
			continue
		}
		for _, e := range edges {
			b, isBound := e.dest.(*Bound)
			if !isBound {
				continue
			}
			reach, reachRef := g.closureSymbols(b)
			switch {
			case reachRef:
				return nonDeterministic(from, "bound %s leads to a backreference that competes with consuming edges", b)
			case ownRef && !reach.IsEmpty():
				return nonDeterministic(from, "bound %s leads to consuming edges that compete with a backreference", b)
			case own.Intersects(reach):
				return nonDeterministic(from, "consuming edges mask the path through bound %s", b)
			}
		}
	}
	return nil
}

func (g *EdgeGraph) consumingSymbols(edges []*edge) (*CodePointSet, bool) {
	set := NewCodePointSet()
	ref := false
	for _, e := range edges {
		switch e.dest.(type) {
		case *Literal, *Set:
			set = set.Union(firstSymbols(e.dest))
		case *Reference:
			ref = true
		}
	}
	return set, ref
}

// closureSymbols collects the first symbols of every consuming edge that
// leaves a state reachable from start through zero-width edges only.
func (g *EdgeGraph) closureSymbols(start State) (*CodePointSet, bool) {
	set := NewCodePointSet()
	ref := false
	seen := map[int]bool{start.Index(): true}
	queue := []State{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		edges := g.out[s.Index()]
		syms, r := g.consumingSymbols(edges)
		set = set.Union(syms)
		ref = ref || r
		for _, e := range edges {
			if _, isBound := e.dest.(*Bound); isBound && !seen[e.dest.Index()] {
				seen[e.dest.Index()] = true
				queue = append(queue, e.dest)
			}
		}
	}
	return set, ref
}

func firstSymbols(s State) *CodePointSet {
	switch st := s.(type) {
	case *Literal:
		return SingleCodePoint(st.token[0])
	case *Set:
		return st.set
	default:
		return NewCodePointSet()
	}
}

func fixedWidth(s State) int {
	switch st := s.(type) {
	case *Literal:
		return len(st.token)
	case *Set:
		return st.width
	default:
		return 0
	}
}
