package moa

import (
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ActionKind is the side effect a memory action has on its variable.
type ActionKind uint8

const (
	// ActionOpen starts capturing at the current position.
	ActionOpen ActionKind = iota
	// ActionClose ends capturing at the current position and freezes content.
	ActionClose
	// ActionReference marks the edge as a backreference consumption.
	ActionReference
)

// String returns the single-letter action-string form.
func (k ActionKind) String() string {
	switch k {
	case ActionOpen:
		return "o"
	case ActionClose:
		return "c"
	case ActionReference:
		return "r"
	default:
		return "?"
	}
}

// MemoryAction is an (action kind, variable) pair attached to an edge.
type MemoryAction struct {
	Kind     ActionKind
	Variable string
}

// Open returns an OPEN action for variable.
func Open(variable string) MemoryAction {
	return MemoryAction{Kind: ActionOpen, Variable: variable}
}

// Close returns a CLOSE action for variable.
func Close(variable string) MemoryAction {
	return MemoryAction{Kind: ActionClose, Variable: variable}
}

// Ref returns a REFERENCE action for variable.
func Ref(variable string) MemoryAction {
	return MemoryAction{Kind: ActionReference, Variable: variable}
}

// String renders the action as o(name), c(name) or r(name).
func (a MemoryAction) String() string {
	return a.Kind.String() + "(" + a.Variable + ")"
}

// canonicalActions deduplicates actions and orders them by kind, then name.
func canonicalActions(actions []MemoryAction) []MemoryAction {
	if len(actions) == 0 {
		return nil
	}
	out := slices.Clone(actions)
	slices.SortFunc(out, func(a, b MemoryAction) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.Variable, b.Variable)
	})
	return slices.Compact(out)
}

// ParseMemoryAction parses the action-string encoding used by the persisted
// format: o(name), c(name) or r(name) with name matching [a-zA-Z0-9]+.
func ParseMemoryAction(s string) (MemoryAction, error) {
	m := NewMatcher(actionGrammar(), s)
	if !m.CheckAsSingleWord() {
		return MemoryAction{}, errors.Wrapf(ErrInvalidMemoryActionSyntax, "%q", s)
	}
	kind, _ := m.NamedVariableContent("action")
	name, _ := m.NamedVariableContent("name")

	a := MemoryAction{Variable: name}
	switch kind {
	case "o":
		a.Kind = ActionOpen
	case "c":
		a.Kind = ActionClose
	case "r":
		a.Kind = ActionReference
	}
	return a, nil
}

// actionGrammar is the automaton for [ocr]\([a-zA-Z0-9]+\) with the action
// letter bound to "action" and the name bound to "name".
var actionGrammar = sync.OnceValue(func() *EdgeGraph {
	vars, err := NewVariableTable("action", "name")
	if err != nil {
		panic(err)
	}
	alnum := NewCodePointSet(Range{'0', '9'}, Range{'A', 'Z'}, Range{'a', 'z'})

	g := NewEdgeGraph(vars)
	for _, s := range []State{
		NewSet(1, NewCodePointSet(Range{'c', 'c'}, Range{'o', 'o'}, Range{'r', 'r'}), "[ocr]"),
		NewLiteral(2, "("),
		NewSet(3, alnum, "[a-zA-Z0-9]"),
		NewLiteral(4, ")"),
	} {
		mustSucceed(g.AddState(s))
	}
	mustSucceed(g.AddEdges(SourceIndex, NewEdge(1, Open("action"))))
	mustSucceed(g.AddEdges(1, NewEdge(2, Close("action"))))
	mustSucceed(g.AddEdges(2, NewEdge(3, Open("name"))))
	mustSucceed(g.AddEdges(3, NewEdge(3), NewEdge(4, Close("name"))))
	mustSucceed(g.AddEdges(4, NewEdge(SinkIndex)))
	mustSucceed(g.Freeze())
	return g
})

func mustSucceed(err error) {
	if err != nil {
		panic(err)
	}
}
