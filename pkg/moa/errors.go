package moa

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds reported while building, loading or querying an automaton.
// They are wrapped with context; use errors.Is to tell them apart.
var (
	// ErrMalformedAutomaton reports a structurally invalid state, edge or description.
	ErrMalformedAutomaton = errors.New("malformed automaton description")

	// ErrUnknownStateReference reports an edge endpoint that is not registered.
	ErrUnknownStateReference = errors.New("unknown state reference")

	// ErrUnknownVariableReference reports a memory action or reference state
	// naming a variable that is not declared.
	ErrUnknownVariableReference = errors.New("unknown variable reference")

	// ErrInvalidMemoryActionSyntax reports an action string not matching o(name), c(name) or r(name).
	ErrInvalidMemoryActionSyntax = errors.New("invalid memory action syntax")

	// ErrInvalidSetExpression reports a malformed character-class expression.
	ErrInvalidSetExpression = errors.New("invalid set expression")

	// ErrNonDeterministicTransition reports two outgoing edges of one state that
	// could both apply to the same runtime input.
	ErrNonDeterministicTransition = errors.New("non-deterministic transition")

	// ErrUnknownVariable is returned when reading a variable that does not exist.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrDuplicateState reports a state index registered twice.
	ErrDuplicateState = errors.New("duplicate state index")

	// ErrFrozen reports a mutation attempt on a frozen graph.
	ErrFrozen = errors.New("edge graph is frozen")
)

// NonDeterminismError identifies the state whose outgoing edges violate the
// determinism invariant.
type NonDeterminismError struct {
	// State is the index of the offending source state.
	State int
	// Reason describes the conflicting edges.
	Reason string
}

func (e *NonDeterminismError) Error() string {
	return fmt.Sprintf("%v from state %d: %s", ErrNonDeterministicTransition, e.State, e.Reason)
}

// Is makes errors.Is(err, ErrNonDeterministicTransition) hold.
func (e *NonDeterminismError) Is(target error) bool {
	return target == ErrNonDeterministicTransition
}

func nonDeterministic(state int, format string, args ...interface{}) error {
	return &NonDeterminismError{State: state, Reason: fmt.Sprintf(format, args...)}
}
