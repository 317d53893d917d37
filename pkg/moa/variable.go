package moa

import (
	"github.com/pkg/errors"
)

// VariableTable is the immutable declaration of an automaton's variables.
// Occurrence numbers are 1-based and follow declaration order, mirroring
// capture-group numbering.
type VariableTable struct {
	names  []string
	byName map[string]int
}

// NewVariableTable declares the given variables in occurrence order.
// Names must match [a-zA-Z0-9]+ and be unique.
func NewVariableTable(names ...string) (*VariableTable, error) {
	t := &VariableTable{
		names:  make([]string, 0, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if !validVariableName(name) {
			return nil, errors.Wrapf(ErrMalformedAutomaton, "invalid variable name %q", name)
		}
		if _, dup := t.byName[name]; dup {
			return nil, errors.Wrapf(ErrMalformedAutomaton, "variable %q declared twice", name)
		}
		t.names = append(t.names, name)
		t.byName[name] = len(t.names)
	}
	return t, nil
}

// Len is the number of declared variables.
func (t *VariableTable) Len() int { return len(t.names) }

// Names returns the variable names in occurrence order.
func (t *VariableTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether name is declared.
func (t *VariableTable) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Occurrence returns the 1-based occurrence of name.
func (t *VariableTable) Occurrence(name string) (int, bool) {
	occ, ok := t.byName[name]
	return occ, ok
}

// NewVariables creates a fresh, empty capture table for one matcher.
func (t *VariableTable) NewVariables() *Variables {
	vs := &Variables{
		table: t,
		slots: make([]Variable, len(t.names)),
	}
	for i, name := range t.names {
		vs.slots[i] = Variable{name: name, occurrence: i + 1}
		vs.slots[i].Reset()
	}
	return vs
}

func validVariableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(('0' <= r && r <= '9') || ('A' <= r && r <= 'Z') || ('a' <= r && r <= 'z')) {
			return false
		}
	}
	return true
}

// Variable is a capture slot. Its content is the input span consumed
// between an OPEN and the matching CLOSE action.
type Variable struct {
	name       string
	occurrence int

	openedAt int // -1 when not open
	start    int
	end      int
	captured bool
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Occurrence returns the 1-based occurrence number.
func (v *Variable) Occurrence() int { return v.occurrence }

// Captured reports whether a CLOSE action has frozen content.
func (v *Variable) Captured() bool { return v.captured }

// Span returns the captured input span [start, end). Both are zero when
// nothing was captured.
func (v *Variable) Span() (start, end int) {
	if !v.captured {
		return 0, 0
	}
	return v.start, v.end
}

// Reset clears captured content.
func (v *Variable) Reset() {
	v.openedAt = -1
	v.start, v.end = 0, 0
	v.captured = false
}

func (v *Variable) open(pos int) {
	v.openedAt = pos
}

func (v *Variable) close(pos int) {
	if v.openedAt < 0 {
		return
	}
	v.start, v.end = v.openedAt, pos
	v.captured = true
	v.openedAt = -1
}

func (v *Variable) length() int {
	if !v.captured {
		return 0
	}
	return v.end - v.start
}

// Variables is the mutable capture table owned by a single matcher. Slots
// are dense and indexed by occurrence.
type Variables struct {
	table *VariableTable
	slots []Variable
	input []rune
}

// Bind points the captures at the input they will be read from.
func (vs *Variables) Bind(input []rune) {
	vs.input = input
}

// Reset clears every variable.
func (vs *Variables) Reset() {
	for i := range vs.slots {
		vs.slots[i].Reset()
	}
}

// Len is the number of variables.
func (vs *Variables) Len() int { return len(vs.slots) }

// ByOccurrence returns the variable with the given 1-based occurrence, or nil.
func (vs *Variables) ByOccurrence(occurrence int) *Variable {
	if occurrence < 1 || occurrence > len(vs.slots) {
		return nil
	}
	return &vs.slots[occurrence-1]
}

// ByName returns the named variable, or nil.
func (vs *Variables) ByName(name string) *Variable {
	occ, ok := vs.table.byName[name]
	if !ok {
		return nil
	}
	return &vs.slots[occ-1]
}

// Content returns the captured code points of v as a string.
func (vs *Variables) Content(v *Variable) string {
	return string(vs.runes(v))
}

func (vs *Variables) runes(v *Variable) []rune {
	if !v.captured || v.end > len(vs.input) {
		return nil
	}
	return vs.input[v.start:v.end]
}

func (vs *Variables) slot(i int) *Variable {
	return &vs.slots[i]
}
