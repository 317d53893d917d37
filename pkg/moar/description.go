package moar

import (
	"encoding/json"
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/s4ke/moar/pkg/moa"
)

// Description is the persisted form of an automaton. The same struct is
// read and written as JSON and as YAML.
type Description struct {
	// Vars lists the variable names; their order is the occurrence order.
	Vars   []string           `json:"vars,omitempty" yaml:"vars,omitempty"`
	States []StateDescription `json:"states" yaml:"states"`
	Edges  []EdgeDescription  `json:"edges" yaml:"edges"`
	// Regex is informational: the expression the automaton was built from.
	Regex string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// StateDescription holds exactly one of Name (literal), Ref (variable
// reference), Bound or Set. Idx is required; it is a pointer so that a
// missing index is told apart from index 0.
type StateDescription struct {
	Idx   *int   `json:"idx" yaml:"idx"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Ref   string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Bound string `json:"bound,omitempty" yaml:"bound,omitempty"`
	Set   string `json:"set,omitempty" yaml:"set,omitempty"`
	// Width applies to Set states only; zero means one code point.
	Width int `json:"width,omitempty" yaml:"width,omitempty"`
}

// EdgeDescription is one edge with its action strings (o(x), c(x), r(x)).
// From and To are required.
type EdgeDescription struct {
	From          *int     `json:"from" yaml:"from"`
	To            *int     `json:"to" yaml:"to"`
	MemoryActions []string `json:"memoryActions,omitempty" yaml:"memoryActions,omitempty"`
}

// ParseDescription decodes a JSON description.
func ParseDescription(data []byte) (*Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "decode json: %v", err)
	}
	return &d, nil
}

// ParseDescriptionYAML decodes a YAML description.
func ParseDescriptionYAML(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "decode yaml: %v", err)
	}
	return &d, nil
}

// Describe projects a graph onto its persisted form. Sentinels are implicit,
// states are ordered by index and edges by source.
func Describe(g *moa.EdgeGraph, regex string) *Description {
	d := &Description{
		Vars:   g.Variables().Names(),
		States: []StateDescription{},
		Edges:  []EdgeDescription{},
		Regex:  regex,
	}
	if len(d.Vars) == 0 {
		d.Vars = nil
	}

	states := g.States()
	for _, s := range states {
		sd := StateDescription{Idx: index(s.Index())}
		switch st := s.(type) {
		case *moa.Sentinel:
			continue
		case *moa.Literal:
			sd.Name = st.Token()
		case *moa.Reference:
			sd.Ref = st.Variable()
		case *moa.Bound:
			sd.Bound = st.Identifier()
		case *moa.Set:
			sd.Set = st.String()
			if st.Width() != 1 {
				sd.Width = st.Width()
			}
		}
		d.States = append(d.States, sd)
	}

	for _, s := range states {
		for _, e := range g.Edges(s.Index()) {
			ed := EdgeDescription{From: index(s.Index()), To: index(e.To)}
			for _, a := range e.Actions {
				ed.MemoryActions = append(ed.MemoryActions, a.String())
			}
			d.Edges = append(d.Edges, ed)
		}
	}
	return d
}

// Build validates the description and constructs the frozen graph it
// describes. Nothing is returned on error.
func (d *Description) Build() (*moa.EdgeGraph, error) {
	if d.States == nil {
		return nil, errors.Wrap(moa.ErrMalformedAutomaton, "missing states")
	}
	if d.Edges == nil {
		return nil, errors.Wrap(moa.ErrMalformedAutomaton, "missing edges")
	}

	vars, err := moa.NewVariableTable(d.Vars...)
	if err != nil {
		return nil, err
	}
	g := moa.NewEdgeGraph(vars)

	for i, sd := range d.States {
		if sd.Idx == nil {
			return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "state %d: idx is required", i)
		}
		s, err := sd.state()
		if err != nil {
			return nil, err
		}
		if err := g.AddState(s); err != nil {
			return nil, err
		}
	}

	grouped := make(map[int][]moa.Edge)
	for i, ed := range d.Edges {
		if ed.From == nil || ed.To == nil {
			return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "edge %d: from and to are required", i)
		}
		from, to := *ed.From, *ed.To
		e := moa.NewEdge(to)
		for _, raw := range ed.MemoryActions {
			a, err := moa.ParseMemoryAction(raw)
			if err != nil {
				return nil, errors.WithMessagef(err, "edge %d -> %d", from, to)
			}
			e.Actions = append(e.Actions, a)
		}
		grouped[from] = append(grouped[from], e)
	}
	sources := make([]int, 0, len(grouped))
	for from := range grouped {
		sources = append(sources, from)
	}
	slices.Sort(sources)
	for _, from := range sources {
		if err := g.AddEdges(from, grouped[from]...); err != nil {
			return nil, err
		}
	}

	if err := g.Freeze(); err != nil {
		return nil, err
	}
	if glog.V(1) {
		glog.Infof("moar: built automaton with %d states, %d edges, %d variables",
			len(d.States), len(d.Edges), len(d.Vars))
	}
	return g, nil
}

// state builds the described state. Idx must be set.
func (sd StateDescription) state() (moa.State, error) {
	idx := *sd.Idx
	set := 0
	for _, v := range []string{sd.Name, sd.Ref, sd.Bound, sd.Set} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.Wrapf(moa.ErrMalformedAutomaton,
			"state %d must have exactly one of name, ref, bound or set", idx)
	}
	if sd.Width != 0 && sd.Set == "" {
		return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "state %d: width is only valid for sets", idx)
	}

	switch {
	case sd.Name != "":
		return moa.NewLiteral(idx, sd.Name), nil
	case sd.Ref != "":
		return moa.NewReference(idx, sd.Ref), nil
	case sd.Bound != "":
		return moa.NewBound(idx, sd.Bound)
	default:
		cps, err := moa.ParseSet(sd.Set)
		if err != nil {
			return nil, errors.WithMessagef(err, "state %d", idx)
		}
		width := sd.Width
		if width == 0 {
			width = 1
		}
		if width < 0 {
			return nil, errors.Wrapf(moa.ErrMalformedAutomaton, "state %d: negative width", idx)
		}
		return moa.NewSetWidth(idx, width, cps, sd.Set), nil
	}
}

func index(i int) *int { return &i }
