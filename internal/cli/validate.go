package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/s4ke/moar/pkg/moa"
	"github.com/s4ke/moar/pkg/moar"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Print string // "", "json" or "yaml"
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <automaton>",
		Short: "Load an automaton and report its size",
		Long: `Load an automaton, running every construction check including
determinism, and print a summary. With --print the normalized description
is written instead, sorted by state index and edge source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Print, "print", "", "print the normalized description (json|yaml)")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, cmd *cobra.Command, ref string) error {
	if opts.Print != "" && opts.Print != "json" && opts.Print != "yaml" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --print %q: must be json or yaml", opts.Print))
	}
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.Print {
	case "json":
		data, err := p.MarshalIndent("", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "marshal", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	case "yaml":
		data, err := p.MarshalYAML()
		if err != nil {
			return WrapExitError(ExitCommandError, "marshal", err)
		}
		_, err = out.Write(data)
		return err
	}

	g := p.Graph()
	size, err := p.Marshal()
	if err != nil {
		return WrapExitError(ExitCommandError, "marshal", err)
	}
	fmt.Fprintf(out, "✓ %s valid\n", ref)
	if re := p.Regex(); re != "" {
		fmt.Fprintf(out, "  regex:     %s\n", re)
	}
	fmt.Fprintf(out, "  states:    %s\n", humanize.Comma(int64(g.NumStates())))
	fmt.Fprintf(out, "  edges:     %s\n", humanize.Comma(int64(countEdges(g))))
	fmt.Fprintf(out, "  variables: %s\n", variableList(p))
	fmt.Fprintf(out, "  size:      %s\n", humanize.Bytes(uint64(len(size))))
	return nil
}

func countEdges(g *moa.EdgeGraph) int {
	n := 0
	for _, s := range g.States() {
		n += len(g.Edges(s.Index()))
	}
	return n
}

func variableList(p *moar.Pattern) string {
	vars := p.Variables()
	if len(vars) == 0 {
		return "none"
	}
	s := ""
	for i, v := range vars {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d=%s", i+1, v)
	}
	return s
}
