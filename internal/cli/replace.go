package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/s4ke/moar/pkg/moa"
	"github.com/s4ke/moar/replace"
	"github.com/s4ke/moar/stream"
)

// ReplaceOptions holds flags for the replace command.
type ReplaceOptions struct {
	With string
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplaceOptions{}

	cmd := &cobra.Command{
		Use:   "replace <automaton> [file...] --with <template>",
		Short: "Rewrite every match in the input",
		Long: `Copy the input files to standard output with every match replaced.

The template may reference the whole match ($0), a variable by
occurrence ($1, ${2}) or by name ($name, ${name}); $$ is a literal
dollar sign. Reads standard input when no file is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(rootOpts, opts, cmd, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&opts.With, "with", "w", "", "replacement template")
	_ = cmd.MarkFlagRequired("with")

	return cmd
}

func runReplace(rootOpts *RootOptions, opts *ReplaceOptions, cmd *cobra.Command, ref string, files []string) error {
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}

	tmpl, err := replace.Parse(opts.With)
	if err == nil {
		tmpl, err = tmpl.Resolve(p.Graph().Variables())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid template", err)
	}
	rootOpts.logger.Log("template: %d segments", len(tmpl.Segments))

	m := p.Matcher("")
	expand := func(m *moa.Matcher) string { return tmpl.Expand(replace.FromMatcher(m)) }
	for _, in := range inputs(files, cmd.InOrStdin()) {
		rc, err := in.open()
		if err != nil {
			return WrapExitError(ExitCommandError, "opening "+in.name, err)
		}
		r := stream.Replace(ctxReader{ctx: cmd.Context(), r: rc}, m, expand)
		_, err = io.Copy(cmd.OutOrStdout(), r)
		rc.Close()
		if err != nil {
			return wrapRead(err, in.name)
		}
	}
	return nil
}
