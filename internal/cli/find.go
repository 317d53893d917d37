package cli

import (
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s4ke/moar/pkg/moa"
	"github.com/s4ke/moar/stream"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	Invert bool
	Vars   bool
	Jobs   int
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{}

	cmd := &cobra.Command{
		Use:   "find <automaton> [file...]",
		Short: "Print lines containing a match",
		Long: `Print every line of the input files that contains a match, like grep.

With --vars each match is printed on its own line followed by the
content of every variable. Files are scanned concurrently; output keeps
the order of the arguments. Reads standard input when no file is given.
Exits 1 if nothing was printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(rootOpts, opts, cmd, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVar(&opts.Invert, "invert", false, "print lines without a match")
	cmd.Flags().BoolVar(&opts.Vars, "vars", false, "print each match with its variables")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "files scanned in parallel")

	return cmd
}

func runFind(rootOpts *RootOptions, opts *FindOptions, cmd *cobra.Command, ref string, files []string) error {
	if opts.Invert && opts.Vars {
		return NewExitError(ExitCommandError, "--invert and --vars cannot be combined")
	}
	if opts.Jobs < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--jobs must be positive, got %d", opts.Jobs))
	}
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}

	ins := inputs(files, cmd.InOrStdin())
	results := make([]bytes.Buffer, len(ins))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Jobs)
	for i, in := range ins {
		g.Go(func() error {
			rc, err := in.open()
			if err != nil {
				return WrapExitError(ExitCommandError, "opening "+in.name, err)
			}
			defer rc.Close()

			m := p.Matcher("")
			var r io.Reader = ctxReader{ctx: ctx, r: rc}
			if opts.Vars {
				r = stream.LineTransform(r, matchesWithVars(m))
			} else {
				r = stream.Filter(r, m, opts.Invert)
			}
			if len(ins) > 1 {
				r = stream.LineTransform(r, prefixLine(in.name))
			}
			if _, err := io.Copy(&results[i], r); err != nil {
				return wrapRead(err, in.name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var printed int
	for i := range results {
		n, err := results[i].WriteTo(cmd.OutOrStdout())
		if err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		printed += int(n)
	}
	rootOpts.logger.Log("scanned %d inputs, printed %s", len(ins), humanize.Bytes(uint64(printed)))

	if printed == 0 {
		return errNoMatch
	}
	return nil
}

// matchesWithVars turns a line into one output line per match: the match,
// then name=content for each captured variable, tab separated.
func matchesWithVars(m *moa.Matcher) func(line []byte) []byte {
	names := m.Graph().Variables().Names()
	return func(line []byte) []byte {
		m.Reuse(string(bytes.TrimSuffix(line, []byte("\n"))))
		var out []byte
		m.EachMatch(-1, func(m *moa.Matcher) {
			out = append(out, m.Match()...)
			for _, name := range names {
				if content, err := m.NamedVariableContent(name); err == nil {
					out = fmt.Appendf(out, "\t%s=%s", name, content)
				}
			}
			out = append(out, '\n')
		})
		return out
	}
}

func prefixLine(name string) func(line []byte) []byte {
	prefix := []byte(name + ":")
	return func(line []byte) []byte {
		return append(append([]byte{}, prefix...), line...)
	}
}
