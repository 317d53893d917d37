package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	Search bool
	Quiet  bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <automaton> <input...>",
		Short: "Check whether inputs are accepted as a whole",
		Long: `Check each input against the automaton.

By default the whole input must be consumed, as if the expression were
anchored at both ends. With --search any match inside the input counts.
Exits 1 if any input is rejected.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, cmd, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVarP(&opts.Search, "search", "s", false, "accept inputs that merely contain a match")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print nothing, report through the exit code")

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *CheckOptions, cmd *cobra.Command, ref string, args []string) error {
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}

	check := p.CheckString
	if opts.Search {
		check = p.MatchString
	}

	rejected := 0
	for _, in := range args {
		ok := check(in)
		if !ok {
			rejected++
		}
		if !opts.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", verdict(ok), in)
		}
	}
	rootOpts.logger.Log("checked %d inputs, %d rejected", len(args), rejected)

	if rejected > 0 {
		return errNoMatch
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return "match"
	}
	return "no match"
}
