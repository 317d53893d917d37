package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage named automata",
		Long: `Store automata under a name so other commands can refer to them
as @name. The catalog lives in the SQLite database given by --db.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put <name> <automaton>",
		Short: "Store an automaton under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogPut(rootOpts, cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored automaton as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogGet(rootOpts, cmd, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored automata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Remove a stored automaton",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogRm(rootOpts, cmd, args[0])
		},
	})

	return cmd
}

func runCatalogPut(rootOpts *RootOptions, cmd *cobra.Command, name, ref string) error {
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}
	store, err := rootOpts.catalog()
	if err != nil {
		return err
	}
	if err := store.Put(name, p); err != nil {
		return WrapExitError(ExitCommandError, "storing "+name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored @%s\n", name)
	return nil
}

func runCatalogGet(rootOpts *RootOptions, cmd *cobra.Command, name string) error {
	p, err := rootOpts.loadPattern(CatalogPrefix + name)
	if err != nil {
		return err
	}
	data, err := p.MarshalIndent("", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "marshal", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

func runCatalogList(rootOpts *RootOptions, cmd *cobra.Command) error {
	store, err := rootOpts.catalog()
	if err != nil {
		return err
	}
	entries, err := store.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "listing catalog", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATES\tVARS\tUPDATED\tREGEX")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", e.Name, e.States, e.Variables, humanize.Time(e.UpdatedAt), e.Regex)
	}
	return w.Flush()
}

func runCatalogRm(rootOpts *RootOptions, cmd *cobra.Command, name string) error {
	store, err := rootOpts.catalog()
	if err != nil {
		return err
	}
	if err := store.Delete(name); err != nil {
		return WrapExitError(ExitCommandError, "removing "+name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed @%s\n", name)
	return nil
}
