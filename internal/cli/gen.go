package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s4ke/moar/internal/codegen"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	Name       string
	Package    string
	Output     string
	TestInputs []string
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{}

	cmd := &cobra.Command{
		Use:   "gen <automaton> --name <Name> --package <pkg> --output <file.go>",
		Short: "Generate Go helpers embedding an automaton",
		Long: `Generate a Go file that embeds the automaton and exposes
<Name>MatchString, <Name>FindString, <Name>ReplaceFirst and
<Name>FindStringResult. With --test-input a test file pinning the
current results for those inputs is written next to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "prefix for generated identifiers")
	cmd.Flags().StringVar(&opts.Package, "package", "main", "package of the generated file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")
	cmd.Flags().StringArrayVar(&opts.TestInputs, "test-input", nil, "input for the generated test file (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runGen(rootOpts *RootOptions, opts *GenOptions, cmd *cobra.Command, ref string) error {
	p, err := rootOpts.loadPattern(ref)
	if err != nil {
		return err
	}

	cfg := codegen.Config{
		Name:             opts.Name,
		Package:          opts.Package,
		OutputFile:       opts.Output,
		Pattern:          p,
		GenerateTestFile: len(opts.TestInputs) > 0,
		TestFileInputs:   opts.TestInputs,
	}
	rootOpts.logger.Section("Code Generation")
	rootOpts.logger.Log("name: %s, package: %s", cfg.Name, cfg.Package)
	if err := codegen.Generate(cfg); err != nil {
		return WrapExitError(ExitCommandError, "generating code", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.OutputFile)
	if cfg.GenerateTestFile {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", codegen.TestFileName(cfg.OutputFile))
	}
	return nil
}
