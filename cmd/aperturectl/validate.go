package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/validate"
)

var validateStrict bool

func init() {
	cmd := newValidateCmd()
	cmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	rootCmd.AddCommand(cmd)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <policy.yaml>",
		Short: "Check a policy without compiling it",
		Long: `The validate command checks every master's regions against the
geometry and reports findings that do not block compilation:

  shadowed         a region fully covered by an earlier one never matches
  disabled-rights  a disabled region lists permissions it cannot grant
  no-access        an enabled region grants nothing

Example:
  aperturectl validate policy.yaml
  aperturectl validate policy.yaml --strict --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
}

func runValidate(args []string) error {
	path := args[0]

	printVerbose("Validating policy: %s\n", path)

	g, _, cfg, err := loadPolicy(path)
	if err != nil {
		return err
	}
	report := validate.New(g).Report(cfg)

	if jsonOut || !quiet {
		opts := printer.DefaultOptions()
		if jsonOut {
			opts.Format = printer.FormatJSON
		}
		if !report.HasAnyIssues() && !jsonOut {
			printInfo("✓ %s is valid for geometry %s\n", path, g.Name())
		} else if err := printer.New(g, os.Stdout, opts).PrintDiagnostics(report); err != nil {
			return err
		}
	}

	if report.HasErrors() {
		return fmt.Errorf("%s: %d error(s)", path, report.Summary.Errors)
	}
	if validateStrict && report.Summary.Warnings > 0 {
		return fmt.Errorf("%s: %d warning(s) with --strict", path, report.Summary.Warnings)
	}
	return nil
}
