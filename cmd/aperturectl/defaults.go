package main

import (
	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
)

var defaultsFormat string

func init() {
	cmd := newDefaultsCmd()
	cmd.Flags().StringVarP(&defaultsFormat, "format", "f", "yaml", "Policy format: yaml, json or text")
	rootCmd.AddCommand(cmd)
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in policy for every master",
		Long: `The defaults command prints the configuration a master receives when
a policy leaves it out: one enabled region spanning the whole address
space with full rights.

Example:
  aperturectl defaults --geometry mpfs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefaults()
		},
	}
}

func runDefaults() error {
	g, err := geometry.Lookup(geometryName)
	if err != nil {
		return err
	}
	data, err := renderConfiguration(g, newCompiler(g).DefaultConfiguration(), outputFormat(defaultsFormat))
	if err != nil {
		return err
	}
	return emit(data, "")
}
