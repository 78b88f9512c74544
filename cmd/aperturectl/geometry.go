package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

var geometryList bool

func init() {
	cmd := newGeometryCmd()
	cmd.Flags().BoolVarP(&geometryList, "list", "l", false, "List the available presets")
	rootCmd.AddCommand(cmd)
}

func newGeometryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geometry [name]",
		Short: "Describe a geometry preset and its register layout",
		Long: `The geometry command prints a preset's masters, targets, largest
region and register bit layout.

Example:
  aperturectl geometry mpfs
  aperturectl geometry --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeometry(args)
		},
	}
}

func runGeometry(args []string) error {
	if geometryList {
		if jsonOut {
			return printJSON(geometry.Names())
		}
		for _, name := range geometry.Names() {
			g, err := geometry.Lookup(name)
			if err != nil {
				return err
			}
			printInfo("%s\n", g.Describe())
		}
		return nil
	}

	name := geometryName
	if len(args) == 1 {
		name = args[0]
	}
	g, err := geometry.Lookup(name)
	if err != nil {
		return err
	}
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(g, os.Stdout, opts).PrintGeometry()
}
