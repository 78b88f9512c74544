package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/mpfs"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

var (
	aperturesFormat string
	aperturesMaster string
	aperturesPerm   string
)

func init() {
	cmd := newAperturesCmd()
	addBoardFlags(cmd)
	cmd.Flags().StringVarP(&aperturesFormat, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().
		StringVar(&aperturesMaster, "master", "", "Print the aperture windows as this master's policy instead")
	cmd.Flags().StringVar(&aperturesPerm, "perm", "rw", "Rights granted by --master policy regions")
	rootCmd.AddCommand(cmd)
}

func newAperturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apertures",
		Short: "Show the PolarFire SoC DDR apertures and segment registers",
		Long: `The apertures command prints each DDR aperture's bus address and the
physical range it reaches given the system memory, followed by the
segment register values that program it.

Example:
  aperturectl apertures --total 0x100000000
  aperturectl apertures --dtb icicle.dtb --hw seg1_3=0x40000000
  aperturectl apertures --master fic0 --perm rw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApertures()
		},
	}
}

func runApertures() error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	format := outputFormat(aperturesFormat)
	if aperturesMaster != "" {
		return printAperturePolicy(b, format)
	}

	f, err := printer.ParseFormat(format)
	if err != nil {
		return err
	}
	opts := printer.DefaultOptions()
	opts.Format = f
	p := printer.New(geometry.MPFS(), os.Stdout, opts)
	if err := p.PrintApertures(b); err != nil {
		return err
	}
	if f != printer.FormatText {
		return nil
	}
	regs, err := b.Registers()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	return p.PrintSegs(regs)
}

// printAperturePolicy renders the apertures as one master's policy, after
// checking that it compiles.
func printAperturePolicy(b *mpfs.Board, format string) error {
	name := geometryName
	if name == "" {
		name = geometry.NameMPFS
	}
	g, err := geometry.Lookup(name)
	if err != nil {
		return err
	}
	perm, err := types.ParsePermissions(aperturesPerm)
	if err != nil {
		return fmt.Errorf("--perm: %w", err)
	}
	policy, err := b.Policy(g, types.MasterID(aperturesMaster), perm)
	if err != nil {
		return err
	}
	cfg := types.NewConfiguration(policy)
	if _, err := newCompiler(g).Compile(cfg); err != nil {
		return err
	}
	if format == string(printer.FormatText) {
		format = string(printer.FormatYAML)
	}
	data, err := renderConfiguration(g, cfg, format)
	if err != nil {
		return err
	}
	return emit(data, "")
}
