package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/tui"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

func init() {
	cmd := newEditCmd()
	addBoardFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Interactively move the DDR apertures",
		Long: `The edit command opens a terminal editor: enter the total system
memory, pick an aperture and give it a new hardware start address. The
segment registers are recomputed after every change; press y to copy them
to the clipboard and q to quit. The final table is printed on exit.

Logs go to --log-dir only, so they do not disturb the screen.

Example:
  aperturectl edit
  aperturectl edit --dtb icicle.dtb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit()
		},
	}
}

func runEdit() error {
	if err := initLogging(false); err != nil {
		return err
	}
	b, err := loadBoard()
	if err != nil {
		return err
	}

	b, err = tui.Run(b, tea.WithAltScreen())
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if quiet {
		return nil
	}

	p := printer.New(geometry.MPFS(), os.Stdout, printer.DefaultOptions())
	if err := p.PrintApertures(b); err != nil {
		return err
	}
	regs, err := b.Registers()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	return p.PrintSegs(regs)
}
