package main

import (
	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/devicetree"
	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
)

func init() {
	rootCmd.AddCommand(newDTCmd())
}

func newDTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dt <file.dtb>",
		Short: "List the memory banks in a flattened device tree",
		Long: `The dt command reads the root memory nodes of a device tree blob,
honouring #address-cells and #size-cells and skipping disabled nodes, and
prints each bank with the total.

Example:
  aperturectl dt icicle.dtb
  aperturectl dt icicle.dtb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDT(args)
		},
	}
}

func runDT(args []string) error {
	path := args[0]

	printVerbose("Reading device tree: %s\n", path)
	banks, err := devicetree.ReadMemory(path)
	if err != nil {
		return err
	}
	total := devicetree.TotalSize(banks)

	if jsonOut {
		return printJSON(map[string]any{
			"file":  path,
			"banks": banks,
			"total": total,
		})
	}

	for _, b := range banks {
		printInfo("%-24s 0x%010x  0x%010x  (%d MiB)\n", b.Label, b.Address, b.Size, b.Size/format.MiB)
	}
	printInfo("Total system memory: %#x (%d MiB)\n", total, total/format.MiB)
	return nil
}
