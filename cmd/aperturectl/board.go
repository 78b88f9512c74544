package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/internal/devicetree"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/mpfs"
)

var (
	boardTotal string
	boardDTB   string
	boardSegs  []string
	boardHW    []string
)

func addBoardFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&boardTotal, "total", "t", "", "Total system memory (e.g. 0x80000000 or 2G)")
	cmd.Flags().StringVar(&boardDTB, "dtb", "", "Take total system memory from a flattened device tree")
	cmd.Flags().
		StringArrayVar(&boardSegs, "seg", nil, "Apply a segment register value, as name=value (repeatable)")
	cmd.Flags().
		StringArrayVar(&boardHW, "hw", nil, "Move an aperture's hardware start, as name=address (repeatable)")
}

// loadBoard builds the reference board and applies the board flags: memory
// size first, then segment register values, then hardware start addresses.
func loadBoard() (*mpfs.Board, error) {
	b := mpfs.DefaultBoard()

	switch {
	case boardTotal != "" && boardDTB != "":
		return nil, errors.New("--total and --dtb are mutually exclusive")
	case boardTotal != "":
		v, err := config.ParseAddress(boardTotal)
		if err != nil {
			return nil, fmt.Errorf("--total: %w", err)
		}
		b.TotalSystemMemory = v
	case boardDTB != "":
		banks, err := devicetree.ReadMemory(boardDTB)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", boardDTB, err)
		}
		if len(banks) == 0 {
			return nil, fmt.Errorf("%s: no enabled memory nodes", boardDTB)
		}
		b.TotalSystemMemory = devicetree.TotalSize(banks)
		printVerbose("%s: %d memory bank(s), %#x bytes\n", boardDTB, len(banks), b.TotalSystemMemory)
	}

	var regs []mpfs.SegRegister
	for _, kv := range boardSegs {
		name, v, err := splitAssignment("--seg", kv)
		if err != nil {
			return nil, err
		}
		regs = append(regs, mpfs.SegRegister{Name: name, Value: v})
	}
	if err := b.ApplyRegisters(regs); err != nil {
		return nil, err
	}

	for _, kv := range boardHW {
		name, v, err := splitAssignment("--hw", kv)
		if err != nil {
			return nil, err
		}
		id, err := b.Index(name)
		if err != nil {
			return nil, err
		}
		if err := b.SetHWStartByID(id, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// splitAssignment parses name=value with an address-syntax value.
func splitAssignment(flag, kv string) (string, uint64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("%s %q: want name=value", flag, kv)
	}
	v, err := config.ParseAddress(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%s %q: %w", flag, kv, err)
	}
	return name, v, nil
}
