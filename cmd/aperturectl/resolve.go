package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/internal/mmfile"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

func init() {
	rootCmd.AddCommand(newResolveCmd())
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <master> <address>",
		Short: "Show which slot decides a master's access to an address",
		Long: `The resolve command finds the highest-priority slot covering an
address and prints the rights it grants. The file may be a policy (it is
compiled first), a register document or a raw image.

Example:
  aperturectl resolve policy.yaml cpu0 0x1800
  aperturectl resolve image.bin dma 2G --geometry default`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(args)
		},
	}
}

func runResolve(args []string) error {
	path, master := args[0], types.MasterID(args[1])
	addr, err := config.ParseAddress(args[2])
	if err != nil {
		return err
	}

	g, img, err := loadImage(path)
	if err != nil {
		return err
	}
	r, slot, ok, err := newCompiler(g).Resolve(img, master, addr)
	if err != nil {
		return err
	}

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(g, os.Stdout, opts).PrintResolution(master, addr, r, slot, ok)
}

// loadImage reads path as a raw image, a register document or a policy
// document, compiling the last.
func loadImage(path string) (geometry.Geometry, types.RegisterImage, error) {
	data, err := mmfile.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return geometry.Geometry{}, types.RegisterImage{}, err
	case config.IsBinaryImage(path, data):
		return config.ReadImage(path, geometryName)
	}

	doc := &config.Document{Defaulted: data == nil}
	if data != nil {
		if doc, err = config.Decode(data); err != nil {
			return geometry.Geometry{}, types.RegisterImage{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	g, err := doc.ResolveGeometry(geometryName)
	if err != nil {
		return geometry.Geometry{}, types.RegisterImage{}, err
	}
	if len(doc.Registers) > 0 {
		img, err := doc.Image(g)
		return g, img, err
	}
	cfg, err := doc.Configuration(g)
	if err != nil {
		return geometry.Geometry{}, types.RegisterImage{}, err
	}
	img, err := newCompiler(g).Compile(cfg)
	return g, img, err
}
