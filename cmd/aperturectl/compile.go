package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

var (
	compileOutput  string
	compileFormat  string
	compileInPlace bool
)

func init() {
	cmd := newCompileCmd()
	cmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Write the image to a file instead of stdout")
	cmd.Flags().StringVarP(&compileFormat, "format", "f", "yaml", "Image format: yaml, json, bin, hex or text")
	cmd.Flags().
		BoolVarP(&compileInPlace, "in-place", "i", false, "Add the compiled registers to the policy document itself")
	rootCmd.AddCommand(cmd)
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <policy.yaml>",
		Short: "Compile a policy into a register image",
		Long: `The compile command validates a policy document and encodes every
master's regions into its register slots. Masters the document leaves
out get the built-in full-range policy; unused slots are padded.

A policy file that does not exist compiles to the built-in defaults.

Example:
  aperturectl compile policy.yaml
  aperturectl compile policy.yaml --format bin -o image.bin
  aperturectl compile policy.yaml --in-place`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args)
		},
	}
}

func runCompile(args []string) error {
	path := args[0]

	g, doc, cfg, err := loadPolicy(path)
	if err != nil {
		return err
	}
	img, err := newCompiler(g).Compile(cfg)
	if err != nil {
		return err
	}
	printVerbose("Compiled %d slots for geometry %s\n", len(img.Slots), g.Name())

	if compileInPlace {
		if compileOutput != "" {
			return errors.New("--in-place and --output are mutually exclusive")
		}
		if f := outputFormat(compileFormat); f != string(printer.FormatYAML) {
			return errors.New("--in-place writes YAML only")
		}
		regs, err := config.FromImage(g, img)
		if err != nil {
			return err
		}
		doc.Geometry = g.Name()
		doc.Registers = regs.Registers
		data, err := config.Encode(doc)
		if err != nil {
			return err
		}
		return emit(data, path)
	}

	data, err := renderImage(g, img, outputFormat(compileFormat))
	if err != nil {
		return err
	}
	return emit(data, compileOutput)
}
