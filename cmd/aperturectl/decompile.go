package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/internal/mmfile"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
)

var (
	decompileOutput  string
	decompileFormat  string
	decompileInPlace bool
)

func init() {
	cmd := newDecompileCmd()
	cmd.Flags().StringVarP(&decompileOutput, "output", "o", "", "Write the policy to a file instead of stdout")
	cmd.Flags().StringVarP(&decompileFormat, "format", "f", "yaml", "Policy format: yaml, json or text")
	cmd.Flags().
		BoolVarP(&decompileInPlace, "in-place", "i", false, "Add the decoded policy to the register document itself")
	rootCmd.AddCommand(cmd)
}

func newDecompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompile <image>",
		Short: "Decode a register image back into a policy",
		Long: `The decompile command decodes every master's register slots into its
ordered region list. The image may be a register document (YAML) or a raw
binary image (.bin, .img, or any file containing NUL bytes); raw images
take their geometry from --geometry.

Images with reserved bits set, illegal size codes, or populated slots
after an unused one are rejected.

Example:
  aperturectl decompile image.yaml
  aperturectl decompile image.bin --geometry mpfs --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompile(args)
		},
	}
}

func runDecompile(args []string) error {
	path := args[0]

	g, img, err := config.ReadImage(path, geometryName)
	if err != nil {
		return err
	}
	cfg, err := newCompiler(g).Decompile(img)
	if err != nil {
		return err
	}
	printVerbose("Decoded %d masters for geometry %s\n", len(cfg.Masters), g.Name())

	if decompileInPlace {
		if decompileOutput != "" {
			return errors.New("--in-place and --output are mutually exclusive")
		}
		if f := outputFormat(decompileFormat); f != string(printer.FormatYAML) {
			return errors.New("--in-place writes YAML only")
		}
		raw, err := mmfile.ReadFile(path)
		if err != nil {
			return err
		}
		if config.IsBinaryImage(path, raw) {
			return errors.New("--in-place needs a register document, not a raw image")
		}
		doc, err := config.FromImage(g, img)
		if err != nil {
			return err
		}
		doc.Masters = config.FromConfiguration(g, cfg).Masters
		data, err := config.Encode(doc)
		if err != nil {
			return err
		}
		return emit(data, path)
	}

	data, err := renderConfiguration(g, cfg, outputFormat(decompileFormat))
	if err != nil {
		return err
	}
	return emit(data, decompileOutput)
}
