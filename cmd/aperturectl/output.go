package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/internal/fileio"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/printer"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Output formats accepted by --format. FormatBinary is raw little-endian
// words; the rest are printer formats.
const FormatBinary = "bin"

// outputFormat applies --json on top of a command's --format flag.
func outputFormat(flag string) string {
	if jsonOut {
		return string(printer.FormatJSON)
	}
	return flag
}

// loadPolicy reads the policy document at path and resolves it against the
// selected geometry. A missing file stands for the built-in defaults.
func loadPolicy(path string) (geometry.Geometry, *config.Document, types.PolicyConfiguration, error) {
	doc, err := config.LoadFile(path)
	if err != nil {
		return geometry.Geometry{}, nil, types.PolicyConfiguration{}, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Defaulted {
		printVerbose("%s does not exist, using built-in defaults\n", path)
	}
	g, err := doc.ResolveGeometry(geometryName)
	if err != nil {
		return geometry.Geometry{}, nil, types.PolicyConfiguration{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := doc.Configuration(g)
	if err != nil {
		return geometry.Geometry{}, nil, types.PolicyConfiguration{}, fmt.Errorf("%s: %w", path, err)
	}
	printVerbose("Loaded %s: geometry %s, %d explicit master(s)\n", path, g.Name(), len(cfg.Masters))
	return g, doc, cfg, nil
}

// renderImage serializes img in format.
func renderImage(g geometry.Geometry, img types.RegisterImage, format string) ([]byte, error) {
	switch format {
	case FormatBinary:
		return config.EncodeBinary(img), nil
	case "", string(printer.FormatYAML):
		doc, err := config.FromImage(g, img)
		if err != nil {
			return nil, err
		}
		return config.Encode(doc)
	}
	f, err := printer.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	opts := printer.DefaultOptions()
	opts.Format = f
	if err := printer.New(g, &buf, opts).PrintImage(img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderConfiguration serializes cfg in format. Raw formats do not apply.
func renderConfiguration(g geometry.Geometry, cfg types.PolicyConfiguration, format string) ([]byte, error) {
	if format == FormatBinary {
		return nil, fmt.Errorf("%w: %s for a configuration", printer.ErrUnsupportedFormat, format)
	}
	if format == "" {
		format = string(printer.FormatYAML)
	}
	f, err := printer.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	opts := printer.DefaultOptions()
	opts.Format = f
	if err := printer.New(g, &buf, opts).PrintConfiguration(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// emit writes data to outPath atomically, or to stdout when outPath is
// empty.
func emit(data []byte, outPath string) error {
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := fileio.WriteAtomic(outPath, data, 0o644); err != nil {
		return err
	}
	printVerbose("Wrote %d bytes to %s\n", len(data), outPath)
	return nil
}
