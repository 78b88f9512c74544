// Package printer renders configurations, register images, geometries,
// diagnostics and aperture tables for people and for other tools.
package printer

import (
	"errors"
	"fmt"
	"io"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/codec"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

const (
	DefaultIndentSize = 2
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text.
	FormatText Format = "text"

	// FormatJSON outputs JSON.
	FormatJSON Format = "json"

	// FormatYAML outputs a YAML document that the loader reads back.
	FormatYAML Format = "yaml"

	// FormatHex outputs one register word per line, for loaders and
	// hexdump comparisons. Only images support it.
	FormatHex Format = "hex"
)

// ErrUnsupportedFormat is returned when a value has no rendering in the
// requested format.
var ErrUnsupportedFormat = errors.New("printer: unsupported format")

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatHex:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format.
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowFields decodes every register word into its fields (text images).
	// Default: true
	ShowFields bool

	// ShowUnused includes placeholder slots in text output.
	// Default: false
	ShowUnused bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: DefaultIndentSize,
		ShowFields: true,
	}
}

// Printer writes formatted output for one geometry.
type Printer struct {
	g      geometry.Geometry
	c      *codec.Codec
	writer io.Writer
	opts   Options
}

// New creates a Printer.
//
// Example:
//
//	p := printer.New(geometry.Default(), os.Stdout, printer.DefaultOptions())
//	p.PrintImage(img)
func New(g geometry.Geometry, w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{g: g, c: codec.New(g), writer: w, opts: opts}
}

// PrintConfiguration prints every explicit policy in cfg, masters in
// geometry order.
func (p *Printer) PrintConfiguration(cfg types.PolicyConfiguration) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printConfigJSON(cfg)
	case FormatYAML:
		return p.printConfigYAML(cfg)
	case FormatHex:
		return fmt.Errorf("%w: %s for a configuration", ErrUnsupportedFormat, p.opts.Format)
	default:
		return p.printConfigText(cfg)
	}
}

// PrintImage prints a compiled register image.
func (p *Printer) PrintImage(img types.RegisterImage) error {
	if got, want := len(img.Slots), p.g.TotalSlots(); got != want {
		return types.Errorf(types.ErrKindMalformedRegister, "image has %d slots, geometry %s needs %d", got, p.g.Name(), want)
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printImageJSON(img)
	case FormatYAML:
		return p.printImageYAML(img)
	case FormatHex:
		return p.printImageHex(img)
	default:
		return p.printImageText(img)
	}
}

// PrintGeometry prints the geometry's parameters and register layout.
func (p *Printer) PrintGeometry() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printGeometryJSON()
	case FormatYAML:
		return p.printGeometryYAML()
	case FormatHex:
		return fmt.Errorf("%w: %s for a geometry", ErrUnsupportedFormat, p.opts.Format)
	default:
		return p.printGeometryText()
	}
}

// PrintDiagnostics prints a lint report.
func (p *Printer) PrintDiagnostics(r *types.DiagnosticReport) error {
	switch p.opts.Format {
	case FormatJSON:
		return writeJSON(p.writer, r)
	case FormatYAML:
		return writeYAML(p.writer, r)
	case FormatHex:
		return fmt.Errorf("%w: %s for diagnostics", ErrUnsupportedFormat, p.opts.Format)
	default:
		_, err := io.WriteString(p.writer, r.FormatText())
		return err
	}
}

// PrintResolution prints which slot decides access to addr for master.
func (p *Printer) PrintResolution(master types.MasterID, addr uint64, r types.MemoryRegion, slot int, ok bool) error {
	res := resolution{Master: master, Address: hexString(addr), Slot: -1, Access: types.PermNone.String()}
	if ok {
		res.Slot = slot
		res.Region = p.jsonRegion(r)
		if r.Enabled {
			res.Access = r.Perm.String()
		}
	}
	switch p.opts.Format {
	case FormatJSON:
		return writeJSON(p.writer, res)
	case FormatYAML:
		return writeYAML(p.writer, res)
	case FormatHex:
		return fmt.Errorf("%w: %s for a resolution", ErrUnsupportedFormat, p.opts.Format)
	}
	if !ok {
		_, err := fmt.Fprintf(p.writer, "%s @ %#x: no slot matches, access ---\n", master, addr)
		return err
	}
	_, err := fmt.Fprintf(p.writer, "%s @ %#x: slot %d %s, access %s\n", master, addr, slot, p.regionText(r), res.Access)
	return err
}
