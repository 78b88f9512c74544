package printer

import (
	"fmt"
	"strings"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/mpfs"
)

type jsonAperture struct {
	Description string `json:"description" yaml:"description"`
	RegName     string `json:"reg_name" yaml:"reg_name"`
	Target      string `json:"target" yaml:"target"`
	BusAddr     string `json:"bus_addr" yaml:"bus_addr"`
	HWStart     string `json:"hw_start,omitempty" yaml:"hw_start,omitempty"`
	HWEnd       string `json:"hw_end,omitempty" yaml:"hw_end,omitempty"`
	ReachMiB    uint64 `json:"reach_mib" yaml:"reach_mib"`
	Seg         string `json:"seg,omitempty" yaml:"seg,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

type jsonBoard struct {
	TotalSystemMemory string         `json:"total_system_memory" yaml:"total_system_memory"`
	Apertures         []jsonAperture `json:"apertures" yaml:"apertures"`
}

type jsonSeg struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// apertureHeader matches the column layout of the bootloader's own table.
const apertureHeader = "Description       | bus address  | aperture hw start | aperture hw end | aperture size"

// PrintApertures prints the board's apertures with the physical range each
// reaches given the board's memory.
func (p *Printer) PrintApertures(b *mpfs.Board) error {
	switch p.opts.Format {
	case FormatJSON:
		return writeJSON(p.writer, boardDoc(b))
	case FormatYAML:
		return writeYAML(p.writer, boardDoc(b))
	case FormatHex:
		return fmt.Errorf("%w: %s for apertures", ErrUnsupportedFormat, p.opts.Format)
	}
	fmt.Fprintf(p.writer, "Total system memory: %#x (%d MiB)\n\n", b.TotalSystemMemory, b.TotalSystemMemory/format.MiB)
	fmt.Fprintln(p.writer, apertureHeader)
	for id, a := range b.Apertures {
		start, err := b.HWStartByID(id)
		if err != nil {
			fmt.Fprintf(p.writer, "%-17s | 0x%010x | %s\n", a.Description, a.BusAddr, "beyond system memory")
			continue
		}
		end, _ := b.HWEndByID(id)
		fmt.Fprintf(p.writer, "%-17s | 0x%010x | 0x%010x      | 0x%010x    | %d MiB\n",
			a.Description, a.BusAddr, start, end, (end-start)/format.MiB)
	}
	return nil
}

func boardDoc(b *mpfs.Board) jsonBoard {
	out := jsonBoard{TotalSystemMemory: hexString(b.TotalSystemMemory)}
	for _, a := range b.Apertures {
		ja := jsonAperture{
			Description: a.Description,
			RegName:     a.RegName,
			Target:      a.Target,
			BusAddr:     hexString(a.BusAddr),
		}
		if seg, err := a.Seg(); err == nil {
			ja.Seg = hexString(seg)
		} else {
			ja.Error = err.Error()
		}
		if start, err := a.HWStart(b.TotalSystemMemory); err == nil {
			end := a.HWEnd(b.TotalSystemMemory)
			ja.HWStart, ja.HWEnd = hexString(start), hexString(end)
			ja.ReachMiB = (end - start) / format.MiB
		} else {
			ja.Error = err.Error()
		}
		out.Apertures = append(out.Apertures, ja)
	}
	return out
}

// PrintSegs prints segment register values.
func (p *Printer) PrintSegs(regs []mpfs.SegRegister) error {
	switch p.opts.Format {
	case FormatJSON, FormatYAML:
		out := make([]jsonSeg, 0, len(regs))
		for _, r := range regs {
			out = append(out, jsonSeg{Name: r.Name, Value: hexString(r.Value)})
		}
		if p.opts.Format == FormatJSON {
			return writeJSON(p.writer, out)
		}
		return writeYAML(p.writer, out)
	case FormatHex:
		for _, r := range regs {
			if _, err := fmt.Fprintf(p.writer, "%s %08x\n", r.Name, r.Value); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintln(p.writer, FormatSegs(regs))
	return err
}

// FormatSegs renders registers on one line in the form the bootloader's
// configuration expects: { seg0_1: 0x7002, seg1_3: 0x6c00, }
func FormatSegs(regs []mpfs.SegRegister) string {
	var b strings.Builder
	b.WriteString("{ ")
	for _, r := range regs {
		fmt.Fprintf(&b, "%s: %#x, ", r.Name, r.Value)
	}
	b.WriteString("}")
	return b.String()
}
