package printer

import (
	"fmt"
	"strings"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// orderedIDs returns cfg's masters in geometry order, unknown ones last.
func (p *Printer) orderedIDs(cfg types.PolicyConfiguration) []types.MasterID {
	var ids []types.MasterID
	for _, id := range p.g.Masters() {
		if _, ok := cfg.Policy(id); ok {
			ids = append(ids, id)
		}
	}
	for _, id := range cfg.IDs() {
		if !p.g.HasMaster(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (p *Printer) indent(depth int) string {
	return strings.Repeat(" ", depth*p.opts.IndentSize)
}

// printConfigText prints one block per master:
//
//	[cpu0]
//	  0: [0x1000, 0x2000) r-- dram
func (p *Printer) printConfigText(cfg types.PolicyConfiguration) error {
	for _, id := range p.orderedIDs(cfg) {
		fmt.Fprintf(p.writer, "[%s]\n", id)
		regions := cfg.Masters[id].Regions
		if len(regions) == 0 {
			fmt.Fprintf(p.writer, "%s(no regions)\n", p.indent(1))
		}
		for i, r := range regions {
			fmt.Fprintf(p.writer, "%s%d: %s\n", p.indent(1), i, p.regionText(r))
		}
		if p.opts.ShowUnused {
			for i := len(regions); i < p.g.SlotCount(); i++ {
				fmt.Fprintf(p.writer, "%s%d: unused\n", p.indent(1), i)
			}
		}
	}
	return nil
}

func (p *Printer) regionText(r types.MemoryRegion) string {
	if r.IsPlaceholder() {
		return "unused"
	}
	s := fmt.Sprintf("[%#x, %#x) %s %s %s", r.Base, r.Base+r.Size, humanSize(r.Size), r.Perm, p.g.TargetName(r.Target))
	if !r.Enabled {
		s += " disabled"
	}
	return s
}

func (p *Printer) printImageText(img types.RegisterImage) error {
	n := p.g.SlotCount()
	digits := (p.g.RegisterWidth() + 3) / 4
	fmt.Fprintf(p.writer, "geometry %s: %d masters x %d slots\n", p.g.Name(), len(p.g.Masters()), n)
	for mi, id := range p.g.Masters() {
		fmt.Fprintf(p.writer, "[%s]\n", id)
		for s, w := range img.Slots[mi*n : (mi+1)*n] {
			if w == 0 && !p.opts.ShowUnused {
				continue
			}
			fmt.Fprintf(p.writer, "%s%d: 0x%0*x", p.indent(1), s, digits, w)
			if p.opts.ShowFields {
				fmt.Fprintf(p.writer, "  %s", p.wordText(w))
			}
			fmt.Fprintln(p.writer)
		}
	}
	return nil
}

func (p *Printer) wordText(w uint64) string {
	r, err := p.c.Decode(w)
	if err != nil {
		f := p.c.Split(w)
		return fmt.Sprintf("malformed (size=%d frame=%#x reserved=%#x): %v", f.SizeCode, f.Frame, f.Reserved, err)
	}
	return p.regionText(r)
}

func (p *Printer) printGeometryText() error {
	g := p.g
	fmt.Fprintln(p.writer, g.Describe())
	fmt.Fprintf(p.writer, "%smasters: %s\n", p.indent(1), joinIDs(g.Masters()))
	fmt.Fprintf(p.writer, "%stargets: %s\n", p.indent(1), strings.Join(g.Targets(), ", "))
	fmt.Fprintf(p.writer, "%slargest region: %s\n", p.indent(1), humanSize(g.MaxSize()))
	fmt.Fprintf(p.writer, "%sregister layout:\n", p.indent(1))
	for _, fi := range g.FieldTable() {
		if fi.Field.Width == 1 {
			fmt.Fprintf(p.writer, "%s%-8s bit %d\n", p.indent(2), fi.Name, fi.Field.Offset)
			continue
		}
		fmt.Fprintf(p.writer, "%s%-8s bits %d..%d\n", p.indent(2), fi.Name, fi.Field.End()-1, fi.Field.Offset)
	}
	fmt.Fprintf(p.writer, "%s%-8s mask %#x\n", p.indent(2), "reserved", g.ReservedMask())
	return nil
}

func joinIDs(ids []types.MasterID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}

// humanSize renders power-of-two sizes with a binary unit, others in hex.
func humanSize(v uint64) string {
	units := []struct {
		size uint64
		unit string
	}{{format.TiB, "T"}, {format.GiB, "G"}, {format.MiB, "M"}, {format.KiB, "K"}}
	for _, u := range units {
		if v >= u.size && v%u.size == 0 {
			return fmt.Sprintf("%d%s", v/u.size, u.unit)
		}
	}
	return fmt.Sprintf("%#x", v)
}
