package geometry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Preset names.
const (
	NameDefault = "default"
	NameMPFS    = "mpfs"
)

// Default returns a generic four-master controller with 4 KiB granularity,
// a 40-bit address space and eight 64-bit slots per master.
//
// Register layout:
//
//	63        44 43          16 15    10 9     4  3   2   1   0
//	[ reserved ][ base >> 12   ][ target][ size ][ x ][ w ][ r ][ en ]
func Default() Geometry {
	return defaultGeometry
}

// MPFS returns the layout used for the PolarFire SoC fabric-master MPUs:
// ten masters, 38-bit addresses, 4 KiB granularity, eight slots each.
//
// Register layout:
//
//	bits 49..24  base >> 12
//	bits 18..16  target
//	bits 12..8   size code
//	bits 3..0    exec, write, read, enabled
//
// Every other bit is reserved and must read as zero.
func MPFS() Geometry {
	return mpfsGeometry
}

var defaultGeometry = MustNew(Params{
	Name:           NameDefault,
	Granularity:    4 * format.KiB,
	AddressWidth:   40,
	RegisterWidth:  64,
	SlotsPerMaster: 8,
	Masters:        []types.MasterID{"cpu0", "cpu1", "dma", "fabric"},
	Targets:        []string{"dram", "sram", "periph", "fabric"},
	Layout: Layout{
		Enabled: format.Bit(0),
		Read:    format.Bit(1),
		Write:   format.Bit(2),
		Exec:    format.Bit(3),
		Size:    format.Field{Offset: 4, Width: 6},
		Target:  format.Field{Offset: 10, Width: 6},
		Base:    format.Field{Offset: 16, Width: 28},
	},
})

var mpfsGeometry = MustNew(Params{
	Name:           NameMPFS,
	Granularity:    4 * format.KiB,
	AddressWidth:   38,
	RegisterWidth:  64,
	SlotsPerMaster: 8,
	Masters: []types.MasterID{
		"fic0", "fic1", "fic2", "crypto", "gem0",
		"gem1", "usb", "mmc", "scb", "trace",
	},
	Targets: []string{"ddr-cached", "ddr-noncached", "ddr-wcb", "lsram", "fabric", "periph"},
	Layout: Layout{
		Enabled: format.Bit(0),
		Read:    format.Bit(1),
		Write:   format.Bit(2),
		Exec:    format.Bit(3),
		Size:    format.Field{Offset: 8, Width: 5},
		Target:  format.Field{Offset: 16, Width: 3},
		Base:    format.Field{Offset: 24, Width: 26},
	},
})

var presets = map[string]func() Geometry{
	NameDefault: Default,
	NameMPFS:    MPFS,
}

// Lookup returns the preset called name. An empty name selects Default.
func Lookup(name string) (Geometry, error) {
	if name == "" {
		return Default(), nil
	}
	fn, ok := presets[name]
	if !ok {
		return Geometry{}, types.Errorf(types.ErrKindGeometry, "unknown geometry %q (known: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe renders a one-line summary used by the CLI.
func (g Geometry) Describe() string {
	return fmt.Sprintf("%s: %d masters x %d slots, %d-bit addresses, granularity %#x, %d-bit registers",
		g.Name(), len(g.p.Masters), g.SlotCount(), g.AddressWidth(), g.Granularity(), g.RegisterWidth())
}

// FieldTable returns each field's name and placement, low bit first.
func (g Geometry) FieldTable() []FieldInfo {
	named := g.p.Layout.named()
	out := make([]FieldInfo, 0, len(named))
	for _, nf := range named {
		if nf.field.Width == 0 {
			continue
		}
		out = append(out, FieldInfo{Name: nf.name, Field: nf.field})
	}
	slices.SortFunc(out, func(a, b FieldInfo) int { return int(a.Field.Offset) - int(b.Field.Offset) })
	return out
}

// FieldInfo names one register field.
type FieldInfo struct {
	Name  string       `json:"name"`
	Field format.Field `json:"field"`
}
