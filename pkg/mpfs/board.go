package mpfs

import (
	"fmt"
	"slices"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Board is a set of apertures sharing one amount of system memory.
type Board struct {
	TotalSystemMemory uint64     `json:"total_system_memory" yaml:"total_system_memory"`
	Apertures         []Aperture `json:"apertures" yaml:"apertures"`
}

// DefaultBoard returns the reference configuration: 2 GiB of DDR and the
// six apertures in the order the bootloader programs them.
func DefaultBoard() *Board {
	return &Board{
		TotalSystemMemory: DefaultTotalMemory,
		Apertures: []Aperture{
			{Description: "64-bit cached", RegName: "seg0_1", Target: "ddr-cached", BusAddr: 0x10_0000_0000, HardwareAddr: 0x200_0000, Size: 16 * format.GiB},
			{Description: "64-bit non-cached", RegName: "seg1_3", Target: "ddr-noncached", BusAddr: 0x14_0000_0000, Size: 1 * format.GiB},
			{Description: "64-bit WCB", RegName: "seg1_5", Target: "ddr-wcb", BusAddr: 0x18_0000_0000, Size: 1 * format.GiB},
			{Description: "32-bit cached", RegName: "seg0_0", Target: "ddr-cached", BusAddr: 0x8000_0000, Size: 1 * format.GiB},
			{Description: "32-bit non-cached", RegName: "seg1_2", Target: "ddr-noncached", BusAddr: 0xC000_0000, Size: 256 * format.MiB},
			{Description: "32-bit WCB", RegName: "seg1_4", Target: "ddr-wcb", BusAddr: 0xD000_0000, Size: 256 * format.MiB},
		},
	}
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	return &Board{TotalSystemMemory: b.TotalSystemMemory, Apertures: slices.Clone(b.Apertures)}
}

// Aperture returns the aperture at id.
func (b *Board) Aperture(id int) (*Aperture, error) {
	if id < 0 || id >= len(b.Apertures) {
		return nil, fmt.Errorf("index %d of %d: %w", id, len(b.Apertures), ErrNoAperture)
	}
	return &b.Apertures[id], nil
}

// Index returns the position of the aperture programmed by regName.
func (b *Board) Index(regName string) (int, error) {
	i := slices.IndexFunc(b.Apertures, func(a Aperture) bool { return a.RegName == regName })
	if i < 0 {
		return -1, fmt.Errorf("%q: %w", regName, ErrNoAperture)
	}
	return i, nil
}

// HWStartByID is Aperture(id).HWStart against the board's memory.
func (b *Board) HWStartByID(id int) (uint64, error) {
	a, err := b.Aperture(id)
	if err != nil {
		return 0, err
	}
	return a.HWStart(b.TotalSystemMemory)
}

// HWEndByID is Aperture(id).HWEnd against the board's memory.
func (b *Board) HWEndByID(id int) (uint64, error) {
	a, err := b.Aperture(id)
	if err != nil {
		return 0, err
	}
	return a.HWEnd(b.TotalSystemMemory), nil
}

// SetHWStartByID moves aperture id to addr.
func (b *Board) SetHWStartByID(id int, addr uint64) error {
	a, err := b.Aperture(id)
	if err != nil {
		return err
	}
	return a.SetHWStart(b.TotalSystemMemory, addr)
}

// SegRegister is one named segment register value.
type SegRegister struct {
	Name  string `json:"name" yaml:"name"`
	Value uint64 `json:"value" yaml:"value"`
}

// Registers returns the segment register for every aperture, in aperture
// order.
func (b *Board) Registers() ([]SegRegister, error) {
	out := make([]SegRegister, 0, len(b.Apertures))
	for _, a := range b.Apertures {
		v, err := a.Seg()
		if err != nil {
			return nil, err
		}
		out = append(out, SegRegister{Name: a.RegName, Value: v})
	}
	return out, nil
}

// ApplyRegisters sets each named aperture's hardware address from its
// segment register value. Names absent from regs are left unchanged.
func (b *Board) ApplyRegisters(regs []SegRegister) error {
	for _, r := range regs {
		i, err := b.Index(r.Name)
		if err != nil {
			return err
		}
		a := &b.Apertures[i]
		a.HardwareAddr = SegToHWStart(r.Value, a.BusAddr)
	}
	return nil
}

// Policy expresses the apertures' bus windows as one master's region list
// under g, in aperture order, each granting perm on the aperture's target.
func (b *Board) Policy(g geometry.Geometry, master types.MasterID, perm types.Permissions) (types.MasterPolicy, error) {
	p := types.MasterPolicy{Master: master}
	for _, a := range b.Apertures {
		code, ok := g.TargetCode(a.Target)
		if !ok {
			return types.MasterPolicy{}, fmt.Errorf("%s: target %q not in geometry %s: %w", a.RegName, a.Target, g.Name(), types.ErrIllegalTarget)
		}
		p.Regions = append(p.Regions, types.MemoryRegion{
			Base:    a.BusAddr,
			Size:    a.Size,
			Perm:    perm,
			Target:  code,
			Enabled: true,
		})
	}
	return p, nil
}
