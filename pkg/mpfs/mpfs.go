// Package mpfs models the PolarFire SoC DDR memory apertures: fixed bus
// windows that the segment registers point at configurable offsets into
// physical memory.
package mpfs

import (
	"errors"
	"fmt"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
)

// Segment register encoding. Bit 14 enables the offset; the low 14 bits
// hold 0x4000 minus the distance from hardware address to bus address in
// 16 MiB units.
const (
	SegEnable     = 0x4000
	SegOffsetMask = 0x3FFF
	SegShift      = 24
	SegUnit       = uint64(1) << SegShift
)

// DefaultTotalMemory is the DDR fitted to the reference board.
const DefaultTotalMemory = 2 * format.GiB

var (
	// ErrBeyondMemory is returned when a hardware address lies past the
	// end of system memory.
	ErrBeyondMemory = errors.New("mpfs: hardware address beyond system memory")
	// ErrNoAperture is returned for an out-of-range index or unknown name.
	ErrNoAperture = errors.New("mpfs: no such aperture")
	// ErrSegRange is returned when a hardware address cannot be reached
	// from a bus address by a segment register.
	ErrSegRange = errors.New("mpfs: hardware address not reachable by segment register")
)

// Aperture is one bus window into DDR.
type Aperture struct {
	Description  string `json:"description" yaml:"description"`
	RegName      string `json:"reg_name" yaml:"reg_name"`
	Target       string `json:"target" yaml:"target"`
	BusAddr      uint64 `json:"bus_addr" yaml:"bus_addr"`
	HardwareAddr uint64 `json:"hardware_addr" yaml:"hardware_addr"`
	Size         uint64 `json:"size" yaml:"size"`
}

// HWStart returns the first physical address the aperture reaches.
func (a Aperture) HWStart(total uint64) (uint64, error) {
	if a.HardwareAddr > total {
		return 0, fmt.Errorf("%s: %#x > %#x: %w", a.RegName, a.HardwareAddr, total, ErrBeyondMemory)
	}
	return a.HardwareAddr, nil
}

// HWEnd returns the end (exclusive) of the physical range the aperture
// reaches: the lower of the window end and the end of memory.
func (a Aperture) HWEnd(total uint64) uint64 {
	return min(a.HardwareAddr+a.Size, total)
}

// Reach returns HWEnd - HWStart. It fails when the aperture starts past the
// end of memory.
func (a Aperture) Reach(total uint64) (uint64, error) {
	start, err := a.HWStart(total)
	if err != nil {
		return 0, err
	}
	return a.HWEnd(total) - start, nil
}

// SetHWStart moves the aperture to addr, which must lie inside memory.
func (a *Aperture) SetHWStart(total, addr uint64) error {
	if addr >= total {
		return fmt.Errorf("%s: %#x >= %#x: %w", a.RegName, addr, total, ErrBeyondMemory)
	}
	a.HardwareAddr = addr
	return nil
}

// Seg returns the segment register value for the aperture's current
// hardware address.
func (a Aperture) Seg() (uint64, error) {
	seg, err := HWStartToSeg(a.HardwareAddr, a.BusAddr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.RegName, err)
	}
	return seg, nil
}

// SegToHWStart decodes a segment register. A register without the enable
// bit, including zero, leaves the hardware address equal to the bus
// address, as the bootloader does.
func SegToHWStart(seg, bus uint64) uint64 {
	if seg&SegEnable == 0 {
		return bus
	}
	return bus - (SegEnable-(seg&SegOffsetMask))<<SegShift
}

// HWStartToSeg encodes the segment register that maps bus to hw. hw must
// not lie above bus and must sit a whole number of 16 MiB units below it.
func HWStartToSeg(hw, bus uint64) (uint64, error) {
	if hw == bus {
		return 0, nil
	}
	if hw > bus {
		return 0, fmt.Errorf("hw %#x above bus %#x: %w", hw, bus, ErrSegRange)
	}
	delta := bus - hw
	if delta%SegUnit != 0 {
		return 0, fmt.Errorf("hw %#x is not a multiple of %#x below bus %#x: %w", hw, SegUnit, bus, ErrSegRange)
	}
	units := delta >> SegShift
	if units > SegEnable {
		return 0, fmt.Errorf("hw %#x is %#x units below bus %#x: %w", hw, units, bus, ErrSegRange)
	}
	return (SegEnable - units) | SegEnable, nil
}
