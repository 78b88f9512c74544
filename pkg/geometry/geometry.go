// Package geometry describes the fixed hardware parameters of an aperture
// controller: address granularity and width, slots per master, the master
// and target enumerations, and the bit layout of a segment register.
//
// A Geometry is an immutable value. Build one with New (or take a preset)
// and pass it to every component constructor; there is no process-wide
// default.
package geometry

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// MaxAddressWidth is the widest supported address space. Region sizes are
// 64-bit powers of two, so a full 2^64 window cannot be expressed.
const MaxAddressWidth = 63

// maxTargetBits is the width of types.Target.
const maxTargetBits = 32

// Layout places each register field. Flag fields are one bit wide.
type Layout struct {
	Enabled format.Field `json:"enabled"`
	Read    format.Field `json:"read"`
	Write   format.Field `json:"write"`
	Exec    format.Field `json:"exec"`

	// Size holds log2(size) - log2(granularity) + 1; zero marks an unused slot.
	Size format.Field `json:"size"`
	// Target holds the destination code.
	Target format.Field `json:"target"`
	// Base holds base >> log2(granularity).
	Base format.Field `json:"base"`
}

// named returns the fields with display names, in layout order.
func (l Layout) named() []namedField {
	return []namedField{
		{"enabled", l.Enabled},
		{"read", l.Read},
		{"write", l.Write},
		{"exec", l.Exec},
		{"size", l.Size},
		{"target", l.Target},
		{"base", l.Base},
	}
}

type namedField struct {
	name  string
	field format.Field
}

// Params is the raw parameter set a Geometry is built from.
type Params struct {
	Name           string
	Granularity    uint64 // smallest legal region size, power of two
	AddressWidth   uint   // bits of physical address
	RegisterWidth  uint   // bits in a hardware segment register, at most 64
	SlotsPerMaster int
	Masters        []types.MasterID
	Targets        []string // display names; code == index
	Layout         Layout
}

// Geometry is a validated, immutable parameter set.
type Geometry struct {
	p           Params
	granShift   uint
	maxSize     uint64
	reserved    uint64
	masterIndex map[types.MasterID]int
}

// New validates p and returns the geometry it describes.
func New(p Params) (Geometry, error) {
	p.Masters = slices.Clone(p.Masters)
	p.Targets = slices.Clone(p.Targets)

	if !format.IsPowerOfTwo(p.Granularity) {
		return Geometry{}, geomErr(p, "granularity %#x is not a power of two", p.Granularity)
	}
	if p.AddressWidth == 0 || p.AddressWidth > MaxAddressWidth {
		return Geometry{}, geomErr(p, "address width %d outside 1..%d", p.AddressWidth, MaxAddressWidth)
	}
	granShift := format.Log2(p.Granularity)
	if granShift > p.AddressWidth {
		return Geometry{}, geomErr(p, "granularity %#x exceeds %d-bit address space", p.Granularity, p.AddressWidth)
	}
	if p.RegisterWidth == 0 || p.RegisterWidth > format.WordBits {
		return Geometry{}, geomErr(p, "register width %d outside 1..%d", p.RegisterWidth, format.WordBits)
	}
	if p.SlotsPerMaster < 1 {
		return Geometry{}, geomErr(p, "slots per master must be positive, got %d", p.SlotsPerMaster)
	}

	if len(p.Masters) == 0 {
		return Geometry{}, geomErr(p, "no masters")
	}
	index := make(map[types.MasterID]int, len(p.Masters))
	for i, m := range p.Masters {
		if m == "" {
			return Geometry{}, geomErr(p, "master %d has an empty id", i)
		}
		if _, dup := index[m]; dup {
			return Geometry{}, geomErr(p, "master %q listed twice", m)
		}
		index[m] = i
	}
	seen := make(map[string]bool, len(p.Targets))
	for i, name := range p.Targets {
		if name == "" || seen[name] {
			return Geometry{}, geomErr(p, "target %d: empty or repeated name %q", i, name)
		}
		if _, err := strconv.ParseUint(name, 0, 32); err == nil {
			return Geometry{}, geomErr(p, "target %d: name %q would shadow a numeric code", i, name)
		}
		seen[name] = true
	}

	if err := checkLayout(p); err != nil {
		return Geometry{}, err
	}

	l := p.Layout
	baseBits := p.AddressWidth - granShift
	if l.Base.Width < baseBits {
		return Geometry{}, geomErr(p, "base field holds %d bits, need %d", l.Base.Width, baseBits)
	}
	// Largest size code is Size.Max(); the exponent it denotes is
	// granShift + code - 1. The whole address space must be expressible so
	// the full-range default region encodes.
	if uint64(granShift)+l.Size.Max()-1 < uint64(p.AddressWidth) {
		return Geometry{}, geomErr(p, "size field of %d bits cannot express a %d-bit window", l.Size.Width, p.AddressWidth)
	}
	if l.Target.Width > maxTargetBits {
		return Geometry{}, geomErr(p, "target field of %d bits exceeds %d-bit target codes", l.Target.Width, maxTargetBits)
	}
	if len(p.Targets) > 0 && uint64(len(p.Targets)-1) > l.Target.Max() {
		return Geometry{}, geomErr(p, "target field of %d bits cannot hold %d targets", l.Target.Width, len(p.Targets))
	}

	var used uint64
	for _, nf := range l.named() {
		used |= nf.field.Mask()
	}

	return Geometry{
		p:           p,
		granShift:   granShift,
		maxSize:     uint64(1) << p.AddressWidth,
		reserved:    ^used,
		masterIndex: index,
	}, nil
}

// MustNew is New for package-level presets; it panics on invalid params.
func MustNew(p Params) Geometry {
	g, err := New(p)
	if err != nil {
		panic(err)
	}
	return g
}

func checkLayout(p Params) error {
	fields := p.Layout.named()
	for _, nf := range fields[:4] {
		if nf.field.Width != 1 {
			return geomErr(p, "%s flag must be one bit wide, got %d", nf.name, nf.field.Width)
		}
	}
	if p.Layout.Size.Width == 0 || p.Layout.Base.Width == 0 {
		return geomErr(p, "size and base fields must be non-empty")
	}
	for i, a := range fields {
		if a.field.Width > 0 && a.field.End() > p.RegisterWidth {
			return geomErr(p, "%s field [%d:%d] exceeds %d-bit register", a.name, a.field.End()-1, a.field.Offset, p.RegisterWidth)
		}
		for _, b := range fields[i+1:] {
			if a.field.Overlaps(b.field) {
				return geomErr(p, "%s and %s fields overlap", a.name, b.name)
			}
		}
	}
	return nil
}

func geomErr(p Params, msg string, args ...any) error {
	e := types.Errorf(types.ErrKindGeometry, msg, args...)
	if p.Name != "" {
		e.Msg = fmt.Sprintf("geometry %s: %s", p.Name, e.Msg)
	}
	return e
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// Name returns the preset or user-supplied name.
func (g Geometry) Name() string { return g.p.Name }

// Granularity returns the smallest legal region size.
func (g Geometry) Granularity() uint64 { return g.p.Granularity }

// GranularityShift returns log2(Granularity()).
func (g Geometry) GranularityShift() uint { return g.granShift }

// AddressWidth returns the number of physical address bits.
func (g Geometry) AddressWidth() uint { return g.p.AddressWidth }

// AddressLimit returns 2^AddressWidth, one past the last address.
func (g Geometry) AddressLimit() uint64 { return uint64(1) << g.p.AddressWidth }

// RegisterWidth returns the hardware register width in bits.
func (g Geometry) RegisterWidth() uint { return g.p.RegisterWidth }

// Layout returns the register bit layout.
func (g Geometry) Layout() Layout { return g.p.Layout }

// MaxSize returns the largest legal region size.
func (g Geometry) MaxSize() uint64 { return g.maxSize }

// ReservedMask returns the register bits no field occupies. Decoders reject
// values with any of these set.
func (g Geometry) ReservedMask() uint64 { return g.reserved }

// SlotCount returns the number of register slots each master owns.
func (g Geometry) SlotCount() int { return g.p.SlotsPerMaster }

// TotalSlots returns the number of words in a full register image.
func (g Geometry) TotalSlots() int { return len(g.p.Masters) * g.p.SlotsPerMaster }

// Masters returns the master ids in canonical image order.
func (g Geometry) Masters() []types.MasterID { return slices.Clone(g.p.Masters) }

// HasMaster reports whether id is one of the geometry's masters.
func (g Geometry) HasMaster(id types.MasterID) bool {
	_, ok := g.masterIndex[id]
	return ok
}

// MasterIndex returns id's position in canonical order.
func (g Geometry) MasterIndex(id types.MasterID) (int, bool) {
	i, ok := g.masterIndex[id]
	return i, ok
}

// Targets returns the target display names; a name's index is its code.
func (g Geometry) Targets() []string { return slices.Clone(g.p.Targets) }

// TargetName returns the display name of code, or its decimal form when the
// geometry has none.
func (g Geometry) TargetName(code types.Target) string {
	if int(code) < len(g.p.Targets) {
		return g.p.Targets[code]
	}
	return strconv.FormatUint(uint64(code), 10)
}

// TargetCode resolves a target by name, or parses a numeric code.
func (g Geometry) TargetCode(name string) (types.Target, bool) {
	if i := slices.Index(g.p.Targets, name); i >= 0 {
		return types.Target(i), true
	}
	v, err := strconv.ParseUint(name, 0, 32)
	if err != nil {
		return 0, false
	}
	return types.Target(v), true
}

// IsLegalTarget reports whether code fits the target field.
func (g Geometry) IsLegalTarget(code types.Target) bool {
	return g.p.Layout.Target.Fits(uint64(code))
}

// IsLegalSize reports whether size is a power of two between the
// granularity and the largest expressible window.
func (g Geometry) IsLegalSize(size uint64) bool {
	return format.IsPowerOfTwo(size) && size >= g.p.Granularity && size <= g.maxSize
}

// IsLegalBase reports whether base is naturally aligned to size and the
// window [base, base+size) lies inside the address space.
func (g Geometry) IsLegalBase(base, size uint64) bool {
	return format.IsPowerOfTwo(size) &&
		format.IsAligned(base, size) &&
		format.FitsIn(base, size, g.p.AddressWidth)
}

// Params returns a copy of the parameters g was built from.
func (g Geometry) Params() Params {
	p := g.p
	p.Masters = slices.Clone(p.Masters)
	p.Targets = slices.Clone(p.Targets)
	return p
}
