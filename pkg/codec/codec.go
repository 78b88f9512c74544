// Package codec maps memory regions to segment register words and back.
//
// Field placement comes entirely from the geometry's Layout, so the same
// codec serves every controller variant. For a given geometry the mapping is
// fixed and bit-stable:
//
//	size code = log2(size) - log2(granularity) + 1   (0 marks an unused slot)
//	base      = base >> log2(granularity)
//	target    = target code
//	flags     = enabled, read, write, exec
//
// The all-zero word is the placeholder for an unused slot and decodes to a
// disabled, zero-size region.
package codec

import (
	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Codec encodes and decodes register words for one geometry. It holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	g geometry.Geometry
}

// New returns a codec for g.
func New(g geometry.Geometry) *Codec {
	return &Codec{g: g}
}

// Geometry returns the geometry the codec was built for.
func (c *Codec) Geometry() geometry.Geometry {
	return c.g
}

// Check reports why r cannot be encoded, or nil when it can. The placeholder
// region is always encodable.
func (c *Codec) Check(r types.MemoryRegion) error {
	if r.IsPlaceholder() {
		return nil
	}
	g := c.g
	switch {
	case !format.IsPowerOfTwo(r.Size):
		return types.Errorf(types.ErrKindIllegalSize, "size %#x is not a power of two", r.Size)
	case r.Size < g.Granularity():
		return types.Errorf(types.ErrKindIllegalSize, "size %#x is below granularity %#x", r.Size, g.Granularity())
	case r.Size > g.MaxSize():
		return types.Errorf(types.ErrKindIllegalSize, "size %#x exceeds maximum %#x", r.Size, g.MaxSize())
	case !format.IsAligned(r.Base, r.Size):
		return types.Errorf(types.ErrKindUnalignedBase, "base %#x is not a multiple of size %#x", r.Base, r.Size)
	case !format.FitsIn(r.Base, r.Size, g.AddressWidth()):
		return types.Errorf(types.ErrKindAddressRange, "window %#x+%#x exceeds %d-bit address space", r.Base, r.Size, g.AddressWidth())
	case !g.IsLegalTarget(r.Target):
		return types.Errorf(types.ErrKindIllegalTarget, "target code %d exceeds %d-bit field", r.Target, g.Layout().Target.Width)
	}
	return nil
}

// Encode packs r into a register word.
func (c *Codec) Encode(r types.MemoryRegion) (uint64, error) {
	if err := c.Check(r); err != nil {
		return 0, err
	}
	if r.IsPlaceholder() {
		return 0, nil
	}

	l := c.g.Layout()
	shift := c.g.GranularityShift()

	var w uint64
	w = l.Enabled.Put(w, flag(r.Enabled))
	w = l.Read.Put(w, flag(r.Perm.Has(types.PermRead)))
	w = l.Write.Put(w, flag(r.Perm.Has(types.PermWrite)))
	w = l.Exec.Put(w, flag(r.Perm.Has(types.PermExec)))
	w = l.Size.Put(w, uint64(format.Log2(r.Size)-shift)+1)
	w = l.Target.Put(w, uint64(r.Target))
	w = l.Base.Put(w, r.Base>>shift)
	return w, nil
}

// Decode unpacks a register word. It rejects words with reserved bits set,
// a zero size code on a populated register, a size beyond the address
// space, or a base that is not naturally aligned.
func (c *Codec) Decode(w uint64) (types.MemoryRegion, error) {
	if w == 0 {
		return types.Placeholder(), nil
	}
	g := c.g
	if rsvd := w & g.ReservedMask(); rsvd != 0 {
		return types.MemoryRegion{}, types.Errorf(types.ErrKindMalformedRegister, "register %#x has reserved bits %#x set", w, rsvd)
	}

	f := c.Split(w)
	if f.SizeCode == 0 {
		return types.MemoryRegion{}, types.Errorf(types.ErrKindMalformedRegister, "register %#x has size code 0 (below granularity %#x)", w, g.Granularity())
	}
	shift := g.GranularityShift()
	exp := uint64(shift) + f.SizeCode - 1
	if exp > uint64(g.AddressWidth()) {
		return types.MemoryRegion{}, types.Errorf(types.ErrKindMalformedRegister, "register %#x size 2^%d exceeds %d-bit address space", w, exp, g.AddressWidth())
	}
	size := uint64(1) << exp
	if f.Frame > g.AddressLimit()>>shift {
		return types.MemoryRegion{}, types.Errorf(types.ErrKindMalformedRegister, "register %#x base frame %#x exceeds address space", w, f.Frame)
	}
	base := f.Frame << shift
	if !format.IsAligned(base, size) || !format.FitsIn(base, size, g.AddressWidth()) {
		return types.MemoryRegion{}, types.Errorf(types.ErrKindMalformedRegister, "register %#x base %#x is not a legal %#x window", w, base, size)
	}

	var perm types.Permissions
	if f.Read {
		perm |= types.PermRead
	}
	if f.Write {
		perm |= types.PermWrite
	}
	if f.Exec {
		perm |= types.PermExec
	}
	return types.MemoryRegion{
		Base:    base,
		Size:    size,
		Perm:    perm,
		Target:  types.Target(f.Target),
		Enabled: f.Enabled,
	}, nil
}

// Fields is the raw split of a register word, before any interpretation.
type Fields struct {
	Enabled  bool   `json:"enabled"`
	Read     bool   `json:"read"`
	Write    bool   `json:"write"`
	Exec     bool   `json:"exec"`
	SizeCode uint64 `json:"size_code"`
	Target   uint64 `json:"target"`
	Frame    uint64 `json:"frame"`    // base >> log2(granularity)
	Reserved uint64 `json:"reserved"` // bits outside every field
}

// Split extracts every field of w without validating it.
func (c *Codec) Split(w uint64) Fields {
	l := c.g.Layout()
	return Fields{
		Enabled:  l.Enabled.Get(w) != 0,
		Read:     l.Read.Get(w) != 0,
		Write:    l.Write.Get(w) != 0,
		Exec:     l.Exec.Get(w) != 0,
		SizeCode: l.Size.Get(w),
		Target:   l.Target.Get(w),
		Frame:    l.Base.Get(w),
		Reserved: w & c.g.ReservedMask(),
	}
}

func flag(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
