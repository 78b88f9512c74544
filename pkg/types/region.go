package types

import (
	"fmt"
	"slices"
	"strings"
)

// -----------------------------------------------------------------------------
// Permissions
// -----------------------------------------------------------------------------

// Permissions is the set of access rights a region grants.
type Permissions uint8

const (
	PermRead  Permissions = 1 << iota // r
	PermWrite                         // w
	PermExec                          // x

	PermNone Permissions = 0
	PermRW               = PermRead | PermWrite
	PermRX               = PermRead | PermExec
	PermRWX              = PermRead | PermWrite | PermExec
)

// Has reports whether every right in q is present in p.
func (p Permissions) Has(q Permissions) bool {
	return p&q == q
}

// String renders the set in ls(1) style: "rwx", "r-x", "---".
func (p Permissions) String() string {
	b := []byte("---")
	if p.Has(PermRead) {
		b[0] = 'r'
	}
	if p.Has(PermWrite) {
		b[1] = 'w'
	}
	if p.Has(PermExec) {
		b[2] = 'x'
	}
	return string(b)
}

// ParsePermissions accepts any combination of the letters r, w and x in any
// order and case, with '-' as filler. "", "-" , "---" and "none" mean no access.
func ParsePermissions(s string) (Permissions, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "none" {
		return PermNone, nil
	}
	var p Permissions
	for _, c := range s {
		var bit Permissions
		switch c {
		case 'r':
			bit = PermRead
		case 'w':
			bit = PermWrite
		case 'x':
			bit = PermExec
		case '-':
			continue
		default:
			return PermNone, fmt.Errorf("permissions %q: unexpected %q", s, c)
		}
		if p.Has(bit) {
			return PermNone, fmt.Errorf("permissions %q: %q repeated", s, c)
		}
		p |= bit
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Permissions) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Permissions) UnmarshalText(text []byte) error {
	v, err := ParsePermissions(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// MasterID names a bus master. The set of valid ids belongs to the geometry.
type MasterID string

// Target is the opaque numeric code of a destination domain. The compiler
// only round-trips it; geometries may attach names for display.
type Target uint32

// -----------------------------------------------------------------------------
// Regions
// -----------------------------------------------------------------------------

// MemoryRegion is one address window plus the rights it grants.
type MemoryRegion struct {
	Base    uint64      `json:"base"`
	Size    uint64      `json:"size"`
	Perm    Permissions `json:"perm"`
	Target  Target      `json:"target"`
	Enabled bool        `json:"enabled"`
}

// Placeholder returns the disabled, zero-size region used to fill unused
// slots.
func Placeholder() MemoryRegion {
	return MemoryRegion{}
}

// IsPlaceholder reports whether r is a padding entry.
func (r MemoryRegion) IsPlaceholder() bool {
	return r == MemoryRegion{}
}

// Last returns the final byte address covered by r. Undefined for Size 0.
func (r MemoryRegion) Last() uint64 {
	return r.Base + (r.Size - 1)
}

// Contains reports whether addr lies in [Base, Base+Size).
func (r MemoryRegion) Contains(addr uint64) bool {
	return r.Size != 0 && addr >= r.Base && addr-r.Base < r.Size
}

// Covers reports whether every byte of o is also in r.
func (r MemoryRegion) Covers(o MemoryRegion) bool {
	return r.Size != 0 && o.Size != 0 && o.Base >= r.Base && o.Last() <= r.Last()
}

// Overlaps reports whether r and o share at least one byte.
func (r MemoryRegion) Overlaps(o MemoryRegion) bool {
	return r.Size != 0 && o.Size != 0 && r.Base <= o.Last() && o.Base <= r.Last()
}

// SameWindow reports whether r and o describe the same (base, size) pair.
func (r MemoryRegion) SameWindow(o MemoryRegion) bool {
	return r.Base == o.Base && r.Size == o.Size
}

func (r MemoryRegion) String() string {
	if r.IsPlaceholder() {
		return "<unused>"
	}
	s := fmt.Sprintf("[%#x, +%#x) %s target=%d", r.Base, r.Size, r.Perm, r.Target)
	if !r.Enabled {
		s += " disabled"
	}
	return s
}

// -----------------------------------------------------------------------------
// Policies
// -----------------------------------------------------------------------------

// MasterPolicy is one master's ordered region list. Index 0 has the highest
// priority: where regions overlap, the earliest entry decides.
type MasterPolicy struct {
	Master  MasterID       `json:"master"`
	Regions []MemoryRegion `json:"regions"`
}

// Match returns the index of the highest-priority region covering addr.
// Disabled regions match like enabled ones; they simply grant nothing.
func (p MasterPolicy) Match(addr uint64) (int, bool) {
	for i, r := range p.Regions {
		if r.Contains(addr) {
			return i, true
		}
	}
	return -1, false
}

// Access returns the rights the master holds at addr.
func (p MasterPolicy) Access(addr uint64) Permissions {
	i, ok := p.Match(addr)
	if !ok || !p.Regions[i].Enabled {
		return PermNone
	}
	return p.Regions[i].Perm
}

// Clone returns a deep copy.
func (p MasterPolicy) Clone() MasterPolicy {
	return MasterPolicy{Master: p.Master, Regions: slices.Clone(p.Regions)}
}

// Equal compares master and regions; nil and empty region lists are equal.
func (p MasterPolicy) Equal(o MasterPolicy) bool {
	return p.Master == o.Master && slices.Equal(p.Regions, o.Regions)
}

// PolicyConfiguration maps each master to its policy. A master missing from
// the map falls back to the compiler's built-in default.
type PolicyConfiguration struct {
	Masters map[MasterID]MasterPolicy `json:"masters"`
}

// NewConfiguration builds a configuration from policies. Later duplicates
// replace earlier ones.
func NewConfiguration(policies ...MasterPolicy) PolicyConfiguration {
	c := PolicyConfiguration{Masters: make(map[MasterID]MasterPolicy, len(policies))}
	for _, p := range policies {
		c.Masters[p.Master] = p.Clone()
	}
	return c
}

// Policy returns the explicit policy for id, if any.
func (c PolicyConfiguration) Policy(id MasterID) (MasterPolicy, bool) {
	p, ok := c.Masters[id]
	return p, ok
}

// IDs returns the configured master ids in sorted order.
func (c PolicyConfiguration) IDs() []MasterID {
	ids := make([]MasterID, 0, len(c.Masters))
	for id := range c.Masters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy.
func (c PolicyConfiguration) Clone() PolicyConfiguration {
	out := PolicyConfiguration{Masters: make(map[MasterID]MasterPolicy, len(c.Masters))}
	for id, p := range c.Masters {
		out.Masters[id] = p.Clone()
	}
	return out
}

// Equal reports whether both configurations name the same masters with
// equal policies.
func (c PolicyConfiguration) Equal(o PolicyConfiguration) bool {
	if len(c.Masters) != len(o.Masters) {
		return false
	}
	for id, p := range c.Masters {
		q, ok := o.Masters[id]
		if !ok || !p.Equal(q) {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Register images
// -----------------------------------------------------------------------------

// RegisterImage is the hardware-facing artifact: one encoded word per
// (master, slot) pair in master-then-slot order.
type RegisterImage struct {
	Slots []uint64 `json:"slots"`
}

// Clone returns a deep copy.
func (i RegisterImage) Clone() RegisterImage {
	return RegisterImage{Slots: slices.Clone(i.Slots)}
}

// Equal reports bit-for-bit equality.
func (i RegisterImage) Equal(o RegisterImage) bool {
	return slices.Equal(i.Slots, o.Slots)
}
