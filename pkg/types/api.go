package types

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindIllegalRegion     ErrKind = iota // region violates alignment/size/range rules
	ErrKindTooManyRegions                   // more regions than hardware slots
	ErrKindDuplicateRegion                  // identical (base, size) at two priorities
	ErrKindMalformedRegister                // register value cannot be decoded
	ErrKindUnknownMaster                    // master not in the geometry's fixed set
	ErrKindUnalignedBase                    // base is not a multiple of size
	ErrKindIllegalSize                      // size not a power of two or out of range
	ErrKindAddressRange                     // base+size beyond the address width
	ErrKindIllegalTarget                    // target code does not fit its field
	ErrKindGeometry                         // inconsistent geometry parameters
)

var errKindNames = [...]string{
	ErrKindIllegalRegion:     "IllegalRegion",
	ErrKindTooManyRegions:    "TooManyRegions",
	ErrKindDuplicateRegion:   "DuplicateRegion",
	ErrKindMalformedRegister: "MalformedRegister",
	ErrKindUnknownMaster:     "UnknownMaster",
	ErrKindUnalignedBase:     "UnalignedBase",
	ErrKindIllegalSize:       "IllegalSize",
	ErrKindAddressRange:      "AddressRange",
	ErrKindIllegalTarget:     "IllegalTarget",
	ErrKindGeometry:          "Geometry",
}

// String implements the Stringer interface for ErrKind
func (k ErrKind) String() string {
	if k >= 0 && int(k) < len(errKindNames) {
		return errKindNames[k]
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error is a typed error with optional attribution and an underlying cause.
// Master is empty and Index is -1 when they do not apply.
type Error struct {
	Kind   ErrKind
	Master MasterID
	Index  int // region index (compile) or slot index (decompile)
	Msg    string
	Err    error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	switch {
	case e.Master != "" && e.Index >= 0:
		fmt.Fprintf(&b, "master %s[%d]: ", e.Master, e.Index)
	case e.Master != "":
		fmt.Fprintf(&b, "master %s: ", e.Master)
	case e.Index >= 0:
		fmt.Fprintf(&b, "[%d]: ", e.Index)
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of attribution.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && e != nil && t.Kind == e.Kind
}

// Errorf builds an unattributed error of the given kind.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

// WithMaster returns a copy of e attributed to master.
func (e *Error) WithMaster(master MasterID) *Error {
	c := *e
	c.Master = master
	return &c
}

// WithIndex returns a copy of e attributed to a region or slot index.
func (e *Error) WithIndex(index int) *Error {
	c := *e
	c.Index = index
	return &c
}

// Sentinels for errors.Is. They carry no attribution.
var (
	// ErrIllegalRegion indicates a region that cannot be encoded.
	ErrIllegalRegion = &Error{Kind: ErrKindIllegalRegion, Index: -1, Msg: "illegal region"}
	// ErrTooManyRegions indicates a master declares more regions than slots.
	ErrTooManyRegions = &Error{Kind: ErrKindTooManyRegions, Index: -1, Msg: "too many regions"}
	// ErrDuplicateRegion indicates the same (base, size) appears twice.
	ErrDuplicateRegion = &Error{Kind: ErrKindDuplicateRegion, Index: -1, Msg: "duplicate region"}
	// ErrMalformedRegister indicates a register value that cannot be decoded.
	ErrMalformedRegister = &Error{Kind: ErrKindMalformedRegister, Index: -1, Msg: "malformed register"}
	// ErrUnknownMaster indicates a master id outside the geometry.
	ErrUnknownMaster = &Error{Kind: ErrKindUnknownMaster, Index: -1, Msg: "unknown master"}
	// ErrUnalignedBase indicates base % size != 0.
	ErrUnalignedBase = &Error{Kind: ErrKindUnalignedBase, Index: -1, Msg: "unaligned base"}
	// ErrIllegalSize indicates a size the hardware cannot express.
	ErrIllegalSize = &Error{Kind: ErrKindIllegalSize, Index: -1, Msg: "illegal size"}
	// ErrAddressRange indicates a region running past the address width.
	ErrAddressRange = &Error{Kind: ErrKindAddressRange, Index: -1, Msg: "address out of range"}
	// ErrIllegalTarget indicates a target code too wide for its field.
	ErrIllegalTarget = &Error{Kind: ErrKindIllegalTarget, Index: -1, Msg: "illegal target"}
	// ErrGeometry indicates inconsistent geometry parameters.
	ErrGeometry = &Error{Kind: ErrKindGeometry, Index: -1, Msg: "invalid geometry"}
)
