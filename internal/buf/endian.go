// Package buf holds bounds-checked big-endian readers for values taken
// from device tree properties.
package buf

import "encoding/binary"

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// U64BE reads a big-endian uint64 from b. Returns 0 when b is too short.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Cells reads a number stored as n big-endian 32-bit cells, most
// significant first. Only one and two cells fit a uint64.
func Cells(b []byte, n int) (uint64, bool) {
	switch {
	case n == 1 && len(b) >= 4:
		return uint64(U32BE(b)), true
	case n == 2 && len(b) >= 8:
		return U64BE(b), true
	}
	return 0, false
}
