// Package format holds the low-level bit and byte helpers shared by the
// register codec and the image readers/writers. Nothing here knows about
// masters, policies or geometries; it only moves bits.
package format

const (
	// WordBits is the width of a register word as held in memory. Hardware
	// registers may be narrower; the unused high bits are reserved.
	WordBits = 64

	// WordSize is the number of bytes in a serialized register word.
	// Raw images are a flat little-endian array of these.
	WordSize = WordBits / 8
)

// Binary size units.
const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
	TiB = 1 << 40
)
