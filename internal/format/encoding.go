package format

import (
	"encoding/binary"
	"fmt"
)

// Raw register images are stored as consecutive little-endian 64-bit words,
// one per slot, in canonical master-then-slot order. There is no header; the
// geometry used to compile the image determines how many words to expect.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+WordSize])
}

// EncodeWords serializes words into a new little-endian buffer.
func EncodeWords(words []uint64) []byte {
	out := make([]byte, len(words)*WordSize)
	for i, w := range words {
		PutU64(out, i*WordSize, w)
	}
	return out
}

// DecodeWords parses a little-endian buffer into words. The buffer length
// must be a whole number of words.
func DecodeWords(b []byte) ([]uint64, error) {
	if len(b)%WordSize != 0 {
		return nil, fmt.Errorf("words: %w (%d bytes is not a multiple of %d)", ErrTruncated, len(b), WordSize)
	}
	words := make([]uint64, len(b)/WordSize)
	for i := range words {
		words[i] = ReadU64(b, i*WordSize)
	}
	return words, nil
}
