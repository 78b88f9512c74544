package format

import "golang.org/x/exp/constraints"

// Alignment utilities for aperture and region addresses.
// Register encodings drop the low bits implied by alignment, so every
// address that reaches an encoder must already sit on its boundary.

// IsAligned reports whether n is a multiple of align.
// align must be a power of two; zero is never a valid alignment.
func IsAligned[U constraints.Unsigned](n, align U) bool {
	if align == 0 {
		return false
	}
	return n&(align-1) == 0
}

// IsPowerOfTwo reports whether v has exactly one bit set.
func IsPowerOfTwo[U constraints.Unsigned](v U) bool {
	return v != 0 && v&(v-1) == 0
}
