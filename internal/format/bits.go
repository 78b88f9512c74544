package format

import "math/bits"

// Field is a contiguous run of bits inside a register word.
//
// Layout:
//
//	bit 63 ............ Offset+Width-1 ... Offset ............ bit 0
//	        (other)     [      field value     ]     (other)
type Field struct {
	Offset uint `json:"offset" yaml:"offset"`
	Width  uint `json:"width" yaml:"width"`
}

// Bit returns a one-bit field at pos.
func Bit(pos uint) Field {
	return Field{Offset: pos, Width: 1}
}

// End returns the first bit position after the field.
func (f Field) End() uint {
	return f.Offset + f.Width
}

// Max returns the largest value the field can hold.
func (f Field) Max() uint64 {
	return WidthMask(f.Width)
}

// Mask returns the field's bits in word position.
func (f Field) Mask() uint64 {
	if f.Width == 0 || f.Offset >= WordBits {
		return 0
	}
	return f.Max() << f.Offset
}

// Fits reports whether v can be stored in the field without truncation.
func (f Field) Fits(v uint64) bool {
	return v <= f.Max()
}

// Get extracts the field value from word.
func (f Field) Get(word uint64) uint64 {
	if f.Width == 0 {
		return 0
	}
	return (word & f.Mask()) >> f.Offset
}

// Put returns word with the field replaced by v. Bits of v beyond the field
// width are discarded; callers check Fits first.
func (f Field) Put(word, v uint64) uint64 {
	if f.Width == 0 {
		return word
	}
	return (word &^ f.Mask()) | ((v << f.Offset) & f.Mask())
}

// Overlaps reports whether the two fields share any bit.
func (f Field) Overlaps(o Field) bool {
	if f.Width == 0 || o.Width == 0 {
		return false
	}
	return f.Offset < o.End() && o.Offset < f.End()
}

// WidthMask returns a mask of the low width bits.
func WidthMask(width uint) uint64 {
	if width >= WordBits {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Log2 returns the exponent of a power of two. The result is undefined for
// other values.
func Log2(v uint64) uint {
	return uint(bits.TrailingZeros64(v))
}

// FitsIn reports whether [base, base+size) lies inside a width-bit address
// space, without overflowing.
func FitsIn(base, size uint64, width uint) bool {
	end, carry := bits.Add64(base, size, 0)
	if carry != 0 {
		// base+size == 2^64 exactly is the top of a 64-bit space.
		return width >= WordBits && end == 0
	}
	if width >= WordBits {
		return true
	}
	return end <= uint64(1)<<width
}
