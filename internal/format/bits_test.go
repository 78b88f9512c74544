package format

import "testing"

func TestFieldPutGet(t *testing.T) {
	f := Field{Offset: 4, Width: 6}
	if f.Mask() != 0x3F0 {
		t.Fatalf("mask: got 0x%x want 0x3f0", f.Mask())
	}
	w := f.Put(0xFFFF_FFFF_FFFF_FFFF, 0x15)
	if got := f.Get(w); got != 0x15 {
		t.Fatalf("get: got 0x%x want 0x15", got)
	}
	if w&^f.Mask() != 0xFFFF_FFFF_FFFF_FFFF&^f.Mask() {
		t.Fatalf("put clobbered bits outside the field: 0x%x", w)
	}
}

func TestFieldFullWidth(t *testing.T) {
	f := Field{Offset: 0, Width: 64}
	if f.Max() != ^uint64(0) || f.Mask() != ^uint64(0) {
		t.Fatalf("64-bit field: max 0x%x mask 0x%x", f.Max(), f.Mask())
	}
	if got := f.Get(f.Put(0, 0xDEAD_BEEF_0000_0001)); got != 0xDEAD_BEEF_0000_0001 {
		t.Fatalf("round trip: got 0x%x", got)
	}
}

func TestFieldZeroWidth(t *testing.T) {
	f := Field{Offset: 12, Width: 0}
	if f.Mask() != 0 || f.Get(^uint64(0)) != 0 || f.Put(7, 1) != 7 {
		t.Fatalf("zero-width field must be inert")
	}
}

func TestFieldOverlaps(t *testing.T) {
	tests := []struct {
		a, b Field
		want bool
	}{
		{Field{0, 4}, Field{4, 4}, false},
		{Field{0, 5}, Field{4, 4}, true},
		{Field{10, 6}, Field{0, 11}, true},
		{Field{10, 0}, Field{0, 64}, false},
		{Bit(3), Bit(3), true},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%+v overlaps %+v: got %v want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFitsIn(t *testing.T) {
	tests := []struct {
		name       string
		base, size uint64
		width      uint
		want       bool
	}{
		{"inside", 0x1000, 0x1000, 32, true},
		{"touches top", 0x8000_0000, 0x8000_0000, 32, true},
		{"past top", 0x8000_0000, 0x8000_0001, 32, false},
		{"whole 64-bit space", 0, 0, 64, true},
		{"top half of 64-bit space", 1 << 63, 1 << 63, 64, true},
		{"wraps 64-bit space", 1 << 63, (1 << 63) + 0x1000, 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitsIn(tt.base, tt.size, tt.width); got != tt.want {
				t.Fatalf("FitsIn(0x%x, 0x%x, %d) = %v, want %v", tt.base, tt.size, tt.width, got, tt.want)
			}
		})
	}
}

func TestPowerOfTwoHelpers(t *testing.T) {
	for _, v := range []uint64{1, 2, 0x1000, 1 << 63} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(0x%x) = false", v)
		}
		if uint64(1)<<Log2(v) != v {
			t.Errorf("Log2(0x%x) = %d", v, Log2(v))
		}
	}
	for _, v := range []uint64{0, 3, 0x3000, 0x1001} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(0x%x) = true", v)
		}
	}
	if !IsAligned(uint64(0x3000), 0x1000) || IsAligned(uint64(0x1500), 0x1000) || IsAligned(uint64(4), 0) {
		t.Fatalf("IsAligned")
	}
	if WidthMask(0) != 0 || WidthMask(4) != 0xf || WidthMask(64) != ^uint64(0) {
		t.Fatalf("WidthMask")
	}
}
