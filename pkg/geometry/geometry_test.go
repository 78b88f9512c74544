package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

func smallParams() Params {
	return Params{
		Name:           "small",
		Granularity:    0x100,
		AddressWidth:   20,
		RegisterWidth:  32,
		SlotsPerMaster: 2,
		Masters:        []types.MasterID{"a", "b"},
		Targets:        []string{"mem"},
		Layout: Layout{
			Enabled: format.Bit(0),
			Read:    format.Bit(1),
			Write:   format.Bit(2),
			Exec:    format.Bit(3),
			Size:    format.Field{Offset: 4, Width: 4},
			Target:  format.Field{Offset: 8, Width: 2},
			Base:    format.Field{Offset: 12, Width: 12},
		},
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range Names() {
		g, err := Lookup(name)
		require.NoError(t, err, name)
		require.Equal(t, name, g.Name())
		require.NotZero(t, g.SlotCount())
	}
	g, err := Lookup("")
	require.NoError(t, err)
	require.Equal(t, NameDefault, g.Name())

	_, err = Lookup("nope")
	require.ErrorIs(t, err, types.ErrGeometry)
}

func TestDefaultReservedMask(t *testing.T) {
	g := Default()
	// Bits 44..63 are unassigned in the default layout.
	assert.Equal(t, uint64(0xFFFF_F000_0000_0000), g.ReservedMask())
	assert.Equal(t, uint64(1)<<40, g.AddressLimit())
	assert.Equal(t, uint(12), g.GranularityShift())
	assert.Equal(t, 32, g.TotalSlots())
}

func TestIsLegalSize(t *testing.T) {
	g := Default()
	tests := []struct {
		size uint64
		want bool
	}{
		{0x1000, true},
		{0x100000, true},
		{uint64(1) << 40, true},
		{0, false},
		{0x800, false},            // below granularity
		{0x3000, false},           // not a power of two
		{uint64(1) << 41, false},  // beyond the address space
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.IsLegalSize(tt.size), "size %#x", tt.size)
	}
}

func TestIsLegalBase(t *testing.T) {
	g := Default()
	tests := []struct {
		base, size uint64
		want       bool
	}{
		{0x0, 0x1000, true},
		{0x3000, 0x1000, true},
		{0x1500, 0x1000, false},
		{0x1000, 0x2000, false},
		{(uint64(1) << 40) - 0x1000, 0x1000, true},
		{uint64(1) << 40, 0x1000, false},
		{0, uint64(1) << 40, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.IsLegalBase(tt.base, tt.size), "base %#x size %#x", tt.base, tt.size)
	}
}

func TestTargets(t *testing.T) {
	g := Default()
	code, ok := g.TargetCode("periph")
	require.True(t, ok)
	assert.Equal(t, types.Target(2), code)
	assert.Equal(t, "periph", g.TargetName(code))

	code, ok = g.TargetCode("0x11")
	require.True(t, ok)
	assert.Equal(t, types.Target(17), code)
	assert.Equal(t, "17", g.TargetName(code))

	_, ok = g.TargetCode("flash")
	assert.False(t, ok)

	assert.True(t, g.IsLegalTarget(63))
	assert.False(t, g.IsLegalTarget(64))
}

func TestMasters(t *testing.T) {
	g := MPFS()
	ids := g.Masters()
	require.Len(t, ids, 10)
	i, ok := g.MasterIndex("gem0")
	require.True(t, ok)
	assert.Equal(t, 4, i)
	assert.False(t, g.HasMaster("cpu0"))

	ids[0] = "mutated"
	assert.Equal(t, types.MasterID("fic0"), g.Masters()[0], "Masters must return a copy")
}

func TestNewRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   string
	}{
		{"granularity", func(p *Params) { p.Granularity = 0x300 }, "not a power of two"},
		{"address width", func(p *Params) { p.AddressWidth = 64 }, "address width"},
		{"register width", func(p *Params) { p.RegisterWidth = 65 }, "register width"},
		{"slots", func(p *Params) { p.SlotsPerMaster = 0 }, "slots per master"},
		{"no masters", func(p *Params) { p.Masters = nil }, "no masters"},
		{"dup master", func(p *Params) { p.Masters = []types.MasterID{"a", "a"} }, "listed twice"},
		{"numeric target", func(p *Params) { p.Targets = []string{"7"} }, "shadow"},
		{"wide flag", func(p *Params) { p.Layout.Read = format.Field{Offset: 1, Width: 2} }, "one bit wide"},
		{"overlap", func(p *Params) { p.Layout.Target = format.Field{Offset: 7, Width: 2} }, "overlap"},
		{"past register", func(p *Params) { p.Layout.Base = format.Field{Offset: 24, Width: 12} }, "exceeds 32-bit register"},
		{"narrow base", func(p *Params) { p.Layout.Base.Width = 11 }, "base field holds 11 bits"},
		{"narrow size", func(p *Params) { p.Layout.Size.Width = 2 }, "cannot express"},
		{"too many targets", func(p *Params) { p.Targets = []string{"a", "b", "c", "d", "e"} }, "cannot hold 5 targets"},
		{"wide target", func(p *Params) {
			p.RegisterWidth = 64
			p.Layout.Target = format.Field{Offset: 24, Width: 33}
		}, "exceeds 32-bit target codes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smallParams()
			tt.mutate(&p)
			_, err := New(p)
			require.Error(t, err)
			require.True(t, errors.Is(err, types.ErrGeometry))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewAcceptsSmallParams(t *testing.T) {
	g, err := New(smallParams())
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0x00FF_F3FF), g.ReservedMask())
	assert.Equal(t, uint64(1)<<20, g.MaxSize())
	assert.Contains(t, g.Describe(), "2 masters x 2 slots")

	fields := g.FieldTable()
	require.Len(t, fields, 7)
	assert.Equal(t, "enabled", fields[0].Name)
	assert.Equal(t, "base", fields[6].Name)
}

func TestMustNewPanics(t *testing.T) {
	p := smallParams()
	p.Granularity = 0
	assert.Panics(t, func() { MustNew(p) })
}
