package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsString(t *testing.T) {
	assert.Equal(t, "rwx", PermRWX.String())
	assert.Equal(t, "r--", PermRead.String())
	assert.Equal(t, "rw-", PermRW.String())
	assert.Equal(t, "--x", PermExec.String())
	assert.Equal(t, "---", PermNone.String())
}

func TestParsePermissions(t *testing.T) {
	tests := []struct {
		in      string
		want    Permissions
		wantErr bool
	}{
		{"rwx", PermRWX, false},
		{"r-x", PermRX, false},
		{"XR", PermRX, false},
		{"rw", PermRW, false},
		{"", PermNone, false},
		{"---", PermNone, false},
		{"none", PermNone, false},
		{"rr", PermNone, true},
		{"rq", PermNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePermissions(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPermissionsText(t *testing.T) {
	var p Permissions
	require.NoError(t, p.UnmarshalText([]byte("w-x")))
	text, err := p.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "-wx", string(text))
	require.Error(t, p.UnmarshalText([]byte("rwz")))
}

func TestRegionGeometryHelpers(t *testing.T) {
	big := MemoryRegion{Base: 0, Size: 0x100000, Perm: PermRW, Enabled: true}
	small := MemoryRegion{Base: 0x1000, Size: 0x1000, Perm: PermRead, Enabled: true}
	apart := MemoryRegion{Base: 0x200000, Size: 0x1000, Enabled: true}

	assert.True(t, big.Contains(0))
	assert.True(t, big.Contains(0xFFFFF))
	assert.False(t, big.Contains(0x100000))
	assert.True(t, big.Covers(small))
	assert.False(t, small.Covers(big))
	assert.True(t, big.Overlaps(small))
	assert.False(t, big.Overlaps(apart))
	assert.Equal(t, uint64(0x1FFF), small.Last())

	top := MemoryRegion{Base: 1 << 63, Size: 1 << 63}
	assert.True(t, top.Contains(^uint64(0)))
	assert.Equal(t, ^uint64(0), top.Last())
}

func TestPlaceholder(t *testing.T) {
	assert.True(t, Placeholder().IsPlaceholder())
	assert.False(t, MemoryRegion{Size: 0x1000}.IsPlaceholder())
	assert.False(t, Placeholder().Contains(0))
	assert.Equal(t, "<unused>", Placeholder().String())
}

// A narrow read-only carve-out listed ahead of a broad read/write window
// governs its own addresses; the broad window governs the rest.
func TestMasterPolicyCarveOut(t *testing.T) {
	p := MasterPolicy{
		Master: "cpu",
		Regions: []MemoryRegion{
			{Base: 0x1000, Size: 0x1000, Perm: PermRead, Enabled: true},
			{Base: 0x0, Size: 0x100000, Perm: PermRW, Enabled: true},
		},
	}
	i, ok := p.Match(0x1000)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, PermRead, p.Access(0x1000))
	assert.Equal(t, PermRead, p.Access(0x1FFF))
	assert.Equal(t, PermRW, p.Access(0x2000))
	assert.Equal(t, PermNone, p.Access(0x100000))
}

// Lowest index wins even when a later region is narrower.
func TestMasterPolicyLowestIndexWins(t *testing.T) {
	p := MasterPolicy{
		Master: "cpu",
		Regions: []MemoryRegion{
			{Base: 0x0, Size: 0x100000, Perm: PermRW, Enabled: true},
			{Base: 0x1000, Size: 0x1000, Perm: PermRead, Enabled: true},
		},
	}
	i, ok := p.Match(0x1000)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, PermRW, p.Access(0x1000))
}

func TestMasterPolicyDisabledMatchDeniesAccess(t *testing.T) {
	p := MasterPolicy{
		Master: "dma",
		Regions: []MemoryRegion{
			{Base: 0x4000, Size: 0x1000, Perm: PermRWX, Enabled: false},
			{Base: 0x0, Size: 0x10000, Perm: PermRWX, Enabled: true},
		},
	}
	i, ok := p.Match(0x4800)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, PermNone, p.Access(0x4800))
	assert.Equal(t, PermRWX, p.Access(0x3000))
}

func TestConfigurationCloneAndEqual(t *testing.T) {
	c := NewConfiguration(
		MasterPolicy{Master: "b", Regions: []MemoryRegion{{Base: 0, Size: 0x1000, Enabled: true}}},
		MasterPolicy{Master: "a"},
	)
	assert.Equal(t, []MasterID{"a", "b"}, c.IDs())

	d := c.Clone()
	require.True(t, c.Equal(d))
	d.Masters["b"].Regions[0].Perm = PermRead
	assert.False(t, c.Equal(d), "clone must not share region storage")

	empty := NewConfiguration(MasterPolicy{Master: "a", Regions: []MemoryRegion{}})
	assert.True(t, empty.Equal(NewConfiguration(MasterPolicy{Master: "a"})))
}

func TestErrorIsMatchesKind(t *testing.T) {
	cause := Errorf(ErrKindUnalignedBase, "base 0x1500 not aligned to size 0x1000")
	err := &Error{Kind: ErrKindIllegalRegion, Master: "cpu", Index: 2, Msg: "illegal region", Err: cause}
	wrapped := fmt.Errorf("compile: %w", err)

	assert.True(t, errors.Is(wrapped, ErrIllegalRegion))
	assert.True(t, errors.Is(wrapped, ErrUnalignedBase))
	assert.False(t, errors.Is(wrapped, ErrIllegalSize))
	assert.Equal(t, "master cpu[2]: illegal region: base 0x1500 not aligned to size 0x1000", err.Error())

	var typed *Error
	require.True(t, errors.As(wrapped, &typed))
	assert.Equal(t, MasterID("cpu"), typed.Master)
	assert.Equal(t, 2, typed.Index)
}

func TestErrorAttribution(t *testing.T) {
	base := Errorf(ErrKindMalformedRegister, "reserved bits set")
	assert.Equal(t, "reserved bits set", base.Error())
	assert.Equal(t, "master dma: reserved bits set", base.WithMaster("dma").Error())
	assert.Equal(t, "master dma[3]: reserved bits set", base.WithMaster("dma").WithIndex(3).Error())
	assert.Equal(t, "[3]: reserved bits set", base.WithIndex(3).Error())
	assert.Equal(t, -1, base.Index, "attribution must copy")
	assert.Equal(t, "MalformedRegister", ErrKindMalformedRegister.String())
}

func TestDiagnosticReport(t *testing.T) {
	r := NewDiagnosticReport()
	r.Add(Diagnostic{Severity: SevWarning, Code: DiagShadowed, Master: "b", Index: 1, Message: "never matches"})
	r.Add(Diagnostic{Severity: SevInfo, Code: DiagNoAccess, Master: "a", Index: 0, Message: "grants nothing"})
	r.Finalize()

	require.Len(t, r.Diagnostics, 2)
	assert.Equal(t, MasterID("a"), r.Diagnostics[0].Master)
	assert.Equal(t, 1, r.Summary.Warnings)
	assert.False(t, r.HasErrors())
	assert.True(t, r.HasAnyIssues())
	assert.Contains(t, r.FormatText(), "warning: master b[1]: never matches (shadowed)")
	assert.Len(t, r.ByMaster["b"], 1)
}
