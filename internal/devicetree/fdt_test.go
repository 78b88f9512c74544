package devicetree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConchuOD/memory-aperature-configurator/internal/testutil"
)

// Blob layout constants for building fixtures.
const (
	fdtMagic   = 0xd00dfeed
	headerSize = 40

	tokenBeginNode = 0x1
	tokenEndNode   = 0x2
	tokenProp      = 0x3
	tokenNop       = 0x4
	tokenEnd       = 0x9
)

// builder assembles a version 17 blob.
type builder struct {
	st      []byte
	strings []byte
	offsets map[string]uint32
}

func newBuilder() *builder {
	return &builder{offsets: map[string]uint32{}}
}

func (b *builder) u32(v uint32) {
	b.st = binary.BigEndian.AppendUint32(b.st, v)
}

func (b *builder) pad() {
	for len(b.st)%4 != 0 {
		b.st = append(b.st, 0)
	}
}

func (b *builder) begin(name string) *builder {
	b.u32(tokenBeginNode)
	b.st = append(b.st, name...)
	b.st = append(b.st, 0)
	b.pad()
	return b
}

func (b *builder) end() *builder {
	b.u32(tokenEndNode)
	return b
}

func (b *builder) prop(name string, value []byte) *builder {
	off, ok := b.offsets[name]
	if !ok {
		off = uint32(len(b.strings))
		b.offsets[name] = off
		b.strings = append(append(b.strings, name...), 0)
	}
	b.u32(tokenProp)
	b.u32(uint32(len(value)))
	b.u32(off)
	b.st = append(b.st, value...)
	b.pad()
	return b
}

func (b *builder) str(name, value string) *builder {
	return b.prop(name, append([]byte(value), 0))
}

func (b *builder) cells(name string, vs ...uint32) *builder {
	var v []byte
	for _, c := range vs {
		v = binary.BigEndian.AppendUint32(v, c)
	}
	return b.prop(name, v)
}

func (b *builder) blob() []byte {
	b.u32(tokenEnd)
	const rsvmap = 16 // one empty reservation entry
	offStruct := uint32(headerSize + rsvmap)
	offStrings := offStruct + uint32(len(b.st))
	total := offStrings + uint32(len(b.strings))

	out := make([]byte, 0, total)
	for _, v := range []uint32{fdtMagic, total, offStruct, offStrings, headerSize, 17, 16, 0, uint32(len(b.strings)), uint32(len(b.st))} {
		out = binary.BigEndian.AppendUint32(out, v)
	}
	out = append(out, make([]byte, rsvmap)...)
	out = append(out, b.st...)
	return append(out, b.strings...)
}

func boardBlob() []byte {
	b := newBuilder()
	b.begin("").
		cells("#address-cells", 2).
		cells("#size-cells", 2).
		str("model", "test board")
	b.u32(tokenNop)
	b.begin("cpus").cells("#address-cells", 1).end()
	b.begin("memory@80000000").
		str("device_type", "memory").
		cells("reg", 0x0, 0x8000_0000, 0x0, 0x4000_0000).
		end()
	b.begin("memory@1000000000").
		str("device_type", "memory").
		str("status", "okay").
		cells("reg", 0x10, 0x0, 0x0, 0x2000_0000, 0x10, 0x4000_0000, 0x0, 0x2000_0000).
		end()
	b.begin("memory@c0000000").
		str("device_type", "memory").
		str("status", "disabled").
		cells("reg", 0x0, 0xC000_0000, 0x0, 0x1000_0000).
		end()
	b.begin("reserved").str("device_type", "memory").end()
	b.end()
	return b.blob()
}

func TestParseTree(t *testing.T) {
	root, err := Parse(boardBlob())
	require.NoError(t, err)
	assert.Equal(t, "", root.Name)
	require.Len(t, root.Children, 5)
	assert.Equal(t, "cpus", root.Children[0].Name)

	model, ok := propString(root, "model")
	require.True(t, ok)
	assert.Equal(t, "test board", model)

	ac, ok := propU32(root, "#address-cells")
	require.True(t, ok)
	assert.Equal(t, uint32(2), ac)

	_, ok = root.LookProperty("compatible")
	assert.False(t, ok)
	_, ok = propU32(root, "model")
	assert.False(t, ok)
}

func TestMemoryNodes(t *testing.T) {
	root, err := Parse(boardBlob())
	require.NoError(t, err)
	banks, err := MemoryNodes(root)
	require.NoError(t, err)
	require.Equal(t, []MemoryBank{
		{Label: "memory@80000000", Address: 0x8000_0000, Size: 0x4000_0000},
		{Label: "memory@1000000000", Address: 0x10_0000_0000, Size: 0x2000_0000},
		{Label: "memory@1000000000", Address: 0x10_4000_0000, Size: 0x2000_0000},
	}, banks)
	assert.Equal(t, uint64(0x8000_0000), TotalSize(banks))
}

func TestMemoryNodesDefaultCells(t *testing.T) {
	b := newBuilder()
	b.begin("").
		begin("memory@0").
		str("device_type", "memory").
		cells("reg", 0x0, 0x0, 0x1000_0000).
		end().
		end()
	root, err := Parse(b.blob())
	require.NoError(t, err)
	banks, err := MemoryNodes(root)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, uint64(0x1000_0000), banks[0].Size)
}

func TestMemoryNodesBadReg(t *testing.T) {
	b := newBuilder()
	b.begin("").
		cells("#address-cells", 1).
		cells("#size-cells", 1).
		begin("memory@0").
		str("device_type", "memory").
		cells("reg", 0x0, 0x1000, 0x2000).
		end().
		end()
	root, err := Parse(b.blob())
	require.NoError(t, err)
	_, err = MemoryNodes(root)
	require.ErrorIs(t, err, ErrMalformed)

	b = newBuilder()
	b.begin("").cells("#size-cells", 3).end()
	root, err = Parse(b.blob())
	require.NoError(t, err)
	_, err = MemoryNodes(root)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejects(t *testing.T) {
	good := boardBlob()

	_, err := Parse(good[:20])
	require.ErrorIs(t, err, ErrMalformed)

	bad := append([]byte(nil), good...)
	bad[0] = 0
	_, err = Parse(bad)
	require.ErrorIs(t, err, ErrMalformed)

	// Cut inside the structure block.
	_, err = Parse(good[:headerSize+16+8])
	require.ErrorIs(t, err, ErrMalformed)

	b := newBuilder()
	b.begin("")
	b.u32(0x7)
	b.end()
	_, err = Parse(b.blob())
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadMemoryFixture(t *testing.T) {
	banks, err := ReadMemory(testutil.ResolvePath(t, testutil.IcicleDTB))
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, uint64(0x8000_0000), TotalSize(banks))
}

func TestReadMemoryTemp(t *testing.T) {
	path := testutil.WriteTemp(t, "board.dtb", boardBlob())
	banks, err := ReadMemory(path)
	require.NoError(t, err)
	assert.Len(t, banks, 3)

	_, err = ReadMemory(testutil.WriteTemp(t, "junk.dtb", []byte("not a device tree at all, just some plain text padding")))
	require.ErrorIs(t, err, ErrMalformed)
}
