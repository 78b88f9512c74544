package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBigEndianReads(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00, 0x10, 0x40, 0x00, 0x00, 0x00}

	assert.Equal(t, uint32(0x10), U32BE(b))
	assert.Equal(t, uint64(0x10_4000_0000), U64BE(b))
	assert.Zero(t, U32BE(b[:3]))
	assert.Zero(t, U64BE(b[:7]))
}

func TestCells(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00, 0x10, 0x40, 0x00, 0x00, 0x00}

	v, ok := Cells(b, 1)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x10), v)

	v, ok = Cells(b, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x10_4000_0000), v)

	_, ok = Cells(b[:4], 2)
	assert.False(t, ok)
	_, ok = Cells(b, 3)
	assert.False(t, ok)
}
