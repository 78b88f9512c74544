// Package devicetree reads the memory nodes out of a flattened device tree
// blob, enough to learn how much DDR a board has fitted.
package devicetree

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/u-root/u-root/pkg/dt"
)

// Defaults a parent applies when it does not set #address-cells or
// #size-cells.
const (
	defaultAddressCells = 2
	defaultSizeCells    = 1
)

// ErrMalformed is returned when a blob cannot be read as a device tree, or
// its memory nodes do not follow the cell layout the root declares.
var ErrMalformed = errors.New("devicetree: malformed blob")

// Read decodes a flattened device tree from r and returns its root node.
func Read(r io.ReadSeeker) (*dt.Node, error) {
	fdt, err := dt.ReadFDT(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fdt.RootNode == nil {
		return nil, fmt.Errorf("%w: no root node", ErrMalformed)
	}
	return fdt.RootNode, nil
}

// Parse is Read over an in-memory blob.
func Parse(blob []byte) (*dt.Node, error) {
	return Read(bytes.NewReader(blob))
}

func propU32(n *dt.Node, name string) (uint32, bool) {
	p, ok := n.LookProperty(name)
	if !ok {
		return 0, false
	}
	v, err := p.AsU32()
	return v, err == nil
}

func propString(n *dt.Node, name string) (string, bool) {
	p, ok := n.LookProperty(name)
	if !ok {
		return "", false
	}
	s, err := p.AsString()
	return s, err == nil
}
