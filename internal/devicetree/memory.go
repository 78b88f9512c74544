package devicetree

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/ConchuOD/memory-aperature-configurator/internal/buf"
	"github.com/ConchuOD/memory-aperature-configurator/internal/mmfile"
)

// MemoryBank is one (address, size) pair from a memory node's reg property.
type MemoryBank struct {
	Label   string `json:"label" yaml:"label"`
	Address uint64 `json:"address" yaml:"address"`
	Size    uint64 `json:"size" yaml:"size"`
}

// MemoryNodes returns every bank listed by the root's children whose
// device_type is "memory". Nodes with status other than "okay" or "ok" are
// skipped. Cell counts come from the root's #address-cells and
// #size-cells.
func MemoryNodes(root *dt.Node) ([]MemoryBank, error) {
	ac := cells(root, "#address-cells", defaultAddressCells)
	sc := cells(root, "#size-cells", defaultSizeCells)
	if ac == 0 || ac > 2 || sc == 0 || sc > 2 {
		return nil, fmt.Errorf("%w: unsupported cells %d/%d", ErrMalformed, ac, sc)
	}
	stride := int(ac+sc) * 4

	var banks []MemoryBank
	for _, child := range root.Children {
		if kind, _ := propString(child, "device_type"); kind != "memory" {
			continue
		}
		if !enabled(child) {
			continue
		}
		prop, ok := child.LookProperty("reg")
		if !ok {
			continue
		}
		reg := prop.Value
		if len(reg)%stride != 0 {
			return nil, fmt.Errorf("%w: %s reg is %d bytes, not a multiple of %d", ErrMalformed, child.Name, len(reg), stride)
		}
		for off := 0; off < len(reg); off += stride {
			addr, _ := buf.Cells(reg[off:], int(ac))
			size, _ := buf.Cells(reg[off+int(ac)*4:], int(sc))
			banks = append(banks, MemoryBank{Label: child.Name, Address: addr, Size: size})
		}
	}
	return banks, nil
}

// TotalSize sums the sizes of banks.
func TotalSize(banks []MemoryBank) uint64 {
	var total uint64
	for _, b := range banks {
		total += b.Size
	}
	return total
}

// ReadMemory maps the blob at path and returns its memory banks.
// Errors from the blob itself wrap ErrMalformed.
func ReadMemory(path string) ([]MemoryBank, error) {
	m, err := mmfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	blob, err := m.Bytes()
	if err != nil {
		return nil, err
	}
	root, err := Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	banks, err := MemoryNodes(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return banks, nil
}

func cells(n *dt.Node, name string, def uint32) uint32 {
	if v, ok := propU32(n, name); ok {
		return v
	}
	return def
}

func enabled(n *dt.Node) bool {
	s, ok := propString(n, "status")
	return !ok || s == "okay" || s == "ok"
}

