// Package mmfile maps policy documents, register images and device tree
// blobs read-only into memory.
package mmfile

import "errors"

// ErrClosed is returned by Bytes after Close.
var ErrClosed = errors.New("mmfile: mapping closed")

// Mapping is a read-only view of a whole file. The slice returned by Bytes
// is only valid until Close.
type Mapping struct {
	data    []byte
	release func([]byte) error
	closed  bool
}

// Bytes returns the mapped contents.
func (m *Mapping) Bytes() ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	return m.data, nil
}

// Len returns the mapped length.
func (m *Mapping) Len() int { return len(m.data) }

// Close releases the mapping. Closing twice is a no-op.
func (m *Mapping) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	data := m.data
	m.data = nil
	if m.release == nil || len(data) == 0 {
		return nil
	}
	return m.release(data)
}

// ReadFile maps path, copies its contents out and releases the mapping.
func ReadFile(path string) ([]byte, error) {
	m, err := Open(path)
	if err != nil {
		return nil, err
	}
	out := make([]byte, m.Len())
	copy(out, m.data)
	if err := m.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
