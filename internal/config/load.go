package config

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ConchuOD/memory-aperature-configurator/internal/mmfile"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// LoadFile reads a document from path. A missing file yields an empty
// document with Defaulted set, which compiles to the built-in defaults.
func LoadFile(path string) (*Document, error) {
	data, err := mmfile.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{Defaulted: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// IsBinaryImage reports whether path holds a raw image rather than a
// document: a .bin or .img extension, or a NUL byte in the contents.
func IsBinaryImage(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".img":
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}

// ReadImage loads a register image from path, raw or as a document. The
// geometry comes from explicit, else from the document, else the default.
func ReadImage(path, explicit string) (geometry.Geometry, types.RegisterImage, error) {
	data, err := mmfile.ReadFile(path)
	if err != nil {
		return geometry.Geometry{}, types.RegisterImage{}, err
	}
	if IsBinaryImage(path, data) {
		g, err := geometry.Lookup(explicit)
		if err != nil {
			return geometry.Geometry{}, types.RegisterImage{}, err
		}
		img, err := DecodeBinary(g, data)
		return g, img, err
	}
	doc, err := Decode(data)
	if err != nil {
		return geometry.Geometry{}, types.RegisterImage{}, err
	}
	g, err := doc.ResolveGeometry(explicit)
	if err != nil {
		return geometry.Geometry{}, types.RegisterImage{}, err
	}
	img, err := doc.Image(g)
	return g, img, err
}
