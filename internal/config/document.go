// Package config reads and writes policy documents and register images.
//
// A policy document names a geometry and lists each master's regions in
// priority order:
//
//	geometry: default
//	masters:
//	  cpu0:
//	    - {base: 0x1000, size: 4K, perm: r}
//	    - {base: 0x0, size: 64K, perm: rw, target: dram}
//
// An image document carries the compiled words instead:
//
//	geometry: default
//	registers:
//	  cpu0: [0x10013, 0x...]
//
// Masters keep the order they are written in; the compiler reorders them by
// geometry.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

var (
	// ErrSyntax is returned for documents that parse as YAML but do not
	// have the expected shape.
	ErrSyntax = errors.New("config: invalid document")
	// ErrDuplicateMaster is returned when a master key appears twice.
	ErrDuplicateMaster = errors.New("config: master listed twice")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a parsed policy or image document.
type Document struct {
	Geometry  string
	Masters   []MasterDoc
	Registers []RegisterDoc

	// Defaulted is set by LoadFile when the file did not exist and the
	// document stands in for the built-in defaults.
	Defaulted bool
}

// MasterDoc is one master's region list as written.
type MasterDoc struct {
	ID      types.MasterID
	Regions []RegionDoc
}

// RegionDoc is one region as written. Nil fields take their defaults:
// perm rwx, target code 0, enabled true.
type RegionDoc struct {
	Base    Address
	Size    Address
	Perm    *string
	Target  *string
	Enabled *bool
}

// RegisterDoc is one master's compiled words.
type RegisterDoc struct {
	ID    types.MasterID
	Words []Address
}

// Decode parses a document. Input that is not valid UTF-8 is read as
// Windows-1252.
func Decode(data []byte) (*Document, error) {
	text, err := toUTF8(data)
	if err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	doc := &Document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, nodeErr(top, "document must be a mapping, found %s", kindName(top))
	}
	for i := 0; i < len(top.Content); i += 2 {
		k, v := top.Content[i], top.Content[i+1]
		switch k.Value {
		case "geometry":
			if err := v.Decode(&doc.Geometry); err != nil {
				return nil, nodeErr(v, "geometry: %v", err)
			}
		case "masters":
			if doc.Masters, err = decodeMasters(v); err != nil {
				return nil, err
			}
		case "registers":
			if doc.Registers, err = decodeRegisters(v); err != nil {
				return nil, err
			}
		default:
			return nil, nodeErr(k, "unknown key %q", k.Value)
		}
	}
	return doc, nil
}

func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("config: decode windows-1252: %w", err)
	}
	return out, nil
}

// forEachKey walks a mapping node, rejecting repeated keys.
func forEachKey(n *yaml.Node, what string, fn func(key string, k, v *yaml.Node) error) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return nodeErr(n, "%s must be a mapping, found %s", what, kindName(n))
	}
	seen := make(map[string]int, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if line, dup := seen[k.Value]; dup {
			return fmt.Errorf("%w: %q at lines %d and %d", ErrDuplicateMaster, k.Value, line, k.Line)
		}
		seen[k.Value] = k.Line
		if err := fn(k.Value, k, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeMasters(n *yaml.Node) ([]MasterDoc, error) {
	var out []MasterDoc
	err := forEachKey(n, "masters", func(key string, _, v *yaml.Node) error {
		md := MasterDoc{ID: types.MasterID(key)}
		items, err := sequence(v, "master "+key)
		if err != nil {
			return err
		}
		for _, item := range items {
			var r RegionDoc
			if err := r.UnmarshalYAML(item); err != nil {
				return fmt.Errorf("master %s: %w", key, err)
			}
			md.Regions = append(md.Regions, r)
		}
		out = append(out, md)
		return nil
	})
	return out, err
}

func decodeRegisters(n *yaml.Node) ([]RegisterDoc, error) {
	var out []RegisterDoc
	err := forEachKey(n, "registers", func(key string, _, v *yaml.Node) error {
		rd := RegisterDoc{ID: types.MasterID(key)}
		items, err := sequence(v, "registers "+key)
		if err != nil {
			return err
		}
		for _, item := range items {
			var a Address
			if err := a.UnmarshalYAML(item); err != nil {
				return fmt.Errorf("registers %s: %w", key, err)
			}
			rd.Words = append(rd.Words, a)
		}
		out = append(out, rd)
		return nil
	})
	return out, err
}

func sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil, nil
	case n.Kind != yaml.SequenceNode:
		return nil, nodeErr(n, "%s must be a list, found %s", what, kindName(n))
	}
	return n.Content, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, rejecting unknown keys.
func (r *RegionDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return nodeErr(n, "region must be a mapping, found %s", kindName(n))
	}
	var haveBase, haveSize bool
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "base":
			if err := r.Base.UnmarshalYAML(v); err != nil {
				return err
			}
			haveBase = true
		case "size":
			if err := r.Size.UnmarshalYAML(v); err != nil {
				return err
			}
			haveSize = true
		case "perm":
			s := v.Value
			r.Perm = &s
		case "target":
			s := v.Value
			r.Target = &s
		case "enabled":
			var b bool
			if err := v.Decode(&b); err != nil {
				return nodeErr(v, "enabled: %v", err)
			}
			r.Enabled = &b
		default:
			return nodeErr(k, "unknown region key %q", k.Value)
		}
	}
	if !haveBase || !haveSize {
		return nodeErr(n, "region needs both base and size")
	}
	return nil
}

// Encode renders doc as YAML.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler with masters in document order.
func (d *Document) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	if d.Geometry != "" {
		addPair(root, "geometry", str(d.Geometry))
	}
	if len(d.Masters) > 0 {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, md := range d.Masters {
			seq := &yaml.Node{Kind: yaml.SequenceNode}
			if len(md.Regions) == 0 {
				seq.Style = yaml.FlowStyle
			}
			for _, r := range md.Regions {
				seq.Content = append(seq.Content, r.node())
			}
			addPair(m, string(md.ID), seq)
		}
		addPair(root, "masters", m)
	}
	if len(d.Registers) > 0 {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, rd := range d.Registers {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, w := range rd.Words {
				seq.Content = append(seq.Content, hex(uint64(w)))
			}
			addPair(m, string(rd.ID), seq)
		}
		addPair(root, "registers", m)
	}
	return root, nil
}

func (r RegionDoc) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	addPair(n, "base", hex(uint64(r.Base)))
	addPair(n, "size", hex(uint64(r.Size)))
	if r.Perm != nil {
		addPair(n, "perm", str(*r.Perm))
	}
	if r.Target != nil {
		addPair(n, "target", str(*r.Target))
	}
	if r.Enabled != nil {
		v := "false"
		if *r.Enabled {
			v = "true"
		}
		addPair(n, "enabled", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v})
	}
	return n
}

func addPair(m *yaml.Node, key string, v *yaml.Node) {
	m.Content = append(m.Content, str(key), v)
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func hex(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: FormatAddress(v)}
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, n.Line, fmt.Sprintf(format, args...))
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return fmt.Sprintf("%q", n.Value)
	case yaml.AliasNode:
		return "an alias"
	}
	return "nothing"
}

// GeometryName returns the document's geometry, or fallback when it names
// none.
func (d *Document) GeometryName(fallback string) string {
	if d.Geometry != "" {
		return d.Geometry
	}
	return fallback
}

// ResolveGeometry picks the geometry named by explicit or by the document.
// Either may be empty; when both are set they must agree.
func (d *Document) ResolveGeometry(explicit string) (geometry.Geometry, error) {
	name := d.GeometryName(explicit)
	if explicit != "" && d.Geometry != "" && explicit != d.Geometry {
		return geometry.Geometry{}, fmt.Errorf("config: document is for geometry %q, not %q", d.Geometry, explicit)
	}
	return geometry.Lookup(name)
}
