package config

import (
	"errors"
	"fmt"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Configuration converts the document's masters into a policy
// configuration for g. Masters unknown to g are carried through so the
// compiler can report them.
func (d *Document) Configuration(g geometry.Geometry) (types.PolicyConfiguration, error) {
	cfg := types.NewConfiguration()
	for _, md := range d.Masters {
		p := types.MasterPolicy{Master: md.ID}
		for i, rd := range md.Regions {
			r, err := rd.Region(g)
			if err != nil {
				var te *types.Error
				if errors.As(err, &te) {
					return types.PolicyConfiguration{}, te.WithMaster(md.ID).WithIndex(i)
				}
				return types.PolicyConfiguration{}, fmt.Errorf("master %s[%d]: %w", md.ID, i, err)
			}
			p.Regions = append(p.Regions, r)
		}
		cfg.Masters[md.ID] = p
	}
	return cfg, nil
}

// Region applies defaults and resolves the target name against g.
func (rd RegionDoc) Region(g geometry.Geometry) (types.MemoryRegion, error) {
	r := types.MemoryRegion{
		Base:    uint64(rd.Base),
		Size:    uint64(rd.Size),
		Perm:    types.PermRWX,
		Enabled: true,
	}
	if rd.Perm != nil {
		p, err := types.ParsePermissions(*rd.Perm)
		if err != nil {
			return types.MemoryRegion{}, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		r.Perm = p
	}
	if rd.Target != nil && *rd.Target != "" {
		code, ok := g.TargetCode(*rd.Target)
		if !ok {
			return types.MemoryRegion{}, types.Errorf(types.ErrKindIllegalTarget, "target %q is not one of %v", *rd.Target, g.Targets())
		}
		r.Target = code
	}
	if rd.Enabled != nil {
		r.Enabled = *rd.Enabled
	}
	return r, nil
}

// FromConfiguration renders cfg as a document for g. Masters follow g's
// order, then any unknown ones in sorted order. Every field is written out.
func FromConfiguration(g geometry.Geometry, cfg types.PolicyConfiguration) *Document {
	doc := &Document{Geometry: g.Name()}
	add := func(id types.MasterID, p types.MasterPolicy) {
		md := MasterDoc{ID: id}
		for _, r := range p.Regions {
			md.Regions = append(md.Regions, RegionFromMemory(g, r))
		}
		doc.Masters = append(doc.Masters, md)
	}
	for _, id := range g.Masters() {
		if p, ok := cfg.Policy(id); ok {
			add(id, p)
		}
	}
	for _, id := range cfg.IDs() {
		if !g.HasMaster(id) {
			add(id, cfg.Masters[id])
		}
	}
	return doc
}

// RegionFromMemory is the inverse of RegionDoc.Region.
func RegionFromMemory(g geometry.Geometry, r types.MemoryRegion) RegionDoc {
	perm := r.Perm.String()
	if r.Perm == types.PermNone {
		perm = "none"
	}
	target := g.TargetName(r.Target)
	enabled := r.Enabled
	return RegionDoc{
		Base:    Address(r.Base),
		Size:    Address(r.Size),
		Perm:    &perm,
		Target:  &target,
		Enabled: &enabled,
	}
}

// Image assembles the document's registers into an image for g. Every
// master of g must be present with exactly SlotCount words.
func (d *Document) Image(g geometry.Geometry) (types.RegisterImage, error) {
	byID := make(map[types.MasterID][]Address, len(d.Registers))
	for _, rd := range d.Registers {
		if !g.HasMaster(rd.ID) {
			return types.RegisterImage{}, &types.Error{Kind: types.ErrKindUnknownMaster, Master: rd.ID, Index: -1, Msg: "not in geometry " + g.Name()}
		}
		byID[rd.ID] = rd.Words
	}
	n := g.SlotCount()
	img := types.RegisterImage{Slots: make([]uint64, 0, g.TotalSlots())}
	for _, id := range g.Masters() {
		words, ok := byID[id]
		if !ok || len(words) != n {
			return types.RegisterImage{}, &types.Error{
				Kind: types.ErrKindMalformedRegister, Master: id, Index: -1,
				Msg: fmt.Sprintf("has %d register words, geometry %s needs %d", len(words), g.Name(), n),
			}
		}
		for _, w := range words {
			img.Slots = append(img.Slots, uint64(w))
		}
	}
	return img, nil
}

// FromImage renders img as a register document for g. img must hold
// TotalSlots words.
func FromImage(g geometry.Geometry, img types.RegisterImage) (*Document, error) {
	if len(img.Slots) != g.TotalSlots() {
		return nil, types.Errorf(types.ErrKindMalformedRegister, "image has %d slots, geometry %s needs %d", len(img.Slots), g.Name(), g.TotalSlots())
	}
	doc := &Document{Geometry: g.Name()}
	n := g.SlotCount()
	for mi, id := range g.Masters() {
		rd := RegisterDoc{ID: id}
		for _, w := range img.Slots[mi*n : (mi+1)*n] {
			rd.Words = append(rd.Words, Address(w))
		}
		doc.Registers = append(doc.Registers, rd)
	}
	return doc, nil
}

// DecodeBinary parses a raw little-endian image for g.
func DecodeBinary(g geometry.Geometry, data []byte) (types.RegisterImage, error) {
	words, err := format.DecodeWords(data)
	if err != nil {
		return types.RegisterImage{}, &types.Error{Kind: types.ErrKindMalformedRegister, Index: -1, Msg: "raw image", Err: err}
	}
	if len(words) != g.TotalSlots() {
		return types.RegisterImage{}, types.Errorf(types.ErrKindMalformedRegister, "raw image has %d words, geometry %s needs %d", len(words), g.Name(), g.TotalSlots())
	}
	return types.RegisterImage{Slots: words}, nil
}

// EncodeBinary serializes img as raw little-endian words.
func EncodeBinary(img types.RegisterImage) []byte {
	return format.EncodeWords(img.Slots)
}
