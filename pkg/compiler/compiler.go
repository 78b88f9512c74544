// Package compiler turns per-master region policies into a register image
// and recovers policies from an image.
//
// Compilation is all-or-nothing: every master is validated before any word
// is produced, and a failure anywhere yields no image. Masters that a
// configuration leaves out receive the default policy, one enabled RWX
// window over the whole address space on target 0.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/codec"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/validate"
)

// Compiler compiles and decompiles for one geometry. It is immutable after
// New and safe for concurrent use.
type Compiler struct {
	g        geometry.Geometry
	codec    *codec.Codec
	v        *validate.Validator
	log      *slog.Logger
	defaults func(types.MasterID) []types.MemoryRegion
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger routes debug output to l. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDefaults replaces the fallback policy for masters absent from a
// configuration. The returned regions are validated like any other.
func WithDefaults(fn func(types.MasterID) []types.MemoryRegion) Option {
	return func(c *Compiler) {
		if fn != nil {
			c.defaults = fn
		}
	}
}

// New returns a compiler for g.
func New(g geometry.Geometry, opts ...Option) *Compiler {
	c := &Compiler{
		g:     g,
		codec: codec.New(g),
		v:     validate.New(g),
		log:   slog.New(slog.DiscardHandler),
	}
	c.defaults = c.fullRange
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geometry returns the geometry c compiles for.
func (c *Compiler) Geometry() geometry.Geometry { return c.g }

// Validator returns the validator c applies before encoding.
func (c *Compiler) Validator() *validate.Validator { return c.v }

func (c *Compiler) fullRange(types.MasterID) []types.MemoryRegion {
	return []types.MemoryRegion{{
		Base:    0,
		Size:    c.g.AddressLimit(),
		Perm:    types.PermRWX,
		Enabled: true,
	}}
}

// DefaultPolicy returns the policy compiled for master when a
// configuration does not mention it.
func (c *Compiler) DefaultPolicy(master types.MasterID) types.MasterPolicy {
	return types.MasterPolicy{Master: master, Regions: c.defaults(master)}
}

// DefaultConfiguration returns a configuration with every master on its
// default policy.
func (c *Compiler) DefaultConfiguration() types.PolicyConfiguration {
	cfg := types.NewConfiguration()
	for _, id := range c.g.Masters() {
		cfg.Masters[id] = c.DefaultPolicy(id)
	}
	return cfg
}

// Normalize returns cfg with every absent master filled in from its default
// and every policy labelled with its key. Decompile(Compile(cfg)) equals
// Normalize(cfg) for any cfg that compiles.
func (c *Compiler) Normalize(cfg types.PolicyConfiguration) types.PolicyConfiguration {
	out := cfg.Clone()
	for id, p := range out.Masters {
		p.Master = id
		out.Masters[id] = p
	}
	for _, id := range c.g.Masters() {
		if _, ok := out.Masters[id]; !ok {
			out.Masters[id] = c.DefaultPolicy(id)
		}
	}
	return out
}

// Compile validates cfg and encodes it into a register image in
// master-then-slot order. Unused slots are filled with placeholders.
func (c *Compiler) Compile(cfg types.PolicyConfiguration) (types.RegisterImage, error) {
	if err := c.v.Masters(cfg); err != nil {
		return types.RegisterImage{}, err
	}

	n := c.g.SlotCount()
	slots := make([]uint64, 0, c.g.TotalSlots())
	for _, id := range c.g.Masters() {
		p, explicit := cfg.Policy(id)
		regions := p.Regions
		if !explicit {
			regions = c.defaults(id)
		}
		if err := c.v.Regions(id, regions); err != nil {
			c.log.Debug("compile rejected", "master", id, "error", err)
			return types.RegisterImage{}, err
		}
		for i := 0; i < n; i++ {
			r := types.Placeholder()
			if i < len(regions) {
				r = regions[i]
			}
			w, err := c.codec.Encode(r)
			if err != nil {
				return types.RegisterImage{}, &types.Error{
					Kind: types.ErrKindIllegalRegion, Master: id, Index: i,
					Msg: "encode " + r.String(), Err: err,
				}
			}
			slots = append(slots, w)
		}
		c.log.Debug("compiled master", "master", id, "regions", len(regions), "default", !explicit)
	}
	return types.RegisterImage{Slots: slots}, nil
}

// Decompile decodes img back into a configuration naming every master.
// Trailing placeholders are dropped. A placeholder followed by a populated
// slot, an undecodable word, or a decoded list that would not compile again
// is reported as MalformedRegister attributed to the master and slot.
func (c *Compiler) Decompile(img types.RegisterImage) (types.PolicyConfiguration, error) {
	if err := c.checkLength(img); err != nil {
		return types.PolicyConfiguration{}, err
	}

	n := c.g.SlotCount()
	cfg := types.NewConfiguration()
	for mi, id := range c.g.Masters() {
		regions, err := c.decodeMaster(id, img.Slots[mi*n:(mi+1)*n])
		if err != nil {
			return types.PolicyConfiguration{}, err
		}
		if err := c.v.Regions(id, regions); err != nil {
			d := &types.Error{Kind: types.ErrKindMalformedRegister, Master: id, Index: -1, Msg: "decoded regions do not compile", Err: err}
			var te *types.Error
			if errors.As(err, &te) {
				d.Index = te.Index
			}
			return types.PolicyConfiguration{}, d
		}
		cfg.Masters[id] = types.MasterPolicy{Master: id, Regions: regions}
	}
	return cfg, nil
}

func (c *Compiler) decodeMaster(id types.MasterID, words []uint64) ([]types.MemoryRegion, error) {
	var regions []types.MemoryRegion
	unused := -1
	for s, w := range words {
		r, err := c.codec.Decode(w)
		if err != nil {
			return nil, attribute(err, id, s)
		}
		if r.IsPlaceholder() {
			if unused < 0 {
				unused = s
			}
			continue
		}
		if unused >= 0 {
			return nil, &types.Error{
				Kind: types.ErrKindMalformedRegister, Master: id, Index: s,
				Msg: fmt.Sprintf("populated slot follows unused slot %d", unused),
			}
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func (c *Compiler) checkLength(img types.RegisterImage) error {
	if got, want := len(img.Slots), c.g.TotalSlots(); got != want {
		return types.Errorf(types.ErrKindMalformedRegister, "image has %d slots, geometry %s needs %d", got, c.g.Name(), want)
	}
	return nil
}

// Resolve finds the region of master's compiled slots that decides access
// to addr: the lowest-numbered slot whose window contains it. ok is false
// when no slot matches. Slots after the match are not decoded.
func (c *Compiler) Resolve(img types.RegisterImage, master types.MasterID, addr uint64) (r types.MemoryRegion, slot int, ok bool, err error) {
	if err := c.checkLength(img); err != nil {
		return types.MemoryRegion{}, -1, false, err
	}
	mi, known := c.g.MasterIndex(master)
	if !known {
		return types.MemoryRegion{}, -1, false, &types.Error{Kind: types.ErrKindUnknownMaster, Master: master, Index: -1, Msg: "not in geometry " + c.g.Name()}
	}
	n := c.g.SlotCount()
	for s, w := range img.Slots[mi*n : (mi+1)*n] {
		r, err := c.codec.Decode(w)
		if err != nil {
			return types.MemoryRegion{}, -1, false, attribute(err, master, s)
		}
		if r.Contains(addr) {
			return r, s, true, nil
		}
	}
	return types.MemoryRegion{}, -1, false, nil
}

// Access returns the rights master holds at addr according to img.
func (c *Compiler) Access(img types.RegisterImage, master types.MasterID, addr uint64) (types.Permissions, error) {
	r, _, ok, err := c.Resolve(img, master, addr)
	if err != nil || !ok || !r.Enabled {
		return types.PermNone, err
	}
	return r.Perm, nil
}

func attribute(err error, id types.MasterID, slot int) error {
	var te *types.Error
	if errors.As(err, &te) {
		return te.WithMaster(id).WithIndex(slot)
	}
	return &types.Error{Kind: types.ErrKindMalformedRegister, Master: id, Index: slot, Msg: "decode", Err: err}
}
