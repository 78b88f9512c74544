// Package validate checks region lists against a geometry before they are
// encoded.
//
// Overlap is legal: list order is the hardware's match priority, so a narrow
// region early in the list carves an exception out of a broad one later on.
// What is rejected is anything the codec cannot express, more regions than
// slots, and the same (base, size) window appearing twice.
package validate

import (
	"errors"
	"fmt"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/codec"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Validator checks policies for one geometry.
type Validator struct {
	g geometry.Geometry
	c *codec.Codec
}

// New returns a validator for g.
func New(g geometry.Geometry) *Validator {
	return &Validator{g: g, c: codec.New(g)}
}

type window struct {
	base, size uint64
}

// Regions validates one master's ordered region list and returns the first
// failure. Disabled regions are held to the same rules as enabled ones.
func (v *Validator) Regions(master types.MasterID, regions []types.MemoryRegion) error {
	if n := len(regions); n > v.g.SlotCount() {
		return &types.Error{
			Kind:   types.ErrKindTooManyRegions,
			Master: master,
			Index:  -1,
			Msg:    fmt.Sprintf("%d regions exceed %d slots", n, v.g.SlotCount()),
		}
	}

	seen := make(map[window]int, len(regions))
	for i, r := range regions {
		if err := v.region(r); err != nil {
			return &types.Error{
				Kind:   types.ErrKindIllegalRegion,
				Master: master,
				Index:  i,
				Msg:    "illegal region " + r.String(),
				Err:    err,
			}
		}
		w := window{r.Base, r.Size}
		if j, dup := seen[w]; dup {
			return &types.Error{
				Kind:   types.ErrKindDuplicateRegion,
				Master: master,
				Index:  i,
				Msg:    fmt.Sprintf("window %#x+%#x repeats region %d", r.Base, r.Size, j),
			}
		}
		seen[w] = i
	}
	return nil
}

func (v *Validator) region(r types.MemoryRegion) error {
	// The codec accepts the all-zero placeholder; authors may not write one.
	if r.Size == 0 {
		return types.Errorf(types.ErrKindIllegalSize, "size is zero")
	}
	return v.c.Check(r)
}

// Configuration validates every explicit policy in cfg, in geometry order,
// after checking that every key names a known master.
func (v *Validator) Configuration(cfg types.PolicyConfiguration) error {
	if err := v.Masters(cfg); err != nil {
		return err
	}
	for _, id := range v.g.Masters() {
		p, ok := cfg.Policy(id)
		if !ok {
			continue
		}
		if err := v.Regions(id, p.Regions); err != nil {
			return err
		}
	}
	return nil
}

// Masters checks that cfg only names masters the geometry knows and that
// each policy's Master field, when set, agrees with its key.
func (v *Validator) Masters(cfg types.PolicyConfiguration) error {
	for _, id := range cfg.IDs() {
		if !v.g.HasMaster(id) {
			return &types.Error{
				Kind:   types.ErrKindUnknownMaster,
				Master: id,
				Index:  -1,
				Msg:    fmt.Sprintf("not one of %v", v.g.Masters()),
			}
		}
		if p := cfg.Masters[id]; p.Master != "" && p.Master != id {
			return &types.Error{
				Kind:   types.ErrKindUnknownMaster,
				Master: id,
				Index:  -1,
				Msg:    fmt.Sprintf("policy is labelled %q", p.Master),
			}
		}
	}
	return nil
}

// Lint returns advisory findings for a region list that may well be legal.
func (v *Validator) Lint(master types.MasterID, regions []types.MemoryRegion) []types.Diagnostic {
	var out []types.Diagnostic
	add := func(sev types.Severity, code string, i int, format string, args ...any) {
		out = append(out, types.Diagnostic{
			Severity: sev,
			Code:     code,
			Master:   master,
			Index:    i,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	for i, r := range regions {
		for j := 0; j < i; j++ {
			if regions[j].Covers(r) && !regions[j].SameWindow(r) {
				add(types.SevWarning, types.DiagShadowed, i, "never matches: region %d %s covers it", j, regions[j])
				break
			}
		}
		switch {
		case !r.Enabled && r.Perm != types.PermNone:
			add(types.SevInfo, types.DiagDisabledRights, i, "disabled region lists %s; it grants nothing", r.Perm)
		case r.Enabled && r.Perm == types.PermNone:
			add(types.SevInfo, types.DiagNoAccess, i, "enabled region grants no access")
		}
	}
	return out
}

// Report validates and lints every explicit policy in cfg. Hard failures
// appear as error-level diagnostics instead of aborting the scan.
func (v *Validator) Report(cfg types.PolicyConfiguration) *types.DiagnosticReport {
	r := types.NewDiagnosticReport()
	for _, id := range cfg.IDs() {
		p := cfg.Masters[id]
		if !v.g.HasMaster(id) {
			r.Add(errorDiagnostic(id, &types.Error{Kind: types.ErrKindUnknownMaster, Master: id, Index: -1, Msg: "not in geometry " + v.g.Name()}))
		} else if err := v.Regions(id, p.Regions); err != nil {
			r.Add(errorDiagnostic(id, err))
		}
		for _, d := range v.Lint(id, p.Regions) {
			r.Add(d)
		}
	}
	r.Finalize()
	return r
}

func errorDiagnostic(id types.MasterID, err error) types.Diagnostic {
	d := types.Diagnostic{Severity: types.SevError, Code: types.DiagValidationError, Master: id, Index: -1, Message: err.Error()}
	var te *types.Error
	if errors.As(err, &te) {
		d.Index = te.Index
		d.Message = te.Kind.String() + ": " + te.Msg
		if te.Err != nil {
			d.Message += ": " + te.Err.Error()
		}
	}
	return d
}
