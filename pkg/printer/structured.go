package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/codec"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

type jsonRegion struct {
	Base    string `json:"base" yaml:"base"`
	Size    string `json:"size" yaml:"size"`
	Perm    string `json:"perm" yaml:"perm"`
	Target  string `json:"target" yaml:"target"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type jsonMaster struct {
	Master  types.MasterID `json:"master" yaml:"master"`
	Regions []jsonRegion   `json:"regions" yaml:"regions"`
}

type jsonConfig struct {
	Geometry string       `json:"geometry" yaml:"geometry"`
	Masters  []jsonMaster `json:"masters" yaml:"masters"`
}

type jsonRegisters struct {
	Master types.MasterID `json:"master"`
	Words  []string       `json:"words"`
	Fields []codec.Fields `json:"fields,omitempty"`
}

type jsonImage struct {
	Geometry  string          `json:"geometry"`
	Registers []jsonRegisters `json:"registers"`
}

type jsonGeometry struct {
	Name           string               `json:"name" yaml:"name"`
	Granularity    string               `json:"granularity" yaml:"granularity"`
	AddressWidth   uint                 `json:"address_width" yaml:"address_width"`
	RegisterWidth  uint                 `json:"register_width" yaml:"register_width"`
	SlotsPerMaster int                  `json:"slots_per_master" yaml:"slots_per_master"`
	Masters        []types.MasterID     `json:"masters" yaml:"masters"`
	Targets        []string             `json:"targets" yaml:"targets"`
	Fields         []geometry.FieldInfo `json:"fields" yaml:"fields"`
	ReservedMask   string               `json:"reserved_mask" yaml:"reserved_mask"`
}

type resolution struct {
	Master  types.MasterID `json:"master" yaml:"master"`
	Address string         `json:"address" yaml:"address"`
	Slot    int            `json:"slot" yaml:"slot"`
	Region  *jsonRegion    `json:"region,omitempty" yaml:"region,omitempty"`
	Access  string         `json:"access" yaml:"access"`
}

func hexString(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func (p *Printer) jsonRegion(r types.MemoryRegion) *jsonRegion {
	return &jsonRegion{
		Base:    hexString(r.Base),
		Size:    hexString(r.Size),
		Perm:    r.Perm.String(),
		Target:  p.g.TargetName(r.Target),
		Enabled: r.Enabled,
	}
}

func (p *Printer) printConfigJSON(cfg types.PolicyConfiguration) error {
	out := jsonConfig{Geometry: p.g.Name(), Masters: []jsonMaster{}}
	for _, id := range p.orderedIDs(cfg) {
		jm := jsonMaster{Master: id, Regions: []jsonRegion{}}
		for _, r := range cfg.Masters[id].Regions {
			jm.Regions = append(jm.Regions, *p.jsonRegion(r))
		}
		out.Masters = append(out.Masters, jm)
	}
	return writeJSON(p.writer, out)
}

func (p *Printer) printConfigYAML(cfg types.PolicyConfiguration) error {
	data, err := config.Encode(config.FromConfiguration(p.g, cfg))
	if err != nil {
		return err
	}
	_, err = p.writer.Write(data)
	return err
}

func (p *Printer) printImageJSON(img types.RegisterImage) error {
	out := jsonImage{Geometry: p.g.Name()}
	n := p.g.SlotCount()
	for mi, id := range p.g.Masters() {
		jr := jsonRegisters{Master: id}
		for _, w := range img.Slots[mi*n : (mi+1)*n] {
			jr.Words = append(jr.Words, hexString(w))
			if p.opts.ShowFields {
				jr.Fields = append(jr.Fields, p.c.Split(w))
			}
		}
		out.Registers = append(out.Registers, jr)
	}
	return writeJSON(p.writer, out)
}

func (p *Printer) printImageYAML(img types.RegisterImage) error {
	doc, err := config.FromImage(p.g, img)
	if err != nil {
		return err
	}
	data, err := config.Encode(doc)
	if err != nil {
		return err
	}
	_, err = p.writer.Write(data)
	return err
}

func (p *Printer) printImageHex(img types.RegisterImage) error {
	digits := (p.g.RegisterWidth() + 3) / 4
	for _, w := range img.Slots {
		if _, err := fmt.Fprintf(p.writer, "%0*x\n", digits, w); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) geometryDoc() jsonGeometry {
	g := p.g
	return jsonGeometry{
		Name:           g.Name(),
		Granularity:    hexString(g.Granularity()),
		AddressWidth:   g.AddressWidth(),
		RegisterWidth:  g.RegisterWidth(),
		SlotsPerMaster: g.SlotCount(),
		Masters:        g.Masters(),
		Targets:        g.Targets(),
		Fields:         g.FieldTable(),
		ReservedMask:   hexString(g.ReservedMask()),
	}
}

func (p *Printer) printGeometryJSON() error {
	return writeJSON(p.writer, p.geometryDoc())
}

func (p *Printer) printGeometryYAML() error {
	return writeYAML(p.writer, p.geometryDoc())
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	return enc.Close()
}
