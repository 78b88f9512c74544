package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ConchuOD/memory-aperature-configurator/internal/format"
)

// Address is a 64-bit address or size. It accepts any Go integer literal
// (0x, 0o, 0b prefixes and _ separators) with an optional binary unit
// suffix, and is always written back as hex.
type Address uint64

var unitSuffixes = []struct {
	suffix string
	mult   uint64
}{
	{"KiB", format.KiB}, {"MiB", format.MiB}, {"GiB", format.GiB}, {"TiB", format.TiB},
	{"K", format.KiB}, {"M", format.MiB}, {"G", format.GiB}, {"T", format.TiB},
}

// ParseAddress parses s as described on Address.
func ParseAddress(s string) (uint64, error) {
	num := strings.TrimSpace(s)
	mult := uint64(1)
	for _, u := range unitSuffixes {
		if rest, ok := strings.CutSuffix(num, u.suffix); ok {
			num, mult = strings.TrimSpace(rest), u.mult
			break
		}
	}
	v, err := strconv.ParseUint(num, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q", ErrSyntax, s)
	}
	if v > math.MaxUint64/mult {
		return 0, fmt.Errorf("%w: address %q overflows 64 bits", ErrSyntax, s)
	}
	return v * mult, nil
}

// FormatAddress renders v the way documents write it.
func FormatAddress(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Address) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return nodeErr(n, "expected an address, found %s", kindName(n))
	}
	v, err := ParseAddress(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*a = Address(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Address) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: FormatAddress(uint64(a))}, nil
}

// MarshalText renders the address as hex, for JSON.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(FormatAddress(uint64(a))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	v, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = Address(v)
	return nil
}
