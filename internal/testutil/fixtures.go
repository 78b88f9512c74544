package testutil

import (
	"math/rand/v2"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

// Region is shorthand for an enabled region.
func Region(base, size uint64, perm types.Permissions) types.MemoryRegion {
	return types.MemoryRegion{Base: base, Size: size, Perm: perm, Enabled: true}
}

// CarveOut returns the read-only page inside a read-write window, listed
// narrowest first so the page takes priority.
func CarveOut() []types.MemoryRegion {
	return []types.MemoryRegion{
		Region(0x1000, 0x1000, types.PermRead),
		Region(0x0000, 0x10000, types.PermRW),
	}
}

// SampleConfiguration mirrors the SampleConfig fixture document.
func SampleConfiguration() types.PolicyConfiguration {
	return types.NewConfiguration(
		types.MasterPolicy{Master: "cpu0", Regions: CarveOut()},
		types.MasterPolicy{Master: "dma", Regions: []types.MemoryRegion{
			{Base: 0x8000_0000, Size: 0x4000_0000, Perm: types.PermRW, Target: 0, Enabled: true},
			{Base: 0x1000_0000, Size: 0x10_0000, Perm: types.PermRW, Target: 1},
		}},
		types.MasterPolicy{Master: "fabric"},
	)
}

// RandomPolicy returns up to g.SlotCount() distinct legal regions for
// master. The same seed always yields the same policy.
func RandomPolicy(r *rand.Rand, g geometry.Geometry, master types.MasterID) types.MasterPolicy {
	n := r.IntN(g.SlotCount() + 1)
	seen := make(map[[2]uint64]bool, n)
	p := types.MasterPolicy{Master: master}
	minShift := g.GranularityShift()
	for len(p.Regions) < n {
		shift := minShift + uint(r.IntN(int(g.AddressWidth()-minShift)+1))
		size := uint64(1) << shift
		frames := g.AddressLimit() / size
		base := r.Uint64N(frames) * size
		if seen[[2]uint64{base, size}] {
			continue
		}
		seen[[2]uint64{base, size}] = true
		p.Regions = append(p.Regions, types.MemoryRegion{
			Base:    base,
			Size:    size,
			Perm:    types.Permissions(r.IntN(int(types.PermRWX) + 1)),
			Target:  types.Target(r.IntN(len(g.Targets()))),
			Enabled: r.IntN(4) != 0,
		})
	}
	return p
}

// RandomConfiguration picks a random subset of g's masters and gives each a
// RandomPolicy.
func RandomConfiguration(r *rand.Rand, g geometry.Geometry) types.PolicyConfiguration {
	cfg := types.NewConfiguration()
	for _, id := range g.Masters() {
		if r.IntN(3) == 0 {
			continue
		}
		cfg.Masters[id] = RandomPolicy(r, g, id)
	}
	return cfg
}
