package hydrology

import (
	"sort"

	"github.com/boljen/go-bitmap"

	"worldgen/internal/world"
)

// DetermineBasins partitions every non-stone tile into drainage basins. Tiles
// are visited lowest first; each unclaimed one seeds a basin that floods into
// unclaimed non-stone horizontal neighbours no higher than tolerance times
// the tile they are reached from. The seed is recorded as the basin outlet.
func DetermineBasins(g *world.Grid, tolerance float64) []*world.Basin {
	ordered := append([]*world.Tile(nil), g.Tiles()...)
	// Stable on the raster order so equal heights resolve by tile index.
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Height < ordered[j].Height })

	for _, t := range g.Tiles() {
		t.Basin = world.NoID
	}
	claimed := bitmap.New(len(ordered))
	var basins []*world.Basin
	for _, seed := range ordered {
		if seed.Terrain.IsStoneEquivalent() || claimed.Get(g.IndexOf(seed)) {
			continue
		}
		basin := &world.Basin{ID: len(basins), Outlet: seed}
		claimed.Set(g.IndexOf(seed), true)
		frontier := []*world.Tile{seed}
		for len(frontier) > 0 {
			current := frontier[0]
			frontier = frontier[1:]
			basin.Tiles = append(basin.Tiles, current)
			current.Basin = basin.ID

			for _, n := range g.Horizontal(current) {
				if n == nil || n.Terrain.IsStoneEquivalent() {
					continue
				}
				idx := g.IndexOf(n)
				if claimed.Get(idx) || n.Height > tolerance*current.Height {
					continue
				}
				claimed.Set(idx, true)
				frontier = append(frontier, n)
			}
		}
		basins = append(basins, basin)
	}
	g.Basins = basins
	return basins
}
