package terrain

import (
	"log"
	"math"

	"github.com/boljen/go-bitmap"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// SetRoofs marks stone-equivalent tiles at least stoneHeight*multiplier high
// as roofed and clears the flag everywhere else.
func SetRoofs(g *world.Grid, stoneHeight, multiplier float64) int {
	roofed := 0
	for _, t := range g.Tiles() {
		t.Roof = t.Terrain.IsStoneEquivalent() && t.Height >= stoneHeight*multiplier
		if t.Roof {
			roofed++
		}
	}
	return roofed
}

// PlaceVeins grows clay veins outward from coastal tiles and returns every
// tile whose terrain changed.
func PlaceVeins(g *world.Grid, rng *world.RNG, cfg config.VeinConfig) []*world.Tile {
	var coast []*world.Tile
	for _, t := range g.Tiles() {
		if !t.Terrain.IsWaterEquivalent() {
			continue
		}
		for _, n := range g.Surrounding(t) {
			if n != nil && !n.Terrain.IsWaterEquivalent() {
				coast = append(coast, t)
				break
			}
		}
	}
	if len(coast) == 0 {
		return nil
	}

	count := int(math.Round(float64(g.Size()) * cfg.CountFraction))
	var changed []*world.Tile
	var starts []*world.Tile
	for i := 0; i < count; i++ {
		candidates := make([]*world.Tile, 0, len(coast))
		for _, t := range coast {
			if t.Terrain.IsResource() || !veinValid(g, t, cfg) {
				continue
			}
			near := false
			for _, s := range starts {
				if world.Distance(s, t) < float64(cfg.Distance) {
					near = true
					break
				}
			}
			if !near {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			log.Printf("vein placement: no valid start tiles left after %d veins", i)
			break
		}
		start := candidates[rng.IntN(len(candidates))]
		starts = append(starts, start)
		maxSize := cfg.Size
		if cfg.SizeJitter > 0 {
			maxSize += rng.IntRange(-cfg.SizeJitter, cfg.SizeJitter)
		}
		changed = append(changed, growVein(g, rng, start, maxSize, cfg)...)
	}
	return changed
}

func growVein(g *world.Grid, rng *world.RNG, start *world.Tile, maxSize int, cfg config.VeinConfig) []*world.Tile {
	checked := bitmap.New(len(g.Tiles()))
	queued := bitmap.New(len(g.Tiles()))
	frontier := []*world.Tile{start}
	queued.Set(g.IndexOf(start), true)
	var grown []*world.Tile
	for len(frontier) > 0 && len(grown) < maxSize {
		pick := rng.IntN(len(frontier))
		current := frontier[pick]
		frontier[pick] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		checked.Set(g.IndexOf(current), true)

		if current.Terrain.IsWaterEquivalent() {
			current.SetTerrain(world.TerrainClayWater)
		} else {
			current.SetTerrain(world.TerrainClay)
		}
		grown = append(grown, current)

		for _, n := range g.Horizontal(current) {
			if n == nil || n.Terrain.IsResource() {
				continue
			}
			idx := g.IndexOf(n)
			if checked.Get(idx) || queued.Get(idx) || !veinValid(g, n, cfg) {
				continue
			}
			queued.Set(idx, true)
			frontier = append(frontier, n)
		}
	}
	return grown
}

// veinValid accepts non-stone tiles warm enough for clay; water tiles only
// qualify on the shoreline.
func veinValid(g *world.Grid, t *world.Tile, cfg config.VeinConfig) bool {
	if t.Terrain.IsStoneEquivalent() || t.Temperature < cfg.MinTemperature {
		return false
	}
	if !t.Terrain.IsWaterEquivalent() {
		return true
	}
	for _, n := range g.Horizontal(t) {
		if n != nil && !n.Terrain.IsWaterEquivalent() {
			return true
		}
	}
	return false
}
