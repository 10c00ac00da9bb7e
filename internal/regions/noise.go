package regions

import (
	"fmt"
	"log"
	"math"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// NoiseRule dissolves terrain regions of the listed types with fewer than
// MinSize tiles.
type NoiseRule struct {
	Terrains []world.TerrainType
	MinSize  int
}

// RulesFromConfig resolves configured rules for a map of the given size.
func RulesFromConfig(rules []config.NoiseRule, size int) ([]NoiseRule, error) {
	out := make([]NoiseRule, 0, len(rules))
	for i, rule := range rules {
		resolved := NoiseRule{MinSize: int(math.Round(float64(size) * rule.SizeFraction))}
		for _, name := range rule.Terrains {
			terrain, ok := world.ParseTerrain(name)
			if !ok {
				return nil, fmt.Errorf("noise rule %d: unknown terrain %q", i, name)
			}
			resolved.Terrains = append(resolved.Terrains, terrain)
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (r NoiseRule) matches(t world.TerrainType) bool {
	for _, terrain := range r.Terrains {
		if terrain == t {
			return true
		}
	}
	return false
}

// ReduceNoise merges small terrain regions into their lowest-id neighbouring
// region, repainting their tiles with that region's terrain. The terrain
// segmentation is rebuilt after each rule. It returns the number of regions
// dissolved.
func ReduceNoise(g *world.Grid, rules []NoiseRule) int {
	dissolved := 0
	set := g.TerrainRegions
	for _, rule := range rules {
		for _, r := range set.Sorted() {
			if set.Get(r.ID) == nil || r.Size() >= rule.MinSize || !rule.matches(r.Terrain) {
				continue
			}
			neighbours := Neighbours(g, set, r)
			if len(neighbours) == 0 {
				continue
			}
			target := neighbours[0]
			for _, t := range r.Tiles {
				t.SetTerrain(target.Terrain)
			}
			set.Merge(target, r)
			dissolved++
		}
		Segment(g, world.ByTerrain)
	}
	if dissolved > 0 {
		log.Printf("noise reduction dissolved %d regions, %d remain", dissolved, set.Len())
	}
	return dissolved
}
