package biome

import (
	"log"

	"worldgen/internal/world"
)

// Apply classifies every tile and repaints non-stone terrain with the
// biome's water, hole or ground type. With vegetation enabled, plantable
// tiles roll for a plant from the biome's groups. It returns the tiles whose
// terrain changed.
func Apply(g *world.Grid, table *Table, rng *world.RNG, vegetation bool) []*world.Tile {
	var changed []*world.Tile
	unmatched := 0
	for _, t := range g.Tiles() {
		b, ok := table.Classify(t.Precipitation, t.Temperature)
		if !ok {
			unmatched++
			continue
		}
		t.Biome = b.Name
		if !t.Terrain.IsStoneEquivalent() {
			target := b.Ground
			switch {
			case t.Terrain.IsWaterEquivalent():
				target = b.Water
			case t.Terrain.IsHole():
				target = b.Hole
			}
			if target != t.Terrain {
				t.SetTerrain(target)
				changed = append(changed, t)
			}
		}
		if vegetation && t.Terrain.IsPlantable() {
			t.SetPlant(rollPlant(b, rng))
		}
	}
	if unmatched > 0 {
		log.Printf("biome assignment: %d tiles matched no range", unmatched)
	}
	return changed
}

// rollPlant draws one uniform value and walks the biome's groups in order,
// accumulating their chances. Rolls past the total spawn nothing.
func rollPlant(b *Biome, rng *world.RNG) *world.Plant {
	if len(b.Vegetation) == 0 {
		return nil
	}
	roll := rng.Float64()
	acc := 0.0
	for _, v := range b.Vegetation {
		acc += v.Chance
		if roll < acc {
			return &world.Plant{Group: v.Group, Small: rng.Float64() < 0.5}
		}
	}
	return nil
}
