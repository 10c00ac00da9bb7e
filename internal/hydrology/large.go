package hydrology

import (
	"log"
	"math"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// cornerClearance keeps large river mouths away from map corners.
const cornerClearance = 10

// CarveLargeRiver routes a wide river from every incoming edge of the planet
// tile to its outgoing edge, the highest-numbered one, through a waypoint
// near the map centre. Stone does not obstruct these rivers.
func CarveLargeRiver(g *world.Grid, rng *world.RNG, pt *config.PlanetTileConfig, cfg config.HydrologyConfig, waterHeight float64) []*world.River {
	if pt == nil || !pt.IsRiver || len(pt.RiverEdges) < 2 {
		return nil
	}
	endEdge := pt.RiverEdges[0]
	for _, edge := range pt.RiverEdges[1:] {
		if edge > endEdge {
			endEdge = edge
		}
	}
	ends := mouthTiles(g, endEdge)
	centres := centreTiles(g)
	if len(ends) == 0 || len(centres) == 0 {
		log.Printf("large river: map size %d leaves no valid mouth tiles", g.Size())
		return nil
	}
	end := ends[rng.IntN(len(ends))]

	scale := int(math.Ceil(float64(g.Size()) / 100))
	seen := map[int]bool{endEdge: true}
	var carved []*world.River
	for _, edge := range pt.RiverEdges {
		if seen[edge] {
			continue
		}
		seen[edge] = true

		opts := PathOptions{
			ExpandRadius: rng.IntRange(1, 3) * scale,
			IgnoreStone:  true,
			Jitter:       cfg.Jitter,
			WaterHeight:  waterHeight,
		}
		starts := mouthTiles(g, edge)
		start := starts[rng.IntN(len(starts))]
		centre := centres[rng.IntN(len(centres))]

		first, _ := FindPath(g, rng, start, centre, opts)
		second, _ := FindPath(g, rng, centre, end, opts)
		if len(first) == 0 || len(second) == 0 {
			log.Printf("large river from (%d,%d) to (%d,%d) has no tiles, skipped", start.X, start.Y, end.X, end.Y)
			continue
		}
		river := &world.River{
			ID:           len(g.Rivers),
			Start:        start,
			Centre:       centre,
			End:          end,
			ExpandRadius: opts.ExpandRadius,
			JoinedRiver:  world.NoID,
		}
		Carve(g, rng, river, append(first, second[1:]...), opts)
		g.Rivers = append(g.Rivers, river)
		carved = append(carved, river)
	}
	return carved
}

// mouthTiles returns the tiles of one edge at least cornerClearance tiles
// from both of its ends.
func mouthTiles(g *world.Grid, edge int) []*world.Tile {
	tiles := g.EdgeTiles(edge)
	if len(tiles) == 0 {
		return nil
	}
	first, last := tiles[0], tiles[len(tiles)-1]
	var out []*world.Tile
	for _, t := range tiles {
		if world.Distance(t, first) >= cornerClearance && world.Distance(t, last) >= cornerClearance {
			out = append(out, t)
		}
	}
	return out
}

func centreTiles(g *world.Grid) []*world.Tile {
	half := float64(g.Size()) / 2
	limit := float64(g.Size()) / 5
	var out []*world.Tile
	for _, t := range g.Tiles() {
		if math.Hypot(float64(t.X)-half, float64(t.Y)-half) < limit {
			out = append(out, t)
		}
	}
	return out
}
