package climate

import (
	"log"
	"math"

	"worldgen/internal/world"
)

// Precipitation blends the eight directional moisture fields with the
// primary heading's similarity weights, smooths the result, pulls it toward
// the map average when one is configured and clamps it to [0,1].
func (s *Synthesizer) Precipitation(g *world.Grid, primary int) {
	avg := s.mapCfg.AveragePrecipitation
	var fields [headingCount][]float64
	for heading := 0; heading < headingCount; heading++ {
		fields[heading] = Field(g, heading, s.rng, avg)
	}

	weights := windSimilarity[primary]
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	for i, t := range g.Tiles() {
		p := 0.0
		for heading, w := range weights {
			p += fields[heading][i] * w
		}
		t.Precipitation = p / sum
	}

	Average(g, s.cfg.PrecipitationPasses,
		func(t *world.Tile) float64 { return t.Precipitation },
		func(t *world.Tile, v float64) { t.Precipitation = v },
	)
	for _, t := range g.Tiles() {
		if avg != -1 {
			t.Precipitation = (t.Precipitation + avg) / 2
		}
		t.Precipitation = world.Clamp01(t.Precipitation)
	}
	log.Printf("precipitation blended for primary wind %s", HeadingName(primary))
}

// Field sweeps the grid in the scan order of one heading, carrying moisture
// from each tile's upwind neighbour, and returns the per-tile values indexed
// like g.Tiles(). Open water regenerates moisture, stone drains it fastest.
// Tiles without an upwind neighbour seed from their own terrain.
func Field(g *world.Grid, heading int, rng *world.RNG, avg float64) []float64 {
	field := make([]float64, len(g.Tiles()))
	n := g.Size()
	edgeSeed := avg
	if avg == -1 {
		edgeSeed = 0.1
	}
	visit := func(x, y int) {
		t := g.At(x, y)
		up := g.Neighbour(t, opposite[heading])
		var p float64
		switch {
		case up == nil:
			if t.Terrain.IsLiquidWater() || t.Terrain.IsStoneEquivalent() {
				p = 1
			} else {
				p = edgeSeed
			}
		default:
			prev := field[g.IndexOf(up)]
			m := 2 - world.Distance(t, up)
			switch {
			case t.Terrain.IsLiquidWater():
				boost := 0.0
				if math.Abs(prev) < 1e-6 {
					boost = 0.01
				}
				regen := float64(n) / 5
				if t.River != world.NoID {
					regen *= 5
				}
				p = (prev + boost) * m * regen
			case t.Terrain.IsStoneEquivalent():
				p = prev * m * rng.Range(0.95, 0.99)
			default:
				p = prev * m * rng.Range(0.98, 1)
			}
		}
		field[g.IndexOf(t)] = world.Clamp01(p * heatDamping(t.Temperature))
	}

	if heading < 4 {
		fromTop := heading == HeadingDown
		fromRight := heading == HeadingLeft
		for i := 0; i < n; i++ {
			y := i
			if fromTop {
				y = n - 1 - i
			}
			for j := 0; j < n; j++ {
				x := j
				if fromRight {
					x = n - 1 - j
				}
				visit(x, y)
			}
		}
		return field
	}

	// Diagonal headings sweep anti-diagonals x+y=k so the upwind tile is
	// always on an earlier diagonal or earlier on the same one.
	upward := heading == HeadingUpRight || heading == HeadingUpLeft
	leftward := heading == HeadingDownLeft || heading == HeadingUpLeft
	for i := 0; i <= 2*n; i++ {
		k := i
		if !upward {
			k = 2*n - i
		}
		for j := 0; j <= k; j++ {
			x := j
			if leftward {
				x = k - j
			}
			y := k - x
			if x < n && y < n {
				visit(x, y)
			}
		}
	}
	return field
}

// heatDamping scales precipitation down on hot tiles.
func heatDamping(temperature float64) float64 {
	return world.Clamp(1-math.Pow((temperature-30)/60, 3), 0, 1)
}
