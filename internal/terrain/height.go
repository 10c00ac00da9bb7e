package terrain

import (
	"log"
	"math"

	"github.com/aquilax/go-perlin"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// HeightSynthesizer produces the initial heightfield: an optional perlin seed
// blend, a square-averaging fractal pass and weighted neighbour smoothing.
type HeightSynthesizer struct {
	cfg config.TerrainConfig
	rng *world.RNG
}

func NewHeightSynthesizer(cfg config.TerrainConfig, rng *world.RNG) *HeightSynthesizer {
	return &HeightSynthesizer{cfg: cfg, rng: rng}
}

// Generate overwrites every tile height in g. Tiles are expected to carry
// their random seed heights from grid construction.
func (s *HeightSynthesizer) Generate(g *world.Grid) {
	if s.cfg.PerlinBlend > 0 {
		s.blendPerlin(g)
	}
	SquareAverage(g, s.rng)
	Smooth(g, s.cfg.SmoothingPasses)
	log.Printf("height synthesis complete: size=%d smoothing=%d", g.Size(), s.cfg.SmoothingPasses)
}

func (s *HeightSynthesizer) blendPerlin(g *world.Grid) {
	p := perlin.NewPerlin(2, 2, 3, s.rng.Int64())
	w := s.cfg.PerlinBlend
	scale := 4 / float64(g.Size())
	for _, t := range g.Tiles() {
		n := (p.Noise2D(float64(t.X)*scale, float64(t.Y)*scale) + 1) * 0.5
		t.SetHeight((1-w)*t.Height + w*world.Clamp01(n))
	}
}

// SquareAverage recursively halves the grid into square sections. At each
// level every section is set to its mean height plus a uniform offset whose
// bound grows as sections shrink relative to the map.
func SquareAverage(g *world.Grid, rng *world.RNG) {
	n := g.Size()
	levels := int(math.Ceil(math.Log2(float64(n))))
	lastSize := n
	for level := 0; level < levels; level++ {
		size := int(math.Ceil(float64(lastSize) / 2))
		maxDeviation := float64(n-size) / float64(4*n)
		for sy := 0; sy < n; sy += size {
			for sx := 0; sx < n; sx += size {
				sum, count := 0.0, 0
				for y := sy; y < sy+size && y < n; y++ {
					for x := sx; x < sx+size && x < n; x++ {
						sum += g.At(x, y).Height
						count++
					}
				}
				avg := sum/float64(count) + rng.Range(-maxDeviation, maxDeviation)
				for y := sy; y < sy+size && y < n; y++ {
					for x := sx; x < sx+size && x < n; x++ {
						g.At(x, y).Height = avg
					}
				}
			}
		}
		lastSize = size
	}
	for _, t := range g.Tiles() {
		t.SetHeight(t.Height)
	}
}

// Smooth runs the given number of neighbour-averaging passes. Each of the 8
// neighbours weighs half as much as the tile itself; off-grid neighbours are
// left out of the mean.
func Smooth(g *world.Grid, passes int) {
	next := make([]float64, len(g.Tiles()))
	for pass := 0; pass < passes; pass++ {
		for i, t := range g.Tiles() {
			sum, weight := t.Height, 1.0
			for _, n := range g.Surrounding(t) {
				if n == nil {
					continue
				}
				sum += n.Height * 0.5
				weight += 0.5
			}
			next[i] = sum / weight
		}
		for i, t := range g.Tiles() {
			t.SetHeight(next[i])
		}
	}
}

// AssignTerrainByHeight sets water below waterHeight, stone above
// stoneHeight and grass in between.
func AssignTerrainByHeight(g *world.Grid, waterHeight, stoneHeight float64) {
	for _, t := range g.Tiles() {
		switch {
		case t.Height < waterHeight:
			t.SetTerrain(world.TerrainGrassWater)
		case t.Height > stoneHeight:
			t.SetTerrain(world.TerrainStone)
		default:
			t.SetTerrain(world.TerrainGrass)
		}
	}
}
