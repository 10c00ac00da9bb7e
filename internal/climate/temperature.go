package climate

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// Synthesizer computes the temperature and precipitation fields.
type Synthesizer struct {
	mapCfg config.MapConfig
	cfg    config.ClimateConfig
	rng    *world.RNG
}

func NewSynthesizer(mapCfg config.MapConfig, cfg config.ClimateConfig, rng *world.RNG) *Synthesizer {
	return &Synthesizer{mapCfg: mapCfg, cfg: cfg, rng: rng}
}

// Latitude returns the base temperature for row y of an n-tile map: warmest
// on the middle row and falling off linearly toward the top and bottom.
func Latitude(y float64, n int, temperatureRange, offset float64) float64 {
	half := float64(n) / 2
	scale := (float64(n) / 100) / (temperatureRange / 50)
	return -2*math.Abs((y-half)/scale) + temperatureRange + offset
}

// Temperature sets every tile's temperature from latitude, or the map
// average when the map has no planet tile, plus a low-frequency simplex
// jitter, minus elevation cooling, then averaged with its neighbours.
func (s *Synthesizer) Temperature(g *world.Grid) {
	n := g.Size()
	base := func(y int) float64 { return s.mapCfg.AverageTemperature }
	if pt := s.mapCfg.PlanetTile; pt != nil {
		offset := pt.TemperatureOffset
		if pt.RandomOffsets {
			offset += s.rng.Range(-50, 50)
		}
		base = func(y int) float64 { return Latitude(float64(y), n, pt.TemperatureRange, offset) }
	}

	var jitter opensimplex.Noise
	if s.cfg.TemperatureJitter > 0 {
		jitter = opensimplex.NewNormalized(s.rng.Int64())
	}
	for _, t := range g.Tiles() {
		temp := base(t.Y)
		if jitter != nil {
			v := jitter.Eval2(float64(t.X)*s.cfg.JitterFrequency, float64(t.Y)*s.cfg.JitterFrequency)
			temp += (v*2 - 1) * s.cfg.TemperatureJitter
		}
		temp -= 50 * math.Pow(t.Height-0.5, 3)
		t.Temperature = temp
	}

	Average(g, s.cfg.TemperaturePasses,
		func(t *world.Tile) float64 { return t.Temperature },
		func(t *world.Tile, v float64) { t.Temperature = v },
	)
}

// Average runs unweighted 8-neighbour averaging passes over one tile field.
// Each pass reads the previous pass's values only.
func Average(g *world.Grid, passes int, get func(*world.Tile) float64, set func(*world.Tile, float64)) {
	tiles := g.Tiles()
	next := make([]float64, len(tiles))
	for pass := 0; pass < passes; pass++ {
		for i, t := range tiles {
			sum, count := get(t), 1
			for _, n := range g.Surrounding(t) {
				if n != nil {
					sum += get(n)
					count++
				}
			}
			next[i] = sum / float64(count)
		}
		for i, t := range tiles {
			set(t, next[i])
		}
	}
}
