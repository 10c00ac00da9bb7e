package biome

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"worldgen/internal/world"
)

//go:embed default_biomes.yaml
var defaultTable []byte

var (
	// ErrRangeGap is returned when some precipitation and temperature pair
	// matches no range.
	ErrRangeGap     = errors.New("biome ranges leave a gap")
	ErrUnknownBiome = errors.New("unknown biome")
)

// Unbounded range sentinels as written in table files.
const (
	precipitationMinSentinel = -1
	precipitationMaxSentinel = 2
	temperatureMinSentinel   = -1000
	temperatureMaxSentinel   = 1000
)

type VegetationChance struct {
	Group  string  `yaml:"group"`
	Chance float64 `yaml:"chance"`
}

type Biome struct {
	Name       string             `yaml:"name"`
	Ground     world.TerrainType  `yaml:"ground"`
	Water      world.TerrainType  `yaml:"water"`
	Hole       world.TerrainType  `yaml:"hole"`
	Colour     string             `yaml:"colour"`
	Vegetation []VegetationChance `yaml:"vegetation"`
}

type TemperatureRange struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Biome string  `yaml:"biome"`

	biome *Biome
}

type PrecipitationRange struct {
	Min          float64            `yaml:"min"`
	Max          float64            `yaml:"max"`
	Temperatures []TemperatureRange `yaml:"temperatures"`
}

// Table is an ordered classification of (precipitation, temperature) pairs
// into biomes. The first matching precipitation range and temperature
// sub-range wins.
type Table struct {
	Biomes []*Biome              `yaml:"biomes"`
	Ranges []PrecipitationRange `yaml:"ranges"`

	byName map[string]*Biome
}

// LoadTable reads a table from path, or the built-in table when path is
// empty. Overlapping ranges are returned as warnings.
func LoadTable(path string) (*Table, []string, error) {
	if path == "" {
		return Parse(defaultTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read biome table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML biome table.
func Parse(data []byte) (*Table, []string, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, nil, fmt.Errorf("parse biome table: %w", err)
	}
	if err := t.resolve(); err != nil {
		return nil, nil, err
	}
	if err := t.checkCoverage(); err != nil {
		return nil, nil, err
	}
	return &t, t.overlaps(), nil
}

func (t *Table) resolve() error {
	if len(t.Biomes) == 0 || len(t.Ranges) == 0 {
		return errors.New("biome table needs biomes and ranges")
	}
	t.byName = make(map[string]*Biome, len(t.Biomes))
	for _, b := range t.Biomes {
		if b.Name == "" {
			return errors.New("biome without a name")
		}
		if _, dup := t.byName[b.Name]; dup {
			return fmt.Errorf("biome %s defined twice", b.Name)
		}
		for _, terrain := range []world.TerrainType{b.Ground, b.Water, b.Hole} {
			if !terrain.Valid() {
				return fmt.Errorf("biome %s: unknown terrain %q", b.Name, terrain)
			}
		}
		t.byName[b.Name] = b
	}
	for i := range t.Ranges {
		pr := &t.Ranges[i]
		if pr.Min == precipitationMinSentinel {
			pr.Min = math.Inf(-1)
		}
		if pr.Max == precipitationMaxSentinel {
			pr.Max = math.Inf(1)
		}
		for j := range pr.Temperatures {
			tr := &pr.Temperatures[j]
			if tr.Min == temperatureMinSentinel {
				tr.Min = math.Inf(-1)
			}
			if tr.Max == temperatureMaxSentinel {
				tr.Max = math.Inf(1)
			}
			b, ok := t.byName[tr.Biome]
			if !ok {
				return fmt.Errorf("%w: range %d names %q", ErrUnknownBiome, i, tr.Biome)
			}
			tr.biome = b
		}
	}
	return nil
}

// checkCoverage sweeps the breakpoints of every range. Precipitation is
// checked over [0,1]; for each precipitation probe the temperature
// sub-ranges of every matching range must cover the whole real line.
func (t *Table) checkCoverage() error {
	var bounds []float64
	for _, pr := range t.Ranges {
		bounds = append(bounds, pr.Min, pr.Max)
	}
	for _, p := range probes(bounds, 0, 1) {
		var temps []TemperatureRange
		for _, pr := range t.Ranges {
			if p >= pr.Min && p < pr.Max {
				temps = append(temps, pr.Temperatures...)
			}
		}
		if len(temps) == 0 {
			return fmt.Errorf("%w: precipitation %.3f", ErrRangeGap, p)
		}
		var tb []float64
		for _, tr := range temps {
			tb = append(tb, tr.Min, tr.Max)
		}
		for _, temp := range probes(tb, math.Inf(-1), math.Inf(1)) {
			covered := false
			for _, tr := range temps {
				if temp >= tr.Min && temp < tr.Max {
					covered = true
					break
				}
			}
			if !covered {
				return fmt.Errorf("%w: precipitation %.3f temperature %.1f", ErrRangeGap, p, temp)
			}
		}
	}
	return nil
}

// probes returns every finite breakpoint within [lo,hi], the midpoints
// between them and, for unbounded sides, a point beyond the outermost one.
func probes(bounds []float64, lo, hi float64) []float64 {
	var points []float64
	if !math.IsInf(lo, 0) {
		points = append(points, lo)
	}
	if !math.IsInf(hi, 0) {
		points = append(points, hi)
	}
	for _, b := range bounds {
		if !math.IsInf(b, 0) && b >= lo && b <= hi {
			points = append(points, b)
		}
	}
	sort.Float64s(points)
	points = dedupe(points)
	if len(points) == 0 {
		return []float64{0}
	}
	out := append([]float64(nil), points...)
	for i := 1; i < len(points); i++ {
		out = append(out, (points[i-1]+points[i])/2)
	}
	if math.IsInf(lo, -1) {
		out = append(out, points[0]-1)
	}
	if math.IsInf(hi, 1) {
		out = append(out, points[len(points)-1]+1)
	}
	sort.Float64s(out)
	return out
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func (t *Table) overlaps() []string {
	var warnings []string
	for i := range t.Ranges {
		a := t.Ranges[i]
		for j := i + 1; j < len(t.Ranges); j++ {
			b := t.Ranges[j]
			if math.Max(a.Min, b.Min) < math.Min(a.Max, b.Max) {
				warnings = append(warnings, fmt.Sprintf("precipitation ranges %d and %d overlap; range %d wins", i, j, i))
			}
		}
		for x := range a.Temperatures {
			for y := x + 1; y < len(a.Temperatures); y++ {
				tx, ty := a.Temperatures[x], a.Temperatures[y]
				if math.Max(tx.Min, ty.Min) < math.Min(tx.Max, ty.Max) {
					warnings = append(warnings, fmt.Sprintf("precipitation range %d: temperature ranges %s and %s overlap; %s wins", i, tx.Biome, ty.Biome, tx.Biome))
				}
			}
		}
	}
	return warnings
}

// Classify returns the biome of the first matching range pair.
func (t *Table) Classify(precipitation, temperature float64) (*Biome, bool) {
	for _, pr := range t.Ranges {
		if precipitation < pr.Min || precipitation >= pr.Max {
			continue
		}
		for _, tr := range pr.Temperatures {
			if temperature >= tr.Min && temperature < tr.Max {
				return tr.biome, true
			}
		}
	}
	return nil, false
}

// Biome looks a biome up by name.
func (t *Table) Biome(name string) (*Biome, bool) {
	b, ok := t.byName[name]
	return b, ok
}

// Colours maps biome names to their preview colours.
func (t *Table) Colours() map[string]string {
	out := make(map[string]string, len(t.Biomes))
	for _, b := range t.Biomes {
		out[b.Name] = b.Colour
	}
	return out
}
