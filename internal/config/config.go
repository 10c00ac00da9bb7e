package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a JSON and YAML friendly wrapper around time.Duration that
// accepts human readable strings such as "150ms" in configuration files while
// still allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML encodes the duration as its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode int: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: decode string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures every tunable of a single map generation run.
type Config struct {
	Map        MapConfig        `json:"map" yaml:"map"`
	Terrain    TerrainConfig    `json:"terrain" yaml:"terrain"`
	Hydrology  HydrologyConfig  `json:"hydrology" yaml:"hydrology"`
	Climate    ClimateConfig    `json:"climate" yaml:"climate"`
	Biomes     BiomeConfig      `json:"biomes" yaml:"biomes"`
	Visibility VisibilityConfig `json:"visibility" yaml:"visibility"`
	Lighting   LightingConfig   `json:"lighting" yaml:"lighting"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

type MapConfig struct {
	Seed                 int64             `json:"seed" yaml:"seed"`
	Size                 int               `json:"size" yaml:"size"`
	WaterHeight          float64           `json:"waterHeight" yaml:"water_height"`
	StoneHeight          float64           `json:"stoneHeight" yaml:"stone_height"`
	AverageTemperature   float64           `json:"averageTemperature" yaml:"average_temperature"`     // used when planetTile is absent
	AveragePrecipitation float64           `json:"averagePrecipitation" yaml:"average_precipitation"` // -1 disables the pull
	PrimaryWindDirection int               `json:"primaryWindDirection" yaml:"primary_wind_direction"` // -1 picks one from the seed
	PlanetTile           *PlanetTileConfig `json:"planetTile,omitempty" yaml:"planet_tile,omitempty"`
}

// PlanetTileConfig describes where the map sits on the coarser world grid.
type PlanetTileConfig struct {
	EquatorOffset       float64    `json:"equatorOffset" yaml:"equator_offset"`
	TemperatureRange    float64    `json:"temperatureRange" yaml:"temperature_range"`
	TemperatureOffset   float64    `json:"temperatureOffset" yaml:"temperature_offset"`
	RandomOffsets       bool       `json:"randomOffsets" yaml:"random_offsets"`
	SurroundingHeights  [4]float64 `json:"surroundingHeights" yaml:"surrounding_heights"` // up, right, down, left
	IsRiver             bool       `json:"isRiver" yaml:"is_river"`
	RiverEdges          []int      `json:"riverEdges" yaml:"river_edges"`
	PreventEdgeTouching bool       `json:"preventEdgeTouching" yaml:"prevent_edge_touching"`
}

type TerrainConfig struct {
	SmoothingPasses      int         `json:"smoothingPasses" yaml:"smoothing_passes"`
	PerlinBlend          float64     `json:"perlinBlend" yaml:"perlin_blend"`
	NoiseRules           []NoiseRule `json:"noiseRules" yaml:"noise_rules"`
	RoofHeightMultiplier float64     `json:"roofHeightMultiplier" yaml:"roof_height_multiplier"`
	Veins                VeinConfig  `json:"veins" yaml:"veins"`
}

// NoiseRule dissolves regions of the listed terrains smaller than
// round(size * SizeFraction) tiles.
type NoiseRule struct {
	Terrains     []string `json:"terrains" yaml:"terrains"`
	SizeFraction float64  `json:"sizeFraction" yaml:"size_fraction"`
}

type VeinConfig struct {
	CountFraction  float64 `json:"countFraction" yaml:"count_fraction"`
	Size           int     `json:"size" yaml:"size"`
	SizeJitter     int     `json:"sizeJitter" yaml:"size_jitter"`
	Distance       int     `json:"distance" yaml:"distance"`
	MinTemperature float64 `json:"minTemperature" yaml:"min_temperature"`
}

type HydrologyConfig struct {
	BasinTolerance       float64 `json:"basinTolerance" yaml:"basin_tolerance"`
	MaxRiversFraction    float64 `json:"maxRiversFraction" yaml:"max_rivers_fraction"`
	StartExclusionRadius float64 `json:"startExclusionRadius" yaml:"start_exclusion_radius"`
	Jitter               float64 `json:"jitter" yaml:"jitter"`
}

type ClimateConfig struct {
	TemperaturePasses   int     `json:"temperaturePasses" yaml:"temperature_passes"`
	PrecipitationPasses int     `json:"precipitationPasses" yaml:"precipitation_passes"`
	TemperatureJitter   float64 `json:"temperatureJitter" yaml:"temperature_jitter"`
	JitterFrequency     float64 `json:"jitterFrequency" yaml:"jitter_frequency"`
}

type BiomeConfig struct {
	TablePath  string `json:"tablePath" yaml:"table_path"` // empty uses the embedded table
	Vegetation bool   `json:"vegetation" yaml:"vegetation"`
}

type VisibilityConfig struct {
	BlockSizeFraction float64 `json:"blockSizeFraction" yaml:"block_size_fraction"`
}

type LightingConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	StepSize float64 `json:"stepSize" yaml:"step_size"`
}

type ServerConfig struct {
	Listen      string   `json:"listen" yaml:"listen"`
	ReadTimeout Duration `json:"readTimeout" yaml:"read_timeout"`
	ExitWait    Duration `json:"exitWait" yaml:"exit_wait"`
}

type OutputConfig struct {
	PreviewPath  string `json:"previewPath" yaml:"preview_path"`
	PreviewMode  string `json:"previewMode" yaml:"preview_mode"`
	PreviewScale int    `json:"previewScale" yaml:"preview_scale"`
	SnapshotPath string `json:"snapshotPath" yaml:"snapshot_path"`
}

// Load reads configuration from a JSON or YAML file if provided. An empty
// path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Map: MapConfig{
			Seed:                 1337,
			Size:                 100,
			WaterHeight:          0.40,
			StoneHeight:          0.75,
			AverageTemperature:   15,
			AveragePrecipitation: -1,
			PrimaryWindDirection: -1,
			PlanetTile: &PlanetTileConfig{
				EquatorOffset:     0.5,
				TemperatureRange:  50,
				TemperatureOffset: 0,
			},
		},
		Terrain: TerrainConfig{
			SmoothingPasses: 3,
			PerlinBlend:     0,
			NoiseRules: []NoiseRule{
				{Terrains: []string{"GrassWater", "Stone", "Grass"}, SizeFraction: 0.2},
				{Terrains: []string{"GrassWater"}, SizeFraction: 0.5},
			},
			RoofHeightMultiplier: 1.25,
			Veins: VeinConfig{
				CountFraction:  0.1,
				Size:           10,
				SizeJitter:     5,
				Distance:       5,
				MinTemperature: -30,
			},
		},
		Hydrology: HydrologyConfig{
			BasinTolerance:       1.2,
			MaxRiversFraction:    0.1,
			StartExclusionRadius: 5,
			Jitter:               10,
		},
		Climate: ClimateConfig{
			TemperaturePasses:   3,
			PrecipitationPasses: 5,
			TemperatureJitter:   2,
			JitterFrequency:     0.05,
		},
		Biomes: BiomeConfig{
			Vegetation: true,
		},
		Visibility: VisibilityConfig{
			BlockSizeFraction: 0.1,
		},
		Lighting: LightingConfig{
			Enabled:  true,
			StepSize: 0.1,
		},
		Server: ServerConfig{
			Listen:      ":8080",
			ReadTimeout: Duration(5 * time.Second),
			ExitWait:    Duration(2 * time.Second),
		},
		Output: OutputConfig{
			PreviewMode:  "biome",
			PreviewScale: 4,
		},
	}
}

func (c *Config) Validate() error {
	if c.Map.Size < 10 {
		return errors.New("map.size must be at least 10")
	}
	if c.Map.WaterHeight < 0 || c.Map.WaterHeight > 1 {
		return errors.New("map.waterHeight must be within [0,1]")
	}
	if c.Map.StoneHeight <= c.Map.WaterHeight || c.Map.StoneHeight > 1 {
		return errors.New("map.stoneHeight must be within (waterHeight,1]")
	}
	if c.Map.AveragePrecipitation != -1 && (c.Map.AveragePrecipitation < 0 || c.Map.AveragePrecipitation > 1) {
		return errors.New("map.averagePrecipitation must be -1 or within [0,1]")
	}
	if c.Map.PrimaryWindDirection < -1 || c.Map.PrimaryWindDirection > 7 {
		return errors.New("map.primaryWindDirection must be -1 or within [0,7]")
	}
	if pt := c.Map.PlanetTile; pt != nil {
		if pt.TemperatureRange <= 0 {
			return errors.New("map.planetTile.temperatureRange must be positive")
		}
		for _, edge := range pt.RiverEdges {
			if edge < 0 || edge > 3 {
				return errors.New("map.planetTile.riverEdges must be within [0,3]")
			}
		}
		if pt.IsRiver && len(pt.RiverEdges) < 2 {
			return errors.New("map.planetTile.riverEdges needs two edges when isRiver is set")
		}
	}
	if c.Terrain.SmoothingPasses < 0 {
		return errors.New("terrain.smoothingPasses cannot be negative")
	}
	if c.Terrain.PerlinBlend < 0 || c.Terrain.PerlinBlend > 1 {
		return errors.New("terrain.perlinBlend must be within [0,1]")
	}
	for i, rule := range c.Terrain.NoiseRules {
		if len(rule.Terrains) == 0 {
			return fmt.Errorf("terrain.noiseRules[%d].terrains must be set", i)
		}
		if rule.SizeFraction <= 0 {
			return fmt.Errorf("terrain.noiseRules[%d].sizeFraction must be positive", i)
		}
	}
	if c.Terrain.RoofHeightMultiplier < 1 {
		return errors.New("terrain.roofHeightMultiplier must be >= 1")
	}
	if c.Terrain.Veins.Size < 0 || c.Terrain.Veins.SizeJitter < 0 || c.Terrain.Veins.SizeJitter > c.Terrain.Veins.Size {
		return errors.New("terrain.veins size and sizeJitter must satisfy 0 <= sizeJitter <= size")
	}
	if c.Hydrology.BasinTolerance < 1 {
		return errors.New("hydrology.basinTolerance must be >= 1")
	}
	if c.Hydrology.MaxRiversFraction < 0 {
		return errors.New("hydrology.maxRiversFraction cannot be negative")
	}
	if c.Climate.TemperaturePasses < 0 || c.Climate.PrecipitationPasses < 0 {
		return errors.New("climate passes cannot be negative")
	}
	if c.Visibility.BlockSizeFraction <= 0 || c.Visibility.BlockSizeFraction > 1 {
		return errors.New("visibility.blockSizeFraction must be within (0,1]")
	}
	if c.Lighting.Enabled && c.Lighting.StepSize <= 0 {
		return errors.New("lighting.stepSize must be positive")
	}
	if c.Output.PreviewScale < 0 {
		return errors.New("output.previewScale cannot be negative")
	}
	return nil
}
