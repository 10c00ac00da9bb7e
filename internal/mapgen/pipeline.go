package mapgen

import (
	"fmt"
	"log"
	"time"

	"worldgen/internal/biome"
	"worldgen/internal/climate"
	"worldgen/internal/config"
	"worldgen/internal/hydrology"
	"worldgen/internal/lighting"
	"worldgen/internal/regions"
	"worldgen/internal/terrain"
	"worldgen/internal/visibility"
	"worldgen/internal/world"
)

// Stage is one step of map generation. Stages always run in declaration
// order.
type Stage int

const (
	StageHeights Stage = iota
	StageEdges
	StageTerrain
	StageSegmentTerrain
	StageReduceNoise
	StageLargeRiver
	StageResegmentRiver
	StageBasins
	StageRivers
	StageResegmentHydrology
	StageTemperature
	StagePrecipitation
	StageBiomes
	StageResegmentBiomes
	StageRoofs
	StageVeins
	StageBlocks
	StageShadows
	stageCount
)

var stageNames = [stageCount]string{
	"heights",
	"edges",
	"terrain",
	"segment-terrain",
	"reduce-noise",
	"large-river",
	"resegment-river",
	"basins",
	"rivers",
	"resegment-hydrology",
	"temperature",
	"precipitation",
	"biomes",
	"resegment-biomes",
	"roofs",
	"veins",
	"blocks",
	"shadows",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages returns every stage in run order.
func Stages() []Stage {
	out := make([]Stage, stageCount)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// New prepares a map for generation. It fails when the biome table leaves a
// gap or a noise rule names an unknown terrain.
func New(cfg *config.Config) (*Map, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	table, warnings, err := biome.LoadTable(cfg.Biomes.TablePath)
	if err != nil {
		return nil, fmt.Errorf("load biomes: %w", err)
	}
	for _, w := range warnings {
		log.Printf("biome table: %s", w)
	}
	rules, err := regions.RulesFromConfig(cfg.Terrain.NoiseRules, cfg.Map.Size)
	if err != nil {
		return nil, fmt.Errorf("noise rules: %w", err)
	}
	return &Map{
		cfg:         cfg,
		rng:         world.NewRNG(cfg.Map.Seed),
		biomes:      table,
		noiseRules:  rules,
		shadows:     lighting.NewEngine(cfg.Map, cfg.Lighting),
		primaryWind: world.NoID,
	}, nil
}

// Generate runs every stage on a fresh grid. progress, when set, is called
// after each stage with the number of stages completed.
func (m *Map) Generate(progress func(Stage, int)) {
	start := time.Now()
	m.grid = world.NewGrid(m.cfg.Map.Size, m.rng)
	for _, stage := range Stages() {
		stageStart := time.Now()
		m.runStage(stage)
		log.Printf("map stage %s done in %s", stage, time.Since(stageStart).Round(time.Millisecond))
		if progress != nil {
			progress(stage, int(stage)+1)
		}
	}
	log.Printf("map generated: seed=%d size=%d rivers=%d basins=%d in %s",
		m.cfg.Map.Seed, m.grid.Size(), len(m.grid.Rivers), len(m.grid.Basins), time.Since(start).Round(time.Millisecond))
}

func (m *Map) runStage(stage Stage) {
	g := m.grid
	mc := m.cfg.Map
	pt := mc.PlanetTile
	switch stage {
	case StageHeights:
		terrain.NewHeightSynthesizer(m.cfg.Terrain, m.rng).Generate(g)
	case StageEdges:
		if pt == nil {
			return
		}
		terrain.BlendEdges(g, pt.SurroundingHeights)
		if pt.PreventEdgeTouching {
			terrain.PreventEdgeTouching(g)
		}
	case StageTerrain:
		terrain.AssignTerrainByHeight(g, mc.WaterHeight, mc.StoneHeight)
	case StageSegmentTerrain:
		regions.Segment(g, world.ByTerrain)
	case StageReduceNoise:
		regions.ReduceNoise(g, m.noiseRules)
	case StageLargeRiver:
		hydrology.CarveLargeRiver(g, m.rng, pt, m.cfg.Hydrology, mc.WaterHeight)
	case StageResegmentRiver:
		regions.Segment(g, world.ByTerrain)
	case StageBasins:
		hydrology.DetermineBasins(g, m.cfg.Hydrology.BasinTolerance)
	case StageRivers:
		hydrology.CarveRivers(g, m.rng, m.cfg.Hydrology)
	case StageResegmentHydrology, StageResegmentBiomes:
		m.resegment()
	case StageTemperature:
		climate.NewSynthesizer(mc, m.cfg.Climate, m.rng).Temperature(g)
	case StagePrecipitation:
		m.primaryWind = climate.PrimaryWind(mc, m.rng)
		climate.NewSynthesizer(mc, m.cfg.Climate, m.rng).Precipitation(g, m.primaryWind)
	case StageBiomes:
		changed := biome.Apply(g, m.biomes, m.rng, m.cfg.Biomes.Vegetation)
		log.Printf("biomes repainted %d tiles", len(changed))
	case StageRoofs:
		roofed := terrain.SetRoofs(g, mc.StoneHeight, m.cfg.Terrain.RoofHeightMultiplier)
		log.Printf("roofed %d tiles", roofed)
	case StageVeins:
		if changed := terrain.PlaceVeins(g, m.rng, m.cfg.Terrain.Veins); len(changed) > 0 {
			m.resegment()
		}
	case StageBlocks:
		m.rebuildBlocks()
	case StageShadows:
		if m.cfg.Lighting.Enabled {
			m.shadows.ComputeAll(g)
		}
	}
}

func (m *Map) resegment() {
	regions.Segment(m.grid, world.ByTerrain)
	regions.Segment(m.grid, world.ByWalkability)
}

func (m *Map) rebuildBlocks() {
	if m.blocks != nil {
		m.blocks.Dispose()
	}
	m.blocks = visibility.Build(m.grid, m.cfg.Visibility.BlockSizeFraction)
}
