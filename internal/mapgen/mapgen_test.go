package mapgen

import (
	"errors"
	"reflect"
	"testing"

	"worldgen/internal/config"
	"worldgen/internal/regions"
	"worldgen/internal/world"
)

func testConfig(seed int64, size int) *config.Config {
	cfg := config.Default()
	cfg.Map.Seed = seed
	cfg.Map.Size = size
	return cfg
}

func generate(t *testing.T, cfg *config.Config) *Map {
	t.Helper()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Generate(nil)
	return m
}

func records(g *world.Grid) [][]world.TileRecord {
	out := make([][]world.TileRecord, g.Size())
	for y := range out {
		out[y] = g.RowRecords(y)
	}
	return out
}

func TestStagesRunInOrder(t *testing.T) {
	stages := Stages()
	if len(stages) != 18 {
		t.Fatalf("expected 18 stages, got %d", len(stages))
	}
	if stages[0] != StageHeights || stages[len(stages)-1] != StageShadows {
		t.Fatalf("unexpected stage bounds %s..%s", stages[0], stages[len(stages)-1])
	}

	m, err := New(testConfig(3, 20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var seen []Stage
	m.Generate(func(s Stage, done int) {
		if done != len(seen)+1 {
			t.Fatalf("stage %s reported %d done, want %d", s, done, len(seen)+1)
		}
		seen = append(seen, s)
	})
	if !reflect.DeepEqual(seen, stages) {
		t.Fatalf("progress saw %v", seen)
	}
	if StageVeins.String() != "veins" || Stage(99).String() != "stage(99)" {
		t.Fatalf("unexpected stage names")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(cfg *config.Config)
	}{
		{name: "default planet tile"},
		{
			name: "large river",
			tweak: func(cfg *config.Config) {
				cfg.Map.PlanetTile.IsRiver = true
				cfg.Map.PlanetTile.RiverEdges = []int{world.DirLeft, world.DirRight}
			},
		},
		{
			name: "no planet tile",
			tweak: func(cfg *config.Config) {
				cfg.Map.PlanetTile = nil
				cfg.Map.AveragePrecipitation = 0.5
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := func(seed int64) *Map {
				cfg := testConfig(seed, 40)
				if tt.tweak != nil {
					tt.tweak(cfg)
				}
				return generate(t, cfg)
			}
			a, b := build(11), build(11)
			if !reflect.DeepEqual(records(a.Grid()), records(b.Grid())) {
				t.Fatalf("same seed produced different tiles")
			}
			if len(a.Rivers()) != len(b.Rivers()) || len(a.Basins()) != len(b.Basins()) {
				t.Fatalf("same seed produced different hydrology")
			}
			if a.PrimaryWind() != b.PrimaryWind() {
				t.Fatalf("same seed picked different winds")
			}
			if reflect.DeepEqual(records(a.Grid()), records(build(12).Grid())) {
				t.Fatalf("different seeds produced identical maps")
			}
		})
	}
}

func TestGenerateLeavesConsistentIndices(t *testing.T) {
	m := generate(t, testConfig(5, 30))
	g := m.Grid()
	for _, tile := range g.Tiles() {
		if tile.TerrainRegion == world.NoID || tile.WalkRegion == world.NoID || tile.Block == world.NoID {
			t.Fatalf("tile (%d,%d) missing an index: %+v", tile.X, tile.Y, tile)
		}
		if tile.Biome == "" {
			t.Fatalf("tile (%d,%d) has no biome", tile.X, tile.Y)
		}
		if tile.Precipitation < 0 || tile.Precipitation > 1 {
			t.Fatalf("precipitation out of range at (%d,%d): %v", tile.X, tile.Y, tile.Precipitation)
		}
		if tile.Roof && !tile.Terrain.IsStoneEquivalent() {
			t.Fatalf("roof on non-stone tile (%d,%d)", tile.X, tile.Y)
		}
	}
	for _, r := range g.WalkRegions.Sorted() {
		for _, tile := range r.Tiles {
			if tile.Walkable != r.Walkable {
				t.Fatalf("walk region %d mixes walkability", r.ID)
			}
		}
	}
}

func openTile(t *testing.T, m *Map) *world.Tile {
	t.Helper()
	for _, tile := range m.Grid().Tiles() {
		if tile.Walkable && !tile.BlocksLight() && !tile.HasObjects() {
			return tile
		}
	}
	t.Fatalf("no open tile on the map")
	return nil
}

func TestSetTileObjectUpdatesDerivedState(t *testing.T) {
	m := generate(t, testConfig(9, 30))
	tile := openTile(t, m)

	edit, err := m.SetTileObject(tile.X, tile.Y, world.ObjectStoneWall)
	if err != nil {
		t.Fatalf("SetTileObject: %v", err)
	}
	if !edit.WalkFlipped || !edit.LightFlipped || !edit.BlocksRebuilt {
		t.Fatalf("wall should flip walkability and light: %+v", edit)
	}
	if edit.WalkAction == regions.NoOp {
		t.Fatalf("walk regions should have been updated")
	}
	region := m.Grid().WalkRegions.Of(tile)
	if region == nil || region.Walkable {
		t.Fatalf("wall tile should sit in a blocked walk region")
	}
	if m.Visible(tile.X, tile.Y, 5) == nil {
		t.Fatalf("rebuilt blocks should answer visibility queries")
	}

	if _, err := m.SetTileObject(tile.X, tile.Y, world.ObjectWoodenWall); !errors.Is(err, world.ErrLayerOccupied) {
		t.Fatalf("expected ErrLayerOccupied, got %v", err)
	}

	edit, err = m.RemoveTileObject(tile.X, tile.Y, world.LayerStructure)
	if err != nil {
		t.Fatalf("RemoveTileObject: %v", err)
	}
	if !edit.WalkFlipped || !tile.Walkable {
		t.Fatalf("removing the wall should reopen the tile")
	}
	if _, err := m.RemoveTileObject(tile.X, tile.Y, world.LayerStructure); !errors.Is(err, ErrEmptyLayer) {
		t.Fatalf("expected ErrEmptyLayer, got %v", err)
	}
	if _, err := m.SetTileObject(-1, 0, world.ObjectStoneWall); !errors.Is(err, world.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestSetTerrainNotifiesListeners(t *testing.T) {
	m := generate(t, testConfig(4, 20))
	tile := openTile(t, m)
	before := tile.Terrain

	var got []world.TerrainType
	m.OnTileTypeChanged(func(changed *world.Tile, previous world.TerrainType) {
		if changed != tile {
			t.Fatalf("listener got the wrong tile")
		}
		got = append(got, previous)
	})
	edit, err := m.SetTerrain(tile.X, tile.Y, world.TerrainMarble)
	if err != nil {
		t.Fatalf("SetTerrain: %v", err)
	}
	if !reflect.DeepEqual(got, []world.TerrainType{before}) {
		t.Fatalf("listener saw %v, want [%s]", got, before)
	}
	if edit.TerrainAction == regions.NoOp {
		t.Fatalf("terrain regions should have been updated")
	}
	if r := m.Grid().TerrainRegions.Of(tile); r == nil || r.Terrain != world.TerrainMarble {
		t.Fatalf("tile should belong to a marble region")
	}
	if !edit.LightFlipped {
		t.Fatalf("marble blocks light")
	}
	if _, err := m.SetTerrain(tile.X, tile.Y, world.TerrainType("Lava")); err == nil {
		t.Fatalf("expected error for unknown terrain")
	}
}

func TestFacadeBeforeGenerate(t *testing.T) {
	m, err := New(testConfig(1, 20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Tile(0, 0); !errors.Is(err, ErrNotGenerated) {
		t.Fatalf("expected ErrNotGenerated, got %v", err)
	}
	if m.TileAt(1, 1) != nil || m.Rivers() != nil || m.Basins() != nil {
		t.Fatalf("ungenerated map should expose nothing")
	}
}

func TestNewRejectsBadNoiseRule(t *testing.T) {
	cfg := testConfig(1, 20)
	cfg.Terrain.NoiseRules = []config.NoiseRule{{Terrains: []string{"Lava"}, SizeFraction: 0.1}}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected an error for an unknown terrain in a noise rule")
	}
}
