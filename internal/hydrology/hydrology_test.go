package hydrology

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalFlags := log.Flags()
	originalPrefix := log.Prefix()
	originalWriter := log.Writer()
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(originalWriter)
		log.SetPrefix(originalPrefix)
		log.SetFlags(originalFlags)
	})
	return &buf
}

func flatGrid(size int, height float64) *world.Grid {
	g := world.NewGrid(size, nil)
	for _, tile := range g.Tiles() {
		tile.Height = height
	}
	return g
}

func TestDetermineBasinsPartitionsNonStone(t *testing.T) {
	g := world.NewGrid(24, world.NewRNG(8))
	for _, tile := range g.Tiles() {
		if tile.Height > 0.8 {
			tile.SetTerrain(world.TerrainStone)
		}
	}
	basins := DetermineBasins(g, 1.2)
	if len(basins) == 0 {
		t.Fatalf("expected basins")
	}

	counts := make(map[*world.Tile]int)
	for _, basin := range basins {
		if basin.Outlet == nil || basin.Outlet.Basin != basin.ID {
			t.Fatalf("basin %d outlet not inside the basin", basin.ID)
		}
		for _, tile := range basin.Tiles {
			counts[tile]++
			if tile.Basin != basin.ID {
				t.Fatalf("tile (%d,%d) points at basin %d, listed in %d", tile.X, tile.Y, tile.Basin, basin.ID)
			}
		}
	}
	for _, tile := range g.Tiles() {
		if tile.Terrain.IsStoneEquivalent() {
			if counts[tile] != 0 || tile.Basin != world.NoID {
				t.Fatalf("stone tile (%d,%d) assigned to a basin", tile.X, tile.Y)
			}
			continue
		}
		if counts[tile] != 1 {
			t.Fatalf("tile (%d,%d) appears in %d basins", tile.X, tile.Y, counts[tile])
		}
	}
}

func TestDetermineBasinsRespectsTolerance(t *testing.T) {
	g := flatGrid(3, 1)
	g.At(0, 0).Height = 0.5

	basins := DetermineBasins(g, 1.2)
	if len(basins) != 2 {
		t.Fatalf("expected a pit basin and a plateau basin, got %d", len(basins))
	}
	if basins[0].Outlet != g.At(0, 0) || len(basins[0].Tiles) != 1 {
		t.Fatalf("pit basin should hold only its outlet, got %d tiles", len(basins[0].Tiles))
	}
	if basins[1].Outlet != g.At(1, 0) {
		t.Fatalf("plateau outlet should be the first tile by index, got (%d,%d)", basins[1].Outlet.X, basins[1].Outlet.Y)
	}
}

func TestFindPathIsDeterministic(t *testing.T) {
	run := func() []*world.Tile {
		g := world.NewGrid(20, world.NewRNG(1))
		path, _ := FindPath(g, world.NewRNG(7), g.At(0, 0), g.At(19, 19), PathOptions{Jitter: 10})
		return path
	}
	a, b := run(), run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("path lengths differ or empty: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Fatalf("paths diverge at step %d", i)
		}
	}
	if a[0].X != 0 || a[0].Y != 0 || a[len(a)-1].X != 19 || a[len(a)-1].Y != 19 {
		t.Fatalf("path should run from start to end")
	}
	for i := 1; i < len(a); i++ {
		if math.Abs(float64(a[i].X-a[i-1].X))+math.Abs(float64(a[i].Y-a[i-1].Y)) != 1 {
			t.Fatalf("path step %d is not a horizontal move", i)
		}
	}
}

func TestFindPathExhaustedFrontierIsEmpty(t *testing.T) {
	buf := captureLog(t)
	g := world.NewGrid(5, nil)
	for _, tile := range g.Tiles() {
		tile.SetTerrain(world.TerrainStone)
	}
	start := g.At(2, 2)
	start.SetTerrain(world.TerrainGrass)

	path, joined := FindPath(g, world.NewRNG(1), start, g.At(0, 0), PathOptions{})
	if len(path) != 0 || joined != world.NoID {
		t.Fatalf("expected an empty path, got %d tiles joined %d", len(path), joined)
	}
	if !strings.Contains(buf.String(), "exhausted its frontier") {
		t.Fatalf("expected exhaustion log, got: %s", buf.String())
	}
}

func TestFindPathSplicesOntoExistingRiver(t *testing.T) {
	g := flatGrid(10, 0)
	for y := 0; y < 10; y++ {
		tile := g.At(5, y)
		tile.SetTerrain(world.TerrainGrassWater)
		tile.River = 0
	}
	path, joined := FindPath(g, world.NewRNG(2), g.At(0, 5), g.At(9, 5), PathOptions{Splice: true})
	if joined != 0 {
		t.Fatalf("expected to splice onto river 0, got %d", joined)
	}
	if last := path[len(path)-1]; last.X != 5 {
		t.Fatalf("path should end on the existing river, ended at (%d,%d)", last.X, last.Y)
	}
}

func TestFindPathStopsNextToOpenWater(t *testing.T) {
	g := flatGrid(10, 0)
	for y := 0; y < 10; y++ {
		g.At(0, y).SetTerrain(world.TerrainGrassWater)
	}
	path, _ := FindPath(g, world.NewRNG(3), g.At(1, 5), g.At(9, 9), PathOptions{})
	if len(path) != 1 {
		t.Fatalf("a start on the shore should end the search at once, got %d tiles", len(path))
	}
	// With an expand radius the search ignores open water and runs to the goal.
	path, _ = FindPath(g, world.NewRNG(3), g.At(1, 5), g.At(9, 9), PathOptions{ExpandRadius: 1})
	if last := path[len(path)-1]; last != g.At(9, 9) {
		t.Fatalf("expanding search should reach the goal, stopped at (%d,%d)", last.X, last.Y)
	}
}

func TestCarveExpandsIntoValley(t *testing.T) {
	g := flatGrid(21, 0.5)
	var path []*world.Tile
	for x := 0; x < 21; x++ {
		path = append(path, g.At(x, 10))
	}
	river := &world.River{ID: 0, ExpandRadius: 2, JoinedRiver: world.NoID}
	Carve(g, world.NewRNG(4), river, path, PathOptions{ExpandRadius: 2, WaterHeight: 0.4})

	if h := g.At(5, 10).Height; h != 0 {
		t.Fatalf("river bed should be lowered to 0, got %v", h)
	}
	inner := g.At(5, 12)
	if !inner.Terrain.IsLiquidWater() || inner.River != river.ID {
		t.Fatalf("tile within the radius should be carved, got %s river %d", inner.Terrain, inner.River)
	}
	bank := g.At(5, 13)
	if bank.River != world.NoID || bank.Terrain.IsLiquidWater() {
		t.Fatalf("bank tile should not join the river")
	}
	if bank.Height >= 0.5 {
		t.Fatalf("bank tile should be tapered below 0.5, got %v", bank.Height)
	}
}

func TestCarveRiversDrainsToWater(t *testing.T) {
	g := world.NewGrid(20, nil)
	for _, tile := range g.Tiles() {
		switch {
		case tile.X < 5:
			tile.SetTerrain(world.TerrainGrassWater)
			tile.Height = 0.19
		case tile.X >= 15:
			tile.SetTerrain(world.TerrainStone)
			tile.Height = 0.9
		default:
			tile.Height = 0.2 * math.Pow(1.1, float64(tile.X-5))
		}
	}
	DetermineBasins(g, 1.2)
	cfg := config.Default().Hydrology
	rivers := CarveRivers(g, world.NewRNG(6), cfg)
	if len(rivers) == 0 || len(rivers) > 2 {
		t.Fatalf("expected 1-2 rivers, got %d", len(rivers))
	}
	for _, river := range rivers {
		if river.Empty() {
			t.Fatalf("river %d is empty", river.ID)
		}
		if g.Rivers[river.ID] != river {
			t.Fatalf("river %d not registered on the grid", river.ID)
		}
		for _, tile := range river.Tiles {
			if tile.River == world.NoID || !tile.Terrain.IsWaterEquivalent() {
				t.Fatalf("river tile (%d,%d) not carved", tile.X, tile.Y)
			}
		}
	}
}

func TestCarveLargeRiverCrossesMap(t *testing.T) {
	g := flatGrid(40, 0.5)
	pt := &config.PlanetTileConfig{TemperatureRange: 50, IsRiver: true, RiverEdges: []int{world.DirRight, world.DirLeft}}
	rivers := CarveLargeRiver(g, world.NewRNG(9), pt, config.Default().Hydrology, 0.4)
	if len(rivers) != 1 {
		t.Fatalf("expected one large river, got %d", len(rivers))
	}
	river := rivers[0]
	if river.Start.X != 39 || river.End.X != 0 {
		t.Fatalf("river should run from the right edge to the left edge, got (%d,%d) -> (%d,%d)", river.Start.X, river.Start.Y, river.End.X, river.End.Y)
	}
	if river.Start.Y < 10 || river.Start.Y > 29 || river.End.Y < 10 || river.End.Y > 29 {
		t.Fatalf("river mouths too close to corners")
	}
	if river.ExpandRadius < 1 || river.ExpandRadius > 2 {
		t.Fatalf("unexpected expand radius %d", river.ExpandRadius)
	}
	if river.Centre == nil || math.Hypot(float64(river.Centre.X)-20, float64(river.Centre.Y)-20) >= 8 {
		t.Fatalf("centre waypoint should sit near the map centre")
	}
	for _, tile := range river.Tiles {
		if tile.River != river.ID || !tile.Terrain.IsLiquidWater() {
			t.Fatalf("large river tile (%d,%d) not carved", tile.X, tile.Y)
		}
	}
}

func TestCarveLargeRiverNeedsFlag(t *testing.T) {
	g := flatGrid(40, 0.5)
	pt := &config.PlanetTileConfig{TemperatureRange: 50, RiverEdges: []int{0, 2}}
	if rivers := CarveLargeRiver(g, world.NewRNG(1), pt, config.Default().Hydrology, 0.4); rivers != nil {
		t.Fatalf("expected no rivers without isRiver")
	}
}
