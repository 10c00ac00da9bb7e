package lighting

import (
	"math"
	"testing"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

func testEngine() *Engine {
	return NewEngine(
		config.MapConfig{StoneHeight: 0.75, PlanetTile: &config.PlanetTileConfig{EquatorOffset: 0.5}},
		config.LightingConfig{Enabled: true, StepSize: 0.1},
	)
}

// scene builds a 20x20 grass map with a 3x3 stone outcrop centred on (10,10)
// and a roofed tile at (3,3).
func scene() *world.Grid {
	g := world.NewGrid(20, nil)
	for y := 9; y <= 11; y++ {
		for x := 9; x <= 11; x++ {
			g.At(x, y).SetTerrain(world.TerrainStone)
		}
	}
	g.At(3, 3).Roof = true
	return g
}

func TestDirections(t *testing.T) {
	flat := Directions(0)
	if flat[12] != (Vec{}) {
		t.Fatalf("noon on the equator should cast no offset, got %+v", flat[12])
	}
	if flat[0].X != -5 || flat[0].Y != 0 {
		t.Fatalf("midnight direction = %+v", flat[0])
	}
	tilted := Directions(0.5)
	if tilted[12].X != 0 || tilted[12].Y != 1.25 {
		t.Fatalf("tilted noon direction = %+v", tilted[12])
	}
}

func TestShadowBrightness(t *testing.T) {
	if got := ShadowBrightness(12); math.Abs(got-0.58) > 1e-9 {
		t.Fatalf("noon shadow brightness = %v, want 0.58", got)
	}
	if got := ShadowBrightness(0); got != 1 {
		t.Fatalf("midnight shadows should vanish, got %v", got)
	}
	if PhaseAt(12) != PhaseDay || PhaseAt(2) != PhaseNight || PhaseAt(6) != PhaseDawn {
		t.Fatalf("unexpected phases")
	}
}

func TestIsCaster(t *testing.T) {
	g := scene()
	if !IsCaster(g, g.At(9, 9)) {
		t.Fatalf("outcrop edge should cast")
	}
	if IsCaster(g, g.At(10, 10)) {
		t.Fatalf("enclosed stone should not cast")
	}
	if !IsCaster(g, g.At(3, 3)) {
		t.Fatalf("roofed tile should cast")
	}
	if IsCaster(g, g.At(0, 0)) {
		t.Fatalf("open grass should not cast")
	}
}

func TestComputeAllShadowsAndTruncates(t *testing.T) {
	g := scene()
	testEngine().ComputeAll(g)

	above := g.At(10, 12)
	if got := above.Brightness(12); math.Abs(got-0.58) > 1e-9 {
		t.Fatalf("tile above the outcrop at noon = %v, want 0.58", got)
	}
	if got := g.At(0, 0).Brightness(12); got != 1 {
		t.Fatalf("far tile should be lit, got %v", got)
	}
	bottom := g.At(10, 9)
	blocker := g.IndexOf(g.At(10, 10))
	if bottom.Light == nil {
		t.Fatalf("bottom caster has no light relations")
	}
	if _, ok := bottom.Light.TruncatedBy[12][blocker]; !ok {
		t.Fatalf("noon shadow of (10,9) should stop at (10,10)")
	}
	if _, ok := g.At(10, 10).Light.ShadowsFrom[12][g.IndexOf(bottom)]; ok {
		t.Fatalf("blocker must not be recorded as shadowed")
	}
	assertBidirectional(t, g)
}

func shadowedAt(g *world.Grid, h int) int {
	n := 0
	for _, tile := range g.Tiles() {
		if tile.Brightness(h) < 1 {
			n++
		}
	}
	return n
}

func TestTallerCasterThrowsLongerShadows(t *testing.T) {
	lone := func(height float64) *world.Grid {
		g := world.NewGrid(80, nil)
		caster := g.At(40, 20)
		caster.SetTerrain(world.TerrainStone)
		caster.SetHeight(height)
		g.At(79, 79).SetHeight(1)
		testEngine().ComputeAll(g)
		return g
	}
	low, high := lone(0.76), lone(1)

	if got, want := shadowedAt(low, 12), 6; got != want {
		t.Fatalf("low caster noon shadow = %d tiles, want %d", got, want)
	}
	if got, want := shadowedAt(high, 12), 8; got != want {
		t.Fatalf("high caster noon shadow = %d tiles, want %d", got, want)
	}
	for h := 0; h < world.Hours; h++ {
		if shadowedAt(high, h) < shadowedAt(low, h) {
			t.Fatalf("hour %d: taller caster shadows %d tiles, shorter %d", h, shadowedAt(high, h), shadowedAt(low, h))
		}
	}
}

func TestRecomputeMatchesFullCompute(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *world.Grid) *world.Tile
	}{
		{
			name: "wall placed in a shadow",
			mutate: func(g *world.Grid) *world.Tile {
				tile := g.At(10, 12)
				if _, err := tile.PlaceObject(world.ObjectStoneWall); err != nil {
					t.Fatalf("place: %v", err)
				}
				return tile
			},
		},
		{
			name: "outcrop edge mined out",
			mutate: func(g *world.Grid) *world.Tile {
				tile := g.At(10, 11)
				tile.SetTerrain(world.TerrainGrass)
				return tile
			},
		},
		{
			name: "wall placed beside the outcrop",
			mutate: func(g *world.Grid) *world.Tile {
				tile := g.At(12, 10)
				if _, err := tile.PlaceObject(world.ObjectWoodenWall); err != nil {
					t.Fatalf("place: %v", err)
				}
				return tile
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine()
			incremental := scene()
			e.ComputeAll(incremental)
			changed := tt.mutate(incremental)
			e.Recompute(incremental, changed)

			full := scene()
			tt.mutate(full)
			e.ComputeAll(full)

			assertSameLight(t, incremental, full)
			assertBidirectional(t, incremental)
		})
	}
}

func assertBidirectional(t *testing.T, g *world.Grid) {
	t.Helper()
	for _, tile := range g.Tiles() {
		if tile.Light == nil {
			continue
		}
		ti := g.IndexOf(tile)
		for h := 0; h < world.Hours; h++ {
			for ri := range tile.Light.ShadowsTo[h] {
				r := g.TileAt(ri)
				if r.Light == nil {
					t.Fatalf("receiver %d has no relations", ri)
				}
				if _, ok := r.Light.ShadowsFrom[h][ti]; !ok {
					t.Fatalf("hour %d: %d shadows %d but the receiver does not know", h, ti, ri)
				}
			}
			for ci := range tile.Light.ShadowsFrom[h] {
				if _, ok := g.TileAt(ci).Light.ShadowsTo[h][ti]; !ok {
					t.Fatalf("hour %d: %d lists %d as a source without the reverse", h, ti, ci)
				}
			}
			for bi := range tile.Light.TruncatedBy[h] {
				if _, ok := g.TileAt(bi).Light.Truncates[h][ti]; !ok {
					t.Fatalf("hour %d: truncation %d by %d is one-sided", h, ti, bi)
				}
			}
		}
	}
}

func assertSameLight(t *testing.T, got, want *world.Grid) {
	t.Helper()
	for i, a := range got.Tiles() {
		b := want.TileAt(i)
		for h := 0; h < world.Hours; h++ {
			if a.Brightness(h) != b.Brightness(h) {
				t.Fatalf("tile (%d,%d) hour %d brightness %v, want %v", a.X, a.Y, h, a.Brightness(h), b.Brightness(h))
			}
			if !sameKeys(shadowSources(a, h), shadowSources(b, h)) {
				t.Fatalf("tile (%d,%d) hour %d shadow sources differ", a.X, a.Y, h)
			}
			if !sameKeys(truncations(a, h), truncations(b, h)) {
				t.Fatalf("tile (%d,%d) hour %d truncations differ", a.X, a.Y, h)
			}
		}
	}
}

func shadowSources(tile *world.Tile, h int) map[int]struct{} {
	out := make(map[int]struct{})
	if tile.Light != nil {
		for k := range tile.Light.ShadowsFrom[h] {
			out[k] = struct{}{}
		}
	}
	return out
}

func truncations(tile *world.Tile, h int) map[int]struct{} {
	out := make(map[int]struct{})
	if tile.Light != nil {
		for k := range tile.Light.TruncatedBy[h] {
			out[k] = struct{}{}
		}
	}
	return out
}

func sameKeys(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
