package world

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestGridNeighbourOrder(t *testing.T) {
	g := NewGrid(5, nil)
	centre := g.At(2, 2)

	want := [8][2]int{{2, 3}, {3, 2}, {2, 1}, {1, 2}, {3, 3}, {3, 1}, {1, 1}, {1, 3}}
	got := g.Surrounding(centre)
	for i, n := range got {
		if n == nil {
			t.Fatalf("neighbour %d unexpectedly nil", i)
		}
		if n.X != want[i][0] || n.Y != want[i][1] {
			t.Fatalf("neighbour %d = (%d,%d), want (%d,%d)", i, n.X, n.Y, want[i][0], want[i][1])
		}
	}

	corner := g.At(0, 0)
	h := g.Horizontal(corner)
	if h[DirDown] != nil || h[DirLeft] != nil {
		t.Fatalf("expected off-grid neighbours to be nil")
	}
	if h[DirUp] == nil || h[DirRight] == nil {
		t.Fatalf("expected on-grid neighbours to be present")
	}
	d := g.Diagonal(corner)
	if d[0] == nil || d[1] != nil || d[2] != nil || d[3] != nil {
		t.Fatalf("unexpected diagonal neighbours for corner: %v", d)
	}
}

func TestGridAtPositionClampsAndFloors(t *testing.T) {
	g := NewGrid(10, nil)
	tests := []struct {
		fx, fy float64
		x, y   int
	}{
		{fx: 3.7, fy: 4.2, x: 3, y: 4},
		{fx: -5, fy: 2.9, x: 0, y: 2},
		{fx: 42, fy: 9.99, x: 9, y: 9},
	}
	for _, tt := range tests {
		got := g.AtPosition(tt.fx, tt.fy)
		if got.X != tt.x || got.Y != tt.y {
			t.Fatalf("AtPosition(%v,%v) = (%d,%d), want (%d,%d)", tt.fx, tt.fy, got.X, got.Y, tt.x, tt.y)
		}
	}
}

func TestGridLookupOutOfBounds(t *testing.T) {
	g := NewGrid(4, nil)
	if _, err := g.Lookup(4, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestNewGridSeedsHeightsDeterministically(t *testing.T) {
	a := NewGrid(8, NewRNG(5))
	b := NewGrid(8, NewRNG(5))
	for i, ta := range a.Tiles() {
		if ta.Height != b.Tiles()[i].Height {
			t.Fatalf("tile %d height differs for identical seeds", i)
		}
		if ta.Height < 0 || ta.Height >= 1 {
			t.Fatalf("seed height out of range: %v", ta.Height)
		}
	}
}

func TestTileTraitsFollowTerrainAndObjects(t *testing.T) {
	g := NewGrid(3, nil)
	tile := g.At(1, 1)

	if !tile.Walkable || !tile.Buildable {
		t.Fatalf("grass should be walkable and buildable")
	}
	if flipped := tile.SetTerrain(TerrainStone); !flipped {
		t.Fatalf("expected walkability flip when turning to stone")
	}
	if tile.Walkable {
		t.Fatalf("stone must not be walkable")
	}
	tile.SetTerrain(TerrainGrass)

	if _, err := tile.PlaceObject(ObjectWoodenWall); err != nil {
		t.Fatalf("PlaceObject: %v", err)
	}
	if tile.Walkable {
		t.Fatalf("wall should block walking")
	}
	if _, err := tile.PlaceObject(ObjectStoneWall); !errors.Is(err, ErrLayerOccupied) {
		t.Fatalf("expected ErrLayerOccupied, got %v", err)
	}
	if removed := tile.RemoveObject(LayerStructure); removed == nil || removed.Kind != ObjectWoodenWall {
		t.Fatalf("expected wooden wall to be removed, got %+v", removed)
	}
	if !tile.Walkable || tile.WalkSpeed != 1 {
		t.Fatalf("grass should be restored after removal: walkable=%v speed=%v", tile.Walkable, tile.WalkSpeed)
	}

	tile.SetPlant(&Plant{Group: "Bush"})
	if tile.WalkSpeed != 0.6 {
		t.Fatalf("plant should cap walk speed at 0.6, got %v", tile.WalkSpeed)
	}
	tile.SetTerrain(TerrainStone)
	if tile.Plant != nil {
		t.Fatalf("plant should be cleared on unplantable terrain")
	}
}

func TestSameCategory(t *testing.T) {
	tests := []struct {
		a, b TerrainType
		want bool
	}{
		{TerrainGrass, TerrainGrass, true},
		{TerrainGrassWater, TerrainSandWater, true},
		{TerrainGranite, TerrainStone, true},
		{TerrainDirtHole, TerrainStoneHole, true},
		{TerrainGrass, TerrainDirt, false},
		{TerrainStone, TerrainStoneWater, false},
	}
	for _, tt := range tests {
		if got := SameCategory(tt.a, tt.b); got != tt.want {
			t.Fatalf("SameCategory(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRegionSetCompactRenumbersDensely(t *testing.T) {
	g := NewGrid(3, nil)
	set := g.TerrainRegions
	a := set.Create(g.At(0, 0))
	b := set.Create(g.At(1, 0))
	c := set.Create(g.At(2, 0))
	set.Merge(a, b)
	set.Add(c, g.At(2, 1))

	set.Compact()
	if set.Len() != 2 {
		t.Fatalf("expected 2 regions after compact, got %d", set.Len())
	}
	if g.At(1, 0).TerrainRegion != 0 || g.At(2, 1).TerrainRegion != 1 {
		t.Fatalf("unexpected ids after compact: %d %d", g.At(1, 0).TerrainRegion, g.At(2, 1).TerrainRegion)
	}

	removed := set.Remove(g.At(2, 1))
	if removed.Size() != 1 || g.At(2, 1).TerrainRegion != NoID {
		t.Fatalf("remove did not detach tile")
	}
}

func TestShadowRelationsStayBidirectional(t *testing.T) {
	g := NewGrid(4, nil)
	caster, receiver, blocker := g.At(0, 0), g.At(1, 0), g.At(2, 0)

	g.AddShadow(caster, receiver, 9, 0.5)
	g.AddShadow(caster, receiver, 9, 0.7)
	g.AddTruncation(caster, blocker, 9)

	if got := receiver.Brightness(9); got != 0.5 {
		t.Fatalf("expected darkest shadow to win, got %v", got)
	}
	if _, ok := caster.Light.ShadowsTo[9][g.IndexOf(receiver)]; !ok {
		t.Fatalf("caster should list receiver")
	}
	if _, ok := blocker.Light.Truncates[9][g.IndexOf(caster)]; !ok {
		t.Fatalf("blocker should list truncated caster")
	}

	g.ClearCast(caster)
	if receiver.Brightness(9) != 1 {
		t.Fatalf("clearing caster should restore full brightness")
	}
	if len(blocker.Light.Truncates[9]) != 0 {
		t.Fatalf("clearing caster should drop truncation back-reference")
	}
}

func TestEncodePreviewProducesPNG(t *testing.T) {
	g := NewGrid(6, NewRNG(1))
	g.At(2, 2).SetTerrain(TerrainStone)
	modes := []PreviewMode{PreviewTerrain, PreviewHeight, PreviewTemperature, PreviewPrecipitation, PreviewBiome, PreviewBrightness, PreviewRegions}
	for _, mode := range modes {
		var buf bytes.Buffer
		if err := EncodePreview(&buf, g, PreviewOptions{Mode: mode, Scale: 2}); err != nil {
			t.Fatalf("EncodePreview(%s): %v", mode, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("decode %s preview: %v", mode, err)
		}
		if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 12 {
			t.Fatalf("unexpected %s preview size %v", mode, b)
		}
	}
	if err := EncodePreview(&bytes.Buffer{}, g, PreviewOptions{Mode: "bogus"}); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestLookupObjectCatalogue(t *testing.T) {
	spec, ok := LookupObject(ObjectWoodenDoor)
	if !ok || spec.Layer != LayerStructure || !spec.Walkable || !spec.BlocksLight {
		t.Fatalf("unexpected door spec %+v (found %v)", spec, ok)
	}
	if _, ok := LookupObject("Statue"); ok {
		t.Fatalf("unknown kinds should not resolve")
	}
}
