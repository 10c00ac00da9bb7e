package world

import "math"

// NoID marks an unset region, block, basin or river reference.
const NoID = -1

// Tile is a single grid cell. Region, block, basin and river references are
// ids looked up through the owning Grid; the tile owns none of them.
type Tile struct {
	X int
	Y int

	Height        float64
	Temperature   float64
	Precipitation float64

	Terrain   TerrainType
	Walkable  bool
	WalkSpeed float64
	Buildable bool
	Biome     string
	Roof      bool
	Plant     *Plant
	Objects   [LayerCount]*TileObject

	TerrainRegion int
	WalkRegion    int
	Block         int
	Basin         int
	River         int

	Light *TileLight
}

func newTile(x, y int) *Tile {
	t := &Tile{
		X:             x,
		Y:             y,
		TerrainRegion: NoID,
		WalkRegion:    NoID,
		Block:         NoID,
		Basin:         NoID,
		River:         NoID,
	}
	t.SetTerrain(TerrainGrass)
	return t
}

// SetTerrain changes the terrain type and re-derives walkability, walk speed
// and buildability. It reports whether walkability flipped.
func (t *Tile) SetTerrain(terrain TerrainType) bool {
	before := t.Walkable
	t.Terrain = terrain
	if t.Plant != nil && !terrain.IsPlantable() {
		t.Plant = nil
	}
	t.derive()
	return before != t.Walkable
}

// SetHeight stores h clamped to [0, 1].
func (t *Tile) SetHeight(h float64) {
	t.Height = Clamp01(h)
}

// derive recomputes the traits that depend on terrain, plant and objects.
func (t *Tile) derive() {
	props := t.Terrain.Properties()
	t.Walkable = props.Walkable
	t.Buildable = props.Buildable
	t.WalkSpeed = props.WalkSpeed
	if t.Plant != nil {
		t.WalkSpeed = math.Min(t.WalkSpeed, 0.6)
		t.Buildable = false
	}
	for _, obj := range t.Objects {
		if obj == nil {
			continue
		}
		if !obj.Spec.Walkable {
			t.Walkable = false
		}
		if !obj.Spec.Buildable {
			t.Buildable = false
		}
		t.WalkSpeed = math.Min(t.WalkSpeed, obj.Spec.WalkSpeed)
	}
	if !t.Walkable {
		t.WalkSpeed = 0
	}
}

// BlocksLight reports whether the tile stops light: stone-equivalent terrain
// or any light-blocking object.
func (t *Tile) BlocksLight() bool {
	if t.Terrain.IsStoneEquivalent() {
		return true
	}
	for _, obj := range t.Objects {
		if obj != nil && obj.Spec.BlocksLight {
			return true
		}
	}
	return false
}

// HasObjects reports whether any layer is occupied.
func (t *Tile) HasObjects() bool {
	for _, obj := range t.Objects {
		if obj != nil {
			return true
		}
	}
	return false
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
