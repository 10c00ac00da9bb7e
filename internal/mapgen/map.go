package mapgen

import (
	"errors"
	"fmt"

	"worldgen/internal/biome"
	"worldgen/internal/config"
	"worldgen/internal/lighting"
	"worldgen/internal/regions"
	"worldgen/internal/visibility"
	"worldgen/internal/world"
)

var (
	// ErrNotGenerated is returned by façade calls made before Generate or
	// Restore.
	ErrNotGenerated = errors.New("map not generated")
	ErrEmptyLayer   = errors.New("tile layer is empty")
)

// TypeChangedFunc observes terrain changes made through SetTerrain.
type TypeChangedFunc func(t *world.Tile, previous world.TerrainType)

// Map owns a generated grid and the derived indices kept in sync with it.
// It is not safe for concurrent use.
type Map struct {
	cfg        *config.Config
	rng        *world.RNG
	biomes     *biome.Table
	noiseRules []regions.NoiseRule

	grid        *world.Grid
	blocks      *visibility.Index
	shadows     *lighting.Engine
	primaryWind int

	listeners []TypeChangedFunc
}

// Edit summarises the follow-up work triggered by a single tile mutation.
type Edit struct {
	Tile          *world.Tile
	TerrainAction regions.Action
	WalkAction    regions.Action
	WalkFlipped   bool
	LightFlipped  bool
	BlocksRebuilt bool
}

func (m *Map) Config() *config.Config { return m.cfg }

// Grid returns the underlying grid, or nil before generation.
func (m *Map) Grid() *world.Grid { return m.grid }

func (m *Map) Biomes() *biome.Table { return m.biomes }

// PrimaryWind returns the heading chosen during precipitation, or NoID.
func (m *Map) PrimaryWind() int { return m.primaryWind }

// TileAt maps a world position onto the grid.
func (m *Map) TileAt(fx, fy float64) *world.Tile {
	if m.grid == nil {
		return nil
	}
	return m.grid.AtPosition(fx, fy)
}

// Tile returns the tile at (x, y).
func (m *Map) Tile(x, y int) (*world.Tile, error) {
	if m.grid == nil {
		return nil, ErrNotGenerated
	}
	return m.grid.Lookup(x, y)
}

func (m *Map) Rivers() []*world.River {
	if m.grid == nil {
		return nil
	}
	return m.grid.Rivers
}

func (m *Map) Basins() []*world.Basin {
	if m.grid == nil {
		return nil
	}
	return m.grid.Basins
}

// Visible returns the visibility block ids seen from (x, y).
func (m *Map) Visible(x, y int, radius float64) []int {
	return m.blocks.Visible(x, y, radius)
}

// OnTileTypeChanged registers fn to run after every SetTerrain.
func (m *Map) OnTileTypeChanged(fn TypeChangedFunc) {
	m.listeners = append(m.listeners, fn)
}

// SetTileObject places an object of the given kind at (x, y).
func (m *Map) SetTileObject(x, y int, kind world.ObjectKind) (*Edit, error) {
	t, err := m.Tile(x, y)
	if err != nil {
		return nil, err
	}
	walkable, blocks := t.Walkable, t.BlocksLight()
	if _, err := t.PlaceObject(kind); err != nil {
		return nil, err
	}
	return m.settle(t, walkable, blocks), nil
}

// RemoveTileObject clears the given layer at (x, y).
func (m *Map) RemoveTileObject(x, y, layer int) (*Edit, error) {
	t, err := m.Tile(x, y)
	if err != nil {
		return nil, err
	}
	walkable, blocks := t.Walkable, t.BlocksLight()
	if t.RemoveObject(layer) == nil {
		return nil, fmt.Errorf("remove layer %d at (%d,%d): %w", layer, x, y, ErrEmptyLayer)
	}
	return m.settle(t, walkable, blocks), nil
}

// SetTerrain changes the terrain at (x, y), updates the terrain regions and
// notifies listeners.
func (m *Map) SetTerrain(x, y int, terrain world.TerrainType) (*Edit, error) {
	if !terrain.Valid() {
		return nil, fmt.Errorf("set terrain at (%d,%d): unknown terrain %q", x, y, terrain)
	}
	t, err := m.Tile(x, y)
	if err != nil {
		return nil, err
	}
	previous := t.Terrain
	walkable, blocks := t.Walkable, t.BlocksLight()
	t.SetTerrain(terrain)
	edit := m.settle(t, walkable, blocks)
	edit.TerrainAction = regions.Update(m.grid, t, regions.TypeChanged, world.ByTerrain)
	for _, fn := range m.listeners {
		fn(t, previous)
	}
	return edit, nil
}

// settle brings walkability regions, visibility blocks and shadows back in
// line with t after a mutation.
func (m *Map) settle(t *world.Tile, walkable, blocks bool) *Edit {
	edit := &Edit{Tile: t}
	if t.Walkable != walkable {
		edit.WalkFlipped = true
		event := regions.BecameOpen
		if !t.Walkable {
			event = regions.BecameBlocking
		}
		edit.WalkAction = regions.Update(m.grid, t, event, world.ByWalkability)
		m.rebuildBlocks()
		edit.BlocksRebuilt = true
	}
	if t.BlocksLight() != blocks {
		edit.LightFlipped = true
		if m.cfg.Lighting.Enabled {
			m.shadows.Recompute(m.grid, t)
		}
	}
	return edit
}
