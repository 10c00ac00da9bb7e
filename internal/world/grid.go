package world

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a coordinate falls outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Neighbour directions. The first four are the horizontal neighbours, the
// last four the diagonals; Surrounding returns them in this order.
const (
	DirUp = iota
	DirRight
	DirDown
	DirLeft
	DirUpRight
	DirDownRight
	DirDownLeft
	DirUpLeft
)

// DirOffsets maps each direction to its (dx, dy) step. Up is +y.
var DirOffsets = [8][2]int{
	{0, 1},
	{1, 0},
	{0, -1},
	{-1, 0},
	{1, 1},
	{1, -1},
	{-1, -1},
	{-1, 1},
}

// Grid owns the N×N tile array together with every structure derived from
// it: terrain and walkability regions, rivers and drainage basins.
type Grid struct {
	size  int
	tiles []*Tile

	TerrainRegions *RegionSet
	WalkRegions    *RegionSet
	Rivers         []*River
	Basins         []*Basin
}

// NewGrid builds a size×size grid of grass tiles. When rng is non-nil every
// tile receives a uniform random height seed.
func NewGrid(size int, rng *RNG) *Grid {
	if size <= 0 {
		size = 1
	}
	g := &Grid{
		size:           size,
		tiles:          make([]*Tile, size*size),
		TerrainRegions: NewRegionSet(ByTerrain),
		WalkRegions:    NewRegionSet(ByWalkability),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := newTile(x, y)
			if rng != nil {
				t.Height = rng.Float64()
			}
			g.tiles[y*size+x] = t
		}
	}
	return g
}

// Size returns N, the number of tiles per side.
func (g *Grid) Size() int { return g.size }

// Tiles exposes every tile in row-major order (index = y*N + x).
func (g *Grid) Tiles() []*Tile { return g.tiles }

// Index returns the row-major index of (x, y).
func (g *Grid) Index(x, y int) int { return y*g.size + x }

// IndexOf returns the row-major index of t.
func (g *Grid) IndexOf(t *Tile) int { return t.Y*g.size + t.X }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.size && y < g.size
}

// At returns the tile at (x, y) or nil when off-grid.
func (g *Grid) At(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.tiles[y*g.size+x]
}

// TileAt returns the tile with the given row-major index or nil.
func (g *Grid) TileAt(index int) *Tile {
	if index < 0 || index >= len(g.tiles) {
		return nil
	}
	return g.tiles[index]
}

// Lookup is At with an error for off-grid coordinates.
func (g *Grid) Lookup(x, y int) (*Tile, error) {
	t := g.At(x, y)
	if t == nil {
		return nil, fmt.Errorf("tile (%d,%d) on %dx%d grid: %w", x, y, g.size, g.size, ErrOutOfBounds)
	}
	return t, nil
}

// AtPosition maps a world position to a tile by clamping onto the grid and
// flooring.
func (g *Grid) AtPosition(fx, fy float64) *Tile {
	limit := float64(g.size - 1)
	x := int(math.Floor(Clamp(fx, 0, limit)))
	y := int(math.Floor(Clamp(fy, 0, limit)))
	return g.tiles[y*g.size+x]
}

// Neighbour returns the tile one step from t in direction dir, or nil.
func (g *Grid) Neighbour(t *Tile, dir int) *Tile {
	off := DirOffsets[dir]
	return g.At(t.X+off[0], t.Y+off[1])
}

// Horizontal returns the up, right, down and left neighbours. Off-grid
// entries are nil.
func (g *Grid) Horizontal(t *Tile) [4]*Tile {
	var out [4]*Tile
	for i := 0; i < 4; i++ {
		out[i] = g.Neighbour(t, i)
	}
	return out
}

// Diagonal returns the up-right, down-right, down-left and up-left
// neighbours. Off-grid entries are nil.
func (g *Grid) Diagonal(t *Tile) [4]*Tile {
	var out [4]*Tile
	for i := 0; i < 4; i++ {
		out[i] = g.Neighbour(t, i+4)
	}
	return out
}

// Surrounding returns the horizontal neighbours followed by the diagonals.
func (g *Grid) Surrounding(t *Tile) [8]*Tile {
	var out [8]*Tile
	for i := 0; i < 8; i++ {
		out[i] = g.Neighbour(t, i)
	}
	return out
}

// DistanceToEdge returns the number of tiles between t and the given map edge
// (DirUp, DirRight, DirDown or DirLeft).
func (g *Grid) DistanceToEdge(t *Tile, edge int) int {
	switch edge {
	case DirUp:
		return g.size - 1 - t.Y
	case DirRight:
		return g.size - 1 - t.X
	case DirDown:
		return t.Y
	default:
		return t.X
	}
}

// EdgeTiles returns the tiles along the given map edge, ordered by the free
// coordinate.
func (g *Grid) EdgeTiles(edge int) []*Tile {
	out := make([]*Tile, 0, g.size)
	for i := 0; i < g.size; i++ {
		switch edge {
		case DirUp:
			out = append(out, g.At(i, g.size-1))
		case DirRight:
			out = append(out, g.At(g.size-1, i))
		case DirDown:
			out = append(out, g.At(i, 0))
		default:
			out = append(out, g.At(0, i))
		}
	}
	return out
}

// Distance is the Euclidean distance between two tiles.
func Distance(a, b *Tile) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Regions returns the region set of the given kind.
func (g *Grid) Regions(kind RegionKind) *RegionSet {
	if kind == ByWalkability {
		return g.WalkRegions
	}
	return g.TerrainRegions
}
