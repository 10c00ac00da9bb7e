package visibility

import (
	"log"
	"math"
	"sort"

	"github.com/boljen/go-bitmap"

	"worldgen/internal/world"
)

// Block is a walkability-homogeneous patch of tiles used for visibility
// culling.
type Block struct {
	ID       int
	Walkable bool
	Tiles    []*world.Tile
	AverageX float64
	AverageY float64
	// Horizontal lists blocks sharing an edge, Surrounding also those
	// touching only at a corner. Both are sorted by id.
	Horizontal  []int
	Surrounding []int
}

// Index owns the blocks of one grid and answers visibility queries.
type Index struct {
	grid      *world.Grid
	blockSize int
	blocks    []*Block
	disposed  bool

	cacheValid  bool
	cacheBlock  int
	cacheRadius float64
	cache       []int
}

// BlockSize returns the raster cell size for an n-tile map.
func BlockSize(n int, fraction float64) int {
	return max(1, int(math.Round(float64(n)*fraction)))
}

// Build tiles the grid into square cells and floods each cell into
// 4-connected runs of equal walkability, so a cell that mixes walkable and
// blocked tiles splits into homogeneous blocks. Tiles receive their block id.
func Build(g *world.Grid, fraction float64) *Index {
	n := g.Size()
	size := BlockSize(n, fraction)
	ix := &Index{grid: g, blockSize: size}
	visited := bitmap.New(len(g.Tiles()))

	for cy := 0; cy < n; cy += size {
		for cx := 0; cx < n; cx += size {
			inCell := func(t *world.Tile) bool {
				return t.X >= cx && t.X < cx+size && t.Y >= cy && t.Y < cy+size
			}
			for y := cy; y < cy+size && y < n; y++ {
				for x := cx; x < cx+size && x < n; x++ {
					seed := g.At(x, y)
					if visited.Get(g.IndexOf(seed)) {
						continue
					}
					ix.flood(g, seed, inCell, visited)
				}
			}
		}
	}
	ix.link(g)
	return ix
}

func (ix *Index) flood(g *world.Grid, seed *world.Tile, inCell func(*world.Tile) bool, visited bitmap.Bitmap) {
	b := &Block{ID: len(ix.blocks), Walkable: seed.Walkable}
	visited.Set(g.IndexOf(seed), true)
	queue := []*world.Tile{seed}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		t.Block = b.ID
		b.Tiles = append(b.Tiles, t)
		b.AverageX += float64(t.X)
		b.AverageY += float64(t.Y)
		for _, nb := range g.Horizontal(t) {
			if nb == nil || nb.Walkable != b.Walkable || !inCell(nb) || visited.Get(g.IndexOf(nb)) {
				continue
			}
			visited.Set(g.IndexOf(nb), true)
			queue = append(queue, nb)
		}
	}
	b.AverageX /= float64(len(b.Tiles))
	b.AverageY /= float64(len(b.Tiles))
	ix.blocks = append(ix.blocks, b)
}

func (ix *Index) link(g *world.Grid) {
	for _, b := range ix.blocks {
		horizontal := make(map[int]struct{})
		surrounding := make(map[int]struct{})
		for _, t := range b.Tiles {
			for dir, nb := range g.Surrounding(t) {
				if nb == nil || nb.Block == b.ID {
					continue
				}
				surrounding[nb.Block] = struct{}{}
				if dir < 4 {
					horizontal[nb.Block] = struct{}{}
				}
			}
		}
		b.Horizontal = sortedIDs(horizontal)
		b.Surrounding = sortedIDs(surrounding)
	}
}

func sortedIDs(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of blocks.
func (ix *Index) Len() int { return len(ix.blocks) }

// Blocks returns the blocks ordered by id.
func (ix *Index) Blocks() []*Block { return ix.blocks }

// Block returns the block with the given id or nil.
func (ix *Index) Block(id int) *Block {
	if id < 0 || id >= len(ix.blocks) {
		return nil
	}
	return ix.blocks[id]
}

// Visible returns the ids of the blocks visible from (x, y). A breadth-first
// walk over surrounding adjacency starts at the viewpoint's block and only
// expands blocks whose average position lies within radius; blocks beyond it
// are visible but not expanded. The result is reused until the viewpoint's
// block or the radius changes.
func (ix *Index) Visible(x, y int, radius float64) []int {
	if ix == nil || ix.disposed {
		log.Printf("visibility query at (%d,%d) on a disposed index", x, y)
		return nil
	}
	t := ix.grid.At(x, y)
	if t == nil || ix.Block(t.Block) == nil {
		log.Printf("visibility query at (%d,%d) has no block", x, y)
		return nil
	}
	if ix.cacheValid && ix.cacheBlock == t.Block && ix.cacheRadius == radius {
		return append([]int(nil), ix.cache...)
	}

	seen := map[int]struct{}{t.Block: {}}
	queue := []int{t.Block}
	var visible []int
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visible = append(visible, id)
		b := ix.blocks[id]
		if math.Hypot(b.AverageX-float64(x), b.AverageY-float64(y)) > radius {
			continue
		}
		for _, next := range b.Surrounding {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	sort.Ints(visible)

	ix.cacheValid = true
	ix.cacheBlock = t.Block
	ix.cacheRadius = radius
	ix.cache = visible
	return append([]int(nil), visible...)
}

// Dispose releases the blocks. Later queries log and return nothing.
func (ix *Index) Dispose() {
	if ix == nil {
		return
	}
	ix.disposed = true
	ix.blocks = nil
	ix.cache = nil
	ix.cacheValid = false
}
