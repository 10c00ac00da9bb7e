package hydrology

import (
	"container/heap"
	"log"
	"math"

	"github.com/boljen/go-bitmap"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// PathOptions tunes a single river search and carve.
type PathOptions struct {
	// ExpandRadius widens the carved path into a valley. Zero carves a
	// one-tile channel and lets the search stop at open water.
	ExpandRadius int
	IgnoreStone  bool
	// Splice lets the search stop on touching an existing river.
	Splice      bool
	Jitter      float64
	WaterHeight float64
}

type riverNode struct {
	tile  *world.Tile
	from  *riverNode
	cost  float64
	order int
	index int
}

type riverQueue []*riverNode

func (q riverQueue) Len() int { return len(q) }
func (q riverQueue) Less(i, j int) bool {
	if q[i].cost == q[j].cost {
		return q[i].order < q[j].order
	}
	return q[i].cost < q[j].cost
}
func (q riverQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *riverQueue) Push(x any) {
	item := x.(*riverNode)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *riverQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// FindPath runs a best-first search from start to end, ordering the frontier
// by distance to end plus a height penalty plus seeded jitter. Tiles are
// queued at most once. It returns the path in order from start and the id of
// the river it spliced onto, or world.NoID. An exhausted frontier yields an
// empty path.
func FindPath(g *world.Grid, rng *world.RNG, start, end *world.Tile, opts PathOptions) ([]*world.Tile, int) {
	if start == nil || end == nil {
		return nil, world.NoID
	}
	heightPenalty := float64(g.Size()) / 10
	queued := bitmap.New(len(g.Tiles()))
	open := &riverQueue{}
	heap.Init(open)
	seq := 0
	push := func(node *riverNode) {
		node.order = seq
		seq++
		heap.Push(open, node)
	}

	queued.Set(g.IndexOf(start), true)
	push(&riverNode{tile: start})
	for open.Len() > 0 {
		current := heap.Pop(open).(*riverNode)
		if current.tile == end || (opts.ExpandRadius == 0 && reachedWater(g, current.tile)) {
			return unwind(current), world.NoID
		}
		for _, n := range g.Horizontal(current.tile) {
			if n == nil {
				continue
			}
			idx := g.IndexOf(n)
			if queued.Get(idx) || (!opts.IgnoreStone && n.Terrain.IsStoneEquivalent()) {
				continue
			}
			queued.Set(idx, true)
			if opts.Splice && n.River != world.NoID {
				return unwind(&riverNode{tile: n, from: current}), n.River
			}
			cost := world.Distance(n, end) + n.Height*heightPenalty + rng.Range(0, opts.Jitter)
			push(&riverNode{tile: n, from: current, cost: cost})
		}
	}
	log.Printf("river search from (%d,%d) to (%d,%d) exhausted its frontier", start.X, start.Y, end.X, end.Y)
	return nil, world.NoID
}

// reachedWater reports whether t is open water, or borders open water, that
// no river has claimed.
func reachedWater(g *world.Grid, t *world.Tile) bool {
	if t.Terrain.IsLiquidWater() && t.River == world.NoID {
		return true
	}
	for _, n := range g.Horizontal(t) {
		if n != nil && n.Terrain.IsLiquidWater() && n.River == world.NoID {
			return true
		}
	}
	return false
}

func unwind(node *riverNode) []*world.Tile {
	var path []*world.Tile
	for ; node != nil; node = node.from {
		path = append(path, node.tile)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Carve turns path into river's water tiles. With an expand radius every
// path tile is lowered to the river bed and a flood over the surrounding
// tiles cuts a full-depth channel within the radius and tapers the banks
// out to a randomised outer radius.
func Carve(g *world.Grid, rng *world.RNG, river *world.River, path []*world.Tile, opts PathOptions) {
	inRiver := bitmap.New(len(g.Tiles()))
	add := func(t *world.Tile) {
		inRiver.Set(g.IndexOf(t), true)
		river.Tiles = append(river.Tiles, t)
		t.River = river.ID
		t.SetTerrain(world.TerrainGrassWater)
	}
	for _, t := range path {
		if !inRiver.Get(g.IndexOf(t)) {
			add(t)
		}
	}
	if opts.ExpandRadius <= 0 {
		return
	}

	radius := float64(opts.ExpandRadius)
	outer := radius * rng.Range(2, 4)
	bed := func(d float64) float64 {
		return world.Clamp01(opts.WaterHeight/radius*d - 0.01)
	}
	bank := func(d float64) float64 {
		return world.Clamp01(bed(d/2) + opts.WaterHeight/2)
	}

	for _, centre := range path {
		centre.SetHeight(bed(0))
		checked := map[int]struct{}{g.IndexOf(centre): {}}
		frontier := []*world.Tile{centre}
		for len(frontier) > 0 {
			t := frontier[0]
			frontier = frontier[1:]
			d := world.Distance(t, centre)
			if d <= radius {
				if !inRiver.Get(g.IndexOf(t)) {
					add(t)
					t.SetHeight(bed(d))
				}
			} else if !inRiver.Get(g.IndexOf(t)) && t.Height > bank(d) {
				t.SetHeight(bank(d))
			}

			for _, n := range g.Surrounding(t) {
				if n == nil || (!opts.IgnoreStone && n.Terrain.IsStoneEquivalent()) {
					continue
				}
				idx := g.IndexOf(n)
				if _, ok := checked[idx]; ok {
					continue
				}
				if world.Distance(n, centre) <= outer {
					checked[idx] = struct{}{}
					frontier = append(frontier, n)
				}
			}
		}
	}
}

type riverStart struct {
	tile   *world.Tile
	outlet *world.Tile
}

// CarveRivers draws rivers from the stony shores of basins that hold water
// down to each basin's outlet. Start tiles near an already chosen start are
// dropped. Searches that find no path are logged and skipped.
func CarveRivers(g *world.Grid, rng *world.RNG, cfg config.HydrologyConfig) []*world.River {
	var starts []riverStart
	for _, basin := range g.Basins {
		if !basinFeedsRiver(g, basin) {
			continue
		}
		for _, t := range basin.Tiles {
			if t.Walkable && !t.Terrain.IsWaterEquivalent() && touchesStone(g, t) {
				starts = append(starts, riverStart{tile: t, outlet: basin.Outlet})
			}
		}
	}

	limit := int(math.Round(float64(g.Size()) * cfg.MaxRiversFraction))
	opts := PathOptions{Splice: true, Jitter: cfg.Jitter}
	var carved []*world.River
	for i := 0; i < limit && len(starts) > 0; i++ {
		pick := starts[rng.IntN(len(starts))]
		kept := starts[:0]
		for _, s := range starts {
			if world.Distance(s.tile, pick.tile) >= cfg.StartExclusionRadius {
				kept = append(kept, s)
			}
		}
		starts = kept

		path, joined := FindPath(g, rng, pick.tile, pick.outlet, opts)
		if len(path) == 0 {
			log.Printf("river from (%d,%d) has no tiles, skipped", pick.tile.X, pick.tile.Y)
			continue
		}
		river := &world.River{
			ID:          len(g.Rivers),
			Start:       pick.tile,
			End:         pick.outlet,
			JoinedRiver: joined,
		}
		Carve(g, rng, river, path, opts)
		g.Rivers = append(g.Rivers, river)
		carved = append(carved, river)
	}
	return carved
}

func basinFeedsRiver(g *world.Grid, basin *world.Basin) bool {
	water, stone := false, false
	for _, t := range basin.Tiles {
		if !water && t.Terrain.IsWaterEquivalent() {
			water = true
		}
		if !stone && touchesStone(g, t) {
			stone = true
		}
		if water && stone {
			return true
		}
	}
	return false
}

func touchesStone(g *world.Grid, t *world.Tile) bool {
	for _, n := range g.Horizontal(t) {
		if n != nil && n.Terrain.IsStoneEquivalent() {
			return true
		}
	}
	return false
}
