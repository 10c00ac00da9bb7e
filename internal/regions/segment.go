package regions

import (
	"sort"

	"worldgen/internal/world"
)

// Segment rebuilds the region set of the given kind from scratch so that two
// tiles share a region iff a chain of equivalent horizontal neighbours joins
// them. Ids end up dense from zero.
func Segment(g *world.Grid, kind world.RegionKind) *world.RegionSet {
	set := g.Regions(kind)
	set.Reset(g.Tiles())
	seedRegions(g, set)
	for {
		connected := connectedRegions(g, set)
		if len(connected) == 0 {
			break
		}
		mergeConnected(set, connected)
	}
	set.Compact()
	return set
}

// seedRegions visits rows bottom-up and looks only at the down and left
// neighbours, which are already assigned. A tile joins the lowest id among
// equivalent neighbours or starts a new region.
func seedRegions(g *world.Grid, set *world.RegionSet) {
	kind := set.Kind()
	size := g.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := g.At(x, y)
			best := world.NoID
			for _, n := range [...]*world.Tile{g.At(x, y-1), g.At(x-1, y)} {
				if n == nil || !kind.Equivalent(t, n) {
					continue
				}
				if id := kind.IDOf(n); best == world.NoID || id < best {
					best = id
				}
			}
			if best == world.NoID {
				set.Create(t)
				continue
			}
			set.Add(set.Get(best), t)
		}
	}
}

// connectedRegions rescans every region's horizontal borders and returns the
// pairs of distinct regions whose tiles are equivalent, keyed by the lower id.
func connectedRegions(g *world.Grid, set *world.RegionSet) map[int]map[int]struct{} {
	kind := set.Kind()
	connected := make(map[int]map[int]struct{})
	for _, r := range set.Sorted() {
		for _, t := range r.Tiles {
			for _, n := range g.Horizontal(t) {
				if n == nil {
					continue
				}
				other := kind.IDOf(n)
				if other == r.ID || !kind.Equivalent(t, n) {
					continue
				}
				lo, hi := r.ID, other
				if hi < lo {
					lo, hi = hi, lo
				}
				if connected[lo] == nil {
					connected[lo] = make(map[int]struct{})
				}
				connected[lo][hi] = struct{}{}
			}
		}
	}
	return connected
}

// mergeConnected folds every connected group into its lowest id. The union
// keeps the lower id as root so the tie-break matches a plain repeated
// merge-to-lowest.
func mergeConnected(set *world.RegionSet, connected map[int]map[int]struct{}) {
	parent := make(map[int]int)
	var find func(int) int
	find = func(id int) int {
		p, ok := parent[id]
		if !ok || p == id {
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	los := make([]int, 0, len(connected))
	for lo := range connected {
		los = append(los, lo)
	}
	sort.Ints(los)
	for _, lo := range los {
		for hi := range connected[lo] {
			union(lo, hi)
		}
	}

	for _, r := range set.Sorted() {
		if root := find(r.ID); root != r.ID {
			set.Merge(set.Get(root), r)
		}
	}
}

// Neighbours returns the distinct regions of r's kind that touch r through a
// horizontal neighbour, ordered by id.
func Neighbours(g *world.Grid, set *world.RegionSet, r *world.Region) []*world.Region {
	kind := set.Kind()
	seen := make(map[int]struct{})
	var out []*world.Region
	for _, t := range r.Tiles {
		for _, n := range g.Horizontal(t) {
			if n == nil {
				continue
			}
			id := kind.IDOf(n)
			if id == r.ID || id == world.NoID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if other := set.Get(id); other != nil {
				out = append(out, other)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
