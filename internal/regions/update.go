package regions

import (
	"log"
	"sort"

	"worldgen/internal/world"
)

// Event is a single-tile mutation reported to the segmenter.
type Event int

const (
	TypeChanged Event = iota
	BecameBlocking
	BecameOpen
)

func (e Event) String() string {
	switch e {
	case BecameBlocking:
		return "became-blocking"
	case BecameOpen:
		return "became-open"
	default:
		return "type-changed"
	}
}

// Action is the work needed to bring a region set back in line after an
// Event.
type Action int

const (
	NoOp Action = iota
	LocalPatch
	FullResegment
)

func (a Action) String() string {
	switch a {
	case LocalPatch:
		return "local-patch"
	case FullResegment:
		return "full-resegment"
	default:
		return "no-op"
	}
}

// Decide maps an event on a region set of the given kind to an action.
// Terrain regions only care about type changes and walkability regions only
// about walkability flips. An ambiguous neighbourhood, where the tile may
// have been the only link between parts of its old region, cannot be
// patched locally.
func Decide(event Event, kind world.RegionKind, ambiguous bool) Action {
	var relevant bool
	switch kind {
	case world.ByWalkability:
		relevant = event == BecameBlocking || event == BecameOpen
	default:
		relevant = event == TypeChanged
	}
	if !relevant {
		return NoOp
	}
	if ambiguous {
		return FullResegment
	}
	return LocalPatch
}

// ringOrder walks the 8 neighbours clockwise starting at up.
var ringOrder = [8]int{
	world.DirUp, world.DirUpRight, world.DirRight, world.DirDownRight,
	world.DirDown, world.DirDownLeft, world.DirLeft, world.DirUpLeft,
}

// RingAmbiguous reports whether the neighbours of t that belong to region id
// form more than one contiguous run around t that touches a horizontal
// neighbour. Such runs may only be connected through t itself.
func RingAmbiguous(g *world.Grid, t *world.Tile, kind world.RegionKind, id int) bool {
	var member [8]bool
	all := true
	for i, dir := range ringOrder {
		n := g.Neighbour(t, dir)
		member[i] = n != nil && kind.IDOf(n) == id
		if !member[i] {
			all = false
		}
	}
	if all {
		return false
	}
	// Rotate so the scan starts just after a gap; runs then never wrap.
	start := 0
	for i := range member {
		if !member[i] {
			start = i + 1
			break
		}
	}
	runs := 0
	inRun, runHorizontal := false, false
	for k := 0; k < 8; k++ {
		i := (start + k) % 8
		if member[i] {
			if !inRun {
				inRun, runHorizontal = true, false
			}
			if ringOrder[i] < 4 {
				runHorizontal = true
			}
			continue
		}
		if inRun && runHorizontal {
			runs++
		}
		inRun = false
	}
	if inRun && runHorizontal {
		runs++
	}
	return runs > 1
}

// Update keeps the region set of the given kind consistent after t changed.
// A local patch moves t out of its old region into the lowest-id equivalent
// horizontal neighbour region, merging any others it now bridges. It returns
// the action taken.
func Update(g *world.Grid, t *world.Tile, event Event, kind world.RegionKind) Action {
	set := g.Regions(kind)
	old := set.Of(t)
	if old != nil && old.Accepts(t) {
		return NoOp
	}
	ambiguous := old != nil && RingAmbiguous(g, t, kind, old.ID)
	action := Decide(event, kind, ambiguous)
	switch action {
	case NoOp:
		return NoOp
	case FullResegment:
		Segment(g, kind)
		log.Printf("%s regions: %s at (%d,%d) split its region, resegmented into %d", kind, event, t.X, t.Y, set.Len())
		return FullResegment
	}

	set.Remove(t)
	if old != nil && old.Size() == 0 {
		set.Delete(old.ID)
	}

	var joined []*world.Region
	seen := make(map[int]struct{})
	for _, n := range g.Horizontal(t) {
		if n == nil || !kind.Equivalent(t, n) {
			continue
		}
		r := set.Of(n)
		if r == nil {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		joined = append(joined, r)
	}
	if len(joined) == 0 {
		set.Create(t)
		return LocalPatch
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].ID < joined[j].ID })
	target := joined[0]
	set.Add(target, t)
	for _, other := range joined[1:] {
		set.Merge(target, other)
	}
	return LocalPatch
}
