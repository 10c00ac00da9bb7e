package world

import "sort"

// RegionKind selects the equivalence a region set is partitioned by.
type RegionKind int

const (
	ByTerrain RegionKind = iota
	ByWalkability
)

func (k RegionKind) String() string {
	if k == ByWalkability {
		return "walkability"
	}
	return "terrain"
}

// Equivalent reports whether two tiles may share a region of this kind.
func (k RegionKind) Equivalent(a, b *Tile) bool {
	if k == ByWalkability {
		return a.Walkable == b.Walkable
	}
	return a.Terrain == b.Terrain
}

// IDOf returns the id of the region of this kind that owns t.
func (k RegionKind) IDOf(t *Tile) int {
	if k == ByWalkability {
		return t.WalkRegion
	}
	return t.TerrainRegion
}

func (k RegionKind) assign(t *Tile, id int) {
	if k == ByWalkability {
		t.WalkRegion = id
		return
	}
	t.TerrainRegion = id
}

// Region is a maximal 4-connected set of equivalent tiles. Terrain is set for
// terrain regions and Walkable for walkability regions.
type Region struct {
	ID       int
	Kind     RegionKind
	Terrain  TerrainType
	Walkable bool
	Tiles    []*Tile
}

// Size returns the number of member tiles.
func (r *Region) Size() int { return len(r.Tiles) }

// Accepts reports whether t satisfies the region's defining predicate.
func (r *Region) Accepts(t *Tile) bool {
	if r.Kind == ByWalkability {
		return t.Walkable == r.Walkable
	}
	return t.Terrain == r.Terrain
}

// RegionSet owns the live regions of one kind. Ids increase monotonically
// until Compact renumbers them densely from zero.
type RegionSet struct {
	kind   RegionKind
	byID   map[int]*Region
	nextID int
}

func NewRegionSet(kind RegionKind) *RegionSet {
	return &RegionSet{kind: kind, byID: make(map[int]*Region)}
}

func (s *RegionSet) Kind() RegionKind { return s.kind }

// Len returns the number of live regions, empty ones included.
func (s *RegionSet) Len() int { return len(s.byID) }

// Get returns the live region with the given id or nil.
func (s *RegionSet) Get(id int) *Region { return s.byID[id] }

// Of returns the region owning t or nil.
func (s *RegionSet) Of(t *Tile) *Region { return s.byID[s.kind.IDOf(t)] }

// Create starts a new region defined by seed and adds seed to it.
func (s *RegionSet) Create(seed *Tile) *Region {
	r := &Region{ID: s.nextID, Kind: s.kind, Terrain: seed.Terrain, Walkable: seed.Walkable}
	s.nextID++
	s.byID[r.ID] = r
	s.Add(r, seed)
	return r
}

// Add appends t to r and points t at r.
func (s *RegionSet) Add(r *Region, t *Tile) {
	r.Tiles = append(r.Tiles, t)
	s.kind.assign(t, r.ID)
}

// Remove detaches t from its region and returns that region, which may now
// be empty.
func (s *RegionSet) Remove(t *Tile) *Region {
	r := s.Of(t)
	s.kind.assign(t, NoID)
	if r == nil {
		return nil
	}
	for i, member := range r.Tiles {
		if member == t {
			last := len(r.Tiles) - 1
			copy(r.Tiles[i:], r.Tiles[i+1:])
			r.Tiles[last] = nil
			r.Tiles = r.Tiles[:last]
			break
		}
	}
	return r
}

// Merge moves every tile of from into into and deletes from.
func (s *RegionSet) Merge(into, from *Region) {
	if into == nil || from == nil || into == from {
		return
	}
	for _, t := range from.Tiles {
		s.Add(into, t)
	}
	from.Tiles = nil
	delete(s.byID, from.ID)
}

// Delete drops the region with the given id. Member tiles keep their stale id
// until reassigned.
func (s *RegionSet) Delete(id int) {
	delete(s.byID, id)
}

// Sorted returns the live regions ordered by ascending id.
func (s *RegionSet) Sorted() []*Region {
	out := make([]*Region, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset forgets every region and clears the ids on tiles.
func (s *RegionSet) Reset(tiles []*Tile) {
	s.byID = make(map[int]*Region)
	s.nextID = 0
	for _, t := range tiles {
		s.kind.assign(t, NoID)
	}
}

// Compact purges empty regions and renumbers the rest densely from zero,
// preserving their relative order.
func (s *RegionSet) Compact() {
	regions := s.Sorted()
	s.byID = make(map[int]*Region, len(regions))
	next := 0
	for _, r := range regions {
		if len(r.Tiles) == 0 {
			continue
		}
		r.ID = next
		for _, t := range r.Tiles {
			s.kind.assign(t, next)
		}
		s.byID[next] = r
		next++
	}
	s.nextID = next
}
