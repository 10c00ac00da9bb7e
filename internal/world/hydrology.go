package world

// Basin is a drainage catchment flood-filled from its Outlet, the low tile
// rivers drain toward.
type Basin struct {
	ID     int
	Outlet *Tile
	Tiles  []*Tile
}

// River is a carved water path. Tiles are in path order from Start; a river
// that spliced onto another records it in JoinedRiver.
type River struct {
	ID           int
	Start        *Tile
	End          *Tile
	Centre       *Tile
	ExpandRadius int
	Tiles        []*Tile
	JoinedRiver  int
}

// Empty reports whether the search produced no path.
func (r *River) Empty() bool { return r == nil || len(r.Tiles) == 0 }
