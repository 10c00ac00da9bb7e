package world

// Hours is the number of simulated hours per day.
const Hours = 24

// TileLight holds a tile's hourly shadow relations. Keys are tile indices on
// the owning grid.
//
// ShadowsFrom maps a caster to the brightness its shadow leaves on this tile.
// ShadowsTo lists the tiles this tile shadows. TruncatedBy lists blockers that
// cut this tile's shadow short, and Truncates is the reverse: casters whose
// shadow stopped at this tile.
type TileLight struct {
	ShadowsFrom [Hours]map[int]float64
	ShadowsTo   [Hours]map[int]struct{}
	TruncatedBy [Hours]map[int]struct{}
	Truncates   [Hours]map[int]struct{}
}

func (t *Tile) light() *TileLight {
	if t.Light == nil {
		t.Light = &TileLight{}
	}
	return t.Light
}

// Brightness returns the darkest shadow cast onto t at hour h, or 1 when
// nothing shadows it.
func (t *Tile) Brightness(h int) float64 {
	if t.Light == nil {
		return 1
	}
	b := 1.0
	for _, v := range t.Light.ShadowsFrom[h] {
		if v < b {
			b = v
		}
	}
	return b
}

// AddShadow records that caster darkens receiver to brightness b at hour h.
// An existing darker entry is kept.
func (g *Grid) AddShadow(caster, receiver *Tile, h int, b float64) {
	ci, ri := g.IndexOf(caster), g.IndexOf(receiver)
	rl := receiver.light()
	if rl.ShadowsFrom[h] == nil {
		rl.ShadowsFrom[h] = make(map[int]float64)
	}
	if prev, ok := rl.ShadowsFrom[h][ci]; !ok || b < prev {
		rl.ShadowsFrom[h][ci] = b
	}
	cl := caster.light()
	if cl.ShadowsTo[h] == nil {
		cl.ShadowsTo[h] = make(map[int]struct{})
	}
	cl.ShadowsTo[h][ri] = struct{}{}
}

// AddTruncation records that blocker stopped caster's shadow at hour h.
func (g *Grid) AddTruncation(caster, blocker *Tile, h int) {
	ci, bi := g.IndexOf(caster), g.IndexOf(blocker)
	cl := caster.light()
	if cl.TruncatedBy[h] == nil {
		cl.TruncatedBy[h] = make(map[int]struct{})
	}
	cl.TruncatedBy[h][bi] = struct{}{}
	bl := blocker.light()
	if bl.Truncates[h] == nil {
		bl.Truncates[h] = make(map[int]struct{})
	}
	bl.Truncates[h][ci] = struct{}{}
}

// ClearCast removes every outgoing relation of caster across all hours, on
// both sides.
func (g *Grid) ClearCast(caster *Tile) {
	if caster.Light == nil {
		return
	}
	ci := g.IndexOf(caster)
	cl := caster.Light
	for h := 0; h < Hours; h++ {
		for ri := range cl.ShadowsTo[h] {
			if r := g.TileAt(ri); r != nil && r.Light != nil {
				delete(r.Light.ShadowsFrom[h], ci)
			}
		}
		cl.ShadowsTo[h] = nil
		for bi := range cl.TruncatedBy[h] {
			if b := g.TileAt(bi); b != nil && b.Light != nil {
				delete(b.Light.Truncates[h], ci)
			}
		}
		cl.TruncatedBy[h] = nil
	}
}

// ResetLight drops every shadow relation on the grid.
func (g *Grid) ResetLight() {
	for _, t := range g.tiles {
		t.Light = nil
	}
}
