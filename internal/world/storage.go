package world

import "fmt"

// MapStorage persists a generated map as one record per grid row plus a
// header describing map-wide state.
type MapStorage interface {
	LoadRow(y int) ([]TileRecord, bool, error)
	SaveRow(y int, records []TileRecord) error
	LoadHeader() (Header, bool, error)
	SaveHeader(header Header) error
	Delete(y int) error
	ForEach(fn func(y int, records []TileRecord) bool) error
	Close() error
}

// TileRecord is the serialisable attribute set of a tile. Region and block
// ids are absent: they are re-derived deterministically on restore.
type TileRecord struct {
	Height        float64
	Temperature   float64
	Precipitation float64
	Terrain       string
	Biome         string
	Roof          bool
	Plant         string
	PlantSmall    bool
	Objects       []string
	Basin         int
	River         int
}

// RiverRecord stores a river by tile index.
type RiverRecord struct {
	ID           int
	Start        int
	End          int
	Centre       int
	ExpandRadius int
	Tiles        []int
	JoinedRiver  int
}

// BasinRecord stores a drainage basin by tile index.
type BasinRecord struct {
	ID     int
	Outlet int
}

// Header carries the map-wide state of a snapshot.
type Header struct {
	Size        int
	Seed        int64
	PrimaryWind int
	Rivers      []RiverRecord
	Basins      []BasinRecord
}

// Record captures t for persistence.
func (t *Tile) Record() TileRecord {
	rec := TileRecord{
		Height:        t.Height,
		Temperature:   t.Temperature,
		Precipitation: t.Precipitation,
		Terrain:       string(t.Terrain),
		Biome:         t.Biome,
		Roof:          t.Roof,
		Basin:         t.Basin,
		River:         t.River,
	}
	if t.Plant != nil {
		rec.Plant = t.Plant.Group
		rec.PlantSmall = t.Plant.Small
	}
	if t.HasObjects() {
		rec.Objects = make([]string, LayerCount)
		for i, obj := range t.Objects {
			if obj != nil {
				rec.Objects[i] = string(obj.Kind)
			}
		}
	}
	return rec
}

// Apply restores t from rec.
func (t *Tile) Apply(rec TileRecord) error {
	terrain, ok := ParseTerrain(rec.Terrain)
	if !ok {
		return fmt.Errorf("tile (%d,%d): unknown terrain %q", t.X, t.Y, rec.Terrain)
	}
	t.Height = rec.Height
	t.Temperature = rec.Temperature
	t.Precipitation = rec.Precipitation
	t.Biome = rec.Biome
	t.Roof = rec.Roof
	t.Basin = rec.Basin
	t.River = rec.River
	t.Plant = nil
	t.Objects = [LayerCount]*TileObject{}
	t.SetTerrain(terrain)
	if rec.Plant != "" {
		t.SetPlant(&Plant{Group: rec.Plant, Small: rec.PlantSmall})
	}
	for _, kind := range rec.Objects {
		if kind == "" {
			continue
		}
		if _, err := t.PlaceObject(ObjectKind(kind)); err != nil {
			return fmt.Errorf("tile (%d,%d): %w", t.X, t.Y, err)
		}
	}
	return nil
}

// RowRecords captures row y of the grid.
func (g *Grid) RowRecords(y int) []TileRecord {
	out := make([]TileRecord, g.size)
	for x := 0; x < g.size; x++ {
		out[x] = g.tiles[y*g.size+x].Record()
	}
	return out
}

// ApplyRow restores row y of the grid from records.
func (g *Grid) ApplyRow(y int, records []TileRecord) error {
	if y < 0 || y >= g.size {
		return fmt.Errorf("row %d: %w", y, ErrOutOfBounds)
	}
	if len(records) != g.size {
		return fmt.Errorf("row %d: expected %d records, got %d", y, g.size, len(records))
	}
	for x, rec := range records {
		if err := g.tiles[y*g.size+x].Apply(rec); err != nil {
			return err
		}
	}
	return nil
}

// HydrologyRecords captures rivers and basins by tile index.
func (g *Grid) HydrologyRecords() ([]RiverRecord, []BasinRecord) {
	rivers := make([]RiverRecord, 0, len(g.Rivers))
	for _, r := range g.Rivers {
		rec := RiverRecord{
			ID:           r.ID,
			Start:        g.indexOrNone(r.Start),
			End:          g.indexOrNone(r.End),
			Centre:       g.indexOrNone(r.Centre),
			ExpandRadius: r.ExpandRadius,
			JoinedRiver:  r.JoinedRiver,
			Tiles:        make([]int, len(r.Tiles)),
		}
		for i, t := range r.Tiles {
			rec.Tiles[i] = g.IndexOf(t)
		}
		rivers = append(rivers, rec)
	}
	basins := make([]BasinRecord, 0, len(g.Basins))
	for _, b := range g.Basins {
		basins = append(basins, BasinRecord{ID: b.ID, Outlet: g.indexOrNone(b.Outlet)})
	}
	return rivers, basins
}

// RestoreHydrology rebuilds rivers and basins from records. Basin membership
// comes from the Basin id already restored on each tile.
func (g *Grid) RestoreHydrology(rivers []RiverRecord, basins []BasinRecord) {
	g.Rivers = g.Rivers[:0]
	for _, rec := range rivers {
		r := &River{
			ID:           rec.ID,
			Start:        g.TileAt(rec.Start),
			End:          g.TileAt(rec.End),
			Centre:       g.TileAt(rec.Centre),
			ExpandRadius: rec.ExpandRadius,
			JoinedRiver:  rec.JoinedRiver,
		}
		for _, idx := range rec.Tiles {
			if t := g.TileAt(idx); t != nil {
				r.Tiles = append(r.Tiles, t)
			}
		}
		g.Rivers = append(g.Rivers, r)
	}
	g.Basins = g.Basins[:0]
	byID := make(map[int]*Basin, len(basins))
	for _, rec := range basins {
		b := &Basin{ID: rec.ID, Outlet: g.TileAt(rec.Outlet)}
		byID[b.ID] = b
		g.Basins = append(g.Basins, b)
	}
	for _, t := range g.tiles {
		if b, ok := byID[t.Basin]; ok {
			b.Tiles = append(b.Tiles, t)
		}
	}
}

func (g *Grid) indexOrNone(t *Tile) int {
	if t == nil {
		return NoID
	}
	return g.IndexOf(t)
}
