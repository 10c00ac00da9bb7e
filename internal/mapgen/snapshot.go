package mapgen

import (
	"fmt"
	"log"

	"worldgen/internal/config"
	"worldgen/internal/regions"
	"worldgen/internal/world"
)

// Save writes the header and one record row per y.
func (m *Map) Save(store world.MapStorage) error {
	if m.grid == nil {
		return ErrNotGenerated
	}
	rivers, basins := m.grid.HydrologyRecords()
	header := world.Header{
		Size:        m.grid.Size(),
		Seed:        m.cfg.Map.Seed,
		PrimaryWind: m.primaryWind,
		Rivers:      rivers,
		Basins:      basins,
	}
	if err := store.SaveHeader(header); err != nil {
		return fmt.Errorf("save header: %w", err)
	}
	for y := 0; y < m.grid.Size(); y++ {
		if err := store.SaveRow(y, m.grid.RowRecords(y)); err != nil {
			return fmt.Errorf("save row %d: %w", y, err)
		}
	}
	log.Printf("map saved: %d rows, %d rivers, %d basins", m.grid.Size(), len(rivers), len(basins))
	return nil
}

// Restore rebuilds a map from storage. Regions, visibility blocks and
// shadows are derived again from the restored tiles.
func Restore(cfg *config.Config, store world.MapStorage) (*Map, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	header, ok, err := store.LoadHeader()
	if err != nil {
		return nil, fmt.Errorf("load header: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("load header: snapshot has no header")
	}
	restored := *cfg
	restored.Map.Size = header.Size
	restored.Map.Seed = header.Seed

	m, err := New(&restored)
	if err != nil {
		return nil, err
	}
	m.grid = world.NewGrid(header.Size, nil)
	m.primaryWind = header.PrimaryWind
	for y := 0; y < header.Size; y++ {
		records, ok, err := store.LoadRow(y)
		if err != nil {
			return nil, fmt.Errorf("load row %d: %w", y, err)
		}
		if !ok {
			return nil, fmt.Errorf("load row %d: missing from snapshot", y)
		}
		if err := m.grid.ApplyRow(y, records); err != nil {
			return nil, err
		}
	}
	m.grid.RestoreHydrology(header.Rivers, header.Basins)

	regions.Segment(m.grid, world.ByTerrain)
	regions.Segment(m.grid, world.ByWalkability)
	m.rebuildBlocks()
	if restored.Lighting.Enabled {
		m.shadows.ComputeAll(m.grid)
	}
	log.Printf("map restored: size=%d rivers=%d basins=%d", header.Size, len(m.grid.Rivers), len(m.grid.Basins))
	return m, nil
}
