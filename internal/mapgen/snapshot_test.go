package mapgen

import (
	"path/filepath"
	"reflect"
	"testing"

	"worldgen/internal/world"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) world.MapStorage
	}{
		{
			name: "memory",
			open: func(t *testing.T) world.MapStorage { return world.NewMemoryStorage() },
		},
		{
			name: "disk",
			open: func(t *testing.T) world.MapStorage {
				store, err := world.OpenDiskStorage(filepath.Join(t.TempDir(), "map.log"))
				if err != nil {
					t.Fatalf("OpenDiskStorage: %v", err)
				}
				return store
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(21, 24)
			original := generate(t, cfg)
			store := tt.open(t)
			defer store.Close()

			if err := original.Save(store); err != nil {
				t.Fatalf("Save: %v", err)
			}
			restored, err := Restore(cfg, store)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}

			if !reflect.DeepEqual(records(restored.Grid()), records(original.Grid())) {
				t.Fatalf("restored tiles differ from the original")
			}
			if restored.PrimaryWind() != original.PrimaryWind() {
				t.Fatalf("primary wind not restored")
			}
			if len(restored.Rivers()) != len(original.Rivers()) || len(restored.Basins()) != len(original.Basins()) {
				t.Fatalf("hydrology not restored")
			}
			og, rg := original.Grid(), restored.Grid()
			if og.TerrainRegions.Len() != rg.TerrainRegions.Len() || og.WalkRegions.Len() != rg.WalkRegions.Len() {
				t.Fatalf("regions not re-derived: terrain %d/%d walk %d/%d",
					rg.TerrainRegions.Len(), og.TerrainRegions.Len(), rg.WalkRegions.Len(), og.WalkRegions.Len())
			}
			for i, tile := range rg.Tiles() {
				orig := og.TileAt(i)
				if tile.TerrainRegion != orig.TerrainRegion || tile.WalkRegion != orig.WalkRegion || tile.Block != orig.Block {
					t.Fatalf("tile (%d,%d) indices differ after restore", tile.X, tile.Y)
				}
				for h := 0; h < world.Hours; h++ {
					if tile.Brightness(h) != orig.Brightness(h) {
						t.Fatalf("tile (%d,%d) brightness at %d differs", tile.X, tile.Y, h)
					}
				}
			}
		})
	}
}

func TestRestoreNeedsHeader(t *testing.T) {
	if _, err := Restore(testConfig(1, 20), world.NewMemoryStorage()); err == nil {
		t.Fatalf("expected an error for an empty snapshot")
	}
}

func TestSaveBeforeGenerate(t *testing.T) {
	m, err := New(testConfig(1, 20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Save(world.NewMemoryStorage()); err != ErrNotGenerated {
		t.Fatalf("expected ErrNotGenerated, got %v", err)
	}
}
