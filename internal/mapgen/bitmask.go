package mapgen

import (
	"log"

	"github.com/boljen/go-bitmap"

	"worldgen/internal/world"
)

// Category names the family a tile is matched against when picking its
// connected sprite.
type Category string

const (
	CategoryRiver Category = "river"
	CategoryWater Category = "water"
	CategoryStone Category = "stone"
	CategoryHole  Category = "hole"
	CategoryExact Category = "exact"
)

// diagonalSides lists the two horizontal directions flanking each diagonal.
var diagonalSides = map[int][2]int{
	world.DirUpRight:   {world.DirUp, world.DirRight},
	world.DirDownRight: {world.DirRight, world.DirDown},
	world.DirDownLeft:  {world.DirDown, world.DirLeft},
	world.DirUpLeft:    {world.DirLeft, world.DirUp},
}

// bitmaskIndex maps neighbour sums of 16 and above to sprite indices.
var bitmaskIndex = map[int]int{
	19: 16, 23: 17, 27: 18, 31: 19, 38: 20, 39: 21, 46: 22, 47: 23,
	55: 24, 63: 25, 76: 26, 77: 27, 78: 28, 79: 29, 95: 30, 110: 31,
	111: 32, 127: 33, 137: 34, 139: 35, 141: 36, 143: 37, 155: 38, 159: 39,
	175: 40, 191: 41, 205: 42, 207: 43, 223: 44, 239: 45, 255: 46,
}

// CategoryOf returns the family t is compared with.
func CategoryOf(t *world.Tile) Category {
	switch {
	case t.River != world.NoID:
		return CategoryRiver
	case t.Terrain.IsWaterEquivalent():
		return CategoryWater
	case t.Terrain.IsStoneEquivalent():
		return CategoryStone
	case t.Terrain.IsHole():
		return CategoryHole
	default:
		return CategoryExact
	}
}

func sameCategory(origin *world.Tile, category Category, t *world.Tile) bool {
	switch category {
	case CategoryRiver, CategoryWater:
		return t.Terrain.IsWaterEquivalent()
	case CategoryStone:
		return t.Terrain.IsStoneEquivalent()
	case CategoryHole:
		return t.Terrain.IsHole()
	default:
		return t.Terrain == origin.Terrain
	}
}

// SameCategoryNeighbours returns the surrounding tiles sharing the tile's
// category and a bit per direction in Surrounding order. A diagonal only
// counts when both flanking horizontals match. Off-grid neighbours count as
// matching except for rivers and holes.
func (m *Map) SameCategoryNeighbours(x, y int) ([]*world.Tile, bitmap.Bitmap, error) {
	t, err := m.Tile(x, y)
	if err != nil {
		return nil, nil, err
	}
	category := CategoryOf(t)
	includeEdge := category != CategoryRiver && category != CategoryHole
	around := m.grid.Surrounding(t)

	set := func(dir int) bool {
		nb := around[dir]
		if nb == nil {
			return includeEdge
		}
		return sameCategory(t, category, nb)
	}

	mask := bitmap.New(8)
	var tiles []*world.Tile
	for dir := 0; dir < 8; dir++ {
		if !set(dir) {
			continue
		}
		if sides, ok := diagonalSides[dir]; ok && !(set(sides[0]) && set(sides[1])) {
			continue
		}
		mask.Set(dir, true)
		if around[dir] != nil {
			tiles = append(tiles, around[dir])
		}
	}
	return tiles, mask, nil
}

// MaskSum folds the 8-bit mask into the sum of 2^dir over set directions.
func MaskSum(mask bitmap.Bitmap) int {
	sum := 0
	for dir := 0; dir < 8; dir++ {
		if mask.Get(dir) {
			sum |= 1 << dir
		}
	}
	return sum
}

// BitmaskIndex turns a neighbour sum into a sprite index. Sums below 16 are
// their own index; an unknown sum logs and falls back to 0.
func BitmaskIndex(sum int) int {
	if sum < 16 {
		return sum
	}
	if idx, ok := bitmaskIndex[sum]; ok {
		return idx
	}
	log.Printf("bitmask sum %d has no sprite index, using 0", sum)
	return 0
}
