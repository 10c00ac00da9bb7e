package world

// TerrainType enumerates the ground, water and stone variants a tile can hold.
type TerrainType string

const (
	TerrainDirt           TerrainType = "Dirt"
	TerrainDirtWater      TerrainType = "DirtWater"
	TerrainMud            TerrainType = "Mud"
	TerrainDirtGrass      TerrainType = "DirtGrass"
	TerrainDirtThinGrass  TerrainType = "DirtThinGrass"
	TerrainDirtDryGrass   TerrainType = "DirtDryGrass"
	TerrainDirtHole       TerrainType = "DirtHole"
	TerrainGrass          TerrainType = "Grass"
	TerrainGrassWater     TerrainType = "GrassWater"
	TerrainThickGrass     TerrainType = "ThickGrass"
	TerrainColdGrass      TerrainType = "ColdGrass"
	TerrainColdGrassWater TerrainType = "ColdGrassWater"
	TerrainDryGrass       TerrainType = "DryGrass"
	TerrainDryGrassWater  TerrainType = "DryGrassWater"
	TerrainSand           TerrainType = "Sand"
	TerrainSandWater      TerrainType = "SandWater"
	TerrainSandHole       TerrainType = "SandHole"
	TerrainSnow           TerrainType = "Snow"
	TerrainSnowIce        TerrainType = "SnowIce"
	TerrainSnowStone      TerrainType = "SnowStone"
	TerrainSnowHole       TerrainType = "SnowHole"
	TerrainStone          TerrainType = "Stone"
	TerrainStoneIce       TerrainType = "StoneIce"
	TerrainStoneWater     TerrainType = "StoneWater"
	TerrainStoneThinGrass TerrainType = "StoneThinGrass"
	TerrainStoneSand      TerrainType = "StoneSand"
	TerrainStoneSnow      TerrainType = "StoneSnow"
	TerrainStoneHole      TerrainType = "StoneHole"
	TerrainGranite        TerrainType = "Granite"
	TerrainLimestone      TerrainType = "Limestone"
	TerrainMarble         TerrainType = "Marble"
	TerrainSandstone      TerrainType = "Sandstone"
	TerrainSlate          TerrainType = "Slate"
	TerrainClay           TerrainType = "Clay"
	TerrainClayWater      TerrainType = "ClayWater"
)

type terrainClass uint8

const (
	classWaterEquivalent terrainClass = 1 << iota
	classLiquidWater
	classStoneEquivalent
	classHole
	classPlantable
	classResource
)

// TerrainProperties are the movement and building traits derived from a
// terrain type before any placed object overrides them.
type TerrainProperties struct {
	Walkable  bool
	WalkSpeed float64
	Buildable bool
	class     terrainClass
}

var terrainTable = map[TerrainType]TerrainProperties{
	TerrainDirt:           {true, 1, true, classPlantable},
	TerrainDirtWater:      {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainMud:            {true, 0.5, false, classWaterEquivalent | classPlantable},
	TerrainDirtGrass:      {true, 1, true, classPlantable},
	TerrainDirtThinGrass:  {true, 1, true, classPlantable},
	TerrainDirtDryGrass:   {true, 1, true, classPlantable},
	TerrainDirtHole:       {false, 0, false, classHole},
	TerrainGrass:          {true, 1, true, classPlantable},
	TerrainGrassWater:     {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainThickGrass:     {true, 0.9, true, classPlantable},
	TerrainColdGrass:      {true, 1, true, classPlantable},
	TerrainColdGrassWater: {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainDryGrass:       {true, 1, true, classPlantable},
	TerrainDryGrassWater:  {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainSand:           {true, 0.8, true, classPlantable},
	TerrainSandWater:      {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainSandHole:       {false, 0, false, classHole},
	TerrainSnow:           {true, 0.7, true, classPlantable},
	TerrainSnowIce:        {true, 0.4, false, classWaterEquivalent},
	TerrainSnowStone:      {true, 0.8, true, 0},
	TerrainSnowHole:       {false, 0, false, classHole},
	TerrainStone:          {false, 0, false, classStoneEquivalent},
	TerrainStoneIce:       {true, 0.4, false, classWaterEquivalent},
	TerrainStoneWater:     {false, 0, false, classWaterEquivalent | classLiquidWater},
	TerrainStoneThinGrass: {true, 0.9, true, 0},
	TerrainStoneSand:      {true, 0.9, true, 0},
	TerrainStoneSnow:      {true, 0.8, true, 0},
	TerrainStoneHole:      {false, 0, false, classHole},
	TerrainGranite:        {false, 0, false, classStoneEquivalent},
	TerrainLimestone:      {false, 0, false, classStoneEquivalent},
	TerrainMarble:         {false, 0, false, classStoneEquivalent},
	TerrainSandstone:      {false, 0, false, classStoneEquivalent},
	TerrainSlate:          {false, 0, false, classStoneEquivalent},
	TerrainClay:           {true, 0.9, true, classResource},
	TerrainClayWater:      {false, 0, false, classWaterEquivalent | classLiquidWater | classResource},
}

// Properties returns the traits of t. Unknown types report the zero value.
func (t TerrainType) Properties() TerrainProperties {
	return terrainTable[t]
}

// Valid reports whether t names a known terrain type.
func (t TerrainType) Valid() bool {
	_, ok := terrainTable[t]
	return ok
}

func (t TerrainType) is(c terrainClass) bool {
	return terrainTable[t].class&c != 0
}

func (t TerrainType) IsWaterEquivalent() bool { return t.is(classWaterEquivalent) }
func (t TerrainType) IsLiquidWater() bool     { return t.is(classLiquidWater) }
func (t TerrainType) IsStoneEquivalent() bool { return t.is(classStoneEquivalent) }
func (t TerrainType) IsHole() bool            { return t.is(classHole) }
func (t TerrainType) IsPlantable() bool       { return t.is(classPlantable) }
func (t TerrainType) IsResource() bool        { return t.is(classResource) }

// SameCategory reports whether two terrain types join up visually: same type,
// or both water, both stone or both holes.
func SameCategory(a, b TerrainType) bool {
	if a == b {
		return true
	}
	for _, c := range [...]terrainClass{classWaterEquivalent, classStoneEquivalent, classHole} {
		if a.is(c) && b.is(c) {
			return true
		}
	}
	return false
}

// ParseTerrain validates a terrain name coming from configuration.
func ParseTerrain(name string) (TerrainType, bool) {
	t := TerrainType(name)
	return t, t.Valid()
}
