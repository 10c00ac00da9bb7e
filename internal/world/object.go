package world

import (
	"errors"
	"fmt"
)

var (
	// ErrLayerOccupied is returned when an object is placed onto a layer that
	// already holds one. It signals a caller contract breach.
	ErrLayerOccupied = errors.New("tile layer already occupied")
	// ErrUnknownObject is returned for object kinds missing from the catalogue.
	ErrUnknownObject = errors.New("unknown tile object")
)

const (
	LayerFloor = iota
	LayerStructure
	LayerContainer
	LayerCount
)

// ObjectKind names a placeable tile object.
type ObjectKind string

const (
	ObjectStoneWall   ObjectKind = "StoneWall"
	ObjectWoodenWall  ObjectKind = "WoodenWall"
	ObjectWoodenDoor  ObjectKind = "WoodenDoor"
	ObjectStoneFloor  ObjectKind = "StoneFloor"
	ObjectWoodenFloor ObjectKind = "WoodenFloor"
	ObjectWoodenChest ObjectKind = "WoodenChest"
)

// ObjectSpec describes how an object overrides the tile beneath it.
type ObjectSpec struct {
	Layer       int
	Walkable    bool
	WalkSpeed   float64
	Buildable   bool
	BlocksLight bool
}

var objectCatalogue = map[ObjectKind]ObjectSpec{
	ObjectStoneWall:   {Layer: LayerStructure, Walkable: false, WalkSpeed: 0, Buildable: false, BlocksLight: true},
	ObjectWoodenWall:  {Layer: LayerStructure, Walkable: false, WalkSpeed: 0, Buildable: false, BlocksLight: true},
	ObjectWoodenDoor:  {Layer: LayerStructure, Walkable: true, WalkSpeed: 0.8, Buildable: false, BlocksLight: true},
	ObjectStoneFloor:  {Layer: LayerFloor, Walkable: true, WalkSpeed: 1, Buildable: true},
	ObjectWoodenFloor: {Layer: LayerFloor, Walkable: true, WalkSpeed: 1, Buildable: true},
	ObjectWoodenChest: {Layer: LayerContainer, Walkable: true, WalkSpeed: 0.7, Buildable: false},
}

// LookupObject returns the catalogue entry for kind.
func LookupObject(kind ObjectKind) (ObjectSpec, bool) {
	spec, ok := objectCatalogue[kind]
	return spec, ok
}

// TileObject is an object instance placed on a tile layer.
type TileObject struct {
	Kind ObjectKind
	Spec ObjectSpec
}

// Plant is vegetation spawned by biome assignment.
type Plant struct {
	Group string
	Small bool
}

// PlaceObject puts an object of the given kind onto its layer and re-derives
// the tile's traits.
func (t *Tile) PlaceObject(kind ObjectKind) (*TileObject, error) {
	spec, ok := LookupObject(kind)
	if !ok {
		return nil, fmt.Errorf("place %q: %w", kind, ErrUnknownObject)
	}
	if t.Objects[spec.Layer] != nil {
		return nil, fmt.Errorf("place %q at (%d,%d) layer %d: %w", kind, t.X, t.Y, spec.Layer, ErrLayerOccupied)
	}
	obj := &TileObject{Kind: kind, Spec: spec}
	t.Objects[spec.Layer] = obj
	t.derive()
	return obj, nil
}

// RemoveObject clears the given layer, returning the removed object if any.
func (t *Tile) RemoveObject(layer int) *TileObject {
	if layer < 0 || layer >= LayerCount {
		return nil
	}
	obj := t.Objects[layer]
	if obj == nil {
		return nil
	}
	t.Objects[layer] = nil
	t.derive()
	return obj
}

// SetPlant replaces the tile's vegetation. A nil plant clears it.
func (t *Tile) SetPlant(p *Plant) {
	t.Plant = p
	t.derive()
}
