package climate

import (
	"fmt"
	"strings"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

// Headings are the directions wind blows toward, numbered like the grid's
// neighbour directions.
const (
	HeadingUp        = world.DirUp
	HeadingRight     = world.DirRight
	HeadingDown      = world.DirDown
	HeadingLeft      = world.DirLeft
	HeadingUpRight   = world.DirUpRight
	HeadingDownRight = world.DirDownRight
	HeadingDownLeft  = world.DirDownLeft
	HeadingUpLeft    = world.DirUpLeft

	headingCount = 8
)

// opposite maps a heading to the neighbour direction the wind arrives from.
var opposite = [headingCount]int{2, 3, 0, 1, 6, 7, 4, 5}

// windSimilarity weighs each heading's field when blending for a primary
// heading (row).
var windSimilarity = [headingCount][headingCount]float64{
	{1.0, 0.6, 0.1, 0.6, 0.8, 0.2, 0.2, 0.8},
	{0.6, 1.0, 0.6, 0.1, 0.8, 0.8, 0.2, 0.2},
	{0.1, 0.6, 1.0, 0.6, 0.2, 0.8, 0.8, 0.2},
	{0.6, 0.1, 0.6, 1.0, 0.2, 0.2, 0.8, 0.8},
	{0.8, 0.8, 0.2, 0.2, 1.0, 0.6, 0.1, 0.6},
	{0.2, 0.8, 0.8, 0.2, 0.6, 1.0, 0.6, 0.1},
	{0.2, 0.2, 0.8, 0.8, 0.1, 0.6, 1.0, 0.6},
	{0.8, 0.2, 0.2, 0.8, 0.6, 0.1, 0.6, 1.0},
}

var headingNames = [headingCount][]string{
	{"up", "north"},
	{"right", "east"},
	{"down", "south"},
	{"left", "west"},
	{"up-right", "north-east"},
	{"down-right", "south-east"},
	{"down-left", "south-west"},
	{"up-left", "north-west"},
}

// HeadingName returns the short name of a heading.
func HeadingName(heading int) string {
	if heading < 0 || heading >= headingCount {
		return "unknown"
	}
	return headingNames[heading][0]
}

// ParseHeading accepts a heading name in either compass or screen terms.
func ParseHeading(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for heading, names := range headingNames {
		for _, candidate := range names {
			if candidate == name {
				return heading, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown wind heading %q", name)
}

// PrimaryWind returns the configured primary heading, or draws one from rng
// when the map leaves it at -1.
func PrimaryWind(m config.MapConfig, rng *world.RNG) int {
	if m.PrimaryWindDirection >= 0 && m.PrimaryWindDirection < headingCount {
		return m.PrimaryWindDirection
	}
	return rng.IntN(headingCount)
}
