package lighting

import (
	"math"

	"worldgen/internal/world"
)

type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// Vec is a shadow offset in tiles per unit of march distance.
type Vec struct {
	X float64
	Y float64
}

func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// PhaseAt names the part of the day an hour falls in.
func PhaseAt(hour int) Phase {
	switch {
	case hour >= 5 && hour < 7:
		return PhaseDawn
	case hour >= 7 && hour < 18:
		return PhaseDay
	case hour >= 18 && hour < 21:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// Directions returns the shadow direction for every hour. The sun sweeps
// east to west; equatorOffset tilts shadows towards the pole.
func Directions(equatorOffset float64) [world.Hours]Vec {
	var out [world.Hours]Vec
	eq := equatorOffset
	for h := 0; h < world.Hours; h++ {
		s := 2 * (float64(h) - 12) / world.Hours
		out[h] = Vec{
			X: s * (1 - eq*eq) * 5,
			Y: (s*s*eq + eq/2) * 5,
		}
	}
	return out
}

// DayBrightness is the ambient light level at hour h, peaking at noon.
func DayBrightness(h int) float64 {
	return 0.7 + 0.5*math.Cos(2*math.Pi*(float64(h)-12)/world.Hours)
}

// ShadowBrightness is the brightness a shadow leaves at hour h. Values of 1
// mean shadows are invisible at that hour.
func ShadowBrightness(h int) float64 {
	return world.Clamp01(1 - 0.6*DayBrightness(h) + 0.3)
}
