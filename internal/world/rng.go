package world

import "math/rand/v2"

// RNG is a thin wrapper around math/rand/v2 for deterministic seeding. Every
// random draw made while generating a map goes through one instance so that
// the same seed always yields the same map.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.r.Float64()
}

// Range returns a value in [min, max).
func (r *RNG) Range(min, max float64) float64 {
	return min + r.r.Float64()*(max-min)
}

// IntN returns a value in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// IntRange returns a value in [min, max).
func (r *RNG) IntRange(min, max int) int {
	return min + r.IntN(max-min)
}

// Int64 returns a non-negative pseudo-random int64, used to seed noise fields.
func (r *RNG) Int64() int64 {
	return r.r.Int64()
}
