// Package rng provides the deterministic primitives every generator in the
// engine is built on: a seeded Lehmer LCG stream and a pure coordinate hash.
// Identical seeds must yield identical sequences across runs and platforms,
// so the constants and rounding rules here are part of the contract.
package rng

const (
	lcgMultiplier = 16807
	lcgModulus    = 2147483647 // 2^31 - 1, a Mersenne prime
)

// ChunkRandom is a stateful multiplicative LCG (Park-Miller minimal standard).
type ChunkRandom struct {
	state int64
}

// New returns a generator seeded with the given value. Seeds outside the
// open range (0, 2^31-1) are normalized into it.
func New(seed int64) *ChunkRandom {
	r := &ChunkRandom{}
	r.Reseed(seed)
	return r
}

// Reseed resets the stream. Zero and negative seeds are normalized so the
// LCG never degenerates to a fixed point.
func (r *ChunkRandom) Reseed(seed int64) {
	s := seed % lcgModulus
	if s <= 0 {
		s += lcgModulus - 1
	}
	if s == 0 {
		s = 1
	}
	r.state = s
}

// Next returns the next value in [0, 1).
func (r *ChunkRandom) Next() float64 {
	r.state = r.state * lcgMultiplier % lcgModulus
	return float64(r.state-1) / float64(lcgModulus-1)
}

// NextInt returns a value in [min, max] inclusive.
func (r *ChunkRandom) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(r.Next()*float64(max-min+1))
}

// NextFloat returns a value in [min, max).
func (r *ChunkRandom) NextFloat(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Choice returns a uniformly chosen element. Empty slices are a caller bug.
func Choice[T any](r *ChunkRandom, items []T) T {
	return items[r.NextInt(0, len(items)-1)]
}
