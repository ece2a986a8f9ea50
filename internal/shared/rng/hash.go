package rng

import (
	"math/rand/v2"
	"strconv"
)

// PositionHash maps a universe seed and an integer coordinate pair to a
// non-negative 31-bit value. Sequential XOR/multiply mixing with odd
// constants (golden-ratio derived first) breaks up positional banding, and
// the result depends on nothing but its inputs, so a sub-seed can be derived
// for any location in any order.
func PositionHash(seed int64, x, y int) uint32 {
	h := uint32(seed)
	h ^= uint32(int32(x)) * 0x9E3779B9
	h = (h ^ (h >> 16)) * 0x85EBCA6B
	h ^= uint32(int32(y)) * 0xC2B2AE35
	h = (h ^ (h >> 13)) * 0x27D4EB2F
	h ^= h >> 16
	return h & 0x7FFFFFFF
}

// SeedFromString folds an arbitrary seed string into the valid seed range.
// Numeric strings are taken verbatim (then normalized); anything else goes
// through a rolling hash so shared links can carry word seeds.
func SeedFromString(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return normalizeSeed(n)
	}
	var h int64
	for _, c := range s {
		h = (h*31 + int64(c)) % lcgModulus
	}
	return normalizeSeed(h)
}

// RandomSeed returns a fresh seed in the open range (0, 2^31-1).
func RandomSeed() int64 {
	return rand.Int64N(lcgModulus-1) + 1
}

func normalizeSeed(n int64) int64 {
	n %= lcgModulus
	if n <= 0 {
		n += lcgModulus - 1
	}
	return n
}
