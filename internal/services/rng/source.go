// Package rng provides explicit, seedable random sources. Nothing in the engine
// reads the global math/rand state.
package rng

import "math/rand"

// Source is the randomness consumed by generators and simulators.
// A Source is not safe for concurrent use; give each goroutine its own.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard normal value.
	NormFloat64() float64
}

// New returns a Source seeded with seed.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Stream returns an independent Source for the given stream index under seed.
// The same (seed, stream) pair always yields the same sequence.
func Stream(seed int64, stream uint64) Source {
	return New(int64(splitmix64(uint64(seed) ^ splitmix64(stream+1))))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Fixed replays values in order, cycling when exhausted. NormFloat64 maps the
// uniform value u to 2u-1. Intended for tests and reproducible examples.
type Fixed struct {
	Values []float64
	i      int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.i%len(f.Values)]
	f.i++
	return v
}

func (f *Fixed) NormFloat64() float64 { return 2*f.Float64() - 1 }
