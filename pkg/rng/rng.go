// Package rng provides the deterministic PRNG used by every stochastic
// component in the generation pipeline, plus the seed derivation helpers
// that carve independent streams out of a single spec seed.
//
// All randomness in the core flows through this package. Nothing here
// reads the clock, the process id, or any other ambient source: a given
// seed always produces the same sequence, on any machine.
package rng

import "lukechampine.com/blake3"

// pcgMultiplier and pcgIncrement are the constants from the reference
// PCG32 generator (O'Neill, pcg-random.org). The increment must be odd.
const (
	pcgMultiplier uint64 = 6364136223846793005
	pcgIncrement  uint64 = 1442695040888963407
)

// RNG is a 64-bit PCG-style generator producing 32-bit outputs. State is
// owned entirely by the instance; there is no shared or thread-local
// fallback anywhere in this package.
type RNG struct {
	state uint64
}

// New creates an RNG from a 32-bit seed. Per the data model, the 32-bit
// seed is expanded to 64 bits by duplicating it into both halves of the
// state word.
func New(seed uint32) *RNG {
	return &RNG{state: uint64(seed) | (uint64(seed) << 32)}
}

// next advances the generator one step and returns a 32-bit output using
// the XSH-RR permutation.
func (r *RNG) next() uint32 {
	old := r.state
	r.state = old*pcgMultiplier + pcgIncrement

	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a uniform float64 in [0.0, 1.0), built from 32 bits of
// entropy divided by 2^32.
func (r *RNG) Float64() float64 {
	return float64(r.next()) / 4294967296.0
}

// Range returns a uniform integer in the inclusive range [lo, hi], using
// rejection sampling over 32-bit draws to avoid modulo bias.
func (r *RNG) Range(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := uint64(hi-lo) + 1
	if span > (1 << 32) {
		// Span wider than the generator's native output; fall back to a
		// wide composite draw. Still fully deterministic.
		limit := uint64(1)<<63 - (uint64(1)<<63)%span
		for {
			v := (uint64(r.next()) << 32) | uint64(r.next())
			if v < limit {
				return lo + int64(v%span)
			}
		}
	}
	limit := (uint64(1<<32) / span) * span
	for {
		v := uint64(r.next())
		if v < limit {
			return lo + int64(v%span)
		}
	}
}

// IntRange is a convenience wrapper around Range for plain ints.
func (r *RNG) IntRange(lo, hi int) int {
	return int(r.Range(int64(lo), int64(hi)))
}

// DeriveLayerSeed derives a 32-bit seed for a layer index from a base
// seed: low 32 bits of BLAKE3(base_seed LE || layer_index LE).
func DeriveLayerSeed(base uint32, layerIndex uint32) uint32 {
	var buf [8]byte
	putU32LE(buf[0:4], base)
	putU32LE(buf[4:8], layerIndex)
	return lowU32(blake3.Sum256(buf[:]))
}

// DeriveComponentSeed derives a 32-bit seed for a named component from a
// base seed: low 32 bits of BLAKE3(base_seed LE || UTF-8(key)).
func DeriveComponentSeed(base uint32, key string) uint32 {
	buf := make([]byte, 4+len(key))
	putU32LE(buf[0:4], base)
	copy(buf[4:], key)
	return lowU32(blake3.Sum256(buf))
}

// NewForLayer is a convenience constructor combining DeriveLayerSeed and
// New.
func NewForLayer(base uint32, layerIndex uint32) *RNG {
	return New(DeriveLayerSeed(base, layerIndex))
}

// NewForComponent is a convenience constructor combining
// DeriveComponentSeed and New.
func NewForComponent(base uint32, key string) *RNG {
	return New(DeriveComponentSeed(base, key))
}

func putU32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func lowU32(digest [32]byte) uint32 {
	return uint32(digest[0]) | uint32(digest[1])<<8 | uint32(digest[2])<<16 | uint32(digest[3])<<24
}
