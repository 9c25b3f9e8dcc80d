// Package hash is the seed-keyed 24-bit mixing primitive behind every
// randomized decision in the simulation: procedural layout, birth
// tie-breaks, jitter. The mix constants are frozen; alternate compiled
// backends must reproduce them bit for bit, and digest equality is the
// parity oracle between backends.
package hash

import "fmt"

const (
	mask24 = 0xFFFFFF

	// Avalanche step: xor the input, multiply by an odd prime, add a bias.
	mixPrime = 0x01000193
	mixBias  = 0x00B54D

	// Per-argument salts for Hash24.
	saltA = 0x1F123B
	saltB = 0x5C4F6A
	saltC = 0x9E3779

	// FNV-style basis for state digests.
	digestBasis = 0x811C9D
)

// Mix24 folds one value into a running 24-bit hash.
func Mix24(h, v uint32) uint32 {
	h ^= v & mask24
	return (h*mixPrime + mixBias) & mask24
}

// Hash24 mixes three integers under a seed into a 24-bit value.
func Hash24(seed int64, a, b, c int) uint32 {
	h := uint32(uint64(seed)) & mask24
	h = Mix24(h, uint32(int32(a))+saltA)
	h = Mix24(h, uint32(int32(b))+saltB)
	h = Mix24(h, uint32(int32(c))+saltC)
	return h
}

// Choice deterministically selects one of n options.
func Choice(seed int64, a, b, c, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Hash24(seed, a, b, c) % uint32(n))
}

// U24Mod is Choice under the name the placement code uses for modulus
// selection.
func U24Mod(seed int64, a, b, c, n int) int {
	return Choice(seed, a, b, c, n)
}

// Digest fingerprints a full cell state: every type, then every energy
// value, then every age, folded through the same mix step. The result is
// the lowercase zero-padded hex of the final 24-bit value.
func Digest(types []uint8, energy10, age []int32) string {
	h := uint32(digestBasis)
	for _, t := range types {
		h = Mix24(h, uint32(t))
	}
	for _, e := range energy10 {
		h = Mix24(h, uint32(e))
	}
	for _, a := range age {
		h = Mix24(h, uint32(a))
	}
	return fmt.Sprintf("%06x", h)
}
