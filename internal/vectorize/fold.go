// Package vectorize turns sketches into fixed-length vectors: CountSketch
// folding, seeded random projection and landmark Jaccard embeddings.
//
// Every function here is pure. Outputs depend only on the arguments, so the
// same sketch, dimension and seed always give bit-identical vectors.
package vectorize

import (
	"encoding/binary"

	"github.com/dgryski/go-metro"

	"github.com/vectome/vectome/internal/sketch"
)

// DefaultDim is the folded vector length used when none is given.
const DefaultDim = 4096

// golden is the 64-bit golden-ratio constant used to separate seed streams.
const golden = 0x9E3779B97F4A7C15

// Fold reduces s to a length-n vector with a single CountSketch hash:
// every hash value adds ±1 to one bucket.
func Fold(s *sketch.Sketch, n int, seed uint64) ([]float64, error) {
	return FoldMulti(s, n, seed, 1)
}

// FoldMulti is Fold with reps independent (bucket, sign) pairs per hash
// value, which lowers the variance caused by bucket collisions.
//
// Repetition r uses bucketSeed = mix64(seed ^ (2r+1)*golden) and
// signSeed = mix64(seed ^ (2r+2)*golden). The hash value is encoded as 8
// little-endian bytes; its bucket is metro64(bytes, bucketSeed) mod n and its
// sign is +1 when metro64(bytes, signSeed) is odd. Changing any of this
// changes every vector ever produced.
func FoldMulti(s *sketch.Sketch, n int, seed uint64, reps int) ([]float64, error) {
	if n <= 0 {
		return nil, invalidf("dimension must be positive, got %d", n)
	}
	if reps <= 0 {
		return nil, invalidf("hash repetitions must be positive, got %d", reps)
	}

	seeds := make([][2]uint64, reps)
	for r := range seeds {
		seeds[r] = [2]uint64{
			mix64(seed ^ (uint64(2*r+1) * golden)),
			mix64(seed ^ (uint64(2*r+2) * golden)),
		}
	}

	v := make([]float64, n)
	var key [8]byte
	s.Each(func(h uint64) {
		binary.LittleEndian.PutUint64(key[:], h)
		for _, sd := range seeds {
			b := metro.Hash64(key[:], sd[0]) % uint64(n)
			if metro.Hash64(key[:], sd[1])&1 == 1 {
				v[b]++
			} else {
				v[b]--
			}
		}
	})
	return v, nil
}

// mix64 is the murmur3 64-bit finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
