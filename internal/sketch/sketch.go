// Package sketch holds the immutable MinHash-style sketch consumed by every
// vectorization method, together with its on-disk encodings.
package sketch

import (
	"slices"
)

// Sketch is a set of 64-bit k-mer hash values describing one genome.
//
// Hashes are kept sorted and unique; a Sketch is never mutated after New.
type Sketch struct {
	name   string
	ksize  int
	size   uint64
	hashes []uint64
}

// Option sets optional metadata on a Sketch.
type Option func(*Sketch)

// WithName records the sketch's source name.
func WithName(name string) Option {
	return func(s *Sketch) { s.name = name }
}

// WithKSize records the k-mer size the hashes were computed with.
func WithKSize(k int) Option {
	return func(s *Sketch) { s.ksize = k }
}

// WithSize records the estimated cardinality of the original k-mer set.
func WithSize(n uint64) Option {
	return func(s *Sketch) { s.size = n }
}

// New copies hashes into a sorted, de-duplicated Sketch.
func New(hashes []uint64, opts ...Option) *Sketch {
	hs := slices.Clone(hashes)
	slices.Sort(hs)
	hs = slices.Compact(hs)
	s := &Sketch{hashes: hs}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sketch) Name() string { return s.name }
func (s *Sketch) KSize() int   { return s.ksize }

// Size returns the estimated original-set cardinality, or the number of
// hashes when no estimate was recorded.
func (s *Sketch) Size() uint64 {
	if s.size == 0 {
		return uint64(len(s.hashes))
	}
	return s.size
}

// Len returns the number of distinct hash values.
func (s *Sketch) Len() int { return len(s.hashes) }

// Hashes returns a copy of the sorted hash values.
func (s *Sketch) Hashes() []uint64 { return slices.Clone(s.hashes) }

// Each calls fn for every hash value in ascending order.
func (s *Sketch) Each(fn func(h uint64)) {
	for _, h := range s.hashes {
		fn(h)
	}
}

// Equal reports whether two sketches hold the same hash set.
func (s *Sketch) Equal(o *Sketch) bool {
	return slices.Equal(s.hashes, o.hashes)
}

// Jaccard returns |A∩B| / |A∪B| over the exact hash sets.
// Two empty sketches are considered identical.
func Jaccard(a, b *Sketch) float64 {
	inter, union := overlap(a.hashes, b.hashes)
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// JaccardDistance returns 1 - Jaccard(a, b).
func JaccardDistance(a, b *Sketch) float64 {
	return 1 - Jaccard(a, b)
}

// overlap merges two sorted unique slices.
func overlap(a, b []uint64) (inter, union int) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union = len(a) + len(b) - inter
	return inter, union
}
