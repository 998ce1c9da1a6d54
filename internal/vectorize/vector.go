package vectorize

import (
	"gonum.org/v1/gonum/floats"
)

// NormalizeL2 returns a new vector normalized to unit L2 norm.
// A zero vector is returned unchanged.
func NormalizeL2(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	n := floats.Norm(v, 2)
	if n == 0 {
		return out
	}
	floats.Scale(1/n, out)
	return out
}
