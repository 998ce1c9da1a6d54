package vectorize

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// projectionStream fixes the PCG stream so that a seed alone selects the matrix.
const projectionStream = 0x766563746f6d6521

// Project multiplies v by a k×len(v) Gaussian matrix derived from seed.
//
// Rows are drawn one at a time from PCG(seed, projectionStream) as standard
// normal values scaled by 1/sqrt(k), so the matrix never exists in full and
// regenerating it from the same seed reproduces it exactly.
func Project(v []float64, k int, seed uint64) ([]float64, error) {
	if k <= 0 {
		return nil, invalidf("projection dimension must be positive, got %d", k)
	}

	rng := rand.New(rand.NewPCG(seed, projectionStream))
	scale := 1 / math.Sqrt(float64(k))
	row := make([]float64, len(v))
	out := make([]float64, k)
	for i := range out {
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		out[i] = floats.Dot(row, v)
	}
	return out, nil
}
