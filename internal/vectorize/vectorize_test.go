package vectorize

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/vectome/vectome/internal/sketch"
)

func randomSketch(seed uint64, n int) *sketch.Sketch {
	rng := rand.New(rand.NewPCG(seed, 1))
	hs := make([]uint64, n)
	for i := range hs {
		hs[i] = rng.Uint64()
	}
	return sketch.New(hs)
}

func TestFold_Deterministic(t *testing.T) {
	s := randomSketch(1, 500)
	a, err := Fold(s, 256, 42)
	require.NoError(t, err)
	b, err := Fold(s, 256, 42)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFoldMulti_BoundedContributions(t *testing.T) {
	s := sketch.New([]uint64{0x1234, 0xBEEF})
	v, err := FoldMulti(s, 16, 42, 3)
	require.NoError(t, err)

	var total float64
	for _, x := range v {
		total += math.Abs(x)
	}
	require.LessOrEqual(t, total, 6.0, "two hashes × three repetitions")
	again, _ := FoldMulti(sketch.New([]uint64{0xBEEF, 0x1234}), 16, 42, 3)
	require.Equal(t, v, again)
}

func TestFold_IndependentOfInputOrder(t *testing.T) {
	hs := []uint64{10, 99, 3, 1 << 40, 77}
	rev := []uint64{77, 1 << 40, 3, 99, 10}
	a, _ := Fold(sketch.New(hs), 32, 7)
	b, _ := Fold(sketch.New(rev), 32, 7)
	require.Equal(t, a, b)
}

func TestFold_Dimension(t *testing.T) {
	s := randomSketch(2, 100)
	for _, n := range []int{1, 8, 100, DefaultDim} {
		v, err := Fold(s, n, 0)
		require.NoError(t, err)
		require.Len(t, v, n)
	}
}

func TestFold_SignedCountsSumToHashTotal(t *testing.T) {
	s := randomSketch(3, 300)
	v, err := FoldMulti(s, 1, 9, 2)
	require.NoError(t, err)
	// One bucket: every contribution lands there, so |v[0]| <= 600 and has
	// the parity of 600.
	require.LessOrEqual(t, math.Abs(v[0]), 600.0)
	require.Equal(t, 0.0, math.Mod(v[0], 2))
}

func TestFold_SeedSensitivity(t *testing.T) {
	s := randomSketch(4, 200)
	rng := rand.New(rand.NewPCG(99, 99))
	for i := 0; i < 100; i++ {
		s1, s2 := rng.Uint64(), rng.Uint64()
		if s1 == s2 {
			continue
		}
		a, _ := Fold(s, 64, s1)
		b, _ := Fold(s, 64, s2)
		require.NotEqual(t, a, b, "seeds %d and %d gave identical folds", s1, s2)
	}
}

func TestFold_InvalidParameter(t *testing.T) {
	s := randomSketch(5, 10)
	for _, n := range []int{0, -1} {
		_, err := Fold(s, n, 0)
		require.True(t, errors.Is(err, ErrInvalidParameter), "n=%d", n)
	}
	_, err := FoldMulti(s, 8, 0, 0)
	require.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestFold_EmptySketch(t *testing.T) {
	v, err := Fold(sketch.New(nil), 4, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0}, v)
}

func TestProject_DeterministicAndDimension(t *testing.T) {
	v, _ := Fold(randomSketch(6, 300), 128, 1)
	for _, k := range []int{1, 16, 128, 200} {
		a, err := Project(v, k, 42)
		require.NoError(t, err)
		require.Len(t, a, k)
		b, _ := Project(v, k, 42)
		require.Equal(t, a, b)
	}
}

func TestProject_SeedSensitivity(t *testing.T) {
	v, _ := Fold(randomSketch(7, 300), 64, 1)
	rng := rand.New(rand.NewPCG(5, 5))
	for i := 0; i < 50; i++ {
		s1, s2 := rng.Uint64(), rng.Uint64()
		if s1 == s2 {
			continue
		}
		a, _ := Project(v, 8, s1)
		b, _ := Project(v, 8, s2)
		require.NotEqual(t, a, b)
	}
}

func TestProject_InvalidParameter(t *testing.T) {
	for _, k := range []int{0, -3} {
		_, err := Project([]float64{1, 2}, k, 0)
		require.True(t, errors.Is(err, ErrInvalidParameter), "k=%d", k)
	}
}

func TestProject_Linear(t *testing.T) {
	v := []float64{1, -2, 3, 0.5}
	w := []float64{2, -4, 6, 1}
	a, _ := Project(v, 3, 11)
	b, _ := Project(w, 3, 11)
	for i := range a {
		require.InDelta(t, 2*a[i], b[i], 1e-12)
	}
}

func TestFoldThenProject_SeedsDiffer(t *testing.T) {
	s := randomSketch(8, 64)
	run := func(seed uint64) []float64 {
		f, err := Fold(s, 8, seed)
		require.NoError(t, err)
		p, err := Project(f, 4, seed)
		require.NoError(t, err)
		return p
	}
	require.NotEqual(t, run(0), run(42))
}

func TestEmbedLandmarks(t *testing.T) {
	a := sketch.New([]uint64{1, 2, 3, 4})
	b := sketch.New([]uint64{3, 4, 5, 6})
	c := sketch.New([]uint64{7, 8})

	got := EmbedLandmarks(a, []*sketch.Sketch{a, b, c})
	require.Len(t, got, 3)
	require.Equal(t, 0.0, got[0])
	require.InDelta(t, 1-2.0/6.0, got[1], 1e-12)
	require.Equal(t, 1.0, got[2])
}

func TestNormalizeL2(t *testing.T) {
	out := NormalizeL2([]float64{3, 4})
	require.InDelta(t, 0.6, out[0], 1e-12)
	require.InDelta(t, 0.8, out[1], 1e-12)
	require.Equal(t, []float64{0, 0}, NormalizeL2([]float64{0, 0}))
}
