package vectorize

import (
	"github.com/vectome/vectome/internal/sketch"
)

// EmbedLandmarks returns the Jaccard distance from s to every landmark, in
// landmark order. Component i therefore always means "distance to landmark i".
func EmbedLandmarks(s *sketch.Sketch, landmarks []*sketch.Sketch) []float64 {
	out := make([]float64, len(landmarks))
	for i, lm := range landmarks {
		out[i] = sketch.JaccardDistance(s, lm)
	}
	return out
}
