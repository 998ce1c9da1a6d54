package pipeline

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/vectorize"
)

// Method selects how a sketch becomes a vector.
type Method string

const (
	// MethodCountSketch folds the sketch with CountSketch.
	MethodCountSketch Method = "countsketch"
	// MethodLandmark measures Jaccard distance to each landmark of a group.
	MethodLandmark Method = "landmark"
)

// ParseMethod accepts "countsketch", its alias "sketch", and "landmark".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "countsketch", "sketch":
		return MethodCountSketch, nil
	case "landmark", "landmarks":
		return MethodLandmark, nil
	}
	return "", errors.Wrapf(vectorize.ErrInvalidParameter, "unknown method %q (want countsketch or landmark)", s)
}

// Params are shared by every identifier of one batch, so all rows have
// comparable columns.
type Params struct {
	Method Method
	// Dim is the folded vector length for MethodCountSketch.
	Dim int
	// Hashes is the number of CountSketch repetitions per hash value.
	Hashes int
	// Normalize L2-normalizes the folded vector before projection.
	Normalize bool
	// Projection is the projected dimension; 0 disables projection.
	Projection int
	Seed       int64
	// Group is the landmark group for MethodLandmark.
	Group int
}

// DefaultParams mirrors the command-line defaults.
func DefaultParams() Params {
	return Params{
		Method:    MethodCountSketch,
		Dim:       vectorize.DefaultDim,
		Hashes:    3,
		Normalize: true,
		Seed:      42,
	}
}

// Validate reports the first invalid parameter. It is called before any
// identifier is resolved.
func (p Params) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Wrapf(vectorize.ErrInvalidParameter, format, args...)
	}
	switch p.Method {
	case MethodCountSketch:
		if p.Dim <= 0 {
			return invalid("dimension must be positive, got %d", p.Dim)
		}
		if p.Hashes <= 0 {
			return invalid("hash repetitions must be positive, got %d", p.Hashes)
		}
	case MethodLandmark:
		if p.Group < 0 {
			return invalid("landmark group must be non-negative, got %d", p.Group)
		}
	default:
		return invalid("unknown method %q", p.Method)
	}
	if p.Projection < 0 {
		return invalid("projection dimension must be positive, got %d", p.Projection)
	}
	if p.Seed < 0 {
		return invalid("seed must be non-negative, got %d", p.Seed)
	}
	return nil
}
