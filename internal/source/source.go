// Package source resolves identifiers (species names, strain names, taxon
// IDs) to sketches produced by an external sketching provider.
package source

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/sketch"
)

var (
	// ErrUnresolvedIdentifier means the identifier could not be mapped to a genome.
	ErrUnresolvedIdentifier = errors.New("unresolved identifier")
	// ErrSketchUnavailable means the genome is known but no sketch exists for it.
	ErrSketchUnavailable = errors.New("sketch unavailable")
)

// Source resolves one identifier to a sketch.
//
// Implementations must be safe for concurrent use and must return errors
// marked with ErrUnresolvedIdentifier or ErrSketchUnavailable for
// per-identifier failures.
type Source interface {
	Name() string
	Resolve(ctx context.Context, id string) (*sketch.Sketch, error)
}

// Config contains the resolved source configuration.
type Config struct {
	Type    string
	Dir     string
	BaseURL string
	KSize   int
	Retries int
	Timeout time.Duration
}

// NewFromConfig returns a source.
func NewFromConfig(cfg *Config) (Source, error) {
	if cfg == nil {
		return nil, errors.New("source config is nil")
	}
	switch cfg.Type {
	case "dir", "":
		if cfg.Dir == "" {
			return nil, errors.WithHint(
				errors.New("signature directory is not configured"),
				"set source.dir in config.yaml or VECTOME_SOURCE_DIR",
			)
		}
		return NewDir(cfg.Dir, cfg.KSize), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, errors.WithHint(
				errors.New("signature service URL is not configured"),
				"set source.base_url in config.yaml or VECTOME_SOURCE_URL",
			)
		}
		return NewHTTP(cfg), nil
	default:
		return nil, errors.Newf("unsupported source type: %s", cfg.Type)
	}
}

// Unresolved marks err as an unresolved-identifier failure for id.
func Unresolved(id string, err error) error {
	if err == nil {
		err = errors.New("no genome matches")
	}
	return errors.Mark(errors.Wrapf(err, "resolve %q", id), ErrUnresolvedIdentifier)
}

// Unavailable marks err as a missing-sketch failure for id.
func Unavailable(id string, err error) error {
	if err == nil {
		err = errors.New("no sketch recorded")
	}
	return errors.Mark(errors.Wrapf(err, "sketch %q", id), ErrSketchUnavailable)
}

// IsResolutionFailure reports whether err is a per-identifier failure that
// must not abort a batch. Context deadlines count as resolution failures.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, ErrUnresolvedIdentifier) ||
		errors.Is(err, ErrSketchUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
