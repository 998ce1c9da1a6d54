package source

import (
	"context"

	"github.com/vectome/vectome/internal/sketch"
)

// Static is an in-memory Source keyed by normalized identifier. A nil entry
// models a genome without a sketch.
type Static map[string]*sketch.Sketch

// NewStatic builds a Static source, normalizing every key.
func NewStatic(entries map[string]*sketch.Sketch) Static {
	out := make(Static, len(entries))
	for id, s := range entries {
		out[Key(id)] = s
	}
	return out
}

func (s Static) Name() string { return "static" }

func (s Static) Resolve(ctx context.Context, id string) (*sketch.Sketch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sk, ok := s[Key(id)]
	if !ok {
		return nil, Unresolved(id, nil)
	}
	if sk == nil {
		return nil, Unavailable(id, nil)
	}
	return sk, nil
}
