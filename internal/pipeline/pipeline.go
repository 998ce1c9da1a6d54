// Package pipeline resolves a batch of identifiers to sketches and turns each
// sketch into a vector with one method and one set of parameters.
//
// Identifiers are processed concurrently; rows come back in input order and
// a failed identifier never aborts its siblings.
package pipeline

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vectome/vectome/internal/landmarks"
	"github.com/vectome/vectome/internal/sketch"
	"github.com/vectome/vectome/internal/source"
	"github.com/vectome/vectome/internal/vectorize"
)

// ErrCancelled marks rows that were never started because the batch
// context ended.
var ErrCancelled = errors.New("cancelled before start")

const defaultTimeout = 2 * time.Minute

// Row is the outcome for one input identifier. Exactly one of Vector and
// Err is set.
type Row struct {
	Index  int
	ID     string
	Vector []float64
	Err    error
}

// Result holds one row per input identifier, in input order.
type Result struct {
	Params  Params
	Columns []string
	Rows    []Row
}

// Failed returns the rows that carry an error.
func (r *Result) Failed() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Err != nil {
			out = append(out, row)
		}
	}
	return out
}

// Pipeline wires a sketch source to the vectorization methods.
type Pipeline struct {
	src   source.Source
	store *landmarks.Store

	// Workers bounds concurrent identifiers; <= 0 means GOMAXPROCS.
	Workers int
	// Timeout bounds each identifier's resolution; <= 0 disables it.
	Timeout time.Duration
	// OnRow, when set, is called from worker goroutines as rows complete.
	OnRow func(Row)
}

// New returns a Pipeline. store may be nil when only MethodCountSketch is used.
func New(src source.Source, store *landmarks.Store) *Pipeline {
	return &Pipeline{src: src, store: store, Timeout: defaultTimeout}
}

type vectorizer func(*sketch.Sketch) ([]float64, error)

// EmbedBatch vectorizes ids with params.
//
// Invalid parameters and an unbuilt or corrupt landmark group fail before
// any identifier is resolved. Per-identifier failures are recorded on their
// rows. When ctx ends, no new identifiers are started, rows that never ran
// carry ErrCancelled, and the partial result is returned with ctx.Err().
func (p *Pipeline) EmbedBatch(ctx context.Context, ids []string, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if p.src == nil {
		return nil, errors.New("pipeline has no sketch source")
	}
	fn, cols, err := p.prepare(params)
	if err != nil {
		return nil, err
	}

	res := &Result{Params: params, Columns: cols, Rows: make([]Row, len(ids))}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range ids {
		if ctx.Err() != nil {
			for j := i; j < len(ids); j++ {
				res.Rows[j] = cancelledRow(j, ids[j])
			}
			break
		}
		// g.Go waits for a free worker, so the batch may be cancelled
		// between the check above and the start of the row.
		g.Go(func() error {
			var row Row
			if ctx.Err() != nil {
				row = cancelledRow(i, id)
			} else {
				row = p.embedOne(ctx, i, id, fn)
			}
			res.Rows[i] = row
			if p.OnRow != nil {
				p.OnRow(row)
			}
			return nil
		})
	}
	_ = g.Wait()
	return res, ctx.Err()
}

func cancelledRow(i int, id string) Row {
	return Row{Index: i, ID: id, Err: errors.Wrapf(ErrCancelled, "%q", id)}
}

// prepare fixes the per-batch transform and its column names.
func (p *Pipeline) prepare(params Params) (vectorizer, []string, error) {
	seed := uint64(params.Seed)
	var (
		base  vectorizer
		cols  []string
		width int
	)
	switch params.Method {
	case MethodCountSketch:
		width = params.Dim
		base = func(s *sketch.Sketch) ([]float64, error) {
			v, err := vectorize.FoldMulti(s, params.Dim, seed, params.Hashes)
			if err != nil {
				return nil, err
			}
			if params.Normalize {
				v = vectorize.NormalizeL2(v)
			}
			return v, nil
		}
	case MethodLandmark:
		if p.store == nil {
			return nil, nil, errors.New("landmark method needs a landmark store")
		}
		group, err := p.store.Load(params.Group)
		if err != nil {
			return nil, nil, err
		}
		refs := group.Sketches()
		width = len(refs)
		cols = group.IDs()
		base = func(s *sketch.Sketch) ([]float64, error) {
			return vectorize.EmbedLandmarks(s, refs), nil
		}
	}

	if params.Projection > 0 {
		cols = nil
		width = params.Projection
		inner := base
		base = func(s *sketch.Sketch) ([]float64, error) {
			v, err := inner(s)
			if err != nil {
				return nil, err
			}
			return vectorize.Project(v, params.Projection, seed)
		}
	}
	if cols == nil {
		cols = make([]string, width)
		for i := range cols {
			cols[i] = strconv.Itoa(i)
		}
	}
	return base, cols, nil
}

func (p *Pipeline) embedOne(ctx context.Context, i int, id string, fn vectorizer) Row {
	row := Row{Index: i, ID: id}
	rctx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	s, err := p.src.Resolve(rctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = source.Unresolved(id, errors.Wrapf(err, "timed out after %s", p.Timeout))
		}
		row.Err = err
		return row
	}
	row.Vector, row.Err = fn(s)
	return row
}
