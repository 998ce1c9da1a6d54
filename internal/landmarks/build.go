package landmarks

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/vectome/vectome/internal/sketch"
	"github.com/vectome/vectome/internal/source"
)

// Build fetches every landmark of group id and installs the group under the
// cache root.
//
// A group stranded by an interrupted swap is restored first. An already
// built group is returned untouched unless force is set. A forced
// build assembles the new group in a temporary directory and swaps it in only
// once every landmark sketch was obtained; on any failure the previous group
// stays in place and ErrBuild is returned.
func (s *Store) Build(ctx context.Context, id int, force bool) (*Group, error) {
	spec, err := s.catalog.Lookup(id)
	if err != nil {
		return nil, err
	}
	if s.src == nil {
		return nil, errors.New("landmark build needs a sketch source")
	}

	if err := os.MkdirAll(s.landmarksDir(), 0o755); err != nil {
		return nil, errors.Wrapf(err, "cannot create cache dir %s", s.landmarksDir())
	}
	unlock, err := acquireLock(s.lockPath(id), false, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.restoreBackup(id); err != nil {
		return nil, err
	}
	if !force {
		g, err := s.loadLocked(id)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, ErrNotBuilt) {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.tmpDir(), 0o755); err != nil {
		return nil, errors.Wrapf(err, "cannot create temp dir %s", s.tmpDir())
	}
	tmp, err := os.MkdirTemp(s.tmpDir(), "build-"+spec.Name+"-*")
	if err != nil {
		return nil, errors.Wrap(err, "cannot create temp group dir")
	}
	defer os.RemoveAll(tmp)

	m, sketches, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, buildFailed(id, err)
	}
	if err := writeGroup(tmp, m, sketches); err != nil {
		return nil, buildFailed(id, err)
	}
	if err := AtomicSwap(tmp, s.groupDir(id)); err != nil {
		return nil, buildFailed(id, errors.Wrap(err, "cannot install group"))
	}
	return s.loadLocked(id)
}

// fetch resolves every landmark of spec in catalog order.
func (s *Store) fetch(ctx context.Context, spec GroupSpec) (Manifest, []*sketch.Sketch, error) {
	m := Manifest{
		FormatVersion: FormatVersion,
		GroupID:       spec.ID,
		Name:          spec.Name,
		BuildID:       uuid.NewString(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Source:        s.src.Name(),
		Landmarks:     make([]ManifestEntry, 0, len(spec.Queries)),
	}
	sketches := make([]*sketch.Sketch, 0, len(spec.Queries))
	files := make(map[string]string, len(spec.Queries))

	for i, q := range spec.Queries {
		if err := ctx.Err(); err != nil {
			return m, nil, err
		}
		file := filepath.ToSlash(filepath.Join(sketchDir, source.Key(q)+sketchExt))
		if prev, dup := files[file]; dup {
			return m, nil, errors.Newf("landmarks %q and %q map to the same cache file", prev, q)
		}
		files[file] = q

		sk, err := s.resolve(ctx, q)
		if err != nil {
			return m, nil, err
		}
		m.Landmarks = append(m.Landmarks, ManifestEntry{
			ID:         q,
			SketchFile: file,
			Hashes:     sk.Len(),
			KSize:      sk.KSize(),
		})
		sketches = append(sketches, sk)

		if s.OnProgress != nil {
			s.OnProgress(Progress{Group: spec.Name, Done: i + 1, Total: len(spec.Queries), ID: q})
		}
	}
	return m, sketches, nil
}

func (s *Store) resolve(ctx context.Context, id string) (*sketch.Sketch, error) {
	if s.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ResolveTimeout)
		defer cancel()
	}
	return s.src.Resolve(ctx, id)
}
