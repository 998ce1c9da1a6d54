package landmarks

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/sketch"
)

// Load reads a built group. It fails with ErrNotBuilt when the group has
// never been built under this cache root and with ErrCacheCorruption when
// the manifest references data that cannot be read.
func (s *Store) Load(id int) (*Group, error) {
	if _, err := s.catalog.Lookup(id); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.landmarksDir()); os.IsNotExist(err) {
		return nil, notBuilt(id, s.root)
	}
	unlock, err := acquireLock(s.lockPath(id), true, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.loadLocked(id)
}

// loadLocked reads the group; the caller holds the group lock.
func (s *Store) loadLocked(id int) (*Group, error) {
	m, err := s.readManifest(id)
	if err != nil {
		return nil, err
	}

	dir := s.groupDir(id)
	g := &Group{
		ID:           id,
		Name:         GroupName(id),
		Dir:          dir,
		ManifestPath: s.ManifestPath(id),
		Manifest:     *m,
		Landmarks:    make([]Landmark, len(m.Landmarks)),
	}
	for i, e := range m.Landmarks {
		sk, err := readSketch(dir, e.SketchFile)
		if err != nil {
			return nil, corrupted(id, "landmark %q: %v", e.ID, err)
		}
		if sk.Len() != e.Hashes {
			return nil, corrupted(id, "landmark %q: %d hashes on disk, manifest records %d", e.ID, sk.Len(), e.Hashes)
		}
		g.Landmarks[i] = Landmark{ID: e.ID, Sketch: sk}
	}
	return g, nil
}

// readManifest returns ErrNotBuilt when no manifest exists and
// ErrCacheCorruption when it exists but is unusable, or when the group only
// survives as the backup of an interrupted swap.
func (s *Store) readManifest(id int) (*Manifest, error) {
	p := s.ManifestPath(id)
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			bak := filepath.Join(s.backupDir(id), manifestFile)
			if _, bErr := os.Stat(bak); bErr == nil {
				return nil, interruptedSwap(id, s.backupDir(id))
			}
			return nil, notBuilt(id, s.root)
		}
		return nil, corrupted(id, "cannot read manifest %s: %v", p, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, corrupted(id, "invalid manifest JSON %s: %v", p, err)
	}
	switch {
	case m.FormatVersion != FormatVersion:
		return nil, corrupted(id, "manifest format %d, expected %d", m.FormatVersion, FormatVersion)
	case m.GroupID != id:
		return nil, corrupted(id, "manifest belongs to group %d", m.GroupID)
	case !m.Built:
		return nil, corrupted(id, "manifest is not marked built")
	case len(m.Landmarks) == 0:
		return nil, corrupted(id, "manifest lists no landmarks")
	}
	return &m, nil
}

// checkEntries verifies that every sketch file in m exists without decoding it.
func (s *Store) checkEntries(id int, m *Manifest) error {
	dir := s.groupDir(id)
	for _, e := range m.Landmarks {
		p, err := sketchPath(dir, e.SketchFile)
		if err != nil {
			return corrupted(id, "landmark %q: %v", e.ID, err)
		}
		if _, err := os.Stat(p); err != nil {
			return corrupted(id, "landmark %q: sketch data missing at %s", e.ID, p)
		}
	}
	return nil
}

func sketchPath(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", errors.Newf("invalid sketch path %q", rel)
	}
	return filepath.Join(dir, rel), nil
}

func readSketch(dir, rel string) (*sketch.Sketch, error) {
	p, err := sketchPath(dir, rel)
	if err != nil {
		return nil, err
	}
	return sketch.ReadFile(p)
}
