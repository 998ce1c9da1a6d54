// Package landmarks manages named groups of landmark sketches cached under
// an explicit cache root:
//
//	<root>/landmarks/group-<id>/manifest.json
//	<root>/landmarks/group-<id>/sketches/<key>.msgp
//	<root>/landmarks/group-<id>.lock
//
// Builds are assembled under <root>/tmp and swapped into place by rename
// while holding the group lock exclusively; readers hold it shared, so a
// half-written group is never observed.
package landmarks

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/source"
)

const (
	manifestFile = "manifest.json"
	sketchDir    = "sketches"
	sketchExt    = ".msgp"

	defaultLockTimeout    = 30 * time.Second
	defaultResolveTimeout = 2 * time.Minute
)

// Progress reports one landmark fetched during a build.
type Progress struct {
	Group string
	Done  int
	Total int
	ID    string
}

// Store builds, loads and describes landmark groups under one cache root.
type Store struct {
	root    string
	catalog *Catalog
	src     source.Source

	// LockTimeout bounds how long any operation waits for the group lock.
	LockTimeout time.Duration
	// ResolveTimeout bounds each landmark fetch during a build.
	ResolveTimeout time.Duration
	// OnProgress, when set, is called after each landmark is fetched.
	OnProgress func(Progress)
}

// NewStore returns a Store rooted at root. src may be nil for stores that
// are only loaded or described.
func NewStore(root string, catalog *Catalog, src source.Source) (*Store, error) {
	if root == "" {
		return nil, errors.New("cache root is required")
	}
	if catalog == nil {
		return nil, errors.New("landmark catalog is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve cache root %s", root)
	}
	return &Store{
		root:           abs,
		catalog:        catalog,
		src:            src,
		LockTimeout:    defaultLockTimeout,
		ResolveTimeout: defaultResolveTimeout,
	}, nil
}

// Root returns the absolute cache root.
func (s *Store) Root() string { return s.root }

// Catalog returns the group definitions the store serves.
func (s *Store) Catalog() *Catalog { return s.catalog }

func (s *Store) landmarksDir() string    { return filepath.Join(s.root, "landmarks") }
func (s *Store) groupDir(id int) string  { return filepath.Join(s.landmarksDir(), GroupName(id)) }
func (s *Store) lockPath(id int) string  { return s.groupDir(id) + ".lock" }
func (s *Store) backupDir(id int) string { return s.groupDir(id) + ".bak" }
func (s *Store) tmpDir() string          { return filepath.Join(s.root, "tmp") }

// ManifestPath returns where the manifest of group id lives.
func (s *Store) ManifestPath(id int) string {
	return filepath.Join(s.groupDir(id), manifestFile)
}

// Clean removes a group's cached data. Removing an unbuilt group is a no-op.
func (s *Store) Clean(id int) error {
	if _, err := s.catalog.Lookup(id); err != nil {
		return err
	}
	if _, err := os.Stat(s.landmarksDir()); os.IsNotExist(err) {
		return nil
	}
	unlock, err := acquireLock(s.lockPath(id), false, s.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	dir := s.groupDir(id)
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "cannot remove %s", dir)
	}
	_ = os.RemoveAll(s.backupDir(id))
	return nil
}
