package landmarks

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/sketch"
)

// writeGroup writes sketches and then the manifest into dir. The manifest is
// written last so that its presence implies every sketch is on disk.
func writeGroup(dir string, m Manifest, sketches []*sketch.Sketch) error {
	if len(m.Landmarks) == 0 {
		return errors.New("no landmarks to write")
	}
	if len(sketches) != len(m.Landmarks) {
		return errors.Newf("sketch count mismatch: got %d want %d", len(sketches), len(m.Landmarks))
	}

	if err := os.MkdirAll(filepath.Join(dir, sketchDir), 0o755); err != nil {
		return errors.Wrapf(err, "cannot create group dir %s", dir)
	}
	for i, e := range m.Landmarks {
		if err := sketch.WriteFile(filepath.Join(dir, e.SketchFile), sketches[i]); err != nil {
			return err
		}
	}

	m.Built = true
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	mb = append(mb, '\n')
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		return errors.Wrap(err, "cannot write manifest")
	}
	return nil
}

// AtomicSwap replaces destDir with srcDir by renaming. The previous contents
// are parked at destDir+".bak" for the duration of the swap and restored if
// the final rename fails. A backup that already exists on entry belongs to an
// interrupted swap; it is never removed here and the swap is refused.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	if _, err := os.Lstat(backup); err == nil {
		return errors.Newf("previous copy of %s still parked at %s", destDir, backup)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot stat %s", backup)
	}

	parked := false
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
		parked = true
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if parked {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	if parked {
		_ = os.RemoveAll(backup)
	}
	return nil
}

// restoreBackup finishes a swap that was interrupted between its two
// renames; the caller holds the group lock exclusively. A group dir missing
// next to a parked backup gets the backup back. A backup left beside a group
// that loads means the swap completed and only its cleanup was lost.
func (s *Store) restoreBackup(id int) error {
	dir := s.groupDir(id)
	backup := s.backupDir(id)
	if _, err := os.Stat(backup); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "cannot stat %s", backup)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.Rename(backup, dir); err != nil {
			return errors.Wrapf(err, "cannot restore %s from %s", dir, backup)
		}
		return nil
	}
	if _, err := s.readManifest(id); err != nil {
		return errors.WithHintf(err, "a previous copy is parked at %s; run 'vectome clean %d' to discard both", backup, id)
	}
	if err := os.RemoveAll(backup); err != nil {
		return errors.Wrapf(err, "cannot remove %s", backup)
	}
	return nil
}
