package landmarks

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Describe reports the status of every catalog group without building or
// repairing anything.
func (s *Store) Describe() (*Description, error) {
	d := &Description{CacheLocation: s.landmarksDir()}
	if _, err := os.Stat(d.CacheLocation); err == nil {
		d.CacheExists = true
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "cannot stat cache %s", d.CacheLocation)
	}

	for _, spec := range s.catalog.Groups() {
		st := GroupStatus{
			ID:           spec.ID,
			Name:         spec.Name,
			Description:  spec.Description,
			Landmarks:    len(spec.Queries),
			ManifestPath: s.ManifestPath(spec.ID),
			Status:       NotBuilt{},
		}
		if d.CacheExists {
			status, err := s.status(spec.ID)
			if err != nil {
				return nil, err
			}
			st.Status = status
			if b, ok := status.(Built); ok {
				st.Landmarks = len(b.Manifest.Landmarks)
			}
		}
		d.Groups = append(d.Groups, st)
	}
	return d, nil
}

// status classifies one group under a shared lock. Lock failures are
// returned; every cache problem becomes a Corrupt status.
func (s *Store) status(id int) (BuildStatus, error) {
	unlock, err := acquireLock(s.lockPath(id), true, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.readManifest(id)
	switch {
	case errors.Is(err, ErrNotBuilt):
		return NotBuilt{}, nil
	case err != nil:
		return Corrupt{Reason: err.Error()}, nil
	}
	if err := s.checkEntries(id, m); err != nil {
		return Corrupt{Reason: err.Error()}, nil
	}
	return Built{Manifest: *m}, nil
}
