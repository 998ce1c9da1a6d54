package landmarks

import "github.com/cockroachdb/errors"

var (
	// ErrNotBuilt is returned when a group is read before it was ever built.
	ErrNotBuilt = errors.New("landmark group not built")
	// ErrBuild is returned when a build could not obtain every landmark sketch.
	ErrBuild = errors.New("landmark build failed")
	// ErrCacheCorruption is returned when a manifest references sketch data
	// that is missing or unreadable. The cache is never repaired silently.
	ErrCacheCorruption = errors.New("landmark cache corrupted")
	// ErrLocked is returned when the group lock could not be taken in time.
	ErrLocked = errors.New("landmark group is locked")
)

func notBuilt(id int, root string) error {
	return errors.WithHintf(
		errors.Wrapf(ErrNotBuilt, "%s at %s", GroupName(id), root),
		"run 'vectome build %d' first", id,
	)
}

func corrupted(id int, format string, args ...any) error {
	err := errors.Mark(errors.Newf(format, args...), ErrCacheCorruption)
	err = errors.Wrapf(err, "%s: %s", GroupName(id), ErrCacheCorruption)
	return errors.WithHintf(err, "run 'vectome build %d --force' to rebuild it", id)
}

// interruptedSwap reports a group whose directory is missing while the copy
// parked by a swap is still on disk.
func interruptedSwap(id int, backup string) error {
	err := errors.Mark(errors.Newf("interrupted swap left the group at %s", backup), ErrCacheCorruption)
	err = errors.Wrapf(err, "%s: %s", GroupName(id), ErrCacheCorruption)
	return errors.WithHintf(err, "run 'vectome build %d' to restore it", id)
}

func buildFailed(id int, err error) error {
	return errors.Mark(errors.Wrapf(err, "%s: %s", GroupName(id), ErrBuild), ErrBuild)
}
