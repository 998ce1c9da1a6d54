package landmarks

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
)

const lockPoll = 100 * time.Millisecond

// acquireLock takes the group lock at path, exclusive for writers and shared
// for readers, polling until timeout. The returned func releases it.
func acquireLock(path string, shared bool, timeout time.Duration) (func(), error) {
	l := flock.New(path)
	try := l.TryLock
	if shared {
		try = l.TryRLock
	}
	deadline := time.Now().Add(timeout)
	for {
		locked, err := try()
		if err != nil {
			return func() {}, errors.Wrapf(err, "cannot acquire lock %s", path)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, errors.Wrapf(ErrLocked, "another build holds %s", path)
		}
		time.Sleep(lockPoll)
	}
}
