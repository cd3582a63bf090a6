package util

import (
	"github.com/gofrs/flock"
	"github.com/hightail/wilson-sub000/internal/errors"
)

// Lockfile is an advisory, process-level lock on a file. It is used to assert that only one
// process owns a cache directory at a time.
type Lockfile struct {
	*flock.Flock
}

func NewLockfile(filename string) *Lockfile {
	return &Lockfile{
		flock.New(filename),
	}
}

// TryAcquire takes the lock without blocking and reports an error if another process holds it.
func (lockfile *Lockfile) TryAcquire() error {
	locked, err := lockfile.TryLock()
	if err != nil {
		return errors.New(err)
	}

	if !locked {
		return errors.New(LockHeldError{Path: lockfile.Path()})
	}

	return nil
}

// Release unlocks the file if it is held.
func (lockfile *Lockfile) Release() error {
	if !lockfile.Locked() {
		return nil
	}

	return errors.New(lockfile.Unlock())
}

// LockHeldError is returned when the lock is owned by someone else.
type LockHeldError struct {
	Path string
}

func (err LockHeldError) Error() string {
	return "lock " + err.Path + " is held by another process, refusing to share the cache directory"
}
