package store

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock acquires the exclusive project lock that serializes mutating
// commands. Returns the flock handle (caller must defer Unlock) or
// ErrLocked if another command already holds it.
func (s *Store) Lock() (*flock.Flock, error) {
	fl := flock.New(s.LockPath())
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire project lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return fl, nil
}

// Unlock releases a lock acquired with Lock. Safe on nil.
func Unlock(fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
}
