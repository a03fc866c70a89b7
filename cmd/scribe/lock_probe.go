package main

import (
	"github.com/gofrs/flock"
)

// probeLock attempts a non-blocking acquire of the daemon lock file. Success
// means no daemon holds it; the probe releases immediately.
func probeLock(path string) bool {
	lock := flock.New(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return false
	}
	if acquired {
		_ = lock.Unlock()
		return false
	}
	return true
}
