package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/cerp-labs/vexcol/internal/vecerrors"
)

// writeLockName is the advisory lock file guarding a collection directory
// against a second concurrent writer — two processes writing the same
// collection directory is otherwise undefined; this turns that into a
// reported concurrency error instead.
const writeLockName = ".collection.lock"

// WriteLock is a cross-process advisory lock scoped to one collection
// directory, held for the duration of a checkpoint. Loading a snapshot does
// not take it.
type WriteLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewWriteLock creates a lock handle for dir. The lock file is created on
// first TryLock, not here.
func NewWriteLock(dir string) *WriteLock {
	path := filepath.Join(dir, writeLockName)
	return &WriteLock{path: path, flock: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking. A false return
// with a nil error means another process currently holds it.
func (l *WriteLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, vecerrors.IO("failed to create collection directory for lock", err)
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return false, vecerrors.Concurrency(fmt.Sprintf("failed to acquire write lock at %q", l.path), err)
	}
	if ok {
		l.locked = true
	}
	return ok, nil
}

// Unlock releases the lock. Safe to call multiple times.
func (l *WriteLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return vecerrors.Concurrency("failed to release write lock", err)
	}
	l.locked = false
	return nil
}
