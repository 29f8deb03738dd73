// Package lock provides the named, cross-process lock that keeps at most one
// run working on the calendar at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrNotAcquired is returned when the lock is still held by someone else
// once the timeout expires.
var ErrNotAcquired = errors.New("lock not acquired")

const retryDelay = 100 * time.Millisecond

type FileLock struct {
	fl *flock.Flock
}

// New returns a lock backed by the file at path. The parent directory is
// created when missing.
func New(path string) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	return &FileLock{fl: flock.New(path)}, nil
}

// TryLock waits up to timeout for the lock. It returns ErrNotAcquired when
// another holder keeps it for longer.
func (l *FileLock) TryLock(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := l.fl.TryLockContext(ctx, retryDelay)
	if locked {
		return nil
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return ErrNotAcquired
	}
	return fmt.Errorf("lock %s: %w", l.fl.Path(), err)
}

// Locked reports whether this FileLock currently holds the lock.
func (l *FileLock) Locked() bool {
	return l.fl.Locked()
}

func (l *FileLock) Unlock() error {
	return l.fl.Unlock()
}
