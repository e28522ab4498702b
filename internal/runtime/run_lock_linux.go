// SPDX-License-Identifier: MPL-2.0

//go:build linux

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// RunLock holds an exclusive flock on a lock file. Two samplectl processes
// working on the same sample root would otherwise run package-manager
// scripts in the same directories at once.
//
// The zero-byte lock file is harmless if orphaned: the kernel releases the
// flock when the fd is closed, including on a crash.
type RunLock struct {
	file *os.File
}

// AcquireRunLock opens (or creates) the lock file at path and takes an
// exclusive flock. While another process holds it, onWait is called once and
// the lock is retried until it is free or ctx is done.
func AcquireRunLock(ctx context.Context, path string, onWait func()) (*RunLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	waited := false
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &RunLock{file: f}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}
		if !waited && onWait != nil {
			onWait()
		}
		waited = true

		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(runLockPollInterval):
		}
	}
}

// Release unlocks the flock and closes the file descriptor. It is safe to
// call multiple times; subsequent calls are no-ops.
func (l *RunLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	return errors.Join(unlockErr, closeErr)
}
