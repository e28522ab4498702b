// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package runtime

import "context"

// RunLock is the non-Linux stub. Release is a no-op.
type RunLock struct{}

// AcquireRunLock always returns ErrRunLockUnavailable outside Linux.
func AcquireRunLock(context.Context, string, func()) (*RunLock, error) {
	return nil, ErrRunLockUnavailable
}

// Release is a no-op on non-Linux platforms.
func (l *RunLock) Release() error { return nil }
