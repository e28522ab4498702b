// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"
)

// runLockPollInterval is how often a waiting AcquireRunLock retries the flock.
const runLockPollInterval = 100 * time.Millisecond

// ErrRunLockUnavailable is returned by AcquireRunLock on platforms without
// flock. Callers run unlocked in that case.
var ErrRunLockUnavailable = errors.New("run lock not available on this platform")

// RunLockPath returns the lock file guarding runs over the sample root.
// Every samplectl process computes the same path for the same root.
func RunLockPath(root string) string {
	return runLockPathWith(os.Getenv, root)
}

// runLockPathWith places the lock in $XDG_RUNTIME_DIR (per-user tmpfs),
// falling back to os.TempDir(). getenv is injected so tests do not mutate
// the process environment.
func runLockPathWith(getenv func(string) string, root string) string {
	dir := getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(filepath.Clean(root)))
	return filepath.Join(dir, fmt.Sprintf("samplectl-%016x.lock", h.Sum64()))
}
