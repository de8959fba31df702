//go:build unix

package proofcache

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock is an advisory lock over the cache's backing file, held for the
// duration of a read-modify-write cycle so two compiler invocations never
// interleave writes (§5 "the cache is owned by the compilation driver; no
// two stages mutate it concurrently").
type FileLock struct {
	f *os.File
}

// Lock opens (creating if absent) path and takes an exclusive advisory
// flock on it, blocking until available.
func Lock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("proofcache: open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()

		return nil, fmt.Errorf("proofcache: flock: %w", err)
	}

	return &FileLock{f: f}, nil
}

// Unlock releases the advisory lock and closes the backing file.
func (l *FileLock) Unlock() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()

		return fmt.Errorf("proofcache: unflock: %w", err)
	}

	return l.f.Close()
}
