//go:build !unix

package proofcache

import (
	"fmt"
	"os"
)

// FileLock is the non-Unix fallback: open-for-exclusive-access without an
// advisory flock syscall. Single-writer discipline still holds because
// the driver itself serializes cache access (§5); this only loses
// protection against a second, independent OS process racing the cache.
type FileLock struct {
	f *os.File
}

// Lock opens (creating if absent) path for read-write access.
func Lock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("proofcache: open lock file: %w", err)
	}

	return &FileLock{f: f}, nil
}

// Unlock closes the backing file.
func (l *FileLock) Unlock() error {
	return l.f.Close()
}
