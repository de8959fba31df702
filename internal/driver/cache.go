package driver

import (
	"os"
	"path/filepath"

	"github.com/bmb-lang/bmbc/internal/bmberr"
	"github.com/bmb-lang/bmbc/internal/proofcache"
)

// cacheFilePath mirrors spec.md §6's "path segments preserving the source
// module path; filename is hash-derived": the directory structure under
// root follows sourcePath's own directory, and only the leaf filename is
// derived from the source's content hash, so editing a file invalidates
// exactly its own cache entry.
func cacheFilePath(root, sourcePath, hash string) string {
	dir := filepath.Dir(sourcePath)
	return filepath.Join(root, dir, hash+".json")
}

func lockPath(root string) string { return filepath.Join(root, ".bmbc-cache.lock") }

// loadProofDB reads root's persisted ProofDatabase for sourcePath, or an
// empty one if the cache is disabled (root == "") or no entry exists yet
// (§4.7). Reads are protected by the same advisory flock writes take,
// mirroring §5's "the cache is owned by the compilation driver; no two
// stages mutate it concurrently" for the multi-process case two bmbc
// invocations targeting the same cache root represent.
func loadProofDB(root, sourcePath, hash string) (*proofcache.ProofDatabase, error) {
	if root == "" {
		return proofcache.NewProofDatabase(), nil
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, bmberr.IOError(root, err)
	}

	lock, err := proofcache.Lock(lockPath(root))
	if err != nil {
		return nil, bmberr.IOError(lockPath(root), err)
	}
	defer lock.Unlock()

	path := cacheFilePath(root, sourcePath, hash)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return proofcache.NewProofDatabase(), nil
	}

	if err != nil {
		return nil, bmberr.IOError(path, err)
	}

	db, err := proofcache.Deserialize(data)
	if err != nil {
		return nil, bmberr.IOError(path, err)
	}

	return db, nil
}

// saveProofDB persists db under root for sourcePath; a no-op when the
// cache is disabled.
func saveProofDB(root, sourcePath, hash string, db *proofcache.ProofDatabase) error {
	if root == "" {
		return nil
	}

	path := cacheFilePath(root, sourcePath, hash)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bmberr.IOError(path, err)
	}

	lock, err := proofcache.Lock(lockPath(root))
	if err != nil {
		return bmberr.IOError(lockPath(root), err)
	}
	defer lock.Unlock()

	data, err := db.Serialize()
	if err != nil {
		return bmberr.IOError(path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return bmberr.IOError(path, err)
	}

	return nil
}
