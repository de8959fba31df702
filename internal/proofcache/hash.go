package proofcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSource computes the content hash a ProofDatabase entry is keyed
// against. §4.2 calls this a "SHA-ish hash of the source file"; plain
// SHA-256 over the raw bytes satisfies that without inventing a weaker
// scheme.
func HashSource(content []byte) string {
	sum := sha256.Sum256(content)

	return hex.EncodeToString(sum[:])
}
