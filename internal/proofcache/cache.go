package proofcache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the current on-disk schema version. Bumped whenever the
// envelope or FileEntry shape changes incompatibly.
const SchemaVersion = "1.0.0"

// schemaConstraint accepts any cache written by a 1.x release of this
// schema; a cache from an incompatible major version is rejected rather
// than partially trusted.
var schemaConstraint = mustConstraint("^1.0.0")

func mustConstraint(c string) *semver.Constraints {
	parsed, err := semver.NewConstraint(c)
	if err != nil {
		panic(err) // constant string; a parse failure here is a programming error.
	}

	return parsed
}

// FileEntry is one source file's cached facts plus the content hash they
// were derived from, so an unrelated edit elsewhere never invalidates it.
type FileEntry struct {
	Hash  string      `json:"hash"`
	Facts []ProofFact `json:"facts"`
}

// Stats accumulates verification activity across a compilation session
// (§4.2 "Aggregate statistics (total queries, total verification time)").
type Stats struct {
	TotalQueries         int64         `json:"total_queries"`
	TotalVerificationTime time.Duration `json:"total_verification_time_ns"`
}

// ProofDatabase is the in-memory, JSON-serializable proof cache, keyed by
// source file path so invalidate_file(path) can match by string prefix
// (§8 property 2); each entry separately carries the file's content hash,
// which is what actually gates whether cached facts are still valid.
type ProofDatabase struct {
	Schema  string                `json:"schema"`
	Entries map[string]*FileEntry `json:"entries"`
	Stats   Stats                 `json:"stats"`
}

// NewProofDatabase returns an empty database stamped with the current
// schema version.
func NewProofDatabase() *ProofDatabase {
	return &ProofDatabase{
		Schema:  SchemaVersion,
		Entries: make(map[string]*FileEntry),
	}
}

// UpdateFileHash records path's current content hash. If the hash changed
// since the last recorded value, the file's cached facts are dropped: they
// were derived from the old content and no longer apply.
func (db *ProofDatabase) UpdateFileHash(path, hash string) {
	entry, ok := db.Entries[path]
	if !ok {
		db.Entries[path] = &FileEntry{Hash: hash}

		return
	}

	if entry.Hash != hash {
		entry.Hash = hash
		entry.Facts = nil
	}
}

// HasCurrentHash reports whether path's cached hash matches hash, i.e.
// whether cached facts for path (if any) are still trustworthy.
func (db *ProofDatabase) HasCurrentHash(path, hash string) bool {
	entry, ok := db.Entries[path]

	return ok && entry.Hash == hash
}

// InsertFacts appends verified facts for path, which must already have a
// current hash recorded via UpdateFileHash.
func (db *ProofDatabase) InsertFacts(path string, facts []ProofFact) {
	entry, ok := db.Entries[path]
	if !ok {
		entry = &FileEntry{}
		db.Entries[path] = entry
	}

	entry.Facts = append(entry.Facts, facts...)
}

// FactsForFunction retrieves every cached fact across every file for the
// named function (§4.7 "retrieve by function id").
func (db *ProofDatabase) FactsForFunction(functionName string) []ProofFact {
	var out []ProofFact

	for _, entry := range db.Entries {
		for _, f := range entry.Facts {
			if f.FunctionName == functionName {
				out = append(out, f)
			}
		}
	}

	return out
}

// InvalidateFile removes every entry whose key starts with pathPrefix,
// returning the number of entries removed (§4.2, §8 property 2).
func (db *ProofDatabase) InvalidateFile(pathPrefix string) int {
	removed := 0

	for path := range db.Entries {
		if strings.HasPrefix(path, pathPrefix) {
			delete(db.Entries, path)
			removed++
		}
	}

	return removed
}

// RecordQuery folds one solver invocation's duration into the session's
// aggregate statistics.
func (db *ProofDatabase) RecordQuery(d time.Duration) {
	db.Stats.TotalQueries++
	db.Stats.TotalVerificationTime += d
}

// Serialize renders the database as JSON (§4.7 "serialize/deserialize as
// JSON").
func (db *ProofDatabase) Serialize() ([]byte, error) {
	return json.MarshalIndent(db, "", "  ")
}

// Deserialize parses a JSON-encoded database, rejecting one written by an
// incompatible schema version rather than risk silently misreading it.
func Deserialize(data []byte) (*ProofDatabase, error) {
	var db ProofDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("proofcache: decode: %w", err)
	}

	v, err := semver.NewVersion(db.Schema)
	if err != nil {
		return nil, fmt.Errorf("proofcache: invalid schema version %q: %w", db.Schema, err)
	}

	if !schemaConstraint.Check(v) {
		return nil, fmt.Errorf("proofcache: schema version %s is not compatible with %s", db.Schema, schemaConstraint)
	}

	if db.Entries == nil {
		db.Entries = make(map[string]*FileEntry)
	}

	return &db, nil
}
