// Package proofcache persists verified ProofFacts keyed by source file
// hash, so an edit to one file never forces re-verification of another
// (§4.2, §4.7).
package proofcache

import "github.com/bmb-lang/bmbc/internal/position"

// EvidenceKind discriminates how a ProofFact came to be trusted.
type EvidenceKind int

const (
	// EvidencePreconditionAssumed marks a fact the verifier took on faith
	// because it is itself a precondition (an assumption, not a proof).
	EvidencePreconditionAssumed EvidenceKind = iota
	// EvidenceSmtProof marks a fact the solver actually discharged.
	EvidenceSmtProof
)

func (k EvidenceKind) String() string {
	if k == EvidenceSmtProof {
		return "smt-proof"
	}

	return "precondition-assumed"
}

// Scope identifies where within a program a ProofFact applies. Only
// per-function scope exists today; the type exists so a future
// module/global scope does not require a ProofFact field change.
type Scope struct {
	Function string
}

// ProofFact is a verified precondition or postcondition, keyed by function
// identity (name + file hash + span) and carrying its evidence provenance
// (§3, glossary "Proof fact").
type ProofFact struct {
	FunctionName string
	FileHash     string
	Span         position.Span
	Evidence     EvidenceKind
	Scope        Scope
	Proposition  string // rendered form (cir.Proposition.String()); the cache does not depend on internal/cir
}

// Key returns the fact's file hash. ProofDatabase does not store facts
// under it: entries are keyed by source path, and InvalidateFile matches
// path prefixes.
func (f ProofFact) Key() string { return f.FileHash }
