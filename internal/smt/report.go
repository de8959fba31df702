// Package smt implements §4.2's verification algorithm: translating CIR
// contracts to SMT-LIB2, driving an external solver subprocess, and
// classifying each function's outcome.
package smt

import "github.com/bmb-lang/bmbc/internal/position"

// Outcome classifies one function's verification result.
type Outcome int

const (
	// Verified means the solver proved unsat on (pre ∧ ¬post): the
	// postcondition holds whenever the precondition does.
	Verified Outcome = iota
	// Failed means the solver found a satisfying model for (pre ∧ ¬post):
	// a counterexample to the postcondition.
	Failed
	// Unknown means the solver answered `unknown`.
	Unknown
	// Error means the solver subprocess could not be run, exceeded its
	// timeout, or gave a response other than sat/unsat/unknown.
	Error
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	case Unknown:
		return "unknown"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// FunctionReport is one function's verification outcome.
type FunctionReport struct {
	Outcome          Outcome
	Model            map[string]string // variable -> value, populated on Failed
	NeedsQuantifiers bool
	Err              error
	Span             position.Span
}

// FallbackMode names the policy for contracts the solver cannot confirm
// (§4.2 "Failure semantics", §9 "Open question"). The default is Sound.
// CirVerifier only records the mode on the VerificationReport: its
// queries, its outcomes and ProofFactsFromReport's facts are the same
// under either mode.
type FallbackMode int

const (
	// Sound drops no facts: every check the verifier cannot confirm stays
	// in place. This is the default per the spec's explicit policy.
	Sound FallbackMode = iota
	// Trust labels a report made under the trust policy; nothing in this
	// package assumes a contract holds because of it.
	Trust
)

func (m FallbackMode) String() string {
	if m == Trust {
		return "trust"
	}

	return "sound"
}

// VerificationReport is the result of verifying an entire CirProgram.
type VerificationReport struct {
	Functions    map[string]*FunctionReport
	FallbackMode FallbackMode
}

// VerifiedFunctionNames returns the set of function names whose outcome is
// Verified, the input extract_verified_facts (§4.2) filters by.
func (r *VerificationReport) VerifiedFunctionNames() map[string]bool {
	out := make(map[string]bool)

	for name, fr := range r.Functions {
		if fr.Outcome == Verified {
			out[name] = true
		}
	}

	return out
}
