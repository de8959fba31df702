package smt

import (
	"fmt"
	"time"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/proofcache"
)

// CirVerifier drives contract verification for a whole CirProgram, one
// function at a time, via an external SMT solver subprocess (§4.2).
type CirVerifier struct {
	solverPath   string
	timeout      time.Duration
	fallbackMode FallbackMode
}

// NewVerifier returns a verifier with the defaults a driver invocation
// without explicit CLI flags would use: a "z3" on PATH, a five-second
// per-function timeout, and sound fallback behavior.
func NewVerifier() *CirVerifier {
	return &CirVerifier{
		solverPath:   "z3",
		timeout:      5 * time.Second,
		fallbackMode: Sound,
	}
}

// WithSolverPath overrides the solver executable path.
func (v *CirVerifier) WithSolverPath(path string) *CirVerifier {
	v.solverPath = path

	return v
}

// WithTimeout overrides the per-function solver timeout.
func (v *CirVerifier) WithTimeout(d time.Duration) *CirVerifier {
	v.timeout = d

	return v
}

// WithFallbackMode sets the mode recorded on the report (§9 open
// question: Sound is the default, Trust is opt-in).
func (v *CirVerifier) WithFallbackMode(mode FallbackMode) *CirVerifier {
	v.fallbackMode = mode

	return v
}

// VerifyProgram verifies every contract-bearing function in prog, recording
// solver timing into db's aggregate Stats as each query completes.
func (v *CirVerifier) VerifyProgram(prog *cir.CirProgram, db *proofcache.ProofDatabase) *VerificationReport {
	report := &VerificationReport{
		Functions:    make(map[string]*FunctionReport),
		FallbackMode: v.fallbackMode,
	}

	for name, fn := range prog.Functions {
		if len(fn.Contract.Preconditions) == 0 && len(fn.Contract.Postconditions) == 0 {
			continue
		}

		report.Functions[name] = v.verifyFunction(fn, db)
	}

	return report
}

func (v *CirVerifier) verifyFunction(fn *cir.CirFunction, db *proofcache.ProofDatabase) *FunctionReport {
	q := translateFunction(fn)

	solver := solverInvocation{path: v.solverPath, timeout: v.timeout}

	output, elapsed, err := solver.run(q.script)
	if db != nil {
		db.RecordQuery(elapsed)
	}

	if err != nil {
		return &FunctionReport{
			Outcome:          Error,
			Err:              err,
			NeedsQuantifiers: q.needsQuantifiers,
			Span:             fn.Span,
		}
	}

	result := parseSatResult(output)

	switch result {
	case "unsat":
		return &FunctionReport{Outcome: Verified, NeedsQuantifiers: q.needsQuantifiers, Span: fn.Span}
	case "sat":
		return &FunctionReport{
			Outcome:          Failed,
			Model:            parseModel(output),
			NeedsQuantifiers: q.needsQuantifiers,
			Span:             fn.Span,
		}
	case "unknown":
		return &FunctionReport{Outcome: Unknown, NeedsQuantifiers: q.needsQuantifiers, Span: fn.Span}
	default:
		return &FunctionReport{
			Outcome:          Error,
			Err:              fmt.Errorf("smt: unrecognized solver response %q", result),
			NeedsQuantifiers: q.needsQuantifiers,
			Span:             fn.Span,
		}
	}
}

// ProofFactsFromReport emits one ProofFact per pre/postcondition of every
// Verified function in report; other outcomes produce no facts (§4.2).
func ProofFactsFromReport(prog *cir.CirProgram, report *VerificationReport, fileHash string) []proofcache.ProofFact {
	var facts []proofcache.ProofFact

	for name, fr := range report.Functions {
		if fr.Outcome != Verified {
			continue
		}

		fn, ok := prog.Functions[name]
		if !ok {
			continue
		}

		for _, p := range fn.Contract.Preconditions {
			facts = append(facts, proofcache.ProofFact{
				FunctionName: name,
				FileHash:     fileHash,
				Span:         fn.Span,
				Evidence:     proofcache.EvidencePreconditionAssumed,
				Scope:        proofcache.Scope{Function: name},
				Proposition:  p.String(),
			})
		}

		for _, p := range fn.Contract.Postconditions {
			facts = append(facts, proofcache.ProofFact{
				FunctionName: name,
				FileHash:     fileHash,
				Span:         fn.Span,
				Evidence:     proofcache.EvidenceSmtProof,
				Scope:        proofcache.Scope{Function: name},
				Proposition:  p.String(),
			})
		}
	}

	return facts
}
