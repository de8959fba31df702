package driver

import (
	"fmt"
	"log"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/bmberr"
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/codegen/llvmtext"
	"github.com/bmb-lang/bmbc/internal/codegen/wasmtext"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/lowering"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/optimize"
	"github.com/bmb-lang/bmbc/internal/position"
	"github.com/bmb-lang/bmbc/internal/proofcache"
	"github.com/bmb-lang/bmbc/internal/smt"
	"github.com/bmb-lang/bmbc/internal/typecheck"
)

// Result is everything one Compile call produces: the emitted text for
// whichever backend Config.Target selects, the warnings accumulated along
// the way, and the verification report for tooling that wants outcome
// detail beyond pass/fail (§6 "File formats produced", §7 "Warnings...
// never block").
type Result struct {
	LLVMText           string
	WASMText           string
	Diagnostics        []*diagnostic.Diagnostic
	VerificationReport *smt.VerificationReport
	Mir                *mir.MirProgram
}

// Compile runs the full pipeline (§5 "every pass is a function from
// MirProgram to MirProgram", extended upstream to cover type checking and
// verification): type check, lower to CIR, verify contracts, lower to
// MIR, optimize, emit. program is the already-parsed source (lexing and
// parsing are an external collaborator per internal/ast's own package
// doc); source is program's original bytes, used only to key the proof
// cache and compute its content hash.
//
// Cancellation follows §5's "either succeeds or returns an error; there
// is no partial-result contract": a returned error means no Result is
// meaningful, even if some stages ran to completion.
func Compile(cfg Config, sourcePath string, source []byte, program *ast.Program) (*Result, error) {
	log := newLogger(cfg.Verbose)
	log.Printf("compiling %s", sourcePath)

	tp, warnings, err := typecheck.CheckProgram(program)
	if err != nil {
		log.Printf("type check failed: %v", err)
		return nil, asStandardError(err, bmberr.CategoryType)
	}

	log.Printf("type check ok, %d warning(s)", len(warnings))

	cirProg := cir.Lower(tp)

	report, db, fileHash, err := verify(cfg, sourcePath, source, cirProg, log)
	if err != nil {
		return nil, err
	}

	facts := buildProvenFacts(cfg, cirProg, report)

	mirProg := lowering.Lower(tp, program, tp.Registry)

	pipeline := optimize.NewPipeline(toOptimizeLevel(cfg.OptLevel), toOptimizeFlags(cfg.Flags))
	pipeline.RunProgram(mirProg, facts)

	log.Printf("optimization settled after pass metrics: %d recorded change(s)", len(pipeline.Metrics))

	result := &Result{
		Diagnostics:        warnings,
		VerificationReport: report,
		Mir:                mirProg,
	}

	switch cfg.Target {
	case TargetWasm32, TargetWasm64:
		result.WASMText = wasmtext.EmitModule(mirProg, wasmtext.Options{Target: wasmtext.TargetStandalone})
	default:
		result.LLVMText = llvmtext.EmitModule(mirProg)
	}

	if cfg.CacheRoot != "" && db != nil {
		if err := saveProofDB(cfg.CacheRoot, sourcePath, fileHash, db); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// verify runs §4.2's verification stage per Config.VerificationMode: Trust
// skips the solver entirely (every contract is assumed, no proof cache
// interaction); Check and Sound both invoke smt.CirVerifier with the
// smt.Sound fallback mode and behave identically.
func verify(cfg Config, sourcePath string, source []byte, cirProg *cir.CirProgram, log *log.Logger) (*smt.VerificationReport, *proofcache.ProofDatabase, string, error) {
	fileHash := proofcache.HashSource(source)

	if cfg.VerificationMode == VerifyTrust {
		log.Printf("verification mode Trust: skipping solver")
		return &smt.VerificationReport{Functions: map[string]*smt.FunctionReport{}}, nil, fileHash, nil
	}

	db, err := loadProofDB(cfg.CacheRoot, sourcePath, fileHash)
	if err != nil {
		return nil, nil, fileHash, err
	}

	verifier := smt.NewVerifier()
	if cfg.SolverPath != "" {
		verifier = verifier.WithSolverPath(cfg.SolverPath)
	}

	if cfg.SolverTimeout > 0 {
		verifier = verifier.WithTimeout(cfg.SolverTimeout)
	}

	verifier = verifier.WithFallbackMode(smt.Sound)

	report := verifier.VerifyProgram(cirProg, db)

	db.UpdateFileHash(sourcePath, fileHash)
	db.InsertFacts(sourcePath, smt.ProofFactsFromReport(cirProg, report, fileHash))

	log.Printf("verification: %d function(s) carried a contract", len(report.Functions))

	return report, db, fileHash, nil
}

// buildProvenFacts derives the per-function cir.ProvenFactSet map the
// optimization pipeline consumes, empty (every pass treats that as
// "nothing proven") unless proof_optimizations is enabled (§4.4
// "Failure semantics").
func buildProvenFacts(cfg Config, cirProg *cir.CirProgram, report *smt.VerificationReport) map[string]*cir.ProvenFactSet {
	out := make(map[string]*cir.ProvenFactSet)

	if !cfg.Flags.ProofOptimizations || report == nil {
		return out
	}

	verified := report.VerifiedFunctionNames()

	for name, facts := range cir.ExtractVerifiedFacts(cirProg, verified) {
		out[name] = cir.DeriveProvenFacts(facts.Pre)
	}

	return out
}

func toOptimizeLevel(level OptLevel) optimize.Level {
	if level == OptDebug {
		return optimize.Debug
	}

	return optimize.Release
}

func toOptimizeFlags(f Flags) optimize.Flags {
	return optimize.Flags{
		ProofOptimizations: f.ProofOptimizations,
		FastCompile:        f.FastCompile,
		FastMath:           f.FastMath,
	}
}

// asStandardError tags err with category unless it is already a
// bmberr.StandardError (in which case its own category, set closer to the
// failure, is preserved), per §7's "errors carry a kind tag".
func asStandardError(err error, category bmberr.Category) error {
	if se, ok := err.(*bmberr.StandardError); ok {
		return se
	}

	return bmberr.New(category, "COMPILE_FAILURE", fmt.Sprintf("%v", err), position.Span{}, nil)
}
