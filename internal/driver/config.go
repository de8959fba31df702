// Package driver orchestrates a single BMB compilation: type checking,
// CIR lowering and SMT verification, MIR lowering, the optimization
// pipeline, and LLVM/WASM text emission (§5, §6, §7). It models the CLI
// contract spec.md §6 describes without being a CLI itself — cmd/bmbc is
// the thin wrapper that turns flags into a Config and calls Compile.
package driver

import "time"

// Target selects the output backend (§6 "target (native / wasm32 /
// wasm64)").
type Target int

const (
	TargetNative Target = iota
	TargetWasm32
	TargetWasm64
)

// OptLevel mirrors optimize.Level at the driver boundary so cmd/bmbc
// doesn't need to import internal/optimize directly.
type OptLevel int

const (
	OptDebug OptLevel = iota
	OptRelease
)

// VerificationMode selects how hard the driver tries to verify contracts
// before falling back (§6 "verification mode (Check / Trust / Sound)").
type VerificationMode int

const (
	// VerifyCheck runs the solver and reports failures/unknowns without
	// changing compilation behavior beyond the facts it can prove.
	VerifyCheck VerificationMode = iota
	// VerifyTrust accepts contracts as true without invoking the solver,
	// trading soundness for speed. The driver skips the verification
	// stage entirely; no smt fallback mode is involved.
	VerifyTrust
	// VerifySound runs the solver exactly as VerifyCheck does (both use
	// the smt.Sound fallback mode): any contract the solver cannot
	// confirm contributes no proof fact rather than an assumed one.
	VerifySound
)

// Flags mirrors spec.md §6's named feature flags.
type Flags struct {
	ProofOptimizations bool
	FastCompile        bool
	FastMath           bool
	NoPrelude          bool
}

// Config is the CLI contract of spec.md §6 as a plain struct, populated by
// the out-of-scope CLI layer (cmd/bmbc), mirroring the teacher's
// internal/cli/common.go Config pattern of a shared options struct
// consumed by multiple cmd/ binaries.
type Config struct {
	SourcePaths  []string
	IncludePaths []string
	PreludePath  string
	OutputPath   string

	Target           Target
	OptLevel         OptLevel
	VerificationMode VerificationMode
	Flags            Flags

	// SolverPath and SolverTimeout configure the SMT subprocess (§4.2);
	// zero values fall back to smt.NewVerifier's own defaults.
	SolverPath    string
	SolverTimeout time.Duration

	// CacheRoot is the per-project proof cache directory (§4.7); empty
	// disables the cache (every run verifies from scratch).
	CacheRoot string

	Verbose bool
}
