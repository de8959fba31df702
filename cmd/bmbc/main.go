// Package main is the bmbc command-line entry point: a thin wrapper that
// turns flags into a driver.Config and calls driver.Compile (§6). Parsing
// BMB source into an *ast.Program is an external collaborator this module
// does not implement; the scaffolding below shows where it would plug in.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/bmberr"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/driver"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		target      = flag.String("target", "native", "output target: native | wasm32 | wasm64")
		optLevel    = flag.String("opt", "debug", "optimization level: debug | release")
		verifyMode  = flag.String("verify", "sound", "verification mode: check | trust | sound")
		output      = flag.String("o", "", "output path (default: stdout)")
		prelude     = flag.String("prelude", "", "path to the prelude module")
		noPrelude   = flag.Bool("no-prelude", false, "skip loading the prelude")
		proofOpt    = flag.Bool("proof-optimizations", false, "enable proof-guided optimizations")
		fastCompile = flag.Bool("fast-compile", false, "trade optimization thoroughness for compile speed")
		fastMath    = flag.Bool("fast-math", false, "allow reassociation unsafe for NaN/Inf")
		cacheRoot   = flag.String("cache-dir", "", "proof cache directory (empty disables caching)")
		solverPath  = flag.String("solver", "z3", "SMT solver executable")
		timeout     = flag.Duration("solver-timeout", 5*time.Second, "per-function solver timeout")
		verbose     = flag.Bool("v", false, "verbose logging to stderr")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("bmbc %s (%s)\n", version, commit)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "bmbc: no input file specified")
		flag.Usage()
		os.Exit(1)
	}

	cfg := driver.Config{
		SourcePaths:      args,
		PreludePath:      *prelude,
		OutputPath:       *output,
		Target:           parseTarget(*target),
		OptLevel:         parseOptLevel(*optLevel),
		VerificationMode: parseVerificationMode(*verifyMode),
		Flags: driver.Flags{
			ProofOptimizations: *proofOpt,
			FastCompile:        *fastCompile,
			FastMath:           *fastMath,
			NoPrelude:          *noPrelude,
		},
		SolverPath:    *solverPath,
		SolverTimeout: *timeout,
		CacheRoot:     *cacheRoot,
		Verbose:       *verbose,
	}

	program, source, err := loadProgram(args[0])
	if err != nil {
		exitWithError(err)
	}

	res, err := driver.Compile(cfg, args[0], source, program)
	if err != nil {
		exitWithError(err)
	}

	if text := diagnostic.Format(res.Diagnostics, nil); text != "" {
		fmt.Fprintln(os.Stderr, text)
	}

	if err := writeOutput(cfg, res); err != nil {
		exitWithError(err)
	}
}

// loadProgram would invoke the parser this module does not carry; every
// caller supplying an *ast.Program today does so in-process (see
// internal/driver's own tests). A real deployment wires a parser package
// here.
func loadProgram(path string) (*ast.Program, []byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, bmberr.IOError(path, err)
	}

	return nil, nil, bmberr.InternalError("loadProgram", fmt.Sprintf("no parser wired for %s (%d bytes read)", path, len(source)))
}

func writeOutput(cfg driver.Config, res *driver.Result) error {
	text := res.LLVMText
	if cfg.Target == driver.TargetWasm32 || cfg.Target == driver.TargetWasm64 {
		text = res.WASMText
	}

	if cfg.OutputPath == "" {
		fmt.Print(text)
		return nil
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(text), 0o644); err != nil {
		return bmberr.IOError(cfg.OutputPath, err)
	}

	return nil
}

func parseTarget(s string) driver.Target {
	switch s {
	case "wasm32":
		return driver.TargetWasm32
	case "wasm64":
		return driver.TargetWasm64
	default:
		return driver.TargetNative
	}
}

func parseOptLevel(s string) driver.OptLevel {
	if s == "release" {
		return driver.OptRelease
	}

	return driver.OptDebug
}

func parseVerificationMode(s string) driver.VerificationMode {
	switch s {
	case "check":
		return driver.VerifyCheck
	case "trust":
		return driver.VerifyTrust
	default:
		return driver.VerifySound
	}
}

// exitWithError prints err and exits non-zero, tagging the error's kind
// when it carries one (§6 "exit codes 0/non-zero; errors carry a kind
// tag").
func exitWithError(err error) {
	if se, ok := err.(*bmberr.StandardError); ok {
		fmt.Fprintf(os.Stderr, "bmbc: %s: %s\n", se.Category, se.Message)
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "bmbc: %v\n", err)
	os.Exit(1)
}
