// Package wasmtext emits a WAT (WebAssembly text format) module from
// optimized MIR (§4.6). Like internal/codegen/llvmtext it owns its own
// constant pool and string interning and shares no emission code with that
// package (§9 "Backend duality"); the only shared input is the MirProgram.
package wasmtext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// Target selects which WASM host environment the module is shaped for
// (§4.6 "Responsibility").
type Target int

const (
	TargetWASI Target = iota
	TargetBrowser
	TargetStandalone
)

// defaultMemoryPages is the page count a module declares when the caller
// does not override it via WithMemory (§4.6 "configurable memory page
// count").
const defaultMemoryPages = 16

// stringDataBase is where the first interned string's data segment starts:
// offsets 0-1024 are reserved for globals/IO, 1024-2048 is padding (§4.6
// "String data section").
const stringDataBase = 2048

// Options configures one EmitModule call.
type Options struct {
	Target Target
	Pages  int // 0 means defaultMemoryPages
}

// WithMemory returns opts with its page count overridden (§4.6
// "with_memory(pages) override").
func (opts Options) WithMemory(pages int) Options {
	opts.Pages = pages
	return opts
}

func (opts Options) pages() int {
	if opts.Pages <= 0 {
		return defaultMemoryPages
	}

	return opts.Pages
}

// EmitModule renders prog as a WAT text module for the given target
// (§4.6). String literals are interned and deduplicated into data segments
// starting at offset 2048 (§8 property 11: every segment offset is unique
// and >= 2048).
func EmitModule(prog *mir.MirProgram, opts Options) string {
	var b strings.Builder

	pool := newStringData()
	names := sortedFunctionNames(prog)

	for _, name := range names {
		collectStrings(prog.Functions[name], pool)
	}

	fmt.Fprintf(&b, ";; module bmb (%s)\n", targetName(opts.Target))
	b.WriteString("(module\n")
	fmt.Fprintf(&b, "  (memory %d)\n", opts.pages())

	if opts.Target == TargetWASI {
		b.WriteString("  (import \"wasi_snapshot_preview1\" \"fd_write\" (func $fd_write (param i32 i32 i32 i32) (result i32)))\n")
	}

	emitExterns(&b, prog)
	pool.emit(&b)

	retTypes := make(map[string]*types.Type, len(prog.Functions))
	for name, fn := range prog.Functions {
		retTypes[name] = fn.Return
	}

	for _, name := range names {
		emitFunction(&b, prog.Functions[name], pool, retTypes)
	}

	b.WriteString(")\n")

	return b.String()
}

func targetName(t Target) string {
	switch t {
	case TargetBrowser:
		return "browser"
	case TargetStandalone:
		return "standalone"
	default:
		return "wasi"
	}
}

func sortedFunctionNames(prog *mir.MirProgram) []string {
	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
