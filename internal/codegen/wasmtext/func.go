package wasmtext

import (
	"fmt"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// wasmEmitter holds the per-function state emitFunction threads through
// one function's body. Unlike internal/codegen/llvmtext's SSA registers,
// WAT has no native unstructured-branch instruction set, so every MIR
// block becomes a case of a single dispatch loop (see emitDispatch) and
// every MIR place becomes a real mutable local: InstrConst/InstrCopy get
// an ordinary local.set rather than an alias, since WAT's local.get/set
// pair makes a copy free to express directly.
type wasmEmitter struct {
	b          *strings.Builder
	fn         *mir.MirFunction
	pool       *stringData
	retTypes   map[string]*types.Type
	blockIndex map[string]int
	placeTypes map[string]*types.Type
	indent     int

	// currentLabel is the label of the block whose body/terminator is
	// being emitted right now, used by writePhiAssignments to pick out
	// which successor Phi operand belongs to this edge.
	currentLabel string
}

func emitFunction(b *strings.Builder, fn *mir.MirFunction, pool *stringData, retTypes map[string]*types.Type) {
	e := &wasmEmitter{
		b:          b,
		fn:         fn,
		pool:       pool,
		retTypes:   retTypes,
		blockIndex: make(map[string]int, len(fn.Blocks)),
		placeTypes: make(map[string]*types.Type),
	}

	for i, blk := range fn.Blocks {
		e.blockIndex[blk.Label] = i
	}

	e.emit()
}

func (e *wasmEmitter) emit() {
	params := make([]string, 0, len(e.fn.Params))

	for _, p := range e.fn.Params {
		e.placeTypes[p.Name] = p.Type
		params = append(params, fmt.Sprintf("(param $%s %s)", p.Name, watType(p.Type)))
	}

	result := ""
	if e.fn.Return != nil && e.fn.Return.Kind != types.KindUnit {
		result = fmt.Sprintf(" (result %s)", watType(e.fn.Return))
	}

	fmt.Fprintf(e.b, "  (func $%s %s%s\n", e.fn.Name, strings.Join(params, " "), result)
	e.indent = 2

	e.declareLocals()
	e.emitDispatch()

	e.indent = 1
	e.line(")")
}

// declareLocals writes one (local $name type) per place this function
// assigns anywhere in its body (a MIR place is defined exactly once, so
// this also collects every place's type for later operand() lookups),
// plus the $state dispatch-loop counter.
func (e *wasmEmitter) declareLocals() {
	e.line("(local $state i32)")

	seen := make(map[string]bool)

	for _, blk := range e.fn.Blocks {
		for _, instr := range blk.Instructions {
			e.noteLocal(instr.Dest, seen)
		}
	}

	for name, t := range e.placeTypes {
		if seen[name] {
			fmt.Fprintf(e.b, "%s(local $%s %s)\n", e.indentStr(), name, watType(t))
		}
	}
}

func (e *wasmEmitter) noteLocal(p mir.Place, seen map[string]bool) {
	if p.Name == "" || seen[p.Name] {
		return
	}

	seen[p.Name] = true
	e.placeTypes[p.Name] = p.Type
}

func (e *wasmEmitter) indentStr() string { return strings.Repeat("  ", e.indent) }

func (e *wasmEmitter) line(s string) {
	fmt.Fprintf(e.b, "%s%s\n", e.indentStr(), s)
}

// emitDispatch lowers fn's arbitrary block graph to WAT's structured
// control flow via a state-machine loop: every terminator sets $state to
// its target block's index and branches back to the loop's br_table
// rather than jumping directly, so no block ever needs to assume its
// caller already landed in the right lexical position (§9 treats backend
// control-flow strategy as an implementation choice the spec leaves
// open; this is the standard technique for emitting valid structured
// control flow from an arbitrary CFG, sometimes called a relooper
// fallback).
func (e *wasmEmitter) emitDispatch() {
	n := len(e.fn.Blocks)
	if n == 0 {
		return
	}

	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("$blk%d", i)
	}

	e.line("(local.set $state (i32.const 0))")
	e.line("(loop $dispatch")
	e.indent++
	e.openBlock(n-1, labels)
	e.indent--
	e.line(")")
}

func (e *wasmEmitter) openBlock(i int, labels []string) {
	e.line(fmt.Sprintf("(block %s", labels[i]))
	e.indent++

	if i == 0 {
		table := append(append([]string{}, labels...), labels[len(labels)-1])
		e.line(fmt.Sprintf("(br_table %s (local.get $state))", strings.Join(table, " ")))
	} else {
		e.openBlock(i-1, labels)
	}

	e.indent--
	e.line(")")
	e.emitBlockBody(e.fn.Blocks[i])
}

// gotoBlock writes the state-set-and-redispatch sequence every non-return
// terminator arm ends with.
func (e *wasmEmitter) gotoBlock(label string) {
	idx := e.blockIndex[label]
	e.line(fmt.Sprintf("(local.set $state (i32.const %d))", idx))
	e.line("(br $dispatch)")
}
