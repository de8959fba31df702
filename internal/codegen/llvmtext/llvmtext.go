// Package llvmtext emits textual LLVM IR from optimized MIR (§4.5). It owns
// its own string interning and constant pool; the only shared input with
// internal/codegen/wasmtext is the MirProgram itself (§9 "Backend duality").
//
// The backend cannot fail on a well-typed program: missing type information
// defaults to i64 for places and void for unknown calls, mirroring the
// teacher's EmitX64 in spirit (a best-effort textual emitter over an IR,
// walking instructions by kind and writing to a strings.Builder) but
// producing SSA-form LLVM IR instead of naive stack-slot assembly.
package llvmtext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// EmitModule renders prog as a complete LLVM IR text module: string globals
// first (so every function body can reference them by name), external
// runtime declarations next, then one function definition per MirFunction in
// name order (MirProgram.Functions is a map; sorting keys is what makes
// output deterministic across runs, which property 9's "exactly one global
// per literal" test and the golden scenarios in §8 depend on).
func EmitModule(prog *mir.MirProgram) string {
	var b strings.Builder

	pool := newStringPool()
	names := sortedFunctionNames(prog)

	for _, name := range names {
		collectStrings(prog.Functions[name], pool)
	}

	b.WriteString("; module bmb\n\n")

	pool.emit(&b)

	emitExterns(&b, usedExterns(prog))

	retTypes := make(map[string]*types.Type, len(prog.Functions))
	paramTypes := make(map[string][]*types.Type, len(prog.Functions))

	for name, fn := range prog.Functions {
		retTypes[name] = fn.Return

		params := make([]*types.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}

		paramTypes[name] = params
	}

	for _, name := range names {
		b.WriteString("\n")
		emitFunction(&b, prog.Functions[name], pool, retTypes, paramTypes)
	}

	return b.String()
}

func sortedFunctionNames(prog *mir.MirProgram) []string {
	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// collectStrings walks every instruction and operand of fn, interning any
// string constant it finds. Called once per function before any function
// body is emitted, so @str_data_N/@str_bmb_N globals exist before use.
func collectStrings(fn *mir.MirFunction, pool *stringPool) {
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			internInstrStrings(instr, pool)
		}

		internOperandStrings(blk.Term.Value, pool)
		internOperandStrings(blk.Term.Cond, pool)
		internOperandStrings(blk.Term.Discriminant, pool)
	}
}

func internInstrStrings(instr mir.Instruction, pool *stringPool) {
	if instr.Kind == mir.InstrConst && instr.ConstVal.Kind == mir.ConstString {
		pool.intern(instr.ConstVal.String)
	}

	for _, op := range []mir.Operand{instr.Src, instr.Lhs, instr.Rhs, instr.Cond, instr.Then, instr.Else, instr.Addr, instr.Value, instr.Base, instr.Offset, instr.Index, instr.Count, instr.CheckExpr} {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Args {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Fields {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Elems {
		internOperandStrings(op, pool)
	}

	for _, po := range instr.PhiOperands {
		internOperandStrings(po.Value, pool)
	}
}

func internOperandStrings(op mir.Operand, pool *stringPool) {
	if op.Kind == mir.OperandConst && op.Const.Kind == mir.ConstString {
		pool.intern(op.Const.String)
	}
}

// fmtGlobalRef renders the ptrtoint expression a string literal compiles to
// (§4.5 "String constants"): no runtime string_from_cstr call is ever
// emitted for a literal.
func fmtGlobalRef(id int) string {
	return fmt.Sprintf("ptrtoint (ptr @str_bmb_%d to i64)", id)
}
