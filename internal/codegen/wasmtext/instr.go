package wasmtext

import (
	"fmt"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// slotSize is the byte stride every struct/tuple field and array element
// occupies in linear memory, matching internal/codegen/llvmtext's
// `[capacity, length, data...]` eight-byte-slot array header (§4.3
// "Arrays") so both backends agree on one runtime layout regardless of a
// field's narrower WAT value type.
const slotSize = 8

// arrayHeaderBytes is the byte offset past an array's
// `[capacity: i64, length: i64, ...]` header to its first element.
const arrayHeaderBytes = 16

func (e *wasmEmitter) emitBlockBody(blk *mir.BasicBlock) {
	e.currentLabel = blk.Label

	for _, instr := range blk.Instructions {
		e.emitInstr(instr)
	}

	e.emitTerm(blk.Term)
}

func (e *wasmEmitter) emitInstr(instr mir.Instruction) {
	switch instr.Kind {
	case mir.InstrConst:
		e.set(instr.Dest, e.constExpr(instr.ConstVal))
	case mir.InstrCopy:
		e.set(instr.Dest, e.operand(instr.Src))
	case mir.InstrUnaryOp:
		e.emitUnaryOp(instr)
	case mir.InstrBinOp:
		e.emitBinOp(instr)
	case mir.InstrSelect:
		e.emitSelect(instr)
	case mir.InstrCast:
		e.emitCast(instr)
	case mir.InstrCall:
		e.emitCall(instr)
	case mir.InstrPtrLoad:
		e.set(instr.Dest, fmt.Sprintf("(%s.load %s)", watType(instr.Dest.Type), e.operand(instr.Src)))
	case mir.InstrPtrStore:
		e.line(fmt.Sprintf("(%s.store %s %s)", e.watTypeOf(instr.Value), e.operand(instr.Addr), e.operand(instr.Value)))
	case mir.InstrPtrOffset:
		e.set(instr.Dest, fmt.Sprintf("(i32.add %s %s)", e.operand(instr.Base), e.operand(instr.Offset)))
	case mir.InstrIndexLoad:
		e.emitIndexLoad(instr)
	case mir.InstrIndexAssign:
		e.emitIndexAssign(instr)
	case mir.InstrFieldLoad:
		e.emitFieldLoad(instr)
	case mir.InstrFieldStore:
		e.emitFieldStore(instr)
	case mir.InstrStructInit:
		e.emitAggregateInit(instr)
	case mir.InstrTupleInit:
		e.emitAggregateInit(instr)
	case mir.InstrArrayAlloc:
		e.emitArrayAlloc(instr)
	case mir.InstrPhi:
		e.emitPhi(instr)
	case mir.InstrContractCheck:
		e.emitContractCheck(instr)
	default:
		e.line(";; unrecognized instruction kind")
	}
}

func (e *wasmEmitter) set(dest mir.Place, expr string) {
	if dest.Name == "" {
		e.line(fmt.Sprintf("(drop %s)", expr))
		return
	}

	e.placeTypes[dest.Name] = dest.Type
	e.line(fmt.Sprintf("(local.set $%s %s)", dest.Name, expr))
}

// operand renders op's value-producing WAT expression.
func (e *wasmEmitter) operand(op mir.Operand) string {
	if op.Kind == mir.OperandConst {
		return e.constExpr(op.Const)
	}

	return fmt.Sprintf("(local.get $%s)", op.Place.Name)
}

func (e *wasmEmitter) constExpr(c mir.Constant) string {
	switch c.Kind {
	case mir.ConstInt:
		return fmt.Sprintf("(i64.const %d)", c.Int)
	case mir.ConstFloat:
		return fmt.Sprintf("(f64.const %g)", c.Float)
	case mir.ConstBool:
		if c.Bool {
			return "(i32.const 1)"
		}

		return "(i32.const 0)"
	case mir.ConstChar:
		return fmt.Sprintf("(i32.const %d)", c.Char)
	case mir.ConstString:
		return fmt.Sprintf("(i32.const %d)", e.pool.offsetOf(c.String))
	case mir.ConstUnit:
		return "(i32.const 0)"
	case mir.ConstFuncRef:
		return fmt.Sprintf("(i32.const 0) ;; func ref %s unsupported in WAT value space", c.FuncRef)
	default:
		return "(i64.const 0)"
	}
}

// typeOf infers op's BMB type, the same way
// internal/codegen/llvmtext.funcEmitter.typeOf does.
func (e *wasmEmitter) typeOf(op mir.Operand) *types.Type {
	if op.Kind == mir.OperandPlace {
		if op.Place.Type != nil {
			return op.Place.Type
		}

		return e.placeTypes[op.Place.Name]
	}

	switch op.Const.Kind {
	case mir.ConstInt:
		return types.I64
	case mir.ConstFloat:
		return types.F64
	case mir.ConstBool:
		return types.Bool
	case mir.ConstChar:
		return types.Char
	case mir.ConstString:
		return types.StringT
	default:
		return nil
	}
}

func (e *wasmEmitter) watTypeOf(op mir.Operand) string { return watType(e.typeOf(op)) }

func (e *wasmEmitter) emitUnaryOp(instr mir.Instruction) {
	t := e.typeOf(instr.Src)
	prefix := watType(t)

	if instr.UnOp == "not" {
		e.set(instr.Dest, fmt.Sprintf("(%s.eqz %s)", prefix, e.operand(instr.Src)))
		return
	}

	zero := "(i64.const 0)"
	if prefix == "i32" {
		zero = "(i32.const 0)"
	} else if prefix == "f64" {
		zero = "(f64.const 0)"
	}

	e.set(instr.Dest, fmt.Sprintf("(%s.sub %s %s)", prefix, zero, e.operand(instr.Src)))
}

func (e *wasmEmitter) emitBinOp(instr mir.Instruction) {
	lt, rt := e.watTypeOf(instr.Lhs), e.watTypeOf(instr.Rhs)
	prefix := widerWat(lt, rt)
	float := prefix == "f64"

	switch {
	case isComparison(instr.BinOp):
		e.set(instr.Dest, fmt.Sprintf("(%s.%s %s %s)", prefix, cmpSuffix(instr.BinOp, float), e.operand(instr.Lhs), e.operand(instr.Rhs)))
	case isLogical(instr.BinOp):
		e.set(instr.Dest, fmt.Sprintf("(i32.%s %s %s)", arithOpcode(instr.BinOp, "i32"), e.operand(instr.Lhs), e.operand(instr.Rhs)))
	default:
		e.set(instr.Dest, fmt.Sprintf("(%s.%s %s %s)", prefix, arithOpcode(instr.BinOp, prefix), e.operand(instr.Lhs), e.operand(instr.Rhs)))
	}
}

// widerWat picks i64 over i32 and f64 over either, mirroring
// internal/codegen/llvmtext.widen's pointer/double/i64/i32 ranking
// restricted to the value-type subset WAT arithmetic actually uses.
func widerWat(a, b string) string {
	rank := map[string]int{"i32": 0, "i64": 1, "f64": 2}
	if rank[b] > rank[a] {
		return b
	}

	return a
}

func (e *wasmEmitter) emitSelect(instr mir.Instruction) {
	ty := widerWat(e.watTypeOf(instr.Then), e.watTypeOf(instr.Else))
	e.set(instr.Dest, fmt.Sprintf("(select (result %s) %s %s %s)", ty, e.operand(instr.Then), e.operand(instr.Else), e.operand(instr.Cond)))
}

func (e *wasmEmitter) emitCast(instr mir.Instruction) {
	from, to := e.typeOf(instr.Src), instr.Dest.Type
	op := castOp(from, to)
	e.set(instr.Dest, fmt.Sprintf("(%s %s)", op, e.operand(instr.Src)))
}

// castOp picks the WAT conversion instruction between two BMB types, the
// WAT-opcode counterpart to internal/codegen/llvmtext.castOpcode.
func castOp(from, to *types.Type) string {
	fromWat, toWat := watType(from), watType(to)
	fromFloat := fromWat == "f64"
	toFloat := toWat == "f64"

	switch {
	case fromFloat && !toFloat:
		if toWat == "i64" {
			return "i64.trunc_f64_s"
		}

		return "i32.trunc_f64_s"
	case !fromFloat && toFloat:
		if fromWat == "i64" {
			return "f64.convert_i64_s"
		}

		return "f64.convert_i32_s"
	case fromWat == "i64" && toWat == "i32":
		return "i32.wrap_i64"
	case fromWat == "i32" && toWat == "i64":
		return "i64.extend_i32_s"
	default:
		return "nop"
	}
}

func (e *wasmEmitter) emitCall(instr mir.Instruction) {
	args := make([]string, len(instr.Args))
	for i, a := range instr.Args {
		args[i] = e.operand(a)
	}

	call := fmt.Sprintf("(call $%s %s)", instr.Callee, strings.Join(args, " "))

	// string_eq's extern returns i64 (matching internal/codegen/llvmtext's
	// ABI for the same helper); BMB's equality result is bool, so this is
	// the one callee that needs a post-call conversion rather than a bare
	// local.set of the raw return value.
	if instr.Callee == "string_eq" {
		call = fmt.Sprintf("(i64.ne %s (i64.const 0))", call)
	}

	if !instr.HasDest {
		if e.calleeReturnType(instr.Callee) != "" {
			e.line(fmt.Sprintf("(drop %s)", call))
		} else {
			e.line(call)
		}

		return
	}

	e.set(instr.Dest, call)
}

func (e *wasmEmitter) calleeReturnType(callee string) string {
	if t, ok := e.retTypes[callee]; ok {
		if t == nil || t.Kind == types.KindUnit {
			return ""
		}

		return watType(t)
	}

	if spec, ok := externTable[callee]; ok {
		return spec.ret
	}

	return ""
}

func (e *wasmEmitter) emitIndexLoad(instr mir.Instruction) {
	elemTy := watType(instr.Dest.Type)
	addr := e.arrayElemAddr(instr.Addr, instr.Index)
	e.set(instr.Dest, fmt.Sprintf("(%s.load %s)", elemTy, addr))
}

func (e *wasmEmitter) emitIndexAssign(instr mir.Instruction) {
	elemTy := e.watTypeOf(instr.Value)
	addr := e.arrayElemAddr(instr.Addr, instr.Index)
	e.line(fmt.Sprintf("(%s.store %s %s)", elemTy, addr, e.operand(instr.Value)))
}

// arrayElemAddr computes the byte address of slot index of the array at
// base. Slots are slotSize bytes counted from base itself, so slots 0 and 1
// are the `[capacity, length, ...]` header; lowering has already added 2
// to a user-facing index.
func (e *wasmEmitter) arrayElemAddr(base, index mir.Operand) string {
	offset := fmt.Sprintf("(i32.mul %s (i32.const %d))", e.wrapToI32(index), slotSize)
	return fmt.Sprintf("(i32.add %s %s)", e.operand(base), offset)
}

// wrapToI32 narrows an i64-typed index operand to i32 for address math;
// i32-typed operands pass through unchanged.
func (e *wasmEmitter) wrapToI32(op mir.Operand) string {
	if e.watTypeOf(op) == "i64" {
		return fmt.Sprintf("(i32.wrap_i64 %s)", e.operand(op))
	}

	return e.operand(op)
}

func (e *wasmEmitter) emitFieldLoad(instr mir.Instruction) {
	idx := fieldIndex(e.typeOf(instr.Src), instr.Field)
	addr := fmt.Sprintf("(i32.add %s (i32.const %d))", e.operand(instr.Src), idx*slotSize)
	e.set(instr.Dest, fmt.Sprintf("(%s.load %s)", watType(instr.Dest.Type), addr))
}

func (e *wasmEmitter) emitFieldStore(instr mir.Instruction) {
	idx := fieldIndex(e.typeOf(instr.Addr), instr.Field)
	addr := fmt.Sprintf("(i32.add %s (i32.const %d))", e.operand(instr.Addr), idx*slotSize)
	e.line(fmt.Sprintf("(%s.store %s %s)", e.watTypeOf(instr.Value), addr, e.operand(instr.Value)))
}

func fieldIndex(structType *types.Type, field string) int {
	if structType == nil {
		return 0
	}

	for i, name := range structType.FieldNames {
		if name == field {
			return i
		}
	}

	return 0
}

// emitAggregateInit allocates one slotSize-stride slot per field via
// bmb_alloc and stores each field's value into it, mirroring
// internal/codegen/llvmtext's alloca+GEP+store struct/tuple
// initialization with a runtime allocation instead of a stack slot,
// since WAT locals cannot take their own address.
func (e *wasmEmitter) emitAggregateInit(instr mir.Instruction) {
	totalBytes := len(instr.Fields) * slotSize
	e.set(instr.Dest, fmt.Sprintf("(call $bmb_alloc (i64.const %d))", totalBytes))

	for i, f := range instr.Fields {
		addr := fmt.Sprintf("(i32.add (local.get $%s) (i32.const %d))", instr.Dest.Name, i*slotSize)
		e.line(fmt.Sprintf("(%s.store %s %s)", e.watTypeOf(f), addr, e.operand(f)))
	}
}

// emitArrayAlloc mirrors internal/codegen/llvmtext's emitArrayAlloc: a
// `[capacity: i64, length: i64, data...]` header, with capacity and
// length both starting at Count.
func (e *wasmEmitter) emitArrayAlloc(instr mir.Instruction) {
	totalBytes := fmt.Sprintf("(i64.add (i64.mul %s (i64.const %d)) (i64.const %d))", e.operand(instr.Count), slotSize, arrayHeaderBytes)
	e.set(instr.Dest, fmt.Sprintf("(call $bmb_alloc %s)", totalBytes))

	base := fmt.Sprintf("(local.get $%s)", instr.Dest.Name)
	e.line(fmt.Sprintf("(i64.store %s %s)", base, e.operand(instr.Count)))
	e.line(fmt.Sprintf("(i64.store offset=8 %s %s)", base, e.operand(instr.Count)))

	for i, elem := range instr.Elems {
		addr := fmt.Sprintf("(i32.add %s (i32.const %d))", base, arrayHeaderBytes+i*slotSize)
		e.line(fmt.Sprintf("(%s.store %s %s)", e.watTypeOf(elem), addr, e.operand(elem)))
	}
}

// emitPhi resolves a Phi by writing its incoming value to Dest at the end
// of the predecessor block that produced it instead of at the merge
// point, since the dispatch-loop lowering has no single physical location
// where "control just arrived from predecessor X" is ambiguous: Phi
// operands are instead copied in directly via the Phi's own Dest local,
// matched by predecessor label during that predecessor's redispatch.
func (e *wasmEmitter) emitPhi(instr mir.Instruction) {
	e.placeTypes[instr.Dest.Name] = instr.Dest.Type
	// No direct store here: writePhiAssignments on the predecessor side (see
	// emitTerm's gotoBlock calls) write this Phi's value before jumping.
	_ = instr
}

var checkImportNames = map[mir.ContractCheckKind]string{
	mir.CheckBounds:   "bmb_check_bounds",
	mir.CheckNull:     "bmb_check_null",
	mir.CheckDivision: "bmb_check_division",
	mir.CheckGeneric:  "bmb_check_contract",
}

func (e *wasmEmitter) emitContractCheck(instr mir.Instruction) {
	fn := checkImportNames[instr.CheckKind]
	e.line(fmt.Sprintf("(call $%s %s)", fn, e.operand(instr.CheckExpr)))
}

func (e *wasmEmitter) emitTerm(t mir.Terminator) {
	switch t.Kind {
	case mir.TermGoto:
		e.writePhiAssignments(t.Target)
		e.gotoBlock(t.Target)
	case mir.TermBranch:
		e.emitBranch(t)
	case mir.TermSwitch:
		e.emitSwitch(t)
	case mir.TermReturn:
		if t.HasValue {
			e.line(fmt.Sprintf("(return %s)", e.operand(t.Value)))
		} else {
			e.line("(return)")
		}
	}
}

func (e *wasmEmitter) emitBranch(t mir.Terminator) {
	e.line(fmt.Sprintf("(if %s", e.operand(t.Cond)))
	e.indent++
	e.line("(then")
	e.indent++
	e.writePhiAssignments(t.ThenLabel)
	e.gotoBlock(t.ThenLabel)
	e.indent--
	e.line(")")
	e.line("(else")
	e.indent++
	e.writePhiAssignments(t.ElseLabel)
	e.gotoBlock(t.ElseLabel)
	e.indent--
	e.line(")")
	e.indent--
	e.line(")")
}

func (e *wasmEmitter) emitSwitch(t mir.Terminator) {
	disc := e.operand(t.Discriminant)
	prefix := e.watTypeOf(t.Discriminant)

	e.emitSwitchCases(t.Cases, 0, disc, prefix, t.Default)
}

func (e *wasmEmitter) emitSwitchCases(cases []mir.SwitchCase, i int, disc, prefix, defaultLabel string) {
	if i >= len(cases) {
		e.writePhiAssignments(defaultLabel)
		e.gotoBlock(defaultLabel)
		return
	}

	c := cases[i]
	e.line(fmt.Sprintf("(if (%s.eq %s %s)", prefix, disc, e.constExpr(c.Value)))
	e.indent++
	e.line("(then")
	e.indent++
	e.writePhiAssignments(c.Label)
	e.gotoBlock(c.Label)
	e.indent--
	e.line(")")
	e.line("(else")
	e.indent++
	e.emitSwitchCases(cases, i+1, disc, prefix, defaultLabel)
	e.indent--
	e.line(")")
	e.indent--
	e.line(")")
}

// writePhiAssignments writes a local.set for every Phi in target whose
// incoming edge is the block currently emitting its terminator, so the
// successor block's merge value is ready before control transfers there
// (see emitPhi).
func (e *wasmEmitter) writePhiAssignments(target string) {
	blk := e.fn.BlockByLabel(target)
	if blk == nil {
		return
	}

	for _, instr := range blk.Instructions {
		if instr.Kind != mir.InstrPhi {
			continue
		}

		for _, po := range instr.PhiOperands {
			if po.Predecessor == e.currentLabel {
				e.placeTypes[instr.Dest.Name] = instr.Dest.Type
				e.line(fmt.Sprintf("(local.set $%s %s)", instr.Dest.Name, e.operand(po.Value)))
			}
		}
	}
}
