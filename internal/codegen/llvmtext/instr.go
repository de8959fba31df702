package llvmtext

import (
	"fmt"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// stringStructLit is the literal LLVM struct type a BMB string's runtime
// representation uses (§4.5 "string -> ptr to a three-field struct").
const stringStructLit = "{ ptr, i64, i64 }"

func (e *funcEmitter) emitInstr(instr mir.Instruction) {
	switch instr.Kind {
	case mir.InstrConst:
		e.alias(instr.Dest, renderConst(instr.ConstVal, e.pool))
	case mir.InstrCopy:
		e.alias(instr.Dest, e.operand(instr.Src))
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
		reg := e.define(instr.Dest)
		fmt.Fprintf(e.b, "  %s = load %s, ptr %s\n", reg, llvmType(instr.Dest.Type), e.operand(instr.Src))
	case mir.InstrPtrStore:
		fmt.Fprintf(e.b, "  store %s %s, ptr %s\n", e.llvmTypeOf(instr.Value), e.operand(instr.Value), e.operand(instr.Addr))
	case mir.InstrPtrOffset:
		reg := e.define(instr.Dest)
		fmt.Fprintf(e.b, "  %s = getelementptr i8, ptr %s, i64 %s\n", reg, e.operand(instr.Base), e.operand(instr.Offset))
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
		e.b.WriteString("  ; unrecognized instruction kind\n")
	}
}

func (e *funcEmitter) emitUnaryOp(instr mir.Instruction) {
	reg := e.define(instr.Dest)
	t := e.typeOf(instr.Src)

	if instr.UnOp == "not" {
		fmt.Fprintf(e.b, "  %s = xor i1 %s, true\n", reg, e.operand(instr.Src))
		return
	}

	// "-": arithmetic negation.
	if t != nil && t.Kind == types.KindF64 {
		fmt.Fprintf(e.b, "  %s = fneg double %s\n", reg, e.operand(instr.Src))
		return
	}

	ty := llvmType(t)
	fmt.Fprintf(e.b, "  %s = sub nsw %s 0, %s\n", reg, ty, e.operand(instr.Src))
}

func (e *funcEmitter) emitBinOp(instr mir.Instruction) {
	reg := e.define(instr.Dest)
	operandType := e.widenedOperandType(instr.Lhs, instr.Rhs)
	isFloat := operandType == "double"

	switch {
	case isComparison(instr.BinOp):
		if isFloat {
			fmt.Fprintf(e.b, "  %s = fcmp %s double %s, %s\n", reg, fcmpPredicate(instr.BinOp), e.operand(instr.Lhs), e.operand(instr.Rhs))
		} else {
			fmt.Fprintf(e.b, "  %s = icmp %s %s %s, %s\n", reg, icmpPredicate(instr.BinOp), operandType, e.operand(instr.Lhs), e.operand(instr.Rhs))
		}
	case isLogical(instr.BinOp):
		fmt.Fprintf(e.b, "  %s = %s i1 %s, %s\n", reg, arithOpcode(instr.BinOp, types.Bool), e.operand(instr.Lhs), e.operand(instr.Rhs))
	default:
		t := e.typeOf(instr.Lhs)
		if t == nil {
			t = e.typeOf(instr.Rhs)
		}

		fmt.Fprintf(e.b, "  %s = %s %s %s, %s\n", reg, arithOpcode(instr.BinOp, t), operandType, e.operand(instr.Lhs), e.operand(instr.Rhs))
	}
}

// widenedOperandType is the LLVM type icmp/binop operands are rendered at:
// both sides of a well-typed BinOp already agree, but a literal constant
// operand's inferred type may default to i64 against an i32 place, so this
// takes the wider of the two rather than trusting either operand alone.
func (e *funcEmitter) widenedOperandType(a, b mir.Operand) string {
	return widen(e.llvmTypeOf(a), e.llvmTypeOf(b))
}

func (e *funcEmitter) emitSelect(instr mir.Instruction) {
	reg := e.define(instr.Dest)
	ty := widen(e.llvmTypeOf(instr.Then), e.llvmTypeOf(instr.Else))
	fmt.Fprintf(e.b, "  %s = select i1 %s, %s %s, %s %s\n", reg, e.operand(instr.Cond), ty, e.operand(instr.Then), ty, e.operand(instr.Else))
}

func (e *funcEmitter) emitCast(instr mir.Instruction) {
	reg := e.define(instr.Dest)
	from := e.typeOf(instr.Src)
	to := instr.Dest.Type
	fromLLVM, toLLVM := llvmType(from), llvmType(to)

	op := castOpcode(from, to, fromLLVM, toLLVM)
	fmt.Fprintf(e.b, "  %s = %s %s %s to %s\n", reg, op, fromLLVM, e.operand(instr.Src), toLLVM)
}

// castOpcode picks the LLVM conversion instruction between two BMB types
// (§4.5 only directly specifies type mapping and widening, not cast
// legality; this follows the standard LLVM conversion rules for the
// mapped integer/float/bool/ptr shapes).
func castOpcode(from, to *types.Type, fromLLVM, toLLVM string) string {
	fromFloat := from != nil && from.Kind == types.KindF64
	toFloat := to != nil && to.Kind == types.KindF64

	switch {
	case fromFloat && !toFloat:
		return "fptosi"
	case !fromFloat && toFloat:
		return "sitofp"
	case fromFloat && toFloat:
		return "bitcast"
	case fromLLVM == "ptr" || toLLVM == "ptr":
		return "bitcast"
	default:
		if intWidth(fromLLVM) < intWidth(toLLVM) {
			return "sext"
		}

		if intWidth(fromLLVM) > intWidth(toLLVM) {
			return "trunc"
		}

		return "bitcast"
	}
}

func intWidth(llvm string) int {
	switch llvm {
	case "i1":
		return 1
	case "i32":
		return 32
	case "i64":
		return 64
	default:
		return 64
	}
}

// hotInlineNames are the methods §4.5 "Inlines" dispatches to an inline GEP
// sequence instead of a runtime call.
var hotInlineNames = map[string]bool{"byte_at": true, "len": true, "ord": true, "string_eq": true}

func (e *funcEmitter) emitCall(instr mir.Instruction) {
	if hotInlineNames[instr.Callee] {
		e.emitHotInline(instr)
		return
	}

	args := make([]string, 0, len(instr.Args))

	for i, a := range instr.Args {
		args = append(args, fmt.Sprintf("%s %s", e.calleeArgType(instr.Callee, i, a), e.operand(a)))
	}

	retType := e.calleeReturnType(instr.Callee)

	if !instr.HasDest {
		fmt.Fprintf(e.b, "  call %s @%s(%s)\n", retType, instr.Callee, strings.Join(args, ", "))
		return
	}

	reg := e.define(instr.Dest)
	fmt.Fprintf(e.b, "  %s = call %s @%s(%s)\n", reg, retType, instr.Callee, strings.Join(args, ", "))
}

// emitHotInline expands byte_at/len/ord/string_eq in place, writing the
// final value to instr.Dest's own register so later instructions
// referencing it see no mismatch (§4.5 "Each inline writes to the same
// destination SSA register used by subsequent instructions").
func (e *funcEmitter) emitHotInline(instr mir.Instruction) {
	switch instr.Callee {
	case "len":
		str := e.operand(instr.Args[0])
		fieldPtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = getelementptr %s, ptr %s, i32 0, i32 1\n", fieldPtr, stringStructLit, str)
		reg := e.define(instr.Dest)
		fmt.Fprintf(e.b, "  %s = load i64, ptr %s\n", reg, fieldPtr)
	case "byte_at", "ord":
		str := e.operand(instr.Args[0])
		idx := e.operand(instr.Args[1])
		dataFieldPtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = getelementptr %s, ptr %s, i32 0, i32 0\n", dataFieldPtr, stringStructLit, str)
		dataPtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = load ptr, ptr %s\n", dataPtr, dataFieldPtr)
		bytePtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = getelementptr i8, ptr %s, i64 %s\n", bytePtr, dataPtr, idx)
		byteVal := e.freshReg()
		fmt.Fprintf(e.b, "  %s = load i8, ptr %s\n", byteVal, bytePtr)
		reg := e.define(instr.Dest)
		fmt.Fprintf(e.b, "  %s = zext i8 %s to i64\n", reg, byteVal)
	case "string_eq":
		a, b := e.operand(instr.Args[0]), e.operand(instr.Args[1])
		raw := e.freshReg()
		fmt.Fprintf(e.b, "  %s = call i64 @string_eq(ptr %s, ptr %s)\n", raw, a, b)
		reg := e.define(instr.Dest)
		fmt.Fprintf(e.b, "  %s = icmp ne i64 %s, 0\n", reg, raw)
	}
}

func (e *funcEmitter) emitIndexLoad(instr mir.Instruction) {
	elemPtr := e.freshReg()
	elemTy := llvmType(instr.Dest.Type)
	e.arrayElemGEP(elemPtr, instr.Addr, instr.Index, elemTy)

	reg := e.define(instr.Dest)
	fmt.Fprintf(e.b, "  %s = load %s, ptr %s\n", reg, elemTy, elemPtr)
}

func (e *funcEmitter) emitIndexAssign(instr mir.Instruction) {
	elemPtr := e.freshReg()
	elemTy := e.llvmTypeOf(instr.Value)
	e.arrayElemGEP(elemPtr, instr.Addr, instr.Index, elemTy)
	fmt.Fprintf(e.b, "  store %s %s, ptr %s\n", elemTy, e.operand(instr.Value), elemPtr)
}

// arrayElemGEP writes the GEP that locates slot index of the array at
// base. Slots are eight bytes wide and counted from base itself, so slots
// 0 and 1 are the `[capacity: i64, length: i64, ...]` header (§6 "Array
// runtime ABI"); lowering has already added 2 to a user-facing index.
func (e *funcEmitter) arrayElemGEP(dst string, base, index mir.Operand, elemTy string) {
	fmt.Fprintf(e.b, "  %s = getelementptr i64, ptr %s, i64 %s\n", dst, e.operand(base), e.operand(index))
}

func (e *funcEmitter) emitFieldLoad(instr mir.Instruction) {
	structTy := e.structLitFor(instr.Src)
	idx := fieldIndex(e.typeOf(instr.Src), instr.Field)

	fieldPtr := e.freshReg()
	fmt.Fprintf(e.b, "  %s = getelementptr %s, ptr %s, i32 0, i32 %d\n", fieldPtr, structTy, e.operand(instr.Src), idx)

	reg := e.define(instr.Dest)
	fmt.Fprintf(e.b, "  %s = load %s, ptr %s\n", reg, llvmType(instr.Dest.Type), fieldPtr)
}

func (e *funcEmitter) emitFieldStore(instr mir.Instruction) {
	structTy := e.structLitFor(instr.Addr)
	idx := fieldIndex(e.typeOf(instr.Addr), instr.Field)

	fieldPtr := e.freshReg()
	fmt.Fprintf(e.b, "  %s = getelementptr %s, ptr %s, i32 0, i32 %d\n", fieldPtr, structTy, e.operand(instr.Addr), idx)
	fmt.Fprintf(e.b, "  store %s %s, ptr %s\n", e.llvmTypeOf(instr.Value), e.operand(instr.Value), fieldPtr)
}

// structLitFor renders the literal LLVM struct type of op's pointee, or a
// generic opaque i64-field fallback if the struct type isn't known (§4.5
// "Failure semantics": missing type info defaults to i64).
func (e *funcEmitter) structLitFor(op mir.Operand) string {
	t := e.typeOf(op)
	if t == nil || t.Kind != types.KindStruct {
		return "{ i64 }"
	}

	fields := make([]string, len(t.FieldTypes))
	for i, ft := range t.FieldTypes {
		fields[i] = llvmType(ft)
	}

	return "{ " + strings.Join(fields, ", ") + " }"
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

func (e *funcEmitter) emitAggregateInit(instr mir.Instruction) {
	fieldTypes := make([]string, len(instr.Fields))
	for i, f := range instr.Fields {
		fieldTypes[i] = e.llvmTypeOf(f)
	}

	lit := "{ " + strings.Join(fieldTypes, ", ") + " }"

	slot := e.freshReg()
	fmt.Fprintf(e.b, "  %s = alloca %s\n", slot, lit)

	for i, f := range instr.Fields {
		fieldPtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = getelementptr %s, ptr %s, i32 0, i32 %d\n", fieldPtr, lit, slot, i)
		fmt.Fprintf(e.b, "  store %s %s, ptr %s\n", fieldTypes[i], e.operand(f), fieldPtr)
	}

	e.alias(instr.Dest, slot)
}

// emitArrayAlloc allocates count+2 i64-sized slots and writes the
// `[capacity, length, data...]` header (§4.3 "Arrays"): capacity and
// length both start at Count, since the MIR-level array-literal lowering
// that produces this instruction always supplies every element up front.
func (e *funcEmitter) emitArrayAlloc(instr mir.Instruction) {
	totalSlots := e.freshReg()
	fmt.Fprintf(e.b, "  %s = add i64 %s, 2\n", totalSlots, e.operand(instr.Count))

	totalBytes := e.freshReg()
	fmt.Fprintf(e.b, "  %s = mul i64 %s, 8\n", totalBytes, totalSlots)

	base := e.freshReg()
	fmt.Fprintf(e.b, "  %s = call ptr @bmb_alloc(i64 %s)\n", base, totalBytes)

	fmt.Fprintf(e.b, "  store i64 %s, ptr %s\n", e.operand(instr.Count), base)

	lenPtr := e.freshReg()
	fmt.Fprintf(e.b, "  %s = getelementptr i8, ptr %s, i64 8\n", lenPtr, base)
	fmt.Fprintf(e.b, "  store i64 %s, ptr %s\n", e.operand(instr.Count), lenPtr)

	if len(instr.Elems) > 0 {
		elemTy := e.llvmTypeOf(instr.Elems[0])
		dataPtr := e.freshReg()
		fmt.Fprintf(e.b, "  %s = getelementptr i8, ptr %s, i64 16\n", dataPtr, base)

		for i, elem := range instr.Elems {
			slot := e.freshReg()
			fmt.Fprintf(e.b, "  %s = getelementptr i64, ptr %s, i64 %d\n", slot, dataPtr, i)
			fmt.Fprintf(e.b, "  store %s %s, ptr %s\n", elemTy, e.operand(elem), slot)
		}
	}

	e.alias(instr.Dest, base)
}

func (e *funcEmitter) emitPhi(instr mir.Instruction) {
	llvmTypes := make([]string, len(instr.PhiOperands))
	for i, po := range instr.PhiOperands {
		llvmTypes[i] = e.llvmTypeOf(po.Value)
	}

	ty := widen(llvmTypes...)

	reg := e.define(instr.Dest)

	incoming := make([]string, len(instr.PhiOperands))
	for i, po := range instr.PhiOperands {
		incoming[i] = fmt.Sprintf("[ %s, %%%s ]", e.operand(po.Value), po.Predecessor)
	}

	fmt.Fprintf(e.b, "  %s = phi %s %s\n", reg, ty, strings.Join(incoming, ", "))
}

var checkFuncs = map[mir.ContractCheckKind]string{
	mir.CheckBounds:   "bmb_check_bounds",
	mir.CheckNull:     "bmb_check_null",
	mir.CheckDivision: "bmb_check_division",
	mir.CheckGeneric:  "bmb_check_contract",
}

func (e *funcEmitter) emitContractCheck(instr mir.Instruction) {
	fn := checkFuncs[instr.CheckKind]
	fmt.Fprintf(e.b, "  call void @%s(i1 %s)\n", fn, e.operand(instr.CheckExpr))
}

func (e *funcEmitter) emitTerm(t mir.Terminator) {
	switch t.Kind {
	case mir.TermGoto:
		fmt.Fprintf(e.b, "  br label %%%s\n", t.Target)
	case mir.TermBranch:
		fmt.Fprintf(e.b, "  br i1 %s, label %%%s, label %%%s\n", e.operand(t.Cond), t.ThenLabel, t.ElseLabel)
	case mir.TermSwitch:
		e.emitSwitch(t)
	case mir.TermReturn:
		if t.HasValue {
			fmt.Fprintf(e.b, "  ret %s %s\n", e.llvmTypeOf(t.Value), e.operand(t.Value))
		} else {
			e.b.WriteString("  ret void\n")
		}
	}
}

func (e *funcEmitter) emitSwitch(t mir.Terminator) {
	ty := e.llvmTypeOf(t.Discriminant)

	cases := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = fmt.Sprintf("%s %s, label %%%s", ty, renderConst(c.Value, e.pool), c.Label)
	}

	fmt.Fprintf(e.b, "  switch %s %s, label %%%s [ %s ]\n", ty, e.operand(t.Discriminant), t.Default, strings.Join(cases, " "))
}
