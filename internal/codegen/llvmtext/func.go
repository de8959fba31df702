package llvmtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// funcEmitter holds the per-function state EmitModule threads through one
// function's body: its SSA name allocator, the constant/copy aliases that
// let InstrConst/InstrCopy disappear into their uses (LLVM has no such
// instructions; a constant or a copy is just the same value used again),
// and a scratch counter for the extra registers an inlined hot method
// needs.
type funcEmitter struct {
	b          *strings.Builder
	fn         *mir.MirFunction
	pool       *stringPool
	names      *nameAllocator
	aliases    map[string]string
	placeTypes map[string]*types.Type
	retTypes   map[string]*types.Type
	paramTypes map[string][]*types.Type
	scratch    int
}

func emitFunction(b *strings.Builder, fn *mir.MirFunction, pool *stringPool, retTypes map[string]*types.Type, paramTypes map[string][]*types.Type) {
	e := &funcEmitter{
		b:          b,
		fn:         fn,
		pool:       pool,
		names:      newNameAllocator(),
		aliases:    make(map[string]string),
		placeTypes: make(map[string]*types.Type),
		retTypes:   retTypes,
		paramTypes: paramTypes,
	}

	e.emit()
}

// calleeReturnType resolves callee's LLVM return type: a sibling
// MirFunction's declared Return, an extern's table entry, or void for an
// unrecognized call (§4.5 "Failure semantics").
func (e *funcEmitter) calleeReturnType(callee string) string {
	if t, ok := e.retTypes[callee]; ok {
		return llvmType(t)
	}

	if spec, ok := externTable[callee]; ok {
		return spec.ret
	}

	return "void"
}

// calleeArgType resolves the LLVM type of callee's i-th parameter, when
// known (a sibling MirFunction's declared Param type, or an extern's table
// entry); otherwise falls back to arg's own inferred type.
func (e *funcEmitter) calleeArgType(callee string, i int, arg mir.Operand) string {
	if params, ok := e.paramTypes[callee]; ok && i < len(params) {
		return llvmType(params[i])
	}

	if spec, ok := externTable[callee]; ok && i < len(spec.params) {
		return spec.params[i]
	}

	return e.llvmTypeOf(arg)
}

func (e *funcEmitter) emit() {
	params := make([]string, 0, len(e.fn.Params))

	for _, p := range e.fn.Params {
		e.placeTypes[p.Name] = p.Type
		reg := e.names.define(p.Name)
		params = append(params, fmt.Sprintf("%s %s", llvmType(p.Type), reg))
	}

	retType := llvmType(e.fn.Return)

	fmt.Fprintf(e.b, "define %s @%s(%s)%s {\n", retType, e.fn.Name, strings.Join(params, ", "), funcAttributes(e.fn))

	for _, blk := range e.fn.Blocks {
		fmt.Fprintf(e.b, "%s:\n", blk.Label)

		for _, instr := range blk.Instructions {
			e.emitInstr(instr)
		}

		e.emitTerm(blk.Term)
	}

	e.b.WriteString("}\n")
}

// freshReg allocates a register an inline expansion needs that has no
// corresponding MIR place (§4.5 "Inlines").
func (e *funcEmitter) freshReg() string {
	e.scratch++
	return "%_bmb" + strconv.Itoa(e.scratch)
}

// define records a new SSA definition for raw and returns its register
// name, tracking its type for later widen()/typeOf() lookups.
func (e *funcEmitter) define(p mir.Place) string {
	e.placeTypes[p.Name] = p.Type
	return e.names.define(p.Name)
}

// alias binds raw to text directly (no register emitted): InstrConst and
// InstrCopy destinations resolve this way, since neither has a real LLVM
// instruction form.
func (e *funcEmitter) alias(p mir.Place, text string) {
	e.placeTypes[p.Name] = p.Type
	e.aliases[p.Name] = text
}

// operand renders op's LLVM value text, resolving through any alias chain.
func (e *funcEmitter) operand(op mir.Operand) string {
	if op.Kind == mir.OperandConst {
		return renderConst(op.Const, e.pool)
	}

	if text, ok := e.aliases[op.Place.Name]; ok {
		return text
	}

	return e.names.ref(op.Place.Name)
}

// typeOf infers op's BMB type: a place's declared type if known, or a
// constant's intrinsic type.
func (e *funcEmitter) typeOf(op mir.Operand) *types.Type {
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

// llvmTypeOf is the LLVM spelling of typeOf(op).
func (e *funcEmitter) llvmTypeOf(op mir.Operand) string {
	return llvmType(e.typeOf(op))
}
