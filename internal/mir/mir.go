// Package mir implements the single-assignment three-address IR that sits
// between lowering and the optimization pipeline (§3, §4.3, §4.4): typed
// places, operands, instructions, basic blocks, and terminators.
package mir

import "github.com/bmb-lang/bmbc/internal/types"

// Proj discriminates how a Place is projected from its base local.
type Proj int

const (
	ProjNone Proj = iota
	ProjField
	ProjIndex
	ProjDeref
)

// Place is a named local plus an optional single-level projection. Chained
// projections (`a.b[0]`) decompose into a sequence of intermediate
// temporaries at lowering time rather than a projection list here, so every
// instruction touches at most one projection.
type Place struct {
	Name  string
	Type  *types.Type
	Proj  Proj
	Field string     // ProjField
	Index *Operand   // ProjIndex
}

// OperandKind discriminates Operand's two shapes.
type OperandKind int

const (
	OperandPlace OperandKind = iota
	OperandConst
)

// ConstKind discriminates Constant's shape.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstChar
	ConstString
	ConstUnit
	// ConstFuncRef names a top-level MirFunction, used for closure
	// lowering's `{fn_ptr, env_ptr}` pair (§4.3 "Closures").
	ConstFuncRef
)

// Constant is a compile-time literal value (§3 "Constants").
type Constant struct {
	Kind ConstKind
	Int  int64
	// Float carries NaN/±Inf as ordinary Go float64 values; emission
	// (internal/codegen/llvmtext) special-cases their hex-bit rendering,
	// not this type.
	Float  float64
	Bool    bool
	Char    rune
	String  string
	FuncRef string
}

// Operand is either a Place or a Constant.
type Operand struct {
	Kind  OperandKind
	Place Place
	Const Constant
}

// OperandFromPlace wraps p as an Operand.
func OperandFromPlace(p Place) Operand { return Operand{Kind: OperandPlace, Place: p} }

// OperandFromConst wraps c as an Operand.
func OperandFromConst(c Constant) Operand { return Operand{Kind: OperandConst, Const: c} }

// IntConst builds an integer-constant Operand directly.
func IntConst(v int64) Operand {
	return OperandFromConst(Constant{Kind: ConstInt, Int: v})
}

// BoolConst builds a bool-constant Operand directly.
func BoolConst(v bool) Operand {
	return OperandFromConst(Constant{Kind: ConstBool, Bool: v})
}
