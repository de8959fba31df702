package cir

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/types"
)

// ExprKind discriminates the shape of a CirExpr.
type ExprKind int

const (
	ExprConstInt ExprKind = iota
	ExprConstFloat
	ExprConstBool
	ExprVar
	ExprBinOp
	ExprUnaryOp
	ExprCall
	ExprIf
	ExprLoop
	ExprField
	ExprIndex
)

// CirExpr is the lifted arithmetic/logical expression form CIR reasons
// about: a flattened, contract-relevant projection of the typed AST (§3).
type CirExpr struct {
	Kind ExprKind
	Type *types.Type

	// ExprConstInt / ExprConstFloat / ExprConstBool.
	Int   int64
	Float float64
	Bool  bool

	// ExprVar.
	Name string

	// ExprBinOp: Op borrowed from ast.BinOp's integer values are not reused
	// here; CIR only cares about the operators that matter to comparison
	// and arithmetic reasoning, named directly.
	BinOp string // "+","-","*","/","%","and","or","bitand","bitor","bitxor","shl","shr"
	Left  *CirExpr
	Right *CirExpr

	// ExprUnaryOp.
	UnOp    string // "-","not"
	Operand *CirExpr

	// ExprCall.
	Callee string
	Args   []*CirExpr

	// ExprIf.
	Cond *CirExpr
	Then *CirExpr
	Else *CirExpr

	// ExprLoop: condition plus invariants proven to hold on every
	// iteration, carried alongside rather than as a separate structure so
	// lowering can attach them at the point a while/for loop is lifted.
	LoopCond       *CirExpr
	LoopInvariants []*Proposition
	LoopBody       *CirExpr

	// ExprField / ExprIndex.
	Base  *CirExpr
	Field string
	Index *CirExpr
}

// ConstInt constructs an integer constant expression.
func ConstInt(v int64) *CirExpr { return &CirExpr{Kind: ExprConstInt, Int: v, Type: types.I64} }

// ConstFloat constructs a float constant expression.
func ConstFloat(v float64) *CirExpr { return &CirExpr{Kind: ExprConstFloat, Float: v, Type: types.F64} }

// ConstBool constructs a bool constant expression.
func ConstBool(v bool) *CirExpr { return &CirExpr{Kind: ExprConstBool, Bool: v, Type: types.Bool} }

// Var references a named free variable (function parameter or bound name).
func Var(name string, t *types.Type) *CirExpr { return &CirExpr{Kind: ExprVar, Name: name, Type: t} }

// BinOpExpr constructs a binary operation over lhs and rhs.
func BinOpExpr(op string, lhs, rhs *CirExpr, t *types.Type) *CirExpr {
	return &CirExpr{Kind: ExprBinOp, BinOp: op, Left: lhs, Right: rhs, Type: t}
}

// UnaryOpExpr constructs a unary operation over operand.
func UnaryOpExpr(op string, operand *CirExpr, t *types.Type) *CirExpr {
	return &CirExpr{Kind: ExprUnaryOp, UnOp: op, Operand: operand, Type: t}
}

func (e *CirExpr) String() string {
	if e == nil {
		return "<nil>"
	}

	switch e.Kind {
	case ExprConstInt:
		return fmt.Sprintf("%d", e.Int)
	case ExprConstFloat:
		return fmt.Sprintf("%g", e.Float)
	case ExprConstBool:
		return fmt.Sprintf("%t", e.Bool)
	case ExprVar:
		return e.Name
	case ExprBinOp:
		return fmt.Sprintf("(%s %s %s)", e.Left, e.BinOp, e.Right)
	case ExprUnaryOp:
		return fmt.Sprintf("%s%s", e.UnOp, e.Operand)
	case ExprCall:
		return fmt.Sprintf("%s(...)", e.Callee)
	case ExprIf:
		return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
	case ExprLoop:
		return fmt.Sprintf("loop while %s", e.LoopCond)
	case ExprField:
		return fmt.Sprintf("%s.%s", e.Base, e.Field)
	case ExprIndex:
		return fmt.Sprintf("%s[%s]", e.Base, e.Index)
	default:
		return "<invalid>"
	}
}
