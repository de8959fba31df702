package cir

import (
	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/typecheck"
	"github.com/bmb-lang/bmbc/internal/types"
)

// Lower implements lower_to_cir(typed_ast) -> CirProgram (§4.2): every
// function and impl method, with or without a contract, is lifted into a
// CirFunction, its
// pre/postconditions lowered to Proposition trees and its body lowered to
// a best-effort CirExpr for the passes that read the body (loop invariant
// discovery, effect analysis).
func Lower(tp *typecheck.TypedProgram) *CirProgram {
	prog := NewCirProgram()

	for _, d := range tp.Program.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDecl:
			prog.Functions[decl.Name] = lowerFunction(tp, decl, "")
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				prog.Functions[m.Name] = lowerFunction(tp, m, implTypeName(decl.Type))
			}
		}
	}

	return prog
}

func implTypeName(te ast.TypeExpr) string {
	if n, ok := te.(*ast.NamedTypeExpr); ok {
		return n.Name
	}

	return ""
}

func lowerFunction(tp *typecheck.TypedProgram, decl *ast.FunctionDecl, receiverType string) *CirFunction {
	fn := &CirFunction{
		Name: decl.Name,
		Span: decl.Sp,
	}

	if receiverType != "" {
		fn.Params = append(fn.Params, Param{Name: "self", Type: receiverType})
	}

	for _, p := range decl.Params {
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: typeExprName(p.Type)})
	}

	fn.Return = typeExprName(decl.Return)

	l := &lowerer{tp: tp}

	for _, pre := range decl.Contract.Pre {
		fn.Contract.Preconditions = append(fn.Contract.Preconditions, l.proposition(pre))
	}

	for _, post := range decl.Contract.Post {
		fn.Contract.Postconditions = append(fn.Contract.Postconditions, l.proposition(post))
	}

	fn.Body = l.expr(decl.Body)
	fn.Effects = l.effects

	return fn
}

func typeExprName(te ast.TypeExpr) string {
	switch n := te.(type) {
	case nil:
		return "unit"
	case *ast.NamedTypeExpr:
		return n.Name
	case *ast.NullableTypeExpr:
		return typeExprName(n.Elem) + "?"
	case *ast.ArrayTypeExpr:
		return "[" + typeExprName(n.Elem) + "]"
	default:
		return "unknown"
	}
}

// lowerer walks AST expressions into CIR form, accumulating the effect set
// of whatever body it lowers. It is not a general-purpose AST interpreter:
// expression shapes CIR has no opinion about (closures, spawn, select)
// lower to an opaque Var reference by name so loop/contract reasoning
// around them still type-checks without CIR needing to model them.
type lowerer struct {
	tp      *typecheck.TypedProgram
	effects EffectSet
}

func (l *lowerer) exprType(e ast.Expr) *types.Type {
	if l.tp == nil {
		return types.I64
	}

	return l.tp.TypeOf(e)
}

// proposition lowers a boolean-valued AST expression into a Proposition.
// Top-level comparisons and boolean connectives map directly. No surface
// form lowers to Forall/Exists here: a call expression (including any
// "forall"-named call) takes the opaque fallback at the end.
func (l *lowerer) proposition(e ast.Expr) *Proposition {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Kind == ast.LitBool {
			if n.Bool {
				return True()
			}

			return False()
		}

	case *ast.BinaryExpr:
		if prop, ok := l.compareProp(n); ok {
			return prop
		}

		switch n.Op {
		case ast.BinAnd:
			return And(l.proposition(n.Left), l.proposition(n.Right))
		case ast.BinOr:
			return Or(l.proposition(n.Left), l.proposition(n.Right))
		}

	case *ast.UnaryExpr:
		if n.Op == ast.UnNot {
			return Not(l.proposition(n.Val))
		}

	case *ast.ContractRefExpr:
		if n.Kind == ast.ContractOld && n.Inner != nil {
			return Old(l.expr(n.Inner))
		}
	}

	// Fallback: treat the expression as an opaque boolean CIR expression
	// compared against true, preserving soundness (the SMT bridge still
	// sees something to assert) without modelling every surface form.
	return Compare(CmpEq, l.expr(e), ConstBool(true))
}

func (l *lowerer) compareProp(n *ast.BinaryExpr) (*Proposition, bool) {
	var op CompareOp

	switch n.Op {
	case ast.BinEq:
		op = CmpEq
	case ast.BinNe:
		op = CmpNe
	case ast.BinLt:
		op = CmpLt
	case ast.BinLe:
		op = CmpLe
	case ast.BinGt:
		op = CmpGt
	case ast.BinGe:
		op = CmpGe
	default:
		return nil, false
	}

	return Compare(op, l.expr(n.Left), l.expr(n.Right)), true
}

// expr lowers an arbitrary AST expression into a CirExpr.
func (l *lowerer) expr(e ast.Expr) *CirExpr {
	switch n := e.(type) {
	case *ast.Literal:
		return l.literal(n)

	case *ast.Ident:
		return Var(n.Name, l.exprType(e))

	case *ast.BinaryExpr:
		return BinOpExpr(binOpName(n.Op), l.expr(n.Left), l.expr(n.Right), l.exprType(e))

	case *ast.UnaryExpr:
		return UnaryOpExpr(unOpName(n.Op), l.expr(n.Val), l.exprType(e))

	case *ast.CallExpr:
		ce := &CirExpr{Kind: ExprCall, Callee: calleeName(n.Callee), Type: l.exprType(e)}
		for _, a := range n.Args {
			ce.Args = append(ce.Args, l.expr(a))
		}

		return ce

	case *ast.IfExpr:
		ie := &CirExpr{Kind: ExprIf, Cond: l.expr(n.Cond), Then: l.expr(n.Then), Type: l.exprType(e)}
		if n.Else != nil {
			ie.Else = l.expr(n.Else)
		}

		return ie

	case *ast.WhileExpr:
		l.effects.Write("<loop>")

		le := &CirExpr{Kind: ExprLoop, LoopCond: l.expr(n.Cond), LoopBody: l.expr(n.Body), Type: types.Unit}
		for _, inv := range n.Invariants {
			le.LoopInvariants = append(le.LoopInvariants, l.proposition(inv))
		}

		return le

	case *ast.FieldExpr:
		l.effects.Read(n.Field)

		return &CirExpr{Kind: ExprField, Base: l.expr(n.Receiver), Field: n.Field, Type: l.exprType(e)}

	case *ast.IndexExpr:
		return &CirExpr{Kind: ExprIndex, Base: l.expr(n.Receiver), Index: l.expr(n.Index), Type: l.exprType(e)}

	case *ast.BlockExpr:
		var last *CirExpr

		for _, s := range n.Stmts {
			last = l.expr(s)
		}

		if last == nil {
			return ConstBool(true)
		}

		return last

	case *ast.AssignExpr:
		if id, ok := n.Target.(*ast.Ident); ok {
			l.effects.Write(id.Name)
		}

		return l.expr(n.Value)

	default:
		// Anything CIR has no direct opinion about (closures, spawn,
		// match, select, method calls) lowers to an opaque named
		// reference; contract reasoning over such subtrees degrades to
		// "unknown but present" rather than failing lowering, which must
		// remain total (§4.3 applies the same totality expectation here).
		return Var("<opaque>", l.exprType(e))
	}
}

func (l *lowerer) literal(n *ast.Literal) *CirExpr {
	switch n.Kind {
	case ast.LitInt:
		return ConstInt(n.Int)
	case ast.LitFloat:
		return ConstFloat(n.Float)
	case ast.LitBool:
		return ConstBool(n.Bool)
	default:
		return ConstInt(0)
	}
}

func binOpName(op ast.BinOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinAnd:
		return "and"
	case ast.BinOr:
		return "or"
	case ast.BinBitAnd:
		return "bitand"
	case ast.BinBitOr:
		return "bitor"
	case ast.BinBitXor:
		return "bitxor"
	case ast.BinShl:
		return "shl"
	case ast.BinShr:
		return "shr"
	default:
		return "?"
	}
}

func unOpName(op ast.UnOp) string {
	if op == ast.UnNot {
		return "not"
	}

	return "-"
}

func calleeName(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}

	return "<callee>"
}
