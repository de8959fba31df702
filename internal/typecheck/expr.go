package typecheck

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/types"
)

// checkExpr infers the type of e, memoizing the result in c.exprTypes and
// emitting lints along the way. It returns the first hard type error.
func (c *Checker) checkExpr(e ast.Expr) (*types.Type, error) {
	t, err := c.infer(e)
	if err != nil {
		return nil, err
	}

	c.exprTypes[e] = t

	return t, nil
}

func (c *Checker) infer(e ast.Expr) (*types.Type, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return c.inferLiteral(n), nil

	case *ast.Ident:
		if n.Name == "true" || n.Name == "false" {
			return types.Bool, nil
		}

		if b, ok := c.lookup(n.Name); ok {
			b.used = true

			return b.typ, nil
		}

		if fn, ok := c.reg.LookupFunction(n.Name); ok {
			return fn, nil
		}

		if ct, ok := c.reg.LookupConstant(n.Name); ok {
			return ct, nil
		}

		return nil, c.typeError(fmt.Sprintf("undefined name %q", n.Name), n.Sp)

	case *ast.BinaryExpr:
		return c.inferBinary(n)

	case *ast.UnaryExpr:
		return c.inferUnary(n)

	case *ast.LetExpr:
		return c.inferLet(n)

	case *ast.AssignExpr:
		return c.inferAssign(n)

	case *ast.BlockExpr:
		return c.inferBlock(n)

	case *ast.IfExpr:
		return c.inferIf(n)

	case *ast.MatchExpr:
		return c.inferMatch(n)

	case *ast.WhileExpr:
		return c.inferWhile(n)

	case *ast.ForInExpr:
		return c.inferForIn(n)

	case *ast.LoopExpr:
		if _, err := c.checkExpr(n.Body); err != nil {
			return nil, err
		}

		return types.Unit, nil

	case *ast.BreakExpr:
		if n.Value != nil {
			return c.checkExpr(n.Value)
		}

		return types.Divergent, nil

	case *ast.ContinueExpr:
		return types.Divergent, nil

	case *ast.ReturnExpr:
		if n.Value != nil {
			if _, err := c.checkExpr(n.Value); err != nil {
				return nil, err
			}
		}

		return types.Divergent, nil

	case *ast.CallExpr:
		return c.inferCall(n)

	case *ast.MethodCallExpr:
		return c.inferMethodCall(n)

	case *ast.FieldExpr:
		return c.inferField(n)

	case *ast.IndexExpr:
		return c.inferIndex(n)

	case *ast.StructLitExpr:
		return c.inferStructLit(n)

	case *ast.EnumVariantExpr:
		return c.inferEnumVariant(n)

	case *ast.TupleExpr:
		elems := make([]*types.Type, len(n.Elems))

		for i, el := range n.Elems {
			t, err := c.checkExpr(el)
			if err != nil {
				return nil, err
			}

			elems[i] = t
		}

		return types.TupleOf(elems...), nil

	case *ast.ArrayLitExpr:
		return c.inferArrayLit(n)

	case *ast.ArrayRepeatExpr:
		elemT, err := c.checkExpr(n.Value)
		if err != nil {
			return nil, err
		}

		if _, err := c.checkExpr(n.Count); err != nil {
			return nil, err
		}

		return types.Array(elemT, -1), nil

	case *ast.RefExpr:
		inner, err := c.checkExpr(n.Value)
		if err != nil {
			return nil, err
		}

		kind := types.KindRef
		if n.Mutable {
			kind = types.KindMutRef
		}

		return &types.Type{Kind: kind, Elem: inner}, nil

	case *ast.CastExpr:
		if _, err := c.checkExpr(n.Value); err != nil {
			return nil, err
		}

		return c.resolveType(n.Type), nil

	case *ast.ClosureExpr:
		return c.inferClosure(n)

	case *ast.SpawnExpr:
		inner, err := c.checkExpr(n.Body)
		if err != nil {
			return nil, err
		}

		return &types.Type{Kind: types.KindFuture, Elem: inner}, nil

	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			if _, err := c.checkExpr(arm.Body); err != nil {
				return nil, err
			}
		}

		if n.Default != nil {
			return c.checkExpr(n.Default)
		}

		return types.Unit, nil

	case *ast.RangeExpr:
		elemT, err := c.checkExpr(n.Start)
		if err != nil {
			return nil, err
		}

		if n.End != nil {
			if _, err := c.checkExpr(n.End); err != nil {
				return nil, err
			}
		}

		return &types.Type{Kind: types.KindRange, Elem: elemT}, nil

	case *ast.ContractRefExpr:
		if n.Inner != nil {
			return c.checkExpr(n.Inner)
		}

		return types.Bool, nil

	default:
		return nil, c.typeError(fmt.Sprintf("unsupported expression %T", e), e.Span())
	}
}

func (c *Checker) inferLiteral(n *ast.Literal) *types.Type {
	switch n.Kind {
	case ast.LitInt:
		return types.I64
	case ast.LitFloat:
		return types.F64
	case ast.LitBool:
		return types.Bool
	case ast.LitString:
		return types.StringT
	case ast.LitChar:
		return types.Char
	case ast.LitUnit:
		return types.Unit
	case ast.LitNull:
		return types.Nullable(c.freshVar())
	default:
		return types.Divergent
	}
}

func (c *Checker) inferBinary(n *ast.BinaryExpr) (*types.Type, error) {
	lt, err := c.checkExpr(n.Left)
	if err != nil {
		return nil, err
	}

	rt, err := c.checkExpr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.BinEq, ast.BinNe:
		if !c.unify(lt, rt) {
			return nil, c.typeError(fmt.Sprintf("cannot compare %s and %s", lt, rt), n.Sp)
		}

		c.lintSelfComparison(n)

		return types.Bool, nil

	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		if !c.unify(lt, rt) {
			return nil, c.typeError(fmt.Sprintf("cannot compare %s and %s", lt, rt), n.Sp)
		}

		return types.Bool, nil

	case ast.BinAnd, ast.BinOr:
		if !c.unify(lt, types.Bool) || !c.unify(rt, types.Bool) {
			return nil, c.typeError("logical operator requires bool operands", n.Sp)
		}

		return types.Bool, nil

	default: // arithmetic / bitwise
		if !c.unify(lt, rt) {
			return nil, c.typeError(fmt.Sprintf("mismatched operand types %s and %s", lt, rt), n.Sp)
		}

		c.lintIdentityOp(n, lt)
		c.lintAbsorbingElement(n)

		if n.Op == ast.BinDiv && types.IsInteger(lt) {
			c.lintIntegerDivisionTruncation(n)
		}

		return lt, nil
	}
}

func (c *Checker) inferUnary(n *ast.UnaryExpr) (*types.Type, error) {
	t, err := c.checkExpr(n.Val)
	if err != nil {
		return nil, err
	}

	c.lintDoubleNegation(n)

	switch n.Op {
	case ast.UnNot:
		if !c.unify(t, types.Bool) {
			return nil, c.typeError("'!' requires a bool operand", n.Sp)
		}

		return types.Bool, nil
	default:
		return t, nil
	}
}

func (c *Checker) inferLet(n *ast.LetExpr) (*types.Type, error) {
	valueT, err := c.checkExpr(n.Value)
	if err != nil {
		return nil, err
	}

	declared := valueT
	if n.Type != nil {
		declared = c.resolveType(n.Type)
		declared = coerceNullable(valueT, declared)

		if !c.unify(valueT, declared) {
			return nil, c.typeError(fmt.Sprintf("let %s: expected %s, found %s", n.Name, declared, valueT), n.Sp)
		}
	}

	c.declare(n.Name, declared, n.Mutable, n.Sp)

	return types.Unit, nil
}

func (c *Checker) inferAssign(n *ast.AssignExpr) (*types.Type, error) {
	targetT, err := c.checkExpr(n.Target)
	if err != nil {
		return nil, err
	}

	if id, ok := n.Target.(*ast.Ident); ok {
		if b, found := c.lookup(id.Name); found && !b.mutable {
			return nil, c.typeError(fmt.Sprintf("cannot assign to immutable binding %q", id.Name), n.Sp)
		}
	}

	valueT, err := c.checkExpr(n.Value)
	if err != nil {
		return nil, err
	}

	if !c.unify(targetT, valueT) {
		return nil, c.typeError(fmt.Sprintf("cannot assign %s to %s", valueT, targetT), n.Sp)
	}

	return types.Unit, nil
}

func (c *Checker) inferBlock(n *ast.BlockExpr) (*types.Type, error) {
	c.pushScope()
	defer c.popScope()

	result := types.Unit
	unreachableFrom := -1

	for i, stmt := range n.Stmts {
		if unreachableFrom >= 0 && i > unreachableFrom {
			c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code("W4004").
				Title("unreachable code").
				Message("this code is never reached").
				Span(stmt.Span()).Tag("unreachable").Build())
		}

		t, err := c.checkExpr(stmt)
		if err != nil {
			return nil, err
		}

		result = t

		if t.Kind == types.KindDivergent && unreachableFrom < 0 {
			unreachableFrom = i
		}
	}

	return result, nil
}

func (c *Checker) inferIf(n *ast.IfExpr) (*types.Type, error) {
	condT, err := c.checkExpr(n.Cond)
	if err != nil {
		return nil, err
	}

	if !c.unify(condT, types.Bool) {
		return nil, c.typeError("if condition must be bool", n.Cond.Span())
	}

	c.lintConstantCondition(n.Cond, "if")
	c.lintNegatedIf(n)

	thenT, err := c.checkExpr(n.Then)
	if err != nil {
		return nil, err
	}

	if n.Else == nil {
		return types.Unit, nil
	}

	elseT, err := c.checkExpr(n.Else)
	if err != nil {
		return nil, err
	}

	if thenT.Kind == types.KindDivergent {
		return elseT, nil
	}

	if elseT.Kind == types.KindDivergent {
		return thenT, nil
	}

	if !c.unify(thenT, elseT) {
		return nil, c.typeError(fmt.Sprintf("if branches diverge: %s vs %s", thenT, elseT), n.Sp)
	}

	return thenT, nil
}

func (c *Checker) inferWhile(n *ast.WhileExpr) (*types.Type, error) {
	condT, err := c.checkExpr(n.Cond)
	if err != nil {
		return nil, err
	}

	if !c.unify(condT, types.Bool) {
		return nil, c.typeError("while condition must be bool", n.Cond.Span())
	}

	c.lintConstantCondition(n.Cond, "while")

	for _, inv := range n.Invariants {
		if _, err := c.checkExpr(inv); err != nil {
			return nil, err
		}
	}

	if _, err := c.checkExpr(n.Body); err != nil {
		return nil, err
	}

	return types.Unit, nil
}

func (c *Checker) inferForIn(n *ast.ForInExpr) (*types.Type, error) {
	iterT, err := c.checkExpr(n.Iterable)
	if err != nil {
		return nil, err
	}

	var elemT *types.Type

	switch n.Kind {
	case ast.ForInRange:
		if iterT.Kind == types.KindRange {
			elemT = iterT.Elem
		} else {
			elemT = types.I64
		}
	case ast.ForInArray:
		if iterT.Kind == types.KindArray {
			elemT = iterT.Elem
		} else {
			elemT = c.freshVar()
		}
	default:
		elemT = c.freshVar()
	}

	c.pushScope()
	c.declare(n.Binding, elemT, false, n.Sp)

	for _, inv := range n.Invariants {
		if _, err := c.checkExpr(inv); err != nil {
			c.popScope()

			return nil, err
		}
	}

	if _, err := c.checkExpr(n.Body); err != nil {
		c.popScope()

		return nil, err
	}

	c.popScope()

	return types.Unit, nil
}

func (c *Checker) inferArrayLit(n *ast.ArrayLitExpr) (*types.Type, error) {
	if len(n.Elems) == 0 {
		return types.Array(c.freshVar(), 0), nil
	}

	first, err := c.checkExpr(n.Elems[0])
	if err != nil {
		return nil, err
	}

	for _, el := range n.Elems[1:] {
		t, err := c.checkExpr(el)
		if err != nil {
			return nil, err
		}

		if !c.unify(first, t) {
			return nil, c.typeError(fmt.Sprintf("array element type mismatch: %s vs %s", first, t), el.Span())
		}
	}

	return types.Array(first, len(n.Elems)), nil
}

func (c *Checker) inferClosure(n *ast.ClosureExpr) (*types.Type, error) {
	c.pushScope()
	defer c.popScope()

	params := make([]*types.Type, len(n.Params))

	for i, p := range n.Params {
		pt := c.resolveType(p.Type)
		params[i] = pt
		c.declare(p.Name, pt, false, p.Sp)
	}

	bodyT, err := c.checkExpr(n.Body)
	if err != nil {
		return nil, err
	}

	return types.Func(params, bodyT), nil
}

func (c *Checker) inferStructLit(n *ast.StructLitExpr) (*types.Type, error) {
	st, ok := c.reg.LookupStruct(n.TypeName)
	if !ok {
		return nil, c.typeError(fmt.Sprintf("unknown struct type %q", n.TypeName), n.Sp)
	}

	for _, f := range n.Fields {
		idx := indexOf(st.FieldNames, f.Name)
		if idx < 0 {
			return nil, c.typeError(fmt.Sprintf("%s has no field %q", n.TypeName, f.Name), n.Sp)
		}

		vt, err := c.checkExpr(f.Value)
		if err != nil {
			return nil, err
		}

		if !c.unify(vt, st.FieldTypes[idx]) {
			return nil, c.typeError(fmt.Sprintf("field %q: expected %s, found %s", f.Name, st.FieldTypes[idx], vt), f.Value.Span())
		}
	}

	return st, nil
}

func (c *Checker) inferEnumVariant(n *ast.EnumVariantExpr) (*types.Type, error) {
	et, ok := c.reg.LookupEnum(n.TypeName)
	if !ok {
		return nil, c.typeError(fmt.Sprintf("unknown enum type %q", n.TypeName), n.Sp)
	}

	idx := indexOf(et.VariantNames, n.Variant)
	if idx < 0 {
		return nil, c.typeError(fmt.Sprintf("%s has no variant %q", n.TypeName, n.Variant), n.Sp)
	}

	payload := et.VariantPayload[idx]
	if len(n.Args) != len(payload) {
		return nil, c.typeError(fmt.Sprintf("%s::%s expects %d argument(s), got %d", n.TypeName, n.Variant, len(payload), len(n.Args)), n.Sp)
	}

	for i, a := range n.Args {
		at, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}

		if !c.unify(at, payload[i]) {
			return nil, c.typeError(fmt.Sprintf("%s::%s argument %d: expected %s, found %s", n.TypeName, n.Variant, i, payload[i], at), a.Span())
		}
	}

	return et, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}

	return -1
}
