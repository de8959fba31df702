package typecheck

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/types"
)

func (c *Checker) inferCall(n *ast.CallExpr) (*types.Type, error) {
	calleeT, err := c.checkExpr(n.Callee)
	if err != nil {
		return nil, err
	}

	if calleeT.Kind != types.KindFunction {
		return nil, c.typeError(fmt.Sprintf("cannot call a value of type %s", calleeT), n.Sp)
	}

	if len(n.Args) != len(calleeT.Params) {
		name := calleeName(n.Callee)

		return nil, c.typeError(fmt.Sprintf("%s expects %d argument(s), got %d (parameter types: %s)",
			name, len(calleeT.Params), len(n.Args), paramsString(calleeT.Params)), n.Sp)
	}

	for i, a := range n.Args {
		at, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}

		if !c.unify(at, calleeT.Params[i]) {
			return nil, c.typeError(fmt.Sprintf("argument %d: expected %s, found %s", i, calleeT.Params[i], at), a.Span())
		}
	}

	c.lintUnusedReturn(n, calleeT.Return)

	return calleeT.Return, nil
}

func calleeName(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}

	return "callee"
}

func paramsString(params []*types.Type) string {
	s := "("

	for i, p := range params {
		if i > 0 {
			s += ", "
		}

		s += p.String()
	}

	return s + ")"
}

// dispatchKey maps a receiver type to the registry key its method set is
// stored under: named types dispatch on their own name, nullable and
// array receivers dispatch on the synthetic keys "?"/"[]" registered by
// registerBuiltins, since they have no single nominal registry entry.
func dispatchKey(t *types.Type) string {
	switch t.Kind {
	case types.KindNullable:
		return "?"
	case types.KindArray:
		return "[]"
	case types.KindString:
		return "string"
	case types.KindStruct, types.KindEnum, types.KindAlias, types.KindTrait:
		return t.Name
	default:
		return t.Kind.String()
	}
}

func (c *Checker) inferMethodCall(n *ast.MethodCallExpr) (*types.Type, error) {
	recvT, err := c.checkExpr(n.Receiver)
	if err != nil {
		return nil, err
	}

	key := dispatchKey(recvT)

	fn, ok := c.reg.LookupMethod(key, n.Method)
	if !ok {
		suggestion := suggestMethod(n.Method, c.reg.MethodNames(key))
		msg := fmt.Sprintf("no method %q on type %s", n.Method, recvT)

		if suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}

		return nil, c.typeError(msg, n.Sp)
	}

	// Nullable methods are generic over the wrapped type; instantiate their
	// Divergent placeholders against the receiver's element type.
	if recvT.Kind == types.KindNullable {
		return c.inferNullableMethod(n, recvT, fn)
	}

	for i, a := range n.Args {
		at, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}

		if i < len(fn.Params) && !c.unify(at, fn.Params[i]) {
			return nil, c.typeError(fmt.Sprintf("%s.%s argument %d: expected %s, found %s", recvT, n.Method, i, fn.Params[i], at), a.Span())
		}
	}

	return fn.Return, nil
}

func (c *Checker) inferNullableMethod(n *ast.MethodCallExpr, recvT, fn *types.Type) (*types.Type, error) {
	switch n.Method {
	case "is_some", "is_none":
		return types.Bool, nil
	case "unwrap":
		return recvT.Elem, nil
	case "unwrap_or":
		if len(n.Args) != 1 {
			return nil, c.typeError("unwrap_or expects exactly one argument", n.Sp)
		}

		dt, err := c.checkExpr(n.Args[0])
		if err != nil {
			return nil, err
		}

		if !c.unify(dt, recvT.Elem) {
			return nil, c.typeError(fmt.Sprintf("unwrap_or default: expected %s, found %s", recvT.Elem, dt), n.Args[0].Span())
		}

		return recvT.Elem, nil
	default:
		return fn.Return, nil
	}
}

func (c *Checker) inferField(n *ast.FieldExpr) (*types.Type, error) {
	recvT, err := c.checkExpr(n.Receiver)
	if err != nil {
		return nil, err
	}

	base := c.reg.Resolve(recvT)
	if base == nil {
		base = recvT
	}

	switch base.Kind {
	case types.KindStruct:
		idx := indexOf(base.FieldNames, n.Field)
		if idx < 0 {
			return nil, c.typeError(fmt.Sprintf("%s has no field %q", base.Name, n.Field), n.Sp)
		}

		return base.FieldTypes[idx], nil
	case types.KindTuple:
		idx := tupleFieldIndex(n.Field)
		if idx < 0 || idx >= len(base.Tuple) {
			return nil, c.typeError(fmt.Sprintf("tuple has no field %q", n.Field), n.Sp)
		}

		return base.Tuple[idx], nil
	default:
		return nil, c.typeError(fmt.Sprintf("type %s has no fields", recvT), n.Sp)
	}
}

func tupleFieldIndex(field string) int {
	n := 0

	for _, ch := range field {
		if ch < '0' || ch > '9' {
			return -1
		}

		n = n*10 + int(ch-'0')
	}

	return n
}

func (c *Checker) inferIndex(n *ast.IndexExpr) (*types.Type, error) {
	recvT, err := c.checkExpr(n.Receiver)
	if err != nil {
		return nil, err
	}

	idxT, err := c.checkExpr(n.Index)
	if err != nil {
		return nil, err
	}

	if !types.IsInteger(idxT) && idxT.Kind != types.KindRange {
		return nil, c.typeError(fmt.Sprintf("index must be an integer or range, found %s", idxT), n.Index.Span())
	}

	if recvT.Kind != types.KindArray {
		return nil, c.typeError(fmt.Sprintf("cannot index type %s", recvT), n.Sp)
	}

	if idxT.Kind == types.KindRange {
		return recvT, nil
	}

	return recvT.Elem, nil
}
