package typecheck

import (
	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/types"
)

// resolveType converts a surface TypeExpr into a types.Type, resolving
// named references against the registry. An unknown named type becomes a
// KindTypeParam carrying that name (see resolveNamedType), which unifies
// with whatever it meets; no type error is reported for it.
func (c *Checker) resolveType(te ast.TypeExpr) *types.Type {
	switch t := te.(type) {
	case nil:
		return c.freshVar()
	case *ast.NamedTypeExpr:
		return c.resolveNamedType(t)
	case *ast.ArrayTypeExpr:
		return types.Array(c.resolveType(t.Elem), t.Len)
	case *ast.TupleTypeExpr:
		elems := make([]*types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.resolveType(e)
		}

		return types.TupleOf(elems...)
	case *ast.NullableTypeExpr:
		return types.Nullable(c.resolveType(t.Elem))
	case *ast.RefTypeExpr:
		kind := types.KindRef
		if t.Mutable {
			kind = types.KindMutRef
		}

		return &types.Type{Kind: kind, Elem: c.resolveType(t.Elem)}
	case *ast.PointerTypeExpr:
		return &types.Type{Kind: types.KindPointer, Elem: c.resolveType(t.Elem)}
	case *ast.FunctionTypeExpr:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveType(p)
		}

		return types.Func(params, c.resolveType(t.Return))
	default:
		return c.freshVar()
	}
}

func (c *Checker) resolveNamedType(t *ast.NamedTypeExpr) *types.Type {
	switch t.Name {
	case "i32":
		return types.I32
	case "i64":
		return types.I64
	case "u32":
		return types.U32
	case "u64":
		return types.U64
	case "f64":
		return types.F64
	case "bool":
		return types.Bool
	case "char":
		return types.Char
	case "string":
		return types.StringT
	case "unit":
		return types.Unit
	}

	args := make([]*types.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = c.resolveType(a)
	}

	if st, ok := c.reg.LookupStruct(t.Name); ok {
		cp := *st
		cp.TypeArgs = args

		return &cp
	}

	if et, ok := c.reg.LookupEnum(t.Name); ok {
		cp := *et
		cp.TypeArgs = args

		return &cp
	}

	if at, ok := c.reg.LookupAlias(t.Name); ok {
		return c.reg.Resolve(at)
	}

	if tt, ok := c.reg.LookupTrait(t.Name); ok {
		cp := *tt
		cp.TypeArgs = args

		return &cp
	}

	// Type parameter or genuinely unknown name; treated structurally as a
	// parameter so unification can still proceed against concrete uses.
	return &types.Type{Kind: types.KindTypeParam, Name: t.Name, TypeArgs: args}
}
