package lowering

import (
	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// Lower translates a type-checked program into a MirProgram: one
// MirFunction per FunctionDecl and per ImplDecl method, plus any closures
// lifted out of their bodies along the way.
func Lower(tp TypeOracle, program *ast.Program, reg *types.Registry) *mir.MirProgram {
	out := mir.NewMirProgram()
	builtins := NewBuiltinRegistry()

	for _, decl := range program.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			fn, extra := lowerFunction(tp, reg, builtins, d.Name, d)
			out.Functions[fn.Name] = fn

			for _, e := range extra {
				out.Functions[e.Name] = e
			}

		case *ast.ImplDecl:
			prefix := typeExprName(d.Type)

			for _, m := range d.Methods {
				fn, extra := lowerFunction(tp, reg, builtins, prefix+"_"+m.Name, m)
				out.Functions[fn.Name] = fn

				for _, e := range extra {
					out.Functions[e.Name] = e
				}
			}
		}
	}

	return out
}

func lowerFunction(tp TypeOracle, reg *types.Registry, builtins *BuiltinRegistry, name string, decl *ast.FunctionDecl) (*mir.MirFunction, []*mir.MirFunction) {
	fn := &mir.MirFunction{Name: name}

	for _, p := range decl.Params {
		fn.Params = append(fn.Params, mir.Param{Name: p.Name, Type: resolveTypeExpr(reg, p.Type)})
	}

	fn.Return = resolveTypeExpr(reg, decl.Return)

	for _, pre := range decl.Contract.Pre {
		fn.Attributes.PreFacts = append(fn.Attributes.PreFacts, mir.ContractFact{Proposition: exprSourceText(pre)})
	}

	for _, post := range decl.Contract.Post {
		fn.Attributes.PostFacts = append(fn.Attributes.PostFacts, mir.ContractFact{Proposition: exprSourceText(post)})
	}

	b := newBuilder(fn, builtins)
	entry := b.newBlock("entry")
	b.switchTo(entry)

	for _, p := range decl.Params {
		b.bind(p.Name, p.Name)
	}

	c := &ctx{tp: tp}

	result := b.lowerExpr(c, decl.Body)
	if !b.terminated {
		b.setTerm(mir.ReturnValue(result))
	}

	fn.Attributes.Pure = isPureFunction(fn)
	fn.Attributes.IsMemoryFree = fn.Attributes.Pure

	return fn, c.extra
}

// isPureFunction reports whether every instruction in fn is one of the pure
// kinds §4.4 item 3 enumerates (no calls, no memory stores) -- a cheap
// necessary condition the optimizer's purity analysis refines further.
func isPureFunction(fn *mir.MirFunction) bool {
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if !instr.Kind.IsPureKind() {
				return false
			}
		}
	}

	return true
}

// exprSourceText is a placeholder rendering of a contract clause used only
// as a human-readable label on MIR-level ContractFact attributes; the
// authoritative proposition representation contract verification reasons
// about lives in internal/cir, built independently from the same AST.
func exprSourceText(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.BinaryExpr:
		return exprSourceText(n.Left) + " " + binOpStr(n.Op) + " " + exprSourceText(n.Right)
	default:
		return "<expr>"
	}
}

func typeExprName(t ast.TypeExpr) string {
	if nt, ok := t.(*ast.NamedTypeExpr); ok {
		return nt.Name
	}

	return "anon"
}

// resolveTypeExpr converts a surface TypeExpr into a resolved *types.Type,
// consulting reg for named struct/enum/alias references. This mirrors the
// resolution internal/typecheck performs while checking, repeated here
// since lowering consumes declaration shapes (parameter/return annotations)
// the type checker doesn't expose pre-resolved.
func resolveTypeExpr(reg *types.Registry, t ast.TypeExpr) *types.Type {
	if t == nil {
		return types.Unit
	}

	switch te := t.(type) {
	case *ast.NamedTypeExpr:
		return resolveNamed(reg, te.Name)
	case *ast.ArrayTypeExpr:
		return types.Array(resolveTypeExpr(reg, te.Elem), te.Len)
	case *ast.TupleTypeExpr:
		elems := make([]*types.Type, len(te.Elems))
		for i, el := range te.Elems {
			elems[i] = resolveTypeExpr(reg, el)
		}

		return types.TupleOf(elems...)
	case *ast.NullableTypeExpr:
		return types.Nullable(resolveTypeExpr(reg, te.Elem))
	case *ast.RefTypeExpr:
		kind := types.KindRef
		if te.Mutable {
			kind = types.KindMutRef
		}

		return &types.Type{Kind: kind, Elem: resolveTypeExpr(reg, te.Elem)}
	case *ast.PointerTypeExpr:
		return &types.Type{Kind: types.KindPointer, Elem: resolveTypeExpr(reg, te.Elem)}
	case *ast.FunctionTypeExpr:
		params := make([]*types.Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = resolveTypeExpr(reg, p)
		}

		return types.Func(params, resolveTypeExpr(reg, te.Return))
	default:
		return types.I64
	}
}

func resolveNamed(reg *types.Registry, name string) *types.Type {
	switch name {
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

	if reg == nil {
		return &types.Type{Kind: types.KindStruct, Name: name}
	}

	if t, ok := reg.LookupStruct(name); ok {
		return t
	}

	if t, ok := reg.LookupEnum(name); ok {
		return t
	}

	if t, ok := reg.LookupAlias(name); ok {
		return reg.Resolve(t)
	}

	return &types.Type{Kind: types.KindStruct, Name: name}
}
