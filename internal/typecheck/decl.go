package typecheck

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/types"
)

// declareTop registers a top-level declaration's signature without
// checking its body, so mutually recursive and forward-referenced
// definitions resolve in a single pass.
func (c *Checker) declareTop(d ast.Decl) error {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		fn := c.functionType(decl)

		if dup := c.reg.DefineFunction(decl.Name, fn); dup {
			c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code("W4003").
				Title("duplicate function").
				Message(fmt.Sprintf("function %q is already defined", decl.Name)).
				Span(decl.Sp).Tag("duplicate-function").Build())
		}

		c.funcSpans[decl.Name] = decl.Sp

	case *ast.StructDecl:
		fieldNames := make([]string, len(decl.Fields))
		fieldTypes := make([]*types.Type, len(decl.Fields))
		seen := map[string]bool{}

		for i, f := range decl.Fields {
			if seen[f.Name] {
				return c.typeError(fmt.Sprintf("duplicate field %q in struct %s", f.Name, decl.Name), f.Sp)
			}

			seen[f.Name] = true
			fieldNames[i] = f.Name
			fieldTypes[i] = c.resolveType(f.Type)
		}

		st := &types.Type{Kind: types.KindStruct, Name: decl.Name, FieldNames: fieldNames, FieldTypes: fieldTypes}
		if err := c.reg.DefineStruct(st); err != nil {
			return c.typeError(err.Error(), decl.Sp)
		}

	case *ast.EnumDecl:
		variantNames := make([]string, len(decl.Variants))
		payloads := make([][]*types.Type, len(decl.Variants))
		seen := map[string]bool{}

		for i, v := range decl.Variants {
			if seen[v.Name] {
				return c.typeError(fmt.Sprintf("duplicate variant %q in enum %s", v.Name, decl.Name), v.Sp)
			}

			seen[v.Name] = true
			variantNames[i] = v.Name
			payload := make([]*types.Type, len(v.Payload))

			for j, p := range v.Payload {
				payload[j] = c.resolveType(p)
			}

			payloads[i] = payload
		}

		et := &types.Type{Kind: types.KindEnum, Name: decl.Name, VariantNames: variantNames, VariantPayload: payloads}
		if err := c.reg.DefineEnum(et); err != nil {
			return c.typeError(err.Error(), decl.Sp)
		}

	case *ast.TraitDecl:
		tt := &types.Type{Kind: types.KindTrait, Name: decl.Name}
		if err := c.reg.DefineTrait(tt); err != nil {
			return c.typeError(err.Error(), decl.Sp)
		}

	case *ast.ConstDecl:
		c.reg.DefineConstant(decl.Name, c.resolveType(decl.Type))

	case *ast.ImplDecl:
		typeName := implTypeName(decl.Type)
		impl := &types.TraitImpl{Trait: decl.Trait, Methods: make(map[string]*types.Type)}

		for _, m := range decl.Methods {
			impl.Methods[m.Name] = c.functionType(m)
		}

		c.reg.AddImpl(typeName, impl)

	case *ast.ImportDecl:
		// Module resolution is out of scope; the symbol is assumed resolved
		// by the (external) module resolver and carried only by name here.

	default:
		return c.typeError(fmt.Sprintf("unsupported top-level declaration %T", d), d.Span())
	}

	return nil
}

func (c *Checker) functionType(decl *ast.FunctionDecl) *types.Type {
	params := make([]*types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = c.resolveType(p.Type)
	}

	return types.Func(params, c.resolveType(decl.Return))
}

func implTypeName(te ast.TypeExpr) string {
	if n, ok := te.(*ast.NamedTypeExpr); ok {
		return n.Name
	}

	return ""
}

// checkDecl type-checks a declaration's body against its already-declared
// signature.
func (c *Checker) checkDecl(d ast.Decl) error {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		return c.checkFunctionBody(decl, "")
	case *ast.ImplDecl:
		typeName := implTypeName(decl.Type)
		for _, m := range decl.Methods {
			if err := c.checkFunctionBody(m, typeName); err != nil {
				return err
			}
		}

		return nil
	default:
		return nil
	}
}

func (c *Checker) checkFunctionBody(decl *ast.FunctionDecl, receiverType string) error {
	fn, _ := c.reg.LookupFunctionSignature(decl.Name)
	if receiverType != "" {
		fn = c.functionType(decl)
	}

	c.pushScope()
	defer c.popScope()

	if receiverType != "" {
		c.declare("self", &types.Type{Kind: types.KindStruct, Name: receiverType}, false, decl.Sp)
	}

	for i, p := range decl.Params {
		var pt *types.Type
		if fn != nil && i < len(fn.Params) {
			pt = fn.Params[i]
		} else {
			pt = c.resolveType(p.Type)
		}

		c.declare(p.Name, pt, false, p.Sp)
	}

	for _, pre := range decl.Contract.Pre {
		if _, err := c.checkExpr(pre); err != nil {
			return err
		}
	}

	var ret *types.Type
	if fn != nil {
		ret = fn.Return
	} else {
		ret = c.resolveType(decl.Return)
	}

	bodyT, err := c.checkExpr(decl.Body)
	if err != nil {
		return err
	}

	if !c.unify(bodyT, ret) && ret.Kind != types.KindDivergent {
		return c.typeError(fmt.Sprintf("function %s: expected return type %s, found %s", decl.Name, ret, bodyT), decl.Body.Span())
	}

	hasPost := len(decl.Contract.Post) > 0
	for _, post := range decl.Contract.Post {
		c.declare("result", ret, false, decl.Sp)

		if _, err := c.checkExpr(post); err != nil {
			return err
		}
	}

	if !hasPost && len(decl.Contract.Pre) > 0 {
		c.warn(diagnostic.NewDiagnostic().Warning().Contract().Code("W7001").
			Title("missing postcondition").
			Message(fmt.Sprintf("function %s declares preconditions but no postcondition", decl.Name)).
			Span(decl.Sp).Tag("missing-postcondition").Build())
	}

	return nil
}
