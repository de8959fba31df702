// Package typecheck implements §4.1 of the BMB compiler: name resolution,
// type inference/unification, method dispatch, exhaustiveness checking,
// and lint warnings, over the AST defined in internal/ast.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/bmberr"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/position"
	"github.com/bmb-lang/bmbc/internal/types"
)

// TypedProgram is the output of check_program: the original AST annotated
// with a resolved type per expression, plus the registry built while
// checking it.
type TypedProgram struct {
	Program   *ast.Program
	Registry  *types.Registry
	ExprTypes map[ast.Expr]*types.Type
	FuncSpans map[string]position.Span
}

// TypeOf looks up the resolved type of an expression, defaulting to the
// divergent type if the checker never visited it (should not happen for a
// program that checked without error).
func (tp *TypedProgram) TypeOf(e ast.Expr) *types.Type {
	if t, ok := tp.ExprTypes[e]; ok {
		return t
	}

	return types.Divergent
}

// Checker performs a single-pass, memoized type inference over a program.
// There is no state machine across calls: each Check call is self-contained
// and returns accumulated warnings alongside the first hard error.
type Checker struct {
	reg       *types.Registry
	exprTypes map[ast.Expr]*types.Type
	funcSpans map[string]position.Span
	warnings  []*diagnostic.Diagnostic
	scopes    []map[string]*binding
	uvarGen   int
	solver    *unifier
}

type binding struct {
	typ     *types.Type
	mutable bool
	used    bool
	sp      position.Span
}

// New creates a checker with a fresh, empty registry.
func New() *Checker {
	c := &Checker{
		reg:       types.NewRegistry(),
		exprTypes: make(map[ast.Expr]*types.Type),
		funcSpans: make(map[string]position.Span),
	}
	c.solver = newUnifier()
	registerBuiltins(c.reg)
	c.pushScope()

	return c
}

// CheckProgram implements check_program(ast) -> (typed_ast, warnings).
func CheckProgram(prog *ast.Program) (*TypedProgram, []*diagnostic.Diagnostic, error) {
	return CheckProgramWithImports(prog, nil)
}

// Imported describes a symbol resolved from another module's interface,
// seeded into the registry before checking begins.
type Imported struct {
	Name string
	Type *types.Type
}

// CheckProgramWithImports implements check_program_with_imports(ast,
// imports) -> (typed_ast, warnings), seeding the registry with resolved
// external symbols before the pass begins. Import declarations in prog are
// not checked against imports, so an unresolved import reports no error.
func CheckProgramWithImports(prog *ast.Program, imports []Imported) (*TypedProgram, []*diagnostic.Diagnostic, error) {
	c := New()

	for _, im := range imports {
		c.reg.DefineFunction(im.Name, im.Type)
	}

	// Pass 1: register every top-level declaration's signature so forward
	// references (mutually recursive functions, methods defined below their
	// use site) resolve without a second file pass.
	for _, d := range prog.Decls {
		if err := c.declareTop(d); err != nil {
			return nil, c.warnings, err
		}
	}

	// Pass 2: check bodies.
	for _, d := range prog.Decls {
		if err := c.checkDecl(d); err != nil {
			return nil, c.warnings, err
		}
	}

	c.checkUnusedBindings()

	tp := &TypedProgram{
		Program:   prog,
		Registry:  c.reg,
		ExprTypes: c.exprTypes,
		FuncSpans: c.funcSpans,
	}

	return tp, c.warnings, nil
}

func (c *Checker) pushScope() { c.scopes = append(c.scopes, make(map[string]*binding)) }

// popScope discards the innermost scope, warning about any binding it held
// that was declared but never read. The module-level scope (index 0) is
// exempt: top-level functions are reported as unused separately, by usage
// analysis over the registry rather than over bindings (checkUnusedBindings);
// unused constants are not reported.
func (c *Checker) popScope() {
	top := c.scopes[len(c.scopes)-1]
	if len(c.scopes) > 1 {
		for name, b := range top {
			if b.used || name == "self" || name == "_" || strings.HasPrefix(name, "_") {
				continue
			}

			c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnUnusedBinding.code()).
				Title("unused binding").
				Message(fmt.Sprintf("binding %q is never used", name)).
				Span(b.sp).Tag("unused-binding").Build())
		}
	}

	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) declare(name string, t *types.Type, mutable bool, sp position.Span) {
	top := c.scopes[len(c.scopes)-1]
	if _, shadow := c.lookup(name); shadow {
		c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code("W4002").
			Title("shadowed binding").
			Message(fmt.Sprintf("binding %q shadows an outer binding", name)).
			Span(sp).Tag("shadow").Build())
	}

	top[name] = &binding{typ: t, mutable: mutable, sp: sp}
}

func (c *Checker) lookup(name string) (*binding, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b, true
		}
	}

	return nil, false
}

func (c *Checker) warn(d *diagnostic.Diagnostic) { c.warnings = append(c.warnings, d) }

func (c *Checker) typeError(message string, sp position.Span) error {
	return bmberr.TypeError(message, sp)
}

func (c *Checker) freshVar() *types.Type {
	c.uvarGen++

	return &types.Type{Kind: types.KindTypeParam, Name: fmt.Sprintf("'t%d", c.uvarGen)}
}

// checkUnusedBindings reports top-level declarations that are never
// referenced. Block-local bindings are already reported incrementally as
// their scope closes (see popScope).
func (c *Checker) checkUnusedBindings() {
	for name, fn := range c.reg.Functions() {
		if fn == nil || c.reg.FunctionUsed(name) || name == "main" {
			continue
		}

		// funcSpans only records user-declared functions; builtins (and
		// imported symbols, seeded directly into the registry) have no
		// span and are exempt from this check.
		sp, ok := c.funcSpans[name]
		if !ok {
			continue
		}

		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnUnusedFunction.code()).
			Title("unused function").
			Message(fmt.Sprintf("function %q is never called", name)).
			Span(sp).Tag("unused-function").Build())
	}
}
