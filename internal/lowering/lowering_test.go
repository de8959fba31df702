package lowering

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// stubOracle resolves every expression to i64, adequate for lowering shape
// assertions that don't depend on precise inference.
type stubOracle struct{}

func (stubOracle) TypeOf(e ast.Expr) *types.Type { return types.I64 }

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.LitInt, Int: v} }

func decl(name string, params []*ast.Param, body ast.Expr) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, Params: params, Body: body}
}

func TestLowerSimpleArithmeticFunction(t *testing.T) {
	body := &ast.BinaryExpr{Op: ast.BinAdd, Left: ident("a"), Right: ident("b")}
	d := decl("add", []*ast.Param{{Name: "a"}, {Name: "b"}}, body)

	fn, extra := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "add", d)

	if len(extra) != 0 {
		t.Fatalf("expected no lifted closures, got %d", len(extra))
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	entry := fn.Entry()
	if entry == nil || len(entry.Instructions) == 0 {
		t.Fatal("expected a non-empty entry block")
	}

	if entry.Term.Kind != mir.TermReturn {
		t.Fatalf("expected return terminator, got %v", entry.Term.Kind)
	}
}

func TestLowerIfElseBothReturningMergesToUnreachable(t *testing.T) {
	body := &ast.IfExpr{
		Cond: ident("cond"),
		Then: &ast.ReturnExpr{Value: intLit(1)},
		Else: &ast.ReturnExpr{Value: intLit(2)},
	}
	d := decl("f", []*ast.Param{{Name: "cond"}}, body)

	fn, _ := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "f", d)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var mergeFound bool

	for _, blk := range fn.Blocks {
		if containsPrefix(blk.Label, "if_merge") {
			mergeFound = true

			if blk.Term.Kind != mir.TermReturn {
				t.Fatalf("unreachable merge block should still terminate cleanly, got %v", blk.Term.Kind)
			}
		}
	}

	if !mergeFound {
		t.Fatal("expected an if_merge block in the lowered function")
	}
}

func TestLowerIfElseProducesPhi(t *testing.T) {
	body := &ast.IfExpr{
		Cond: ident("cond"),
		Then: intLit(1),
		Else: intLit(2),
	}
	d := decl("f", []*ast.Param{{Name: "cond"}}, body)

	fn, _ := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "f", d)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var sawPhi bool

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Kind == mir.InstrPhi {
				sawPhi = true

				if len(instr.PhiOperands) != 2 {
					t.Fatalf("expected 2 phi operands, got %d", len(instr.PhiOperands))
				}
			}
		}
	}

	if !sawPhi {
		t.Fatal("expected a Phi merging both if arms")
	}
}

func TestLowerWhileLoopWellFormed(t *testing.T) {
	body := &ast.WhileExpr{
		Cond: ident("cond"),
		Body: &ast.AssignExpr{Target: ident("cond"), Op: "=", Value: intLit(0)},
	}
	d := decl("f", []*ast.Param{{Name: "cond"}}, body)

	fn, _ := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "f", d)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLowerForInRangeBuildsLoopPhi(t *testing.T) {
	body := &ast.ForInExpr{
		Binding:  "i",
		Kind:     ast.ForInRange,
		Iterable: &ast.RangeExpr{Start: intLit(0), End: intLit(10)},
		Body:     &ast.BreakExpr{},
	}
	d := decl("f", nil, body)

	fn, _ := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "f", d)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var header *mir.BasicBlock

	for _, blk := range fn.Blocks {
		if containsPrefix(blk.Label, "for_header") {
			header = blk
		}
	}

	if header == nil {
		t.Fatal("expected a for_header block")
	}

	if len(header.Instructions) == 0 || header.Instructions[0].Kind != mir.InstrPhi {
		t.Fatal("expected the loop induction variable's Phi as the header's first instruction")
	}
}

func TestLowerMatchCascadesBranches(t *testing.T) {
	body := &ast.MatchExpr{
		Scrutinee: ident("x"),
		Arms: []*ast.MatchArm{
			{Pattern: &ast.LiteralPattern{Value: intLit(0)}, Body: intLit(100)},
			{Pattern: &ast.WildcardPattern{}, Body: intLit(200)},
		},
	}
	d := decl("f", []*ast.Param{{Name: "x"}}, body)

	fn, _ := lowerFunction(stubOracle{}, nil, NewBuiltinRegistry(), "f", d)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var branchCount int

	for _, blk := range fn.Blocks {
		if blk.Term.Kind == mir.TermBranch {
			branchCount++
		}
	}

	if branchCount == 0 {
		t.Fatal("expected at least one Branch terminator from the match cascade")
	}
}

func TestLowerProgramCollectsFunctions(t *testing.T) {
	fd := decl("main", nil, intLit(0))
	program := &ast.Program{Decls: []ast.Decl{fd}}

	prog := Lower(stubOracle{}, program, nil)

	if _, ok := prog.Functions["main"]; !ok {
		t.Fatal("expected lowered program to contain main")
	}
}

func containsPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
