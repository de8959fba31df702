package driver

import (
	"strings"
	"testing"

	"github.com/bmb-lang/bmbc/internal/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.LitInt, Int: v} }

func i64Type() ast.TypeExpr { return &ast.NamedTypeExpr{Name: "i64"} }

// addProgram builds a two-parameter function returning the sum of its
// arguments, the smallest
// program that walks every pipeline stage (typecheck, CIR lowering,
// verification, MIR lowering, optimization, emission).
func addProgram() *ast.Program {
	body := &ast.BlockExpr{
		Stmts: []ast.Expr{
			&ast.ReturnExpr{Value: &ast.BinaryExpr{
				Op:    ast.BinAdd,
				Left:  ident("a"),
				Right: ident("b"),
			}},
		},
	}

	fn := &ast.FunctionDecl{
		Name: "add",
		Params: []*ast.Param{
			{Name: "a", Type: i64Type()},
			{Name: "b", Type: i64Type()},
		},
		Return: i64Type(),
		Body:   body,
	}

	return &ast.Program{Decls: []ast.Decl{fn}}
}

// contractedProgram builds a function carrying a precondition (x >= 0)
// and no postcondition, exercised under VerifyTrust so the test
// does not depend on a z3 binary being on PATH.
func contractedProgram() *ast.Program {
	body := &ast.BlockExpr{
		Stmts: []ast.Expr{
			&ast.ReturnExpr{Value: &ast.BinaryExpr{
				Op:    ast.BinAdd,
				Left:  ident("x"),
				Right: intLit(1),
			}},
		},
	}

	fn := &ast.FunctionDecl{
		Name:   "increment",
		Params: []*ast.Param{{Name: "x", Type: i64Type()}},
		Return: i64Type(),
		Contract: ast.Contract{
			Pre: []ast.Expr{&ast.BinaryExpr{Op: ast.BinGe, Left: ident("x"), Right: intLit(0)}},
		},
		Body: body,
	}

	return &ast.Program{Decls: []ast.Decl{fn}}
}

func TestCompileEmitsLLVMTextForSimpleFunction(t *testing.T) {
	res, err := Compile(Config{VerificationMode: VerifyTrust}, "add.bmb", []byte("fn add(a, b) {}"), addProgram())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !strings.Contains(res.LLVMText, "define") || !strings.Contains(res.LLVMText, "@add") {
		t.Fatalf("expected LLVM text defining @add, got:\n%s", res.LLVMText)
	}

	if !strings.Contains(res.LLVMText, "add") {
		t.Fatalf("expected an add instruction in emitted text, got:\n%s", res.LLVMText)
	}
}

func TestCompileEmitsWASMTextForWasm32Target(t *testing.T) {
	cfg := Config{Target: TargetWasm32, VerificationMode: VerifyTrust}

	res, err := Compile(cfg, "add.bmb", []byte("fn add(a, b) {}"), addProgram())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if res.LLVMText != "" {
		t.Fatal("expected no LLVM text for a wasm32 target")
	}

	if !strings.Contains(res.WASMText, "(module") || !strings.Contains(res.WASMText, "$add") {
		t.Fatalf("expected a WAT module defining $add, got:\n%s", res.WASMText)
	}
}

func TestCompileTrustModeSkipsSolverAndLeavesReportEmpty(t *testing.T) {
	cfg := Config{VerificationMode: VerifyTrust}

	res, err := Compile(cfg, "increment.bmb", []byte("fn increment(x) {}"), contractedProgram())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(res.VerificationReport.Functions) != 0 {
		t.Fatalf("VerifyTrust should not populate a verification report, got %d entries", len(res.VerificationReport.Functions))
	}
}

func TestCompileCheckModeRecordsErrorOutcomeWhenSolverUnavailable(t *testing.T) {
	cfg := Config{VerificationMode: VerifyCheck, SolverPath: "/nonexistent/z3-binary-for-tests"}

	res, err := Compile(cfg, "increment.bmb", []byte("fn increment(x) {}"), contractedProgram())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	fr, ok := res.VerificationReport.Functions["increment"]
	if !ok {
		t.Fatal("expected a report entry for increment, which carries a contract")
	}

	if fr.Err == nil {
		t.Fatal("expected a solver invocation error with no z3 binary on the configured path")
	}
}

func TestCompileRejectsTypeErrors(t *testing.T) {
	body := &ast.BlockExpr{
		Stmts: []ast.Expr{
			&ast.ReturnExpr{Value: &ast.BinaryExpr{
				Op:    ast.BinAdd,
				Left:  ident("a"),
				Right: &ast.Literal{Kind: ast.LitBool, Bool: true},
			}},
		},
	}

	fn := &ast.FunctionDecl{
		Name:   "bad",
		Params: []*ast.Param{{Name: "a", Type: i64Type()}},
		Return: i64Type(),
		Body:   body,
	}

	program := &ast.Program{Decls: []ast.Decl{fn}}

	_, err := Compile(Config{VerificationMode: VerifyTrust}, "bad.bmb", []byte("fn bad(a) {}"), program)
	if err == nil {
		t.Fatal("expected a type error for mismatched operand types")
	}
}
