package llvmtext

import (
	"strings"
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func oneBlockFn(name string, params []mir.Param, ret *types.Type, instrs []mir.Instruction, term mir.Terminator) *mir.MirFunction {
	return &mir.MirFunction{
		Name:   name,
		Params: params,
		Return: ret,
		Blocks: []*mir.BasicBlock{{Label: "entry", Instructions: instrs, Term: term}},
	}
}

func TestEmitModuleAddFunction(t *testing.T) {
	fn := oneBlockFn("add", []mir.Param{{Name: "a", Type: types.I64}, {Name: "b", Type: types.I64}}, types.I64,
		[]mir.Instruction{
			mir.BinOpInstr(mir.Place{Name: "c", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
		},
		mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"add": fn}})

	for _, want := range []string{
		"define i64 @add(i64 %a, i64 %b) nosync {",
		"%c = add nsw i64 %a, %b",
		"ret i64 %c",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// §8 property 9 / golden scenario D: a string literal repeated twice emits
// exactly one @str_data_N/@str_bmb_N pair, and both uses reference it.
func TestEmitModuleDedupesStringLiterals(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, []mir.Instruction{
		{Kind: mir.InstrCall, Callee: "print", Args: []mir.Operand{mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: "hello"})}},
		{Kind: mir.InstrCall, Callee: "print", Args: []mir.Operand{mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: "hello"})}},
	}, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}})

	if n := strings.Count(out, "@str_data_0 ="); n != 1 {
		t.Fatalf("expected exactly one @str_data_0 definition, got %d in:\n%s", n, out)
	}

	if n := strings.Count(out, "@str_data_1 ="); n != 0 {
		t.Fatalf("expected no second distinct string global, got output:\n%s", out)
	}

	if !strings.Contains(out, `c"hello\00"`) {
		t.Fatalf("expected the literal bytes, got:\n%s", out)
	}

	if n := strings.Count(out, "ptrtoint (ptr @str_bmb_0 to i64)"); n != 2 {
		t.Fatalf("expected both print calls to reference the same interned global, got %d in:\n%s", n, out)
	}
}

// §8 property 10: a Phi merging a ptr and an i64 operand widens to ptr.
func TestEmitModulePhiWidensToPointer(t *testing.T) {
	fn := &mir.MirFunction{
		Name:   "f",
		Return: types.I64,
		Blocks: []*mir.BasicBlock{
			{Label: "entry", Term: mir.Branch(mir.OperandFromPlace(mir.Place{Name: "cond", Type: types.Bool}), "a", "b")},
			{Label: "a", Instructions: []mir.Instruction{
				mir.Const(mir.Place{Name: "p", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 0}),
			}, Term: mir.Goto("join")},
			{Label: "b", Instructions: []mir.Instruction{
				mir.Const(mir.Place{Name: "q", Type: &types.Type{Kind: types.KindArray, Elem: types.I64, ArrayLen: -1}}, mir.Constant{Kind: mir.ConstInt, Int: 0}),
			}, Term: mir.Goto("join")},
			{Label: "join", Instructions: []mir.Instruction{
				mir.Phi(mir.Place{Name: "v", Type: types.I64}, []mir.PhiOperand{
					{Predecessor: "a", Value: mir.OperandFromPlace(mir.Place{Name: "p", Type: types.I64})},
					{Predecessor: "b", Value: mir.OperandFromPlace(mir.Place{Name: "q", Type: &types.Type{Kind: types.KindArray, Elem: types.I64, ArrayLen: -1}})},
				}),
			}, Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "v", Type: types.I64}))},
		},
	}

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}})

	if !strings.Contains(out, "= phi ptr") {
		t.Fatalf("expected the mixed ptr/i64 phi to widen to ptr, got:\n%s", out)
	}
}

// §8 golden scenario A, shape: a surviving bounds check emits a call to
// @bmb_check_bounds; once BoundsCheckElimination removes the instruction
// the call vanishes from the emitted text.
func TestEmitModuleContractCheckCallsRuntimeHelper(t *testing.T) {
	fn := oneBlockFn("f", []mir.Param{{Name: "i", Type: types.I64}}, types.Unit, []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckBounds, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "ok", Type: types.Bool})},
	}, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}})

	if !strings.Contains(out, "call void @bmb_check_bounds(i1 %ok)") {
		t.Fatalf("expected a bounds check call, got:\n%s", out)
	}

	if !strings.Contains(out, "declare void @bmb_check_bounds(i1) nounwind willreturn") {
		t.Fatalf("expected the extern declaration, got:\n%s", out)
	}
}

func TestEmitModuleOmitsUnusedExterns(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, nil, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}})

	if strings.Contains(out, "@bmb_check_bounds") {
		t.Fatalf("expected no extern declarations for a function that calls nothing, got:\n%s", out)
	}
}

func TestEmitModuleByteAtInlinesGEP(t *testing.T) {
	fn := oneBlockFn("f", []mir.Param{{Name: "s", Type: types.StringT}, {Name: "i", Type: types.I64}}, types.I64, []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "c", Type: types.I64}, Callee: "byte_at", HasDest: true, Args: []mir.Operand{
			mir.OperandFromPlace(mir.Place{Name: "s", Type: types.StringT}),
			mir.OperandFromPlace(mir.Place{Name: "i", Type: types.I64}),
		}},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}})

	if strings.Contains(out, "call") {
		t.Fatalf("expected byte_at to be inlined without a call instruction, got:\n%s", out)
	}

	if !strings.Contains(out, "%c = zext i8") {
		t.Fatalf("expected the inline to write directly to %%c, got:\n%s", out)
	}
}
