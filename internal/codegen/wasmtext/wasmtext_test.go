package wasmtext

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

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"add": fn}}, Options{})

	for _, want := range []string{
		"(func $add (param $a i64) (param $b i64) (result i64)",
		"(i64.add (local.get $a) (local.get $b))",
		"(return (local.get $c))",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// §8 property 11: every interned string's data-segment offset is unique
// and >= 2048.
func TestEmitModuleStringOffsetsAreUniqueAndAboveBase(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, []mir.Instruction{
		{Kind: mir.InstrCall, Callee: "print", Args: []mir.Operand{mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: "hello"})}},
		{Kind: mir.InstrCall, Callee: "print", Args: []mir.Operand{mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: "world!"})}},
		{Kind: mir.InstrCall, Callee: "print", Args: []mir.Operand{mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: "hello"})}},
	}, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}, Options{})

	if n := strings.Count(out, `(data (i32.const 2048) "hello")`); n != 1 {
		t.Fatalf("expected exactly one data segment for the deduped literal at offset 2048, got %d in:\n%s", n, out)
	}

	if !strings.Contains(out, `(data (i32.const 2053) "world!")`) {
		t.Fatalf("expected the second literal's segment to start right after the first (2048+5), got:\n%s", out)
	}

	if n := strings.Count(out, "(i32.const 2048)"); n < 2 {
		t.Fatalf("expected both references to \"hello\" to share offset 2048, got:\n%s", out)
	}
}

// §4.6 "configurable memory page count" / with_memory override.
func TestEmitModuleMemoryPageOverride(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, nil, mir.Return())
	prog := &mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}

	out := EmitModule(prog, Options{}.WithMemory(64))
	if !strings.Contains(out, "(memory 64)") {
		t.Fatalf("expected the overridden page count, got:\n%s", out)
	}

	out = EmitModule(prog, Options{})
	if !strings.Contains(out, "(memory 16)") {
		t.Fatalf("expected the default page count, got:\n%s", out)
	}
}

func TestEmitModuleWASITargetImportsFdWrite(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, nil, mir.Return())
	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}, Options{Target: TargetWASI})

	if !strings.Contains(out, "$fd_write") {
		t.Fatalf("expected a WASI fd_write import, got:\n%s", out)
	}
}

func TestEmitModuleBranchDispatchesBothTargets(t *testing.T) {
	fn := &mir.MirFunction{
		Name:   "f",
		Params: []mir.Param{{Name: "cond", Type: types.Bool}},
		Return: types.I64,
		Blocks: []*mir.BasicBlock{
			{Label: "entry", Term: mir.Branch(mir.OperandFromPlace(mir.Place{Name: "cond", Type: types.Bool}), "a", "b")},
			{Label: "a", Instructions: []mir.Instruction{
				mir.Const(mir.Place{Name: "r", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 1}),
			}, Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64}))},
			{Label: "b", Instructions: []mir.Instruction{
				mir.Const(mir.Place{Name: "r", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 0}),
			}, Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64}))},
		},
	}

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}, Options{})

	if !strings.Contains(out, "(br_table $blk0 $blk1 $blk2 $blk2 (local.get $state))") {
		t.Fatalf("expected a three-block dispatch table, got:\n%s", out)
	}

	if !strings.Contains(out, "(if (local.get $cond)") {
		t.Fatalf("expected the branch condition to drive an if, got:\n%s", out)
	}
}

func TestEmitModuleOmitsUnusedExterns(t *testing.T) {
	fn := oneBlockFn("f", nil, types.Unit, nil, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}, Options{})

	if strings.Contains(out, "bmb_check_bounds") {
		t.Fatalf("expected no extern import for a function that calls nothing, got:\n%s", out)
	}
}

func TestEmitModuleContractCheckCallsRuntimeHelper(t *testing.T) {
	fn := oneBlockFn("f", []mir.Param{{Name: "i", Type: types.I64}}, types.Unit, []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckBounds, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "ok", Type: types.Bool})},
	}, mir.Return())

	out := EmitModule(&mir.MirProgram{Functions: map[string]*mir.MirFunction{"f": fn}}, Options{})

	if !strings.Contains(out, "(call $bmb_check_bounds (local.get $ok))") {
		t.Fatalf("expected a bounds check call, got:\n%s", out)
	}

	if !strings.Contains(out, `(import "env" "bmb_check_bounds" (func $bmb_check_bounds (param i32)))`) {
		t.Fatalf("expected the extern import, got:\n%s", out)
	}
}
