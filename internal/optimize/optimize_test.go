package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestPipelineDebugOnlyRunsMemoryEffectAnalysis(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.IntConst(0)),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	p := NewPipeline(Debug, Flags{})
	p.RunFunction(fn, nil)

	// IdentityElimination is a Release-only pass; in Debug the +0 survives.
	instr := fn.Blocks[0].Instructions[0]
	if instr.Kind != mir.InstrBinOp {
		t.Fatalf("expected the +0 to survive Debug level, got %+v", instr)
	}

	if !fn.Attributes.IsMemoryFree {
		t.Fatalf("expected IsMemoryFree to be computed even at Debug level")
	}
}

func TestPipelineReleaseFoldsToFixedPoint(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.Const(mir.Place{Name: "a", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 2}),
		mir.BinOpInstr(mir.Place{Name: "b", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.IntConst(0)),
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.I64}, "*", mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64}), mir.IntConst(1)),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	p := NewPipeline(Release, Flags{})
	p.RunFunction(fn, nil)

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}

	ret := fn.Blocks[0].Term.Value
	if ret.Kind != mir.OperandPlace || ret.Place.Name != "a" {
		t.Fatalf("expected the copy chain to collapse to a direct return of a, got %+v", ret)
	}

	instrs := fn.Blocks[0].Instructions
	if len(instrs) != 1 || instrs[0].Kind != mir.InstrConst || instrs[0].ConstVal.Int != 2 {
		t.Fatalf("expected only the original constant definition to survive, got %+v", instrs)
	}

	if len(p.Metrics) == 0 {
		t.Fatalf("expected recorded metrics for at least one pass")
	}
}

func TestPipelineRunProgramToleratesMissingFacts(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckBounds, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "i", Type: types.I64})},
	}, mir.Return())

	prog := &mir.MirProgram{Functions: map[string]*mir.MirFunction{fn.Name: fn}}

	p := NewPipeline(Release, Flags{ProofOptimizations: true})
	p.RunProgram(prog, map[string]*cir.ProvenFactSet{})

	if len(fn.Blocks[0].Instructions) != 1 {
		t.Fatalf("expected the check to survive with no facts for this function, got %+v", fn.Blocks[0].Instructions)
	}
}
