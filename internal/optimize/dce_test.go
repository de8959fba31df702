package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestDeadCodeEliminationDropsUnusedPureValue(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.Const(mir.Place{Name: "dead", Type: types.I64}, mir.IntConst(1).Const),
		mir.Const(mir.Place{Name: "live", Type: types.I64}, mir.IntConst(2).Const),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "live", Type: types.I64})))

	p := &DeadCodeElimination{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if len(fn.Blocks[0].Instructions) != 1 || fn.Blocks[0].Instructions[0].Dest.Name != "live" {
		t.Fatalf("expected only the live instruction to survive, got %+v", fn.Blocks[0].Instructions)
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDeadCodeEliminationKeepsSideEffects(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrPtrStore, Addr: mir.OperandFromPlace(mir.Place{Name: "p", Type: types.I64}), Value: mir.IntConst(1)},
	}, mir.Return())

	p := &DeadCodeElimination{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change: the store must survive")
	}

	if len(fn.Blocks[0].Instructions) != 1 {
		t.Fatalf("expected the store to remain, got %+v", fn.Blocks[0].Instructions)
	}
}

func TestMemoryEffectAnalysisFlagsImpureCall(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "r", Type: types.I64}, Callee: "g", HasDest: true, IsPure: false},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64})))
	fn.Attributes.IsMemoryFree = true

	p := &MemoryEffectAnalysis{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if fn.Attributes.IsMemoryFree {
		t.Fatalf("expected IsMemoryFree to clear")
	}
}

func TestMemoryEffectAnalysisAllowsPureCall(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "r", Type: types.I64}, Callee: "g", HasDest: true, IsPure: true},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64})))

	p := &MemoryEffectAnalysis{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if !fn.Attributes.IsMemoryFree {
		t.Fatalf("expected IsMemoryFree to be set")
	}
}
