package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func oneBlockFn(name string, instrs []mir.Instruction, term mir.Terminator) *mir.MirFunction {
	return &mir.MirFunction{
		Name:   name,
		Return: types.I64,
		Blocks: []*mir.BasicBlock{{Label: "entry", Instructions: instrs, Term: term}},
	}
}

func TestConstantFoldingBinOp(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.I64}, "+", mir.IntConst(2), mir.IntConst(3)),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	p := &ConstantFolding{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	last := fn.Blocks[0].Instructions[0]
	if last.Kind != mir.InstrConst || last.ConstVal.Int != 5 {
		t.Fatalf("expected folded constant 5, got %+v", last)
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestIdentityEliminationAddZero(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.IntConst(0)),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	p := &IdentityElimination{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	instr := fn.Blocks[0].Instructions[0]
	if instr.Kind != mir.InstrCopy || instr.Src.Place.Name != "a" {
		t.Fatalf("expected copy of a, got %+v", instr)
	}
}

func TestComparisonSimplificationSelfEquality(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.Bool}, "eq", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64})),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.Bool})))

	p := &ComparisonSimplification{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	instr := fn.Blocks[0].Instructions[0]
	if instr.Kind != mir.InstrConst || !instr.ConstVal.Bool {
		t.Fatalf("expected const true, got %+v", instr)
	}
}

func TestComparisonSimplificationSkipsFloatWithoutFastMath(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.Bool}, "eq", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.F64}), mir.OperandFromPlace(mir.Place{Name: "a", Type: types.F64})),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.Bool})))

	p := &ComparisonSimplification{fastMath: false}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change for float self-equality without fast_math")
	}
}
