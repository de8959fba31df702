package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestCopyPropagationResolvesChain(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.Copy(mir.Place{Name: "b", Type: types.I64}, mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64})),
		mir.Copy(mir.Place{Name: "c", Type: types.I64}, mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.I64})))

	p := &CopyPropagation{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if fn.Blocks[0].Term.Value.Place.Name != "a" {
		t.Fatalf("expected return to resolve to a, got %+v", fn.Blocks[0].Term.Value)
	}
}

func TestCommonSubexpressionEliminationWithinBlock(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "x1", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
		mir.BinOpInstr(mir.Place{Name: "x2", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "x2", Type: types.I64})))

	p := &CommonSubexpressionElimination{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	second := fn.Blocks[0].Instructions[1]
	if second.Kind != mir.InstrCopy || second.Src.Place.Name != "x1" {
		t.Fatalf("expected second computation replaced by a copy of x1, got %+v", second)
	}
}

func TestCommonSubexpressionEliminationDoesNotCrossBlocksByDefault(t *testing.T) {
	fn := &mir.MirFunction{
		Name: "f",
		Blocks: []*mir.BasicBlock{
			{
				Label: "entry",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "x1", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
				},
				Term: mir.Goto("next"),
			},
			{
				Label: "next",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "x2", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
				},
				Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "x2", Type: types.I64})),
			},
		},
	}

	p := &CommonSubexpressionElimination{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change across blocks without crossBlock")
	}

	p2 := &CommonSubexpressionElimination{crossBlock: true}
	if !p2.Run(fn, nil) {
		t.Fatalf("expected a change with crossBlock enabled")
	}
}
