package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// buildFibShape constructs the canonical "if n < 2 return n else return
// fib(n-1) + fib(n-2)" MIR shape LinearRecurrenceToLoop recognizes.
func buildFibShape() *mir.MirFunction {
	return &mir.MirFunction{
		Name:   "fib",
		Return: types.I64,
		Params: []mir.Param{{Name: "n", Type: types.I64}},
		Blocks: []*mir.BasicBlock{
			{
				Label: "entry",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "cond", Type: types.Bool}, "lt", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(2)),
				},
				Term: mir.Branch(mir.OperandFromPlace(mir.Place{Name: "cond", Type: types.Bool}), "base", "rec"),
			},
			{
				Label: "base",
				Term:  mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64})),
			},
			{
				Label: "rec",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "n1", Type: types.I64}, "-", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(1)),
					mir.BinOpInstr(mir.Place{Name: "n2", Type: types.I64}, "-", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(2)),
					{Kind: mir.InstrCall, Dest: mir.Place{Name: "r1", Type: types.I64}, Callee: "fib", HasDest: true, Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "n1", Type: types.I64})}},
					{Kind: mir.InstrCall, Dest: mir.Place{Name: "r2", Type: types.I64}, Callee: "fib", HasDest: true, Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "n2", Type: types.I64})}},
					mir.BinOpInstr(mir.Place{Name: "sum", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "r1", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "r2", Type: types.I64})),
				},
				Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "sum", Type: types.I64})),
			},
		},
	}
}

func TestLinearRecurrenceToLoopRewritesFibShape(t *testing.T) {
	fn := buildFibShape()

	p := &LinearRecurrenceToLoop{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected the fib shape to be recognized")
	}

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Kind == mir.InstrCall {
				t.Fatalf("expected no remaining recursive call, found one in block %s", blk.Label)
			}
		}
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLinearRecurrenceToLoopIgnoresOtherShapes(t *testing.T) {
	fn := oneBlockFn("notfib", []mir.Instruction{
		mir.Const(mir.Place{Name: "x", Type: types.I64}, mir.IntConst(1).Const),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "x", Type: types.I64})))
	fn.Params = []mir.Param{{Name: "n", Type: types.I64}}

	p := &LinearRecurrenceToLoop{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change for a function with no recurrence shape")
	}
}
