package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestTailCallMarkingMarksDirectReturn(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "r", Type: types.I64}, Callee: "g", HasDest: true},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64})))

	p := &TailCallMarking{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if !fn.Blocks[0].Instructions[0].IsTail {
		t.Fatalf("expected IsTail to be set")
	}
}

func TestTailRecursiveToLoopRewritesSelfCall(t *testing.T) {
	// f(n, acc):
	//   entry: if n <= 0 goto base else goto rec
	//   base: return acc
	//   rec: acc2 = acc * n; n2 = n - 1; r = tail-call f(n2, acc2); return r
	fn := &mir.MirFunction{
		Name:   "f",
		Return: types.I64,
		Params: []mir.Param{{Name: "n", Type: types.I64}, {Name: "acc", Type: types.I64}},
		Blocks: []*mir.BasicBlock{
			{
				Label: "entry",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "cond", Type: types.Bool}, "le", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(0)),
				},
				Term: mir.Branch(mir.OperandFromPlace(mir.Place{Name: "cond", Type: types.Bool}), "base", "rec"),
			},
			{
				Label: "base",
				Term:  mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "acc", Type: types.I64})),
			},
			{
				Label: "rec",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "acc2", Type: types.I64}, "*", mir.OperandFromPlace(mir.Place{Name: "acc", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64})),
					mir.BinOpInstr(mir.Place{Name: "n2", Type: types.I64}, "-", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(1)),
					{
						Kind: mir.InstrCall, Dest: mir.Place{Name: "r", Type: types.I64}, Callee: "f", HasDest: true, IsTail: true,
						Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "n2", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "acc2", Type: types.I64})},
					},
				},
				Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64})),
			},
		},
	}

	p := &TailRecursiveToLoop{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Kind == mir.InstrCall && instr.Callee == "f" {
				t.Fatalf("expected no remaining self-call, found one in block %s", blk.Label)
			}
		}
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
