package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func buildDiamond(thenInstrs, elseInstrs []mir.Instruction, thenVal, elseVal mir.Operand) *mir.MirFunction {
	return &mir.MirFunction{
		Name:   "f",
		Return: types.I64,
		Blocks: []*mir.BasicBlock{
			{
				Label: "entry",
				Instructions: []mir.Instruction{
					mir.BinOpInstr(mir.Place{Name: "cond", Type: types.Bool}, "lt", mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "b", Type: types.I64})),
				},
				Term: mir.Branch(mir.OperandFromPlace(mir.Place{Name: "cond", Type: types.Bool}), "then", "else"),
			},
			{Label: "then", Instructions: thenInstrs, Term: mir.Goto("join")},
			{Label: "else", Instructions: elseInstrs, Term: mir.Goto("join")},
			{
				Label: "join",
				Instructions: []mir.Instruction{
					mir.Phi(mir.Place{Name: "v", Type: types.I64}, []mir.PhiOperand{
						{Predecessor: "then", Value: thenVal},
						{Predecessor: "else", Value: elseVal},
					}),
				},
				Term: mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "v", Type: types.I64})),
			},
		},
	}
}

func TestIfElseToSelectCollapsesEmptyArms(t *testing.T) {
	fn := buildDiamond(nil, nil, mir.IntConst(1), mir.IntConst(2))

	p := &IfElseToSelect{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	join := fn.BlockByLabel("join")
	if join.Instructions[0].Kind != mir.InstrSelect {
		t.Fatalf("expected a Select instruction, got %+v", join.Instructions[0])
	}

	if fn.Blocks[0].Term.Kind != mir.TermGoto {
		t.Fatalf("expected the header to become an unconditional Goto, got %+v", fn.Blocks[0].Term)
	}
}

func TestIfElseToSelectLeavesRealArmsAlone(t *testing.T) {
	sideEffect := []mir.Instruction{
		{Kind: mir.InstrPtrStore, Addr: mir.OperandFromPlace(mir.Place{Name: "p", Type: types.I64}), Value: mir.IntConst(1)},
	}

	fn := buildDiamond(sideEffect, nil, mir.IntConst(1), mir.IntConst(2))

	p := &IfElseToSelect{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change: the then-arm has a real instruction")
	}
}

func TestConditionalIncrementToSelectRemovesBranch(t *testing.T) {
	// if cond { x = x + 1 }; use x from join.
	incr := []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "x2", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "x", Type: types.I64}), mir.IntConst(1)),
	}

	fn := buildDiamond(incr, nil,
		mir.OperandFromPlace(mir.Place{Name: "x2", Type: types.I64}),
		mir.OperandFromPlace(mir.Place{Name: "x", Type: types.I64}))

	p := &ConditionalIncrementToSelect{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	if fn.Blocks[0].Term.Kind != mir.TermGoto {
		t.Fatalf("expected the branch to be removed, got %+v", fn.Blocks[0].Term)
	}

	if err := mir.Validate(fn); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestContractBasedOptimizationFoldsProvenComparison(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "c", Type: types.Bool}, "lt", mir.OperandFromPlace(mir.Place{Name: "n", Type: types.I64}), mir.IntConst(100)),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "c", Type: types.Bool})))

	facts := factsFor(cir.Compare(cir.CmpLe, cir.Var("n", types.I64), cir.ConstInt(10)))

	p := &ContractBasedOptimization{}
	if !p.Run(fn, facts) {
		t.Fatalf("expected the comparison to fold")
	}

	instr := fn.Blocks[0].Instructions[0]
	if instr.Kind != mir.InstrConst || !instr.ConstVal.Bool {
		t.Fatalf("expected const true, got %+v", instr)
	}
}

func TestPureFunctionCSEDeduplicatesIdenticalCalls(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "r1", Type: types.I64}, Callee: "g", HasDest: true, IsPure: true, Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64})}},
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "r2", Type: types.I64}, Callee: "g", HasDest: true, IsPure: true, Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64})}},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r2", Type: types.I64})))

	p := &PureFunctionCSE{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	second := fn.Blocks[0].Instructions[1]
	if second.Kind != mir.InstrCopy || second.Src.Place.Name != "r1" {
		t.Fatalf("expected second call replaced by a copy of r1, got %+v", second)
	}
}

func TestAggressiveInliningInlinesSmallCallee(t *testing.T) {
	callee := oneBlockFn("double", []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: "r", Type: types.I64}, "+", mir.OperandFromPlace(mir.Place{Name: "x", Type: types.I64}), mir.OperandFromPlace(mir.Place{Name: "x", Type: types.I64})),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "r", Type: types.I64})))
	callee.Params = []mir.Param{{Name: "x", Type: types.I64}}

	caller := oneBlockFn("main", []mir.Instruction{
		{Kind: mir.InstrCall, Dest: mir.Place{Name: "out", Type: types.I64}, Callee: "double", HasDest: true, Args: []mir.Operand{mir.OperandFromPlace(mir.Place{Name: "a", Type: types.I64})}},
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "out", Type: types.I64})))

	prog := &mir.MirProgram{Functions: map[string]*mir.MirFunction{caller.Name: caller, callee.Name: callee}}

	p := &AggressiveInlining{program: prog}
	if !p.Run(caller, nil) {
		t.Fatalf("expected inlining to happen")
	}

	for _, instr := range caller.Blocks[0].Instructions {
		if instr.Kind == mir.InstrCall {
			t.Fatalf("expected the call to be inlined away, found %+v", instr)
		}
	}
}
