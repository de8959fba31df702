package mir

import "testing"

func simpleLoop() *MirFunction {
	fn := &MirFunction{Name: "f"}
	fn.Blocks = []*BasicBlock{
		{Label: "entry", Term: Goto("header")},
		{
			Label: "header",
			Instructions: []Instruction{
				Phi(Place{Name: "acc"}, []PhiOperand{
					{Predecessor: "entry", Value: IntConst(0)},
					{Predecessor: "body", Value: OperandFromPlace(Place{Name: "acc_next"})},
				}),
			},
			Term: Branch(BoolConst(true), "body", "exit"),
		},
		{
			Label: "body",
			Instructions: []Instruction{
				BinOpInstr(Place{Name: "acc_next"}, "+", OperandFromPlace(Place{Name: "acc"}), IntConst(1)),
			},
			Term: Goto("header"),
		},
		{Label: "exit", Term: ReturnValue(OperandFromPlace(Place{Name: "acc"}))},
	}

	return fn
}

func TestValidateAcceptsWellFormedLoop(t *testing.T) {
	if err := Validate(simpleLoop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingPhiOperand(t *testing.T) {
	fn := simpleLoop()
	fn.Blocks[1].Instructions[0].PhiOperands = fn.Blocks[1].Instructions[0].PhiOperands[:1]

	if err := Validate(fn); err == nil {
		t.Fatal("expected error for phi missing a predecessor operand")
	}
}

func TestValidateRejectsUnknownTerminatorTarget(t *testing.T) {
	fn := simpleLoop()
	fn.Blocks[0].Term = Goto("nope")

	if err := Validate(fn); err == nil {
		t.Fatal("expected error for unknown terminator target")
	}
}

func TestValidateRejectsDoubleDefinition(t *testing.T) {
	fn := simpleLoop()
	fn.Blocks[2].Instructions = append(fn.Blocks[2].Instructions,
		BinOpInstr(Place{Name: "acc_next"}, "+", IntConst(0), IntConst(0)))

	if err := Validate(fn); err == nil {
		t.Fatal("expected error for double-defined place")
	}
}
