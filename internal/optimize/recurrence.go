package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// LinearRecurrenceToLoop recognizes the textbook Fibonacci-family shape --
// a single-integer-parameter function that branches on a small cutoff,
// returns a closed-form base value below it, and otherwise returns the sum
// of two self-calls at offsets 1 and 2 -- and rewrites the recursive arm
// into a two-accumulator loop (§4.4 item 9). Any other linear recurrence
// shape (different offsets, more than one parameter, a non-additive
// combiner) is left untouched; this pass is intentionally narrow rather
// than a general recurrence solver.
type LinearRecurrenceToLoop struct{}

func (LinearRecurrenceToLoop) Name() string { return "LinearRecurrenceToLoop" }

func (LinearRecurrenceToLoop) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	if len(fn.Params) != 1 {
		return false
	}

	shape, ok := detectFibShape(fn)
	if !ok {
		return false
	}

	rewriteFibShape(fn, shape)

	return true
}

// fibShape captures everything detectFibShape needs to reconstruct the
// recurrence as a loop: the cutoff c below which the base case applies,
// the base value's closed form (identity or a fixed constant), and the
// recursive arm's block to replace.
type fibShape struct {
	param      mir.Param
	cutoff     int64
	baseIsSelf bool // true: base(k) = k; false: base(k) = baseConst
	baseConst  int64
	recBlock   string
}

func detectFibShape(fn *mir.MirFunction) (fibShape, bool) {
	entry := fn.Entry()
	if entry == nil || entry.Term.Kind != mir.TermBranch {
		return fibShape{}, false
	}

	cond, ok := findCondition(entry, entry.Term.Cond)
	if !ok || (cond.BinOp != "lt" && cond.BinOp != "le") {
		return fibShape{}, false
	}

	if !samePlace(cond.Lhs, mir.OperandFromPlace(mir.Place{Name: fn.Params[0].Name})) {
		return fibShape{}, false
	}

	rhs, ok := constInt(cond.Rhs)
	if !ok {
		return fibShape{}, false
	}

	cutoff := rhs
	if cond.BinOp == "le" {
		cutoff++
	}

	baseLabel, recLabel := entry.Term.ThenLabel, entry.Term.ElseLabel

	baseIsSelf, baseConst, ok := detectBase(fn, baseLabel, fn.Params[0].Name)
	if !ok {
		return fibShape{}, false
	}

	if !detectRecursiveArm(fn, recLabel, fn.Name, fn.Params[0].Name) {
		return fibShape{}, false
	}

	return fibShape{param: fn.Params[0], cutoff: cutoff, baseIsSelf: baseIsSelf, baseConst: baseConst, recBlock: recLabel}, true
}

// findCondition locates the InstrBinOp instruction in blk that produced
// cond, or reports false if cond isn't a place defined by a comparison in
// this block.
func findCondition(blk *mir.BasicBlock, cond mir.Operand) (mir.Instruction, bool) {
	if cond.Kind != mir.OperandPlace {
		return mir.Instruction{}, false
	}

	for _, instr := range blk.Instructions {
		if instr.Kind == mir.InstrBinOp && instr.Dest.Name == cond.Place.Name {
			return instr, true
		}
	}

	return mir.Instruction{}, false
}

func detectBase(fn *mir.MirFunction, label, paramName string) (isSelf bool, constVal int64, ok bool) {
	blk := fn.BlockByLabel(label)
	if blk == nil || blk.Term.Kind != mir.TermReturn || !blk.Term.HasValue {
		return false, 0, false
	}

	v := blk.Term.Value
	if v.Kind == mir.OperandPlace && v.Place.Name == paramName {
		return true, 0, true
	}

	if c, ok := constInt(v); ok {
		return false, c, true
	}

	return false, 0, false
}

func detectRecursiveArm(fn *mir.MirFunction, label, fnName, paramName string) bool {
	blk := fn.BlockByLabel(label)
	if blk == nil || blk.Term.Kind != mir.TermReturn || !blk.Term.HasValue {
		return false
	}

	var calls []mir.Instruction

	for _, instr := range blk.Instructions {
		if instr.Kind == mir.InstrCall && instr.Callee == fnName && len(instr.Args) == 1 {
			calls = append(calls, instr)
		}
	}

	if len(calls) != 2 {
		return false
	}

	offsets := make(map[int64]bool, 2)

	for _, c := range calls {
		arg := c.Args[0]
		if arg.Kind != mir.OperandPlace {
			return false
		}

		offInstr, ok := findDefiningSub(blk, arg.Place.Name, paramName)
		if !ok {
			return false
		}

		offsets[offInstr] = true
	}

	if !offsets[1] || !offsets[2] {
		return false
	}

	sumInstr, ok := findSum(blk, calls[0].Dest.Name, calls[1].Dest.Name)
	if !ok {
		return false
	}

	return blk.Term.Value.Kind == mir.OperandPlace && blk.Term.Value.Place.Name == sumInstr
}

// findDefiningSub looks for `dest = paramName - k` and returns k.
func findDefiningSub(blk *mir.BasicBlock, dest, paramName string) (int64, bool) {
	for _, instr := range blk.Instructions {
		if instr.Kind != mir.InstrBinOp || instr.BinOp != "-" || instr.Dest.Name != dest {
			continue
		}

		if instr.Lhs.Kind != mir.OperandPlace || instr.Lhs.Place.Name != paramName {
			continue
		}

		if k, ok := constInt(instr.Rhs); ok {
			return k, true
		}
	}

	return 0, false
}

func findSum(blk *mir.BasicBlock, a, b string) (string, bool) {
	for _, instr := range blk.Instructions {
		if instr.Kind != mir.InstrBinOp || instr.BinOp != "+" {
			continue
		}

		if operandNames(instr.Lhs) == a && operandNames(instr.Rhs) == b {
			return instr.Dest.Name, true
		}

		if operandNames(instr.Lhs) == b && operandNames(instr.Rhs) == a {
			return instr.Dest.Name, true
		}
	}

	return "", false
}

func operandNames(op mir.Operand) string {
	if op.Kind == mir.OperandPlace {
		return op.Place.Name
	}

	return ""
}

func base(shape fibShape, k int64) int64 {
	if shape.baseIsSelf {
		return k
	}

	return shape.baseConst
}

// rewriteFibShape replaces shape's recursive arm with a two-accumulator
// loop computing the same result for n >= shape.cutoff.
func rewriteFibShape(fn *mir.MirFunction, shape fibShape) {
	recBlock := fn.BlockByLabel(shape.recBlock)
	t := shape.param.Type

	seed2 := base(shape, shape.cutoff-2)
	seed1 := base(shape, shape.cutoff-1)

	header := &mir.BasicBlock{Label: fn.FreshLabel("fib_loop_header")}
	body := &mir.BasicBlock{Label: fn.FreshLabel("fib_loop_body")}
	exit := &mir.BasicBlock{Label: fn.FreshLabel("fib_loop_exit")}

	iName := fn.FreshTemp("fib_i")
	s1Name := fn.FreshTemp("fib_seed1")
	s2Name := fn.FreshTemp("fib_seed2")
	iNextName := fn.FreshTemp("fib_i_next")
	s1NextName := fn.FreshTemp("fib_seed1_next")
	curName := fn.FreshTemp("fib_cur")
	condName := fn.FreshTemp("fib_cond")

	recBlock.Instructions = []mir.Instruction{
		mir.Const(mir.Place{Name: iName + "_init", Type: t}, mir.Constant{Kind: mir.ConstInt, Int: shape.cutoff}),
		mir.Const(mir.Place{Name: s1Name + "_init", Type: t}, mir.Constant{Kind: mir.ConstInt, Int: seed1}),
		mir.Const(mir.Place{Name: s2Name + "_init", Type: t}, mir.Constant{Kind: mir.ConstInt, Int: seed2}),
	}
	recBlock.Term = mir.Goto(header.Label)

	iPlace := mir.Place{Name: iName, Type: t}
	s1Place := mir.Place{Name: s1Name, Type: t}
	s2Place := mir.Place{Name: s2Name, Type: t}

	header.Instructions = []mir.Instruction{
		mir.Phi(iPlace, []mir.PhiOperand{
			{Predecessor: recBlock.Label, Value: mir.OperandFromPlace(mir.Place{Name: iName + "_init", Type: t})},
			{Predecessor: body.Label, Value: mir.OperandFromPlace(mir.Place{Name: iNextName, Type: t})},
		}),
		mir.Phi(s1Place, []mir.PhiOperand{
			{Predecessor: recBlock.Label, Value: mir.OperandFromPlace(mir.Place{Name: s1Name + "_init", Type: t})},
			{Predecessor: body.Label, Value: mir.OperandFromPlace(mir.Place{Name: s1NextName, Type: t})},
		}),
		mir.Phi(s2Place, []mir.PhiOperand{
			{Predecessor: recBlock.Label, Value: mir.OperandFromPlace(mir.Place{Name: s2Name + "_init", Type: t})},
			{Predecessor: body.Label, Value: mir.OperandFromPlace(s1Place)},
		}),
		mir.BinOpInstr(mir.Place{Name: condName, Type: types.Bool}, "le", mir.OperandFromPlace(iPlace), mir.OperandFromPlace(mir.Place{Name: shape.param.Name, Type: t})),
	}
	header.Term = mir.Branch(mir.OperandFromPlace(mir.Place{Name: condName}), body.Label, exit.Label)

	body.Instructions = []mir.Instruction{
		mir.BinOpInstr(mir.Place{Name: curName, Type: t}, "+", mir.OperandFromPlace(s1Place), mir.OperandFromPlace(s2Place)),
		mir.Copy(mir.Place{Name: s1NextName, Type: t}, mir.OperandFromPlace(mir.Place{Name: curName, Type: t})),
		mir.BinOpInstr(mir.Place{Name: iNextName, Type: t}, "+", mir.OperandFromPlace(iPlace), mir.IntConst(1)),
	}
	body.Term = mir.Goto(header.Label)

	exit.Term = mir.ReturnValue(mir.OperandFromPlace(s1Place))

	insertBlockAfter(fn, recBlock, header)
	insertBlockAfter(fn, header, body)
	insertBlockAfter(fn, body, exit)
}
