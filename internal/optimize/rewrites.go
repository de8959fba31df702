package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// IfElseToSelect collapses a diamond CFG -- a Branch whose then/else arms
// are both empty and rejoin at a single block -- into a Select instruction
// at the join point, removing the branch entirely when every Phi there
// originates from just those two arms (§4.4 item 10). Arms carrying any
// instruction of their own are left as a real branch: hoisting a
// conditionally executed instruction into unconditional code is a separate
// concern LoopInvariantCodeMotion and the proof passes already cover for
// the shapes they recognize.
type IfElseToSelect struct{}

func (IfElseToSelect) Name() string { return "IfElseToSelect" }

func (IfElseToSelect) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, header := range fn.Blocks {
		if header.Term.Kind != mir.TermBranch {
			continue
		}

		thenBlk := fn.BlockByLabel(header.Term.ThenLabel)
		elseBlk := fn.BlockByLabel(header.Term.ElseLabel)

		if thenBlk == nil || elseBlk == nil {
			continue
		}

		if len(thenBlk.Instructions) != 0 || len(elseBlk.Instructions) != 0 {
			continue
		}

		if thenBlk.Term.Kind != mir.TermGoto || elseBlk.Term.Kind != mir.TermGoto {
			continue
		}

		if thenBlk.Term.Target != elseBlk.Term.Target {
			continue
		}

		joinBlk := fn.BlockByLabel(thenBlk.Term.Target)
		if joinBlk == nil {
			continue
		}

		allConverted := true
		anyPhi := false

		for i, instr := range joinBlk.Instructions {
			if instr.Kind != mir.InstrPhi {
				continue
			}

			anyPhi = true

			thenVal, thenOk := phiOperandFor(instr, thenBlk.Label)
			elseVal, elseOk := phiOperandFor(instr, elseBlk.Label)

			if !thenOk || !elseOk || len(instr.PhiOperands) != 2 {
				allConverted = false

				continue
			}

			joinBlk.Instructions[i] = mir.SelectInstr(instr.Dest, header.Term.Cond, thenVal, elseVal)
			changed = true
		}

		if anyPhi && allConverted {
			header.Term = mir.Goto(joinBlk.Label)
		}
	}

	return changed
}

func phiOperandFor(instr mir.Instruction, predecessor string) (mir.Operand, bool) {
	for _, op := range instr.PhiOperands {
		if op.Predecessor == predecessor {
			return op.Value, true
		}
	}

	return mir.Operand{}, false
}

// ConditionalIncrementToSelect recognizes the narrower idiom "if cond { x =
// x + 1 }" (one diamond arm leaves x unchanged, the other increments it by
// exactly one) and replaces the whole branch with a branch-free
// cond-to-integer cast added directly to x (§4.4 item 10). This removes the
// control-flow entirely rather than just replacing the join Phi, which
// IfElseToSelect cannot do since one arm here carries a real instruction.
type ConditionalIncrementToSelect struct{}

func (ConditionalIncrementToSelect) Name() string { return "ConditionalIncrementToSelect" }

func (ConditionalIncrementToSelect) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, header := range fn.Blocks {
		if header.Term.Kind != mir.TermBranch {
			continue
		}

		thenBlk := fn.BlockByLabel(header.Term.ThenLabel)
		elseBlk := fn.BlockByLabel(header.Term.ElseLabel)

		if thenBlk == nil || elseBlk == nil {
			continue
		}

		plain, incr, incrIsThen, ok := splitIncrementArms(thenBlk, elseBlk)
		if !ok {
			continue
		}

		if plain.Term.Kind != mir.TermGoto || incr.Term.Kind != mir.TermGoto || plain.Term.Target != incr.Term.Target {
			continue
		}

		joinBlk := fn.BlockByLabel(plain.Term.Target)
		if joinBlk == nil {
			continue
		}

		incInstr := incr.Instructions[0]
		unchangedName := operandNames(incInstr.Lhs)

		phiIdx := -1

		for i, instr := range joinBlk.Instructions {
			if instr.Kind != mir.InstrPhi || len(instr.PhiOperands) != 2 {
				continue
			}

			plainVal, plainOk := phiOperandFor(instr, plain.Label)
			incrVal, incrOk := phiOperandFor(instr, incr.Label)

			if !plainOk || !incrOk {
				continue
			}

			if operandNames(plainVal) != unchangedName || incrVal.Kind != mir.OperandPlace || incrVal.Place.Name != incInstr.Dest.Name {
				continue
			}

			phiIdx = i

			break
		}

		if phiIdx < 0 {
			continue
		}

		cond := header.Term.Cond
		if incrIsThen {
			// incr is the then-arm: add 1 when cond is true, i.e. add
			// cond-as-int directly.
		} else {
			// incr is the else-arm: add 1 when cond is false, i.e. add
			// (not cond)-as-int.
			notCond := fn.FreshTemp("cond_not")
			header.Instructions = append(header.Instructions, mir.Instruction{Kind: mir.InstrUnaryOp, Dest: mir.Place{Name: notCond, Type: types.Bool}, UnOp: "not", Src: cond})
			cond = mir.OperandFromPlace(mir.Place{Name: notCond, Type: types.Bool})
		}

		castName := fn.FreshTemp("cond_as_int")
		destType := joinBlk.Instructions[phiIdx].Dest.Type
		header.Instructions = append(header.Instructions, mir.Instruction{Kind: mir.InstrCast, Dest: mir.Place{Name: castName, Type: destType}, Src: cond})

		sumName := fn.FreshTemp("cond_incr_sum")
		header.Instructions = append(header.Instructions, mir.BinOpInstr(mir.Place{Name: sumName, Type: destType}, "+", incInstr.Lhs, mir.OperandFromPlace(mir.Place{Name: castName, Type: destType})))

		joinBlk.Instructions[phiIdx] = mir.Copy(joinBlk.Instructions[phiIdx].Dest, mir.OperandFromPlace(mir.Place{Name: sumName, Type: destType}))
		header.Term = mir.Goto(joinBlk.Label)
		changed = true
	}

	return changed
}

// splitIncrementArms reports which of then/else is the plain (zero
// instruction) arm and which is the single "x = x + 1" arm, or false if
// neither pairing matches.
func splitIncrementArms(thenBlk, elseBlk *mir.BasicBlock) (plain, incr *mir.BasicBlock, incrIsThen bool, ok bool) {
	if len(thenBlk.Instructions) == 0 && isUnitIncrement(elseBlk.Instructions) {
		return thenBlk, elseBlk, false, true
	}

	if len(elseBlk.Instructions) == 0 && isUnitIncrement(thenBlk.Instructions) {
		return elseBlk, thenBlk, true, true
	}

	return nil, nil, false, false
}

func isUnitIncrement(instrs []mir.Instruction) bool {
	if len(instrs) != 1 {
		return false
	}

	instr := instrs[0]
	if instr.Kind != mir.InstrBinOp || instr.BinOp != "+" {
		return false
	}

	k, ok := constInt(instr.Rhs)

	return ok && k == 1 && instr.Lhs.Kind == mir.OperandPlace
}

// ContractBasedOptimization folds a comparison between a place and a
// constant to a Bool literal when the place's proven bounds already settle
// the comparison's outcome for every value it could take (§4.4 item 10).
// Unlike the narrower proof.go eliminations (which only drop contract-check
// markers), this rewrites ordinary comparisons feeding ordinary branches.
// The branch that then reads the Bool constant stays in place: no pass in
// this package folds a branch on a constant condition.
type ContractBasedOptimization struct{}

func (ContractBasedOptimization) Name() string { return "ContractBasedOptimization" }

func (ContractBasedOptimization) Run(fn *mir.MirFunction, facts *cir.ProvenFactSet) bool {
	if facts == nil {
		return false
	}

	changed := false

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			if instr.Kind != mir.InstrBinOp {
				continue
			}

			result, ok := evalComparisonFromFacts(facts, instr)
			if !ok {
				continue
			}

			blk.Instructions[i] = mir.Const(instr.Dest, mir.Constant{Kind: mir.ConstBool, Bool: result})
			changed = true
		}
	}

	return changed
}

// evalComparisonFromFacts evaluates instr (a comparison of a place against
// a constant) using facts' proven [lower, upper] range for that place,
// succeeding only when the range lies entirely on one side of the
// constant.
func evalComparisonFromFacts(facts *cir.ProvenFactSet, instr mir.Instruction) (bool, bool) {
	place, k, swapped, ok := comparisonPlaceConst(instr)
	if !ok {
		return false, false
	}

	lo, hasLo := facts.LowerBound(place)
	hi, hasUp := facts.UpperBound(place)

	op := instr.BinOp
	if swapped {
		op = flipComparison(op)
	}

	switch op {
	case "lt":
		if hasUp && hi < k {
			return true, true
		}

		if hasLo && lo >= k {
			return false, true
		}
	case "le":
		if hasUp && hi <= k {
			return true, true
		}

		if hasLo && lo > k {
			return false, true
		}
	case "gt":
		if hasLo && lo > k {
			return true, true
		}

		if hasUp && hi <= k {
			return false, true
		}
	case "ge":
		if hasLo && lo >= k {
			return true, true
		}

		if hasUp && hi < k {
			return false, true
		}
	}

	return false, false
}

func flipComparison(op string) string {
	switch op {
	case "lt":
		return "gt"
	case "le":
		return "ge"
	case "gt":
		return "lt"
	case "ge":
		return "le"
	default:
		return op
	}
}

// comparisonPlaceConst reports the place and constant operand of a
// place-vs-constant comparison, and whether the place was the right-hand
// operand (so the comparison operator's sense needs flipping).
func comparisonPlaceConst(instr mir.Instruction) (string, int64, bool, bool) {
	switch instr.BinOp {
	case "lt", "le", "gt", "ge":
	default:
		return "", 0, false, false
	}

	if instr.Lhs.Kind == mir.OperandPlace {
		if k, ok := constInt(instr.Rhs); ok {
			return instr.Lhs.Place.Name, k, false, true
		}
	}

	if instr.Rhs.Kind == mir.OperandPlace {
		if k, ok := constInt(instr.Lhs); ok {
			return instr.Rhs.Place.Name, k, true, true
		}
	}

	return "", 0, false, false
}

// PureFunctionCSE deduplicates calls to functions known pure (IsPure,
// resolved from callee attributes during lowering) with identical
// arguments, the call-site counterpart to CommonSubexpressionElimination's
// exclusion of InstrCall (§4.4 item 10).
type PureFunctionCSE struct{}

func (PureFunctionCSE) Name() string { return "PureFunctionCSE" }

func (PureFunctionCSE) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false
	seen := make(map[string]mir.Place)

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			if instr.Kind != mir.InstrCall || !instr.IsPure || !instr.HasDest {
				continue
			}

			key := callKey(instr)

			if prior, ok := seen[key]; ok {
				blk.Instructions[i] = mir.Copy(instr.Dest, mir.OperandFromPlace(prior))
				changed = true

				continue
			}

			seen[key] = instr.Dest
		}
	}

	return changed
}

func callKey(instr mir.Instruction) string {
	key := "call:" + instr.Callee

	for _, arg := range instr.Args {
		key += ":" + operandKey(arg)
	}

	return key
}

// AggressiveInlining inlines calls to small, single-block, side-effect-free
// callees directly at the call site (§4.4 item 10, feature-flagged since
// it trades code size for removing call overhead). It only inlines a
// callee with exactly one basic block ending in Return/ReturnValue, the
// bounded shape that can be spliced in without rebuilding a CFG for the
// inlined body. A call from fn to itself is never inlined; calls inside
// the callee's body are not inspected for recursion.
type AggressiveInlining struct {
	program       *mir.MirProgram
	maxCalleeSize int
}

func (AggressiveInlining) Name() string { return "AggressiveInlining" }

const defaultInlineSizeLimit = 12

func (p *AggressiveInlining) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	if p.program == nil {
		return false
	}

	limit := p.maxCalleeSize
	if limit == 0 {
		limit = defaultInlineSizeLimit
	}

	changed := false

	for _, blk := range fn.Blocks {
		var rebuilt []mir.Instruction

		for _, instr := range blk.Instructions {
			if instr.Kind != mir.InstrCall || instr.Callee == fn.Name {
				rebuilt = append(rebuilt, instr)

				continue
			}

			callee := findFunction(p.program, instr.Callee)
			if callee == nil || !inlinable(callee, limit) {
				rebuilt = append(rebuilt, instr)

				continue
			}

			rebuilt = append(rebuilt, inlineBody(fn, callee, instr)...)
			changed = true
		}

		blk.Instructions = rebuilt
	}

	return changed
}

func findFunction(prog *mir.MirProgram, name string) *mir.MirFunction {
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}

func inlinable(fn *mir.MirFunction, limit int) bool {
	if len(fn.Blocks) != 1 {
		return false
	}

	blk := fn.Blocks[0]
	if blk.Term.Kind != mir.TermReturn {
		return false
	}

	if len(blk.Instructions) > limit {
		return false
	}

	for _, instr := range blk.Instructions {
		if isSideEffecting(instr) {
			return false
		}
	}

	return true
}

// inlineBody renames every place callee's single block defines with a
// call-site-unique suffix, substitutes its parameters with call's actual
// arguments, and returns the resulting instruction list ending in a copy
// into call's original Dest (when call.HasDest).
func inlineBody(fn *mir.MirFunction, callee *mir.MirFunction, call mir.Instruction) []mir.Instruction {
	suffix := "_" + fn.FreshTemp("inl")

	rename := make(map[string]string, len(callee.Blocks[0].Instructions)+len(callee.Params))

	for pi, p := range callee.Params {
		rename[p.Name] = operandNames(call.Args[pi])
	}

	blk := callee.Blocks[0]
	out := make([]mir.Instruction, 0, len(blk.Instructions)+1)

	renameOperand := func(op mir.Operand) mir.Operand {
		if op.Kind != mir.OperandPlace {
			return op
		}

		for pi, p := range callee.Params {
			if p.Name == op.Place.Name {
				return call.Args[pi]
			}
		}

		if to, ok := rename[op.Place.Name]; ok && to != "" {
			return mir.OperandFromPlace(mir.Place{Name: to, Type: op.Place.Type})
		}

		return op
	}

	for _, instr := range blk.Instructions {
		if instr.Dest.Name != "" {
			if _, isParam := rename[instr.Dest.Name]; !isParam {
				newName := instr.Dest.Name + suffix
				rename[instr.Dest.Name] = newName
				instr.Dest.Name = newName
			}
		}

		out = append(out, mapInstrOperands(instr, renameOperand))
	}

	if call.HasDest && blk.Term.HasValue {
		retVal := blk.Term.Value
		if retVal.Kind == mir.OperandPlace {
			if to, ok := rename[retVal.Place.Name]; ok {
				retVal = mir.OperandFromPlace(mir.Place{Name: to})
			}
		}

		out = append(out, mir.Copy(call.Dest, retVal))
	}

	return out
}
