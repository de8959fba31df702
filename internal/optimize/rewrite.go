package optimize

import "github.com/bmb-lang/bmbc/internal/mir"

// mapInstrOperands applies f to every operand instr *reads* (never its
// Dest) and returns the rewritten instruction. Passes use this both to
// collect operand references (f returns its argument unchanged) and to
// rewrite them (f returns a replacement), so the per-kind field layout of
// mir.Instruction is expressed exactly once.
func mapInstrOperands(instr mir.Instruction, f func(mir.Operand) mir.Operand) mir.Instruction {
	switch instr.Kind {
	case mir.InstrCopy, mir.InstrCast, mir.InstrUnaryOp, mir.InstrPtrLoad, mir.InstrFieldLoad:
		instr.Src = f(instr.Src)
	case mir.InstrBinOp:
		instr.Lhs = f(instr.Lhs)
		instr.Rhs = f(instr.Rhs)
	case mir.InstrSelect:
		instr.Cond = f(instr.Cond)
		instr.Then = f(instr.Then)
		instr.Else = f(instr.Else)
	case mir.InstrCall:
		if len(instr.Args) > 0 {
			args := make([]mir.Operand, len(instr.Args))
			for i, a := range instr.Args {
				args[i] = f(a)
			}

			instr.Args = args
		}
	case mir.InstrPtrStore, mir.InstrFieldStore:
		instr.Addr = f(instr.Addr)
		instr.Value = f(instr.Value)
	case mir.InstrIndexAssign:
		instr.Addr = f(instr.Addr)
		instr.Index = f(instr.Index)
		instr.Value = f(instr.Value)
	case mir.InstrIndexLoad:
		instr.Addr = f(instr.Addr)
		instr.Index = f(instr.Index)
	case mir.InstrPtrOffset:
		instr.Base = f(instr.Base)
		instr.Offset = f(instr.Offset)
	case mir.InstrStructInit, mir.InstrTupleInit:
		if len(instr.Fields) > 0 {
			fields := make([]mir.Operand, len(instr.Fields))
			for i, fo := range instr.Fields {
				fields[i] = f(fo)
			}

			instr.Fields = fields
		}
	case mir.InstrArrayAlloc:
		instr.Count = f(instr.Count)

		if len(instr.Elems) > 0 {
			elems := make([]mir.Operand, len(instr.Elems))
			for i, e := range instr.Elems {
				elems[i] = f(e)
			}

			instr.Elems = elems
		}
	case mir.InstrPhi:
		if len(instr.PhiOperands) > 0 {
			ops := make([]mir.PhiOperand, len(instr.PhiOperands))
			for i, po := range instr.PhiOperands {
				ops[i] = mir.PhiOperand{Predecessor: po.Predecessor, Value: f(po.Value)}
			}

			instr.PhiOperands = ops
		}
	case mir.InstrContractCheck:
		instr.CheckExpr = f(instr.CheckExpr)
	}

	return instr
}

// mapTermOperands is mapInstrOperands' counterpart for a block terminator.
func mapTermOperands(t mir.Terminator, f func(mir.Operand) mir.Operand) mir.Terminator {
	switch t.Kind {
	case mir.TermBranch:
		t.Cond = f(t.Cond)
	case mir.TermSwitch:
		t.Discriminant = f(t.Discriminant)
	case mir.TermReturn:
		if t.HasValue {
			t.Value = f(t.Value)
		}
	}

	return t
}

// instrOperandRefs collects every operand instr reads, in field order.
func instrOperandRefs(instr mir.Instruction) []mir.Operand {
	var refs []mir.Operand

	mapInstrOperands(instr, func(op mir.Operand) mir.Operand {
		refs = append(refs, op)

		return op
	})

	return refs
}

// termOperandRefs collects every operand t reads.
func termOperandRefs(t mir.Terminator) []mir.Operand {
	var refs []mir.Operand

	mapTermOperands(t, func(op mir.Operand) mir.Operand {
		refs = append(refs, op)

		return op
	})

	return refs
}

// operandEqual reports whether a and b denote the same value reference.
func operandEqual(a, b mir.Operand) bool {
	if a.Kind != b.Kind {
		return false
	}

	if a.Kind == mir.OperandConst {
		return a.Const == b.Const
	}

	return a.Place.Name == b.Place.Name
}

// isSideEffecting reports whether instr must be kept regardless of whether
// its Dest is live: memory writes, contract checks, and calls that are
// either result-discarding or not known-pure (§4.4 item 4).
func isSideEffecting(instr mir.Instruction) bool {
	switch instr.Kind {
	case mir.InstrFieldStore, mir.InstrPtrStore, mir.InstrIndexAssign, mir.InstrContractCheck:
		return true
	case mir.InstrCall:
		if !instr.HasDest {
			return true
		}

		return !instr.IsPure
	default:
		return false
	}
}
