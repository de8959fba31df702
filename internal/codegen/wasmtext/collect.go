package wasmtext

import "github.com/bmb-lang/bmbc/internal/mir"

// collectStrings walks every instruction and operand of fn, interning any
// string constant it finds, so every (data ...) segment exists before any
// function body references it by offset.
func collectStrings(fn *mir.MirFunction, pool *stringData) {
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			internInstrStrings(instr, pool)
		}

		internOperandStrings(blk.Term.Value, pool)
		internOperandStrings(blk.Term.Cond, pool)
		internOperandStrings(blk.Term.Discriminant, pool)
	}
}

func internInstrStrings(instr mir.Instruction, pool *stringData) {
	if instr.Kind == mir.InstrConst && instr.ConstVal.Kind == mir.ConstString {
		pool.intern(instr.ConstVal.String)
	}

	for _, op := range []mir.Operand{instr.Src, instr.Lhs, instr.Rhs, instr.Cond, instr.Then, instr.Else, instr.Addr, instr.Value, instr.Base, instr.Offset, instr.Index, instr.Count, instr.CheckExpr} {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Args {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Fields {
		internOperandStrings(op, pool)
	}

	for _, op := range instr.Elems {
		internOperandStrings(op, pool)
	}

	for _, po := range instr.PhiOperands {
		internOperandStrings(po.Value, pool)
	}
}

func internOperandStrings(op mir.Operand, pool *stringData) {
	if op.Kind == mir.OperandConst && op.Const.Kind == mir.ConstString {
		pool.intern(op.Const.String)
	}
}
