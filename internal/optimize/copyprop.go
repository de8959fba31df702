package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// CopyPropagation replaces every read of an InstrCopy's destination with
// its source, resolving chains of copies transitively, across binop
// operands, comparison operands, call arguments, branch conditions, and
// return values alike (§4.4 item 5). Because every place is defined at
// most once (single-assignment), a copy's mapping is valid for the whole
// function regardless of where in block order the read occurs.
type CopyPropagation struct{}

func (CopyPropagation) Name() string { return "CopyPropagation" }

func (CopyPropagation) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	copies := make(map[string]mir.Operand)

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Kind == mir.InstrCopy && instr.Dest.Name != "" {
				copies[instr.Dest.Name] = instr.Src
			}
		}
	}

	if len(copies) == 0 {
		return false
	}

	resolve := func(op mir.Operand) mir.Operand {
		for range copies {
			if op.Kind != mir.OperandPlace {
				break
			}

			src, ok := copies[op.Place.Name]
			if !ok {
				break
			}

			op = src
		}

		return op
	}

	changed := false

	track := func(op mir.Operand) mir.Operand {
		r := resolve(op)
		if !operandEqual(op, r) {
			changed = true
		}

		return r
	}

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			blk.Instructions[i] = mapInstrOperands(instr, track)
		}

		blk.Term = mapTermOperands(blk.Term, track)
	}

	return changed
}
