package optimize

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// CommonSubexpressionElimination replaces a recomputation of a value
// already computed earlier with a copy of the earlier result (§4.4 item 6).
// By default this only considers instructions within the same block, which
// is sound with no further analysis. The cross-block variant is feature
// flagged, since recognizing that an earlier block's computation still
// dominates a later one in general requires a dominator tree this package
// does not build; instead it approximates dominance with fn.Blocks' creation
// order (block i's computations are visible to block j for j > i), which
// holds for every block shape lowering actually produces (blocks are always
// appended after whichever block control unconditionally reaches them from)
// but is not a general soundness guarantee for arbitrary MIR.
type CommonSubexpressionElimination struct {
	crossBlock bool
}

func (CommonSubexpressionElimination) Name() string { return "CommonSubexpressionElimination" }

func (p *CommonSubexpressionElimination) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false
	seen := make(map[string]mir.Place)

	for _, blk := range fn.Blocks {
		if !p.crossBlock {
			seen = make(map[string]mir.Place)
		}

		for i, instr := range blk.Instructions {
			key, ok := valueKey(instr)
			if !ok {
				continue
			}

			if prior, ok := seen[key]; ok {
				blk.Instructions[i] = mir.Copy(instr.Dest, mir.OperandFromPlace(prior))
				changed = true

				continue
			}

			if instr.Dest.Name != "" {
				seen[key] = instr.Dest
			}
		}
	}

	return changed
}

// valueKey returns a canonical string identifying the value a pure,
// side-effect-free computation produces, or false for instructions CSE
// does not consider (calls, memory operations, Phis -- each already either
// handled elsewhere or unsound to dedupe without more analysis).
func valueKey(instr mir.Instruction) (string, bool) {
	switch instr.Kind {
	case mir.InstrBinOp:
		return fmt.Sprintf("bin:%s:%s:%s", instr.BinOp, operandKey(instr.Lhs), operandKey(instr.Rhs)), true
	case mir.InstrUnaryOp:
		return fmt.Sprintf("un:%s:%s", instr.UnOp, operandKey(instr.Src)), true
	case mir.InstrCast:
		typeName := ""
		if instr.Dest.Type != nil {
			typeName = instr.Dest.Type.String()
		}

		return fmt.Sprintf("cast:%s:%s", typeName, operandKey(instr.Src)), true
	case mir.InstrPtrOffset:
		return fmt.Sprintf("off:%s:%s", operandKey(instr.Base), operandKey(instr.Offset)), true
	default:
		return "", false
	}
}

func operandKey(op mir.Operand) string {
	if op.Kind == mir.OperandConst {
		c := op.Const

		return fmt.Sprintf("c%d:%d:%g:%v:%d:%s", c.Kind, c.Int, c.Float, c.Bool, c.Char, c.String)
	}

	return "p:" + op.Place.Name
}
