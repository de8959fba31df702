package optimize

import (
	"math"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// ConstantNarrowing shrinks an i64 integer constant that provably fits in
// i32 down to an i32 literal, inserting an explicit sign-extension back to
// i64 at the point of definition so every existing use of the place keeps
// seeing the original width (§4.4 item 11). This lets codegen emit the
// narrower, more compact constant encoding without having to re-derive
// range facts itself.
type ConstantNarrowing struct{}

func (ConstantNarrowing) Name() string { return "ConstantNarrowing" }

func (ConstantNarrowing) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, blk := range fn.Blocks {
		rebuilt := make([]mir.Instruction, 0, len(blk.Instructions))

		for _, instr := range blk.Instructions {
			rebuilt = append(rebuilt, instr)

			if !narrowable(instr) {
				continue
			}

			i := len(rebuilt) - 1
			narrowName := fn.FreshTemp(instr.Dest.Name + "_i32")
			wideDest := instr.Dest

			rebuilt[i].Dest = mir.Place{Name: narrowName, Type: types.I32}
			rebuilt = append(rebuilt, mir.Instruction{Kind: mir.InstrCast, Dest: wideDest, Src: mir.OperandFromPlace(mir.Place{Name: narrowName, Type: types.I32})})
			changed = true
		}

		blk.Instructions = rebuilt
	}

	return changed
}

func narrowable(instr mir.Instruction) bool {
	if instr.Kind != mir.InstrConst || instr.ConstVal.Kind != mir.ConstInt {
		return false
	}

	if instr.Dest.Type == nil || instr.Dest.Type.Kind != types.KindI64 {
		return false
	}

	return instr.ConstVal.Int >= math.MinInt32 && instr.ConstVal.Int <= math.MaxInt32
}
