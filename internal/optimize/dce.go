package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// DeadCodeElimination removes instructions whose result is never used and
// that carry no side effect, via single fixed-point liveness seeded from
// terminators and every side-effecting instruction (§4.4 item 4). A call to
// a function known pure is dead when its result is unused, same as any
// other pure instruction; a call that is impure or whose result is
// discarded by construction (HasDest false) is always kept.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "DeadCodeElimination" }

func (DeadCodeElimination) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	live := computeLiveness(fn)

	changed := false

	for _, blk := range fn.Blocks {
		kept := blk.Instructions[:0:0]

		for _, instr := range blk.Instructions {
			if isSideEffecting(instr) || (instr.Dest.Name != "" && live[instr.Dest.Name]) {
				kept = append(kept, instr)

				continue
			}

			changed = true
		}

		blk.Instructions = kept
	}

	return changed
}

func computeLiveness(fn *mir.MirFunction) map[string]bool {
	live := make(map[string]bool)

	for _, blk := range fn.Blocks {
		for _, op := range termOperandRefs(blk.Term) {
			if op.Kind == mir.OperandPlace {
				live[op.Place.Name] = true
			}
		}
	}

	for {
		progressed := false

		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instructions {
				necessary := isSideEffecting(instr) || (instr.Dest.Name != "" && live[instr.Dest.Name])
				if !necessary {
					continue
				}

				for _, op := range instrOperandRefs(instr) {
					if op.Kind == mir.OperandPlace && !live[op.Place.Name] {
						live[op.Place.Name] = true
						progressed = true
					}
				}
			}
		}

		if !progressed {
			break
		}
	}

	return live
}
