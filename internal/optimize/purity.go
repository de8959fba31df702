package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// MemoryEffectAnalysis computes Attributes.IsMemoryFree: true exactly when
// every instruction in fn is one of the pure kinds, and every call fn makes
// is marked IsPure (§4.4 item 3); the callee's own body is not inspected.
// LICM does not read this attribute.
type MemoryEffectAnalysis struct{}

func (MemoryEffectAnalysis) Name() string { return "MemoryEffectAnalysis" }

func (MemoryEffectAnalysis) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	free := true

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Kind.IsPureKind() {
				continue
			}

			if instr.Kind == mir.InstrCall && instr.IsPure {
				continue
			}

			free = false

			break
		}

		if !free {
			break
		}
	}

	if fn.Attributes.IsMemoryFree == free {
		return false
	}

	fn.Attributes.IsMemoryFree = free

	return true
}
