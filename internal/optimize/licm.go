package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// LoopInvariantCodeMotion hoists pure computations out of a loop header's
// body into a unique predecessor block that enters the loop from outside
// it (§4.4 item 8). It never hoists calls (so the is_tail/dest-None
// exclusions §4.4 calls out don't apply: this pass simply never touches
// InstrCall), and it never hoists anything when the loop has more than one
// entering predecessor, since picking among several would require
// synthesizing a new preheader block this pass does not build.
//
// Loop discovery here is a deliberately narrow approximation of "find
// natural loops via the dominator tree": a header is any block some
// later-or-equal-indexed block branches back to, and the loop body is
// every block between them in fn.Blocks' creation order. This matches
// every loop shape internal/lowering actually emits (while/for-in/loop all
// append their header before their body/backedge blocks, in source order),
// but is not a general CFG loop-discovery algorithm.
type LoopInvariantCodeMotion struct{}

func (LoopInvariantCodeMotion) Name() string { return "LoopInvariantCodeMotion" }

func (LoopInvariantCodeMotion) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for i, header := range fn.Blocks {
		backIdx := findBackEdgeIndex(fn, header.Label, i)
		if backIdx < 0 {
			continue
		}

		body := fn.Blocks[i : backIdx+1]
		loopLabels := make(map[string]bool, len(body))

		for _, b := range body {
			loopLabels[b.Label] = true
		}

		preheader := findPreheader(fn, header.Label, loopLabels)
		if preheader == nil {
			continue
		}

		inLoopDefs := definedInBlocks(body)

		for _, blk := range body {
			kept := blk.Instructions[:0:0]

			for _, instr := range blk.Instructions {
				if isHoistable(instr) && instr.Dest.Name != "" && operandsDefinedOutside(instr, inLoopDefs) {
					preheader.Instructions = append(preheader.Instructions, instr)
					delete(inLoopDefs, instr.Dest.Name)
					changed = true

					continue
				}

				kept = append(kept, instr)
			}

			blk.Instructions = kept
		}
	}

	return changed
}

func isHoistable(instr mir.Instruction) bool {
	switch instr.Kind {
	case mir.InstrBinOp, mir.InstrUnaryOp, mir.InstrCast, mir.InstrPtrOffset:
		return true
	default:
		return false
	}
}

func operandsDefinedOutside(instr mir.Instruction, inLoop map[string]bool) bool {
	for _, op := range instrOperandRefs(instr) {
		if op.Kind == mir.OperandPlace && inLoop[op.Place.Name] {
			return false
		}
	}

	return true
}

func definedInBlocks(blocks []*mir.BasicBlock) map[string]bool {
	set := make(map[string]bool)

	for _, b := range blocks {
		for _, instr := range b.Instructions {
			if instr.Dest.Name != "" {
				set[instr.Dest.Name] = true
			}
		}
	}

	return set
}

func findBackEdgeIndex(fn *mir.MirFunction, headerLabel string, headerIdx int) int {
	best := -1

	for j := headerIdx; j < len(fn.Blocks); j++ {
		for _, s := range fn.Blocks[j].Term.Successors() {
			if s == headerLabel {
				best = j
			}
		}
	}

	return best
}

func findPreheader(fn *mir.MirFunction, headerLabel string, loopLabels map[string]bool) *mir.BasicBlock {
	var found *mir.BasicBlock

	for _, b := range fn.Blocks {
		if loopLabels[b.Label] {
			continue
		}

		for _, s := range b.Term.Successors() {
			if s == headerLabel {
				if found != nil {
					return nil
				}

				found = b
			}
		}
	}

	return found
}
