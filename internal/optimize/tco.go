package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// TailCallMarking sets InstrCall.IsTail on calls whose result flows
// directly into a Return with no intervening instruction (§4.4 item 7).
// A void tail call (HasDest false, immediately followed by a valueless
// Return) also qualifies.
type TailCallMarking struct{}

func (TailCallMarking) Name() string { return "TailCallMarking" }

func (TailCallMarking) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, blk := range fn.Blocks {
		if blk.Term.Kind != mir.TermReturn {
			continue
		}

		idx := tailCallIndex(blk, blk.Term)
		if idx < 0 || blk.Instructions[idx].IsTail {
			continue
		}

		blk.Instructions[idx].IsTail = true
		changed = true
	}

	return changed
}

// tailCallIndex returns the index of blk's last instruction when it is a
// call whose result (if any) is exactly what term returns, or -1.
func tailCallIndex(blk *mir.BasicBlock, term mir.Terminator) int {
	n := len(blk.Instructions)
	if n == 0 {
		return -1
	}

	last := blk.Instructions[n-1]
	if last.Kind != mir.InstrCall {
		return -1
	}

	if term.HasValue {
		if term.Value.Kind != mir.OperandPlace || term.Value.Place.Name != last.Dest.Name {
			return -1
		}

		return n - 1
	}

	if last.HasDest {
		return -1
	}

	return n - 1
}

// TailRecursiveToLoop rewrites every self-tail-call (a call whose callee is
// fn's own name, marked IsTail by TailCallMarking) into a backedge to a new
// loop header, replacing the call's argument-passing with Phi nodes over
// the function's parameters (§4.4 item 7). Mutual recursion and tail calls
// through an indirect/closure callee are left alone: both would need an
// interprocedural call graph this pass does not build, so it only
// recognizes the direct-self-call shape.
type TailRecursiveToLoop struct{}

func (TailRecursiveToLoop) Name() string { return "TailRecursiveToLoop" }

type tailSite struct {
	label string
	idx   int
}

func (TailRecursiveToLoop) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	entry := fn.Entry()
	if entry == nil {
		return false
	}

	var sites []tailSite

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			if instr.Kind == mir.InstrCall && instr.IsTail && instr.Callee == fn.Name && len(instr.Args) == len(fn.Params) {
				sites = append(sites, tailSite{label: blk.Label, idx: i})
			}
		}
	}

	if len(sites) == 0 {
		return false
	}

	entryLabel := entry.Label
	header := &mir.BasicBlock{Label: fn.FreshLabel("tail_loop_header")}
	header.Instructions = entry.Instructions
	header.Term = entry.Term

	for i := range sites {
		if sites[i].label == entryLabel {
			sites[i].label = header.Label
		}
	}

	insertBlockAfter(fn, entry, header)

	paramOperands := make([][]mir.PhiOperand, len(fn.Params))
	var aliasCopies []mir.Instruction

	for pi, p := range fn.Params {
		aliasName := p.Name + "_init"
		aliasCopies = append(aliasCopies, mir.Copy(mir.Place{Name: aliasName, Type: p.Type}, mir.OperandFromPlace(mir.Place{Name: p.Name, Type: p.Type})))
		paramOperands[pi] = []mir.PhiOperand{{Predecessor: entryLabel, Value: mir.OperandFromPlace(mir.Place{Name: aliasName, Type: p.Type})}}
	}

	for _, s := range sites {
		blk := fn.BlockByLabel(s.label)
		call := blk.Instructions[s.idx]

		for pi := range fn.Params {
			paramOperands[pi] = append(paramOperands[pi], mir.PhiOperand{Predecessor: blk.Label, Value: call.Args[pi]})
		}

		blk.Instructions = append(blk.Instructions[:s.idx], blk.Instructions[s.idx+1:]...)
		blk.Term = mir.Goto(header.Label)
	}

	headerPhis := make([]mir.Instruction, len(fn.Params))
	for pi, p := range fn.Params {
		headerPhis[pi] = mir.Phi(mir.Place{Name: p.Name, Type: p.Type}, paramOperands[pi])
	}

	header.Instructions = append(headerPhis, header.Instructions...)

	entry.Instructions = aliasCopies
	entry.Term = mir.Goto(header.Label)

	return true
}

// insertBlockAfter splices fresh immediately after after in fn.Blocks,
// preserving every other block's relative order.
func insertBlockAfter(fn *mir.MirFunction, after, fresh *mir.BasicBlock) {
	idx := -1

	for i, b := range fn.Blocks {
		if b == after {
			idx = i

			break
		}
	}

	if idx < 0 {
		fn.Blocks = append(fn.Blocks, fresh)

		return
	}

	fn.Blocks = append(fn.Blocks[:idx+1], append([]*mir.BasicBlock{fresh}, fn.Blocks[idx+1:]...)...)
}
