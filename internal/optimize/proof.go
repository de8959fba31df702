package optimize

import (
	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
)

// checkOperandPlace returns the place name CheckExpr refers to, and false
// if the check guards a non-place expression (a constant or a computed
// temporary ProvenFactSet has no entry for), in which case the proof
// passes correctly decline to act rather than guess.
func checkOperandPlace(check mir.Instruction) (string, bool) {
	if check.CheckExpr.Kind != mir.OperandPlace {
		return "", false
	}

	return check.CheckExpr.Place.Name, true
}

// removeContractChecks drops every contract-check instruction in fn for
// which shouldRemove reports true and keeps every other instruction; it's
// shared by the three proof-guided check eliminations, which differ only
// in CheckKind and the ProvenFactSet predicate they consult.
func removeContractChecks(fn *mir.MirFunction, shouldRemove func(mir.Instruction) bool) bool {
	changed := false

	for _, blk := range fn.Blocks {
		kept := blk.Instructions[:0:0]

		for _, instr := range blk.Instructions {
			if instr.Kind == mir.InstrContractCheck && shouldRemove(instr) {
				changed = true

				continue
			}

			kept = append(kept, instr)
		}

		blk.Instructions = kept
	}

	return changed
}

// BoundsCheckElimination drops InstrContractCheck{CheckKind: CheckBounds}
// markers whose guarded index is proven to be within [0, len) by the
// function's verified preconditions (§4.4 item 1).
//
// The bounds check's CheckExpr is conventionally the index itself; an
// upper bound alone (index < len, proven via the array's length place)
// isn't enough without also knowing the index is non-negative, so both a
// lower bound of 0-or-more and an upper bound must be proven.
type BoundsCheckElimination struct{}

func (BoundsCheckElimination) Name() string { return "BoundsCheckElimination" }

func (BoundsCheckElimination) Run(fn *mir.MirFunction, facts *cir.ProvenFactSet) bool {
	if facts == nil {
		return false
	}

	return removeContractChecks(fn, func(instr mir.Instruction) bool {
		if instr.CheckKind != mir.CheckBounds {
			return false
		}

		place, ok := checkOperandPlace(instr)
		if !ok {
			return false
		}

		lo, hasLo := facts.LowerBound(place)
		_, hasUp := facts.UpperBound(place)

		return hasLo && lo >= 0 && hasUp
	})
}

// NullCheckElimination drops null-check markers for places proven non-null
// by the function's verified preconditions (§4.4 item 1).
type NullCheckElimination struct{}

func (NullCheckElimination) Name() string { return "NullCheckElimination" }

func (NullCheckElimination) Run(fn *mir.MirFunction, facts *cir.ProvenFactSet) bool {
	if facts == nil {
		return false
	}

	return removeContractChecks(fn, func(instr mir.Instruction) bool {
		if instr.CheckKind != mir.CheckNull {
			return false
		}

		place, ok := checkOperandPlace(instr)

		return ok && facts.NonNull(place)
	})
}

// DivisionCheckElimination drops divide-by-zero check markers for divisors
// proven non-zero by the function's verified preconditions (§4.4 item 1).
type DivisionCheckElimination struct{}

func (DivisionCheckElimination) Name() string { return "DivisionCheckElimination" }

func (DivisionCheckElimination) Run(fn *mir.MirFunction, facts *cir.ProvenFactSet) bool {
	if facts == nil {
		return false
	}

	return removeContractChecks(fn, func(instr mir.Instruction) bool {
		if instr.CheckKind != mir.CheckDivision {
			return false
		}

		place, ok := checkOperandPlace(instr)

		return ok && facts.NonZero(place)
	})
}

// ProofUnreachableElimination removes branch arms whose condition
// contradicts a proven invariant: a Branch terminator where the then (or
// else) arm's target block's sole purpose is to re-check a fact already
// known false is rewritten to a Goto of the surviving arm (§4.4 item 1).
//
// This package has no general contradiction solver; it recognizes the one
// concrete shape lowering produces for a redundant guard: an
// InstrContractCheck of CheckGeneric whose CheckExpr names a place proven
// NonZero (so a `place == 0` guard is known never to hold) as the first
// instruction of a branch target with no other predecessors, which is
// therefore dead and collapses to a direct Goto past it.
type ProofUnreachableElimination struct{}

func (ProofUnreachableElimination) Name() string { return "ProofUnreachableElimination" }

func (ProofUnreachableElimination) Run(fn *mir.MirFunction, facts *cir.ProvenFactSet) bool {
	if facts == nil {
		return false
	}

	changed := false

	for _, blk := range fn.Blocks {
		if blk.Term.Kind != mir.TermBranch {
			continue
		}

		thenDead := guardContradicted(fn, blk.Term.ThenLabel, facts)
		elseDead := guardContradicted(fn, blk.Term.ElseLabel, facts)

		switch {
		case thenDead && !elseDead:
			blk.Term = mir.Goto(blk.Term.ElseLabel)
			changed = true
		case elseDead && !thenDead:
			blk.Term = mir.Goto(blk.Term.ThenLabel)
			changed = true
		}
	}

	return changed
}

// guardContradicted reports whether target's entry is a CheckGeneric
// contract check on a place known NonZero by facts, marking that block
// unreachable via the only path this pass recognizes.
func guardContradicted(fn *mir.MirFunction, target string, facts *cir.ProvenFactSet) bool {
	blk := fn.BlockByLabel(target)
	if blk == nil || len(blk.Instructions) == 0 {
		return false
	}

	first := blk.Instructions[0]
	if first.Kind != mir.InstrContractCheck || first.CheckKind != mir.CheckGeneric {
		return false
	}

	place, ok := checkOperandPlace(first)

	return ok && facts.NonZero(place)
}
