package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func factsFor(props ...*cir.Proposition) *cir.ProvenFactSet {
	return cir.DeriveProvenFacts(props)
}

func TestBoundsCheckEliminationRemovesProvenCheck(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckBounds, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "i", Type: types.I64})},
	}, mir.Return())

	facts := factsFor(
		cir.Compare(cir.CmpGe, cir.Var("i", types.I64), cir.ConstInt(0)),
		cir.Compare(cir.CmpLt, cir.Var("i", types.I64), cir.ConstInt(10)),
	)

	p := &BoundsCheckElimination{}
	if !p.Run(fn, facts) {
		t.Fatalf("expected the check to be removed")
	}

	if len(fn.Blocks[0].Instructions) != 0 {
		t.Fatalf("expected no instructions left, got %+v", fn.Blocks[0].Instructions)
	}
}

func TestBoundsCheckEliminationKeepsUnprovenCheck(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckBounds, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "i", Type: types.I64})},
	}, mir.Return())

	p := &BoundsCheckElimination{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change with nil facts")
	}

	if p.Run(fn, cir.NewProvenFactSet()) {
		t.Fatalf("expected no change with an empty fact set")
	}
}

func TestNullCheckEliminationRemovesProvenCheck(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckNull, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "p", Type: types.I64})},
	}, mir.Return())

	facts := factsFor(cir.Compare(cir.CmpNe, cir.Var("p", types.I64), cir.ConstInt(0)))

	p := &NullCheckElimination{}
	if !p.Run(fn, facts) {
		t.Fatalf("expected the null check to be removed")
	}
}

func TestDivisionCheckEliminationRemovesProvenCheck(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		{Kind: mir.InstrContractCheck, CheckKind: mir.CheckDivision, CheckExpr: mir.OperandFromPlace(mir.Place{Name: "d", Type: types.I64})},
	}, mir.Return())

	facts := factsFor(cir.Compare(cir.CmpNe, cir.Var("d", types.I64), cir.ConstInt(0)))

	p := &DivisionCheckElimination{}
	if !p.Run(fn, facts) {
		t.Fatalf("expected the division check to be removed")
	}
}
