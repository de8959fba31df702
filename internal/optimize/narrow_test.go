package optimize

import (
	"testing"

	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestConstantNarrowingNarrowsInRangeConstant(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.Const(mir.Place{Name: "k", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 42}),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "k", Type: types.I64})))

	p := &ConstantNarrowing{}
	if !p.Run(fn, nil) {
		t.Fatalf("expected a change")
	}

	instrs := fn.Blocks[0].Instructions
	if len(instrs) != 2 {
		t.Fatalf("expected a narrow const plus a sign-extending cast, got %+v", instrs)
	}

	if instrs[0].Dest.Type.Kind != types.KindI32 {
		t.Fatalf("expected the narrowed constant to be i32, got %v", instrs[0].Dest.Type)
	}

	if instrs[1].Kind != mir.InstrCast || instrs[1].Dest.Name != "k" || instrs[1].Dest.Type.Kind != types.KindI64 {
		t.Fatalf("expected a cast back to i64 named k, got %+v", instrs[1])
	}

	// Idempotent: a second round finds nothing left to narrow.
	if p.Run(fn, nil) {
		t.Fatalf("expected no further change on a second run")
	}
}

func TestConstantNarrowingSkipsOutOfRangeConstant(t *testing.T) {
	fn := oneBlockFn("f", []mir.Instruction{
		mir.Const(mir.Place{Name: "k", Type: types.I64}, mir.Constant{Kind: mir.ConstInt, Int: 1 << 40}),
	}, mir.ReturnValue(mir.OperandFromPlace(mir.Place{Name: "k", Type: types.I64})))

	p := &ConstantNarrowing{}
	if p.Run(fn, nil) {
		t.Fatalf("expected no change for an out-of-range constant")
	}
}
