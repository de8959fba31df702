package smt

import (
	"strings"
	"testing"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/types"
)

func TestSortFor(t *testing.T) {
	cases := map[string]string{
		"i32":    "Int",
		"i64":    "Int",
		"u64":    "Int",
		"f64":    "Real",
		"bool":   "Bool",
		"String": "Sort_String",
	}

	for in, want := range cases {
		if got := sortFor(in); got != want {
			t.Errorf("sortFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslateFunctionEmitsAssertAndCheckSat(t *testing.T) {
	fn := &cir.CirFunction{Name: "abs_nonneg"}
	fn.Params = []cir.Param{{Name: "x", Type: "i64"}}
	fn.Contract.Preconditions = []*cir.Proposition{
		cir.Compare(cir.CmpGe, cir.Var("x", types.I64), cir.ConstInt(0)),
	}
	fn.Contract.Postconditions = []*cir.Proposition{
		cir.Compare(cir.CmpGe, cir.Var("x", types.I64), cir.ConstInt(0)),
	}

	q := translateFunction(fn)

	for _, want := range []string{"(declare-fun x () Int)", "(assert", "(check-sat)", "(get-model)"} {
		if !strings.Contains(q.script, want) {
			t.Errorf("script missing %q:\n%s", want, q.script)
		}
	}

	if q.needsQuantifiers {
		t.Error("expected needsQuantifiers = false for a quantifier-free contract")
	}
}

func TestTranslateFunctionDetectsQuantifiers(t *testing.T) {
	fn := &cir.CirFunction{Name: "f"}
	fn.Contract.Postconditions = []*cir.Proposition{
		cir.Forall("i", cir.Compare(cir.CmpGe, cir.Var("i", types.I64), cir.ConstInt(0))),
	}

	q := translateFunction(fn)
	if !q.needsQuantifiers {
		t.Error("expected needsQuantifiers = true")
	}
}

func TestUninterpretedSortDeclared(t *testing.T) {
	fn := &cir.CirFunction{Name: "f"}
	fn.Params = []cir.Param{{Name: "s", Type: "Widget"}}

	q := translateFunction(fn)
	if !strings.Contains(q.script, "(declare-sort Sort_Widget 0)") {
		t.Errorf("expected uninterpreted sort declaration:\n%s", q.script)
	}
}
