package smt

import "testing"

func TestParseSatResult(t *testing.T) {
	cases := map[string]string{
		"unsat\n":            "unsat",
		"sat\n(model ...)\n": "sat",
		"\n  unknown  \n":    "unknown",
		"":                   "",
	}

	for in, want := range cases {
		if got := parseSatResult(in); got != want {
			t.Errorf("parseSatResult(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseModelDefineFun(t *testing.T) {
	out := "sat\n(model\n  (define-fun x () Int 5)\n  (define-fun ok () Bool true)\n)\n"

	model := parseModel(out)

	if model["x"] != "5" {
		t.Errorf("x = %q, want 5", model["x"])
	}

	if model["ok"] != "true" {
		t.Errorf("ok = %q, want true", model["ok"])
	}
}

func TestParseModelBracketedFallback(t *testing.T) {
	out := "sat\n[x 5]\n[y -3]\n"

	model := parseModel(out)

	if model["x"] != "5" {
		t.Errorf("x = %q, want 5", model["x"])
	}

	if model["y"] != "-3" {
		t.Errorf("y = %q, want -3", model["y"])
	}
}
