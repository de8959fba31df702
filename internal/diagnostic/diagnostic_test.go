package diagnostic

import (
	"strings"
	"testing"

	"github.com/bmb-lang/bmbc/internal/position"
)

func span(file string, line, col int) position.Span {
	p := position.Position{Filename: file, Line: line, Column: col, Offset: col}
	return position.Span{Start: p, End: p}
}

func TestBuilderProducesContractDiagnostic(t *testing.T) {
	d := NewDiagnostic().
		Warning().
		Contract().
		Code("W7001").
		Title("missing postcondition").
		Message("function increment has no postcondition").
		Span(span("contract.bmb", 4, 1)).
		Suggest("add a post clause", "document the guarantee the caller can rely on").
		Build()

	if d.Level != DiagnosticWarning {
		t.Fatalf("Level = %v, want DiagnosticWarning", d.Level)
	}

	if d.Category != DiagnosticContract {
		t.Fatalf("Category = %v, want DiagnosticContract", d.Category)
	}

	if d.Code != "W7001" {
		t.Fatalf("Code = %q, want W7001", d.Code)
	}

	if len(d.Suggestions) != 1 {
		t.Fatalf("Suggestions = %d, want 1", len(d.Suggestions))
	}
}

func TestFormatSortsByFileLineColumnThenLevel(t *testing.T) {
	later := NewDiagnostic().Warning().Style().Code("W4001").Title("unused").Message("x unused").Span(span("main.bmb", 5, 1)).Build()
	earlierError := NewDiagnostic().Error().Type().Code("E3001").Title("mismatch").Message("expected i64").Span(span("main.bmb", 2, 1)).Build()
	sameSpotWarning := NewDiagnostic().Warning().Contract().Code("W7002").Title("trivial contract").Message("post is always true").Span(span("main.bmb", 2, 1)).Build()

	out := Format([]*Diagnostic{later, sameSpotWarning, earlierError}, nil)

	errIdx := strings.Index(out, "E3001")
	warnIdx := strings.Index(out, "W7002")
	unusedIdx := strings.Index(out, "W4001")

	if !(errIdx < warnIdx && warnIdx < unusedIdx) {
		t.Fatalf("Format did not sort by position/level: %s", out)
	}
}

func TestFormatEmptyReturnsEmptyString(t *testing.T) {
	if got := Format(nil, nil); got != "" {
		t.Fatalf("Format(nil) = %q, want empty", got)
	}
}

func TestFormatIncludesSourceLineWhenMapProvided(t *testing.T) {
	sm := position.NewSourceMap()
	sm.AddFile("contract.bmb", "fn increment(x: i64) -> i64 {\n  x + 1\n}\n")

	d := NewDiagnostic().
		Warning().
		Contract().
		Code("W7001").
		Title("missing postcondition").
		Message("increment has no postcondition").
		Span(span("contract.bmb", 1, 1)).
		Build()

	out := Format([]*Diagnostic{d}, sm)
	if !strings.Contains(out, "fn increment(x: i64) -> i64 {") {
		t.Fatalf("Format did not include source line: %s", out)
	}
}
