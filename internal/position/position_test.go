package position

import "testing"

func TestPositionIsValid(t *testing.T) {
	valid := Position{Filename: "main.bmb", Line: 1, Column: 1, Offset: 0}
	if !valid.IsValid() {
		t.Fatal("expected a 1:1 position to be valid")
	}

	invalid := Position{Line: 0, Column: 1, Offset: 0}
	if invalid.IsValid() {
		t.Fatal("expected a zero line to be invalid")
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Filename: "src/main.bmb", Line: 3, Column: 7}
	if got, want := p.String(), "main.bmb:3:7"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	anon := Position{Line: 3, Column: 7}
	if got, want := anon.String(), "3:7"; got != want {
		t.Fatalf("String() with no filename = %q, want %q", got, want)
	}
}

func TestPositionBeforeOrdersByOffsetWithinAFile(t *testing.T) {
	a := Position{Filename: "main.bmb", Offset: 10}
	b := Position{Filename: "main.bmb", Offset: 20}

	if !a.Before(b) {
		t.Fatal("expected the earlier offset to sort before the later one")
	}

	if b.Before(a) {
		t.Fatal("expected the later offset not to sort before the earlier one")
	}
}

func TestSpanIsValidRejectsCrossFileAndReversedRanges(t *testing.T) {
	start := Position{Filename: "main.bmb", Line: 1, Column: 1, Offset: 0}
	end := Position{Filename: "main.bmb", Line: 1, Column: 5, Offset: 4}

	if !(Span{Start: start, End: end}).IsValid() {
		t.Fatal("expected a well-formed same-file span to be valid")
	}

	reversed := Span{Start: end, End: start}
	if reversed.IsValid() {
		t.Fatal("expected a reversed span (end before start) to be invalid")
	}

	otherFile := Position{Filename: "other.bmb", Line: 1, Column: 5, Offset: 4}
	crossFile := Span{Start: start, End: otherFile}
	if crossFile.IsValid() {
		t.Fatal("expected a span spanning two filenames to be invalid")
	}

	if (Span{}).IsValid() {
		t.Fatal("expected the zero Span to be invalid")
	}
}

func TestSpanStringSameLineVsMultiLine(t *testing.T) {
	sameLine := Span{
		Start: Position{Filename: "contract.bmb", Line: 4, Column: 10},
		End:   Position{Filename: "contract.bmb", Line: 4, Column: 20},
	}
	if got, want := sameLine.String(), "contract.bmb:4:10-20"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	multiLine := Span{
		Start: Position{Filename: "contract.bmb", Line: 4, Column: 10},
		End:   Position{Filename: "contract.bmb", Line: 6, Column: 2},
	}
	if got, want := multiLine.String(), "contract.bmb:4:10-6:2"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSpanLength(t *testing.T) {
	s := Span{
		Start: Position{Filename: "main.bmb", Offset: 8, Line: 1, Column: 9},
		End:   Position{Filename: "main.bmb", Offset: 20, Line: 1, Column: 21},
	}
	if got, want := s.Length(), 12; got != want {
		t.Fatalf("Length() = %d, want %d", got, want)
	}

	if (Span{}).Length() != 0 {
		t.Fatal("expected an invalid span to have zero length")
	}
}

func TestSourceFileGetLineAndSpanText(t *testing.T) {
	src := "fn add(a, b) {\n  return a + b\n}\n"
	sf := NewSourceFile("add.bmb", src)

	if got, want := sf.GetLine(2), "  return a + b"; got != want {
		t.Fatalf("GetLine(2) = %q, want %q", got, want)
	}

	if sf.GetLine(99) != "" {
		t.Fatal("expected an out-of-range line to return empty")
	}

	returnSpan := Span{
		Start: Position{Filename: "add.bmb", Offset: 17, Line: 2, Column: 3},
		End:   Position{Filename: "add.bmb", Offset: 29, Line: 2, Column: 15},
	}
	if got, want := sf.GetSpanText(returnSpan), "return a + b"; got != want {
		t.Fatalf("GetSpanText = %q, want %q", got, want)
	}

	wrongFile := returnSpan
	wrongFile.Start.Filename = "other.bmb"
	wrongFile.End.Filename = "other.bmb"
	if sf.GetSpanText(wrongFile) != "" {
		t.Fatal("expected GetSpanText to reject a span naming a different file")
	}
}

// TestSourceMapResolvesAcrossIncludedFiles exercises the multi-file case
// the driver's IncludePaths/PreludePath set up: a compilation touching
// more than one BMB source file, each independently resolvable by name.
func TestSourceMapResolvesAcrossIncludedFiles(t *testing.T) {
	sm := NewSourceMap()
	sm.AddFile("prelude.bmb", "fn id(x) { x }\n")
	sm.AddFile("main.bmb", "fn main() { id(1) }\n")

	if got, want := sm.GetLine(Position{Filename: "prelude.bmb", Line: 1}), "fn id(x) { x }"; got != want {
		t.Fatalf("GetLine for prelude.bmb = %q, want %q", got, want)
	}

	if got, want := sm.GetLine(Position{Filename: "main.bmb", Line: 1}), "fn main() { id(1) }"; got != want {
		t.Fatalf("GetLine for main.bmb = %q, want %q", got, want)
	}

	if sm.GetFile("missing.bmb") != nil {
		t.Fatal("expected an unregistered file to return nil")
	}

	if sm.GetLine(Position{Filename: "missing.bmb", Line: 1}) != "" {
		t.Fatal("expected GetLine for an unregistered file to return empty")
	}
}
