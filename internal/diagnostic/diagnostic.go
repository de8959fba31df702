// Package diagnostic provides comprehensive error reporting, warnings, and
// static analysis output for the BMB compiler.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmb-lang/bmbc/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the category of diagnostic.
type DiagnosticCategory int

const (
	DiagnosticSyntax DiagnosticCategory = iota
	DiagnosticType
	DiagnosticSemantic
	DiagnosticPerformance
	DiagnosticStyle
	DiagnosticSecurity
	DiagnosticContract
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticSyntax:
		return "syntax"
	case DiagnosticType:
		return "type"
	case DiagnosticSemantic:
		return "semantic"
	case DiagnosticPerformance:
		return "performance"
	case DiagnosticStyle:
		return "style"
	case DiagnosticSecurity:
		return "security"
	case DiagnosticContract:
		return "contract"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code        string
	Title       string
	Message     string
	Suggestions []Suggestion
	RelatedInfo []RelatedInformation
	Tags        []string
	Span        position.Span
	Level       DiagnosticLevel
	Category    DiagnosticCategory
}

// Suggestion represents a suggested fix for a diagnostic.
type Suggestion struct {
	Title       string
	Description string
	Edits       []TextEdit
}

// TextEdit represents a text replacement.
type TextEdit struct {
	NewText     string
	Description string
	Span        position.Span
}

// RelatedInformation provides additional context for a diagnostic.
type RelatedInformation struct {
	Message string
	Span    position.Span
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{
		diagnostic: &Diagnostic{
			Suggestions: make([]Suggestion, 0),
			RelatedInfo: make([]RelatedInformation, 0),
			Tags:        make([]string, 0),
		},
	}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Info() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticInfo

	return db
}

func (db *DiagnosticBuilder) Hint() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticHint

	return db
}

func (db *DiagnosticBuilder) Syntax() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticSyntax

	return db
}

func (db *DiagnosticBuilder) Type() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticType

	return db
}

func (db *DiagnosticBuilder) Semantic() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticSemantic

	return db
}

func (db *DiagnosticBuilder) Performance() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticPerformance

	return db
}

func (db *DiagnosticBuilder) Style() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticStyle

	return db
}

func (db *DiagnosticBuilder) Security() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticSecurity

	return db
}

func (db *DiagnosticBuilder) Contract() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticContract

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Title(title string) *DiagnosticBuilder {
	db.diagnostic.Title = title

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Suggest(title, description string, edits ...TextEdit) *DiagnosticBuilder {
	suggestion := Suggestion{
		Title:       title,
		Description: description,
		Edits:       edits,
	}
	db.diagnostic.Suggestions = append(db.diagnostic.Suggestions, suggestion)

	return db
}

func (db *DiagnosticBuilder) Related(span position.Span, message string) *DiagnosticBuilder {
	related := RelatedInformation{
		Span:    span,
		Message: message,
	}
	db.diagnostic.RelatedInfo = append(db.diagnostic.RelatedInfo, related)

	return db
}

func (db *DiagnosticBuilder) Tag(tag string) *DiagnosticBuilder {
	db.diagnostic.Tags = append(db.diagnostic.Tags, tag)

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// Format renders diags sorted by file/line/column (errors before warnings
// at the same position) for display at the driver boundary (cmd/bmbc's
// stderr output after a Compile call). sm is optional; when non-nil, the
// offending source line is printed beneath each diagnostic.
func Format(diags []*Diagnostic, sm *position.SourceMap) string {
	if len(diags) == 0 {
		return ""
	}

	sorted := make([]*Diagnostic, len(diags))
	copy(sorted, diags)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}

		return a.Level < b.Level
	})

	var result strings.Builder

	for i, diag := range sorted {
		if i > 0 {
			result.WriteString("\n")
		}

		result.WriteString(formatOne(diag, sm))
	}

	return result.String()
}

func formatOne(diag *Diagnostic, sm *position.SourceMap) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s:%d:%d: %s[%s]: %s\n",
		diag.Span.Start.Filename,
		diag.Span.Start.Line,
		diag.Span.Start.Column,
		diag.Level.String(),
		diag.Code,
		diag.Title,
	))

	if diag.Message != "" {
		result.WriteString(fmt.Sprintf("  %s\n", diag.Message))
	}

	if sm != nil {
		if line := sm.GetLine(diag.Span.Start); line != "" {
			result.WriteString(fmt.Sprintf("  | %s\n", line))
		}
	}

	for _, suggestion := range diag.Suggestions {
		result.WriteString(fmt.Sprintf("  suggestion: %s: %s\n", suggestion.Title, suggestion.Description))
	}

	for _, related := range diag.RelatedInfo {
		result.WriteString(fmt.Sprintf("  related at %s:%d:%d: %s\n",
			related.Span.Start.Filename,
			related.Span.Start.Line,
			related.Span.Start.Column,
			related.Message,
		))
	}

	return result.String()
}
