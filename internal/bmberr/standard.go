// Package bmberr provides standardized error messaging for the BMB compiler.
package bmberr

import (
	"fmt"
	"runtime"

	"github.com/bmb-lang/bmbc/internal/position"
)

// Category classifies an error per the taxonomy in the compiler's error
// handling design: type errors stop the pipeline, verification/solver
// errors are local and degrade facts, internal errors are fatal bugs.
type Category string

const (
	CategoryType     Category = "TYPE"
	CategoryResolve  Category = "RESOLVE"
	CategoryVerify   Category = "VERIFY"
	CategorySolver   Category = "SOLVER"
	CategoryInternal Category = "INTERNAL"
	CategoryIO       Category = "IO"
)

// StandardError provides a consistent error format across every compiler stage.
type StandardError struct {
	Category Category
	Code     string
	Message  string
	Span     position.Span
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface.
func (e *StandardError) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Span.String(), e.Message)
	}

	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// New creates a standardized error, tagging the immediate caller for diagnosis.
func New(category Category, code, message string, span position.Span, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)

	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Span:     span,
		Context:  context,
		Caller:   caller,
	}
}

// TypeError reports a type-checking failure at the first offending span (§4.1, §7).
func TypeError(message string, span position.Span) *StandardError {
	return New(CategoryType, "TYPE_MISMATCH", message, span, nil)
}

// ResolveError reports an unresolved import or symbol (§7: "Resolve error").
func ResolveError(symbol string, span position.Span) *StandardError {
	return New(CategoryResolve, "UNRESOLVED_SYMBOL", fmt.Sprintf("unresolved symbol %q", symbol), span,
		map[string]interface{}{"symbol": symbol})
}

// InternalError reports an invariant violation inside a pass; always fatal (§7).
func InternalError(where, detail string) *StandardError {
	return New(CategoryInternal, "INVARIANT_VIOLATION", fmt.Sprintf("%s: %s", where, detail), position.Span{}, nil)
}

// IOError reports a cache or output write failure, carrying the offending path (§7).
func IOError(path string, cause error) *StandardError {
	msg := "I/O failure"
	if cause != nil {
		msg = cause.Error()
	}

	return New(CategoryIO, "IO_FAILURE", msg, position.Span{}, map[string]interface{}{"path": path})
}
