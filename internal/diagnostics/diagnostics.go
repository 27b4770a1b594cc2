// Package diagnostics implements spec.md §7's error taxonomy: programmer
// errors (fatal, invalid IR shapes), user type errors (non-fatal
// diagnostics the host may downgrade to a warning), invalid-literal errors,
// configuration errors, and internal invariant violations. Grounded on the
// teacher's internal/errors package: numeric code ranges
// (internal/errors/codes.go), an accumulating Reporter
// (internal/errors/reporter.go), and chained messages
// (internal/errors/semantic_errors.go).
package diagnostics

import (
	"fmt"
	"strings"
)

// Code ranges, following the teacher's ExxXX numeric-range convention.
const (
	// E1xxx: type system / cast diagnostics (non-fatal by default).
	CodeTypeMismatch    = "E1001"
	CodeCastOverflow    = "E1002"
	CodeInvalidLiteral  = "E1003"
	// E2xxx: programmer errors in IR shape (fatal).
	CodeInvalidOperand  = "E2001"
	CodeInvariant       = "E2002"
	// E3xxx: configuration errors (fatal at expression-construction time).
	CodeUnknownCastType = "E3001"
	CodeBadConfig       = "E3002"
)

// Severity distinguishes diagnostics the host may continue past from ones
// that must abort compilation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is a single reported problem: a code, a human message, and an
// optional chain of path segments explaining how the checker got there
// (mirrors errors.SemanticError's suggestion-chain shape).
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Chain    []string
}

func (d Diagnostic) Error() string {
	if len(d.Chain) == 0 {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] %s (%s)", d.Code, d.Message, strings.Join(d.Chain, " -> "))
}

// TypeDiagnostic reports a write/read type incompatibility, or a literal
// that could not be cast. Non-fatal: resolve() continues with a
// best-effort lowering, per spec.md §7.
type TypeDiagnostic struct {
	Diagnostic
}

func NewTypeMismatch(writeType, readType fmt.Stringer, chain []string) *TypeDiagnostic {
	return &TypeDiagnostic{Diagnostic{
		Code:     CodeTypeMismatch,
		Severity: SeverityError,
		Message:  fmt.Sprintf("write type %s is not compatible with read type %s", writeType, readType),
		Chain:    chain,
	}}
}

// LiteralConversionError reports that a host value has no NBT equivalent.
type LiteralConversionError struct{ Diagnostic }

func NewLiteralConversionError(detail string) *LiteralConversionError {
	return &LiteralConversionError{Diagnostic{
		Code:     CodeInvalidLiteral,
		Severity: SeverityError,
		Message:  detail,
	}}
}

// ConfigError reports a problem in expression configuration or cast-type
// resolution, discovered at expression-construction time, not at resolve
// time.
type ConfigError struct{ Diagnostic }

func NewConfigError(detail string) *ConfigError {
	return &ConfigError{Diagnostic{
		Code:     CodeBadConfig,
		Severity: SeverityError,
		Message:  detail,
	}}
}

// ProgrammerError is a fatal, non-recoverable defect: an invalid operand
// combination reached the serializer, or an internal invariant was
// violated. The core panics with this type rather than returning an error,
// matching spec.md §7 ("fatal ... never silently dropped") and the
// teacher's practice of panicking on "this should never happen" IR shapes.
type ProgrammerError struct{ Diagnostic }

func (e *ProgrammerError) Error() string { return e.Diagnostic.Error() }

// NewInvalidOperand builds a ProgrammerError naming the offending operation
// and operand kinds (spec.md §4.5: "Invalid operand combinations raise a
// structured error naming the operation and the operand kinds").
func NewInvalidOperand(operation string, operandKinds ...string) *ProgrammerError {
	return &ProgrammerError{Diagnostic{
		Code:     CodeInvalidOperand,
		Severity: SeverityError,
		Message:  fmt.Sprintf("invalid operand combination for %s: %s", operation, strings.Join(operandKinds, ", ")),
	}}
}

// NewInvariantViolation builds a ProgrammerError for an unexpected internal
// IR shape (e.g. in the serializer).
func NewInvariantViolation(where, detail string) *ProgrammerError {
	return &ProgrammerError{Diagnostic{
		Code:     CodeInvariant,
		Severity: SeverityError,
		Message:  fmt.Sprintf("invariant violated in %s: %s", where, detail),
	}}
}

// Panic raises a ProgrammerError as a Go panic, for invariant violations
// that must stop compilation immediately rather than bubble as an error
// return.
func Panic(err *ProgrammerError) {
	panic(err)
}

// Reporter accumulates non-fatal diagnostics across a compilation,
// matching errors.Reporter's accumulate-then-format shape.
type Reporter struct {
	diagnostics []Diagnostic
}

func NewReporter() *Reporter { return &Reporter{} }

func (r *Reporter) Report(d Diagnostic) { r.diagnostics = append(r.diagnostics, d) }

func (r *Reporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Reporter) All() []Diagnostic { return r.diagnostics }

func (r *Reporter) Reset() { r.diagnostics = nil }
