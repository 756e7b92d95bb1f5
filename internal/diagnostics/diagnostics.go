package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/tlcheck/internal/token"
)

// ErrorCode is the machine-readable identifier attached to a diagnostic.
type ErrorCode string

// Declaration errors
const (
	ErrDuplicateDeclaration ErrorCode = "A001"
	ErrUndefinedSymbol      ErrorCode = "A002"
	ErrDuplicateExport      ErrorCode = "A003"
	ErrReadonlyAssignment   ErrorCode = "A004"
	ErrInvalidReturn        ErrorCode = "A005"
	ErrImplicitUnknown      ErrorCode = "A006"
	ErrFeatureDisabled      ErrorCode = "A007"
)

// Type errors
const (
	ErrTypeMismatch            ErrorCode = "T001"
	ErrUnknownMember           ErrorCode = "T002"
	ErrNonExhaustiveMatch      ErrorCode = "T003"
	ErrTypeConstraintViolation ErrorCode = "T004"
	ErrRecursiveTypeAlias      ErrorCode = "T005"
	ErrArity                   ErrorCode = "T006"
)

// Class and access errors
const (
	ErrPrivateMemberAccess   ErrorCode = "C001"
	ErrProtectedMemberAccess ErrorCode = "C002"
	ErrInvalidOverride       ErrorCode = "C003"
	ErrExtendingFinalClass   ErrorCode = "C004"
	ErrOverridingFinalMethod ErrorCode = "C005"
	ErrAbstractMember        ErrorCode = "C006"
	ErrCircularInheritance   ErrorCode = "C007"
)

// Module errors
const (
	ErrCircularImport ErrorCode = "M001"
)

// ErrInternal marks a checker failure contained at statement granularity.
const ErrInternal ErrorCode = "I000"

var codeNames = map[ErrorCode]string{
	ErrDuplicateDeclaration:    "DuplicateDeclaration",
	ErrUndefinedSymbol:         "UndefinedSymbol",
	ErrDuplicateExport:         "DuplicateExport",
	ErrReadonlyAssignment:      "ReadonlyAssignment",
	ErrInvalidReturn:           "InvalidReturn",
	ErrImplicitUnknown:         "ImplicitUnknown",
	ErrFeatureDisabled:         "FeatureDisabled",
	ErrTypeMismatch:            "TypeMismatch",
	ErrUnknownMember:           "UnknownMember",
	ErrNonExhaustiveMatch:      "NonExhaustiveMatch",
	ErrTypeConstraintViolation: "TypeConstraintViolation",
	ErrRecursiveTypeAlias:      "RecursiveTypeAlias",
	ErrArity:                   "Arity",
	ErrPrivateMemberAccess:     "PrivateMemberAccess",
	ErrProtectedMemberAccess:   "ProtectedMemberAccess",
	ErrInvalidOverride:         "InvalidOverride",
	ErrExtendingFinalClass:     "ExtendingFinalClass",
	ErrOverridingFinalMethod:   "OverridingFinalMethod",
	ErrAbstractMember:          "AbstractMember",
	ErrCircularInheritance:     "CircularInheritance",
	ErrCircularImport:          "CircularImport",
	ErrInternal:                "Internal",
}

// Name returns the taxonomy name of the code (e.g. "TypeMismatch").
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "error"
	}
}

// DiagnosticError is a single reported problem.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Span     token.Span
	File     string
	Message  string
}

// NewError creates an error-severity diagnostic. Extra args are joined onto the message.
func NewError(code ErrorCode, span token.Span, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:     code,
		Severity: SeverityError,
		Span:     span,
		File:     span.File,
		Message:  joinArgs(args),
	}
}

// NewWarning creates a warning-severity diagnostic.
func NewWarning(code ErrorCode, span token.Span, args ...interface{}) *DiagnosticError {
	d := NewError(code, span, args...)
	d.Severity = SeverityWarning
	return d
}

func joinArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Span.Start.Line, e.Span.Start.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s [%s %s]: %s", loc, e.Severity, e.Code, e.Code.Name(), e.Message)
}

func (e *DiagnosticError) IsError() bool { return e.Severity == SeverityError }

// List collects diagnostics in report order, dropping exact duplicates.
type List struct {
	items []*DiagnosticError
	seen  map[string]bool
}

func (l *List) key(d *DiagnosticError) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", d.File, d.Span.Start.Line, d.Span.Start.Column, d.Code, d.Message)
}

// Add appends d unless an identical diagnostic was already recorded.
func (l *List) Add(d *DiagnosticError) {
	if d == nil {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	k := l.key(d)
	if l.seen[k] {
		return
	}
	l.seen[k] = true
	l.items = append(l.items, d)
}

func (l *List) Len() int { return len(l.items) }

// Sorted returns the diagnostics ordered by position; equal positions keep report order.
func (l *List) Sorted() []*DiagnosticError {
	out := make([]*DiagnosticError, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Span.Start.Before(b.Span.Start)
	})
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func (l *List) Count(s Severity) int {
	n := 0
	for _, d := range l.items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// WithCode filters the recorded diagnostics by code.
func (l *List) WithCode(code ErrorCode) []*DiagnosticError {
	var out []*DiagnosticError
	for _, d := range l.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
