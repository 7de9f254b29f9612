// Package kerr defines the two tagged error sums that flow out of the
// core: CompileError (lexer/parser/build/optimizer/config failures) and
// TransformError (evaluator failures). Both carry an optional source span
// so a host can render a diagnostic, per spec.md §7.
//
// The types live in their own leaf package, not in internal/evaluator or
// the root kuiper package, because both internal/builtin and
// internal/tree need to construct them without importing anything that
// would create a cycle (evaluator depends on builtin; builtin must not
// depend back on evaluator). The root kuiper package re-exports these
// under the names spec.md's External Interfaces section documents.
package kerr

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/token"
)

// CompileKind classifies a CompileError.
type CompileKind int

const (
	Lex CompileKind = iota
	Parse
	Build
	Optimizer
	Config
)

func (k CompileKind) String() string {
	switch k {
	case Lex:
		return "Lex"
	case Parse:
		return "Parse"
	case Build:
		return "Build"
	case Optimizer:
		return "Optimizer"
	case Config:
		return "Config"
	default:
		return "Unknown"
	}
}

// CompileError is returned by compile(); see spec.md §6.
type CompileError struct {
	Kind    CompileKind
	Span    *token.Span
	Message string
}

func (e *CompileError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s error at %d..%d: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// TransformKind classifies a TransformError.
type TransformKind int

const (
	SourceMissing TransformKind = iota
	IncorrectType
	ConversionFailed
	InvalidOperation
	OperationLimitExceeded
)

func (k TransformKind) String() string {
	switch k {
	case SourceMissing:
		return "SourceMissing"
	case IncorrectType:
		return "IncorrectType"
	case ConversionFailed:
		return "ConversionFailed"
	case InvalidOperation:
		return "InvalidOperation"
	case OperationLimitExceeded:
		return "OperationLimitExceeded"
	default:
		return "Unknown"
	}
}

// TransformError is returned by run(); see spec.md §6. OperationLimitExceeded
// never carries a span, matching spec.md's explicit call-out.
type TransformError struct {
	Kind    TransformKind
	Span    *token.Span
	Message string
}

func (e *TransformError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s error at %d..%d: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Spanned builds a *token.Span pointer inline, since composite literals
// can't take the address of a field.
func Spanned(s token.Span) *token.Span { return &s }
