package parser

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/token"
)

// ParseError is a single syntax error with its source span.
type ParseError struct {
	Message string
	Span    token.Span
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// ParseErrors accumulates one or more ParseError values, grounded on the
// teacher's pkg/parser/errors.go ParseErrors accumulator.
type ParseErrors struct {
	errors []ParseError
}

func (p *ParseErrors) Add(tok token.Token, message string) {
	p.errors = append(p.errors, ParseError{
		Message: message,
		Span:    tok.Span,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func (p *ParseErrors) Addf(tok token.Token, format string, args ...interface{}) {
	p.Add(tok, fmt.Sprintf(format, args...))
}

func (p *ParseErrors) HasErrors() bool { return len(p.errors) > 0 }
func (p *ParseErrors) Count() int      { return len(p.errors) }
func (p *ParseErrors) First() ParseError {
	if len(p.errors) == 0 {
		return ParseError{}
	}

	return p.errors[0]
}

func (p *ParseErrors) Errors() []ParseError { return p.errors }

func (p *ParseErrors) Error() string {
	if len(p.errors) == 0 {
		return ""
	}

	return p.errors[0].Error()
}
