// Package lexer implements C1: the Kuiper lexer.
//
// It is a longest-match, single-pass scanner that converts source text into
// a stream of token.Token values carrying both line/column and byte-span
// position information. Whitespace and comments are skipped entirely.
//
// One architectural detail is load-bearing: the two-token sequence ")"
// followed by "=>" is fused into a single ArrowFromParen token, because the
// grammar is LR(1) only under that fusion (a bare ")" starting an infix
// position is otherwise ambiguous with a lambda parameter list closing). The
// lexer keeps a single-token lookahead buffer to implement the fusion.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kuiper-lang/kuiper/internal/token"
)

// Error is a lexer-level error: UnknownToken, ParseInt, ParseFloat, or
// InvalidEscapeChar, each carrying the offending span.
type Error struct {
	Kind string
	Span token.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d..%d: %s", e.Kind, e.Span.Start, e.Span.End, e.Msg)
}

// Lexer is a single-pass scanner over a source string.
type Lexer struct {
	input        string
	position     int  // current byte position
	readPosition int  // next byte position to read
	ch           byte // current byte, 0 at EOF
	line         int
	column       int

	// buffered holds a token produced eagerly (during the ")"+"=>" fusion
	// lookahead) to be returned on the next call to NextToken.
	buffered *token.Token
}

// New creates a lexer over input, primed to scan the first character.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()

	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}

	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// skipWhitespaceAndComments consumes "# line comment" (a '#' not directly
// followed by a letter, which would start a macro definition instead) and
// "/* block comment */" forms, repeating until no more whitespace or
// comments remain.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		l.skipWhitespace()
		switch {
		case l.ch == '#' && !isLetter(l.peekChar()):
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()

					break
				}
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}

	return l.input[start:l.position]
}

// readNumber reads an integer or float literal using maximal munch; a "."
// only starts a fractional part when followed by a digit (otherwise it is
// the field-access operator and is left for the next token).
func (l *Lexer) readNumber() (string, token.Type) {
	start := l.position
	typ := token.INT

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') &&
		(isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && l.readPosition+1 < len(l.input) && isDigit(l.input[l.readPosition+1]))) {
		typ = token.FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.position], typ
}

// readString reads a double-quoted string literal, processing the escape
// sequences \n \t \r \\ \" \' and rejecting any other escape.
func (l *Lexer) readString() (string, error) {
	start := l.position + 1
	var b strings.Builder
	escaped := false

	for {
		l.readChar()
		if l.ch == 0 {
			return "", &Error{
				Kind: "UnterminatedString",
				Span: token.Span{Start: start - 1, End: l.position},
				Msg:  "unterminated string literal",
			}
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\\' {
			escapeStart := l.position
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case 0:
				return "", &Error{
					Kind: "UnterminatedString",
					Span: token.Span{Start: start - 1, End: l.position},
					Msg:  "unterminated string literal",
				}
			default:
				return "", &Error{
					Kind: "InvalidEscapeChar",
					Span: token.Span{Start: escapeStart, End: l.position + 1},
					Msg:  fmt.Sprintf("invalid escape character %q", l.ch),
				}
			}
			escaped = true

			continue
		}
		b.WriteByte(l.ch)
	}

	if !escaped {
		return l.input[start:l.position], nil
	}

	return b.String(), nil
}

func simple(typ token.Type, lit string, line, col, start, end int) token.Token {
	return token.Token{
		Type: typ, Literal: lit, Line: line, Column: col,
		Span: token.Span{Start: start, End: end},
	}
}

// NextToken returns the next token from the input, or an *Error wrapped in
// the Type/Literal ILLEGAL slot; callers that need the structured error
// should use NextTokenE.
func (l *Lexer) NextToken() token.Token {
	tok, err := l.NextTokenE()
	if err != nil {
		if lerr, ok := err.(*Error); ok {
			return token.Token{Type: token.ILLEGAL, Literal: lerr.Msg, Span: lerr.Span}
		}
	}

	return tok
}

// NextTokenE is NextToken with explicit structured-error reporting.
func (l *Lexer) NextTokenE() (token.Token, error) {
	if l.buffered != nil {
		tok := *l.buffered
		l.buffered = nil

		return tok, nil
	}

	l.skipWhitespaceAndComments()

	line, col, start := l.line, l.column, l.position

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok := simple(token.EQ, "==", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			tok := simple(token.ARROW, "=>", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: l.position + 1}, Msg: "unexpected '='"}
		l.readChar()

		return token.Token{}, err

	case '+':
		tok := simple(token.PLUS, "+", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '-':
		tok := simple(token.MINUS, "-", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '*':
		tok := simple(token.STAR, "*", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '/':
		tok := simple(token.SLASH, "/", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '%':
		tok := simple(token.PERCENT, "%", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok := simple(token.NEQ, "!=", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		tok := simple(token.BANG, "!", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok := simple(token.LTE, "<=", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		tok := simple(token.LT, "<", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok := simple(token.GTE, ">=", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		tok := simple(token.GT, ">", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok := simple(token.AND, "&&", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: start + 1}, Msg: "unexpected '&'"}
		l.readChar()

		return token.Token{}, err

	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok := simple(token.OR, "||", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: start + 1}, Msg: "unexpected '|'"}
		l.readChar()

		return token.Token{}, err

	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '.' {
				l.readChar()
				tok := simple(token.SPREAD, "...", line, col, start, l.position+1)
				l.readChar()

				return tok, nil
			}
			err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: l.position + 1}, Msg: "unexpected '..'"}
			l.readChar()

			return token.Token{}, err
		}
		tok := simple(token.DOT, ".", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case ';':
		tok := simple(token.SEMICOLON, ";", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			tok := simple(token.WALRUS, ":=", line, col, start, l.position+1)
			l.readChar()

			return tok, nil
		}
		tok := simple(token.COLON, ":", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case ',':
		tok := simple(token.COMMA, ",", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '(':
		tok := simple(token.LPAREN, "(", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case ')':
		// Look ahead: if the next non-trivial token is "=>", fuse them into
		// a single ArrowFromParen token (see package doc).
		closeSpan := token.Span{Start: start, End: l.position + 1}
		l.readChar()
		l.skipWhitespaceAndComments()
		if l.ch == '=' && l.peekChar() == '>' {
			l.readChar()
			tok := token.Token{
				Type: token.ARROW_FROM_PAREN, Literal: ")=>",
				Line: line, Column: col,
				Span: token.Span{Start: closeSpan.Start, End: l.position + 1},
			}
			l.readChar()

			return tok, nil
		}
		// Not fused: buffer whatever real token comes next and return ")" now.
		rparen := token.Token{Type: token.RPAREN, Literal: ")", Line: line, Column: col, Span: closeSpan}
		next, err := l.NextTokenE()
		if err != nil {
			return token.Token{}, err
		}
		l.buffered = &next

		return rparen, nil

	case '[':
		tok := simple(token.LBRACKET, "[", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case ']':
		tok := simple(token.RBRACKET, "]", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '{':
		tok := simple(token.LBRACE, "{", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '}':
		tok := simple(token.RBRACE, "}", line, col, start, l.position+1)
		l.readChar()

		return tok, nil

	case '"':
		str, err := l.readString()
		if err != nil {
			return token.Token{}, err
		}
		tok := token.Token{Type: token.STRING, Literal: str, Line: line, Column: col, Span: token.Span{Start: start, End: l.position + 1}}
		l.readChar()

		return tok, nil

	case '#':
		// Macro definition marker: "#name" (the parser expects a WALRUS
		// next). The identifier following '#' is the macro's name;
		// skipWhitespaceAndComments already consumed '#' + rest-of-line comments, so
		// reaching here means '#' is directly followed by a letter, i.e.
		// this is a macro header, not a comment.
		l.readChar()
		if !isLetter(l.ch) {
			err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: l.position}, Msg: "expected macro name after '#'"}

			return token.Token{}, err
		}
		name := l.readIdentifier()
		tok := token.Token{Type: token.MACRO_DEFINE, Literal: name, Line: line, Column: col, Span: token.Span{Start: start, End: l.position}}

		return tok, nil

	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col, Span: token.Span{Start: start, End: start}}, nil

	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()

			return token.Token{Type: token.LookupIdent(lit), Literal: lit, Line: line, Column: col, Span: token.Span{Start: start, End: l.position}}, nil
		}
		if isDigit(l.ch) {
			lit, typ := l.readNumber()
			tok := token.Token{Type: typ, Literal: lit, Line: line, Column: col, Span: token.Span{Start: start, End: l.position}}
			if typ == token.INT {
				if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
					if _, uerr := strconv.ParseUint(lit, 10, 64); uerr != nil {
						return token.Token{}, &Error{Kind: "ParseInt", Span: tok.Span, Msg: fmt.Sprintf("invalid integer literal %q", lit)}
					}
				}
			} else if _, err := strconv.ParseFloat(lit, 64); err != nil {
				return token.Token{}, &Error{Kind: "ParseFloat", Span: tok.Span, Msg: fmt.Sprintf("invalid float literal %q", lit)}
			}

			return tok, nil
		}
		err := &Error{Kind: "UnknownToken", Span: token.Span{Start: start, End: start + 1}, Msg: fmt.Sprintf("unexpected character %q", l.ch)}
		l.readChar()

		return token.Token{}, err
	}
}
