package lexer

import (
	"testing"

	"github.com/kuiper-lang/kuiper/internal/token"
)

func TestNextTokenBasics(t *testing.T) {
	input := `+ - * / % == != < <= > >= && || ! ... => . , ; : ( ) [ ] { }`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.STAR, "*"},
		{token.SLASH, "/"},
		{token.PERCENT, "%"},
		{token.EQ, "=="},
		{token.NEQ, "!="},
		{token.LT, "<"},
		{token.LTE, "<="},
		{token.GT, ">"},
		{token.GTE, ">="},
		{token.AND, "&&"},
		{token.OR, "||"},
		{token.BANG, "!"},
		{token.SPREAD, "..."},
		{token.ARROW, "=>"},
		{token.DOT, "."},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.COLON, ":"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextTokenLiteralsAndKeywords(t *testing.T) {
	input := `input.id 42 3.14 1e10 2.5e-3 "hello\nworld" true false null if else is int bool float string array object number`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENT, "input"},
		{token.DOT, "."},
		{token.IDENT, "id"},
		{token.INT, "42"},
		{token.FLOAT, "3.14"},
		{token.FLOAT, "1e10"},
		{token.FLOAT, "2.5e-3"},
		{token.STRING, "hello\nworld"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.NULL, "null"},
		{token.IF, "if"},
		{token.ELSE, "else"},
		{token.IS, "is"},
		{token.TYPE_INT, "int"},
		{token.TYPE_BOOL, "bool"},
		{token.TYPE_FLOAT, "float"},
		{token.TYPE_STRING, "string"},
		{token.TYPE_ARRAY, "array"},
		{token.TYPE_OBJECT, "object"},
		{token.TYPE_NUMBER, "number"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestArrowFromParenFusion(t *testing.T) {
	input := `(a) => a + 1`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.ARROW_FROM_PAREN, ")=>"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, tt.expectedType, tok.Type)
		}
	}
}

func TestParenNotFused(t *testing.T) {
	input := `(1 + 2) * 3`

	tests := []token.Type{
		token.LPAREN, token.INT, token.PLUS, token.INT, token.RPAREN,
		token.STAR, token.INT, token.EOF,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, want, tok.Type)
		}
	}
}

func TestMacroDefineToken(t *testing.T) {
	input := `#double := x => x * 2;`

	l := New(input)
	tok := l.NextToken()
	if tok.Type != token.MACRO_DEFINE {
		t.Fatalf("expected MACRO_DEFINE, got=%s", tok.Type)
	}
	if tok.Literal != "double" {
		t.Fatalf("expected literal %q, got=%q", "double", tok.Literal)
	}
}

func TestSpansAreByteOffsets(t *testing.T) {
	input := `12 + ab`
	l := New(input)

	tok := l.NextToken()
	if tok.Span.Start != 0 || tok.Span.End != 2 {
		t.Fatalf("expected span 0..2, got %d..%d", tok.Span.Start, tok.Span.End)
	}

	tok = l.NextToken() // "+"
	if tok.Span.Start != 3 || tok.Span.End != 4 {
		t.Fatalf("expected span 3..4, got %d..%d", tok.Span.Start, tok.Span.End)
	}

	tok = l.NextToken() // "ab"
	if tok.Span.Start != 5 || tok.Span.End != 7 {
		t.Fatalf("expected span 5..7, got %d..%d", tok.Span.Start, tok.Span.End)
	}
}

func TestInvalidEscape(t *testing.T) {
	l := New(`"bad\qescape"`)
	_, err := l.NextTokenE()
	if err == nil {
		t.Fatalf("expected error for invalid escape sequence")
	}
	lerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if lerr.Kind != "InvalidEscapeChar" {
		t.Fatalf("expected InvalidEscapeChar, got %s", lerr.Kind)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"no closing quote`)
	_, err := l.NextTokenE()
	if err == nil {
		t.Fatalf("expected error for unterminated string")
	}
}

func TestCommentsSkipped(t *testing.T) {
	input := "1 # a line comment\n+ /* a block\ncomment */ 2"

	tests := []token.Type{token.INT, token.PLUS, token.INT, token.EOF}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, want, tok.Type)
		}
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New(`@`)
	_, err := l.NextTokenE()
	if err == nil {
		t.Fatalf("expected error for illegal character")
	}
}
