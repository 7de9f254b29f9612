// Package parser implements C2: a Pratt parser turning a token stream into
// an internal/ast.Program.
//
// The core loop, the cur/peek two-token lookahead window, and the
// prefix/infix dispatch tables follow the teacher's pkg/parser/parser.go
// shape closely; the grammar itself (operators, literals, control flow,
// macros) is Kuiper's own.
package parser

import (
	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/lexer"
	"github.com/kuiper-lang/kuiper/internal/token"
)

// Parser parses a single token stream into a Program.
type Parser struct {
	l      *lexer.Lexer
	cur    token.Token
	peek   token.Token
	errors *ParseErrors
}

// New creates a Parser over l, priming the two-token lookahead window.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: &ParseErrors{}}
	p.advance()
	p.advance()

	return p
}

// Errors returns the accumulated parse errors, if any.
func (p *Parser) Errors() *ParseErrors { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.advance()

		return true
	}
	p.errors.Addf(p.peek, "expected next token to be %s, got %s instead", t, p.peek.Type)

	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedenceMap[p.peek.Type]; ok {
		return prec
	}

	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedenceMap[p.cur.Type]; ok {
		return prec
	}

	return precedenceLowest
}

// Parse parses a complete program: zero or more macro definitions followed
// by the final expression.
func Parse(source string) (*ast.Program, *ParseErrors) {
	p := New(lexer.New(source))
	prog := p.parseProgram()

	return prog, p.errors
}

func (p *Parser) parseProgram() *ast.Program {
	start := p.cur.Span.Start
	var macros []*ast.MacroDef

	for p.curIs(token.MACRO_DEFINE) {
		macros = append(macros, p.parseMacroDef())
	}

	body := p.parseExpression(precedenceLowest)
	if body == nil {
		return &ast.Program{NodePos: ast.WithSpan(start, p.cur.Span.End), Macros: macros}
	}

	if !p.peekIs(token.EOF) {
		p.errors.Addf(p.peek, "unexpected trailing token %s after program body", p.peek.Type)
	}

	return &ast.Program{
		NodePos: ast.WithSpan(start, body.Span().End),
		Macros:  macros,
		Body:    body,
	}
}

// parseMacroDef parses "#name := body;". On entry p.cur is the
// MACRO_DEFINE token; on return p.cur is the first token after the
// terminating ';'.
func (p *Parser) parseMacroDef() *ast.MacroDef {
	start := p.cur.Span.Start
	name := p.cur.Literal

	if !p.expectPeek(token.WALRUS) {
		return &ast.MacroDef{Name: name}
	}
	p.advance() // move onto the first token of the macro body

	body := p.parseExpression(precedenceLowest)

	if !p.expectPeek(token.SEMICOLON) {
		return &ast.MacroDef{Name: name, Body: body}
	}
	end := p.cur.Span.End
	p.advance() // move past ';', ready for the next definition or final body

	return &ast.MacroDef{NodePos: ast.WithSpan(start, end), Name: name, Body: body}
}

// parsePrefixExpression is the nud dispatch: it parses whatever begins at
// p.cur with no left-hand context.
func (p *Parser) parsePrefixExpression() ast.Expr {
	switch p.cur.Type {
	case token.INT:
		return p.parseInt()
	case token.FLOAT:
		return p.parseFloat()
	case token.STRING:
		return p.parseStringLit()
	case token.TRUE, token.FALSE:
		return p.parseBool()
	case token.NULL:
		return p.parseNull()
	case token.IDENT:
		return p.parseIdentOrLambda()
	case token.MINUS, token.BANG:
		return p.parseUnary()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseArray()
	case token.LBRACE:
		return p.parseObject()
	case token.IF:
		return p.parseIf()
	default:
		p.errors.Addf(p.cur, "unexpected token %s", p.cur.Type)

		return nil
	}
}

var binaryOpFromToken = map[token.Type]ast.BinaryOp{
	token.PLUS: ast.OpAdd, token.MINUS: ast.OpSub, token.STAR: ast.OpMul,
	token.SLASH: ast.OpDiv, token.PERCENT: ast.OpMod,
	token.EQ: ast.OpEq, token.NEQ: ast.OpNeq,
	token.LT: ast.OpLt, token.LTE: ast.OpLte, token.GT: ast.OpGt, token.GTE: ast.OpGte,
	token.AND: ast.OpAnd, token.OR: ast.OpOr,
}

// parseInfixExpression is the led dispatch for ordinary binary operators.
func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	opTok := p.cur
	op, ok := binaryOpFromToken[opTok.Type]
	if !ok {
		p.errors.Addf(opTok, "unexpected operator %s", opTok.Type)

		return left
	}
	precedence := p.curPrecedence()
	p.advance()

	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return &ast.BinaryExpr{
		NodePos: ast.WithSpan(left.Span().Start, right.Span().End),
		Left:    left, Op: op, Right: right,
	}
}

// parseExpression is the Pratt core: parse a prefix expression, then
// repeatedly fold in infix/postfix operators while the next operator binds
// tighter than precedence.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	left := p.parsePrefixExpression()
	if left == nil {
		return nil
	}

	for !p.peekIs(token.SEMICOLON) && !p.peekIs(token.EOF) && precedence < p.peekPrecedence() {
		switch p.peek.Type {
		case token.LPAREN:
			p.advance()
			left = p.parseCall(left)
		case token.DOT:
			p.advance()
			left = p.parseSelectorFrom(left)
		case token.LBRACKET:
			p.advance()
			left = p.parseIndexFrom(left)
		case token.IS:
			p.advance()
			left = p.parseIs(left)
		default:
			p.advance()
			left = p.parseInfixExpression(left)
		}
	}

	return left
}
