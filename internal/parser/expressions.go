package parser

import (
	"strconv"

	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/token"
)

func (p *Parser) parseInt() ast.Expr {
	tok := p.cur
	if v, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
		return &ast.ConstExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Kind: ast.ConstInt, Int: v}
	}

	// Doesn't fit int64; fall back to uint64 (e.g. a u64 snowflake ID
	// literal above math.MaxInt64 but still below 2^64), matching how
	// FromJSON classifies an out-of-int64-range JSON integer as Uint.
	if u, err := strconv.ParseUint(tok.Literal, 10, 64); err == nil {
		return &ast.ConstExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Kind: ast.ConstUint, Uint: u}
	}

	p.errors.Addf(tok, "could not parse %q as integer", tok.Literal)

	return nil
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errors.Addf(tok, "could not parse %q as float", tok.Literal)

		return nil
	}

	return &ast.ConstExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Kind: ast.ConstFloat, Float: v}
}

func (p *Parser) parseStringLit() ast.Expr {
	tok := p.cur

	return &ast.ConstExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Kind: ast.ConstString, Str: tok.Literal}
}

func (p *Parser) parseBool() ast.Expr {
	tok := p.cur

	return &ast.ConstExpr{
		NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End),
		Kind:    ast.ConstBool,
		Bool:    tok.Type == token.TRUE,
	}
}

func (p *Parser) parseNull() ast.Expr {
	tok := p.cur

	return &ast.ConstExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Kind: ast.ConstNull}
}

// parseIdentOrLambda parses a bare identifier, or a single-parameter lambda
// "name => body" when the identifier is immediately followed by "=>".
func (p *Parser) parseIdentOrLambda() ast.Expr {
	tok := p.cur

	if p.peekIs(token.ARROW) {
		param := tok.Literal
		p.advance() // cur = ARROW
		p.advance() // cur = first body token

		body := p.parseExpression(precedenceLowest)
		if body == nil {
			return nil
		}

		return &ast.LambdaExpr{
			NodePos: ast.WithSpan(tok.Span.Start, body.Span().End),
			Params:  []string{param},
			Body:    body,
		}
	}

	return &ast.IdentExpr{NodePos: ast.WithSpan(tok.Span.Start, tok.Span.End), Name: tok.Literal}
}

func (p *Parser) parseUnary() ast.Expr {
	opTok := p.cur
	op := ast.OpNeg
	if opTok.Type == token.BANG {
		op = ast.OpNot
	}

	p.advance()

	operand := p.parseExpression(precedencePrefix)
	if operand == nil {
		return nil
	}

	return &ast.UnaryExpr{
		NodePos: ast.WithSpan(opTok.Span.Start, operand.Span().End),
		Op:      op, Expr: operand,
	}
}

// parseParenExpr handles everything that can follow "(": a grouped
// expression, or a lambda parameter list terminated by the lexer's fused
// ")=>" token.
func (p *Parser) parseParenExpr() ast.Expr {
	start := p.cur.Span.Start

	if p.peekIs(token.ARROW_FROM_PAREN) {
		p.advance() // cur = ARROW_FROM_PAREN
		p.advance() // cur = first body token

		body := p.parseExpression(precedenceLowest)
		if body == nil {
			return nil
		}

		return &ast.LambdaExpr{NodePos: ast.WithSpan(start, body.Span().End), Body: body}
	}

	p.advance() // move onto the first token inside the parens

	if p.curIs(token.IDENT) && (p.peekIs(token.COMMA) || p.peekIs(token.ARROW_FROM_PAREN)) {
		return p.finishParamListLambda(start)
	}

	inner := p.parseExpression(precedenceLowest)
	if inner == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return inner
	}

	return inner
}

func (p *Parser) finishParamListLambda(start int) ast.Expr {
	params := []string{p.cur.Literal}

	for p.peekIs(token.COMMA) {
		p.advance() // cur = COMMA
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, p.cur.Literal)
	}

	if !p.expectPeek(token.ARROW_FROM_PAREN) {
		return nil
	}
	p.advance() // cur = first body token

	body := p.parseExpression(precedenceLowest)
	if body == nil {
		return nil
	}

	return &ast.LambdaExpr{NodePos: ast.WithSpan(start, body.Span().End), Params: params, Body: body}
}

// parseCallArgs parses a comma-separated, possibly empty argument list.
// p.cur must be LPAREN on entry; on return p.cur is RPAREN.
func (p *Parser) parseCallArgs() []ast.Expr {
	var args []ast.Expr

	if p.peekIs(token.RPAREN) {
		p.advance()

		return args
	}

	p.advance() // move onto the first argument's token
	args = append(args, p.parseExpression(precedenceLowest))

	for p.peekIs(token.COMMA) {
		p.advance() // cur = COMMA
		p.advance() // move onto the next argument's token
		args = append(args, p.parseExpression(precedenceLowest))
	}

	p.expectPeek(token.RPAREN)

	return args
}

// parseCall handles "callee(args...)" where callee is an arbitrary
// already-parsed expression (an identifier, a parenthesized lambda, etc).
func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	args := p.parseCallArgs()

	return &ast.CallExpr{NodePos: ast.WithSpan(left.Span().Start, p.cur.Span.End), Callee: left, Args: args}
}

// parseSelectorFrom handles "left.name", folding consecutive steps into a
// single SelectorExpr, and desugars "left.name(args...)" method-call syntax
// into "name(left, args...)".
func (p *Parser) parseSelectorFrom(left ast.Expr) ast.Expr {
	if !p.expectPeek(token.IDENT) {
		return left
	}
	nameTok := p.cur

	if p.peekIs(token.LPAREN) {
		p.advance() // cur = LPAREN
		args := p.parseCallArgs()
		callee := &ast.IdentExpr{NodePos: ast.WithSpan(nameTok.Span.Start, nameTok.Span.End), Name: nameTok.Literal}
		allArgs := append([]ast.Expr{left}, args...)

		return &ast.CallExpr{NodePos: ast.WithSpan(left.Span().Start, p.cur.Span.End), Callee: callee, Args: allArgs}
	}

	step := ast.SelectorStep{Kind: ast.StepField, Field: nameTok.Literal}
	if sel, ok := left.(*ast.SelectorExpr); ok {
		sel.Steps = append(sel.Steps, step)
		sel.NodePos = ast.WithSpan(sel.Span().Start, nameTok.Span.End)

		return sel
	}

	return &ast.SelectorExpr{
		NodePos: ast.WithSpan(left.Span().Start, nameTok.Span.End),
		Base:    left, Steps: []ast.SelectorStep{step},
	}
}

// parseIndexFrom handles "left[index]".
func (p *Parser) parseIndexFrom(left ast.Expr) ast.Expr {
	p.advance() // move onto the index expression's first token

	idx := p.parseExpression(precedenceLowest)
	if idx == nil {
		return left
	}

	if !p.expectPeek(token.RBRACKET) {
		return left
	}
	end := p.cur.Span.End

	step := ast.SelectorStep{Kind: ast.StepIndex, Index: idx}
	if sel, ok := left.(*ast.SelectorExpr); ok {
		sel.Steps = append(sel.Steps, step)
		sel.NodePos = ast.WithSpan(sel.Span().Start, end)

		return sel
	}

	return &ast.SelectorExpr{NodePos: ast.WithSpan(left.Span().Start, end), Base: left, Steps: []ast.SelectorStep{step}}
}

var typeLiteralFromToken = map[token.Type]ast.TypeLiteral{
	token.NULL:        ast.TypeLitNull,
	token.TYPE_BOOL:   ast.TypeLitBool,
	token.TYPE_INT:    ast.TypeLitInt,
	token.TYPE_FLOAT:  ast.TypeLitFloat,
	token.TYPE_NUMBER: ast.TypeLitNumber,
	token.TYPE_STRING: ast.TypeLitString,
	token.TYPE_ARRAY:  ast.TypeLitArray,
	token.TYPE_OBJECT: ast.TypeLitObject,
}

// parseIs handles "left is <type literal>". Negation is expressed with the
// ordinary unary "!" wrapped around the whole "is" expression rather than a
// dedicated "!is" token.
func (p *Parser) parseIs(left ast.Expr) ast.Expr {
	p.advance() // move onto the type-literal token

	lit, ok := typeLiteralFromToken[p.cur.Type]
	if !ok {
		p.errors.Addf(p.cur, "expected a type literal after 'is', got %s", p.cur.Type)

		return left
	}

	return &ast.IsExpr{NodePos: ast.WithSpan(left.Span().Start, p.cur.Span.End), Expr: left, Type: lit}
}

func (p *Parser) parseArray() ast.Expr {
	start := p.cur.Span.Start

	var elements []ast.ArrayElement

	if p.peekIs(token.RBRACKET) {
		p.advance()

		return &ast.ArrayExpr{NodePos: ast.WithSpan(start, p.cur.Span.End), Elements: elements}
	}

	p.advance()
	elements = append(elements, p.parseArrayElement())

	for p.peekIs(token.COMMA) {
		p.advance() // cur = COMMA
		if p.peekIs(token.RBRACKET) {
			break // trailing comma
		}
		p.advance()
		elements = append(elements, p.parseArrayElement())
	}

	p.expectPeek(token.RBRACKET)

	return &ast.ArrayExpr{NodePos: ast.WithSpan(start, p.cur.Span.End), Elements: elements}
}

func (p *Parser) parseArrayElement() ast.ArrayElement {
	if p.curIs(token.SPREAD) {
		p.advance()

		return ast.ArrayElement{Value: p.parseExpression(precedenceLowest), Spread: true}
	}

	return ast.ArrayElement{Value: p.parseExpression(precedenceLowest)}
}

func (p *Parser) parseObject() ast.Expr {
	start := p.cur.Span.Start

	var fields []ast.ObjectField

	if p.peekIs(token.RBRACE) {
		p.advance()

		return &ast.ObjectExpr{NodePos: ast.WithSpan(start, p.cur.Span.End), Fields: fields}
	}

	p.advance()
	fields = append(fields, p.parseObjectField())

	for p.peekIs(token.COMMA) {
		p.advance() // cur = COMMA
		if p.peekIs(token.RBRACE) {
			break // trailing comma
		}
		p.advance()
		fields = append(fields, p.parseObjectField())
	}

	p.expectPeek(token.RBRACE)

	return &ast.ObjectExpr{NodePos: ast.WithSpan(start, p.cur.Span.End), Fields: fields}
}

func (p *Parser) parseObjectField() ast.ObjectField {
	if p.curIs(token.SPREAD) {
		p.advance()

		return ast.ObjectField{Spread: p.parseExpression(precedenceLowest)}
	}

	var key string

	switch p.cur.Type {
	case token.STRING, token.IDENT:
		key = p.cur.Literal
	default:
		p.errors.Addf(p.cur, "expected object field key, got %s", p.cur.Type)
	}

	if !p.expectPeek(token.COLON) {
		return ast.ObjectField{Key: key}
	}
	p.advance() // move onto the value's first token

	return ast.ObjectField{Key: key, Value: p.parseExpression(precedenceLowest)}
}
