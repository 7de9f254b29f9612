package parser

import (
	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/token"
)

// parseIf parses a flat if/else-if/.../else chain. Unlike the teacher's
// Nix grammar (a single if/then/else with no else-if), Kuiper allows
// chaining "else if" arms; the final "else" is optional, and a chain whose
// conditions all fail with no else arm evaluates to null.
func (p *Parser) parseIf() ast.Expr {
	start := p.cur.Span.Start

	var branches []ast.IfBranch

	for {
		p.advance() // move onto the condition's first token

		cond := p.parseExpression(precedenceLowest)
		if cond == nil {
			return nil
		}

		if !p.expectPeek(token.THEN) {
			return nil
		}
		p.advance() // move onto the then-branch's first token

		then := p.parseExpression(precedenceLowest)
		if then == nil {
			return nil
		}

		branches = append(branches, ast.IfBranch{Cond: cond, Then: then})

		if !p.peekIs(token.ELSE) {
			return &ast.IfExpr{NodePos: ast.WithSpan(start, then.Span().End), Branches: branches}
		}
		p.advance() // cur = ELSE

		if p.peekIs(token.IF) {
			p.advance() // cur = IF, loop again for the next arm

			continue
		}

		break
	}

	p.advance() // move onto the else-branch's first token

	elseBody := p.parseExpression(precedenceLowest)
	if elseBody == nil {
		return nil
	}

	branches = append(branches, ast.IfBranch{Then: elseBody})

	return &ast.IfExpr{NodePos: ast.WithSpan(start, elseBody.Span().End), Branches: branches}
}
