package parser

import "github.com/kuiper-lang/kuiper/internal/token"

// Precedence levels, lowest to highest. Mirrors the teacher's
// pkg/parser/precedence.go shape with Kuiper's operator set.
const (
	precedenceLowest int = iota
	precedenceOr          // ||
	precedenceAnd         // &&
	precedenceEquals      // == != is
	precedenceCompare     // < <= > >=
	precedenceSum         // + -
	precedenceProduct     // * / %
	precedencePrefix      // unary ! -
	precedenceCall        // f(...), x.y, x[i]
)

var precedenceMap = map[token.Type]int{
	token.OR:      precedenceOr,
	token.AND:     precedenceAnd,
	token.EQ:      precedenceEquals,
	token.NEQ:     precedenceEquals,
	token.IS:      precedenceEquals,
	token.LT:      precedenceCompare,
	token.LTE:     precedenceCompare,
	token.GT:      precedenceCompare,
	token.GTE:     precedenceCompare,
	token.PLUS:    precedenceSum,
	token.MINUS:   precedenceSum,
	token.STAR:    precedenceProduct,
	token.SLASH:   precedenceProduct,
	token.PERCENT: precedenceProduct,
	token.LPAREN:  precedenceCall,
	token.DOT:     precedenceCall,
	token.LBRACKET: precedenceCall,
}
