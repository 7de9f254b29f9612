// Package parser implements C2: a Pratt parser that turns a lexer.Lexer's
// token stream into an ast.Program.
//
// Grammar summary:
//
//	Program   = MacroDef* Expr
//	MacroDef  = "#" name ":=" Expr ";"
//	Expr      = literal | ident | lambda | unary | binary | "is" test
//	          | selector | index | call | array | object | if-chain
//
// Precedence, lowest to highest: "||", "&&", ("==" "!=" "is"),
// ("<" "<=" ">" ">="), ("+" "-"), ("*" "/" "%"), unary ("!" "-"), then
// postfix call/select/index. Method-call syntax "x.f(args)" desugars to
// "f(x, args)" at parse time.
package parser
