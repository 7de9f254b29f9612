// Package ast defines the parse-tree node types produced by internal/parser.
//
// The shape follows internal/types in the teacher repo: a small Node
// interface with position information, a marker Expr interface for
// expression nodes, and a NodePos embedding that supplies Position() to
// every concrete node.
package ast

import (
	"fmt"
	"strings"

	"github.com/kuiper-lang/kuiper/internal/token"
)

// Node is the interface implemented by every AST node.
type Node interface {
	String() string
	Span() token.Span
}

// Expr marks a Node as usable in expression position.
type Expr interface {
	Node
	exprNode()
}

// NodePos is the exported span embedding shared by every concrete node, so
// that internal/parser can set it directly in composite literals.
type NodePos struct {
	Start int
	End   int
}

func (n NodePos) Span() token.Span { return token.Span{Start: n.Start, End: n.End} }

// WithSpan builds a NodePos for the given byte range.
func WithSpan(start, end int) NodePos {
	return NodePos{Start: start, End: end}
}

// ---- Literals ----

// ConstExpr is a literal null/bool/int/uint/float/string value. Uint only
// ever populates for an integer literal that does not fit a signed int64
// but does fit a uint64 (e.g. a u64 snowflake ID written directly in
// source); every ordinary integer literal is ConstInt.
type ConstExpr struct {
	NodePos
	Kind  ConstKind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
}

// ConstKind distinguishes which field of ConstExpr is populated.
type ConstKind int

const (
	ConstNull ConstKind = iota
	ConstBool
	ConstInt
	ConstUint
	ConstFloat
	ConstString
)

func (c *ConstExpr) exprNode() {}
func (c *ConstExpr) String() string {
	switch c.Kind {
	case ConstNull:
		return "null"
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstUint:
		return fmt.Sprintf("%d", c.Uint)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "<const>"
	}
}

// ---- Variables and selectors ----

// IdentExpr references a plain identifier. The tree builder resolves it
// to an input reference, a lambda parameter, a macro invocation, or a
// builtin/custom function used as a value, depending on what is in scope.
type IdentExpr struct {
	NodePos
	Name string
}

func (i *IdentExpr) exprNode()      {}
func (i *IdentExpr) String() string { return i.Name }

// SelectorStepKind distinguishes a ".field" step from a "[index]" step.
type SelectorStepKind int

const (
	StepField SelectorStepKind = iota
	StepIndex
)

// SelectorStep is one link of a selector chain.
type SelectorStep struct {
	Kind  SelectorStepKind
	Field string
	Index Expr // nil for StepField
}

func (s SelectorStep) String() string {
	if s.Kind == StepField {
		return "." + s.Field
	}

	return "[" + s.Index.String() + "]"
}

// SelectorExpr is a chain of field/index accesses rooted at Base.
type SelectorExpr struct {
	NodePos
	Base  Expr
	Steps []SelectorStep
}

func (s *SelectorExpr) exprNode() {}
func (s *SelectorExpr) String() string {
	var b strings.Builder
	b.WriteString(s.Base.String())
	for _, step := range s.Steps {
		b.WriteString(step.String())
	}

	return b.String()
}

// ---- Operators ----

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (o BinaryOp) String() string { return binaryOpNames[o] }

// BinaryExpr is a two-operand operator expression.
type BinaryExpr struct {
	NodePos
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (b *BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (o UnaryOp) String() string {
	if o == OpNot {
		return "!"
	}

	return "-"
}

// UnaryExpr is a single-operand operator expression.
type UnaryExpr struct {
	NodePos
	Op   UnaryOp
	Expr Expr
}

func (u *UnaryExpr) exprNode()      {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op.String(), u.Expr.String()) }

// TypeLiteral names a structural type for use on the right-hand side of
// "is", e.g. "int", "array", "object".
type TypeLiteral int

const (
	TypeLitNull TypeLiteral = iota
	TypeLitBool
	TypeLitInt
	TypeLitFloat
	TypeLitNumber
	TypeLitString
	TypeLitArray
	TypeLitObject
)

var typeLiteralNames = [...]string{
	TypeLitNull: "null", TypeLitBool: "bool", TypeLitInt: "int",
	TypeLitFloat: "float", TypeLitNumber: "number", TypeLitString: "string",
	TypeLitArray: "array", TypeLitObject: "object",
}

func (t TypeLiteral) String() string { return typeLiteralNames[t] }

// IsExpr tests whether Expr's runtime value has the shape of TypeLit.
// Negated forms ("!is") are represented with Negate set.
type IsExpr struct {
	NodePos
	Expr   Expr
	Type   TypeLiteral
	Negate bool
}

func (e *IsExpr) exprNode() {}
func (e *IsExpr) String() string {
	op := "is"
	if e.Negate {
		op = "!is"
	}

	return fmt.Sprintf("(%s %s %s)", e.Expr.String(), op, e.Type.String())
}

// ---- Data structures ----

// ArrayElement is either a plain expression or a "...expr" spread.
type ArrayElement struct {
	Value  Expr
	Spread bool
}

// ArrayExpr is an array literal.
type ArrayExpr struct {
	NodePos
	Elements []ArrayElement
}

func (a *ArrayExpr) exprNode() {}
func (a *ArrayExpr) String() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		if el.Spread {
			parts[i] = "..." + el.Value.String()
		} else {
			parts[i] = el.Value.String()
		}
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectField is either a "key: value" pair or a "...expr" spread.
type ObjectField struct {
	Key    string
	Value  Expr
	Spread Expr // non-nil for a "...expr" field, Key/Value unused
}

// ObjectExpr is an object literal.
type ObjectExpr struct {
	NodePos
	Fields []ObjectField
}

func (o *ObjectExpr) exprNode() {}
func (o *ObjectExpr) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		if f.Spread != nil {
			parts[i] = "..." + f.Spread.String()
		} else {
			parts[i] = fmt.Sprintf("%q: %s", f.Key, f.Value.String())
		}
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// ---- Functions ----

// CallExpr is a function/builtin/macro invocation. Callee is an IdentExpr
// for a named call, or any Expr for a value resolving to a lambda.
type CallExpr struct {
	NodePos
	Callee Expr
	Args   []Expr
}

func (c *CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}

	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// LambdaExpr is an inline function literal: "param => body" or
// "(p1, p2) => body".
type LambdaExpr struct {
	NodePos
	Params []string
	Body   Expr
}

func (l *LambdaExpr) exprNode() {}
func (l *LambdaExpr) String() string {
	if len(l.Params) == 1 {
		return fmt.Sprintf("%s => %s", l.Params[0], l.Body.String())
	}

	return fmt.Sprintf("(%s) => %s", strings.Join(l.Params, ", "), l.Body.String())
}

// ---- Control flow ----

// IfBranch is one "if cond then" or trailing "else" arm of a chain.
type IfBranch struct {
	Cond Expr // nil for the trailing else
	Then Expr
}

// IfExpr is a flat if/else-if/.../else chain; the else arm is optional and,
// when present, is the last Branches entry, with a nil Cond.
type IfExpr struct {
	NodePos
	Branches []IfBranch
}

func (e *IfExpr) exprNode() {}
func (e *IfExpr) String() string {
	var b strings.Builder
	for i, br := range e.Branches {
		switch {
		case br.Cond == nil:
			b.WriteString(fmt.Sprintf(" else %s", br.Then.String()))
		case i == 0:
			b.WriteString(fmt.Sprintf("if %s then %s", br.Cond.String(), br.Then.String()))
		default:
			b.WriteString(fmt.Sprintf(" else if %s then %s", br.Cond.String(), br.Then.String()))
		}
	}

	return b.String()
}

// ---- Macros ----

// MacroDef is a "#name := body;" macro definition preceding the program's
// final expression.
type MacroDef struct {
	NodePos
	Name string
	Body Expr
}

func (m *MacroDef) String() string { return fmt.Sprintf("#%s := %s;", m.Name, m.Body.String()) }

// Program is the top-level parse result: zero or more macro definitions
// followed by the final expression to evaluate.
type Program struct {
	NodePos
	Macros []*MacroDef
	Body   Expr
}

func (p *Program) String() string {
	var b strings.Builder
	for _, m := range p.Macros {
		b.WriteString(m.String())
		b.WriteString(" ")
	}
	b.WriteString(p.Body.String())

	return b.String()
}
