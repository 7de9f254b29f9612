package tree

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/builtin"
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

// Config configures a single Build call. A zero or negative
// MaxMacroExpansions makes Build use spec.md's default of 20.
type Config struct {
	MaxMacroExpansions int
	// CustomFunctions are host-registered builtins for this one compile.
	// They shadow built-ins of the same name, but never macros (spec.md
	// §9: "macros are resolved first").
	CustomFunctions map[string]*builtin.Spec
}

// Builder turns an ast.Program into an executable Tree: resolving
// identifiers to slot indices, function calls to builtins/custom
// functions, and inlining macro calls.
type Builder struct {
	env    []string // flat stack: input names, then each active lambda's params
	macros map[string]*ast.MacroDef
	custom map[string]*builtin.Spec
	cfg    Config

	expanding      map[string]struct{} // macro names currently being inlined, for recursion detection
	expansionCount int
}

// Build compiles prog against the given ordered input names.
func Build(prog *ast.Program, inputNames []string, cfg Config) (*Tree, error) {
	b := &Builder{
		env:       append([]string{}, inputNames...),
		macros:    map[string]*ast.MacroDef{},
		custom:    cfg.CustomFunctions,
		cfg:       cfg,
		expanding: map[string]struct{}{},
	}
	for _, m := range prog.Macros {
		b.macros[m.Name] = m
	}

	root, err := b.build(prog.Body)
	if err != nil {
		return nil, err
	}

	return &Tree{Root: root, NumInputs: len(inputNames)}, nil
}

func buildErr(span ast.Node, format string, args ...interface{}) error {
	s := span.Span()

	return &kerr.CompileError{Kind: kerr.Build, Span: &s, Message: fmt.Sprintf(format, args...)}
}

func (b *Builder) build(e ast.Expr) (Node, error) {
	switch e := e.(type) {
	case *ast.ConstExpr:
		return NewConstant(e.Span(), constValue(e)), nil

	case *ast.IdentExpr:
		return b.resolveIdent(e)

	case *ast.SelectorExpr:
		return b.buildSelector(e)

	case *ast.BinaryExpr:
		left, err := b.build(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.build(e.Right)
		if err != nil {
			return nil, err
		}

		return NewBinary(e.Span(), e.Op, left, right), nil

	case *ast.UnaryExpr:
		operand, err := b.build(e.Expr)
		if err != nil {
			return nil, err
		}

		return NewUnary(e.Span(), e.Op, operand), nil

	case *ast.IsExpr:
		operand, err := b.build(e.Expr)
		if err != nil {
			return nil, err
		}

		return NewIs(e.Span(), operand, e.Type, e.Negate), nil

	case *ast.ArrayExpr:
		return b.buildArray(e)

	case *ast.ObjectExpr:
		return b.buildObject(e)

	case *ast.CallExpr:
		return b.buildCall(e)

	case *ast.LambdaExpr:
		return nil, buildErr(e, "lambda used outside a whitelisted argument position")

	case *ast.IfExpr:
		return b.buildIf(e)

	default:
		return nil, buildErr(e, "unsupported expression")
	}
}

func constValue(e *ast.ConstExpr) kvalue.Value {
	switch e.Kind {
	case ast.ConstNull:
		return kvalue.Null
	case ast.ConstBool:
		return kvalue.Bool(e.Bool)
	case ast.ConstInt:
		return kvalue.Int(e.Int)
	case ast.ConstUint:
		return kvalue.Uint(e.Uint)
	case ast.ConstFloat:
		return kvalue.Float(e.Float)
	case ast.ConstString:
		return kvalue.String(e.Str)
	default:
		return kvalue.Null
	}
}

// resolveIdent looks up name in the flat lexical stack, scanning from the
// innermost (most recently pushed lambda) scope outward so shadowing works.
func (b *Builder) resolveIdent(e *ast.IdentExpr) (Node, error) {
	for i := len(b.env) - 1; i >= 0; i-- {
		if b.env[i] == e.Name {
			return NewVar(e.Span(), i, e.Name), nil
		}
	}

	return nil, buildErr(e, "unknown variable %q", e.Name)
}

func (b *Builder) buildSelector(e *ast.SelectorExpr) (Node, error) {
	base_, err := b.build(e.Base)
	if err != nil {
		return nil, err
	}
	steps := make([]SelectorStep, len(e.Steps))
	for i, s := range e.Steps {
		steps[i] = SelectorStep{Kind: SelectorStepKind(s.Kind), Field: s.Field}
		if s.Kind == ast.StepIndex {
			idx, err := b.build(s.Index)
			if err != nil {
				return nil, err
			}
			steps[i].Index = idx
		}
	}

	return NewSelector(e.Span(), base_, steps), nil
}

func (b *Builder) buildArray(e *ast.ArrayExpr) (Node, error) {
	elems := make([]ArrayElement, len(e.Elements))
	for i, el := range e.Elements {
		v, err := b.build(el.Value)
		if err != nil {
			return nil, err
		}
		elems[i] = ArrayElement{Value: v, Spread: el.Spread}
	}

	return NewArray(e.Span(), elems), nil
}

func (b *Builder) buildObject(e *ast.ObjectExpr) (Node, error) {
	fields := make([]ObjectField, len(e.Fields))
	for i, f := range e.Fields {
		if f.Spread != nil {
			v, err := b.build(f.Spread)
			if err != nil {
				return nil, err
			}
			fields[i] = ObjectField{Spread: v}

			continue
		}
		v, err := b.build(f.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = ObjectField{Key: f.Key, Value: v}
	}

	return NewObject(e.Span(), fields), nil
}

func (b *Builder) buildIf(e *ast.IfExpr) (Node, error) {
	branches := make([]IfBranch, len(e.Branches))
	for i, br := range e.Branches {
		then, err := b.build(br.Then)
		if err != nil {
			return nil, err
		}
		ib := IfBranch{Then: then}
		if br.Cond != nil {
			cond, err := b.build(br.Cond)
			if err != nil {
				return nil, err
			}
			ib.Cond = cond
		}
		branches[i] = ib
	}

	return NewIf(e.Span(), branches), nil
}

// buildCall resolves a call's callee in precedence order macro > custom
// function > builtin (spec.md §9), then builds each argument, enforcing
// arity and lambda-position whitelisting for function calls (macro calls
// are inlined instead, with no arity whitelist of their own beyond
// matching their declared parameter count).
func (b *Builder) buildCall(e *ast.CallExpr) (Node, error) {
	callee, ok := e.Callee.(*ast.IdentExpr)
	if !ok {
		return nil, buildErr(e, "call target must be a named function")
	}
	name := callee.Name

	if macroDef, ok := b.macros[name]; ok {
		return b.buildMacroCall(macroDef, e)
	}

	spec, ok := b.custom[name]
	if !ok {
		spec, ok = builtin.Lookup(name)
	}
	if !ok {
		return nil, buildErr(e, "unknown function %q", name)
	}

	if err := spec.CheckArity(len(e.Args)); err != nil {
		s := e.Span()

		return nil, &kerr.CompileError{Kind: kerr.Build, Span: &s, Message: err.Error()}
	}

	args := make([]Node, len(e.Args))
	for i, a := range e.Args {
		if lam, isLambda := a.(*ast.LambdaExpr); isLambda {
			arity, allowed := spec.LambdaArityAt(i)
			if !allowed {
				return nil, buildErr(a, "%s does not accept a lambda at argument %d", name, i)
			}
			if len(lam.Params) != arity {
				return nil, buildErr(a, "%s expects a %d-argument lambda at argument %d, got %d", name, arity, i, len(lam.Params))
			}
			node, err := b.buildLambda(lam)
			if err != nil {
				return nil, err
			}
			args[i] = node

			continue
		}

		node, err := b.build(a)
		if err != nil {
			return nil, err
		}
		args[i] = node
	}

	return NewCall(e.Span(), name, spec, args), nil
}

func (b *Builder) buildLambda(l *ast.LambdaExpr) (*LambdaNode, error) {
	baseSlot := len(b.env)
	b.env = append(b.env, l.Params...)
	body, err := b.build(l.Body)
	b.env = b.env[:baseSlot]
	if err != nil {
		return nil, err
	}

	return NewLambda(l.Span(), l.Params, baseSlot, body), nil
}

// buildMacroCall inlines macroDef's body with its parameters substituted
// by the call's argument ASTs, then builds the result in the current
// scope. The recursion guard rejects a macro (transitively) calling
// itself; the expansion counter bounds total inlining work.
func (b *Builder) buildMacroCall(macroDef *ast.MacroDef, call *ast.CallExpr) (Node, error) {
	if _, active := b.expanding[macroDef.Name]; active {
		return nil, buildErr(call, "macro %q recursively calls itself", macroDef.Name)
	}

	b.expansionCount++
	maxExpansions := b.cfg.MaxMacroExpansions
	if maxExpansions <= 0 {
		maxExpansions = 20
	}
	if b.expansionCount > maxExpansions {
		return nil, buildErr(call, "macro expansion limit (%d) exceeded", maxExpansions)
	}

	var params []string
	bodyExpr := macroDef.Body
	if lam, ok := macroDef.Body.(*ast.LambdaExpr); ok {
		params = lam.Params
		bodyExpr = lam.Body
	}
	if len(params) != len(call.Args) {
		return nil, buildErr(call, "macro %q expects %d argument(s), got %d", macroDef.Name, len(params), len(call.Args))
	}

	subst := make(map[string]ast.Expr, len(params))
	for i, p := range params {
		subst[p] = call.Args[i]
	}
	substituted := substitute(bodyExpr, subst)

	b.expanding[macroDef.Name] = struct{}{}
	node, err := b.build(substituted)
	delete(b.expanding, macroDef.Name)

	return node, err
}
