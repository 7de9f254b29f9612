package tree

import "github.com/kuiper-lang/kuiper/internal/ast"

// substitute deep-copies expr, replacing every IdentExpr bound in subst
// with the argument AST it maps to, stopping at any nested LambdaExpr that
// redeclares the same name (shadowing). Node spans are preserved from the
// macro definition's own source text, except where a node is wholly
// replaced by an argument expression — which keeps the argument's own
// span, so a runtime error inside a substituted argument still points at
// the call site's argument, not the macro body.
//
// This is what makes macro expansion "compile-time AST substitution, not
// a closure": the substituted tree is built fresh, in the caller's lexical
// scope, with no separate runtime representation of the macro.
func substitute(expr ast.Expr, subst map[string]ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.ConstExpr:
		return e

	case *ast.IdentExpr:
		if repl, ok := subst[e.Name]; ok {
			return repl
		}

		return e

	case *ast.SelectorExpr:
		steps := make([]ast.SelectorStep, len(e.Steps))
		for i, s := range e.Steps {
			steps[i] = s
			if s.Kind == ast.StepIndex {
				steps[i].Index = substitute(s.Index, subst)
			}
		}

		return &ast.SelectorExpr{NodePos: e.NodePos, Base: substitute(e.Base, subst), Steps: steps}

	case *ast.BinaryExpr:
		return &ast.BinaryExpr{
			NodePos: e.NodePos,
			Left:    substitute(e.Left, subst),
			Op:      e.Op,
			Right:   substitute(e.Right, subst),
		}

	case *ast.UnaryExpr:
		return &ast.UnaryExpr{NodePos: e.NodePos, Op: e.Op, Expr: substitute(e.Expr, subst)}

	case *ast.IsExpr:
		return &ast.IsExpr{
			NodePos: e.NodePos,
			Expr:    substitute(e.Expr, subst),
			Type:    e.Type,
			Negate:  e.Negate,
		}

	case *ast.ArrayExpr:
		elems := make([]ast.ArrayElement, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = ast.ArrayElement{Value: substitute(el.Value, subst), Spread: el.Spread}
		}

		return &ast.ArrayExpr{NodePos: e.NodePos, Elements: elems}

	case *ast.ObjectExpr:
		fields := make([]ast.ObjectField, len(e.Fields))
		for i, f := range e.Fields {
			if f.Spread != nil {
				fields[i] = ast.ObjectField{Spread: substitute(f.Spread, subst)}

				continue
			}
			fields[i] = ast.ObjectField{Key: f.Key, Value: substitute(f.Value, subst)}
		}

		return &ast.ObjectExpr{NodePos: e.NodePos, Fields: fields}

	case *ast.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substitute(a, subst)
		}

		return &ast.CallExpr{NodePos: e.NodePos, Callee: substitute(e.Callee, subst), Args: args}

	case *ast.LambdaExpr:
		shadowed := false
		for _, p := range e.Params {
			if _, ok := subst[p]; ok {
				shadowed = true

				break
			}
		}
		if !shadowed {
			return &ast.LambdaExpr{NodePos: e.NodePos, Params: e.Params, Body: substitute(e.Body, subst)}
		}

		inner := make(map[string]ast.Expr, len(subst))
		for k, v := range subst {
			inner[k] = v
		}
		for _, p := range e.Params {
			delete(inner, p)
		}

		return &ast.LambdaExpr{NodePos: e.NodePos, Params: e.Params, Body: substitute(e.Body, inner)}

	case *ast.IfExpr:
		branches := make([]ast.IfBranch, len(e.Branches))
		for i, br := range e.Branches {
			b := ast.IfBranch{Then: substitute(br.Then, subst)}
			if br.Cond != nil {
				b.Cond = substitute(br.Cond, subst)
			}
			branches[i] = b
		}

		return &ast.IfExpr{NodePos: e.NodePos, Branches: branches}

	default:
		return e
	}
}
