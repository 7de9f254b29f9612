package parser

import (
	"testing"

	"github.com/kuiper-lang/kuiper/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, errs := Parse(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs.Errors())
	}
	if prog.Body == nil {
		t.Fatalf("expected a program body for %q", src)
	}

	return prog
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{`"hi"`, `"hi"`},
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
	}

	for _, tt := range tests {
		prog := parseOK(t, tt.src)
		if got := prog.Body.String(); got != tt.want {
			t.Errorf("Parse(%q).Body.String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseIntLiteralAboveInt64FallsBackToUint(t *testing.T) {
	// 2^64-1: too big for int64, fits uint64.
	prog := parseOK(t, "18446744073709551615")
	lit, ok := prog.Body.(*ast.ConstExpr)
	if !ok {
		t.Fatalf("Body = %T, want *ast.ConstExpr", prog.Body)
	}
	if lit.Kind != ast.ConstUint {
		t.Fatalf("Kind = %v, want ConstUint", lit.Kind)
	}
	if lit.Uint != 18446744073709551615 {
		t.Errorf("Uint = %d, want 18446744073709551615", lit.Uint)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 - 3", "((1 + 2) - 3)"},
		{"1 < 2 == 3 < 4", "((1 < 2) == (3 < 4))"},
		{"a && b || c", "((a && b) || c)"},
		{"a || b && c", "(a || (b && c))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-1 + 2", "((-1) + 2)"},
		{"!a && b", "((!a) && b)"},
	}

	for _, tt := range tests {
		prog := parseOK(t, tt.src)
		if got := prog.Body.String(); got != tt.want {
			t.Errorf("Parse(%q).Body.String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseSelectorAndIndex(t *testing.T) {
	prog := parseOK(t, "input.a.b[0].c")

	sel, ok := prog.Body.(*ast.SelectorExpr)
	if !ok {
		t.Fatalf("expected *ast.SelectorExpr, got %T", prog.Body)
	}
	if len(sel.Steps) != 4 {
		t.Fatalf("expected 4 selector steps, got %d (%s)", len(sel.Steps), sel.String())
	}
	if sel.Steps[2].Kind != ast.StepIndex {
		t.Fatalf("expected step 2 to be an index step, got %v", sel.Steps[2].Kind)
	}
}

func TestParseMethodCallDesugaring(t *testing.T) {
	prog := parseOK(t, "input.items.map(x => x)")

	call, ok := prog.Body.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected *ast.CallExpr, got %T", prog.Body)
	}
	callee, ok := call.Callee.(*ast.IdentExpr)
	if !ok || callee.Name != "map" {
		t.Fatalf("expected callee map, got %#v", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 desugared args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.SelectorExpr); !ok {
		t.Fatalf("expected first arg to be the receiver selector, got %T", call.Args[0])
	}
}

func TestParseLambdas(t *testing.T) {
	tests := []struct {
		src        string
		wantParams []string
	}{
		{"x => x + 1", []string{"x"}},
		{"(x) => x + 1", []string{"x"}},
		{"(a, b) => a + b", []string{"a", "b"}},
		{"() => 1", nil},
	}

	for _, tt := range tests {
		prog := parseOK(t, tt.src)
		lam, ok := prog.Body.(*ast.LambdaExpr)
		if !ok {
			t.Fatalf("Parse(%q): expected *ast.LambdaExpr, got %T", tt.src, prog.Body)
		}
		if len(lam.Params) != len(tt.wantParams) {
			t.Fatalf("Parse(%q): expected %d params, got %d", tt.src, len(tt.wantParams), len(lam.Params))
		}
		for i, p := range tt.wantParams {
			if lam.Params[i] != p {
				t.Errorf("Parse(%q): param %d = %q, want %q", tt.src, i, lam.Params[i], p)
			}
		}
	}
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	prog := parseOK(t, "[1, 2, ...xs, 3]")
	arr, ok := prog.Body.(*ast.ArrayExpr)
	if !ok {
		t.Fatalf("expected *ast.ArrayExpr, got %T", prog.Body)
	}
	if len(arr.Elements) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(arr.Elements))
	}
	if !arr.Elements[2].Spread {
		t.Fatalf("expected element 2 to be a spread")
	}

	prog = parseOK(t, `{"a": 1, ...rest, b: 2}`)
	obj, ok := prog.Body.(*ast.ObjectExpr)
	if !ok {
		t.Fatalf("expected *ast.ObjectExpr, got %T", prog.Body)
	}
	if len(obj.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(obj.Fields))
	}
	if obj.Fields[1].Spread == nil {
		t.Fatalf("expected field 1 to be a spread")
	}
	if obj.Fields[2].Key != "b" {
		t.Fatalf("expected field 2 key %q, got %q", "b", obj.Fields[2].Key)
	}
}

func TestParseIfElseChain(t *testing.T) {
	prog := parseOK(t, "if a then 1 else if b then 2 else 3")
	ifx, ok := prog.Body.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", prog.Body)
	}
	if len(ifx.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(ifx.Branches))
	}
	if ifx.Branches[2].Cond != nil {
		t.Fatalf("expected the final branch to have a nil condition")
	}
}

func TestParseIsExpression(t *testing.T) {
	prog := parseOK(t, "input is int")
	isx, ok := prog.Body.(*ast.IsExpr)
	if !ok {
		t.Fatalf("expected *ast.IsExpr, got %T", prog.Body)
	}
	if isx.Type != ast.TypeLitInt {
		t.Fatalf("expected TypeLitInt, got %v", isx.Type)
	}

	prog = parseOK(t, "!(input is int)")
	if _, ok := prog.Body.(*ast.UnaryExpr); !ok {
		t.Fatalf("expected negated is-expression to parse as *ast.UnaryExpr, got %T", prog.Body)
	}
}

func TestParseMacroDefinitions(t *testing.T) {
	prog := parseOK(t, "#double := x => x * 2; double(21)")
	if len(prog.Macros) != 1 {
		t.Fatalf("expected 1 macro definition, got %d", len(prog.Macros))
	}
	if prog.Macros[0].Name != "double" {
		t.Fatalf("expected macro name %q, got %q", "double", prog.Macros[0].Name)
	}
	if _, ok := prog.Macros[0].Body.(*ast.LambdaExpr); !ok {
		t.Fatalf("expected macro body to be a lambda, got %T", prog.Macros[0].Body)
	}
}

func TestParseErrorsOnTrailingTokens(t *testing.T) {
	_, errs := Parse("1 + 2 3")
	if !errs.HasErrors() {
		t.Fatalf("expected a parse error for trailing tokens")
	}
}

func TestParseErrorsOnUnexpectedToken(t *testing.T) {
	_, errs := Parse("+")
	if !errs.HasErrors() {
		t.Fatalf("expected a parse error for a leading '+'")
	}
}
