package tree

import (
	"testing"

	"github.com/kuiper-lang/kuiper/internal/builtin"
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/parser"
)

func buildOK(t *testing.T, src string, inputNames []string) *Tree {
	t.Helper()

	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse error for %q: %v", src, errs.Errors())
	}

	tr, err := Build(prog, inputNames, Config{})
	if err != nil {
		t.Fatalf("Build(%q) error: %v", src, err)
	}

	return tr
}

func buildErrOf(t *testing.T, src string, inputNames []string) *kerr.CompileError {
	t.Helper()

	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse error for %q: %v", src, errs.Errors())
	}

	_, err := Build(prog, inputNames, Config{})
	if err == nil {
		t.Fatalf("Build(%q) succeeded, want error", src)
	}
	ce, ok := err.(*kerr.CompileError)
	if !ok {
		t.Fatalf("Build(%q) error type = %T, want *kerr.CompileError", src, err)
	}

	return ce
}

func TestBuildVariableResolution(t *testing.T) {
	tr := buildOK(t, "input.a", []string{"input"})

	v, ok := tr.Root.(*SelectorNode)
	if !ok {
		t.Fatalf("Root type = %T, want *SelectorNode", tr.Root)
	}
	base, ok := v.Base.(*VarNode)
	if !ok {
		t.Fatalf("Base type = %T, want *VarNode", v.Base)
	}
	if base.Slot != 0 {
		t.Errorf("Slot = %d, want 0", base.Slot)
	}
}

func TestBuildUnknownVariable(t *testing.T) {
	ce := buildErrOf(t, "missing.a", nil)
	if ce.Kind != kerr.Build {
		t.Errorf("Kind = %v, want Build", ce.Kind)
	}
}

func TestBuildCallResolution(t *testing.T) {
	tr := buildOK(t, "pow(2, 3)", nil)

	call, ok := tr.Root.(*CallNode)
	if !ok {
		t.Fatalf("Root type = %T, want *CallNode", tr.Root)
	}
	if call.Name != "pow" {
		t.Errorf("Name = %q, want pow", call.Name)
	}
	if len(call.Args) != 2 {
		t.Errorf("len(Args) = %d, want 2", len(call.Args))
	}
}

func TestBuildUnknownFunction(t *testing.T) {
	buildErrOf(t, "nonexistent_fn(1)", nil)
}

func TestBuildArityViolation(t *testing.T) {
	buildErrOf(t, "pow(1)", nil)
	buildErrOf(t, "pow(1, 2, 3)", nil)
}

func TestBuildLambdaWhitelist(t *testing.T) {
	// map's second argument accepts a 1-arg lambda.
	tr := buildOK(t, "[1,2,3].map(x => x + 1)", nil)
	call, ok := tr.Root.(*CallNode)
	if !ok {
		t.Fatalf("Root type = %T, want *CallNode", tr.Root)
	}
	if _, ok := call.Args[1].(*LambdaNode); !ok {
		t.Errorf("Args[1] type = %T, want *LambdaNode", call.Args[1])
	}
}

func TestBuildUnexpectedLambda(t *testing.T) {
	ce := buildErrOf(t, "1 + (a => a)", nil)
	if ce.Kind != kerr.Build {
		t.Errorf("Kind = %v, want Build", ce.Kind)
	}
}

func TestBuildLambdaWrongArity(t *testing.T) {
	// map's lambda must take exactly one argument.
	buildErrOf(t, "[1,2,3].map((a, b) => a + b)", nil)
}

func TestBuildMacroInlining(t *testing.T) {
	tr := buildOK(t, "#double := (x) => x * 2; double(21)", nil)

	bin, ok := tr.Root.(*BinaryNode)
	if !ok {
		t.Fatalf("Root type = %T, want *BinaryNode (macro body inlined)", tr.Root)
	}
	if bin.String() != "(21 * 2)" {
		t.Errorf("Root.String() = %q, want (21 * 2)", bin.String())
	}
}

func TestBuildRecursiveMacro(t *testing.T) {
	ce := buildErrOf(t, "#a := () => b(); #b := () => a(); a()", nil)
	if ce.Kind != kerr.Build {
		t.Errorf("Kind = %v, want Build", ce.Kind)
	}
}

func TestBuildMacroExpansionLimit(t *testing.T) {
	prog, errs := parser.Parse("#id := (x) => x; id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(id(1)))))))))))))))))))))")
	if errs.HasErrors() {
		t.Fatalf("parse error: %v", errs.Errors())
	}

	_, err := Build(prog, nil, Config{MaxMacroExpansions: 5})
	if err == nil {
		t.Fatalf("Build succeeded, want macro expansion limit error")
	}
	if _, ok := err.(*kerr.CompileError); !ok {
		t.Fatalf("error type = %T, want *kerr.CompileError", err)
	}
}

func TestBuildMethodCallDesugar(t *testing.T) {
	tr := buildOK(t, "[1,2].length()", nil)
	call, ok := tr.Root.(*CallNode)
	if !ok {
		t.Fatalf("Root type = %T, want *CallNode", tr.Root)
	}
	if call.Name != "length" {
		t.Errorf("Name = %q, want length", call.Name)
	}
	if len(call.Args) != 1 {
		t.Fatalf("len(Args) = %d, want 1 (receiver desugared into first arg)", len(call.Args))
	}
	if _, ok := call.Args[0].(*ArrayNode); !ok {
		t.Errorf("Args[0] type = %T, want *ArrayNode", call.Args[0])
	}
}

func TestBuildDeterminism(t *testing.T) {
	tr := buildOK(t, "now()", nil)
	if tr.Root.Deterministic() {
		t.Errorf("now() node reports Deterministic() = true, want false")
	}

	tr = buildOK(t, "1 + 1", nil)
	if !tr.Root.Deterministic() {
		t.Errorf("1 + 1 reports Deterministic() = false, want true")
	}

	tr = buildOK(t, "1 + now()", nil)
	if tr.Root.Deterministic() {
		t.Errorf("1 + now() reports Deterministic() = true, want false")
	}
}

func TestBuildCustomFunction(t *testing.T) {
	greet := &builtin.Spec{
		Name: "greet", MinArgs: 0, MaxArgs: 0,
		Fn: func(inv builtin.Invoker, args []builtin.Node) (kvalue.Value, error) {
			return kvalue.String("hi"), nil
		},
	}

	prog, errs := parser.Parse("greet()")
	if errs.HasErrors() {
		t.Fatalf("parse error: %v", errs.Errors())
	}

	tr, err := Build(prog, nil, Config{CustomFunctions: map[string]*builtin.Spec{"greet": greet}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	call, ok := tr.Root.(*CallNode)
	if !ok || call.Name != "greet" {
		t.Fatalf("Root = %#v, want a CallNode named greet", tr.Root)
	}
}

func TestBuildUnregisteredFunctionStillFails(t *testing.T) {
	prog, errs := parser.Parse("greet()")
	if errs.HasErrors() {
		t.Fatalf("parse error: %v", errs.Errors())
	}

	if _, err := Build(prog, nil, Config{}); err == nil {
		t.Fatalf("Build succeeded for unregistered %q, want unknown-function error", "greet")
	}
}
