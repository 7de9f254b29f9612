package optimizer

import (
	"testing"

	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/parser"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

func optimizeSource(t *testing.T, src string, inputNames []string) *tree.Tree {
	t.Helper()

	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse error for %q: %v", src, errs.Errors())
	}
	tr, err := tree.Build(prog, inputNames, tree.Config{})
	if err != nil {
		t.Fatalf("build error for %q: %v", src, err)
	}
	optimized, err := Optimize(tr, DefaultOperationLimit)
	if err != nil {
		t.Fatalf("Optimize(%q) error: %v", src, err)
	}

	return optimized
}

func TestOptimizeFoldsConstants(t *testing.T) {
	tr := optimizeSource(t, "2 + 2 * (2 - 2 / 2) + pow(3, 2)", nil)

	c, ok := tr.Root.(*tree.ConstantNode)
	if !ok {
		t.Fatalf("Root type = %T, want *tree.ConstantNode", tr.Root)
	}
	if got, want := c.Value.String(), "13.0"; got != want {
		t.Errorf("folded value = %q, want %q", got, want)
	}
}

func TestOptimizeLeavesRuntimeDependentSubtrees(t *testing.T) {
	tr := optimizeSource(t, "2 + 2 * 3 - input.id", []string{"input"})

	if got, want := tr.Root.String(), "(8 - $0.id)"; got != want {
		t.Errorf("Root.String() = %q, want %q", got, want)
	}
	if _, ok := tr.Root.(*tree.ConstantNode); ok {
		t.Fatalf("Root folded to a constant, want the selector subtree preserved")
	}
}

func TestOptimizeDoesNotFoldNonDeterministic(t *testing.T) {
	tr := optimizeSource(t, "now()", nil)

	if _, ok := tr.Root.(*tree.ConstantNode); ok {
		t.Fatalf("now() folded to a constant, want it left in place")
	}
}

func TestOptimizeSurfacesHardErrors(t *testing.T) {
	prog, errs := parser.Parse("2 / 0")
	if errs.HasErrors() {
		t.Fatalf("parse error: %v", errs.Errors())
	}
	tr, err := tree.Build(prog, nil, tree.Config{})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	_, err = Optimize(tr, DefaultOperationLimit)
	if err == nil {
		t.Fatalf("Optimize succeeded for 2/0, want a compile-time error")
	}
	if ce, ok := err.(*kerr.CompileError); !ok || ce.Kind != kerr.Optimizer {
		t.Fatalf("error = %#v, want *kerr.CompileError{Kind: Optimizer}", err)
	}
}

func TestOptimizeShortCircuitAvoidsError(t *testing.T) {
	// The division by zero is never reached because the && short-circuits
	// on the constant false, so the whole expression folds cleanly.
	tr := optimizeSource(t, "false && (1 / 0 > 0)", nil)

	c, ok := tr.Root.(*tree.ConstantNode)
	if !ok {
		t.Fatalf("Root type = %T, want *tree.ConstantNode", tr.Root)
	}
	if c.Value.String() != "false" {
		t.Errorf("folded value = %q, want %q", c.Value.String(), "false")
	}
}

func TestOptimizePreservesArrayWithMixedDeterminism(t *testing.T) {
	tr := optimizeSource(t, "[1 + 1, input.x]", []string{"input"})

	arr, ok := tr.Root.(*tree.ArrayNode)
	if !ok {
		t.Fatalf("Root type = %T, want *tree.ArrayNode", tr.Root)
	}
	if _, ok := arr.Elements[0].Value.(*tree.ConstantNode); !ok {
		t.Errorf("Elements[0] type = %T, want folded *tree.ConstantNode", arr.Elements[0].Value)
	}
	if _, ok := arr.Elements[1].Value.(*tree.ConstantNode); ok {
		t.Errorf("Elements[1] folded to a constant, want the input-dependent selector preserved")
	}
}
