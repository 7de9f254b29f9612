// Package optimizer implements C4.4: partial evaluation over an empty
// ("all inputs missing") execution state. Grounded on spec.md §4.4's
// algorithm directly — the teacher repo has no analogous pass (Nix
// expressions are evaluated lazily by the host, not partially folded ahead
// of time) — so this is new code following the spec's own description,
// reusing internal/evaluator's Eval to do the actual trial evaluation
// rather than re-implementing node semantics a second time.
package optimizer

import (
	"errors"

	"github.com/kuiper-lang/kuiper/internal/evaluator"
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// DefaultOperationLimit is spec.md's default optimizer_operation_limit.
const DefaultOperationLimit = 100_000

// Optimize folds every constant-foldable subtree of t into a
// tree.ConstantNode, sharing one operation-counter budget across the whole
// pass. operationLimit is used as given: a negative value disables the
// limit and 0 allows no operations; the root kuiper package passes
// DefaultOperationLimit when its config leaves the limit at 0.
func Optimize(t *tree.Tree, operationLimit int) (*tree.Tree, error) {
	trial := evaluator.NewState(make([]kvalue.Value, t.NumInputs), operationLimit, false)

	root, err := optimizeNode(t.Root, trial)
	if err != nil {
		return nil, err
	}

	return &tree.Tree{Root: root, NumInputs: t.NumInputs}, nil
}

func optimizerErr(n tree.Node, err error) error {
	s := n.Span()

	return &kerr.CompileError{Kind: kerr.Optimizer, Span: &s, Message: err.Error()}
}

// optimizeNode implements the four-way algorithm of spec.md §4.4: leaves
// are left alone; otherwise a trial evaluation against the (empty) state
// either folds the node to a constant, leaves it in place (non-deterministic
// success), recurses into children (SourceMissing), or surfaces as a hard
// compile error (any other failure).
func optimizeNode(n tree.Node, trial *evaluator.State) (tree.Node, error) {
	if isLeaf(n) {
		return n, nil
	}

	val, err := evaluator.Eval(n, trial)
	if err == nil {
		if n.Deterministic() {
			return tree.NewConstant(n.Span(), val), nil
		}

		return n, nil
	}

	var te *kerr.TransformError
	if errors.As(err, &te) && te.Kind == kerr.SourceMissing {
		return optimizeChildren(n, trial)
	}

	return nil, optimizerErr(n, err)
}

func isLeaf(n tree.Node) bool {
	switch n.(type) {
	case *tree.ConstantNode, *tree.VarNode:
		return true
	default:
		return false
	}
}
