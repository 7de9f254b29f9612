package evaluator

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/token"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// Eval is the evaluator's entry point: given an executable-tree node and
// the current run's state, produce a Value or a TransformError. Every call
// bumps the op-counter by one before doing anything else, matching
// spec.md's "incremented once per evaluator node entry".
func Eval(n tree.Node, st *State) (kvalue.Value, error) {
	if err := st.charge(); err != nil {
		return nil, err
	}

	switch node := n.(type) {
	case *tree.ConstantNode:
		return node.Value, nil
	case *tree.VarNode:
		return evalVar(node, st)
	case *tree.SelectorNode:
		return evalSelector(node, st)
	case *tree.BinaryNode:
		return evalBinary(node, st)
	case *tree.UnaryNode:
		return evalUnary(node, st)
	case *tree.IsNode:
		return evalIs(node, st)
	case *tree.ArrayNode:
		return evalArray(node, st)
	case *tree.ObjectNode:
		return evalObject(node, st)
	case *tree.IfNode:
		return evalIf(node, st)
	case *tree.CallNode:
		return evalCall(node, st)
	case *tree.LambdaNode:
		return &lambdaClosure{node: node, st: st}, nil
	default:
		return nil, &kerr.TransformError{Kind: kerr.IncorrectType, Message: fmt.Sprintf("unsupported node %T", n)}
	}
}

func typeErr(span token.Span, msg string) error {
	return &kerr.TransformError{Kind: kerr.IncorrectType, Span: kerr.Spanned(span), Message: msg}
}

func invalidOp(span token.Span, msg string) error {
	return &kerr.TransformError{Kind: kerr.InvalidOperation, Span: kerr.Spanned(span), Message: msg}
}

func sourceMissing(span token.Span, name string) error {
	return &kerr.TransformError{Kind: kerr.SourceMissing, Span: kerr.Spanned(span), Message: fmt.Sprintf("missing value for %q", name)}
}
