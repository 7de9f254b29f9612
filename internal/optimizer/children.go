package optimizer

import (
	"github.com/kuiper-lang/kuiper/internal/evaluator"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// optimizeChildren rebuilds n with each child independently optimized,
// recursing in place; it is reached only for nodes that failed their trial
// evaluation with SourceMissing (spec.md §4.4 step 2, "recurse: optimize
// each child in place").
func optimizeChildren(n tree.Node, trial *evaluator.State) (tree.Node, error) {
	switch node := n.(type) {
	case *tree.SelectorNode:
		base, err := optimizeNode(node.Base, trial)
		if err != nil {
			return nil, err
		}
		steps := make([]tree.SelectorStep, len(node.Steps))
		for i, s := range node.Steps {
			steps[i] = s
			if s.Kind == tree.StepIndex {
				idx, err := optimizeNode(s.Index, trial)
				if err != nil {
					return nil, err
				}
				steps[i].Index = idx
			}
		}

		return tree.NewSelector(node.Span(), base, steps), nil

	case *tree.BinaryNode:
		left, err := optimizeNode(node.Left, trial)
		if err != nil {
			return nil, err
		}
		right, err := optimizeNode(node.Right, trial)
		if err != nil {
			return nil, err
		}

		return tree.NewBinary(node.Span(), node.Op, left, right), nil

	case *tree.UnaryNode:
		operand, err := optimizeNode(node.Operand, trial)
		if err != nil {
			return nil, err
		}

		return tree.NewUnary(node.Span(), node.Op, operand), nil

	case *tree.IsNode:
		operand, err := optimizeNode(node.Operand, trial)
		if err != nil {
			return nil, err
		}

		return tree.NewIs(node.Span(), operand, node.Type, node.Negate), nil

	case *tree.ArrayNode:
		elems := make([]tree.ArrayElement, len(node.Elements))
		for i, e := range node.Elements {
			v, err := optimizeNode(e.Value, trial)
			if err != nil {
				return nil, err
			}
			elems[i] = tree.ArrayElement{Value: v, Spread: e.Spread}
		}

		return tree.NewArray(node.Span(), elems), nil

	case *tree.ObjectNode:
		fields := make([]tree.ObjectField, len(node.Fields))
		for i, f := range node.Fields {
			if f.Spread != nil {
				v, err := optimizeNode(f.Spread, trial)
				if err != nil {
					return nil, err
				}
				fields[i] = tree.ObjectField{Spread: v}

				continue
			}
			v, err := optimizeNode(f.Value, trial)
			if err != nil {
				return nil, err
			}
			fields[i] = tree.ObjectField{Key: f.Key, Value: v}
		}

		return tree.NewObject(node.Span(), fields), nil

	case *tree.IfNode:
		branches := make([]tree.IfBranch, len(node.Branches))
		for i, br := range node.Branches {
			then, err := optimizeNode(br.Then, trial)
			if err != nil {
				return nil, err
			}
			ib := tree.IfBranch{Then: then}
			if br.Cond != nil {
				cond, err := optimizeNode(br.Cond, trial)
				if err != nil {
					return nil, err
				}
				ib.Cond = cond
			}
			branches[i] = ib
		}

		return tree.NewIf(node.Span(), branches), nil

	case *tree.CallNode:
		args := make([]tree.Node, len(node.Args))
		for i, a := range node.Args {
			v, err := optimizeNode(a, trial)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}

		return tree.NewCall(node.Span(), node.Name, node.Spec, args), nil

	case *tree.LambdaNode:
		base := trial.PushFrame(make([]kvalue.Value, len(node.Params)))
		body, err := optimizeNode(node.Body, trial)
		trial.PopFrame(base)
		if err != nil {
			return nil, err
		}

		return tree.NewLambda(node.Span(), node.Params, node.BaseSlot, body), nil

	default:
		return n, nil
	}
}
