package ktype

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// InferState threads the per-run input types (and, for a lambda body
// currently being inferred, the types of its parameters) through a single
// Infer pass, mirroring the flat slot-indexed array evaluator.State uses
// at runtime (spec.md §4.6: the inferencer walks the same executable tree
// the evaluator does, so it reuses the same slot addressing model).
type InferState struct {
	Slots []Type
}

// NewInferState seeds an InferState with a program's top-level input
// types.
func NewInferState(inputTypes []Type) *InferState {
	return &InferState{Slots: append([]Type(nil), inputTypes...)}
}

func (s *InferState) pushFrame(vals []Type) int {
	base := len(s.Slots)
	s.Slots = append(s.Slots, vals...)

	return base
}

func (s *InferState) popFrame(base int) {
	s.Slots = s.Slots[:base]
}

// typeErrAt reports that some expression cannot be typed against the
// supplied input types. Per spec.md §7, type errors are informational —
// hosts may still execute a program that failed inference — so Infer
// returns them as an ordinary error (a *kerr.TransformError, the same
// carrier the evaluator uses) rather than a distinct error type.
func typeErrAt(n tree.Node, format string, args ...interface{}) error {
	span := n.Span()

	return &kerr.TransformError{Kind: kerr.IncorrectType, Span: kerr.Spanned(span), Message: fmt.Sprintf(format, args...)}
}

// Infer computes the static type of n against st, implementing spec.md
// §4.6's per-construct rules: arithmetic promotion mirrors the
// evaluator's; if/else discards branches whose condition type can never
// be truthy; coalesce unions the non-null parts of its operands;
// map/filter/to_object narrow their collection's element/field shapes.
func Infer(n tree.Node, st *InferState) (Type, error) {
	switch node := n.(type) {
	case *tree.ConstantNode:
		return FromValue(node.Value), nil

	case *tree.VarNode:
		if node.Slot < 0 || node.Slot >= len(st.Slots) {
			return Type{}, typeErrAt(n, "unknown slot $%d", node.Slot)
		}

		return st.Slots[node.Slot], nil

	case *tree.SelectorNode:
		return inferSelector(node, st)

	case *tree.BinaryNode:
		return inferBinary(node, st)

	case *tree.UnaryNode:
		operand, err := Infer(node.Operand, st)
		if err != nil {
			return Type{}, err
		}
		if node.Op == ast.OpNot {
			return BoolT(), nil
		}

		return inferNegate(operand), nil

	case *tree.IsNode:
		return BoolT(), nil

	case *tree.ArrayNode:
		return inferArray(node, st)

	case *tree.ObjectNode:
		return inferObject(node, st)

	case *tree.IfNode:
		return inferIf(node, st)

	case *tree.CallNode:
		return inferCall(node, st)

	case *tree.LambdaNode:
		// A lambda has no type on its own outside of the call that invokes
		// it; callers (inferCall) type it by pushing parameter types and
		// inferring the body directly.
		return AnyT(), nil

	default:
		return Type{}, typeErrAt(n, "cannot infer type of %T", n)
	}
}

func inferNegate(t Type) Type {
	switch t.BaseKind() {
	case IntKind:
		return IntT()
	case FloatKind:
		return FloatT()
	default:
		return NumberT()
	}
}

func inferSelector(node *tree.SelectorNode, st *InferState) (Type, error) {
	cur, err := Infer(node.Base, st)
	if err != nil {
		return Type{}, err
	}
	for _, step := range node.Steps {
		cur = cur.IntersectNullStrip()
		if step.Kind == tree.StepField {
			ft, ok := cur.FieldType(step.Field)
			if !ok {
				if cur.Kind == AnyKind {
					return AnyT(), nil
				}

				return Type{}, typeErrAt(node, "no field %q on %s", step.Field, cur.String())
			}
			cur = ft

			continue
		}

		prefix, tail, ok := cur.TryAsArray()
		if !ok {
			if cur.Kind == AnyKind {
				return AnyT(), nil
			}

			return Type{}, typeErrAt(node, "cannot index into %s", cur.String())
		}
		cur = elementUnion(prefix, tail)
		if tail != nil {
			cur = Nullable(cur)
		}
	}

	return cur, nil
}

func inferBinary(node *tree.BinaryNode, st *InferState) (Type, error) {
	left, err := Infer(node.Left, st)
	if err != nil {
		return Type{}, err
	}

	switch node.Op {
	case ast.OpAnd, ast.OpOr:
		return BoolT(), nil
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if _, err := Infer(node.Right, st); err != nil {
			return Type{}, err
		}

		return BoolT(), nil
	}

	right, err := Infer(node.Right, st)
	if err != nil {
		return Type{}, err
	}

	if node.Op == ast.OpDiv {
		return FloatT(), nil
	}

	lb, rb := left.BaseKind(), right.BaseKind()
	if lb == IntKind && rb == IntKind {
		return IntT(), nil
	}
	if (lb == IntKind || lb == FloatKind || lb == NumberKind) && (rb == IntKind || rb == FloatKind || rb == NumberKind) {
		return FloatT(), nil
	}
	if node.Op == ast.OpAdd && lb == StringKind && rb == StringKind {
		return Type{}, typeErrAt(node, "+ is not defined on strings (use concat())")
	}

	return AnyT(), nil
}

func inferArray(node *tree.ArrayNode, st *InferState) (Type, error) {
	var prefix []Type
	var tail *Type
	for _, e := range node.Elements {
		et, err := Infer(e.Value, st)
		if err != nil {
			return Type{}, err
		}
		if e.Spread {
			p, t, ok := et.TryAsArray()
			if !ok {
				return Type{}, typeErrAt(node, "cannot spread non-array into array literal")
			}
			prefix = append(prefix, p...)
			if t != nil {
				u := elementUnion(nil, t)
				if tail != nil {
					u = tail.UnionWith(u)
				}
				tail = &u
			}

			continue
		}
		prefix = append(prefix, et)
	}

	return Type{Kind: ArrayKind, Prefix: prefix, Tail: tail}, nil
}

func inferObject(node *tree.ObjectNode, st *InferState) (Type, error) {
	var fields []ObjectField
	for _, f := range node.Fields {
		if f.Spread != nil {
			st2, err := Infer(f.Spread, st)
			if err != nil {
				return Type{}, err
			}
			spreadFields, ok := st2.TryAsObject()
			if !ok {
				return Type{}, typeErrAt(node, "cannot spread non-object into object literal")
			}
			fields = append(fields, spreadFields...)

			continue
		}
		ft, err := Infer(f.Value, st)
		if err != nil {
			return Type{}, err
		}
		fields = append(fields, ObjectField{Name: f.Key, Type: ft})
	}

	return Type{Kind: ObjectKind, Fields: fields}, nil
}

// inferIf unions the types of every branch whose condition cannot be
// proven dead (Truthyness() == NeverTruthy), per spec.md §4.6: a branch
// guarded by a condition known to never hold contributes nothing to the
// result type. If some earlier branch is known to always hold, later
// branches are unreachable and are skipped entirely.
func inferIf(node *tree.IfNode, st *InferState) (Type, error) {
	result := NeverT()
	exhaustive := false
	for _, br := range node.Branches {
		always := true
		if br.Cond != nil {
			condT, err := Infer(br.Cond, st)
			if err != nil {
				return Type{}, err
			}
			switch condT.Truthyness() {
			case NeverTruthy:
				continue
			case Maybe:
				always = false
			}
		}
		thenType, err := Infer(br.Then, st)
		if err != nil {
			return Type{}, err
		}
		result = result.UnionWith(thenType)
		if always {
			exhaustive = true

			break
		}
	}
	if !exhaustive {
		result = result.UnionWith(NullT())
	}

	return result, nil
}

func inferCall(node *tree.CallNode, st *InferState) (Type, error) {
	argTypes := make([]Type, len(node.Args))
	for i, a := range node.Args {
		if _, isLambda := node.Spec.LambdaArityAt(i); isLambda {
			continue
		}
		t, err := Infer(a, st)
		if err != nil {
			return Type{}, err
		}
		argTypes[i] = t
	}

	switch node.Name {
	case "coalesce":
		// spec.md §4.6: union each argument's non-null part left to right
		// until a guaranteed-non-null argument appears; stop there (later
		// arguments are unreachable once one always wins). If none do, the
		// result stays nullable.
		result := NeverT()
		nullable := true
		for _, t := range argTypes {
			result = result.UnionWith(t.IntersectNullStrip())
			if !t.admitsNull() {
				nullable = false

				break
			}
		}
		if nullable {
			return Nullable(result), nil
		}

		return result, nil

	case "parse_json":
		if argTypes[0].IsAssignableTo(StringT()) {
			return AnyT(), nil
		}

		return argTypes[0], nil

	case "map", "flatmap":
		return inferMapLike(node, st, argTypes[0])

	case "filter":
		return inferFilter(node, st, argTypes[0])

	case "to_object":
		return inferToObject(node, st, argTypes[0])

	case "length":
		return IntT(), nil

	case "contains", "any", "all":
		return BoolT(), nil

	default:
		return AnyT(), nil
	}
}

func lambdaBodyType(node *tree.CallNode, argIndex int, st *InferState, paramTypes []Type) (Type, error) {
	lam, ok := node.Args[argIndex].(*tree.LambdaNode)
	if !ok {
		return AnyT(), nil
	}
	base := st.pushFrame(paramTypes)
	t, err := Infer(lam.Body, st)
	st.popFrame(base)

	return t, err
}

func inferMapLike(node *tree.CallNode, st *InferState, coll Type) (Type, error) {
	prefix, tail, ok := coll.TryAsArray()
	if !ok {
		if coll.Kind == AnyKind {
			return AnyT(), nil
		}

		return Type{}, typeErrAt(node, "%s: not an array", node.Name)
	}

	newPrefix := make([]Type, len(prefix))
	for i, p := range prefix {
		t, err := lambdaBodyType(node, 1, st, []Type{p})
		if err != nil {
			return Type{}, err
		}
		newPrefix[i] = t
	}
	var newTail *Type
	if tail != nil {
		t, err := lambdaBodyType(node, 1, st, []Type{*tail})
		if err != nil {
			return Type{}, err
		}
		newTail = &t
	}

	return Type{Kind: ArrayKind, Prefix: newPrefix, Tail: newTail}, nil
}

func inferFilter(node *tree.CallNode, st *InferState, coll Type) (Type, error) {
	prefix, tail, ok := coll.TryAsArray()
	if !ok {
		if coll.Kind == AnyKind {
			return AnyT(), nil
		}

		return Type{}, typeErrAt(node, "filter: not an array")
	}

	var keptPrefix []Type
	uncertain := NeverT()
	for _, p := range prefix {
		predType, err := lambdaBodyType(node, 1, st, []Type{p})
		if err != nil {
			return Type{}, err
		}
		switch predType.Truthyness() {
		case Always:
			keptPrefix = append(keptPrefix, p)
		case NeverTruthy:
			// dropped entirely
		default:
			uncertain = uncertain.UnionWith(p)
		}
	}
	var newTail *Type
	if tail != nil {
		predType, err := lambdaBodyType(node, 1, st, []Type{*tail})
		if err != nil {
			return Type{}, err
		}
		if predType.Truthyness() != NeverTruthy {
			u := tail.UnionWith(uncertain)
			newTail = &u
		} else if uncertain.Kind != Never {
			newTail = &uncertain
		}
	} else if uncertain.Kind != Never {
		newTail = &uncertain
	}

	return Type{Kind: ArrayKind, Prefix: keptPrefix, Tail: newTail}, nil
}

// stringifyableT is the set of key types to_object accepts: the runtime
// converts each of them to a field name.
var stringifyableT = Type{Kind: UnionKind, Options: []Type{StringT(), NumberT(), BoolT(), NullT()}}

func inferToObject(node *tree.CallNode, st *InferState, coll Type) (Type, error) {
	prefix, tail, ok := coll.TryAsArray()
	if !ok {
		if coll.Kind == AnyKind {
			return AnyT(), nil
		}

		return Type{}, typeErrAt(node, "to_object: not an array")
	}

	var fields []ObjectField
	seenWildcard := false
	for _, p := range prefix {
		keyType, err := lambdaBodyType(node, 1, st, []Type{p})
		if err != nil {
			return Type{}, err
		}
		valType := p
		if len(node.Args) == 3 {
			valType, err = lambdaBodyType(node, 2, st, []Type{p})
			if err != nil {
				return Type{}, err
			}
		}
		if keyType.Kind == LiteralKind && keyType.Literal.Kind() == kvalue.KindString {
			fields = append(fields, ObjectField{Name: string(keyType.Literal.(kvalue.String)), Type: valType})

			continue
		}
		if !keyType.IsAssignableTo(stringifyableT) {
			return Type{}, typeErrAt(node, "to_object: key function must return a stringifyable value")
		}
		if !seenWildcard {
			fields = append(fields, ObjectField{Wildcard: true, Type: valType})
			seenWildcard = true
		}
	}
	if tail != nil {
		keyType, err := lambdaBodyType(node, 1, st, []Type{*tail})
		if err != nil {
			return Type{}, err
		}
		valType := *tail
		if len(node.Args) == 3 {
			valType, err = lambdaBodyType(node, 2, st, []Type{*tail})
			if err != nil {
				return Type{}, err
			}
		}
		if !keyType.IsAssignableTo(stringifyableT) {
			return Type{}, typeErrAt(node, "to_object: key function must return a stringifyable value")
		}
		if !seenWildcard {
			fields = append(fields, ObjectField{Wildcard: true, Type: valType})
		}
	}

	return Type{Kind: ObjectKind, Fields: fields}, nil
}
