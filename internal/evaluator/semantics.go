package evaluator

import (
	"math"

	"github.com/kuiper-lang/kuiper/internal/ast"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

func evalVar(n *tree.VarNode, st *State) (kvalue.Value, error) {
	if n.Slot < 0 || n.Slot >= len(st.Inputs) || st.Inputs[n.Slot] == nil {
		return nil, sourceMissing(n.Span(), n.Name)
	}

	return st.Inputs[n.Slot], nil
}

func evalSelector(n *tree.SelectorNode, st *State) (kvalue.Value, error) {
	cur, err := Eval(n.Base, st)
	if err != nil {
		return nil, err
	}

	for _, step := range n.Steps {
		if step.Kind == tree.StepField {
			obj, ok := cur.(kvalue.Object)
			if !ok {
				return nil, typeErr(n.Span(), "field access on a non-object value")
			}
			st.Completions.record(n.Span(), obj.Keys())
			v, ok := obj.Get(step.Field)
			if !ok {
				cur = kvalue.Null

				continue
			}
			cur = v

			continue
		}

		key, err := Eval(step.Index, st)
		if err != nil {
			return nil, err
		}
		switch k := key.(type) {
		case kvalue.Int, kvalue.Uint:
			arr, ok := cur.(kvalue.Array)
			if !ok {
				return nil, typeErr(n.Span(), "index access on a non-array value")
			}
			idx, ok := asIndex(k)
			if !ok {
				cur = kvalue.Null

				continue
			}
			v, ok := arr.Get(idx)
			if !ok {
				cur = kvalue.Null

				continue
			}
			cur = v
		case kvalue.String:
			obj, ok := cur.(kvalue.Object)
			if !ok {
				return nil, typeErr(n.Span(), "string-keyed index access on a non-object value")
			}
			v, ok := obj.Get(string(k))
			if !ok {
				cur = kvalue.Null

				continue
			}
			cur = v
		default:
			return nil, typeErr(n.Span(), "index must be a number or string")
		}
	}

	return cur, nil
}

// asIndex converts an Int or Uint key from a selector's index expression
// into a plain int, rejecting a Uint too large to represent as one (above
// math.MaxInt64 on 64-bit platforms); evalSelector treats such an index as
// past the end of the array.
func asIndex(v kvalue.Value) (int, bool) {
	switch vv := v.(type) {
	case kvalue.Int:
		return int(vv), true
	case kvalue.Uint:
		if uint64(vv) > uint64(^uint(0)>>1) {
			return 0, false
		}

		return int(vv), true
	default:
		return 0, false
	}
}

// numClass distinguishes the three numeric representations arithmetic
// must promote between: spec.md §4.5 requires matching-signedness integer
// addition (Int+Int or Uint+Uint), anything else promoting to Float.
type numClass int

const (
	numSigned numClass = iota
	numUnsigned
	numFloating
)

// classifyNumeric extracts a numeric Value's class plus all three
// possible numeric representations (only the one matching class is
// meaningful as an integer; f is always populated for comparisons and
// mixed-signedness arithmetic).
func classifyNumeric(v kvalue.Value) (class numClass, i int64, u uint64, f float64, ok bool) {
	switch vv := v.(type) {
	case kvalue.Int:
		return numSigned, int64(vv), 0, float64(vv), true
	case kvalue.Uint:
		return numUnsigned, 0, uint64(vv), float64(vv), true
	case kvalue.Float:
		return numFloating, 0, 0, float64(vv), true
	default:
		return 0, 0, 0, 0, false
	}
}

func evalBinary(n *tree.BinaryNode, st *State) (kvalue.Value, error) {
	switch n.Op {
	case ast.OpAnd:
		left, err := Eval(n.Left, st)
		if err != nil {
			return nil, err
		}
		if !kvalue.IsTruthy(left) {
			return kvalue.Bool(false), nil
		}
		right, err := Eval(n.Right, st)
		if err != nil {
			return nil, err
		}

		return kvalue.Bool(kvalue.IsTruthy(right)), nil

	case ast.OpOr:
		left, err := Eval(n.Left, st)
		if err != nil {
			return nil, err
		}
		if kvalue.IsTruthy(left) {
			return kvalue.Bool(true), nil
		}
		right, err := Eval(n.Right, st)
		if err != nil {
			return nil, err
		}

		return kvalue.Bool(kvalue.IsTruthy(right)), nil
	}

	left, err := Eval(n.Left, st)
	if err != nil {
		return nil, err
	}
	right, err := Eval(n.Right, st)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpEq:
		return kvalue.Bool(left.Equals(right)), nil
	case ast.OpNeq:
		return kvalue.Bool(!left.Equals(right)), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return evalCompare(n, left, right)
	default:
		return evalArith(n, left, right)
	}
}

func evalCompare(n *tree.BinaryNode, left, right kvalue.Value) (kvalue.Value, error) {
	if ls, ok := left.(kvalue.String); ok {
		rs, ok := right.(kvalue.String)
		if !ok {
			return nil, typeErr(n.Span(), "cannot compare string to non-string")
		}

		return kvalue.Bool(compareOrdered(n.Op, string(ls) < string(rs), string(ls) == string(rs))), nil
	}

	lf, ok1 := asFloatValue(left)
	rf, ok2 := asFloatValue(right)
	if !ok1 || !ok2 {
		return nil, typeErr(n.Span(), "comparison requires two numbers or two strings")
	}

	return kvalue.Bool(compareOrdered(n.Op, lf < rf, lf == rf)), nil
}

func compareOrdered(op ast.BinaryOp, lt, eq bool) bool {
	switch op {
	case ast.OpLt:
		return lt
	case ast.OpLte:
		return lt || eq
	case ast.OpGt:
		return !lt && !eq
	default: // OpGte
		return !lt || eq
	}
}

func asFloatValue(v kvalue.Value) (float64, bool) {
	_, _, _, f, ok := classifyNumeric(v)

	return f, ok
}

func evalArith(n *tree.BinaryNode, left, right kvalue.Value) (kvalue.Value, error) {
	lc, li, lu, lf, lok := classifyNumeric(left)
	rc, ri, ru, rf, rok := classifyNumeric(right)
	if !lok || !rok {
		return nil, typeErr(n.Span(), "arithmetic requires numeric operands (use concat() for strings)")
	}

	bothSigned := lc == numSigned && rc == numSigned
	bothUnsigned := lc == numUnsigned && rc == numUnsigned

	switch n.Op {
	case ast.OpAdd:
		switch {
		case bothSigned:
			return kvalue.Int(li + ri), nil
		case bothUnsigned:
			return kvalue.Uint(lu + ru), nil
		default:
			return kvalue.Float(lf + rf), nil
		}
	case ast.OpSub:
		switch {
		case bothSigned:
			return kvalue.Int(li - ri), nil
		case bothUnsigned:
			return kvalue.Uint(lu - ru), nil
		default:
			return kvalue.Float(lf - rf), nil
		}
	case ast.OpMul:
		switch {
		case bothSigned:
			return kvalue.Int(li * ri), nil
		case bothUnsigned:
			return kvalue.Uint(lu * ru), nil
		default:
			return kvalue.Float(lf * rf), nil
		}
	case ast.OpDiv:
		if rf == 0 {
			return nil, invalidOp(n.Span(), "Divide by zero")
		}

		return kvalue.Float(lf / rf), nil
	case ast.OpMod:
		if rf == 0 {
			return nil, invalidOp(n.Span(), "Divide by zero")
		}
		switch {
		case bothSigned:
			return kvalue.Int(li % ri), nil
		case bothUnsigned:
			return kvalue.Uint(lu % ru), nil
		default:
			return kvalue.Float(math.Mod(lf, rf)), nil
		}
	default:
		return nil, typeErr(n.Span(), "unsupported binary operator")
	}
}

func evalUnary(n *tree.UnaryNode, st *State) (kvalue.Value, error) {
	v, err := Eval(n.Operand, st)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.OpNot {
		return kvalue.Bool(!kvalue.IsTruthy(v)), nil
	}

	class, i, _, f, ok := classifyNumeric(v)
	if !ok {
		return nil, typeErr(n.Span(), "unary - requires a number")
	}
	switch class {
	case numSigned:
		return kvalue.Int(-i), nil
	default:
		// Uint has no signed counterpart within its own domain (negating
		// a u64 escapes unsigned range), so it promotes to Float, same as
		// negating a Float itself.
		return kvalue.Float(-f), nil
	}
}

func evalIs(n *tree.IsNode, st *State) (kvalue.Value, error) {
	v, err := Eval(n.Operand, st)
	if err != nil {
		return nil, err
	}

	matches := typeLiteralMatches(n.Type, v.Kind())
	if n.Negate {
		matches = !matches
	}

	return kvalue.Bool(matches), nil
}

func typeLiteralMatches(t ast.TypeLiteral, k kvalue.Kind) bool {
	switch t {
	case ast.TypeLitNull:
		return k == kvalue.KindNull
	case ast.TypeLitBool:
		return k == kvalue.KindBool
	case ast.TypeLitInt:
		return k == kvalue.KindInt
	case ast.TypeLitFloat:
		return k == kvalue.KindFloat
	case ast.TypeLitNumber:
		return k == kvalue.KindInt || k == kvalue.KindFloat
	case ast.TypeLitString:
		return k == kvalue.KindString
	case ast.TypeLitArray:
		return k == kvalue.KindArray
	case ast.TypeLitObject:
		return k == kvalue.KindObject
	default:
		return false
	}
}

func evalArray(n *tree.ArrayNode, st *State) (kvalue.Value, error) {
	var out []kvalue.Value
	for _, el := range n.Elements {
		v, err := Eval(el.Value, st)
		if err != nil {
			return nil, err
		}
		if !el.Spread {
			out = append(out, v)

			continue
		}
		arr, ok := v.(kvalue.Array)
		if !ok {
			return nil, typeErr(n.Span(), "spread element must be an array")
		}
		out = append(out, arr.Elements()...)
	}

	return kvalue.NewArray(out), nil
}

func evalObject(n *tree.ObjectNode, st *State) (kvalue.Value, error) {
	out := kvalue.EmptyObject()
	for _, f := range n.Fields {
		if f.Spread != nil {
			v, err := Eval(f.Spread, st)
			if err != nil {
				return nil, err
			}
			obj, ok := v.(kvalue.Object)
			if !ok {
				return nil, typeErr(n.Span(), "spread field must be an object")
			}
			for _, k := range obj.Keys() {
				fv, _ := obj.Get(k)
				out = out.With(k, fv)
			}

			continue
		}

		v, err := Eval(f.Value, st)
		if err != nil {
			return nil, err
		}
		out = out.With(f.Key, v)
	}

	return out, nil
}

func evalIf(n *tree.IfNode, st *State) (kvalue.Value, error) {
	for _, br := range n.Branches {
		if br.Cond == nil {
			return Eval(br.Then, st)
		}
		cond, err := Eval(br.Cond, st)
		if err != nil {
			return nil, err
		}
		if kvalue.IsTruthy(cond) {
			return Eval(br.Then, st)
		}
	}

	return kvalue.Null, nil
}
