package builtin

import (
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func typeErr(msg string) error {
	return &kerr.TransformError{Kind: kerr.IncorrectType, Message: msg}
}

func invalidOp(msg string) error {
	return &kerr.TransformError{Kind: kerr.InvalidOperation, Message: msg}
}

func convErr(msg string) error {
	return &kerr.TransformError{Kind: kerr.ConversionFailed, Message: msg}
}

// evalAll evaluates every argument node to a Value, left to right, failing
// fast on the first error. Used by strict (eagerly-evaluated) builtins.
func evalAll(inv Invoker, args []Node) ([]kvalue.Value, error) {
	out := make([]kvalue.Value, len(args))
	for i, a := range args {
		v, err := inv.Eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// asFloat coerces an Int, Uint, or Float Value to float64.
func asFloat(v kvalue.Value) (float64, bool) {
	switch vv := v.(type) {
	case kvalue.Int:
		return float64(vv), true
	case kvalue.Uint:
		return float64(vv), true
	case kvalue.Float:
		return float64(vv), true
	default:
		return 0, false
	}
}

func asArray(v kvalue.Value) (kvalue.Array, bool) {
	a, ok := v.(kvalue.Array)

	return a, ok
}

func asObject(v kvalue.Value) (kvalue.Object, bool) {
	o, ok := v.(kvalue.Object)

	return o, ok
}

func asString(v kvalue.Value) (string, bool) {
	s, ok := v.(kvalue.String)

	return string(s), ok
}

func asCallable(v kvalue.Value) (kvalue.Callable, bool) {
	c, ok := v.(kvalue.Callable)

	return c, ok
}

// stringify renders a "stringifyable" value (String | Number | Bool |
// Null) as text, the coercion concat()/to_object() rely on.
func stringify(v kvalue.Value) (string, bool) {
	switch v.Kind() {
	case kvalue.KindNull:
		return "null", true
	case kvalue.KindString, kvalue.KindInt, kvalue.KindFloat, kvalue.KindBool:
		return v.String(), true
	default:
		return "", false
	}
}
