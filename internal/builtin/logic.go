// Logic builtins are all lazy (short-circuiting): each decides for itself
// which argument nodes to evaluate, so that an error or expensive
// computation in an untaken branch never runs. This mirrors the
// language's if/else expression and &&/|| operators, which the evaluator
// also short-circuits.
package builtin

import "github.com/kuiper-lang/kuiper/internal/kvalue"

func init() {
	register(&Spec{Name: "if", MinArgs: 2, MaxArgs: 3, Fn: biIf})
	register(&Spec{Name: "case", MinArgs: 3, MaxArgs: -1, Fn: biCase})
	register(&Spec{Name: "coalesce", MinArgs: 1, MaxArgs: -1, Fn: biCoalesce})
}

func biIf(inv Invoker, args []Node) (kvalue.Value, error) {
	cond, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	if kvalue.IsTruthy(cond) {
		return inv.Eval(args[1])
	}
	if len(args) == 3 {
		return inv.Eval(args[2])
	}

	return kvalue.Null, nil
}

// biCase implements case(key, k1, v1, k2, v2, ..., [default]): key is
// compared by structural equality against each ki in turn; the first
// match's value is returned. A trailing unpaired argument is the
// fallback; with no match and no fallback the result is null.
func biCase(inv Invoker, args []Node) (kvalue.Value, error) {
	key, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}

	i := 1
	for i+1 < len(args) {
		k, err := inv.Eval(args[i])
		if err != nil {
			return nil, err
		}
		if key.Equals(k) {
			return inv.Eval(args[i+1])
		}
		i += 2
	}
	if i < len(args) {
		return inv.Eval(args[i])
	}

	return kvalue.Null, nil
}

// biCoalesce returns the first non-null argument, evaluating arguments
// left to right and stopping as soon as one is found, never evaluating
// (or erroring on) the rest.
func biCoalesce(inv Invoker, args []Node) (kvalue.Value, error) {
	for _, a := range args {
		v, err := inv.Eval(a)
		if err != nil {
			return nil, err
		}
		if v.Kind() != kvalue.KindNull {
			return v, nil
		}
	}

	return kvalue.Null, nil
}
