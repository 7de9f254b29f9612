package builtin

import (
	"math"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "pow", MinArgs: 2, MaxArgs: 2, Fn: biPow})
	register(&Spec{Name: "log", MinArgs: 1, MaxArgs: 2, Fn: biLog})
	register(&Spec{Name: "atan2", MinArgs: 2, MaxArgs: 2, Fn: biAtan2})
	register(&Spec{Name: "floor", MinArgs: 1, MaxArgs: 1, Fn: unaryMathFn(math.Floor)})
	register(&Spec{Name: "ceil", MinArgs: 1, MaxArgs: 1, Fn: unaryMathFn(math.Ceil)})
	register(&Spec{Name: "round", MinArgs: 1, MaxArgs: 1, Fn: unaryMathFn(math.Round)})
	register(&Spec{Name: "sum", MinArgs: 1, MaxArgs: 1, Fn: biSum})
	register(&Spec{Name: "min", MinArgs: 1, MaxArgs: -1, Fn: biMin})
	register(&Spec{Name: "max", MinArgs: 1, MaxArgs: -1, Fn: biMax})
	register(&Spec{Name: "float", MinArgs: 1, MaxArgs: 1, Fn: biFloat})
	register(&Spec{Name: "int", MinArgs: 1, MaxArgs: 1, Fn: biInt})
}

func biPow(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	base, ok := asFloat(vs[0])
	if !ok {
		return nil, typeErr("pow: base must be a number")
	}
	exp, ok := asFloat(vs[1])
	if !ok {
		return nil, typeErr("pow: exponent must be a number")
	}

	return kvalue.Float(math.Pow(base, exp)), nil
}

func biLog(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	x, ok := asFloat(vs[0])
	if !ok {
		return nil, typeErr("log: argument must be a number")
	}
	if len(vs) == 1 {
		return kvalue.Float(math.Log(x)), nil
	}
	base, ok := asFloat(vs[1])
	if !ok {
		return nil, typeErr("log: base must be a number")
	}

	return kvalue.Float(math.Log(x) / math.Log(base)), nil
}

func biAtan2(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	y, ok1 := asFloat(vs[0])
	x, ok2 := asFloat(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("atan2: arguments must be numbers")
	}

	return kvalue.Float(math.Atan2(y, x)), nil
}

func unaryMathFn(f func(float64) float64) Func {
	return func(inv Invoker, args []Node) (kvalue.Value, error) {
		vs, err := evalAll(inv, args)
		if err != nil {
			return nil, err
		}
		x, ok := asFloat(vs[0])
		if !ok {
			return nil, typeErr("expected a number")
		}

		return kvalue.Float(f(x)), nil
	}
}

func biSum(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(vs[0])
	if !ok {
		return nil, typeErr("sum: argument must be an array")
	}

	// Matches the evaluator's matching-signedness rule (spec.md §4.5):
	// an all-Int array sums as Int, an all-Uint array sums as Uint, and
	// any mix (including a Float) sums as Float.
	allSigned, allUnsigned := true, true
	var isum int64
	var usum uint64
	var fsum float64
	for _, e := range arr.Elements() {
		switch ev := e.(type) {
		case kvalue.Int:
			allUnsigned = false
			isum += int64(ev)
			fsum += float64(ev)
		case kvalue.Uint:
			allSigned = false
			usum += uint64(ev)
			fsum += float64(ev)
		case kvalue.Float:
			allSigned, allUnsigned = false, false
			fsum += float64(ev)
		default:
			return nil, typeErr("sum: array elements must be numbers")
		}
	}
	switch {
	case allSigned:
		return kvalue.Int(isum), nil
	case allUnsigned:
		return kvalue.Uint(usum), nil
	default:
		return kvalue.Float(fsum), nil
	}
}

func biMin(inv Invoker, args []Node) (kvalue.Value, error) {
	return minMax(inv, args, false)
}

func biMax(inv Invoker, args []Node) (kvalue.Value, error) {
	return minMax(inv, args, true)
}

// minMax implements min/max over either a single array argument or a
// variadic list of numbers, following the common convention in the
// retrieved pack's query-language builtins of overloading aggregate
// functions both ways.
func minMax(inv Invoker, args []Node, wantMax bool) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}

	nums := vs
	if len(vs) == 1 {
		if arr, ok := asArray(vs[0]); ok {
			nums = arr.Elements()
		}
	}
	if len(nums) == 0 {
		return nil, invalidOp("min/max: no elements")
	}

	best := nums[0]
	bestF, ok := asFloat(best)
	if !ok {
		return nil, typeErr("min/max: elements must be numbers")
	}
	for _, n := range nums[1:] {
		f, ok := asFloat(n)
		if !ok {
			return nil, typeErr("min/max: elements must be numbers")
		}
		if (wantMax && f > bestF) || (!wantMax && f < bestF) {
			best, bestF = n, f
		}
	}

	return best, nil
}

func biFloat(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	f, ok := asFloat(vs[0])
	if !ok {
		return nil, typeErr("float: argument must be a number")
	}

	return kvalue.Float(f), nil
}

func biInt(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	switch vv := vs[0].(type) {
	case kvalue.Int:
		return vv, nil
	case kvalue.Uint:
		return kvalue.Int(int64(vv)), nil
	case kvalue.Float:
		return kvalue.Int(int64(vv)), nil
	default:
		return nil, typeErr("int: argument must be a number")
	}
}
