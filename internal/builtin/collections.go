package builtin

import (
	"strings"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "length", MinArgs: 1, MaxArgs: 1, Fn: biLength})
	register(&Spec{Name: "chunk", MinArgs: 2, MaxArgs: 2, Fn: biChunk})
	register(&Spec{Name: "map", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biMap})
	register(&Spec{Name: "flatmap", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biFlatmap})
	register(&Spec{Name: "filter", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biFilter})
	register(&Spec{Name: "reduce", MinArgs: 3, MaxArgs: 3, LambdaArgs: map[int]int{1: 2}, Fn: biReduce})
	register(&Spec{Name: "zip", MinArgs: 2, MaxArgs: -1, Fn: biZip})
	register(&Spec{Name: "except", MinArgs: 2, MaxArgs: 2, Fn: biExcept})
	register(&Spec{Name: "select", MinArgs: 2, MaxArgs: 2, Fn: biSelect})
	register(&Spec{Name: "distinct_by", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biDistinctBy})
	register(&Spec{Name: "contains", MinArgs: 2, MaxArgs: 2, Fn: biContains})
	register(&Spec{Name: "any", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biAny})
	register(&Spec{Name: "all", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biAll})
	register(&Spec{Name: "pairs", MinArgs: 1, MaxArgs: 1, Fn: biPairs})
	register(&Spec{Name: "to_object", MinArgs: 2, MaxArgs: 3, LambdaArgs: map[int]int{1: 1, 2: 1}, Fn: biToObject})
	register(&Spec{Name: "join", MinArgs: 2, MaxArgs: 2, Fn: biJoin})
	register(&Spec{Name: "if_value", MinArgs: 2, MaxArgs: 2, LambdaArgs: map[int]int{1: 1}, Fn: biIfValue})
}

func biLength(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	switch vv := v.(type) {
	case kvalue.String:
		return kvalue.Int(len([]rune(string(vv)))), nil
	case kvalue.Array:
		return kvalue.Int(vv.Len()), nil
	case kvalue.Object:
		return kvalue.Int(vv.Len()), nil
	default:
		return nil, typeErr("length: argument must be a string, array, or object")
	}
}

func biChunk(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(vs[0])
	if !ok {
		return nil, typeErr("chunk: first argument must be an array")
	}
	n, ok := asFloat(vs[1])
	if !ok || int(n) <= 0 {
		return nil, invalidOp("chunk: size must be a positive number")
	}
	size := int(n)

	elems := arr.Elements()
	var chunks []kvalue.Value
	for i := 0; i < len(elems); i += size {
		end := i + size
		if end > len(elems) {
			end = len(elems)
		}
		part := make([]kvalue.Value, end-i)
		copy(part, elems[i:end])
		chunks = append(chunks, kvalue.NewArray(part))
	}

	return kvalue.NewArray(chunks), nil
}

func biMap(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("map: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("map: second argument must be a function")
	}

	out := make([]kvalue.Value, arr.Len())
	for i, e := range arr.Elements() {
		r, err := fn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		out[i] = r
	}

	return kvalue.NewArray(out), nil
}

func biFlatmap(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("flatmap: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("flatmap: second argument must be a function")
	}

	var out []kvalue.Value
	for _, e := range arr.Elements() {
		r, err := fn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		sub, ok := asArray(r)
		if !ok {
			return nil, typeErr("flatmap: function must return an array")
		}
		out = append(out, sub.Elements()...)
	}

	return kvalue.NewArray(out), nil
}

func biFilter(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("filter: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("filter: second argument must be a function")
	}

	var out []kvalue.Value
	for _, e := range arr.Elements() {
		r, err := fn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		if kvalue.IsTruthy(r) {
			out = append(out, e)
		}
	}

	return kvalue.NewArray(out), nil
}

func biReduce(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("reduce: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("reduce: second argument must be a function")
	}
	acc, err := inv.Eval(args[2])
	if err != nil {
		return nil, err
	}

	for _, e := range arr.Elements() {
		acc, err = fn.Call([]kvalue.Value{acc, e})
		if err != nil {
			return nil, err
		}
	}

	return acc, nil
}

func biZip(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	arrs := make([]kvalue.Array, len(vs))
	minLen := -1
	for i, v := range vs {
		a, ok := asArray(v)
		if !ok {
			return nil, typeErr("zip: all arguments must be arrays")
		}
		arrs[i] = a
		if minLen == -1 || a.Len() < minLen {
			minLen = a.Len()
		}
	}
	if minLen < 0 {
		minLen = 0
	}

	out := make([]kvalue.Value, minLen)
	for i := 0; i < minLen; i++ {
		tuple := make([]kvalue.Value, len(arrs))
		for j, a := range arrs {
			tuple[j], _ = a.Get(i)
		}
		out[i] = kvalue.NewArray(tuple)
	}

	return kvalue.NewArray(out), nil
}

// biExcept returns the elements of the first array that are not present
// (by structural equality) in the second.
func biExcept(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	a, ok1 := asArray(vs[0])
	b, ok2 := asArray(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("except: arguments must be arrays")
	}

	var out []kvalue.Value
	for _, e := range a.Elements() {
		found := false
		for _, o := range b.Elements() {
			if e.Equals(o) {
				found = true

				break
			}
		}
		if !found {
			out = append(out, e)
		}
	}

	return kvalue.NewArray(out), nil
}

// biSelect projects an object down to the fields named in the second
// argument's array of strings, in the order those names are listed.
func biSelect(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	obj, ok := asObject(vs[0])
	if !ok {
		return nil, typeErr("select: first argument must be an object")
	}
	keys, ok := asArray(vs[1])
	if !ok {
		return nil, typeErr("select: second argument must be an array of field names")
	}

	out := kvalue.EmptyObject()
	for _, k := range keys.Elements() {
		name, ok := asString(k)
		if !ok {
			return nil, typeErr("select: field names must be strings")
		}
		if v, ok := obj.Get(name); ok {
			out = out.With(name, v)
		}
	}

	return out, nil
}

func biDistinctBy(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("distinct_by: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("distinct_by: second argument must be a function")
	}

	var out []kvalue.Value
	var seen []kvalue.Value
	for _, e := range arr.Elements() {
		key, err := fn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		dup := false
		for _, s := range seen {
			if s.Equals(key) {
				dup = true

				break
			}
		}
		if !dup {
			seen = append(seen, key)
			out = append(out, e)
		}
	}

	return kvalue.NewArray(out), nil
}

// biContains tests membership polymorphically: array element, string
// substring, or object key.
func biContains(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}

	switch coll := vs[0].(type) {
	case kvalue.Array:
		for _, e := range coll.Elements() {
			if e.Equals(vs[1]) {
				return kvalue.Bool(true), nil
			}
		}

		return kvalue.Bool(false), nil
	case kvalue.String:
		needle, ok := asString(vs[1])
		if !ok {
			return nil, typeErr("contains: searching a string requires a string needle")
		}

		return kvalue.Bool(strings.Contains(string(coll), needle)), nil
	case kvalue.Object:
		key, ok := asString(vs[1])
		if !ok {
			return nil, typeErr("contains: searching an object requires a string key")
		}
		_, ok = coll.Get(key)

		return kvalue.Bool(ok), nil
	default:
		return nil, typeErr("contains: first argument must be an array, string, or object")
	}
}

func biAny(inv Invoker, args []Node) (kvalue.Value, error) {
	return anyAll(inv, args, true)
}

func biAll(inv Invoker, args []Node) (kvalue.Value, error) {
	return anyAll(inv, args, false)
}

func anyAll(inv Invoker, args []Node, wantAny bool) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("any/all: first argument must be an array")
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("any/all: second argument must be a function")
	}

	for _, e := range arr.Elements() {
		r, err := fn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		truthy := kvalue.IsTruthy(r)
		if wantAny && truthy {
			return kvalue.Bool(true), nil
		}
		if !wantAny && !truthy {
			return kvalue.Bool(false), nil
		}
	}

	return kvalue.Bool(!wantAny), nil
}

// biPairs turns an object into an array of {key, value} objects, in the
// object's own field order.
func biPairs(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, typeErr("pairs: argument must be an object")
	}

	out := make([]kvalue.Value, 0, obj.Len())
	for _, k := range obj.Keys() {
		val, _ := obj.Get(k)
		pair := kvalue.EmptyObject().With("key", kvalue.String(k)).With("value", val)
		out = append(out, pair)
	}

	return kvalue.NewArray(out), nil
}

// biToObject builds an object from an array: keyλ extracts the field name
// for each element (must produce a stringifyable value), and the optional
// valueλ transforms the element into the field's value (defaulting to the
// element itself).
func biToObject(inv Invoker, args []Node) (kvalue.Value, error) {
	coll, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(coll)
	if !ok {
		return nil, typeErr("to_object: first argument must be an array")
	}
	keyFnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	keyFn, ok := asCallable(keyFnVal)
	if !ok {
		return nil, typeErr("to_object: second argument must be a function")
	}
	var valueFn kvalue.Callable
	if len(args) == 3 {
		valueFnVal, err := inv.Eval(args[2])
		if err != nil {
			return nil, err
		}
		valueFn, ok = asCallable(valueFnVal)
		if !ok {
			return nil, typeErr("to_object: third argument must be a function")
		}
	}

	out := kvalue.EmptyObject()
	for _, e := range arr.Elements() {
		keyVal, err := keyFn.Call([]kvalue.Value{e})
		if err != nil {
			return nil, err
		}
		key, ok := stringify(keyVal)
		if !ok {
			return nil, typeErr("to_object: key function must return a stringifyable value")
		}

		value := e
		if valueFn != nil {
			value, err = valueFn.Call([]kvalue.Value{e})
			if err != nil {
				return nil, err
			}
		}
		out = out.With(key, value)
	}

	return out, nil
}

// biJoin merges two objects field-by-field; on a key collision the second
// argument wins, matching spec.md's "join(obj, obj) (merge, right wins)".
func biJoin(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	a, ok1 := asObject(vs[0])
	b, ok2 := asObject(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("join: arguments must be objects")
	}

	out := a
	for _, k := range b.Keys() {
		v, _ := b.Get(k)
		out = out.With(k, v)
	}

	return out, nil
}

// biIfValue applies λ to x iff x is non-null, passing null through
// untouched and never invoking λ on it.
func biIfValue(inv Invoker, args []Node) (kvalue.Value, error) {
	x, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	if x.Kind() == kvalue.KindNull {
		return kvalue.Null, nil
	}
	fnVal, err := inv.Eval(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(fnVal)
	if !ok {
		return nil, typeErr("if_value: second argument must be a function")
	}

	return fn.Call([]kvalue.Value{x})
}
