package builtin

import (
	"strings"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "concat", MinArgs: 0, MaxArgs: -1, Fn: biConcat})
	register(&Spec{Name: "string", MinArgs: 1, MaxArgs: 1, Fn: biString})
	register(&Spec{Name: "substring", MinArgs: 2, MaxArgs: 3, Fn: biSubstring})
	register(&Spec{Name: "replace", MinArgs: 3, MaxArgs: 3, Fn: biReplace})
	register(&Spec{Name: "split", MinArgs: 2, MaxArgs: 2, Fn: biSplit})
	register(&Spec{Name: "trim_whitespace", MinArgs: 1, MaxArgs: 1, Fn: biTrimWhitespace})
	register(&Spec{Name: "slice", MinArgs: 2, MaxArgs: 3, Fn: biSlice})
	register(&Spec{Name: "chars", MinArgs: 1, MaxArgs: 1, Fn: biChars})
	register(&Spec{Name: "tail", MinArgs: 1, MaxArgs: 1, Fn: biTail})
	register(&Spec{Name: "starts_with", MinArgs: 2, MaxArgs: 2, Fn: biStartsWith})
	register(&Spec{Name: "ends_with", MinArgs: 2, MaxArgs: 2, Fn: biEndsWith})
	register(&Spec{Name: "string_join", MinArgs: 2, MaxArgs: 2, Fn: biStringJoin})
}

// biConcat is the non-implicit "+" for strings: concat(a, b, ...) coerces
// every stringifyable argument to text and joins them with no separator.
func biConcat(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, v := range vs {
		s, ok := stringify(v)
		if !ok {
			return nil, typeErr("concat: arguments must be string, number, bool, or null")
		}
		b.WriteString(s)
	}

	return kvalue.String(b.String()), nil
}

func biString(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	s, ok := stringify(v)
	if !ok {
		return nil, typeErr("string: argument must be string, number, bool, or null")
	}

	return kvalue.String(s), nil
}

func clampRange(n, length int) int {
	if n < 0 {
		n = length + n
	}
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}

	return n
}

func biSubstring(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("substring: first argument must be a string")
	}
	runes := []rune(s)

	start, ok := asFloat(vs[1])
	if !ok {
		return nil, typeErr("substring: start must be a number")
	}
	from := clampRange(int(start), len(runes))
	to := len(runes)
	if len(vs) == 3 {
		end, ok := asFloat(vs[2])
		if !ok {
			return nil, typeErr("substring: end must be a number")
		}
		to = clampRange(int(end), len(runes))
	}
	if to < from {
		to = from
	}

	return kvalue.String(string(runes[from:to])), nil
}

func biReplace(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok1 := asString(vs[0])
	from, ok2 := asString(vs[1])
	to, ok3 := asString(vs[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, typeErr("replace: arguments must be strings")
	}

	return kvalue.String(strings.ReplaceAll(s, from, to)), nil
}

func biSplit(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok1 := asString(vs[0])
	sep, ok2 := asString(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("split: arguments must be strings")
	}
	parts := strings.Split(s, sep)
	out := make([]kvalue.Value, len(parts))
	for i, p := range parts {
		out[i] = kvalue.String(p)
	}

	return kvalue.NewArray(out), nil
}

func biTrimWhitespace(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	s, ok := asString(v)
	if !ok {
		return nil, typeErr("trim_whitespace: argument must be a string")
	}

	return kvalue.String(strings.TrimSpace(s)), nil
}

// biSlice implements slice() for both strings (by rune) and arrays (by
// element), mirroring substring's half-open range semantics.
func biSlice(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}

	start, ok := asFloat(vs[1])
	if !ok {
		return nil, typeErr("slice: start must be a number")
	}

	switch coll := vs[0].(type) {
	case kvalue.String:
		runes := []rune(string(coll))
		from := clampRange(int(start), len(runes))
		to := len(runes)
		if len(vs) == 3 {
			end, ok := asFloat(vs[2])
			if !ok {
				return nil, typeErr("slice: end must be a number")
			}
			to = clampRange(int(end), len(runes))
		}
		if to < from {
			to = from
		}

		return kvalue.String(string(runes[from:to])), nil
	case kvalue.Array:
		elems := coll.Elements()
		from := clampRange(int(start), len(elems))
		to := len(elems)
		if len(vs) == 3 {
			end, ok := asFloat(vs[2])
			if !ok {
				return nil, typeErr("slice: end must be a number")
			}
			to = clampRange(int(end), len(elems))
		}
		if to < from {
			to = from
		}
		out := make([]kvalue.Value, to-from)
		copy(out, elems[from:to])

		return kvalue.NewArray(out), nil
	default:
		return nil, typeErr("slice: first argument must be a string or array")
	}
}

func biChars(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	s, ok := asString(v)
	if !ok {
		return nil, typeErr("chars: argument must be a string")
	}
	runes := []rune(s)
	out := make([]kvalue.Value, len(runes))
	for i, r := range runes {
		out[i] = kvalue.String(string(r))
	}

	return kvalue.NewArray(out), nil
}

// biTail drops the first element/character: tail([1,2,3]) => [2,3],
// tail("abc") => "bc".
func biTail(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	switch vv := v.(type) {
	case kvalue.String:
		runes := []rune(string(vv))
		if len(runes) == 0 {
			return kvalue.String(""), nil
		}

		return kvalue.String(string(runes[1:])), nil
	case kvalue.Array:
		elems := vv.Elements()
		if len(elems) == 0 {
			return kvalue.NewArray(nil), nil
		}
		out := make([]kvalue.Value, len(elems)-1)
		copy(out, elems[1:])

		return kvalue.NewArray(out), nil
	default:
		return nil, typeErr("tail: argument must be a string or array")
	}
}

func biStartsWith(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok1 := asString(vs[0])
	prefix, ok2 := asString(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("starts_with: arguments must be strings")
	}

	return kvalue.Bool(strings.HasPrefix(s, prefix)), nil
}

func biEndsWith(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok1 := asString(vs[0])
	suffix, ok2 := asString(vs[1])
	if !ok1 || !ok2 {
		return nil, typeErr("ends_with: arguments must be strings")
	}

	return kvalue.Bool(strings.HasSuffix(s, suffix)), nil
}

func biStringJoin(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	arr, ok := asArray(vs[0])
	if !ok {
		return nil, typeErr("string_join: first argument must be an array")
	}
	sep, ok := asString(vs[1])
	if !ok {
		return nil, typeErr("string_join: second argument must be a string")
	}
	parts := make([]string, arr.Len())
	for i, e := range arr.Elements() {
		s, ok := stringify(e)
		if !ok {
			return nil, typeErr("string_join: array elements must be stringifyable")
		}
		parts[i] = s
	}

	return kvalue.String(strings.Join(parts, sep)), nil
}
