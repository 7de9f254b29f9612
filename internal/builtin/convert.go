package builtin

import (
	"strconv"
	"strings"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "try_float", MinArgs: 2, MaxArgs: 2, Fn: biTryFloat})
	register(&Spec{Name: "try_int", MinArgs: 2, MaxArgs: 2, Fn: biTryInt})
	register(&Spec{Name: "try_bool", MinArgs: 2, MaxArgs: 2, Fn: biTryBool})
}

// normalizeNumericString trims surrounding whitespace and treats a comma
// as a decimal separator, matching spec.md's "recognize string forms with
// commas-as-decimals and whitespace" requirement for try_float/try_int.
func normalizeNumericString(s string) string {
	s = strings.TrimSpace(s)

	return strings.Replace(s, ",", ".", 1)
}

func biTryFloat(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	switch vv := v.(type) {
	case kvalue.Int:
		return kvalue.Float(vv), nil
	case kvalue.Uint:
		return kvalue.Float(vv), nil
	case kvalue.Float:
		return vv, nil
	case kvalue.String:
		if f, err := strconv.ParseFloat(normalizeNumericString(string(vv)), 64); err == nil {
			return kvalue.Float(f), nil
		}
	}

	return inv.Eval(args[1])
}

func biTryInt(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	switch vv := v.(type) {
	case kvalue.Int:
		return vv, nil
	case kvalue.Uint:
		return kvalue.Int(int64(vv)), nil
	case kvalue.Float:
		return kvalue.Int(int64(vv)), nil
	case kvalue.String:
		s := normalizeNumericString(string(vv))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return kvalue.Int(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return kvalue.Int(int64(f)), nil
		}
	}

	return inv.Eval(args[1])
}

func biTryBool(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	switch vv := v.(type) {
	case kvalue.Bool:
		return vv, nil
	case kvalue.String:
		switch strings.ToLower(strings.TrimSpace(string(vv))) {
		case "true", "yes", "1":
			return kvalue.Bool(true), nil
		case "false", "no", "0":
			return kvalue.Bool(false), nil
		}
	case kvalue.Int:
		return kvalue.Bool(vv != 0), nil
	case kvalue.Uint:
		return kvalue.Bool(vv != 0), nil
	}

	return inv.Eval(args[1])
}
