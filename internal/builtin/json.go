package builtin

import "github.com/kuiper-lang/kuiper/internal/kvalue"

func init() {
	register(&Spec{Name: "parse_json", MinArgs: 1, MaxArgs: 1, Fn: biParseJSON})
}

// biParseJSON parses its argument as JSON text iff it is a string;
// anything else is returned unchanged, matching spec.md's "if string:
// parse; else: return unchanged".
func biParseJSON(inv Invoker, args []Node) (kvalue.Value, error) {
	v, err := inv.Eval(args[0])
	if err != nil {
		return nil, err
	}
	s, ok := v.(kvalue.String)
	if !ok {
		return v, nil
	}

	parsed, err := kvalue.FromJSON([]byte(string(s)))
	if err != nil {
		return nil, convErr("parse_json: " + err.Error())
	}

	return parsed, nil
}
