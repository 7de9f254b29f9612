// Regex builtins use stdlib regexp (RE2), not a backtracking PCRE
// emulator: spec.md §9 says the regex engine is implementation-defined
// but callers "must not rely on backreferences" — i.e. the spec is
// already scoped to what RE2 supports, and RE2 is exactly Go's regexp.
package builtin

import (
	"regexp"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "regex_is_match", MinArgs: 2, MaxArgs: 2, Fn: biRegexIsMatch})
	register(&Spec{Name: "regex_first_match", MinArgs: 2, MaxArgs: 2, Fn: biRegexFirstMatch})
	register(&Spec{Name: "regex_all_matches", MinArgs: 2, MaxArgs: 2, Fn: biRegexAllMatches})
	register(&Spec{Name: "regex_first_captures", MinArgs: 2, MaxArgs: 2, Fn: biRegexFirstCaptures})
	register(&Spec{Name: "regex_all_captures", MinArgs: 2, MaxArgs: 2, Fn: biRegexAllCaptures})
	register(&Spec{Name: "regex_replace", MinArgs: 3, MaxArgs: 3, Fn: biRegexReplace})
	register(&Spec{Name: "regex_replace_all", MinArgs: 3, MaxArgs: 3, Fn: biRegexReplaceAll})
}

func compileRegex(v kvalue.Value) (*regexp.Regexp, error) {
	pat, ok := asString(v)
	if !ok {
		return nil, typeErr("regex: pattern must be a string")
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, convErr("regex: invalid pattern: " + err.Error())
	}

	return re, nil
}

func biRegexIsMatch(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_is_match: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}

	return kvalue.Bool(re.MatchString(s)), nil
}

func biRegexFirstMatch(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_first_match: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}
	m := re.FindString(s)
	if m == "" && !re.MatchString(s) {
		return kvalue.Null, nil
	}

	return kvalue.String(m), nil
}

func biRegexAllMatches(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_all_matches: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}
	matches := re.FindAllString(s, -1)
	out := make([]kvalue.Value, len(matches))
	for i, m := range matches {
		out[i] = kvalue.String(m)
	}

	return kvalue.NewArray(out), nil
}

// captureArray turns one FindSubmatch result into an array: the whole
// match at index 0 followed by each capture group (empty string for a
// group that did not participate).
func captureArray(groups []string) kvalue.Value {
	out := make([]kvalue.Value, len(groups))
	for i, g := range groups {
		out[i] = kvalue.String(g)
	}

	return kvalue.NewArray(out)
}

func biRegexFirstCaptures(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_first_captures: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return kvalue.Null, nil
	}

	return captureArray(m), nil
}

func biRegexAllCaptures(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_all_captures: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}
	all := re.FindAllStringSubmatch(s, -1)
	out := make([]kvalue.Value, len(all))
	for i, m := range all {
		out[i] = captureArray(m)
	}

	return kvalue.NewArray(out), nil
}

func biRegexReplace(inv Invoker, args []Node) (kvalue.Value, error) {
	return regexReplace(inv, args, false)
}

func biRegexReplaceAll(inv Invoker, args []Node) (kvalue.Value, error) {
	return regexReplace(inv, args, true)
}

func regexReplace(inv Invoker, args []Node, all bool) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	s, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("regex_replace: subject must be a string")
	}
	re, err := compileRegex(vs[1])
	if err != nil {
		return nil, err
	}
	repl, ok := asString(vs[2])
	if !ok {
		return nil, typeErr("regex_replace: replacement must be a string")
	}
	// Kuiper replacement strings use $1-style group references, matching
	// Go's regexp.ReplaceAll convention directly: no translation needed.
	if !all {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return kvalue.String(s), nil
		}
		replaced := re.ReplaceAllString(s[loc[0]:loc[1]], repl)

		return kvalue.String(s[:loc[0]] + replaced + s[loc[1]:]), nil
	}

	return kvalue.String(re.ReplaceAllString(s, repl)), nil
}
