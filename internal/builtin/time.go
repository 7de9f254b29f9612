// Time builtins. format_timestamp/to_unix_timestamp take a strftime-style
// format string (%Y-%m-%d, ...), not Go's reference-time layout, so they
// are backed by github.com/ncruces/go-strftime (seen as a dependency in
// the playbymail-ottomap and mcgru-funxy manifests in the retrieved
// pack). to_unix_timestamp falls back to github.com/araddon/dateparse
// when no format is supplied, following the same "guess the layout"
// convenience several query-language repos in the pack offer (e.g.
// fuhongbo-qlbridge).
package builtin

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/ncruces/go-strftime"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

func init() {
	register(&Spec{Name: "to_unix_timestamp", MinArgs: 1, MaxArgs: 2, Fn: biToUnixTimestamp})
	register(&Spec{Name: "format_timestamp", MinArgs: 2, MaxArgs: 2, Fn: biFormatTimestamp})
	register(&Spec{Name: "now", MinArgs: 0, MaxArgs: 0, NonDeterministic: true, Fn: biNow})
}

func biToUnixTimestamp(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	text, ok := asString(vs[0])
	if !ok {
		return nil, typeErr("to_unix_timestamp: first argument must be a string")
	}

	if len(vs) == 1 {
		t, err := dateparse.ParseAny(text)
		if err != nil {
			return nil, convErr("to_unix_timestamp: could not infer a layout for " + text)
		}

		return timestampValue(t), nil
	}

	format, ok := asString(vs[1])
	if !ok {
		return nil, typeErr("to_unix_timestamp: format must be a string")
	}
	t, err := time.Parse(strftime.Layout(format), text)
	if err != nil {
		return nil, convErr("to_unix_timestamp: " + err.Error())
	}

	return timestampValue(t), nil
}

// timestampValue encodes a time.Time as seconds since the epoch, keeping
// sub-second precision in the fractional part only when present, so a
// whole-second timestamp round-trips as an Int rather than an Int-valued
// Float.
func timestampValue(t time.Time) kvalue.Value {
	if t.Nanosecond() == 0 {
		return kvalue.Int(t.Unix())
	}

	return kvalue.Float(float64(t.UnixNano()) / 1e9)
}

func biFormatTimestamp(inv Invoker, args []Node) (kvalue.Value, error) {
	vs, err := evalAll(inv, args)
	if err != nil {
		return nil, err
	}
	secs, ok := asFloat(vs[0])
	if !ok {
		return nil, typeErr("format_timestamp: first argument must be a number")
	}
	format, ok := asString(vs[1])
	if !ok {
		return nil, typeErr("format_timestamp: format must be a string")
	}

	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * 1e9)
	t := time.Unix(sec, nsec).UTC()

	return kvalue.String(strftime.Format(format, t)), nil
}

// biNow is the only non-deterministic builtin; it returns the current
// wall-clock time as seconds since the epoch, never constant-folded by
// the optimizer (Spec.NonDeterministic above).
func biNow(_ Invoker, _ []Node) (kvalue.Value, error) {
	return timestampValue(time.Now()), nil
}
