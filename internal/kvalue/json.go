package kvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// FromJSON decodes a single JSON document into a Value tree. Numbers are
// decoded with json.Decoder's UseNumber mode and classified as Int when
// they parse as a base-10 integer fitting a signed int64, Uint when they
// don't fit int64 but do fit a uint64 (e.g. a u64 snowflake ID above
// 2^63-1), and Float otherwise. This mirrors the source implementation's
// JsonNumber::{NegInteger(i64), PosInteger(u64), Float(f64)} split and is
// what keeps a round-tripped large unsigned ID from silently lossy-
// converting to a float.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("kvalue: invalid JSON input: %w", err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("kvalue: trailing data after JSON document")
	}

	return fromInterface(raw)
}

func fromInterface(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(v), nil
	case json.Number:
		return numberFromJSON(v)
	case string:
		return String(v), nil
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			ev, err := fromInterface(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}

		return NewArray(elems), nil
	case map[string]interface{}:
		// encoding/json does not preserve source object field order once
		// decoded into map[string]interface{}; Go's JSON package has no
		// ordered-map decode mode, so field order here falls back to
		// lexical (matching what json.Marshal would produce for the same
		// map), a documented divergence from strict source-order echo.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make(map[string]Value, len(v))
		for _, k := range keys {
			fv, err := fromInterface(v[k])
			if err != nil {
				return nil, err
			}
			values[k] = fv
		}

		return NewObject(keys, values), nil
	default:
		return nil, fmt.Errorf("kvalue: unsupported JSON value of type %T", raw)
	}
}

func numberFromJSON(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, _, err := big.ParseFloat(n.String(), 10, 53, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("kvalue: invalid numeric literal %q: %w", n.String(), err)
	}
	fv, _ := f.Float64()

	return Float(fv), nil
}

// ToJSON renders v as a compact JSON document, writing object fields in
// their own iteration order rather than encoding/json's alphabetical map
// order (spec.md §5: "object-field iteration order is the object's own
// iteration order"). Scalar encoding (string escaping, float formatting)
// is still delegated to encoding/json so the byte-level quoting rules
// match the stdlib exactly; only the container-level walk is custom.
// Floats that are not finite (NaN, +/-Infinity) have no JSON
// representation and produce an error, matching encoding/json's own
// behavior.
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch vv := v.(type) {
	case nullValue:
		buf.WriteString("null")
	case Bool:
		if vv {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(vv), 10))
	case Uint:
		buf.WriteString(strconv.FormatUint(uint64(vv), 10))
	case Float:
		f := float64(vv)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("kvalue: cannot encode non-finite float as JSON")
		}
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case String:
		b, err := json.Marshal(string(vv))
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, e := range vv.Elements() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range vv.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			fv, _ := vv.Get(k)
			if err := writeJSON(buf, fv); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("kvalue: value of kind %s has no JSON representation", v.Kind())
	}

	return nil
}
