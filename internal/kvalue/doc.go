// Package kvalue is the JSON-shaped runtime value model: Null, Bool, Int,
// Uint, Float, String, Array, and Object, plus the Callable interface
// lambda values implement.
//
// Design notes:
//
//   - Objects preserve field order. Literal construction and spread keep
//     insertion order; JSON decoding (which loses order by the time it
//     reaches Go's map[string]interface{}) falls back to lexical order.
//     SortedKeys gives a lexically ordered view of the keys; the digest()
//     builtin hashes fields in the object's own order.
//   - Equals implements structural equality with int/float cross-type
//     comparison (1 equals 1.0), matching JSON's single "number" type.
//   - Int, Uint, and Float are distinguished internally even though JSON
//     has one numeric type, so arithmetic can apply the right promotion
//     rules, output avoids silently turning a clean integer into "1.0",
//     and a u64 value outside int64's range (e.g. a snowflake ID) round-
//     trips exactly instead of lossily becoming a Float.
package kvalue
