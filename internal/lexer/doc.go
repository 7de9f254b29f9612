// Package lexer turns Kuiper source text into tokens.
//
// Supported token categories:
//
//   - Literals: integers, floats (including exponent form), double-quoted
//     strings with escapes, identifiers (input references and function
//     names).
//   - Type-literal keywords used after "is": int, bool, float, string,
//     array, object, number, plus the reused null keyword.
//   - Control keywords: if, else, true, false, null.
//   - Operators: arithmetic, comparison, logical, the lambda arrow "=>",
//     and its fused form ")=>" that terminates a parenthesized parameter
//     list.
//   - Delimiters and the "#name" macro-definition marker.
//
// The scanner reports malformed input (bad escapes, unterminated strings,
// unparsable numeric literals, unknown characters) as *Error values carrying
// a byte span, rather than panicking or silently producing ILLEGAL tokens.
package lexer
