// Package ktype implements C6: the structural type system spec.md's type
// inferencer traverses. It has no teacher analogue — the source Nix
// interpreter has no static type layer — so it is grounded instead on the
// value/type lattice used by CUE (see other_examples' CUE value.go/ast.go
// excerpts): disjunction-as-union, and open-vs-closed structs mapped onto
// our tail-or-no-tail array/object distinction. It is implemented from
// scratch rather than importing cuelang.org/go, which pulls in an OCI
// registry client, a WASM runtime, and Kubernetes API machinery that have
// no home here (see DESIGN.md).
package ktype

import (
	"fmt"
	"strings"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

// Kind discriminates Type's variants.
type Kind int

const (
	Never Kind = iota
	NullKind
	BoolKind
	IntKind
	FloatKind
	NumberKind // Integer ∪ Float
	StringKind
	AnyKind
	LiteralKind
	NullableKind
	UnionKind
	ArrayKind
	ObjectKind
)

// ObjectField is one field of an ObjectKind type: either a constant name
// or, when Wildcard is true, the generic catch-all field describing every
// name not otherwise listed.
type ObjectField struct {
	Name     string
	Wildcard bool
	Type     Type
}

// Type is the structural type sum described in spec.md §3: a small set of
// scalar kinds, plus literal/nullable/union wrappers and structural
// array/object shapes with an open tail or wildcard field.
type Type struct {
	Kind    Kind
	Literal kvalue.Value  // populated for LiteralKind
	Inner   *Type         // populated for NullableKind
	Options []Type        // populated for UnionKind
	Prefix  []Type        // populated for ArrayKind: fixed leading element types
	Tail    *Type         // populated for ArrayKind: type of any elements past Prefix, nil if the array is exactly len(Prefix)
	Fields  []ObjectField // populated for ObjectKind, in declared order
}

// Convenience constructors for the scalar kinds.
func NullT() Type   { return Type{Kind: NullKind} }
func BoolT() Type   { return Type{Kind: BoolKind} }
func IntT() Type    { return Type{Kind: IntKind} }
func FloatT() Type  { return Type{Kind: FloatKind} }
func NumberT() Type { return Type{Kind: NumberKind} }
func StringT() Type { return Type{Kind: StringKind} }
func AnyT() Type    { return Type{Kind: AnyKind} }
func NeverT() Type  { return Type{Kind: Never} }

// LiteralT builds the type of a single known constant value.
func LiteralT(v kvalue.Value) Type { return Type{Kind: LiteralKind, Literal: v} }

// Nullable wraps t so it also admits Null (a no-op if t already admits
// null).
func Nullable(t Type) Type {
	if t.admitsNull() {
		return t
	}

	return Type{Kind: NullableKind, Inner: &t}
}

// FromValue computes the literal type of a concrete runtime value, used by
// the Constant node's inference rule.
func FromValue(v kvalue.Value) Type {
	if v.Kind() == kvalue.KindNull {
		return NullT()
	}

	return LiteralT(v)
}

// BaseKind widens a type to one of the eight scalar kinds it is built
// from, used for quick classification (e.g. is this fundamentally
// string-shaped?). Unions/Any/Never widen to themselves.
func (t Type) BaseKind() Kind {
	switch t.Kind {
	case LiteralKind:
		switch t.Literal.Kind() {
		case kvalue.KindNull:
			return NullKind
		case kvalue.KindBool:
			return BoolKind
		case kvalue.KindInt:
			return IntKind
		case kvalue.KindFloat:
			return FloatKind
		case kvalue.KindString:
			return StringKind
		case kvalue.KindArray:
			return ArrayKind
		case kvalue.KindObject:
			return ObjectKind
		default:
			return AnyKind
		}
	case NullableKind:
		return t.Inner.BaseKind()
	default:
		return t.Kind
	}
}

func (t Type) admitsNull() bool {
	switch t.Kind {
	case NullKind, AnyKind, NullableKind:
		return true
	case UnionKind:
		for _, o := range t.Options {
			if o.admitsNull() {
				return true
			}
		}

		return false
	case LiteralKind:
		return t.Literal.Kind() == kvalue.KindNull
	default:
		return false
	}
}

// String renders a debug form used by test failure messages and
// diagnostics; it is not part of the language's own syntax.
func (t Type) String() string {
	switch t.Kind {
	case Never:
		return "never"
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case AnyKind:
		return "any"
	case LiteralKind:
		return t.Literal.String()
	case NullableKind:
		return t.Inner.String() + "?"
	case UnionKind:
		parts := make([]string, len(t.Options))
		for i, o := range t.Options {
			parts[i] = o.String()
		}

		return strings.Join(parts, " | ")
	case ArrayKind:
		parts := make([]string, len(t.Prefix))
		for i, p := range t.Prefix {
			parts[i] = p.String()
		}
		tail := ""
		if t.Tail != nil {
			tail = ", " + t.Tail.String() + "..."
		}

		return "[" + strings.Join(parts, ", ") + tail + "]"
	case ObjectKind:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			if f.Wildcard {
				parts[i] = "[string]: " + f.Type.String()

				continue
			}
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<type>"
	}
}

// Equal reports whether t and o describe the same type, used by
// FlattenUnion to dedup and by tests.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case LiteralKind:
		return t.Literal.Equals(o.Literal)
	case NullableKind:
		return t.Inner.Equal(*o.Inner)
	case UnionKind:
		if len(t.Options) != len(o.Options) {
			return false
		}
		for i := range t.Options {
			if !t.Options[i].Equal(o.Options[i]) {
				return false
			}
		}

		return true
	case ArrayKind:
		if len(t.Prefix) != len(o.Prefix) {
			return false
		}
		for i := range t.Prefix {
			if !t.Prefix[i].Equal(o.Prefix[i]) {
				return false
			}
		}
		if (t.Tail == nil) != (o.Tail == nil) {
			return false
		}

		return t.Tail == nil || t.Tail.Equal(*o.Tail)
	case ObjectKind:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || t.Fields[i].Wildcard != o.Fields[i].Wildcard {
				return false
			}
			if !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}

		return true
	default:
		return true
	}
}
