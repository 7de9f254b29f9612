package ktype

import "github.com/kuiper-lang/kuiper/internal/kvalue"

// Truthyness classifies whether every, no, or some values of a type pass
// Kuiper's truthiness rule (null/false are the only falsy values), used by
// the inferencer to discard dead if/else branches (spec.md §4.6).
type Truthyness int

const (
	Always Truthyness = iota
	NeverTruthy
	Maybe
)

// Truthyness computes t's Truthyness.
func (t Type) Truthyness() Truthyness {
	switch t.Kind {
	case NullKind:
		return NeverTruthy
	case LiteralKind:
		if kvalue.IsTruthy(t.Literal) {
			return Always
		}

		return NeverTruthy
	case NullableKind:
		if t.Inner.Truthyness() == NeverTruthy {
			return NeverTruthy
		}

		return Maybe
	case BoolKind, AnyKind:
		return Maybe
	case UnionKind:
		var sawAlways, sawNever bool
		for _, o := range t.Options {
			switch o.Truthyness() {
			case Always:
				sawAlways = true
			case NeverTruthy:
				sawNever = true
			default:
				return Maybe
			}
		}
		if sawAlways && sawNever {
			return Maybe
		}
		if sawNever {
			return NeverTruthy
		}

		return Always
	default:
		// Int/Float/Number/String/Array/Object admit both truthy (e.g. 1,
		// "x", [1]) and falsy... actually only null/false are falsy per
		// spec.md, so every non-null, non-bool scalar/structural type is
		// unconditionally truthy.
		return Always
	}
}

// UnionWith combines t and o into their disjunction, flattening nested
// unions and dropping duplicate/Never members.
func (t Type) UnionWith(o Type) Type {
	return FlattenUnion(Type{Kind: UnionKind, Options: []Type{t, o}})
}

// FlattenUnion normalizes a (possibly nested, possibly degenerate) union:
// Never members are dropped, nested unions are spliced in, duplicates are
// removed, and a one-member result collapses to that member (Never if
// empty).
func FlattenUnion(t Type) Type {
	if t.Kind != UnionKind {
		return t
	}

	var flat []Type
	var collect func(Type)
	collect = func(o Type) {
		switch o.Kind {
		case Never:
			return
		case UnionKind:
			for _, m := range o.Options {
				collect(m)
			}
		default:
			for _, existing := range flat {
				if existing.Equal(o) {
					return
				}
			}
			flat = append(flat, o)
		}
	}
	for _, o := range t.Options {
		collect(o)
	}

	switch len(flat) {
	case 0:
		return NeverT()
	case 1:
		return flat[0]
	default:
		return Type{Kind: UnionKind, Options: flat}
	}
}

// IntersectNullStrip returns the non-null part of t: for Nullable(T) or a
// union containing Null, this is T (or the union with Null removed);
// otherwise t is returned unchanged. Used by constructs like selector
// access and coalesce that need "the type assuming this wasn't null".
func (t Type) IntersectNullStrip() Type {
	switch t.Kind {
	case NullKind:
		return NeverT()
	case NullableKind:
		return *t.Inner
	case UnionKind:
		var kept []Type
		for _, o := range t.Options {
			if o.Kind == NullKind {
				continue
			}
			kept = append(kept, o.IntersectNullStrip())
		}

		return FlattenUnion(Type{Kind: UnionKind, Options: kept})
	default:
		return t
	}
}

// TryAsArray reports whether t can be treated as an array type, returning
// its fixed-prefix element types and open tail type (nil tail means
// exactly len(prefix) elements). A union only qualifies if every member
// does, in which case the members' shapes are merged.
func (t Type) TryAsArray() (prefix []Type, tail *Type, ok bool) {
	switch t.Kind {
	case ArrayKind:
		return t.Prefix, t.Tail, true
	case AnyKind:
		any := AnyT()

		return nil, &any, true
	case NullableKind:
		return t.Inner.TryAsArray()
	case UnionKind:
		var merged *Type
		var mergedTail *Type
		first := true
		for _, o := range t.Options {
			if o.Kind == NullKind {
				continue
			}
			p, tl, isArr := o.TryAsArray()
			if !isArr {
				return nil, nil, false
			}
			elemUnion := elementUnion(p, tl)
			if first {
				merged = &elemUnion
				mergedTail = tl
				first = false

				continue
			}
			u := merged.UnionWith(elemUnion)
			merged = &u
			if tl != nil {
				mergedTail = tl
			}
		}
		if merged == nil {
			return nil, nil, false
		}

		return nil, merged, true
	default:
		return nil, nil, false
	}
}

func elementUnion(prefix []Type, tail *Type) Type {
	result := NeverT()
	for _, p := range prefix {
		result = result.UnionWith(p)
	}
	if tail != nil {
		result = result.UnionWith(*tail)
	}

	return result
}

// TryAsObject reports whether t can be treated as an object type,
// returning its fields (constant-named and/or a wildcard entry).
func (t Type) TryAsObject() (fields []ObjectField, ok bool) {
	switch t.Kind {
	case ObjectKind:
		return t.Fields, true
	case AnyKind:
		return []ObjectField{{Wildcard: true, Type: AnyT()}}, true
	case NullableKind:
		return t.Inner.TryAsObject()
	default:
		return nil, false
	}
}

// FieldType looks up name's type within an ObjectKind/Any type, falling
// back to the wildcard field if present. ok is false if the field cannot
// be determined to exist.
func (t Type) FieldType(name string) (Type, bool) {
	fields, ok := t.TryAsObject()
	if !ok {
		return Type{}, false
	}
	var wildcard *Type
	for _, f := range fields {
		if f.Wildcard {
			w := f.Type
			wildcard = &w

			continue
		}
		if f.Name == name {
			return f.Type, true
		}
	}
	if wildcard != nil {
		return Nullable(*wildcard), true
	}

	return Type{}, false
}

// IsAssignableTo reports whether every value described by t is also
// described by o — Kuiper's type system's only relation, used both by the
// inferencer's internal consistency checks and exposed to hosts that want
// to check an input type against a program's expectations.
func (t Type) IsAssignableTo(o Type) bool {
	if o.Kind == AnyKind {
		return true
	}
	if t.Kind == Never {
		return true
	}

	switch t.Kind {
	case UnionKind:
		for _, m := range t.Options {
			if !m.IsAssignableTo(o) {
				return false
			}
		}

		return true
	case NullableKind:
		return NullT().IsAssignableTo(o) && t.Inner.IsAssignableTo(o)
	case LiteralKind:
		return literalAssignable(t.Literal, o)
	}

	switch o.Kind {
	case UnionKind:
		for _, m := range o.Options {
			if t.IsAssignableTo(m) {
				return true
			}
		}

		return false
	case NullableKind:
		if t.Kind == NullKind {
			return true
		}

		return t.IsAssignableTo(*o.Inner)
	case NumberKind:
		return t.Kind == IntKind || t.Kind == FloatKind || t.Kind == NumberKind
	case ArrayKind:
		if t.Kind != ArrayKind {
			return false
		}

		return arrayAssignable(t, o)
	case ObjectKind:
		if t.Kind != ObjectKind {
			return false
		}

		return objectAssignable(t, o)
	default:
		return t.Kind == o.Kind
	}
}

func literalAssignable(v kvalue.Value, o Type) bool {
	switch o.Kind {
	case LiteralKind:
		return v.Equals(o.Literal)
	case NullKind:
		return v.Kind() == kvalue.KindNull
	case BoolKind:
		return v.Kind() == kvalue.KindBool
	case IntKind:
		return v.Kind() == kvalue.KindInt
	case FloatKind:
		return v.Kind() == kvalue.KindFloat
	case NumberKind:
		return v.Kind() == kvalue.KindInt || v.Kind() == kvalue.KindFloat
	case StringKind:
		return v.Kind() == kvalue.KindString
	case ArrayKind:
		arr, ok := v.(kvalue.Array)
		if !ok {
			return false
		}

		return structuralArrayType(arr).IsAssignableTo(o)
	case ObjectKind:
		obj, ok := v.(kvalue.Object)
		if !ok {
			return false
		}

		return structuralObjectType(obj).IsAssignableTo(o)
	case UnionKind:
		for _, m := range o.Options {
			if literalAssignable(v, m) {
				return true
			}
		}

		return false
	case NullableKind:
		return v.Kind() == kvalue.KindNull || literalAssignable(v, *o.Inner)
	default:
		return false
	}
}

// structuralArrayType builds the exact-length Array type of a concrete
// runtime array, used when checking a literal value against a structural
// array type (IsAssignableTo never needs to compare two LiteralKind
// values element-by-element itself).
func structuralArrayType(arr kvalue.Array) Type {
	prefix := make([]Type, arr.Len())
	for i, e := range arr.Elements() {
		prefix[i] = FromValue(e)
	}

	return Type{Kind: ArrayKind, Prefix: prefix}
}

// structuralObjectType builds the closed Object type of a concrete
// runtime object.
func structuralObjectType(obj kvalue.Object) Type {
	fields := make([]ObjectField, 0, obj.Len())
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		fields = append(fields, ObjectField{Name: k, Type: FromValue(v)})
	}

	return Type{Kind: ObjectKind, Fields: fields}
}

func arrayAssignable(t, o Type) bool {
	for i, ot := range o.Prefix {
		var tt Type
		if i < len(t.Prefix) {
			tt = t.Prefix[i]
		} else if t.Tail != nil {
			tt = *t.Tail
		} else {
			return false
		}
		if !tt.IsAssignableTo(ot) {
			return false
		}
	}
	if o.Tail == nil {
		return len(t.Prefix) <= len(o.Prefix) && t.Tail == nil
	}
	for i := len(o.Prefix); i < len(t.Prefix); i++ {
		if !t.Prefix[i].IsAssignableTo(*o.Tail) {
			return false
		}
	}
	if t.Tail != nil {
		return t.Tail.IsAssignableTo(*o.Tail)
	}

	return true
}

func objectAssignable(t, o Type) bool {
	var oWildcard *Type
	for _, f := range o.Fields {
		if f.Wildcard {
			w := f.Type
			oWildcard = &w

			continue
		}
		tt, ok := t.FieldType(f.Name)
		if !ok {
			return false
		}
		if !tt.IsAssignableTo(f.Type) {
			return false
		}
	}
	if oWildcard == nil {
		return true
	}
	for _, f := range t.Fields {
		if f.Wildcard {
			continue
		}
		if !f.Type.IsAssignableTo(*oWildcard) {
			return false
		}
	}

	return true
}
