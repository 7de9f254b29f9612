package kvalue

import "testing"

func TestIntFloatEquals(t *testing.T) {
	if !Int(1).Equals(Float(1.0)) {
		t.Fatalf("expected Int(1) to equal Float(1.0)")
	}
	if !Float(1.0).Equals(Int(1)) {
		t.Fatalf("expected Float(1.0) to equal Int(1)")
	}
	if Int(1).Equals(Int(2)) {
		t.Fatalf("expected Int(1) to not equal Int(2)")
	}
}

func TestUintCrossTypeEquals(t *testing.T) {
	if !Uint(1).Equals(Int(1)) {
		t.Fatalf("expected Uint(1) to equal Int(1)")
	}
	if !Int(1).Equals(Uint(1)) {
		t.Fatalf("expected Int(1) to equal Uint(1)")
	}
	if !Uint(1).Equals(Float(1.0)) {
		t.Fatalf("expected Uint(1) to equal Float(1.0)")
	}
	if Uint(1).Kind() != KindInt {
		t.Fatalf("expected Uint.Kind() == KindInt, got %v", Uint(1).Kind())
	}
	big := Uint(1 << 63) // above math.MaxInt64, the case Int can't hold
	if big.String() != "9223372036854775808" {
		t.Fatalf("Uint.String() = %q, want %q", big.String(), "9223372036854775808")
	}
}

func TestObjectWithPreservesOrder(t *testing.T) {
	o := EmptyObject()
	o = o.With("b", Int(2))
	o = o.With("a", Int(1))
	o = o.With("b", Int(20))

	want := []string{"b", "a"}
	got := o.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d = %q, want %q", i, got[i], want[i])
		}
	}

	v, ok := o.Get("b")
	if !ok || !v.Equals(Int(20)) {
		t.Fatalf("expected updated value 20 for key b, got %v", v)
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), true},
		{Int(1), true},
		{Float(0), true},
		{String(""), true},
		{String("x"), true},
		{NewArray(nil), true},
		{NewArray([]Value{Int(1)}), true},
		{EmptyObject(), true},
	}

	for _, tt := range tests {
		if got := IsTruthy(tt.v); got != tt.want {
			t.Errorf("IsTruthy(%s) = %v, want %v", tt.v.String(), got, tt.want)
		}
	}
}

func TestFromJSONRoundTrip(t *testing.T) {
	input := `{"a": 1, "b": [1, 2.5, "x", null, true], "c": {"nested": 42}}`

	v, err := FromJSON([]byte(input))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	obj, ok := v.(Object)
	if !ok {
		t.Fatalf("expected Object, got %T", v)
	}

	a, ok := obj.Get("a")
	if !ok || !a.Equals(Int(1)) {
		t.Fatalf("expected a=1, got %v", a)
	}

	b, ok := obj.Get("b")
	if !ok {
		t.Fatalf("expected field b")
	}
	arr, ok := b.(Array)
	if !ok || arr.Len() != 5 {
		t.Fatalf("expected array of length 5, got %#v", b)
	}

	out, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	v2, err := FromJSON(out)
	if err != nil {
		t.Fatalf("FromJSON(ToJSON(v)): %v", err)
	}
	if !v.Equals(v2) {
		t.Fatalf("expected round-tripped value to equal original")
	}
}

func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte(`{invalid`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
	if _, err := FromJSON([]byte(`1 2`)); err == nil {
		t.Fatalf("expected an error for trailing data")
	}
}
