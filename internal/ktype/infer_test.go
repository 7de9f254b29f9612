package ktype

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kuiper-lang/kuiper/internal/parser"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

func inferSource(t *testing.T, src string, inputTypes []Type) Type {
	t.Helper()

	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse error for %q: %v", src, errs.Errors())
	}
	names := make([]string, len(inputTypes))
	for i := range names {
		names[i] = "input"
	}
	tr, err := tree.Build(prog, names, tree.Config{})
	if err != nil {
		t.Fatalf("build error for %q: %v", src, err)
	}

	got, err := Infer(tr.Root, NewInferState(inputTypes))
	if err != nil {
		t.Fatalf("Infer(%q) error: %v", src, err)
	}

	return got
}

func TestInferArithmeticPromotion(t *testing.T) {
	if got := inferSource(t, "1 + 2", nil); got.Kind != IntKind {
		t.Errorf("1 + 2: Kind = %v, want IntKind", got.Kind)
	}
	if got := inferSource(t, "1 + 2.0", nil); got.Kind != FloatKind {
		t.Errorf("1 + 2.0: Kind = %v, want FloatKind", got.Kind)
	}
	if got := inferSource(t, "1 / 2", nil); got.Kind != FloatKind {
		t.Errorf("1 / 2: Kind = %v, want FloatKind (division is always Float)", got.Kind)
	}
}

func TestInferIsAlwaysBool(t *testing.T) {
	if got := inferSource(t, "1 is int", nil); got.Kind != BoolKind {
		t.Errorf("Kind = %v, want BoolKind", got.Kind)
	}
}

func TestInferIfUnion(t *testing.T) {
	got := inferSource(t, `if true then 1 else "x"`, nil)
	// The condition is always-truthy, so only the first reachable branch
	// (Integer) contributes per spec.md §4.6.
	if got.BaseKind() != IntKind {
		t.Errorf("BaseKind = %v, want IntKind (dead else branch discarded)", got.BaseKind())
	}

	got = inferSource(t, "if input > 0 then 1 else \"x\"", []Type{NumberT()})
	flat := FlattenUnion(got)
	if flat.Kind != UnionKind {
		t.Fatalf("Kind = %v, want UnionKind for an uncertain condition", flat.Kind)
	}
}

func TestInferCoalesce(t *testing.T) {
	// A guaranteed-non-null trailing argument means the whole coalesce is
	// guaranteed non-null too (spec.md §4.6: "until a guaranteed non-null
	// appears").
	got := inferSource(t, `coalesce(input, "fallback")`, []Type{Nullable(StringT())})
	if got.Kind == NullableKind {
		t.Errorf("Kind = %v, want a non-nullable result once a guaranteed-non-null argument is reached", got.Kind)
	}

	// With no guaranteed-non-null argument, the result stays nullable.
	got = inferSource(t, `coalesce(input, input)`, []Type{Nullable(StringT())})
	if got.Kind != NullableKind {
		t.Errorf("Kind = %v, want NullableKind when every argument may be null", got.Kind)
	}
}

func TestInferParseJSON(t *testing.T) {
	got := inferSource(t, "parse_json(input)", []Type{StringT()})
	if got.Kind != AnyKind {
		t.Errorf("Kind = %v, want AnyKind for a String input", got.Kind)
	}

	got = inferSource(t, "parse_json(input)", []Type{IntT()})
	if got.Kind != IntKind {
		t.Errorf("Kind = %v, want the input type unchanged for a non-String input", got.Kind)
	}
}

func TestUnionFlattenDedup(t *testing.T) {
	u := Type{Kind: UnionKind, Options: []Type{IntT(), IntT(), StringT(), NeverT()}}
	got := FlattenUnion(u)

	want := Type{Kind: UnionKind, Options: []Type{IntT(), StringT()}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FlattenUnion mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionWithNeverIsIdentity(t *testing.T) {
	got := NeverT().UnionWith(IntT())
	if diff := cmp.Diff(IntT(), got); diff != "" {
		t.Errorf("UnionWith mismatch (-want +got):\n%s", diff)
	}
}

func TestIsAssignableTo(t *testing.T) {
	tests := []struct {
		name string
		t, o Type
		want bool
	}{
		{"int-to-number", IntT(), NumberT(), true},
		{"float-to-number", FloatT(), NumberT(), true},
		{"string-to-number", StringT(), NumberT(), false},
		{"anything-to-any", StringT(), AnyT(), true},
		{"int-to-int", IntT(), IntT(), true},
		{"null-to-nullable-string", NullT(), Nullable(StringT()), true},
		{"string-to-nullable-string", StringT(), Nullable(StringT()), true},
		{"bool-to-nullable-string", BoolT(), Nullable(StringT()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.IsAssignableTo(tt.o); got != tt.want {
				t.Errorf("%v.IsAssignableTo(%v) = %v, want %v", tt.t, tt.o, got, tt.want)
			}
		})
	}
}

func TestTruthyness(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want Truthyness
	}{
		{"null", NullT(), NeverTruthy},
		{"bool", BoolT(), Maybe},
		{"int", IntT(), Always},
		{"nullable-string", Nullable(StringT()), Maybe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.Truthyness(); got != tt.want {
				t.Errorf("Truthyness() = %v, want %v", got, tt.want)
			}
		})
	}
}
