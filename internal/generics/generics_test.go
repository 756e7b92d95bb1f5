package generics

import (
	"errors"
	"testing"

	ts "github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

var (
	tT = ts.TVar{Name: "T"}
	tU = ts.TVar{Name: "U"}
)

func substStrings(s ts.Subst) map[string]string {
	out := make(map[string]string, len(s))
	for _, b := range s {
		out[b.Param] = b.Type.String()
	}
	return out
}

func TestInferIdentity(t *testing.T) {
	id := ts.Func{
		TypeParams: []ts.TypeParam{{Name: "T"}},
		Params:     []ts.Param{{Name: "x", Type: tT}},
		Return:     tT,
	}
	subst, err := InferArguments(id.TypeParams, []ts.Type{tT}, []ts.Type{ts.NumLit(5)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"T": "number"}, substStrings(subst)); diff != "" {
		t.Errorf("subst (-want +got):\n%s", diff)
	}
	inst := InstantiateFunc(id, subst)
	if !ts.Equal(inst.Return, ts.Number) {
		t.Errorf("id(5) returns %s, want number", inst.Return)
	}
	if len(inst.TypeParams) != 0 {
		t.Errorf("instantiated signature still generic: %s", inst)
	}
}

func TestInferArguments(t *testing.T) {
	params := []ts.TypeParam{{Name: "T"}, {Name: "U"}}
	tests := []struct {
		name    string
		formals []ts.Type
		actuals []ts.Type
		want    map[string]string
	}{
		{
			"differing observations become a union",
			[]ts.Type{tT, tT},
			[]ts.Type{ts.String, ts.Number},
			map[string]string{"T": "string | number", "U": "unknown"},
		},
		{
			"array element",
			[]ts.Type{ts.Array{Elem: tT}},
			[]ts.Type{ts.Array{Elem: ts.Boolean}},
			map[string]string{"T": "boolean", "U": "unknown"},
		},
		{
			"tuple against array",
			[]ts.Type{ts.Array{Elem: tT}},
			[]ts.Type{ts.Tuple{Elems: []ts.Type{ts.StrLit("a"), ts.NumLit(1)}}},
			map[string]string{"T": "string | number", "U": "unknown"},
		},
		{
			"object members",
			[]ts.Type{ts.Object{Members: []ts.Member{{Name: "key", Type: tT}, {Name: "value", Type: tU}}}},
			[]ts.Type{ts.Object{Members: []ts.Member{{Name: "key", Type: ts.String}, {Name: "value", Type: ts.Integer}}}},
			map[string]string{"T": "string", "U": "integer"},
		},
		{
			"callback parameter and return",
			[]ts.Type{ts.Array{Elem: tT}, ts.Func{Params: []ts.Param{{Name: "v", Type: tT}}, Return: tU}},
			[]ts.Type{ts.Array{Elem: ts.Number}, ts.Func{Params: []ts.Param{{Name: "v", Type: ts.Number}}, Return: ts.String}},
			map[string]string{"T": "number", "U": "string"},
		},
		{
			"nullable formal strips nil",
			[]ts.Type{ts.Nullable(tT)},
			[]ts.Type{ts.Nullable(ts.String)},
			map[string]string{"T": "string", "U": "unknown"},
		},
		{
			"missing actual",
			[]ts.Type{tT, tU},
			[]ts.Type{ts.String},
			map[string]string{"T": "string", "U": "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subst, err := InferArguments(params, tt.formals, tt.actuals, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, substStrings(subst)); diff != "" {
				t.Errorf("subst (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferFallbacks(t *testing.T) {
	params := []ts.TypeParam{
		{Name: "T"},
		{Name: "U", Default: ts.Array{Elem: tT}},
		{Name: "V", Constraint: ts.String},
	}
	subst, err := InferArguments(params, []ts.Type{tT}, []ts.Type{ts.Boolean}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"T": "boolean", "U": "boolean[]", "V": "string"}
	if diff := cmp.Diff(want, substStrings(subst)); diff != "" {
		t.Errorf("subst (-want +got):\n%s", diff)
	}
}

func TestInferKeepsLiteralForLiteralConstraint(t *testing.T) {
	dir := ts.NewUnion(ts.StrLit("up"), ts.StrLit("down"))
	params := []ts.TypeParam{{Name: "D", Constraint: dir}}
	subst, err := InferArguments(params, []ts.Type{ts.TVar{Name: "D"}}, []ts.Type{ts.StrLit("up")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := subst.Lookup("D"); !ts.Equal(got, ts.StrLit("up")) {
		t.Errorf("D = %s, want \"up\"", got)
	}
}

func TestConstraintViolation(t *testing.T) {
	params := []ts.TypeParam{{Name: "T", Constraint: ts.Object{Members: []ts.Member{{Name: "len", Type: ts.Number}}}}}
	_, err := InferArguments(params, []ts.Type{tT}, []ts.Type{ts.Boolean}, nil)
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}
	if ce.Param != "T" || !ts.Equal(ce.Arg, ts.Boolean) {
		t.Errorf("unexpected error %v", ce)
	}

	ok := ts.Object{Members: []ts.Member{{Name: "len", Type: ts.Integer}, {Name: "name", Type: ts.String}}}
	if _, err := InferArguments(params, []ts.Type{tT}, []ts.Type{ok}, nil); err != nil {
		t.Errorf("structural argument should satisfy the constraint: %v", err)
	}
}

func TestBindAndInstantiate(t *testing.T) {
	params := []ts.TypeParam{{Name: "K"}, {Name: "V", Default: ts.TVar{Name: "K"}}}
	body := ts.Object{Index: &ts.IndexSignature{Key: ts.TVar{Name: "K"}, Value: ts.TVar{Name: "V"}}}

	got, err := Instantiate(body, params, []ts.Type{ts.String})
	if err != nil {
		t.Fatal(err)
	}
	want := ts.Object{Index: &ts.IndexSignature{Key: ts.String, Value: ts.String}}
	if !ts.Equal(got, want) {
		t.Errorf("Instantiate = %s, want %s", got, want)
	}

	var arity *ArityError
	if _, err := Bind(params, nil); !errors.As(err, &arity) || arity.Min != 1 || arity.Max != 2 {
		t.Errorf("expected ArityError 1..2, got %v", err)
	}
	if _, err := Bind(params, []ts.Type{ts.String, ts.Number, ts.Boolean}); !errors.As(err, &arity) {
		t.Errorf("too many arguments: got %v", err)
	}
}

func TestInstantiateIsCaptureAvoiding(t *testing.T) {
	// (x: T, f: <T>(y: T) -> T) -> T
	inner := ts.Func{
		TypeParams: []ts.TypeParam{{Name: "T"}},
		Params:     []ts.Param{{Name: "y", Type: tT}},
		Return:     tT,
	}
	outer := ts.Func{
		Params: []ts.Param{{Name: "x", Type: tT}, {Name: "f", Type: inner}},
		Return: tT,
	}
	got, err := Instantiate(outer, []ts.TypeParam{{Name: "T"}}, []ts.Type{ts.Number})
	if err != nil {
		t.Fatal(err)
	}
	f := got.(ts.Func)
	if !ts.Equal(f.Params[0].Type, ts.Number) || !ts.Equal(f.Return, ts.Number) {
		t.Errorf("outer T not substituted: %s", f)
	}
	if !ts.Equal(f.Params[1].Type, inner) {
		t.Errorf("inner generic signature was rewritten: %s", f.Params[1].Type)
	}
}
