package typesystem

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mapResolver is a minimal Resolver for tests.
type mapResolver struct {
	named   map[string]Type
	parents map[string]string
	bounds  map[string]Type
}

func (r *mapResolver) Expand(t Type) (Type, bool) {
	switch v := t.(type) {
	case Ref:
		body, ok := r.named[v.Name]
		return body, ok
	case ClassRef:
		return Object{}, true
	}
	return nil, false
}

func (r *mapResolver) IsClass(name string) bool {
	_, ok := r.parents[name]
	return ok
}

func (r *mapResolver) IsSubclass(child, ancestor string) bool {
	for cur := child; cur != ""; cur = r.parents[cur] {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (r *mapResolver) Bound(name string) (Type, bool) {
	b, ok := r.bounds[name]
	return b, ok
}

func person() Object {
	return Object{Members: []Member{
		{Name: "name", Type: String},
		{Name: "age", Type: Number},
	}}
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Number, "number"},
		{StrLit("a"), `"a"`},
		{NumLit(1.5), "1.5"},
		{Array{Elem: NewUnion(String, Nil)}, "(string | nil)[]"},
		{Tuple{Elems: []Type{String, Number}}, "[string, number]"},
		{Object{Members: []Member{{Name: "name", Type: String}, {Name: "age", Type: Number, Optional: true}}}, "{ name: string, age?: number }"},
		{Func{TypeParams: []TypeParam{{Name: "T"}}, Params: []Param{{Name: "x", Type: TVar{Name: "T"}}}, Return: TVar{Name: "T"}}, "<T>(x: T) -> T"},
		{Ref{Name: "Box", Args: []Type{Number}}, "Box<number>"},
		{ClassRef{Name: "A"}, "class A"},
		{Predicate{Param: "v", Type: String}, "v is string"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewUnionNormalizes(t *testing.T) {
	tests := []struct {
		name string
		in   []Type
		want Type
	}{
		{"flatten and dedupe", []Type{NewUnion(String, Number), String, Nil}, Union{Types: []Type{String, Number, Nil}}},
		{"single member", []Type{String, String}, String},
		{"empty is never", nil, Never},
		{"never dropped", []Type{Never, String}, String},
		{"unknown absorbs", []Type{String, Unknown}, Unknown},
		{"literal absorbed", []Type{StrLit("a"), String}, String},
		{"true false collapse", []Type{BoolLit(true), BoolLit(false)}, Boolean},
		{"integer under number", []Type{Integer, Number}, Number},
		{"structural dedupe", []Type{person(), person()}, person()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewUnion(tt.in...)
			if !Equal(got, tt.want) {
				t.Errorf("NewUnion = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNullableHelpers(t *testing.T) {
	opt := Nullable(Number)
	if !HasNil(opt) {
		t.Fatalf("Nullable(number) = %s, want nil member", opt)
	}
	if got := RemoveNil(opt); !Equal(got, Number) {
		t.Errorf("RemoveNil = %s, want number", got)
	}
	if got := Nullable(opt); !Equal(got, opt) {
		t.Errorf("Nullable not idempotent: %s", got)
	}
	if got := Widen(NewUnion(StrLit("a"), StrLit("b"))); !Equal(got, String) {
		t.Errorf("Widen = %s, want string", got)
	}
}

func TestSubstIsCaptureAvoiding(t *testing.T) {
	// <U>(x: T, inner: <T>(y: T) -> T) -> T
	inner := Func{
		TypeParams: []TypeParam{{Name: "T"}},
		Params:     []Param{{Name: "y", Type: TVar{Name: "T"}}},
		Return:     TVar{Name: "T"},
	}
	outer := Func{
		Params: []Param{{Name: "x", Type: TVar{Name: "T"}}, {Name: "inner", Type: inner}},
		Return: TVar{Name: "T"},
	}
	got := outer.Apply(Subst{{Param: "T", Type: Number}}).(Func)

	want := Func{
		Params: []Param{{Name: "x", Type: Number}, {Name: "inner", Type: inner}},
		Return: Number,
	}
	if diff := cmp.Diff(want.String(), got.String()); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
	if !Equal(got.Params[1].Type, inner) {
		t.Errorf("inner generic was rewritten: %s", got.Params[1].Type)
	}
}

func TestSubstOrdering(t *testing.T) {
	s := Subst{}.Bind("A", Number).Bind("B", String).Bind("A", Boolean)
	if diff := cmp.Diff([]string{"A", "B"}, s.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	if got, _ := s.Lookup("A"); !Equal(got, Boolean) {
		t.Errorf("Lookup(A) = %s, want boolean", got)
	}
	if _, ok := s.Without("A").Lookup("A"); ok {
		t.Error("Without(A) still binds A")
	}
}

func TestFreeTypeVariables(t *testing.T) {
	f := Func{
		TypeParams: []TypeParam{{Name: "T"}},
		Params:     []Param{{Name: "x", Type: TVar{Name: "T"}}, {Name: "y", Type: TVar{Name: "U"}}},
		Return:     Array{Elem: TVar{Name: "U"}},
	}
	if diff := cmp.Diff([]TVar{{Name: "U"}}, f.FreeTypeVariables()); diff != "" {
		t.Errorf("FreeTypeVariables (-want +got):\n%s", diff)
	}
}

func TestIsAssignable(t *testing.T) {
	r := &mapResolver{
		named: map[string]Type{
			"Named":  Object{Members: []Member{{Name: "name", Type: String}}},
			"Person": person(),
			"Base":   Object{Members: []Member{{Name: "id", Type: Number}}},
			"Derived": Object{Members: []Member{
				{Name: "id", Type: Number},
				{Name: "extra", Type: String},
			}},
		},
		parents: map[string]string{"Base": "", "Derived": "Base"},
		bounds:  map[string]Type{"T": Ref{Name: "Named"}},
	}

	numToNum := Func{Params: []Param{{Name: "x", Type: Number}}, Return: Number}
	intToNum := Func{Params: []Param{{Name: "x", Type: Integer}}, Return: Number}

	tests := []struct {
		name string
		src  Type
		dst  Type
		want bool
	}{
		{"same primitive", Number, Number, true},
		{"integer to number", Integer, Number, true},
		{"number to integer", Number, Integer, false},
		{"whole literal to integer", NumLit(3), Integer, true},
		{"fraction literal to integer", NumLit(3.5), Integer, false},
		{"literal widens", StrLit("x"), String, true},
		{"unknown source", Unknown, Number, true},
		{"unknown target", person(), Unknown, true},
		{"never source", Never, String, true},
		{"never target", String, Never, false},
		{"nil to optional", Nil, Nullable(String), true},
		{"optional to plain", Nullable(String), String, false},
		{"union source all members", NewUnion(StrLit("a"), StrLit("b")), String, true},
		{"union target any member", Number, NewUnion(String, Number), true},
		{"object width subtyping", person(), Ref{Name: "Named"}, true},
		{"object missing member", Object{}, Ref{Name: "Named"}, false},
		{"object alias", Object{Members: []Member{{Name: "name", Type: StrLit("Alice")}, {Name: "age", Type: NumLit(30)}}}, Ref{Name: "Person"}, true},
		{"optional member may be absent", Object{}, Object{Members: []Member{{Name: "x", Type: Number, Optional: true}}}, true},
		{"array covariance", Array{Elem: Integer}, Array{Elem: Number}, true},
		{"tuple to array", Tuple{Elems: []Type{NumLit(1), NumLit(2)}}, Array{Elem: Number}, true},
		{"object to table", person(), Table, true},
		{"param contravariance", numToNum, intToNum, true},
		{"param covariance rejected", intToNum, numToNum, false},
		{"void return accepts any", numToNum, Func{Params: []Param{{Name: "x", Type: Number}}, Return: Void}, true},
		{"fewer params ok", Func{Return: Number}, numToNum, true},
		{"class subclass", Ref{Name: "Derived"}, Ref{Name: "Base"}, true},
		{"class ref subclass", ClassRef{Name: "Derived"}, ClassRef{Name: "Base"}, true},
		{"predicate is boolean", Predicate{Param: "v", Type: String}, Boolean, true},
		{"type param bound", TVar{Name: "T"}, Ref{Name: "Named"}, true},
		{"index signature", person(), Object{Index: &IndexSignature{Key: String, Value: NewUnion(String, Number)}}, true},
		{"void accepts nil", Nil, Void, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAssignable(tt.src, tt.dst, r); got != tt.want {
				t.Errorf("IsAssignable(%s, %s) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestBivariantParams(t *testing.T) {
	numToNum := Func{Params: []Param{{Name: "x", Type: Number}}, Return: Number}
	intToNum := Func{Params: []Param{{Name: "x", Type: Integer}}, Return: Number}
	c := &Compat{Bivariant: true}
	if !c.IsAssignable(intToNum, numToNum) {
		t.Error("bivariant comparison should accept narrower parameter")
	}
}

func TestLooseNil(t *testing.T) {
	c := &Compat{LooseNil: true}
	if !c.IsAssignable(Nil, String) {
		t.Error("nil should be assignable when strict nil checks are off")
	}
}

func TestRecursiveAliasAssignability(t *testing.T) {
	// type Node = { value: number, next: Node | nil }
	node := Object{Members: []Member{
		{Name: "value", Type: Number},
		{Name: "next", Type: Nullable(Ref{Name: "Node"})},
	}}
	r := &mapResolver{named: map[string]Type{"Node": node}}
	list := Object{Members: []Member{
		{Name: "value", Type: NumLit(1)},
		{Name: "next", Type: Ref{Name: "Node"}},
	}}
	if !IsAssignable(list, Ref{Name: "Node"}, r) {
		t.Error("recursive structural comparison should terminate and succeed")
	}
}

func TestStructuralSatisfaction(t *testing.T) {
	iface := Object{Members: []Member{
		{Name: "name", Type: String},
		{Name: "greet", Type: Func{Return: String}, Kind: MethodMember},
		{Name: "nick", Type: String, Optional: true},
	}}
	candidates := []Object{
		{Members: []Member{{Name: "name", Type: String}, {Name: "greet", Type: Func{Return: StrLit("hi")}}}},
		{Members: []Member{{Name: "greet", Type: Func{Return: String}}, {Name: "name", Type: StrLit("x")}, {Name: "age", Type: Number}}},
		{Members: []Member{{Name: "name", Type: String}, {Name: "greet", Type: Func{Return: String}}, {Name: "nick", Type: StrLit("n")}}},
	}
	for i, c := range candidates {
		if !IsAssignable(c, iface, nil) {
			t.Errorf("candidate %d (%s) should satisfy %s", i, c, iface)
		}
	}
}

func TestReplaceRef(t *testing.T) {
	in := Object{Members: []Member{{Name: "next", Type: Nullable(Ref{Name: "Self"})}}}
	got := ReplaceRef(in, "Self", Ref{Name: "Node"})
	want := Object{Members: []Member{{Name: "next", Type: Nullable(Ref{Name: "Node"})}}}
	if !Equal(got, want) {
		t.Errorf("ReplaceRef = %s, want %s", got, want)
	}
	if !MentionsRef(got, "Node") || MentionsRef(got, "Self") {
		t.Errorf("MentionsRef mismatch on %s", got)
	}
}

func TestNewIntersectionMergesObjects(t *testing.T) {
	a := Object{Members: []Member{{Name: "a", Type: Number}}}
	b := Object{Members: []Member{{Name: "b", Type: String}}}
	got := NewIntersection(a, b)
	want := Object{Members: []Member{{Name: "a", Type: Number}, {Name: "b", Type: String}}}
	if !Equal(got, want) {
		t.Errorf("NewIntersection = %s, want %s", got, want)
	}
}
