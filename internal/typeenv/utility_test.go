package typeenv

import (
	"errors"
	"testing"

	"github.com/funvibe/tlcheck/internal/config"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

func keys(names ...string) ts.Type {
	lits := make([]ts.Type, len(names))
	for i, n := range names {
		lits[i] = ts.StrLit(n)
	}
	return ts.NewUnion(lits...)
}

func TestPartialIdempotent(t *testing.T) {
	inputs := []ts.Type{
		personType(),
		ts.Object{},
		ts.Object{Members: []ts.Member{{Name: "x", Type: ts.Number, Optional: true, Readonly: true}}},
		ts.NewUnion(personType(), ts.Object{Members: []ts.Member{{Name: "k", Type: ts.StrLit("a")}}}),
	}
	for _, in := range inputs {
		once, err := Partial(in)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Partial(once)
		if err != nil {
			t.Fatal(err)
		}
		if !ts.Equal(once, twice) {
			t.Errorf("Partial<Partial<%s>> = %s, want %s", in, twice, once)
		}
	}
}

func TestMemberModifiers(t *testing.T) {
	p, _ := Partial(personType())
	r, _ := Required(p)
	if !ts.Equal(r, personType()) {
		t.Errorf("Required<Partial<T>> = %s, want %s", r, personType())
	}
	ro, _ := Readonly(personType())
	for _, m := range ro.(ts.Object).Members {
		if !m.Readonly {
			t.Errorf("member %s should be readonly", m.Name)
		}
	}
	if _, err := Partial(ts.Number); err == nil {
		t.Error("Partial<number> should fail")
	}
}

func TestPickOmitRecord(t *testing.T) {
	picked, err := Pick(personType(), keys("name"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"name"}, picked.(ts.Object).Names()); diff != "" {
		t.Errorf("Pick (-want +got):\n%s", diff)
	}
	omitted, _ := Omit(personType(), keys("name"))
	if diff := cmp.Diff([]string{"age"}, omitted.(ts.Object).Names()); diff != "" {
		t.Errorf("Omit (-want +got):\n%s", diff)
	}
	rec, _ := Record(keys("a", "b"), ts.Boolean)
	want := ts.Object{Members: []ts.Member{{Name: "a", Type: ts.Boolean}, {Name: "b", Type: ts.Boolean}}}
	if !ts.Equal(rec, want) {
		t.Errorf("Record = %s, want %s", rec, want)
	}
	dict, _ := Record(ts.String, ts.Number)
	if dict.(ts.Object).Index == nil {
		t.Error("Record<string, V> should be an index signature")
	}
	var uerr *UtilityError
	if _, err := Pick(personType(), ts.String); !errors.As(err, &uerr) {
		t.Errorf("Pick with non-literal keys: got %v", err)
	}
}

func TestUnionFilters(t *testing.T) {
	u := ts.NewUnion(ts.String, ts.Number, ts.Nil)
	if got := Exclude(u, ts.String, nil); !ts.Equal(got, ts.NewUnion(ts.Number, ts.Nil)) {
		t.Errorf("Exclude = %s", got)
	}
	if got := Extract(u, ts.Number, nil); !ts.Equal(got, ts.Number) {
		t.Errorf("Extract = %s", got)
	}
	if got := NonNilable(u); !ts.Equal(got, ts.NewUnion(ts.String, ts.Number)) {
		t.Errorf("NonNilable = %s", got)
	}
	if got := Nilable(ts.String); !ts.Equal(got, ts.NewUnion(ts.String, ts.Nil)) {
		t.Errorf("Nilable = %s", got)
	}
}

func TestFunctionProjections(t *testing.T) {
	f := ts.Func{
		Params: []ts.Param{{Name: "a", Type: ts.String}, {Name: "b", Type: ts.Number, Optional: true}},
		Return: ts.Boolean,
	}
	ret, _ := ReturnType(f)
	if !ts.Equal(ret, ts.Boolean) {
		t.Errorf("ReturnType = %s", ret)
	}
	params, _ := Parameters(f)
	want := ts.Tuple{Elems: []ts.Type{ts.String, ts.Nullable(ts.Number)}}
	if !ts.Equal(params, want) {
		t.Errorf("Parameters = %s, want %s", params, want)
	}
	if _, err := ReturnType(ts.String); err == nil {
		t.Error("ReturnType<string> should fail")
	}
}

func TestUtilityThroughResolve(t *testing.T) {
	e := New()
	_ = e.RegisterAlias(&Alias{Name: "Person", Body: personType()})
	got, err := e.Resolve(ts.Ref{Name: config.PickTypeName, Args: []ts.Type{
		ts.Ref{Name: config.PartialTypeName, Args: []ts.Type{ts.Ref{Name: "Person"}}},
		ts.StrLit("age"),
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := ts.Object{Members: []ts.Member{{Name: "age", Type: ts.Number, Optional: true}}}
	if !ts.Equal(got, want) {
		t.Errorf("Pick<Partial<Person>, \"age\"> = %s, want %s", got, want)
	}

	key, err := e.Resolve(ts.Ref{Name: config.KeyOfTypeName, Args: []ts.Type{ts.Ref{Name: "Person"}}})
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(key, keys("name", "age")) {
		t.Errorf("KeyOf<Person> = %s", key)
	}

	var arity *ArityError
	if _, err := e.Resolve(ts.Ref{Name: config.PartialTypeName}); !errors.As(err, &arity) {
		t.Errorf("Partial without args: got %v", err)
	}
}
