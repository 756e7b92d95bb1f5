package narrowing

import (
	"testing"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

type testHost struct {
	*typeenv.Env
}

func (h testHost) AnnotationType(t ast.Type) ts.Type {
	named, ok := t.(*ast.NamedType)
	if !ok {
		return ts.Unknown
	}
	if p, ok := ts.PrimitiveByName(named.Name); ok {
		return p
	}
	return ts.Ref{Name: named.Name}
}

func newNarrower(t *testing.T) *Narrower {
	t.Helper()
	env := typeenv.New()
	circle := ts.Object{Members: []ts.Member{
		{Name: "kind", Type: ts.StrLit("circle")},
		{Name: "radius", Type: ts.Number},
	}}
	square := ts.Object{Members: []ts.Member{
		{Name: "kind", Type: ts.StrLit("square")},
		{Name: "side", Type: ts.Number},
	}}
	for _, a := range []*typeenv.Alias{
		{Name: "Circle", Body: circle},
		{Name: "Square", Body: square},
		{Name: "Shape", Body: ts.NewUnion(ts.Ref{Name: "Circle"}, ts.Ref{Name: "Square"})},
	} {
		if err := env.RegisterAlias(a); err != nil {
			t.Fatal(err)
		}
	}
	_ = env.RegisterClass(&typeenv.Class{Name: "Animal"})
	_ = env.RegisterClass(&typeenv.Class{
		Name:     "Dog",
		Parent:   &ts.Ref{Name: "Animal"},
		Instance: ts.Object{Members: []ts.Member{{Name: "bark", Type: ts.Func{Return: ts.Void}, Kind: ts.MethodMember}}},
	})
	return New(testHost{env})
}

func ident(name string, t ts.Type) *ast.Identifier {
	id := &ast.Identifier{Name: name}
	id.Info.Type = t
	return id
}

func binary(op ast.BinaryOperator, l, r ast.Expression) *ast.BinaryExpression {
	return &ast.BinaryExpression{Operator: op, Left: l, Right: r}
}

func str(s string) *ast.StringLiteral { return &ast.StringLiteral{Value: s} }

func lookup(t *testing.T, ctx *Context, key string) string {
	t.Helper()
	got, ok := ctx.Lookup(key)
	if !ok {
		return "<declared>"
	}
	return got.String()
}

func TestTruthinessRemovesNil(t *testing.T) {
	n := newNarrower(t)
	a := ident("a", ts.Nullable(ts.Number))
	thenCtx, elseCtx := n.NarrowFromCondition(a, NewContext())
	if got := lookup(t, thenCtx, "a"); got != "number" {
		t.Errorf("then: a = %s, want number", got)
	}
	if got := lookup(t, elseCtx, "a"); got != "nil" {
		t.Errorf("else: a = %s, want nil", got)
	}
}

func TestConditions(t *testing.T) {
	n := newNarrower(t)
	shape := ts.Ref{Name: "Shape"}
	sNum := ts.NewUnion(ts.String, ts.Number)
	flag := ts.NewUnion(ts.Boolean, ts.Nil)

	kind := &ast.MemberExpression{Object: ident("s", shape), Name: "kind"}
	kind.Info.Type = ts.NewUnion(ts.StrLit("circle"), ts.StrLit("square"))

	typeCall := &ast.CallExpression{Callee: ident("type", nil), Args: []ast.Expression{ident("v", sNum)}}

	isString := ts.Func{
		Params: []ts.Param{{Name: "x", Type: ts.Unknown}},
		Return: ts.Predicate{Param: "x", Type: ts.String},
	}
	predCall := &ast.CallExpression{Callee: ident("isString", isString), Args: []ast.Expression{ident("v", sNum)}}

	tests := []struct {
		name     string
		cond     ast.Expression
		key      string
		wantThen string
		wantElse string
	}{
		{"not", &ast.UnaryExpression{Operator: ast.OpNot, Operand: ident("a", ts.Nullable(ts.String))}, "a", "nil", "string"},
		{"eq nil", binary(ast.OpEq, ident("a", ts.Nullable(ts.String)), &ast.NilLiteral{}), "a", "nil", "string"},
		{"ne nil", binary(ast.OpNe, &ast.NilLiteral{}, ident("a", ts.Nullable(ts.String))), "a", "string", "nil"},
		{"boolean truthiness", ident("f", flag), "f", "true", "false | nil"},
		{"literal equality", binary(ast.OpEq, ident("d", ts.NewUnion(ts.StrLit("up"), ts.StrLit("down"))), str("up")), "d", `"up"`, `"down"`},
		{"discriminant", binary(ast.OpEq, kind, str("circle")), "s", "Circle", "Square"},
		{"type call", binary(ast.OpEq, typeCall, str("string")), "v", "string", "number"},
		{"predicate call", predCall, "v", "string", "number"},
		{"instanceof", binary(ast.OpInstanceOf, ident("x", ts.NewUnion(ts.Ref{Name: "Animal"}, ts.String)), ident("Dog", nil)), "x", "Dog", "Animal | string"},
		{"zero is truthy", ident("z", ts.NewUnion(ts.NumLit(0), ts.Nil)), "z", "0", "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thenCtx, elseCtx := n.NarrowFromCondition(tt.cond, NewContext())
			if got := lookup(t, thenCtx, tt.key); got != tt.wantThen {
				t.Errorf("then: %s = %s, want %s", tt.key, got, tt.wantThen)
			}
			if got := lookup(t, elseCtx, tt.key); got != tt.wantElse {
				t.Errorf("else: %s = %s, want %s", tt.key, got, tt.wantElse)
			}
		})
	}
}

func TestLogicalComposition(t *testing.T) {
	n := newNarrower(t)
	a := ident("a", ts.Nullable(ts.String))
	b := ident("b", ts.Nullable(ts.Number))

	thenCtx, elseCtx := n.NarrowFromCondition(binary(ast.OpAnd, a, b), NewContext())
	want := map[string]string{"a": "string", "b": "number"}
	got := map[string]string{"a": lookup(t, thenCtx, "a"), "b": lookup(t, thenCtx, "b")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("a and b, then (-want +got):\n%s", diff)
	}
	// Either a is nil, or a is a string and b is nil.
	if got := lookup(t, elseCtx, "a"); got != "nil | string" {
		t.Errorf("a and b, else: a = %s", got)
	}
	if got := lookup(t, elseCtx, "b"); got != "<declared>" {
		t.Errorf("a and b, else: b = %s, want declared", got)
	}

	_, elseCtx = n.NarrowFromCondition(binary(ast.OpOr, a, b), NewContext())
	got = map[string]string{"a": lookup(t, elseCtx, "a"), "b": lookup(t, elseCtx, "b")}
	if diff := cmp.Diff(map[string]string{"a": "nil", "b": "nil"}, got); diff != "" {
		t.Errorf("a or b, else (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	base := NewContext()
	base.Refine("x", ts.String)

	a := base.Child()
	a.Refine("y", ts.Number)
	a.Refine("z", ts.StrLit("a"))
	b := base.Child()
	b.Refine("z", ts.StrLit("b"))

	m := Merge(a, b)
	got := map[string]string{}
	for _, k := range m.Keys() {
		got[k] = lookup(t, m, k)
	}
	want := map[string]string{"x": "string", "z": `"a" | "b"`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge (-want +got):\n%s", diff)
	}

	for _, ctx := range []*Context{NewContext(), base, a, b, m} {
		if !Merge(ctx, ctx).Equal(ctx) {
			t.Errorf("merge(ctx, ctx) != ctx for %v", ctx.Keys())
		}
	}
}

func TestMergeSkipsUnreachable(t *testing.T) {
	base := NewContext()
	returned := base.Child()
	returned.Refine("a", ts.Nil)
	returned.MarkUnreachable()
	fell := base.Child()
	fell.Refine("a", ts.String)

	m := Merge(returned, fell)
	if got := lookup(t, m, "a"); got != "string" {
		t.Errorf("a = %s, want string", got)
	}
	if m.Unreachable() {
		t.Error("merged path should be reachable")
	}
}

func TestRefineInvalidatesMemberPaths(t *testing.T) {
	ctx := NewContext()
	ctx.Refine("p.name", ts.String)
	child := ctx.Child()
	child.Refine("p", ts.Ref{Name: "Person"})
	if _, ok := child.Lookup("p.name"); ok {
		t.Error("p.name should be dropped when p is reassigned")
	}
	if _, ok := ctx.Lookup("p.name"); !ok {
		t.Error("parent context must not change")
	}
}

func TestExhaustiveness(t *testing.T) {
	n := newNarrower(t)
	strPat := &ast.TypePattern{Type: &ast.NamedType{Name: "string"}}
	numPat := &ast.TypePattern{Type: &ast.NamedType{Name: "number"}}
	circlePat := &ast.ObjectPattern{Fields: []*ast.ObjectPatternField{{Key: "kind", Value: &ast.LiteralPattern{Value: str("circle")}}}}
	squarePat := &ast.ObjectPattern{Fields: []*ast.ObjectPatternField{{Key: "kind", Value: &ast.LiteralPattern{Value: str("square")}}}}
	arm := func(p ast.Pattern) *ast.MatchArm { return &ast.MatchArm{Pattern: p} }

	tests := []struct {
		name    string
		subject ts.Type
		arms    []*ast.MatchArm
		want    string
	}{
		{"missing number", ts.NewUnion(ts.String, ts.Number), []*ast.MatchArm{arm(strPat)}, "number"},
		{"both types", ts.NewUnion(ts.String, ts.Number), []*ast.MatchArm{arm(strPat), arm(numPat)}, "never"},
		{"wildcard", ts.NewUnion(ts.String, ts.Number), []*ast.MatchArm{arm(&ast.WildcardPattern{})}, "never"},
		{"booleans", ts.Boolean, []*ast.MatchArm{
			arm(&ast.LiteralPattern{Value: &ast.BooleanLiteral{Value: true}}),
			arm(&ast.LiteralPattern{Value: &ast.BooleanLiteral{Value: false}}),
		}, "never"},
		{"discriminated shapes", ts.Ref{Name: "Shape"}, []*ast.MatchArm{arm(circlePat), arm(squarePat)}, "never"},
		{"missing shape", ts.Ref{Name: "Shape"}, []*ast.MatchArm{arm(circlePat)}, "Square"},
		{"guarded arm does not count", ts.String, []*ast.MatchArm{{Pattern: strPat, Guard: ident("ok", ts.Boolean)}}, "string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Remaining(tt.subject, tt.arms).String(); got != tt.want {
				t.Errorf("Remaining = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNarrowPattern(t *testing.T) {
	n := newNarrower(t)
	circlePat := &ast.ObjectPattern{Fields: []*ast.ObjectPatternField{{Key: "kind", Value: &ast.LiteralPattern{Value: str("circle")}}}}
	if got := n.NarrowPattern(circlePat, ts.Ref{Name: "Shape"}); !ts.Equal(got, ts.Ref{Name: "Circle"}) {
		t.Errorf("circle arm: %s", got)
	}
	lit := &ast.LiteralPattern{Value: &ast.NumberLiteral{Value: 1, Integer: true}}
	if got := n.NarrowPattern(lit, ts.NewUnion(ts.Number, ts.String)); !ts.Equal(got, ts.NumLit(1)) {
		t.Errorf("literal arm: %s", got)
	}
	tuple := ts.Tuple{Elems: []ts.Type{ts.String, ts.Number}}
	pair := &ast.ArrayPattern{Elements: []ast.Pattern{&ast.IdentifierPattern{Name: "a"}, &ast.IdentifierPattern{Name: "b"}}}
	if got := n.NarrowPattern(pair, ts.NewUnion(tuple, ts.String)); !ts.Equal(got, tuple) {
		t.Errorf("array arm: %s", got)
	}
}
