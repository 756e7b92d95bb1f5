package astio

import (
	"testing"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/google/go-cmp/cmp"
)

func span(l, c, el, ec int) token.Span {
	s := token.NewSpan(l, c, el, ec)
	s.File = "person.yaml"
	return s
}

// at is the position yaml.v3 reports for a shorthand scalar.
func at(l, c int) token.Span {
	s := token.At(l, c)
	s.File = "person.yaml"
	return s
}

func TestDecodeDeclaration(t *testing.T) {
	src := `
module: people
statements:
  - kind: type
    name: Person
    span: [1, 1, 1, 40]
    type:
      kind: object
      span: [1, 15, 1, 40]
      members:
        - {name: name, type: string, span: [1, 17, 1, 29]}
        - {name: age, type: number, span: [1, 31, 1, 38]}
  - kind: const
    name: p
    span: [2, 1, 2, 45]
    type: {kind: named, name: Person, span: [2, 10, 2, 16]}
    value:
      kind: object
      span: [2, 19, 2, 45]
      fields:
        - {name: name, value: {kind: string, value: Alice, span: [2, 28, 2, 35]}, span: [2, 21, 2, 35]}
        - {name: age, value: {kind: number, value: 30, span: [2, 43, 2, 45]}, span: [2, 37, 2, 45]}
`
	prog, err := Decode([]byte(src), "person.yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := &ast.Program{
		File:   "person.yaml",
		Module: "people",
		Statements: []ast.Statement{
			&ast.TypeAliasDeclaration{
				Span: span(1, 1, 1, 40),
				Name: "Person",
				Type: &ast.ObjectType{
					Span: span(1, 15, 1, 40),
					Members: []*ast.ObjectTypeMember{
						{Span: span(1, 17, 1, 29), Name: "name", Type: &ast.NamedType{Span: at(11, 30), Name: "string"}},
						{Span: span(1, 31, 1, 38), Name: "age", Type: &ast.NamedType{Span: at(12, 29), Name: "number"}},
					},
				},
			},
			&ast.VariableDeclaration{
				Span:   span(2, 1, 2, 45),
				Kind:   ast.DeclConst,
				Target: &ast.IdentifierPattern{Span: span(2, 1, 2, 45), Name: "p"},
				Type:   &ast.NamedType{Span: span(2, 10, 2, 16), Name: "Person"},
				Value: &ast.ObjectExpression{
					Span: span(2, 19, 2, 45),
					Fields: []*ast.ObjectField{
						{Span: span(2, 21, 2, 35), Kind: ast.FieldNamed, Name: "name", Value: &ast.StringLiteral{Span: span(2, 28, 2, 35), Value: "Alice"}},
						{Span: span(2, 37, 2, 45), Kind: ast.FieldNamed, Name: "age", Value: &ast.NumberLiteral{Span: span(2, 43, 2, 45), Value: 30, Integer: true}},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, prog); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeShorthandSpans(t *testing.T) {
	src := `statements:
  - kind: expr
    expr:
      kind: call
      callee: print
      args: [x]
`
	prog, err := Decode([]byte(src), "s.yaml")
	if err != nil {
		t.Fatal(err)
	}
	call := prog.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	id, ok := call.Callee.(*ast.Identifier)
	if !ok || id.Name != "print" {
		t.Fatalf("callee = %#v", call.Callee)
	}
	if id.Span.Start.Line != 5 || id.Span.File != "s.yaml" {
		t.Errorf("shorthand span = %v, want line 5 from the document", id.Span)
	}
	if arg := call.Args[0].(*ast.Identifier); arg.Name != "x" {
		t.Errorf("arg = %q", arg.Name)
	}
}

func TestDecodeUnknownKindsArePlaceholders(t *testing.T) {
	src := `statements:
  - kind: goto
    label: top
  - kind: local
    name: v
    value: {kind: lambda_calculus}
  - kind: expr
    expr:
      kind: match
      subject: v
      arms:
        - pattern: {kind: regex}
          body: {kind: nil}
`
	prog, err := Decode([]byte(src), "bad.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := prog.Statements[0].(*ast.BadStatement); !ok {
		t.Errorf("statement 0 = %T, want *ast.BadStatement", prog.Statements[0])
	}
	vd := prog.Statements[1].(*ast.VariableDeclaration)
	if _, ok := vd.Value.(*ast.BadExpression); !ok {
		t.Errorf("value = %T, want *ast.BadExpression", vd.Value)
	}
	me := prog.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.MatchExpression)
	if _, ok := me.Arms[0].Pattern.(*ast.BadPattern); !ok {
		t.Errorf("pattern = %T, want *ast.BadPattern", me.Arms[0].Pattern)
	}
}

func TestDecodeClass(t *testing.T) {
	src := `statements:
  - kind: class
    name: Derived
    final: true
    extends: Base
    members:
      - {kind: property, name: x, access: protected, type: number}
      - kind: method
        name: get
        returns: number
        body:
          - kind: return
            values: [{kind: member, object: {kind: self}, name: x}]
      - {kind: constructor, params: [{name: x, type: number}]}
`
	prog, err := Decode([]byte(src), "c.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cd := prog.Statements[0].(*ast.ClassDeclaration)
	if !cd.Final || cd.Extends == nil || cd.Extends.Name != "Base" {
		t.Fatalf("class header = %+v", cd)
	}
	if got := cd.Member("x"); got == nil || got.Access != ast.Protected || got.Kind != ast.PropertyMember {
		t.Errorf("property x = %+v", got)
	}
	get := cd.Member("get")
	if get == nil || get.Function == nil || len(get.Function.Body.Statements) != 1 {
		t.Fatalf("method get = %+v", get)
	}
	ctor := cd.Member("constructor")
	if ctor == nil || ctor.Kind != ast.ConstructorMember || len(ctor.Function.Params) != 1 {
		t.Errorf("constructor = %+v", ctor)
	}
}

func TestDecodeRejectsNonMapping(t *testing.T) {
	for _, src := range []string{"- 1\n- 2\n", "module: x\n", "statements: [unclosed"} {
		if _, err := Decode([]byte(src), "x.yaml"); err == nil {
			t.Errorf("Decode(%q) succeeded", src)
		}
	}
}

func TestDecodeErrorHandling(t *testing.T) {
	src := `statements:
  - kind: try
    body: [{kind: throw, value: {kind: string, value: boom}}]
    catches:
      - {var: e, types: [string, number], body: [{kind: rethrow}]}
    finally: []
  - kind: local
    name: v
    value: {kind: error_chain, left: {kind: try, value: f, var: e, catch: g}, right: {kind: nil}}
`
	prog, err := Decode([]byte(src), "t.yaml")
	if err != nil {
		t.Fatal(err)
	}
	try := prog.Statements[0].(*ast.TryStatement)
	if len(try.Body.Statements) != 1 || try.Finally == nil || len(try.Catches) != 1 {
		t.Fatalf("try = %+v", try)
	}
	c := try.Catches[0]
	if c.Var != "e" || len(c.Types) != 2 {
		t.Errorf("catch = %+v", c)
	}
	if _, ok := c.Body.Statements[0].(*ast.RethrowStatement); !ok {
		t.Errorf("catch body = %T, want *ast.RethrowStatement", c.Body.Statements[0])
	}
	chain, ok := prog.Statements[1].(*ast.VariableDeclaration).Value.(*ast.ErrorChainExpression)
	if !ok {
		t.Fatalf("value is not an error chain")
	}
	if te, ok := chain.Left.(*ast.TryExpression); !ok || te.CatchVar != "e" {
		t.Errorf("left = %+v", chain.Left)
	}
}

func TestDecodeAmbientAndDecorators(t *testing.T) {
	src := `statements:
  - {kind: declare_type, name: Id, type: number}
  - {kind: declare_interface, name: Named, members: [{name: name, type: string}]}
  - kind: declare_namespace
    name: json
    members:
      - {kind: export, decl: {kind: declare_const, name: version, type: string}}
  - kind: class
    name: A
    decorators: [sealed]
    members:
      - {kind: property, name: x, decorators: [{kind: call, callee: validate}]}
`
	prog, err := Decode([]byte(src), "d.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := prog.Statements[0].(*ast.TypeAliasDeclaration); !ok {
		t.Errorf("declare_type = %T", prog.Statements[0])
	}
	if id, ok := prog.Statements[1].(*ast.InterfaceDeclaration); !ok || len(id.Body.Members) != 1 {
		t.Errorf("declare_interface = %+v", prog.Statements[1])
	}
	if ns, ok := prog.Statements[2].(*ast.DeclareNamespace); !ok || ns.Name != "json" || len(ns.Members) != 1 {
		t.Errorf("declare_namespace = %+v", prog.Statements[2])
	}
	cd := prog.Statements[3].(*ast.ClassDeclaration)
	if len(cd.Decorators) != 1 || len(cd.Members[0].Decorators) != 1 {
		t.Errorf("decorators = %v / %v", cd.Decorators, cd.Members[0].Decorators)
	}
}
