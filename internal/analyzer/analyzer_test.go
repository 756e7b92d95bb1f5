package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

func TestTypeAliasObject(t *testing.T) {
	tests := []struct {
		name string
		age  string
		want []string
	}{
		{"number field", "{kind: number, value: 30}", nil},
		{"string for number", "{kind: string, value: thirty}", []string{"TypeMismatch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, `
statements:
  - kind: type
    name: Person
    type:
      kind: object
      members:
        - {name: name, type: string}
        - {name: age, type: number}
  - kind: const
    name: p
    type: Person
    value:
      kind: object
      fields:
        - {name: name, value: {kind: string, value: Alice}}
        - {name: age, value: `+tt.age+`}
`)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestReadonlyAssignment(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: const
    name: x
    value: {kind: number, value: 1}
  - kind: assign
    target: x
    value: {kind: number, value: 2}
`)
	expectCodes(t, res, "ReadonlyAssignment")
}

func TestCompoundAssignmentToConstant(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: const
    name: x
    value: {kind: number, value: 1}
  - kind: assign
    target: x
    op: "+"
    value: {kind: number, value: 2}
`)
	expectCodes(t, res, "ReadonlyAssignment")
}

func TestUndefinedName(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: expr
    expr: {kind: call, callee: missing}
`)
	expectCodes(t, res, "UndefinedSymbol")
}

func TestUndefinedNameSuggestion(t *testing.T) {
	res := analyze(t, `
statements:
  - {kind: local, name: count, value: {kind: number, value: 1}}
  - {kind: local, name: total, value: countr}
`)
	expectCodes(t, res, "UndefinedSymbol")
	if msg := res.Diagnostics[0].Message; !strings.Contains(msg, "did you mean: count?") {
		t.Errorf("message %q lacks a suggestion", msg)
	}
}

func TestDuplicateLocal(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: local
    name: a
    value: {kind: number, value: 1}
  - kind: local
    name: a
    value: {kind: number, value: 2}
`)
	expectCodes(t, res, "DuplicateDeclaration")
}

func TestCallArity(t *testing.T) {
	tests := []struct {
		name string
		args string
		want []string
	}{
		{"exact", "[{kind: number, value: 1}]", nil},
		{"missing", "[]", []string{"Arity"}},
		{"extra", "[{kind: number, value: 1}, {kind: number, value: 2}]", []string{"Arity"}},
		{"wrong type", "[{kind: string, value: one}]", []string{"TypeMismatch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, `
statements:
  - kind: function
    name: double
    params: [{name: n, type: number}]
    returns: number
    body:
      - kind: return
        values:
          - {kind: binary, op: "*", left: n, right: {kind: number, value: 2}}
  - kind: expr
    expr: {kind: call, callee: double, args: `+tt.args+`}
`)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestGenericInference(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: id
    type_params: [T]
    params: [{name: x, type: T}]
    returns: T
    body:
      - {kind: return, values: [x]}
  - kind: local
    name: n
    value: {kind: call, callee: id, args: [{kind: number, value: 5}]}
`)
	expectNoDiagnostics(t, res)

	call := res.Program.Statements[1].(*ast.VariableDeclaration).Value.(*ast.CallExpression)
	if diff := cmp.Diff([]ts.Type{ts.Number}, call.InferredTypeArgs); diff != "" {
		t.Errorf("inferred type arguments (-want +got):\n%s", diff)
	}
	if got := topLevel(t, res, "n").Type; !ts.Equal(got, ts.Number) {
		t.Errorf("n: got %s, want number", got)
	}
}

func TestExplicitTypeArgumentMismatch(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: id
    type_params: [T]
    params: [{name: x, type: T}]
    returns: T
    body:
      - {kind: return, values: [x]}
  - kind: expr
    expr:
      kind: call
      callee: id
      type_args: [string]
      args: [{kind: number, value: 5}]
`)
	expectCodes(t, res, "TypeMismatch")
}

func TestTruthinessRemovesNil(t *testing.T) {
	narrowed := `
statements:
  - kind: function
    name: f
    params: [{name: a, type: {kind: nullable, inner: string}}]
    returns: string
    body:
      - kind: if
        cond: a
        then:
          - {kind: return, values: [a]}
      - kind: return
        values: [{kind: string, value: ""}]
`
	expectNoDiagnostics(t, analyze(t, narrowed))

	unguarded := `
statements:
  - kind: function
    name: f
    params: [{name: a, type: {kind: nullable, inner: string}}]
    returns: string
    body:
      - {kind: return, values: [a]}
`
	expectCodes(t, analyze(t, unguarded), "TypeMismatch")

	opts := config.DefaultOptions()
	opts.StrictNullChecks = false
	expectNoDiagnostics(t, analyzeWith(t, opts, nil, unguarded))
}

func TestMissingReturn(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: f
    params: [{name: b, type: boolean}]
    returns: number
    body:
      - kind: if
        cond: b
        then:
          - kind: return
            values: [{kind: number, value: 1}]
`)
	expectCodes(t, res, "TypeMismatch")
}

func TestBreakOutsideLoop(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: break
`)
	expectCodes(t, res, "InvalidReturn")
}

func TestNumericForVariable(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: local
    name: total
    type: number
    value: {kind: number, value: 0}
  - kind: for_num
    var: i
    start: {kind: number, value: 1}
    limit: {kind: number, value: 10}
    body:
      - kind: assign
        target: total
        value: {kind: binary, op: "+", left: total, right: i}
`)
	expectNoDiagnostics(t, res)
}

func TestResultHasErrors(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: break
`)
	if !res.HasErrors() {
		t.Error("expected HasErrors")
	}
	if res.Exports == nil {
		t.Error("expected an export table even when checking fails")
	}
}
