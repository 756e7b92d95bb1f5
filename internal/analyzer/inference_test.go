package analyzer

import (
	"testing"

	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

func TestOperators(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"arithmetic", `{kind: binary, op: "+", left: {kind: number, value: 1}, right: {kind: number, value: 2}}`, nil},
		{"arithmetic on string", `{kind: binary, op: "-", left: {kind: string, value: a}, right: {kind: number, value: 2}}`, []string{"TypeMismatch"}},
		{"concat number", `{kind: binary, op: "..", left: {kind: string, value: a}, right: {kind: number, value: 2}}`, nil},
		{"concat boolean", `{kind: binary, op: "..", left: {kind: string, value: a}, right: {kind: bool, value: true}}`, []string{"TypeMismatch"}},
		{"compare mixed", `{kind: binary, op: "<", left: {kind: number, value: 1}, right: {kind: string, value: b}}`, []string{"TypeMismatch"}},
		{"equality without overlap", `{kind: binary, op: "==", left: {kind: number, value: 1}, right: {kind: string, value: b}}`, []string{"TypeMismatch"}},
		{"length of string", `{kind: unary, op: "#", operand: {kind: string, value: abc}}`, nil},
		{"negate string", `{kind: unary, op: "-", operand: {kind: string, value: abc}}`, []string{"TypeMismatch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, `
statements:
  - kind: local
    name: v
    value: `+tt.expr+`
`)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestCoalesceRemovesNil(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: label
    params: [{name: s, type: {kind: nullable, inner: string}}]
    returns: string
    body:
      - kind: return
        values:
          - {kind: binary, op: "??", left: s, right: {kind: string, value: none}}
`)
	expectNoDiagnostics(t, res)
}

func TestLambdaInference(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: declare_function
    name: map
    type_params: [T, U]
    params:
      - {name: xs, type: {kind: array, elem: T}}
      - name: f
        type:
          kind: function
          params: [{name: x, type: T}]
          returns: U
    returns: {kind: array, elem: U}
  - kind: local
    name: ys
    value:
      kind: call
      callee: map
      args:
        - kind: array
          elements: [{kind: number, value: 1}, {kind: number, value: 2}]
        - kind: arrow
          params: [x]
          result: {kind: call, callee: tostring, args: [x]}
`)
	expectNoDiagnostics(t, res)
	if got, want := topLevel(t, res, "ys").Type, (ts.Array{Elem: ts.String}); !ts.Equal(got, want) {
		t.Errorf("ys: got %s, want %s", got, want)
	}
}

func TestContextualLambdaParameters(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: local
    name: inc
    type:
      kind: function
      params: [{name: n, type: number}]
      returns: number
    value:
      kind: arrow
      params: [n]
      result: {kind: binary, op: "+", left: n, right: {kind: number, value: 1}}
`)
	expectNoDiagnostics(t, res)
}

func TestIpairsLoop(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want []string
	}{
		{"element type", "number", nil},
		{"wrong element type", "string", []string{"TypeMismatch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, `
statements:
  - kind: function
    name: each
    params: [{name: xs, type: {kind: array, elem: number}}]
    body:
      - kind: for_in
        vars: [i, v]
        iter: {kind: call, callee: ipairs, args: [xs]}
        body:
          - kind: local
            name: index
            type: number
            value: i
          - kind: local
            name: item
            type: `+tt.typ+`
            value: v
`)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestArrayIndexing(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: local
    name: xs
    value:
      kind: array
      elements: [{kind: string, value: a}, {kind: string, value: b}]
  - kind: local
    name: first
    type: string
    value: {kind: index, object: xs, index: {kind: number, value: 1}}
`)
	expectNoDiagnostics(t, res)
	if got := topLevel(t, res, "xs").Type; !ts.Equal(got, ts.Array{Elem: ts.String}) {
		t.Errorf("xs: got %s, want string[]", got)
	}
}

func TestStringMethods(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: local
    name: s
    value: {kind: string, value: hello}
  - kind: local
    name: loud
    type: string
    value: {kind: method_call, receiver: s, method: upper}
  - kind: expr
    expr: {kind: method_call, receiver: s, method: shout}
`)
	expectCodes(t, res, "UnknownMember")
}

func TestTypeAssertion(t *testing.T) {
	expectNoDiagnostics(t, analyze(t, `
statements:
  - kind: declare_const
    name: raw
    type: {kind: union, types: [string, number]}
  - kind: local
    name: s
    type: string
    value: {kind: as, expr: raw, type: string}
`))
	expectCodes(t, analyze(t, `
statements:
  - kind: local
    name: s
    value: {kind: as, expr: {kind: number, value: 1}, type: string}
`), "TypeMismatch")
}
