package analyzer

import (
	"testing"

	"github.com/funvibe/tlcheck/internal/config"
)

const accountClasses = `
  - kind: class
    name: Account
    members:
      - {kind: property, name: pin, access: private, type: number, init: {kind: number, value: 1234}}
      - {kind: property, name: balance, access: protected, type: number, init: {kind: number, value: 0}}
      - {kind: property, name: owner, readonly: true, type: string, init: {kind: string, value: nobody}}
  - kind: class
    name: Savings
    extends: Account
    members:
      - kind: method
        name: total
        returns: number
        body:
          - kind: return
            values:
              - {kind: member, object: {kind: self}, name: balance}
`

func TestMemberAccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "protected from subclass",
			want: nil,
		},
		{
			name: "private from unrelated class",
			body: `
  - kind: class
    name: Auditor
    members:
      - kind: method
        name: peek
        params: [{name: a, type: Account}]
        returns: number
        body:
          - kind: return
            values:
              - {kind: member, object: a, name: pin}
`,
			want: []string{"PrivateMemberAccess"},
		},
		{
			name: "private from subclass",
			body: `
  - kind: class
    name: Checking
    extends: Account
    members:
      - kind: method
        name: leak
        returns: number
        body:
          - kind: return
            values:
              - {kind: member, object: {kind: self}, name: pin}
`,
			want: []string{"PrivateMemberAccess"},
		},
		{
			name: "protected from module code",
			body: `
  - kind: function
    name: drain
    params: [{name: a, type: Account}]
    returns: number
    body:
      - kind: return
        values:
          - {kind: member, object: a, name: balance}
`,
			want: []string{"ProtectedMemberAccess"},
		},
		{
			name: "readonly property write",
			body: `
  - kind: function
    name: rename
    params: [{name: a, type: Account}]
    body:
      - kind: assign
        target: {kind: member, object: a, name: owner}
        value: {kind: string, value: someone}
`,
			want: []string{"ReadonlyAssignment"},
		},
		{
			name: "unknown member",
			body: `
  - kind: function
    name: missing
    params: [{name: a, type: Account}]
    body:
      - kind: expr
        expr: {kind: member, object: a, name: nickname}
`,
			want: []string{"UnknownMember"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, "statements:"+accountClasses+tt.body)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestExtendingFinalClass(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: class
    name: A
    final: true
  - kind: class
    span: [4, 1, 6, 4]
    name: B
    extends: A
`)
	expectCodes(t, res, "ExtendingFinalClass")
	if len(res.Diagnostics) == 1 {
		got := res.Diagnostics[0].Span
		if got.Start.Line != 4 || got.Start.Column != 1 {
			t.Errorf("diagnostic at %d:%d, want 4:1", got.Start.Line, got.Start.Column)
		}
	}
}

func TestCircularInheritance(t *testing.T) {
	res := analyze(t, `
statements:
  - {kind: class, name: A, extends: B}
  - {kind: class, name: B, extends: A}
`)
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic")
	}
	for _, d := range res.Diagnostics {
		if d.Code.Name() != "CircularInheritance" {
			t.Errorf("unexpected %s", d.Error())
		}
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   []string
	}{
		{
			name:   "compatible override",
			parent: "{kind: method, name: area, returns: number, body: [{kind: return, values: [{kind: number, value: 0}]}]}",
			child:  "{kind: method, name: area, returns: number, body: [{kind: return, values: [{kind: number, value: 1}]}]}",
		},
		{
			name:   "incompatible override",
			parent: "{kind: method, name: area, returns: number, body: [{kind: return, values: [{kind: number, value: 0}]}]}",
			child:  "{kind: method, name: area, returns: string, body: [{kind: return, values: [{kind: string, value: x}]}]}",
			want:   []string{"InvalidOverride"},
		},
		{
			name:   "final method",
			parent: "{kind: method, name: area, final: true, returns: number, body: [{kind: return, values: [{kind: number, value: 0}]}]}",
			child:  "{kind: method, name: area, returns: number, body: [{kind: return, values: [{kind: number, value: 1}]}]}",
			want:   []string{"OverridingFinalMethod"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, `
statements:
  - kind: class
    name: Shape
    members:
      - `+tt.parent+`
  - kind: class
    name: Square
    extends: Shape
    members:
      - `+tt.child+`
`)
			expectCodes(t, res, tt.want...)
		})
	}
}

func TestAbstractClasses(t *testing.T) {
	const shapes = `
statements:
  - kind: class
    name: Shape
    abstract: true
    members:
      - {kind: method, name: area, abstract: true, returns: number}
`
	t.Run("instantiation", func(t *testing.T) {
		res := analyze(t, shapes+`
  - kind: expr
    expr: {kind: new, class: Shape}
`)
		expectCodes(t, res, "AbstractMember")
	})
	t.Run("unimplemented", func(t *testing.T) {
		res := analyze(t, shapes+`
  - {kind: class, name: Blob, extends: Shape}
`)
		expectCodes(t, res, "AbstractMember")
	})
	t.Run("implemented", func(t *testing.T) {
		res := analyze(t, shapes+`
  - kind: class
    name: Unit
    extends: Shape
    members:
      - kind: method
        name: area
        returns: number
        body:
          - kind: return
            values: [{kind: number, value: 1}]
  - kind: local
    name: u
    value: {kind: new, class: Unit}
  - kind: expr
    expr: {kind: method_call, receiver: u, method: area}
`)
		expectNoDiagnostics(t, res)
	})
}

func TestConstructorArguments(t *testing.T) {
	const point = `
statements:
  - kind: class
    name: Point
    members:
      - {kind: property, name: x, type: number}
      - kind: constructor
        params: [{name: x, type: number}]
        body:
          - kind: assign
            target: {kind: member, object: {kind: self}, name: x}
            value: x
`
	expectNoDiagnostics(t, analyze(t, point+`
  - kind: expr
    expr: {kind: new, class: Point, args: [{kind: number, value: 1}]}
`))
	expectCodes(t, analyze(t, point+`
  - kind: expr
    expr: {kind: new, class: Point, args: [{kind: string, value: one}]}
`), "TypeMismatch")
}

func TestClassesRequireOOP(t *testing.T) {
	opts := config.DefaultOptions()
	opts.EnableOOP = false
	res := analyzeWith(t, opts, nil, `
statements:
  - {kind: class, name: A}
`)
	expectCodes(t, res, "FeatureDisabled")
}
