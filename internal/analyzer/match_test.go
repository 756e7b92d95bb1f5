package analyzer

import (
	"fmt"
	"testing"

	"github.com/funvibe/tlcheck/internal/config"
)

const describeHeader = `
statements:
  - kind: function
    name: describe
    params: [{name: v, type: {kind: union, types: [string, number]}}]
    returns: string
    body:
      - kind: return
        values:
          - kind: match
            subject: v
            arms:
`

const stringArm = `
              - pattern: {kind: type, name: s, type: string}
                body: s
`

const numberArm = `
              - pattern: {kind: type, name: n, type: number}
                body: {kind: call, callee: tostring, args: [n]}
`

func TestMatchExhaustiveness(t *testing.T) {
	tests := []struct {
		name  string
		arms  string
		mode  config.MatchSeverity
		want  []string
		fails bool
	}{
		{name: "all members handled", arms: stringArm + numberArm, mode: config.MatchError},
		{name: "missing number", arms: stringArm, mode: config.MatchError, want: []string{"NonExhaustiveMatch"}, fails: true},
		{name: "missing number as warning", arms: stringArm, mode: config.MatchWarning, want: []string{"NonExhaustiveMatch"}},
		{name: "missing number ignored", arms: stringArm, mode: config.MatchOff},
		{
			name: "wildcard",
			arms: stringArm + `
              - pattern: _
                body: {kind: string, value: other}
`,
			mode: config.MatchError,
		},
		{
			name: "guarded arm does not count",
			arms: stringArm + `
              - pattern: {kind: type, name: n, type: number}
                guard: {kind: binary, op: ">", left: n, right: {kind: number, value: 0}}
                body: {kind: string, value: positive}
`,
			mode:  config.MatchError,
			want:  []string{"NonExhaustiveMatch"},
			fails: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.DefaultOptions()
			opts.ExhaustiveMatch = tt.mode
			res := analyzeWith(t, opts, nil, describeHeader+tt.arms)
			expectCodes(t, res, tt.want...)
			if res.HasErrors() != tt.fails {
				t.Errorf("HasErrors = %v, want %v", res.HasErrors(), tt.fails)
			}
		})
	}
}

func TestDiscriminatedUnion(t *testing.T) {
	const shapes = `
statements:
  - kind: type
    name: Shape
    type:
      kind: union
      types:
        - kind: object
          members:
            - {name: kind, type: {kind: literal, value: circle}}
            - {name: radius, type: number}
        - kind: object
          members:
            - {name: kind, type: {kind: literal, value: square}}
            - {name: side, type: number}
  - kind: function
    name: area
    params: [{name: s, type: Shape}]
    returns: number
    body:
      - kind: if
        cond:
          kind: binary
          op: "=="
          left: {kind: member, object: s, name: kind}
          right: {kind: string, value: circle}
        then:
          - kind: return
            values:
              - {kind: member, object: s, name: %s}
      - kind: return
        values:
          - {kind: member, object: s, name: side}
`
	t.Run("narrowed", func(t *testing.T) {
		expectNoDiagnostics(t, analyze(t, fmt.Sprintf(shapes, "radius")))
	})
	t.Run("wrong member", func(t *testing.T) {
		expectCodes(t, analyze(t, fmt.Sprintf(shapes, "side")), "UnknownMember")
	})
}

func TestTypeofNarrowing(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: size
    params: [{name: v, type: {kind: union, types: [string, number]}}]
    returns: number
    body:
      - kind: if
        cond:
          kind: binary
          op: "=="
          left: {kind: call, callee: type, args: [v]}
          right: {kind: string, value: string}
        then:
          - kind: return
            values: [{kind: unary, op: "#", operand: v}]
      - kind: return
        values: [v]
`)
	expectNoDiagnostics(t, res)
}

const isStrGuard = `
  - kind: function
    name: isStr
    params: [{name: v, type: unknown}]
    returns: {kind: predicate, param: v, type: string}
    body:
      - kind: return
        values:
          - kind: binary
            op: "=="
            left: {kind: call, callee: type, args: [v]}
            right: {kind: string, value: string}
`

func TestDeclaredTypeGuard(t *testing.T) {
	res := analyze(t, "statements:"+isStrGuard+`
  - kind: function
    name: size
    params: [{name: v, type: {kind: union, types: [string, number]}}]
    returns: number
    body:
      - kind: if
        cond: {kind: call, callee: isStr, args: [v]}
        then:
          - kind: return
            values: [{kind: unary, op: "#", operand: v}]
      - kind: return
        values: [v]
`)
	expectNoDiagnostics(t, res)
}

func TestTypeGuardReturnsBoolean(t *testing.T) {
	res := analyze(t, `
statements:
  - kind: function
    name: isStr
    params: [{name: v, type: unknown}]
    returns: {kind: predicate, param: v, type: string}
    body:
      - kind: return
        values: [{kind: number, value: 1}]
`)
	expectCodes(t, res, "TypeMismatch")
}
