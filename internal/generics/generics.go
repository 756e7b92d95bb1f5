// Package generics instantiates type-parameterized signatures, infers type
// arguments from call-site argument types and checks declared constraints.
package generics

import (
	"fmt"

	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// ArityError indicates a wrong number of explicit type arguments.
type ArityError struct {
	Min, Max int
	Got      int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("expected %d type argument(s), got %d", e.Max, e.Got)
	}
	return fmt.Sprintf("expected %d to %d type arguments, got %d", e.Min, e.Max, e.Got)
}

// ConstraintError indicates a type argument that does not satisfy its
// parameter's constraint.
type ConstraintError struct {
	Param      string
	Arg        ts.Type
	Constraint ts.Type
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("type '%s' does not satisfy the constraint '%s' of type parameter '%s'", e.Arg, e.Constraint, e.Param)
}

// Bind pairs params with explicit args, filling missing trailing arguments
// from parameter defaults. Defaults may refer to earlier parameters.
func Bind(params []ts.TypeParam, args []ts.Type) (ts.Subst, error) {
	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) > len(params) || len(args) < required {
		return nil, &ArityError{Min: required, Max: len(params), Got: len(args)}
	}
	subst := make(ts.Subst, 0, len(params))
	for i, p := range params {
		if i < len(args) {
			subst = append(subst, ts.Binding{Param: p.Name, Type: args[i]})
			continue
		}
		subst = append(subst, ts.Binding{Param: p.Name, Type: p.Default.Apply(subst)})
	}
	return subst, nil
}

// Instantiate substitutes args for params throughout t. Nested generic
// signatures that redeclare a parameter name keep their own binding.
func Instantiate(t ts.Type, params []ts.TypeParam, args []ts.Type) (ts.Type, error) {
	subst, err := Bind(params, args)
	if err != nil {
		return nil, err
	}
	return t.Apply(subst), nil
}

// InstantiateFunc applies subst to a generic signature and drops its type
// parameters, producing the concrete signature used at one call site.
func InstantiateFunc(f ts.Func, subst ts.Subst) ts.Func {
	bare := ts.Func{Params: f.Params, Return: f.Return}
	return bare.Apply(subst).(ts.Func)
}

// CheckConstraints verifies every constrained parameter's argument is
// assignable to its (substituted) constraint.
func CheckConstraints(params []ts.TypeParam, subst ts.Subst, r ts.Resolver) error {
	for _, p := range params {
		if p.Constraint == nil {
			continue
		}
		arg, ok := subst.Lookup(p.Name)
		if !ok {
			continue
		}
		constraint := p.Constraint.Apply(subst)
		if !ts.IsAssignable(arg, constraint, r) {
			return &ConstraintError{Param: p.Name, Arg: arg, Constraint: constraint}
		}
	}
	return nil
}
