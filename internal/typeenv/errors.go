package typeenv

import (
	"fmt"
	"strings"
)

// UnknownTypeError indicates a type name that is not registered.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Name)
}

// DuplicateTypeError indicates a second registration of a type name.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type '%s' is already declared", e.Name)
}

// ArityError indicates a wrong number of type arguments.
type ArityError struct {
	Name     string
	Min, Max int
	Got      int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("type '%s' expects %d type argument(s), got %d", e.Name, e.Max, e.Got)
	}
	return fmt.Sprintf("type '%s' expects %d to %d type arguments, got %d", e.Name, e.Min, e.Max, e.Got)
}

// RecursiveAliasError indicates an alias that reaches itself without
// passing through an object member or function signature.
type RecursiveAliasError struct {
	Name string
	Path []string
}

func (e *RecursiveAliasError) Error() string {
	return fmt.Sprintf("type alias '%s' circularly references itself (%s)", e.Name, strings.Join(e.Path, " -> "))
}

// UtilityError indicates a utility type applied to an argument it cannot transform.
type UtilityError struct {
	Utility string
	Arg     string
	Reason  string
}

func (e *UtilityError) Error() string {
	return fmt.Sprintf("%s<%s>: %s", e.Utility, e.Arg, e.Reason)
}
