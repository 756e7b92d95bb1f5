package typeenv

import (
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// ValidateAlias rejects an alias that reaches itself without passing through
// an object member or function signature. `type L = { next: L | nil }` is
// accepted; `type A = A | nil` and `type A = B; type B = A[]` are not.
func (e *Env) ValidateAlias(name string) error {
	a, ok := e.aliases[name]
	if !ok {
		return &UnknownTypeError{Name: name}
	}
	return e.walkAlias(a.Body, []string{name}, map[string]bool{name: true})
}

func (e *Env) walkAlias(t ts.Type, path []string, active map[string]bool) error {
	switch v := t.(type) {
	case ts.Object, ts.Func, ts.ClassRef:
		return nil
	case ts.Array:
		return e.walkAlias(v.Elem, path, active)
	case ts.Tuple:
		return e.walkAll(v.Elems, path, active)
	case ts.Union:
		return e.walkAll(v.Types, path, active)
	case ts.Intersection:
		return e.walkAll(v.Types, path, active)
	case ts.Predicate:
		return e.walkAlias(v.Type, path, active)
	case ts.Ref:
		if isUtility(v.Name) {
			return e.walkAll(v.Args, path, active)
		}
		a, ok := e.aliases[v.Name]
		if !ok {
			// Interfaces and classes are named structural types.
			return nil
		}
		next := append(append([]string(nil), path...), v.Name)
		if active[v.Name] {
			return &RecursiveAliasError{Name: path[0], Path: next}
		}
		body := a.Body
		if len(v.Args) > 0 {
			if subst, err := bindArgs(v.Name, a.Params, v.Args); err == nil {
				body = body.Apply(subst)
			}
		}
		active[v.Name] = true
		defer delete(active, v.Name)
		return e.walkAlias(body, next, active)
	}
	return nil
}

func (e *Env) walkAll(types []ts.Type, path []string, active map[string]bool) error {
	for _, t := range types {
		if err := e.walkAlias(t, path, active); err != nil {
			return err
		}
	}
	return nil
}
