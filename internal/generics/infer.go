package generics

import (
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// inferrer collects, per type parameter, the actual types observed at the
// positions where the parameter occurs in the formal types.
type inferrer struct {
	params   map[string]bool
	observed map[string][]ts.Type
	resolver ts.Resolver
	visited  map[string]bool
}

// InferArguments unifies each formal parameter type with the corresponding
// actual argument type. A parameter observed with different types is bound
// to their union. Literal observations are widened unless only the literal
// satisfies the parameter's constraint. Parameters never observed fall back
// to their default, then their constraint, then unknown.
func InferArguments(params []ts.TypeParam, formals, actuals []ts.Type, r ts.Resolver) (ts.Subst, error) {
	inf := &inferrer{
		params:   make(map[string]bool, len(params)),
		observed: make(map[string][]ts.Type),
		resolver: r,
		visited:  make(map[string]bool),
	}
	for _, p := range params {
		inf.params[p.Name] = true
	}
	for i := range formals {
		if i >= len(actuals) {
			break
		}
		inf.unify(formals[i], actuals[i])
	}

	subst := make(ts.Subst, 0, len(params))
	for _, p := range params {
		obs := inf.observed[p.Name]
		var arg ts.Type
		switch {
		case len(obs) > 0:
			raw := ts.NewUnion(obs...)
			arg = ts.Widen(raw)
			if p.Constraint != nil {
				constraint := p.Constraint.Apply(subst)
				if !ts.IsAssignable(arg, constraint, r) && ts.IsAssignable(raw, constraint, r) {
					arg = raw
				}
			}
		case p.Default != nil:
			arg = p.Default.Apply(subst)
		case p.Constraint != nil:
			arg = p.Constraint.Apply(subst)
		default:
			arg = ts.Unknown
		}
		subst = append(subst, ts.Binding{Param: p.Name, Type: arg})
	}
	return subst, CheckConstraints(params, subst, r)
}

func (inf *inferrer) observe(name string, t ts.Type) {
	for _, prev := range inf.observed[name] {
		if ts.Equal(prev, t) {
			return
		}
	}
	inf.observed[name] = append(inf.observed[name], t)
}

func (inf *inferrer) isParam(t ts.Type) (string, bool) {
	if v, ok := t.(ts.TVar); ok && inf.params[v.Name] {
		return v.Name, true
	}
	return "", false
}

func (inf *inferrer) mentionsParam(t ts.Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if inf.params[v.Name] {
			return true
		}
	}
	return false
}

func (inf *inferrer) unify(formal, actual ts.Type) {
	if formal == nil || actual == nil {
		return
	}
	if name, ok := inf.isParam(formal); ok {
		if !ts.IsNever(actual) {
			inf.observe(name, actual)
		}
		return
	}
	if !inf.mentionsParam(formal) {
		return
	}

	key := formal.String() + "\x00" + actual.String()
	if inf.visited[key] {
		return
	}
	inf.visited[key] = true
	defer delete(inf.visited, key)

	if u, ok := formal.(ts.Union); ok {
		inf.unifyUnion(u, actual)
		return
	}
	if _, ok := actual.(ts.Union); ok {
		for _, m := range ts.Members(actual) {
			inf.unify(formal, m)
		}
		return
	}
	if ar, ok := actual.(ts.Ref); ok && inf.resolver != nil {
		if fr, ok := formal.(ts.Ref); ok && fr.Name == ar.Name && len(fr.Args) == len(ar.Args) {
			for i := range fr.Args {
				inf.unify(fr.Args[i], ar.Args[i])
			}
			return
		}
		if expanded, ok := inf.resolver.Expand(ar); ok {
			inf.unify(formal, expanded)
		}
		return
	}
	if fr, ok := formal.(ts.Ref); ok {
		if inf.resolver != nil {
			if expanded, ok := inf.resolver.Expand(fr); ok {
				inf.unify(expanded, actual)
			}
		}
		return
	}

	switch f := formal.(type) {
	case ts.Array:
		switch a := actual.(type) {
		case ts.Array:
			inf.unify(f.Elem, a.Elem)
		case ts.Tuple:
			for _, e := range a.Elems {
				inf.unify(f.Elem, e)
			}
		}
	case ts.Tuple:
		if a, ok := actual.(ts.Tuple); ok {
			for i := range f.Elems {
				if i < len(a.Elems) {
					inf.unify(f.Elems[i], a.Elems[i])
				}
			}
		}
	case ts.Object:
		a, ok := actual.(ts.Object)
		if !ok {
			return
		}
		for _, fm := range f.Members {
			if am, ok := a.Lookup(fm.Name); ok {
				inf.unify(fm.Type, am.Type)
			}
		}
		if f.Index != nil {
			for _, am := range a.Members {
				if _, named := f.Lookup(am.Name); !named {
					inf.unify(f.Index.Value, am.Type)
				}
			}
			if a.Index != nil {
				inf.unify(f.Index.Key, a.Index.Key)
				inf.unify(f.Index.Value, a.Index.Value)
			}
		}
	case ts.Func:
		a, ok := actual.(ts.Func)
		if !ok {
			return
		}
		for i, fp := range f.Params {
			if i < len(a.Params) {
				inf.unify(fp.Type, a.Params[i].Type)
			}
		}
		if f.Return != nil && a.Return != nil {
			inf.unify(f.Return, a.Return)
		}
	case ts.Predicate:
		if a, ok := actual.(ts.Predicate); ok {
			inf.unify(f.Type, a.Type)
		}
	case ts.Intersection:
		for _, m := range f.Types {
			inf.unify(m, actual)
		}
	}
}

// unifyUnion matches actual members against the concrete part of the formal
// union first; what remains is attributed to the formal's type parameters.
// For `T | nil` against `string | nil`, T is string.
func (inf *inferrer) unifyUnion(formal ts.Union, actual ts.Type) {
	var concrete, generic []ts.Type
	for _, m := range formal.Types {
		if inf.mentionsParam(m) {
			generic = append(generic, m)
		} else {
			concrete = append(concrete, m)
		}
	}
	for _, am := range ts.Members(actual) {
		matched := false
		for _, c := range concrete {
			if ts.IsAssignable(am, c, inf.resolver) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, g := range generic {
			inf.unify(g, am)
		}
	}
}
