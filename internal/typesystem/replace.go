package typesystem

// Map rebuilds t bottom-up, calling f on every node after its children were
// rebuilt. Unions and intersections are renormalized.
func Map(t Type, f func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case Array:
		return f(Array{Elem: Map(typ.Elem, f)})
	case Tuple:
		elems := make([]Type, len(typ.Elems))
		for i, e := range typ.Elems {
			elems[i] = Map(e, f)
		}
		return f(Tuple{Elems: elems})
	case Object:
		out := Object{Members: make([]Member, len(typ.Members))}
		for i, m := range typ.Members {
			m.Type = Map(m.Type, f)
			out.Members[i] = m
		}
		if typ.Index != nil {
			out.Index = &IndexSignature{Key: Map(typ.Index.Key, f), Value: Map(typ.Index.Value, f)}
		}
		return f(out)
	case Func:
		out := Func{TypeParams: typ.TypeParams, Params: make([]Param, len(typ.Params))}
		for i, p := range typ.Params {
			p.Type = Map(p.Type, f)
			out.Params[i] = p
		}
		out.Return = Map(typ.Return, f)
		return f(out)
	case Predicate:
		return f(Predicate{Param: typ.Param, Type: Map(typ.Type, f)})
	case Union:
		members := make([]Type, len(typ.Types))
		for i, m := range typ.Types {
			members[i] = Map(m, f)
		}
		return f(NewUnion(members...))
	case Intersection:
		members := make([]Type, len(typ.Types))
		for i, m := range typ.Types {
			members[i] = Map(m, f)
		}
		return f(NewIntersection(members...))
	case Ref:
		if len(typ.Args) == 0 {
			return f(typ)
		}
		args := make([]Type, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = Map(a, f)
		}
		return f(Ref{Name: typ.Name, Args: args})
	}
	return f(t)
}

// ReplaceRef replaces every reference to name (without arguments) by replacement.
// Used to tie a class's self references to its instance type.
func ReplaceRef(t Type, name string, replacement Type) Type {
	return Map(t, func(n Type) Type {
		if r, ok := n.(Ref); ok && r.Name == name && len(r.Args) == 0 {
			return replacement
		}
		return n
	})
}

// Any reports whether pred holds for t or any type nested inside it.
func Any(t Type, pred func(Type) bool) bool {
	found := false
	Map(t, func(n Type) Type {
		if !found && pred(n) {
			found = true
		}
		return n
	})
	return found
}

// MentionsRef reports whether t refers to name anywhere.
func MentionsRef(t Type, name string) bool {
	return Any(t, func(n Type) bool {
		r, ok := n.(Ref)
		return ok && r.Name == name
	})
}
