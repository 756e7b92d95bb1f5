package typesystem

// Binding maps one type parameter name to a type.
type Binding struct {
	Param string
	Type  Type
}

// Subst is an ordered substitution from type parameter names to types.
// Order is kept so that diagnostics and inferred argument lists are stable.
type Subst []Binding

// NewSubst pairs names with types positionally; extra names are left unbound.
func NewSubst(names []string, types []Type) Subst {
	s := make(Subst, 0, len(names))
	for i, n := range names {
		if i >= len(types) {
			break
		}
		s = append(s, Binding{Param: n, Type: types[i]})
	}
	return s
}

// Lookup returns the binding for name.
func (s Subst) Lookup(name string) (Type, bool) {
	for _, b := range s {
		if b.Param == name {
			return b.Type, true
		}
	}
	return nil, false
}

// Bind returns a substitution with name bound to t, replacing any earlier binding.
func (s Subst) Bind(name string, t Type) Subst {
	out := make(Subst, 0, len(s)+1)
	replaced := false
	for _, b := range s {
		if b.Param == name {
			out = append(out, Binding{Param: name, Type: t})
			replaced = true
			continue
		}
		out = append(out, b)
	}
	if !replaced {
		out = append(out, Binding{Param: name, Type: t})
	}
	return out
}

// Without drops bindings for the given names (used when entering a binder).
func (s Subst) Without(names ...string) Subst {
	if len(names) == 0 || len(s) == 0 {
		return s
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(Subst, 0, len(s))
	for _, b := range s {
		if !drop[b.Param] {
			out = append(out, b)
		}
	}
	return out
}

// Names lists bound parameter names in order.
func (s Subst) Names() []string {
	names := make([]string, len(s))
	for i, b := range s {
		names[i] = b.Param
	}
	return names
}

// Types lists bound types in order.
func (s Subst) Types() []Type {
	types := make([]Type, len(s))
	for i, b := range s {
		types[i] = b.Type
	}
	return types
}

// Compose returns s1 then s2: bindings of s1 are rewritten by s2 and s2's own
// bindings are appended when s1 does not already bind the name.
func (s Subst) Compose(s2 Subst) Subst {
	out := make(Subst, 0, len(s)+len(s2))
	for _, b := range s {
		out = append(out, Binding{Param: b.Param, Type: b.Type.Apply(s2)})
	}
	for _, b := range s2 {
		if _, ok := s.Lookup(b.Param); !ok {
			out = append(out, b)
		}
	}
	return out
}
