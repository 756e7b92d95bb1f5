package typesystem

// NewUnion builds a normalized union. Nested unions are flattened, never is
// dropped, unknown absorbs everything, duplicates are removed by structural
// equality, literals covered by their primitive are dropped and true|false
// collapses to boolean. Zero members yield never; one member is returned as is.
func NewUnion(types ...Type) Type {
	var flat []Type
	for _, t := range types {
		flat = appendFlat(flat, t)
	}

	var members []Type
	for _, t := range flat {
		if p, ok := t.(Primitive); ok {
			if p.Kind == KindUnknown {
				return Unknown
			}
			if p.Kind == KindNever {
				continue
			}
		}
		if !Contains(members, t) {
			members = append(members, t)
		}
	}

	members = absorbLiterals(members)

	switch len(members) {
	case 0:
		return Never
	case 1:
		return members[0]
	}
	return Union{Types: members}
}

func appendFlat(out []Type, t Type) []Type {
	if t == nil {
		return out
	}
	if u, ok := t.(Union); ok {
		for _, m := range u.Types {
			out = appendFlat(out, m)
		}
		return out
	}
	return append(out, t)
}

func absorbLiterals(members []Type) []Type {
	has := map[PrimitiveKind]bool{}
	hasTrue, hasFalse := false, false
	for _, m := range members {
		switch t := m.(type) {
		case Primitive:
			has[t.Kind] = true
		case Literal:
			if t.Kind == LitBoolean {
				if t.Bool {
					hasTrue = true
				} else {
					hasFalse = true
				}
			}
		}
	}
	collapseBool := hasTrue && hasFalse && !has[KindBoolean]

	out := members[:0:0]
	insertedBool := false
	for _, m := range members {
		if lit, ok := m.(Literal); ok {
			if has[lit.Primitive().Kind] {
				continue
			}
			if lit.IsInteger() && has[KindInteger] {
				continue
			}
			if lit.Kind == LitBoolean && collapseBool {
				if !insertedBool {
					out = append(out, Boolean)
					insertedBool = true
				}
				continue
			}
		}
		if p, ok := m.(Primitive); ok && p.Kind == KindInteger && has[KindNumber] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Members returns the members of a union, or t itself as a single member.
func Members(t Type) []Type {
	if u, ok := t.(Union); ok {
		return u.Types
	}
	if t == nil {
		return nil
	}
	return []Type{t}
}

// Nullable adds nil to t: the single representation of an optional type.
func Nullable(t Type) Type {
	return NewUnion(t, Nil)
}

// IsNil reports whether t is the nil primitive.
func IsNil(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == KindNil
}

// IsUnknown reports whether t is the unknown primitive.
func IsUnknown(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == KindUnknown
}

// IsNever reports whether t is the never primitive.
func IsNever(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == KindNever
}

// HasNil reports whether nil is one of t's members.
func HasNil(t Type) bool {
	for _, m := range Members(t) {
		if IsNil(m) {
			return true
		}
	}
	return false
}

// RemoveNil drops nil from t's members.
func RemoveNil(t Type) Type {
	return Filter(t, func(m Type) bool { return !IsNil(m) })
}

// Filter keeps the union members of t for which keep returns true.
func Filter(t Type, keep func(Type) bool) Type {
	var out []Type
	for _, m := range Members(t) {
		if keep(m) {
			out = append(out, m)
		}
	}
	return NewUnion(out...)
}

// Widen replaces literal types by their primitive category, including inside unions.
func Widen(t Type) Type {
	switch v := t.(type) {
	case Literal:
		return v.Primitive()
	case Union:
		out := make([]Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = Widen(m)
		}
		return NewUnion(out...)
	case Tuple:
		out := make([]Type, len(v.Elems))
		for i, m := range v.Elems {
			out[i] = Widen(m)
		}
		return Tuple{Elems: out}
	}
	return t
}

// NewIntersection builds an intersection. Object members are merged into a
// single object; unknown members are dropped; never absorbs everything.
func NewIntersection(types ...Type) Type {
	var flat []Type
	for _, t := range types {
		if i, ok := t.(Intersection); ok {
			flat = append(flat, i.Types...)
		} else if t != nil {
			flat = append(flat, t)
		}
	}

	var merged *Object
	var rest []Type
	for _, t := range flat {
		switch v := t.(type) {
		case Primitive:
			if v.Kind == KindNever {
				return Never
			}
			if v.Kind == KindUnknown {
				continue
			}
		case Object:
			if merged == nil {
				cp := Object{Members: append([]Member(nil), v.Members...), Index: v.Index}
				merged = &cp
			} else {
				for _, m := range v.Members {
					if existing, ok := merged.Lookup(m.Name); ok {
						m.Type = NewIntersection(existing.Type, m.Type)
						m.Optional = existing.Optional && m.Optional
						m.Readonly = existing.Readonly || m.Readonly
					}
					*merged = merged.With(m)
				}
				if merged.Index == nil {
					merged.Index = v.Index
				}
			}
			continue
		}
		if !Contains(rest, t) {
			rest = append(rest, t)
		}
	}
	if merged != nil {
		rest = append([]Type{*merged}, rest...)
	}
	switch len(rest) {
	case 0:
		return Unknown
	case 1:
		return rest[0]
	}
	return Intersection{Types: rest}
}
