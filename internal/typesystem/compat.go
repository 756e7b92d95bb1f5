package typesystem

// Resolver gives the compatibility check access to named types.
type Resolver interface {
	// Expand returns the structural form of a Ref (alias, interface, class
	// instance) or a ClassRef (the class's static side).
	Expand(t Type) (Type, bool)
	// IsClass reports whether name is a registered class.
	IsClass(name string) bool
	// IsSubclass reports whether child equals ancestor or extends it transitively.
	IsSubclass(child, ancestor string) bool
	// Bound returns the constraint of an in-scope type parameter.
	Bound(name string) (Type, bool)
}

// Compat holds the options of one assignability query.
type Compat struct {
	Resolver  Resolver
	Bivariant bool // compare function parameters in both directions
	LooseNil  bool // nil is assignable to everything

	inProgress map[string]bool
}

// IsAssignable is the default (strict) check.
func IsAssignable(src, dst Type, r Resolver) bool {
	c := &Compat{Resolver: r}
	return c.IsAssignable(src, dst)
}

// IsAssignable reports whether a value of type src may be used where dst is expected.
func (c *Compat) IsAssignable(src, dst Type) bool {
	if src == nil || dst == nil {
		return true
	}
	if IsUnknown(dst) || IsUnknown(src) {
		return true
	}
	if IsNever(src) {
		return true
	}
	if IsNever(dst) {
		return false
	}
	if c.LooseNil && IsNil(src) {
		return true
	}
	if Equal(src, dst) {
		return true
	}
	if _, ok := src.(Predicate); ok {
		src = Boolean
	}
	if _, ok := dst.(Predicate); ok {
		dst = Boolean
	}
	if Equal(src, dst) {
		return true
	}

	if u, ok := src.(Union); ok {
		for _, m := range u.Types {
			if !c.IsAssignable(m, dst) {
				return false
			}
		}
		return true
	}

	if res, done := c.compareNamed(src, dst); done {
		return res
	}

	if u, ok := dst.(Union); ok {
		for _, m := range u.Types {
			if c.IsAssignable(src, m) {
				return true
			}
		}
		return c.assignToMergedUnion(src, u)
	}

	if i, ok := dst.(Intersection); ok {
		for _, m := range i.Types {
			if !c.IsAssignable(src, m) {
				return false
			}
		}
		return true
	}
	if i, ok := src.(Intersection); ok {
		for _, m := range i.Types {
			if c.IsAssignable(m, dst) {
				return true
			}
		}
		return false
	}

	if v, ok := src.(TVar); ok {
		if c.Resolver != nil {
			if bound, ok := c.Resolver.Bound(v.Name); ok {
				return c.IsAssignable(bound, dst)
			}
		}
		return false
	}

	switch d := dst.(type) {
	case Primitive:
		return c.toPrimitive(src, d)
	case Literal:
		return false
	case Array:
		switch s := src.(type) {
		case Array:
			return c.IsAssignable(s.Elem, d.Elem)
		case Tuple:
			for _, e := range s.Elems {
				if !c.IsAssignable(e, d.Elem) {
					return false
				}
			}
			return true
		}
		return false
	case Tuple:
		s, ok := src.(Tuple)
		if !ok || len(s.Elems) > len(d.Elems) {
			return false
		}
		for i, want := range d.Elems {
			if i >= len(s.Elems) {
				if !c.IsAssignable(Nil, want) {
					return false
				}
				continue
			}
			if !c.IsAssignable(s.Elems[i], want) {
				return false
			}
		}
		return true
	case Object:
		s, ok := src.(Object)
		if !ok {
			return false
		}
		return c.objectAssignable(s, d)
	case Func:
		s, ok := src.(Func)
		if !ok {
			return false
		}
		return c.funcAssignable(s, d)
	case ClassRef:
		s, ok := src.(ClassRef)
		return ok && c.Resolver != nil && c.Resolver.IsSubclass(s.Name, d.Name)
	}
	return false
}

// compareNamed expands Refs and ClassRefs. done is false when neither side is named.
func (c *Compat) compareNamed(src, dst Type) (result bool, done bool) {
	if !isNamed(src) && !isNamed(dst) {
		return false, false
	}
	if c.Resolver == nil {
		return false, true
	}
	if sc, ok := src.(ClassRef); ok {
		if dc, ok := dst.(ClassRef); ok {
			return c.Resolver.IsSubclass(sc.Name, dc.Name), true
		}
	}
	if sr, ok := src.(Ref); ok {
		if dr, ok := dst.(Ref); ok && len(sr.Args) == 0 && len(dr.Args) == 0 &&
			c.Resolver.IsClass(sr.Name) && c.Resolver.IsClass(dr.Name) &&
			c.Resolver.IsSubclass(sr.Name, dr.Name) {
			return true, true
		}
	}

	key := src.String() + "\x00" + dst.String()
	if c.inProgress[key] {
		return true, true
	}
	if c.inProgress == nil {
		c.inProgress = map[string]bool{}
	}
	c.inProgress[key] = true
	defer delete(c.inProgress, key)

	// Names that do not expand were reported where they were written.
	if isNamed(src) {
		t, ok := c.Resolver.Expand(src)
		if !ok {
			return true, true
		}
		src = t
	}
	if isNamed(dst) {
		t, ok := c.Resolver.Expand(dst)
		if !ok {
			return true, true
		}
		dst = t
	}
	return c.IsAssignable(src, dst), true
}

func isNamed(t Type) bool {
	switch t.(type) {
	case Ref, ClassRef:
		return true
	}
	return false
}

// assignToMergedUnion accepts a source covered only by several members
// together: boolean against a union holding both true and false.
func (c *Compat) assignToMergedUnion(src Type, dst Union) bool {
	if p, ok := src.(Primitive); ok && p.Kind == KindBoolean {
		return c.IsAssignable(BoolLit(true), dst) && c.IsAssignable(BoolLit(false), dst)
	}
	return false
}

func (c *Compat) toPrimitive(src Type, dst Primitive) bool {
	switch s := src.(type) {
	case Primitive:
		if s.Kind == dst.Kind {
			return true
		}
		switch dst.Kind {
		case KindNumber:
			return s.Kind == KindInteger
		case KindVoid:
			return s.Kind == KindNil
		case KindNil:
			return s.Kind == KindVoid
		}
		return false
	case Literal:
		switch dst.Kind {
		case KindInteger:
			return s.IsInteger()
		case KindBoolean, KindNumber, KindString:
			return s.Primitive().Kind == dst.Kind
		}
		return false
	case Object, Array, Tuple:
		return dst.Kind == KindTable
	case Func:
		return false
	}
	return false
}

func (c *Compat) objectAssignable(src, dst Object) bool {
	for _, want := range dst.Members {
		have, ok := src.Lookup(want.Name)
		if !ok {
			if want.Optional {
				continue
			}
			return false
		}
		haveType := have.Type
		if have.Optional && !want.Optional {
			return false
		}
		if want.Optional {
			haveType = RemoveNil(haveType)
		}
		wantType := want.Type
		if want.Optional {
			wantType = Nullable(wantType)
		}
		if !c.IsAssignable(haveType, wantType) {
			return false
		}
	}
	if dst.Index != nil {
		for _, have := range src.Members {
			if _, named := dst.Lookup(have.Name); named {
				continue
			}
			if !c.IsAssignable(StrLit(have.Name), dst.Index.Key) {
				return false
			}
			if !c.IsAssignable(have.Type, dst.Index.Value) {
				return false
			}
		}
		if src.Index != nil && !c.IsAssignable(src.Index.Value, dst.Index.Value) {
			return false
		}
	}
	return true
}

func (c *Compat) funcAssignable(src, dst Func) bool {
	src = eraseTypeParams(src)
	dst = eraseTypeParams(dst)

	_, dstRest := dst.RestParam()
	if !dstRest && src.RequiredCount() > len(dst.Params) {
		return false
	}
	for i, sp := range src.Params {
		if sp.Rest {
			break
		}
		dt, ok := dst.ParamTypeAt(i)
		if !ok {
			if sp.Optional {
				continue
			}
			return false
		}
		srcType := sp.Type
		if sp.Optional {
			srcType = Nullable(srcType)
		}
		if !c.IsAssignable(dt, srcType) {
			if !c.Bivariant || !c.IsAssignable(srcType, dt) {
				return false
			}
		}
	}
	if rest, ok := src.RestParam(); ok {
		for i := len(src.Params) - 1; i < len(dst.Params); i++ {
			dt, _ := dst.ParamTypeAt(i)
			if !c.IsAssignable(dt, rest.Type) && !(c.Bivariant && c.IsAssignable(rest.Type, dt)) {
				return false
			}
		}
	}

	dr := returnOf(dst)
	if p, ok := dr.(Primitive); ok && p.Kind == KindVoid {
		return true
	}
	return c.IsAssignable(returnOf(src), dr)
}

func eraseTypeParams(f Func) Func {
	if len(f.TypeParams) == 0 {
		return f
	}
	s := make(Subst, len(f.TypeParams))
	for i, p := range f.TypeParams {
		s[i] = Binding{Param: p.Name, Type: Unknown}
	}
	erased := Func{Params: f.Params, Return: f.Return}
	return erased.Apply(s).(Func)
}
