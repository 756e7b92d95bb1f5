package typesystem

// Equal reports structural identity. Union, intersection and object member
// order are not significant.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Literal:
		y, ok := b.(Literal)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Elem, y.Elem)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && equalList(x.Elems, y.Elems)
	case Object:
		y, ok := b.(Object)
		return ok && equalObject(x, y)
	case Func:
		y, ok := b.(Func)
		return ok && equalFunc(x, y)
	case Predicate:
		y, ok := b.(Predicate)
		return ok && x.Param == y.Param && Equal(x.Type, y.Type)
	case Union:
		y, ok := b.(Union)
		return ok && equalSet(x.Types, y.Types)
	case Intersection:
		y, ok := b.(Intersection)
		return ok && equalSet(x.Types, y.Types)
	case Ref:
		y, ok := b.(Ref)
		return ok && x.Name == y.Name && equalList(x.Args, y.Args)
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Name == y.Name
	case ClassRef:
		y, ok := b.(ClassRef)
		return ok && x.Name == y.Name
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSet(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !Contains(b, t) {
			return false
		}
	}
	return true
}

// Contains reports whether list holds a type Equal to t.
func Contains(list []Type, t Type) bool {
	for _, x := range list {
		if Equal(x, t) {
			return true
		}
	}
	return false
}

func equalObject(a, b Object) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	for _, m := range a.Members {
		other, ok := b.Lookup(m.Name)
		if !ok || other.Optional != m.Optional || other.Readonly != m.Readonly ||
			other.Static != m.Static || other.Kind != m.Kind || !Equal(m.Type, other.Type) {
			return false
		}
	}
	if (a.Index == nil) != (b.Index == nil) {
		return false
	}
	if a.Index != nil {
		return Equal(a.Index.Key, b.Index.Key) && Equal(a.Index.Value, b.Index.Value)
	}
	return true
}

func equalFunc(a, b Func) bool {
	if len(a.TypeParams) != len(b.TypeParams) || len(a.Params) != len(b.Params) {
		return false
	}
	// Generic signatures are compared modulo parameter renaming.
	if len(a.TypeParams) > 0 {
		rename := make(Subst, len(b.TypeParams))
		for i, p := range b.TypeParams {
			rename[i] = Binding{Param: p.Name, Type: TVar{Name: a.TypeParams[i].Name}}
		}
		b = Func{Params: b.Params, Return: b.Return}.Apply(rename).(Func)
		a = Func{Params: a.Params, Return: a.Return}
	}
	for i := range a.Params {
		pa, pb := a.Params[i], b.Params[i]
		if pa.Optional != pb.Optional || pa.Rest != pb.Rest || !Equal(pa.Type, pb.Type) {
			return false
		}
	}
	return Equal(returnOf(a), returnOf(b))
}

func returnOf(f Func) Type {
	if f.Return == nil {
		return Void
	}
	return f.Return
}
