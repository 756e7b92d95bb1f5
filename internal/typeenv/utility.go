package typeenv

import (
	"github.com/funvibe/tlcheck/internal/config"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

var utilityArity = map[string]int{
	config.PartialTypeName:    1,
	config.RequiredTypeName:   1,
	config.ReadonlyTypeName:   1,
	config.RecordTypeName:     2,
	config.PickTypeName:       2,
	config.OmitTypeName:       2,
	config.ExcludeTypeName:    2,
	config.ExtractTypeName:    2,
	config.NonNilableTypeName: 1,
	config.NilableTypeName:    1,
	config.ReturnTypeTypeName: 1,
	config.ParametersTypeName: 1,
	config.KeyOfTypeName:      1,
}

func isUtility(name string) bool {
	_, ok := utilityArity[name]
	return ok
}

// IsUtility reports whether name is a built-in utility type.
func IsUtility(name string) bool { return isUtility(name) }

func (e *Env) applyUtility(ref ts.Ref) (ts.Type, error) {
	want := utilityArity[ref.Name]
	if len(ref.Args) != want {
		return nil, &ArityError{Name: ref.Name, Min: want, Max: want, Got: len(ref.Args)}
	}
	args := make([]ts.Type, len(ref.Args))
	for i, a := range ref.Args {
		// Type parameters stay symbolic until instantiation.
		if len(a.FreeTypeVariables()) > 0 {
			return ref, nil
		}
		sa, err := e.Structural(a)
		if err != nil {
			return nil, err
		}
		args[i] = sa
	}

	switch ref.Name {
	case config.PartialTypeName:
		return Partial(args[0])
	case config.RequiredTypeName:
		return Required(args[0])
	case config.ReadonlyTypeName:
		return Readonly(args[0])
	case config.PickTypeName:
		return Pick(args[0], args[1])
	case config.OmitTypeName:
		return Omit(args[0], args[1])
	case config.RecordTypeName:
		return Record(args[0], args[1])
	case config.ExcludeTypeName:
		return Exclude(args[0], args[1], e), nil
	case config.ExtractTypeName:
		return Extract(args[0], args[1], e), nil
	case config.NonNilableTypeName:
		return NonNilable(args[0]), nil
	case config.NilableTypeName:
		return Nilable(args[0]), nil
	case config.ReturnTypeTypeName:
		return ReturnType(args[0])
	case config.ParametersTypeName:
		return Parameters(args[0])
	case config.KeyOfTypeName:
		return KeyOf(args[0])
	}
	return nil, &UnknownTypeError{Name: ref.Name}
}

// mapMembers applies f to every member of an object, or of every object
// member of a union.
func mapMembers(utility string, t ts.Type, f func(ts.Member) ts.Member) (ts.Type, error) {
	switch v := t.(type) {
	case ts.Object:
		out := ts.Object{Members: make([]ts.Member, len(v.Members)), Index: v.Index}
		for i, m := range v.Members {
			out.Members[i] = f(m)
		}
		return out, nil
	case ts.Union:
		members := make([]ts.Type, len(v.Types))
		for i, m := range v.Types {
			mt, err := mapMembers(utility, m, f)
			if err != nil {
				return nil, err
			}
			members[i] = mt
		}
		return ts.NewUnion(members...), nil
	case ts.Primitive:
		if v.Kind == ts.KindUnknown || v.Kind == ts.KindNil {
			return v, nil
		}
	}
	return nil, &UtilityError{Utility: utility, Arg: t.String(), Reason: "argument must be an object type"}
}

// Partial makes every member optional.
func Partial(t ts.Type) (ts.Type, error) {
	return mapMembers(config.PartialTypeName, t, func(m ts.Member) ts.Member {
		m.Optional = true
		return m
	})
}

// Required makes every member non-optional.
func Required(t ts.Type) (ts.Type, error) {
	return mapMembers(config.RequiredTypeName, t, func(m ts.Member) ts.Member {
		m.Optional = false
		m.Type = ts.RemoveNil(m.Type)
		return m
	})
}

// Readonly makes every member readonly.
func Readonly(t ts.Type) (ts.Type, error) {
	return mapMembers(config.ReadonlyTypeName, t, func(m ts.Member) ts.Member {
		m.Readonly = true
		return m
	})
}

// keySet reads a string literal union into a set of names.
func keySet(utility string, keys ts.Type) (map[string]bool, []string, error) {
	set := map[string]bool{}
	var order []string
	for _, k := range ts.Members(keys) {
		lit, ok := k.(ts.Literal)
		if !ok || lit.Kind != ts.LitString {
			return nil, nil, &UtilityError{Utility: utility, Arg: keys.String(), Reason: "keys must be string literal types"}
		}
		if !set[lit.Str] {
			set[lit.Str] = true
			order = append(order, lit.Str)
		}
	}
	return set, order, nil
}

func filterMembers(utility string, t, keys ts.Type, keep bool) (ts.Type, error) {
	obj, ok := t.(ts.Object)
	if !ok {
		return nil, &UtilityError{Utility: utility, Arg: t.String(), Reason: "argument must be an object type"}
	}
	set, _, err := keySet(utility, keys)
	if err != nil {
		return nil, err
	}
	out := ts.Object{}
	for _, m := range obj.Members {
		if set[m.Name] == keep {
			out.Members = append(out.Members, m)
		}
	}
	return out, nil
}

// Pick keeps the members named in the string literal union keys.
func Pick(t, keys ts.Type) (ts.Type, error) {
	return filterMembers(config.PickTypeName, t, keys, true)
}

// Omit drops the members named in the string literal union keys.
func Omit(t, keys ts.Type) (ts.Type, error) {
	return filterMembers(config.OmitTypeName, t, keys, false)
}

// Record builds an object with one member of type value per key. A string or
// number key type yields an index signature instead.
func Record(keys, value ts.Type) (ts.Type, error) {
	if p, ok := keys.(ts.Primitive); ok {
		switch p.Kind {
		case ts.KindString, ts.KindNumber, ts.KindInteger:
			return ts.Object{Index: &ts.IndexSignature{Key: p, Value: value}}, nil
		}
	}
	_, order, err := keySet(config.RecordTypeName, keys)
	if err != nil {
		return nil, err
	}
	out := ts.Object{Members: make([]ts.Member, len(order))}
	for i, k := range order {
		out.Members[i] = ts.Member{Name: k, Type: value}
	}
	return out, nil
}

// Exclude drops the union members of t assignable to u.
func Exclude(t, u ts.Type, r ts.Resolver) ts.Type {
	return ts.Filter(t, func(m ts.Type) bool { return !ts.IsAssignable(m, u, r) })
}

// Extract keeps the union members of t assignable to u.
func Extract(t, u ts.Type, r ts.Resolver) ts.Type {
	return ts.Filter(t, func(m ts.Type) bool { return ts.IsAssignable(m, u, r) })
}

// NonNilable removes nil from t.
func NonNilable(t ts.Type) ts.Type { return ts.RemoveNil(t) }

// Nilable adds nil to t.
func Nilable(t ts.Type) ts.Type { return ts.Nullable(t) }

// ReturnType projects a function type's return type.
func ReturnType(t ts.Type) (ts.Type, error) {
	f, ok := t.(ts.Func)
	if !ok {
		return nil, &UtilityError{Utility: config.ReturnTypeTypeName, Arg: t.String(), Reason: "argument must be a function type"}
	}
	if f.Return == nil {
		return ts.Void, nil
	}
	return f.Return, nil
}

// Parameters projects a function type's parameters as a tuple. A rest
// parameter becomes an array element type.
func Parameters(t ts.Type) (ts.Type, error) {
	f, ok := t.(ts.Func)
	if !ok {
		return nil, &UtilityError{Utility: config.ParametersTypeName, Arg: t.String(), Reason: "argument must be a function type"}
	}
	elems := make([]ts.Type, 0, len(f.Params))
	for _, p := range f.Params {
		switch {
		case p.Rest:
			elems = append(elems, ts.Array{Elem: p.Type})
		case p.Optional:
			elems = append(elems, ts.Nullable(p.Type))
		default:
			elems = append(elems, p.Type)
		}
	}
	return ts.Tuple{Elems: elems}, nil
}

// KeyOf is the string literal union of an object's member names.
func KeyOf(t ts.Type) (ts.Type, error) {
	obj, ok := t.(ts.Object)
	if !ok {
		return nil, &UtilityError{Utility: config.KeyOfTypeName, Arg: t.String(), Reason: "argument must be an object type"}
	}
	keys := make([]ts.Type, 0, len(obj.Members))
	for _, m := range obj.Members {
		keys = append(keys, ts.StrLit(m.Name))
	}
	if obj.Index != nil {
		keys = append(keys, obj.Index.Key)
	}
	return ts.NewUnion(keys...), nil
}
