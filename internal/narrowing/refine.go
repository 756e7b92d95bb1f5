package narrowing

import (
	"github.com/funvibe/tlcheck/internal/config"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// Truthy removes nil and false from t. Every other value is truthy,
// including 0 and "".
func Truthy(t ts.Type) ts.Type {
	if ts.IsUnknown(t) {
		return t
	}
	out := make([]ts.Type, 0)
	for _, m := range ts.Members(t) {
		switch {
		case ts.IsNil(m) || ts.Equal(m, ts.Void):
		case ts.Equal(m, ts.BoolLit(false)):
		case ts.Equal(m, ts.Boolean):
			out = append(out, ts.BoolLit(true))
		default:
			out = append(out, m)
		}
	}
	return ts.NewUnion(out...)
}

// Falsy keeps the members of t that can be nil or false.
func Falsy(t ts.Type) ts.Type {
	if ts.IsUnknown(t) {
		return ts.NewUnion(ts.Nil, ts.BoolLit(false))
	}
	out := make([]ts.Type, 0)
	for _, m := range ts.Members(t) {
		switch {
		case ts.IsNil(m) || ts.Equal(m, ts.Void):
			out = append(out, ts.Nil)
		case ts.Equal(m, ts.BoolLit(false)):
			out = append(out, m)
		case ts.Equal(m, ts.Boolean):
			out = append(out, ts.BoolLit(false))
		}
	}
	return ts.NewUnion(out...)
}

// Spread expands aliases of unions so their members can be narrowed one by
// one. Named object types, interfaces and classes are kept by name.
func (n *Narrower) Spread(t ts.Type) ts.Type {
	return ts.NewUnion(n.spread(t, map[string]bool{})...)
}

func (n *Narrower) spread(t ts.Type, seen map[string]bool) []ts.Type {
	var out []ts.Type
	for _, m := range ts.Members(t) {
		r, ok := m.(ts.Ref)
		if !ok || seen[r.String()] {
			out = append(out, m)
			continue
		}
		exp, ok := n.host.Expand(r)
		if _, isUnion := exp.(ts.Union); !ok || !isUnion {
			out = append(out, m)
			continue
		}
		seen[r.String()] = true
		out = append(out, n.spread(exp, seen)...)
	}
	return out
}

// NarrowTo keeps the members of t compatible with target. A member wider than
// target (boolean against true, Animal against Dog) is replaced by target.
func (n *Narrower) NarrowTo(t, target ts.Type) ts.Type {
	if ts.IsUnknown(t) {
		return target
	}
	out := make([]ts.Type, 0)
	for _, m := range ts.Members(n.Spread(t)) {
		switch {
		case ts.IsAssignable(m, target, n.host):
			out = append(out, m)
		case ts.IsAssignable(target, m, n.host):
			out = append(out, target)
		}
	}
	return ts.NewUnion(out...)
}

// Remove drops the members of t that are assignable to target.
func (n *Narrower) Remove(t, target ts.Type) ts.Type {
	if ts.IsUnknown(t) {
		return t
	}
	return ts.Filter(n.Spread(t), func(m ts.Type) bool {
		return !ts.IsAssignable(m, target, n.host)
	})
}

// Without removes a singleton value from t: nil, a literal, or one half of
// boolean. Wider members are kept since they hold other values too.
func Without(t, lit ts.Type) ts.Type {
	if ts.IsUnknown(t) {
		return t
	}
	out := make([]ts.Type, 0)
	for _, m := range ts.Members(t) {
		switch {
		case ts.Equal(m, lit):
		case ts.IsNil(lit) && ts.Equal(m, ts.Void):
		case ts.Equal(m, ts.Boolean) && isBoolLit(lit):
			out = append(out, ts.BoolLit(!lit.(ts.Literal).Bool))
		default:
			out = append(out, m)
		}
	}
	return ts.NewUnion(out...)
}

func isBoolLit(t ts.Type) bool {
	l, ok := t.(ts.Literal)
	return ok && l.Kind == ts.LitBoolean
}

// Discriminate narrows a union of object shapes by the type of one property.
// When matching, it keeps the members whose property admits lit; otherwise
// it drops the members whose property is exactly lit.
func (n *Narrower) Discriminate(t ts.Type, prop string, lit ts.Type, matching bool) ts.Type {
	if ts.IsUnknown(t) {
		return t
	}
	return ts.Filter(n.Spread(t), func(m ts.Type) bool {
		obj, ok := n.object(m)
		if !ok {
			return !matching
		}
		member, ok := obj.Lookup(prop)
		if !ok {
			return !matching
		}
		pt := member.Type
		if member.Optional {
			pt = ts.Nullable(pt)
		}
		if matching {
			return ts.IsAssignable(lit, pt, n.host)
		}
		return !ts.Equal(pt, lit)
	})
}

func (n *Narrower) object(t ts.Type) (ts.Object, bool) {
	if o, ok := t.(ts.Object); ok {
		return o, true
	}
	if r, ok := t.(ts.Ref); ok {
		if exp, ok := n.host.Expand(r); ok {
			return n.object(exp)
		}
	}
	if i, ok := t.(ts.Intersection); ok {
		if o, ok := ts.NewIntersection(i.Types...).(ts.Object); ok {
			return o, true
		}
	}
	return ts.Object{}, false
}

// RuntimeType returns the type(x) result of values of type t, or "" when t
// spans several runtime types or cannot be classified.
func (n *Narrower) RuntimeType(t ts.Type) string {
	switch v := t.(type) {
	case ts.Primitive:
		switch v.Kind {
		case ts.KindNil, ts.KindVoid:
			return config.RuntimeNil
		case ts.KindBoolean:
			return config.RuntimeBoolean
		case ts.KindNumber, ts.KindInteger:
			return config.RuntimeNumber
		case ts.KindString:
			return config.RuntimeString
		case ts.KindTable:
			return config.RuntimeTable
		}
	case ts.Literal:
		return n.RuntimeType(v.Primitive())
	case ts.Func:
		return config.RuntimeFunction
	case ts.Predicate:
		return config.RuntimeBoolean
	case ts.Object, ts.Array, ts.Tuple, ts.Intersection:
		return config.RuntimeTable
	case ts.ClassRef:
		return config.RuntimeTable
	case ts.Ref:
		if exp, ok := n.host.Expand(v); ok {
			return n.RuntimeType(exp)
		}
	case ts.TVar:
		if b, ok := n.host.Bound(v.Name); ok {
			return n.RuntimeType(b)
		}
	}
	return ""
}

func runtimeTypeOf(name string) (ts.Type, bool) {
	switch name {
	case config.RuntimeNil:
		return ts.Nil, true
	case config.RuntimeBoolean:
		return ts.Boolean, true
	case config.RuntimeNumber:
		return ts.Number, true
	case config.RuntimeString:
		return ts.String, true
	case config.RuntimeTable:
		return ts.Table, true
	case config.RuntimeFunction:
		return ts.Func{Params: []ts.Param{{Name: "args", Type: ts.Unknown, Rest: true}}, Return: ts.Unknown}, true
	}
	return nil, false
}

// OfRuntimeType keeps the members of t for which type(x) == name.
func (n *Narrower) OfRuntimeType(t ts.Type, name string) ts.Type {
	if ts.IsUnknown(t) {
		if rt, ok := runtimeTypeOf(name); ok {
			return rt
		}
		return t
	}
	return ts.Filter(n.Spread(t), func(m ts.Type) bool {
		rt := n.RuntimeType(m)
		return rt == name || rt == ""
	})
}

// NotOfRuntimeType drops the members of t for which type(x) == name.
func (n *Narrower) NotOfRuntimeType(t ts.Type, name string) ts.Type {
	if ts.IsUnknown(t) {
		return t
	}
	return ts.Filter(n.Spread(t), func(m ts.Type) bool {
		return n.RuntimeType(m) != name
	})
}
