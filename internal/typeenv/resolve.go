package typeenv

import (
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// Resolve expands a reference one level to its structural form: built-ins,
// aliases (instantiated with args and defaults), interfaces (with extends
// merged), class instance types (with inherited members) and utility types.
// The result may still contain references nested inside it.
func (e *Env) Resolve(ref ts.Ref) (ts.Type, error) {
	if b, ok := e.builtins[ref.Name]; ok {
		if len(ref.Args) > 0 {
			return nil, &ArityError{Name: ref.Name, Got: len(ref.Args)}
		}
		return b, nil
	}
	if isUtility(ref.Name) {
		return e.applyUtility(ref)
	}

	if e.resolving[ref.Name] {
		return nil, &RecursiveAliasError{Name: ref.Name, Path: []string{ref.Name, ref.Name}}
	}
	e.resolving[ref.Name] = true
	defer delete(e.resolving, ref.Name)

	if a, ok := e.aliases[ref.Name]; ok {
		subst, err := bindArgs(ref.Name, a.Params, ref.Args)
		if err != nil {
			return nil, err
		}
		body := a.Body.Apply(subst)
		// An alias of a name is resolved through so cycles surface here.
		if inner, ok := body.(ts.Ref); ok {
			return e.Resolve(inner)
		}
		return body, nil
	}
	if i, ok := e.interfaces[ref.Name]; ok {
		return e.resolveInterface(i, ref.Args)
	}
	if c, ok := e.classes[ref.Name]; ok {
		return e.instanceType(c, ref.Args)
	}
	return nil, &UnknownTypeError{Name: ref.Name}
}

// Expand implements typesystem.Resolver.
func (e *Env) Expand(t ts.Type) (ts.Type, bool) {
	switch v := t.(type) {
	case ts.Ref:
		out, err := e.Resolve(v)
		return out, err == nil
	case ts.ClassRef:
		out, err := e.StaticType(v.Name)
		return out, err == nil
	}
	return t, true
}

// Structural expands references at the head of t (and inside unions and
// intersections) until a non-reference type is reached.
func (e *Env) Structural(t ts.Type) (ts.Type, error) {
	for depth := 0; depth < 64; depth++ {
		switch v := t.(type) {
		case ts.Ref:
			next, err := e.Resolve(v)
			if err != nil {
				return nil, err
			}
			t = next
			continue
		case ts.ClassRef:
			return e.StaticType(v.Name)
		case ts.Union:
			members := make([]ts.Type, len(v.Types))
			for i, m := range v.Types {
				sm, err := e.Structural(m)
				if err != nil {
					return nil, err
				}
				members[i] = sm
			}
			return ts.NewUnion(members...), nil
		case ts.Intersection:
			members := make([]ts.Type, len(v.Types))
			for i, m := range v.Types {
				sm, err := e.Structural(m)
				if err != nil {
					return nil, err
				}
				members[i] = sm
			}
			return ts.NewIntersection(members...), nil
		}
		return t, nil
	}
	return ts.Unknown, nil
}

func bindArgs(name string, params []ts.TypeParam, args []ts.Type) (ts.Subst, error) {
	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) > len(params) || len(args) < required {
		return nil, &ArityError{Name: name, Min: required, Max: len(params), Got: len(args)}
	}
	subst := make(ts.Subst, 0, len(params))
	for i, p := range params {
		var arg ts.Type
		if i < len(args) {
			arg = args[i]
		} else {
			arg = p.Default.Apply(subst)
		}
		subst = append(subst, ts.Binding{Param: p.Name, Type: arg})
	}
	return subst, nil
}

func (e *Env) resolveInterface(i *Interface, args []ts.Type) (ts.Type, error) {
	subst, err := bindArgs(i.Name, i.Params, args)
	if err != nil {
		return nil, err
	}
	merged := ts.Object{}
	for _, ext := range i.Extends {
		base, err := e.Resolve(ext.Apply(subst).(ts.Ref))
		if err != nil {
			return nil, err
		}
		if obj, ok := base.(ts.Object); ok {
			for _, m := range obj.Members {
				merged = merged.With(m)
			}
			if obj.Index != nil {
				merged.Index = obj.Index
			}
		}
	}
	own := i.Body.Apply(subst).(ts.Object)
	for _, m := range own.Members {
		merged = merged.With(m)
	}
	if own.Index != nil {
		merged.Index = own.Index
	}
	return merged, nil
}

func (e *Env) instanceType(c *Class, args []ts.Type) (ts.Type, error) {
	// A bare generic class name inside its own body keeps its parameters.
	var subst ts.Subst
	if len(args) > 0 || len(c.Params) == 0 {
		s, err := bindArgs(c.Name, c.Params, args)
		if err != nil {
			return nil, err
		}
		subst = s
	}
	merged := ts.Object{}
	if c.Parent != nil {
		base, err := e.Resolve(c.Parent.Apply(subst).(ts.Ref))
		if err != nil {
			return nil, err
		}
		if obj, ok := base.(ts.Object); ok {
			merged = obj
		}
	}
	own := c.Instance.Apply(subst).(ts.Object)
	for _, m := range own.Members {
		merged = merged.With(m)
	}
	if own.Index != nil {
		merged.Index = own.Index
	}
	return merged, nil
}

// InstanceType returns the instance shape of a class with inherited members.
func (e *Env) InstanceType(name string, args []ts.Type) (ts.Object, error) {
	c, ok := e.classes[name]
	if !ok {
		return ts.Object{}, &UnknownTypeError{Name: name}
	}
	t, err := e.instanceType(c, args)
	if err != nil {
		return ts.Object{}, err
	}
	return t.(ts.Object), nil
}

// StaticType returns the static side of a class with inherited static members.
func (e *Env) StaticType(name string) (ts.Type, error) {
	merged := ts.Object{}
	var chain []*Class
	seen := map[string]bool{}
	for cur := name; cur != "" && !seen[cur]; {
		seen[cur] = true
		c, ok := e.classes[cur]
		if !ok {
			if cur == name {
				return nil, &UnknownTypeError{Name: name}
			}
			break
		}
		chain = append(chain, c)
		if c.Parent == nil {
			break
		}
		cur = c.Parent.Name
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Static.Members {
			merged = merged.With(m)
		}
	}
	return merged, nil
}

// Constructor returns the constructor signature of a class, walking up to
// the nearest ancestor that declares one. Classes without one take no arguments.
func (e *Env) Constructor(name string) ts.Func {
	seen := map[string]bool{}
	for cur := name; cur != "" && !seen[cur]; {
		seen[cur] = true
		c, ok := e.classes[cur]
		if !ok {
			break
		}
		if c.Ctor != nil {
			return *c.Ctor
		}
		if c.Parent == nil {
			break
		}
		cur = c.Parent.Name
	}
	return ts.Func{Return: ts.Void}
}

// Flatten deeply replaces references to aliases, interfaces and utility types
// by their structure so the result can be used outside this environment.
// Class references and recursive occurrences are kept by name.
func (e *Env) Flatten(t ts.Type) ts.Type {
	return e.flatten(t, map[string]bool{})
}

func (e *Env) flatten(t ts.Type, active map[string]bool) ts.Type {
	return ts.Map(t, func(n ts.Type) ts.Type {
		ref, ok := n.(ts.Ref)
		if !ok {
			return n
		}
		if b, ok := e.builtins[ref.Name]; ok && len(ref.Args) == 0 {
			return b
		}
		if active[ref.Name] || e.IsClass(ref.Name) {
			return n
		}
		body, err := e.Resolve(ref)
		if err != nil {
			return n
		}
		active[ref.Name] = true
		defer delete(active, ref.Name)
		return e.flatten(body, active)
	})
}
