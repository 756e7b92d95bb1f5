// Package typeenv is the registry of named types: built-ins, aliases,
// interfaces, class shapes and the structural utility types.
//
// Definitions are stored as written and expanded lazily by Resolve, which
// tracks the names currently being resolved to reject cycles.
package typeenv

import (
	"sort"

	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// Alias is `type Name<Params> = Body`.
type Alias struct {
	Name   string
	Params []ts.TypeParam
	Body   ts.Type
	Span   token.Span
}

// Interface is `interface Name<Params> extends ... { Body }`.
type Interface struct {
	Name    string
	Params  []ts.TypeParam
	Extends []ts.Ref
	Body    ts.Object
	Span    token.Span
}

// Class is the type-level shape of a class declaration.
// Instance and Static hold only the members the class itself declares.
type Class struct {
	Name       string
	Params     []ts.TypeParam
	Parent     *ts.Ref
	Implements []ts.Ref
	Instance   ts.Object
	Static     ts.Object
	Ctor       *ts.Func
	Abstract   bool
	Span       token.Span
}

// Env is the type environment of one module check. It is not safe for
// concurrent use; each module owns its own Env.
type Env struct {
	builtins   map[string]ts.Type
	aliases    map[string]*Alias
	interfaces map[string]*Interface
	classes    map[string]*Class

	resolving map[string]bool
	bounds    []map[string]ts.Type
}

// New returns an environment with the built-in types registered.
func New() *Env {
	e := &Env{
		builtins:   make(map[string]ts.Type),
		aliases:    make(map[string]*Alias),
		interfaces: make(map[string]*Interface),
		classes:    make(map[string]*Class),
		resolving:  make(map[string]bool),
	}
	for _, name := range []string{
		config.NilTypeName, config.BooleanTypeName, config.NumberTypeName, config.IntegerTypeName,
		config.StringTypeName, config.UnknownTypeName, config.NeverTypeName, config.VoidTypeName,
		config.TableTypeName,
	} {
		prim, _ := ts.PrimitiveByName(name)
		e.builtins[name] = prim
	}
	e.builtins[config.AnyTypeName] = ts.Unknown
	return e
}

// IsBuiltin reports whether name is a built-in type name.
func (e *Env) IsBuiltin(name string) bool {
	_, ok := e.builtins[name]
	return ok
}

// IsDefined reports whether name is a registered type of any kind.
func (e *Env) IsDefined(name string) bool {
	if e.IsBuiltin(name) || isUtility(name) {
		return true
	}
	_, a := e.aliases[name]
	_, i := e.interfaces[name]
	_, c := e.classes[name]
	return a || i || c
}

func (e *Env) checkFree(name string) error {
	_, a := e.aliases[name]
	_, i := e.interfaces[name]
	_, c := e.classes[name]
	if a || i || c || e.IsBuiltin(name) {
		return &DuplicateTypeError{Name: name}
	}
	return nil
}

// RegisterAlias stores an alias definition without expanding it.
func (e *Env) RegisterAlias(a *Alias) error {
	if err := e.checkFree(a.Name); err != nil {
		return err
	}
	e.aliases[a.Name] = a
	return nil
}

// RegisterInterface stores an interface. Redeclaring an interface merges the
// new members into the existing declaration.
func (e *Env) RegisterInterface(i *Interface) error {
	if prev, ok := e.interfaces[i.Name]; ok {
		for _, m := range i.Body.Members {
			prev.Body = prev.Body.With(m)
		}
		prev.Extends = append(prev.Extends, i.Extends...)
		return nil
	}
	if err := e.checkFree(i.Name); err != nil {
		return err
	}
	e.interfaces[i.Name] = i
	return nil
}

// RegisterClass stores a class shape. The shape may be filled in after
// registration so that members can refer to the class itself.
func (e *Env) RegisterClass(c *Class) error {
	if err := e.checkFree(c.Name); err != nil {
		return err
	}
	e.classes[c.Name] = c
	return nil
}

// Alias returns a registered alias.
func (e *Env) Alias(name string) (*Alias, bool) {
	a, ok := e.aliases[name]
	return a, ok
}

// Interface returns a registered interface.
func (e *Env) Interface(name string) (*Interface, bool) {
	i, ok := e.interfaces[name]
	return i, ok
}

// Class returns a registered class shape.
func (e *Env) Class(name string) (*Class, bool) {
	c, ok := e.classes[name]
	return c, ok
}

// ClassNames lists the registered classes, sorted.
func (e *Env) ClassNames() []string {
	names := make([]string, 0, len(e.classes))
	for n := range e.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsClass reports whether name is a registered class.
func (e *Env) IsClass(name string) bool {
	_, ok := e.classes[name]
	return ok
}

// IsSubclass reports whether child is ancestor or extends it transitively.
func (e *Env) IsSubclass(child, ancestor string) bool {
	seen := map[string]bool{}
	for cur := child; cur != "" && !seen[cur]; {
		if cur == ancestor {
			return true
		}
		seen[cur] = true
		c, ok := e.classes[cur]
		if !ok || c.Parent == nil {
			return false
		}
		cur = c.Parent.Name
	}
	return false
}

// PushTypeParams opens a scope of type parameters whose constraints are
// used as their bounds.
func (e *Env) PushTypeParams(params []ts.TypeParam) {
	scope := make(map[string]ts.Type, len(params))
	for _, p := range params {
		scope[p.Name] = p.Constraint
	}
	e.bounds = append(e.bounds, scope)
}

// PopTypeParams closes the innermost type parameter scope.
func (e *Env) PopTypeParams() {
	if len(e.bounds) > 0 {
		e.bounds = e.bounds[:len(e.bounds)-1]
	}
}

// TypeParamDepth returns the number of open type parameter scopes.
func (e *Env) TypeParamDepth() int { return len(e.bounds) }

// ResetTypeParams closes scopes until depth remain.
func (e *Env) ResetTypeParams(depth int) {
	if depth < len(e.bounds) {
		e.bounds = e.bounds[:depth]
	}
}

// IsTypeParam reports whether name is a type parameter in scope.
func (e *Env) IsTypeParam(name string) bool {
	for i := len(e.bounds) - 1; i >= 0; i-- {
		if _, ok := e.bounds[i][name]; ok {
			return true
		}
	}
	return false
}

// Bound returns the constraint of an in-scope type parameter. Unconstrained
// parameters have no bound.
func (e *Env) Bound(name string) (ts.Type, bool) {
	for i := len(e.bounds) - 1; i >= 0; i-- {
		if b, ok := e.bounds[i][name]; ok {
			return b, b != nil
		}
	}
	return nil, false
}

var _ ts.Resolver = (*Env)(nil)
