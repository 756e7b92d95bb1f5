package analyzer

import (
	"errors"
	"fmt"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/generics"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// callSite is everything applyCall needs to know about one invocation.
type callSite struct {
	span        token.Span
	typeArgs    []ast.Type
	args        []ast.Expression
	leading     []ts.Type // already typed arguments ahead of args, e.g. a pipe operand
	leadingSpan token.Span
}

// argValue is one argument position after multiple-value expansion.
type argValue struct {
	t    ts.Type
	span token.Span
}

// checkTypeArgs binds explicit type arguments and checks their constraints.
func (w *walker) checkTypeArgs(params []ts.TypeParam, args []ts.Type) error {
	subst, err := generics.Bind(params, args)
	if err != nil {
		return err
	}
	return generics.CheckConstraints(params, subst, resolverWrapper{w})
}

// applyCall checks the arguments of a call against f and returns the result
// type with the type arguments used for a generic f.
func (w *walker) applyCall(f ts.Func, site callSite, expected ts.Type) (ts.Type, []ts.Type) {
	cache := make([]ts.Type, len(site.args))
	var inferred []ts.Type

	switch {
	case len(f.TypeParams) > 0 && len(site.typeArgs) > 0:
		args := make([]ts.Type, len(site.typeArgs))
		for i, a := range site.typeArgs {
			args[i] = w.buildType(a)
		}
		subst, err := generics.Bind(f.TypeParams, args)
		if err != nil {
			w.addError(diagnostics.ErrArity, site.span, err.Error())
			for _, a := range site.args {
				w.inferExpr(a, nil)
			}
			return ts.Unknown, nil
		}
		if err := generics.CheckConstraints(f.TypeParams, subst, resolverWrapper{w}); err != nil {
			w.addError(diagnostics.ErrTypeConstraintViolation, site.span, err.Error())
		}
		f = generics.InstantiateFunc(f, subst)
		inferred = subst.Types()

	case len(f.TypeParams) > 0:
		f, inferred = w.inferTypeArgs(f, site, cache, expected)

	case len(site.typeArgs) > 0:
		w.addError(diagnostics.ErrArity, site.span, fmt.Sprintf("expected 0 type arguments, got %d", len(site.typeArgs)))
	}

	var values []argValue
	for _, t := range site.leading {
		values = append(values, argValue{t: t, span: site.leadingSpan})
	}
	open := false
	for j, a := range site.args {
		i := len(values)
		if sp, ok := a.(*ast.SpreadExpression); ok {
			elem := cache[j]
			if elem == nil {
				elem = w.spreadElement(w.inferExpr(sp.Value, nil), sp.Span)
				sp.Annotation().Type = elem
			}
			if pt, ok := w.argType(f, i); ok {
				w.expectAssignable(elem, pt, sp.Span)
			}
			open = true
			continue
		}
		t := cache[j]
		if t == nil {
			pt, _ := w.argType(f, i)
			t = w.inferExpr(a, pt)
		}
		if _, ok := a.(*ast.VarargExpression); ok {
			open = true
		}
		if tup, ok := t.(ts.Tuple); ok && j == len(site.args)-1 && isMultiValue(a) {
			for _, e := range tup.Elems {
				values = append(values, argValue{t: e, span: a.GetSpan()})
			}
			continue
		}
		values = append(values, argValue{t: t, span: a.GetSpan()})
	}

	_, variadic := f.RestParam()
	switch {
	case len(values) < f.RequiredCount() && !open:
		w.addError(diagnostics.ErrArity, site.span, fmt.Sprintf("expected %s, got %d", arityText(f), len(values)))
	case len(values) > len(f.Params) && !variadic:
		w.addError(diagnostics.ErrArity, site.span, fmt.Sprintf("expected %s, got %d", arityText(f), len(values)))
	}
	for i, v := range values {
		if pt, ok := w.argType(f, i); ok {
			w.expectAssignable(v.t, pt, v.span)
		}
	}

	ret := f.Return
	if ret == nil {
		return ts.Void, inferred
	}
	if _, ok := ret.(ts.Predicate); ok {
		return ts.Boolean, inferred
	}
	return ret, inferred
}

// argType is the type an argument at position i must have. Optional
// parameters accept nil.
func (w *walker) argType(f ts.Func, i int) (ts.Type, bool) {
	pt, ok := f.ParamTypeAt(i)
	if !ok {
		return nil, false
	}
	if i < len(f.Params) && f.Params[i].Optional {
		return ts.Nullable(pt), true
	}
	return pt, true
}

// inferTypeArgs infers the type arguments of a generic call. Function
// literal arguments are checked after the other arguments have fixed what
// they can, so their parameters get contextual types.
func (w *walker) inferTypeArgs(f ts.Func, site callSite, cache []ts.Type, expected ts.Type) (ts.Func, []ts.Type) {
	n := len(site.leading) + len(site.args)
	formals := make([]ts.Type, 0, n)
	actuals := make([]ts.Type, 0, n)
	for i, t := range site.leading {
		pt, _ := f.ParamTypeAt(i)
		formals = append(formals, pt)
		actuals = append(actuals, t)
	}
	var lambdas []int
	for j, a := range site.args {
		i := len(site.leading) + j
		pt, _ := f.ParamTypeAt(i)
		formals = append(formals, pt)
		if _, ok := a.(*ast.FunctionExpression); ok {
			lambdas = append(lambdas, j)
			actuals = append(actuals, nil)
			continue
		}
		if sp, ok := a.(*ast.SpreadExpression); ok {
			elem := w.spreadElement(w.inferExpr(sp.Value, nil), sp.Span)
			sp.Annotation().Type = elem
			cache[j] = elem
			actuals = append(actuals, elem)
			continue
		}
		var ctx ts.Type
		if pt != nil && len(pt.FreeTypeVariables()) == 0 {
			ctx = pt
		}
		cache[j] = w.inferExpr(a, ctx)
		actuals = append(actuals, cache[j])
	}
	if expected != nil && f.Return != nil {
		formals = append(formals, f.Return)
		actuals = append(actuals, expected)
	}

	r := resolverWrapper{w}
	if len(lambdas) > 0 {
		partial, _ := generics.InferArguments(f.TypeParams, formals, actuals, r)
		for _, j := range lambdas {
			i := len(site.leading) + j
			var ctx ts.Type
			if formals[i] != nil {
				ctx = formals[i].Apply(partial)
			}
			cache[j] = w.inferExpr(site.args[j], ctx)
			actuals[i] = cache[j]
		}
	}
	subst, err := generics.InferArguments(f.TypeParams, formals, actuals, r)
	var ce *generics.ConstraintError
	if errors.As(err, &ce) {
		w.addError(diagnostics.ErrTypeConstraintViolation, site.span, ce.Error())
	}
	return generics.InstantiateFunc(f, subst), subst.Types()
}

// isMultiValue reports whether e can produce several values.
func isMultiValue(e ast.Expression) bool {
	switch e.(type) {
	case *ast.CallExpression, *ast.MethodCallExpression, *ast.VarargExpression:
		return true
	}
	return false
}

func arityText(f ts.Func) string {
	required := f.RequiredCount()
	if _, ok := f.RestParam(); ok {
		return fmt.Sprintf("at least %d argument(s)", required)
	}
	if required == len(f.Params) {
		return fmt.Sprintf("%d argument(s)", required)
	}
	return fmt.Sprintf("%d-%d arguments", required, len(f.Params))
}

func (w *walker) inferCall(v *ast.CallExpression, expected ts.Type) ts.Type {
	if sup, ok := v.Callee.(*ast.SuperExpression); ok {
		return w.inferSuperCall(v, sup)
	}
	callee := w.inferExpr(v.Callee, nil)
	site := callSite{span: v.Span, typeArgs: v.TypeArgs, args: v.Args}
	if ts.IsUnknown(callee) {
		w.inferArgs(v.Args)
		return ts.Unknown
	}

	base := callee
	if ts.HasNil(callee) {
		if !v.Optional && w.opts.StrictNullChecks {
			w.addError(diagnostics.ErrTypeMismatch, v.Callee.GetSpan(), "cannot invoke an object which is possibly nil")
		}
		base = ts.RemoveNil(callee)
	}
	f, ok := w.callable(base, v.Callee.GetSpan())
	if !ok {
		w.inferArgs(v.Args)
		return ts.Unknown
	}
	ret, inferred := w.applyCall(f, site, expected)
	if len(inferred) > 0 {
		v.InferredTypeArgs = inferred
	}
	if v.Optional && ts.HasNil(callee) {
		return ts.Nullable(ret)
	}
	return ret
}

// callable extracts the signature of a callee type, reporting values that
// cannot be called.
func (w *walker) callable(t ts.Type, span token.Span) (ts.Func, bool) {
	switch s := w.structural(t).(type) {
	case ts.Func:
		return s, true
	case ts.ClassRef:
		w.addError(diagnostics.ErrTypeMismatch, span, "class", s.Name, "cannot be called; use 'new", s.Name+"(...)'")
		return ts.Func{}, false
	case ts.Primitive:
		if s.Kind == ts.KindUnknown {
			return ts.Func{}, false
		}
	}
	w.addError(diagnostics.ErrTypeMismatch, span, "type", quote(t), "is not callable")
	return ts.Func{}, false
}

func (w *walker) inferArgs(args []ast.Expression) {
	for _, a := range args {
		w.inferExpr(a, nil)
	}
}

// inferSuperCall checks `super(...)` against the parent constructor.
func (w *walker) inferSuperCall(v *ast.CallExpression, sup *ast.SuperExpression) ts.Type {
	parent, ok := w.parentClass()
	if !ok || w.fn == nil || !w.fn.ctor {
		w.addError(diagnostics.ErrUndefinedSymbol, sup.Span, "'super(...)' is only valid in a subclass constructor")
		w.inferArgs(v.Args)
		return ts.Unknown
	}
	sup.Annotation().Type = ts.ClassRef{Name: parent.Name}
	sup.Annotation().Receiver = &ast.ReceiverClass{Name: parent.Name}
	ctor := w.constructorOf(parent.Name, parent.Args)
	w.applyCall(ctor, callSite{span: v.Span, args: v.Args}, nil)
	return ts.Void
}

// constructorOf is the constructor of a class instantiated with args.
func (w *walker) constructorOf(name string, args []ts.Type) ts.Func {
	ctor := w.env.Constructor(name)
	c, ok := w.env.Class(name)
	if !ok || len(c.Params) == 0 || len(args) == 0 {
		return ctor
	}
	subst, err := generics.Bind(c.Params, args)
	if err != nil {
		return ctor
	}
	return ctor.Apply(subst).(ts.Func)
}

func (w *walker) inferMethodCall(v *ast.MethodCallExpression, expected ts.Type) ts.Type {
	recv := w.inferExpr(v.Receiver, nil)
	if ts.IsUnknown(recv) {
		w.inferArgs(v.Args)
		return ts.Unknown
	}
	var f ts.Func
	if w.isStringLike(recv) {
		m, ok := stringMethod(v.Method)
		if !ok {
			w.addError(diagnostics.ErrUnknownMember, v.Span, "property", v.Method, "does not exist on type 'string'")
			w.inferArgs(v.Args)
			return ts.Unknown
		}
		f = m
	} else {
		base := w.receiverBase(recv, false, v.Receiver.GetSpan())
		member, _, ok := w.lookupMember(v, base, v.Method, false, v.Span)
		if !ok {
			w.inferArgs(v.Args)
			return ts.Unknown
		}
		if f, ok = w.callable(memberType(member), v.Span); !ok {
			w.inferArgs(v.Args)
			return ts.Unknown
		}
	}
	ret, inferred := w.applyCall(f, callSite{span: v.Span, typeArgs: v.TypeArgs, args: v.Args}, expected)
	if len(inferred) > 0 {
		v.InferredTypeArgs = inferred
	}
	return ret
}

func (w *walker) isStringLike(t ts.Type) bool {
	s := w.structural(t)
	if lit, ok := s.(ts.Literal); ok {
		return lit.Kind == ts.LitString
	}
	p, ok := s.(ts.Primitive)
	return ok && p.Kind == ts.KindString
}

// stringMethod looks a method up in the string library; the receiver fills
// its first parameter.
func stringMethod(name string) (ts.Func, bool) {
	for _, sym := range symbols.GetPrelude().Symbols() {
		if sym.Name != config.StringTypeName {
			continue
		}
		lib, ok := sym.Type.(ts.Object)
		if !ok {
			return ts.Func{}, false
		}
		m, ok := lib.Lookup(name)
		if !ok {
			return ts.Func{}, false
		}
		f, ok := m.Type.(ts.Func)
		if !ok || len(f.Params) == 0 {
			return ts.Func{}, false
		}
		f.Params = f.Params[1:]
		return f, true
	}
	return ts.Func{}, false
}

func (w *walker) inferNew(v *ast.NewExpression, expected ts.Type) ts.Type {
	name := w.classByName(v.Class)
	c, ok := w.env.Class(name)
	if !ok {
		w.addError(diagnostics.ErrUndefinedSymbol, v.ClassSpan, "undefined class", v.Class)
		w.inferArgs(v.Args)
		return ts.Unknown
	}
	if c.Abstract {
		w.addError(diagnostics.ErrAbstractMember, v.Span, "cannot create an instance of abstract class", v.Class)
	}
	if err := w.classes.CheckMemberAccess(w.accessingClass(), name, config.ConstructorName); err != nil {
		w.reportAccess(err, v.Span)
	}
	v.Annotation().Receiver = &ast.ReceiverClass{Name: name, Static: true}

	ctor := w.env.Constructor(name)
	if len(c.Params) == 0 {
		w.applyCall(ctor, callSite{span: v.Span, typeArgs: v.TypeArgs, args: v.Args}, nil)
		return ts.Ref{Name: name}
	}

	// The constructor is generic over the class parameters.
	ctor.TypeParams = c.Params
	ctor.Return = ts.Ref{Name: name, Args: tvarsOf(c.Params)}
	ret, inferred := w.applyCall(ctor, callSite{span: v.Span, typeArgs: v.TypeArgs, args: v.Args}, expected)
	if len(inferred) > 0 {
		v.InferredTypeArgs = inferred
	}
	return ret
}

// classByName follows a class symbol to the class it names, which differs
// from the written name for imports under an alias.
func (w *walker) classByName(name string) string {
	if sym, err := w.symbolTable.Lookup(name); err == nil && sym.Kind == symbols.ClassSymbol {
		if ref, ok := sym.Type.(ts.ClassRef); ok {
			return ref.Name
		}
	}
	return name
}
