package analyzer

import (
	"errors"

	"github.com/funvibe/tlcheck/internal/access"
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// memberType is the type a read of m produces.
func memberType(m ts.Member) ts.Type {
	if m.Optional {
		return ts.Nullable(m.Type)
	}
	return m.Type
}

func (w *walker) inferMember(v *ast.MemberExpression) ts.Type {
	m, _, ok := w.memberAccess(v, false)
	if !ok {
		return ts.Unknown
	}
	t := w.refined(v, memberType(m))
	if v.Optional && ts.HasNil(v.Object.Annotation().Type) {
		return ts.Nullable(t)
	}
	return t
}

// memberAccess checks `object.name` and returns the member with the class
// that declares it ("" for structural members).
func (w *walker) memberAccess(e *ast.MemberExpression, write bool) (ts.Member, string, bool) {
	objT := w.inferExpr(e.Object, nil)
	base := w.receiverBase(objT, e.Optional, e.Object.GetSpan())
	return w.lookupMember(e, base, e.Name, write, e.Span)
}

// receiverBase strips nil from a receiver, reporting it unless the access is
// optional.
func (w *walker) receiverBase(t ts.Type, optional bool, span token.Span) ts.Type {
	if ts.IsUnknown(t) || !ts.HasNil(t) {
		return t
	}
	if !optional && w.opts.StrictNullChecks {
		w.addError(diagnostics.ErrTypeMismatch, span, "object is possibly nil")
	}
	return ts.RemoveNil(t)
}

// lookupMember finds name on a receiver of type t. site is the access
// expression that records the receiver class.
func (w *walker) lookupMember(site ast.Expression, t ts.Type, name string, write bool, span token.Span) (ts.Member, string, bool) {
	switch v := t.(type) {
	case ts.Ref:
		if w.env.IsClass(v.Name) {
			return w.classMember(site, v, name, span)
		}
	case ts.ClassRef:
		return w.staticMember(site, v.Name, name, span)
	case ts.TVar:
		if b, ok := w.env.Bound(v.Name); ok {
			return w.lookupMember(site, b, name, write, span)
		}
		w.addError(diagnostics.ErrUnknownMember, span, "property", name, "does not exist on type", quote(t))
		return ts.Member{}, "", false
	}

	switch s := w.structural(t).(type) {
	case ts.Object:
		if m, ok := s.Lookup(name); ok {
			return m, "", true
		}
		if s.Index != nil && w.assignable(ts.StrLit(name), s.Index.Key) {
			vt := s.Index.Value
			if !write {
				vt = ts.Nullable(vt)
			}
			return ts.Member{Name: name, Type: vt}, "", true
		}
	case ts.Union:
		return w.unionMemberAccess(site, s, name, write, span)
	case ts.Ref:
		if w.env.IsClass(s.Name) {
			return w.classMember(site, s, name, span)
		}
	case ts.Primitive:
		switch s.Kind {
		case ts.KindUnknown, ts.KindTable:
			return ts.Member{Name: name, Type: ts.Unknown}, "", true
		case ts.KindNever:
			return ts.Member{Name: name, Type: ts.Never}, "", true
		}
	}
	w.addError(diagnostics.ErrUnknownMember, span, "property", name, "does not exist on type", quote(t))
	return ts.Member{}, "", false
}

func (w *walker) unionMemberAccess(site ast.Expression, u ts.Union, name string, write bool, span token.Span) (ts.Member, string, bool) {
	out := ts.Member{Name: name}
	var types []ts.Type
	for _, m := range u.Types {
		var found ts.Member
		ok := false
		switch v := m.(type) {
		case ts.Ref:
			if obj, err := w.env.InstanceType(v.Name, v.Args); err == nil && w.env.IsClass(v.Name) {
				found, ok = obj.Lookup(name)
				break
			}
			if obj, isObj := w.structural(v).(ts.Object); isObj {
				found, ok = obj.Lookup(name)
			}
		default:
			if obj, isObj := w.structural(m).(ts.Object); isObj {
				found, ok = obj.Lookup(name)
			}
		}
		if !ok {
			w.addError(diagnostics.ErrUnknownMember, span, "property", name, "does not exist on type", quote(m))
			return ts.Member{}, "", false
		}
		types = append(types, memberType(found))
		out.Readonly = out.Readonly || found.Readonly
	}
	out.Type = ts.NewUnion(types...)
	return out, "", true
}

// classMember looks up an instance member and checks its visibility.
func (w *walker) classMember(site ast.Expression, ref ts.Ref, name string, span token.Span) (ts.Member, string, bool) {
	obj, err := w.env.InstanceType(ref.Name, ref.Args)
	if err != nil {
		w.addError(diagnostics.ErrUndefinedSymbol, span, err.Error())
		return ts.Member{}, "", false
	}
	m, ok := obj.Lookup(name)
	if !ok {
		w.addError(diagnostics.ErrUnknownMember, span, "property", name, "does not exist on type", quote(ref))
		return ts.Member{}, "", false
	}
	site.Annotation().Receiver = &ast.ReceiverClass{Name: ref.Name}
	return m, w.checkAccess(site, ref.Name, name, span), true
}

// staticMember looks up a member on the static side of a class.
func (w *walker) staticMember(site ast.Expression, class, name string, span token.Span) (ts.Member, string, bool) {
	t, err := w.env.StaticType(class)
	if err != nil {
		w.addError(diagnostics.ErrUndefinedSymbol, span, err.Error())
		return ts.Member{}, "", false
	}
	obj, _ := t.(ts.Object)
	m, ok := obj.Lookup(name)
	if !ok {
		w.addError(diagnostics.ErrUnknownMember, span, "property", name, "does not exist on type", quote(ts.ClassRef{Name: class}))
		return ts.Member{}, "", false
	}
	site.Annotation().Receiver = &ast.ReceiverClass{Name: class, Static: true}
	return m, w.checkAccess(site, class, name, span), true
}

// checkAccess reports a private or protected member used from outside its
// permitted classes and returns the declaring class.
func (w *walker) checkAccess(site ast.Expression, receiver, name string, span token.Span) string {
	owner, rec, ok := w.classes.MemberOwner(receiver, name)
	if !ok {
		return receiver
	}
	if err := w.classes.CheckMemberAccess(w.accessingClass(), owner, name); err != nil {
		w.reportAccess(err, span)
	}
	if rec.Abstract && viaSuper(site) {
		w.addError(diagnostics.ErrAbstractMember, span, "abstract member", name, "of class", owner, "cannot be accessed via super")
	}
	return owner
}

func (w *walker) reportAccess(err error, span token.Span) {
	var ae *access.AccessError
	if !errors.As(err, &ae) {
		return
	}
	code := diagnostics.ErrProtectedMemberAccess
	if ae.Access == ast.Private {
		code = diagnostics.ErrPrivateMemberAccess
	}
	w.addError(code, span, ae.Error())
}

func viaSuper(site ast.Expression) bool {
	switch v := site.(type) {
	case *ast.MemberExpression:
		_, ok := v.Object.(*ast.SuperExpression)
		return ok
	case *ast.MethodCallExpression:
		_, ok := v.Receiver.(*ast.SuperExpression)
		return ok
	}
	return false
}

// inferIndex checks `object[index]`. Tuples are indexed from 1.
func (w *walker) inferIndex(e *ast.IndexExpression, write bool) ts.Type {
	objT := w.inferExpr(e.Object, nil)
	idxT := w.inferExpr(e.Index, nil)
	base := w.receiverBase(objT, e.Optional, e.Object.GetSpan())
	t := w.index(e, base, idxT, write)
	if e.Optional && ts.HasNil(objT) && !write {
		return ts.Nullable(t)
	}
	return t
}

func (w *walker) index(e *ast.IndexExpression, base, idx ts.Type, write bool) ts.Type {
	if ts.IsUnknown(base) {
		return ts.Unknown
	}
	if lit, ok := idx.(ts.Literal); ok && lit.Kind == ts.LitString {
		m, _, ok := w.lookupMember(e, base, lit.Str, write, e.Span)
		if !ok {
			return ts.Unknown
		}
		if write && m.Readonly {
			w.addError(diagnostics.ErrReadonlyAssignment, e.Span, "cannot assign to readonly property", lit.Str)
		}
		if write {
			return m.Type
		}
		return memberType(m)
	}

	switch s := w.structural(base).(type) {
	case ts.Array:
		w.expectAssignable(idx, ts.Number, e.Index.GetSpan())
		return s.Elem
	case ts.Tuple:
		w.expectAssignable(idx, ts.Number, e.Index.GetSpan())
		if lit, ok := idx.(ts.Literal); ok && lit.IsInteger() {
			k := int(lit.Number)
			if k < 1 || k > len(s.Elems) {
				w.addError(diagnostics.ErrTypeMismatch, e.Index.GetSpan(), "tuple type", quote(base), "of length",
					len(s.Elems), "has no element at index", k)
				return ts.Unknown
			}
			return s.Elems[k-1]
		}
		return ts.NewUnion(s.Elems...)
	case ts.Object:
		if s.Index != nil {
			w.expectAssignable(idx, s.Index.Key, e.Index.GetSpan())
			if write {
				return s.Index.Value
			}
			return ts.Nullable(s.Index.Value)
		}
		if ts.IsUnknown(idx) {
			return ts.Unknown
		}
		w.addError(diagnostics.ErrTypeMismatch, e.Span, "type", quote(base), "has no index signature for", quote(idx))
		return ts.Unknown
	case ts.Primitive:
		if s.Kind == ts.KindTable || s.Kind == ts.KindUnknown {
			return ts.Unknown
		}
	}
	w.addError(diagnostics.ErrTypeMismatch, e.Span, "type", quote(base), "cannot be indexed")
	return ts.Unknown
}
