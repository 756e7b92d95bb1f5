package narrowing

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// Host gives the narrowing engine access to named types and annotations.
type Host interface {
	ts.Resolver
	// AnnotationType converts a type annotation into a type.
	AnnotationType(t ast.Type) ts.Type
}

// Narrower derives branch contexts from conditions and match patterns.
// Conditions must already be checked: the engine reads the current type of a
// reference from its expression annotation.
type Narrower struct {
	host Host
}

func New(host Host) *Narrower {
	return &Narrower{host: host}
}

// Key returns the narrowing key of a reference expression, or "" when the
// expression is not a narrowable reference.
func Key(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.SelfExpression:
		return config.SelfName
	case *ast.ParenExpression:
		return Key(v.Inner)
	case *ast.MemberExpression:
		if base := Key(v.Object); base != "" {
			return base + "." + v.Name
		}
	}
	return ""
}

func (n *Narrower) current(e ast.Expression, ctx *Context) ts.Type {
	if k := Key(e); k != "" {
		if t, ok := ctx.Lookup(k); ok {
			return t
		}
	}
	if info := e.Annotation(); info != nil && info.Type != nil {
		return info.Type
	}
	return ts.Unknown
}

// NarrowFromCondition returns the contexts that hold when cond is truthy and
// when it is falsy.
func (n *Narrower) NarrowFromCondition(cond ast.Expression, ctx *Context) (*Context, *Context) {
	thenCtx, elseCtx := ctx.Child(), ctx.Child()
	switch c := cond.(type) {
	case *ast.ParenExpression:
		return n.NarrowFromCondition(c.Inner, ctx)

	case *ast.BooleanLiteral:
		if c.Value {
			elseCtx.MarkUnreachable()
		} else {
			thenCtx.MarkUnreachable()
		}
		return thenCtx, elseCtx

	case *ast.NilLiteral:
		thenCtx.MarkUnreachable()
		return thenCtx, elseCtx

	case *ast.UnaryExpression:
		if c.Operator == ast.OpNot {
			t, e := n.NarrowFromCondition(c.Operand, ctx)
			return e, t
		}

	case *ast.BinaryExpression:
		switch c.Operator {
		case ast.OpAnd:
			leftThen, leftElse := n.NarrowFromCondition(c.Left, ctx)
			rightThen, rightElse := n.NarrowFromCondition(c.Right, leftThen)
			return rightThen, Merge(leftElse, rightElse)
		case ast.OpOr:
			leftThen, leftElse := n.NarrowFromCondition(c.Left, ctx)
			rightThen, rightElse := n.NarrowFromCondition(c.Right, leftElse)
			return Merge(leftThen, rightThen), rightElse
		case ast.OpEq, ast.OpNe:
			n.narrowEquality(c, ctx, thenCtx, elseCtx)
			if c.Operator == ast.OpNe {
				return elseCtx, thenCtx
			}
			return thenCtx, elseCtx
		case ast.OpInstanceOf:
			n.narrowInstanceOf(c, ctx, thenCtx, elseCtx)
			return thenCtx, elseCtx
		}

	case *ast.CallExpression:
		n.narrowPredicateCall(c, ctx, thenCtx, elseCtx)
		return thenCtx, elseCtx
	}

	if k := Key(cond); k != "" {
		t := n.current(cond, ctx)
		thenCtx.Refine(k, Truthy(n.Spread(t)))
		elseCtx.Refine(k, Falsy(n.Spread(t)))
	}
	return thenCtx, elseCtx
}

func (n *Narrower) narrowEquality(c *ast.BinaryExpression, ctx, thenCtx, elseCtx *Context) {
	ref, other := c.Left, c.Right
	if _, ok := literalOf(ref); ok {
		ref, other = other, ref
	}

	// type(x) == "string"
	if call, ok := ref.(*ast.CallExpression); ok {
		if name, ok := other.(*ast.StringLiteral); ok && isTypeCall(call) {
			arg := call.Args[0]
			if k := Key(arg); k != "" {
				t := n.current(arg, ctx)
				thenCtx.Refine(k, n.OfRuntimeType(t, name.Value))
				elseCtx.Refine(k, n.NotOfRuntimeType(t, name.Value))
			}
		}
		return
	}

	lit, ok := literalOf(other)
	if !ok {
		return
	}
	k := Key(ref)
	if k == "" {
		return
	}
	// x.kind == "circle" also narrows x to the union members whose kind admits it.
	if m, ok := unparen(ref).(*ast.MemberExpression); ok && !m.Optional {
		if base := Key(m.Object); base != "" {
			bt := n.current(m.Object, ctx)
			thenCtx.Refine(base, n.Discriminate(bt, m.Name, lit, true))
			elseCtx.Refine(base, n.Discriminate(bt, m.Name, lit, false))
		}
	}
	t := n.current(ref, ctx)
	thenCtx.Refine(k, n.NarrowTo(t, lit))
	elseCtx.Refine(k, Without(n.Spread(t), lit))
}

func (n *Narrower) narrowInstanceOf(c *ast.BinaryExpression, ctx, thenCtx, elseCtx *Context) {
	k := Key(c.Left)
	id, ok := unparen(c.Right).(*ast.Identifier)
	if k == "" || !ok || !n.host.IsClass(id.Name) {
		return
	}
	t := n.current(c.Left, ctx)
	class := ts.Ref{Name: id.Name}
	thenCtx.Refine(k, n.NarrowTo(t, class))
	elseCtx.Refine(k, ts.Filter(n.Spread(t), func(m ts.Type) bool {
		r, ok := m.(ts.Ref)
		return !ok || !n.host.IsClass(r.Name) || !n.host.IsSubclass(r.Name, id.Name)
	}))
}

func (n *Narrower) narrowPredicateCall(c *ast.CallExpression, ctx, thenCtx, elseCtx *Context) {
	f, ok := n.calleeType(c).(ts.Func)
	if !ok {
		return
	}
	pred, ok := f.Return.(ts.Predicate)
	if !ok {
		return
	}
	for i, p := range f.Params {
		if p.Name != pred.Param || i >= len(c.Args) {
			continue
		}
		arg := c.Args[i]
		k := Key(arg)
		if k == "" {
			return
		}
		t := n.current(arg, ctx)
		thenCtx.Refine(k, n.NarrowTo(t, pred.Type))
		elseCtx.Refine(k, n.Remove(t, pred.Type))
		return
	}
}

func (n *Narrower) calleeType(c *ast.CallExpression) ts.Type {
	info := c.Callee.Annotation()
	if info == nil || info.Type == nil {
		return nil
	}
	t := info.Type
	if r, ok := t.(ts.Ref); ok {
		if exp, ok := n.host.Expand(r); ok {
			t = exp
		}
	}
	return t
}

func isTypeCall(c *ast.CallExpression) bool {
	id, ok := c.Callee.(*ast.Identifier)
	return ok && id.Name == config.TypeFuncName && len(c.Args) == 1
}

func unparen(e ast.Expression) ast.Expression {
	for {
		p, ok := e.(*ast.ParenExpression)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// literalOf returns the singleton type of a literal expression.
func literalOf(e ast.Expression) (ts.Type, bool) {
	switch v := unparen(e).(type) {
	case *ast.NilLiteral:
		return ts.Nil, true
	case *ast.BooleanLiteral:
		return ts.BoolLit(v.Value), true
	case *ast.NumberLiteral:
		return ts.NumLit(v.Value), true
	case *ast.StringLiteral:
		return ts.StrLit(v.Value), true
	case *ast.UnaryExpression:
		if num, ok := v.Operand.(*ast.NumberLiteral); ok && v.Operator == ast.OpNeg {
			return ts.NumLit(-num.Value), true
		}
	}
	return nil, false
}
