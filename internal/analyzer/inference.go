package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// inferExpr computes the type of e, checks it along the way and records the
// result in the expression's annotation. expected is the contextual type,
// or nil.
func (w *walker) inferExpr(e ast.Expression, expected ts.Type) ts.Type {
	if e == nil {
		return ts.Unknown
	}
	t := w.infer(e, expected)
	if t == nil {
		t = ts.Unknown
	}
	e.Annotation().Type = t
	return t
}

func (w *walker) infer(e ast.Expression, expected ts.Type) ts.Type {
	switch v := e.(type) {
	case *ast.Identifier:
		return w.inferIdentifier(v)
	case *ast.NilLiteral:
		return ts.Nil
	case *ast.BooleanLiteral:
		return ts.BoolLit(v.Value)
	case *ast.NumberLiteral:
		return ts.NumLit(v.Value)
	case *ast.StringLiteral:
		return ts.StrLit(v.Value)
	case *ast.TemplateString:
		for _, part := range v.Parts {
			w.inferExpr(part, nil)
		}
		return ts.String
	case *ast.VarargExpression:
		if w.fn == nil || w.fn.vararg == nil {
			w.addError(diagnostics.ErrUndefinedSymbol, v.Span, "'...' used outside a variadic function")
			return ts.Unknown
		}
		return w.fn.vararg
	case *ast.BinaryExpression:
		return w.inferBinary(v, expected)
	case *ast.UnaryExpression:
		return w.inferUnary(v)
	case *ast.CallExpression:
		return w.inferCall(v, expected)
	case *ast.MethodCallExpression:
		return w.inferMethodCall(v, expected)
	case *ast.MemberExpression:
		return w.inferMember(v)
	case *ast.IndexExpression:
		return w.inferIndex(v, false)
	case *ast.ObjectExpression:
		return w.inferObject(v, expected)
	case *ast.ArrayExpression:
		return w.inferArray(v, expected)
	case *ast.SpreadExpression:
		return w.spreadElement(w.inferExpr(v.Value, nil), v.Span)
	case *ast.FunctionExpression:
		return w.inferFunction(v, expected)
	case *ast.ConditionalExpression:
		return w.inferConditional(v, expected)
	case *ast.TryExpression:
		return w.inferTry(v, expected)
	case *ast.ErrorChainExpression:
		return w.inferErrorChain(v, expected)
	case *ast.MatchExpression:
		return w.inferMatch(v, expected)
	case *ast.ParenExpression:
		return w.inferExpr(v.Inner, expected)
	case *ast.SelfExpression:
		return w.inferSelf(v)
	case *ast.SuperExpression:
		return w.inferSuper(v)
	case *ast.TypeAssertion:
		return w.inferAssertion(v)
	case *ast.NewExpression:
		return w.inferNew(v, expected)
	case *ast.BadExpression:
		return ts.Unknown
	}
	return ts.Unknown
}

// refined returns the narrowed type of a reference on the current path.
func (w *walker) refined(e ast.Expression, declared ts.Type) ts.Type {
	if k := narrowing.Key(e); k != "" {
		if t, ok := w.narrow.Lookup(k); ok {
			return t
		}
	}
	return declared
}

func (w *walker) inferIdentifier(v *ast.Identifier) ts.Type {
	sym, err := w.symbolTable.Lookup(v.Name)
	if err != nil {
		w.undefinedName(v.Name, v.Span)
		return ts.Unknown
	}
	if sym.Kind == symbols.ClassSymbol {
		if _, ok := sym.Type.(ts.ClassRef); ok {
			return sym.Type
		}
	}
	return w.refined(v, sym.Type)
}

func (w *walker) inferSelf(v *ast.SelfExpression) ts.Type {
	sym, ok := w.symbolTable.Find(config.SelfName)
	if !ok {
		w.addError(diagnostics.ErrUndefinedSymbol, v.Span, "'self' used outside a method")
		return ts.Unknown
	}
	if w.class != nil {
		v.Annotation().Receiver = &ast.ReceiverClass{Name: w.class.name, Static: w.class.static}
	}
	return w.refined(v, sym.Type)
}

func (w *walker) inferSuper(v *ast.SuperExpression) ts.Type {
	parent, ok := w.parentClass()
	if !ok {
		w.addError(diagnostics.ErrUndefinedSymbol, v.Span, "'super' used outside a subclass")
		return ts.Unknown
	}
	static := w.class.static
	v.Annotation().Receiver = &ast.ReceiverClass{Name: parent.Name, Static: static}
	if static {
		return ts.ClassRef{Name: parent.Name}
	}
	return *parent
}

// parentClass is the base class of the class being checked.
func (w *walker) parentClass() (*ts.Ref, bool) {
	if w.class == nil {
		return nil, false
	}
	c, ok := w.env.Class(w.class.name)
	if !ok || c.Parent == nil {
		return nil, false
	}
	return c.Parent, true
}

func (w *walker) inferAssertion(v *ast.TypeAssertion) ts.Type {
	from := w.inferExpr(v.Expression, nil)
	to := w.buildType(v.Type)
	if !w.assignable(from, to) && !w.assignable(to, from) {
		w.addError(diagnostics.ErrTypeMismatch, v.Span, "conversion of type", quote(from), "to type", quote(to),
			"may be a mistake: neither type sufficiently overlaps with the other")
	}
	return to
}

func (w *walker) inferConditional(v *ast.ConditionalExpression, expected ts.Type) ts.Type {
	w.inferExpr(v.Condition, nil)
	thenCtx, elseCtx := w.narrower.NarrowFromCondition(v.Condition, w.narrow)
	saved := w.narrow
	w.narrow = thenCtx
	a := w.inferExpr(v.Then, expected)
	w.narrow = elseCtx
	b := w.inferExpr(v.Else, expected)
	w.narrow = saved
	return ts.NewUnion(a, b)
}

// spreadElement is the element type contributed by `...value`.
func (w *walker) spreadElement(t ts.Type, span token.Span) ts.Type {
	switch s := w.structural(t).(type) {
	case ts.Array:
		return s.Elem
	case ts.Tuple:
		return ts.NewUnion(s.Elems...)
	}
	if !ts.IsUnknown(t) {
		w.addError(diagnostics.ErrTypeMismatch, span, "type", quote(t), "cannot be spread")
	}
	return ts.Unknown
}
