package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

func (w *walker) inferBinary(v *ast.BinaryExpression, expected ts.Type) ts.Type {
	switch v.Operator {
	case ast.OpAnd, ast.OpOr:
		return w.inferLogical(v, expected)
	case ast.OpPipe:
		return w.inferPipe(v, expected)
	}

	l := w.inferExpr(v.Left, nil)
	if v.Operator == ast.OpCoalesce {
		r := w.inferExpr(v.Right, expected)
		return ts.NewUnion(ts.RemoveNil(l), r)
	}
	r := w.inferExpr(v.Right, nil)

	switch v.Operator {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIntDiv, ast.OpMod, ast.OpPow:
		return w.arithmetic(v.Operator, l, r, v.Span)

	case ast.OpConcat:
		for i, t := range []ts.Type{l, r} {
			if !w.concatenable(t) {
				side := v.Left
				if i == 1 {
					side = v.Right
				}
				w.addError(diagnostics.ErrTypeMismatch, side.GetSpan(), "type", quote(t), "cannot be concatenated")
			}
		}
		return ts.String

	case ast.OpEq, ast.OpNe:
		if !w.comparable(l, r) {
			w.addError(diagnostics.ErrTypeMismatch, v.Span, "this comparison appears to be unintentional because the types",
				quote(l), "and", quote(r), "have no overlap")
		}
		return ts.Boolean

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		bothNumbers := w.assignable(l, ts.Number) && w.assignable(r, ts.Number)
		bothStrings := w.assignable(l, ts.String) && w.assignable(r, ts.String)
		if !bothNumbers && !bothStrings && !ts.IsUnknown(l) && !ts.IsUnknown(r) {
			w.addError(diagnostics.ErrTypeMismatch, v.Span, "operator", string(v.Operator), "cannot be applied to types",
				quote(l), "and", quote(r))
		}
		return ts.Boolean

	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		w.expectNumeric(l, v.Left.GetSpan(), v.Operator)
		w.expectNumeric(r, v.Right.GetSpan(), v.Operator)
		return ts.Integer

	case ast.OpInstanceOf:
		if _, ok := r.(ts.ClassRef); !ok && !ts.IsUnknown(r) {
			w.addError(diagnostics.ErrTypeMismatch, v.Right.GetSpan(), "the right-hand side of 'instanceof' must be a class, got", quote(r))
		}
		return ts.Boolean
	}
	return ts.Unknown
}

// inferLogical types `and`/`or`. The right operand is checked in the context
// where it is actually evaluated.
func (w *walker) inferLogical(v *ast.BinaryExpression, expected ts.Type) ts.Type {
	l := w.inferExpr(v.Left, expected)
	thenCtx, elseCtx := w.narrower.NarrowFromCondition(v.Left, w.narrow)
	saved := w.narrow
	defer func() { w.narrow = saved }()

	if v.Operator == ast.OpAnd {
		w.narrow = thenCtx
		r := w.inferExpr(v.Right, expected)
		return ts.NewUnion(narrowing.Falsy(l), r)
	}
	w.narrow = elseCtx
	r := w.inferExpr(v.Right, expected)
	return ts.NewUnion(narrowing.Truthy(l), r)
}

// inferPipe types `x |> f` as the call f(x).
func (w *walker) inferPipe(v *ast.BinaryExpression, expected ts.Type) ts.Type {
	arg := w.inferExpr(v.Left, nil)
	callee := w.inferExpr(v.Right, nil)
	if ts.IsUnknown(callee) {
		return ts.Unknown
	}
	f, ok := w.structural(callee).(ts.Func)
	if !ok {
		w.addError(diagnostics.ErrTypeMismatch, v.Right.GetSpan(), "type", quote(callee), "is not callable")
		return ts.Unknown
	}
	ret, _ := w.applyCall(f, callSite{span: v.Span, leading: []ts.Type{arg}, leadingSpan: v.Left.GetSpan()}, expected)
	return ret
}

func (w *walker) inferUnary(v *ast.UnaryExpression) ts.Type {
	t := w.inferExpr(v.Operand, nil)
	switch v.Operator {
	case ast.OpNot:
		return ts.Boolean
	case ast.OpNeg:
		if lit, ok := t.(ts.Literal); ok && lit.Kind == ts.LitNumber {
			return ts.NumLit(-lit.Number)
		}
		w.expectNumeric(t, v.Operand.GetSpan(), ast.BinaryOperator(v.Operator))
		if isInteger(t) {
			return ts.Integer
		}
		return ts.Number
	case ast.OpLen:
		s := w.structural(t)
		switch s.(type) {
		case ts.Array, ts.Tuple:
			return ts.Integer
		}
		if !ts.IsUnknown(t) && !w.assignable(t, ts.String) && !w.assignable(t, ts.Table) {
			w.addError(diagnostics.ErrTypeMismatch, v.Operand.GetSpan(), "cannot take the length of type", quote(t))
		}
		return ts.Integer
	case ast.OpBitNot:
		w.expectNumeric(t, v.Operand.GetSpan(), ast.BinaryOperator(v.Operator))
		return ts.Integer
	}
	return ts.Unknown
}

// arithmetic checks both operands of an arithmetic operator and returns the
// result type. Integer operands keep integer results except for / and ^.
func (w *walker) arithmetic(op ast.BinaryOperator, l, r ts.Type, span token.Span) ts.Type {
	if op == ast.OpConcat {
		if !w.concatenable(l) || !w.concatenable(r) {
			w.addError(diagnostics.ErrTypeMismatch, span, "operator '..' cannot be applied to types", quote(l), "and", quote(r))
		}
		return ts.String
	}
	okL := w.expectNumeric(l, span, op)
	okR := w.expectNumeric(r, span, op)
	if !okL || !okR {
		return ts.Number
	}
	switch op {
	case ast.OpDiv, ast.OpPow:
		return ts.Number
	}
	if isInteger(l) && isInteger(r) {
		return ts.Integer
	}
	return ts.Number
}

// expectNumeric reports a non-numeric operand. Unknown operands pass.
func (w *walker) expectNumeric(t ts.Type, span token.Span, op ast.BinaryOperator) bool {
	if ts.IsUnknown(t) || w.assignable(t, ts.Number) {
		return true
	}
	w.addError(diagnostics.ErrTypeMismatch, span, "operator", string(op), "cannot be applied to type", quote(t))
	return false
}

func (w *walker) concatenable(t ts.Type) bool {
	return ts.IsUnknown(t) || w.assignable(t, ts.NewUnion(ts.String, ts.Number))
}

// comparable reports whether two types share at least one value, so that
// comparing them with == can succeed.
func (w *walker) comparable(l, r ts.Type) bool {
	if ts.IsUnknown(l) || ts.IsUnknown(r) {
		return true
	}
	for _, a := range ts.Members(w.narrower.Spread(l)) {
		for _, b := range ts.Members(w.narrower.Spread(r)) {
			if w.assignable(a, b) || w.assignable(b, a) {
				return true
			}
		}
	}
	return false
}
