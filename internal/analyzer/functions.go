package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// checkFunctionBody checks a function body against its signature. With infer
// set, the return type is computed from the return statements and the
// completed signature is returned.
func (w *walker) checkFunctionBody(fe *ast.FunctionExpression, sig ts.Func, self ts.Type, ctor, infer bool) ts.Func {
	if len(sig.TypeParams) > 0 {
		w.env.PushTypeParams(sig.TypeParams)
		defer w.env.PopTypeParams()
	}
	savedNarrow, savedFn, savedLoop, savedCatch, savedExits := w.narrow, w.fn, w.inLoop, w.inCatch, w.loopExits
	defer func() {
		w.narrow, w.fn, w.inLoop, w.inCatch, w.loopExits = savedNarrow, savedFn, savedLoop, savedCatch, savedExits
	}()

	frame := &funcFrame{ctor: ctor}
	if !infer {
		frame.declared = sig.Return
		if frame.declared == nil {
			frame.declared = ts.Unknown
		}
	}
	w.fn = frame
	w.narrow = narrowing.NewContext()
	w.inLoop, w.inCatch, w.loopExits = false, false, nil

	w.symbolTable.EnterScope(symbols.ScopeFunction)
	defer w.symbolTable.ExitScope()

	if self != nil {
		w.declare(symbols.Symbol{Name: config.SelfName, Kind: symbols.ParameterSymbol, Type: self, Span: fe.Span})
	}
	for i, p := range fe.Params {
		var pt ts.Type = ts.Unknown
		if i < len(sig.Params) {
			pt = sig.Params[i].Type
		}
		if p.Type == nil && ts.IsUnknown(pt) && w.opts.NoImplicitUnknown {
			w.addWarning(diagnostics.ErrImplicitUnknown, p.Span, "parameter", p.Name, "implicitly has type unknown")
		}
		if p.Default != nil {
			dt := w.inferExpr(p.Default, pt)
			w.expectAssignable(dt, pt, p.Default.GetSpan())
		}
		if p.Rest {
			if p.Name == "" || p.Name == "..." {
				frame.vararg = pt
				continue
			}
			pt = ts.Array{Elem: pt}
		} else if p.Optional && p.Default == nil {
			pt = ts.Nullable(pt)
		}
		w.declare(symbols.Symbol{Name: p.Name, Kind: symbols.ParameterSymbol, Type: pt, Span: p.Span, Mutable: true})
	}

	if fe.Result != nil {
		t := w.inferExpr(fe.Result, frame.declared)
		if frame.declared != nil {
			w.expectAssignable(t, frame.declared, fe.Result.GetSpan())
		} else {
			frame.returns = append(frame.returns, t)
		}
		w.narrow.MarkUnreachable()
	} else if fe.Body != nil {
		for _, stmt := range fe.Body.Statements {
			w.checkStatement(stmt)
		}
	}

	reachesEnd := !w.narrow.Unreachable()
	if frame.declared != nil {
		if reachesEnd && !ctor && !isVoid(frame.declared) && !w.assignable(ts.Nil, frame.declared) {
			w.addError(diagnostics.ErrTypeMismatch, fe.Span, "function lacks an ending return statement and its return type",
				quote(frame.declared), "does not include nil")
		}
		return sig
	}

	var ret ts.Type
	switch {
	case len(frame.returns) == 0:
		ret = ts.Void
	case reachesEnd:
		ret = ts.NewUnion(append(frame.returns, ts.Nil)...)
	default:
		ret = ts.NewUnion(frame.returns...)
	}
	sig.Return = ts.Widen(ret)
	return sig
}

// inferFunction types a function expression. expected supplies parameter
// types for unannotated parameters.
func (w *walker) inferFunction(fe *ast.FunctionExpression, expected ts.Type) ts.Type {
	var ctx *ts.Func
	if f, ok := w.structural(expected).(ts.Func); ok && len(f.TypeParams) == 0 {
		ctx = &f
	}
	sig := w.buildSignature(fe.TypeParams, fe.Params, fe.ReturnType, ctx)
	infer := fe.ReturnType == nil
	if infer && ctx != nil && ctx.Return != nil && !ts.IsUnknown(ctx.Return) && len(ctx.Return.FreeTypeVariables()) == 0 {
		sig.Return = ctx.Return
		infer = false
	}
	return w.checkFunctionBody(fe, sig, nil, false, infer)
}
