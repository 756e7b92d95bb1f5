package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// checkTry checks a try statement. A catch clause may start after any
// statement of the body, so it sees the entry refinements minus everything
// the body assigns.
func (w *walker) checkTry(s *ast.TryStatement) {
	entry := w.narrow
	w.narrow = entry.Child()
	w.checkBlock(s.Body, symbols.ScopeBlock)
	exits := []*narrowing.Context{w.narrow}

	inCatch := w.inCatch
	for _, c := range s.Catches {
		start := entry.Child()
		if s.Body != nil {
			for _, k := range assignedKeys(s.Body.Statements) {
				start.Invalidate(k)
			}
		}
		w.narrow = start
		w.inCatch = true
		w.checkCatch(c)
		exits = append(exits, w.narrow)
	}
	w.inCatch = inCatch

	w.narrow = mergeAll(exits[0], exits[1:])
	if s.Finally != nil {
		w.checkBlock(s.Finally, symbols.ScopeBlock)
	}
}

func (w *walker) checkCatch(c *ast.CatchClause) {
	w.symbolTable.EnterScope(symbols.ScopeBlock)
	if c.Var != "" {
		w.declare(symbols.Symbol{Name: c.Var, Kind: symbols.VariableSymbol, Type: w.catchType(c.Types), Span: c.Span, Mutable: true})
	}
	if c.Body != nil {
		for _, stmt := range c.Body.Statements {
			w.checkStatement(stmt)
		}
	}
	w.leaveScope()
}

func (w *walker) catchType(types []ast.Type) ts.Type {
	if len(types) == 0 {
		return ts.Unknown
	}
	out := make([]ts.Type, len(types))
	for i, t := range types {
		out[i] = w.buildType(t)
	}
	return ts.NewUnion(out...)
}

func (w *walker) checkThrow(s *ast.ThrowStatement) {
	w.inferExpr(s.Value, nil)
	w.narrow = w.narrow.Child()
	w.narrow.MarkUnreachable()
}

func (w *walker) checkRethrow(s *ast.RethrowStatement) {
	if !w.inCatch {
		w.addError(diagnostics.ErrInvalidReturn, s.Span, "rethrow outside a catch clause")
	}
	w.narrow = w.narrow.Child()
	w.narrow.MarkUnreachable()
}

// inferTry types `try value catch e => fallback` as either result.
func (w *walker) inferTry(e *ast.TryExpression, expected ts.Type) ts.Type {
	value := w.inferExpr(e.Value, expected)
	w.symbolTable.EnterScope(symbols.ScopeBlock)
	if e.CatchVar != "" {
		w.declare(symbols.Symbol{Name: e.CatchVar, Kind: symbols.VariableSymbol, Type: ts.Unknown, Span: e.Span, Mutable: true})
	}
	fallback := w.inferExpr(e.Catch, expected)
	w.leaveScope()
	return ts.NewUnion(value, fallback)
}

func (w *walker) inferErrorChain(e *ast.ErrorChainExpression, expected ts.Type) ts.Type {
	left := w.inferExpr(e.Left, expected)
	right := w.inferExpr(e.Right, expected)
	return ts.NewUnion(left, right)
}

// checkDecorators validates decorator expressions on a class or member.
func (w *walker) checkDecorators(ds []ast.Expression) {
	if len(ds) == 0 {
		return
	}
	if !w.opts.EnableDecorators {
		w.addError(diagnostics.ErrFeatureDisabled, ds[0].GetSpan(), "decorators are disabled (enableDecorators is off)")
		return
	}
	for _, d := range ds {
		w.checkDecorator(d)
	}
}

func (w *walker) checkDecorator(e ast.Expression) {
	switch d := e.(type) {
	case *ast.Identifier:
		// Unbound names are builtin decorators such as @sealed.
		d.Annotation().Type = ts.Unknown
		if sym, err := w.symbolTable.Lookup(d.Name); err == nil {
			d.Annotation().Type = sym.Type
		}
	case *ast.CallExpression:
		w.checkDecorator(d.Callee)
		for _, arg := range d.Args {
			w.inferExpr(arg, nil)
		}
		d.Annotation().Type = ts.Unknown
	case *ast.MemberExpression:
		w.checkDecorator(d.Object)
		d.Annotation().Type = ts.Unknown
	default:
		w.inferExpr(e, nil)
	}
}

// namespaceType is the table a declared namespace stands for: its exported
// functions and constants, all readonly.
func (w *walker) namespaceType(s *ast.DeclareNamespace) ts.Object {
	var ns ts.Object
	for _, m := range s.Members {
		ex, ok := m.(*ast.ExportStatement)
		if !ok {
			continue
		}
		switch d := ex.Decl.(type) {
		case *ast.DeclareFunction:
			sig := w.buildSignature(d.TypeParams, d.Params, d.ReturnType, nil)
			if sig.Return == nil {
				sig.Return = ts.Void
			}
			ns = ns.With(ts.Member{Name: d.Name, Type: sig, Readonly: true})
		case *ast.DeclareConst:
			ns = ns.With(ts.Member{Name: d.Name, Type: w.buildType(d.Type), Readonly: true})
		}
	}
	return ns
}
