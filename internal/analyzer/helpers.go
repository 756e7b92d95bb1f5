package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

func (w *walker) compat() *ts.Compat {
	return &ts.Compat{
		Resolver:  resolverWrapper{w},
		Bivariant: w.opts.FunctionBivariance,
		LooseNil:  !w.opts.StrictNullChecks,
	}
}

// assignable is the compatibility check under the module's options.
func (w *walker) assignable(src, dst ts.Type) bool {
	return w.compat().IsAssignable(src, dst)
}

// expectAssignable reports a mismatch at span when src cannot be used as dst.
func (w *walker) expectAssignable(src, dst ts.Type, span token.Span) bool {
	if w.assignable(src, dst) {
		return true
	}
	w.addError(diagnostics.ErrTypeMismatch, span, "type", quote(src), "is not assignable to type", quote(dst))
	return false
}

func quote(t ts.Type) string {
	if t == nil {
		return "'unknown'"
	}
	return "'" + t.String() + "'"
}

// structural expands named types at the head of t. Unconstrained type
// parameters stay as they are.
func (w *walker) structural(t ts.Type) ts.Type {
	if tv, ok := t.(ts.TVar); ok {
		if b, ok := w.env.Bound(tv.Name); ok {
			return w.structural(b)
		}
		return t
	}
	s, err := w.env.Structural(t)
	if err != nil {
		return ts.Unknown
	}
	return s
}

// declare adds a symbol to the current scope, reporting redeclarations.
func (w *walker) declare(sym symbols.Symbol) {
	if err := w.symbolTable.Declare(sym); err != nil {
		w.addError(diagnostics.ErrDuplicateDeclaration, sym.Span, err.Error())
	}
}

// declareType records a module-level type name for the symbol index.
func (w *walker) declareType(name string, kind symbols.SymbolKind, t ts.Type, span token.Span) {
	if !w.symbolTable.IsModuleScope() {
		return
	}
	w.typeSymbols = append(w.typeSymbols, symbols.Symbol{
		Name:   name,
		Kind:   kind,
		Type:   t,
		Span:   span,
		Origin: w.moduleID,
		Scope:  symbols.ScopeModule,
	})
}

// isInteger reports whether every value of t is an integer.
func isInteger(t ts.Type) bool {
	members := ts.Members(t)
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		switch v := m.(type) {
		case ts.Primitive:
			if v.Kind != ts.KindInteger {
				return false
			}
		case ts.Literal:
			if !v.IsInteger() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// isVoid reports whether a declared return type admits falling off the end.
func isVoid(t ts.Type) bool {
	p, ok := t.(ts.Primitive)
	return ok && (p.Kind == ts.KindVoid || p.Kind == ts.KindNil || p.Kind == ts.KindUnknown)
}

// unwrapExport returns the declaration an export statement wraps.
func unwrapExport(stmt ast.Statement) ast.Statement {
	if ex, ok := stmt.(*ast.ExportStatement); ok && ex.Decl != nil {
		return ex.Decl
	}
	return stmt
}

// assignedKeys collects the narrowing keys assigned anywhere in stmts,
// including nested blocks and loops but not nested functions.
func assignedKeys(stmts []ast.Statement) []string {
	var keys []string
	var walk func(stmts []ast.Statement)
	block := func(b *ast.Block) {
		if b != nil {
			walk(b.Statements)
		}
	}
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.AssignmentStatement:
				if k := narrowing.Key(s.Target); k != "" {
					keys = append(keys, k)
				}
			case *ast.Block:
				walk(s.Statements)
			case *ast.IfStatement:
				block(s.Then)
				for _, ei := range s.ElseIfs {
					block(ei.Body)
				}
				block(s.Else)
			case *ast.WhileStatement:
				block(s.Body)
			case *ast.RepeatStatement:
				block(s.Body)
			case *ast.NumericForStatement:
				block(s.Body)
			case *ast.GenericForStatement:
				block(s.Body)
			case *ast.TryStatement:
				block(s.Body)
				for _, c := range s.Catches {
					block(c.Body)
				}
				block(s.Finally)
			}
		}
	}
	walk(stmts)
	return keys
}

// tupleOf packs several values into one type. A single value is itself.
func tupleOf(types []ts.Type) ts.Type {
	switch len(types) {
	case 0:
		return ts.Void
	case 1:
		return types[0]
	}
	return ts.Tuple{Elems: types}
}
