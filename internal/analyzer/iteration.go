package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/symbols"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// iterationTypes returns the types of the n loop variables of a generic
// for loop over iter, whose type is t.
func (w *walker) iterationTypes(iter ast.Expression, t ts.Type, n int) []ts.Type {
	var vars []ts.Type
	if name, arg, ok := w.builtinIterator(iter); ok {
		vars = w.collectionIteration(name, arg)
	} else {
		vars = w.functionIteration(iter, t)
	}
	out := make([]ts.Type, n)
	for i := range out {
		switch {
		case i < len(vars):
			out[i] = vars[i]
		case ts.IsUnknown(t):
			out[i] = ts.Unknown
		default:
			out[i] = ts.Nil
		}
	}
	return out
}

// builtinIterator recognizes pairs(x) and ipairs(x) calls that resolve to
// the prelude functions.
func (w *walker) builtinIterator(iter ast.Expression) (string, ts.Type, bool) {
	call, ok := iter.(*ast.CallExpression)
	if !ok || len(call.Args) != 1 {
		return "", nil, false
	}
	id, ok := call.Callee.(*ast.Identifier)
	if !ok || (id.Name != config.PairsFuncName && id.Name != config.IPairsFuncName) {
		return "", nil, false
	}
	sym, err := w.symbolTable.Lookup(id.Name)
	if err != nil || sym.Scope != symbols.ScopePrelude {
		return "", nil, false
	}
	arg := call.Args[0].Annotation().Type
	if arg == nil {
		arg = ts.Unknown
	}
	return id.Name, arg, true
}

func (w *walker) collectionIteration(name string, t ts.Type) []ts.Type {
	switch s := w.structural(ts.RemoveNil(t)).(type) {
	case ts.Array:
		return []ts.Type{ts.Integer, s.Elem}
	case ts.Tuple:
		return []ts.Type{ts.Integer, ts.NewUnion(s.Elems...)}
	case ts.Object:
		if name == config.IPairsFuncName {
			if s.Index != nil && w.assignable(s.Index.Key, ts.Number) {
				return []ts.Type{ts.Integer, s.Index.Value}
			}
			return []ts.Type{ts.Integer, ts.Unknown}
		}
		var keys, values []ts.Type
		if len(s.Members) > 0 {
			keys = append(keys, ts.String)
		}
		for _, m := range s.Members {
			values = append(values, m.Type)
		}
		if s.Index != nil {
			keys = append(keys, s.Index.Key)
			values = append(values, s.Index.Value)
		}
		if len(keys) == 0 {
			return []ts.Type{ts.Unknown, ts.Unknown}
		}
		return []ts.Type{ts.NewUnion(keys...), ts.NewUnion(values...)}
	}
	if name == config.IPairsFuncName {
		return []ts.Type{ts.Integer, ts.Unknown}
	}
	return []ts.Type{ts.Unknown, ts.Unknown}
}

// functionIteration types a loop driven by an iterator function: the loop
// variables are its results, and the first is never nil inside the body.
func (w *walker) functionIteration(iter ast.Expression, t ts.Type) []ts.Type {
	if ts.IsUnknown(t) {
		return nil
	}
	f, ok := w.structural(t).(ts.Func)
	if !ok {
		w.addError(diagnostics.ErrTypeMismatch, iter.GetSpan(), "type", quote(t), "is not an iterator function")
		return nil
	}
	var results []ts.Type
	switch r := f.Return.(type) {
	case nil:
		return nil
	case ts.Tuple:
		results = append(results, r.Elems...)
	default:
		results = []ts.Type{r}
	}
	if len(results) > 0 {
		results[0] = ts.RemoveNil(results[0])
	}
	return results
}
