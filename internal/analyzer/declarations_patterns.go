package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// bindPattern declares the names a pattern binds when it destructures a
// value of type t.
func (w *walker) bindPattern(p ast.Pattern, t ts.Type, mutable bool) {
	switch v := p.(type) {
	case *ast.IdentifierPattern:
		w.bindName(v.Name, t, v.Span, mutable)

	case *ast.TypePattern:
		if v.Name == "" {
			return
		}
		target := w.buildType(v.Type)
		if !ts.IsUnknown(target) && !ts.IsNever(t) && !w.assignable(t, target) && !w.assignable(target, t) {
			w.addError(diagnostics.ErrTypeMismatch, v.Span, "pattern type", quote(target), "never matches", quote(t))
		}
		if ts.IsUnknown(t) || !w.assignable(t, target) {
			t = target
		}
		w.bindName(v.Name, t, v.Span, mutable)

	case *ast.ObjectPattern:
		w.bindObjectPattern(v, t, mutable)

	case *ast.ArrayPattern:
		w.bindArrayPattern(v, t, mutable)
	}
}

// bindName declares one binding. A fresh binding hides any refinement of an
// outer variable with the same name.
func (w *walker) bindName(name string, t ts.Type, span token.Span, mutable bool) {
	w.narrow.Invalidate(name)
	w.declare(symbols.Symbol{Name: name, Kind: symbols.VariableSymbol, Type: t, Span: span, Mutable: mutable})
}

func (w *walker) bindObjectPattern(p *ast.ObjectPattern, t ts.Type, mutable bool) {
	s := w.structural(ts.RemoveNil(t))
	obj, isObject := s.(ts.Object)
	unknown := ts.IsUnknown(s)
	if !isObject && !unknown {
		if _, union := s.(ts.Union); !union {
			w.addError(diagnostics.ErrTypeMismatch, p.Span, "cannot destructure", quote(t), "as an object")
		}
	}
	used := map[string]bool{}
	for _, f := range p.Fields {
		used[f.Key] = true
		ft := ts.Type(ts.Unknown)
		switch {
		case isObject:
			m, ok := obj.Lookup(f.Key)
			switch {
			case ok:
				ft = m.Type
				if m.Optional {
					ft = ts.Nullable(ft)
				}
			case obj.Index != nil:
				ft = ts.Nullable(obj.Index.Value)
			default:
				w.addError(diagnostics.ErrUnknownMember, f.Span, "property", f.Key, "does not exist on type", quote(t))
			}
		case !unknown:
			ft = w.unionMember(s, f.Key)
		}
		if f.Value == nil {
			w.bindName(f.Key, ft, f.Span, mutable)
			continue
		}
		w.bindPattern(f.Value, ft, mutable)
	}
	if p.Rest == "" {
		return
	}
	rest := ts.Type(ts.Unknown)
	if isObject {
		remaining := ts.Object{Index: obj.Index}
		for _, m := range obj.Members {
			if !used[m.Name] {
				remaining = remaining.With(m)
			}
		}
		rest = remaining
	}
	w.bindName(p.Rest, rest, p.Span, mutable)
}

// unionMember is the union of one property across the object members of s.
func (w *walker) unionMember(s ts.Type, name string) ts.Type {
	var out []ts.Type
	for _, m := range ts.Members(s) {
		if obj, ok := w.structural(m).(ts.Object); ok {
			if member, ok := obj.Lookup(name); ok {
				out = append(out, member.Type)
				continue
			}
		}
		out = append(out, ts.Nil)
	}
	return ts.NewUnion(out...)
}

func (w *walker) bindArrayPattern(p *ast.ArrayPattern, t ts.Type, mutable bool) {
	s := w.structural(ts.RemoveNil(t))
	elemAt := func(int) ts.Type { return ts.Unknown }
	rest := ts.Type(ts.Array{Elem: ts.Unknown})
	switch v := s.(type) {
	case ts.Array:
		elemAt = func(int) ts.Type { return v.Elem }
		rest = v
	case ts.Tuple:
		if len(v.Elems) < len(p.Elements) {
			w.addError(diagnostics.ErrTypeMismatch, p.Span, "tuple", quote(t), "has", len(v.Elems), "elements, pattern needs", len(p.Elements))
		}
		elemAt = func(i int) ts.Type {
			if i < len(v.Elems) {
				return v.Elems[i]
			}
			return ts.Nil
		}
		if len(v.Elems) > len(p.Elements) {
			rest = ts.Tuple{Elems: v.Elems[len(p.Elements):]}
		} else {
			rest = ts.Tuple{}
		}
	default:
		if !ts.IsUnknown(s) {
			w.addError(diagnostics.ErrTypeMismatch, p.Span, "cannot destructure", quote(t), "as an array")
		}
	}
	for i, e := range p.Elements {
		w.bindPattern(e, elemAt(i), mutable)
	}
	if p.Rest != "" {
		w.bindName(p.Rest, rest, p.Span, mutable)
	}
}
