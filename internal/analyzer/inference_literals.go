package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// contextual widens the type of a constructor entry unless the expected
// type needs the literal, e.g. a discriminant field.
func (w *walker) contextual(t, expected ts.Type) ts.Type {
	if expected != nil && !w.assignable(ts.Widen(t), expected) {
		return t
	}
	return ts.Widen(t)
}

// expectedField is the contextual type of one property of an object
// constructor, collected across the object members of expected.
func (w *walker) expectedField(expected ts.Type, name string) ts.Type {
	if expected == nil {
		return nil
	}
	var out []ts.Type
	for _, m := range ts.Members(w.narrower.Spread(expected)) {
		obj, ok := w.structural(m).(ts.Object)
		if !ok {
			continue
		}
		if member, ok := obj.Lookup(name); ok {
			out = append(out, memberType(member))
		} else if obj.Index != nil {
			out = append(out, obj.Index.Value)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return ts.NewUnion(out...)
}

func (w *walker) inferObject(v *ast.ObjectExpression, expected ts.Type) ts.Type {
	obj := ts.Object{}
	seen := map[string]bool{}
	var keys, values []ts.Type

	named := func(name string, value ast.Expression, f *ast.ObjectField) {
		if seen[name] {
			w.addError(diagnostics.ErrDuplicateDeclaration, f.Span, "duplicate property", name, "in object literal")
		}
		seen[name] = true
		fe := w.expectedField(expected, name)
		t := w.contextual(w.inferExpr(value, fe), fe)
		obj = obj.With(ts.Member{Name: name, Type: t})
	}

	for _, f := range v.Fields {
		switch f.Kind {
		case ast.FieldNamed:
			named(f.Name, f.Value, f)

		case ast.FieldComputed:
			kt := w.inferExpr(f.Key, nil)
			if lit, ok := kt.(ts.Literal); ok && lit.Kind == ts.LitString {
				named(lit.Str, f.Value, f)
				continue
			}
			if ts.IsNil(kt) {
				w.addError(diagnostics.ErrTypeMismatch, f.Key.GetSpan(), "table index is nil")
			}
			keys = append(keys, ts.Widen(kt))
			values = append(values, ts.Widen(w.inferExpr(f.Value, nil)))

		case ast.FieldSpread:
			t := w.inferExpr(f.Value, nil)
			switch s := w.structural(ts.RemoveNil(t)).(type) {
			case ts.Object:
				for _, m := range s.Members {
					seen[m.Name] = true
					obj = obj.With(m)
				}
				if s.Index != nil {
					keys = append(keys, s.Index.Key)
					values = append(values, s.Index.Value)
				}
			default:
				if !ts.IsUnknown(t) {
					w.addError(diagnostics.ErrTypeMismatch, f.Span, "spread types may only be created from object types, got", quote(t))
				}
			}
		}
	}
	if len(keys) > 0 {
		obj.Index = &ts.IndexSignature{Key: ts.NewUnion(keys...), Value: ts.NewUnion(values...)}
	}
	return obj
}

// expectedSequence finds the array or tuple type among the members of the
// contextual type of an array constructor.
func (w *walker) expectedSequence(expected ts.Type) ts.Type {
	if expected == nil {
		return nil
	}
	for _, m := range ts.Members(w.narrower.Spread(expected)) {
		switch s := w.structural(m).(type) {
		case ts.Array, ts.Tuple:
			return s
		}
	}
	return nil
}

func (w *walker) inferArray(v *ast.ArrayExpression, expected ts.Type) ts.Type {
	switch s := w.expectedSequence(expected).(type) {
	case ts.Tuple:
		elems := make([]ts.Type, 0, len(v.Elements))
		for i, e := range v.Elements {
			var et ts.Type
			if i < len(s.Elems) {
				et = s.Elems[i]
			}
			if sp, ok := e.(*ast.SpreadExpression); ok {
				elem := w.inferExpr(sp, nil)
				return ts.Array{Elem: ts.NewUnion(append(elems, ts.Widen(elem))...)}
			}
			elems = append(elems, w.contextual(w.inferExpr(e, et), et))
		}
		return ts.Tuple{Elems: elems}

	case ts.Array:
		var elems []ts.Type
		for _, e := range v.Elements {
			elems = append(elems, w.contextual(w.inferExpr(e, s.Elem), s.Elem))
		}
		if len(elems) == 0 {
			return s
		}
		return ts.Array{Elem: ts.NewUnion(elems...)}
	}

	var elems []ts.Type
	for _, e := range v.Elements {
		elems = append(elems, ts.Widen(w.inferExpr(e, nil)))
	}
	if len(elems) == 0 {
		return ts.Array{Elem: ts.Unknown}
	}
	return ts.Array{Elem: ts.NewUnion(elems...)}
}

// inferMatch checks each arm with the subject narrowed by the arm's pattern
// and reports subject values no unguarded arm handles.
func (w *walker) inferMatch(v *ast.MatchExpression, expected ts.Type) ts.Type {
	subject := w.inferExpr(v.Subject, nil)
	remaining := subject
	if !ts.IsUnknown(subject) {
		remaining = w.narrower.Spread(subject)
	}
	key := narrowing.Key(v.Subject)

	var results []ts.Type
	for _, arm := range v.Arms {
		armType := w.narrower.NarrowPattern(arm.Pattern, remaining)
		saved := w.narrow
		w.narrow = saved.Child()
		w.symbolTable.EnterScope(symbols.ScopeBlock)
		if key != "" {
			w.narrow.Refine(key, armType)
		}
		w.inferPatternValues(arm.Pattern)
		w.bindPattern(arm.Pattern, armType, false)
		if arm.Guard != nil {
			w.inferExpr(arm.Guard, nil)
			thenCtx, _ := w.narrower.NarrowFromCondition(arm.Guard, w.narrow)
			w.narrow = thenCtx
		}
		results = append(results, w.inferExpr(arm.Body, expected))
		w.leaveScope()
		w.narrow = saved

		if arm.Guard == nil {
			remaining = w.narrower.ExcludePattern(arm.Pattern, remaining)
		}
	}

	if !ts.IsUnknown(subject) && !ts.IsNever(remaining) {
		msg := []interface{}{"match is not exhaustive; unhandled values of type", quote(remaining)}
		switch w.opts.ExhaustiveMatch {
		case config.MatchError:
			w.addError(diagnostics.ErrNonExhaustiveMatch, v.Span, msg...)
		case config.MatchWarning:
			w.addWarning(diagnostics.ErrNonExhaustiveMatch, v.Span, msg...)
		}
	}
	if len(results) == 0 {
		return ts.Never
	}
	return ts.NewUnion(results...)
}

// inferPatternValues annotates the literal expressions inside a pattern.
func (w *walker) inferPatternValues(p ast.Pattern) {
	switch v := p.(type) {
	case *ast.LiteralPattern:
		w.inferExpr(v.Value, nil)
	case *ast.ObjectPattern:
		for _, f := range v.Fields {
			if f.Value != nil {
				w.inferPatternValues(f.Value)
			}
		}
	case *ast.ArrayPattern:
		for _, e := range v.Elements {
			w.inferPatternValues(e)
		}
	}
}
