package narrowing

import (
	"github.com/funvibe/tlcheck/internal/ast"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// NarrowPattern returns the type the scrutinee has inside an arm whose
// pattern is p. The result is never when no member of t can match.
func (n *Narrower) NarrowPattern(p ast.Pattern, t ts.Type) ts.Type {
	switch v := p.(type) {
	case nil, *ast.WildcardPattern, *ast.IdentifierPattern, *ast.BadPattern:
		return t
	case *ast.LiteralPattern:
		lit, ok := literalOf(v.Value)
		if !ok {
			return t
		}
		return n.NarrowTo(t, lit)
	case *ast.TypePattern:
		return n.NarrowTo(t, n.host.AnnotationType(v.Type))
	case *ast.ObjectPattern:
		if ts.IsUnknown(t) {
			return t
		}
		return ts.Filter(n.Spread(t), func(m ts.Type) bool {
			return n.objectMatches(v, m)
		})
	case *ast.ArrayPattern:
		if ts.IsUnknown(t) {
			return t
		}
		return ts.Filter(n.Spread(t), func(m ts.Type) bool {
			switch s := m.(type) {
			case ts.Array:
				return true
			case ts.Tuple:
				if v.Rest != "" {
					return len(s.Elems) >= len(v.Elements)
				}
				return len(s.Elems) == len(v.Elements)
			}
			return false
		})
	}
	return t
}

func (n *Narrower) objectMatches(p *ast.ObjectPattern, t ts.Type) bool {
	obj, ok := n.object(t)
	if !ok {
		return false
	}
	for _, f := range p.Fields {
		m, ok := obj.Lookup(f.Key)
		if !ok {
			return false
		}
		mt := m.Type
		if m.Optional {
			mt = ts.Nullable(mt)
		}
		if ts.IsNever(n.NarrowPattern(f.Value, mt)) {
			return false
		}
	}
	return true
}

// ExcludePattern returns what is left of t after an unguarded arm with
// pattern p has taken every value it matches. A member is removed only when
// the pattern covers it completely.
func (n *Narrower) ExcludePattern(p ast.Pattern, t ts.Type) ts.Type {
	switch v := p.(type) {
	case nil, *ast.WildcardPattern, *ast.IdentifierPattern, *ast.BadPattern:
		return ts.Never
	case *ast.LiteralPattern:
		lit, ok := literalOf(v.Value)
		if !ok {
			return t
		}
		return Without(n.Spread(t), lit)
	case *ast.TypePattern:
		target := n.host.AnnotationType(v.Type)
		if ts.IsUnknown(target) {
			return ts.Never
		}
		return n.Remove(t, target)
	case *ast.ObjectPattern:
		if ts.IsUnknown(t) {
			return t
		}
		return ts.Filter(n.Spread(t), func(m ts.Type) bool {
			return !n.objectCovers(v, m)
		})
	case *ast.ArrayPattern:
		if ts.IsUnknown(t) {
			return t
		}
		return ts.Filter(n.Spread(t), func(m ts.Type) bool {
			return !n.arrayCovers(v, m)
		})
	}
	return t
}

func (n *Narrower) objectCovers(p *ast.ObjectPattern, t ts.Type) bool {
	obj, ok := n.object(t)
	if !ok {
		return false
	}
	for _, f := range p.Fields {
		m, ok := obj.Lookup(f.Key)
		if !ok {
			return false
		}
		mt := m.Type
		if m.Optional {
			mt = ts.Nullable(mt)
		}
		if !ts.IsNever(n.ExcludePattern(f.Value, mt)) {
			return false
		}
	}
	return true
}

func (n *Narrower) arrayCovers(p *ast.ArrayPattern, t ts.Type) bool {
	switch s := t.(type) {
	case ts.Array:
		return len(p.Elements) == 0 && p.Rest != ""
	case ts.Tuple:
		if len(s.Elems) < len(p.Elements) || (p.Rest == "" && len(s.Elems) != len(p.Elements)) {
			return false
		}
		for i, e := range p.Elements {
			if !ts.IsNever(n.ExcludePattern(e, s.Elems[i])) {
				return false
			}
		}
		return true
	}
	return false
}

// Remaining folds the unguarded arms of a match over the scrutinee type and
// returns the values no arm handles. The match is exhaustive when the result
// is never.
func (n *Narrower) Remaining(subject ts.Type, arms []*ast.MatchArm) ts.Type {
	rest := subject
	for _, arm := range arms {
		if arm.Guard != nil {
			continue
		}
		rest = n.ExcludePattern(arm.Pattern, rest)
	}
	return rest
}
