package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// resolverWrapper exposes the walker's type environment to the narrowing
// engine and to the compatibility check.
type resolverWrapper struct {
	w *walker
}

func (r resolverWrapper) Expand(t ts.Type) (ts.Type, bool)  { return r.w.env.Expand(t) }
func (r resolverWrapper) IsClass(name string) bool          { return r.w.env.IsClass(name) }
func (r resolverWrapper) Bound(name string) (ts.Type, bool) { return r.w.env.Bound(name) }

// IsSubclass consults the access-control graph, which holds imported
// classes and rejects cyclic links.
func (r resolverWrapper) IsSubclass(child, ancestor string) bool {
	return r.w.classes.IsSubclass(child, ancestor)
}

func (r resolverWrapper) AnnotationType(t ast.Type) ts.Type {
	if t == nil {
		return ts.Unknown
	}
	return r.w.buildType(t)
}
