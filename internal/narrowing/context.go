// Package narrowing tracks per-reference type refinements along control-flow
// paths. A reference is a variable name or a dotted member path rooted at a
// variable or self ("p", "self.name", "shape.kind").
package narrowing

import (
	"sort"
	"strings"

	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// Context is a snapshot of refinements along one control-flow path.
// A nil entry in refined hides a refinement inherited from the parent.
type Context struct {
	parent      *Context
	refined     map[string]ts.Type
	unreachable bool
}

// NewContext returns an empty root context. Function bodies start from one.
func NewContext() *Context {
	return &Context{refined: make(map[string]ts.Type)}
}

// Child returns a context that inherits every refinement of c.
func (c *Context) Child() *Context {
	return &Context{parent: c, refined: make(map[string]ts.Type), unreachable: c.unreachable}
}

// Lookup returns the refinement of key visible from c.
func (c *Context) Lookup(key string) (ts.Type, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if t, ok := cur.refined[key]; ok {
			return t, t != nil
		}
	}
	return nil, false
}

// Refine records that key has type t on this path. Refinements of member
// paths below key are dropped since the value they describe was replaced.
func (c *Context) Refine(key string, t ts.Type) {
	c.Invalidate(key)
	c.refined[key] = t
}

// Invalidate drops the refinement of key and of every member path below it.
func (c *Context) Invalidate(key string) {
	prefix := key + "."
	for _, k := range c.Keys() {
		if k == key || strings.HasPrefix(k, prefix) {
			c.refined[k] = nil
		}
	}
}

// Keys lists every refined reference visible from c, sorted.
func (c *Context) Keys() []string {
	flat := c.flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarkUnreachable records that control never leaves this path normally
// (it ended in return, break or a call returning never).
func (c *Context) MarkUnreachable() { c.unreachable = true }

// Unreachable reports whether the path was marked unreachable.
func (c *Context) Unreachable() bool { return c.unreachable }

func (c *Context) flatten() map[string]ts.Type {
	var chain []*Context
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]ts.Type)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, t := range chain[i].refined {
			if t == nil {
				delete(out, k)
			} else {
				out[k] = t
			}
		}
	}
	return out
}

// Equal reports whether two contexts carry the same visible refinements.
func (c *Context) Equal(other *Context) bool {
	if c.unreachable != other.unreachable {
		return false
	}
	a, b := c.flatten(), other.flatten()
	if len(a) != len(b) {
		return false
	}
	for k, t := range a {
		u, ok := b[k]
		if !ok || !ts.Equal(t, u) {
			return false
		}
	}
	return true
}

// Merge joins two paths. A reference refined on both paths gets the union of
// its refinements; a reference refined on only one path reverts to its
// declared type. An unreachable path contributes nothing.
func Merge(a, b *Context) *Context {
	switch {
	case a.unreachable && b.unreachable:
		out := NewContext()
		out.unreachable = true
		return out
	case a.unreachable:
		return b.snapshot()
	case b.unreachable:
		return a.snapshot()
	}
	fa, fb := a.flatten(), b.flatten()
	out := NewContext()
	for k, ta := range fa {
		if tb, ok := fb[k]; ok {
			out.refined[k] = ts.NewUnion(ta, tb)
		}
	}
	return out
}

func (c *Context) snapshot() *Context {
	out := NewContext()
	for k, t := range c.flatten() {
		out.refined[k] = t
	}
	return out
}
