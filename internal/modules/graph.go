package modules

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is the import graph of a run.
type Graph struct {
	imports map[string][]string
}

func NewGraph() *Graph {
	return &Graph{imports: make(map[string][]string)}
}

// AddModule records id and the modules it imports. Imports of modules that
// are never added are treated as external.
func (g *Graph) AddModule(id string, imports ...string) {
	seen := map[string]bool{}
	var deps []string
	for _, imp := range g.imports[id] {
		seen[imp] = true
		deps = append(deps, imp)
	}
	for _, imp := range imports {
		if !seen[imp] {
			seen[imp] = true
			deps = append(deps, imp)
		}
	}
	g.imports[id] = deps
}

// Modules lists every added module, sorted.
func (g *Graph) Modules() []string {
	ids := make([]string, 0, len(g.imports))
	for id := range g.imports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Imports returns the recorded imports of id.
func (g *Graph) Imports(id string) []string {
	return append([]string(nil), g.imports[id]...)
}

// CycleError names an import cycle.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularImport, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularImport }

// components returns the strongly connected components, each sorted, in
// dependency-first order.
func (g *Graph) components() [][]string {
	index := map[string]int{}
	low := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var out [][]string
	next := 0

	var visit func(v string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		deps := append([]string(nil), g.imports[v]...)
		sort.Strings(deps)
		for _, w := range deps {
			if _, known := g.imports[w]; !known {
				continue
			}
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			out = append(out, comp)
		}
	}
	for _, id := range g.Modules() {
		if _, seen := index[id]; !seen {
			visit(id)
		}
	}
	return out
}

func (g *Graph) selfImport(id string) bool {
	for _, imp := range g.imports[id] {
		if imp == id {
			return true
		}
	}
	return false
}

// Order returns every module with its dependencies first. Modules on an
// import cycle are still ordered, and the first cycle found is returned as a
// *CycleError.
func (g *Graph) Order() ([]string, error) {
	var order []string
	var cycle *CycleError
	for _, comp := range g.components() {
		order = append(order, comp...)
		if cycle != nil {
			continue
		}
		if len(comp) > 1 {
			cycle = &CycleError{Path: append(append([]string(nil), comp...), comp[0])}
		} else if g.selfImport(comp[0]) {
			cycle = &CycleError{Path: []string{comp[0], comp[0]}}
		}
	}
	if cycle != nil {
		return order, cycle
	}
	return order, nil
}

// Dependencies returns the imports of id that a check must wait for: those
// added to the graph and not on a cycle with id.
func (g *Graph) Dependencies(id string) []string {
	comp := map[string]int{}
	for i, c := range g.components() {
		for _, m := range c {
			comp[m] = i
		}
	}
	var deps []string
	for _, imp := range g.imports[id] {
		ci, known := comp[imp]
		if !known || ci == comp[id] {
			continue
		}
		deps = append(deps, imp)
	}
	return deps
}

// OnCycle reports whether an import of dep by id closes an import cycle.
func (g *Graph) OnCycle(id, dep string) bool {
	if id == dep {
		return g.selfImport(id)
	}
	for _, c := range g.components() {
		if len(c) < 2 {
			continue
		}
		in := 0
		for _, m := range c {
			if m == id || m == dep {
				in++
			}
		}
		if in == 2 {
			return true
		}
	}
	return false
}
