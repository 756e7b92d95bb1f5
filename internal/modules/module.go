package modules

import (
	"github.com/funvibe/tlcheck/internal/ast"
)

// Module is one decoded source file and what the checker learned about it.
type Module struct {
	ID      string
	Path    string
	Program *ast.Program
	Imports []string     // module ids named by import statements, in order
	Exports *ExportTable // set once the module is checked
	Virtual bool         // built-in module with no source
}

func (m *Module) GetName() string {
	return m.ID
}

// ImportsOf lists the distinct modules a program imports.
func ImportsOf(p *ast.Program) []string {
	seen := map[string]bool{}
	var out []string
	for _, stmt := range p.Statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok || seen[imp.Module] {
			continue
		}
		seen[imp.Module] = true
		out = append(out, imp.Module)
	}
	return out
}
