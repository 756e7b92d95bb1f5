package modules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/funvibe/tlcheck/internal/astio"
)

// Loader decodes tree dumps into modules and indexes them by id.
type Loader struct {
	LoadedModules map[string]*Module // by module id
	order         []string
}

func NewLoader() *Loader {
	return &Loader{LoadedModules: make(map[string]*Module)}
}

// ModuleID derives the id of a dump that does not name its module.
func ModuleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load decodes the dump at path.
func (l *Loader) Load(path string) (*Module, error) {
	prog, err := astio.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if prog.Module == "" {
		prog.Module = ModuleID(path)
	}
	if prev, ok := l.LoadedModules[prog.Module]; ok {
		return nil, fmt.Errorf("module %q is defined by both %s and %s", prog.Module, prev.Path, path)
	}
	if IsVirtual(prog.Module) {
		return nil, fmt.Errorf("%s: module id %q is reserved", path, prog.Module)
	}
	mod := &Module{ID: prog.Module, Path: path, Program: prog, Imports: ImportsOf(prog)}
	l.LoadedModules[mod.ID] = mod
	l.order = append(l.order, mod.ID)
	return mod, nil
}

// LoadAll loads every path, stopping at the first failure.
func (l *Loader) LoadAll(paths []string) error {
	for _, p := range paths {
		if _, err := l.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// GetModule returns a loaded module by id.
func (l *Loader) GetModule(id string) (*Module, bool) {
	m, ok := l.LoadedModules[id]
	return m, ok
}

// Modules returns the loaded modules in load order.
func (l *Loader) Modules() []*Module {
	out := make([]*Module, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.LoadedModules[id])
	}
	return out
}

// Graph builds the import graph of the loaded modules.
func (l *Loader) Graph() *Graph {
	g := NewGraph()
	for _, m := range l.Modules() {
		g.AddModule(m.ID, m.Imports...)
	}
	return g
}
