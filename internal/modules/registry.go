package modules

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrCircularImport   = errors.New("circular import")
	ErrAlreadyPublished = errors.New("module already published")
	ErrUnknownModule    = errors.New("unknown module")
)

// Registry is the append-only store of finalized export tables shared by
// concurrent module checks. A table is written once when its module's check
// completes and only read afterwards.
type Registry struct {
	tables   sync.Map // module id -> *ExportTable
	expected sync.Map // module id -> struct{}
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Expect announces modules that will be published during this run. Asking
// for an expected module before it is published means the asker sits on an
// import cycle with it.
func (r *Registry) Expect(ids ...string) {
	for _, id := range ids {
		r.expected.Store(id, struct{}{})
	}
}

// Publish freezes a module's export table. The table is stamped with a fresh
// check ID, which is returned.
func (r *Registry) Publish(t *ExportTable) (string, error) {
	if t == nil {
		return "", fmt.Errorf("publish: nil export table")
	}
	if _, loaded := r.tables.Load(t.Module); loaded {
		return "", fmt.Errorf("%w: %s", ErrAlreadyPublished, t.Module)
	}
	t.CheckID = uuid.NewString()
	if _, loaded := r.tables.LoadOrStore(t.Module, t); loaded {
		return "", fmt.Errorf("%w: %s", ErrAlreadyPublished, t.Module)
	}
	return t.CheckID, nil
}

// GetExports returns the published table of id.
func (r *Registry) GetExports(id string) (*ExportTable, error) {
	if t, ok := r.tables.Load(id); ok {
		return t.(*ExportTable), nil
	}
	if _, ok := r.expected.Load(id); ok {
		return nil, fmt.Errorf("%w: %s is not finished", ErrCircularImport, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModule, id)
}

// Published reports whether id has a published table.
func (r *Registry) Published(id string) bool {
	_, ok := r.tables.Load(id)
	return ok
}

// ModuleSource answers the imports of one module. Modules on an import cycle
// with it are refused whether or not they happen to be published already.
type ModuleSource struct {
	Registry *Registry
	Graph    *Graph
	Module   string
}

func (s ModuleSource) GetExports(id string) (*ExportTable, error) {
	if s.Graph != nil && s.Graph.OnCycle(s.Module, id) {
		return nil, fmt.Errorf("%w: %s imports %s", ErrCircularImport, s.Module, id)
	}
	return s.Registry.GetExports(id)
}
