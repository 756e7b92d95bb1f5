package modules

import (
	"fmt"
	"sort"

	"github.com/funvibe/tlcheck/internal/access"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// ExportKind distinguishes what an exported name denotes.
type ExportKind int

const (
	ExportValue ExportKind = iota
	ExportType
	ExportClass
)

func (k ExportKind) String() string {
	switch k {
	case ExportType:
		return "type"
	case ExportClass:
		return "class"
	default:
		return "value"
	}
}

// Export is one entry of a module's export table. For types Type is the
// flattened definition over Params; for classes it is the ClassRef.
// Enums are types with a companion Value.
type Export struct {
	Name   string
	Kind   ExportKind
	Type   ts.Type
	Params []ts.TypeParam
	Value  ts.Type
}

// ClassShape carries a class declaration across module boundaries so a
// dependent can rebuild both its type shape and its access rules.
type ClassShape struct {
	Name       string
	Params     []ts.TypeParam
	Parent     *ts.Ref
	Implements []ts.Ref
	Instance   ts.Object
	Static     ts.Object
	Ctor       *ts.Func
	Final      bool
	Abstract   bool
	Members    []access.Member
}

// ExportTable is the finalized public surface of one module. It is built by
// the checker and frozen once published.
type ExportTable struct {
	Module  string
	CheckID string
	Classes map[string]*ClassShape // every class reachable from the entries

	entries map[string]*Export
	order   []string
}

func NewExportTable(module string) *ExportTable {
	return &ExportTable{
		Module:  module,
		Classes: make(map[string]*ClassShape),
		entries: make(map[string]*Export),
	}
}

// DuplicateExportError rejects a second export of the same name.
type DuplicateExportError struct {
	Module, Name string
}

func (e *DuplicateExportError) Error() string {
	return fmt.Sprintf("module '%s' exports '%s' more than once", e.Module, e.Name)
}

// Add records an export.
func (t *ExportTable) Add(e Export) error {
	if _, ok := t.entries[e.Name]; ok {
		return &DuplicateExportError{Module: t.Module, Name: e.Name}
	}
	t.entries[e.Name] = &e
	t.order = append(t.order, e.Name)
	return nil
}

// AddClass records the shape of a class referenced by the exports.
func (t *ExportTable) AddClass(c *ClassShape) {
	t.Classes[c.Name] = c
}

// Lookup returns the export named name.
func (t *ExportTable) Lookup(name string) (*Export, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Names lists the exported names in declaration order.
func (t *ExportTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Entries returns the exports in declaration order.
func (t *ExportTable) Entries() []*Export {
	out := make([]*Export, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.entries[n])
	}
	return out
}

// Types is the name to type mapping dependents resolve imports against.
func (t *ExportTable) Types() map[string]ts.Type {
	out := make(map[string]ts.Type, len(t.entries))
	for n, e := range t.entries {
		out[n] = e.Type
	}
	return out
}

// ClassNames lists the carried class shapes, sorted.
func (t *ExportTable) ClassNames() []string {
	names := make([]string, 0, len(t.Classes))
	for n := range t.Classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
