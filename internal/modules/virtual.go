package modules

import (
	"sort"
	"sync"

	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// VirtualModule is a built-in module whose exports are known without source.
type VirtualModule struct {
	ID      string
	Symbols map[string]ts.Type
}

var (
	virtualModules     map[string]*VirtualModule
	initVirtualModules sync.Once
)

func fn(ret ts.Type, params ...ts.Param) ts.Func {
	return ts.Func{Params: params, Return: ret}
}

func loadVirtualModules() {
	initVirtualModules.Do(func() {
		virtualModules = map[string]*VirtualModule{
			"os": {ID: "os", Symbols: map[string]ts.Type{
				"time":   fn(ts.Integer),
				"clock":  fn(ts.Number),
				"getenv": fn(ts.Nullable(ts.String), ts.Param{Name: "name", Type: ts.String}),
				"date":   fn(ts.String, ts.Param{Name: "format", Type: ts.String, Optional: true}),
				"exit":   fn(ts.Never, ts.Param{Name: "code", Type: ts.Integer, Optional: true}),
			}},
			"io": {ID: "io", Symbols: map[string]ts.Type{
				"write": fn(ts.Void, ts.Param{Name: "args", Type: ts.Unknown, Rest: true}),
				"read":  fn(ts.Nullable(ts.String), ts.Param{Name: "format", Type: ts.String, Optional: true}),
			}},
		}
	})
}

// IsVirtual reports whether id names a built-in module.
func IsVirtual(id string) bool {
	loadVirtualModules()
	_, ok := virtualModules[id]
	return ok
}

// ExportTable builds the module's export table with names sorted.
func (v *VirtualModule) ExportTable() *ExportTable {
	t := NewExportTable(v.ID)
	names := make([]string, 0, len(v.Symbols))
	for n := range v.Symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		_ = t.Add(Export{Name: n, Kind: ExportValue, Type: v.Symbols[n]})
	}
	return t
}

// PublishVirtualModules publishes every built-in module to r.
func PublishVirtualModules(r *Registry) error {
	loadVirtualModules()
	ids := make([]string, 0, len(virtualModules))
	for id := range virtualModules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := r.Publish(virtualModules[id].ExportTable()); err != nil {
			return err
		}
	}
	return nil
}
