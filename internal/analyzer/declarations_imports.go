package analyzer

import (
	"errors"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/modules"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// importModule binds the names an import statement brings in from the
// published export table of its module.
func (w *walker) importModule(s *ast.ImportStatement) {
	if w.source == nil {
		w.addError(diagnostics.ErrUndefinedSymbol, s.Span, "cannot resolve module", s.Module)
		return
	}
	table, err := w.source.GetExports(s.Module)
	if err != nil {
		if errors.Is(err, modules.ErrCircularImport) {
			w.addError(diagnostics.ErrCircularImport, s.Span, "circular import of module", s.Module)
		} else {
			w.addError(diagnostics.ErrUndefinedSymbol, s.Span, "cannot resolve module", s.Module)
		}
		return
	}
	w.importClasses(table)

	if s.Namespace != "" {
		w.importNamespace(s, table)
		return
	}
	for _, spec := range s.Names {
		e, ok := table.Lookup(spec.Name)
		if !ok {
			w.addError(diagnostics.ErrUndefinedSymbol, spec.Span, "module", s.Module, "has no export named", spec.Name)
			continue
		}
		w.bindImport(e, spec.LocalName(), spec, s.TypeOnly)
	}
}

func (w *walker) bindImport(e *modules.Export, local string, spec *ast.ImportSpec, typeOnly bool) {
	switch e.Kind {
	case modules.ExportValue:
		if typeOnly {
			return
		}
		w.declare(symbols.Symbol{Name: local, Kind: symbols.ImportSymbol, Type: e.Type, Span: spec.Span})

	case modules.ExportType:
		body := renameRef(e.Type, e.Name, local)
		err := w.env.RegisterAlias(&typeenv.Alias{Name: local, Params: e.Params, Body: body, Span: spec.Span})
		if w.duplicateType(local, spec.Span, err) {
			return
		}
		if e.Value != nil && !typeOnly {
			w.declare(symbols.Symbol{Name: local, Kind: symbols.EnumSymbol, Type: e.Value, Span: spec.Span})
		}

	case modules.ExportClass:
		ref, _ := e.Type.(ts.ClassRef)
		if local != ref.Name {
			params := w.importedParams(ref.Name)
			err := w.env.RegisterAlias(&typeenv.Alias{
				Name:   local,
				Params: params,
				Body:   ts.Ref{Name: ref.Name, Args: tvarsOf(params)},
				Span:   spec.Span,
			})
			if w.duplicateType(local, spec.Span, err) {
				return
			}
		}
		if !typeOnly {
			w.declare(symbols.Symbol{Name: local, Kind: symbols.ClassSymbol, Type: ref, Span: spec.Span})
		}
	}
}

func (w *walker) importedParams(class string) []ts.TypeParam {
	if c, ok := w.env.Class(class); ok {
		return c.Params
	}
	return nil
}

// importNamespace binds `* as ns`: values become members of one readonly
// table and types are reachable as ns.Name.
func (w *walker) importNamespace(s *ast.ImportStatement, table *modules.ExportTable) {
	ns := ts.Object{}
	for _, e := range table.Entries() {
		qualified := s.Namespace + "." + e.Name
		switch e.Kind {
		case modules.ExportValue:
			ns = ns.With(ts.Member{Name: e.Name, Type: e.Type, Readonly: true})
		case modules.ExportClass:
			ns = ns.With(ts.Member{Name: e.Name, Type: e.Type, Readonly: true})
			ref, _ := e.Type.(ts.ClassRef)
			params := w.importedParams(ref.Name)
			_ = w.env.RegisterAlias(&typeenv.Alias{Name: qualified, Params: params, Body: ts.Ref{Name: ref.Name, Args: tvarsOf(params)}})
		case modules.ExportType:
			_ = w.env.RegisterAlias(&typeenv.Alias{Name: qualified, Params: e.Params, Body: e.Type})
			if e.Value != nil {
				ns = ns.With(ts.Member{Name: e.Name, Type: e.Value, Readonly: true})
			}
		}
	}
	if s.TypeOnly {
		return
	}
	w.declare(symbols.Symbol{Name: s.Namespace, Kind: symbols.ImportSymbol, Type: ns, Span: s.Span})
}

// importClasses rebuilds the class shapes a module carries, both as types and
// in the access-control graph. Names already declared here are kept.
func (w *walker) importClasses(table *modules.ExportTable) {
	var added []*modules.ClassShape
	for _, name := range table.ClassNames() {
		shape := table.Classes[name]
		if w.env.IsDefined(name) {
			continue
		}
		err := w.env.RegisterClass(&typeenv.Class{
			Name:       shape.Name,
			Params:     shape.Params,
			Parent:     shape.Parent,
			Implements: shape.Implements,
			Instance:   shape.Instance,
			Static:     shape.Static,
			Ctor:       shape.Ctor,
			Abstract:   shape.Abstract,
		})
		if err != nil {
			continue
		}
		if _, err := w.classes.RegisterClass(shape.Name, "", shape.Final, shape.Abstract); err != nil {
			continue
		}
		for _, m := range shape.Members {
			_ = w.classes.AddMember(shape.Name, m)
		}
		added = append(added, shape)
	}
	// Parents are linked once every shape is in, since tables list them by name.
	for _, shape := range added {
		if shape.Parent != nil {
			_ = w.classes.SetParent(shape.Name, shape.Parent.Name)
		}
	}
}

// classShape captures a class for dependents, flattening member types so
// they do not mention names private to this module.
func (w *walker) classShape(name string) *modules.ClassShape {
	c, ok := w.env.Class(name)
	if !ok {
		return nil
	}
	shape := &modules.ClassShape{
		Name:       c.Name,
		Params:     c.Params,
		Parent:     c.Parent,
		Implements: c.Implements,
		Instance:   w.flattenObject(c.Instance),
		Static:     w.flattenObject(c.Static),
		Abstract:   c.Abstract,
	}
	if c.Ctor != nil {
		if f, ok := w.env.Flatten(*c.Ctor).(ts.Func); ok {
			shape.Ctor = &f
		}
	}
	if ac, ok := w.classes.Class(name); ok {
		shape.Final = ac.Final
		for _, m := range ac.Members() {
			shape.Members = append(shape.Members, *m)
		}
	}
	return shape
}

func (w *walker) flattenObject(o ts.Object) ts.Object {
	if f, ok := w.env.Flatten(o).(ts.Object); ok {
		return f
	}
	return o
}
