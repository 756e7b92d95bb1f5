package analyzer

import (
	"errors"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/modules"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// buildExports assembles the module's export table from its top-level
// export statements. Every class of the module travels with the table so
// dependents can resolve exported types that mention them.
func (w *walker) buildExports(stmts []ast.Statement) *modules.ExportTable {
	table := modules.NewExportTable(w.moduleID)
	for _, stmt := range stmts {
		ex, ok := stmt.(*ast.ExportStatement)
		if !ok {
			continue
		}
		if ex.Decl != nil {
			for _, name := range declaredNames(ex.Decl) {
				w.exportName(table, name, name, ex.Span)
			}
			continue
		}
		for _, spec := range ex.Names {
			w.exportName(table, spec.Name, spec.ExportedName(), spec.Span)
		}
	}
	for _, name := range w.env.ClassNames() {
		if shape := w.classShape(name); shape != nil {
			table.AddClass(shape)
		}
	}
	return table
}

// declaredNames lists the module-level names a declaration introduces.
func declaredNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return patternNames(s.Target, nil)
	case *ast.FunctionDeclaration:
		return []string{s.Name}
	case *ast.ClassDeclaration:
		return []string{s.Name}
	case *ast.TypeAliasDeclaration:
		return []string{s.Name}
	case *ast.InterfaceDeclaration:
		return []string{s.Name}
	case *ast.EnumDeclaration:
		return []string{s.Name}
	case *ast.DeclareFunction:
		return []string{s.Name}
	case *ast.DeclareConst:
		return []string{s.Name}
	case *ast.DeclareNamespace:
		return []string{s.Name}
	}
	return nil
}

func patternNames(p ast.Pattern, out []string) []string {
	switch v := p.(type) {
	case *ast.IdentifierPattern:
		out = append(out, v.Name)
	case *ast.TypePattern:
		if v.Name != "" {
			out = append(out, v.Name)
		}
	case *ast.ObjectPattern:
		for _, f := range v.Fields {
			if f.Value == nil {
				out = append(out, f.Key)
			} else {
				out = patternNames(f.Value, out)
			}
		}
		if v.Rest != "" {
			out = append(out, v.Rest)
		}
	case *ast.ArrayPattern:
		for _, e := range v.Elements {
			out = patternNames(e, out)
		}
		if v.Rest != "" {
			out = append(out, v.Rest)
		}
	}
	return out
}

// exportName adds the binding local under the name exported.
func (w *walker) exportName(table *modules.ExportTable, local, exported string, span token.Span) {
	e, ok := w.exportEntry(local, exported)
	if !ok {
		w.addError(diagnostics.ErrUndefinedSymbol, span, "cannot export undefined name", local)
		return
	}
	if err := table.Add(e); err != nil {
		var dup *modules.DuplicateExportError
		if errors.As(err, &dup) {
			w.addError(diagnostics.ErrDuplicateExport, span, dup.Error())
		}
	}
}

func (w *walker) exportEntry(local, exported string) (modules.Export, bool) {
	if w.symbolTable.IsDefinedLocally(local) {
		sym, _ := w.symbolTable.Find(local)
		switch sym.Kind {
		case symbols.ClassSymbol:
			return modules.Export{Name: exported, Kind: modules.ExportClass, Type: sym.Type}, true
		case symbols.EnumSymbol:
			e := modules.Export{Name: exported, Kind: modules.ExportType, Value: w.env.Flatten(sym.Type)}
			if a, ok := w.env.Alias(local); ok {
				e.Type = w.env.Flatten(a.Body)
			} else {
				e.Type = ts.Unknown
			}
			return e, true
		}
		return modules.Export{Name: exported, Kind: modules.ExportValue, Type: w.env.Flatten(sym.Type)}, true
	}

	if a, ok := w.env.Alias(local); ok {
		return modules.Export{
			Name:   exported,
			Kind:   modules.ExportType,
			Params: a.Params,
			Type:   renameRef(w.env.Flatten(a.Body), local, exported),
		}, true
	}
	if i, ok := w.env.Interface(local); ok {
		t, err := w.env.Resolve(ts.Ref{Name: local, Args: tvarsOf(i.Params)})
		if err != nil {
			t = ts.Unknown
		}
		return modules.Export{
			Name:   exported,
			Kind:   modules.ExportType,
			Params: i.Params,
			Type:   renameRef(w.env.Flatten(t), local, exported),
		}, true
	}
	return modules.Export{}, false
}

// renameRef rewrites references to from, keeping their arguments.
func renameRef(t ts.Type, from, to string) ts.Type {
	if from == to || !ts.MentionsRef(t, from) {
		return t
	}
	return ts.Map(t, func(n ts.Type) ts.Type {
		if r, ok := n.(ts.Ref); ok && r.Name == from {
			return ts.Ref{Name: to, Args: r.Args}
		}
		return n
	})
}
