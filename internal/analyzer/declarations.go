package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// nameDeclaration registers the type names a top-level statement introduces
// so that every later annotation can refer to them regardless of order.
func (w *walker) nameDeclaration(stmt ast.Statement) {
	switch s := unwrapExport(stmt).(type) {
	case *ast.TypeAliasDeclaration:
		w.nameAlias(s)
	case *ast.InterfaceDeclaration:
		w.nameInterface(s)
	case *ast.EnumDeclaration:
		w.nameEnum(s)
	case *ast.ClassDeclaration:
		w.nameClass(s)
	}
}

// placeholderParams carries names and the presence of defaults, which is all
// arity checks need before the headers are resolved.
func placeholderParams(tps []*ast.TypeParameter) []ts.TypeParam {
	if len(tps) == 0 {
		return nil
	}
	out := make([]ts.TypeParam, len(tps))
	for i, tp := range tps {
		out[i] = ts.TypeParam{Name: tp.Name}
		if tp.Default != nil {
			out[i].Default = ts.Unknown
		}
	}
	return out
}

func (w *walker) duplicateType(name string, span token.Span, err error) bool {
	if err == nil {
		return false
	}
	w.addError(diagnostics.ErrDuplicateDeclaration, span, err.Error())
	return true
}

func (w *walker) nameAlias(s *ast.TypeAliasDeclaration) {
	a := &typeenv.Alias{Name: s.Name, Params: placeholderParams(s.TypeParams), Body: ts.Unknown, Span: s.Span}
	if w.duplicateType(s.Name, s.Span, w.env.RegisterAlias(a)) {
		return
	}
	w.decls[s.Name] = s
	w.declareType(s.Name, symbols.TypeSymbol, ts.Ref{Name: s.Name}, s.Span)
}

func (w *walker) nameInterface(s *ast.InterfaceDeclaration) {
	if _, merging := w.env.Interface(s.Name); merging {
		return
	}
	i := &typeenv.Interface{Name: s.Name, Params: placeholderParams(s.TypeParams), Span: s.Span}
	if w.duplicateType(s.Name, s.Span, w.env.RegisterInterface(i)) {
		return
	}
	w.decls[s.Name] = s
	w.declareType(s.Name, symbols.TypeSymbol, ts.Ref{Name: s.Name}, s.Span)
}

// nameEnum declares both halves of an enum: a type that is the union of the
// member values and a readonly table value holding them.
func (w *walker) nameEnum(s *ast.EnumDeclaration) {
	values := make([]ts.Type, 0, len(s.Members))
	table := ts.Object{}
	next := 1.0
	for _, m := range s.Members {
		var lit ts.Literal
		switch v := m.Value.(type) {
		case nil:
			lit = ts.NumLit(next)
		case *ast.NumberLiteral:
			lit = ts.NumLit(v.Value)
		case *ast.StringLiteral:
			lit = ts.StrLit(v.Value)
		case *ast.UnaryExpression:
			n, ok := v.Operand.(*ast.NumberLiteral)
			if !ok || v.Operator != ast.OpNeg {
				w.addError(diagnostics.ErrTypeMismatch, m.Span, "enum member", m.Name, "must be a string or number literal")
				continue
			}
			lit = ts.NumLit(-n.Value)
		default:
			w.addError(diagnostics.ErrTypeMismatch, m.Span, "enum member", m.Name, "must be a string or number literal")
			continue
		}
		if lit.Kind == ts.LitNumber {
			next = lit.Number + 1
		}
		if _, dup := table.Lookup(m.Name); dup {
			w.addError(diagnostics.ErrDuplicateDeclaration, m.Span, "duplicate enum member", m.Name)
			continue
		}
		values = append(values, lit)
		table = table.With(ts.Member{Name: m.Name, Type: lit, Readonly: true})
	}
	body := ts.NewUnion(values...)
	if len(values) == 0 {
		body = ts.Number
	}
	if w.duplicateType(s.Name, s.Span, w.env.RegisterAlias(&typeenv.Alias{Name: s.Name, Body: body, Span: s.Span})) {
		return
	}
	w.decls[s.Name] = s
	w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.EnumSymbol, Type: table, Span: s.Span})
}

// resolveHeaders builds every type body, class shape and function signature
// of the module before any statement is checked.
func (w *walker) resolveHeaders(stmts []ast.Statement) {
	var (
		aliases    []*ast.TypeAliasDeclaration
		interfaces []*ast.InterfaceDeclaration
		classes    []*ast.ClassDeclaration
		callables  []ast.Statement
	)
	for _, stmt := range stmts {
		switch s := unwrapExport(stmt).(type) {
		case *ast.TypeAliasDeclaration:
			if w.decls[s.Name] == ast.Statement(s) {
				aliases = append(aliases, s)
			}
		case *ast.InterfaceDeclaration:
			interfaces = append(interfaces, s)
		case *ast.ClassDeclaration:
			if w.decls[s.Name] == ast.Statement(s) {
				classes = append(classes, s)
			}
		case *ast.FunctionDeclaration, *ast.DeclareFunction, *ast.DeclareConst, *ast.DeclareNamespace:
			callables = append(callables, s)
		}
	}
	for _, s := range aliases {
		w.guard(s, func() { w.resolveAlias(s) })
	}
	for _, s := range aliases {
		w.guard(s, func() { w.validateAlias(s) })
	}
	for _, s := range interfaces {
		w.guard(s, func() { w.resolveInterface(s) })
	}
	for _, s := range classes {
		w.guard(s, func() { w.resolveClassHeader(s) })
	}
	for _, s := range classes {
		w.guard(s, func() { w.checkClassHierarchy(s) })
	}
	for _, s := range callables {
		w.guard(s, func() { w.declareCallable(s) })
	}
}

func (w *walker) resolveAlias(s *ast.TypeAliasDeclaration) {
	a, ok := w.env.Alias(s.Name)
	if !ok {
		return
	}
	params := w.buildTypeParams(s.TypeParams)
	a.Params = params
	if len(params) > 0 {
		w.env.PushTypeParams(params)
		defer w.env.PopTypeParams()
	}
	a.Body = w.buildType(s.Type)
}

func (w *walker) validateAlias(s *ast.TypeAliasDeclaration) {
	if err := w.env.ValidateAlias(s.Name); err != nil {
		w.addError(diagnostics.ErrRecursiveTypeAlias, s.Span, err.Error())
		if a, ok := w.env.Alias(s.Name); ok {
			a.Body = ts.Unknown
		}
	}
}

func (w *walker) resolveInterface(s *ast.InterfaceDeclaration) {
	i, ok := w.env.Interface(s.Name)
	if !ok {
		return
	}
	var params []ts.TypeParam
	if w.decls[s.Name] == ast.Statement(s) {
		params = w.buildTypeParams(s.TypeParams)
		i.Params = params
	} else {
		params = i.Params
	}
	if len(params) > 0 {
		w.env.PushTypeParams(params)
		defer w.env.PopTypeParams()
	}
	for _, ext := range s.Extends {
		t := w.buildType(ext)
		ref, ok := t.(ts.Ref)
		if !ok {
			if !ts.IsUnknown(t) {
				w.addError(diagnostics.ErrTypeMismatch, ext.Span, "an interface can only extend named object types")
			}
			continue
		}
		if ref.Name == s.Name {
			w.addError(diagnostics.ErrRecursiveTypeAlias, ext.Span, "interface", s.Name, "extends itself")
			continue
		}
		i.Extends = append(i.Extends, ref)
	}
	if s.Body != nil {
		body := w.buildObjectType(s.Body)
		for _, m := range body.Members {
			i.Body = i.Body.With(m)
		}
		if body.Index != nil {
			i.Body.Index = body.Index
		}
	}
}

// declareCallable pre-declares a top-level function so calls may precede
// its definition.
func (w *walker) declareCallable(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		sig := w.buildSignature(s.TypeParams, s.Params, s.ReturnType, nil)
		if sig.Return == nil {
			sig.Return = ts.Unknown
		}
		w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.FunctionSymbol, Type: sig, Span: s.NameSpan})
	case *ast.DeclareFunction:
		sig := w.buildSignature(s.TypeParams, s.Params, s.ReturnType, nil)
		if sig.Return == nil {
			sig.Return = ts.Void
		}
		w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.FunctionSymbol, Type: sig, Span: s.Span})
	case *ast.DeclareConst:
		w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.VariableSymbol, Type: w.buildType(s.Type), Span: s.Span})
	case *ast.DeclareNamespace:
		w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.VariableSymbol, Type: w.namespaceType(s), Span: s.Span})
	}
}

// declareNested handles a type or class declaration met inside a function
// or block: it runs the naming and header passes for it on the spot.
func (w *walker) declareNested(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.TypeAliasDeclaration:
		w.nameAlias(s)
		if w.decls[s.Name] == ast.Statement(s) {
			w.resolveAlias(s)
			w.validateAlias(s)
		}
	case *ast.InterfaceDeclaration:
		w.nameInterface(s)
		w.resolveInterface(s)
	case *ast.EnumDeclaration:
		w.nameEnum(s)
	case *ast.ClassDeclaration:
		w.nameClass(s)
		if w.decls[s.Name] == ast.Statement(s) {
			w.resolveClassHeader(s)
			w.checkClassHierarchy(s)
			w.checkClassBodies(s)
		}
	}
}
