package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// buildType converts a type annotation. Unknown names and wrong argument
// counts are reported and become unknown.
func (w *walker) buildType(t ast.Type) ts.Type {
	switch v := t.(type) {
	case nil:
		return ts.Unknown
	case *ast.BadType:
		return ts.Unknown
	case *ast.NamedType:
		return w.buildNamedType(v)
	case *ast.LiteralType:
		switch v.Kind {
		case ast.LiteralNumber:
			return ts.NumLit(v.Number)
		case ast.LiteralBoolean:
			return ts.BoolLit(v.Bool)
		default:
			return ts.StrLit(v.String)
		}
	case *ast.ArrayType:
		return ts.Array{Elem: w.buildType(v.Elem)}
	case *ast.TupleType:
		elems := make([]ts.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = w.buildType(e)
		}
		return ts.Tuple{Elems: elems}
	case *ast.ObjectType:
		return w.buildObjectType(v)
	case *ast.FunctionType:
		return w.buildSignature(v.TypeParams, v.Params, v.ReturnType, nil)
	case *ast.UnionType:
		members := make([]ts.Type, len(v.Types))
		for i, m := range v.Types {
			members[i] = w.buildType(m)
		}
		return ts.NewUnion(members...)
	case *ast.IntersectionType:
		members := make([]ts.Type, len(v.Types))
		for i, m := range v.Types {
			members[i] = w.buildType(m)
		}
		return ts.NewIntersection(members...)
	case *ast.NullableType:
		return ts.Nullable(w.buildType(v.Inner))
	case *ast.TypePredicate:
		return ts.Predicate{Param: v.Param, Type: w.buildType(v.Type)}
	}
	return ts.Unknown
}

func (w *walker) buildNamedType(v *ast.NamedType) ts.Type {
	if w.env.IsTypeParam(v.Name) {
		if len(v.Args) > 0 {
			w.addError(diagnostics.ErrArity, v.Span, "type parameter", v.Name, "takes no type arguments")
		}
		return ts.TVar{Name: v.Name}
	}
	if w.env.IsBuiltin(v.Name) {
		if len(v.Args) > 0 {
			w.addError(diagnostics.ErrArity, v.Span, "type", v.Name, "takes no type arguments")
		}
		if v.Name == config.AnyTypeName {
			return ts.Unknown
		}
		prim, _ := ts.PrimitiveByName(v.Name)
		return prim
	}
	if !w.env.IsDefined(v.Name) {
		w.addError(diagnostics.ErrUndefinedSymbol, v.Span, "unknown type:", v.Name)
		return ts.Unknown
	}
	args := make([]ts.Type, len(v.Args))
	for i, a := range v.Args {
		args[i] = w.buildType(a)
	}
	ref := ts.Ref{Name: v.Name, Args: args}

	if typeenv.IsUtility(v.Name) {
		return w.checkUtility(ref, v)
	}
	params, ok := w.typeParamsOf(v.Name)
	if !ok {
		return ref
	}
	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	// A generic class named bare inside its own body stands for itself.
	if len(args) == 0 && w.class != nil && w.class.name == v.Name {
		return ts.Ref{Name: v.Name, Args: tvarsOf(params)}
	}
	if len(args) < required || len(args) > len(params) {
		err := &typeenv.ArityError{Name: v.Name, Min: required, Max: len(params), Got: len(args)}
		w.addError(diagnostics.ErrArity, v.Span, err.Error())
		return ts.Unknown
	}
	if len(params) > 0 {
		if err := w.checkTypeArgs(params, args); err != nil {
			w.addError(diagnostics.ErrTypeConstraintViolation, v.Span, err.Error())
		}
	}
	return ref
}

// checkUtility applies a utility type once to surface argument errors; the
// reference itself is kept so it stays lazy.
func (w *walker) checkUtility(ref ts.Ref, v *ast.NamedType) ts.Type {
	if len(ref.FreeTypeVariables()) > 0 {
		return ref
	}
	if _, err := w.env.Resolve(ref); err != nil {
		switch e := err.(type) {
		case *typeenv.ArityError:
			w.addError(diagnostics.ErrArity, v.Span, e.Error())
		case *typeenv.RecursiveAliasError:
			w.addError(diagnostics.ErrRecursiveTypeAlias, v.Span, e.Error())
		default:
			w.addError(diagnostics.ErrTypeMismatch, v.Span, err.Error())
		}
		return ts.Unknown
	}
	return ref
}

// typeParamsOf returns the declared parameters of a named type.
func (w *walker) typeParamsOf(name string) ([]ts.TypeParam, bool) {
	if a, ok := w.env.Alias(name); ok {
		return a.Params, true
	}
	if i, ok := w.env.Interface(name); ok {
		return i.Params, true
	}
	if c, ok := w.env.Class(name); ok {
		return c.Params, true
	}
	return nil, false
}

func tvarsOf(params []ts.TypeParam) []ts.Type {
	if len(params) == 0 {
		return nil
	}
	out := make([]ts.Type, len(params))
	for i, p := range params {
		out[i] = ts.TVar{Name: p.Name}
	}
	return out
}

func (w *walker) buildObjectType(v *ast.ObjectType) ts.Object {
	obj := ts.Object{}
	for _, m := range v.Members {
		member := ts.Member{
			Name:     m.Name,
			Type:     w.buildType(m.Type),
			Optional: m.Optional,
			Readonly: m.Readonly,
		}
		if m.Method {
			member.Kind = ts.MethodMember
		}
		if _, dup := obj.Lookup(m.Name); dup {
			w.addError(diagnostics.ErrDuplicateDeclaration, m.Span, "duplicate member", m.Name)
		}
		obj = obj.With(member)
	}
	if v.Index != nil {
		obj.Index = &ts.IndexSignature{Key: w.buildType(v.Index.Key), Value: w.buildType(v.Index.Value)}
	}
	return obj
}

// buildTypeParams converts declared type parameters. All names are in scope
// while constraints and defaults are built, so they may refer to each other.
func (w *walker) buildTypeParams(tps []*ast.TypeParameter) []ts.TypeParam {
	if len(tps) == 0 {
		return nil
	}
	params := make([]ts.TypeParam, len(tps))
	for i, tp := range tps {
		params[i] = ts.TypeParam{Name: tp.Name}
	}
	w.env.PushTypeParams(params)
	defer w.env.PopTypeParams()
	for i, tp := range tps {
		if tp.Constraint != nil {
			params[i].Constraint = w.buildType(tp.Constraint)
		}
		if tp.Default != nil {
			params[i].Default = w.buildType(tp.Default)
			if params[i].Constraint != nil && !w.assignable(params[i].Default, params[i].Constraint) {
				w.addError(diagnostics.ErrTypeConstraintViolation, tp.Span,
					"default", params[i].Default, "does not satisfy the constraint", params[i].Constraint, "of", tp.Name)
			}
		}
	}
	return params
}

// buildSignature converts a function signature. expected, when given,
// supplies parameter types the signature leaves out.
func (w *walker) buildSignature(tps []*ast.TypeParameter, params []*ast.Parameter, ret ast.Type, expected *ts.Func) ts.Func {
	f := ts.Func{TypeParams: w.buildTypeParams(tps)}
	if len(f.TypeParams) > 0 {
		w.env.PushTypeParams(f.TypeParams)
		defer w.env.PopTypeParams()
	}
	for i, p := range params {
		f.Params = append(f.Params, w.paramType(p, i, expected))
	}
	if ret != nil {
		f.Return = w.buildType(ret)
	}
	return f
}

func (w *walker) paramType(p *ast.Parameter, i int, expected *ts.Func) ts.Param {
	param := ts.Param{Name: p.Name, Optional: p.Optional || p.Default != nil, Rest: p.Rest}
	switch {
	case p.Type != nil:
		param.Type = w.buildType(p.Type)
	case expected != nil:
		if t, ok := expected.ParamTypeAt(i); ok {
			param.Type = t
		} else {
			param.Type = ts.Unknown
		}
	default:
		param.Type = ts.Unknown
	}
	return param
}
