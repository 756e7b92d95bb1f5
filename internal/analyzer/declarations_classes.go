package analyzer

import (
	"errors"

	"github.com/funvibe/tlcheck/internal/access"
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// nameClass registers an empty class shape, its node in the access graph and
// the class value. Members are filled in by the header pass.
func (w *walker) nameClass(s *ast.ClassDeclaration) {
	if !w.opts.EnableOOP {
		w.addError(diagnostics.ErrFeatureDisabled, s.Span, "classes are disabled (enableOOP is off)")
	}
	c := &typeenv.Class{Name: s.Name, Params: placeholderParams(s.TypeParams), Abstract: s.Abstract, Span: s.Span}
	if w.duplicateType(s.Name, s.NameSpan, w.env.RegisterClass(c)) {
		return
	}
	parent := ""
	if s.Extends != nil {
		parent = s.Extends.Name
	}
	if _, err := w.classes.RegisterClass(s.Name, parent, s.Final, s.Abstract); err != nil {
		var cycle *access.CycleError
		if errors.As(err, &cycle) {
			w.addError(diagnostics.ErrCircularInheritance, s.NameSpan, err.Error())
			w.cycles[s.Name] = true
		}
	}
	w.decls[s.Name] = s
	w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.ClassSymbol, Type: ts.ClassRef{Name: s.Name}, Span: s.NameSpan})
}

// resolveClassHeader builds the instance side, static side and constructor
// of a class and records member visibility in the access graph.
func (w *walker) resolveClassHeader(s *ast.ClassDeclaration) {
	c, ok := w.env.Class(s.Name)
	if !ok {
		return
	}
	params := w.buildTypeParams(s.TypeParams)
	c.Params = params
	if len(params) > 0 {
		w.env.PushTypeParams(params)
		defer w.env.PopTypeParams()
	}
	savedClass := w.class
	w.class = &classFrame{name: s.Name}
	defer func() { w.class = savedClass }()

	if s.Extends != nil && !w.cycles[s.Name] {
		switch t := w.buildType(s.Extends).(type) {
		case ts.Ref:
			if w.env.IsClass(t.Name) && t.Name != s.Name {
				c.Parent = &t
			} else {
				w.addError(diagnostics.ErrTypeMismatch, s.Extends.Span, "class", s.Name, "can only extend a class, not", t.Name)
			}
		}
	}
	for _, impl := range s.Implements {
		if ref, ok := w.buildType(impl).(ts.Ref); ok {
			c.Implements = append(c.Implements, ref)
		}
	}

	setters := map[string]bool{}
	for _, m := range s.Members {
		if m.Kind == ast.SetterMember {
			setters[m.Name] = true
		}
	}
	seen := map[bool]map[string]ast.ClassMemberKind{false: {}, true: {}}
	for _, m := range s.Members {
		if prev, dup := seen[m.Static][m.Name]; dup && !accessorPair(prev, m.Kind) {
			w.addError(diagnostics.ErrDuplicateDeclaration, m.Span, "duplicate member", m.Name, "in class", s.Name)
			continue
		}
		seen[m.Static][m.Name] = m.Kind
		if m.Abstract && !s.Abstract {
			w.addError(diagnostics.ErrAbstractMember, m.Span, "abstract member", m.Name, "in non-abstract class", s.Name)
		}
		w.addClassMember(c, s, m, setters)
	}
}

func accessorPair(a, b ast.ClassMemberKind) bool {
	return (a == ast.GetterMember && b == ast.SetterMember) || (a == ast.SetterMember && b == ast.GetterMember)
}

func (w *walker) addClassMember(c *typeenv.Class, s *ast.ClassDeclaration, m *ast.ClassMember, setters map[string]bool) {
	rec := access.Member{Name: m.Name, Access: m.Access, Static: m.Static, Final: m.Final, Abstract: m.Abstract}
	var member ts.Member
	switch m.Kind {
	case ast.PropertyMember:
		t := w.propertyType(m)
		member = ts.Member{Name: m.Name, Type: t, Optional: m.Optional, Readonly: m.Readonly, Static: m.Static}

	case ast.MethodMember:
		sig := w.memberSignature(m, nil)
		rec.Method = true
		member = ts.Member{Name: m.Name, Type: sig, Kind: ts.MethodMember, Static: m.Static}

	case ast.ConstructorMember:
		sig := w.memberSignature(m, ts.Void)
		sig.Return = ts.Void
		c.Ctor = &sig
		if m.Access != ast.Public {
			_ = w.classes.AddMember(s.Name, access.Member{Name: config.ConstructorName, Access: m.Access, Method: true})
		}
		return

	case ast.GetterMember:
		sig := w.memberSignature(m, nil)
		member = ts.Member{Name: m.Name, Type: sig.Return, Readonly: !setters[m.Name], Static: m.Static}

	case ast.SetterMember:
		sig := w.memberSignature(m, ts.Void)
		if existing, ok := w.classSide(c, m.Static).Lookup(m.Name); ok {
			existing.Readonly = false
			w.setClassSide(c, m.Static, existing)
			break
		}
		t := ts.Type(ts.Unknown)
		if len(sig.Params) > 0 {
			t = sig.Params[0].Type
		}
		member = ts.Member{Name: m.Name, Type: t, Static: m.Static}
	}
	if member.Name != "" {
		w.setClassSide(c, m.Static, member)
	}
	_ = w.classes.AddMember(s.Name, rec)
}

func (w *walker) classSide(c *typeenv.Class, static bool) ts.Object {
	if static {
		return c.Static
	}
	return c.Instance
}

func (w *walker) setClassSide(c *typeenv.Class, static bool, m ts.Member) {
	if static {
		c.Static = c.Static.With(m)
	} else {
		c.Instance = c.Instance.With(m)
	}
}

// propertyType is the annotation of a property, or the widened type of a
// literal initializer. Other initializers are typed when the body is checked.
func (w *walker) propertyType(m *ast.ClassMember) ts.Type {
	if m.Type != nil {
		return w.buildType(m.Type)
	}
	switch v := m.Init.(type) {
	case *ast.NumberLiteral:
		if v.Integer {
			return ts.Integer
		}
		return ts.Number
	case *ast.StringLiteral, *ast.TemplateString:
		return ts.String
	case *ast.BooleanLiteral:
		return ts.Boolean
	}
	if w.opts.NoImplicitUnknown {
		w.addWarning(diagnostics.ErrImplicitUnknown, m.Span, "property", m.Name, "implicitly has type unknown")
	}
	return ts.Unknown
}

// memberSignature builds and remembers the signature of a method-like member.
// defaultReturn applies when the member declares no return type.
func (w *walker) memberSignature(m *ast.ClassMember, defaultReturn ts.Type) ts.Func {
	fe := m.Function
	if fe == nil {
		f := ts.Func{Return: ts.Unknown}
		if m.Type != nil {
			if sig, ok := w.buildType(m.Type).(ts.Func); ok {
				f = sig
			}
		}
		return f
	}
	sig := w.buildSignature(fe.TypeParams, fe.Params, fe.ReturnType, nil)
	if sig.Return == nil {
		sig.Return = defaultReturn
		if sig.Return == nil {
			sig.Return = ts.Unknown
		}
	}
	w.signatures[fe] = sig
	return sig
}

// checkClassHierarchy enforces final classes and methods, override rules,
// abstract member implementation and implemented interfaces.
func (w *walker) checkClassHierarchy(s *ast.ClassDeclaration) {
	c, ok := w.env.Class(s.Name)
	if !ok {
		return
	}
	if len(c.Params) > 0 {
		w.env.PushTypeParams(c.Params)
		defer w.env.PopTypeParams()
	}
	if c.Parent != nil {
		var final *access.FinalClassError
		if err := w.classes.CheckExtends(s.Name); errors.As(err, &final) {
			w.addError(diagnostics.ErrExtendingFinalClass, s.Span, err.Error())
		}
	}
	for _, m := range s.Members {
		if m.Kind == ast.ConstructorMember || m.Static {
			continue
		}
		w.checkOverride(s, c, m)
	}
	if !s.Abstract {
		w.checkAbstractImplemented(s)
	}
	if len(c.Implements) > 0 {
		self := ts.Ref{Name: s.Name, Args: tvarsOf(c.Params)}
		for i, iface := range c.Implements {
			if !w.assignable(self, iface) {
				w.addError(diagnostics.ErrTypeMismatch, s.Implements[i].Span,
					"class", s.Name, "incorrectly implements", quote(iface))
			}
		}
	}
}

var accessRank = map[ast.AccessModifier]int{ast.Public: 0, ast.Protected: 1, ast.Private: 2}

func (w *walker) checkOverride(s *ast.ClassDeclaration, c *typeenv.Class, m *ast.ClassMember) {
	if c.Parent == nil {
		if m.Override {
			w.addError(diagnostics.ErrInvalidOverride, m.Span, "member", m.Name, "is marked override but class", s.Name, "has no base class")
		}
		return
	}
	var final *access.FinalMethodError
	if err := w.classes.CheckOverride(s.Name, m.Name); errors.As(err, &final) {
		w.addError(diagnostics.ErrOverridingFinalMethod, m.Span, err.Error())
		return
	}
	owner, base, ok := w.classes.MemberOwner(c.Parent.Name, m.Name)
	if !ok {
		if m.Override {
			w.addError(diagnostics.ErrInvalidOverride, m.Span, "member", m.Name, "is marked override but no base class declares it")
		}
		return
	}
	if base.Access == ast.Private {
		return
	}
	if accessRank[m.Access] > accessRank[base.Access] {
		w.addError(diagnostics.ErrInvalidOverride, m.Span, "member", m.Name, "cannot reduce visibility from",
			base.Access.String(), "to", m.Access.String())
		return
	}
	parent, err := w.env.InstanceType(c.Parent.Name, c.Parent.Args)
	if err != nil {
		return
	}
	want, ok1 := parent.Lookup(m.Name)
	have, ok2 := c.Instance.Lookup(m.Name)
	if ok1 && ok2 && !w.assignable(have.Type, want.Type) {
		w.addError(diagnostics.ErrInvalidOverride, m.Span, "member", m.Name, "of type", quote(have.Type),
			"is not compatible with", quote(want.Type), "declared in", owner)
	}
}

// checkAbstractImplemented reports every abstract member of an ancestor that
// a concrete class leaves without an implementation.
func (w *walker) checkAbstractImplemented(s *ast.ClassDeclaration) {
	reported := map[string]bool{}
	for _, ancestor := range w.classes.Ancestors(s.Name) {
		ac, ok := w.classes.Class(ancestor)
		if !ok {
			break
		}
		for _, m := range ac.Members() {
			if !m.Abstract || reported[m.Name] {
				continue
			}
			_, impl, ok := w.classes.MemberOwner(s.Name, m.Name)
			if ok && !impl.Abstract {
				continue
			}
			reported[m.Name] = true
			w.addError(diagnostics.ErrAbstractMember, s.NameSpan, "class", s.Name,
				"does not implement abstract member", m.Name, "of", ancestor)
		}
	}
}

// checkClassBodies checks property initializers and every method body.
func (w *walker) checkClassBodies(s *ast.ClassDeclaration) {
	c, ok := w.env.Class(s.Name)
	if !ok {
		return
	}
	if len(c.Params) > 0 {
		w.env.PushTypeParams(c.Params)
		defer w.env.PopTypeParams()
	}
	w.checkDecorators(s.Decorators)
	savedClass := w.class
	defer func() { w.class = savedClass }()

	instance := ts.Ref{Name: s.Name, Args: tvarsOf(c.Params)}
	for _, m := range s.Members {
		w.class = &classFrame{name: s.Name, static: m.Static}
		w.checkDecorators(m.Decorators)
		var self ts.Type = instance
		if m.Static {
			self = ts.ClassRef{Name: s.Name}
		}
		switch m.Kind {
		case ast.PropertyMember:
			if m.Init == nil {
				continue
			}
			declared, _ := w.classSide(c, m.Static).Lookup(m.Name)
			var expected ts.Type
			if m.Type != nil {
				expected = declared.Type
			}
			t := w.inferExpr(m.Init, expected)
			if expected != nil {
				w.expectAssignable(t, expected, m.Init.GetSpan())
			} else if ts.IsUnknown(declared.Type) {
				declared.Type = ts.Widen(t)
				w.setClassSide(c, m.Static, declared)
			}
		default:
			if m.Function == nil || (m.Function.Body == nil && m.Function.Result == nil) {
				continue
			}
			sig, ok := w.signatures[m.Function]
			if !ok {
				continue
			}
			infer := m.Function.ReturnType == nil && (m.Kind == ast.MethodMember || m.Kind == ast.GetterMember)
			got := w.checkFunctionBody(m.Function, sig, self, m.Kind == ast.ConstructorMember, infer)
			if !infer {
				continue
			}
			member, ok := w.classSide(c, m.Static).Lookup(m.Name)
			if !ok {
				continue
			}
			if m.Kind == ast.MethodMember {
				member.Type = got
			} else {
				member.Type = got.Return
			}
			w.setClassSide(c, m.Static, member)
		}
	}
}
