package typesystem

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the interface for all types in our system.
// Types are immutable values: operations build new types instead of mutating.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// PrimitiveKind enumerates the built-in scalar types.
type PrimitiveKind int

const (
	KindNil PrimitiveKind = iota
	KindBoolean
	KindNumber
	KindInteger
	KindString
	KindUnknown
	KindNever
	KindVoid
	KindTable
)

var primitiveNames = map[PrimitiveKind]string{
	KindNil:     "nil",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindInteger: "integer",
	KindString:  "string",
	KindUnknown: "unknown",
	KindNever:   "never",
	KindVoid:    "void",
	KindTable:   "table",
}

// Primitive is a built-in scalar type (number, string, nil, unknown, ...).
type Primitive struct {
	Kind PrimitiveKind
}

var (
	Nil     = Primitive{Kind: KindNil}
	Boolean = Primitive{Kind: KindBoolean}
	Number  = Primitive{Kind: KindNumber}
	Integer = Primitive{Kind: KindInteger}
	String  = Primitive{Kind: KindString}
	Unknown = Primitive{Kind: KindUnknown}
	Never   = Primitive{Kind: KindNever}
	Void    = Primitive{Kind: KindVoid}
	Table   = Primitive{Kind: KindTable}
)

// PrimitiveByName maps a built-in type name to its type.
func PrimitiveByName(name string) (Primitive, bool) {
	for k, n := range primitiveNames {
		if n == name {
			return Primitive{Kind: k}, true
		}
	}
	return Primitive{}, false
}

func (t Primitive) String() string            { return primitiveNames[t.Kind] }
func (t Primitive) Apply(Subst) Type          { return t }
func (t Primitive) FreeTypeVariables() []TVar { return nil }

// LiteralKind distinguishes the literal value categories.
type LiteralKind int

const (
	LitBoolean LiteralKind = iota
	LitNumber
	LitString
)

// Literal is a singleton type holding one constant value.
type Literal struct {
	Kind   LiteralKind
	Bool   bool
	Number float64
	Str    string
}

func BoolLit(b bool) Literal       { return Literal{Kind: LitBoolean, Bool: b} }
func NumLit(n float64) Literal     { return Literal{Kind: LitNumber, Number: n} }
func StrLit(s string) Literal      { return Literal{Kind: LitString, Str: s} }
func (t Literal) Apply(Subst) Type { return t }

func (t Literal) FreeTypeVariables() []TVar { return nil }

func (t Literal) String() string {
	switch t.Kind {
	case LitBoolean:
		return strconv.FormatBool(t.Bool)
	case LitNumber:
		return strconv.FormatFloat(t.Number, 'g', -1, 64)
	default:
		return strconv.Quote(t.Str)
	}
}

// Primitive returns the primitive category the literal widens to.
func (t Literal) Primitive() Primitive {
	switch t.Kind {
	case LitBoolean:
		return Boolean
	case LitNumber:
		return Number
	default:
		return String
	}
}

// IsInteger reports whether a number literal holds a whole value.
func (t Literal) IsInteger() bool {
	return t.Kind == LitNumber && t.Number == float64(int64(t.Number))
}

// Array is a homogeneous sequence type (T[]).
type Array struct {
	Elem Type
}

func (t Array) String() string {
	return wrapComplex(t.Elem) + "[]"
}

func (t Array) Apply(s Subst) Type {
	return Array{Elem: t.Elem.Apply(s)}
}

func (t Array) FreeTypeVariables() []TVar { return t.Elem.FreeTypeVariables() }

// Tuple is a fixed-length heterogeneous sequence type.
type Tuple struct {
	Elems []Type
}

func (t Tuple) String() string {
	return "[" + joinTypes(t.Elems, ", ") + "]"
}

func (t Tuple) Apply(s Subst) Type {
	return Tuple{Elems: applyAll(t.Elems, s)}
}

func (t Tuple) FreeTypeVariables() []TVar { return freeAll(t.Elems) }

// MemberKind distinguishes properties from methods.
type MemberKind int

const (
	PropertyMember MemberKind = iota
	MethodMember
)

// Member is one entry of an Object type.
type Member struct {
	Name     string
	Type     Type
	Kind     MemberKind
	Optional bool
	Readonly bool
	Static   bool
}

func (m Member) apply(s Subst) Member {
	m.Type = m.Type.Apply(s)
	return m
}

func (m Member) String() string {
	var b strings.Builder
	if m.Static {
		b.WriteString("static ")
	}
	if m.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(m.Name)
	if m.Optional {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(m.Type.String())
	return b.String()
}

// IndexSignature describes [key]: value entries of an Object.
type IndexSignature struct {
	Key   Type
	Value Type
}

// Object is a structural record type.
type Object struct {
	Members []Member
	Index   *IndexSignature
}

// Lookup finds a member by name.
func (t Object) Lookup(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// With returns a copy of t where m replaces the member of the same name (or is appended).
func (t Object) With(m Member) Object {
	out := Object{Members: make([]Member, 0, len(t.Members)+1), Index: t.Index}
	replaced := false
	for _, cur := range t.Members {
		if cur.Name == m.Name {
			out.Members = append(out.Members, m)
			replaced = true
			continue
		}
		out.Members = append(out.Members, cur)
	}
	if !replaced {
		out.Members = append(out.Members, m)
	}
	return out
}

// Names returns the member names in declaration order.
func (t Object) Names() []string {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.Name
	}
	return names
}

func (t Object) String() string {
	parts := make([]string, 0, len(t.Members)+1)
	for _, m := range t.Members {
		parts = append(parts, m.String())
	}
	if t.Index != nil {
		parts = append(parts, fmt.Sprintf("[%s]: %s", t.Index.Key, t.Index.Value))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (t Object) Apply(s Subst) Type {
	out := Object{Members: make([]Member, len(t.Members))}
	for i, m := range t.Members {
		out.Members[i] = m.apply(s)
	}
	if t.Index != nil {
		out.Index = &IndexSignature{Key: t.Index.Key.Apply(s), Value: t.Index.Value.Apply(s)}
	}
	return out
}

func (t Object) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, m := range t.Members {
		vars = append(vars, m.Type.FreeTypeVariables()...)
	}
	if t.Index != nil {
		vars = append(vars, t.Index.Value.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TypeParam declares a type parameter with optional constraint and default.
type TypeParam struct {
	Name       string
	Constraint Type
	Default    Type
}

func (p TypeParam) String() string {
	s := p.Name
	if p.Constraint != nil {
		s += ": " + p.Constraint.String()
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// TypeParamNames lists the declared names in order.
func TypeParamNames(params []TypeParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// Param is one function parameter.
type Param struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool // Type is the element type of the rest parameter
}

// Func is a function signature, optionally generic.
type Func struct {
	TypeParams []TypeParam
	Params     []Param
	Return     Type
}

// RequiredCount is the number of leading parameters a caller must supply.
func (t Func) RequiredCount() int {
	n := 0
	for _, p := range t.Params {
		if p.Optional || p.Rest {
			break
		}
		n++
	}
	return n
}

// RestParam returns the rest parameter, if declared.
func (t Func) RestParam() (Param, bool) {
	if len(t.Params) > 0 && t.Params[len(t.Params)-1].Rest {
		return t.Params[len(t.Params)-1], true
	}
	return Param{}, false
}

// ParamTypeAt returns the declared type for the i-th argument.
func (t Func) ParamTypeAt(i int) (Type, bool) {
	if i < len(t.Params) && !t.Params[i].Rest {
		return t.Params[i].Type, true
	}
	if rest, ok := t.RestParam(); ok {
		return rest.Type, true
	}
	return nil, false
}

func (t Func) String() string {
	var b strings.Builder
	if len(t.TypeParams) > 0 {
		parts := make([]string, len(t.TypeParams))
		for i, p := range t.TypeParams {
			parts[i] = p.String()
		}
		b.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		s := p.Name
		if p.Rest {
			s = "..." + s
		}
		if p.Optional {
			s += "?"
		}
		if s == "" {
			params[i] = p.Type.String()
		} else {
			params[i] = s + ": " + p.Type.String()
		}
	}
	b.WriteString("(" + strings.Join(params, ", ") + ") -> ")
	ret := t.Return
	if ret == nil {
		ret = Void
	}
	b.WriteString(ret.String())
	return b.String()
}

// Apply substitutes through the signature. Type parameters declared by the
// function itself shadow bindings of the same name.
func (t Func) Apply(s Subst) Type {
	inner := s.Without(TypeParamNames(t.TypeParams)...)
	out := Func{Params: make([]Param, len(t.Params))}
	if len(t.TypeParams) > 0 {
		out.TypeParams = make([]TypeParam, len(t.TypeParams))
		for i, p := range t.TypeParams {
			if p.Constraint != nil {
				p.Constraint = p.Constraint.Apply(inner)
			}
			if p.Default != nil {
				p.Default = p.Default.Apply(inner)
			}
			out.TypeParams[i] = p
		}
	}
	for i, p := range t.Params {
		p.Type = p.Type.Apply(inner)
		out.Params[i] = p
	}
	if t.Return != nil {
		out.Return = t.Return.Apply(inner)
	}
	return out
}

func (t Func) FreeTypeVariables() []TVar {
	bound := make(map[string]bool)
	for _, p := range t.TypeParams {
		bound[p.Name] = true
	}
	var vars []TVar
	for _, p := range t.Params {
		vars = append(vars, p.Type.FreeTypeVariables()...)
	}
	if t.Return != nil {
		vars = append(vars, t.Return.FreeTypeVariables()...)
	}
	var free []TVar
	for _, v := range vars {
		if !bound[v.Name] {
			free = append(free, v)
		}
	}
	return uniqueTVars(free)
}

// Predicate is the return type of a user-defined type guard: `param is Type`.
// It behaves as boolean for assignability.
type Predicate struct {
	Param string
	Type  Type
}

func (t Predicate) String() string { return t.Param + " is " + t.Type.String() }

func (t Predicate) Apply(s Subst) Type {
	return Predicate{Param: t.Param, Type: t.Type.Apply(s)}
}

func (t Predicate) FreeTypeVariables() []TVar { return t.Type.FreeTypeVariables() }

// Union is a normalized union type; build it with NewUnion.
type Union struct {
	Types []Type // At least 2 types
}

func (t Union) String() string { return joinTypesWrapped(t.Types, " | ") }

func (t Union) Apply(s Subst) Type {
	return NewUnion(applyAll(t.Types, s)...)
}

func (t Union) FreeTypeVariables() []TVar { return freeAll(t.Types) }

// Intersection requires all of its member types; build it with NewIntersection.
type Intersection struct {
	Types []Type
}

func (t Intersection) String() string { return joinTypesWrapped(t.Types, " & ") }

func (t Intersection) Apply(s Subst) Type {
	return NewIntersection(applyAll(t.Types, s)...)
}

func (t Intersection) FreeTypeVariables() []TVar { return freeAll(t.Types) }

// Ref is a by-name reference to an alias, interface, class or utility type.
type Ref struct {
	Name string
	Args []Type
}

func (t Ref) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "<" + joinTypes(t.Args, ", ") + ">"
}

func (t Ref) Apply(s Subst) Type {
	if len(t.Args) == 0 {
		return t
	}
	return Ref{Name: t.Name, Args: applyAll(t.Args, s)}
}

func (t Ref) FreeTypeVariables() []TVar { return freeAll(t.Args) }

// TVar is a reference to a type parameter in scope.
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	if replacement, ok := s.Lookup(t.Name); ok {
		return replacement
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// ClassRef is the type of a class name used as a value (its static side).
type ClassRef struct {
	Name string
}

func (t ClassRef) String() string              { return "class " + t.Name }
func (t ClassRef) Apply(Subst) Type            { return t }
func (t ClassRef) FreeTypeVariables() []TVar   { return nil }

func applyAll(types []Type, s Subst) []Type {
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = t.Apply(s)
	}
	return out
}

func freeAll(types []Type) []TVar {
	var vars []TVar
	for _, t := range types {
		vars = append(vars, t.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

func uniqueTVars(vars []TVar) []TVar {
	if len(vars) == 0 {
		return nil
	}
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}

func joinTypes(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func joinTypesWrapped(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = wrapComplex(t)
	}
	return strings.Join(parts, sep)
}

// wrapComplex parenthesizes types that would read ambiguously inside T[] or a union.
func wrapComplex(t Type) string {
	switch t.(type) {
	case Union, Intersection, Func:
		return "(" + t.String() + ")"
	}
	return t.String()
}
