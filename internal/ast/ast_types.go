package ast

import (
	"github.com/funvibe/tlcheck/internal/token"
)

// --- Type annotation nodes ---

// Type represents a type annotation in the tree.
// E.g., number, Box<T>, string[], { x: number }, (a: T) -> R
type Type interface {
	Node
	typeNode()
}

// NamedType is a built-in, alias, interface, class or type parameter name
// with optional arguments.
type NamedType struct {
	Span token.Span
	Name string
	Args []Type
}

func (nt *NamedType) typeNode()           {}
func (nt *NamedType) GetSpan() token.Span { return nt.Span }

// LiteralKind is the category of a literal type.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
)

// LiteralType is a singleton type: "circle", 42, true
type LiteralType struct {
	Span   token.Span
	Kind   LiteralKind
	String string
	Number float64
	Bool   bool
}

func (lt *LiteralType) typeNode()           {}
func (lt *LiteralType) GetSpan() token.Span { return lt.Span }

// ArrayType: T[]
type ArrayType struct {
	Span token.Span
	Elem Type
}

func (at *ArrayType) typeNode()           {}
func (at *ArrayType) GetSpan() token.Span { return at.Span }

// TupleType: [A, B]
type TupleType struct {
	Span  token.Span
	Elems []Type
}

func (tt *TupleType) typeNode()           {}
func (tt *TupleType) GetSpan() token.Span { return tt.Span }

// ObjectTypeMember is one property or method signature.
type ObjectTypeMember struct {
	Span     token.Span
	Name     string
	Type     Type
	Optional bool
	Readonly bool
	Method   bool
}

// IndexSignatureType: [key: K]: V
type IndexSignatureType struct {
	Span  token.Span
	Key   Type
	Value Type
}

// ObjectType: { name: string, age?: number }
type ObjectType struct {
	Span    token.Span
	Members []*ObjectTypeMember
	Index   *IndexSignatureType
}

func (ot *ObjectType) typeNode()           {}
func (ot *ObjectType) GetSpan() token.Span { return ot.Span }

// FunctionType: <T>(x: T, ...rest: U) -> R
type FunctionType struct {
	Span       token.Span
	TypeParams []*TypeParameter
	Params     []*Parameter
	ReturnType Type
}

func (ft *FunctionType) typeNode()           {}
func (ft *FunctionType) GetSpan() token.Span { return ft.Span }

// UnionType represents A | B | C.
type UnionType struct {
	Span  token.Span
	Types []Type
}

func (ut *UnionType) typeNode()           {}
func (ut *UnionType) GetSpan() token.Span { return ut.Span }

// IntersectionType represents A & B.
type IntersectionType struct {
	Span  token.Span
	Types []Type
}

func (it *IntersectionType) typeNode()           {}
func (it *IntersectionType) GetSpan() token.Span { return it.Span }

// NullableType represents T?, sugar for T | nil.
type NullableType struct {
	Span  token.Span
	Inner Type
}

func (nt *NullableType) typeNode()           {}
func (nt *NullableType) GetSpan() token.Span { return nt.Span }

// TypePredicate is a type-guard return annotation: `x is T`.
type TypePredicate struct {
	Span  token.Span
	Param string
	Type  Type
}

func (tp *TypePredicate) typeNode()           {}
func (tp *TypePredicate) GetSpan() token.Span { return tp.Span }

// BadType is a parser placeholder for an annotation that failed to parse.
type BadType struct {
	Span token.Span
}

func (bt *BadType) typeNode()           {}
func (bt *BadType) GetSpan() token.Span { return bt.Span }
