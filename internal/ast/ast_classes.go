package ast

import (
	"github.com/funvibe/tlcheck/internal/token"
)

// AccessModifier is the visibility of a class member.
type AccessModifier int

const (
	Public AccessModifier = iota
	Private
	Protected
)

func (a AccessModifier) String() string {
	switch a {
	case Private:
		return "private"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// ClassMemberKind distinguishes the entries of a class body.
type ClassMemberKind int

const (
	PropertyMember ClassMemberKind = iota
	MethodMember
	ConstructorMember
	GetterMember
	SetterMember
)

// ClassMember is one entry of a class body. Properties use Type and Init;
// methods, accessors and the constructor use Function.
type ClassMember struct {
	Span     token.Span
	Kind     ClassMemberKind
	Name     string
	Access   AccessModifier
	Static   bool
	Readonly bool
	Abstract bool
	Final    bool
	Override bool
	Optional bool
	Type     Type
	Init     Expression
	Function *FunctionExpression // Body is nil for abstract methods

	Decorators []Expression
}

// ClassDeclaration: [abstract|final] class Name<T> extends Base implements I { ... }
type ClassDeclaration struct {
	Span       token.Span
	Name       string
	NameSpan   token.Span
	TypeParams []*TypeParameter
	Extends    *NamedType
	Implements []*NamedType
	Abstract   bool
	Final      bool
	Members    []*ClassMember
	Decorators []Expression
}

func (cd *ClassDeclaration) statementNode()      {}
func (cd *ClassDeclaration) GetSpan() token.Span { return cd.Span }

// Member finds a body entry by name.
func (cd *ClassDeclaration) Member(name string) *ClassMember {
	for _, m := range cd.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}
