package ast

import (
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetSpan() token.Span
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
// Every expression carries an annotation slot filled by the checker.
type Expression interface {
	Node
	expressionNode()
	Annotation() *Annotation
}

// ReceiverClass is the statically known class of a call or member receiver.
type ReceiverClass struct {
	Name   string
	Static bool // receiver is the class itself, not an instance
}

// Annotation holds the facts the checker writes onto an expression.
type Annotation struct {
	Type     typesystem.Type
	Receiver *ReceiverClass
}

// Typed is embedded by every expression node.
type Typed struct {
	Info Annotation
}

func (t *Typed) Annotation() *Annotation { return &t.Info }

// Program is the root node of every tree the parser produces.
type Program struct {
	File       string
	Module     string // module id used by imports
	Statements []Statement
}

// Block is a sequence of statements with its own scope.
type Block struct {
	Span       token.Span
	Statements []Statement
}

func (b *Block) statementNode()      {}
func (b *Block) GetSpan() token.Span { return b.Span }

// BadStatement is a parser placeholder for a statement that failed to parse.
// The parser has already reported it.
type BadStatement struct {
	Span token.Span
}

func (b *BadStatement) statementNode()      {}
func (b *BadStatement) GetSpan() token.Span { return b.Span }

// BadExpression is a parser placeholder for an expression that failed to parse.
type BadExpression struct {
	Typed
	Span token.Span
}

func (b *BadExpression) expressionNode()     {}
func (b *BadExpression) GetSpan() token.Span { return b.Span }

// DeclKind distinguishes local and const bindings.
type DeclKind int

const (
	DeclLocal DeclKind = iota
	DeclConst
)

// VariableDeclaration binds a pattern: local x: T = v / const {a, b} = obj
type VariableDeclaration struct {
	Span   token.Span
	Kind   DeclKind
	Target Pattern // IdentifierPattern for plain bindings
	Type   Type    // optional annotation
	Value  Expression
}

func (vd *VariableDeclaration) statementNode()      {}
func (vd *VariableDeclaration) GetSpan() token.Span { return vd.Span }

// AssignmentStatement assigns to an identifier, member or index target.
// Op is empty for `=` and the arithmetic operator for compound forms (`+=`).
type AssignmentStatement struct {
	Span   token.Span
	Target Expression
	Op     BinaryOperator
	Value  Expression
}

func (as *AssignmentStatement) statementNode()      {}
func (as *AssignmentStatement) GetSpan() token.Span { return as.Span }

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Span       token.Span
	Expression Expression
}

func (es *ExpressionStatement) statementNode()      {}
func (es *ExpressionStatement) GetSpan() token.Span { return es.Span }

// TypeParameter declares a generic parameter: T: Constraint = Default
type TypeParameter struct {
	Span       token.Span
	Name       string
	Constraint Type
	Default    Type
}

// Parameter is a function parameter.
type Parameter struct {
	Span     token.Span
	Name     string
	Type     Type // optional
	Optional bool
	Default  Expression
	Rest     bool
}

// FunctionDeclaration: function name<T>(params): R ... end
type FunctionDeclaration struct {
	Span       token.Span
	Name       string
	NameSpan   token.Span
	Local      bool
	TypeParams []*TypeParameter
	Params     []*Parameter
	ReturnType Type
	Body       *Block
}

func (fd *FunctionDeclaration) statementNode()      {}
func (fd *FunctionDeclaration) GetSpan() token.Span { return fd.Span }

// TypeAliasDeclaration: type Name<T> = Type
type TypeAliasDeclaration struct {
	Span       token.Span
	Name       string
	TypeParams []*TypeParameter
	Type       Type
}

func (ta *TypeAliasDeclaration) statementNode()      {}
func (ta *TypeAliasDeclaration) GetSpan() token.Span { return ta.Span }

// InterfaceDeclaration: interface Name<T> extends A, B { members }
type InterfaceDeclaration struct {
	Span       token.Span
	Name       string
	TypeParams []*TypeParameter
	Extends    []*NamedType
	Body       *ObjectType
}

func (id *InterfaceDeclaration) statementNode()      {}
func (id *InterfaceDeclaration) GetSpan() token.Span { return id.Span }

// EnumMember is one case of an enum.
type EnumMember struct {
	Span  token.Span
	Name  string
	Value Expression // string or number literal; nil means the next integer
}

// EnumDeclaration: enum Color { Red = "red", Green = "green" }
type EnumDeclaration struct {
	Span    token.Span
	Name    string
	Members []*EnumMember
}

func (ed *EnumDeclaration) statementNode()      {}
func (ed *EnumDeclaration) GetSpan() token.Span { return ed.Span }

// DeclareFunction is an ambient declaration with no body.
type DeclareFunction struct {
	Span       token.Span
	Name       string
	TypeParams []*TypeParameter
	Params     []*Parameter
	ReturnType Type
}

func (df *DeclareFunction) statementNode()      {}
func (df *DeclareFunction) GetSpan() token.Span { return df.Span }

// DeclareConst is an ambient constant: declare const NAME: Type
type DeclareConst struct {
	Span token.Span
	Name string
	Type Type
}

func (dc *DeclareConst) statementNode()      {}
func (dc *DeclareConst) GetSpan() token.Span { return dc.Span }

// ImportSpec names one imported binding: { name as alias }
type ImportSpec struct {
	Span  token.Span
	Name  string
	Alias string
}

// LocalName is the name the import binds in this module.
func (s *ImportSpec) LocalName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// ImportStatement: import { a, b as c } from "mod" / import * as ns from "mod"
type ImportStatement struct {
	Span      token.Span
	Module    string
	Names     []*ImportSpec
	Namespace string // non-empty for `* as ns`
	TypeOnly  bool
}

func (is *ImportStatement) statementNode()      {}
func (is *ImportStatement) GetSpan() token.Span { return is.Span }

// ExportSpec names one exported binding: export { name as alias }
type ExportSpec struct {
	Span  token.Span
	Name  string
	Alias string
}

// ExportedName is the name dependents see.
func (s *ExportSpec) ExportedName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// ExportStatement exports a declaration, or a list of existing names.
type ExportStatement struct {
	Span  token.Span
	Decl  Statement
	Names []*ExportSpec
}

func (es *ExportStatement) statementNode()      {}
func (es *ExportStatement) GetSpan() token.Span { return es.Span }

// ElseIf is one `elseif cond then ...` branch.
type ElseIf struct {
	Span      token.Span
	Condition Expression
	Body      *Block
}

// IfStatement: if c then ... elseif c then ... else ... end
type IfStatement struct {
	Span      token.Span
	Condition Expression
	Then      *Block
	ElseIfs   []*ElseIf
	Else      *Block
}

func (is *IfStatement) statementNode()      {}
func (is *IfStatement) GetSpan() token.Span { return is.Span }

// WhileStatement: while c do ... end
type WhileStatement struct {
	Span      token.Span
	Condition Expression
	Body      *Block
}

func (ws *WhileStatement) statementNode()      {}
func (ws *WhileStatement) GetSpan() token.Span { return ws.Span }

// RepeatStatement: repeat ... until c
type RepeatStatement struct {
	Span      token.Span
	Body      *Block
	Condition Expression
}

func (rs *RepeatStatement) statementNode()      {}
func (rs *RepeatStatement) GetSpan() token.Span { return rs.Span }

// NumericForStatement: for i = start, limit, step do ... end
type NumericForStatement struct {
	Span  token.Span
	Var   string
	Start Expression
	Limit Expression
	Step  Expression // optional
	Body  *Block
}

func (fs *NumericForStatement) statementNode()      {}
func (fs *NumericForStatement) GetSpan() token.Span { return fs.Span }

// GenericForStatement: for k, v in iter do ... end
type GenericForStatement struct {
	Span     token.Span
	Vars     []string
	Iterator Expression
	Body     *Block
}

func (fs *GenericForStatement) statementNode()      {}
func (fs *GenericForStatement) GetSpan() token.Span { return fs.Span }

// ReturnStatement: return a, b
type ReturnStatement struct {
	Span   token.Span
	Values []Expression
}

func (rs *ReturnStatement) statementNode()      {}
func (rs *ReturnStatement) GetSpan() token.Span { return rs.Span }

type BreakStatement struct {
	Span token.Span
}

func (bs *BreakStatement) statementNode()      {}
func (bs *BreakStatement) GetSpan() token.Span { return bs.Span }

type ContinueStatement struct {
	Span token.Span
}

func (cs *ContinueStatement) statementNode()      {}
func (cs *ContinueStatement) GetSpan() token.Span { return cs.Span }

// CatchClause is `catch (e: T1 | T2) ... end`. No Types means the error is
// unknown.
type CatchClause struct {
	Span  token.Span
	Var   string
	Types []Type
	Body  *Block
}

// TryStatement: try ... catch (e) ... finally ... end
type TryStatement struct {
	Span    token.Span
	Body    *Block
	Catches []*CatchClause
	Finally *Block
}

func (t *TryStatement) statementNode()      {}
func (t *TryStatement) GetSpan() token.Span { return t.Span }

// ThrowStatement: throw value
type ThrowStatement struct {
	Span  token.Span
	Value Expression
}

func (t *ThrowStatement) statementNode()      {}
func (t *ThrowStatement) GetSpan() token.Span { return t.Span }

// RethrowStatement re-raises the error of the enclosing catch clause.
type RethrowStatement struct {
	Span token.Span
}

func (rs *RethrowStatement) statementNode()      {}
func (rs *RethrowStatement) GetSpan() token.Span { return rs.Span }

// DeclareNamespace groups ambient declarations under one name. Only exported
// members are visible through it.
type DeclareNamespace struct {
	Span    token.Span
	Name    string
	Members []Statement
}

func (dn *DeclareNamespace) statementNode()      {}
func (dn *DeclareNamespace) GetSpan() token.Span { return dn.Span }
