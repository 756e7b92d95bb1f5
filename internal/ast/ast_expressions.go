package ast

import (
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typesystem"
)

// Identifier represents a variable reference.
type Identifier struct {
	Typed
	Span token.Span
	Name string
}

func (i *Identifier) expressionNode()     {}
func (i *Identifier) GetSpan() token.Span { return i.Span }

// NilLiteral represents `nil`.
type NilLiteral struct {
	Typed
	Span token.Span
}

func (n *NilLiteral) expressionNode()     {}
func (n *NilLiteral) GetSpan() token.Span { return n.Span }

// BooleanLiteral represents true/false.
type BooleanLiteral struct {
	Typed
	Span  token.Span
	Value bool
}

func (b *BooleanLiteral) expressionNode()     {}
func (b *BooleanLiteral) GetSpan() token.Span { return b.Span }

// NumberLiteral represents a numeric constant. Integer is set when the source
// spelled the number without a fraction or exponent.
type NumberLiteral struct {
	Typed
	Span    token.Span
	Value   float64
	Integer bool
}

func (n *NumberLiteral) expressionNode()     {}
func (n *NumberLiteral) GetSpan() token.Span { return n.Span }

// StringLiteral represents a string, e.g. "hello"
type StringLiteral struct {
	Typed
	Span  token.Span
	Value string
}

func (s *StringLiteral) expressionNode()     {}
func (s *StringLiteral) GetSpan() token.Span { return s.Span }

// TemplateString represents `Hello, ${name}!`. Parts holds StringLiterals
// for text and arbitrary expressions for interpolations.
type TemplateString struct {
	Typed
	Span  token.Span
	Parts []Expression
}

func (ts *TemplateString) expressionNode()     {}
func (ts *TemplateString) GetSpan() token.Span { return ts.Span }

// VarargExpression represents `...` inside a variadic function.
type VarargExpression struct {
	Typed
	Span token.Span
}

func (v *VarargExpression) expressionNode()     {}
func (v *VarargExpression) GetSpan() token.Span { return v.Span }

// BinaryOperator names an infix operator by its source spelling.
type BinaryOperator string

const (
	OpAdd        BinaryOperator = "+"
	OpSub        BinaryOperator = "-"
	OpMul        BinaryOperator = "*"
	OpDiv        BinaryOperator = "/"
	OpIntDiv     BinaryOperator = "//"
	OpMod        BinaryOperator = "%"
	OpPow        BinaryOperator = "^"
	OpConcat     BinaryOperator = ".."
	OpEq         BinaryOperator = "=="
	OpNe         BinaryOperator = "~="
	OpLt         BinaryOperator = "<"
	OpLe         BinaryOperator = "<="
	OpGt         BinaryOperator = ">"
	OpGe         BinaryOperator = ">="
	OpAnd        BinaryOperator = "and"
	OpOr         BinaryOperator = "or"
	OpBitAnd     BinaryOperator = "&"
	OpBitOr      BinaryOperator = "|"
	OpBitXor     BinaryOperator = "~"
	OpShl        BinaryOperator = "<<"
	OpShr        BinaryOperator = ">>"
	OpCoalesce   BinaryOperator = "??"
	OpPipe       BinaryOperator = "|>"
	OpInstanceOf BinaryOperator = "instanceof"
)

// BinaryExpression: left op right
type BinaryExpression struct {
	Typed
	Span     token.Span
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()     {}
func (be *BinaryExpression) GetSpan() token.Span { return be.Span }

// UnaryOperator names a prefix operator.
type UnaryOperator string

const (
	OpNeg    UnaryOperator = "-"
	OpNot    UnaryOperator = "not"
	OpLen    UnaryOperator = "#"
	OpBitNot UnaryOperator = "~"
)

// UnaryExpression: op operand
type UnaryExpression struct {
	Typed
	Span     token.Span
	Operator UnaryOperator
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()     {}
func (ue *UnaryExpression) GetSpan() token.Span { return ue.Span }

// CallExpression: callee<TypeArgs>(args)
// InferredTypeArgs is written by the checker for generic callees.
type CallExpression struct {
	Typed
	Span             token.Span
	Callee           Expression
	TypeArgs         []Type
	Args             []Expression
	Optional         bool // callee?.()
	InferredTypeArgs []typesystem.Type
}

func (ce *CallExpression) expressionNode()     {}
func (ce *CallExpression) GetSpan() token.Span { return ce.Span }

// MethodCallExpression: receiver:method(args)
type MethodCallExpression struct {
	Typed
	Span             token.Span
	Receiver         Expression
	Method           string
	TypeArgs         []Type
	Args             []Expression
	InferredTypeArgs []typesystem.Type
}

func (mc *MethodCallExpression) expressionNode()     {}
func (mc *MethodCallExpression) GetSpan() token.Span { return mc.Span }

// MemberExpression represents dot access, e.g. obj.field or obj?.field
type MemberExpression struct {
	Typed
	Span     token.Span
	Object   Expression
	Name     string
	Optional bool
}

func (me *MemberExpression) expressionNode()     {}
func (me *MemberExpression) GetSpan() token.Span { return me.Span }

// IndexExpression represents indexing, e.g. arr[i] or obj?.[k]
type IndexExpression struct {
	Typed
	Span     token.Span
	Object   Expression
	Index    Expression
	Optional bool
}

func (ie *IndexExpression) expressionNode()     {}
func (ie *IndexExpression) GetSpan() token.Span { return ie.Span }

// FieldKind distinguishes entries of an object constructor.
type FieldKind int

const (
	FieldNamed    FieldKind = iota // name = value
	FieldComputed                  // [key] = value
	FieldSpread                    // ...value
)

// ObjectField is one entry of an object constructor.
type ObjectField struct {
	Span  token.Span
	Kind  FieldKind
	Name  string
	Key   Expression
	Value Expression
}

// ObjectExpression: { name = "a", [k] = v, ...rest }
type ObjectExpression struct {
	Typed
	Span   token.Span
	Fields []*ObjectField
}

func (oe *ObjectExpression) expressionNode()     {}
func (oe *ObjectExpression) GetSpan() token.Span { return oe.Span }

// ArrayExpression: { 1, 2, ...xs }
type ArrayExpression struct {
	Typed
	Span     token.Span
	Elements []Expression
}

func (ae *ArrayExpression) expressionNode()     {}
func (ae *ArrayExpression) GetSpan() token.Span { return ae.Span }

// SpreadExpression is `...value` inside an array constructor or call arguments.
type SpreadExpression struct {
	Typed
	Span  token.Span
	Value Expression
}

func (se *SpreadExpression) expressionNode()     {}
func (se *SpreadExpression) GetSpan() token.Span { return se.Span }

// FunctionExpression: function<T>(params): R ... end, or an arrow (x) => expr.
// Arrow functions with an expression body keep it in Result.
type FunctionExpression struct {
	Typed
	Span       token.Span
	TypeParams []*TypeParameter
	Params     []*Parameter
	ReturnType Type
	Body       *Block
	Result     Expression
}

func (fe *FunctionExpression) expressionNode()     {}
func (fe *FunctionExpression) GetSpan() token.Span { return fe.Span }

// ConditionalExpression: if c then a else b
type ConditionalExpression struct {
	Typed
	Span      token.Span
	Condition Expression
	Then      Expression
	Else      Expression
}

func (ce *ConditionalExpression) expressionNode()     {}
func (ce *ConditionalExpression) GetSpan() token.Span { return ce.Span }

// MatchArm is `pattern [when guard] => body`.
type MatchArm struct {
	Span    token.Span
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

// MatchExpression: match subject { arms }
type MatchExpression struct {
	Typed
	Span    token.Span
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpression) expressionNode()     {}
func (me *MatchExpression) GetSpan() token.Span { return me.Span }

// ParenExpression keeps explicit parentheses, which truncate multiple values.
type ParenExpression struct {
	Typed
	Span  token.Span
	Inner Expression
}

func (pe *ParenExpression) expressionNode()     {}
func (pe *ParenExpression) GetSpan() token.Span { return pe.Span }

// SelfExpression represents `self` inside a class body.
type SelfExpression struct {
	Typed
	Span token.Span
}

func (se *SelfExpression) expressionNode()     {}
func (se *SelfExpression) GetSpan() token.Span { return se.Span }

// SuperExpression represents `super` inside a subclass body.
type SuperExpression struct {
	Typed
	Span token.Span
}

func (se *SuperExpression) expressionNode()     {}
func (se *SuperExpression) GetSpan() token.Span { return se.Span }

// TypeAssertion: expr as Type
type TypeAssertion struct {
	Typed
	Span       token.Span
	Expression Expression
	Type       Type
}

func (ta *TypeAssertion) expressionNode()     {}
func (ta *TypeAssertion) GetSpan() token.Span { return ta.Span }

// NewExpression: new Class<TypeArgs>(args)
type NewExpression struct {
	Typed
	Span             token.Span
	Class            string
	ClassSpan        token.Span
	TypeArgs         []Type
	Args             []Expression
	InferredTypeArgs []typesystem.Type
}

func (ne *NewExpression) expressionNode()     {}
func (ne *NewExpression) GetSpan() token.Span { return ne.Span }

// TryExpression: try expr catch e => fallback
type TryExpression struct {
	Typed
	Span     token.Span
	Value    Expression
	CatchVar string
	Catch    Expression
}

func (te *TryExpression) expressionNode()     {}
func (te *TryExpression) GetSpan() token.Span { return te.Span }

// ErrorChainExpression: left !! right, where right is used when left raises.
type ErrorChainExpression struct {
	Typed
	Span  token.Span
	Left  Expression
	Right Expression
}

func (ec *ErrorChainExpression) expressionNode()     {}
func (ec *ErrorChainExpression) GetSpan() token.Span { return ec.Span }
