package ast

import (
	"github.com/funvibe/tlcheck/internal/token"
)

// Pattern is used by match arms and destructuring declarations.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything: _
type WildcardPattern struct {
	Span token.Span
}

func (wp *WildcardPattern) patternNode()        {}
func (wp *WildcardPattern) GetSpan() token.Span { return wp.Span }

// IdentifierPattern matches anything and binds it.
type IdentifierPattern struct {
	Span token.Span
	Name string
}

func (ip *IdentifierPattern) patternNode()        {}
func (ip *IdentifierPattern) GetSpan() token.Span { return ip.Span }

// LiteralPattern matches a constant: "a", 1, true, nil
type LiteralPattern struct {
	Span  token.Span
	Value Expression
}

func (lp *LiteralPattern) patternNode()        {}
func (lp *LiteralPattern) GetSpan() token.Span { return lp.Span }

// TypePattern matches values of a type and optionally binds them: s: string
type TypePattern struct {
	Span token.Span
	Name string // optional binding
	Type Type
}

func (tp *TypePattern) patternNode()        {}
func (tp *TypePattern) GetSpan() token.Span { return tp.Span }

// ArrayPattern destructures sequences: [first, second, ...rest]
type ArrayPattern struct {
	Span     token.Span
	Elements []Pattern
	Rest     string
}

func (ap *ArrayPattern) patternNode()        {}
func (ap *ArrayPattern) GetSpan() token.Span { return ap.Span }

// ObjectPatternField is `key: pattern`, or `key` which binds the key's name.
type ObjectPatternField struct {
	Span  token.Span
	Key   string
	Value Pattern // nil binds Key
}

// ObjectPattern destructures objects: { kind: "circle", radius }
type ObjectPattern struct {
	Span   token.Span
	Fields []*ObjectPatternField
	Rest   string
}

func (op *ObjectPattern) patternNode()        {}
func (op *ObjectPattern) GetSpan() token.Span { return op.Span }

// BadPattern is a parser placeholder for a pattern that failed to parse.
type BadPattern struct {
	Span token.Span
}

func (bp *BadPattern) patternNode()        {}
func (bp *BadPattern) GetSpan() token.Span { return bp.Span }
