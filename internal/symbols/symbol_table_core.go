package symbols

import (
	"fmt"

	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typesystem"
)

type SymbolKind int

type ScopeKind int

const (
	ScopePrelude ScopeKind = iota // Built-in symbols
	ScopeModule                   // User code top-level
	ScopeFunction
	ScopeBlock
	ScopeClass
)

func (k ScopeKind) String() string {
	switch k {
	case ScopePrelude:
		return "prelude"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	default:
		return "block"
	}
}

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	ClassSymbol
	TypeSymbol // alias, interface or enum type name
	EnumSymbol
	ImportSymbol
	TypeParameterSymbol
)

var symbolKindNames = [...]string{
	VariableSymbol:      "variable",
	ParameterSymbol:     "parameter",
	FunctionSymbol:      "function",
	ClassSymbol:         "class",
	TypeSymbol:          "type",
	EnumSymbol:          "enum",
	ImportSymbol:        "import",
	TypeParameterSymbol: "type parameter",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// IsValue reports whether the symbol names a runtime value.
func (k SymbolKind) IsValue() bool {
	switch k {
	case TypeSymbol, TypeParameterSymbol:
		return false
	}
	return true
}

type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    typesystem.Type
	Span    token.Span
	Mutable bool   // false for const bindings, functions, classes and imports
	Origin  string // module id where the symbol was declared ("prelude" for builtins)
	Scope   ScopeKind
}

// Scope is one lexical region. Names are unique within a scope.
type Scope struct {
	kind   ScopeKind
	parent *Scope
	store  map[string]*Symbol
	order  []string
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{kind: kind, parent: parent, store: make(map[string]*Symbol)}
}

func (s *Scope) Kind() ScopeKind { return s.kind }
func (s *Scope) Parent() *Scope  { return s.parent }

// Symbols returns the scope's symbols in declaration order.
func (s *Scope) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.store[name])
	}
	return out
}

// DuplicateError reports a redeclaration within one scope.
type DuplicateError struct {
	Name     string
	Previous Symbol
}

func (e *DuplicateError) Error() string {
	if e.Previous.Span.IsValid() {
		return fmt.Sprintf("'%s' is already declared in this scope (previous declaration at %s)", e.Name, e.Previous.Span)
	}
	return fmt.Sprintf("'%s' is already declared in this scope", e.Name)
}

// UndefinedError reports a name that no enclosing scope declares.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined symbol: %s", e.Name)
}
