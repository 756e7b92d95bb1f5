package symbols

import (
	"github.com/funvibe/tlcheck/internal/typesystem"
)

// SymbolTable is a stack of lexical scopes rooted at the shared prelude.
type SymbolTable struct {
	module  *Scope
	current *Scope
	origin  string
}

// NewSymbolTable creates a table whose module scope inherits from the prelude.
// origin is stamped on every symbol declared through this table.
func NewSymbolTable(origin string) *SymbolTable {
	module := newScope(ScopeModule, GetPrelude())
	return &SymbolTable{module: module, current: module, origin: origin}
}

// EnterScope pushes a new scope of the given kind.
func (st *SymbolTable) EnterScope(kind ScopeKind) {
	st.current = newScope(kind, st.current)
}

// ExitScope pops the innermost scope. The module scope is never popped.
func (st *SymbolTable) ExitScope() {
	if st.current != st.module {
		st.current = st.current.parent
	}
}

// Current returns the innermost scope.
func (st *SymbolTable) Current() *Scope { return st.current }

// Depth is the number of scopes above the module scope.
func (st *SymbolTable) Depth() int {
	depth := 0
	for s := st.current; s != st.module && s != nil; s = s.parent {
		depth++
	}
	return depth
}

// IsModuleScope reports whether declarations currently land at top level.
func (st *SymbolTable) IsModuleScope() bool { return st.current == st.module }

// InFunction reports whether any enclosing scope is a function body.
func (st *SymbolTable) InFunction() bool {
	for s := st.current; s != nil; s = s.parent {
		if s.kind == ScopeFunction {
			return true
		}
	}
	return false
}

// Declare adds sym to the current scope. Shadowing outer scopes is allowed;
// redeclaring a name in the same scope is a *DuplicateError.
func (st *SymbolTable) Declare(sym Symbol) error {
	if prev, ok := st.current.store[sym.Name]; ok {
		return &DuplicateError{Name: sym.Name, Previous: *prev}
	}
	if sym.Origin == "" {
		sym.Origin = st.origin
	}
	sym.Scope = st.current.kind
	st.current.store[sym.Name] = &sym
	st.current.order = append(st.current.order, sym.Name)
	return nil
}

// Lookup walks the scope chain outward; the nearest declaration wins.
func (st *SymbolTable) Lookup(name string) (Symbol, error) {
	for s := st.current; s != nil; s = s.parent {
		if sym, ok := s.store[name]; ok {
			return *sym, nil
		}
	}
	return Symbol{}, &UndefinedError{Name: name}
}

// Find is Lookup without the error value.
func (st *SymbolTable) Find(name string) (Symbol, bool) {
	sym, err := st.Lookup(name)
	return sym, err == nil
}

// IsDefinedLocally reports whether the current scope declares name.
func (st *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := st.current.store[name]
	return ok
}

// Update replaces the type of the nearest declaration of name.
// Used once a pre-declared function or inferred variable gets its final type.
func (st *SymbolTable) Update(name string, t typesystem.Type) error {
	for s := st.current; s != nil && s.kind != ScopePrelude; s = s.parent {
		if sym, ok := s.store[name]; ok {
			sym.Type = t
			return nil
		}
	}
	return &UndefinedError{Name: name}
}

// TopLevel returns the module scope symbols in declaration order.
func (st *SymbolTable) TopLevel() []Symbol {
	return st.module.Symbols()
}

// GetAllNames lists every visible name, innermost first, for suggestions.
func (st *SymbolTable) GetAllNames() []string {
	seen := map[string]bool{}
	var names []string
	for s := st.current; s != nil; s = s.parent {
		for _, n := range s.order {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
