package symbols

import (
	"errors"
	"testing"

	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

func TestDeclareAndLookup(t *testing.T) {
	st := NewSymbolTable("main")
	if err := st.Declare(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Number, Mutable: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, err := st.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Origin != "main" || sym.Scope != ScopeModule {
		t.Errorf("got origin %q scope %s, want main/module", sym.Origin, sym.Scope)
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	st := NewSymbolTable("main")
	first := Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Number, Span: token.At(1, 7)}
	if err := st.Declare(first); err != nil {
		t.Fatal(err)
	}
	err := st.Declare(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.String})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Previous.Span != first.Span {
		t.Errorf("previous span = %s, want %s", dup.Previous.Span, first.Span)
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	st := NewSymbolTable("main")
	_ = st.Declare(Symbol{Name: "x", Type: typesystem.Number})

	st.EnterScope(ScopeBlock)
	if err := st.Declare(Symbol{Name: "x", Type: typesystem.String}); err != nil {
		t.Fatalf("shadowing should be allowed: %v", err)
	}
	sym, _ := st.Lookup("x")
	if !typesystem.Equal(sym.Type, typesystem.String) {
		t.Errorf("inner lookup = %s, want string", sym.Type)
	}
	st.ExitScope()

	sym, _ = st.Lookup("x")
	if !typesystem.Equal(sym.Type, typesystem.Number) {
		t.Errorf("outer lookup after exit = %s, want number", sym.Type)
	}
}

func TestUndefined(t *testing.T) {
	st := NewSymbolTable("main")
	_, err := st.Lookup("missing")
	var undef *UndefinedError
	if !errors.As(err, &undef) || undef.Name != "missing" {
		t.Fatalf("expected UndefinedError for missing, got %v", err)
	}
}

func TestPreludeIsVisibleAndShadowable(t *testing.T) {
	st := NewSymbolTable("main")
	if _, ok := st.Find("print"); !ok {
		t.Fatal("print should come from the prelude")
	}
	if err := st.Declare(Symbol{Name: "print", Kind: FunctionSymbol, Type: typesystem.Func{Return: typesystem.Void}}); err != nil {
		t.Fatalf("module scope may shadow prelude: %v", err)
	}
	if err := st.Update("type", typesystem.Number); err == nil {
		t.Error("prelude symbols must not be updated")
	}
}

func TestExitScopeStopsAtModule(t *testing.T) {
	st := NewSymbolTable("main")
	st.ExitScope()
	st.ExitScope()
	if !st.IsModuleScope() {
		t.Fatal("module scope was popped")
	}
	st.EnterScope(ScopeFunction)
	st.EnterScope(ScopeBlock)
	if !st.InFunction() || st.Depth() != 2 {
		t.Errorf("InFunction=%v Depth=%d, want true/2", st.InFunction(), st.Depth())
	}
}

func TestTopLevelOrder(t *testing.T) {
	st := NewSymbolTable("main")
	for _, n := range []string{"b", "a", "c"} {
		_ = st.Declare(Symbol{Name: n, Type: typesystem.Number})
	}
	st.EnterScope(ScopeFunction)
	_ = st.Declare(Symbol{Name: "inner", Type: typesystem.Number})

	var names []string
	for _, s := range st.TopLevel() {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, names); diff != "" {
		t.Errorf("TopLevel (-want +got):\n%s", diff)
	}
}

func TestGetAllNamesInnermostFirst(t *testing.T) {
	st := NewSymbolTable("main")
	st.Declare(Symbol{Name: "outer", Kind: VariableSymbol, Type: typesystem.Number})
	st.Declare(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Number})
	st.EnterScope(ScopeBlock)
	st.Declare(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.String})
	st.Declare(Symbol{Name: "inner", Kind: VariableSymbol, Type: typesystem.String})

	names := st.GetAllNames()
	if diff := cmp.Diff([]string{"x", "inner", "outer"}, names[:3]); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	if seen["x"] != 1 || seen["print"] != 1 {
		t.Errorf("x seen %d times, print %d times", seen["x"], seen["print"])
	}
}
