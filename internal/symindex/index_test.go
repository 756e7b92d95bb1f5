package symindex

import (
	"context"
	"testing"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/pipeline"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sym(name string, kind symbols.SymbolKind, t ts.Type, line int) symbols.Symbol {
	sp := token.At(line, 1)
	sp.File = "geo.yaml"
	return symbols.Symbol{Name: name, Kind: kind, Type: t, Span: sp}
}

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexAndLookup(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)

	geo := []symbols.Symbol{
		sym("origin", symbols.FunctionSymbol, ts.Func{Return: ts.Number}, 3),
		sym("Point", symbols.TypeSymbol, ts.Ref{Name: "Point"}, 1),
	}
	if _, err := ix.Index(ctx, "geo", "c1", geo); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if _, err := ix.Index(ctx, "main", "c2", []symbols.Symbol{sym("origin", symbols.VariableSymbol, ts.String, 7)}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	got, err := ix.Module(ctx, "geo")
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	want := []Entry{
		{Module: "geo", CheckID: "c1", Name: "Point", Kind: "type", Type: "Point", File: "geo.yaml", Line: 1, Column: 1},
		{Module: "geo", CheckID: "c1", Name: "origin", Kind: "function", Type: ts.Func{Return: ts.Number}.String(), File: "geo.yaml", Line: 3, Column: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Module(geo) (-want +got):\n%s", diff)
	}

	byName, err := ix.Lookup(ctx, "origin")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	var modulesSeen []string
	for _, e := range byName {
		modulesSeen = append(modulesSeen, e.Module)
	}
	if diff := cmp.Diff([]string{"geo", "main"}, modulesSeen); diff != "" {
		t.Errorf("Lookup(origin) modules (-want +got):\n%s", diff)
	}
}

func TestReindexReplacesRows(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)

	if _, err := ix.Index(ctx, "geo", "old", []symbols.Symbol{sym("a", symbols.VariableSymbol, ts.Number, 1)}); err != nil {
		t.Fatal(err)
	}
	id, err := ix.Index(ctx, "geo", "", []symbols.Symbol{sym("b", symbols.VariableSymbol, ts.Number, 2)})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" || id == "old" {
		t.Errorf("expected a fresh check id, got %q", id)
	}
	got, err := ix.Module(ctx, "geo")
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{Module: "geo", CheckID: id, Name: "b", Kind: "variable", Type: "number", File: "geo.yaml", Line: 2, Column: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("after reindex (-want +got):\n%s", diff)
	}
}

func TestIndexProcessor(t *testing.T) {
	ix := openIndex(t)
	pc := &pipeline.PipelineContext{
		Context:  context.Background(),
		ModuleID: "geo",
		CheckID:  "c9",
		Options:  config.DefaultOptions(),
		Program:  nil,
		Symbols:  []symbols.Symbol{sym("x", symbols.VariableSymbol, ts.Number, 1)},
	}

	// Nothing decoded, nothing indexed.
	(&IndexProcessor{Index: ix}).Process(pc)
	if got, _ := ix.Module(context.Background(), "geo"); len(got) != 0 {
		t.Fatalf("indexed without a program: %v", got)
	}

	pc.Program = &ast.Program{Module: "geo"}
	out := (&IndexProcessor{Index: ix}).Process(pc)
	if out.Failure != nil {
		t.Fatalf("Failure: %v", out.Failure)
	}
	got, err := ix.Lookup(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{Module: "geo", CheckID: "c9", Name: "x", Kind: "variable", Type: "number", File: "geo.yaml", Line: 1, Column: 1}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Lookup(x) (-want +got):\n%s", diff)
	}
}
