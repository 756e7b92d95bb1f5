package analyzer

import (
	"testing"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/astio"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/google/go-cmp/cmp"
)

func analyze(t *testing.T, src string) *Result {
	t.Helper()
	return analyzeWith(t, config.DefaultOptions(), nil, src)
}

func analyzeWith(t *testing.T, opts config.Options, source ExportSource, src string) *Result {
	t.Helper()
	return New(opts, source).Analyze(mustDecode(t, src))
}

func mustDecode(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := astio.Decode([]byte(src), "test.yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return prog
}

// codeNames lists the taxonomy names of the result's diagnostics in report order.
func codeNames(r *Result) []string {
	var out []string
	for _, d := range r.Diagnostics {
		out = append(out, d.Code.Name())
	}
	return out
}

func expectCodes(t *testing.T, r *Result, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, codeNames(r)); diff != "" {
		for _, d := range r.Diagnostics {
			t.Log(d.Error())
		}
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func expectNoDiagnostics(t *testing.T, r *Result) {
	t.Helper()
	expectCodes(t, r)
}

func topLevel(t *testing.T, r *Result, name string) symbols.Symbol {
	t.Helper()
	for _, s := range r.Symbols {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no top-level symbol %q", name)
	return symbols.Symbol{}
}
