package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/google/go-cmp/cmp"
)

func plain(buf *bytes.Buffer) *Printer {
	return &Printer{Out: buf, Width: 40}
}

func diag(code diagnostics.ErrorCode, warning bool, line, col int, msg string) *diagnostics.DiagnosticError {
	var d *diagnostics.DiagnosticError
	if warning {
		d = diagnostics.NewWarning(code, token.At(line, col), msg)
	} else {
		d = diagnostics.NewError(code, token.At(line, col), msg)
	}
	d.File = "src/main.yaml"
	return d
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		d    *diagnostics.DiagnosticError
		want string
	}{
		{
			name: "type error",
			d:    diag(diagnostics.ErrTypeMismatch, false, 3, 7, "type 'string' is not assignable to type 'number'"),
			want: "\n-- Type Error ---------------- main.yaml\n" +
				"3:7 [T001 TypeMismatch] type 'string' is not assignable to type 'number'\n",
		},
		{
			name: "match warning",
			d:    diag(diagnostics.ErrNonExhaustiveMatch, true, 10, 1, "match is not exhaustive"),
			want: "\n-- Type Warning -------------- main.yaml\n" +
				"10:1 [T003 NonExhaustiveMatch] match is not exhaustive\n",
		},
		{
			name: "class error",
			d:    diag(diagnostics.ErrPrivateMemberAccess, false, 1, 2, "no access"),
			want: "\n-- Class Error --------------- main.yaml\n" +
				"1:2 [C001 PrivateMemberAccess] no access\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			plain(&buf).Diagnostic(tt.d)
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		s    Summary
		want string
	}{
		{"clean", Summary{Modules: 1}, "\nDone checked 1 module: 0 errors, 0 warnings\n"},
		{"warnings", Summary{Modules: 2, Warnings: 1}, "\nDone checked 2 modules: 0 errors, 1 warning\n"},
		{"errors", Summary{Modules: 3, Errors: 2, Warnings: 1, Elapsed: 1500 * time.Microsecond},
			"\nFailed checked 3 modules: 2 errors, 1 warning (2ms)\n"},
		{"failure", Summary{Modules: 1, Failures: 1}, "\nFailed checked 1 module: 0 errors, 0 warnings, 1 failure\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			plain(&buf).Summary(tt.s)
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	s.Add([]*diagnostics.DiagnosticError{
		diag(diagnostics.ErrTypeMismatch, false, 1, 1, "a"),
		diag(diagnostics.ErrNonExhaustiveMatch, true, 2, 1, "b"),
		diag(diagnostics.ErrArity, false, 3, 1, "c"),
	})
	if s.Errors != 2 || s.Warnings != 1 || !s.Failed() {
		t.Errorf("got %+v", s)
	}
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	plain(&buf).Failure("geo", errors.New("tree dump must be a mapping"))
	want := "\nFatal Error geo: tree dump must be a mapping\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestBufferIsNotATerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	if p := New(&bytes.Buffer{}); p.Color {
		t.Error("printer to a buffer must not colour")
	}
}
