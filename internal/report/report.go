// Package report prints diagnostics and run summaries to a terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
)

const maxBannerWidth = 50

var categoryNames = map[byte]string{
	'A': "Analysis",
	'T': "Type",
	'C': "Class",
	'M': "Module",
	'I': "Internal",
}

// Printer renders diagnostics as banner blocks.
type Printer struct {
	Out   io.Writer
	Color bool
	// Width of the banner line.
	Width int
}

// New returns a printer writing to out, coloured when out is a terminal
// outside test mode.
func New(out io.Writer) *Printer {
	width := pterm.GetTerminalWidth() / 2
	if width > maxBannerWidth || width <= 0 {
		width = maxBannerWidth
	}
	return &Printer{Out: out, Color: IsTerminal(out) && !config.IsTestMode, Width: width}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(s string, style *pterm.Style) string {
	if !p.Color {
		return s
	}
	return style.Sprint(s)
}

func (p *Printer) tint(s string, c pterm.Color) string {
	if !p.Color {
		return s
	}
	return c.Sprint(s)
}

func category(code diagnostics.ErrorCode) string {
	if len(code) > 0 {
		if name, ok := categoryNames[code[0]]; ok {
			return name
		}
	}
	return "Check"
}

// Diagnostic prints one diagnostic.
func (p *Printer) Diagnostic(d *diagnostics.DiagnosticError) {
	kind := category(d.Code)
	label := kind + " Error"
	style, fg := ErrorStyleBG, ErrorColorFG
	if !d.IsError() {
		label = kind + " Warning"
		style, fg = WarnStyleBG, WarnColorFG
	}
	file := filepath.Base(d.File)
	if d.File == "" {
		file = "<input>"
	}
	dashes := p.Width - len(label) - len(file) - 5
	if dashes < 3 {
		dashes = 3
	}

	fmt.Fprintf(p.Out, "\n-- %s %s %s\n", p.paint(label, style), strings.Repeat("-", dashes), p.tint(file, InfoColorFG))
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	fmt.Fprintf(p.Out, "%s %s %s\n", p.tint(loc, InfoColorFG), p.tint(fmt.Sprintf("[%s %s]", d.Code, d.Code.Name()), fg), d.Message)
}

// Diagnostics prints ds in the given order.
func (p *Printer) Diagnostics(ds []*diagnostics.DiagnosticError) {
	for _, d := range ds {
		p.Diagnostic(d)
	}
}

// Failure prints a problem that stopped a module from being checked at all.
func (p *Printer) Failure(module string, err error) {
	fmt.Fprintf(p.Out, "\n%s %s: %v\n", p.paint("Fatal Error", ErrorStyleBG), module, err)
}

// Summary totals one run.
type Summary struct {
	Modules  int
	Errors   int
	Warnings int
	Failures int
	Elapsed  time.Duration
}

// Add counts ds into the summary.
func (s *Summary) Add(ds []*diagnostics.DiagnosticError) {
	for _, d := range ds {
		if d.IsError() {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
}

func (s Summary) Failed() bool { return s.Errors > 0 || s.Failures > 0 }

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Summary prints the closing line of a run.
func (p *Printer) Summary(s Summary) {
	counts := []string{plural(s.Errors, "error"), plural(s.Warnings, "warning")}
	if s.Failures > 0 {
		counts = append(counts, plural(s.Failures, "failure"))
	}
	line := fmt.Sprintf("checked %s: %s", plural(s.Modules, "module"), strings.Join(counts, ", "))
	if s.Elapsed > 0 {
		line += fmt.Sprintf(" (%s)", s.Elapsed.Round(time.Millisecond))
	}

	fmt.Fprintln(p.Out)
	switch {
	case s.Failed():
		fmt.Fprintf(p.Out, "%s %s\n", p.paint("Failed", ErrorStyleBG), line)
	case s.Warnings > 0:
		fmt.Fprintf(p.Out, "%s %s\n", p.paint("Done", WarnStyleBG), line)
	default:
		fmt.Fprintf(p.Out, "%s %s\n", p.paint("Done", SuccessStyleBG), p.tint(line, SuccessColorFG))
	}
}
