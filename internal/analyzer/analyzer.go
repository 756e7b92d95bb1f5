package analyzer

import (
	"fmt"

	"github.com/funvibe/tlcheck/internal/access"
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/modules"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
	"github.com/funvibe/tlcheck/internal/typeenv"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

// ExportSource answers imports with the export tables of finished modules.
type ExportSource interface {
	GetExports(id string) (*modules.ExportTable, error)
}

// Result is everything one module check produces. The program's expressions
// are annotated in place.
type Result struct {
	Program     *ast.Program
	Diagnostics []*diagnostics.DiagnosticError
	Exports     *modules.ExportTable
	Symbols     []symbols.Symbol
}

// HasErrors reports whether any error-severity diagnostic was produced.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Analyzer checks programs against one set of options.
type Analyzer struct {
	opts   config.Options
	source ExportSource
}

// New creates an Analyzer. source may be nil when programs import nothing.
func New(opts config.Options, source ExportSource) *Analyzer {
	return &Analyzer{opts: opts, source: source}
}

type AnalysisMode int

const (
	ModeNaming  AnalysisMode = iota // Pass 1: imports and type names
	ModeHeaders                     // Pass 2: type bodies, class shapes and signatures
	ModeBodies                      // Pass 3: statements and expressions
)

type funcFrame struct {
	declared ts.Type   // nil when the return type is inferred
	returns  []ts.Type // collected when declared is nil
	vararg   ts.Type   // element type of `...`, nil outside variadic functions
	ctor     bool
}

type classFrame struct {
	name   string
	static bool
}

type walker struct {
	opts        config.Options
	source      ExportSource
	symbolTable *symbols.SymbolTable
	env         *typeenv.Env
	classes     *access.Table
	narrower    *narrowing.Narrower
	narrow      *narrowing.Context
	diags       diagnostics.List
	mode        AnalysisMode
	currentFile string
	moduleID    string

	fn        *funcFrame
	class     *classFrame
	inLoop    bool
	inCatch   bool
	loopExits []*narrowing.Context // contexts at each break of the innermost loop

	decls       map[string]ast.Statement            // hoisted type and class declarations by name
	cycles      map[string]bool                     // classes whose parent link was rejected
	signatures  map[*ast.FunctionExpression]ts.Func // method signatures built with the class shape
	typeSymbols []symbols.Symbol                    // module-level type names, for the symbol index
}

// Analyze checks prog. Checking always completes; every problem found is a
// diagnostic in the result.
func (a *Analyzer) Analyze(prog *ast.Program) *Result {
	w := &walker{
		opts:        a.opts,
		source:      a.source,
		symbolTable: symbols.NewSymbolTable(prog.Module),
		env:         typeenv.New(),
		classes:     access.NewTable(),
		narrow:      narrowing.NewContext(),
		currentFile: prog.File,
		moduleID:    prog.Module,
		decls:       make(map[string]ast.Statement),
		cycles:      make(map[string]bool),
		signatures:  make(map[*ast.FunctionExpression]ts.Func),
	}
	w.narrower = narrowing.New(resolverWrapper{w})

	w.mode = ModeNaming
	for _, stmt := range prog.Statements {
		w.guard(stmt, func() { w.nameDeclaration(stmt) })
	}
	// Imported class shapes never displace local declarations of the same name.
	for _, stmt := range prog.Statements {
		if imp, ok := stmt.(*ast.ImportStatement); ok {
			w.guard(stmt, func() { w.importModule(imp) })
		}
	}
	w.mode = ModeHeaders
	w.resolveHeaders(prog.Statements)
	w.mode = ModeBodies
	for _, stmt := range prog.Statements {
		w.guard(stmt, func() { w.checkStatement(stmt) })
	}

	exports := w.buildExports(prog.Statements)
	return &Result{
		Program:     prog,
		Diagnostics: w.diags.Sorted(),
		Exports:     exports,
		Symbols:     append(w.symbolTable.TopLevel(), w.typeSymbols...),
	}
}

// guard checks one statement and contains internal failures to it: the
// walker's scope, narrowing and frame state is restored and checking goes on
// with the next statement.
func (w *walker) guard(stmt ast.Statement, check func()) {
	depth := w.symbolTable.Depth()
	typeParams := w.env.TypeParamDepth()
	narrow, fn, class, inLoop, inCatch, exits := w.narrow, w.fn, w.class, w.inLoop, w.inCatch, w.loopExits
	defer func() {
		if r := recover(); r != nil {
			w.addError(diagnostics.ErrInternal, stmt.GetSpan(), fmt.Sprintf("internal checker error: %v", r))
			for w.symbolTable.Depth() > depth {
				w.symbolTable.ExitScope()
			}
			w.env.ResetTypeParams(typeParams)
			w.narrow, w.fn, w.class, w.inLoop, w.inCatch, w.loopExits = narrow, fn, class, inLoop, inCatch, exits
		}
	}()
	check()
}

// addError records an error diagnostic, deduplicating by position, code and message.
func (w *walker) addError(code diagnostics.ErrorCode, span token.Span, args ...interface{}) {
	d := diagnostics.NewError(code, span, args...)
	if d.File == "" {
		d.File = w.currentFile
	}
	w.diags.Add(d)
}

// addWarning records a warning, or an error under warningsAsErrors.
func (w *walker) addWarning(code diagnostics.ErrorCode, span token.Span, args ...interface{}) {
	if w.opts.WarningsAsErrors {
		w.addError(code, span, args...)
		return
	}
	d := diagnostics.NewWarning(code, span, args...)
	if d.File == "" {
		d.File = w.currentFile
	}
	w.diags.Add(d)
}

// accessingClass is the class whose body is being checked, "" elsewhere.
func (w *walker) accessingClass() string {
	if w.class == nil {
		return ""
	}
	return w.class.name
}
