package pipeline

import (
	"context"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/modules"
	"github.com/funvibe/tlcheck/internal/symbols"
)

// PipelineContext carries one module through the processing stages.
type PipelineContext struct {
	Context  context.Context
	FilePath string
	ModuleID string
	Options  config.Options
	Registry *modules.Registry

	Program *ast.Program
	Exports *modules.ExportTable
	Symbols []symbols.Symbol
	CheckID string

	Errors []*diagnostics.DiagnosticError
	// Failure is an integration problem (unreadable dump, double publish)
	// rather than a problem in the checked code.
	Failure error
}

// NewContext starts a pipeline run for the dump at path.
func NewContext(ctx context.Context, path string, opts config.Options, registry *modules.Registry) *PipelineContext {
	return &PipelineContext{Context: ctx, FilePath: path, Options: opts, Registry: registry}
}

// Cancelled reports whether the run was interrupted.
func (c *PipelineContext) Cancelled() bool {
	return c.Context != nil && c.Context.Err() != nil
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Later stages skip themselves when an earlier one failed, so every
		// stage still gets to report what it can.
	}
	return ctx
}
