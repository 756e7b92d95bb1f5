package analyzer

import (
	"github.com/funvibe/tlcheck/internal/pipeline"
)

// CheckProcessor is the pipeline stage that type-checks the decoded program.
type CheckProcessor struct {
	// Source answers imports; the context's registry when nil.
	Source ExportSource
}

func (cp *CheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil || ctx.Failure != nil || ctx.Cancelled() {
		return ctx
	}
	source := cp.Source
	if source == nil && ctx.Registry != nil {
		source = ctx.Registry
	}
	if ctx.ModuleID != "" {
		ctx.Program.Module = ctx.ModuleID
	}
	res := New(ctx.Options, source).Analyze(ctx.Program)
	ctx.Errors = append(ctx.Errors, res.Diagnostics...)
	ctx.Exports = res.Exports
	ctx.Symbols = res.Symbols
	return ctx
}
