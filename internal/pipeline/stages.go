package pipeline

import (
	"github.com/funvibe/tlcheck/internal/astio"
	"github.com/funvibe/tlcheck/internal/modules"
)

// DecodeProcessor reads the tree dump at FilePath.
type DecodeProcessor struct{}

func (DecodeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Program != nil || ctx.Failure != nil {
		return ctx
	}
	prog, err := astio.DecodeFile(ctx.FilePath)
	if err != nil {
		ctx.Failure = err
		return ctx
	}
	if prog.Module == "" {
		prog.Module = modules.ModuleID(ctx.FilePath)
	}
	if ctx.ModuleID == "" {
		ctx.ModuleID = prog.Module
	}
	ctx.Program = prog
	return ctx
}

// PublishProcessor freezes the module's export table in the registry. A
// cancelled run publishes nothing.
type PublishProcessor struct{}

func (PublishProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Exports == nil || ctx.Failure != nil || ctx.Cancelled() {
		return ctx
	}
	id, err := ctx.Registry.Publish(ctx.Exports)
	if err != nil {
		ctx.Failure = err
		return ctx
	}
	ctx.CheckID = id
	return ctx
}
