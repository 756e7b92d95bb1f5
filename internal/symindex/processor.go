package symindex

import (
	"context"

	"github.com/funvibe/tlcheck/internal/pipeline"
)

// IndexProcessor records the module's top-level symbols once its check is
// published.
type IndexProcessor struct {
	Index *Index
}

func (ip *IndexProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ip.Index == nil || ctx.Failure != nil || ctx.Cancelled() || ctx.Program == nil {
		return ctx
	}
	c := ctx.Context
	if c == nil {
		c = context.Background()
	}
	id, err := ip.Index.Index(c, ctx.ModuleID, ctx.CheckID, ctx.Symbols)
	if err != nil {
		ctx.Failure = err
		return ctx
	}
	ctx.CheckID = id
	return ctx
}
