package wrt

import (
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/pipeline"
	"github.com/funvibe/derivcheck/internal/tangent"
)

// WrtProcessor resolves the differentiation parameters of the specialized
// original. Types are judged in the candidate's generic environment.
type WrtProcessor struct{}

func (wp *WrtProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	model := tangent.New(ctx.CandidateEnv)
	if ctx.SubsetSolved {
		if err := Validate(ctx.Specialized, ctx.Subset, model, ctx.Kind); err != nil {
			return ctx.Fail(err)
		}
	} else {
		subset, err := Resolve(ctx.Specialized, ctx.Request.Wrt, model, ctx.Kind)
		if err != nil {
			return ctx.Fail(err)
		}
		ctx.Subset = subset
		ctx.SubsetSolved = true
	}
	ctxlog.FromContext(ctx.Context).Debug("wrt resolved", "decl", ctx.Request.Candidate, "wrt", ctx.Subset.String())
	return ctx
}
