package synth

import (
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/pipeline"
	"github.com/funvibe/derivcheck/internal/tangent"
)

// ShapeProcessor checks the candidate's own shape and sets the derivative
// kind before any lookup happens.
type ShapeProcessor struct{}

func (sp *ShapeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	kind, err := CheckShape(ctx.Candidate, ctx.Request.Attribute, ctx.Request.Wrt, tangent.New(ctx.CandidateEnv))
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.Kind = kind
	ctxlog.FromContext(ctx.Context).Debug("shape checked", "decl", ctx.Candidate.ID, "kind", kind.String())
	return ctx
}

// ComparatorProcessor compares the candidate with the synthesized derivative
// of the resolved original.
type ComparatorProcessor struct{}

func (cp *ComparatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if err := Compare(ctx.Candidate, ctx.Specialized, ctx.Subset, ctx.Kind, tangent.New(ctx.CandidateEnv)); err != nil {
		return ctx.Fail(err)
	}
	return ctx
}
