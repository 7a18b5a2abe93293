package resolver

import (
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/pipeline"
)

// ResolverProcessor resolves the original declaration of a request.
type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ref, err := ParseRef(ctx.Request.Original)
	if err != nil {
		return ctx.Fail(diagnostics.NewError(diagnostics.ErrD001, ctx.Request.Candidate).WithName(ctx.Request.Original))
	}
	res, diag := New(ctx.Index, ctx.Options).Resolve(ref, ctx.Candidate, ctx.CandidateEnv, ctx.Kind, ctx.Request.Wrt)
	if diag != nil {
		return ctx.Fail(diag)
	}
	ctx.Original = res.Original
	ctx.Specialized = res.Specialized
	ctx.Subst = res.Subst
	ctx.Subset = res.Subset
	ctx.SubsetSolved = res.SubsetSolved
	ctxlog.FromContext(ctx.Context).Debug("original resolved", "decl", ctx.Candidate.ID, "original", res.Original.ID)
	return ctx
}
