package registry

import (
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/pipeline"
)

var _ pipeline.Registrar = (*Table)(nil)

// RegistrationProcessor records a fully validated derivative.
type RegistrationProcessor struct{}

func (rp *RegistrationProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Key = derivative.NewKey(ctx.Original.ID, ctx.Subset, ctx.Kind)
	existing, ok := ctx.Registrar.Register(ctx.Key, ctx.Candidate.ID)
	if !ok {
		err := diagnostics.NewError(diagnostics.ErrD030, ctx.Candidate.ID)
		err.Existing = existing
		return ctx.Fail(err)
	}
	ctx.Registered = true
	ctxlog.FromContext(ctx.Context).Info("derivative registered",
		"decl", ctx.Candidate.ID,
		"original", ctx.Original.ID,
		"wrt", ctx.Subset.String(),
		"kind", ctx.Kind.String(),
	)
	return ctx
}
