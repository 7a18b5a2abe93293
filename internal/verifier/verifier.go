// Package verifier runs registration requests through the verification
// pipeline and collects their outcomes.
package verifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/pipeline"
	"github.com/funvibe/derivcheck/internal/registry"
	"github.com/funvibe/derivcheck/internal/resolver"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/synth"
	"github.com/funvibe/derivcheck/internal/typesystem"
	"github.com/funvibe/derivcheck/internal/wrt"
)

// Result is the outcome of one request: a registration or a diagnostic.
// Err is set instead when the request could not be verified at all.
type Result struct {
	Request    derivative.Request
	Registered bool
	Key        derivative.Key
	Diagnostic *diagnostics.DiagnosticError
	Err        error
}

// Pass is one verification pass over a unit. The registration table lives
// as long as the pass.
type Pass struct {
	ID     string
	idx    *symbols.Index
	opts   config.Options
	table  *registry.Table
	stages *pipeline.Pipeline
}

func NewPass(idx *symbols.Index, opts config.Options) *Pass {
	stages := pipeline.New(
		&synth.ShapeProcessor{},
		&resolver.ResolverProcessor{},
		&wrt.WrtProcessor{},
		&synth.ComparatorProcessor{},
		&registry.RegistrationProcessor{},
	)
	return &Pass{
		ID:     uuid.NewString(),
		idx:    idx,
		opts:   opts,
		table:  registry.New(),
		stages: stages,
	}
}

// Table returns the registrations accepted so far.
func (p *Pass) Table() *registry.Table {
	return p.table
}

// Verify runs a single request. It fails only when the request names a
// candidate the index does not hold.
func (p *Pass) Verify(ctx context.Context, req derivative.Request) (Result, error) {
	cand, ok := p.idx.Lookup(req.Candidate)
	if !ok {
		return Result{}, fmt.Errorf("request %s: unknown candidate %q", req, req.Candidate)
	}
	pctx := pipeline.NewContext(ctx, req, p.idx, p.opts, p.table)
	pctx.Candidate = cand
	pctx.CandidateEnv = typesystem.NewEnv(cand.Generics, p.idx)
	pctx = p.stages.Run(pctx)

	res := Result{Request: req, Registered: pctx.Registered, Key: pctx.Key, Diagnostic: pctx.Diagnostic()}
	if res.Diagnostic != nil {
		ctxlog.FromContext(ctx).Debug("derivative rejected", "decl", req.Candidate, "original", req.Original, "code", string(res.Diagnostic.Code))
	}
	return res, nil
}

// Run verifies requests on the configured number of workers. Results are in
// request order. Requests racing for the same key are decided by whichever
// reaches the table first, so a single worker keeps declaration order.
// A request that cannot be verified gets a Result with Err set; only
// cancelling ctx stops the pass.
func (p *Pass) Run(ctx context.Context, reqs []derivative.Request) ([]Result, error) {
	logger := ctxlog.FromContext(ctx).With("pass", p.ID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("pass started", "requests", len(reqs), "workers", p.opts.WorkerCount())

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.WorkerCount())
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Verify(gctx, req)
			if err != nil {
				logger.Warn("request skipped", "decl", req.Candidate, "original", req.Original, "err", err)
				res = Result{Request: req, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("pass finished", "requests", len(reqs), "registered", p.table.Len())
	return results, nil
}
