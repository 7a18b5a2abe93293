package pipeline

import (
	"context"
	"testing"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
)

func TestRunStopsAtFirstDiagnostic(t *testing.T) {
	var ran []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			ran = append(ran, name)
			if fail {
				return ctx.Fail(diagnostics.NewError(diagnostics.ErrD014, ""))
			}
			return ctx
		})
	}
	req := derivative.Request{Original: "noParams", Candidate: "vjpNoParams"}
	ctx := New(stage("a", false), stage("b", true), stage("c", false)).
		Run(NewContext(context.Background(), req, symbols.NewIndex(), config.DefaultOptions(), nil))

	if len(ran) != 2 || ran[1] != "b" {
		t.Fatalf("stages run = %v, want [a b]", ran)
	}
	diag := ctx.Diagnostic()
	if diag == nil || diag.Code != diagnostics.ErrD014 {
		t.Fatalf("Diagnostic() = %v", diag)
	}
	if diag.Decl != "vjpNoParams" {
		t.Errorf("Fail should default Decl to the candidate, got %q", diag.Decl)
	}
}

func TestRunSucceeds(t *testing.T) {
	ctx := New().Run(NewContext(context.Background(), derivative.Request{}, symbols.NewIndex(), config.DefaultOptions(), nil))
	if ctx.Failed() || ctx.Diagnostic() != nil {
		t.Errorf("empty pipeline should succeed")
	}
}
