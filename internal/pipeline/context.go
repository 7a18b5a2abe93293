package pipeline

import (
	"context"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// Registrar is the write side of the registration table.
type Registrar interface {
	// Register records decl under key. When the key is taken it returns the
	// declaration already registered and false.
	Register(key derivative.Key, decl string) (existing string, ok bool)
}

// PipelineContext carries one registration request through the stages.
// Each stage reads what earlier stages resolved and fills in its own part.
type PipelineContext struct {
	Context   context.Context
	Request   derivative.Request
	Index     *symbols.Index
	Options   config.Options
	Registrar Registrar

	// Candidate stage
	Candidate    *symbols.Declaration
	CandidateEnv *typesystem.Env
	Kind         derivative.Kind

	// Original resolution
	Original *symbols.Declaration
	// Specialized is Original with its generic parameters replaced by the
	// candidate's types; every later stage works on it.
	Specialized *symbols.Declaration
	Subst       typesystem.Subst
	// Subset is already known after resolution for transposes.
	Subset       derivative.Subset
	SubsetSolved bool

	Key        derivative.Key
	Registered bool

	Errors []*diagnostics.DiagnosticError
}

// NewContext builds the context for one request.
func NewContext(ctx context.Context, req derivative.Request, idx *symbols.Index, opts config.Options, reg Registrar) *PipelineContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &PipelineContext{Context: ctx, Request: req, Index: idx, Options: opts, Registrar: reg}
}

// Fail records a diagnostic for the candidate of this request.
func (c *PipelineContext) Fail(err *diagnostics.DiagnosticError) *PipelineContext {
	if err.Decl == "" {
		err.Decl = c.Request.Candidate
	}
	if err.Original == "" && c.Original != nil {
		err.Original = c.Original.ID
	}
	c.Errors = append(c.Errors, err)
	return c
}

// Failed reports whether a stage has produced a diagnostic.
func (c *PipelineContext) Failed() bool {
	return len(c.Errors) > 0
}

// Diagnostic returns the terminal diagnostic, or nil on success.
func (c *PipelineContext) Diagnostic() *diagnostics.DiagnosticError {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}
