package synth

import (
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/tangent"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// Compare checks cand against the derivative synthesized from original.
// Checks run in a fixed order and the first violation is returned: the value
// type, then the pullback, differential or transpose type, then the generic
// requirements.
func Compare(cand, original *symbols.Declaration, subset derivative.Subset, kind derivative.Kind, model *tangent.Model) *diagnostics.DiagnosticError {
	env := model.Env()
	want, err := Synthesize(original, subset, kind, model)
	if err != nil {
		err.Decl = cand.ID
		return err
	}

	if kind == derivative.Transpose {
		got := DeclaredTranspose(cand)
		if !env.Same(want.Linear, got) {
			return diagnostics.NewError(diagnostics.ErrD024, cand.ID).WithTypes(env.Canonical(want.Linear), got)
		}
		return CheckGenerics(cand, original, env)
	}

	tuple := cand.Result.(typesystem.TTuple)
	value, linear := tuple.Elements[0], tuple.Elements[1]
	if !env.Same(want.Value, value.Type) {
		return diagnostics.NewError(diagnostics.ErrD023, cand.ID).WithTypes(env.Canonical(want.Value), value.Type)
	}
	if !env.Same(want.Linear, linear.Type) {
		return diagnostics.NewError(diagnostics.ErrD024, cand.ID).
			WithName(linear.Label).
			WithTypes(env.Canonical(want.Linear), linear.Type)
	}
	return CheckGenerics(cand, original, env)
}

// CheckGenerics requires the candidate environment to entail every
// requirement of the specialized original and to be free of contradictions.
func CheckGenerics(cand, original *symbols.Declaration, env *typesystem.Env) *diagnostics.DiagnosticError {
	if req, missing := env.FirstUnsatisfied(original.Generics.Requirements); missing {
		return diagnostics.NewError(diagnostics.ErrD025, cand.ID).WithRequirement(req)
	}
	if req, conflict := env.Conflict(); conflict {
		return diagnostics.NewError(diagnostics.ErrD025, cand.ID).WithRequirement(req)
	}
	return nil
}
