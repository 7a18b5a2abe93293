// Package synth synthesizes the type a derivative must have and compares it
// with the declared one.
package synth

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/tangent"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// CheckShape validates the parts of a candidate that do not depend on its
// original and infers the derivative kind.
//
// A differentiating candidate returns (value: T, pullback: ...) or
// (value: T, differential: ...) with a Differentiable T. A transposing
// candidate takes a Differentiable cotangent: self when wrt names self,
// otherwise its last parameter.
func CheckShape(cand *symbols.Declaration, attr derivative.Attribute, wrtItems []derivative.WrtItem, model *tangent.Model) (derivative.Kind, *diagnostics.DiagnosticError) {
	if attr == derivative.Transposing {
		return derivative.Transpose, checkTransposeShape(cand, wrtItems, model)
	}

	tuple, ok := cand.Result.(typesystem.TTuple)
	if !ok || len(tuple.Elements) != 2 {
		return 0, diagnostics.NewError(diagnostics.ErrD020, cand.ID).WithTypes(nil, cand.Result)
	}
	value, second := tuple.Elements[0], tuple.Elements[1]
	if value.Label != config.ValueLabel {
		return 0, diagnostics.NewError(diagnostics.ErrD021, cand.ID).WithName(value.Label).WithIndex(0)
	}

	var kind derivative.Kind
	switch second.Label {
	case config.PullbackLabel:
		kind = derivative.Pullback
	case config.DifferentialLabel:
		kind = derivative.Differential
	default:
		return 0, diagnostics.NewError(diagnostics.ErrD021, cand.ID).WithName(second.Label).WithIndex(1)
	}

	if !model.IsDifferentiable(value.Type) {
		return 0, diagnostics.NewError(diagnostics.ErrD022, cand.ID).WithTypes(nil, value.Type)
	}
	return kind, nil
}

func checkTransposeShape(cand *symbols.Declaration, wrtItems []derivative.WrtItem, model *tangent.Model) *diagnostics.DiagnosticError {
	var cotangent typesystem.Type
	if wrtHasSelf(wrtItems) {
		if !cand.HasSelf() {
			return diagnostics.NewError(diagnostics.ErrD020, cand.ID).WithName(config.SelfParamName)
		}
		cotangent = cand.SelfType
	} else {
		if len(cand.Params) == 0 {
			return diagnostics.NewError(diagnostics.ErrD020, cand.ID).WithTypes(nil, cand.FunctionType())
		}
		cotangent = cand.Params[len(cand.Params)-1].Type
	}
	if !model.IsDifferentiable(cotangent) {
		return diagnostics.NewError(diagnostics.ErrD026, cand.ID).WithTypes(nil, cotangent)
	}
	return nil
}

func wrtHasSelf(items []derivative.WrtItem) bool {
	for _, item := range items {
		if item.Kind == derivative.WrtSelf || (item.Kind == derivative.WrtName && item.Name == config.SelfParamName) {
			return true
		}
	}
	return false
}
