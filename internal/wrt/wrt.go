// Package wrt resolves the parameters a derivative is taken with respect to.
package wrt

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/tangent"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// Resolve returns the validated subset of decl's parameters. With no
// explicit items the subset is inferred: every differentiable parameter
// (preceded by self when it is differentiable) for derivatives, every
// self-tangent parameter for transposes.
func Resolve(decl *symbols.Declaration, items []derivative.WrtItem, model *tangent.Model, kind derivative.Kind) (derivative.Subset, *diagnostics.DiagnosticError) {
	subset, err := Select(decl, items, model, kind)
	if err != nil {
		return derivative.Subset{}, err
	}
	if items != nil {
		if err := Validate(decl, subset, model, kind); err != nil {
			return derivative.Subset{}, err
		}
	}
	return subset, nil
}

// Select is Resolve without validating explicit items, for callers that
// only need positions before the final generic environment is known.
func Select(decl *symbols.Declaration, items []derivative.WrtItem, model *tangent.Model, kind derivative.Kind) (derivative.Subset, *diagnostics.DiagnosticError) {
	if len(decl.Params) == 0 && !decl.HasSelf() {
		return derivative.Subset{}, diagnostics.NewError(diagnostics.ErrD014, "")
	}
	if items == nil {
		return Default(decl, model, kind)
	}
	return Positions(decl, items)
}

// Default infers the subset when no wrt clause is written.
func Default(decl *symbols.Declaration, model *tangent.Model, kind derivative.Kind) (derivative.Subset, *diagnostics.DiagnosticError) {
	var positions []int
	if kind != derivative.Transpose && decl.HasSelf() && model.IsDifferentiable(decl.SelfType) {
		positions = append(positions, derivative.SelfPosition)
	}
	for i, p := range decl.Params {
		if _, isFunc := p.Type.(typesystem.TFunc); isFunc {
			continue
		}
		if kind == derivative.Transpose {
			if model.IsSelfTangent(p.Type) {
				positions = append(positions, i)
			}
		} else if model.IsDifferentiable(p.Type) {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return derivative.Subset{}, diagnostics.NewError(diagnostics.ErrD014, "")
	}
	return derivative.NewSubset(positions...), nil
}

// Positions resolves an explicit wrt clause to parameter positions and checks
// that they are written in declaration order.
func Positions(decl *symbols.Declaration, items []derivative.WrtItem) (derivative.Subset, *diagnostics.DiagnosticError) {
	if len(items) == 0 {
		return derivative.Subset{}, diagnostics.NewError(diagnostics.ErrD014, "")
	}
	positions := make([]int, len(items))
	for i, item := range items {
		pos, err := position(decl, item)
		if err != nil {
			return derivative.Subset{}, err
		}
		positions[i] = pos
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			return derivative.Subset{}, diagnostics.NewError(diagnostics.ErrD012, "").
				WithName(items[i].String()).
				WithIndex(positions[i])
		}
	}
	return derivative.NewSubset(positions...), nil
}

func position(decl *symbols.Declaration, item derivative.WrtItem) (int, *diagnostics.DiagnosticError) {
	switch item.Kind {
	case derivative.WrtSelf:
		return selfPosition(decl)
	case derivative.WrtIndex:
		if item.Index < 0 || item.Index >= len(decl.Params) {
			return 0, diagnostics.NewError(diagnostics.ErrD011, "").WithIndex(item.Index)
		}
		return item.Index, nil
	default:
		if item.Name == config.SelfParamName {
			return selfPosition(decl)
		}
		i, ok := decl.ParamIndex(item.Name)
		if !ok {
			return 0, diagnostics.NewError(diagnostics.ErrD010, "").WithName(item.Name)
		}
		return i, nil
	}
}

func selfPosition(decl *symbols.Declaration) (int, *diagnostics.DiagnosticError) {
	if !decl.HasSelf() {
		return 0, diagnostics.NewError(diagnostics.ErrD013, "").WithName(config.SelfParamName)
	}
	return derivative.SelfPosition, nil
}

// Validate checks every parameter of subset can be differentiated: it must
// not have a function type and must be Differentiable, or self-tangent for
// transposes.
func Validate(decl *symbols.Declaration, subset derivative.Subset, model *tangent.Model, kind derivative.Kind) *diagnostics.DiagnosticError {
	for _, pos := range subset.Positions {
		name, typ := config.SelfParamName, decl.SelfType
		if pos != derivative.SelfPosition {
			name, typ = decl.Params[pos].Name, decl.Params[pos].Type
		}
		fail := func(code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
			err := diagnostics.NewError(code, "").WithName(name)
			err.Actual = typ
			if pos != derivative.SelfPosition {
				err.WithIndex(pos)
			}
			return err
		}
		if _, isFunc := typ.(typesystem.TFunc); isFunc {
			return fail(diagnostics.ErrD016)
		}
		if kind == derivative.Transpose {
			if !model.IsSelfTangent(typ) {
				return fail(diagnostics.ErrD017)
			}
			continue
		}
		if !model.IsDifferentiable(typ) {
			return fail(diagnostics.ErrD015)
		}
	}
	return nil
}

// Types returns the types of the parameters in subset, self first.
func Types(decl *symbols.Declaration, subset derivative.Subset) []typesystem.Type {
	types := make([]typesystem.Type, 0, subset.Len())
	for _, pos := range subset.Positions {
		if pos == derivative.SelfPosition {
			types = append(types, decl.SelfType)
		} else {
			types = append(types, decl.Params[pos].Type)
		}
	}
	return types
}

// Remaining returns the types of the parameters not in subset, in order.
func Remaining(decl *symbols.Declaration, subset derivative.Subset) []typesystem.Type {
	var types []typesystem.Type
	for i, p := range decl.Params {
		if !subset.Contains(i) {
			types = append(types, p.Type)
		}
	}
	return types
}
