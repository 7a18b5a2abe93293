package synth

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/tangent"
	"github.com/funvibe/derivcheck/internal/typesystem"
	"github.com/funvibe/derivcheck/internal/wrt"
)

// Expected is the synthesized shape of a derivative.
type Expected struct {
	Value typesystem.Type // Original result, nil for transposes
	// Linear is the pullback or differential type; for transposes the whole
	// expected function type, curried over self for methods.
	Linear typesystem.Type
}

// Synthesize builds the expected derivative of original with respect to
// subset. original must already be specialized to model's environment and
// subset validated against it.
func Synthesize(original *symbols.Declaration, subset derivative.Subset, kind derivative.Kind, model *tangent.Model) (Expected, *diagnostics.DiagnosticError) {
	resultTan, ok := model.TangentType(original.Result)
	if !ok {
		code := diagnostics.ErrD022
		if kind == derivative.Transpose {
			code = diagnostics.ErrD026
		}
		return Expected{}, diagnostics.NewError(code, "").WithTypes(nil, original.Result)
	}

	wrtTypes := wrt.Types(original, subset)
	tangents, at, ok := model.Tangents(wrtTypes)
	if !ok {
		err := diagnostics.NewError(diagnostics.ErrD015, "").WithTypes(nil, wrtTypes[at])
		if pos := subset.Positions[at]; pos != derivative.SelfPosition {
			err.WithName(original.Params[pos].Name).WithIndex(pos)
		} else {
			err.WithName(config.SelfParamName)
		}
		return Expected{}, err
	}

	switch kind {
	case derivative.Pullback:
		return Expected{
			Value:  original.Result,
			Linear: typesystem.TFunc{Params: []typesystem.Type{resultTan}, ReturnType: typesystem.TupleOf(tangents...)},
		}, nil
	case derivative.Differential:
		return Expected{
			Value:  original.Result,
			Linear: typesystem.TFunc{Params: tangents, ReturnType: resultTan},
		}, nil
	}

	// Transpose: the differentiated parameters become results and the
	// result tangent becomes the cotangent argument.
	params := wrt.Remaining(original, subset)
	var self typesystem.Type
	if subset.HasSelf() {
		self = resultTan
	} else {
		params = append(params, resultTan)
		self = original.SelfType
	}
	var t typesystem.Type = typesystem.TFunc{Params: params, ReturnType: typesystem.TupleOf(wrtTypes...)}
	if self != nil && (subset.HasSelf() || original.HasSelf()) {
		t = curry(self, t)
	}
	return Expected{Linear: t}, nil
}

// DeclaredTranspose is the candidate's type in the form Synthesize produces
// for transposes.
func DeclaredTranspose(cand *symbols.Declaration) typesystem.Type {
	var t typesystem.Type = cand.FunctionType()
	if cand.HasSelf() {
		t = curry(cand.SelfType, t)
	}
	return t
}

func curry(self, t typesystem.Type) typesystem.Type {
	return typesystem.TFunc{Params: []typesystem.Type{self}, ReturnType: t}
}
