// Package tangent answers the two questions the verifier asks about the
// tangent space of a type: what its tangent type is, and whether that
// tangent type is the type itself.
package tangent

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// Model evaluates tangent-space facts under one generic environment.
type Model struct {
	env *typesystem.Env
}

func New(env *typesystem.Env) *Model {
	return &Model{env: env}
}

// Env returns the environment the model reasons in.
func (m *Model) Env() *typesystem.Env {
	return m.env
}

// IsDifferentiable reports whether t conforms to Differentiable. Function
// types never do.
func (m *Model) IsDifferentiable(t typesystem.Type) bool {
	return m.env.ConformsTo(t, config.DifferentiableTraitName)
}

// TangentType returns the canonical tangent type of t, or false when t is not
// Differentiable. The tangent of a tuple is the tuple of element tangents.
func (m *Model) TangentType(t typesystem.Type) (typesystem.Type, bool) {
	c := m.env.Canonical(t)
	switch typ := c.(type) {
	case typesystem.TFunc:
		return nil, false
	case typesystem.TTuple:
		if len(typ.Elements) == 0 {
			return nil, false
		}
		elems := make([]typesystem.TupleElement, len(typ.Elements))
		for i, el := range typ.Elements {
			tan, ok := m.TangentType(el.Type)
			if !ok {
				return nil, false
			}
			elems[i] = typesystem.TupleElement{Label: el.Label, Type: tan}
		}
		return typesystem.TTuple{Elements: elems}, true
	}
	if !m.IsDifferentiable(c) {
		return nil, false
	}
	return m.env.Canonical(typesystem.TAssoc{Base: c, Name: config.TangentVectorName}), true
}

// IsSelfTangent reports whether t is Differentiable and its tangent type is
// t itself under the active requirements.
func (m *Model) IsSelfTangent(t typesystem.Type) bool {
	tan, ok := m.TangentType(t)
	if !ok {
		return false
	}
	return typesystem.EqualIgnoringLabels(tan, m.env.Canonical(t))
}

// Tangents maps types to their tangents. It stops at the first type without
// a tangent and returns its index.
func (m *Model) Tangents(types []typesystem.Type) ([]typesystem.Type, int, bool) {
	tangents := make([]typesystem.Type, len(types))
	for i, t := range types {
		tan, ok := m.TangentType(t)
		if !ok {
			return nil, i, false
		}
		tangents[i] = tan
	}
	return tangents, -1, true
}
