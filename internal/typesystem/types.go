package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/derivcheck/internal/config"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar represents a generic type parameter (e.g. 'T', 'Self').
type TVar struct {
	Name string
}

func (t TVar) String() string {
	// Parameters renamed apart during original lookup print under their
	// declared name.
	return strings.TrimPrefix(t.Name, config.OriginalVarPrefix)
}

func (t TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon represents a nominal type (e.g. Float, Double, Int).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(s Subst) Type { return t }

func (t TCon) FreeTypeVariables() []TVar { return []TVar{} }

// TAssoc represents an associated type projection (e.g. T.TangentVector).
type TAssoc struct {
	Base Type
	Name string
}

func (t TAssoc) String() string {
	return t.Base.String() + "." + t.Name
}

func (t TAssoc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TAssoc) FreeTypeVariables() []TVar {
	return t.Base.FreeTypeVariables()
}

// TupleElement is one, optionally labelled, member of a tuple type.
type TupleElement struct {
	Label string
	Type  Type
}

// TTuple represents a tuple type (e.g. (value: Float, pullback: (Float) -> Float)).
type TTuple struct {
	Elements []TupleElement
}

func (t TTuple) String() string {
	parts := make([]string, 0, len(t.Elements))
	for _, el := range t.Elements {
		if el.Label != "" {
			parts = append(parts, el.Label+": "+el.Type.String())
		} else {
			parts = append(parts, el.Type.String())
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (t TTuple) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TTuple) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, el := range t.Elements {
		vars = append(vars, el.Type.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// Types returns the element types, dropping labels.
func (t TTuple) Types() []Type {
	types := make([]Type, len(t.Elements))
	for i, el := range t.Elements {
		types[i] = el.Type
	}
	return types
}

// TFunc represents a function type (e.g. (Float, Float) -> Float).
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	params := make([]string, 0, len(t.Params))
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	ret := t.ReturnType.String()
	if _, ok := t.ReturnType.(TFunc); ok {
		ret = "(" + ret + ")"
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), ret)
}

func (t TFunc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// Void is the empty tuple.
var Void = TTuple{}

// TupleOf builds an unlabelled tuple, collapsing a single element to the
// element itself.
func TupleOf(types ...Type) Type {
	if len(types) == 1 {
		return types[0]
	}
	elems := make([]TupleElement, len(types))
	for i, t := range types {
		elems[i] = TupleElement{Type: t}
	}
	return TTuple{Elements: elems}
}

// Flatten is the inverse of TupleOf: a tuple yields its element types, any
// other type yields itself.
func Flatten(t Type) []Type {
	if tuple, ok := t.(TTuple); ok {
		return tuple.Types()
	}
	return []Type{t}
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		if visited[typ.Name] {
			return typ // Break cycle - return the variable as-is
		}
		if replacement, ok := s[typ.Name]; ok {
			if tv, ok := replacement.(TVar); ok && tv.Name == typ.Name {
				return typ
			}
			newVisited := copyVisited(visited)
			newVisited[typ.Name] = true
			return ApplyWithCycleCheck(replacement, s, newVisited)
		}
		return typ

	case TCon:
		return typ

	case TAssoc:
		return TAssoc{Base: ApplyWithCycleCheck(typ.Base, s, visited), Name: typ.Name}

	case TTuple:
		newElems := make([]TupleElement, len(typ.Elements))
		for i, e := range typ.Elements {
			newElems[i] = TupleElement{Label: e.Label, Type: ApplyWithCycleCheck(e.Type, s, visited)}
		}
		return TTuple{Elements: newElems}

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ApplyWithCycleCheck(p, s, visited)
		}
		return TFunc{
			Params:     newParams,
			ReturnType: ApplyWithCycleCheck(typ.ReturnType, s, visited),
		}

	default:
		return t.Apply(s)
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	newMap := make(map[string]bool, len(m))
	for k, v := range m {
		newMap[k] = v
	}
	return newMap
}

// Subst is a mapping from Type Variables to Types.
type Subst map[string]Type

// Compose combines two substitutions.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := Subst{}
	for k, v := range s2 {
		subst[k] = v
	}
	for k, v := range s1 {
		subst[k] = v.Apply(s2)
	}
	return subst
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}
