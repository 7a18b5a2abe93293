package typesystem

// ReplaceTCon replaces all occurrences of TCon with the given name with the replacement type.
// Declarations are parsed with every identifier as a TCon; this is how generic
// parameters and the implicit Self are bound afterwards.
func ReplaceTCon(t Type, name string, replacement Type) Type {
	return ReplaceTCons(t, map[string]Type{name: replacement})
}

// ReplaceTCons is ReplaceTCon over several names at once.
func ReplaceTCons(t Type, replacements map[string]Type) Type {
	if t == nil || len(replacements) == 0 {
		return t
	}
	switch typ := t.(type) {
	case TCon:
		if r, ok := replacements[typ.Name]; ok {
			return r
		}
		return typ
	case TAssoc:
		return TAssoc{Base: ReplaceTCons(typ.Base, replacements), Name: typ.Name}
	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ReplaceTCons(p, replacements)
		}
		return TFunc{
			Params:     newParams,
			ReturnType: ReplaceTCons(typ.ReturnType, replacements),
		}
	case TTuple:
		newElements := make([]TupleElement, len(typ.Elements))
		for i, e := range typ.Elements {
			newElements[i] = TupleElement{Label: e.Label, Type: ReplaceTCons(e.Type, replacements)}
		}
		return TTuple{Elements: newElements}
	default:
		return t
	}
}

// ReplaceRequirementTCons applies ReplaceTCons to both sides of a requirement.
func ReplaceRequirementTCons(r Requirement, replacements map[string]Type) Requirement {
	r.Subject = ReplaceTCons(r.Subject, replacements)
	if r.Other != nil {
		r.Other = ReplaceTCons(r.Other, replacements)
	}
	return r
}
