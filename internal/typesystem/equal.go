package typesystem

// Equal reports structural equality, tuple labels included.
func Equal(a, b Type) bool {
	return equal(a, b, true)
}

// EqualIgnoringLabels reports structural equality with tuple labels ignored.
func EqualIgnoringLabels(a, b Type) bool {
	return equal(a, b, false)
}

func equal(a, b Type, labels bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Name == y.Name
	case TCon:
		y, ok := b.(TCon)
		return ok && x.Name == y.Name
	case TAssoc:
		y, ok := b.(TAssoc)
		return ok && x.Name == y.Name && equal(x.Base, y.Base, labels)
	case TTuple:
		y, ok := b.(TTuple)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if labels && x.Elements[i].Label != y.Elements[i].Label {
				return false
			}
			if !equal(x.Elements[i].Type, y.Elements[i].Type, labels) {
				return false
			}
		}
		return true
	case TFunc:
		y, ok := b.(TFunc)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !equal(x.Params[i], y.Params[i], labels) {
				return false
			}
		}
		return equal(x.ReturnType, y.ReturnType, labels)
	}
	return false
}

// IsGround reports whether t mentions no generic parameters.
func IsGround(t Type) bool {
	return len(t.FreeTypeVariables()) == 0
}
