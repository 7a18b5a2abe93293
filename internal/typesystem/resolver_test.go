package typesystem

// testResolver is a minimal nominal world: Float and Double are their own
// tangent vectors, Int is not differentiable.
type testResolver struct {
	conforms map[string][]string
	refines  map[string][]string
	assoc    map[string]Type
}

func newTestResolver() *testResolver {
	return &testResolver{
		conforms: map[string][]string{
			"Float":  {"Differentiable", "BinaryFloatingPoint"},
			"Double": {"Differentiable", "BinaryFloatingPoint"},
			"Int":    {"BinaryInteger"},
		},
		refines: map[string][]string{
			"BinaryFloatingPoint": {"FloatingPoint"},
			"FloatingPoint":       {"AdditiveArithmetic"},
			"BinaryInteger":       {"AdditiveArithmetic"},
		},
		assoc: map[string]Type{
			"Float.TangentVector":  TCon{Name: "Float"},
			"Double.TangentVector": TCon{Name: "Double"},
		},
	}
}

func (r *testResolver) TypeConformsTo(typeName, trait string) bool {
	for _, c := range r.conforms[typeName] {
		if r.TraitRefines(c, trait) {
			return true
		}
	}
	return false
}

func (r *testResolver) TraitRefines(sub, super string) bool {
	if sub == super {
		return true
	}
	for _, s := range r.refines[sub] {
		if r.TraitRefines(s, super) {
			return true
		}
	}
	return false
}

func (r *testResolver) AssociatedType(typeName, assoc string) (Type, bool) {
	t, ok := r.assoc[typeName+"."+assoc]
	return t, ok
}
