package symbols

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// LoadPrelude registers the standard traits and the builtin numeric types.
// Float and Double are their own tangent vectors; Int and Bool are not
// differentiable.
func (idx *Index) LoadPrelude() {
	idx.DefineTrait(config.DifferentiableTraitName)
	idx.DefineTrait("Equatable")
	idx.DefineTrait(config.AdditiveArithmeticTraitName, "Equatable")
	idx.DefineTrait("Numeric", config.AdditiveArithmeticTraitName)
	idx.DefineTrait("SignedNumeric", "Numeric")
	idx.DefineTrait("FloatingPoint", "SignedNumeric")
	idx.DefineTrait("BinaryFloatingPoint", "FloatingPoint")
	idx.DefineTrait("BinaryInteger", "Numeric")
	idx.DefineTrait("VectorProtocol", config.AdditiveArithmeticTraitName)

	for _, name := range []string{"Float", "Double"} {
		idx.DefineType(&TypeInfo{
			Name:         name,
			Conformances: []string{config.DifferentiableTraitName, "BinaryFloatingPoint"},
			Associated:   map[string]typesystem.Type{config.TangentVectorName: typesystem.TCon{Name: name}},
		})
	}
	idx.DefineType(&TypeInfo{Name: "Int", Conformances: []string{"BinaryInteger"}})
	idx.DefineType(&TypeInfo{Name: "Bool", Conformances: []string{"Equatable"}})
}
