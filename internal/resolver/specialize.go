package resolver

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// renameApart maps every generic parameter of sig to a fresh variable so the
// original's T never collides with the candidate's T. The fresh names are the
// flexible variables of matching.
func renameApart(sig typesystem.GenericSignature) (typesystem.Subst, map[string]bool) {
	rename := typesystem.Subst{}
	flexible := map[string]bool{}
	for _, p := range sig.Params {
		fresh := config.OriginalVarPrefix + p.Name
		rename[p.Name] = typesystem.TVar{Name: fresh}
		flexible[fresh] = true
	}
	return rename, flexible
}

// specialize rewrites d into the candidate's terms: renamed apart, then
// instantiated with the bindings found by matching.
func specialize(d *symbols.Declaration, rename, s typesystem.Subst) *symbols.Declaration {
	at := func(t typesystem.Type) typesystem.Type {
		if t == nil {
			return nil
		}
		return t.Apply(rename).Apply(s)
	}
	out := *d
	out.SelfType = at(d.SelfType)
	out.Result = at(d.Result)
	out.Params = make([]symbols.Parameter, len(d.Params))
	for i, p := range d.Params {
		out.Params[i] = symbols.Parameter{Label: p.Label, Name: p.Name, Type: at(p.Type)}
	}
	out.Generics = d.Generics.Apply(rename).Apply(s)
	return &out
}
