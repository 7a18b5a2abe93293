package manifest

import (
	"fmt"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// Unit is a manifest turned into verifier input.
type Unit struct {
	Index    *symbols.Index
	Requests []derivative.Request
	// Expect maps candidate IDs to the diagnostic they should produce.
	// Candidates absent from the map are expected to register.
	Expect map[string]diagnostics.ErrorCode
}

// Build constructs the declaration index and the registration requests in
// declaration order.
func (m *Manifest) Build() (*Unit, error) {
	idx := symbols.NewIndex()
	if !m.NoPrelude {
		idx.LoadPrelude()
	}
	for _, t := range m.Traits {
		idx.DefineTrait(t.Name, t.Refines...)
	}
	for _, t := range m.Types {
		info := &symbols.TypeInfo{Name: t.Name, Conformances: t.Conforms}
		idx.DefineType(info)
		if tan := t.Tangent; tan != "" || idx.TypeConformsTo(t.Name, config.DifferentiableTraitName) {
			if tan == "" {
				tan = t.Name
			}
			typ, err := typesystem.ParseType(tan)
			if err != nil {
				return nil, fmt.Errorf("type %s: tangent: %w", t.Name, err)
			}
			info.Associated[config.TangentVectorName] = typ
		}
	}

	unit := &Unit{Index: idx, Expect: make(map[string]diagnostics.ErrorCode)}
	for _, d := range m.Declarations {
		decl, err := buildDecl(idx, d)
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", d.ID, err)
		}
		if err := idx.Define(decl); err != nil {
			return nil, err
		}
		if d.Attribute == nil {
			continue
		}
		attr, _ := derivative.ParseAttribute(d.Attribute.Kind)
		unit.Requests = append(unit.Requests, derivative.Request{
			Attribute: attr,
			Original:  d.Attribute.Of,
			Wrt:       d.Attribute.Wrt.Clause(),
			Candidate: d.ID,
		})
		if d.Expect != "" {
			code, _ := diagnostics.CodeByName(d.Expect)
			unit.Expect[d.ID] = code
		}
	}
	return unit, nil
}

func buildDecl(idx *symbols.Index, d Decl) (*symbols.Declaration, error) {
	decl := &symbols.Declaration{
		ID:    d.ID,
		Name:  d.Name,
		Kind:  declKind(d.Kind),
		Owner: d.Owner,
		File:  d.File,
	}

	// Identifiers parse as nominal types; generic parameters, Self and the
	// bare TangentVector of a type context are rebound here.
	bind := map[string]typesystem.Type{}
	if d.Owner != "" {
		isTrait := idx.IsTrait(d.Owner)
		if _, isType := idx.TypeInfo(d.Owner); !isTrait && !isType {
			return nil, fmt.Errorf("unknown owner %s", d.Owner)
		}
		self, sig := symbols.ImplicitSelf(d.Owner, isTrait)
		decl.SelfType = self
		decl.Generics = sig
		bind[config.SelfTypeName] = self
		bind[config.TangentVectorName] = typesystem.TAssoc{Base: self, Name: config.TangentVectorName}
	}
	own := typesystem.GenericSignature{}
	for _, g := range d.Generics {
		tv := typesystem.TVar{Name: g}
		own.Params = append(own.Params, tv)
		bind[g] = tv
	}

	parse := func(s string) (typesystem.Type, error) {
		t, err := typesystem.ParseType(s)
		if err != nil {
			return nil, err
		}
		return typesystem.ReplaceTCons(t, bind), nil
	}

	for _, r := range d.Requirements {
		reqs, err := typesystem.ParseRequirements(r)
		if err != nil {
			return nil, fmt.Errorf("requirement %q: %w", r, err)
		}
		for _, req := range reqs {
			own.Requirements = append(own.Requirements, typesystem.ReplaceRequirementTCons(req, bind))
		}
	}
	decl.Generics = decl.Generics.Merge(own)

	for _, p := range d.Params {
		label, name, typ, _ := splitParam(p)
		t, err := parse(typ)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		decl.Params = append(decl.Params, symbols.Parameter{Label: label, Name: name, Type: t})
	}
	result, err := parse(d.Result)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	decl.Result = result
	return decl, nil
}

func declKind(kind string) symbols.DeclKind {
	switch kind {
	case "static":
		return symbols.StaticMethod
	case "instance":
		return symbols.InstanceMethod
	case "property":
		return symbols.Property
	default:
		return symbols.FreeFunction
	}
}
