package typesystem

import (
	"fmt"
	"strings"
)

type RequirementKind int

const (
	Conformance RequirementKind = iota // T: Trait
	SameType                           // T == U
)

// Requirement is a single generic constraint (e.g. T: Differentiable or
// T == T.TangentVector).
type Requirement struct {
	Kind    RequirementKind
	Subject Type
	Trait   string // For Conformance
	Other   Type   // For SameType
}

// ConformsTo builds a conformance requirement.
func ConformsTo(subject Type, trait string) Requirement {
	return Requirement{Kind: Conformance, Subject: subject, Trait: trait}
}

// SameTypeAs builds a same-type requirement.
func SameTypeAs(subject, other Type) Requirement {
	return Requirement{Kind: SameType, Subject: subject, Other: other}
}

func (r Requirement) String() string {
	if r.Kind == SameType {
		return fmt.Sprintf("%s == %s", r.Subject, r.Other)
	}
	return fmt.Sprintf("%s: %s", r.Subject, r.Trait)
}

func (r Requirement) Apply(s Subst) Requirement {
	r.Subject = r.Subject.Apply(s)
	if r.Other != nil {
		r.Other = r.Other.Apply(s)
	}
	return r
}

// GenericSignature is the list of generic parameters of a declaration plus
// the requirements placed on them.
type GenericSignature struct {
	Params       []TVar
	Requirements []Requirement
}

// IsEmpty reports whether the signature declares no generic parameters.
func (g GenericSignature) IsEmpty() bool {
	return len(g.Params) == 0
}

// Apply substitutes into every requirement. Parameters substituted with
// another variable are renamed; parameters bound to anything else are dropped.
func (g GenericSignature) Apply(s Subst) GenericSignature {
	out := GenericSignature{}
	for _, p := range g.Params {
		switch r := p.Apply(s).(type) {
		case TVar:
			out.Params = append(out.Params, r)
		}
	}
	for _, req := range g.Requirements {
		out.Requirements = append(out.Requirements, req.Apply(s))
	}
	return out
}

// Merge returns a signature holding the parameters and requirements of both.
func (g GenericSignature) Merge(other GenericSignature) GenericSignature {
	out := GenericSignature{
		Params:       append([]TVar{}, g.Params...),
		Requirements: append([]Requirement{}, g.Requirements...),
	}
	seen := map[string]bool{}
	for _, p := range out.Params {
		seen[p.Name] = true
	}
	for _, p := range other.Params {
		if !seen[p.Name] {
			seen[p.Name] = true
			out.Params = append(out.Params, p)
		}
	}
	out.Requirements = append(out.Requirements, other.Requirements...)
	return out
}

func (g GenericSignature) String() string {
	if g.IsEmpty() && len(g.Requirements) == 0 {
		return ""
	}
	names := make([]string, len(g.Params))
	for i, p := range g.Params {
		names[i] = p.String()
	}
	if len(g.Requirements) == 0 {
		return "<" + strings.Join(names, ", ") + ">"
	}
	reqs := make([]string, len(g.Requirements))
	for i, r := range g.Requirements {
		reqs[i] = r.String()
	}
	return fmt.Sprintf("<%s where %s>", strings.Join(names, ", "), strings.Join(reqs, ", "))
}
