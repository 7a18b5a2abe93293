package typesystem

import (
	"strings"

	"github.com/funvibe/derivcheck/internal/config"
)

// Resolver interface allows an Env to look up facts about nominal types and
// traits (e.g. from the declaration index) that are not expressed as
// requirements of the signature itself.
type Resolver interface {
	// TypeConformsTo reports whether the nominal type conforms to trait,
	// directly or through a refinement.
	TypeConformsTo(typeName, trait string) bool
	// TraitRefines reports whether sub is super or refines it transitively.
	TraitRefines(sub, super string) bool
	// AssociatedType returns the binding of an associated type of a nominal type.
	AssociatedType(typeName, assoc string) (Type, bool)
}

const maxRewriteDepth = 64

// Env is a generic environment: a signature whose same-type requirements have
// been turned into a rewrite system, so that two types can be compared modulo
// the requirements in scope.
type Env struct {
	sig      GenericSignature
	resolver Resolver
	reps     map[string]Type // term key -> representative of its class
	conflict *Requirement
}

// NewEnv builds the environment for sig. A nil resolver knows no nominal
// conformances.
func NewEnv(sig GenericSignature, resolver Resolver) *Env {
	e := &Env{sig: sig, resolver: resolver, reps: make(map[string]Type)}
	e.build()
	return e
}

// Signature returns the signature the environment was built from.
func (e *Env) Signature() GenericSignature {
	return e.sig
}

func (e *Env) build() {
	for round := 0; round <= len(e.sig.Requirements); round++ {
		changed := false
		for _, req := range e.sig.Requirements {
			if req.Kind != SameType {
				continue
			}
			l, r := e.Canonical(req.Subject), e.Canonical(req.Other)
			if Equal(l, r) {
				continue
			}
			if IsGround(l) && IsGround(r) {
				e.recordConflict(req)
				continue
			}
			from, to := l, r
			if less(l, r) {
				from, to = r, l
			}
			if mentions(to, from) {
				e.recordConflict(req)
				continue
			}
			e.reps[typeKey(from)] = to
			changed = true
		}
		if !changed {
			break
		}
	}

	for _, req := range e.sig.Requirements {
		if req.Kind != Conformance {
			continue
		}
		subject := e.Canonical(req.Subject)
		if IsGround(subject) && !e.ConformsTo(subject, req.Trait) {
			e.recordConflict(req)
		}
	}
}

func (e *Env) recordConflict(req Requirement) {
	if e.conflict == nil {
		c := req
		e.conflict = &c
	}
}

// Conflict returns the first requirement that contradicts the others, e.g.
// equating two distinct nominal types or binding a parameter to a type that
// lacks a conformance required of it.
func (e *Env) Conflict() (Requirement, bool) {
	if e.conflict == nil {
		return Requirement{}, false
	}
	return *e.conflict, true
}

// Canonical rewrites t to the representative of its equivalence class under
// the signature's same-type requirements, resolving associated types of
// nominal types along the way.
func (e *Env) Canonical(t Type) Type {
	return e.canonical(t, 0)
}

func (e *Env) canonical(t Type, depth int) Type {
	if t == nil || depth > maxRewriteDepth {
		return t
	}
	switch typ := t.(type) {
	case TTuple:
		elems := make([]TupleElement, len(typ.Elements))
		for i, el := range typ.Elements {
			elems[i] = TupleElement{Label: el.Label, Type: e.canonical(el.Type, depth+1)}
		}
		return TTuple{Elements: elems}
	case TFunc:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = e.canonical(p, depth+1)
		}
		return TFunc{Params: params, ReturnType: e.canonical(typ.ReturnType, depth+1)}
	case TAssoc:
		base := e.canonical(typ.Base, depth+1)
		// X.TangentVector.TangentVector == X.TangentVector
		if inner, ok := base.(TAssoc); ok && inner.Name == config.TangentVectorName && typ.Name == config.TangentVectorName {
			return inner
		}
		if con, ok := base.(TCon); ok && e.resolver != nil {
			if bound, ok := e.resolver.AssociatedType(con.Name, typ.Name); ok {
				return e.canonical(bound, depth+1)
			}
		}
		t = TAssoc{Base: base, Name: typ.Name}
	}
	if rep, ok := e.reps[typeKey(t)]; ok {
		return e.canonical(rep, depth+1)
	}
	return t
}

// Same reports whether a and b are equal under the environment. Tuple labels
// are not significant.
func (e *Env) Same(a, b Type) bool {
	return EqualIgnoringLabels(e.Canonical(a), e.Canonical(b))
}

// ConformsTo reports whether the environment implies t: trait.
func (e *Env) ConformsTo(t Type, trait string) bool {
	c := e.Canonical(t)
	switch typ := c.(type) {
	case TCon:
		return e.resolver != nil && e.resolver.TypeConformsTo(typ.Name, trait)
	case TFunc:
		return false
	case TTuple:
		if len(typ.Elements) == 0 || !structural(trait) {
			return false
		}
		for _, el := range typ.Elements {
			if !e.ConformsTo(el.Type, trait) {
				return false
			}
		}
		return true
	}

	for _, req := range e.sig.Requirements {
		if req.Kind != Conformance || !e.refines(req.Trait, trait) {
			continue
		}
		if EqualIgnoringLabels(e.Canonical(req.Subject), c) {
			return true
		}
	}
	// Base: Differentiable implies Base.TangentVector: Differentiable & AdditiveArithmetic.
	if assoc, ok := c.(TAssoc); ok && assoc.Name == config.TangentVectorName {
		if (e.refines(config.DifferentiableTraitName, trait) || e.refines(config.AdditiveArithmeticTraitName, trait)) &&
			e.ConformsTo(assoc.Base, config.DifferentiableTraitName) {
			return true
		}
	}
	return false
}

func (e *Env) refines(sub, super string) bool {
	if sub == super {
		return true
	}
	return e.resolver != nil && e.resolver.TraitRefines(sub, super)
}

// structural traits are the ones a tuple inherits from its elements.
func structural(trait string) bool {
	return trait == config.DifferentiableTraitName || trait == config.AdditiveArithmeticTraitName
}

// Implies reports whether the environment entails req.
func (e *Env) Implies(req Requirement) bool {
	if req.Kind == SameType {
		return e.Same(req.Subject, req.Other)
	}
	return e.ConformsTo(req.Subject, req.Trait)
}

// FirstUnsatisfied returns the first requirement in reqs the environment does
// not entail. An environment subsumes a signature when this finds nothing.
func (e *Env) FirstUnsatisfied(reqs []Requirement) (Requirement, bool) {
	for _, req := range reqs {
		if !e.Implies(req) {
			return req, true
		}
	}
	return Requirement{}, false
}

// Subsumes reports whether every requirement of other holds in e.
func (e *Env) Subsumes(other GenericSignature) bool {
	_, missing := e.FirstUnsatisfied(other.Requirements)
	return !missing
}

// Match finds bindings for the flexible variables of pattern such that the
// instantiated pattern equals target under e. Bindings already in s are
// honoured; s itself is not modified.
func (e *Env) Match(pattern, target Type, flexible map[string]bool, s Subst) (Subst, error) {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	want := e.Canonical(target)
	if !e.bind(pattern, want, flexible, out) {
		return nil, &MismatchError{Expected: pattern.Apply(out), Actual: target}
	}
	got := e.Canonical(pattern.Apply(out))
	if !EqualIgnoringLabels(got, want) {
		return nil, &MismatchError{Expected: got, Actual: target}
	}
	return out, nil
}

// bind walks pattern and target in parallel, recording the first binding of
// every flexible variable. Associated type projections are skipped; the
// final comparison in Match checks them once their bases are bound.
func (e *Env) bind(p, t Type, flexible map[string]bool, s Subst) bool {
	switch pt := p.(type) {
	case TVar:
		if !flexible[pt.Name] {
			return true
		}
		if bound, ok := s[pt.Name]; ok {
			return e.Same(bound, t)
		}
		s[pt.Name] = t
		return true
	case TTuple:
		tt, ok := t.(TTuple)
		if !ok || len(tt.Elements) != len(pt.Elements) {
			return false
		}
		for i := range pt.Elements {
			if !e.bind(pt.Elements[i].Type, tt.Elements[i].Type, flexible, s) {
				return false
			}
		}
		return true
	case TFunc:
		tf, ok := t.(TFunc)
		if !ok || len(tf.Params) != len(pt.Params) {
			return false
		}
		for i := range pt.Params {
			if !e.bind(pt.Params[i], tf.Params[i], flexible, s) {
				return false
			}
		}
		return e.bind(pt.ReturnType, tf.ReturnType, flexible, s)
	}
	return true
}

// less orders terms so that rewriting always moves towards nominal types,
// then parameters, then projections.
func less(a, b Type) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	return typeKey(a) < typeKey(b)
}

func rank(t Type) int {
	switch typ := t.(type) {
	case TCon:
		return 0
	case TVar:
		return 1
	case TAssoc:
		return 2 + rank(typ.Base)
	default:
		if IsGround(t) {
			return 0
		}
		return 100 + len(typeKey(t))
	}
}

func mentions(t, sub Type) bool {
	if Equal(t, sub) {
		return true
	}
	switch typ := t.(type) {
	case TAssoc:
		return mentions(typ.Base, sub)
	case TTuple:
		for _, el := range typ.Elements {
			if mentions(el.Type, sub) {
				return true
			}
		}
	case TFunc:
		for _, p := range typ.Params {
			if mentions(p, sub) {
				return true
			}
		}
		return mentions(typ.ReturnType, sub)
	}
	return false
}

// typeKey is String without display normalisation, so renamed parameters
// never collide with the ones they were renamed apart from.
func typeKey(t Type) string {
	var b strings.Builder
	writeKey(&b, t)
	return b.String()
}

func writeKey(b *strings.Builder, t Type) {
	switch typ := t.(type) {
	case TVar:
		b.WriteString("'")
		b.WriteString(typ.Name)
	case TCon:
		b.WriteString(typ.Name)
	case TAssoc:
		writeKey(b, typ.Base)
		b.WriteString(".")
		b.WriteString(typ.Name)
	case TTuple:
		b.WriteString("(")
		for i, el := range typ.Elements {
			if i > 0 {
				b.WriteString(",")
			}
			writeKey(b, el.Type)
		}
		b.WriteString(")")
	case TFunc:
		b.WriteString("(")
		for i, p := range typ.Params {
			if i > 0 {
				b.WriteString(",")
			}
			writeKey(b, p)
		}
		b.WriteString(")->")
		writeKey(b, typ.ReturnType)
	}
}
