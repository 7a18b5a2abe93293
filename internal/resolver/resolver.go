// Package resolver finds the original declaration a derivative refers to.
package resolver

import (
	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/tangent"
	"github.com/funvibe/derivcheck/internal/typesystem"
	"github.com/funvibe/derivcheck/internal/wrt"
)

// Resolution is the original chosen for a candidate, together with the
// bindings that specialize it to the candidate's generic environment.
type Resolution struct {
	Original    *symbols.Declaration
	Specialized *symbols.Declaration
	Subst       typesystem.Subst

	// Set for transposes, whose parameter shape depends on the subset.
	Subset       derivative.Subset
	SubsetSolved bool
}

// Resolver matches derivative candidates against the declaration index.
type Resolver struct {
	idx  *symbols.Index
	opts config.Options
}

func New(idx *symbols.Index, opts config.Options) *Resolver {
	return &Resolver{idx: idx, opts: opts}
}

// match is one viable original.
type match struct {
	decl     *symbols.Declaration
	subst    typesystem.Subst
	rename   typesystem.Subst
	resultOK bool
	subset   derivative.Subset
}

// Resolve finds the unique original for cand. env is the candidate's generic
// environment; items is the explicit wrt clause, nil when inferred.
func (r *Resolver) Resolve(ref Ref, cand *symbols.Declaration, env *typesystem.Env, kind derivative.Kind, items []derivative.WrtItem) (*Resolution, *diagnostics.DiagnosticError) {
	decls, inTypeContext := r.lookup(ref, cand)
	if len(decls) == 0 {
		err := diagnostics.NewError(diagnostics.ErrD001, cand.ID).WithName(ref.String())
		err.InTypeContext = inTypeContext
		return nil, err
	}

	var viable []match
	var firstWrtErr *diagnostics.DiagnosticError
	wrtFailures := 0
	for _, d := range decls {
		m, wrtErr := r.try(d, cand, env, kind, items)
		if wrtErr != nil {
			wrtFailures++
			if firstWrtErr == nil {
				firstWrtErr = wrtErr
			}
		}
		if m != nil {
			viable = append(viable, *m)
		}
	}

	if len(viable) == 0 {
		// The subset is meaningless for every declaration: report why.
		if wrtFailures == len(decls) {
			firstWrtErr.Decl = cand.ID
			firstWrtErr.Original = decls[0].ID
			return nil, firstWrtErr
		}
		err := diagnostics.NewError(diagnostics.ErrD001, cand.ID).
			WithName(ref.String()).
			WithTypes(expectedOriginalType(cand, kind), nil).
			WithGenerics(cand.Generics)
		err.Candidates = declIDs(decls)
		return nil, err
	}

	best, ambiguous := rank(viable)
	if ambiguous != nil {
		err := diagnostics.NewError(diagnostics.ErrD002, cand.ID).WithName(ref.String())
		err.Candidates = ambiguous
		return nil, err
	}

	if r.opts.RequireSameFile && best.decl.File != cand.File {
		err := diagnostics.NewError(diagnostics.ErrD003, cand.ID).WithOriginal(best.decl.ID)
		err.File = best.decl.File
		return nil, err
	}

	return &Resolution{
		Original:     best.decl,
		Specialized:  specialize(best.decl, best.rename, best.subst),
		Subst:        best.subst,
		Subset:       best.subset,
		SubsetSolved: kind == derivative.Transpose,
	}, nil
}

// lookup returns the declarations ref may denote. Unqualified references
// from a type context see that context's members before free functions.
func (r *Resolver) lookup(ref Ref, cand *symbols.Declaration) ([]*symbols.Declaration, bool) {
	var decls []*symbols.Declaration
	inTypeContext := false
	switch {
	case ref.Owner != "":
		decls = r.idx.FindMember(ref.Owner, ref.Name)
	case cand.Owner != "":
		decls = r.idx.FindMember(cand.Owner, ref.Name)
		if len(filter(decls, ref, cand)) == 0 {
			inTypeContext = true
			decls = r.idx.FindCandidates(ref.Name)
		}
	default:
		decls = r.idx.FindCandidates(ref.Name)
	}
	return filter(decls, ref, cand), inTypeContext
}

func filter(decls []*symbols.Declaration, ref Ref, cand *symbols.Declaration) []*symbols.Declaration {
	var out []*symbols.Declaration
	for _, d := range decls {
		if d.ID == cand.ID || !ref.matchesLabels(d.Labels()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// try checks whether d can be the original of cand. The returned diagnostic
// reports why the transpose subset could not be selected on d.
func (r *Resolver) try(d, cand *symbols.Declaration, env *typesystem.Env, kind derivative.Kind, items []derivative.WrtItem) (*match, *diagnostics.DiagnosticError) {
	rename, flexible := renameApart(d.Generics)
	at := func(t typesystem.Type) typesystem.Type {
		if t == nil {
			return nil
		}
		return t.Apply(rename)
	}

	m := &match{decl: d, rename: rename}
	var patterns, targets []typesystem.Type
	var extraPatterns, extraTargets []typesystem.Type

	if kind == derivative.Transpose {
		own := tangent.New(typesystem.NewEnv(d.Generics, r.idx))
		subset, err := wrt.Select(d, items, own, kind)
		if err != nil {
			return nil, err
		}
		m.subset = subset
		remaining := wrt.Remaining(d, subset)
		wrtTypes := wrt.Types(d, subset)
		if subset.HasSelf() {
			// self of the transpose is the cotangent.
			if !cand.HasSelf() || len(cand.Params) != len(remaining) {
				return nil, nil
			}
			patterns, targets = mapTypes(remaining, at), cand.ParamTypes()
			extraPatterns = append(extraPatterns, at(d.Result))
			extraTargets = append(extraTargets, cand.SelfType)
		} else {
			if cand.HasSelf() != d.HasSelf() || len(cand.Params) != len(remaining)+1 {
				return nil, nil
			}
			n := len(cand.Params) - 1
			patterns, targets = mapTypes(remaining, at), cand.ParamTypes()[:n]
			if d.SelfType != nil && cand.SelfType != nil {
				patterns = append(patterns, at(d.SelfType))
				targets = append(targets, cand.SelfType)
			}
			extraPatterns = append(extraPatterns, at(d.Result))
			extraTargets = append(extraTargets, cand.Params[n].Type)
		}
		extraPatterns = append(extraPatterns, typesystem.TupleOf(mapTypes(wrtTypes, at)...))
		extraTargets = append(extraTargets, cand.Result)
	} else {
		if cand.HasSelf() != d.HasSelf() || len(cand.Params) != len(d.Params) {
			return nil, nil
		}
		patterns, targets = mapTypes(d.ParamTypes(), at), cand.ParamTypes()
		if d.SelfType != nil && cand.SelfType != nil {
			patterns = append(patterns, at(d.SelfType))
			targets = append(targets, cand.SelfType)
		}
		extraPatterns = append(extraPatterns, at(d.Result))
		extraTargets = append(extraTargets, valueType(cand))
	}

	s := typesystem.Subst{}
	var err error
	for i := range patterns {
		if s, err = env.Match(patterns[i], targets[i], flexible, s); err != nil {
			return nil, nil
		}
	}
	m.subst = s

	// The result only ranks; a mismatch there is reported after resolution.
	extended := s
	for i := range extraPatterns {
		if extraTargets[i] == nil {
			extended = nil
			break
		}
		if extended, err = env.Match(extraPatterns[i], extraTargets[i], flexible, extended); err != nil {
			extended = nil
			break
		}
	}
	if extended != nil {
		m.subst = extended
		m.resultOK = true
	}
	return m, nil
}

// rank prefers originals whose result agrees with the candidate, then
// non-generic ones. It returns the IDs of the tied matches on ambiguity.
func rank(viable []match) (match, []string) {
	tier := viable
	if agreeing := pick(viable, func(m match) bool { return m.resultOK }); len(agreeing) > 0 {
		tier = agreeing
	}
	if len(tier) == 1 {
		return tier[0], nil
	}
	if exact := pick(tier, func(m match) bool { return !m.decl.IsGeneric() }); len(exact) == 1 {
		return exact[0], nil
	}
	ids := make([]string, len(tier))
	for i, m := range tier {
		ids[i] = m.decl.ID
	}
	return match{}, ids
}

func pick(ms []match, keep func(match) bool) []match {
	var out []match
	for _, m := range ms {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// valueType is the first element of a derivative result, nil if malformed.
func valueType(cand *symbols.Declaration) typesystem.Type {
	if tuple, ok := cand.Result.(typesystem.TTuple); ok && len(tuple.Elements) > 0 {
		return tuple.Elements[0].Type
	}
	return nil
}

// expectedOriginalType is the type an original would need for cand to be a
// derivative of it, curried over self for instance methods.
func expectedOriginalType(cand *symbols.Declaration, kind derivative.Kind) typesystem.Type {
	result := cand.Result
	if kind != derivative.Transpose {
		result = valueType(cand)
		if result == nil {
			return nil
		}
	}
	var t typesystem.Type = typesystem.TFunc{Params: cand.ParamTypes(), ReturnType: result}
	if cand.HasSelf() {
		t = typesystem.TFunc{Params: []typesystem.Type{cand.SelfType}, ReturnType: t}
	}
	return t
}

func mapTypes(types []typesystem.Type, f func(typesystem.Type) typesystem.Type) []typesystem.Type {
	out := make([]typesystem.Type, len(types))
	for i, t := range types {
		out[i] = f(t)
	}
	return out
}

func declIDs(decls []*symbols.Declaration) []string {
	ids := make([]string, len(decls))
	for i, d := range decls {
		ids[i] = d.ID
	}
	return ids
}
