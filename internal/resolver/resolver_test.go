package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/manifest"
	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

const resolverUnit = `
file: resolver.swift
types:
  - name: Vec
    conforms: [Differentiable, AdditiveArithmetic]
declarations:
  - id: generic
    generics: [T]
    requirements: ["T: Differentiable"]
    params: ["_ x: T", "_ y: T"]
    result: T
  - id: vjpGenericFloat
    params: ["x: Float", "y: Float"]
    result: "(value: Float, pullback: (Float) -> (Float, Float))"
  - id: vjpGenericArity
    params: ["x: Float"]
    result: "(value: Float, pullback: (Float) -> Float)"

  - id: pick.float
    name: pick
    params: ["_ x: Float"]
    result: Float
  - id: pick.double
    name: pick
    params: ["_ x: Float"]
    result: Double
  - id: vjpPickDouble
    params: ["_ x: Float"]
    result: "(value: Double, pullback: (Double) -> Float)"
  - id: vjpPickInt
    params: ["_ x: Float"]
    result: "(value: Int, pullback: (Int) -> Float)"

  - id: helper
    params: ["_ x: Float"]
    result: Float
    file: other.swift
  - id: Vec.vjpHelper
    name: vjpHelper
    owner: Vec
    kind: static
    params: ["_ x: Float"]
    result: "(value: Float, pullback: (Float) -> Float)"
  - id: Vec.vjpMissing
    name: vjpMissing
    owner: Vec
    params: ["_ x: Float"]
    result: "(value: Float, pullback: (Float) -> Float)"

  - id: linear
    params: ["_ x: Float", "_ y: Float"]
    result: Float
  - id: linearT
    params: ["_ x: Float", "_ t: Float"]
    result: Float
`

type fixture struct {
	idx *symbols.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := manifest.ParseManifest([]byte(resolverUnit), "resolver.yaml")
	require.NoError(t, err)
	unit, err := m.Build()
	require.NoError(t, err)
	return &fixture{idx: unit.Index}
}

func (f *fixture) resolve(t *testing.T, opts config.Options, ref, candID string, kind derivative.Kind, items ...derivative.WrtItem) (*Resolution, *diagnostics.DiagnosticError) {
	t.Helper()
	r, err := ParseRef(ref)
	require.NoError(t, err)
	cand, ok := f.idx.Lookup(candID)
	require.True(t, ok, "unknown candidate %s", candID)
	env := typesystem.NewEnv(cand.Generics, f.idx)
	return New(f.idx, opts).Resolve(r, cand, env, kind, items)
}

func TestResolve_SpecializesGenericOriginal(t *testing.T) {
	f := newFixture(t)
	res, diag := f.resolve(t, config.DefaultOptions(), "generic", "vjpGenericFloat", derivative.Pullback)
	require.Nil(t, diag)
	require.Equal(t, "generic", res.Original.ID)
	require.False(t, res.SubsetSolved)

	tFloat := typesystem.TCon{Name: "Float"}
	require.Equal(t, tFloat, res.Subst[config.OriginalVarPrefix+"T"])
	for _, p := range res.Specialized.Params {
		require.Equal(t, tFloat, p.Type)
	}
	require.Equal(t, tFloat, res.Specialized.Result)
	// The index keeps the unspecialized declaration.
	require.Equal(t, typesystem.TVar{Name: "T"}, res.Original.Params[0].Type)
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture(t)
	_, diag := f.resolve(t, config.DefaultOptions(), "generic", "vjpGenericArity", derivative.Pullback)
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD001, diag.Code)
	require.Equal(t, "vjpGenericArity", diag.Decl)
	require.Equal(t, []string{"generic"}, diag.Candidates)
	require.Equal(t, "(Float) -> Float", diag.Expected.String())
	require.False(t, diag.InTypeContext)

	_, diag = f.resolve(t, config.DefaultOptions(), "nothing", "vjpGenericArity", derivative.Pullback)
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD001, diag.Code)
	require.Empty(t, diag.Candidates)
}

func TestResolve_ResultRanksOverloads(t *testing.T) {
	f := newFixture(t)
	res, diag := f.resolve(t, config.DefaultOptions(), "pick", "vjpPickDouble", derivative.Pullback)
	require.Nil(t, diag)
	require.Equal(t, "pick.double", res.Original.ID)

	_, diag = f.resolve(t, config.DefaultOptions(), "pick", "vjpPickInt", derivative.Pullback)
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD002, diag.Code)
	require.ElementsMatch(t, []string{"pick.float", "pick.double"}, diag.Candidates)
}

func TestResolve_TypeContextFallsBackToFreeFunctions(t *testing.T) {
	f := newFixture(t)

	_, diag := f.resolve(t, config.DefaultOptions(), "helper", "Vec.vjpHelper", derivative.Pullback)
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD003, diag.Code)
	require.Equal(t, "helper", diag.Original)
	require.Equal(t, "other.swift", diag.File)

	relaxed := config.DefaultOptions()
	relaxed.RequireSameFile = false
	res, diag := f.resolve(t, relaxed, "helper", "Vec.vjpHelper", derivative.Pullback)
	require.Nil(t, diag)
	require.Equal(t, "helper", res.Original.ID)

	_, diag = f.resolve(t, config.DefaultOptions(), "nothing", "Vec.vjpMissing", derivative.Pullback)
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD001, diag.Code)
	require.True(t, diag.InTypeContext)
	require.Equal(t, "nothing", diag.Name)
}

func TestResolve_Transpose(t *testing.T) {
	f := newFixture(t)
	res, diag := f.resolve(t, config.DefaultOptions(), "linear", "linearT", derivative.Transpose, derivative.Indexed(1))
	require.Nil(t, diag)
	require.Equal(t, "linear", res.Original.ID)
	require.True(t, res.SubsetSolved)
	require.Equal(t, derivative.NewSubset(1), res.Subset)

	// With both parameters transposed nothing but the cotangent is left.
	_, diag = f.resolve(t, config.DefaultOptions(), "linear", "linearT", derivative.Transpose, derivative.Indexed(0), derivative.Indexed(1))
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD001, diag.Code)

	_, diag = f.resolve(t, config.DefaultOptions(), "linear", "linearT", derivative.Transpose, derivative.Indexed(5))
	require.NotNil(t, diag)
	require.Equal(t, diagnostics.ErrD011, diag.Code)
	require.Equal(t, "linearT", diag.Decl)
	require.Equal(t, "linear", diag.Original)
	require.Equal(t, 5, diag.Index)
}

func TestRenameApart(t *testing.T) {
	sig := typesystem.GenericSignature{Params: []typesystem.TVar{{Name: "T"}, {Name: "Self"}}}
	rename, flexible := renameApart(sig)
	require.Equal(t, typesystem.TVar{Name: config.OriginalVarPrefix + "T"}, rename["T"])
	require.Equal(t, typesystem.TVar{Name: config.OriginalVarPrefix + "Self"}, rename["Self"])
	require.True(t, flexible[config.OriginalVarPrefix+"T"])
	require.False(t, flexible["T"])
}
