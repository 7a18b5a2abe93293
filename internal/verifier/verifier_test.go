package verifier

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/ctxlog"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/manifest"
)

func quietContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

func loadUnit(t *testing.T, path string) *manifest.Unit {
	t.Helper()
	m, err := manifest.LoadManifest(path)
	require.NoError(t, err)
	unit, err := m.Build()
	require.NoError(t, err)
	return unit
}

func parseUnit(t *testing.T, src string) *manifest.Unit {
	t.Helper()
	m, err := manifest.ParseManifest([]byte(src), "unit.yaml")
	require.NoError(t, err)
	unit, err := m.Build()
	require.NoError(t, err)
	return unit
}

func runUnit(t *testing.T, unit *manifest.Unit, opts config.Options) (*Pass, map[string]Result) {
	t.Helper()
	pass := NewPass(unit.Index, opts)
	results, err := pass.Run(quietContext(), unit.Requests)
	require.NoError(t, err)
	require.Len(t, results, len(unit.Requests))
	byID := make(map[string]Result, len(results))
	for i, r := range results {
		require.Equal(t, unit.Requests[i].Candidate, r.Request.Candidate, "results out of request order")
		byID[r.Request.Candidate] = r
	}
	return pass, byID
}

// expectDiagnostic asserts that the candidate produced the given code.
func expectDiagnostic(t *testing.T, results map[string]Result, id string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	r, ok := results[id]
	require.True(t, ok, "no result for %s", id)
	require.NotNil(t, r.Diagnostic, "%s: expected %s, but it registered", id, code)
	require.Equal(t, code, r.Diagnostic.Code, "%s: %s", id, r.Diagnostic)
	require.Equal(t, id, r.Diagnostic.Decl)
	return r.Diagnostic
}

func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			unit := loadUnit(t, path)
			pass := NewPass(unit.Index, config.DefaultOptions())
			results, err := pass.Run(quietContext(), unit.Requests)
			require.NoError(t, err)

			for _, m := range Check(results, unit.Expect) {
				got := "registered"
				if m.Result.Diagnostic != nil {
					got = m.Result.Diagnostic.Error()
				}
				want := "registered"
				if m.Want != "" {
					want = string(m.Want) + " " + m.Want.Name()
				}
				t.Errorf("%s: want %s, got %s", m.Candidate, want, got)
			}
		})
	}
}

func TestScenarios(t *testing.T) {
	unit := loadUnit(t, filepath.Join("testdata", "scenarios.yaml"))
	pass, results := runUnit(t, unit, config.DefaultOptions())

	t.Run("registered", func(t *testing.T) {
		r := results["vjpAdd"]
		require.Nil(t, r.Diagnostic)
		require.True(t, r.Registered)
		require.Equal(t, derivative.NewKey("add", derivative.NewSubset(0, 1), derivative.Pullback), r.Key)

		e, ok := pass.Table().Lookup("add", derivative.NewSubset(0, 1), derivative.Pullback)
		require.True(t, ok)
		require.Equal(t, "vjpAdd", e.Derivative)

		e, ok = pass.Table().Lookup("add", derivative.NewSubset(0, 1), derivative.Differential)
		require.True(t, ok)
		require.Equal(t, "jvpAdd", e.Derivative)
	})

	t.Run("order", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpAddReversed", diagnostics.ErrD012)
		require.Equal(t, "add", d.Original)
	})

	t.Run("duplicate", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpAddAgain", diagnostics.ErrD030)
		require.Equal(t, "vjpAdd", d.Existing)
		require.False(t, results["vjpAddAgain"].Registered)
	})

	t.Run("no parameters", func(t *testing.T) {
		expectDiagnostic(t, results, "vjpNoParams", diagnostics.ErrD014)
	})

	t.Run("index out of range", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpAdd2", diagnostics.ErrD011)
		require.Equal(t, 2, d.Index)
	})

	t.Run("concrete overload preferred", func(t *testing.T) {
		require.Equal(t, "square.float", results["vjpSquare"].Key.Original)
	})

	t.Run("ambiguous", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpCube", diagnostics.ErrD002)
		require.ElementsMatch(t, []string{"cube.diff", "cube.float"}, d.Candidates)
	})

	t.Run("labels", func(t *testing.T) {
		require.Equal(t, "scale.by", results["vjpScale"].Key.Original)
		d := expectDiagnostic(t, results, "vjpScaleUnknownLabels", diagnostics.ErrD001)
		require.Equal(t, "scale(_:with:)", d.Name)
		require.False(t, d.InTypeContext)
	})

	require.Equal(t, 4, pass.Table().Len())
}

func TestDiagnosticDetails(t *testing.T) {
	unit := loadUnit(t, filepath.Join("testdata", "differentiating.yaml"))
	_, results := runUnit(t, unit, config.DefaultOptions())

	t.Run("seed type mismatch", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpSinResultInvalidSeedType", diagnostics.ErrD024)
		require.Equal(t, "sin", d.Original)
		require.Equal(t, "(Float) -> Float", d.Expected.String())
		require.Equal(t, "(Double) -> Double", d.Actual.String())
	})

	t.Run("wrong label", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpSinResultWrongLabel", diagnostics.ErrD021)
		require.Equal(t, 1, d.Index)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpUnknownParam", diagnostics.ErrD010)
		require.Equal(t, "z", d.Name)
	})

	t.Run("other file", func(t *testing.T) {
		d := expectDiagnostic(t, results, "AdditiveArithmetic.vjpPlus", diagnostics.ErrD003)
		require.Equal(t, "AdditiveArithmetic.+", d.Original)
		require.Equal(t, "stdlib.swift", d.File)
	})

	t.Run("not in type context", func(t *testing.T) {
		d := expectDiagnostic(t, results, "Differentiable.vjpPlus", diagnostics.ErrD001)
		require.True(t, d.InTypeContext)
	})

	t.Run("unmet requirement", func(t *testing.T) {
		d := expectDiagnostic(t, results, "vjpFoo", diagnostics.ErrD025)
		require.NotNil(t, d.Requirement)
		require.Equal(t, "T: FloatingPoint", d.Requirement.String())
	})

	t.Run("instance method subset", func(t *testing.T) {
		r := results["InstanceMethod.vjpFooWrt"]
		require.True(t, r.Registered)
		require.Equal(t, derivative.NewKey("InstanceMethod.foo", derivative.NewSubset(derivative.SelfPosition, 0), derivative.Pullback), r.Key)
	})
}

func TestRelaxedSameFile(t *testing.T) {
	unit := loadUnit(t, filepath.Join("testdata", "differentiating.yaml"))
	opts := config.DefaultOptions()
	opts.RequireSameFile = false
	_, results := runUnit(t, unit, opts)

	require.True(t, results["AdditiveArithmetic.vjpPlus"].Registered)
	d := expectDiagnostic(t, results, "FloatingPoint.vjpPlus", diagnostics.ErrD030)
	require.Equal(t, "AdditiveArithmetic.vjpPlus", d.Existing)
}

func TestParallelRun(t *testing.T) {
	unit := loadUnit(t, filepath.Join("testdata", "scenarios.yaml"))
	opts := config.DefaultOptions()
	opts.Workers = 8
	pass, results := runUnit(t, unit, opts)

	// Either duplicate may win the race for the key, never both.
	first, second := results["vjpAdd"], results["vjpAddAgain"]
	require.NotEqual(t, first.Registered, second.Registered)
	loser := first
	if first.Registered {
		loser = second
	}
	require.Equal(t, diagnostics.ErrD030, loser.Diagnostic.Code)

	for id, code := range unit.Expect {
		if id == "vjpAddAgain" {
			continue
		}
		expectDiagnostic(t, results, id, code)
	}
	require.Equal(t, 4, pass.Table().Len())
}

func TestWorkersDefaultToOne(t *testing.T) {
	require.Equal(t, 1, config.Options{}.WorkerCount())
	require.Equal(t, 1, config.Options{Workers: -3}.WorkerCount())
	require.Equal(t, 4, config.Options{Workers: 4}.WorkerCount())
}

func TestUnknownCandidate(t *testing.T) {
	unit := parseUnit(t, `
declarations:
  - id: sin
    params: ["_ x: Float"]
    result: Float
  - id: vjpSin
    params: ["_ x: Float"]
    result: "(value: Float, pullback: (Float) -> Float)"
    attribute: {of: sin}
`)
	pass := NewPass(unit.Index, config.DefaultOptions())
	_, err := pass.Verify(quietContext(), derivative.Request{Attribute: derivative.Differentiating, Original: "sin", Candidate: "vjpMissing"})
	require.ErrorContains(t, err, `unknown candidate "vjpMissing"`)

	// The rest of the pass still runs.
	reqs := append([]derivative.Request{{
		Attribute: derivative.Differentiating,
		Original:  "sin",
		Candidate: "vjpMissing",
	}}, unit.Requests...)
	results, err := pass.Run(quietContext(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.ErrorContains(t, results[0].Err, `unknown candidate "vjpMissing"`)
	require.False(t, results[0].Registered)
	require.NoError(t, results[1].Err)
	require.True(t, results[1].Registered)
	require.Equal(t, 1, pass.Table().Len())

	mismatches := Check(results, unit.Expect)
	require.Len(t, mismatches, 1)
	require.Equal(t, "vjpMissing", mismatches[0].Candidate)
}

func TestCancelledContext(t *testing.T) {
	unit := loadUnit(t, filepath.Join("testdata", "scenarios.yaml"))
	ctx, cancel := context.WithCancel(quietContext())
	cancel()

	_, err := NewPass(unit.Index, config.DefaultOptions()).Run(ctx, unit.Requests)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	results := []Result{
		{Request: derivative.Request{Candidate: "ok"}, Registered: true},
		{Request: derivative.Request{Candidate: "bad"}, Diagnostic: diagnostics.NewError(diagnostics.ErrD011, "bad")},
		{Request: derivative.Request{Candidate: "surprise"}, Registered: true},
	}
	mismatches := Check(results, map[string]diagnostics.ErrorCode{
		"bad":      diagnostics.ErrD011,
		"surprise": diagnostics.ErrD030,
	})
	require.Len(t, mismatches, 1)
	require.Equal(t, "surprise", mismatches[0].Candidate)
	require.Equal(t, diagnostics.ErrD030, mismatches[0].Want)
	require.Empty(t, mismatches[0].Got)
}
