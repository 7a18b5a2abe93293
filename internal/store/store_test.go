package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/registry"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registrations.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleTable(t *testing.T) *registry.Table {
	t.Helper()
	table := registry.New()
	_, ok := table.Register(derivative.NewKey("add", derivative.NewSubset(0, 1), derivative.Pullback), "vjpAdd")
	require.True(t, ok)
	_, ok = table.Register(derivative.NewKey("add", derivative.NewSubset(0, 1), derivative.Differential), "jvpAdd")
	require.True(t, ok)
	_, ok = table.Register(derivative.NewKey("Float.getDouble", derivative.NewSubset(derivative.SelfPosition), derivative.Transpose), "Double.structTranspose")
	require.True(t, ok)
	return table
}

func TestSaveAndLookup(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)
	table := sampleTable(t)
	require.NoError(t, s.SaveTable(ctx, "pass-1", table))

	e, ok, err := s.Lookup(ctx, "add", derivative.NewSubset(0, 1), derivative.Differential)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jvpAdd", e.Derivative)

	want, _ := table.Lookup("add", derivative.NewSubset(0, 1), derivative.Differential)
	require.Equal(t, want, e)

	e, ok, err = s.Lookup(ctx, "Float.getDouble", derivative.NewSubset(derivative.SelfPosition), derivative.Transpose)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Double.structTranspose", e.Derivative)

	_, ok, err = s.Lookup(ctx, "add", derivative.NewSubset(0), derivative.Pullback)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntriesKeepOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)
	table := sampleTable(t)
	require.NoError(t, s.SaveTable(ctx, "pass-1", table))

	got, err := s.Entries(ctx, "pass-1")
	require.NoError(t, err)
	require.Equal(t, table.Entries(), got)

	got, err = s.Entries(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLookupAcrossPasses(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	first := registry.New()
	first.Register(derivative.NewKey("sin", derivative.NewSubset(0), derivative.Pullback), "vjpSin")
	require.NoError(t, s.SaveTable(ctx, "passA", first))
	second := registry.New()
	second.Register(derivative.NewKey("cos", derivative.NewSubset(0), derivative.Pullback), "vjpCos")
	require.NoError(t, s.SaveTable(ctx, "passB", second))

	e, ok, err := s.Lookup(ctx, "sin", derivative.NewSubset(0), derivative.Pullback)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "vjpSin", e.Derivative)

	e, ok, err = s.Lookup(ctx, "cos", derivative.NewSubset(0), derivative.Pullback)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "vjpCos", e.Derivative)
}

func TestNewestPassWins(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)
	require.NoError(t, s.SaveTable(ctx, "pass-1", sampleTable(t)))

	second := registry.New()
	second.Register(derivative.NewKey("add", derivative.NewSubset(0, 1), derivative.Pullback), "vjpAddFast")
	require.NoError(t, s.SaveTable(ctx, "pass-2", second))

	e, ok, err := s.Lookup(ctx, "add", derivative.NewSubset(0, 1), derivative.Pullback)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "vjpAddFast", e.Derivative)

	// Keys only the older pass registered still answer from it.
	e, ok, err = s.Lookup(ctx, "add", derivative.NewSubset(0, 1), derivative.Differential)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jvpAdd", e.Derivative)
	old, err := s.Entries(ctx, "pass-1")
	require.NoError(t, err)
	require.Len(t, old, 3)

	// Saving a pass again replaces it and makes it the latest.
	require.NoError(t, s.SaveTable(ctx, "pass-1", sampleTable(t)))
	e, ok, err = s.Lookup(ctx, "add", derivative.NewSubset(0, 1), derivative.Pullback)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "vjpAdd", e.Derivative)

	// The snapshot survives reopening.
	require.NoError(t, s.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Entries(ctx, "pass-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
