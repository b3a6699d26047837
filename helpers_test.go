package docdex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// loadIndex reads a document fixture through the full Storage and Index
// stages.
func loadIndex(t *testing.T, path string) *Index {
	t.Helper()
	s, err := Load(path)
	require.NoError(t, err)
	return NewIndex(s)
}

// loadAdapter builds an adapter over one fixture with no baseline.
func loadAdapter(t *testing.T, path, target string) *Adapter {
	t.Helper()
	a, err := NewLoader(WithTarget(target)).NewAdapter(loadIndex(t, path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// collect runs query and drains every row.
func collect(t *testing.T, a *Adapter, query string, vars map[string]any) []Row {
	t.Helper()
	rows, err := a.RunQuery(context.Background(), query, vars)
	require.NoError(t, err)
	out, err := Collect(rows)
	require.NoError(t, err)
	return out
}
