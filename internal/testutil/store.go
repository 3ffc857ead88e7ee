package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/store"
)

// MemoryStore opens an in-memory store seeded with triples and closes it
// when the test ends.
func MemoryStore(t testing.TB, triples ...ir.Triple) *store.Store {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if len(triples) > 0 {
		_, err = st.Add(context.Background(), triples...)
		require.NoError(t, err)
	}
	return st
}
