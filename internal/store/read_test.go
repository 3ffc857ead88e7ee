package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
)

func seed(t *testing.T, s *Store, triples ...ir.Triple) {
	t.Helper()
	_, err := s.Add(context.Background(), triples...)
	require.NoError(t, err)
}

func uris(t *testing.T, rs *queryir.ResultSet, v ir.Variable) []string {
	t.Helper()
	col := rs.Column(v)
	require.GreaterOrEqual(t, col, 0)
	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		r, ok := row[col].(*ir.Resource)
		require.True(t, ok, "column %s holds %T", v, row[col])
		out = append(out, r.URI())
	}
	return out
}

func TestExecute_SingleCondition(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceType, aliceName, bobType, bobName)

	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []ir.Variable{"o"}, rs.Vars)
	assert.Equal(t, ir.NewLiteral("Alice"), rs.Rows[0][0])
}

func TestExecute_TypeScopedJoin(t *testing.T) {
	s := createMemoryStore(t)
	robot := res("http://ex.org/Robot")
	r2 := res("http://ex.org/r2")
	seed(t, s, aliceType, aliceName, bobType, bobName,
		ir.NewTriple(r2, rdfType, robot),
		ir.NewTriple(r2, firstName, ir.NewLiteral("Alice")))

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), rdfType, person)
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("Alice"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex.org/alice"}, uris(t, rs, "s"))
}

func TestExecute_ResourceObjectJoin(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName, bobName, aliceKnows)

	var q queryir.Query
	q.AddBindings("name")
	q.AddCondition(alice, knows, ir.Variable("friend"))
	q.AddCondition(ir.Variable("friend"), firstName, ir.Variable("name"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, ir.NewLiteral("Bob"), rs.Rows[0][0])
}

func TestExecute_LiteralDoesNotMatchResource(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, ir.NewTriple(alice, knows, ir.NewLiteral("http://ex.org/bob")))

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), knows, bob)

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, rs.Empty())
}

func TestExecute_KeywordSearch(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName, bobName,
		ir.NewTriple(res("http://ex.org/alicia"), firstName, ir.NewLiteral("Alicia")))

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("lic"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, rs.Empty(), "exact match must not match substrings")

	q.ActivateKeywordSearch()
	rs, err = s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex.org/alice", "http://ex.org/alicia"}, uris(t, rs, "s"))
}

func TestExecute_OpenPatternReturnsEverything(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceType, aliceName, aliceKnows)

	var q queryir.Query
	q.AddBindings("s", "p", "o")
	q.AddCondition(ir.Variable("s"), ir.Variable("p"), ir.Variable("o"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	assert.Equal(t, person.URI(), rs.Rows[0][2].(*ir.Resource).URI())
	assert.Equal(t, ir.NewLiteral("Alice"), rs.Rows[1][2])
}

func TestExecute_NoBindingsCountsMatches(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceType, aliceName)

	var q queryir.Query
	q.AddCondition(alice, ir.Variable("p"), ir.Variable("o"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Empty(t, rs.Vars)
}

func TestExecute_EmptyIsNotNil(t *testing.T) {
	s := createMemoryStore(t)

	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	rs, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.True(t, rs.Empty())
}

func TestExecute_RespectsNamedContext(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName)
	other := s.WithNamedContext("g2")

	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	rs, err := other.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, rs.Empty())
}

func TestExecute_InvalidQuery(t *testing.T) {
	s := createMemoryStore(t)

	_, err := s.Execute(context.Background(), queryir.Query{})
	assert.ErrorIs(t, err, ir.ErrNilResource)
}

func TestExecute_CanceledContext(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	_, err := s.Execute(ctx, q)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEach_StopsEarly(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName, bobName)

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.Variable("n"))

	calls := 0
	err := s.Each(context.Background(), q, func(queryir.Row) error {
		calls++
		return queryir.ErrStop
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEach_PropagatesCallbackError(t *testing.T) {
	s := createMemoryStore(t)
	seed(t, s, aliceName)

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.Variable("n"))

	boom := errors.New("boom")
	err := s.Each(context.Background(), q, func(queryir.Row) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestStore_NormalizesUnicode(t *testing.T) {
	s := createMemoryStore(t)
	ctx := context.Background()
	decomposed := res("http://ex.org/cafe\u0301")
	composed := res("http://ex.org/caf\u00e9")
	seed(t, s, ir.NewTriple(decomposed, firstName, ir.NewLiteral("Zoe\u0308")))

	for _, subject := range []*ir.Resource{composed, decomposed} {
		var q queryir.Query
		q.AddBindings("p")
		q.AddCondition(subject, ir.Variable("p"), ir.NewLiteral("Zo\u00eb"))
		rs, err := s.Execute(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, rs.Len(), "subject %q", subject.URI())
	}

	triples, err := s.Triples(ctx)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "http://ex.org/caf\u00e9", triples[0].Subject.URI())

	removed, err := s.Remove(ctx, ir.NewTriple(composed, firstName, ir.NewLiteral("Zo\u00eb")))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
