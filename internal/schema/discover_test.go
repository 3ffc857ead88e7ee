package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/store"
)

type fixture struct {
	store    *store.Store
	resolver *identity.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &fixture{store: s, resolver: identity.New()}
}

func (f *fixture) res(uri string) *ir.Resource {
	return f.resolver.MustBasic(uri)
}

func (f *fixture) add(t *testing.T, s, p, o string) {
	t.Helper()
	_, err := f.store.Add(context.Background(), ir.NewTriple(f.res(s), f.res(p), f.res(o)))
	require.NoError(t, err)
}

func (f *fixture) domain(t *testing.T, pred, class string) {
	f.add(t, pred, namespace.RDFSDomain, class)
}

func (f *fixture) subClass(t *testing.T, class, super string) {
	f.add(t, class, namespace.RDFSSubClassOf, super)
}

func (f *fixture) discover(t *testing.T, class string, opts ...Option) (PredicateMap, error) {
	t.Helper()
	return New(f.store, f.resolver, opts...).Discover(context.Background(), f.res(class))
}

const (
	person = "http://ex.org/Person"
	agent  = "http://ex.org/Agent"
	animal = "http://ex.org/Animal"
)

func TestDiscover_OwnPredicates(t *testing.T) {
	f := newFixture(t)
	f.domain(t, namespace.FOAF+"firstName", person)
	f.domain(t, "http://ex.org/vocab#age", person)
	f.domain(t, "http://ex.org/vocab#wheels", "http://ex.org/Car")

	preds, err := f.discover(t, person)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "firstName"}, preds.Names())
	p, ok := preds.Lookup("firstName")
	require.True(t, ok)
	assert.Same(t, f.res(namespace.FOAF+"firstName"), p, "handles are canonical")
}

func TestDiscover_Precedence(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, agent)
	f.domain(t, "http://own.org/name", person)
	f.domain(t, "http://super.org/name", agent)
	f.domain(t, "http://univ.org/name", namespace.OWLThing)
	f.domain(t, "http://super.org/mbox", agent)
	f.domain(t, "http://univ.org/mbox", namespace.OWLThing)
	f.domain(t, "http://univ.org/seeAlso", namespace.OWLThing)

	preds, err := f.discover(t, person)
	require.NoError(t, err)

	assert.Equal(t, "http://own.org/name", preds["name"].URI(), "own beats inherited")
	assert.Equal(t, "http://super.org/mbox", preds["mbox"].URI(), "inherited beats universal")
	assert.Equal(t, "http://univ.org/seeAlso", preds["seeAlso"].URI(), "universal fills gaps")
}

func TestDiscover_FirstSuperclassWins(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, agent)
	f.subClass(t, person, animal)
	f.domain(t, "http://agent.org/label", agent)
	f.domain(t, "http://animal.org/label", animal)
	f.domain(t, "http://animal.org/legs", animal)

	preds, err := f.discover(t, person)
	require.NoError(t, err)

	assert.Equal(t, "http://agent.org/label", preds["label"].URI())
	assert.Equal(t, "http://animal.org/legs", preds["legs"].URI())
}

func TestDiscover_TransitiveInheritance(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, "http://ex.org/Student", person)
	f.subClass(t, person, agent)
	f.domain(t, "http://ex.org/vocab#school", "http://ex.org/Student")
	f.domain(t, "http://ex.org/vocab#name", agent)

	preds, err := f.discover(t, "http://ex.org/Student")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "school"}, preds.Names())
}

func TestDiscover_DiamondIsNotACycle(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, agent)
	f.subClass(t, person, animal)
	f.subClass(t, agent, "http://ex.org/Thing")
	f.subClass(t, animal, "http://ex.org/Thing")
	f.domain(t, "http://ex.org/vocab#id", "http://ex.org/Thing")

	preds, err := f.discover(t, person)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, preds.Names())
}

func TestDiscover_UniversalOnly(t *testing.T) {
	f := newFixture(t)
	f.domain(t, "http://ex.org/vocab#label", namespace.OWLThing)

	preds, err := f.discover(t, "http://ex.org/Empty")
	require.NoError(t, err)
	assert.Equal(t, []string{"label"}, preds.Names())

	preds, err = f.discover(t, namespace.OWLThing)
	require.NoError(t, err)
	assert.Equal(t, []string{"label"}, preds.Names())
}

func TestDiscover_UnknownClassIsEmpty(t *testing.T) {
	f := newFixture(t)

	preds, err := f.discover(t, "http://ex.org/Nothing")
	require.NoError(t, err)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

func TestDiscover_CycleFails(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, agent)
	f.subClass(t, agent, person)
	f.domain(t, "http://ex.org/vocab#name", agent)

	_, err := f.discover(t, person)
	require.ErrorIs(t, err, ir.ErrSchemaCycle)

	var ierr *ir.Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, []string{person, agent, person}, ierr.Path)
}

func TestDiscover_CycleTolerated(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, agent)
	f.subClass(t, agent, person)
	f.domain(t, "http://ex.org/vocab#first", person)
	f.domain(t, "http://ex.org/vocab#name", agent)

	preds, err := f.discover(t, person, WithCyclePolicy(CycleTolerate))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "name"}, preds.Names())
}

func TestDiscover_SelfSubclassIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.subClass(t, person, person)
	f.domain(t, "http://ex.org/vocab#name", person)

	preds, err := f.discover(t, person)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, preds.Names())
}

func TestDiscover_MalformedPredicate(t *testing.T) {
	f := newFixture(t)
	f.domain(t, "urn:nameless", person)

	_, err := f.discover(t, person)
	assert.ErrorIs(t, err, ir.ErrMalformedURI)
}

func TestDiscover_NilClass(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.store, f.resolver).Discover(context.Background(), nil)
	assert.ErrorIs(t, err, ir.ErrNilResource)
}

// stubExecutor answers every query with a fixed result and counts calls.
type stubExecutor struct {
	rs    *queryir.ResultSet
	err   error
	calls int
}

func (s *stubExecutor) Execute(context.Context, queryir.Query) (*queryir.ResultSet, error) {
	s.calls++
	return s.rs, s.err
}

func (s *stubExecutor) Each(ctx context.Context, q queryir.Query, fn queryir.RowFunc) error {
	rs, err := s.Execute(ctx, q)
	if err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func TestDiscover_PropagatesExecutorErrors(t *testing.T) {
	boom := errors.New("connection refused")
	exec := &stubExecutor{err: boom}
	r := identity.New()

	_, err := New(exec, r).Discover(context.Background(), r.MustBasic(person))
	assert.Same(t, boom, err)
}

func TestDiscover_NilResultSet(t *testing.T) {
	exec := &stubExecutor{}
	r := identity.New()

	_, err := New(exec, r).Discover(context.Background(), r.MustBasic(person))
	assert.ErrorIs(t, err, ir.ErrNilResult)
}

func TestDiscover_RoundTrips(t *testing.T) {
	exec := &stubExecutor{rs: &queryir.ResultSet{Vars: []ir.Variable{"p"}}}
	r := identity.New()

	_, err := New(exec, r).Discover(context.Background(), r.MustBasic(person))
	require.NoError(t, err)
	// own domain, superclasses, universal domain
	assert.Equal(t, 3, exec.calls)
}
