// Package schema discovers the attributes of a class from schema
// statements stored alongside the data.
//
// A predicate belongs to a class when the store holds
// (predicate rdfs:domain class). Classes inherit the predicates of their
// rdfs:subClassOf ancestors, and predicates whose domain is owl:Thing
// apply to every class.
package schema

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
)

// PredicateMap maps attribute local names to predicate handles.
type PredicateMap map[string]*ir.Resource

// Lookup returns the predicate for an attribute name.
func (m PredicateMap) Lookup(name string) (*ir.Resource, bool) {
	p, ok := m[name]
	return p, ok
}

// Names returns the attribute names in sorted order.
func (m PredicateMap) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// fill copies entries from other that m does not have yet.
func (m PredicateMap) fill(other PredicateMap) {
	for name, p := range other {
		if _, ok := m[name]; !ok {
			m[name] = p
		}
	}
}

// CyclePolicy controls what discovery does on a subClassOf cycle.
type CyclePolicy int

const (
	// CycleFail returns ir.ErrSchemaCycle carrying the cycle path.
	CycleFail CyclePolicy = iota

	// CycleTolerate stops descending at the repeated class and returns
	// what was discovered.
	CycleTolerate
)

// Discoverer resolves the predicate map of a class through a query
// executor. It keeps no cache; every call reads the current schema.
type Discoverer struct {
	exec     queryir.Executor
	resolver *identity.Resolver
	logger   *slog.Logger
	policy   CyclePolicy

	domain     *ir.Resource
	subClassOf *ir.Resource
	thing      *ir.Resource
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithCyclePolicy sets the subClassOf cycle policy. Default is CycleFail.
func WithCyclePolicy(p CyclePolicy) Option {
	return func(d *Discoverer) { d.policy = p }
}

// New creates a Discoverer that queries exec and canonicalizes predicate
// handles through resolver.
func New(exec queryir.Executor, resolver *identity.Resolver, opts ...Option) *Discoverer {
	d := &Discoverer{
		exec:       exec,
		resolver:   resolver,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		domain:     resolver.MustBasic(namespace.RDFSDomain),
		subClassOf: resolver.MustBasic(namespace.RDFSSubClassOf),
		thing:      resolver.MustBasic(namespace.OWLThing),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns every attribute available on class.
//
// Precedence, highest first:
//  1. predicates whose domain is class itself
//  2. predicates inherited from superclasses, earlier superclasses (in
//     store order) winning over later ones
//  3. universal predicates whose domain is owl:Thing
//
// Returns ir.ErrMalformedURI for a predicate URI without a local name,
// ir.ErrSchemaCycle for a cyclic hierarchy under CycleFail, and executor
// errors unchanged.
func (d *Discoverer) Discover(ctx context.Context, class *ir.Resource) (PredicateMap, error) {
	if class == nil {
		return nil, ir.NewError(ir.CodeNilResource, "discover requires a class", "")
	}

	preds, err := d.discover(ctx, class, nil)
	if err != nil {
		return nil, err
	}

	if class.URI() != namespace.OWLThing {
		universal, err := d.declared(ctx, d.thing)
		if err != nil {
			return nil, err
		}
		preds.fill(universal)
	}

	d.logger.Debug("discovered predicates",
		"class", class.URI(),
		"count", len(preds))
	return preds, nil
}

// discover collects own and inherited predicates. path holds the class
// URIs on the current descent.
func (d *Discoverer) discover(ctx context.Context, class *ir.Resource, path []string) (PredicateMap, error) {
	uri := class.URI()
	if i := slices.Index(path, uri); i >= 0 {
		cycle := append(slices.Clone(path[i:]), uri)
		if d.policy == CycleTolerate {
			d.logger.Warn("subClassOf cycle, not descending", "path", cycle)
			return PredicateMap{}, nil
		}
		return nil, ir.NewCycleError(cycle)
	}
	path = append(path, uri)

	preds, err := d.declared(ctx, class)
	if err != nil {
		return nil, err
	}

	supers, err := d.superclasses(ctx, class)
	if err != nil {
		return nil, err
	}
	for _, super := range supers {
		inherited, err := d.discover(ctx, super, path)
		if err != nil {
			return nil, err
		}
		preds.fill(inherited)
	}
	return preds, nil
}

// declared returns the predicates whose rdfs:domain is class. When two
// predicates share a local name the first in store order wins.
func (d *Discoverer) declared(ctx context.Context, class *ir.Resource) (PredicateMap, error) {
	var q queryir.Query
	q.AddBindings("p")
	q.AddCondition(ir.Variable("p"), d.domain, class)

	rs, err := d.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	preds := make(PredicateMap, rs.Len())
	for i := range rs.Rows {
		v, _ := rs.Value(i, "p")
		p, ok := v.(*ir.Resource)
		if !ok {
			continue
		}
		name, err := ir.LocalName(p.URI())
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, ir.NewError(ir.CodeMalformedURI, "uri has an empty local name", p.URI())
		}
		if _, dup := preds[name]; dup {
			continue
		}
		handle, err := d.resolver.Canonical(p)
		if err != nil {
			return nil, err
		}
		preds[name] = handle
	}
	return preds, nil
}

// superclasses returns the direct superclasses of class in store order.
func (d *Discoverer) superclasses(ctx context.Context, class *ir.Resource) ([]*ir.Resource, error) {
	var q queryir.Query
	q.AddBindings("c")
	q.AddCondition(class, d.subClassOf, ir.Variable("c"))

	rs, err := d.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	supers := make([]*ir.Resource, 0, rs.Len())
	seen := make(map[string]bool)
	for i := range rs.Rows {
		v, _ := rs.Value(i, "c")
		c, ok := v.(*ir.Resource)
		if !ok {
			d.logger.Warn("ignoring literal superclass", "class", class.URI(), "value", v)
			continue
		}
		// Every class is trivially its own subclass.
		if seen[c.URI()] || c.URI() == class.URI() {
			continue
		}
		seen[c.URI()] = true
		supers = append(supers, c)
	}
	return supers, nil
}

func (d *Discoverer) execute(ctx context.Context, q queryir.Query) (*queryir.ResultSet, error) {
	rs, err := d.exec.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, ir.NewError(ir.CodeNilResult, "executor returned no result set", "")
	}
	return rs, nil
}
