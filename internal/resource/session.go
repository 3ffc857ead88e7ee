package resource

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/registry"
	"github.com/roach88/activegraph/internal/schema"
)

// Session is one isolated mapping scope: its own handle cache, class
// registry and executor.
type Session struct {
	exec       queryir.Executor
	resolver   *identity.Resolver
	classes    *registry.ClassRegistry
	namespaces *namespace.Registry
	coercer    ir.Coercer
	discoverer *schema.Discoverer
	logger     *slog.Logger
	policy     schema.CyclePolicy

	rdfType *ir.Resource
}

// Option configures a Session.
type Option func(*Session)

// WithResolver shares an identity resolver between sessions.
func WithResolver(r *identity.Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithNamespaces sets the namespace registry used to expand prefixed names.
func WithNamespaces(ns *namespace.Registry) Option {
	return func(s *Session) { s.namespaces = ns }
}

// WithCoercer sets the literal coercer for raw Go values.
func WithCoercer(c ir.Coercer) Option {
	return func(s *Session) { s.coercer = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithCyclePolicy sets how predicate discovery treats subClassOf cycles.
func WithCyclePolicy(p schema.CyclePolicy) Option {
	return func(s *Session) { s.policy = p }
}

// NewSession creates a session reading through exec.
func NewSession(exec queryir.Executor, opts ...Option) *Session {
	s := &Session{exec: exec}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = identity.New()
	}
	if s.namespaces == nil {
		s.namespaces = namespace.New()
	}
	if s.coercer == nil {
		s.coercer = ir.XSDCoercer{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.classes = registry.New(s.resolver)
	s.discoverer = schema.New(exec, s.resolver,
		schema.WithLogger(s.logger),
		schema.WithCyclePolicy(s.policy))
	s.rdfType = s.resolver.MustBasic(namespace.RDFType)
	return s
}

// Resolver returns the session's identity resolver.
func (s *Session) Resolver() *identity.Resolver { return s.resolver }

// Classes returns the session's class registry.
func (s *Session) Classes() *registry.ClassRegistry { return s.classes }

// Namespaces returns the session's namespace registry.
func (s *Session) Namespaces() *namespace.Registry { return s.namespaces }

// Executor returns the executor queries run through.
func (s *Session) Executor() queryir.Executor { return s.exec }

// Register binds typ to a class URI. Prefixed names ("ex:Person") are
// expanded first.
func (s *Session) Register(typ *ir.Type, classURI string) error {
	return s.classes.Register(typ, s.namespaces.Expand(classURI))
}

// Resource resolves a URI or prefixed name to its canonical basic handle.
func (s *Session) Resource(uri string) (*ir.Resource, error) {
	return s.resolver.Basic(s.namespaces.Expand(uri))
}

// Class returns the class view of typ. A nil type is the untyped root.
func (s *Session) Class(typ *ir.Type) *Class {
	if typ == nil {
		typ = ir.RootType
	}
	if typ.IsClassScoped() && !s.classes.IsRegistered(typ) {
		s.logger.Warn("model type has no class binding, scoping to rdfs:Resource",
			"type", typ.Name())
	}
	return &Class{session: s, typ: typ}
}

// Root returns the class view of the untyped root type.
func (s *Session) Root() *Class {
	return s.Class(ir.RootType)
}

// Identify returns the identified handle for uri, typed with the first of
// its rdf:type classes that has a registered model type. Resources with no
// registered class are typed ir.IdentifiedType.
func (s *Session) Identify(ctx context.Context, uri string) (*ir.Resource, error) {
	subject, err := s.Resource(uri)
	if err != nil {
		return nil, err
	}

	var q queryir.Query
	q.AddBindings("t")
	q.AddCondition(subject, s.rdfType, ir.Variable("t"))

	typ := ir.IdentifiedType
	err = s.exec.Each(ctx, q, func(row queryir.Row) error {
		class, ok := row[0].(*ir.Resource)
		if !ok {
			return nil
		}
		if t, ok := s.classes.TypeFor(class.URI()); ok && t.IsClassScoped() {
			typ = t
			return queryir.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("identified resource", "uri", subject.URI(), "type", typ.Name())
	return s.resolver.Identify(subject.URI(), typ)
}
