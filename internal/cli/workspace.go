package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/activegraph/internal/compiler"
	"github.com/roach88/activegraph/internal/config"
	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/metrics"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/resource"
	"github.com/roach88/activegraph/internal/store"
)

// workspace is an opened store with a session over it. Every query the
// session runs goes through the instrumented executor.
type workspace struct {
	ctx        context.Context
	cfg        *config.Config
	store      *store.Store
	exec       *metrics.Executor
	registry   *prometheus.Registry
	session    *resource.Session
	namespaces *namespace.Registry
	resolver   *identity.Resolver
	types      map[string]*ir.Type
	logger     *slog.Logger
	metricsOut io.Writer
}

// openWorkspace opens the configured store, loads the given ontology
// paths into it and registers a model type for every class the store
// declares.
func openWorkspace(opts *RootOptions, cmd *cobra.Command, ontology []string) (*workspace, error) {
	cfg, err := opts.Config()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	ns, err := cfg.Namespaces()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	policy, err := cfg.Cycles()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	st, err := cfg.OpenStore(logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	reg := prometheus.NewRegistry()
	exec, err := metrics.Instrument(st, reg, cmd.Name())
	if err != nil {
		st.Close()
		return nil, err
	}

	resolver := identity.New()
	ws := &workspace{
		ctx:        cmd.Context(),
		cfg:        cfg,
		store:      st,
		exec:       exec,
		registry:   reg,
		namespaces: ns,
		resolver:   resolver,
		types:      make(map[string]*ir.Type),
		logger:     logger,
		session: resource.NewSession(exec,
			resource.WithResolver(resolver),
			resource.WithNamespaces(ns),
			resource.WithLogger(logger),
			resource.WithCyclePolicy(policy),
		),
	}
	if ws.ctx == nil {
		ws.ctx = context.Background()
	}
	if opts.Metrics {
		ws.metricsOut = cmd.ErrOrStderr()
	}

	if len(ontology) > 0 {
		if _, _, err := ws.load(ontology...); err != nil {
			ws.Close()
			return nil, err
		}
	}
	if err := ws.bindStoredClasses(); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

// load compiles ontology files and adds their statements to the store.
// Returns the number of statements that were new.
func (ws *workspace) load(paths ...string) (*LoadResult, int, error) {
	loaded, err := LoadOntology(paths...)
	if err != nil {
		return nil, 0, err
	}
	triples, err := compiler.NewEmitter(ws.namespaces, ws.resolver, nil).Triples(loaded.Ontology)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeBadValue, Message: err.Error()}
	}
	added, err := ws.store.Add(ws.ctx, triples...)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()}
	}
	ws.logger.Info("ontology loaded", "files", loaded.FileCount, "statements", len(triples), "added", added)

	for _, b := range loaded.Ontology.Bindings() {
		if err := ws.register(b.Type.Name(), b.URI); err != nil {
			return nil, 0, err
		}
	}
	return loaded, added, nil
}

// bindStoredClasses registers a type for every rdfs:Class in the store
// that has no type yet, named after the class's local name. Later
// classes whose local name is taken stay reachable by prefixed URI.
func (ws *workspace) bindStoredClasses() error {
	var q queryir.Query
	q.AddBindings("c")
	q.AddCondition(ir.Variable("c"),
		ws.resolver.MustBasic(namespace.RDFType),
		ws.resolver.MustBasic(namespace.RDFSClass))

	rs, err := ws.exec.Execute(ws.ctx, q)
	if err != nil {
		return err
	}
	if rs == nil {
		return nil
	}
	classes := ws.session.Classes()
	for _, row := range rs.Rows {
		class, ok := row[0].(*ir.Resource)
		if !ok {
			continue
		}
		if _, bound := classes.TypeFor(class.URI()); bound {
			continue
		}
		name, err := ir.LocalName(class.URI())
		if err != nil {
			continue
		}
		if _, taken := ws.types[name]; taken {
			continue
		}
		if err := ws.register(name, class.URI()); err != nil {
			return err
		}
	}
	return nil
}

func (ws *workspace) register(name, classURI string) error {
	if t, ok := ws.types[name]; ok {
		if uri := ws.session.Classes().ClassURI(t); uri != nil && uri.URI() == ws.namespaces.Expand(classURI) {
			return nil
		}
		return fmt.Errorf("class name %q is declared twice", name)
	}
	typ := ir.NewType(name, nil)
	if err := ws.session.Register(typ, classURI); err != nil {
		return err
	}
	ws.types[name] = typ
	return nil
}

// class resolves a class argument: empty is the untyped root, a known
// name is its registered type, and a prefixed name or URI is bound on the
// fly.
func (ws *workspace) class(name string) (*resource.Class, error) {
	if name == "" {
		return ws.session.Root(), nil
	}
	if t, ok := ws.types[name]; ok {
		return ws.session.Class(t), nil
	}
	if !strings.Contains(name, ":") {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	uri := ws.namespaces.Expand(name)
	if t, ok := ws.session.Classes().TypeFor(uri); ok {
		return ws.session.Class(t), nil
	}
	if err := ws.register(name, uri); err != nil {
		return nil, err
	}
	return ws.session.Class(ws.types[name]), nil
}

// compact renders a term for output: resources as prefixed names where
// possible, literals by lexical value.
func (ws *workspace) compact(t ir.Term) string {
	switch v := t.(type) {
	case *ir.Resource:
		return ws.namespaces.Compact(v.URI())
	case ir.Literal:
		return v.Value
	default:
		return t.String()
	}
}

// Close writes metrics if requested and closes the store.
func (ws *workspace) Close() error {
	if ws.metricsOut != nil {
		if err := ws.writeMetrics(ws.metricsOut); err != nil {
			ws.logger.Warn("failed to write metrics", "error", err)
		}
	}
	return ws.store.Close()
}

func (ws *workspace) writeMetrics(w io.Writer) error {
	families, err := ws.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
