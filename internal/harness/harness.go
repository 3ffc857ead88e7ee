package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/activegraph/internal/compiler"
	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/querysparql"
	"github.com/roach88/activegraph/internal/resource"
	"github.com/roach88/activegraph/internal/result"
	"github.com/roach88/activegraph/internal/schema"
	"github.com/roach88/activegraph/internal/store"
	"github.com/roach88/activegraph/internal/testutil"
)

// Harness executes one scenario against a fresh store.
type Harness struct {
	store      *store.Store
	session    *resource.Session
	namespaces *namespace.Registry
	renderer   *querysparql.Renderer
	types      map[string]*ir.Type
	seq        *testutil.Sequence
	logger     *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in its own in-memory database:
// 1. Load and emit the ontology files
// 2. Register one model type per declared class
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions against the final store
//
// Step failures are recorded in the trace and compared against the
// expect clause; only infrastructure failures are returned as errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(ctx, st, scenario)
	if err != nil {
		return nil, err
	}

	res := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.executeStep(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		res.AddTrace(ev)
		for _, msg := range checkExpect(i, step, ev) {
			res.AddError(msg)
		}
		h.logger.Info("step completed", "step", i, "op", step.Op, "outcome", ev.Outcome())
	}

	actx := &AssertionContext{Ctx: ctx, Store: st, Session: h.session}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		res.AddError(msg)
	}
	return res, nil
}

func newHarness(ctx context.Context, st *store.Store, scenario *Scenario) (*Harness, error) {
	onto, err := compiler.LoadFiles(scenario.Ontology...)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}

	ns := namespace.New()
	resolver := identity.New(identity.WithGenerator(testutil.NewCountingGenerator("")))
	triples, err := compiler.NewEmitter(ns, resolver, nil).Triples(onto)
	if err != nil {
		return nil, fmt.Errorf("failed to emit ontology: %w", err)
	}
	if _, err := st.Add(ctx, triples...); err != nil {
		return nil, fmt.Errorf("failed to load triples: %w", err)
	}

	policy := schema.CycleFail
	if scenario.CyclePolicy == "tolerate" {
		policy = schema.CycleTolerate
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := resource.NewSession(st,
		resource.WithResolver(resolver),
		resource.WithNamespaces(ns),
		resource.WithCyclePolicy(policy),
		resource.WithLogger(logger),
	)

	types := make(map[string]*ir.Type)
	for _, b := range onto.Bindings() {
		if err := session.Register(b.Type, b.URI); err != nil {
			return nil, fmt.Errorf("failed to register class %s: %w", b.Type.Name(), err)
		}
		types[b.Type.Name()] = b.Type
	}

	return &Harness{
		store:      st,
		session:    session,
		namespaces: ns,
		renderer:   querysparql.NewRenderer(ns),
		types:      types,
		seq:        testutil.NewSequence(),
		logger:     logger,
	}, nil
}

// executeStep runs one step. Errors from the operation itself are
// captured in the event; an unknown class name is a scenario error.
func (h *Harness) executeStep(ctx context.Context, step Step) (TraceEvent, error) {
	typ := ir.RootType
	if step.Class != "" {
		t, ok := h.types[step.Class]
		if !ok {
			return TraceEvent{}, fmt.Errorf("unknown class %q", step.Class)
		}
		typ = t
	}
	class := h.session.Class(typ)

	ev := TraceEvent{Seq: h.seq.Next(), Op: step.Op, Class: typ.Name()}
	var err error
	switch step.Op {
	case OpFind:
		err = h.find(ctx, class, step, &ev)
	case OpGet:
		err = h.get(ctx, class, step, &ev)
	case OpExists:
		err = h.exists(ctx, class, step, &ev)
	case OpPredicates:
		err = h.predicates(ctx, class, &ev)
	case OpIdentify:
		err = h.identify(ctx, step, &ev)
	default:
		return TraceEvent{}, fmt.Errorf("unknown op %q", step.Op)
	}
	if err != nil {
		ev.Error = errorCode(err)
	}
	return ev, nil
}

func (h *Harness) find(ctx context.Context, class *resource.Class, step Step, ev *TraceEvent) error {
	conds := make(resource.Conditions, 0, len(step.Where))
	for _, w := range step.Where {
		values := make([]any, 0, len(w.Values))
		for _, v := range w.Values {
			val, err := h.value(v)
			if err != nil {
				return err
			}
			values = append(values, val)
		}
		conds = append(conds, resource.Where(w.Attr, values...))
	}
	opts := resource.FindOptions{KeywordSearch: step.Keyword}

	q, err := class.BuildFind(ctx, conds, opts)
	if err != nil {
		return err
	}
	if ev.Query, err = h.renderer.Render(q); err != nil {
		return err
	}
	res, err := class.FindWith(ctx, conds, opts)
	if err != nil {
		return err
	}
	h.fold(res, ev)
	return nil
}

func (h *Harness) get(ctx context.Context, class *resource.Class, step Step, ev *TraceEvent) error {
	subject, err := h.session.Resource(step.Subject)
	if err != nil {
		return err
	}
	predicate, err := h.session.Resource(step.Predicate)
	if err != nil {
		return err
	}
	q, err := class.BuildGet(subject, predicate)
	if err != nil {
		return err
	}
	if ev.Query, err = h.renderer.Render(q); err != nil {
		return err
	}
	res, err := class.Get(ctx, subject, predicate)
	if err != nil {
		return err
	}
	h.fold(res, ev)
	return nil
}

func (h *Harness) exists(ctx context.Context, class *resource.Class, step Step, ev *TraceEvent) error {
	q, err := class.BuildExists(step.Subject)
	if err != nil {
		return err
	}
	if ev.Query, err = h.renderer.Render(q); err != nil {
		return err
	}
	ok, err := class.Exists(ctx, step.Subject)
	if err != nil {
		return err
	}
	ev.Exists = &ok
	return nil
}

func (h *Harness) predicates(ctx context.Context, class *resource.Class, ev *TraceEvent) error {
	preds, err := class.Predicates(ctx)
	if err != nil {
		return err
	}
	for _, name := range preds.Names() {
		ev.Values = append(ev.Values, name+"="+h.namespaces.Compact(preds[name].URI()))
	}
	return nil
}

func (h *Harness) identify(ctx context.Context, step Step, ev *TraceEvent) error {
	r, err := h.session.Identify(ctx, step.Subject)
	if err != nil {
		return err
	}
	ev.Values = []string{h.namespaces.Compact(r.URI())}
	ev.Type = r.Type().Name()
	return nil
}

func (h *Harness) fold(res result.Result, ev *TraceEvent) {
	ev.Kind = res.Kind().String()
	for _, t := range res.Terms() {
		ev.Values = append(ev.Values, h.render(t))
	}
	sort.Strings(ev.Values)
}

// value converts a YAML value to a find value: {ref: name} maps become
// resources, everything else is passed to the literal coercer.
func (h *Harness) value(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	ref, ok := m["ref"].(string)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("value map must be {ref: name}, got %v", m)
	}
	r, err := h.session.Resource(ref)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// render formats a term for traces: resources compacted, literals by
// lexical value.
func (h *Harness) render(t ir.Term) string {
	switch v := t.(type) {
	case *ir.Resource:
		return h.namespaces.Compact(v.URI())
	case ir.Literal:
		return v.Value
	default:
		return t.String()
	}
}

func errorCode(err error) string {
	if code := ir.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}

// checkExpect compares an event against the step's expect clause.
func checkExpect(index int, step Step, ev TraceEvent) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("step %d (%s): ", index, step.Op)+fmt.Sprintf(format, args...))
	}
	exp := step.Expect

	if exp.Error != "" || ev.Error != "" {
		if exp.Error != ev.Error {
			fail("expected error %q, got %q", exp.Error, ev.Error)
		}
		return errs
	}

	if exp.Kind != "" && exp.Kind != ev.Kind {
		fail("expected kind %s, got %s", exp.Kind, ev.Kind)
	}
	if exp.Values != nil && !sameSet(exp.Values, outcomeValues(ev)) {
		fail("expected values %v, got %v", exp.Values, outcomeValues(ev))
	}
	if exp.Exists != nil && (ev.Exists == nil || *exp.Exists != *ev.Exists) {
		fail("expected exists %t, got %s", *exp.Exists, ev.Outcome())
	}
	if exp.Names != nil {
		var names []string
		for _, v := range ev.Values {
			name, _, _ := strings.Cut(v, "=")
			names = append(names, name)
		}
		if !sameSet(exp.Names, names) {
			fail("expected names %v, got %v", exp.Names, names)
		}
	}
	if exp.Type != "" && exp.Type != ev.Type {
		fail("expected type %s, got %s", exp.Type, ev.Type)
	}
	return errs
}

// outcomeValues returns the values an expect clause compares against.
// For predicates steps these are the predicate names after "=".
func outcomeValues(ev TraceEvent) []string {
	if ev.Op != OpPredicates {
		return ev.Values
	}
	out := make([]string, len(ev.Values))
	for i, v := range ev.Values {
		_, uri, _ := strings.Cut(v, "=")
		out[i] = uri
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
