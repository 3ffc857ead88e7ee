package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/result"
	"github.com/roach88/activegraph/internal/schema"
)

// Query variables used by the builders.
const (
	varSubject   ir.Variable = "s"
	varPredicate ir.Variable = "p"
	varObject    ir.Variable = "o"
)

// Class is a model type bound to a Session.
type Class struct {
	session *Session
	typ     *ir.Type
}

// Type returns the model type.
func (c *Class) Type() *ir.Type { return c.typ }

// URI returns the class URI the type is registered under, or rdfs:Resource.
func (c *Class) URI() *ir.Resource { return c.session.classes.ClassURI(c.typ) }

// Predicates returns the attributes available on the class.
func (c *Class) Predicates(ctx context.Context) (schema.PredicateMap, error) {
	return c.session.discoverer.Discover(ctx, c.URI())
}

// BuildGet builds the query for the values of predicate on subject.
// Both must be resource handles; anything else is ir.ErrTypeMismatch.
func (c *Class) BuildGet(subject, predicate any) (queryir.Query, error) {
	s, err := handle(subject, "subject")
	if err != nil {
		return queryir.Query{}, err
	}
	p, err := handle(predicate, "predicate")
	if err != nil {
		return queryir.Query{}, err
	}

	q := c.newQuery()
	q.AddBindings(varObject)
	q.AddCondition(s, p, varObject)
	return q, nil
}

// BuildFind builds the query for resources matching every condition.
//
// Symbolic attribute names are resolved through predicate discovery for
// this class; a name with no predicate is ir.ErrUnknownAttribute. Each
// value of a condition adds one triple pattern. Class-scoped types get an
// implicit (?s rdf:type class) condition first. Without conditions the
// query matches every statement, which is expensive on a large store.
func (c *Class) BuildFind(ctx context.Context, conds Conditions, opts FindOptions) (queryir.Query, error) {
	q := c.newQuery()
	q.AddBindings(varSubject)
	if c.typ.IsClassScoped() {
		q.AddCondition(varSubject, c.session.rdfType, c.URI())
	}

	if len(conds) == 0 {
		c.session.logger.Warn("find without conditions enumerates every statement",
			"class", c.URI().URI())
		q.AddCondition(varSubject, varPredicate, varObject)
	}

	var preds schema.PredicateMap
	for _, cond := range conds {
		pred, err := c.predicate(ctx, cond.Attribute, &preds)
		if err != nil {
			return queryir.Query{}, err
		}
		if len(cond.Values) == 0 {
			// Attribute present with any value.
			q.AddCondition(varSubject, pred, ir.Variable(fmt.Sprintf("%s%d", varObject, len(q.Conditions))))
			continue
		}
		for _, v := range cond.Values {
			obj, err := c.object(v)
			if err != nil {
				return queryir.Query{}, err
			}
			q.AddCondition(varSubject, pred, obj)
		}
	}

	if opts.KeywordSearch {
		q.ActivateKeywordSearch()
	}
	return q, nil
}

// BuildExists builds the query that matches any statement about res.
// res is a handle or a URI string; nil is ir.ErrNilResource. For
// class-scoped types the resource must also carry the class.
func (c *Class) BuildExists(res any) (queryir.Query, error) {
	var subject *ir.Resource
	switch v := res.(type) {
	case nil:
		return queryir.Query{}, ir.NewError(ir.CodeNilResource, "exists requires a resource", "")
	case string:
		r, err := c.session.Resource(v)
		if err != nil {
			return queryir.Query{}, err
		}
		subject = r
	default:
		r, err := handle(v, "resource")
		if err != nil {
			return queryir.Query{}, err
		}
		subject = r
	}

	q := c.newQuery()
	q.AddBindings(varPredicate, varObject)
	if c.typ.IsClassScoped() {
		q.AddCondition(subject, c.session.rdfType, c.URI())
	}
	q.AddCondition(subject, varPredicate, varObject)
	return q, nil
}

// Get returns the values of predicate on subject.
func (c *Class) Get(ctx context.Context, subject, predicate any) (result.Result, error) {
	q, err := c.BuildGet(subject, predicate)
	if err != nil {
		return result.Result{}, err
	}
	return c.run(ctx, q, nil)
}

// Find returns the resources matching every condition.
func (c *Class) Find(ctx context.Context, conds ...Condition) (result.Result, error) {
	return c.FindWith(ctx, conds, FindOptions{})
}

// FindWith is Find with options.
func (c *Class) FindWith(ctx context.Context, conds Conditions, opts FindOptions) (result.Result, error) {
	q, err := c.BuildFind(ctx, conds, opts)
	if err != nil {
		return result.Result{}, err
	}
	var typ *ir.Type
	if c.typ.IsClassScoped() {
		typ = c.typ
	}
	return c.run(ctx, q, typ)
}

// Each streams the resources matching every condition to fn without
// folding. A resource matched by several statements is passed once per
// match. Returning queryir.ErrStop from fn ends iteration cleanly.
func (c *Class) Each(ctx context.Context, conds Conditions, opts FindOptions, fn func(*ir.Resource) error) error {
	q, err := c.BuildFind(ctx, conds, opts)
	if err != nil {
		return err
	}
	return c.session.exec.Each(ctx, q, func(row queryir.Row) error {
		r, ok := row[0].(*ir.Resource)
		if !ok {
			return nil
		}
		h, err := c.canonical(r, c.scopedType())
		if err != nil {
			return err
		}
		return fn(h)
	})
}

// Exists reports whether the store holds any statement about res.
func (c *Class) Exists(ctx context.Context, res any) (bool, error) {
	q, err := c.BuildExists(res)
	if err != nil {
		return false, err
	}
	found := false
	err = c.session.exec.Each(ctx, q, func(queryir.Row) error {
		found = true
		return queryir.ErrStop
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (c *Class) newQuery() queryir.Query {
	var q queryir.Query
	if !c.typ.IsRoot() {
		q.Scope = c.URI()
	}
	return q
}

func (c *Class) scopedType() *ir.Type {
	if c.typ.IsClassScoped() {
		return c.typ
	}
	return nil
}

// run executes q and folds the result. Resources in the result are
// replaced by canonical handles; subjects of a class-scoped find are
// identified with the class type.
func (c *Class) run(ctx context.Context, q queryir.Query, typ *ir.Type) (result.Result, error) {
	rs, err := c.session.exec.Execute(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	if rs != nil {
		for _, row := range rs.Rows {
			for i, t := range row {
				r, ok := t.(*ir.Resource)
				if !ok {
					continue
				}
				if row[i], err = c.canonical(r, typ); err != nil {
					return result.Result{}, err
				}
			}
		}
	}
	return result.Fold(rs)
}

func (c *Class) canonical(r *ir.Resource, typ *ir.Type) (*ir.Resource, error) {
	if typ != nil {
		return c.session.resolver.Identify(r.URI(), typ)
	}
	return c.session.resolver.Canonical(r)
}

// predicate resolves a condition attribute. preds caches the discovered
// map for the duration of one build.
func (c *Class) predicate(ctx context.Context, attr any, preds *schema.PredicateMap) (*ir.Resource, error) {
	switch a := attr.(type) {
	case *ir.Resource:
		if a == nil {
			return nil, ir.NewError(ir.CodeNilResource, "attribute is a nil resource", "")
		}
		return a, nil
	case string:
		if strings.Contains(a, ":") {
			return c.session.Resource(a)
		}
		if *preds == nil {
			m, err := c.Predicates(ctx)
			if err != nil {
				return nil, err
			}
			*preds = m
		}
		if p, ok := preds.Lookup(a); ok {
			return p, nil
		}
		return nil, &ir.Error{
			Code:    ir.CodeUnknownAttribute,
			Message: "no predicate named " + a + " for class",
			URI:     c.URI().URI(),
		}
	case nil:
		return nil, ir.NewError(ir.CodeNilResource, "attribute is nil", "")
	default:
		return nil, ir.Errorf(ir.CodeTypeMismatch, "attribute must be a resource or a name, got %T", attr)
	}
}

// object converts a condition value to a term.
func (c *Class) object(v any) (ir.Term, error) {
	switch t := v.(type) {
	case *ir.Resource:
		if t == nil {
			return nil, ir.NewError(ir.CodeNilResource, "value is a nil resource", "")
		}
		return t, nil
	case ir.Literal:
		return t, nil
	case ir.Variable:
		return t, nil
	case nil:
		return nil, ir.NewError(ir.CodeNilResource, "value is nil", "")
	default:
		lit, err := c.session.coercer.Coerce(v)
		if err != nil {
			return nil, err
		}
		return lit, nil
	}
}

func handle(v any, role string) (*ir.Resource, error) {
	r, ok := v.(*ir.Resource)
	if !ok {
		return nil, ir.Errorf(ir.CodeTypeMismatch, "%s must be a resource handle, got %T", role, v)
	}
	if r == nil {
		return nil, ir.Errorf(ir.CodeNilResource, "%s is a nil resource", role)
	}
	return r, nil
}
