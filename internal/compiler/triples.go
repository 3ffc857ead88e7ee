package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
)

// BlankPrefix marks a reference to an anonymous resource by name.
const BlankPrefix = "_:"

// Emitter turns an ontology into statements.
type Emitter struct {
	namespaces *namespace.Registry
	resolver   *identity.Resolver
	coercer    ir.Coercer

	// blanks maps anonymous resource names to their minted subjects for
	// the duration of one Triples call.
	blanks map[string]*ir.Resource
}

// NewEmitter creates an emitter. Prefixes declared by an ontology are bound
// into ns as it is emitted.
func NewEmitter(ns *namespace.Registry, resolver *identity.Resolver, coercer ir.Coercer) *Emitter {
	if coercer == nil {
		coercer = ir.XSDCoercer{}
	}
	return &Emitter{namespaces: ns, resolver: resolver, coercer: coercer}
}

// Triples emits the statements of o in declaration order:
//   - classes: rdf:type rdfs:Class, rdfs:label, rdfs:subClassOf
//   - properties: rdf:type rdf:Property, rdfs:label, rdfs:domain, rdfs:range
//   - resources: rdf:type, then each value
//
// Anonymous resources get a fresh subject from the resolver's blank
// generator on every call.
func (e *Emitter) Triples(o *Ontology) ([]ir.Triple, error) {
	for _, p := range o.Prefixes {
		if err := e.namespaces.Bind(p.Name, p.IRI); err != nil {
			return nil, fmt.Errorf("prefix %s: %w", p.Name, err)
		}
	}

	e.blanks = make(map[string]*ir.Resource)
	defer func() { e.blanks = nil }()
	for _, r := range o.Resources {
		if r.URI == "" {
			e.blanks[r.Name] = e.resolver.Blank()
		}
	}

	var (
		out   []ir.Triple
		emit  = func(t ir.Triple) { out = append(out, t) }
		terms = struct {
			typ, class, property, label, subClassOf, domain, rng *ir.Resource
		}{
			typ:        e.resolver.MustBasic(namespace.RDFType),
			class:      e.resolver.MustBasic(namespace.RDFSClass),
			property:   e.resolver.MustBasic(namespace.RDFProperty),
			label:      e.resolver.MustBasic(namespace.RDFSLabel),
			subClassOf: e.resolver.MustBasic(namespace.RDFSSubClassOf),
			domain:     e.resolver.MustBasic(namespace.RDFSDomain),
			rng:        e.resolver.MustBasic(namespace.RDFSRange),
		}
	)

	for _, c := range o.Classes {
		class, err := e.resource(c.URI)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Name, err)
		}
		emit(ir.NewTriple(class, terms.typ, terms.class))
		if c.Label != "" {
			emit(ir.NewTriple(class, terms.label, ir.NewLiteral(c.Label)))
		}
		for _, s := range c.SubClassOf {
			super, err := e.resource(s)
			if err != nil {
				return nil, fmt.Errorf("class %s: subClassOf: %w", c.Name, err)
			}
			emit(ir.NewTriple(class, terms.subClassOf, super))
		}
	}

	for _, p := range o.Properties {
		pred, err := e.resource(p.URI)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		emit(ir.NewTriple(pred, terms.typ, terms.property))
		if p.Label != "" {
			emit(ir.NewTriple(pred, terms.label, ir.NewLiteral(p.Label)))
		}
		for _, d := range p.Domain {
			domain, err := e.resource(d)
			if err != nil {
				return nil, fmt.Errorf("property %s: domain: %w", p.Name, err)
			}
			emit(ir.NewTriple(pred, terms.domain, domain))
		}
		if p.Range != "" {
			rng, err := e.resource(p.Range)
			if err != nil {
				return nil, fmt.Errorf("property %s: range: %w", p.Name, err)
			}
			emit(ir.NewTriple(pred, terms.rng, rng))
		}
	}

	for _, r := range o.Resources {
		subject := e.blanks[r.Name]
		if r.URI != "" {
			var err error
			if subject, err = e.resource(r.URI); err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.Name, err)
			}
		}
		for _, t := range r.Types {
			class, err := e.resource(t)
			if err != nil {
				return nil, fmt.Errorf("resource %s: type: %w", r.Name, err)
			}
			emit(ir.NewTriple(subject, terms.typ, class))
		}
		for _, v := range r.Values {
			pred, err := e.resource(v.Predicate)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.Name, err)
			}
			for _, obj := range v.Objects {
				term, err := e.object(obj)
				if err != nil {
					return nil, fmt.Errorf("resource %s: %s: %w", r.Name, v.Predicate, err)
				}
				emit(ir.NewTriple(subject, pred, term))
			}
		}
	}

	return out, nil
}

func (e *Emitter) resource(name string) (*ir.Resource, error) {
	return e.resolver.Basic(e.namespaces.Expand(name))
}

func (e *Emitter) object(o Object) (ir.Term, error) {
	if o.IsRef() {
		if name, ok := strings.CutPrefix(o.Ref, BlankPrefix); ok {
			blank, ok := e.blanks[name]
			if !ok {
				return nil, ir.Errorf(ir.CodeInvalidURI, "no anonymous resource named %q", name)
			}
			return blank, nil
		}
		return e.resource(o.Ref)
	}
	if o.Datatype != "" {
		s, ok := o.Value.(string)
		if !ok {
			return nil, ir.Errorf(ir.CodeTypeMismatch, "typed literal value must be a string, got %T", o.Value)
		}
		return ir.Literal{Value: s, Datatype: e.namespaces.Expand(o.Datatype)}, nil
	}
	lit, err := e.coercer.Coerce(o.Value)
	if err != nil {
		return nil, err
	}
	return lit, nil
}
