package ir

import (
	"fmt"
	"strconv"
)

// Kind classifies a node handle.
type Kind int

const (
	// KindBasic is a plain resource handle with no model type attached.
	KindBasic Kind = iota
	// KindIdentified is a resource handle bound to a model type.
	KindIdentified
	// KindVariable is a binding placeholder inside a query.
	KindVariable
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindIdentified:
		return "identified"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Term is a sealed interface over the slots of a triple pattern.
//
// Only Resource, Literal and Variable implement Term. Backends switch on
// the concrete type exhaustively:
//
//	switch t := term.(type) {
//	case *Resource:
//	case Literal:
//	case Variable:
//	}
type Term interface {
	term() // Sealed - only types in this package implement it
	Kind() Kind
	String() string
}

// Resource identifies an RDF node by URI.
//
// Resources are immutable. Obtain canonical handles from identity.Resolver
// so that the same URI always yields the same *Resource; NewResource
// exists for the resolver and for tests that need an uncached handle.
type Resource struct {
	uri  string
	kind Kind
	typ  *Type
}

func (*Resource) term() {}

// NewResource creates an uncached resource handle.
// typ is only meaningful for KindIdentified and may be nil.
func NewResource(uri string, kind Kind, typ *Type) *Resource {
	return &Resource{uri: uri, kind: kind, typ: typ}
}

// URI returns the full URI of the resource.
func (r *Resource) URI() string { return r.uri }

// Kind returns KindBasic or KindIdentified.
func (r *Resource) Kind() Kind { return r.kind }

// Type returns the model type of an identified resource, nil otherwise.
func (r *Resource) Type() *Type { return r.typ }

// LocalName returns the part of the URI after the final '#' or '/'.
func (r *Resource) LocalName() (string, error) {
	return LocalName(r.uri)
}

// String renders the resource in N-Triples form.
func (r *Resource) String() string {
	return "<" + r.uri + ">"
}

// Variable is a named binding placeholder, rendered as ?name.
type Variable string

func (Variable) term() {}

// Kind always returns KindVariable.
func (Variable) Kind() Kind { return KindVariable }

// Name returns the variable name without the leading '?'.
func (v Variable) Name() string { return string(v) }

// String renders the variable as ?name.
func (v Variable) String() string { return "?" + string(v) }

// Literal is an RDF literal: a lexical form plus a datatype URI.
// An empty Datatype means xsd:string.
type Literal struct {
	Value    string
	Datatype string
}

func (Literal) term() {}

// Kind returns KindBasic; literals are concrete values.
func (Literal) Kind() Kind { return KindBasic }

// String renders the literal in N-Triples form.
func (l Literal) String() string {
	if l.Datatype == "" || l.Datatype == XSDString {
		return strconv.Quote(l.Value)
	}
	return strconv.Quote(l.Value) + "^^<" + l.Datatype + ">"
}

// NewLiteral creates a plain string literal.
func NewLiteral(value string) Literal {
	return Literal{Value: value, Datatype: XSDString}
}
