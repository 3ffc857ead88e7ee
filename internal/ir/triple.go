package ir

// Triple is a concrete statement. Subject and predicate are resources;
// the object is a resource or a literal.
type Triple struct {
	Subject   *Resource
	Predicate *Resource
	Object    Term
}

// NewTriple creates a triple.
func NewTriple(s, p *Resource, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String renders the triple in N-Triples form.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}
