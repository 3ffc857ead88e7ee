package namespace

// Standard namespace IRIs.
//
// References:
// - RDF: https://www.w3.org/TR/rdf11-concepts/
// - RDFS: https://www.w3.org/TR/rdf-schema/
// - OWL: https://www.w3.org/TR/owl2-overview/
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	OWL  = "http://www.w3.org/2002/07/owl#"
	XSD  = "http://www.w3.org/2001/XMLSchema#"
	FOAF = "http://xmlns.com/foaf/0.1/"
)

// Well-known terms used by discovery and type scoping.
const (
	// RDFType asserts class membership.
	RDFType = RDF + "type"

	// RDFProperty is the class of properties.
	RDFProperty = RDF + "Property"

	// RDFSResource is the top type: the class URI of the untyped root.
	RDFSResource = RDFS + "Resource"

	// RDFSClass is the class of classes.
	RDFSClass = RDFS + "Class"

	// RDFSDomain declares which class a predicate applies to.
	RDFSDomain = RDFS + "domain"

	// RDFSRange declares the value class of a predicate.
	RDFSRange = RDFS + "range"

	// RDFSSubClassOf links a class to its superclass.
	RDFSSubClassOf = RDFS + "subClassOf"

	// RDFSLabel provides a human-readable name.
	RDFSLabel = RDFS + "label"

	// OWLThing is the universal class; predicates with this domain apply
	// to every class.
	OWLThing = OWL + "Thing"
)
