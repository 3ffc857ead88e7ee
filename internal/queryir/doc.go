// Package queryir provides the triple-pattern query representation that
// sits between the resource layer and the backends that execute it.
//
// ARCHITECTURE:
//
// The Query IR is the contract of the Query Execution Port:
//
//	[resource.Class] → [Query IR] → [SQL backend (querysql + store)]
//	                              → [SPARQL text (querysparql)]
//
// A Query is an ordered list of triple conditions, an ordered list of
// projected binding variables, an optional class scope and a keyword
// search flag. Every condition slot is an ir.Term: a concrete resource,
// a literal, or a variable. Conditions sharing a variable join on it.
//
// Example:
//
//	q := queryir.Query{}
//	q.AddBindings("s")
//	q.AddCondition(ir.Variable("s"), rdfType, person)
//	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("Alice"))
//
// corresponds to the SPARQL
//
//	SELECT ?s WHERE {
//	  ?s rdf:type ex:Person .
//	  ?s foaf:firstName "Alice" .
//	}
//
// PORTABLE FRAGMENT:
//
// Queries built by the resource layer only use conjunctive basic graph
// patterns with explicit projections. Validate reports features that
// behave differently across backends (keyword search, open patterns,
// projections that no condition binds).
//
// EXECUTION:
//
// Executors return a *ResultSet whose rows align with the projected
// variables. An empty result set is a valid answer; a nil result set
// together with a nil error is a broken executor and folds to
// ir.ErrNilResult.
package queryir
