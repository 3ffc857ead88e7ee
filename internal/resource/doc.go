// Package resource exposes typed reads over an RDF store.
//
// A Session wires the identity resolver, class registry, namespace
// registry, predicate discovery and a query executor together. A Class
// binds one model type to a Session and offers Get, Find and Exists:
//
//	person := ir.NewType("Person", nil)
//	sess.Register(person, "http://ex.org/Person")
//	r, err := sess.Class(person).Find(ctx, resource.Where("firstName", "Alice"))
//
// Reads build a triple-pattern query, run it through the executor and fold
// the rows: no match is absent, one distinct match is a scalar, more are a
// collection. Zero rows is never an error.
package resource
