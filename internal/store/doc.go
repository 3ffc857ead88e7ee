// Package store provides a SQLite-backed triple store.
//
// The store is the default implementation of the Query Execution Port
// (queryir.Executor). Statements live in a single triples table:
//   - subject, predicate: resource URIs
//   - object: a resource URI or a literal lexical value
//   - object_kind: "resource" or "literal"
//   - datatype: literal datatype URI, empty for resources
//   - context: named graph, empty for the default graph
//
// # Critical Patterns
//
// Content-Addressed Statements
//   - id is ir.TripleID(statement, context)
//   - Adding the same statement twice is a no-op
//
// Deterministic Query Results
//   - Every query orders by seq, the insertion sequence
//   - Ensures identical results for identical stores
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Use OpenMemory for an isolated in-memory store.
package store
