// Package harness runs conformance scenarios against an in-memory store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: find_person_by_name
//	description: "Find resolves firstName through rdfs:domain"
//	ontology:
//	  - people.cue
//	cycle_policy: fail          # or tolerate
//	steps:
//	  - op: find
//	    class: Person
//	    where:
//	      - attr: firstName
//	        values: [Alice]
//	    expect:
//	      kind: scalar
//	      values: [ex:alice]
//	  - op: get
//	    class: Person
//	    subject: ex:alice
//	    predicate: foaf:knows
//	    expect: { kind: collection, values: [ex:bob, ex:carol] }
//	  - op: exists
//	    class: Person
//	    subject: ex:alice
//	    expect: { exists: true }
//	  - op: predicates
//	    class: Employee
//	    expect: { names: [employer, firstName] }
//	  - op: identify
//	    subject: ex:alice
//	    expect: { type: Person }
//	assertions:
//	  - type: holds
//	    subject: ex:alice
//	    predicate: rdf:type
//	    object: { ref: ex:Person }
//	  - type: triple_count
//	    count: 12
//
// Ontology paths are CUE files in the format read by package compiler,
// relative to the scenario file. Every declared class becomes a model type
// of the same name; a step with no class runs on the untyped root.
//
// A where value is a literal, or {ref: name} for a resource. An expect
// clause can name an error code instead of a result:
//
//	expect: { error: UNKNOWN_ATTRIBUTE }
//
// # Assertion Types
//
//   - holds: the statement is in the store
//   - absent: the statement is not in the store
//   - triple_count: the store holds exactly count statements
//
// # Traces
//
// Each step appends one trace entry holding the rendered SPARQL of the
// built query and the folded outcome. Values are compacted through the
// scenario's prefixes and sorted, so traces are stable across runs and
// suitable for golden comparison (see RunWithGolden).
package harness
