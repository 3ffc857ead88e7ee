package queryir

import (
	"fmt"

	"github.com/roach88/activegraph/internal/ir"
)

// ValidationResult contains portability analysis of a query.
//
// The portable fragment is the subset of the Query IR that the SQL
// backend and SPARQL rendering evaluate identically. Queries outside it
// still execute; warnings describe where behavior can diverge or where
// the query is expensive.
type ValidationResult struct {
	// IsPortable indicates the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable or expensive features used in the query.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks a query against the portable fragment rules:
//  1. Explicit bindings - at least one projected variable
//  2. Every projected variable is bound by a condition
//  3. No open (?s ?p ?o) patterns - they enumerate every statement
//  4. No keyword search - substring matching is backend-specific
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(q)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	// Rule 1: explicit bindings
	if len(q.Bindings) == 0 {
		v.addWarning("Empty bindings (SELECT *) - portable fragment requires explicit projection")
	}

	// Rule 2: projections bound by conditions
	used := make(map[ir.Variable]bool)
	for _, name := range q.Variables() {
		used[name] = true
	}
	for _, b := range q.Bindings {
		if !used[b] {
			v.addWarning("Projected variable %s is not bound by any condition", b)
		}
	}

	// Rule 3: open patterns
	for i, c := range q.Conditions {
		if c.IsOpen() {
			v.addWarning("Condition %d is an open triple pattern - enumerates every statement in the store", i)
		}
	}

	// Rule 4: keyword search
	if q.KeywordSearch {
		v.addWarning("Keyword search enabled - substring matching differs between SQL LIKE and SPARQL regex")
	}
}
