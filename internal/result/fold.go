// Package result folds raw result sets into absent, scalar or collection
// values.
package result

import (
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
)

// Kind tags a folded Result.
type Kind int

const (
	// Absent means no rows matched.
	Absent Kind = iota
	// Scalar means exactly one distinct row matched.
	Scalar
	// Collection means several distinct rows matched.
	Collection
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Scalar:
		return "scalar"
	case Collection:
		return "collection"
	default:
		return "unknown"
	}
}

// Result is a folded result set.
//
// Rows are distinct by canonical tuple key and keep first-seen order. The
// order is stable for a given store but carries no meaning.
type Result struct {
	kind Kind
	vars []ir.Variable
	rows []queryir.Row
}

// Kind returns the result tag.
func (r Result) Kind() Kind { return r.kind }

// IsAbsent reports whether nothing matched.
func (r Result) IsAbsent() bool { return r.kind == Absent }

// Len returns the number of distinct rows.
func (r Result) Len() int { return len(r.rows) }

// Vars returns the projected variables.
func (r Result) Vars() []ir.Variable { return r.vars }

// Rows returns the distinct rows.
func (r Result) Rows() []queryir.Row { return r.rows }

// Scalar returns the single row of a Scalar result.
func (r Result) Scalar() (queryir.Row, bool) {
	if r.kind != Scalar {
		return nil, false
	}
	return r.rows[0], true
}

// Term returns the value of a single-variable Scalar result.
func (r Result) Term() (ir.Term, bool) {
	row, ok := r.Scalar()
	if !ok || len(row) != 1 {
		return nil, false
	}
	return row[0], true
}

// Terms returns the first column of every row. For single-variable
// queries this is the list of values regardless of kind.
func (r Result) Terms() []ir.Term {
	out := make([]ir.Term, 0, len(r.rows))
	for _, row := range r.rows {
		if len(row) > 0 {
			out = append(out, row[0])
		}
	}
	return out
}

// Fold collapses a result set: no rows is Absent, one distinct row is
// Scalar, several distinct rows are a Collection.
//
// Returns ir.ErrNilResult when rs is nil, which marks a failed execution.
// An empty result set is not an error.
func Fold(rs *queryir.ResultSet) (Result, error) {
	if rs == nil {
		return Result{}, ir.NewError(ir.CodeNilResult, "result set is absent", "")
	}

	seen := make(map[string]bool, len(rs.Rows))
	rows := make([]queryir.Row, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		key := ir.TupleKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}

	r := Result{vars: rs.Vars, rows: rows}
	switch len(rows) {
	case 0:
		r.kind = Absent
	case 1:
		r.kind = Scalar
	default:
		r.kind = Collection
	}
	return r, nil
}
