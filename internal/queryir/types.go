package queryir

import (
	"context"
	"errors"

	"github.com/roach88/activegraph/internal/ir"
)

// Condition is one triple pattern. Each slot is a resource, a literal or
// a variable; subjects and predicates cannot be literals.
type Condition struct {
	Subject   ir.Term
	Predicate ir.Term
	Object    ir.Term
}

// Terms returns the three slots in order.
func (c Condition) Terms() [3]ir.Term {
	return [3]ir.Term{c.Subject, c.Predicate, c.Object}
}

// IsOpen reports whether every slot is a variable.
func (c Condition) IsOpen() bool {
	for _, t := range c.Terms() {
		if _, ok := t.(ir.Variable); !ok {
			return false
		}
	}
	return true
}

// Query is a conjunctive triple-pattern query.
type Query struct {
	// Bindings are the projected variables, in output column order.
	Bindings []ir.Variable

	// Conditions are matched conjunctively; shared variables join.
	Conditions []Condition

	// Scope is the class whose schema resolved symbolic attributes.
	// Nil for queries issued from the untyped root.
	Scope *ir.Resource

	// KeywordSearch makes literal objects match by substring instead of
	// by equality.
	KeywordSearch bool
}

// AddBindings appends projected variables, skipping duplicates.
func (q *Query) AddBindings(vars ...ir.Variable) {
	for _, v := range vars {
		if !q.Projects(v) {
			q.Bindings = append(q.Bindings, v)
		}
	}
}

// Projects reports whether v is a projected variable.
func (q *Query) Projects(v ir.Variable) bool {
	for _, b := range q.Bindings {
		if b == v {
			return true
		}
	}
	return false
}

// AddCondition appends a triple pattern.
func (q *Query) AddCondition(s, p, o ir.Term) {
	q.Conditions = append(q.Conditions, Condition{Subject: s, Predicate: p, Object: o})
}

// ActivateKeywordSearch sets the keyword search flag.
func (q *Query) ActivateKeywordSearch() {
	q.KeywordSearch = true
}

// Variables returns every variable used by a condition, in order of first
// appearance.
func (q *Query) Variables() []ir.Variable {
	seen := make(map[ir.Variable]bool)
	var out []ir.Variable
	for _, c := range q.Conditions {
		for _, t := range c.Terms() {
			if v, ok := t.(ir.Variable); ok && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Check reports structural errors that no backend can execute.
//
// Returns ir.ErrNilResource for an empty slot and ir.ErrTypeMismatch for a
// literal in subject or predicate position or a projection that no
// condition binds.
func (q *Query) Check() error {
	if len(q.Conditions) == 0 {
		return ir.NewError(ir.CodeNilResource, "query has no conditions", "")
	}
	for i, c := range q.Conditions {
		for j, t := range c.Terms() {
			if t == nil {
				return ir.Errorf(ir.CodeNilResource, "condition %d slot %d is empty", i, j)
			}
			if r, ok := t.(*ir.Resource); ok && r == nil {
				return ir.Errorf(ir.CodeNilResource, "condition %d slot %d is a nil resource", i, j)
			}
		}
		if _, ok := c.Subject.(ir.Literal); ok {
			return ir.Errorf(ir.CodeTypeMismatch, "condition %d has a literal subject", i)
		}
		if _, ok := c.Predicate.(ir.Literal); ok {
			return ir.Errorf(ir.CodeTypeMismatch, "condition %d has a literal predicate", i)
		}
	}
	used := make(map[ir.Variable]bool)
	for _, v := range q.Variables() {
		used[v] = true
	}
	for _, b := range q.Bindings {
		if !used[b] {
			return ir.Errorf(ir.CodeTypeMismatch, "projected variable %s is not bound by any condition", b)
		}
	}
	return nil
}

// Row is one result tuple, aligned with ResultSet.Vars.
type Row []ir.Term

// ResultSet is the raw answer of an executor.
type ResultSet struct {
	Vars []ir.Variable
	Rows []Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.Rows) }

// Empty reports whether the result set has no rows.
func (rs *ResultSet) Empty() bool { return len(rs.Rows) == 0 }

// Column returns the index of v in Vars, or -1.
func (rs *ResultSet) Column(v ir.Variable) int {
	for i, name := range rs.Vars {
		if name == v {
			return i
		}
	}
	return -1
}

// Value returns the term bound to v in row i.
func (rs *ResultSet) Value(i int, v ir.Variable) (ir.Term, bool) {
	col := rs.Column(v)
	if col < 0 || i < 0 || i >= len(rs.Rows) {
		return nil, false
	}
	return rs.Rows[i][col], true
}

// RowFunc is called once per result row. Returning ErrStop ends the
// iteration early without an error.
type RowFunc func(Row) error

// ErrStop stops an Each iteration cleanly.
var ErrStop = errors.New("stop iteration")

// Executor is the Query Execution Port.
//
// Implementations must support projection, mixed concrete/variable slots,
// the scope field and keyword search. Execute materializes every row; Each
// streams rows to fn without materializing the set. Transport errors are
// returned verbatim.
type Executor interface {
	Execute(ctx context.Context, q Query) (*ResultSet, error)
	Each(ctx context.Context, q Query, fn RowFunc) error
}

// Collect drains Each into a ResultSet. Executors can implement Execute
// with it.
func Collect(ctx context.Context, e Executor, q Query) (*ResultSet, error) {
	rs := &ResultSet{Vars: append([]ir.Variable(nil), q.Bindings...), Rows: []Row{}}
	err := e.Each(ctx, q, func(row Row) error {
		rs.Rows = append(rs.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}
