package queryir

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/ir"
)

var (
	alice     = ir.NewResource("http://ex.org/alice", ir.KindBasic, nil)
	firstName = ir.NewResource("http://xmlns.com/foaf/0.1/firstName", ir.KindBasic, nil)
)

func TestQuery_AddBindingsSkipsDuplicates(t *testing.T) {
	var q Query
	q.AddBindings("s", "o", "s")

	assert.Equal(t, []ir.Variable{"s", "o"}, q.Bindings)
	assert.True(t, q.Projects("o"))
	assert.False(t, q.Projects("p"))
}

func TestQuery_VariablesInOrderOfAppearance(t *testing.T) {
	var q Query
	q.AddCondition(ir.Variable("s"), firstName, ir.Variable("name"))
	q.AddCondition(ir.Variable("s"), ir.Variable("p"), ir.Variable("name"))

	assert.Equal(t, []ir.Variable{"s", "name", "p"}, q.Variables())
}

func TestCondition_IsOpen(t *testing.T) {
	open := Condition{Subject: ir.Variable("s"), Predicate: ir.Variable("p"), Object: ir.Variable("o")}
	closed := Condition{Subject: alice, Predicate: ir.Variable("p"), Object: ir.Variable("o")}

	assert.True(t, open.IsOpen())
	assert.False(t, closed.IsOpen())
}

func TestQuery_Check(t *testing.T) {
	tests := []struct {
		name  string
		build func(q *Query)
		code  ir.ErrorCode
	}{
		{"valid", func(q *Query) {
			q.AddBindings("o")
			q.AddCondition(alice, firstName, ir.Variable("o"))
		}, ""},
		{"no conditions", func(q *Query) {}, ir.CodeNilResource},
		{"nil slot", func(q *Query) {
			q.AddCondition(alice, nil, ir.Variable("o"))
		}, ir.CodeNilResource},
		{"nil resource slot", func(q *Query) {
			var missing *ir.Resource
			q.AddCondition(missing, firstName, ir.Variable("o"))
		}, ir.CodeNilResource},
		{"literal subject", func(q *Query) {
			q.AddCondition(ir.NewLiteral("x"), firstName, ir.Variable("o"))
		}, ir.CodeTypeMismatch},
		{"literal predicate", func(q *Query) {
			q.AddCondition(alice, ir.NewLiteral("x"), ir.Variable("o"))
		}, ir.CodeTypeMismatch},
		{"unbound projection", func(q *Query) {
			q.AddBindings("z")
			q.AddCondition(alice, firstName, ir.Variable("o"))
		}, ir.CodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Query
			tt.build(&q)
			err := q.Check()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, ir.CodeOf(err))
		})
	}
}

func TestResultSet_Value(t *testing.T) {
	rs := &ResultSet{
		Vars: []ir.Variable{"p", "o"},
		Rows: []Row{{firstName, ir.NewLiteral("Alice")}},
	}

	v, ok := rs.Value(0, "o")
	require.True(t, ok)
	assert.Equal(t, ir.NewLiteral("Alice"), v)

	_, ok = rs.Value(0, "missing")
	assert.False(t, ok)
	_, ok = rs.Value(3, "o")
	assert.False(t, ok)
	assert.Equal(t, 1, rs.Len())
	assert.False(t, rs.Empty())
}

// sliceExecutor streams a fixed set of rows.
type sliceExecutor struct {
	rows []Row
	err  error
}

func (s sliceExecutor) Execute(ctx context.Context, q Query) (*ResultSet, error) {
	return Collect(ctx, s, q)
}

func (s sliceExecutor) Each(_ context.Context, _ Query, fn RowFunc) error {
	if s.err != nil {
		return s.err
	}
	for _, r := range s.rows {
		if err := fn(r); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func TestCollect(t *testing.T) {
	exec := sliceExecutor{rows: []Row{{alice}, {firstName}}}
	q := Query{Bindings: []ir.Variable{"s"}}

	rs, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []ir.Variable{"s"}, rs.Vars)
	assert.Len(t, rs.Rows, 2)
}

func TestCollect_EmptyIsNotNil(t *testing.T) {
	rs, err := Collect(context.Background(), sliceExecutor{}, Query{Bindings: []ir.Variable{"s"}})
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.True(t, rs.Empty())
}

func TestCollect_PropagatesError(t *testing.T) {
	boom := errors.New("connection refused")
	rs, err := Collect(context.Background(), sliceExecutor{err: boom}, Query{})
	assert.Nil(t, rs)
	assert.Same(t, boom, err)
}
