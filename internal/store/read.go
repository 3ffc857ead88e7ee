package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/querysql"
)

var _ queryir.Executor = (*Store)(nil)

// Execute runs a query and materializes every row.
// Returns an empty (non-nil) result set when nothing matches.
func (s *Store) Execute(ctx context.Context, q queryir.Query) (*queryir.ResultSet, error) {
	return queryir.Collect(ctx, s, q)
}

// Each runs a query and calls fn once per row, in insertion order of the
// matched statements. Returning queryir.ErrStop from fn ends iteration
// without an error.
func (s *Store) Each(ctx context.Context, q queryir.Query, fn queryir.RowFunc) error {
	sqlText, params, err := querysql.NewSQLCompiler(s.context).Compile(q)
	if err != nil {
		return err
	}
	s.logger.Debug("execute query",
		"conditions", len(q.Conditions),
		"bindings", len(q.Bindings),
		"keyword_search", q.KeywordSearch,
		"sql", sqlText)

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	width := len(q.Bindings) * querysql.ColumnsPerBinding
	for rows.Next() {
		row, err := scanRow(rows, width)
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			if errors.Is(err, queryir.ErrStop) {
				return nil
			}
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate triples: %w", err)
	}
	return nil
}

// scanner is the subset of *sql.Rows used by scanRow.
type scanner interface {
	Scan(dest ...any) error
}

// scanRow decodes width columns (value, kind, datatype per binding) into
// terms. A query without bindings yields an empty row per match.
func scanRow(rows scanner, width int) (queryir.Row, error) {
	if width == 0 {
		var matched int
		if err := rows.Scan(&matched); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		return queryir.Row{}, nil
	}

	cols := make([]string, width)
	dest := make([]any, width)
	for i := range cols {
		dest[i] = &cols[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(queryir.Row, 0, width/querysql.ColumnsPerBinding)
	for i := 0; i < width; i += querysql.ColumnsPerBinding {
		row = append(row, decodeTerm(cols[i], cols[i+1], cols[i+2]))
	}
	return row, nil
}

func decodeTerm(value, kind, datatype string) ir.Term {
	if kind == querysql.KindLiteral {
		return ir.Literal{Value: value, Datatype: datatype}
	}
	return ir.NewResource(value, ir.KindBasic, nil)
}

// Count returns the number of statements in the store's context.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM triples WHERE context = ?`, s.context).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count triples: %w", err)
	}
	return n, nil
}

// Triples returns every statement in the store's context in insertion
// order. Returns an empty slice (not nil) for an empty context.
func (s *Store) Triples(ctx context.Context) ([]ir.Triple, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object, object_kind, datatype
		FROM triples
		WHERE context = ?
		ORDER BY seq ASC
	`, s.context)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	triples := []ir.Triple{}
	for rows.Next() {
		var subj, pred, obj, kind, dt string
		if err := rows.Scan(&subj, &pred, &obj, &kind, &dt); err != nil {
			return nil, fmt.Errorf("scan triple: %w", err)
		}
		triples = append(triples, ir.NewTriple(
			ir.NewResource(subj, ir.KindBasic, nil),
			ir.NewResource(pred, ir.KindBasic, nil),
			decodeTerm(obj, kind, dt),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triples: %w", err)
	}
	return triples, nil
}
