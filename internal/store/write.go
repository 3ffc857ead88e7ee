package store

import (
	"context"
	"fmt"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/querysql"
)

// Add appends statements to the store's context.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a statement already
// present is silently skipped. Returns the number of statements inserted.
//
// All statements are written in one transaction; on error none are kept.
func (s *Store) Add(ctx context.Context, triples ...ir.Triple) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add triples: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triples
		(id, context, subject, predicate, object, object_kind, datatype)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("add triples: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, t := range triples {
		row, err := encodeTriple(t)
		if err != nil {
			return 0, fmt.Errorf("add triple %d: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx,
			ir.TripleID(t, s.context),
			s.context,
			row.subject,
			row.predicate,
			row.object,
			row.objectKind,
			row.datatype,
		)
		if err != nil {
			return 0, fmt.Errorf("add triple %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("add triple %d: rows affected: %w", i, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add triples: commit: %w", err)
	}
	return inserted, nil
}

// Remove deletes statements from the store's context. Statements that are
// not present are ignored. Returns the number of statements removed.
func (s *Store) Remove(ctx context.Context, triples ...ir.Triple) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("remove triples: begin tx: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for i, t := range triples {
		if _, err := encodeTriple(t); err != nil {
			return 0, fmt.Errorf("remove triple %d: %w", i, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE id = ?`, ir.TripleID(t, s.context))
		if err != nil {
			return 0, fmt.Errorf("remove triple %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("remove triple %d: rows affected: %w", i, err)
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("remove triples: commit: %w", err)
	}
	return removed, nil
}

// Clear deletes every statement in the store's context.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM triples WHERE context = ?`, s.context); err != nil {
		return fmt.Errorf("clear context %q: %w", s.context, err)
	}
	return nil
}

// row is the column encoding of one statement.
type row struct {
	subject    string
	predicate  string
	object     string
	objectKind string
	datatype   string
}

// encodeTriple stores URIs and literal values in NFC, matching how
// ir.TripleID keys the row.
func encodeTriple(t ir.Triple) (row, error) {
	if t.Subject == nil || t.Predicate == nil || t.Object == nil {
		return row{}, ir.NewError(ir.CodeNilResource, "statement has an empty slot", "")
	}
	r := row{subject: ir.NormalizeURI(t.Subject.URI()), predicate: ir.NormalizeURI(t.Predicate.URI())}
	switch o := t.Object.(type) {
	case *ir.Resource:
		if o == nil {
			return row{}, ir.NewError(ir.CodeNilResource, "statement object is a nil resource", "")
		}
		r.object = ir.NormalizeURI(o.URI())
		r.objectKind = querysql.KindResource
	case ir.Literal:
		r.object = ir.NormalizeText(o.Value)
		r.objectKind = querysql.KindLiteral
		r.datatype = o.Datatype
		if r.datatype == "" {
			r.datatype = ir.XSDString
		}
	default:
		return row{}, ir.Errorf(ir.CodeTypeMismatch, "cannot store %s as an object", t.Object)
	}
	return r, nil
}
