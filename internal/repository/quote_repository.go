package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/renohq/quote-engine/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx, enabling shared query
// helpers to run standalone or inside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QuoteRepo provides persistence for quotes, the top-level aggregate.
type QuoteRepo struct {
	db *sql.DB
}

// NewQuoteRepo constructs a QuoteRepo with the given DB handle.
func NewQuoteRepo(db *sql.DB) *QuoteRepo {
	return &QuoteRepo{db: db}
}

// Create inserts a new quote and reads the record back so timestamps are
// populated on the returned struct.
func (r *QuoteRepo) Create(ctx context.Context, q *model.Quote) error {
	const qInsert = `INSERT INTO quotes (owner_id, name) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, q.OwnerID, q.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)

	const qSelect = `SELECT id, owner_id, name, created_at, updated_at FROM quotes WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, q.ID).
		Scan(&q.ID, &q.OwnerID, &q.Name, &q.CreatedAt, &q.UpdatedAt)
}

// GetByIDAndOwner retrieves a quote but only if it belongs to the given
// owner. It returns ErrQuoteNotFound when no row matches either way; a
// quote owned by someone else is indistinguishable from a missing one so
// quote IDs are not probeable.
func (r *QuoteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Quote, error) {
	const q = `SELECT id, owner_id, name, created_at, updated_at FROM quotes WHERE id = ? AND owner_id = ?`
	var out model.Quote
	err := r.db.QueryRowContext(ctx, q, id, ownerID).
		Scan(&out.ID, &out.OwnerID, &out.Name, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &out, nil
}

// DeleteByIDAndOwner removes a quote and every dependent record: summary
// rows, spaces, and the openings and deliverables hanging off those
// spaces. The whole cascade commits or rolls back as one unit.
func (r *QuoteRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner uint64
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM quotes WHERE id = ? FOR UPDATE`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrQuoteNotFound
		}
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE d FROM deliverables d JOIN spaces s ON d.space_id = s.id WHERE s.quote_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE o FROM openings o JOIN spaces s ON o.space_id = s.id WHERE s.quote_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summary_rows WHERE quote_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE quote_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
