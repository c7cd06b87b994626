package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
)

const deliverableCols = `id, space_id, description, spec, code, category, unit, qty, rate, gst, created_at, updated_at`

// DeliverableRepo provides persistence for priced line items. Amount, tax
// and total are never stored; they are derived on every read from qty,
// rate and gst. Each mutation recomputes the owning summary row inside the
// same transaction and returns it, so the caller can report the fresh
// totals in the mutation response.
type DeliverableRepo struct {
	db *sql.DB
}

// NewDeliverableRepo constructs a DeliverableRepo with the given DB handle.
func NewDeliverableRepo(db *sql.DB) *DeliverableRepo {
	return &DeliverableRepo{db: db}
}

func scanDeliverable(scan func(dest ...any) error) (*model.Deliverable, error) {
	var d model.Deliverable
	err := scan(&d.ID, &d.SpaceID, &d.Description, &d.Spec, &d.Code, &d.Category, &d.Unit,
		&d.Qty, &d.Rate, &d.Gst, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Amount, d.TaxAmount, d.Total = estimate.DeliverableTotals(d.Qty, d.Rate, d.Gst)
	return &d, nil
}

// GetByIDAndOwner retrieves a deliverable only when the quote that
// contains its space belongs to the given owner.
func (r *DeliverableRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Deliverable, error) {
	const q = `SELECT d.id, d.space_id, d.description, d.spec, d.code, d.category, d.unit,
	                  d.qty, d.rate, d.gst, d.created_at, d.updated_at
	           FROM deliverables d
	           JOIN spaces s ON d.space_id = s.id
	           JOIN quotes qt ON s.quote_id = qt.id
	           WHERE d.id = ? AND qt.owner_id = ?`
	d, err := scanDeliverable(r.db.QueryRowContext(ctx, q, id, ownerID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliverableNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListBySpace returns all deliverables billed against a space, derived
// money fields included.
func (r *DeliverableRepo) ListBySpace(ctx context.Context, spaceID uint64) ([]*model.Deliverable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+deliverableCols+` FROM deliverables WHERE space_id = ? ORDER BY id`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// lockSpaceForSummary loads and locks the owning space of a deliverable
// mutation, returning the coordinates the recomputation needs.
func lockSpaceForSummary(ctx context.Context, tx *sql.Tx, spaceID uint64) (quoteID uint64, name string, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT quote_id, name FROM spaces WHERE id = ? FOR UPDATE`, spaceID).Scan(&quoteID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrSpaceNotFound
	}
	return quoteID, name, err
}

// Create inserts a deliverable and recomputes the owning summary row in
// the same transaction. The recomputed row is returned alongside.
func (r *DeliverableRepo) Create(ctx context.Context, d *model.Deliverable) (*model.SummaryRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	quoteID, spaceName, err := lockSpaceForSummary(ctx, tx, d.SpaceID)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO deliverables (space_id, description, spec, code, category, unit, qty, rate, gst)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.SpaceID, d.Description, d.Spec, d.Code, d.Category, d.Unit, d.Qty, d.Rate, d.Gst)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = uint64(id)

	row, err := recomputeSummaryRowTx(ctx, tx, quoteID, d.SpaceID, spaceName)
	if err != nil {
		return nil, err
	}

	fresh, err := scanDeliverable(tx.QueryRowContext(ctx,
		`SELECT `+deliverableCols+` FROM deliverables WHERE id = ?`, d.ID).Scan)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*d = *fresh
	return row, nil
}

// Update rewrites a deliverable and recomputes the owning summary row in
// the same transaction.
func (r *DeliverableRepo) Update(ctx context.Context, d *model.Deliverable) (*model.SummaryRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var spaceID uint64
	err = tx.QueryRowContext(ctx, `SELECT space_id FROM deliverables WHERE id = ? FOR UPDATE`, d.ID).Scan(&spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliverableNotFound
		}
		return nil, err
	}
	d.SpaceID = spaceID

	quoteID, spaceName, err := lockSpaceForSummary(ctx, tx, spaceID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE deliverables
		 SET description = ?, spec = ?, code = ?, category = ?, unit = ?, qty = ?, rate = ?, gst = ?
		 WHERE id = ?`,
		d.Description, d.Spec, d.Code, d.Category, d.Unit, d.Qty, d.Rate, d.Gst, d.ID); err != nil {
		return nil, err
	}

	row, err := recomputeSummaryRowTx(ctx, tx, quoteID, spaceID, spaceName)
	if err != nil {
		return nil, err
	}

	fresh, err := scanDeliverable(tx.QueryRowContext(ctx,
		`SELECT `+deliverableCols+` FROM deliverables WHERE id = ?`, d.ID).Scan)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*d = *fresh
	return row, nil
}

// Delete removes a deliverable and recomputes the owning summary row in
// the same transaction.
func (r *DeliverableRepo) Delete(ctx context.Context, id uint64) (*model.SummaryRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var spaceID uint64
	err = tx.QueryRowContext(ctx, `SELECT space_id FROM deliverables WHERE id = ? FOR UPDATE`, id).Scan(&spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliverableNotFound
		}
		return nil, err
	}

	quoteID, spaceName, err := lockSpaceForSummary(ctx, tx, spaceID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deliverables WHERE id = ?`, id); err != nil {
		return nil, err
	}

	row, err := recomputeSummaryRowTx(ctx, tx, quoteID, spaceID, spaceName)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return row, nil
}
