package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
)

const summaryCols = `id, quote_id, space_id, space, work_packages, items, amount, tax, total, overridden, position, revision, created_at, updated_at`

// SummaryRepo provides persistence for summary rows and the aggregation
// discipline that keeps them in sync with deliverables.
type SummaryRepo struct {
	db *sql.DB
}

// NewSummaryRepo constructs a SummaryRepo with the given DB handle.
func NewSummaryRepo(db *sql.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

func scanSummaryRow(scan func(dest ...any) error) (*model.SummaryRow, error) {
	var row model.SummaryRow
	var spaceID sql.NullInt64
	err := scan(&row.ID, &row.QuoteID, &spaceID, &row.Space, &row.WorkPackages,
		&row.Items, &row.Amount, &row.Tax, &row.Total, &row.Overridden,
		&row.Position, &row.Revision, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if spaceID.Valid {
		v := uint64(spaceID.Int64)
		row.SpaceID = &v
	}
	return &row, nil
}

// ListByQuote returns the quote's summary rows in section order. A row
// bound to a space that no longer exists means the cascade in the space
// store failed; it is logged and surfaced, never silently skipped.
func (r *SummaryRepo) ListByQuote(ctx context.Context, quoteID uint64) ([]*model.SummaryRow, error) {
	const q = `SELECT ` + summaryColsPrefixed + `, s.id
	           FROM summary_rows r
	           LEFT JOIN spaces s ON r.space_id = s.id
	           WHERE r.quote_id = ?
	           ORDER BY r.position, r.id`
	rows, err := r.db.QueryContext(ctx, q, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.SummaryRow
	for rows.Next() {
		var row model.SummaryRow
		var spaceID, resolved sql.NullInt64
		if err := rows.Scan(&row.ID, &row.QuoteID, &spaceID, &row.Space, &row.WorkPackages,
			&row.Items, &row.Amount, &row.Tax, &row.Total, &row.Overridden,
			&row.Position, &row.Revision, &row.CreatedAt, &row.UpdatedAt, &resolved); err != nil {
			return nil, err
		}
		if spaceID.Valid {
			if !resolved.Valid {
				log.Printf("summary: row %d in quote %d references missing space %d", row.ID, quoteID, spaceID.Int64)
				return nil, ErrUnresolvedSpace
			}
			v := uint64(spaceID.Int64)
			row.SpaceID = &v
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const summaryColsPrefixed = `r.id, r.quote_id, r.space_id, r.space, r.work_packages, r.items, r.amount, r.tax, r.total, r.overridden, r.position, r.revision, r.created_at, r.updated_at`

// GetByID retrieves one summary row scoped to its quote.
func (r *SummaryRepo) GetByID(ctx context.Context, quoteID, rowID uint64) (*model.SummaryRow, error) {
	const q = `SELECT ` + summaryCols + ` FROM summary_rows WHERE id = ? AND quote_id = ?`
	row, err := scanSummaryRow(r.db.QueryRowContext(ctx, q, rowID, quoteID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSummaryRowNotFound
		}
		return nil, err
	}
	return row, nil
}

// SectionInput is one entry of a bulk section add: a named section with an
// optional user-entered work package count, not yet bound to a space.
type SectionInput struct {
	Space        string
	WorkPackages uint32
}

// BulkAdd appends placeholder rows for sections defined before their
// dimensions are known. Rows start unbound (space_id NULL) with zero
// totals; they are bound when a space with the same name is created.
func (r *SummaryRepo) BulkAdd(ctx context.Context, quoteID uint64, sections []SectionInput) ([]*model.SummaryRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	pos, err := nextPosition(ctx, tx, quoteID)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	for _, s := range sections {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO summary_rows (quote_id, space, work_packages, position) VALUES (?, ?, ?, ?)`,
			quoteID, s.Space, s.WorkPackages, pos)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint64(id))
		pos++
	}

	var out []*model.SummaryRow
	for _, id := range ids {
		row, err := scanSummaryRow(tx.QueryRowContext(ctx,
			`SELECT `+summaryCols+` FROM summary_rows WHERE id = ?`, id).Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a manual edit to a summary row under revision CAS. The
// caller has already merged the edit into row and decided the final value
// of Overridden. When rederive is true and the row is bound to a space the
// money fields are recomputed from the space's deliverables instead, which
// is how an override is lifted.
func (r *SummaryRepo) Update(ctx context.Context, row *model.SummaryRow, expectedRev uint64, rederive bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE summary_rows
		 SET space = ?, work_packages = ?, amount = ?, tax = ?, total = ?, overridden = ?, revision = revision + 1
		 WHERE id = ? AND quote_id = ? AND revision = ?`,
		row.Space, row.WorkPackages, row.Amount, row.Tax, row.Total, row.Overridden,
		row.ID, row.QuoteID, expectedRev)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM summary_rows WHERE id = ? AND quote_id = ?)`,
			row.ID, row.QuoteID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrStaleRevision
		}
		return ErrSummaryRowNotFound
	}

	if rederive && row.SpaceID != nil {
		if _, err := recomputeSummaryRowTx(ctx, tx, row.QuoteID, *row.SpaceID, row.Space); err != nil {
			return err
		}
	}

	fresh, err := scanSummaryRow(tx.QueryRowContext(ctx,
		`SELECT `+summaryCols+` FROM summary_rows WHERE id = ?`, row.ID).Scan)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*row = *fresh
	return nil
}

// Delete removes one summary row. Deleting a bound row is a manual
// cleanup; the aggregator recreates the row on the next deliverable
// mutation for that space.
func (r *SummaryRepo) Delete(ctx context.Context, quoteID, rowID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM summary_rows WHERE id = ? AND quote_id = ?`, rowID, quoteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSummaryRowNotFound
	}
	return nil
}

func nextPosition(ctx context.Context, q querier, quoteID uint64) (uint32, error) {
	var pos uint32
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM summary_rows WHERE quote_id = ?`, quoteID).Scan(&pos)
	return pos, err
}

// recomputeSummaryRowTx folds the current deliverable set of a space into
// its summary row, creating the row if it does not exist yet. It must run
// inside the same transaction as the deliverable mutation that triggered
// it so callers never observe totals predating the last committed write.
// On an overridden row only the item count is refreshed; the manually
// entered money fields are left untouched.
func recomputeSummaryRowTx(ctx context.Context, tx *sql.Tx, quoteID, spaceID uint64, spaceName string) (*model.SummaryRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT qty, rate, gst FROM deliverables WHERE space_id = ?`, spaceID)
	if err != nil {
		return nil, err
	}
	var lines []estimate.Line
	for rows.Next() {
		var ln estimate.Line
		if err := rows.Scan(&ln.Qty, &ln.Rate, &ln.Gst); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	totals := estimate.FoldSummary(lines)

	var rowID uint64
	var overridden bool
	err = tx.QueryRowContext(ctx,
		`SELECT id, overridden FROM summary_rows WHERE quote_id = ? AND space_id = ? FOR UPDATE`,
		quoteID, spaceID).Scan(&rowID, &overridden)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		pos, err := nextPosition(ctx, tx, quoteID)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO summary_rows (quote_id, space_id, space, items, amount, tax, total, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			quoteID, spaceID, spaceName, totals.Items, totals.Amount, totals.Tax, totals.Total, pos)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		rowID = uint64(id)
	case err != nil:
		return nil, err
	case overridden:
		if _, err := tx.ExecContext(ctx,
			`UPDATE summary_rows SET items = ?, revision = revision + 1 WHERE id = ?`,
			totals.Items, rowID); err != nil {
			return nil, err
		}
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE summary_rows SET items = ?, amount = ?, tax = ?, total = ?, revision = revision + 1 WHERE id = ?`,
			totals.Items, totals.Amount, totals.Tax, totals.Total, rowID); err != nil {
			return nil, err
		}
	}

	return scanSummaryRow(tx.QueryRowContext(ctx,
		`SELECT `+summaryCols+` FROM summary_rows WHERE id = ?`, rowID).Scan)
}
