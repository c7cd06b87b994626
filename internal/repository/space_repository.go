package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/renohq/quote-engine/internal/model"
)

const spaceCols = `id, quote_id, name, category, length, breadth, height, unit, perimeter, floor_area, wall_area, custom, revision, created_at, updated_at`

// SpaceRepo provides persistence for spaces, the canonical owner of
// dimension and geometry data.
type SpaceRepo struct {
	db *sql.DB
}

// NewSpaceRepo constructs a SpaceRepo with the given DB handle.
func NewSpaceRepo(db *sql.DB) *SpaceRepo {
	return &SpaceRepo{db: db}
}

func scanSpace(scan func(dest ...any) error) (*model.Space, error) {
	var s model.Space
	err := scan(&s.ID, &s.QuoteID, &s.Name, &s.Category, &s.Length, &s.Breadth, &s.Height,
		&s.Unit, &s.Perimeter, &s.FloorArea, &s.WallArea, &s.Custom, &s.Revision,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a space with its initial geometry (already computed by
// the caller, custom=false) and reconciles the quote's summary rows in the
// same transaction: an unbound placeholder row with the same section name
// is bound to the new space, otherwise a fresh zeroed row is appended.
// The unique key on (quote_id, space_id) makes binding idempotent.
func (r *SpaceRepo) Create(ctx context.Context, s *model.Space) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO spaces (quote_id, name, category, length, breadth, height, unit, perimeter, floor_area, wall_area, custom)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.QuoteID, s.Name, s.Category, s.Length, s.Breadth, s.Height, s.Unit,
		s.Perimeter, s.FloorArea, s.WallArea, s.Custom)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	bind, err := tx.ExecContext(ctx,
		`UPDATE summary_rows SET space_id = ?, revision = revision + 1
		 WHERE quote_id = ? AND space_id IS NULL AND space = ?
		 ORDER BY position LIMIT 1`,
		s.ID, s.QuoteID, s.Name)
	if err != nil {
		return err
	}
	if n, _ := bind.RowsAffected(); n == 0 {
		pos, err := nextPosition(ctx, tx, s.QuoteID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO summary_rows (quote_id, space_id, space, position) VALUES (?, ?, ?, ?)`,
			s.QuoteID, s.ID, s.Name, pos); err != nil {
			return err
		}
	}

	fresh, err := scanSpace(tx.QueryRowContext(ctx,
		`SELECT `+spaceCols+` FROM spaces WHERE id = ?`, s.ID).Scan)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// GetByIDAndOwner retrieves a space only when its owning quote belongs to
// the given owner, enforcing resource ownership at the query level.
func (r *SpaceRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Space, error) {
	const q = `SELECT s.id, s.quote_id, s.name, s.category, s.length, s.breadth, s.height, s.unit,
	                  s.perimeter, s.floor_area, s.wall_area, s.custom, s.revision, s.created_at, s.updated_at
	           FROM spaces s JOIN quotes q ON s.quote_id = q.id
	           WHERE s.id = ? AND q.owner_id = ?`
	sp, err := scanSpace(r.db.QueryRowContext(ctx, q, id, ownerID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	return sp, nil
}

// ListByQuote returns all spaces of a quote. Ownership of the quote is
// checked by the caller before listing.
func (r *SpaceRepo) ListByQuote(ctx context.Context, quoteID uint64) ([]*model.Space, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spaceCols+` FROM spaces WHERE quote_id = ? ORDER BY id`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Space
	for rows.Next() {
		sp, err := scanSpace(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update persists a merged space under revision CAS and keeps the
// denormalized section name on the bound summary row in sync. The caller
// recomputed the geometry fields beforehand when the space is automatic;
// in custom mode they arrive verbatim from the user.
func (r *SpaceRepo) Update(ctx context.Context, s *model.Space, expectedRev uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE spaces
		 SET name = ?, category = ?, length = ?, breadth = ?, height = ?, unit = ?,
		     perimeter = ?, floor_area = ?, wall_area = ?, custom = ?, revision = revision + 1
		 WHERE id = ? AND revision = ?`,
		s.Name, s.Category, s.Length, s.Breadth, s.Height, s.Unit,
		s.Perimeter, s.FloorArea, s.WallArea, s.Custom, s.ID, expectedRev)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM spaces WHERE id = ?)`, s.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrStaleRevision
		}
		return ErrSpaceNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE summary_rows SET space = ? WHERE quote_id = ? AND space_id = ?`,
		s.Name, s.QuoteID, s.ID); err != nil {
		return err
	}

	fresh, err := scanSpace(tx.QueryRowContext(ctx,
		`SELECT `+spaceCols+` FROM spaces WHERE id = ?`, s.ID).Scan)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// Delete removes a space together with its openings, its deliverables and
// its summary row, all in one transaction. Lookups for any of those IDs
// return not-found afterwards.
func (r *SpaceRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var quoteID uint64
	err = tx.QueryRowContext(ctx, `SELECT quote_id FROM spaces WHERE id = ? FOR UPDATE`, id).Scan(&quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpaceNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deliverables WHERE space_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM openings WHERE space_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summary_rows WHERE space_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
