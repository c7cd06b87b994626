package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
)

const openingCols = `id, space_id, type, name, height, width, created_at, updated_at`

// OpeningRepo provides persistence for door/window/ventilator records.
// Every mutation refreshes the owning space's geometry in the same
// transaction, so a committed opening write is never visible alongside
// stale perimeter or wall area figures.
type OpeningRepo struct {
	db *sql.DB
}

// NewOpeningRepo constructs an OpeningRepo with the given DB handle.
func NewOpeningRepo(db *sql.DB) *OpeningRepo {
	return &OpeningRepo{db: db}
}

func scanOpening(scan func(dest ...any) error) (*model.Opening, error) {
	var o model.Opening
	err := scan(&o.ID, &o.SpaceID, &o.Type, &o.Name, &o.Height, &o.Width, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIDAndOwner retrieves an opening only when the quote that contains
// its space belongs to the given owner.
func (r *OpeningRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Opening, error) {
	const q = `SELECT o.id, o.space_id, o.type, o.name, o.height, o.width, o.created_at, o.updated_at
	           FROM openings o
	           JOIN spaces s ON o.space_id = s.id
	           JOIN quotes qt ON s.quote_id = qt.id
	           WHERE o.id = ? AND qt.owner_id = ?`
	o, err := scanOpening(r.db.QueryRowContext(ctx, q, id, ownerID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpeningNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListBySpace returns all openings attached to a space.
func (r *OpeningRepo) ListBySpace(ctx context.Context, spaceID uint64) ([]*model.Opening, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+openingCols+` FROM openings WHERE space_id = ? ORDER BY id`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Opening
	for rows.Next() {
		o, err := scanOpening(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts an opening and refreshes the owner's geometry. The
// returned warnings carry non-fatal geometry observations such as a
// negative wall area.
func (r *OpeningRepo) Create(ctx context.Context, o *model.Opening) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var spaceID uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM spaces WHERE id = ? FOR UPDATE`, o.SpaceID).Scan(&spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO openings (space_id, type, name, height, width) VALUES (?, ?, ?, ?, ?)`,
		o.SpaceID, o.Type, o.Name, o.Height, o.Width)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	o.ID = uint64(id)

	warnings, err := refreshSpaceGeometryTx(ctx, tx, o.SpaceID)
	if err != nil {
		return nil, err
	}

	fresh, err := scanOpening(tx.QueryRowContext(ctx,
		`SELECT `+openingCols+` FROM openings WHERE id = ?`, o.ID).Scan)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*o = *fresh
	return warnings, nil
}

// Update rewrites an opening and refreshes the owner's geometry.
func (r *OpeningRepo) Update(ctx context.Context, o *model.Opening) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var spaceID uint64
	err = tx.QueryRowContext(ctx, `SELECT space_id FROM openings WHERE id = ? FOR UPDATE`, o.ID).Scan(&spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpeningNotFound
		}
		return nil, err
	}
	o.SpaceID = spaceID

	if _, err := tx.ExecContext(ctx,
		`UPDATE openings SET type = ?, name = ?, height = ?, width = ? WHERE id = ?`,
		o.Type, o.Name, o.Height, o.Width, o.ID); err != nil {
		return nil, err
	}

	warnings, err := refreshSpaceGeometryTx(ctx, tx, spaceID)
	if err != nil {
		return nil, err
	}

	fresh, err := scanOpening(tx.QueryRowContext(ctx,
		`SELECT `+openingCols+` FROM openings WHERE id = ?`, o.ID).Scan)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*o = *fresh
	return warnings, nil
}

// Delete removes an opening and refreshes the owner's geometry.
func (r *OpeningRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var spaceID uint64
	err = tx.QueryRowContext(ctx, `SELECT space_id FROM openings WHERE id = ? FOR UPDATE`, id).Scan(&spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOpeningNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM openings WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := refreshSpaceGeometryTx(ctx, tx, spaceID); err != nil {
		return err
	}
	return tx.Commit()
}

// refreshSpaceGeometryTx recomputes the owner's derived geometry from its
// dimensions and current openings. A space in custom mode keeps its
// user-supplied figures, but its revision is still bumped so concurrent
// editors working from a pre-mutation read are rejected on write.
func refreshSpaceGeometryTx(ctx context.Context, tx *sql.Tx, spaceID uint64) ([]string, error) {
	var sp model.Space
	err := tx.QueryRowContext(ctx,
		`SELECT length, breadth, height, custom FROM spaces WHERE id = ? FOR UPDATE`, spaceID).
		Scan(&sp.Length, &sp.Breadth, &sp.Height, &sp.Custom)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}

	if sp.Custom {
		_, err := tx.ExecContext(ctx, `UPDATE spaces SET revision = revision + 1 WHERE id = ?`, spaceID)
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT height, width FROM openings WHERE space_id = ?`, spaceID)
	if err != nil {
		return nil, err
	}
	var dims []estimate.OpeningDims
	for rows.Next() {
		var d estimate.OpeningDims
		if err := rows.Scan(&d.Height, &d.Width); err != nil {
			rows.Close()
			return nil, err
		}
		dims = append(dims, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	geo, warnings := estimate.ComputeGeometry(sp.Length, sp.Breadth, sp.Height, dims)
	if _, err := tx.ExecContext(ctx,
		`UPDATE spaces SET perimeter = ?, floor_area = ?, wall_area = ?, revision = revision + 1 WHERE id = ?`,
		geo.Perimeter, geo.FloorArea, geo.WallArea, spaceID); err != nil {
		return nil, err
	}
	return warnings, nil
}
