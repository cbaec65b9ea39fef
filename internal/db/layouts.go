// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// NewLayout is the creation shape for Layout.
type NewLayout struct {
	Name       string
	ImagePath  string
	Width      int
	Height     int
	LayoutType models.LayoutType
}

// LayoutPatch is the update shape for Layout.
type LayoutPatch struct {
	ID         models.UUID
	Name       *string
	ImagePath  *string
	Width      *int
	Height     *int
	LayoutType *models.LayoutType
}

// LayoutFilter narrows ListLayouts / CountLayouts.
type LayoutFilter struct {
	IncludeDeleted bool
	LayoutType     models.LayoutType
}

const layoutColumns = "id, name, image_path, width, height, layout_type, deleted_at, created_at, updated_at"

// CreateLayout creates a layout and enqueues a create change entry.
func (r *Repository) CreateLayout(ctx context.Context, l NewLayout) (*models.Layout, error) {
	now := nowMillis()
	layoutType := l.LayoutType
	if layoutType == "" {
		layoutType = models.LayoutIndoor
	}

	layout := &models.Layout{
		ID:         models.UUID(uuid.New().String()),
		Name:       l.Name,
		ImagePath:  l.ImagePath,
		Width:      l.Width,
		Height:     l.Height,
		LayoutType: layoutType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
		INSERT INTO layouts (` + layoutColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, layout.ID, layout.Name, layout.ImagePath,
			layout.Width, layout.Height, layout.LayoutType, layout.CreatedAt, layout.UpdatedAt); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to create layout", err)
		}
		return r.enqueue(ctx, tx, models.EntityLayout, layout.ID, models.OpCreate, layout)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("layout.create", 1, nil)
	return layout, nil
}

// GetLayout retrieves a layout by ID. Returns (nil, nil) when absent.
func (r *Repository) GetLayout(ctx context.Context, id models.UUID) (*models.Layout, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + layoutColumns + ` FROM layouts WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	layout, err := scanLayout(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get layout", err)
	}
	return layout, nil
}

// UpdateLayout shallow-merges the provided fields over the stored layout.
func (r *Repository) UpdateLayout(ctx context.Context, patch LayoutPatch) (*models.Layout, error) {
	layout, err := r.GetLayout(ctx, patch.ID)
	if err != nil || layout == nil {
		return nil, err
	}

	if patch.Name != nil {
		layout.Name = *patch.Name
	}
	if patch.ImagePath != nil {
		layout.ImagePath = *patch.ImagePath
	}
	if patch.Width != nil {
		layout.Width = *patch.Width
	}
	if patch.Height != nil {
		layout.Height = *patch.Height
	}
	if patch.LayoutType != nil {
		layout.LayoutType = *patch.LayoutType
	}
	layout.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistLayout(ctx, tx, layout); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityLayout, layout.ID, models.OpUpdate, layout)
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// DeleteLayout soft deletes a layout. Returns false when absent.
func (r *Repository) DeleteLayout(ctx context.Context, id models.UUID) (bool, error) {
	layout, err := r.GetLayout(ctx, id)
	if err != nil || layout == nil {
		return false, err
	}

	now := nowMillis()
	layout.DeletedAt = &now
	layout.UpdatedAt = now

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistLayout(ctx, tx, layout); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityLayout, layout.ID, models.OpDelete, layout)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// HardDeleteLayout physically removes a layout row, bypassing the queue.
func (r *Repository) HardDeleteLayout(ctx context.Context, id models.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM layouts WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to hard delete layout", err)
	}
	return nil
}

// RestoreLayout clears a layout's tombstone. Returns (nil, nil) when the
// layout is absent or already active.
func (r *Repository) RestoreLayout(ctx context.Context, id models.UUID) (*models.Layout, error) {
	layout, err := r.GetLayout(ctx, id)
	if err != nil || layout == nil {
		return nil, err
	}
	if layout.DeletedAt == nil {
		return nil, nil
	}

	layout.DeletedAt = nil
	layout.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistLayout(ctx, tx, layout); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityLayout, layout.ID, models.OpUpdate, layout)
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// ListLayouts returns layouts ordered newest-created-first.
func (r *Repository) ListLayouts(ctx context.Context, f LayoutFilter) ([]*models.Layout, error) {
	fb := layoutFilterBuilder(f)
	where, args := fb.whereClause()

	query := `SELECT ` + layoutColumns + ` FROM layouts` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list layouts", err)
	}
	defer rows.Close()

	var layouts []*models.Layout
	for rows.Next() {
		layout, err := scanLayout(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan layout", err)
		}
		layouts = append(layouts, layout)
	}
	return layouts, rows.Err()
}

// CountLayouts returns the cardinality of ListLayouts for the same filter.
func (r *Repository) CountLayouts(ctx context.Context, f LayoutFilter) (int, error) {
	fb := layoutFilterBuilder(f)
	where, args := fb.whereClause()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM layouts`+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to count layouts", err)
	}
	return count, nil
}

func layoutFilterBuilder(f LayoutFilter) *FilterBuilder {
	fb := NewFilterBuilder()
	if !f.IncludeDeleted {
		fb.ActiveOnly()
	}
	if f.LayoutType != "" {
		fb.Field("layout_type", f.LayoutType)
	}
	return fb
}

func (r *Repository) persistLayout(ctx context.Context, tx *sql.Tx, l *models.Layout) error {
	query := `
	UPDATE layouts
	SET name = ?, image_path = ?, width = ?, height = ?, layout_type = ?,
	    deleted_at = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, l.Name, l.ImagePath, l.Width, l.Height,
		l.LayoutType, nullInt(l.DeletedAt), l.UpdatedAt, l.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update layout", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.ErrDatabase, "layout row vanished during update")
	}
	return nil
}

func scanLayout(row rowScanner) (*models.Layout, error) {
	var l models.Layout
	var deletedAt sql.NullInt64
	if err := row.Scan(&l.ID, &l.Name, &l.ImagePath, &l.Width, &l.Height,
		&l.LayoutType, &deletedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.DeletedAt = intPtr(deletedAt)
	return &l, nil
}
