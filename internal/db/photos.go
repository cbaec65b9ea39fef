// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// NewPhoto is the creation shape for Photo.
type NewPhoto struct {
	PlantID   models.UUID
	LocalPath string
	RemoteURL string
	TakenAt   int64
}

// PhotoPatch is the update shape for Photo.
type PhotoPatch struct {
	ID         models.UUID
	LocalPath  *string
	RemoteURL  *string
	TakenAt    *int64
	UploadedAt *int64
}

// PhotoFilter narrows ListPhotos / CountPhotos.
type PhotoFilter struct {
	IncludeDeleted bool
	PlantID        models.UUID
}

const photoColumns = "id, plant_id, local_path, remote_url, taken_at, uploaded_at, deleted_at, created_at, updated_at"

// CreatePhoto creates a photo record and enqueues a create change entry.
func (r *Repository) CreatePhoto(ctx context.Context, p NewPhoto) (*models.Photo, error) {
	now := nowMillis()
	takenAt := p.TakenAt
	if takenAt == 0 {
		takenAt = now
	}

	photo := &models.Photo{
		ID:        models.UUID(uuid.New().String()),
		PlantID:   p.PlantID,
		LocalPath: p.LocalPath,
		RemoteURL: p.RemoteURL,
		TakenAt:   takenAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
		INSERT INTO photos (` + photoColumns + `)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, photo.ID, photo.PlantID, photo.LocalPath,
			photo.RemoteURL, photo.TakenAt, photo.CreatedAt, photo.UpdatedAt); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to create photo", err)
		}
		return r.enqueue(ctx, tx, models.EntityPhoto, photo.ID, models.OpCreate, photo)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("photo.create", 1, nil)
	return photo, nil
}

// GetPhoto retrieves a photo by ID. Returns (nil, nil) when absent.
func (r *Repository) GetPhoto(ctx context.Context, id models.UUID) (*models.Photo, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + photoColumns + ` FROM photos WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	photo, err := scanPhoto(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get photo", err)
	}
	return photo, nil
}

// UpdatePhoto shallow-merges the provided fields over the stored photo.
func (r *Repository) UpdatePhoto(ctx context.Context, patch PhotoPatch) (*models.Photo, error) {
	photo, err := r.GetPhoto(ctx, patch.ID)
	if err != nil || photo == nil {
		return nil, err
	}

	if patch.LocalPath != nil {
		photo.LocalPath = *patch.LocalPath
	}
	if patch.RemoteURL != nil {
		photo.RemoteURL = *patch.RemoteURL
	}
	if patch.TakenAt != nil {
		photo.TakenAt = *patch.TakenAt
	}
	if patch.UploadedAt != nil {
		uploaded := *patch.UploadedAt
		photo.UploadedAt = &uploaded
	}
	photo.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPhoto(ctx, tx, photo); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPhoto, photo.ID, models.OpUpdate, photo)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// DeletePhoto soft deletes a photo. Returns false when absent.
func (r *Repository) DeletePhoto(ctx context.Context, id models.UUID) (bool, error) {
	photo, err := r.GetPhoto(ctx, id)
	if err != nil || photo == nil {
		return false, err
	}

	now := nowMillis()
	photo.DeletedAt = &now
	photo.UpdatedAt = now

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPhoto(ctx, tx, photo); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPhoto, photo.ID, models.OpDelete, photo)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// HardDeletePhoto physically removes a photo row, bypassing the queue.
func (r *Repository) HardDeletePhoto(ctx context.Context, id models.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to hard delete photo", err)
	}
	return nil
}

// RestorePhoto clears a photo's tombstone. Returns (nil, nil) when the
// photo is absent or already active.
func (r *Repository) RestorePhoto(ctx context.Context, id models.UUID) (*models.Photo, error) {
	photo, err := r.GetPhoto(ctx, id)
	if err != nil || photo == nil {
		return nil, err
	}
	if photo.DeletedAt == nil {
		return nil, nil
	}

	photo.DeletedAt = nil
	photo.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPhoto(ctx, tx, photo); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPhoto, photo.ID, models.OpUpdate, photo)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// ListPhotos returns photos ordered newest-created-first.
func (r *Repository) ListPhotos(ctx context.Context, f PhotoFilter) ([]*models.Photo, error) {
	fb := photoFilterBuilder(f)
	where, args := fb.whereClause()

	query := `SELECT ` + photoColumns + ` FROM photos` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list photos", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan photo", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// CountPhotos returns the cardinality of ListPhotos for the same filter.
func (r *Repository) CountPhotos(ctx context.Context, f PhotoFilter) (int, error) {
	fb := photoFilterBuilder(f)
	where, args := fb.whereClause()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to count photos", err)
	}
	return count, nil
}

func photoFilterBuilder(f PhotoFilter) *FilterBuilder {
	fb := NewFilterBuilder()
	if !f.IncludeDeleted {
		fb.ActiveOnly()
	}
	if f.PlantID != "" {
		fb.Field("plant_id", f.PlantID)
	}
	return fb
}

func (r *Repository) persistPhoto(ctx context.Context, tx *sql.Tx, p *models.Photo) error {
	query := `
	UPDATE photos
	SET plant_id = ?, local_path = ?, remote_url = ?, taken_at = ?,
	    uploaded_at = ?, deleted_at = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, p.PlantID, p.LocalPath, p.RemoteURL,
		p.TakenAt, nullInt(p.UploadedAt), nullInt(p.DeletedAt), p.UpdatedAt, p.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update photo", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.ErrDatabase, "photo row vanished during update")
	}
	return nil
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var p models.Photo
	var uploadedAt, deletedAt sql.NullInt64
	if err := row.Scan(&p.ID, &p.PlantID, &p.LocalPath, &p.RemoteURL, &p.TakenAt,
		&uploadedAt, &deletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.UploadedAt = intPtr(uploadedAt)
	p.DeletedAt = intPtr(deletedAt)
	return &p, nil
}
