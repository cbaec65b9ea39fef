// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// NewPlant is the creation shape for Plant: all system fields omitted.
type NewPlant struct {
	Name      string
	Species   string
	Location  string
	Notes     string
	Thumbnail string
	Tags      []string
}

// PlantPatch is the update shape for Plant: all fields optional except ID.
// Nil fields are left untouched.
type PlantPatch struct {
	ID        models.UUID
	Name      *string
	Species   *string
	Location  *string
	Notes     *string
	Thumbnail *string
}

// PlantFilter narrows ListPlants / CountPlants.
type PlantFilter struct {
	IncludeDeleted bool
	Species        string
	Location       string
	Tags           []string
}

const plantColumns = "id, name, species, location, notes, thumbnail, deleted_at, created_at, updated_at"

// CreatePlant creates a plant and enqueues a create change entry.
func (r *Repository) CreatePlant(ctx context.Context, p NewPlant) (*models.Plant, error) {
	now := nowMillis()
	plant := &models.Plant{
		ID:        models.UUID(uuid.New().String()),
		Name:      p.Name,
		Species:   p.Species,
		Location:  p.Location,
		Notes:     p.Notes,
		Thumbnail: p.Thumbnail,
		Tags:      cleanTags(p.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
		INSERT INTO plants (` + plantColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, plant.ID, plant.Name, plant.Species,
			plant.Location, plant.Notes, plant.Thumbnail, plant.CreatedAt, plant.UpdatedAt); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to create plant", err)
		}
		for _, tag := range plant.Tags {
			if err := insertPlantTag(ctx, tx, plant.ID, tag); err != nil {
				return err
			}
		}
		return r.enqueue(ctx, tx, models.EntityPlant, plant.ID, models.OpCreate, plant)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("plant.create", 1, nil)
	return plant, nil
}

// GetPlant retrieves a plant by ID, tombstoned or not. Returns (nil, nil)
// when no row exists.
func (r *Repository) GetPlant(ctx context.Context, id models.UUID) (*models.Plant, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + plantColumns + ` FROM plants WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	plant, err := scanPlant(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get plant", err)
	}

	tags, err := r.ListPlantTags(ctx, plant.ID)
	if err != nil {
		return nil, err
	}
	plant.Tags = tags

	return plant, nil
}

// UpdatePlant shallow-merges the provided fields over the stored plant.
// Returns (nil, nil) without enqueuing when the plant is absent.
func (r *Repository) UpdatePlant(ctx context.Context, patch PlantPatch) (*models.Plant, error) {
	plant, err := r.GetPlant(ctx, patch.ID)
	if err != nil || plant == nil {
		return nil, err
	}

	if patch.Name != nil {
		plant.Name = *patch.Name
	}
	if patch.Species != nil {
		plant.Species = *patch.Species
	}
	if patch.Location != nil {
		plant.Location = *patch.Location
	}
	if patch.Notes != nil {
		plant.Notes = *patch.Notes
	}
	if patch.Thumbnail != nil {
		plant.Thumbnail = *patch.Thumbnail
	}
	plant.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPlant(ctx, tx, plant); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlant, plant.ID, models.OpUpdate, plant)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("plant.update", 1, nil)
	return plant, nil
}

// DeletePlant soft deletes a plant and enqueues a delete change entry.
// Returns false when the plant is absent.
func (r *Repository) DeletePlant(ctx context.Context, id models.UUID) (bool, error) {
	plant, err := r.GetPlant(ctx, id)
	if err != nil || plant == nil {
		return false, err
	}

	now := nowMillis()
	plant.DeletedAt = &now
	plant.UpdatedAt = now

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPlant(ctx, tx, plant); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlant, plant.ID, models.OpDelete, plant)
	})
	if err != nil {
		return false, err
	}

	r.tel.Count("plant.delete", 1, nil)
	return true, nil
}

// HardDeletePlant physically removes a plant row. No change entry is
// written: hard delete is local cleanup after a tombstone has synced.
func (r *Repository) HardDeletePlant(ctx context.Context, id models.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plants WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to hard delete plant", err)
	}
	return nil
}

// RestorePlant clears a plant's tombstone. Returns (nil, nil) when the
// plant is absent or already active.
func (r *Repository) RestorePlant(ctx context.Context, id models.UUID) (*models.Plant, error) {
	plant, err := r.GetPlant(ctx, id)
	if err != nil || plant == nil {
		return nil, err
	}
	if plant.DeletedAt == nil {
		return nil, nil
	}

	plant.DeletedAt = nil
	plant.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistPlant(ctx, tx, plant); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlant, plant.ID, models.OpUpdate, plant)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("plant.restore", 1, nil)
	return plant, nil
}

// ListPlants returns plants ordered newest-created-first. Tombstones are
// excluded unless the filter asks for them.
func (r *Repository) ListPlants(ctx context.Context, f PlantFilter) ([]*models.Plant, error) {
	fb := plantFilterBuilder(f)
	where, args := fb.whereClause()

	query := `SELECT ` + plantColumns + ` FROM plants` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list plants", err)
	}
	defer rows.Close()

	var plants []*models.Plant
	for rows.Next() {
		plant, err := scanPlant(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan plant", err)
		}
		plants = append(plants, plant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to iterate plants", err)
	}

	if err := r.loadPlantTags(ctx, plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// CountPlants returns the cardinality of ListPlants for the same filter.
func (r *Repository) CountPlants(ctx context.Context, f PlantFilter) (int, error) {
	fb := plantFilterBuilder(f)
	where, args := fb.whereClause()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plants`+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to count plants", err)
	}
	return count, nil
}

func plantFilterBuilder(f PlantFilter) *FilterBuilder {
	fb := NewFilterBuilder()
	if !f.IncludeDeleted {
		fb.ActiveOnly()
	}
	if f.Species != "" {
		fb.Field("species", f.Species)
	}
	if f.Location != "" {
		fb.Field("location", f.Location)
	}
	if len(f.Tags) > 0 {
		fb.Tags(f.Tags...)
	}
	return fb
}

// persistPlant writes all mutable plant columns.
func (r *Repository) persistPlant(ctx context.Context, tx *sql.Tx, p *models.Plant) error {
	query := `
	UPDATE plants
	SET name = ?, species = ?, location = ?, notes = ?, thumbnail = ?,
	    deleted_at = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, p.Name, p.Species, p.Location, p.Notes,
		p.Thumbnail, nullInt(p.DeletedAt), p.UpdatedAt, p.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update plant", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.ErrDatabase, "plant row vanished during update")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlant(row rowScanner) (*models.Plant, error) {
	var p models.Plant
	var deletedAt sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Species, &p.Location, &p.Notes,
		&p.Thumbnail, &deletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.DeletedAt = intPtr(deletedAt)
	return &p, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
