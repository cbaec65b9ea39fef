// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// NewPlantMarker is the creation shape for PlantMarker. A zero Scale
// defaults to 1.
type NewPlantMarker struct {
	LayoutID models.UUID
	PlantID  models.UUID
	X        float64
	Y        float64
	Rotation float64
	Scale    float64
	Label    string
	Icon     string
}

// MarkerPatch is the update shape for PlantMarker.
type MarkerPatch struct {
	ID       models.UUID
	X        *float64
	Y        *float64
	Rotation *float64
	Scale    *float64
	Label    *string
	Icon     *string
}

// MarkerFilter narrows ListPlantMarkers / CountPlantMarkers.
type MarkerFilter struct {
	IncludeDeleted bool
	LayoutID       models.UUID
	PlantID        models.UUID
}

// MarkerWithPlant pairs a marker with its referenced plant. Plant is nil
// when the plant was hard-deleted; the marker itself is still returned.
type MarkerWithPlant struct {
	Marker *models.PlantMarker
	Plant  *models.Plant
}

const markerColumns = "id, layout_id, plant_id, x, y, rotation, scale, label, icon, deleted_at, created_at, updated_at"

// CreatePlantMarker places a plant on a layout and enqueues a create
// change entry.
func (r *Repository) CreatePlantMarker(ctx context.Context, m NewPlantMarker) (*models.PlantMarker, error) {
	now := nowMillis()
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}

	marker := &models.PlantMarker{
		ID:        models.UUID(uuid.New().String()),
		LayoutID:  m.LayoutID,
		PlantID:   m.PlantID,
		X:         m.X,
		Y:         m.Y,
		Rotation:  m.Rotation,
		Scale:     scale,
		Label:     m.Label,
		Icon:      m.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
		INSERT INTO plant_markers (` + markerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, marker.ID, marker.LayoutID, marker.PlantID,
			marker.X, marker.Y, marker.Rotation, marker.Scale, marker.Label, marker.Icon,
			marker.CreatedAt, marker.UpdatedAt); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to create plant marker", err)
		}
		return r.enqueue(ctx, tx, models.EntityPlantMarker, marker.ID, models.OpCreate, marker)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("plant_marker.create", 1, nil)
	return marker, nil
}

// GetPlantMarker retrieves a marker by ID. Returns (nil, nil) when absent.
func (r *Repository) GetPlantMarker(ctx context.Context, id models.UUID) (*models.PlantMarker, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + markerColumns + ` FROM plant_markers WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	marker, err := scanMarker(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get plant marker", err)
	}
	return marker, nil
}

// UpdatePlantMarker shallow-merges the provided fields over the stored
// marker.
func (r *Repository) UpdatePlantMarker(ctx context.Context, patch MarkerPatch) (*models.PlantMarker, error) {
	marker, err := r.GetPlantMarker(ctx, patch.ID)
	if err != nil || marker == nil {
		return nil, err
	}

	if patch.X != nil {
		marker.X = *patch.X
	}
	if patch.Y != nil {
		marker.Y = *patch.Y
	}
	if patch.Rotation != nil {
		marker.Rotation = *patch.Rotation
	}
	if patch.Scale != nil {
		marker.Scale = *patch.Scale
	}
	if patch.Label != nil {
		marker.Label = *patch.Label
	}
	if patch.Icon != nil {
		marker.Icon = *patch.Icon
	}
	marker.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistMarker(ctx, tx, marker); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlantMarker, marker.ID, models.OpUpdate, marker)
	})
	if err != nil {
		return nil, err
	}
	return marker, nil
}

// UpdateMarkerPosition is a convenience wrapper over UpdatePlantMarker
// for high-frequency drag operations.
func (r *Repository) UpdateMarkerPosition(ctx context.Context, id models.UUID, x, y float64) (*models.PlantMarker, error) {
	return r.UpdatePlantMarker(ctx, MarkerPatch{ID: id, X: &x, Y: &y})
}

// DeletePlantMarker soft deletes a marker. Returns false when absent.
func (r *Repository) DeletePlantMarker(ctx context.Context, id models.UUID) (bool, error) {
	marker, err := r.GetPlantMarker(ctx, id)
	if err != nil || marker == nil {
		return false, err
	}

	now := nowMillis()
	marker.DeletedAt = &now
	marker.UpdatedAt = now

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistMarker(ctx, tx, marker); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlantMarker, marker.ID, models.OpDelete, marker)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// HardDeletePlantMarker physically removes a marker row, bypassing the
// queue.
func (r *Repository) HardDeletePlantMarker(ctx context.Context, id models.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plant_markers WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to hard delete plant marker", err)
	}
	return nil
}

// RestorePlantMarker clears a marker's tombstone. Returns (nil, nil) when
// the marker is absent or already active.
func (r *Repository) RestorePlantMarker(ctx context.Context, id models.UUID) (*models.PlantMarker, error) {
	marker, err := r.GetPlantMarker(ctx, id)
	if err != nil || marker == nil {
		return nil, err
	}
	if marker.DeletedAt == nil {
		return nil, nil
	}

	marker.DeletedAt = nil
	marker.UpdatedAt = nowMillis()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistMarker(ctx, tx, marker); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityPlantMarker, marker.ID, models.OpUpdate, marker)
	})
	if err != nil {
		return nil, err
	}
	return marker, nil
}

// ListPlantMarkers returns markers ordered newest-created-first.
func (r *Repository) ListPlantMarkers(ctx context.Context, f MarkerFilter) ([]*models.PlantMarker, error) {
	fb := markerFilterBuilder(f)
	where, args := fb.whereClause()

	query := `SELECT ` + markerColumns + ` FROM plant_markers` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list plant markers", err)
	}
	defer rows.Close()

	var markers []*models.PlantMarker
	for rows.Next() {
		marker, err := scanMarker(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan plant marker", err)
		}
		markers = append(markers, marker)
	}
	return markers, rows.Err()
}

// CountPlantMarkers returns the cardinality of ListPlantMarkers for the
// same filter.
func (r *Repository) CountPlantMarkers(ctx context.Context, f MarkerFilter) (int, error) {
	fb := markerFilterBuilder(f)
	where, args := fb.whereClause()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plant_markers`+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to count plant markers", err)
	}
	return count, nil
}

// ListMarkersWithPlants returns a layout's active markers joined with
// their plants. The join is best-effort: a marker whose plant was
// hard-deleted comes back with a nil Plant.
func (r *Repository) ListMarkersWithPlants(ctx context.Context, layoutID models.UUID) ([]MarkerWithPlant, error) {
	query := `
	SELECT m.id, m.layout_id, m.plant_id, m.x, m.y, m.rotation, m.scale, m.label, m.icon,
	       m.deleted_at, m.created_at, m.updated_at,
	       p.id, p.name, p.species, p.location, p.notes, p.thumbnail,
	       p.deleted_at, p.created_at, p.updated_at
	FROM plant_markers m
	LEFT JOIN plants p ON p.id = m.plant_id
	WHERE m.layout_id = ? AND m.deleted_at IS NULL
	ORDER BY m.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, layoutID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list markers with plants", err)
	}
	defer rows.Close()

	var result []MarkerWithPlant
	for rows.Next() {
		var m models.PlantMarker
		var mDeleted sql.NullInt64
		var pID, pName, pSpecies, pLocation, pNotes, pThumbnail sql.NullString
		var pDeleted, pCreated, pUpdated sql.NullInt64

		if err := rows.Scan(&m.ID, &m.LayoutID, &m.PlantID, &m.X, &m.Y, &m.Rotation,
			&m.Scale, &m.Label, &m.Icon, &mDeleted, &m.CreatedAt, &m.UpdatedAt,
			&pID, &pName, &pSpecies, &pLocation, &pNotes, &pThumbnail,
			&pDeleted, &pCreated, &pUpdated); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan marker with plant", err)
		}
		m.DeletedAt = intPtr(mDeleted)

		entry := MarkerWithPlant{Marker: &m}
		if pID.Valid {
			entry.Plant = &models.Plant{
				ID:        models.UUID(pID.String),
				Name:      pName.String,
				Species:   pSpecies.String,
				Location:  pLocation.String,
				Notes:     pNotes.String,
				Thumbnail: pThumbnail.String,
				DeletedAt: intPtr(pDeleted),
				CreatedAt: pCreated.Int64,
				UpdatedAt: pUpdated.Int64,
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func markerFilterBuilder(f MarkerFilter) *FilterBuilder {
	fb := NewFilterBuilder()
	if !f.IncludeDeleted {
		fb.ActiveOnly()
	}
	if f.LayoutID != "" {
		fb.Field("layout_id", f.LayoutID)
	}
	if f.PlantID != "" {
		fb.Field("plant_id", f.PlantID)
	}
	return fb
}

func (r *Repository) persistMarker(ctx context.Context, tx *sql.Tx, m *models.PlantMarker) error {
	query := `
	UPDATE plant_markers
	SET layout_id = ?, plant_id = ?, x = ?, y = ?, rotation = ?, scale = ?,
	    label = ?, icon = ?, deleted_at = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, m.LayoutID, m.PlantID, m.X, m.Y,
		m.Rotation, m.Scale, m.Label, m.Icon, nullInt(m.DeletedAt), m.UpdatedAt, m.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update plant marker", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.ErrDatabase, "plant marker row vanished during update")
	}
	return nil
}

func scanMarker(row rowScanner) (*models.PlantMarker, error) {
	var m models.PlantMarker
	var deletedAt sql.NullInt64
	if err := row.Scan(&m.ID, &m.LayoutID, &m.PlantID, &m.X, &m.Y, &m.Rotation,
		&m.Scale, &m.Label, &m.Icon, &deletedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.DeletedAt = intPtr(deletedAt)
	return &m, nil
}
