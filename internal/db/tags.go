// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"
	"strings"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// Plant tags are local filter metadata: they ride inside the Plant
// snapshot written at enqueue time rather than being queued as their own
// entity.

// AddPlantTag attaches a tag to a plant. Adding an existing tag is a
// no-op.
func (r *Repository) AddPlantTag(ctx context.Context, plantID models.UUID, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return apperrors.New(apperrors.ErrInvalid, "tag must not be blank")
	}

	query := `INSERT OR IGNORE INTO plant_tags (plant_id, tag, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, plantID, tag, nowMillis()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to add plant tag", err)
	}
	return nil
}

// RemovePlantTag detaches a tag from a plant.
func (r *Repository) RemovePlantTag(ctx context.Context, plantID models.UUID, tag string) error {
	query := `DELETE FROM plant_tags WHERE plant_id = ? AND tag = ?`
	if _, err := r.db.ExecContext(ctx, query, plantID, strings.TrimSpace(tag)); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to remove plant tag", err)
	}
	return nil
}

// ListPlantTags returns a plant's tags in alphabetical order.
func (r *Repository) ListPlantTags(ctx context.Context, plantID models.UUID) ([]string, error) {
	stmt, err := r.PrepareStmt(`SELECT tag FROM plant_tags WHERE plant_id = ? ORDER BY tag`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, plantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list plant tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan plant tag", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func insertPlantTag(ctx context.Context, tx *sql.Tx, plantID models.UUID, tag string) error {
	query := `INSERT OR IGNORE INTO plant_tags (plant_id, tag, created_at) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, plantID, tag, nowMillis()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to add plant tag", err)
	}
	return nil
}

// loadPlantTags fills Tags for a listed batch of plants in one query.
func (r *Repository) loadPlantTags(ctx context.Context, plants []*models.Plant) error {
	if len(plants) == 0 {
		return nil
	}

	byID := make(map[models.UUID]*models.Plant, len(plants))
	args := make([]interface{}, 0, len(plants))
	for _, p := range plants {
		byID[p.ID] = p
		args = append(args, p.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(plants)), ", ")
	query := `SELECT plant_id, tag FROM plant_tags WHERE plant_id IN (` + placeholders + `) ORDER BY tag`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to load plant tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var plantID models.UUID
		var tag string
		if err := rows.Scan(&plantID, &tag); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to scan plant tag", err)
		}
		if p, ok := byID[plantID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	return rows.Err()
}
