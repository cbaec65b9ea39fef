package db

import (
	"context"
	"database/sql"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// ensureSyncCursor seeds the singleton cursor row on first startup so
// that reads never observe an absent cursor.
func ensureSyncCursor(db *sql.DB) error {
	query := `INSERT OR IGNORE INTO sync_cursor (id, last_pulled_at, updated_at) VALUES (1, 0, ?)`
	if _, err := db.Exec(query, nowMillis()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to seed sync cursor", err)
	}
	return nil
}

// SyncCursor returns the singleton cursor row.
func (r *Repository) SyncCursor(ctx context.Context) (*models.SyncCursor, error) {
	var c models.SyncCursor
	query := `SELECT id, last_pulled_at, updated_at FROM sync_cursor WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&c.ID, &c.LastPulledAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to read sync cursor", err)
	}
	return &c, nil
}

// SetLastPulledAt advances the cursor after a successful pull.
func (r *Repository) SetLastPulledAt(ctx context.Context, ts int64) error {
	query := `UPDATE sync_cursor SET last_pulled_at = ?, updated_at = ? WHERE id = 1`
	if _, err := r.db.ExecContext(ctx, query, ts, nowMillis()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to advance sync cursor", err)
	}
	return nil
}
