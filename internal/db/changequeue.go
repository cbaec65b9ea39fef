// Package db provides the change queue: an append-only log of entity
// mutations pending synchronization.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// QueueCounts partitions all queue entries. Pending, failed and synced
// are disjoint by construction: an entry is pending until its first
// failure or sync, failed while unsynced with retries recorded, synced
// once acknowledged.
type QueueCounts struct {
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Synced  int `json:"synced"`
}

const changeColumns = "id, entity_type, entity_id, operation, snapshot, created_at, synced_at, retry_count, last_error"

// GetPendingChanges returns unsynced entries oldest-first. The ordering
// preserves the causal order of mutations against the same entity, so an
// agent replaying the log in order applies creates before updates before
// deletes.
func (r *Repository) GetPendingChanges(ctx context.Context) ([]*models.ChangeEntry, error) {
	query := `SELECT ` + changeColumns + ` FROM change_queue
		WHERE synced_at IS NULL ORDER BY created_at ASC, rowid ASC`
	return r.queryChanges(ctx, query)
}

// GetPendingChangesByType returns unsynced entries for one entity type,
// oldest-first.
func (r *Repository) GetPendingChangesByType(ctx context.Context, entityType models.EntityType) ([]*models.ChangeEntry, error) {
	query := `SELECT ` + changeColumns + ` FROM change_queue
		WHERE synced_at IS NULL AND entity_type = ? ORDER BY created_at ASC, rowid ASC`
	return r.queryChanges(ctx, query, entityType)
}

// MarkSynced stamps an entry synced and clears its last error. Calling it
// on an already-synced or missing entry is a no-op, not an error, so the
// sync agent can acknowledge idempotently.
func (r *Repository) MarkSynced(ctx context.Context, id models.UUID) error {
	query := `UPDATE change_queue SET synced_at = ?, last_error = '' WHERE id = ? AND synced_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, nowMillis(), id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to mark change synced", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		r.tel.Count("queue.synced", 1, nil)
	}
	return nil
}

// MarkFailed records a failed sync attempt: retry count up, error message
// stored. The entry stays pending-for-replay indefinitely; there is no
// retry ceiling here, abandonment is the sync agent's call.
func (r *Repository) MarkFailed(ctx context.Context, id models.UUID, errorMessage string) error {
	query := `UPDATE change_queue SET retry_count = retry_count + 1, last_error = ? WHERE id = ? AND synced_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, errorMessage, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to mark change failed", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		r.log.WithFields(logrus.Fields{
			"entry_id": id,
			"error":    errorMessage,
		}).Warn("change entry failed to sync")
		r.tel.Count("queue.failed", 1, nil)
	}
	return nil
}

// GetQueueCounts returns the pending/failed/synced partition sizes.
func (r *Repository) GetQueueCounts(ctx context.Context) (QueueCounts, error) {
	query := `
	SELECT
		COALESCE(SUM(CASE WHEN synced_at IS NULL AND retry_count = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN synced_at IS NULL AND retry_count > 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN synced_at IS NOT NULL THEN 1 ELSE 0 END), 0)
	FROM change_queue
	`
	var counts QueueCounts
	err := r.db.QueryRowContext(ctx, query).Scan(&counts.Pending, &counts.Failed, &counts.Synced)
	if err != nil {
		return QueueCounts{}, apperrors.Wrap(apperrors.ErrDatabase, "failed to count queue entries", err)
	}
	return counts, nil
}

// ClearOldSynced physically removes synced entries older than the cutoff.
// Retention policy only; pending and failed entries are never touched.
func (r *Repository) ClearOldSynced(ctx context.Context, daysToKeep int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep).UnixMilli()

	query := `DELETE FROM change_queue WHERE synced_at IS NOT NULL AND synced_at < ?`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to clear synced entries", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		r.log.WithFields(logrus.Fields{
			"removed":      removed,
			"days_to_keep": daysToKeep,
		}).Info("pruned synced change entries")
	}
	return removed, nil
}

// BatchPending groups pending entries by "entityType:operation" for bulk
// transmission. Within each group the oldest-first ordering is preserved.
func (r *Repository) BatchPending(ctx context.Context) (map[string][]*models.ChangeEntry, error) {
	entries, err := r.GetPendingChanges(ctx)
	if err != nil {
		return nil, err
	}

	batches := make(map[string][]*models.ChangeEntry)
	for _, entry := range entries {
		key := entry.BatchKey()
		batches[key] = append(batches[key], entry)
	}
	return batches, nil
}

// RecordConflict persists a resolved-conflict record for user awareness.
func (r *Repository) RecordConflict(ctx context.Context, log *models.ConflictLog) error {
	if log.ID == "" {
		log.ID = models.UUID(uuid.New().String())
	}
	if log.DetectedAt == 0 {
		log.DetectedAt = nowMillis()
	}

	query := `
	INSERT INTO conflict_log (id, entity_type, entity_id, local_timestamp, remote_timestamp, resolution, detected_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, log.ID, log.EntityType, log.EntityID,
		log.LocalTimestamp, log.RemoteTimestamp, log.Resolution, log.DetectedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to record conflict", err)
	}
	return nil
}

// ListConflicts returns resolved conflicts newest-first.
func (r *Repository) ListConflicts(ctx context.Context) ([]*models.ConflictLog, error) {
	query := `
	SELECT id, entity_type, entity_id, local_timestamp, remote_timestamp, resolution, detected_at
	FROM conflict_log ORDER BY detected_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list conflicts", err)
	}
	defer rows.Close()

	var logs []*models.ConflictLog
	for rows.Next() {
		var c models.ConflictLog
		if err := rows.Scan(&c.ID, &c.EntityType, &c.EntityID, &c.LocalTimestamp,
			&c.RemoteTimestamp, &c.Resolution, &c.DetectedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan conflict", err)
		}
		logs = append(logs, &c)
	}
	return logs, rows.Err()
}

func (r *Repository) queryChanges(ctx context.Context, query string, args ...interface{}) ([]*models.ChangeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to query change queue", err)
	}
	defer rows.Close()

	var entries []*models.ChangeEntry
	for rows.Next() {
		var e models.ChangeEntry
		var snapshot string
		var syncedAt sql.NullInt64

		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Operation, &snapshot,
			&e.CreatedAt, &syncedAt, &e.RetryCount, &e.LastError); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan change entry", err)
		}

		e.Snapshot = json.RawMessage(snapshot)
		e.SyncedAt = intPtr(syncedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
