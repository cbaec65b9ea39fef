// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
	"github.com/plantry/core/internal/telemetry"
)

// Repository provides CRUD operations for all entity tables. Every
// mutation writes the entity row and appends a change-queue entry inside
// one transaction, so a mutation is never visible without its queue entry.
type Repository struct {
	db  *sql.DB
	log *logrus.Logger
	tel telemetry.Recorder

	// Prepared statement cache for frequently used queries.
	// Statements are prepared on first use and reused.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance. A nil telemetry
// recorder defaults to a no-op.
func NewRepository(db *DB, log *logrus.Logger, tel telemetry.Recorder) *Repository {
	if tel == nil {
		tel = telemetry.Noop{}
	}
	return &Repository{db: db.DB, log: log, tel: tel}
}

// PrepareStmt gets or creates a prepared statement from the cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to prepare statement", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate.
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to commit transaction", err)
	}
	return nil
}

// enqueue appends a change-queue entry inside the caller's transaction.
// The snapshot is the full entity at mutation time, not a diff.
func (r *Repository) enqueue(ctx context.Context, tx *sql.Tx, entityType models.EntityType, entityID models.UUID, op models.Operation, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "failed to serialize snapshot", err)
	}

	query := `
	INSERT INTO change_queue (id, entity_type, entity_id, operation, snapshot, created_at, synced_at, retry_count, last_error)
	VALUES (?, ?, ?, ?, ?, ?, NULL, 0, '')
	`
	_, err = tx.ExecContext(ctx, query,
		uuid.New().String(), entityType, entityID, op, string(payload), nowMillis())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to append change queue entry", err)
	}

	r.log.WithFields(logrus.Fields{
		"entity_type": entityType,
		"entity_id":   entityID,
		"operation":   op,
	}).Debug("queued change")
	r.tel.Count("queue.append", 1, map[string]string{
		"entity": string(entityType),
		"op":     string(op),
	})

	return nil
}

// nowMillis returns the current time as unix milliseconds. Millisecond
// precision keeps the last-write-wins tie-break path exceptional.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// nullInt converts an optional timestamp to its SQL representation.
func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// intPtr converts a scanned nullable column back to an optional value.
func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
