// Package db provides CRUD repository operations for Plantry data models.
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
	"github.com/plantry/core/internal/schedule"
)

// NewCareTask is the creation shape for CareTask.
type NewCareTask struct {
	PlantID          models.UUID
	Title            string
	Description      string
	TaskType         models.TaskType
	DueAt            *int64
	RepeatInterval   models.RepeatInterval
	RepeatCustomDays int
}

// CareTaskPatch is the update shape for CareTask. Nil fields are left
// untouched; due date, completion and snooze state have dedicated
// operations (CompleteTask, SnoozeTask).
type CareTaskPatch struct {
	ID               models.UUID
	Title            *string
	Description      *string
	TaskType         *models.TaskType
	DueAt            *int64
	RepeatInterval   *models.RepeatInterval
	RepeatCustomDays *int
}

// TaskFilter narrows ListCareTasks / CountCareTasks. DueOnly and
// OverdueOnly are evaluated in Go against the clock, since due state is a
// query-time classification, never a stored flag.
type TaskFilter struct {
	IncludeDeleted bool
	PlantID        models.UUID
	TaskType       models.TaskType
	DueOnly        bool
	OverdueOnly    bool
}

const taskColumns = `id, plant_id, title, description, task_type, due_at, completed_at,
	snoozed_until, repeat_interval, repeat_custom_days, deleted_at, created_at, updated_at`

// CreateCareTask creates a care task and enqueues a create change entry.
func (r *Repository) CreateCareTask(ctx context.Context, t NewCareTask) (*models.CareTask, error) {
	now := nowMillis()
	taskType := t.TaskType
	if taskType == "" {
		taskType = models.TaskOther
	}

	task := &models.CareTask{
		ID:               models.UUID(uuid.New().String()),
		PlantID:          t.PlantID,
		Title:            t.Title,
		Description:      t.Description,
		TaskType:         taskType,
		DueAt:            t.DueAt,
		RepeatInterval:   t.RepeatInterval,
		RepeatCustomDays: t.RepeatCustomDays,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
		INSERT INTO care_tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, NULL, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, task.ID, task.PlantID, task.Title,
			task.Description, task.TaskType, nullInt(task.DueAt),
			nullString(string(task.RepeatInterval)), task.RepeatCustomDays,
			task.CreatedAt, task.UpdatedAt); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to create care task", err)
		}
		return r.enqueue(ctx, tx, models.EntityCareTask, task.ID, models.OpCreate, task)
	})
	if err != nil {
		return nil, err
	}

	r.tel.Count("care_task.create", 1, nil)
	return task, nil
}

// GetCareTask retrieves a care task by ID. Returns (nil, nil) when absent.
func (r *Repository) GetCareTask(ctx context.Context, id models.UUID) (*models.CareTask, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + taskColumns + ` FROM care_tasks WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	task, err := scanCareTask(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get care task", err)
	}
	return task, nil
}

// UpdateCareTask shallow-merges the provided fields over the stored task.
func (r *Repository) UpdateCareTask(ctx context.Context, patch CareTaskPatch) (*models.CareTask, error) {
	task, err := r.GetCareTask(ctx, patch.ID)
	if err != nil || task == nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.TaskType != nil {
		task.TaskType = *patch.TaskType
	}
	if patch.DueAt != nil {
		due := *patch.DueAt
		task.DueAt = &due
	}
	if patch.RepeatInterval != nil {
		task.RepeatInterval = *patch.RepeatInterval
	}
	if patch.RepeatCustomDays != nil {
		task.RepeatCustomDays = *patch.RepeatCustomDays
	}
	task.UpdatedAt = nowMillis()

	if err := r.persistAndQueueTask(ctx, task); err != nil {
		return nil, err
	}

	r.tel.Count("care_task.update", 1, nil)
	return task, nil
}

// DeleteCareTask soft deletes a care task. Returns false when absent.
func (r *Repository) DeleteCareTask(ctx context.Context, id models.UUID) (bool, error) {
	task, err := r.GetCareTask(ctx, id)
	if err != nil || task == nil {
		return false, err
	}

	now := nowMillis()
	task.DeletedAt = &now
	task.UpdatedAt = now

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistCareTask(ctx, tx, task); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityCareTask, task.ID, models.OpDelete, task)
	})
	if err != nil {
		return false, err
	}

	r.tel.Count("care_task.delete", 1, nil)
	return true, nil
}

// HardDeleteCareTask physically removes a care task row, bypassing the
// change queue.
func (r *Repository) HardDeleteCareTask(ctx context.Context, id models.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM care_tasks WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to hard delete care task", err)
	}
	return nil
}

// RestoreCareTask clears a task's tombstone. Returns (nil, nil) when the
// task is absent or already active.
func (r *Repository) RestoreCareTask(ctx context.Context, id models.UUID) (*models.CareTask, error) {
	task, err := r.GetCareTask(ctx, id)
	if err != nil || task == nil {
		return nil, err
	}
	if task.DeletedAt == nil {
		return nil, nil
	}

	task.DeletedAt = nil
	task.UpdatedAt = nowMillis()

	if err := r.persistAndQueueTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask stamps the task completed and clears any snooze. A
// recurring task with a due date is not closed: its due date advances to
// the next occurrence while completed_at records this occurrence. A
// custom interval without a day count surfaces a configuration error.
func (r *Repository) CompleteTask(ctx context.Context, id models.UUID) (*models.CareTask, error) {
	task, err := r.GetCareTask(ctx, id)
	if err != nil || task == nil {
		return nil, err
	}

	now := nowMillis()
	task.CompletedAt = &now
	task.SnoozedUntil = nil

	if task.Recurring() && task.DueAt != nil {
		next, err := schedule.NextDueDate(time.UnixMilli(*task.DueAt), task.RepeatInterval, task.RepeatCustomDays)
		if err != nil {
			return nil, err
		}
		ms := next.UnixMilli()
		task.DueAt = &ms
	}
	task.UpdatedAt = now

	if err := r.persistAndQueueTask(ctx, task); err != nil {
		return nil, err
	}

	r.tel.Count("care_task.complete", 1, nil)
	return task, nil
}

// SnoozeTask suppresses due/overdue classification until the given time.
// Due date and completion state are untouched.
func (r *Repository) SnoozeTask(ctx context.Context, id models.UUID, until time.Time) (*models.CareTask, error) {
	task, err := r.GetCareTask(ctx, id)
	if err != nil || task == nil {
		return nil, err
	}

	ms := until.UnixMilli()
	task.SnoozedUntil = &ms
	task.UpdatedAt = nowMillis()

	if err := r.persistAndQueueTask(ctx, task); err != nil {
		return nil, err
	}

	r.tel.Count("care_task.snooze", 1, nil)
	return task, nil
}

// ListCareTasks returns tasks ordered soonest-due-first; tasks without a
// due date sort last (backlog), ties broken by newest-created-first.
func (r *Repository) ListCareTasks(ctx context.Context, f TaskFilter) ([]*models.CareTask, error) {
	fb := taskFilterBuilder(f)
	where, args := fb.whereClause()

	query := `SELECT ` + taskColumns + ` FROM care_tasks` + where +
		` ORDER BY (due_at IS NULL) ASC, due_at ASC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list care tasks", err)
	}
	defer rows.Close()

	now := time.Now()
	var tasks []*models.CareTask
	for rows.Next() {
		task, err := scanCareTask(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan care task", err)
		}
		if f.OverdueOnly && !schedule.IsOverdue(task, now) {
			continue
		}
		if f.DueOnly && !schedule.IsDue(task, now) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CountCareTasks returns the cardinality of ListCareTasks for the same
// filter.
func (r *Repository) CountCareTasks(ctx context.Context, f TaskFilter) (int, error) {
	// Due classification happens in Go, so clock-dependent filters count
	// the listed rows.
	if f.DueOnly || f.OverdueOnly {
		tasks, err := r.ListCareTasks(ctx, f)
		if err != nil {
			return 0, err
		}
		return len(tasks), nil
	}

	fb := taskFilterBuilder(f)
	where, args := fb.whereClause()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM care_tasks`+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to count care tasks", err)
	}
	return count, nil
}

func taskFilterBuilder(f TaskFilter) *FilterBuilder {
	fb := NewFilterBuilder()
	if !f.IncludeDeleted {
		fb.ActiveOnly()
	}
	if f.PlantID != "" {
		fb.Field("plant_id", f.PlantID)
	}
	if f.TaskType != "" {
		fb.TaskType(f.TaskType)
	}
	return fb
}

// persistAndQueueTask writes the task and its update entry in one
// transaction.
func (r *Repository) persistAndQueueTask(ctx context.Context, task *models.CareTask) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.persistCareTask(ctx, tx, task); err != nil {
			return err
		}
		return r.enqueue(ctx, tx, models.EntityCareTask, task.ID, models.OpUpdate, task)
	})
}

func (r *Repository) persistCareTask(ctx context.Context, tx *sql.Tx, t *models.CareTask) error {
	query := `
	UPDATE care_tasks
	SET plant_id = ?, title = ?, description = ?, task_type = ?, due_at = ?,
	    completed_at = ?, snoozed_until = ?, repeat_interval = ?,
	    repeat_custom_days = ?, deleted_at = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, t.PlantID, t.Title, t.Description,
		t.TaskType, nullInt(t.DueAt), nullInt(t.CompletedAt), nullInt(t.SnoozedUntil),
		nullString(string(t.RepeatInterval)), t.RepeatCustomDays,
		nullInt(t.DeletedAt), t.UpdatedAt, t.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update care task", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.ErrDatabase, "care task row vanished during update")
	}
	return nil
}

func scanCareTask(row rowScanner) (*models.CareTask, error) {
	var t models.CareTask
	var dueAt, completedAt, snoozedUntil, deletedAt sql.NullInt64
	var repeatInterval sql.NullString

	if err := row.Scan(&t.ID, &t.PlantID, &t.Title, &t.Description, &t.TaskType,
		&dueAt, &completedAt, &snoozedUntil, &repeatInterval, &t.RepeatCustomDays,
		&deletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	t.DueAt = intPtr(dueAt)
	t.CompletedAt = intPtr(completedAt)
	t.SnoozedUntil = intPtr(snoozedUntil)
	t.DeletedAt = intPtr(deletedAt)
	if repeatInterval.Valid {
		t.RepeatInterval = models.RepeatInterval(repeatInterval.String)
	}
	return &t, nil
}
