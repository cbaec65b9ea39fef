// Package models provides data model definitions for Plantry Core.
package models

import "time"

// TaskType is the category of a care task.
type TaskType string

const (
	TaskWater     TaskType = "water"
	TaskFertilize TaskType = "fertilize"
	TaskPrune     TaskType = "prune"
	TaskRepot     TaskType = "repot"
	TaskOther     TaskType = "other"
)

// Valid reports whether the task type is one of the known categories.
func (t TaskType) Valid() bool {
	switch t {
	case TaskWater, TaskFertilize, TaskPrune, TaskRepot, TaskOther:
		return true
	}
	return false
}

// RepeatInterval is the recurrence interval of a care task.
// The empty string means the task does not repeat.
type RepeatInterval string

const (
	RepeatNone     RepeatInterval = ""
	RepeatDaily    RepeatInterval = "daily"
	RepeatWeekly   RepeatInterval = "weekly"
	RepeatBiweekly RepeatInterval = "biweekly"
	RepeatMonthly  RepeatInterval = "monthly"
	RepeatCustom   RepeatInterval = "custom"
)

// CareTask represents a recurring or one-off care action for a plant.
type CareTask struct {
	ID               UUID           `db:"id" json:"id"`
	PlantID          UUID           `db:"plant_id" json:"plant_id"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description,omitempty"`
	TaskType         TaskType       `db:"task_type" json:"task_type"`
	DueAt            *int64         `db:"due_at" json:"due_at,omitempty"`
	CompletedAt      *int64         `db:"completed_at" json:"completed_at,omitempty"`
	SnoozedUntil     *int64         `db:"snoozed_until" json:"snoozed_until,omitempty"`
	RepeatInterval   RepeatInterval `db:"repeat_interval" json:"repeat_interval,omitempty"`
	RepeatCustomDays int            `db:"repeat_custom_days" json:"repeat_custom_days,omitempty"`
	DeletedAt        *int64         `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt        int64          `db:"created_at" json:"created_at"`
	UpdatedAt        int64          `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for CareTask.
func (CareTask) TableName() string {
	return "care_tasks"
}

// Active reports whether the task has not been soft deleted.
func (t *CareTask) Active() bool {
	return t.DeletedAt == nil
}

// Actionable reports whether the task is active and not yet completed.
func (t *CareTask) Actionable() bool {
	return t.DeletedAt == nil && t.CompletedAt == nil
}

// Recurring reports whether the task has a repeat interval.
func (t *CareTask) Recurring() bool {
	return t.RepeatInterval != RepeatNone
}

// Modified implements Syncable.
func (t *CareTask) Modified() int64 {
	return t.UpdatedAt
}

// DueAtTime returns the due date as time.Time, or the zero time when unset.
func (t *CareTask) DueAtTime() time.Time {
	if t.DueAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*t.DueAt)
}
