// Package schedule implements due/overdue classification and recurrence
// advancement for care tasks.
//
// Classification is computed at query time against a caller-supplied clock;
// it is never persisted. A snoozed task is neither due nor overdue until
// its snooze elapses, no matter how far past its due date the clock is.
package schedule

import (
	"fmt"
	"time"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// IsDue reports whether the task is actionable and its due date has
// arrived. A task with no due date is never due.
func IsDue(t *models.CareTask, now time.Time) bool {
	if t.DeletedAt != nil || t.CompletedAt != nil || t.DueAt == nil {
		return false
	}

	n := now.UnixMilli()
	if *t.DueAt > n {
		return false
	}
	if t.SnoozedUntil != nil && *t.SnoozedUntil > n {
		return false
	}
	return true
}

// IsOverdue reports whether the task is due and its due date is strictly
// in the past. A task due exactly now is due but not overdue.
func IsOverdue(t *models.CareTask, now time.Time) bool {
	return IsDue(t, now) && *t.DueAt < now.UnixMilli()
}

// NextDueDate advances a due date by one repeat interval using calendar
// arithmetic. Monthly advancement clamps to the last valid day of the
// target month (Jan 31 -> Feb 29 in a leap year). A custom interval
// without a positive day count is a configuration error.
func NextDueDate(due time.Time, interval models.RepeatInterval, customDays int) (time.Time, error) {
	switch interval {
	case models.RepeatDaily:
		return due.AddDate(0, 0, 1), nil
	case models.RepeatWeekly:
		return due.AddDate(0, 0, 7), nil
	case models.RepeatBiweekly:
		return due.AddDate(0, 0, 14), nil
	case models.RepeatMonthly:
		return addCalendarMonth(due), nil
	case models.RepeatCustom:
		if customDays <= 0 {
			return due, apperrors.New(apperrors.ErrRepeatConfig,
				"custom repeat interval requires repeat_custom_days > 0")
		}
		return due.AddDate(0, 0, customDays), nil
	default:
		return due, apperrors.New(apperrors.ErrInvalid,
			fmt.Sprintf("unknown repeat interval %q", interval))
	}
}

// addCalendarMonth adds one calendar month, clamping the day of month.
// time.AddDate would normalize Jan 31 + 1 month to Mar 2/3 instead.
func addCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()

	// Day 0 of month+2 is the last day of month+1.
	last := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > last {
		day = last
	}

	return time.Date(year, month+1, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
