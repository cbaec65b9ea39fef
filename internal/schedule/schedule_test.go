package schedule

import (
	"testing"
	"time"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func ms(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name string
		task models.CareTask
		want bool
	}{
		{"no due date", models.CareTask{}, false},
		{"due in the past", models.CareTask{DueAt: ms(now.Add(-time.Hour))}, true},
		{"due exactly now", models.CareTask{DueAt: ms(now)}, true},
		{"due in the future", models.CareTask{DueAt: ms(now.Add(time.Hour))}, false},
		{"completed", models.CareTask{DueAt: ms(now.Add(-time.Hour)), CompletedAt: ms(now)}, false},
		{"soft deleted", models.CareTask{DueAt: ms(now.Add(-time.Hour)), DeletedAt: ms(now)}, false},
		{"snoozed past due date", models.CareTask{
			DueAt:        ms(now.Add(-48 * time.Hour)),
			SnoozedUntil: ms(now.Add(24 * time.Hour)),
		}, false},
		{"snooze elapsed", models.CareTask{
			DueAt:        ms(now.Add(-48 * time.Hour)),
			SnoozedUntil: ms(now.Add(-time.Minute)),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDue(&tt.task, now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name string
		task models.CareTask
		want bool
	}{
		{"due in the past", models.CareTask{DueAt: ms(now.Add(-time.Hour))}, true},
		{"due exactly now is not overdue", models.CareTask{DueAt: ms(now)}, false},
		{"due in the future", models.CareTask{DueAt: ms(now.Add(time.Hour))}, false},
		{"snoozed", models.CareTask{
			DueAt:        ms(now.Add(-time.Hour)),
			SnoozedUntil: ms(now.Add(time.Hour)),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(&tt.task, now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		due      time.Time
		interval models.RepeatInterval
		custom   int
		want     time.Time
	}{
		{
			name:     "daily",
			due:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			interval: models.RepeatDaily,
			want:     time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly",
			due:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			interval: models.RepeatWeekly,
			want:     time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "biweekly",
			due:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			interval: models.RepeatBiweekly,
			want:     time.Date(2026, 3, 24, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly mid-month",
			due:      time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
			interval: models.RepeatMonthly,
			want:     time.Date(2026, 5, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps to leap february",
			due:      time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC),
			interval: models.RepeatMonthly,
			want:     time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps to short february",
			due:      time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC),
			interval: models.RepeatMonthly,
			want:     time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps 31st to 30-day month",
			due:      time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC),
			interval: models.RepeatMonthly,
			want:     time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly across year boundary",
			due:      time.Date(2026, 12, 31, 8, 0, 0, 0, time.UTC),
			interval: models.RepeatMonthly,
			want:     time.Date(2027, 1, 31, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "custom",
			due:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			interval: models.RepeatCustom,
			custom:   10,
			want:     time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.due, tt.interval, tt.custom)
			if err != nil {
				t.Fatalf("NextDueDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextDueDateCustomRequiresDays(t *testing.T) {
	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, days := range []int{0, -5} {
		_, err := NextDueDate(due, models.RepeatCustom, days)
		if !apperrors.Is(err, apperrors.ErrRepeatConfig) {
			t.Errorf("days=%d: expected repeat configuration error, got %v", days, err)
		}
	}
}

func TestNextDueDateUnknownInterval(t *testing.T) {
	_, err := NextDueDate(now, models.RepeatInterval("fortnightly"), 0)
	if !apperrors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("expected invalid interval error, got %v", err)
	}
}
