package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUUIDScan(t *testing.T) {
	var u UUID

	if err := u.Scan("abc-123"); err != nil {
		t.Fatalf("failed to scan string: %v", err)
	}
	if u != "abc-123" {
		t.Errorf("expected abc-123, got %s", u)
	}

	if err := u.Scan([]byte("def-456")); err != nil {
		t.Fatalf("failed to scan bytes: %v", err)
	}
	if u != "def-456" {
		t.Errorf("expected def-456, got %s", u)
	}

	if err := u.Scan(nil); err != nil {
		t.Fatalf("failed to scan nil: %v", err)
	}
	if u != "" {
		t.Errorf("expected empty UUID from nil, got %s", u)
	}

	if err := u.Scan(42); err == nil {
		t.Error("expected an error scanning an int")
	}
}

func TestChangeEntryPartition(t *testing.T) {
	synced := time.Now().UnixMilli()

	tests := []struct {
		name    string
		entry   ChangeEntry
		pending bool
		failed  bool
		done    bool
	}{
		{"fresh", ChangeEntry{}, true, false, false},
		{"failed once", ChangeEntry{RetryCount: 1}, false, true, false},
		{"synced", ChangeEntry{SyncedAt: &synced}, false, false, true},
		{"synced after failures", ChangeEntry{SyncedAt: &synced, RetryCount: 3}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Pending(); got != tt.pending {
				t.Errorf("Pending() = %v, want %v", got, tt.pending)
			}
			if got := tt.entry.Failed(); got != tt.failed {
				t.Errorf("Failed() = %v, want %v", got, tt.failed)
			}
			if got := tt.entry.Synced(); got != tt.done {
				t.Errorf("Synced() = %v, want %v", got, tt.done)
			}
		})
	}
}

func TestChangeEntryBatchKey(t *testing.T) {
	e := ChangeEntry{EntityType: EntityPlant, Operation: OpCreate}
	if key := e.BatchKey(); key != "plant:create" {
		t.Errorf("expected plant:create, got %s", key)
	}
}

func TestCareTaskSnapshotRoundTrip(t *testing.T) {
	due := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	task := CareTask{
		ID:             "t1",
		PlantID:        "p1",
		Title:          "Water",
		TaskType:       TaskWater,
		DueAt:          &due,
		RepeatInterval: RepeatWeekly,
		CreatedAt:      1,
		UpdatedAt:      2,
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var got CareTask
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.DueAt == nil || *got.DueAt != due {
		t.Error("expected the due date to survive the snapshot")
	}
	if got.CompletedAt != nil || got.DeletedAt != nil {
		t.Error("expected nil optionals to stay nil")
	}
	if got.RepeatInterval != RepeatWeekly {
		t.Errorf("expected weekly interval, got %s", got.RepeatInterval)
	}
}

func TestTaskTypeValid(t *testing.T) {
	for _, tt := range []TaskType{TaskWater, TaskFertilize, TaskPrune, TaskRepot, TaskOther} {
		if !tt.Valid() {
			t.Errorf("expected %s to be valid", tt)
		}
	}
	if TaskType("sing").Valid() {
		t.Error("expected unknown type to be invalid")
	}
}

func TestCareTaskState(t *testing.T) {
	now := time.Now().UnixMilli()

	task := CareTask{}
	if !task.Actionable() {
		t.Error("expected a fresh task to be actionable")
	}
	if task.Recurring() {
		t.Error("expected no recurrence by default")
	}

	task.CompletedAt = &now
	if task.Actionable() {
		t.Error("expected a completed task to not be actionable")
	}

	task = CareTask{DeletedAt: &now, RepeatInterval: RepeatMonthly}
	if task.Actionable() {
		t.Error("expected a tombstoned task to not be actionable")
	}
	if !task.Recurring() {
		t.Error("expected a monthly task to be recurring")
	}
}
