package db

import (
	"testing"
)

func TestMigrationsApplyInOrder(t *testing.T) {
	conn, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	if err := conn.Setup(); err != nil {
		t.Fatalf("failed to set up database: %v", err)
	}

	m := NewMigrator(conn.DB)
	version, err := m.CurrentVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		t.Fatalf("failed to list migrations: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", len(applied))
	}
	for i, mig := range applied {
		if mig.Version != i+1 {
			t.Errorf("expected version %d at position %d, got %d", i+1, i, mig.Version)
		}
		if mig.Checksum == "" {
			t.Errorf("migration %d has no checksum", mig.Version)
		}
	}

	// Every table the data layer relies on must exist.
	tables := []string{
		"plants", "plant_tags", "care_tasks", "photos",
		"layouts", "plant_markers", "change_queue", "sync_cursor", "conflict_log",
	}
	for _, table := range tables {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestMigrationsUpIsIdempotent(t *testing.T) {
	conn, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	m := NewMigrator(conn.DB)
	if err := m.Initialize(); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("first up failed: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("second up failed: %v", err)
	}

	version, err := m.CurrentVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2 after repeated up, got %d", version)
	}
}

func TestMigrationDown(t *testing.T) {
	conn, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	m := NewMigrator(conn.DB)
	if err := m.Initialize(); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("up failed: %v", err)
	}

	if err := m.Down(); err != nil {
		t.Fatalf("down failed: %v", err)
	}

	version, err := m.CurrentVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after down, got %d", version)
	}

	var name string
	err = conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'layouts'").Scan(&name)
	if err == nil {
		t.Error("expected layouts table to be gone after down")
	}
}
