// Package models provides data model definitions for Plantry Core.
package models

import (
	"encoding/json"
	"time"
)

// ChangeEntry is one row of the change queue: a local mutation pending
// replay against a remote system. Snapshot holds the full entity as it was
// at mutation time, so replay does not depend on the current table state.
type ChangeEntry struct {
	ID         UUID            `db:"id" json:"id"`
	EntityType EntityType      `db:"entity_type" json:"entity_type"`
	EntityID   UUID            `db:"entity_id" json:"entity_id"`
	Operation  Operation       `db:"operation" json:"operation"`
	Snapshot   json.RawMessage `db:"snapshot" json:"snapshot"`
	CreatedAt  int64           `db:"created_at" json:"created_at"`
	SyncedAt   *int64          `db:"synced_at" json:"synced_at,omitempty"`
	RetryCount int             `db:"retry_count" json:"retry_count"`
	LastError  string          `db:"last_error" json:"last_error,omitempty"`
}

// TableName returns the table name for ChangeEntry.
func (ChangeEntry) TableName() string {
	return "change_queue"
}

// Pending reports whether the entry has never been synced and never failed.
func (e *ChangeEntry) Pending() bool {
	return e.SyncedAt == nil && e.RetryCount == 0
}

// Failed reports whether the entry is unsynced with at least one failed
// attempt. Failed entries stay eligible for replay until synced or pruned.
func (e *ChangeEntry) Failed() bool {
	return e.SyncedAt == nil && e.RetryCount > 0
}

// Synced reports whether the entry has been acknowledged by the sync agent.
func (e *ChangeEntry) Synced() bool {
	return e.SyncedAt != nil
}

// BatchKey groups entries for bulk transmission, e.g. "plant:create".
func (e *ChangeEntry) BatchKey() string {
	return string(e.EntityType) + ":" + string(e.Operation)
}

// CreatedAtTime returns the CreatedAt as time.Time.
func (e *ChangeEntry) CreatedAtTime() time.Time {
	return time.UnixMilli(e.CreatedAt)
}
