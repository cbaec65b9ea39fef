// Package models provides data model definitions for Plantry Core.
package models

import "time"

// SyncCursor is the singleton row tracking the last successful incremental
// pull. The external sync agent reads and advances it; the store only
// guarantees the row exists.
type SyncCursor struct {
	ID           int   `db:"id" json:"id"` // always 1
	LastPulledAt int64 `db:"last_pulled_at" json:"last_pulled_at"`
	UpdatedAt    int64 `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for SyncCursor.
func (SyncCursor) TableName() string {
	return "sync_cursor"
}

// LastPulledAtTime returns the LastPulledAt as time.Time.
func (c *SyncCursor) LastPulledAtTime() time.Time {
	return time.UnixMilli(c.LastPulledAt)
}
