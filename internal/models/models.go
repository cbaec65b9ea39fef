// Package models provides data model definitions for Plantry Core.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UUID is a wrapper around string for UUID v4 type safety.
type UUID string

// Value implements driver.Valuer for UUID.
func (u UUID) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner for UUID.
func (u *UUID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*u = ""
	case string:
		*u = UUID(v)
	case []byte:
		*u = UUID(v)
	default:
		return fmt.Errorf("cannot scan %T into UUID", value)
	}
	return nil
}

// String returns the string representation of the UUID.
func (u UUID) String() string {
	return string(u)
}

// EntityType identifies which table a change queue entry belongs to.
type EntityType string

const (
	EntityPlant       EntityType = "plant"
	EntityCareTask    EntityType = "care_task"
	EntityPhoto       EntityType = "photo"
	EntityLayout      EntityType = "layout"
	EntityPlantMarker EntityType = "plant_marker"
)

// Operation is the kind of mutation recorded in the change queue.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Syncable is implemented by every synced entity. Modified returns the
// updated_at timestamp used for last-write-wins resolution.
type Syncable interface {
	Modified() int64
}

// Time converts a unix-millisecond timestamp to time.Time.
func Time(ms int64) time.Time {
	return time.UnixMilli(ms)
}
