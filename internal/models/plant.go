// Package models provides data model definitions for Plantry Core.
package models

import "time"

// Plant represents a tracked plant.
type Plant struct {
	ID        UUID     `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Species   string   `db:"species" json:"species,omitempty"`
	Location  string   `db:"location" json:"location,omitempty"`
	Notes     string   `db:"notes" json:"notes,omitempty"`
	Thumbnail string   `db:"thumbnail" json:"thumbnail,omitempty"`
	Tags      []string `json:"tags,omitempty"` // stored in plant_tags, not a column
	DeletedAt *int64   `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt int64    `db:"created_at" json:"created_at"`
	UpdatedAt int64    `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Plant.
func (Plant) TableName() string {
	return "plants"
}

// Active reports whether the plant has not been soft deleted.
func (p *Plant) Active() bool {
	return p.DeletedAt == nil
}

// Modified implements Syncable.
func (p *Plant) Modified() int64 {
	return p.UpdatedAt
}

// CreatedAtTime returns the CreatedAt as time.Time.
func (p *Plant) CreatedAtTime() time.Time {
	return time.UnixMilli(p.CreatedAt)
}
