// Package models provides data model definitions for Plantry Core.
package models

// LayoutType distinguishes indoor room layouts from outdoor garden layouts.
type LayoutType string

const (
	LayoutIndoor  LayoutType = "indoor"
	LayoutOutdoor LayoutType = "outdoor"
)

// Valid reports whether the layout type is known.
func (t LayoutType) Valid() bool {
	return t == LayoutIndoor || t == LayoutOutdoor
}

// Layout is a named garden/room image on which plant markers are placed.
type Layout struct {
	ID         UUID       `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	ImagePath  string     `db:"image_path" json:"image_path,omitempty"`
	Width      int        `db:"width" json:"width"`
	Height     int        `db:"height" json:"height"`
	LayoutType LayoutType `db:"layout_type" json:"layout_type"`
	DeletedAt  *int64     `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt  int64      `db:"created_at" json:"created_at"`
	UpdatedAt  int64      `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Layout.
func (Layout) TableName() string {
	return "layouts"
}

// Active reports whether the layout has not been soft deleted.
func (l *Layout) Active() bool {
	return l.DeletedAt == nil
}

// Modified implements Syncable.
func (l *Layout) Modified() int64 {
	return l.UpdatedAt
}
