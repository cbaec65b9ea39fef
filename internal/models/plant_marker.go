// Package models provides data model definitions for Plantry Core.
package models

// PlantMarker places one plant on one layout. X and Y are percentages
// (0-100) relative to the layout image, so markers stay put when the image
// is rendered at different sizes.
type PlantMarker struct {
	ID        UUID    `db:"id" json:"id"`
	LayoutID  UUID    `db:"layout_id" json:"layout_id"`
	PlantID   UUID    `db:"plant_id" json:"plant_id"`
	X         float64 `db:"x" json:"x"`
	Y         float64 `db:"y" json:"y"`
	Rotation  float64 `db:"rotation" json:"rotation,omitempty"`
	Scale     float64 `db:"scale" json:"scale,omitempty"`
	Label     string  `db:"label" json:"label,omitempty"`
	Icon      string  `db:"icon" json:"icon,omitempty"`
	DeletedAt *int64  `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for PlantMarker.
func (PlantMarker) TableName() string {
	return "plant_markers"
}

// Active reports whether the marker has not been soft deleted.
func (m *PlantMarker) Active() bool {
	return m.DeletedAt == nil
}

// Modified implements Syncable.
func (m *PlantMarker) Modified() int64 {
	return m.UpdatedAt
}
