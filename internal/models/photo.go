// Package models provides data model definitions for Plantry Core.
package models

// Photo represents an image of a plant. A photo can exist as a local file,
// a remote upload, or both.
type Photo struct {
	ID         UUID   `db:"id" json:"id"`
	PlantID    UUID   `db:"plant_id" json:"plant_id"`
	LocalPath  string `db:"local_path" json:"local_path,omitempty"`
	RemoteURL  string `db:"remote_url" json:"remote_url,omitempty"`
	TakenAt    int64  `db:"taken_at" json:"taken_at"`
	UploadedAt *int64 `db:"uploaded_at" json:"uploaded_at,omitempty"`
	DeletedAt  *int64 `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt  int64  `db:"created_at" json:"created_at"`
	UpdatedAt  int64  `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Photo.
func (Photo) TableName() string {
	return "photos"
}

// Active reports whether the photo has not been soft deleted.
func (p *Photo) Active() bool {
	return p.DeletedAt == nil
}

// Uploaded reports whether the photo has been uploaded to remote storage.
func (p *Photo) Uploaded() bool {
	return p.UploadedAt != nil
}

// Modified implements Syncable.
func (p *Photo) Modified() int64 {
	return p.UpdatedAt
}
