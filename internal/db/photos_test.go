package db

import (
	"context"
	"testing"
	"time"
)

func TestCreatePhotoDefaultsTakenAt(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	plant := mustCreatePlant(t, repo, NewPlant{Name: "Fiddle leaf"})

	before := time.Now().UnixMilli()
	photo, err := repo.CreatePhoto(ctx, NewPhoto{
		PlantID:   plant.ID,
		LocalPath: "/photos/fiddle.jpg",
	})
	if err != nil {
		t.Fatalf("failed to create photo: %v", err)
	}

	if photo.TakenAt < before {
		t.Errorf("expected taken_at to default to now, got %d", photo.TakenAt)
	}
	if photo.UploadedAt != nil {
		t.Error("expected a fresh photo to be un-uploaded")
	}
}

func TestPhotoLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	plant := mustCreatePlant(t, repo, NewPlant{Name: "Snake plant"})
	photo, err := repo.CreatePhoto(ctx, NewPhoto{
		PlantID:   plant.ID,
		LocalPath: "/photos/snake.jpg",
		TakenAt:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
	})
	if err != nil {
		t.Fatalf("failed to create photo: %v", err)
	}

	uploaded := time.Now().UnixMilli()
	url := "https://cdn.example.com/snake.jpg"
	updated, err := repo.UpdatePhoto(ctx, PhotoPatch{
		ID:         photo.ID,
		RemoteURL:  &url,
		UploadedAt: &uploaded,
	})
	if err != nil {
		t.Fatalf("failed to update photo: %v", err)
	}
	if updated.RemoteURL != url || updated.UploadedAt == nil {
		t.Errorf("expected upload state recorded, got %+v", updated)
	}

	removed, err := repo.DeletePhoto(ctx, photo.ID)
	if err != nil || !removed {
		t.Fatalf("failed to delete photo: removed=%v err=%v", removed, err)
	}

	active, err := repo.ListPhotos(ctx, PhotoFilter{PlantID: plant.ID})
	if err != nil {
		t.Fatalf("failed to list photos: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active photos, got %d", len(active))
	}

	restored, err := repo.RestorePhoto(ctx, photo.ID)
	if err != nil {
		t.Fatalf("failed to restore photo: %v", err)
	}
	if restored == nil || restored.DeletedAt != nil {
		t.Fatal("expected restore to clear the tombstone")
	}
}

func TestListPhotosByPlant(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := mustCreatePlant(t, repo, NewPlant{Name: "A"})
	b := mustCreatePlant(t, repo, NewPlant{Name: "B"})

	for i := 0; i < 3; i++ {
		if _, err := repo.CreatePhoto(ctx, NewPhoto{PlantID: a.ID, LocalPath: "/a.jpg"}); err != nil {
			t.Fatalf("failed to create photo: %v", err)
		}
	}
	if _, err := repo.CreatePhoto(ctx, NewPhoto{PlantID: b.ID, LocalPath: "/b.jpg"}); err != nil {
		t.Fatalf("failed to create photo: %v", err)
	}

	photos, err := repo.ListPhotos(ctx, PhotoFilter{PlantID: a.ID})
	if err != nil {
		t.Fatalf("failed to list photos: %v", err)
	}
	if len(photos) != 3 {
		t.Errorf("expected 3 photos for plant A, got %d", len(photos))
	}

	count, err := repo.CountPhotos(ctx, PhotoFilter{})
	if err != nil {
		t.Fatalf("failed to count photos: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 photos total, got %d", count)
	}
}
