package db

import (
	"context"
	"testing"

	"github.com/plantry/core/internal/models"
)

func TestLayoutWithMarkers(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	plant := mustCreatePlant(t, repo, NewPlant{Name: "Monstera"})

	layout, err := repo.CreateLayout(ctx, NewLayout{
		Name:   "Living room",
		Width:  800,
		Height: 600,
	})
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}
	if layout.LayoutType != models.LayoutIndoor {
		t.Errorf("expected default layout type indoor, got %s", layout.LayoutType)
	}

	marker, err := repo.CreatePlantMarker(ctx, NewPlantMarker{
		LayoutID: layout.ID,
		PlantID:  plant.ID,
		X:        50,
		Y:        50,
	})
	if err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}
	if marker.Scale != 1 {
		t.Errorf("expected default scale 1, got %f", marker.Scale)
	}

	with, err := repo.ListMarkersWithPlants(ctx, layout.ID)
	if err != nil {
		t.Fatalf("failed to list markers with plants: %v", err)
	}
	if len(with) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(with))
	}
	if with[0].Plant == nil || with[0].Plant.Name != "Monstera" {
		t.Errorf("expected the marker's plant to be joined, got %+v", with[0].Plant)
	}
	if with[0].Marker.X != 50 || with[0].Marker.Y != 50 {
		t.Errorf("unexpected marker position: %+v", with[0].Marker)
	}
}

func TestUpdateMarkerPosition(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	plant := mustCreatePlant(t, repo, NewPlant{Name: "Aloe"})
	layout, err := repo.CreateLayout(ctx, NewLayout{Name: "Balcony", LayoutType: models.LayoutOutdoor})
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}
	marker, err := repo.CreatePlantMarker(ctx, NewPlantMarker{
		LayoutID: layout.ID,
		PlantID:  plant.ID,
		X:        10,
		Y:        20,
	})
	if err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}

	moved, err := repo.UpdateMarkerPosition(ctx, marker.ID, 75, 25)
	if err != nil {
		t.Fatalf("failed to move marker: %v", err)
	}
	if moved.X != 75 || moved.Y != 25 {
		t.Errorf("expected marker at (75, 25), got (%f, %f)", moved.X, moved.Y)
	}
}

func TestMarkerSurvivesPlantHardDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	plant := mustCreatePlant(t, repo, NewPlant{Name: "Gone"})
	layout, err := repo.CreateLayout(ctx, NewLayout{Name: "Office"})
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}
	if _, err := repo.CreatePlantMarker(ctx, NewPlantMarker{
		LayoutID: layout.ID,
		PlantID:  plant.ID,
		X:        5,
		Y:        5,
	}); err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}

	if err := repo.HardDeletePlant(ctx, plant.ID); err != nil {
		t.Fatalf("failed to hard delete plant: %v", err)
	}

	with, err := repo.ListMarkersWithPlants(ctx, layout.ID)
	if err != nil {
		t.Fatalf("failed to list markers: %v", err)
	}
	if len(with) != 1 {
		t.Fatalf("expected the marker to survive, got %d", len(with))
	}
	if with[0].Plant != nil {
		t.Error("expected a nil plant for a dangling marker")
	}
}

func TestSoftDeleteLayoutHidesIt(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	layout, err := repo.CreateLayout(ctx, NewLayout{Name: "Greenhouse"})
	if err != nil {
		t.Fatalf("failed to create layout: %v", err)
	}

	removed, err := repo.DeleteLayout(ctx, layout.ID)
	if err != nil || !removed {
		t.Fatalf("failed to delete layout: removed=%v err=%v", removed, err)
	}

	layouts, err := repo.ListLayouts(ctx, LayoutFilter{})
	if err != nil {
		t.Fatalf("failed to list layouts: %v", err)
	}
	if len(layouts) != 0 {
		t.Errorf("expected no active layouts, got %d", len(layouts))
	}

	restored, err := repo.RestoreLayout(ctx, layout.ID)
	if err != nil || restored == nil {
		t.Fatalf("failed to restore layout: %v", err)
	}

	count, err := repo.CountLayouts(ctx, LayoutFilter{})
	if err != nil {
		t.Fatalf("failed to count layouts: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 active layout after restore, got %d", count)
	}
}
