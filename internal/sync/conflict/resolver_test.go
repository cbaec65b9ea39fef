package conflict

import (
	"testing"

	"github.com/plantry/core/internal/logging"
	"github.com/plantry/core/internal/models"
)

func plantAt(id models.UUID, updatedAt int64) *models.Plant {
	return &models.Plant{ID: id, Name: "p", UpdatedAt: updatedAt}
}

func TestResolveLocalWinsWhenStrictlyNewer(t *testing.T) {
	r := NewResolver(logging.Discard())

	local := plantAt("p1", 2000)
	remote := plantAt("p1", 1000)

	result, err := r.Resolve(&Conflict{
		EntityType: models.EntityPlant,
		EntityID:   "p1",
		Local:      local,
		Remote:     remote,
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	if result.Resolution != ResolutionLocalWins {
		t.Errorf("expected local_wins, got %s", result.Resolution)
	}
	if result.Winner != models.Syncable(local) || result.Loser != models.Syncable(remote) {
		t.Error("expected local as winner and remote as loser")
	}
}

func TestResolveRemoteWinsWhenNewer(t *testing.T) {
	r := NewResolver(logging.Discard())

	result, err := r.Resolve(&Conflict{
		EntityType: models.EntityPlant,
		EntityID:   "p1",
		Local:      plantAt("p1", 1000),
		Remote:     plantAt("p1", 2000),
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if result.Resolution != ResolutionRemoteWins {
		t.Errorf("expected remote_wins, got %s", result.Resolution)
	}
}

func TestResolveTieFavorsRemote(t *testing.T) {
	r := NewResolver(logging.Discard())

	local := plantAt("p1", 1500)
	remote := plantAt("p1", 1500)

	result, err := r.Resolve(&Conflict{
		EntityType: models.EntityPlant,
		EntityID:   "p1",
		Local:      local,
		Remote:     remote,
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	// Equal timestamps resolve toward remote so every device converges.
	if result.Resolution != ResolutionRemoteWins {
		t.Errorf("expected tie to favor remote, got %s", result.Resolution)
	}
	if result.Winner != models.Syncable(remote) {
		t.Error("expected remote as winner on a tie")
	}
}

func TestResolveRecordsConflictLog(t *testing.T) {
	r := NewResolver(logging.Discard())

	result, err := r.Resolve(&Conflict{
		EntityType: models.EntityCareTask,
		EntityID:   "t1",
		Local:      plantAt("t1", 500),
		Remote:     plantAt("t1", 900),
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	log := result.Log
	if log == nil {
		t.Fatal("expected a conflict log")
	}
	if log.EntityType != models.EntityCareTask || log.EntityID != "t1" {
		t.Errorf("unexpected log identity: %+v", log)
	}
	if log.LocalTimestamp != 500 || log.RemoteTimestamp != 900 {
		t.Errorf("expected both timestamps recorded, got %+v", log)
	}
	if log.Resolution != string(ResolutionRemoteWins) {
		t.Errorf("expected resolution remote_wins, got %s", log.Resolution)
	}
}

func TestResolveRequiresBothSides(t *testing.T) {
	r := NewResolver(logging.Discard())

	if _, err := r.Resolve(&Conflict{Local: plantAt("p1", 1)}); err == nil {
		t.Error("expected an error when remote is missing")
	}
	if _, err := r.Resolve(&Conflict{Remote: plantAt("p1", 1)}); err == nil {
		t.Error("expected an error when local is missing")
	}
}

func TestResolveMany(t *testing.T) {
	r := NewResolver(logging.Discard())

	conflicts := []*Conflict{
		{EntityType: models.EntityPlant, EntityID: "a", Local: plantAt("a", 2), Remote: plantAt("a", 1)},
		{EntityType: models.EntityPlant, EntityID: "b", Local: plantAt("b", 1), Remote: plantAt("b", 2)},
	}

	results, err := r.ResolveMany(conflicts)
	if err != nil {
		t.Fatalf("failed to resolve batch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Resolution != ResolutionLocalWins || results[1].Resolution != ResolutionRemoteWins {
		t.Errorf("unexpected resolutions: %s, %s", results[0].Resolution, results[1].Resolution)
	}
}
