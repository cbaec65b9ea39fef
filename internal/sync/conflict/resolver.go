// Package conflict resolves concurrent-edit conflicts between local and
// remote copies of an entity using last-write-wins on updatedAt.
package conflict

import (
	"github.com/sirupsen/logrus"

	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
)

// Resolution names the outcome of a resolved conflict.
type Resolution string

const (
	ResolutionLocalWins  Resolution = "local_wins"
	ResolutionRemoteWins Resolution = "remote_wins"
)

// Resolver applies last-write-wins to concurrent edits.
type Resolver struct {
	log *logrus.Logger
}

// NewResolver creates a Resolver writing to the given logger.
func NewResolver(log *logrus.Logger) *Resolver {
	return &Resolver{log: log}
}

// Conflict pairs the local and remote copies of one entity.
type Conflict struct {
	EntityType models.EntityType
	EntityID   models.UUID
	Local      models.Syncable
	Remote     models.Syncable
}

// Result is the outcome of resolving one conflict. Log carries a
// ready-to-persist record for user awareness.
type Result struct {
	Winner     models.Syncable
	Loser      models.Syncable
	Resolution Resolution
	Log        *models.ConflictLog
}

// Resolve picks a winner by modification timestamp. The local copy wins
// only when it is strictly newer; on a tie the remote copy wins, so that
// every device converges on the same version regardless of which side
// runs the comparison.
func (r *Resolver) Resolve(c *Conflict) (*Result, error) {
	if c.Local == nil || c.Remote == nil {
		return nil, apperrors.New(apperrors.ErrSyncConflict, "conflict requires both local and remote copies")
	}

	localTS := c.Local.Modified()
	remoteTS := c.Remote.Modified()

	result := &Result{
		Log: &models.ConflictLog{
			EntityType:      c.EntityType,
			EntityID:        c.EntityID,
			LocalTimestamp:  localTS,
			RemoteTimestamp: remoteTS,
		},
	}

	if localTS > remoteTS {
		result.Winner = c.Local
		result.Loser = c.Remote
		result.Resolution = ResolutionLocalWins
	} else {
		result.Winner = c.Remote
		result.Loser = c.Local
		result.Resolution = ResolutionRemoteWins
	}
	result.Log.Resolution = string(result.Resolution)

	r.log.WithFields(logrus.Fields{
		"entity_type":      c.EntityType,
		"entity_id":        c.EntityID,
		"local_timestamp":  localTS,
		"remote_timestamp": remoteTS,
		"resolution":       result.Resolution,
	}).Info("conflict resolved")

	return result, nil
}

// ResolveMany resolves a batch of conflicts, stopping at the first error.
func (r *Resolver) ResolveMany(conflicts []*Conflict) ([]*Result, error) {
	results := make([]*Result, 0, len(conflicts))
	for _, c := range conflicts {
		result, err := r.Resolve(c)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
