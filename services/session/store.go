// File: services/session/store.go
package session

import (
	"context"
	"errors"
	"time"

	"phonedesk/models"
)

// ErrVersionConflict is returned when another writer saved the session first.
var ErrVersionConflict = errors.New("session was modified concurrently")

// Store is the single source of truth for live calls. A session that has
// never been saved comes back fresh with Version 0.
type Store interface {
	Get(ctx context.Context, callID string) (*models.CallSession, error)
	// Save writes s if the stored version still equals s.Version, then bumps it.
	Save(ctx context.Context, s *models.CallSession) error
	Delete(ctx context.Context, callID string) error
}

// stamp advances the version and timestamps before a write.
func stamp(s *models.CallSession, now time.Time) {
	s.Version++
	s.UpdatedAt = now
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.RetryCounts == nil {
		s.RetryCounts = map[string]int{}
	}
}
