package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	catalogRepo "phonedesk/database/repository/catalog"
	"phonedesk/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SynonymSource supplies dictionary synonyms merged into every snapshot.
type SynonymSource interface {
	Synonyms() map[string][]string
}

// Provider serves per-business catalog snapshots refreshed on a TTL.
type Provider struct {
	repo     catalogRepo.CatalogRepository
	synonyms SynonymSource
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.RWMutex
	snaps map[string]*Snapshot
	group singleflight.Group
}

// NewProvider builds a Provider. synonyms may be nil.
func NewProvider(repo catalogRepo.CatalogRepository, synonyms SynonymSource, ttl time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		repo:     repo,
		synonyms: synonyms,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		snaps:    make(map[string]*Snapshot),
	}
}

// Snapshot returns the cached snapshot for a business, reloading it when the
// TTL has passed. A failed reload falls back to the stale snapshot if one exists.
func (p *Provider) Snapshot(ctx context.Context, businessID string) (*Snapshot, error) {
	p.mu.RLock()
	snap, ok := p.snaps[businessID]
	p.mu.RUnlock()
	if ok && p.now().Sub(snap.LoadedAt) < p.ttl {
		return snap, nil
	}

	v, err, _ := p.group.Do(businessID, func() (interface{}, error) {
		return p.load(ctx, businessID)
	})
	if err != nil {
		if ok {
			p.logger.Warn("catalog refresh failed, serving stale snapshot",
				zap.String("businessID", businessID), zap.Error(err))
			return snap, nil
		}
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (p *Provider) load(ctx context.Context, businessID string) (*Snapshot, error) {
	b, err := p.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business %s: %w", businessID, err)
	}
	entries, err := p.repo.ListEntries(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", businessID, err)
	}
	var extra map[string][]string
	if p.synonyms != nil {
		extra = p.synonyms.Synonyms()
	}
	snap := NewSnapshot(*b, entries, extra, p.now())

	p.mu.Lock()
	p.snaps[businessID] = snap
	p.mu.Unlock()

	p.logger.Debug("catalog snapshot loaded",
		zap.String("businessID", businessID), zap.Int("entries", len(entries)))
	return snap, nil
}

// Invalidate drops every cached snapshot, e.g. after a dictionary reload.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.snaps = make(map[string]*Snapshot)
	p.mu.Unlock()
}

// BusinessByPhone resolves the business answering a dialed number.
func (p *Provider) BusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	return p.repo.GetBusinessByPhone(ctx, phone)
}
