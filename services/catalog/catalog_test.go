package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	catalogRepo "phonedesk/database/repository/catalog"
	"phonedesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	business models.Business
	entries  []models.CatalogEntry
	loads    atomic.Int32
	fail     atomic.Bool
}

func (f *fakeRepo) GetBusinessByID(ctx context.Context, id string) (*models.Business, error) {
	if f.fail.Load() {
		return nil, errors.New("mongo down")
	}
	if id != f.business.ID {
		return nil, catalogRepo.ErrBusinessNotFound
	}
	b := f.business
	return &b, nil
}

func (f *fakeRepo) GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	if phone != f.business.PhoneNumber {
		return nil, catalogRepo.ErrBusinessNotFound
	}
	b := f.business
	return &b, nil
}

func (f *fakeRepo) ListEntries(ctx context.Context, id string) ([]models.CatalogEntry, error) {
	f.loads.Add(1)
	return f.entries, nil
}

func (f *fakeRepo) EnsureIndexes(ctx context.Context) error { return nil }

type staticSynonyms map[string][]string

func (s staticSynonyms) Synonyms() map[string][]string { return s }

func snackbar() []models.CatalogEntry {
	return []models.CatalogEntry{
		{ID: "friet", Name: "Friet", Price: 2.75, Available: true},
		{ID: "grote-friet", Name: "Grote friet", Price: 3.50, Available: true, Synonyms: []string{"grote patat"}},
		{ID: "cola", Name: "Cola", Price: 2.20, Available: true},
		{ID: "mayo", Name: "Mayonaise", Price: 0.50, IsModifier: true, Available: true},
		{ID: "curry", Name: "Curry", Price: 0.50, IsModifier: true, Available: true},
	}
}

func TestResolveProduct(t *testing.T) {
	snap := NewSnapshot(models.Business{ID: "b"}, snackbar(), map[string][]string{"friet": {"patat"}}, time.Now())

	cases := []struct {
		name   string
		wantID string
		kind   MatchKind
	}{
		{"grote friet", "grote-friet", MatchExact},
		{"Grote Friet", "grote-friet", MatchExact},
		{"grote patat", "grote-friet", MatchSynonym},
		{"patat", "friet", MatchSynonym},
		{"een grote friet graag", "grote-friet", MatchSubstring},
		{"cola", "cola", MatchExact},
		{"cola zero", "cola", MatchSubstring},
		{"pizza", "", MatchNone},
		{"", "", MatchNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, kind := snap.ResolveProduct(tc.name)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.wantID, e.ID)
		})
	}
}

func TestPunctuatedNamesResolve(t *testing.T) {
	snap := NewSnapshot(models.Business{ID: "b"}, []models.CatalogEntry{
		{ID: "coke", Name: "Coca-Cola", Available: true},
		{ID: "fish", Name: "Fish & Chips", Available: true},
	}, map[string][]string{"coca cola": {"coke"}}, time.Now())

	for name, want := range map[string]MatchKind{
		"Coca-Cola":      MatchExact,
		"coca cola":      MatchExact,
		"coke":           MatchSynonym,
		"fish & chips":   MatchExact,
		"fish and chips": MatchExact,
		"fish en chips":  MatchExact,
	} {
		e, kind := snap.ResolveProduct(name)
		assert.Equal(t, want, kind, name)
		assert.NotEmpty(t, e.ID, name)
	}
}

func TestResolveModifierIgnoresProducts(t *testing.T) {
	snap := NewSnapshot(models.Business{ID: "b"}, snackbar(), nil, time.Now())

	e, kind := snap.ResolveModifier("mayonaise")
	assert.Equal(t, MatchExact, kind)
	assert.Equal(t, "mayo", e.ID)

	_, kind = snap.ResolveModifier("cola")
	assert.Equal(t, MatchNone, kind)
}

func TestTermsLongestFirst(t *testing.T) {
	snap := NewSnapshot(models.Business{ID: "b"}, snackbar(), nil, time.Now())
	terms := snap.ProductTerms()
	require.NotEmpty(t, terms)
	for i := 1; i < len(terms); i++ {
		assert.GreaterOrEqual(t, len([]rune(terms[i-1].Text)), len([]rune(terms[i].Text)))
	}
}

func TestProviderCachesUntilTTL(t *testing.T) {
	repo := &fakeRepo{business: models.Business{ID: "b", PhoneNumber: "+3120"}, entries: snackbar()}
	p := NewProvider(repo, staticSynonyms{"cola": {"coke"}}, time.Minute, nil)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	s1, err := p.Snapshot(ctx, "b")
	require.NoError(t, err)
	s2, err := p.Snapshot(ctx, "b")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, int32(1), repo.loads.Load())

	e, kind := s1.ResolveProduct("coke")
	assert.Equal(t, MatchSynonym, kind)
	assert.Equal(t, "cola", e.ID)

	now = now.Add(2 * time.Minute)
	s3, err := p.Snapshot(ctx, "b")
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, int32(2), repo.loads.Load())
}

func TestProviderServesStaleOnFailure(t *testing.T) {
	repo := &fakeRepo{business: models.Business{ID: "b"}, entries: snackbar()}
	p := NewProvider(repo, nil, time.Minute, nil)
	now := time.Now()
	p.now = func() time.Time { return now }

	first, err := p.Snapshot(context.Background(), "b")
	require.NoError(t, err)

	repo.fail.Store(true)
	now = now.Add(time.Hour)
	stale, err := p.Snapshot(context.Background(), "b")
	require.NoError(t, err)
	assert.Same(t, first, stale)

	_, err = p.Snapshot(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestBusinessByPhone(t *testing.T) {
	repo := &fakeRepo{business: models.Business{ID: "b", PhoneNumber: "+31201234567"}}
	p := NewProvider(repo, nil, time.Minute, nil)

	b, err := p.BusinessByPhone(context.Background(), "+31201234567")
	require.NoError(t, err)
	assert.Equal(t, "b", b.ID)

	_, err = p.BusinessByPhone(context.Background(), "+1")
	assert.ErrorIs(t, err, catalogRepo.ErrBusinessNotFound)
}
