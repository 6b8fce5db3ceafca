package session

import (
	"context"
	"testing"

	"phonedesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, models.StateGreeting, s.State)
	assert.Zero(t, s.Version)

	s.BusinessID = "snack"
	s.State = models.CollectState("items")
	s.Slots.Name = "Jan"
	s.RetryCounts["items"] = 1
	require.NoError(t, store.Save(ctx, s))
	assert.EqualValues(t, 1, s.Version)

	got, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, s.State, got.State)
	assert.Equal(t, "Jan", got.Slots.Name)
	assert.Equal(t, 1, got.RetryCounts["items"])
	assert.EqualValues(t, 1, got.Version)

	// mutating the copy does not touch the store
	got.Slots.Name = "Piet"
	again, _ := store.Get(ctx, "CA1")
	assert.Equal(t, "Jan", again.Slots.Name)

	require.NoError(t, store.Delete(ctx, "CA1"))
	fresh, _ := store.Get(ctx, "CA1")
	assert.Zero(t, fresh.Version)
	assert.Empty(t, fresh.Slots.Name)
}

func TestMemoryStoreRejectsStaleWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, _ := store.Get(ctx, "CA2")
	b, _ := store.Get(ctx, "CA2")

	a.State = models.CollectState("date")
	require.NoError(t, store.Save(ctx, a))

	b.State = models.CollectState("time")
	err := store.Save(ctx, b)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Zero(t, b.Version, "a rejected session is left untouched")

	cur, _ := store.Get(ctx, "CA2")
	assert.Equal(t, models.CollectState("date"), cur.State)

	// a save from a deleted session's old version is refused too
	require.NoError(t, store.Delete(ctx, "CA2"))
	assert.ErrorIs(t, store.Save(ctx, a), ErrVersionConflict)
}
