package session

import (
	"context"
	"testing"
	"time"

	"phonedesk/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStore(t, 30*time.Minute)

	s, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, models.StateGreeting, s.State)
	assert.Zero(t, s.Version)
	assert.False(t, mr.Exists(sessionPrefix+"CA1"), "reading does not create the session")

	s.BusinessID = "snack"
	s.State = models.CollectState("items")
	s.Slots.Items = []models.OrderLine{{ItemID: "cola", Name: "Cola", Quantity: 2, UnitPrice: 2.25}}
	s.RetryCounts["items"] = 1
	require.NoError(t, store.Save(ctx, s))
	assert.EqualValues(t, 1, s.Version)
	assert.False(t, s.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, "snack", got.BusinessID)
	assert.Equal(t, models.CollectState("items"), got.State)
	assert.Equal(t, s.Slots.Items, got.Slots.Items)
	assert.Equal(t, 1, got.RetryCounts["items"])
	assert.EqualValues(t, 1, got.Version)

	require.NoError(t, store.Save(ctx, got))
	assert.EqualValues(t, 2, got.Version)

	require.NoError(t, store.Delete(ctx, "CA1"))
	fresh, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Zero(t, fresh.Version)
	assert.Empty(t, fresh.BusinessID)
}

func TestRedisStoreExpiresSessions(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStore(t, 10*time.Minute)

	s, _ := store.Get(ctx, "CA1")
	s.BusinessID = "snack"
	require.NoError(t, store.Save(ctx, s))
	assert.Equal(t, 10*time.Minute, mr.TTL(sessionPrefix+"CA1"))

	// every save renews the expiry
	mr.FastForward(6 * time.Minute)
	require.NoError(t, store.Save(ctx, s))
	assert.Equal(t, 10*time.Minute, mr.TTL(sessionPrefix+"CA1"))

	mr.FastForward(11 * time.Minute)
	fresh, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Zero(t, fresh.Version)
	assert.Equal(t, models.StateGreeting, fresh.State)
}

func TestRedisStoreRejectsStaleWrites(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newRedisStore(t, time.Hour)

	a, _ := store.Get(ctx, "CA2")
	b, _ := store.Get(ctx, "CA2")

	a.State = models.CollectState("date")
	require.NoError(t, store.Save(ctx, a))

	b.State = models.CollectState("time")
	assert.ErrorIs(t, store.Save(ctx, b), ErrVersionConflict)
	assert.Zero(t, b.Version, "a rejected session is left untouched")

	cur, err := store.Get(ctx, "CA2")
	require.NoError(t, err)
	assert.Equal(t, models.CollectState("date"), cur.State)

	require.NoError(t, store.Delete(ctx, "CA2"))
	assert.ErrorIs(t, store.Save(ctx, a), ErrVersionConflict)
}

// interleave writes the watched key from another connection just before the
// transaction is sent, as a second process would.
type interleave struct {
	other *redis.Client
	key   string
	armed bool
}

func (h *interleave) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (h *interleave) AfterProcess(ctx context.Context, cmd redis.Cmder) error { return nil }

func (h *interleave) BeforeProcessPipeline(ctx context.Context, cmds []redis.Cmder) (context.Context, error) {
	if !h.armed {
		return ctx, nil
	}
	h.armed = false
	return ctx, h.other.Set(ctx, h.key, `{"callId":"CA3","version":1}`, 0).Err()
}

func (h *interleave) AfterProcessPipeline(ctx context.Context, cmds []redis.Cmder) error { return nil }

func TestRedisStoreConflictBetweenWatchAndExec(t *testing.T) {
	ctx := context.Background()
	store, mr, client := newRedisStore(t, time.Hour)

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { other.Close() })
	hook := &interleave{other: other, key: sessionPrefix + "CA3", armed: true}
	client.AddHook(hook)

	s, _ := store.Get(ctx, "CA3")
	s.State = models.CollectState("items")
	assert.ErrorIs(t, store.Save(ctx, s), ErrVersionConflict)
	assert.False(t, hook.armed)
	assert.Zero(t, s.Version)

	cur, err := store.Get(ctx, "CA3")
	require.NoError(t, err)
	assert.EqualValues(t, 1, cur.Version, "the competing write wins")
	assert.NotEqual(t, models.CollectState("items"), cur.State)
}

func TestRedisStoreCorruptSession(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStore(t, time.Hour)

	require.NoError(t, mr.Set(sessionPrefix+"CA4", "{not json"))
	_, err := store.Get(ctx, "CA4")
	assert.Error(t, err)
}
