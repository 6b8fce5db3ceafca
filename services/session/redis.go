// File: services/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"phonedesk/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "call:session:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func decode(data []byte) (*models.CallSession, error) {
	var s models.CallSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.RetryCounts == nil {
		s.RetryCounts = map[string]int{}
	}
	return &s, nil
}

func (r *RedisStore) Get(ctx context.Context, callID string) (*models.CallSession, error) {
	data, err := r.client.Get(ctx, sessionPrefix+callID).Bytes()
	if err == redis.Nil {
		return models.NewCallSession(callID, r.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", callID, err)
	}
	return decode(data)
}

// Save uses WATCH/MULTI so two processes cannot both write from the same version.
func (r *RedisStore) Save(ctx context.Context, s *models.CallSession) error {
	key := sessionPrefix + s.CallID
	next := *s
	stamp(&next, r.now())
	payload, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		var stored int64
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			cur, err := decode(data)
			if err != nil {
				return err
			}
			stored = cur.Version
		}
		if stored != s.Version {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == redis.TxFailedErr:
		return ErrVersionConflict
	case err != nil:
		return err
	}
	*s = next
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, callID string) error {
	return r.client.Del(ctx, sessionPrefix+callID).Err()
}
