// File: services/speech/store.go
package speech

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const audioPrefix = "audio:"

// AudioStore is the shared cache tier behind the in-process LRU.
type AudioStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, audio []byte) error
}

type RedisAudioStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAudioStore keeps audio in Redis; a zero ttl keeps it forever.
func NewRedisAudioStore(client *redis.Client, ttl time.Duration) *RedisAudioStore {
	return &RedisAudioStore{client: client, ttl: ttl}
}

func (s *RedisAudioStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, audioPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisAudioStore) Set(ctx context.Context, key string, audio []byte) error {
	return s.client.Set(ctx, audioPrefix+key, audio, s.ttl).Err()
}

// MemoryAudioStore is an unbounded map, for tests and single-process runs.
type MemoryAudioStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryAudioStore() *MemoryAudioStore {
	return &MemoryAudioStore{data: map[string][]byte{}}
}

func (s *MemoryAudioStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	return b, ok, nil
}

func (s *MemoryAudioStore) Set(_ context.Context, key string, audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = audio
	return nil
}

// Len reports how many entries are stored.
func (s *MemoryAudioStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
