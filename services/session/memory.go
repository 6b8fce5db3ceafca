// File: services/session/memory.go
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"phonedesk/models"
)

// MemoryStore has RedisStore's semantics without Redis. Sessions are stored
// encoded so callers never share a pointer with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, callID string) (*models.CallSession, error) {
	m.mu.Lock()
	data, ok := m.data[callID]
	m.mu.Unlock()
	if !ok {
		return models.NewCallSession(callID, m.now()), nil
	}
	return decode(data)
}

func (m *MemoryStore) Save(_ context.Context, s *models.CallSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stored int64
	if data, ok := m.data[s.CallID]; ok {
		cur, err := decode(data)
		if err != nil {
			return err
		}
		stored = cur.Version
	}
	if stored != s.Version {
		return ErrVersionConflict
	}
	next := *s
	stamp(&next, m.now())
	payload, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	m.data[s.CallID] = payload
	*s = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, callID)
	return nil
}
