package wizard

import (
	"context"
	"sync"
)

// MemoryDraftStore is a mutex-guarded DraftStore for tests and local runs
// without Redis.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]State
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]State)}
}

func (m *MemoryDraftStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[s.SessionID] = s
	return nil
}

func (m *MemoryDraftStore) Get(ctx context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.drafts[sessionID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return &s, nil
}

func (m *MemoryDraftStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
	return nil
}
