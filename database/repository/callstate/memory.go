package callstate

import (
	"context"
	"sync"
	"time"

	"receptionist/models"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]models.CallContext
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]models.CallContext)}
}

func (s *MemoryStore) Get(ctx context.Context, callID string) (*models.CallContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[callID]
	if !ok {
		return nil, nil
	}
	out := c
	return &out, nil
}

func (s *MemoryStore) Put(ctx context.Context, callCtx *models.CallContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[callCtx.CallID]; ok {
		callCtx.CreatedAt = existing.CreatedAt
	} else if callCtx.CreatedAt.IsZero() {
		callCtx.CreatedAt = time.Now()
	}
	callCtx.UpdatedAt = time.Now()
	s.data[callCtx.CallID] = *callCtx
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, callID)
	return nil
}
