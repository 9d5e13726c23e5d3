package callerRepo

import (
	"context"
	"sync"
	"time"

	"receptionist/models"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository used in tests.
type MemoryRepo struct {
	mu      sync.Mutex
	byPhone map[string]*models.Caller
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byPhone: make(map[string]*models.Caller)}
}

func (r *MemoryRepo) GetOrCreate(ctx context.Context, phone string) (*models.Caller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c, ok := r.byPhone[phone]
	if !ok {
		c = &models.Caller{
			ID:          uuid.New().String(),
			PhoneNumber: phone,
			CreatedAt:   now,
		}
		r.byPhone[phone] = c
	}
	c.TotalCalls++
	c.LastCallAt = now
	out := *c
	return &out, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phone string) (*models.Caller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byPhone[phone]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *MemoryRepo) UpdateName(ctx context.Context, phone, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byPhone[phone]; ok {
		c.Name = name
	}
	return nil
}
