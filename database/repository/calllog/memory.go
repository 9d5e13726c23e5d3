package calllogRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"receptionist/models"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository used in tests.
type MemoryRepo struct {
	mu   sync.Mutex
	logs map[string]*models.CallLog
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{logs: make(map[string]*models.CallLog)}
}

func (r *MemoryRepo) Start(ctx context.Context, callSID, callerPhone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[callSID]; ok {
		return nil
	}
	r.logs[callSID] = &models.CallLog{
		ID:          uuid.New().String(),
		CallSID:     callSID,
		CallerPhone: callerPhone,
		Status:      models.CallInProgress,
		StartedAt:   time.Now(),
	}
	return nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, callSID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[callSID]; ok {
		l.Status = status
		switch status {
		case models.CallCompleted, models.CallFailed, models.CallNoAnswer:
			l.EndedAt = time.Now()
		}
	}
	return nil
}

func (r *MemoryRepo) IncrementTurns(ctx context.Context, callSID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[callSID]; ok {
		l.Turns++
	}
	return nil
}

func (r *MemoryRepo) GetRecent(ctx context.Context, limit int64) ([]models.CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CallLog, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
