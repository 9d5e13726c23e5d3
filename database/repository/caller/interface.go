package callerRepo

import (
	"context"

	"receptionist/models"
)

// Repository defines methods for caller record data access.
type Repository interface {
	// GetOrCreate fetches the caller record for a phone number, creating it
	// on first contact. Each invocation counts as one call: the caller's
	// total_calls counter is incremented.
	GetOrCreate(ctx context.Context, phone string) (*models.Caller, error)
	// GetByPhone retrieves a caller without touching counters; returns
	// (nil, nil) when the number is unknown.
	GetByPhone(ctx context.Context, phone string) (*models.Caller, error)
	// UpdateName sets the caller's name once the conversation reveals it.
	UpdateName(ctx context.Context, phone, name string) error
}
