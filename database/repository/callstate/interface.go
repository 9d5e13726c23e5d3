package callstate

import (
	"context"

	"receptionist/models"
)

// Store holds the per-call conversation context for in-progress calls.
// Keys are call identifiers; distinct calls never share a key and one call's
// turns are strictly sequential, so implementations need no per-key locking
// beyond their own internal consistency.
type Store interface {
	// Get returns the context for a call, or (nil, nil) when none exists.
	Get(ctx context.Context, callID string) (*models.CallContext, error)
	// Put upserts the context. The original creation timestamp is preserved
	// across repeated puts for the same call.
	Put(ctx context.Context, callCtx *models.CallContext) error
	// Delete removes the context. Deleting an absent key is not an error.
	Delete(ctx context.Context, callID string) error
}
