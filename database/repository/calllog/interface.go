package calllogRepo

import (
	"context"

	"receptionist/models"
)

// Repository defines methods for call log data access.
type Repository interface {
	// Start records the beginning of a call. Idempotent on call SID.
	Start(ctx context.Context, callSID, callerPhone string) error
	// SetStatus updates a call's status; terminal statuses also stamp the
	// end time.
	SetStatus(ctx context.Context, callSID, status string) error
	// IncrementTurns counts one completed conversation turn.
	IncrementTurns(ctx context.Context, callSID string) error
	// GetRecent retrieves the most recent call logs up to limit.
	GetRecent(ctx context.Context, limit int64) ([]models.CallLog, error)
}
