package bulkupload

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Job, error)
	// Claim moves a queued job to processing and stamps claimed_at. It
	// returns ErrAlreadyClaimed when the job has left the queued state.
	Claim(ctx context.Context, id uuid.UUID) error
	// Finish records the outcome of a queued or processing job. A job that
	// already reached completed or failed gives ErrJobClosed.
	Finish(ctx context.Context, id uuid.UUID, res Result) error
	// FailStale marks processing jobs claimed before the cutoff as failed
	// and returns their ids.
	FailStale(ctx context.Context, claimedBefore time.Time) ([]uuid.UUID, error)
}
