package repository

import (
	"context"
	"time"

	"social-calendar/domain/model"
)

// IPostJob defines the post job store. Jobs are the per-channel retryable
// publish units; the dispatcher is the only writer of job state.
type IPostJob interface {
	// CreateJobsForDraft inserts one job per channel, upserting on the
	// (draft, channel) uniqueness so rescheduling never duplicates rows.
	CreateJobsForDraft(ctx context.Context, draft *model.Draft, channels []model.Channel, scheduledAt time.Time) ([]*model.PostJob, error)
	// ListDue returns at most limit jobs in pending/ready whose scheduled_at
	// has passed and whose parent draft is approved. This is the only read
	// path the runner sweep uses.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*model.PostJob, error)
	ListByDraft(ctx context.Context, draftID int64) ([]*model.PostJob, error)
	ListFailed(ctx context.Context, draftID int64) ([]*model.PostJob, error)
	GetByID(ctx context.Context, jobID int64) (*model.PostJob, error)
	// MarkPublishing claims the job with a conditional update guarded by a
	// non-terminal status. It returns false when another invocation already
	// claimed the row.
	MarkPublishing(ctx context.Context, jobID int64) (bool, error)
	// MarkResult writes the full terminal state in one update and bumps the
	// attempt counter.
	MarkResult(ctx context.Context, jobID int64, outcome model.JobOutcome) error
}
