package model

import "time"

// Post job statuses. A job is "live" (non-terminal) in pending/ready/queued/
// publishing; success, published and failed are terminal for a sweep.
const (
	JobStatusPending    = "pending"
	JobStatusReady      = "ready"
	JobStatusQueued     = "queued"
	JobStatusPublishing = "publishing"
	JobStatusSuccess    = "success"
	JobStatusFailed     = "failed"
	JobStatusPublished  = "published"
)

// Dispatcher error codes recorded on a job when no platform call is made.
const (
	ErrNoConnectedAccount = "no_connected_account"
	ErrTokenExpired       = "token_expired"
	ErrUnsupportedChannel = "unsupported_channel"
	ErrTokenUnsealFailed  = "token_unseal_failed"
)

// PostJob is the atomic retryable unit: one (draft, channel) publish lineage.
// Retry mutates the same row; attempt/last_attempt_at carry the history.
type PostJob struct {
	ID             int64      `json:"id"`
	DraftID        int64      `json:"draft_id"`
	BrandID        int64      `json:"brand_id"`
	Channel        Channel    `json:"channel"`
	Status         string     `json:"status"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	TargetMonth    string     `json:"target_month"` // YYYY-MM
	Attempt        int        `json:"attempt"`
	Error          *string    `json:"error,omitempty"`
	ExternalPostID *string    `json:"external_post_id,omitempty"`
	ExternalURL    *string    `json:"external_url,omitempty"`
	LastAttemptAt  *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Succeeded reports whether the job reached a successful terminal state.
func (j *PostJob) Succeeded() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusPublished
}

// JobOutcome is what the dispatcher persists after one attempt.
type JobOutcome struct {
	Success        bool
	Error          *string
	ExternalPostID *string
	ExternalURL    *string
}
