package model

import "time"

// Publish record statuses.
const (
	RecordStatusQueued  = "queued"
	RecordStatusSuccess = "success"
	RecordStatusFailed  = "failed"
)

// PublishRecord is the append-only audit row for one dispatch attempt,
// distinct from the mutable PostJob pointer-state. Rows are never updated
// after the attempt that created them completes.
type PublishRecord struct {
	ID              int64     `json:"id"`
	DraftID         int64     `json:"draft_id"`
	PostJobID       int64     `json:"post_job_id"`
	Channel         Channel   `json:"channel"`
	SocialAccountID *int64    `json:"social_account_id,omitempty"`
	Status          string    `json:"status"`
	ExternalPostID  *string   `json:"external_post_id,omitempty"`
	ExternalURL     *string   `json:"external_url,omitempty"`
	Error           *string   `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
