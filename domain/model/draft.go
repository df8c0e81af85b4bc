package model

import "time"

// Draft statuses. "draft" is the protected pre-approval state and is never
// set by the pipeline; all other values are derived from the draft's jobs.
const (
	DraftStatusDraft              = "draft"
	DraftStatusScheduled          = "scheduled"
	DraftStatusPartiallyPublished = "partially_published"
	DraftStatusPublished          = "published"
	DraftStatusFailed             = "failed"
)

// Draft is one piece of approved content targeted at one or more channels.
type Draft struct {
	ID           int64      `json:"id"`
	BrandID      int64      `json:"brand_id"`
	Status       string     `json:"status"`
	Approved     bool       `json:"approved"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Channels     []Channel  `json:"channels"`
	Copy         string     `json:"copy"`
	Hashtags     string     `json:"hashtags"`
	AssetIDs     []string   `json:"asset_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
