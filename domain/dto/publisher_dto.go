package dto

// RunResult is the payload of one Runner sweep, consumed by external
// monitoring. Errors carries one entry per job that could not be processed.
type RunResult struct {
	Processed int      `json:"processed"`
	Published int      `json:"published"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// RetryJobOutcome is the per-job result of a Retry invocation.
type RetryJobOutcome struct {
	JobID   int64  `json:"job_id"`
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// RetryResult is returned by the Retry endpoint.
type RetryResult struct {
	Retried     int               `json:"retried"`
	DraftStatus string            `json:"draft_status"`
	Jobs        []RetryJobOutcome `json:"jobs"`
}

// ScheduleRequest creates post jobs for an approved draft.
type ScheduleRequest struct {
	Channels    []string `json:"channels" binding:"required"`
	ScheduledAt string   `json:"scheduled_at"` // RFC3339; empty means now
}
