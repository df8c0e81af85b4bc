package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// PostJobRepository implements the post job store on PostgreSQL.
type PostJobRepository struct{ db *sql.DB }

func NewPostJobRepository(db *sql.DB) *PostJobRepository { return &PostJobRepository{db: db} }

const postJobColumns = `id, draft_id, brand_id, channel, status, scheduled_at, target_month, attempt, error, external_post_id, external_url, last_attempt_at, created_at, updated_at`

func scanPostJob(row interface{ Scan(...interface{}) error }) (*model.PostJob, error) {
	j := &model.PostJob{}
	var errMsg, extID, extURL sql.NullString
	var lastAttempt sql.NullTime
	if err := row.Scan(&j.ID, &j.DraftID, &j.BrandID, &j.Channel, &j.Status, &j.ScheduledAt, &j.TargetMonth, &j.Attempt, &errMsg, &extID, &extURL, &lastAttempt, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		j.Error = &errMsg.String
	}
	if extID.Valid {
		j.ExternalPostID = &extID.String
	}
	if extURL.Valid {
		j.ExternalURL = &extURL.String
	}
	if lastAttempt.Valid {
		j.LastAttemptAt = &lastAttempt.Time
	}
	return j, nil
}

func (r *PostJobRepository) CreateJobsForDraft(ctx context.Context, draft *model.Draft, channels []model.Channel, scheduledAt time.Time) ([]*model.PostJob, error) {
	out := make([]*model.PostJob, 0, len(channels))
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	targetMonth := scheduledAt.UTC().Format("2006-01")
	for _, ch := range channels {
		// Rescheduling resets the existing (draft, channel) row back to
		// pending instead of inserting a duplicate, unless the channel
		// already published.
		q := `INSERT INTO post_jobs (draft_id, brand_id, channel, status, scheduled_at, target_month, attempt, created_at, updated_at)
              VALUES ($1,$2,$3,'pending',$4,$5,0,$6,$6)
              ON CONFLICT (draft_id, channel) DO UPDATE SET
                status = CASE WHEN post_jobs.status IN ('success','published') THEN post_jobs.status ELSE 'pending' END,
                scheduled_at = EXCLUDED.scheduled_at,
                target_month = EXCLUDED.target_month,
                updated_at = EXCLUDED.updated_at`
		if _, err = tx.ExecContext(ctx, q, draft.ID, draft.BrandID, string(ch), scheduledAt.UTC(), targetMonth, now); err != nil {
			return nil, err
		}
		row := tx.QueryRowContext(ctx, `SELECT `+postJobColumns+` FROM post_jobs WHERE draft_id=$1 AND channel=$2`, draft.ID, string(ch))
		var j *model.PostJob
		if j, err = scanPostJob(row); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDue is the only read path the runner sweep uses. The draft join keeps
// unapproved content out of the sweep regardless of job state.
func (r *PostJobRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT j.id, j.draft_id, j.brand_id, j.channel, j.status, j.scheduled_at, j.target_month, j.attempt, j.error, j.external_post_id, j.external_url, j.last_attempt_at, j.created_at, j.updated_at
        FROM post_jobs j
        JOIN drafts d ON d.id = j.draft_id
        WHERE j.status IN ('pending','ready') AND j.scheduled_at <= $1 AND d.approved = TRUE
        ORDER BY j.scheduled_at ASC, j.id ASC
        LIMIT $2`, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepository) ListByDraft(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postJobColumns+` FROM post_jobs WHERE draft_id=$1 ORDER BY id ASC`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepository) ListFailed(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postJobColumns+` FROM post_jobs WHERE draft_id=$1 AND status='failed' ORDER BY id ASC`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepository) GetByID(ctx context.Context, jobID int64) (*model.PostJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postJobColumns+` FROM post_jobs WHERE id=$1`, jobID)
	return scanPostJob(row)
}

// MarkPublishing claims the job. The status guard makes the claim atomic:
// zero rows affected means another invocation got there first.
func (r *PostJobRepository) MarkPublishing(ctx context.Context, jobID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE post_jobs SET status='publishing', updated_at=$1 WHERE id=$2 AND status IN ('pending','ready','queued','failed')`, time.Now().UTC(), jobID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostJobRepository) MarkResult(ctx context.Context, jobID int64, outcome model.JobOutcome) error {
	status := model.JobStatusFailed
	if outcome.Success {
		status = model.JobStatusSuccess
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `UPDATE post_jobs SET status=$1, error=$2, external_post_id=$3, external_url=$4, attempt=attempt+1, last_attempt_at=$5, updated_at=$5 WHERE id=$6`,
		status, outcome.Error, outcome.ExternalPostID, outcome.ExternalURL, now, jobID)
	return err
}

func collectPostJobs(rows *sql.Rows) ([]*model.PostJob, error) {
	var jobs []*model.PostJob
	for rows.Next() {
		j, err := scanPostJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
