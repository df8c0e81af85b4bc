package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// PostJobRepositoryMSSQL implements the post job store for SQL Server/Azure SQL.
type PostJobRepositoryMSSQL struct{ db *sql.DB }

func NewPostJobRepositoryMSSQL(db *sql.DB) *PostJobRepositoryMSSQL {
	return &PostJobRepositoryMSSQL{db: db}
}

// DB exposes the underlying *sql.DB
func (r *PostJobRepositoryMSSQL) DB() *sql.DB { return r.db }

const postJobColumnsMSSQL = `id, draft_id, brand_id, channel, status, scheduled_at, target_month, attempt, error, external_post_id, external_url, last_attempt_at, created_at, updated_at`

func (r *PostJobRepositoryMSSQL) CreateJobsForDraft(ctx context.Context, draft *model.Draft, channels []model.Channel, scheduledAt time.Time) ([]*model.PostJob, error) {
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
		q := `MERGE dbo.[post_jobs] AS target
USING (VALUES (@p1, @p2)) AS src(draft_id, channel)
ON target.draft_id = src.draft_id AND target.channel = src.channel
WHEN MATCHED THEN UPDATE SET
  status = CASE WHEN target.status IN ('success','published') THEN target.status ELSE 'pending' END,
  scheduled_at = @p4,
  target_month = @p5,
  updated_at = @p6
WHEN NOT MATCHED THEN
  INSERT (draft_id, brand_id, channel, status, scheduled_at, target_month, attempt, created_at, updated_at)
  VALUES (src.draft_id, @p3, src.channel, 'pending', @p4, @p5, 0, @p6, @p6);`
		if _, err = tx.ExecContext(ctx, q, draft.ID, string(ch), draft.BrandID, scheduledAt.UTC(), targetMonth, now); err != nil {
			return nil, err
		}
		row := tx.QueryRowContext(ctx, `SELECT TOP (1) `+postJobColumnsMSSQL+` FROM dbo.[post_jobs] WHERE draft_id=@p1 AND channel=@p2`, draft.ID, string(ch))
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

func (r *PostJobRepositoryMSSQL) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p2) j.id, j.draft_id, j.brand_id, j.channel, j.status, j.scheduled_at, j.target_month, j.attempt, j.error, j.external_post_id, j.external_url, j.last_attempt_at, j.created_at, j.updated_at
FROM dbo.[post_jobs] j
JOIN dbo.[drafts] d ON d.id = j.draft_id
WHERE j.status IN ('pending','ready') AND j.scheduled_at <= @p1 AND d.approved = 1
ORDER BY j.scheduled_at ASC, j.id ASC`, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepositoryMSSQL) ListByDraft(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postJobColumnsMSSQL+` FROM dbo.[post_jobs] WHERE draft_id=@p1 ORDER BY id ASC`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepositoryMSSQL) ListFailed(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postJobColumnsMSSQL+` FROM dbo.[post_jobs] WHERE draft_id=@p1 AND status='failed' ORDER BY id ASC`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostJobs(rows)
}

func (r *PostJobRepositoryMSSQL) GetByID(ctx context.Context, jobID int64) (*model.PostJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postJobColumnsMSSQL+` FROM dbo.[post_jobs] WHERE id=@p1`, jobID)
	return scanPostJob(row)
}

func (r *PostJobRepositoryMSSQL) MarkPublishing(ctx context.Context, jobID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE dbo.[post_jobs] SET status='publishing', updated_at=@p1 WHERE id=@p2 AND status IN ('pending','ready','queued','failed')`, time.Now().UTC(), jobID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostJobRepositoryMSSQL) MarkResult(ctx context.Context, jobID int64, outcome model.JobOutcome) error {
	status := model.JobStatusFailed
	if outcome.Success {
		status = model.JobStatusSuccess
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[post_jobs] SET status=@p1, error=@p2, external_post_id=@p3, external_url=@p4, attempt=attempt+1, last_attempt_at=@p5, updated_at=@p5 WHERE id=@p6`,
		status, outcome.Error, outcome.ExternalPostID, outcome.ExternalURL, now, jobID)
	return err
}
