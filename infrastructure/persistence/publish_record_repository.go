package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// PublishRecordRepository implements the append-only dispatch ledger.
// A record is inserted as queued before the platform call and completed with
// its outcome right after; rows from earlier attempts are never touched.
type PublishRecordRepository struct{ db *sql.DB }

func NewPublishRecordRepository(db *sql.DB) *PublishRecordRepository {
	return &PublishRecordRepository{db: db}
}

func (r *PublishRecordRepository) Create(ctx context.Context, rec *model.PublishRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO publish_records (draft_id, post_job_id, channel, social_account_id, status, external_post_id, external_url, error, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		rec.DraftID, rec.PostJobID, string(rec.Channel), rec.SocialAccountID, rec.Status, rec.ExternalPostID, rec.ExternalURL, rec.Error, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

func (r *PublishRecordRepository) Complete(ctx context.Context, id int64, status string, externalPostID, externalURL, errMsg *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE publish_records SET status=$1, external_post_id=$2, external_url=$3, error=$4 WHERE id=$5 AND status='queued'`,
		status, externalPostID, externalURL, errMsg, id)
	return err
}

func (r *PublishRecordRepository) ListByJob(ctx context.Context, postJobID int64) ([]*model.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, draft_id, post_job_id, channel, social_account_id, status, external_post_id, external_url, error, created_at FROM publish_records WHERE post_job_id=$1 ORDER BY id ASC`, postJobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PublishRecord
	for rows.Next() {
		rec := &model.PublishRecord{}
		var accountID sql.NullInt64
		var extID, extURL, errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.DraftID, &rec.PostJobID, &rec.Channel, &accountID, &rec.Status, &extID, &extURL, &errMsg, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if accountID.Valid {
			v := accountID.Int64
			rec.SocialAccountID = &v
		}
		if extID.Valid {
			rec.ExternalPostID = &extID.String
		}
		if extURL.Valid {
			rec.ExternalURL = &extURL.String
		}
		if errMsg.Valid {
			rec.Error = &errMsg.String
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
