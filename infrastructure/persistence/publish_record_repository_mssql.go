package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// PublishRecordRepositoryMSSQL is the SQL Server/Azure SQL variant of the
// dispatch ledger.
type PublishRecordRepositoryMSSQL struct{ db *sql.DB }

func NewPublishRecordRepositoryMSSQL(db *sql.DB) *PublishRecordRepositoryMSSQL {
	return &PublishRecordRepositoryMSSQL{db: db}
}

func (r *PublishRecordRepositoryMSSQL) Create(ctx context.Context, rec *model.PublishRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO dbo.[publish_records] (draft_id, post_job_id, channel, social_account_id, status, external_post_id, external_url, error, created_at)
        OUTPUT INSERTED.id
        VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9)`,
		rec.DraftID, rec.PostJobID, string(rec.Channel), rec.SocialAccountID, rec.Status, rec.ExternalPostID, rec.ExternalURL, rec.Error, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

func (r *PublishRecordRepositoryMSSQL) Complete(ctx context.Context, id int64, status string, externalPostID, externalURL, errMsg *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[publish_records] SET status=@p1, external_post_id=@p2, external_url=@p3, error=@p4 WHERE id=@p5 AND status='queued'`,
		status, externalPostID, externalURL, errMsg, id)
	return err
}

func (r *PublishRecordRepositoryMSSQL) ListByJob(ctx context.Context, postJobID int64) ([]*model.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, draft_id, post_job_id, channel, social_account_id, status, external_post_id, external_url, error, created_at FROM dbo.[publish_records] WHERE post_job_id=@p1 ORDER BY id ASC`, postJobID)
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
