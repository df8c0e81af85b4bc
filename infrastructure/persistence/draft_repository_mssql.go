package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"social-calendar/domain/model"
)

// DraftRepositoryMSSQL is the SQL Server/Azure SQL variant of the draft store.
type DraftRepositoryMSSQL struct{ db *sql.DB }

func NewDraftRepositoryMSSQL(db *sql.DB) *DraftRepositoryMSSQL {
	return &DraftRepositoryMSSQL{db: db}
}

func (r *DraftRepositoryMSSQL) GetByID(ctx context.Context, draftID int64) (*model.Draft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, brand_id, status, approved, scheduled_for, copy, hashtags, asset_ids, created_at, updated_at FROM dbo.[drafts] WHERE id=@p1`, draftID)
	d := &model.Draft{}
	var scheduledFor sql.NullTime
	var assetIDs string
	if err := row.Scan(&d.ID, &d.BrandID, &d.Status, &d.Approved, &scheduledFor, &d.Copy, &d.Hashtags, &assetIDs, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if scheduledFor.Valid {
		t := scheduledFor.Time
		d.ScheduledFor = &t
	}
	if assetIDs != "" {
		d.AssetIDs = strings.Split(assetIDs, ",")
	}
	return d, nil
}

func (r *DraftRepositoryMSSQL) UpdateStatus(ctx context.Context, draftID int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[drafts] SET status=@p1, updated_at=@p2 WHERE id=@p3`, status, time.Now().UTC(), draftID)
	return err
}
