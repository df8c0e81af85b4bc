package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"social-calendar/domain/model"
)

// DraftRepository exposes the publishing pipeline's slice of the draft store.
type DraftRepository struct{ db *sql.DB }

func NewDraftRepository(db *sql.DB) *DraftRepository { return &DraftRepository{db: db} }

func (r *DraftRepository) GetByID(ctx context.Context, draftID int64) (*model.Draft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, brand_id, status, approved, scheduled_for, copy, hashtags, asset_ids, created_at, updated_at FROM drafts WHERE id=$1`, draftID)
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

func (r *DraftRepository) UpdateStatus(ctx context.Context, draftID int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE drafts SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), draftID)
	return err
}
