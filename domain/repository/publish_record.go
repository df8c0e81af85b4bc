package repository

import (
	"context"

	"social-calendar/domain/model"
)

// IPublishRecord is the append-only dispatch ledger. Records are created
// before the platform call and completed right after it; prior rows are
// never edited.
type IPublishRecord interface {
	Create(ctx context.Context, rec *model.PublishRecord) (int64, error)
	Complete(ctx context.Context, id int64, status string, externalPostID, externalURL, errMsg *string) error
	ListByJob(ctx context.Context, postJobID int64) ([]*model.PublishRecord, error)
}

// IPublishRecordArchive mirrors completed records into cold storage. Archive
// is best effort and must never fail the dispatch that triggered it.
type IPublishRecordArchive interface {
	Archive(ctx context.Context, rec *model.PublishRecord)
	ListByDraft(ctx context.Context, draftID int64) ([]*model.PublishRecord, error)
}
