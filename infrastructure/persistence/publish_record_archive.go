package persistence

import (
	"context"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// PublishRecordArchive mirrors completed publish records into MongoDB for
// long-term evidence retention. The primary ledger stays in the relational
// store; the archive is best-effort and nil-safe.
type PublishRecordArchive struct {
	mongoDb *mongo.Client
}

func NewPublishRecordArchive(db *mongo.Client) *PublishRecordArchive {
	return &PublishRecordArchive{mongoDb: db}
}

// Archive stores one completed record. Failures are logged, never returned:
// losing an archive copy must not fail a dispatch.
func (a *PublishRecordArchive) Archive(ctx context.Context, rec *model.PublishRecord) {
	if a == nil || a.mongoDb == nil {
		return
	}
	collection := a.mongoDb.Database("social_calendar").Collection("publish_records")
	if _, err := collection.InsertOne(ctx, rec); err != nil {
		logger.GetLogger().WithField("error", err).WithField("post_job_id", rec.PostJobID).Warn("failed archiving publish record")
	}
}

// ListByDraft reads archived records for a draft, oldest first.
func (a *PublishRecordArchive) ListByDraft(ctx context.Context, draftID int64) ([]*model.PublishRecord, error) {
	if a == nil || a.mongoDb == nil {
		return nil, nil
	}
	collection := a.mongoDb.Database("social_calendar").Collection("publish_records")
	cursor, err := collection.Find(ctx, bson.D{{Key: "draftid", Value: draftID}})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()
	var records []*model.PublishRecord
	for cursor.Next(ctx) {
		var rec model.PublishRecord
		if err := cursor.Decode(&rec); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding")
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}
