package persistence

import (
	"database/sql"
	"fmt"

	"social-calendar/infrastructure/logger"
)

// EnsurePublisherSchema creates the draft, post job and publish record tables
// if missing. Safe to call at startup.
func EnsurePublisherSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
        id BIGSERIAL PRIMARY KEY,
        brand_id BIGINT NOT NULL,
        status TEXT NOT NULL DEFAULT 'draft',
        approved BOOLEAN NOT NULL DEFAULT FALSE,
        scheduled_for TIMESTAMPTZ,
        copy TEXT NOT NULL DEFAULT '',
        hashtags TEXT NOT NULL DEFAULT '',
        asset_ids TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
		`CREATE TABLE IF NOT EXISTS post_jobs (
        id BIGSERIAL PRIMARY KEY,
        draft_id BIGINT NOT NULL,
        brand_id BIGINT NOT NULL,
        channel TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'pending',
        scheduled_at TIMESTAMPTZ NOT NULL,
        target_month TEXT NOT NULL DEFAULT '',
        attempt INT NOT NULL DEFAULT 0,
        error TEXT,
        external_post_id TEXT,
        external_url TEXT,
        last_attempt_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (draft_id, channel)
    )`,
		`CREATE TABLE IF NOT EXISTS publish_records (
        id BIGSERIAL PRIMARY KEY,
        draft_id BIGINT NOT NULL,
        post_job_id BIGINT NOT NULL,
        channel TEXT NOT NULL,
        social_account_id BIGINT,
        status TEXT NOT NULL,
        external_post_id TEXT,
        external_url TEXT,
        error TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	}
	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("ensure publisher schema: %w", err)
		}
	}

	// The runner's only read path filters on status + scheduled_at.
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_post_jobs_due ON post_jobs(status, scheduled_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_post_jobs_due")
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_publish_records_job ON publish_records(post_job_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_publish_records_job")
	}
	return nil
}
