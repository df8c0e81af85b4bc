package persistence

import (
	"database/sql"
	"fmt"

	"social-calendar/infrastructure/logger"
)

// EnsureSocialSchema creates the social account and brand membership tables
// if missing. Safe to call at startup.
func EnsureSocialSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS brands (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'active',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
		`CREATE TABLE IF NOT EXISTS brand_members (
        id BIGSERIAL PRIMARY KEY,
        brand_id BIGINT NOT NULL,
        user_id INT NOT NULL,
        role TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'active',
        UNIQUE (brand_id, user_id)
    )`,
		`CREATE TABLE IF NOT EXISTS social_accounts (
        id BIGSERIAL PRIMARY KEY,
        brand_id BIGINT NOT NULL,
        provider TEXT NOT NULL,
        external_account_id TEXT NOT NULL DEFAULT '',
        handle TEXT NOT NULL DEFAULT '',
        access_token_enc TEXT NOT NULL,
        refresh_token_enc TEXT,
        token_expires_at TIMESTAMPTZ,
        status TEXT NOT NULL DEFAULT 'connected',
        last_refreshed_at TIMESTAMPTZ,
        metadata JSONB,
        connected_by_user_id TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (brand_id, provider, external_account_id)
    )`,
	}
	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("ensure social schema: %w", err)
		}
	}

	// Expiry sweep scans by expiry window; keep that path indexed.
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_social_accounts_expires_at ON social_accounts(token_expires_at) WHERE token_expires_at IS NOT NULL`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_social_accounts_expires_at")
	}
	return nil
}
