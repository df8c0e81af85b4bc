package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// SocialAccountRepository implements the social account store on PostgreSQL.
type SocialAccountRepository struct{ db *sql.DB }

func NewSocialAccountRepository(db *sql.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

const socialAccountColumns = `id, brand_id, provider, external_account_id, handle, access_token_enc, refresh_token_enc, token_expires_at, status, last_refreshed_at, metadata, connected_by_user_id, created_at, updated_at`

func scanSocialAccount(row interface{ Scan(...interface{}) error }) (*model.SocialAccount, error) {
	a := &model.SocialAccount{}
	var refreshEnc sql.NullString
	var expiresAt, lastRefreshed sql.NullTime
	var metadata []byte
	if err := row.Scan(&a.ID, &a.BrandID, &a.Provider, &a.ExternalAccountID, &a.Handle, &a.AccessTokenEnc, &refreshEnc, &expiresAt, &a.Status, &lastRefreshed, &metadata, &a.ConnectedByUserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if refreshEnc.Valid {
		a.RefreshTokenEnc = &refreshEnc.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		a.TokenExpiresAt = &t
	}
	if lastRefreshed.Valid {
		t := lastRefreshed.Time
		a.LastRefreshedAt = &t
	}
	a.Metadata = metadata
	return a, nil
}

// Upsert replaces the prior connection for the same (brand, provider,
// external account), as happens when a user reconnects after expiry.
func (r *SocialAccountRepository) Upsert(ctx context.Context, a *model.SocialAccount) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	q := `INSERT INTO social_accounts (brand_id, provider, external_account_id, handle, access_token_enc, refresh_token_enc, token_expires_at, status, last_refreshed_at, metadata, connected_by_user_id, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
          ON CONFLICT (brand_id, provider, external_account_id) DO UPDATE SET
            handle=EXCLUDED.handle,
            access_token_enc=EXCLUDED.access_token_enc,
            refresh_token_enc=EXCLUDED.refresh_token_enc,
            token_expires_at=EXCLUDED.token_expires_at,
            status=EXCLUDED.status,
            last_refreshed_at=EXCLUDED.last_refreshed_at,
            metadata=EXCLUDED.metadata,
            connected_by_user_id=EXCLUDED.connected_by_user_id,
            updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, a.BrandID, string(a.Provider), a.ExternalAccountID, a.Handle, a.AccessTokenEnc, a.RefreshTokenEnc, a.TokenExpiresAt, a.Status, a.LastRefreshedAt, a.Metadata, a.ConnectedByUserID, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *SocialAccountRepository) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+socialAccountColumns+` FROM social_accounts WHERE id=$1`, id)
	return scanSocialAccount(row)
}

// ListConnectedByBrand keys connected accounts by provider. Ordering by id
// makes the pick deterministic when a provider has multiple surfaces.
func (r *SocialAccountRepository) ListConnectedByBrand(ctx context.Context, brandID int64) (map[model.Provider]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+socialAccountColumns+` FROM social_accounts WHERE brand_id=$1 AND status='connected' ORDER BY id ASC`, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.Provider]*model.SocialAccount{}
	for rows.Next() {
		a, err := scanSocialAccount(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := out[a.Provider]; !ok {
			out[a.Provider] = a
		}
	}
	return out, rows.Err()
}

func (r *SocialAccountRepository) ListByBrand(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error) {
	q := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE brand_id=$1 ORDER BY id ASC`
	args := []interface{}{brandID}
	if provider != nil {
		q = `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE brand_id=$1 AND provider=$2 ORDER BY id ASC`
		args = append(args, string(*provider))
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialAccount
	for rows.Next() {
		a, err := scanSocialAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListExpiringSoon feeds the daily expiry sweep: connected accounts on
// active brands whose token expires before the deadline.
func (r *SocialAccountRepository) ListExpiringSoon(ctx context.Context, deadline time.Time) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, a.brand_id, a.provider, a.external_account_id, a.handle, a.access_token_enc, a.refresh_token_enc, a.token_expires_at, a.status, a.last_refreshed_at, a.metadata, a.connected_by_user_id, a.created_at, a.updated_at
        FROM social_accounts a
        JOIN brands b ON b.id = a.brand_id
        WHERE a.status='connected' AND b.status='active' AND a.token_expires_at IS NOT NULL AND a.token_expires_at <= $1
        ORDER BY a.token_expires_at ASC`, deadline.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialAccount
	for rows.Next() {
		a, err := scanSocialAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *SocialAccountRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), id)
	return err
}

func (r *SocialAccountRepository) UpdateTokens(ctx context.Context, id int64, accessTokenEnc string, refreshTokenEnc *string, expiresAt *time.Time) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET access_token_enc=$1, refresh_token_enc=COALESCE($2, refresh_token_enc), token_expires_at=$3, last_refreshed_at=$4, status='connected', updated_at=$4 WHERE id=$5`,
		accessTokenEnc, refreshTokenEnc, expiresAt, now, id)
	return err
}

func (r *SocialAccountRepository) UpdateMetadata(ctx context.Context, id int64, metadata []byte) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET metadata=$1, updated_at=$2 WHERE id=$3`, metadata, time.Now().UTC(), id)
	return err
}
