package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-calendar/domain/model"
)

// SocialAccountRepositoryMSSQL implements the social account store for
// SQL Server/Azure SQL.
type SocialAccountRepositoryMSSQL struct{ db *sql.DB }

func NewSocialAccountRepositoryMSSQL(db *sql.DB) *SocialAccountRepositoryMSSQL {
	return &SocialAccountRepositoryMSSQL{db: db}
}

const socialAccountColumnsMSSQL = `id, brand_id, provider, external_account_id, handle, access_token_enc, refresh_token_enc, token_expires_at, status, last_refreshed_at, metadata, connected_by_user_id, created_at, updated_at`

func (r *SocialAccountRepositoryMSSQL) Upsert(ctx context.Context, a *model.SocialAccount) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	q := `MERGE dbo.[social_accounts] AS target
USING (VALUES (@p1, @p2, @p3)) AS src(brand_id, provider, external_account_id)
ON target.brand_id = src.brand_id AND target.provider = src.provider AND target.external_account_id = src.external_account_id
WHEN MATCHED THEN UPDATE SET
  handle = @p4, access_token_enc = @p5, refresh_token_enc = @p6, token_expires_at = @p7,
  status = @p8, last_refreshed_at = @p9, metadata = @p10, connected_by_user_id = @p11, updated_at = @p13
WHEN NOT MATCHED THEN
  INSERT (brand_id, provider, external_account_id, handle, access_token_enc, refresh_token_enc, token_expires_at, status, last_refreshed_at, metadata, connected_by_user_id, created_at, updated_at)
  VALUES (src.brand_id, src.provider, src.external_account_id, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11, @p12, @p13);`
	_, err := r.db.ExecContext(ctx, q, a.BrandID, string(a.Provider), a.ExternalAccountID, a.Handle, a.AccessTokenEnc, a.RefreshTokenEnc, a.TokenExpiresAt, a.Status, a.LastRefreshedAt, a.Metadata, a.ConnectedByUserID, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *SocialAccountRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+socialAccountColumnsMSSQL+` FROM dbo.[social_accounts] WHERE id=@p1`, id)
	return scanSocialAccount(row)
}

func (r *SocialAccountRepositoryMSSQL) ListConnectedByBrand(ctx context.Context, brandID int64) (map[model.Provider]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+socialAccountColumnsMSSQL+` FROM dbo.[social_accounts] WHERE brand_id=@p1 AND status='connected' ORDER BY id ASC`, brandID)
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

func (r *SocialAccountRepositoryMSSQL) ListByBrand(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error) {
	q := `SELECT ` + socialAccountColumnsMSSQL + ` FROM dbo.[social_accounts] WHERE brand_id=@p1 ORDER BY id ASC`
	args := []interface{}{brandID}
	if provider != nil {
		q = `SELECT ` + socialAccountColumnsMSSQL + ` FROM dbo.[social_accounts] WHERE brand_id=@p1 AND provider=@p2 ORDER BY id ASC`
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

func (r *SocialAccountRepositoryMSSQL) ListExpiringSoon(ctx context.Context, deadline time.Time) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, a.brand_id, a.provider, a.external_account_id, a.handle, a.access_token_enc, a.refresh_token_enc, a.token_expires_at, a.status, a.last_refreshed_at, a.metadata, a.connected_by_user_id, a.created_at, a.updated_at
FROM dbo.[social_accounts] a
JOIN dbo.[brands] b ON b.id = a.brand_id
WHERE a.status='connected' AND b.status='active' AND a.token_expires_at IS NOT NULL AND a.token_expires_at <= @p1
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

func (r *SocialAccountRepositoryMSSQL) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET status=@p1, updated_at=@p2 WHERE id=@p3`, status, time.Now().UTC(), id)
	return err
}

func (r *SocialAccountRepositoryMSSQL) UpdateTokens(ctx context.Context, id int64, accessTokenEnc string, refreshTokenEnc *string, expiresAt *time.Time) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET access_token_enc=@p1, refresh_token_enc=COALESCE(@p2, refresh_token_enc), token_expires_at=@p3, last_refreshed_at=@p4, status='connected', updated_at=@p4 WHERE id=@p5`,
		accessTokenEnc, refreshTokenEnc, expiresAt, now, id)
	return err
}

func (r *SocialAccountRepositoryMSSQL) UpdateMetadata(ctx context.Context, id int64, metadata []byte) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET metadata=@p1, updated_at=@p2 WHERE id=@p3`, metadata, time.Now().UTC(), id)
	return err
}
