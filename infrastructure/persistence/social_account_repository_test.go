package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-calendar/domain/model"
)

func socialAccountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "brand_id", "provider", "external_account_id", "handle", "access_token_enc", "refresh_token_enc", "token_expires_at", "status", "last_refreshed_at", "metadata", "connected_by_user_id", "created_at", "updated_at"})
}

func TestSocialAccountRepository_ListExpiringSoon(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	deadline := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	expires := deadline.Add(-24 * time.Hour)
	created := deadline.Add(-90 * 24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT a.id, a.brand_id, a.provider, a.external_account_id, a.handle, a.access_token_enc, a.refresh_token_enc, a.token_expires_at, a.status, a.last_refreshed_at, a.metadata, a.connected_by_user_id, a.created_at, a.updated_at
        FROM social_accounts a
        JOIN brands b ON b.id = a.brand_id
        WHERE a.status='connected' AND b.status='active' AND a.token_expires_at IS NOT NULL AND a.token_expires_at <= $1
        ORDER BY a.token_expires_at ASC`)).
		WithArgs(deadline).
		WillReturnRows(socialAccountRows().
			AddRow(31, 2, "facebook", "page-900", "acme", "sealed-access", nil, expires, "connected", nil, nil, "u-77", created, created))

	repo := NewSocialAccountRepository(db)
	accounts, err := repo.ListExpiringSoon(context.Background(), deadline)

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(31), accounts[0].ID)
	assert.Equal(t, model.ProviderFacebook, accounts[0].Provider)
	assert.Nil(t, accounts[0].RefreshTokenEnc)
	require.NotNil(t, accounts[0].TokenExpiresAt)
	assert.True(t, expires.Equal(*accounts[0].TokenExpiresAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_ListConnectedByBrandKeepsFirstPerProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE brand_id=$1 AND status='connected' ORDER BY id ASC`)).
		WithArgs(int64(2)).
		WillReturnRows(socialAccountRows().
			AddRow(31, 2, "facebook", "page-900", "acme", "sealed-a", nil, nil, "connected", nil, nil, "u-77", now, now).
			AddRow(32, 2, "facebook", "page-901", "acme-eu", "sealed-b", nil, nil, "connected", nil, nil, "u-77", now, now).
			AddRow(33, 2, "linkedin", "org-14", "acme", "sealed-c", nil, nil, "connected", nil, nil, "u-77", now, now))

	repo := NewSocialAccountRepository(db)
	accounts, err := repo.ListConnectedByBrand(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(31), accounts[model.ProviderFacebook].ID)
	assert.Equal(t, int64(33), accounts[model.ProviderLinkedIn].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_UpdateTokensKeepsRefreshWhenNotRotated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE social_accounts SET access_token_enc=$1, refresh_token_enc=COALESCE($2, refresh_token_enc), token_expires_at=$3, last_refreshed_at=$4, status='connected', updated_at=$4 WHERE id=$5`)).
		WithArgs("sealed-new", nil, expires, sqlmock.AnyArg(), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSocialAccountRepository(db)
	err = repo.UpdateTokens(context.Background(), 31, "sealed-new", nil, &expires)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_ListByBrandWithProviderFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	provider := model.ProviderLinkedIn

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE brand_id=$1 AND provider=$2 ORDER BY id ASC`)).
		WithArgs(int64(2), "linkedin").
		WillReturnRows(socialAccountRows().
			AddRow(33, 2, "linkedin", "org-14", "acme", "sealed-c", nil, nil, "connected", nil, []byte(`{"name":"Acme"}`), "u-77", now, now))

	repo := NewSocialAccountRepository(db)
	accounts, err := repo.ListByBrand(context.Background(), 2, &provider)

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, model.ProviderLinkedIn, accounts[0].Provider)
	assert.JSONEq(t, `{"name":"Acme"}`, string(accounts[0].Metadata))
	assert.NoError(t, mock.ExpectationsWereMet())
}
