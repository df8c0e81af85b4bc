package repository

import (
	"context"
	"time"

	"social-calendar/domain/model"
)

// ISocialAccount defines the social account store.
type ISocialAccount interface {
	// Upsert replaces any prior connection for the same
	// (brand, provider, external account), as happens on OAuth reconnect.
	Upsert(ctx context.Context, account *model.SocialAccount) error
	GetByID(ctx context.Context, id int64) (*model.SocialAccount, error)
	// ListConnectedByBrand returns the brand's connected accounts keyed by
	// provider; when a provider has multiple surfaces the lowest id wins.
	ListConnectedByBrand(ctx context.Context, brandID int64) (map[model.Provider]*model.SocialAccount, error)
	ListByBrand(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error)
	// ListExpiringSoon returns connected accounts on active brands whose
	// token expires within the window ending at deadline.
	ListExpiringSoon(ctx context.Context, deadline time.Time) ([]*model.SocialAccount, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	// UpdateTokens persists a refreshed token pair and stamps last_refreshed_at.
	UpdateTokens(ctx context.Context, id int64, accessTokenEnc string, refreshTokenEnc *string, expiresAt *time.Time) error
	UpdateMetadata(ctx context.Context, id int64, metadata []byte) error
}
