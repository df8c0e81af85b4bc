package usecase

import (
	"context"
	"fmt"
	"time"

	"social-calendar/domain/model"
	"social-calendar/domain/repository"
	"social-calendar/infrastructure/cache"
)

const metadataCacheTTL = time.Hour

type ISocialAccountUsecase interface {
	// ListAccounts returns a brand's connections with provider profile
	// metadata hydrated through the cache.
	ListAccounts(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error)
}

type socialAccountUsecase struct {
	accountRepo repository.ISocialAccount
	metaCache   cache.IAccountMetadataCache // optional
}

func NewSocialAccountUsecase(accountRepo repository.ISocialAccount, metaCache cache.IAccountMetadataCache) ISocialAccountUsecase {
	return &socialAccountUsecase{accountRepo: accountRepo, metaCache: metaCache}
}

func (u *socialAccountUsecase) ListAccounts(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error) {
	accounts, err := u.accountRepo.ListByBrand(ctx, brandID, provider)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if u.metaCache == nil {
		return accounts, nil
	}
	for _, account := range accounts {
		cached, err := u.metaCache.Get(ctx, account.ID)
		if err == nil && cached != nil {
			account.Metadata = cached
			continue
		}
		if account.Metadata != nil {
			u.metaCache.Set(ctx, account.ID, account.Metadata, metadataCacheTTL)
		}
	}
	return accounts, nil
}
