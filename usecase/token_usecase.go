package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"social-calendar/domain/dto"
	"social-calendar/domain/model"
	"social-calendar/domain/repository"
	"social-calendar/infrastructure/clients/platforms"
	"social-calendar/infrastructure/logger"
	"social-calendar/infrastructure/notification"
	"social-calendar/infrastructure/vault"
)

type ITokenUsecase interface {
	// ExpirySweep walks accounts whose token expires inside the warning
	// window, refreshes where the provider supports it and warns the brand's
	// managers otherwise. Triggered externally; there is no internal timer.
	ExpirySweep(ctx context.Context) (*dto.SweepResult, error)
	// HealthCheck probes every account of a brand, optionally narrowed to
	// one provider, and reports per-account health. Status drift is
	// persisted; tokens are never mutated here.
	HealthCheck(ctx context.Context, brandID int64, provider *model.Provider) (*dto.HealthCheckResult, error)
}

type tokenUsecase struct {
	accountRepo      repository.ISocialAccount
	brandRepo        repository.IBrand
	vault            *vault.TokenVault
	registry         platforms.Registry
	notifier         notification.INotifier
	warningDays      int
	reconnectBaseURL string
}

func NewTokenUsecase(
	accountRepo repository.ISocialAccount,
	brandRepo repository.IBrand,
	tokenVault *vault.TokenVault,
	registry platforms.Registry,
	notifier notification.INotifier,
	warningDays int,
	reconnectBaseURL string,
) ITokenUsecase {
	if warningDays <= 0 {
		warningDays = 7
	}
	return &tokenUsecase{
		accountRepo:      accountRepo,
		brandRepo:        brandRepo,
		vault:            tokenVault,
		registry:         registry,
		notifier:         notifier,
		warningDays:      warningDays,
		reconnectBaseURL: reconnectBaseURL,
	}
}

func (u *tokenUsecase) ExpirySweep(ctx context.Context) (*dto.SweepResult, error) {
	lg := logger.GetLogger()
	now := time.Now().UTC()
	deadline := now.Add(time.Duration(u.warningDays) * 24 * time.Hour)

	accounts, err := u.accountRepo.ListExpiringSoon(ctx, deadline)
	if err != nil {
		return nil, fmt.Errorf("list expiring accounts: %w", err)
	}

	res := &dto.SweepResult{}
	for _, account := range accounts {
		res.AccountsChecked++
		if err := u.sweepAccount(ctx, account, now, res); err != nil {
			lg.WithField("account_id", account.ID).
				WithField("provider", string(account.Provider)).
				WithField("error", err.Error()).
				Warn("expiry sweep account failed")
		}
	}
	return res, nil
}

// sweepAccount handles one account: refresh first, warn only when the token
// could not be renewed.
func (u *tokenUsecase) sweepAccount(ctx context.Context, account *model.SocialAccount, now time.Time, res *dto.SweepResult) error {
	adapter, ok := u.registry.Get(account.Provider)
	if !ok {
		return fmt.Errorf("no adapter for provider %s", account.Provider)
	}

	refreshed, err := u.tryRefresh(ctx, adapter, account)
	if err == nil && refreshed {
		res.Refreshed++
		return nil
	}
	if err != nil && !errors.Is(err, platforms.ErrRefreshNotSupported) {
		res.FailedRefreshes++
	}

	days := account.DaysUntilExpiry(now)
	if days < 0 || days > u.warningDays {
		return err
	}

	managers, mErr := u.brandRepo.ListActiveManagers(ctx, account.BrandID)
	if mErr != nil {
		return fmt.Errorf("list managers: %w", mErr)
	}
	recipients := dedupeEmails(managers)
	if len(recipients) == 0 {
		return err
	}
	if u.notifier != nil {
		link := fmt.Sprintf("%s/brands/%d/connections/%s", u.reconnectBaseURL, account.BrandID, account.Provider)
		u.notifier.NotifyTokenExpiring(ctx, recipients, account.Provider, days, link)
	}
	res.WarningsSent++
	// A warned account is a handled account; the refresh failure is already
	// counted above.
	return nil
}

// tryRefresh runs the provider refresh grant and persists the new sealed
// pair. Providers without a refresh token fall back to exchanging the
// current access token, which is how the Graph long-lived flow works.
func (u *tokenUsecase) tryRefresh(ctx context.Context, adapter platforms.PlatformAdapter, account *model.SocialAccount) (bool, error) {
	var grantToken string
	var err error
	if account.RefreshTokenEnc != nil {
		grantToken, err = u.vault.Unseal(*account.RefreshTokenEnc)
	} else {
		grantToken, err = u.vault.Unseal(account.AccessTokenEnc)
	}
	if err != nil {
		return false, fmt.Errorf("unseal: %w", err)
	}

	tok, err := adapter.RefreshToken(ctx, grantToken)
	if err != nil {
		return false, err
	}

	accessEnc, err := u.vault.Seal(tok.AccessToken)
	if err != nil {
		return false, fmt.Errorf("seal access token: %w", err)
	}
	var refreshEnc *string
	if tok.RefreshToken != "" {
		enc, err := u.vault.Seal(tok.RefreshToken)
		if err != nil {
			return false, fmt.Errorf("seal refresh token: %w", err)
		}
		refreshEnc = &enc
	}
	if err := u.accountRepo.UpdateTokens(ctx, account.ID, accessEnc, refreshEnc, tok.ExpiresAt); err != nil {
		return false, fmt.Errorf("persist tokens: %w", err)
	}
	account.TokenExpiresAt = tok.ExpiresAt
	return true, nil
}

func (u *tokenUsecase) HealthCheck(ctx context.Context, brandID int64, provider *model.Provider) (*dto.HealthCheckResult, error) {
	now := time.Now().UTC()
	accounts, err := u.accountRepo.ListByBrand(ctx, brandID, provider)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := &dto.HealthCheckResult{Results: []dto.TokenHealthResult{}}
	for _, account := range accounts {
		r := dto.TokenHealthResult{
			AccountID:       account.ID,
			Provider:        string(account.Provider),
			Handle:          account.Handle,
			DaysUntilExpiry: account.DaysUntilExpiry(now),
		}
		r.Health = u.checkAccount(ctx, account, now, &r)
		out.Results = append(out.Results, r)
	}
	return out, nil
}

// checkAccount classifies one account and persists status drift. Expiry is
// checked from stored state first so a dead token never triggers a probe.
func (u *tokenUsecase) checkAccount(ctx context.Context, account *model.SocialAccount, now time.Time, r *dto.TokenHealthResult) string {
	if account.TokenExpired(now) {
		u.persistStatus(ctx, account, model.AccountStatusExpired)
		return dto.TokenHealthExpired
	}

	adapter, ok := u.registry.Get(account.Provider)
	if !ok {
		r.Error = fmt.Sprintf("no adapter for provider %s", account.Provider)
		u.persistStatus(ctx, account, model.AccountStatusError)
		return dto.TokenHealthError
	}
	token, err := u.vault.Unseal(account.AccessTokenEnc)
	if err != nil {
		r.Error = err.Error()
		u.persistStatus(ctx, account, model.AccountStatusError)
		return dto.TokenHealthError
	}

	validation, err := adapter.ValidateToken(ctx, token)
	if err != nil {
		r.Error = err.Error()
		u.persistStatus(ctx, account, model.AccountStatusError)
		return dto.TokenHealthError
	}
	if !validation.Valid {
		r.Error = validation.Error
		u.persistStatus(ctx, account, model.AccountStatusInvalid)
		return dto.TokenHealthInvalid
	}

	u.persistStatus(ctx, account, model.AccountStatusConnected)
	if d := account.DaysUntilExpiry(now); d >= 0 && d <= u.warningDays {
		return dto.TokenHealthExpiringSoon
	}
	return dto.TokenHealthHealthy
}

func (u *tokenUsecase) persistStatus(ctx context.Context, account *model.SocialAccount, status string) {
	if account.Status == status {
		return
	}
	if err := u.accountRepo.UpdateStatus(ctx, account.ID, status); err != nil {
		logger.GetLogger().WithField("account_id", account.ID).
			WithField("error", err.Error()).
			Warn("account status update failed")
		return
	}
	account.Status = status
}

// dedupeEmails flattens manager rows into a sorted unique address list.
// Addresses are lowercased and trimmed first so case or whitespace variants
// of the same mailbox collapse into one recipient.
func dedupeEmails(members []*model.BrandMember) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, m := range members {
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}
