package model

import "time"

// Social account connection statuses.
const (
	AccountStatusConnected = "connected"
	AccountStatusExpired   = "expired"
	AccountStatusInvalid   = "invalid"
	AccountStatusRevoked   = "revoked"
	AccountStatusError     = "error"
)

// SocialAccount is one OAuth connection per (brand, provider, external account).
// Tokens are stored sealed; only the publish path unseals them.
type SocialAccount struct {
	ID                int64      `json:"id"`
	BrandID           int64      `json:"brand_id"`
	Provider          Provider   `json:"provider"`
	ExternalAccountID string     `json:"external_account_id"`
	Handle            string     `json:"handle"`
	AccessTokenEnc    string     `json:"-"`
	RefreshTokenEnc   *string    `json:"-"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
	Status            string     `json:"status"`
	LastRefreshedAt   *time.Time `json:"last_refreshed_at,omitempty"`
	Metadata          []byte     `json:"metadata,omitempty"` // provider profile cache (JSON)
	ConnectedByUserID string     `json:"connected_by_user_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TokenExpired reports whether the stored expiry, when present, has passed.
func (a *SocialAccount) TokenExpired(now time.Time) bool {
	return a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(now)
}

// DaysUntilExpiry returns the whole days left before the token expires, or
// -1 when no expiry is recorded.
func (a *SocialAccount) DaysUntilExpiry(now time.Time) int {
	if a.TokenExpiresAt == nil {
		return -1
	}
	d := a.TokenExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
