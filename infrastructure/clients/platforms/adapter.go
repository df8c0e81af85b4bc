package platforms

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/configuration"
)

// PublishResult is what a provider returns for a live post.
type PublishResult struct {
	ExternalID  string
	ExternalURL string
}

// ValidationResult is the outcome of probing a provider with a token.
// Valid=false with Error set means the provider rejected the token; a Go
// error from ValidateToken means the probe itself could not run.
type ValidationResult struct {
	Valid bool
	Error string
}

// RefreshedToken is a new token pair from a provider's refresh grant.
type RefreshedToken struct {
	AccessToken  string
	RefreshToken string // empty when the provider rotates access tokens only
	ExpiresAt    *time.Time
}

// ErrRefreshNotSupported marks providers without a refresh flow. Callers
// treat it as "nothing to do", not as a failure.
var ErrRefreshNotSupported = errors.New("platform: token refresh not supported")

// PlatformAdapter is the per-provider capability used by the publishing
// pipeline. One implementation per provider, selected from the Registry.
// Publish must be idempotent enough that a retry after a timeout does not
// duplicate the live post, or must surface a detectable duplicate error.
type PlatformAdapter interface {
	Provider() model.Provider
	Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error)
	ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error)
}

// Registry maps providers to their adapters.
type Registry map[model.Provider]PlatformAdapter

// Get returns the adapter for a provider.
func (r Registry) Get(p model.Provider) (PlatformAdapter, bool) {
	a, ok := r[p]
	return a, ok
}

// NewRegistry wires one adapter per supported provider. A shared HTTP
// client keeps timeout policy in one place.
func NewRegistry(cfg configuration.OAuth) Registry {
	client := &http.Client{Timeout: 30 * time.Second}
	adapters := []PlatformAdapter{
		NewFacebookAdapter(cfg.Facebook, client),
		NewInstagramAdapter(cfg.Instagram, client),
		NewLinkedInAdapter(cfg.LinkedIn, client),
		NewXAdapter(cfg.X, client),
		NewTikTokAdapter(cfg.TikTok, client),
	}
	reg := Registry{}
	for _, a := range adapters {
		reg[a.Provider()] = a
	}
	return reg
}

// composeMessage joins copy and hashtags the way every provider accepts.
func composeMessage(draft *model.Draft) string {
	parts := []string{draft.Copy}
	if draft.Hashtags != "" {
		parts = append(parts, draft.Hashtags)
	}
	return strings.Join(parts, "\n\n")
}
