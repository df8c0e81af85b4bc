package platforms

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"social-calendar/infrastructure/configuration"
)

// refreshViaOAuth2 runs a standard refresh_token grant against the given
// token endpoint. LinkedIn, X and TikTok all route through here; only the
// Graph providers need their own exchange flows.
func refreshViaOAuth2(ctx context.Context, client *http.Client, conf configuration.OAuthClient, tokenURL, refreshToken string) (*RefreshedToken, error) {
	oc := &oauth2.Config{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	tok, err := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh grant: %w", err)
	}
	out := &RefreshedToken{AccessToken: tok.AccessToken}
	if tok.RefreshToken != "" && tok.RefreshToken != refreshToken {
		out.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		out.ExpiresAt = &exp
	}
	return out, nil
}
