package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/configuration"
)

const facebookGraphBase = "https://graph.facebook.com/v19.0"

// FacebookAdapter publishes to Facebook Pages through the Graph API using a
// page access token stored on the social account.
type FacebookAdapter struct {
	conf   configuration.OAuthClient
	client *http.Client
}

func NewFacebookAdapter(conf configuration.OAuthClient, client *http.Client) *FacebookAdapter {
	return &FacebookAdapter{conf: conf, client: client}
}

func (a *FacebookAdapter) Provider() model.Provider { return model.ProviderFacebook }

func (a *FacebookAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error) {
	form := url.Values{}
	form.Set("message", composeMessage(draft))
	form.Set("access_token", accessToken)
	postURL := fmt.Sprintf("%s/%s/feed", facebookGraphBase, url.PathEscape(account.ExternalAccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook post request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("facebook post failed: %s", string(body))
	}
	var fbResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &fbResp); err != nil || fbResp.ID == "" {
		return nil, fmt.Errorf("facebook post response missing id: %s", string(body))
	}
	return &PublishResult{
		ExternalID:  fbResp.ID,
		ExternalURL: fmt.Sprintf("https://www.facebook.com/%s", fbResp.ID),
	}, nil
}

func (a *FacebookAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error) {
	meURL := fmt.Sprintf("%s/me?access_token=%s", facebookGraphBase, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook token probe: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return &ValidationResult{Valid: true}, nil
	}
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}
	return &ValidationResult{Valid: false, Error: msg}, nil
}

// facebookExchangeParams drives the long-lived token exchange. Facebook has
// no classic refresh grant; an existing token is traded for a fresh one.
type facebookExchangeParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

func (a *FacebookAdapter) RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	params, err := query.Values(facebookExchangeParams{
		GrantType:       "fb_exchange_token",
		ClientID:        a.conf.ClientID,
		ClientSecret:    a.conf.ClientSecret,
		FBExchangeToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}
	llURL := fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphBase, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, llURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook token exchange: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("facebook token exchange failed: %s", string(body))
	}
	var llData struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &llData); err != nil {
		return nil, fmt.Errorf("facebook token exchange response: %w", err)
	}
	if llData.AccessToken == "" {
		return nil, fmt.Errorf("facebook token exchange returned no token: %s", string(body))
	}
	out := &RefreshedToken{AccessToken: llData.AccessToken}
	if llData.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(llData.ExpiresIn) * time.Second).UTC()
		out.ExpiresAt = &exp
	}
	return out, nil
}
