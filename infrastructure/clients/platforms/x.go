package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/configuration"
)

const (
	xAPIBase  = "https://api.twitter.com/2"
	xTokenURL = "https://api.twitter.com/2/oauth2/token"
)

// XAdapter posts tweets through the v2 API with an OAuth2 user token.
type XAdapter struct {
	conf   configuration.OAuthClient
	client *http.Client
}

func NewXAdapter(conf configuration.OAuthClient, client *http.Client) *XAdapter {
	return &XAdapter{conf: conf, client: client}
}

func (a *XAdapter) Provider() model.Provider { return model.ProviderX }

func (a *XAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error) {
	payload := map[string]string{"text": composeMessage(draft)}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xAPIBase+"/tweets", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x post request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 201 {
		return nil, fmt.Errorf("x post failed: %s", string(body))
	}
	var xResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &xResp); err != nil || xResp.Data.ID == "" {
		return nil, fmt.Errorf("x post response missing id: %s", string(body))
	}
	return &PublishResult{
		ExternalID:  xResp.Data.ID,
		ExternalURL: fmt.Sprintf("https://x.com/%s/status/%s", account.Handle, xResp.Data.ID),
	}, nil
}

func (a *XAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xAPIBase+"/users/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x token probe: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return &ValidationResult{Valid: true}, nil
	}
	var errResp struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	msg := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
		msg = errResp.Detail
	}
	return &ValidationResult{Valid: false, Error: msg}, nil
}

func (a *XAdapter) RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	return refreshViaOAuth2(ctx, a.client, a.conf, xTokenURL, refreshToken)
}
