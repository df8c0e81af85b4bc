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
	linkedinAPIBase  = "https://api.linkedin.com/v2"
	linkedinTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
)

// LinkedInAdapter publishes UGC posts on behalf of an organization or member
// using the stored member access token.
type LinkedInAdapter struct {
	conf   configuration.OAuthClient
	client *http.Client
}

func NewLinkedInAdapter(conf configuration.OAuthClient, client *http.Client) *LinkedInAdapter {
	return &LinkedInAdapter{conf: conf, client: client}
}

func (a *LinkedInAdapter) Provider() model.Provider { return model.ProviderLinkedIn }

func (a *LinkedInAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error) {
	payload := map[string]interface{}{
		"author":         account.ExternalAccountID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": composeMessage(draft),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinAPIBase+"/ugcPosts", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin post request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 201 {
		return nil, fmt.Errorf("linkedin post failed: %s", string(body))
	}
	var liResp struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(body, &liResp) == nil && liResp.ID == "" {
		// the urn also arrives via header on some API versions
		liResp.ID = resp.Header.Get("X-Restli-Id")
	}
	if liResp.ID == "" {
		return nil, fmt.Errorf("linkedin post response missing id: %s", string(body))
	}
	return &PublishResult{
		ExternalID:  liResp.ID,
		ExternalURL: fmt.Sprintf("https://www.linkedin.com/feed/update/%s/", liResp.ID),
	}, nil
}

func (a *LinkedInAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkedinAPIBase+"/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin token probe: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return &ValidationResult{Valid: true}, nil
	}
	var errResp struct {
		Message string `json:"message"`
	}
	msg := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		msg = errResp.Message
	}
	return &ValidationResult{Valid: false, Error: msg}, nil
}

func (a *LinkedInAdapter) RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	return refreshViaOAuth2(ctx, a.client, a.conf, linkedinTokenURL, refreshToken)
}
