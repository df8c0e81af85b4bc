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
	tiktokAPIBase  = "https://open.tiktokapis.com/v2"
	tiktokTokenURL = "https://open.tiktokapis.com/v2/oauth/token/"
)

// TikTokAdapter publishes video posts by pulling the asset from a URL the
// caller already hosts. TikTok has no text-only posts; drafts without an
// asset are rejected here rather than at the provider.
type TikTokAdapter struct {
	conf   configuration.OAuthClient
	client *http.Client
}

func NewTikTokAdapter(conf configuration.OAuthClient, client *http.Client) *TikTokAdapter {
	return &TikTokAdapter{conf: conf, client: client}
}

func (a *TikTokAdapter) Provider() model.Provider { return model.ProviderTikTok }

func (a *TikTokAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error) {
	if len(draft.AssetIDs) == 0 {
		return nil, fmt.Errorf("tiktok post requires a video asset")
	}
	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":           composeMessage(draft),
			"privacy_level":   "PUBLIC_TO_EVERYONE",
			"disable_comment": false,
		},
		"source_info": map[string]interface{}{
			"source":    "PULL_FROM_URL",
			"video_url": draft.AssetIDs[0],
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokAPIBase+"/post/publish/video/init/", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok post request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("tiktok post failed: %s", string(body))
	}
	var ttResp struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &ttResp); err != nil {
		return nil, fmt.Errorf("tiktok post response: %w", err)
	}
	if ttResp.Error.Code != "" && ttResp.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok post failed: %s", ttResp.Error.Message)
	}
	if ttResp.Data.PublishID == "" {
		return nil, fmt.Errorf("tiktok post response missing publish id: %s", string(body))
	}
	return &PublishResult{
		ExternalID:  ttResp.Data.PublishID,
		ExternalURL: fmt.Sprintf("https://www.tiktok.com/@%s", account.Handle),
	}, nil
}

func (a *TikTokAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tiktokAPIBase+"/user/info/?fields=open_id,display_name", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok token probe: %w", err)
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

func (a *TikTokAdapter) RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	return refreshViaOAuth2(ctx, a.client, a.conf, tiktokTokenURL, refreshToken)
}
