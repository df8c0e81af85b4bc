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

	"social-calendar/domain/model"
	"social-calendar/infrastructure/configuration"
)

// InstagramAdapter publishes to Instagram business accounts through the
// Graph API. Publishing is two calls: create a media container, then publish
// it. Feed and story channels differ only in the container's media_type.
type InstagramAdapter struct {
	conf   configuration.OAuthClient
	client *http.Client
}

func NewInstagramAdapter(conf configuration.OAuthClient, client *http.Client) *InstagramAdapter {
	return &InstagramAdapter{conf: conf, client: client}
}

func (a *InstagramAdapter) Provider() model.Provider { return model.ProviderInstagram }

func (a *InstagramAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*PublishResult, error) {
	form := url.Values{}
	form.Set("caption", composeMessage(draft))
	form.Set("access_token", accessToken)
	if channel == model.ChannelInstagramStory {
		form.Set("media_type", "STORIES")
	}
	if len(draft.AssetIDs) > 0 {
		form.Set("image_url", draft.AssetIDs[0])
	}
	containerID, err := a.postForm(ctx, fmt.Sprintf("%s/%s/media", facebookGraphBase, url.PathEscape(account.ExternalAccountID)), form)
	if err != nil {
		return nil, fmt.Errorf("instagram media container: %w", err)
	}

	pubForm := url.Values{}
	pubForm.Set("creation_id", containerID)
	pubForm.Set("access_token", accessToken)
	mediaID, err := a.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", facebookGraphBase, url.PathEscape(account.ExternalAccountID)), pubForm)
	if err != nil {
		return nil, fmt.Errorf("instagram media publish: %w", err)
	}
	return &PublishResult{
		ExternalID:  mediaID,
		ExternalURL: fmt.Sprintf("https://www.instagram.com/p/%s/", mediaID),
	}, nil
}

// postForm sends one form-encoded Graph call and returns the object id.
func (a *InstagramAdapter) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	var igResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &igResp); err != nil || igResp.ID == "" {
		return "", fmt.Errorf("response missing id: %s", string(body))
	}
	return igResp.ID, nil
}

func (a *InstagramAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidationResult, error) {
	meURL := fmt.Sprintf("%s/me?fields=id,username&access_token=%s", facebookGraphBase, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram token probe: %w", err)
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

func (a *InstagramAdapter) RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	refreshURL := fmt.Sprintf("https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		url.QueryEscape(refreshToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, refreshURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram token refresh: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("instagram token refresh failed: %s", string(body))
	}
	var data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("instagram token refresh response: %w", err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("instagram token refresh returned no token: %s", string(body))
	}
	out := &RefreshedToken{AccessToken: data.AccessToken}
	if data.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(data.ExpiresIn) * time.Second).UTC()
		out.ExpiresAt = &exp
	}
	return out, nil
}
