package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrChannelOffline marks a clip attempt against a channel that is not live.
var ErrChannelOffline = fmt.Errorf("channel is offline")

// HelixClient provides the few Helix methods the bot needs.
type HelixClient struct {
	TokenSource TokenProvider
	ClientID    string
	HTTPClient  *http.Client
	BaseURL     string // defaults to https://api.twitch.tv/helix
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

func (hc *HelixClient) base() string {
	if hc.BaseURL != "" {
		return hc.BaseURL
	}
	return "https://api.twitch.tv/helix"
}

func (hc *HelixClient) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	tok, err := hc.TokenSource.Get(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, hc.base()+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+tok)
	return req, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.Any("err", err))
	}
}

// GetUserID resolves a login name to its user ID.
func (hc *HelixClient) GetUserID(ctx context.Context, login string) (string, error) {
	if login == "" {
		return "", fmt.Errorf("login empty")
	}
	req, err := hc.newRequest(ctx, http.MethodGet, "/users")
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("login", login)
	req.URL.RawQuery = q.Encode()
	resp, err := hc.http().Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("user not found")
	}
	return body.Data[0].ID, nil
}

// GetChannelGame returns the game name currently set on a broadcaster's
// channel.
func (hc *HelixClient) GetChannelGame(ctx context.Context, broadcasterID string) (string, error) {
	if broadcasterID == "" {
		return "", fmt.Errorf("broadcasterID empty")
	}
	req, err := hc.newRequest(ctx, http.MethodGet, "/channels")
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("broadcaster_id", broadcasterID)
	req.URL.RawQuery = q.Encode()
	resp, err := hc.http().Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)
	var body struct {
		Data []struct {
			GameName string `json:"game_name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("channel not found")
	}
	return body.Data[0].GameName, nil
}

// CreateClip creates a clip of the broadcaster's live stream and returns the
// clip id. A 404 means the channel is offline and maps to ErrChannelOffline.
func (hc *HelixClient) CreateClip(ctx context.Context, broadcasterID string) (string, error) {
	if broadcasterID == "" {
		return "", fmt.Errorf("broadcasterID empty")
	}
	req, err := hc.newRequest(ctx, http.MethodPost, "/clips")
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("broadcaster_id", broadcasterID)
	req.URL.RawQuery = q.Encode()
	resp, err := hc.http().Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrChannelOffline
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("create clip: unexpected status %s", resp.Status)
	}
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("create clip: empty response")
	}
	return body.Data[0].ID, nil
}
