package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fitlane/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

// Client talks to the upstream metrics API.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ domain.MetricsRemoteSource = (*Client)(nil)

// NewClient creates a client for baseURL. A nil hc gets a plain client with
// DefaultTimeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  hc,
	}
}

// OAuthConfig holds client-credentials settings for the upstream API.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Enabled reports whether both a client id and a token endpoint are set.
func (oc OAuthConfig) Enabled() bool {
	return oc.ClientID != "" && oc.TokenURL != ""
}

// NewHTTPClient returns an *http.Client for the upstream API. When oc is
// enabled, requests carry a bearer token obtained with the OAuth2
// client-credentials grant.
func NewHTTPClient(ctx context.Context, oc OAuthConfig, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := &http.Client{Timeout: timeout}
	if !oc.Enabled() {
		return base
	}

	cc := clientcredentials.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		TokenURL:     oc.TokenURL,
		Scopes:       oc.Scopes,
	}
	hc := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	hc.Timeout = timeout
	return hc
}

// FetchToday calls GET /metrics/today.
func (c *Client) FetchToday(ctx context.Context) (domain.DailyMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/metrics/today", nil)
	if err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to fetch metrics from server", err)
	}

	var out domain.DailyMetrics
	if err := c.do(req, &out); err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to fetch metrics from server", err)
	}
	return out, nil
}

// Sync calls POST /metrics/sync with m and returns the reconciled snapshot.
func (c *Client) Sync(ctx context.Context, m domain.DailyMetrics) (domain.DailyMetrics, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to sync metrics with server", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/metrics/sync", bytes.NewReader(body))
	if err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to sync metrics with server", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out domain.DailyMetrics
	if err := c.do(req, &out); err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to sync metrics with server", err)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
