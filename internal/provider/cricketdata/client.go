// Package cricketdata consumes the upstream cricket live-score REST API.
//
// The provider returns JSON with inconsistent availability of nested include
// fields and occasionally different shapes for the same logical field; the
// extractor chains in extract.go deal with that. Rate limiting is a token
// bucket sized from the plan's requests-per-minute allowance.
package cricketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.cricketdata.io/v1"

// Client is the HTTP client for all provider endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewClient creates a provider client with rate limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// envelope is the provider's common response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// CurrentMatches returns the "currently live" listing.
func (c *Client) CurrentMatches(ctx context.Context) ([]Match, error) {
	var matches []Match
	if err := c.get(ctx, "/currentMatches", nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// RecentMatches returns the "recently finished" listing.
func (c *Client) RecentMatches(ctx context.Context) ([]Match, error) {
	var matches []Match
	if err := c.get(ctx, "/recentMatches", nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// MatchInfo fetches the detailed payload for one match, including scorecards.
func (c *Client) MatchInfo(ctx context.Context, id string) (*Match, error) {
	params := url.Values{"id": {id}}
	var m Match
	if err := c.get(ctx, "/matchInfo", params, &m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &m, nil
}

// PlayerInfo resolves a player id to its profile, used by name enrichment.
func (c *Client) PlayerInfo(ctx context.Context, id string) (*Player, error) {
	params := url.Values{"id": {id}}
	var p Player
	if err := c.get(ctx, "/playerInfo", params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	return &p, nil
}

// get performs a rate-limited GET and decodes the envelope into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &ProviderError{Endpoint: path, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		return &ProviderError{Endpoint: path, StatusCode: resp.StatusCode, Err: ErrEndpointUnavailable}
	case resp.StatusCode != http.StatusOK:
		return &ProviderError{Endpoint: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", truncate(body, 200))}
	}

	// The provider serves HTML error pages with a 200 on some outages.
	if len(body) > 0 && body[0] == '<' {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("HTML body where JSON expected: %s", truncate(body, 120))}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Status != "success" {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("provider status %q: %s", env.Status, env.Reason)}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// truncate returns a shortened body for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
