// Package provider holds the HTTP plumbing shared by the Strava and Wahoo clients.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// TokenSource yields a bearer token for the current user.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

// AccessToken implements TokenSource.
func (s StaticToken) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrUnauthorized
	}
	return string(s), nil
}

// Client issues authenticated JSON requests against one provider API. It never
// retries.
type Client struct {
	name    string
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient constructs a Client. A nil httpClient uses a client with a 30 s timeout.
func NewClient(name, baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
	}
}

// Name returns the provider name used in errors and metrics.
func (c *Client) Name() string {
	return c.name
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Do performs a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil. A path starting with a scheme is used
// as an absolute URL.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.name, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(c.name, method, 0, time.Since(start))
		return domain.Downstream(c.name, err)
	}
	defer resp.Body.Close()
	observeRequest(c.name, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s rejected bearer token: %w", c.name, domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.DownstreamError{
			Service: c.name,
			Status:  resp.StatusCode,
			Err:     errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Downstream(c.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
