package nbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/nboxhq/nbox/internal/config"
)

var (
	// ErrUnauthorized indicates a missing, invalid or expired token
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable indicates the server could not be reached
	ErrUnavailable = errors.New("nbox server unavailable")
	// ErrNotFound indicates the requested entry does not exist
	ErrNotFound = errors.New("entry not found")
)

// Client is an authenticated HTTP client for the Nbox API.
// Every request carries a bearer token from the injected token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
}

// NewClient creates a new Client with the given config and token source
func NewClient(cfg *config.Config, tokenSource oauth2.TokenSource) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL not configured")
	}
	if err := config.ValidateServerURL(cfg.ServerURL); err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokenSource,
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
	}, nil
}

// Do executes an authenticated request against the API.
// Transient failures (network errors, 502/503/504) are retried with
// exponential backoff; all other responses are returned as-is.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var resp *http.Response
	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			return err // retryable
		}

		switch r.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			r.Body.Close()
			return fmt.Errorf("HTTP %d", r.StatusCode)
		}

		resp = r
		return nil
	}

	policy := backoff.WithContext(retryPolicy(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return resp, nil
}

// retryPolicy limits transient-failure retries to a short window so a dead
// server fails fast instead of hanging an interactive command.
func retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// parseErrorResponse maps a non-2xx response to an error
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(string(body)))
	case http.StatusNotFound:
		return ErrNotFound
	}

	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Login exchanges a username and password for a bearer token.
// This is the only unauthenticated call the client makes.
func Login(ctx context.Context, serverURL, username, password string) (string, error) {
	if err := config.ValidateServerURL(serverURL); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqURL := strings.TrimRight(serverURL, "/") + "/api/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	token := tokenResp.BearerToken()
	if token == "" {
		return "", fmt.Errorf("login response contained no token")
	}

	return token, nil
}
