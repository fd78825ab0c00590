package nbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// EntryService defines the operations the Nbox entry API exposes.
type EntryService interface {
	GetEntry(ctx context.Context, key string) (*Entry, error)
	GetEntriesByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	GetSecretValue(ctx context.Context, key string) (string, error)
	PutEntries(ctx context.Context, entries []Entry) error
	DeleteEntry(ctx context.Context, key string) error
	ValidateToken(ctx context.Context) error
}

// Compile-time interface compliance check
var _ EntryService = (*Client)(nil)

// wireKey strips the leading slash; the server addresses entries without it
func wireKey(key string) string {
	return strings.TrimLeft(key, "/")
}

// GetEntry fetches a single entry by key.
// Returns (nil, nil) when the entry does not exist.
func (c *Client) GetEntry(ctx context.Context, key string) (*Entry, error) {
	query := url.Values{"v": {wireKey(key)}}
	resp, err := c.Do(ctx, http.MethodGet, "/api/entry/key", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.parseErrorResponse(resp)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The server answers 200 with a JSON null for unknown keys
	if entry == nil || entry.Key == "" {
		return nil, nil
	}

	return entry, nil
}

// GetEntriesByPrefix fetches all entries under a path prefix.
// Returns an empty slice (not an error) when nothing matches.
func (c *Client) GetEntriesByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	query := url.Values{"v": {wireKey(prefix)}}
	resp, err := c.Do(ctx, http.MethodGet, "/api/entry/prefix", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.parseErrorResponse(resp)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return entries, nil
}

// GetSecretValue requests the decrypted plaintext of a secure entry
func (c *Client) GetSecretValue(ctx context.Context, key string) (string, error) {
	query := url.Values{"v": {wireKey(key)}}
	resp, err := c.Do(ctx, http.MethodGet, "/api/entry/secret-value", query, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(resp)
	}

	var secret SecretValue
	if err := json.NewDecoder(resp.Body).Decode(&secret); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return secret.Value, nil
}

// PutEntries creates or updates a batch of entries.
// The server encrypts values of entries marked secure before storing them.
func (c *Client) PutEntries(ctx context.Context, entries []Entry) error {
	wire := make([]Entry, len(entries))
	for i, e := range entries {
		wire[i] = Entry{Key: wireKey(e.Key), Value: e.Value, Secure: e.Secure}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, "/api/entry", nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.parseErrorResponse(resp)
	}

	return nil
}

// DeleteEntry removes an entry by key
func (c *Client) DeleteEntry(ctx context.Context, key string) error {
	query := url.Values{"v": {wireKey(key)}}
	resp, err := c.Do(ctx, http.MethodDelete, "/api/entry/key", query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	return nil
}

// ValidateToken makes a lightweight request to check the stored token still works
func (c *Client) ValidateToken(ctx context.Context) error {
	query := url.Values{"v": {"login"}}
	resp, err := c.Do(ctx, http.MethodGet, "/api/entry/prefix", query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	return nil
}
