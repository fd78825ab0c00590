package nbox

import "fmt"

// Entry is a single path-keyed configuration value as the server represents it.
// Secure entries hold an opaque reference in Value; the plaintext lives server-side
// and is only returned by the secret-value endpoint.
type Entry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Secure bool   `json:"secure"`
}

// SecretValue is the response from GET /api/entry/secret-value
type SecretValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TokenResponse is the response from POST /api/auth/token.
// Older server versions return "token" instead of "access_token".
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// BearerToken returns whichever token field the server populated
func (r *TokenResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// APIError represents a non-2xx response from the Nbox API
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
