package nbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/nboxhq/nbox/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{ServerURL: srv.URL}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	client, err := NewClient(cfg, tokens)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresServerURL(t *testing.T) {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})

	_, err := NewClient(&config.Config{}, tokens)
	assert.Error(t, err)

	_, err = NewClient(&config.Config{ServerURL: "not a url"}, tokens)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/auth/token", r.URL.Path)

			var creds map[string]string
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds)) {
				return
			}
			assert.Equal(t, "alice", creds["username"])
			assert.Equal(t, "s3cret", creds["password"])

			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
		}))
		defer srv.Close()

		token, err := Login(context.Background(), srv.URL, "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("legacy token field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token": "legacy-tok"})
		}))
		defer srv.Close()

		token, err := Login(context.Background(), srv.URL, "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "legacy-tok", token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := Login(context.Background(), srv.URL, "alice", "wrong")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty token response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := Login(context.Background(), srv.URL, "alice", "s3cret")
		assert.Error(t, err)
	})
}

func TestGetEntry(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/entry/key", r.URL.Path)
			assert.Equal(t, "app/host", r.URL.Query().Get("v"), "wire keys have no leading slash")
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(Entry{Key: "app/host", Value: "db.internal"})
		})

		entry, err := client.GetEntry(context.Background(), "/app/host")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "db.internal", entry.Value)
	})

	t.Run("404 means absent", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		})

		entry, err := client.GetEntry(context.Background(), "/app/missing")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("null body means absent", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null"))
		})

		entry, err := client.GetEntry(context.Background(), "/app/missing")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "token expired", http.StatusUnauthorized)
		})

		_, err := client.GetEntry(context.Background(), "/app/host")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestGetEntriesByPrefix(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entry/prefix", r.URL.Path)
		assert.Equal(t, "global/example", r.URL.Query().Get("v"))

		json.NewEncoder(w).Encode([]Entry{
			{Key: "global/example/a", Value: "1"},
			{Key: "global/example/b", Value: "2", Secure: true},
		})
	})

	entries, err := client.GetEntriesByPrefix(context.Background(), "/global/example")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Secure)
}

func TestGetSecretValue(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entry/secret-value", r.URL.Path)
		assert.Equal(t, "app/password", r.URL.Query().Get("v"))

		json.NewEncoder(w).Encode(SecretValue{Key: "app/password", Value: "hunter2"})
	})

	value, err := client.GetSecretValue(context.Background(), "/app/password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
}

func TestPutEntries(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entry", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload []Entry
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload)) {
			return
		}
		if !assert.Len(t, payload, 2) {
			return
		}
		assert.Equal(t, "app/host", payload[0].Key)
		assert.Equal(t, "app/password", payload[1].Key)
		assert.True(t, payload[1].Secure)

		w.WriteHeader(http.StatusCreated)
	})

	err := client.PutEntries(context.Background(), []Entry{
		{Key: "/app/host", Value: "db.internal"},
		{Key: "/app/password", Value: "hunter2", Secure: true},
	})
	assert.NoError(t, err)
}

func TestDeleteEntry(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/entry/key", r.URL.Path)
		assert.Equal(t, "app/host", r.URL.Query().Get("v"))
	})

	err := client.DeleteEntry(context.Background(), "/app/host")
	assert.NoError(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/entry/prefix", r.URL.Path)
			w.Write([]byte("[]"))
		})

		assert.NoError(t, client.ValidateToken(context.Background()))
	})

	t.Run("expired", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "token expired", http.StatusUnauthorized)
		})

		assert.ErrorIs(t, client.ValidateToken(context.Background()), ErrUnauthorized)
	})
}

func TestAPIErrorPassthrough(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GetEntry(context.Background(), "/app/host")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name string
		resp TokenResponse
		want string
	}{
		{"access_token preferred", TokenResponse{AccessToken: "a", Token: "b"}, "a"},
		{"token fallback", TokenResponse{Token: "b"}, "b"},
		{"empty", TokenResponse{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.BearerToken())
		})
	}
}
