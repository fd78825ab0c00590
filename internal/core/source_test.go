package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		data := []byte(`[
			{"key": "/app/db/host", "value": "localhost"},
			{"key": "/app/db/password", "value": "hunter2", "secure": true}
		]`)

		candidates, err := ParseManifest(data)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		assert.Equal(t, PathKey("/app/db/host"), candidates[0].Key)
		assert.Equal(t, "localhost", candidates[0].Value)
		assert.False(t, candidates[0].Secure)

		assert.Equal(t, PathKey("/app/db/password"), candidates[1].Key)
		assert.True(t, candidates[1].Secure)
		assert.Equal(t, 1, candidates[1].Record)
	})

	t.Run("missing key field", func(t *testing.T) {
		data := []byte(`[{"value": "x"}]`)
		_, err := ParseManifest(data)
		var manifestErr *MalformedManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Equal(t, 0, manifestErr.Record)
		assert.Contains(t, err.Error(), `missing "key"`)
	})

	t.Run("missing value field", func(t *testing.T) {
		data := []byte(`[{"key": "/a/b", "value": "1"}, {"key": "/a/c"}]`)
		_, err := ParseManifest(data)
		var manifestErr *MalformedManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Equal(t, 1, manifestErr.Record)
	})

	t.Run("invalid path in key", func(t *testing.T) {
		data := []byte(`[{"key": "no-slash", "value": "1"}]`)
		_, err := ParseManifest(data)
		var manifestErr *MalformedManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Contains(t, err.Error(), "record 0")
	})

	t.Run("not a list", func(t *testing.T) {
		data := []byte(`{"key": "/a/b", "value": "1"}`)
		_, err := ParseManifest(data)
		var manifestErr *MalformedManifestError
		require.ErrorAs(t, err, &manifestErr)
	})

	t.Run("duplicate keys last write wins", func(t *testing.T) {
		data := []byte(`[
			{"key": "/a/x", "value": "first"},
			{"key": "/a/y", "value": "middle"},
			{"key": "/a/x", "value": "last", "secure": true}
		]`)

		candidates, err := ParseManifest(data)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		// /a/x keeps its first position but carries the last value
		assert.Equal(t, PathKey("/a/x"), candidates[0].Key)
		assert.Equal(t, "last", candidates[0].Value)
		assert.True(t, candidates[0].Secure)
		assert.Equal(t, PathKey("/a/y"), candidates[1].Key)
	})

	t.Run("empty value is allowed", func(t *testing.T) {
		data := []byte(`[{"key": "/a/b", "value": ""}]`)
		candidates, err := ParseManifest(data)
		require.NoError(t, err)
		assert.Equal(t, "", candidates[0].Value)
	})
}

func TestParseDotenv(t *testing.T) {
	base := PathKey("/app/env")

	t.Run("basic lines", func(t *testing.T) {
		data := []byte("HOST=localhost\nPORT=5432\n")

		candidates, err := ParseDotenv(data, base)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		assert.Equal(t, PathKey("/app/env/host"), candidates[0].Key)
		assert.Equal(t, "localhost", candidates[0].Value)
		assert.Equal(t, 1, candidates[0].Line)
		assert.Equal(t, "HOST", candidates[0].Var)
		assert.False(t, candidates[0].Secure)

		assert.Equal(t, PathKey("/app/env/port"), candidates[1].Key)
	})

	t.Run("comments and blanks skipped", func(t *testing.T) {
		data := []byte("# header comment\n\nHOST=x\n\n# trailing\n")
		candidates, err := ParseDotenv(data, base)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, 3, candidates[0].Line)
	})

	t.Run("value keeps everything after first equals", func(t *testing.T) {
		data := []byte("API_KEY=secret=123\n")
		candidates, err := ParseDotenv(data, base)
		require.NoError(t, err)
		assert.Equal(t, "secret=123", candidates[0].Value)
	})

	t.Run("symmetric quotes stripped", func(t *testing.T) {
		tests := []struct {
			line string
			want string
		}{
			{line: `NAME="quoted value"`, want: "quoted value"},
			{line: `NAME='single quoted'`, want: "single quoted"},
			{line: `NAME="unbalanced'`, want: `"unbalanced'`},
			{line: `NAME="keeps="`, want: "keeps="},
			{line: `NAME=plain`, want: "plain"},
		}

		for _, tt := range tests {
			candidates, err := ParseDotenv([]byte(tt.line), base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, candidates[0].Value, "line: %s", tt.line)
		}
	})

	t.Run("line without equals fails", func(t *testing.T) {
		data := []byte("HOST=x\nJUST_A_WORD\n")
		_, err := ParseDotenv(data, base)
		var manifestErr *MalformedManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Equal(t, 2, manifestErr.Line)
	})

	t.Run("missing name fails", func(t *testing.T) {
		data := []byte("=orphan\n")
		_, err := ParseDotenv(data, base)
		assert.Error(t, err)
	})

	t.Run("duplicate names last write wins", func(t *testing.T) {
		data := []byte("HOST=first\nHOST=second\n")
		candidates, err := ParseDotenv(data, base)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "second", candidates[0].Value)
		assert.Equal(t, 2, candidates[0].Line)
	})

	t.Run("case collision is an ordinary duplicate", func(t *testing.T) {
		data := []byte("Host=a\nHOST=b\n")
		candidates, err := ParseDotenv(data, base)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "b", candidates[0].Value)
	})
}
