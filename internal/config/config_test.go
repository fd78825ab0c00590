package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "https URL", raw: "https://nbox.example.com", wantErr: false},
		{name: "http with port", raw: "http://localhost:8080", wantErr: false},
		{name: "https with path", raw: "https://nbox.example.com/api", wantErr: false},
		{name: "missing scheme", raw: "nbox.example.com", wantErr: true},
		{name: "wrong scheme", raw: "ftp://nbox.example.com", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigGet(t *testing.T) {
	cfg := &Config{ServerURL: "https://nbox.example.com", DefaultOutput: "json"}

	value, err := cfg.Get("server_url")
	require.NoError(t, err)
	assert.Equal(t, "https://nbox.example.com", value)

	value, err = cfg.Get("default_output")
	require.NoError(t, err)
	assert.Equal(t, "json", value)

	_, err = cfg.Get("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}
