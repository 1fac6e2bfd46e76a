package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	var cfg ServerConfig
	cfg.Normalize()

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, "support", cfg.Auth.Username)
	assert.Equal(t, "sesame", cfg.Auth.Password)
}

func TestNormalizeTrims(t *testing.T) {
	cfg := ServerConfig{
		HTTPAddr: "  127.0.0.1:9000 ",
		Auth:     OperatorAuth{Username: " op ", Password: " secret "},
		AuthKey:  " k ",
	}
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "op", cfg.Auth.Username)
	assert.Equal(t, "secret", cfg.Auth.Password)
	assert.Equal(t, "k", cfg.AuthKey)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supportchat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http_addr": "127.0.0.1:6060",
		"auth": {"username": "op", "password": "hunter2"},
		"auth_key": "sdk-secret"
	}`), 0o600))

	cfg, v, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "127.0.0.1:6060", cfg.HTTPAddr)
	assert.Equal(t, "op", cfg.Auth.Username)
	assert.Equal(t, "hunter2", cfg.Auth.Password)
	assert.Equal(t, "sdk-secret", cfg.AuthKey)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, _, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, "support", cfg.Auth.Username)
}
