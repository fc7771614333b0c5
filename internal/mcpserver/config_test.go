package mcpserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090", cfg.APIURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.Instructions)
}

func TestParseConfig_Overrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
api_url: http://api:8090
api_key: k
webhook_secret: s
timeout: 5s
tools:
  notify_push:
    disabled: true
  list_environments:
    description: List them
`))
	require.NoError(t, err)
	assert.Equal(t, "http://api:8090", cfg.APIURL)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "s", cfg.WebhookSecret)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Tools["notify_push"].Disabled)
	assert.Equal(t, "List them", cfg.Tools["list_environments"].Description)
}

func TestParseConfig_UnknownTool(t *testing.T) {
	_, err := ParseConfig([]byte("tools:\n  drop_database:\n    disabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drop_database")
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("api_url: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://x\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://x", cfg.APIURL)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
