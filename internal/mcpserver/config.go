package mcpserver

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the MCP server configuration loaded from mcp.yaml.
type Config struct {
	APIURL string `yaml:"api_url"`
	// APIKey is sent when the MCP client does not supply its own key.
	APIKey string `yaml:"api_key"`
	// WebhookSecret signs push notifications forwarded to the webhook endpoint.
	WebhookSecret string                  `yaml:"webhook_secret"`
	Timeout       time.Duration           `yaml:"timeout"`
	Instructions  string                  `yaml:"instructions"`
	Tools         map[string]ToolOverride `yaml:"tools"`
}

// ToolOverride allows per-tool customization.
type ToolOverride struct {
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

// LoadConfig reads and parses the mcp.yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses mcp.yaml configuration from raw bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://127.0.0.1:8090"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Instructions == "" {
		cfg.Instructions = "BranchBox preview environments: create, list, deploy, delete, schedule sweeps and push redeploys."
	}
	for name := range cfg.Tools {
		if !knownTool(name) {
			return nil, fmt.Errorf("parse mcp config: unknown tool %q", name)
		}
	}

	return &cfg, nil
}
