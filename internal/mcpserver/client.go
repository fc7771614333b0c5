package mcpserver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// APIClient forwards tool calls to the BranchBox REST API.
type APIClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
	logger        zerolog.Logger
}

func NewAPIClient(cfg *Config, logger zerolog.Logger) *APIClient {
	return &APIClient{
		baseURL:       strings.TrimRight(cfg.APIURL, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		client:        &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}
}

// call sends one API request and turns the reply into a tool result. API
// failures are tool errors, not protocol errors.
func (c *APIClient) call(ctx context.Context, req mcp.CallToolRequest, method, path string, query url.Values, body any) (*mcp.CallToolResult, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode request: %s", err)), nil
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build request: %s", err)), nil
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if key := c.keyFor(req); key != "" {
		httpReq.Header.Set("X-API-Key", key)
	}
	return c.send(httpReq, req.Params.Name)
}

// push delivers a synthetic push notification to the webhook endpoint,
// signed when a webhook secret is configured.
func (c *APIClient) push(ctx context.Context, req mcp.CallToolRequest, repo, branch string) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(map[string]any{
		"ref":        "refs/heads/" + branch,
		"repository": map[string]string{"full_name": repo},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode push event: %s", err)), nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/webhooks/github", bytes.NewReader(payload))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build request: %s", err)), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-GitHub-Event", "push")
	if c.webhookSecret != "" {
		httpReq.Header.Set("X-Hub-Signature-256", "sha256="+sign(c.webhookSecret, payload))
	}
	return c.send(httpReq, req.Params.Name)
}

func (c *APIClient) send(httpReq *http.Request, tool string) (*mcp.CallToolResult, error) {
	c.logger.Debug().
		Str("method", httpReq.Method).
		Str("url", httpReq.URL.String()).
		Str("tool", tool).
		Msg("proxying MCP tool call")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API request failed: %s", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read response: %s", err)), nil
	}

	// 207 carries a partial deploy result the caller needs to see.
	if resp.StatusCode >= 400 {
		return mcp.NewToolResultError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))), nil
	}
	return mcp.NewToolResultText(string(respBody)), nil
}

// keyFor prefers the key the MCP client presented over the configured one.
func (c *APIClient) keyFor(req mcp.CallToolRequest) string {
	if key := req.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return c.apiKey
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
