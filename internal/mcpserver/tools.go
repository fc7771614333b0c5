package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	toolListEnvironments  = "list_environments"
	toolCreateEnvironment = "create_environment"
	toolDeleteEnvironment = "delete_environment"
	toolDeployEnvironment = "deploy_environment"
	toolRunScheduleSweep  = "run_schedule_sweep"
	toolNotifyPush        = "notify_push"
)

var toolNames = []string{
	toolListEnvironments,
	toolCreateEnvironment,
	toolDeleteEnvironment,
	toolDeployEnvironment,
	toolRunScheduleSweep,
	toolNotifyPush,
}

func knownTool(name string) bool {
	for _, n := range toolNames {
		if n == name {
			return true
		}
	}
	return false
}

type toolDef struct {
	description string
	options     []mcp.ToolOption
	handler     func(c *APIClient) server.ToolHandlerFunc
}

var servicesParam = mcp.WithString("services",
	mcp.Description(`JSON array of services, e.g. [{"repo":"owner/name","branch":"main","buildspec":"buildspec.yml"}]`))

var toolDefs = map[string]toolDef{
	toolListEnvironments: {
		description: "List all preview environments with their status, schedule and services.",
		options:     []mcp.ToolOption{mcp.WithReadOnlyHintAnnotation(true)},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return c.call(ctx, req, http.MethodGet, "/api/v1/envs", nil, nil)
			}
		},
	},
	toolCreateEnvironment: {
		description: "Create a preview environment. The first service identifies it. Omitting stop_time stops it daily at 18:00; an empty stop_time disables auto-stop.",
		options: []mcp.ToolOption{
			servicesParam,
			mcp.WithString("repo", mcp.Description("Single-service form: repository as owner/name")),
			mcp.WithString("branch", mcp.Description("Single-service form: branch")),
			mcp.WithString("alias", mcp.Description("Display name")),
			mcp.WithString("stop_time", mcp.Description("Daily stop time HH:MM, or empty to disable")),
			mcp.WithString("start_time", mcp.Description("Daily start time HH:MM")),
			mcp.WithDestructiveHintAnnotation(false),
		},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := req.GetArguments()
				body, err := serviceBody(args)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				for _, k := range []string{"alias", "stop_time", "start_time"} {
					if v, ok := args[k]; ok {
						body[k] = fmt.Sprint(v)
					}
				}
				return c.call(ctx, req, http.MethodPost, "/api/v1/envs", nil, body)
			}
		},
	},
	toolDeleteEnvironment: {
		description: "Delete a preview environment and its stack, addressed by stack_id or by repo and branch.",
		options: []mcp.ToolOption{
			mcp.WithString("stack_id", mcp.Description("Backend stack id or name")),
			mcp.WithString("repo", mcp.Description("Repository of the environment key")),
			mcp.WithString("branch", mcp.Description("Branch of the environment key")),
			mcp.WithBoolean("archive", mcp.Description("Keep the record as ARCHIVED")),
			mcp.WithDestructiveHintAnnotation(true),
		},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				q := stringArgs(req.GetArguments(), "stack_id", "repo", "branch")
				if v, ok := req.GetArguments()["archive"].(bool); ok {
					q.Set("archive", strconv.FormatBool(v))
				}
				return c.call(ctx, req, http.MethodDelete, "/api/v1/envs", q, nil)
			}
		},
	},
	toolDeployEnvironment: {
		description: "Upload the current source of every service of an environment, addressed by repo and branch or by stack_name and services.",
		options: []mcp.ToolOption{
			mcp.WithString("repo", mcp.Description("Repository of the environment key")),
			mcp.WithString("branch", mcp.Description("Branch of the environment key")),
			mcp.WithString("stack_name", mcp.Description("Backend stack name")),
			servicesParam,
			mcp.WithIdempotentHintAnnotation(true),
		},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := req.GetArguments()
				body := map[string]any{}
				for k, v := range stringArgs(args, "repo", "branch", "stack_name") {
					body[k] = v[0]
				}
				if raw, ok := args["services"]; ok {
					services, err := parseServices(raw)
					if err != nil {
						return mcp.NewToolResultError(err.Error()), nil
					}
					body["services"] = services
				}
				return c.call(ctx, req, http.MethodPost, "/api/v1/deploy", nil, body)
			}
		},
	},
	toolRunScheduleSweep: {
		description: "Apply the stop and start schedules now, for the current hour or the given hour (0-23).",
		options: []mcp.ToolOption{
			mcp.WithNumber("hour", mcp.Description("Hour of day to sweep for")),
		},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				body := map[string]any{}
				if v, ok := req.GetArguments()["hour"].(float64); ok {
					body["hour"] = int(v)
				}
				return c.call(ctx, req, http.MethodPost, "/api/v1/sweep", nil, body)
			}
		},
	},
	toolNotifyPush: {
		description: "Report a push to a branch. The environment tracking it, if any, is redeployed.",
		options: []mcp.ToolOption{
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/name")),
			mcp.WithString("branch", mcp.Required(), mcp.Description("Pushed branch")),
		},
		handler: func(c *APIClient) server.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := stringArgs(req.GetArguments(), "repo", "branch")
				if args.Get("repo") == "" || args.Get("branch") == "" {
					return mcp.NewToolResultError("repo and branch are required"), nil
				}
				return c.push(ctx, req, args.Get("repo"), args.Get("branch"))
			}
		},
	},
}

// BuildTools returns the enabled tools bound to client.
func BuildTools(cfg *Config, client *APIClient) []server.ServerTool {
	var tools []server.ServerTool
	for _, name := range toolNames {
		def := toolDefs[name]
		override := cfg.Tools[name]
		if override.Disabled {
			continue
		}
		desc := def.description
		if override.Description != "" {
			desc = override.Description
		}

		opts := append([]mcp.ToolOption{mcp.WithDescription(desc)}, def.options...)
		tools = append(tools, server.ServerTool{
			Tool:    mcp.NewTool(name, opts...),
			Handler: def.handler(client),
		})
	}
	return tools
}

func stringArgs(args map[string]any, keys ...string) url.Values {
	q := url.Values{}
	for _, k := range keys {
		if v, ok := args[k]; ok && v != nil && fmt.Sprint(v) != "" {
			q.Set(k, fmt.Sprint(v))
		}
	}
	return q
}

// serviceBody builds the create body from either the services list or the
// single repo and branch pair.
func serviceBody(args map[string]any) (map[string]any, error) {
	if raw, ok := args["services"]; ok {
		services, err := parseServices(raw)
		if err != nil {
			return nil, err
		}
		return map[string]any{"services": services}, nil
	}
	q := stringArgs(args, "repo", "branch")
	if q.Get("repo") == "" || q.Get("branch") == "" {
		return nil, fmt.Errorf("services or repo and branch are required")
	}
	return map[string]any{"repo": q.Get("repo"), "branch": q.Get("branch")}, nil
}

// parseServices accepts the list as a JSON string or as an already decoded array.
func parseServices(raw any) ([]map[string]any, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("services: %w", err)
		}
	}
	var services []map[string]any
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("services must be a JSON array of objects: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("services must not be empty")
	}
	return services, nil
}
