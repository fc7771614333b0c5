package mcpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server is the MCP server that proxies tool calls to the REST API.
type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *Config
}

// New creates the MCP server. Tools are served over streamable HTTP at /mcp.
func New(cfg *Config, logger zerolog.Logger) *Server {
	tools := BuildTools(cfg, NewAPIClient(cfg, logger))

	mcpSrv := server.NewMCPServer(
		"branchbox",
		"1.0.0",
		server.WithInstructions(cfg.Instructions),
	)
	mcpSrv.AddTools(tools...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv, server.WithEndpointPath("/")))

	logger.Info().Int("tools", len(tools)).Msg("mounted MCP endpoint at /mcp")

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
