package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/api/docs"
	"github.com/edvin/branchbox/internal/api/handler"
	mw "github.com/edvin/branchbox/internal/api/middleware"
	"github.com/edvin/branchbox/internal/config"
	"github.com/edvin/branchbox/internal/core"
)

// Pinger reports whether the registry database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	db       Pinger
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, services *core.Services, db Pinger, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		db:       db,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

// tokens opens a per-request token cache on the credential broker.
func (s *Server) tokens() core.TokenSource {
	return s.services.Credentials.NewSession()
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	// Signed by the source host, not by an API key.
	webhook := handler.NewWebhook(s.services.Push, s.tokens, s.cfg.GitHubWebhookSecret)
	s.router.Post("/webhooks/github", webhook.GitHub)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.cfg.APIKeyHashes))

		env := handler.NewEnvironment(s.services.Environment, s.services.Provision)
		r.Get("/envs", env.List)
		r.Post("/envs", env.Create)
		r.Delete("/envs", env.Delete)

		deploy := handler.NewDeploy(s.services.Deploy, s.tokens)
		r.Post("/deploy", deploy.Deploy)

		sweep := handler.NewSweep(s.services.Schedule, s.cfg.ScheduleUTCOffsetHours)
		r.Post("/sweep", sweep.Run)

		sourceCfg := handler.NewSourceConfig(s.services.Credentials)
		r.Get("/config", sourceCfg.Get)
		r.Put("/config", sourceCfg.Update)

		repos := handler.NewRepository(s.services.Repository, s.tokens)
		r.Get("/repos", repos.List)
		r.Get("/repos/{owner}/{repo}/branches", repos.Branches)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if err := s.db.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>BranchBox API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
