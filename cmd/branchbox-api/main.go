package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/branchbox/internal/api"
	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/config"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/db"
	"github.com/edvin/branchbox/internal/github"
	"github.com/edvin/branchbox/internal/logging"
	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/model"
	"github.com/edvin/branchbox/internal/template"
	"github.com/edvin/branchbox/migrations"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("branchbox-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.CoreDatabaseURL, migrations.Core, "core"); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()
	metrics.RegisterPgxPoolMetrics(corePool)

	awsCfg, err := cloud.LoadConfig(ctx, cloud.Options{
		Region:          cfg.AWSRegion,
		EndpointURL:     cfg.AWSEndpointURL,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load aws config")
	}
	clients := cloud.NewClients(awsCfg, cfg.CloudFormationRoleARN, cfg.CredentialParamPrefix)

	services := core.NewServices(logger, buildDeps(cfg, corePool, clients))
	if cfg.AllowAnonymous && len(cfg.APIKeyHashes) == 0 {
		logger.Warn().Msg("API key authentication disabled")
	}

	srv := api.NewServer(logger, services, corePool, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting branchbox API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func buildDeps(cfg *config.Config, pool core.DB, clients *cloud.Clients) core.Deps {
	deps := core.Deps{
		DB:          pool,
		Stacks:      clients.Stacks,
		Artifacts:   clients.Artifacts,
		Source:      github.NewHost(cfg.GitHubAPIURL),
		Credentials: clients.Credentials,
		Exchanger:   github.NewApp(cfg.GitHubAPIURL),
		Generator: template.NewGenerator(template.Options{
			PollSourceChanges: cfg.PipelinePollSource,
			InstanceType:      cfg.InstanceType,
		}),
		FallbackCredentials: model.GitHubCredentials{
			AppID:          cfg.GitHubAppID,
			InstallationID: cfg.GitHubInstallationID,
			PrivateKey:     cfg.GitHubPrivateKey,
		},
		TokenTTL:          cfg.GitHubTokenTTL,
		DeployConcurrency: cfg.DeployConcurrency,
		BackendTimeout:    cfg.BackendTimeout,
	}
	// A typed nil would make the interface non-nil.
	if cfg.ScheduleSuspendCompute {
		deps.Instances = clients.Instances
	}
	return deps
}
