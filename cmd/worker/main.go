package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	enumspb "go.temporal.io/api/enums/v1"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/branchbox/internal/activity"
	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/config"
	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/db"
	"github.com/edvin/branchbox/internal/logging"
	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/template"
	"github.com/edvin/branchbox/internal/workflow"
)

const taskQueue = "branchbox-lifecycle"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

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

	deps := core.Deps{
		DB:        corePool,
		Stacks:    clients.Stacks,
		Artifacts: clients.Artifacts,
		Generator: template.NewGenerator(template.Options{
			PollSourceChanges: cfg.PipelinePollSource,
			InstanceType:      cfg.InstanceType,
		}),
		DeployConcurrency: cfg.DeployConcurrency,
		BackendTimeout:    cfg.BackendTimeout,
	}
	if cfg.ScheduleSuspendCompute {
		deps.Instances = clients.Instances
	}
	services := core.NewServices(logger, deps)

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, taskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	w.RegisterActivity(activity.NewLifecycle(services.Schedule, services.Provision))

	w.RegisterWorkflow(workflow.ScheduleSweepWorkflow)
	w.RegisterWorkflow(workflow.SyncReadinessWorkflow)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", taskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	// Errors for already-existing schedules are ignored so that re-deploys
	// do not fail.
	registerCronSchedules(ctx, tc, taskQueue, cfg, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}

type cronSchedule struct {
	id       string
	cron     string
	workflow interface{}
	args     []interface{}
}

func registerCronSchedules(ctx context.Context, tc temporalclient.Client, taskQueue string, cfg *config.Config, logger zerolog.Logger) {
	schedules := []cronSchedule{
		{
			id:       "schedule-sweep-cron",
			cron:     cfg.SweepCron,
			workflow: workflow.ScheduleSweepWorkflow,
			args:     []interface{}{cfg.ScheduleUTCOffsetHours},
		},
	}
	if cfg.ReadinessSyncCron != "" {
		schedules = append(schedules, cronSchedule{
			id:       "readiness-sync-cron",
			cron:     cfg.ReadinessSyncCron,
			workflow: workflow.SyncReadinessWorkflow,
		})
	}

	scheduleClient := tc.ScheduleClient()

	for _, s := range schedules {
		_, err := scheduleClient.Create(ctx, temporalclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			Action: &temporalclient.ScheduleWorkflowAction{
				ID:        s.id,
				Workflow:  s.workflow,
				Args:      s.args,
				TaskQueue: taskQueue,
			},
			// A slow sweep must not run concurrently with the next one.
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		})
		if err != nil {
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "AlreadyExists") || strings.Contains(err.Error(), "already registered") {
				logger.Info().Str("id", s.id).Msg("cron schedule already exists, skipping")
			} else {
				logger.Fatal().Err(err).Str("id", s.id).Msg("failed to create cron schedule")
			}
		} else {
			logger.Info().Str("id", s.id).Str("cron", s.cron).Msg("created cron schedule")
		}
	}
}
