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
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/config"
	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/db"
	"github.com/tarek/provision/internal/dns"
	"github.com/tarek/provision/internal/logging"
	"github.com/tarek/provision/internal/metrics"
	"github.com/tarek/provision/internal/provider"
	"github.com/tarek/provision/internal/workflow"
)

const taskQueue = "provision-tasks"

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

	if err := os.MkdirAll(cfg.ArtifactDir, 0o750); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ArtifactDir).Msg("failed to create artifact directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()
	metrics.RegisterPgxPoolMetrics(corePool)

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

	resolver := creds.NewResolver(corePool, creds.Defaults{
		CloudToken: cfg.HetznerAPIToken,
		SSHUser:    cfg.DefaultSSHUser,
		SSHPort:    cfg.DefaultSSHPort,
	})

	w := worker.New(tc, taskQueue, worker.Options{})

	// Register activities
	coreDBActivities := activity.NewCoreDB(corePool)
	w.RegisterActivity(coreDBActivities)

	cloudActivities := activity.NewCloud(resolver, provider.NewHCloud)
	w.RegisterActivity(cloudActivities)

	dnsActivities := activity.NewDNS(dns.NewGoDaddy(cfg.GoDaddyAPIKey, cfg.GoDaddyAPISecret, cfg.GoDaddyBaseURL))
	w.RegisterActivity(dnsActivities)

	remoteActivities := activity.NewRemote(corePool, resolver, cfg.ArtifactDir)
	w.RegisterActivity(remoteActivities)

	reconcileActivities := activity.NewReconcile(corePool, resolver, provider.NewHCloud)
	w.RegisterActivity(reconcileActivities)

	// Register workflows
	w.RegisterWorkflow(workflow.ProvisionRequestWorkflow)
	w.RegisterWorkflow(workflow.SyncProjectWorkflow)
	w.RegisterWorkflow(workflow.SyncAllProjectsWorkflow)
	w.RegisterWorkflow(workflow.PowerActionWorkflow)
	w.RegisterWorkflow(workflow.TestConnectionWorkflow)
	w.RegisterWorkflow(workflow.RunOperationWorkflow)

	if cfg.MetricsListenAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsListenAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
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

	// Register cron schedules. Errors for already-existing schedules are
	// ignored so that re-deploys do not fail.
	registerCronSchedules(ctx, tc, taskQueue, logger)

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

func registerCronSchedules(ctx context.Context, tc temporalclient.Client, taskQueue string, logger zerolog.Logger) {
	schedules := []cronSchedule{
		{
			id:       "resource-sync-cron",
			cron:     "0 */6 * * *",
			workflow: workflow.SyncAllProjectsWorkflow,
		},
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
