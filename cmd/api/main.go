package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/founderline/outreach-ai-platform/cmd/mainconfig"
	"github.com/founderline/outreach-ai-platform/internal/api/router"
	appbootstrap "github.com/founderline/outreach-ai-platform/internal/app/bootstrap"
	"github.com/founderline/outreach-ai-platform/internal/campaign"
	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/internal/observability/metrics"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting outreach-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	m := metrics.NewOutreachMetrics(registry)

	llm, model, closeLLM, err := appbootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	defer closeLLM()

	leadsRepo := buildLeadsRepo(ctx, cfg, logger)
	matcher := leads.NewMatcher(leadsRepo)
	summarizer := campaign.NewSummarizer(llm, model, logger.Component("summarizer"))

	redisClient := appbootstrap.BuildRedisClient(ctx, cfg, logger, true)
	transcripts := appbootstrap.BuildTranscriptStore(redisClient, cfg)

	var (
		jobStore  *conversation.JobStore
		publisher *conversation.Publisher
		consumer  *conversation.Consumer
	)

	if cfg.UseMemoryQueue {
		// Dev mode: dispatch jobs are consumed in-process.
		memQueue := conversation.NewMemoryQueue(0)
		publisher = conversation.NewPublisher(memQueue, logger.Component("publisher"))

		tg, err := appbootstrap.BuildTelegramStack(cfg, logger)
		if err != nil {
			logger.Error("failed to build telegram stack", "error", err)
			os.Exit(1)
		}
		tg.Poller.Start()
		defer tg.Poller.Stop(context.Background())

		dispatcher, err := appbootstrap.BuildDispatcher(cfg, llm, model, tg.Messenger, transcripts, m, logger)
		if err != nil {
			logger.Error("failed to build dispatcher", "error", err)
			os.Exit(1)
		}

		emailSender := appbootstrap.BuildEmailSender(ctx, cfg, logger)
		notifySvc := appbootstrap.BuildNotifyService(cfg, logger, emailSender)

		consumer = conversation.NewConsumer(
			dispatcher,
			memQueue,
			logger.Component("consumer"),
			conversation.WithConsumerWorkers(cfg.WorkerCount),
			conversation.WithAgreementNotifier(notifySvc),
		)
		logger.Info("using in-memory dispatch queue with inline consumer")
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sqsQueue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.DispatchQueueURL)
		publisher = conversation.NewPublisher(sqsQueue, logger.Component("publisher"))
		jobStore = conversation.NewJobStore(
			dynamodb.NewFromConfig(awsCfg),
			cfg.OutreachJobsTable,
			cfg.OutreachJobsTTL,
			logger.Component("jobstore"),
		)
	}

	var jobs conversation.JobRecorder
	if jobStore != nil {
		jobs = jobStore
	}
	campaignHandler := campaign.NewHandler(
		summarizer,
		matcher,
		publisher,
		jobs,
		transcripts,
		cfg.MaxLeadMatches,
		logger.Component("campaign"),
	)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadsRepo, logger.Component("leads")),
		CampaignHandler:    campaignHandler,
		StatsHandler:       campaign.NewStatsHandler(registry, logger.Component("stats")),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSOrigins,
		CampaignRateLimit:  cfg.CampaignRateLimit,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if consumer != nil {
		if err := consumer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("consumer shutdown incomplete", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildLeadsRepo(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) leads.Repository {
	if cfg.DatabaseURL == "" {
		logger.Info("no DATABASE_URL configured, using in-memory leads repository")
		return leads.NewInMemoryRepository()
	}
	repo, err := leads.NewPostgresRepositoryFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres, falling back to in-memory leads", "error", err)
		return leads.NewInMemoryRepository()
	}
	logger.Info("using postgres leads repository")
	return repo
}
