package outreachworker

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/founderline/outreach-ai-platform/cmd/mainconfig"
	appbootstrap "github.com/founderline/outreach-ai-platform/internal/app/bootstrap"
	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/observability/metrics"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

const shutdownGrace = 30 * time.Second

// Run starts the async outreach worker and blocks until ctx is canceled.
func Run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	if cfg == nil {
		return fmt.Errorf("outreach worker requires config")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.UseMemoryQueue {
		return fmt.Errorf("outreach worker cannot run when USE_MEMORY_QUEUE=true; run the consumer inside the API process instead")
	}

	awsConfig, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsConfig), cfg.DispatchQueueURL)
	jobStore := conversation.NewJobStore(
		dynamodb.NewFromConfig(awsConfig),
		cfg.OutreachJobsTable,
		cfg.OutreachJobsTTL,
		logger.Component("jobstore"),
	)

	llm, model, closeLLM, err := appbootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLLM()

	tg, err := appbootstrap.BuildTelegramStack(cfg, logger)
	if err != nil {
		return err
	}
	tg.Poller.Start()

	redisClient := appbootstrap.BuildRedisClient(ctx, cfg, logger, true)
	transcripts := appbootstrap.BuildTranscriptStore(redisClient, cfg)

	m := metrics.NewOutreachMetrics(prometheus.DefaultRegisterer)

	dispatcher, err := appbootstrap.BuildDispatcher(cfg, llm, model, tg.Messenger, transcripts, m, logger)
	if err != nil {
		return err
	}

	emailSender := appbootstrap.BuildEmailSender(ctx, cfg, logger)
	notifySvc := appbootstrap.BuildNotifyService(cfg, logger, emailSender)

	consumer := conversation.NewConsumer(
		dispatcher,
		queue,
		logger.Component("consumer"),
		conversation.WithConsumerWorkers(cfg.WorkerCount),
		conversation.WithJobUpdater(jobStore),
		conversation.WithAgreementNotifier(notifySvc),
	)

	logger.Info("outreach worker started",
		"queue_url", cfg.DispatchQueueURL,
		"jobs_table", cfg.OutreachJobsTable,
		"workers", cfg.WorkerCount,
	)

	<-ctx.Done()
	logger.Info("outreach worker shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := consumer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("consumer shutdown incomplete", "error", err)
	}
	if err := tg.Poller.Stop(shutdownCtx); err != nil {
		logger.Warn("poller shutdown incomplete", "error", err)
	}
	return nil
}
