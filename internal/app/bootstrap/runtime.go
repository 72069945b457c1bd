package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/founderline/outreach-ai-platform/cmd/mainconfig"
	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/notify"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, transcript persistence disabled", "error", err)
		return nil
	}
	return client
}

// BuildTranscriptStore wires optional Redis transcript persistence.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) conversation.TranscriptStore {
	if redisClient == nil || cfg == nil {
		return nil
	}
	return conversation.NewRedisTranscriptStore(redisClient, cfg.TranscriptTTL)
}

// BuildEmailSender picks the configured email provider. Returns nil when
// email is not configured; callers treat nil as notifications-disabled.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.NotifyEmailProvider {
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load aws config for SES, email disabled", "error", err)
			return nil
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil
		}
		return sender
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Info("sendgrid not configured, founder notifications disabled")
			return nil
		}
		return sender
	}
}

// BuildNotifyService wires founder notifications over the configured sender.
func BuildNotifyService(cfg *appconfig.Config, logger *logging.Logger, sender notify.EmailSender) *notify.Service {
	if cfg == nil {
		return nil
	}
	return notify.NewService(sender, notify.FounderContact{
		Email: cfg.FounderEmail,
		Name:  cfg.FounderName,
	}, logger)
}
