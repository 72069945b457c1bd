package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/internal/notify"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

func leadFixture() leads.MatchedLead {
	return leads.MatchedLead{ID: "lead-1", Handle: "@dana"}
}

func TestBuildRedisClient(t *testing.T) {
	logger := logging.Default()

	t.Run("nil when no address configured", func(t *testing.T) {
		client := BuildRedisClient(context.Background(), &appconfig.Config{}, logger, false)
		assert.Nil(t, client)
	})

	t.Run("verified client against live server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &appconfig.Config{RedisAddr: mr.Addr()}

		client := BuildRedisClient(context.Background(), cfg, logger, true)
		require.NotNil(t, client)
		t.Cleanup(func() { _ = client.Close() })
	})

	t.Run("nil when ping fails", func(t *testing.T) {
		cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
		client := BuildRedisClient(context.Background(), cfg, logger, true)
		assert.Nil(t, client)
	})
}

func TestBuildTranscriptStore(t *testing.T) {
	assert.Nil(t, BuildTranscriptStore(nil, &appconfig.Config{}))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Default(), false)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	store := BuildTranscriptStore(client, &appconfig.Config{})
	assert.NotNil(t, store)
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.Default()

	t.Run("stub provider", func(t *testing.T) {
		cfg := &appconfig.Config{NotifyEmailProvider: "stub"}
		sender := BuildEmailSender(context.Background(), cfg, logger)
		assert.IsType(t, &notify.StubEmailSender{}, sender)
	})

	t.Run("sendgrid when key present", func(t *testing.T) {
		cfg := &appconfig.Config{SendGridAPIKey: "key", SendGridFromEmail: "noreply@example.com"}
		sender := BuildEmailSender(context.Background(), cfg, logger)
		assert.IsType(t, &notify.SendGridSender{}, sender)
	})

	t.Run("nil when nothing configured", func(t *testing.T) {
		sender := BuildEmailSender(context.Background(), &appconfig.Config{}, logger)
		assert.Nil(t, sender)
	})
}

func TestBuildNotifyService(t *testing.T) {
	cfg := &appconfig.Config{FounderEmail: "founder@example.com", FounderName: "Alex"}
	svc := BuildNotifyService(cfg, logging.Default(), nil)
	require.NotNil(t, svc)

	// Without a sender the service must still be safe to call.
	err := svc.NotifyAgreement(context.Background(), "job-1", leadFixture(), nil)
	assert.NoError(t, err)
}

func TestBuildTelegramStackRequiresToken(t *testing.T) {
	_, err := BuildTelegramStack(&appconfig.Config{}, logging.Default())
	require.Error(t, err)

	stack, err := BuildTelegramStack(&appconfig.Config{TelegramBotToken: "123:abc"}, logging.Default())
	require.NoError(t, err)
	assert.NotNil(t, stack.Client)
	assert.NotNil(t, stack.Broker)
	assert.NotNil(t, stack.Poller)
	assert.NotNil(t, stack.Messenger)
}
