package bootstrap

import (
	"fmt"

	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/telegram"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// TelegramStack bundles the messaging pieces that share one bot token.
type TelegramStack struct {
	Client    *telegram.Client
	Broker    *telegram.Broker
	Poller    *telegram.Poller
	Messenger *telegram.Messenger
}

// BuildTelegramStack wires the Bot API client, reply broker, and poller. The
// poller is not started; the caller owns its lifecycle.
func BuildTelegramStack(cfg *appconfig.Config, logger *logging.Logger) (*TelegramStack, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("bootstrap: TELEGRAM_BOT_TOKEN is required")
	}

	client, err := telegram.New(telegram.Config{
		BaseURL:    cfg.TelegramBaseURL,
		BotToken:   cfg.TelegramBotToken,
		MaxRetries: cfg.TelegramAPIRetries,
		Backoff:    cfg.TelegramRetryBackoff,
		Logger:     logger.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: telegram client: %w", err)
	}

	broker := telegram.NewBroker(logger.Component("telegram_broker"))
	poller := telegram.NewPoller(client, broker, logger.Component("telegram_poller"), cfg.TelegramPollTimeout)
	messenger := telegram.NewMessenger(client, broker, logger.Component("telegram"))

	return &TelegramStack{
		Client:    client,
		Broker:    broker,
		Poller:    poller,
		Messenger: messenger,
	}, nil
}
