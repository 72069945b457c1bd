package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

const (
	defaultPollTimeout = 30 * time.Second
	pollErrorBackoff   = 2 * time.Second
)

// Poller long-polls getUpdates and routes private text messages to the
// broker. Only one poller may run per bot token; Telegram rejects concurrent
// getUpdates calls.
type Poller struct {
	client *Client
	broker *Broker
	logger *logging.Logger

	pollTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. Call Start to begin consuming updates.
func NewPoller(client *Client, broker *Broker, logger *logging.Logger, pollTimeout time.Duration) *Poller {
	if client == nil {
		panic("telegram: client cannot be nil")
	}
	if broker == nil {
		panic("telegram: broker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		client:      client,
		broker:      broker,
		logger:      logger,
		pollTimeout: pollTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the polling goroutine.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop cancels polling and waits for the goroutine to exit.
func (p *Poller) Stop(ctx context.Context) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	var offset int64
	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		updates, err := p.client.GetUpdates(p.ctx, offset, int(p.pollTimeout.Seconds()))
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			p.logger.Error("getUpdates failed", "error", err)
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(pollErrorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.route(update)
		}
	}
}

func (p *Poller) route(update Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if msg.Chat.Type != "private" {
		return
	}
	if msg.From != nil && msg.From.IsBot {
		return
	}

	from := conversation.Recipient{ID: msg.Chat.ID, Handle: msg.Chat.Username}
	p.broker.Publish(msg.Chat.ID, conversation.IncomingMessage{
		From: from,
		Text: msg.Text,
		At:   msg.SentAt(),
	})
}
