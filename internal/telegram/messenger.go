package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// Messenger adapts the Bot API client and broker to the conversation
// messaging port.
type Messenger struct {
	client *Client
	broker *Broker
	logger *logging.Logger
}

var _ conversation.Messenger = (*Messenger)(nil)

// NewMessenger wires a messenger over a client and broker. The broker must
// be fed by a running Poller for SubscribeIncoming to see replies.
func NewMessenger(client *Client, broker *Broker, logger *logging.Logger) *Messenger {
	if client == nil {
		panic("telegram: client cannot be nil")
	}
	if broker == nil {
		panic("telegram: broker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Messenger{
		client: client,
		broker: broker,
		logger: logger,
	}
}

// ResolveRecipient looks a @username up and verifies it is a private chat.
func (m *Messenger) ResolveRecipient(ctx context.Context, handle string) (conversation.Recipient, error) {
	normalized := normalizeHandle(handle)
	if normalized == "" {
		return conversation.Recipient{}, fmt.Errorf("telegram: %w: empty handle", conversation.ErrRecipientInvalid)
	}

	chat, err := m.client.GetChat(ctx, normalized)
	if err != nil {
		return conversation.Recipient{}, mapAPIError(err)
	}
	if chat.Type != "private" {
		return conversation.Recipient{}, fmt.Errorf("telegram: %s is a %s chat: %w", normalized, chat.Type, conversation.ErrRecipientNotUser)
	}

	return conversation.Recipient{ID: chat.ID, Handle: chat.Username}, nil
}

// Send delivers a text message to the recipient's private chat.
func (m *Messenger) Send(ctx context.Context, to conversation.Recipient, text string) error {
	if to.ID == 0 {
		return fmt.Errorf("telegram: %w: recipient has no chat id", conversation.ErrRecipientInvalid)
	}
	if _, err := m.client.SendMessage(ctx, to.ID, text); err != nil {
		return mapAPIError(err)
	}
	return nil
}

// SubscribeIncoming returns a subscription for the recipient's replies.
func (m *Messenger) SubscribeIncoming(to conversation.Recipient) (conversation.Subscription, error) {
	if to.ID == 0 {
		return nil, fmt.Errorf("telegram: %w: recipient has no chat id", conversation.ErrRecipientInvalid)
	}
	return m.broker.Subscribe(to.ID), nil
}

// normalizeHandle accepts "name", "@name", or "https://t.me/name" and
// returns "@name".
func normalizeHandle(handle string) string {
	h := strings.TrimSpace(handle)
	h = strings.TrimPrefix(h, "https://t.me/")
	h = strings.TrimPrefix(h, "t.me/")
	h = strings.TrimPrefix(h, "@")
	if h == "" {
		return ""
	}
	return "@" + h
}

// mapAPIError converts Bot API failures into the messaging port's errors.
func mapAPIError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	desc := strings.ToLower(apiErr.Description)
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return &conversation.RateLimitedError{RetryAfter: apiErr.RetryAfter}
	case strings.Contains(desc, "chat not found"), strings.Contains(desc, "user not found"):
		return fmt.Errorf("telegram: %s: %w", apiErr.Description, conversation.ErrRecipientNotFound)
	case strings.Contains(desc, "bot was blocked"), strings.Contains(desc, "user is deactivated"):
		return fmt.Errorf("telegram: %s: %w", apiErr.Description, conversation.ErrBlocked)
	default:
		return err
	}
}
