package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Resolution and delivery failures surfaced by Messenger implementations.
// Each is fatal to the conversation that hit it, never to its siblings.
var (
	// ErrRecipientNotFound indicates the platform has no account for the handle.
	ErrRecipientNotFound = errors.New("conversation: recipient not found")

	// ErrRecipientInvalid indicates the handle is malformed for the platform.
	ErrRecipientInvalid = errors.New("conversation: recipient handle invalid")

	// ErrRecipientNotUser indicates the handle resolves to a group, channel or
	// bot rather than an individual.
	ErrRecipientNotUser = errors.New("conversation: recipient is not an individual")

	// ErrBlocked indicates the recipient has blocked outbound messages.
	ErrBlocked = errors.New("conversation: recipient blocked sender")
)

// RateLimitedError reports a transport-level rate limit. RetryAfter is the
// platform-provided wait hint; coordination across conversations happens above
// this layer.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("conversation: rate limited, retry after %s", e.RetryAfter)
}

// Recipient is a resolved messaging-platform identity.
type Recipient struct {
	ID     int64
	Handle string
}

// IncomingMessage is a private message received from a subscribed recipient.
type IncomingMessage struct {
	From Recipient
	Text string
	At   time.Time
}

// Subscription is a scoped listener for incoming messages from one recipient.
// Close is idempotent and must release the listener on every exit path.
type Subscription interface {
	Messages() <-chan IncomingMessage
	Close()
}

// Messenger is the messaging port: resolve a handle, push text to a recipient,
// and subscribe to that recipient's private replies. Sends are never retried
// here.
type Messenger interface {
	ResolveRecipient(ctx context.Context, handle string) (Recipient, error)
	Send(ctx context.Context, to Recipient, text string) error
	SubscribeIncoming(to Recipient) (Subscription, error)
}
