package telegram

import (
	"sync"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

const subscriptionBuffer = 16

// Broker fans incoming messages out to per-chat subscribers. Messages for
// chats with no subscriber are dropped.
type Broker struct {
	logger *logging.Logger

	mu   sync.Mutex
	subs map[int64][]*chatSubscription
}

// NewBroker creates an empty broker.
func NewBroker(logger *logging.Logger) *Broker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Broker{
		logger: logger,
		subs:   make(map[int64][]*chatSubscription),
	}
}

// Subscribe registers interest in messages from one chat. The caller must
// Close the subscription when done.
func (b *Broker) Subscribe(chatID int64) *chatSubscription {
	sub := &chatSubscription{
		broker: b,
		chatID: chatID,
		ch:     make(chan conversation.IncomingMessage, subscriptionBuffer),
	}

	b.mu.Lock()
	b.subs[chatID] = append(b.subs[chatID], sub)
	b.mu.Unlock()

	return sub
}

// Publish delivers a message to every subscriber of its chat. Slow
// subscribers lose messages rather than block the poller. The lock is held
// through the sends so Close cannot close a channel mid-publish.
func (b *Broker) Publish(chatID int64, msg conversation.IncomingMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[chatID] {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn("dropping message for slow subscriber", "chat_id", chatID)
		}
	}
}

func (b *Broker) unsubscribe(sub *chatSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.chatID]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.subs, sub.chatID)
	} else {
		b.subs[sub.chatID] = subs
	}
}

// chatSubscription implements conversation.Subscription for one chat.
type chatSubscription struct {
	broker *Broker
	chatID int64
	ch     chan conversation.IncomingMessage

	closeOnce sync.Once
}

func (s *chatSubscription) Messages() <-chan conversation.IncomingMessage {
	return s.ch
}

func (s *chatSubscription) Close() {
	s.closeOnce.Do(func() {
		s.broker.unsubscribe(s)
		close(s.ch)
	})
}
