package telegram

import (
	"testing"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

func TestBrokerDeliversToChatSubscribers(t *testing.T) {
	broker := NewBroker(logging.Default())
	subA := broker.Subscribe(1)
	subB := broker.Subscribe(2)
	defer subA.Close()
	defer subB.Close()

	broker.Publish(1, conversation.IncomingMessage{Text: "for chat 1"})

	select {
	case msg := <-subA.Messages():
		if msg.Text != "for chat 1" {
			t.Errorf("unexpected message %q", msg.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber for chat 1 got nothing")
	}

	select {
	case msg := <-subB.Messages():
		t.Fatalf("chat 2 subscriber must not see chat 1 traffic, got %q", msg.Text)
	default:
	}
}

func TestBrokerFansOutToAllSubscribersOfAChat(t *testing.T) {
	broker := NewBroker(logging.Default())
	first := broker.Subscribe(1)
	second := broker.Subscribe(1)
	defer first.Close()
	defer second.Close()

	broker.Publish(1, conversation.IncomingMessage{Text: "hello"})

	for i, sub := range []*chatSubscription{first, second} {
		select {
		case msg := <-sub.Messages():
			if msg.Text != "hello" {
				t.Errorf("subscriber %d: unexpected message %q", i, msg.Text)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d got nothing", i)
		}
	}
}

func TestBrokerPublishWithoutSubscribersDropsMessage(t *testing.T) {
	broker := NewBroker(logging.Default())
	broker.Publish(99, conversation.IncomingMessage{Text: "nobody home"})
}

func TestBrokerClosedSubscriptionStopsReceiving(t *testing.T) {
	broker := NewBroker(logging.Default())
	sub := broker.Subscribe(1)
	sub.Close()
	sub.Close() // closing twice is safe

	broker.Publish(1, conversation.IncomingMessage{Text: "late"})

	if _, ok := <-sub.Messages(); ok {
		t.Fatal("closed subscription must not deliver messages")
	}
}

func TestBrokerDropsWhenSubscriberBufferFull(t *testing.T) {
	broker := NewBroker(logging.Default())
	sub := broker.Subscribe(1)
	defer sub.Close()

	for i := 0; i < subscriptionBuffer+5; i++ {
		broker.Publish(1, conversation.IncomingMessage{Text: "flood"})
	}

	received := 0
	for {
		select {
		case <-sub.Messages():
			received++
		default:
			if received != subscriptionBuffer {
				t.Fatalf("expected exactly %d buffered messages, got %d", subscriptionBuffer, received)
			}
			return
		}
	}
}
