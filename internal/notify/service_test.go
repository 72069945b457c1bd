package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

type capturingSender struct {
	messages []EmailMessage
	err      error
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func sampleTranscript() []conversation.Turn {
	return []conversation.Turn{
		{Speaker: conversation.SpeakerAgent, Text: "Hi, check out our tool!", At: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Speaker: conversation.SpeakerLead, Text: "Sure, I'd love a <demo>", At: time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC)},
	}
}

func TestNotifyAgreementSendsTranscriptEmail(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, FounderContact{Email: "founder@example.com", Name: "Alex"}, logging.Default())

	lead := leads.MatchedLead{ID: "lead-1", Handle: "@dana", Description: "gym owner"}
	if err := svc.NotifyAgreement(context.Background(), "job-1", lead, sampleTranscript()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.To != "founder@example.com" || msg.ToName != "Alex" {
		t.Errorf("unexpected recipient: %+v", msg)
	}
	if !strings.Contains(msg.Subject, "@dana") {
		t.Errorf("subject missing lead handle: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "job-1") || !strings.Contains(msg.Body, "Sure, I'd love a <demo>") {
		t.Errorf("body missing transcript: %q", msg.Body)
	}
	if !strings.Contains(msg.HTML, "&lt;demo&gt;") {
		t.Errorf("HTML transcript must escape user text: %q", msg.HTML)
	}
}

func TestNotifyAgreementSkipsWhenUnconfigured(t *testing.T) {
	t.Run("nil sender", func(t *testing.T) {
		svc := NewService(nil, FounderContact{Email: "founder@example.com"}, logging.Default())
		if err := svc.NotifyAgreement(context.Background(), "job-1", leads.MatchedLead{ID: "lead-1"}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("no founder email", func(t *testing.T) {
		sender := &capturingSender{}
		svc := NewService(sender, FounderContact{}, logging.Default())
		if err := svc.NotifyAgreement(context.Background(), "job-1", leads.MatchedLead{ID: "lead-1"}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sender.messages) != 0 {
			t.Fatalf("expected no email, got %d", len(sender.messages))
		}
	})
}

func TestNotifyAgreementPropagatesSendFailure(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	svc := NewService(sender, FounderContact{Email: "founder@example.com"}, logging.Default())

	err := svc.NotifyAgreement(context.Background(), "job-1", leads.MatchedLead{ID: "lead-1"}, nil)
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestNotifyAgreementFallsBackToLeadID(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, FounderContact{Email: "founder@example.com"}, logging.Default())

	if err := svc.NotifyAgreement(context.Background(), "job-1", leads.MatchedLead{ID: "lead-9"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.messages[0].Subject, "lead-9") {
		t.Errorf("subject should fall back to lead ID: %q", sender.messages[0].Subject)
	}
}
