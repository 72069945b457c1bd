package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

func TestNewSendGridSenderRequiresAPIKey(t *testing.T) {
	if sender := NewSendGridSender(SendGridConfig{FromEmail: "noreply@example.com"}, logging.Default()); sender != nil {
		t.Fatal("expected nil sender without an API key")
	}
}

func TestNewSendGridSenderDefaultsFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "noreply@example.com"}, logging.Default())
	if sender == nil {
		t.Fatal("expected a sender")
	}
	if sender.fromName != "Outreach AI" {
		t.Errorf("expected default from name, got %q", sender.fromName)
	}
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSenderSend(t *testing.T) {
	fake := &fakeSES{}
	sender := newSESSender(fake, SESConfig{FromEmail: "noreply@example.com"}, logging.Default())

	msg := EmailMessage{
		To:      "founder@example.com",
		Subject: "Lead agreed",
		Body:    "plain transcript",
		HTML:    "<p>transcript</p>",
	}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("expected 1 send, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if got := aws.ToString(in.FromEmailAddress); got != "Outreach AI <noreply@example.com>" {
		t.Errorf("unexpected from address %q", got)
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "founder@example.com" {
		t.Errorf("unexpected destination: %+v", in.Destination)
	}
	body := in.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "plain transcript" {
		t.Errorf("unexpected text body %q", aws.ToString(body.Text.Data))
	}
	if aws.ToString(body.Html.Data) != "<p>transcript</p>" {
		t.Errorf("unexpected html body %q", aws.ToString(body.Html.Data))
	}
}

func TestSESSenderSendFailure(t *testing.T) {
	fake := &fakeSES{err: errors.New("mailbox full")}
	sender := newSESSender(fake, SESConfig{FromEmail: "noreply@example.com"}, logging.Default())

	if err := sender.Send(context.Background(), EmailMessage{To: "founder@example.com"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	sender := NewStubEmailSender(logging.Default())
	msg := EmailMessage{To: "founder@example.com", Subject: "test", Body: "body"}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
