package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// FounderContact is where agreement notifications go.
type FounderContact struct {
	Email string
	Name  string
}

// Service sends founder notifications for outreach outcomes.
type Service struct {
	email   EmailSender
	founder FounderContact
	logger  *logging.Logger
}

var _ conversation.AgreementNotifier = (*Service)(nil)

// NewService creates a notification service. A nil email sender disables
// delivery but keeps the service safe to call.
func NewService(email EmailSender, founder FounderContact, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:   email,
		founder: founder,
		logger:  logger,
	}
}

// NotifyAgreement emails the founder when a lead agrees to a meeting,
// including the full conversation transcript.
func (s *Service) NotifyAgreement(ctx context.Context, jobID string, lead leads.MatchedLead, transcript []conversation.Turn) error {
	if s.email == nil || s.founder.Email == "" {
		s.logger.Debug("notify: founder email not configured, skipping agreement notification", "lead_id", lead.ID)
		return nil
	}

	subject := fmt.Sprintf("Lead %s agreed to a meeting", displayHandle(lead))

	var body strings.Builder
	fmt.Fprintf(&body, "Good news! A lead from dispatch job %s agreed to meet.\n\n", jobID)
	fmt.Fprintf(&body, "Lead: %s\n", displayHandle(lead))
	if lead.Description != "" {
		fmt.Fprintf(&body, "About: %s\n", lead.Description)
	}
	body.WriteString("\nTranscript:\n")
	for _, turn := range transcript {
		fmt.Fprintf(&body, "[%s] %s: %s\n", turn.At.Format(time.RFC3339), turn.Speaker, turn.Text)
	}
	body.WriteString("\nReply to the lead directly to schedule the meeting.\n")

	msg := EmailMessage{
		To:      s.founder.Email,
		ToName:  s.founder.Name,
		Subject: subject,
		Body:    body.String(),
		HTML:    renderTranscriptHTML(jobID, lead, transcript),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: agreement notification failed: %w", err)
	}

	s.logger.Info("founder notified of agreement", "job_id", jobID, "lead_id", lead.ID)
	return nil
}

func displayHandle(lead leads.MatchedLead) string {
	if lead.Handle != "" {
		return lead.Handle
	}
	return lead.ID
}

func renderTranscriptHTML(jobID string, lead leads.MatchedLead, transcript []conversation.Turn) string {
	var sb strings.Builder
	sb.WriteString("<h2>Lead agreed to a meeting</h2>")
	fmt.Fprintf(&sb, "<p><strong>Lead:</strong> %s</p>", html.EscapeString(displayHandle(lead)))
	if lead.Description != "" {
		fmt.Fprintf(&sb, "<p><strong>About:</strong> %s</p>", html.EscapeString(lead.Description))
	}
	fmt.Fprintf(&sb, "<p><strong>Dispatch job:</strong> %s</p>", html.EscapeString(jobID))
	sb.WriteString("<h3>Transcript</h3><ul>")
	for _, turn := range transcript {
		fmt.Fprintf(&sb, "<li><strong>%s:</strong> %s</li>",
			html.EscapeString(string(turn.Speaker)), html.EscapeString(turn.Text))
	}
	sb.WriteString("</ul>")
	return sb.String()
}
