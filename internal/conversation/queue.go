package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/founderline/outreach-ai-platform/internal/leads"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// DispatchJob is the unit of work placed on the outreach queue: one campaign
// fan-out to its matched leads.
type DispatchJob struct {
	ID              string              `json:"id"`
	CampaignSummary string              `json:"campaign_summary"`
	Leads           []leads.MatchedLead `json:"leads"`
	EnqueuedAt      time.Time           `json:"enqueued_at"`
}

func encodeDispatchJob(job DispatchJob) (DispatchJob, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	body, err := json.Marshal(job)
	if err != nil {
		return DispatchJob{}, "", fmt.Errorf("conversation: failed to encode dispatch job: %w", err)
	}
	return job, string(body), nil
}

func decodeDispatchJob(body string) (DispatchJob, error) {
	var job DispatchJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return DispatchJob{}, fmt.Errorf("conversation: failed to decode dispatch job: %w", err)
	}
	if job.ID == "" {
		return DispatchJob{}, fmt.Errorf("conversation: dispatch job missing id")
	}
	return job, nil
}
