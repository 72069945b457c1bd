package conversation

import (
	"context"
	"fmt"

	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// Publisher enqueues campaign dispatch jobs for asynchronous processing by
// the outreach worker.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueDispatch publishes a dispatch job and returns its ID.
func (p *Publisher) EnqueueDispatch(ctx context.Context, campaignSummary string, matched []leads.MatchedLead) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if campaignSummary == "" {
		return "", fmt.Errorf("conversation: campaign summary cannot be empty")
	}
	if len(matched) == 0 {
		return "", fmt.Errorf("conversation: no leads to dispatch")
	}

	job, body, err := encodeDispatchJob(DispatchJob{
		CampaignSummary: campaignSummary,
		Leads:           matched,
	})
	if err != nil {
		return "", err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("conversation: failed to enqueue dispatch job: %w", err)
	}

	p.logger.Debug("dispatch job enqueued", "job_id", job.ID, "leads", len(job.Leads))
	return job.ID, nil
}
