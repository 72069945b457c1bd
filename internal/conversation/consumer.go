package conversation

import (
	"context"
	"sync"

	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

const (
	defaultConsumerWorkers  = 2
	defaultReceiveWait      = 2 // seconds
	defaultReceiveMax       = 5 // messages
	maxReceiveWaitSeconds   = 20
	maxReceiveBatchMessages = 10
)

// AgreementNotifier is told about every lead that agrees to meet the founder.
type AgreementNotifier interface {
	NotifyAgreement(ctx context.Context, jobID string, lead leads.MatchedLead, transcript []Turn) error
}

type consumerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	notifier         AgreementNotifier
	jobs             JobUpdater
}

// ConsumerOption configures the queue consumer.
type ConsumerOption func(*consumerConfig)

// WithConsumerWorkers overrides the number of queue polling goroutines.
func WithConsumerWorkers(workers int) ConsumerOption {
	return func(cfg *consumerConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for ReceiveMessage calls.
func WithReceiveWaitSeconds(seconds int) ConsumerOption {
	return func(cfg *consumerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWaitSeconds {
			seconds = maxReceiveWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) ConsumerOption {
	return func(cfg *consumerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchMessages {
			size = maxReceiveBatchMessages
		}
		cfg.receiveBatchSize = size
	}
}

// WithJobUpdater enables dispatch job status tracking.
func WithJobUpdater(jobs JobUpdater) ConsumerOption {
	return func(cfg *consumerConfig) {
		cfg.jobs = jobs
	}
}

// WithAgreementNotifier enables founder notifications for agreed leads.
func WithAgreementNotifier(n AgreementNotifier) ConsumerOption {
	return func(cfg *consumerConfig) {
		cfg.notifier = n
	}
}

// Consumer pulls dispatch jobs off the queue and fans each one out through
// the dispatcher. One consumer can process multiple jobs concurrently.
type Consumer struct {
	dispatcher *Dispatcher
	queue      queueClient
	logger     *logging.Logger

	cfg consumerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer starts the polling goroutines immediately. Call Shutdown to
// stop them.
func NewConsumer(dispatcher *Dispatcher, queue queueClient, logger *logging.Logger, opts ...ConsumerOption) *Consumer {
	if dispatcher == nil {
		panic("conversation: dispatcher cannot be nil")
	}
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := consumerConfig{
		workers:          defaultConsumerWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Consumer{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		c.wg.Add(1)
		go c.runWorker(i + 1)
	}

	return c
}

// Shutdown stops the polling goroutines and waits for in-flight jobs.
func (c *Consumer) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Consumer) runWorker(id int) {
	defer c.wg.Done()
	log := &logging.Logger{Logger: c.logger.Logger.With("queue_worker", id)}

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messages, err := c.queue.Receive(c.ctx, c.cfg.receiveBatchSize, c.cfg.receiveWaitSecs)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			log.Error("queue receive failed", "error", err)
			continue
		}

		for _, msg := range messages {
			c.handleMessage(log, msg)
		}
	}
}

func (c *Consumer) handleMessage(log *logging.Logger, msg queueMessage) {
	job, err := decodeDispatchJob(msg.Body)
	if err != nil {
		// Poison message: drop it so it does not cycle forever.
		log.Error("dropping malformed dispatch job", "message_id", msg.ID, "error", err)
		c.deleteMessage(msg)
		return
	}

	log = &logging.Logger{Logger: log.Logger.With("job_id", job.ID)}
	log.Info("processing dispatch job", "leads", len(job.Leads))

	if c.cfg.jobs != nil {
		if err := c.cfg.jobs.MarkRunning(c.ctx, job.ID); err != nil {
			log.Warn("failed to mark job running", "error", err)
		}
	}

	handles := c.dispatcher.Dispatch(c.ctx, job.CampaignSummary, job.Leads)
	finished := c.dispatcher.Wait(c.ctx, handles)

	outcomes := make([]LeadOutcome, 0, len(finished))
	for _, h := range finished {
		outcome := LeadOutcome{
			LeadID:         h.LeadID(),
			ConversationID: h.ConversationID(),
			Status:         h.Status(),
			Turns:          len(h.History()),
		}
		if err := h.Err(); err != nil {
			outcome.ErrorMessage = err.Error()
		}
		outcomes = append(outcomes, outcome)

		if h.Status() == StatusAgreed && c.cfg.notifier != nil {
			if err := c.cfg.notifier.NotifyAgreement(c.ctx, job.ID, h.Lead(), h.History()); err != nil {
				log.Warn("failed to notify founder of agreement", "lead_id", h.LeadID(), "error", err)
			}
		}
	}

	if c.cfg.jobs != nil {
		if len(finished) < len(handles) {
			if err := c.cfg.jobs.MarkFailed(c.ctx, job.ID, "worker shut down before all conversations finished"); err != nil {
				log.Warn("failed to mark job failed", "error", err)
			}
		} else if err := c.cfg.jobs.MarkCompleted(c.ctx, job.ID, outcomes); err != nil {
			log.Warn("failed to mark job completed", "error", err)
		}
	}

	c.deleteMessage(msg)
	log.Info("dispatch job finished", "conversations", len(finished))
}

func (c *Consumer) deleteMessage(msg queueMessage) {
	// Use a background context so deletes still run during shutdown.
	if err := c.queue.Delete(context.Background(), msg.ReceiptHandle); err != nil {
		c.logger.Warn("failed to delete queue message", "message_id", msg.ID, "error", err)
	}
}
