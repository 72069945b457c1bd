package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// recordingQueue wraps a MemoryQueue so tests can observe deletes.
type recordingQueue struct {
	*MemoryQueue
	mu      sync.Mutex
	deleted []string
}

func (q *recordingQueue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	q.deleted = append(q.deleted, receiptHandle)
	q.mu.Unlock()
	return q.MemoryQueue.Delete(ctx, receiptHandle)
}

func (q *recordingQueue) deleteCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.deleted)
}

type recordingJobs struct {
	mu        sync.Mutex
	running   []string
	completed map[string][]LeadOutcome
	failed    map[string]string
	done      chan struct{}
}

func newRecordingJobs() *recordingJobs {
	return &recordingJobs{
		completed: map[string][]LeadOutcome{},
		failed:    map[string]string{},
		done:      make(chan struct{}, 4),
	}
}

func (r *recordingJobs) MarkRunning(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = append(r.running, jobID)
	return nil
}

func (r *recordingJobs) MarkCompleted(_ context.Context, jobID string, outcomes []LeadOutcome) error {
	r.mu.Lock()
	r.completed[jobID] = outcomes
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingJobs) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	r.mu.Lock()
	r.failed[jobID] = errMsg
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingJobs) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("job never reached a terminal state")
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyAgreement(_ context.Context, jobID string, lead leads.MatchedLead, _ []Turn) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, jobID+"/"+lead.ID)
	return nil
}

func newTestConsumer(t *testing.T, llm *scriptedLLM, messenger *fakeMessenger, queue queueClient, opts ...ConsumerOption) *Consumer {
	t.Helper()
	engine := NewEngine(llm, messenger, logging.Default(), WithReplyTimeout(50*time.Millisecond))
	dispatcher := NewDispatcher(engine, logging.Default(), nil)
	base := []ConsumerOption{WithConsumerWorkers(1), WithReceiveWaitSeconds(1), WithReceiveBatchSize(1)}
	consumer := NewConsumer(dispatcher, queue, logging.Default(), append(base, opts...)...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = consumer.Shutdown(ctx)
	})
	return consumer
}

func TestConsumerProcessesDispatchJob(t *testing.T) {
	queue := &recordingQueue{MemoryQueue: NewMemoryQueue(4)}
	jobs := newRecordingJobs()
	llm := &scriptedLLM{script: []*string{text("Intro")}}
	messenger := newFakeMessenger()
	newTestConsumer(t, llm, messenger, queue, WithJobUpdater(jobs))

	publisher := NewPublisher(queue, logging.Default())
	jobID, err := publisher.EnqueueDispatch(context.Background(), "a product", []leads.MatchedLead{testLead()})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	jobs.waitDone(t)

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	if len(jobs.running) != 1 || jobs.running[0] != jobID {
		t.Fatalf("expected job marked running, got %v", jobs.running)
	}
	outcomes, ok := jobs.completed[jobID]
	if !ok {
		t.Fatalf("expected job marked completed, failed=%v", jobs.failed)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].LeadID != "lead-1" || outcomes[0].Status != StatusTimedOut {
		t.Fatalf("unexpected outcome: %+v", outcomes[0])
	}
	if outcomes[0].Turns != 1 {
		t.Fatalf("timed-out conversation should hold only the intro, got %d turns", outcomes[0].Turns)
	}
}

func TestConsumerNotifiesFounderOnAgreement(t *testing.T) {
	queue := &recordingQueue{MemoryQueue: NewMemoryQueue(4)}
	jobs := newRecordingJobs()
	notifier := &recordingNotifier{}
	llm := &scriptedLLM{script: []*string{
		text("Intro"),
		text("Great, talk soon!"),
		text("AGREED"),
	}}
	messenger := newFakeMessenger()
	newTestConsumer(t, llm, messenger, queue, WithJobUpdater(jobs), WithAgreementNotifier(notifier))

	publisher := NewPublisher(queue, logging.Default())
	jobID, err := publisher.EnqueueDispatch(context.Background(), "a product", []leads.MatchedLead{testLead()})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	messenger.reply(t, "Sure, set it up!")
	jobs.waitDone(t)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.calls) != 1 || notifier.calls[0] != jobID+"/lead-1" {
		t.Fatalf("expected one agreement notification, got %v", notifier.calls)
	}
}

func TestConsumerDropsMalformedJob(t *testing.T) {
	queue := &recordingQueue{MemoryQueue: NewMemoryQueue(4)}
	llm := &scriptedLLM{}
	messenger := newFakeMessenger()
	newTestConsumer(t, llm, messenger, queue)

	if err := queue.Send(context.Background(), "this is not a dispatch job"); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for queue.deleteCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("malformed message was never deleted")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(messenger.sentMessages()) != 0 {
		t.Fatalf("malformed job must not start conversations")
	}
}
