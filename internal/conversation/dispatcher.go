package conversation

import (
	"context"
	"sync"

	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/internal/observability/metrics"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// ConversationHandle tracks one running conversation. Done is closed when the
// conversation reaches a terminal status.
type ConversationHandle struct {
	conv   *Conversation
	lead   leads.MatchedLead
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Lead returns the matched lead this conversation targets.
func (h *ConversationHandle) Lead() leads.MatchedLead { return h.lead }

// LeadID returns the lead this conversation targets.
func (h *ConversationHandle) LeadID() string { return h.conv.LeadID }

// ConversationID returns the conversation identifier.
func (h *ConversationHandle) ConversationID() string { return h.conv.ID }

// Done is closed once the conversation has terminated.
func (h *ConversationHandle) Done() <-chan struct{} { return h.done }

// Status reports the conversation's current status.
func (h *ConversationHandle) Status() Status { return h.conv.Status() }

// History returns a snapshot of the conversation transcript.
func (h *ConversationHandle) History() []Turn { return h.conv.History() }

// Err returns the run error, if any. Valid after Done is closed.
func (h *ConversationHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel aborts the conversation. Already-terminal conversations are
// unaffected.
func (h *ConversationHandle) Cancel() { h.cancel() }

func (h *ConversationHandle) setErr(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}

// Dispatcher fans a campaign out to its matched leads, running one independent
// conversation per lead. A failure in one conversation never affects the
// others.
type Dispatcher struct {
	engine  *Engine
	logger  *logging.Logger
	metrics *metrics.OutreachMetrics
}

// NewDispatcher creates a dispatcher over a shared engine.
func NewDispatcher(engine *Engine, logger *logging.Logger, m *metrics.OutreachMetrics) *Dispatcher {
	if engine == nil {
		panic("conversation: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{engine: engine, logger: logger, metrics: m}
}

// Dispatch starts a conversation for every matched lead and returns
// immediately with one handle per lead, in input order. Leads with no handle
// are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignSummary string, matched []leads.MatchedLead) []*ConversationHandle {
	handles := make([]*ConversationHandle, 0, len(matched))
	for _, lead := range matched {
		if lead.Handle == "" {
			d.logger.Warn("skipping lead without messaging handle", "lead_id", lead.ID)
			continue
		}
		handles = append(handles, d.start(ctx, campaignSummary, lead))
	}
	return handles
}

func (d *Dispatcher) start(ctx context.Context, campaignSummary string, lead leads.MatchedLead) *ConversationHandle {
	runCtx, cancel := context.WithCancel(ctx)
	conv := NewConversation(campaignSummary, lead)
	handle := &ConversationHandle{
		conv:   conv,
		lead:   lead,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	d.metrics.ObserveConversationStarted()
	d.logger.Info("starting outreach conversation",
		"conversation_id", conv.ID, "lead_id", lead.ID, "handle", lead.Handle)

	go func() {
		defer cancel()
		defer close(handle.done)
		if err := d.engine.Run(runCtx, conv); err != nil {
			handle.setErr(err)
		}
	}()

	return handle
}

// Wait blocks until every handle has terminated or the context is done. It
// returns the handles that had terminated by the time it returned.
func (d *Dispatcher) Wait(ctx context.Context, handles []*ConversationHandle) []*ConversationHandle {
	finished := make([]*ConversationHandle, 0, len(handles))
	for _, h := range handles {
		select {
		case <-h.Done():
			finished = append(finished, h)
		case <-ctx.Done():
			return finished
		}
	}
	return finished
}
