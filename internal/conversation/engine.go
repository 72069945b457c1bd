package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/observability/metrics"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

const defaultReplyTimeout = 300 * time.Second

// errReplyTimeout marks the expected no-reply exit; it surfaces as
// StatusTimedOut, not as a run error.
var errReplyTimeout = errors.New("conversation: reply wait timed out")

type engineConfig struct {
	model            string
	maxTokens        int32
	temperature      float32
	replyTimeout     time.Duration
	introFallback    string
	followUpFallback string
	transcripts      TranscriptStore
	metrics          *metrics.OutreachMetrics
}

// EngineOption configures a conversation engine.
type EngineOption func(*engineConfig)

// WithModel sets the model identifier passed to the LLM port.
func WithModel(model string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.model = model
	}
}

// WithCompletionLimits sets token and temperature bounds for LLM calls.
func WithCompletionLimits(maxTokens int32, temperature float32) EngineOption {
	return func(cfg *engineConfig) {
		if maxTokens > 0 {
			cfg.maxTokens = maxTokens
		}
		cfg.temperature = temperature
	}
}

// WithReplyTimeout overrides how long the engine waits for each lead reply.
func WithReplyTimeout(d time.Duration) EngineOption {
	return func(cfg *engineConfig) {
		if d > 0 {
			cfg.replyTimeout = d
		}
	}
}

// WithTranscriptStore enables durable transcript persistence.
func WithTranscriptStore(store TranscriptStore) EngineOption {
	return func(cfg *engineConfig) {
		cfg.transcripts = store
	}
}

// WithEngineMetrics attaches outreach metrics.
func WithEngineMetrics(m *metrics.OutreachMetrics) EngineOption {
	return func(cfg *engineConfig) {
		cfg.metrics = m
	}
}

// Engine drives one outreach conversation end-to-end: intro, reply loop,
// follow-ups, and the LLM-classified termination decision.
type Engine struct {
	llm       LLMClient
	messenger Messenger
	logger    *logging.Logger
	cfg       engineConfig
}

// NewEngine wires an engine over the text-completion and messaging ports.
func NewEngine(llm LLMClient, messenger Messenger, logger *logging.Logger, opts ...EngineOption) *Engine {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := engineConfig{
		temperature:      0.7,
		replyTimeout:     defaultReplyTimeout,
		introFallback:    defaultIntroMessage,
		followUpFallback: defaultFollowUpMessage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		llm:       llm,
		messenger: messenger,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes the conversation state machine until a terminal status is
// reached. The returned error is non-nil only for StatusFailed; timed-out and
// classifier-terminated conversations return nil.
func (e *Engine) Run(ctx context.Context, conv *Conversation) error {
	log := e.logger.With("conversation_id", conv.ID, "lead_id", conv.LeadID, "handle", conv.Handle)

	intro := e.generate(ctx, buildIntroPrompt(conv.ProductSummary, conv.TargetDescription), e.cfg.introFallback, "intro", log)

	recipient, err := e.messenger.ResolveRecipient(ctx, conv.Handle)
	if err != nil {
		return e.fail(ctx, conv, log, fmt.Errorf("resolve recipient: %w", err))
	}

	if err := e.send(ctx, recipient, intro, "intro"); err != nil {
		return e.fail(ctx, conv, log, fmt.Errorf("send intro: %w", err))
	}
	conv.appendTurn(SpeakerAgent, intro)
	conv.setStatus(StatusAwaitingReply)
	e.persistTranscript(ctx, conv, log)
	log.Info("intro sent, awaiting reply", "timeout", e.cfg.replyTimeout.String())

	for {
		reply, err := e.awaitReply(ctx, recipient)
		if err != nil {
			if errors.Is(err, errReplyTimeout) {
				conv.setStatus(StatusTimedOut)
				e.cfg.metrics.ObserveConversationTerminal(string(StatusTimedOut))
				e.persistTranscript(ctx, conv, log)
				log.Info("no reply within timeout, conversation closed")
				return nil
			}
			return e.fail(ctx, conv, log, fmt.Errorf("await reply: %w", err))
		}

		conv.appendTurn(SpeakerLead, reply)
		conv.setStatus(StatusActive)
		log.Info("lead replied", "turns", len(conv.History()))

		followUp := e.generate(ctx,
			buildFollowUpPrompt(conv.ProductSummary, conv.TargetDescription, conv.History(), reply),
			e.cfg.followUpFallback, "follow_up", log)
		conv.appendTurn(SpeakerAgent, followUp)
		if err := e.send(ctx, recipient, followUp, "follow_up"); err != nil {
			return e.fail(ctx, conv, log, fmt.Errorf("send follow-up: %w", err))
		}
		e.persistTranscript(ctx, conv, log)

		switch e.classify(ctx, conv, log) {
		case OutcomeAgreed:
			conv.setStatus(StatusAgreed)
			e.cfg.metrics.ObserveConversationTerminal(string(StatusAgreed))
			e.persistTranscript(ctx, conv, log)
			log.Info("lead agreed to meet the founder")
			return nil
		case OutcomeDisagreed:
			conv.setStatus(StatusDisagreed)
			e.cfg.metrics.ObserveConversationTerminal(string(StatusDisagreed))
			e.persistTranscript(ctx, conv, log)
			log.Info("lead declined to meet the founder")
			return nil
		default:
			// CONTINUE: keep the loop going, wait for the next reply.
		}
	}
}

// awaitReply waits for exactly one private message from the recipient. The
// subscription is released on every exit path before returning.
func (e *Engine) awaitReply(ctx context.Context, recipient Recipient) (string, error) {
	sub, err := e.messenger.SubscribeIncoming(recipient)
	if err != nil {
		return "", err
	}
	defer sub.Close()

	started := time.Now()
	timer := time.NewTimer(e.cfg.replyTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		e.cfg.metrics.ObserveReplyWait(time.Since(started).Seconds())
		return "", errReplyTimeout
	case msg, ok := <-sub.Messages():
		if !ok {
			return "", errors.New("conversation: subscription closed unexpectedly")
		}
		e.cfg.metrics.ObserveReplyWait(time.Since(started).Seconds())
		return msg.Text, nil
	}
}

// generate runs a completion and substitutes canned text when it fails.
// Completion failures are never fatal to the conversation.
func (e *Engine) generate(ctx context.Context, prompt, fallback, stage string, log *slog.Logger) string {
	text, err := e.complete(ctx, prompt)
	if err != nil {
		log.Warn("completion failed, using fallback text", "stage", stage, "error", err)
		e.cfg.metrics.ObserveLLMFallback(stage)
		return fallback
	}
	return text
}

// classify asks the LLM whether the conversation concluded. Call failures
// behave like ambiguous output: the conversation continues.
func (e *Engine) classify(ctx context.Context, conv *Conversation, log *slog.Logger) Outcome {
	raw, err := e.complete(ctx, buildStatusPrompt(conv.ProductSummary, conv.TargetDescription, conv.History()))
	if err != nil {
		log.Warn("status check failed, continuing conversation", "error", err)
		e.cfg.metrics.ObserveLLMFallback("status_check")
		return OutcomeContinue
	}
	return ParseOutcome(raw)
}

func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.cfg.model,
		Messages:    []ChatMessage{UserMessage(prompt)},
		MaxTokens:   e.cfg.maxTokens,
		Temperature: e.cfg.temperature,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("conversation: empty completion")
	}
	return text, nil
}

func (e *Engine) send(ctx context.Context, to Recipient, text, kind string) error {
	if err := e.messenger.Send(ctx, to, text); err != nil {
		e.cfg.metrics.ObserveOutbound(kind, "error")
		return err
	}
	e.cfg.metrics.ObserveOutbound(kind, "ok")
	return nil
}

func (e *Engine) fail(ctx context.Context, conv *Conversation, log *slog.Logger, err error) error {
	conv.setStatus(StatusFailed)
	e.cfg.metrics.ObserveConversationTerminal(string(StatusFailed))
	e.persistTranscript(ctx, conv, log)
	log.Error("conversation failed", "error", err)
	return fmt.Errorf("conversation %s: %w", conv.ID, err)
}

func (e *Engine) persistTranscript(ctx context.Context, conv *Conversation, log *slog.Logger) {
	if e.cfg.transcripts == nil {
		return
	}
	if err := e.cfg.transcripts.Save(ctx, conv.ID, conv.LeadID, conv.Status(), conv.History()); err != nil {
		// Transcript durability is best-effort; the in-memory history stays
		// canonical for the engine.
		log.Warn("failed to persist transcript", "error", err)
	}
}
