package bootstrap

import (
	"fmt"

	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/observability/metrics"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// BuildDispatcher wires the conversation engine and per-lead dispatcher from
// config. transcripts may be nil.
func BuildDispatcher(
	cfg *appconfig.Config,
	llm conversation.LLMClient,
	model string,
	messenger conversation.Messenger,
	transcripts conversation.TranscriptStore,
	m *metrics.OutreachMetrics,
	logger *logging.Logger,
) (*conversation.Dispatcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if llm == nil {
		return nil, fmt.Errorf("bootstrap: llm client is required")
	}
	if messenger == nil {
		return nil, fmt.Errorf("bootstrap: messenger is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := []conversation.EngineOption{
		conversation.WithModel(model),
		conversation.WithCompletionLimits(int32(cfg.LLMMaxTokens), float32(cfg.LLMTemperature)),
		conversation.WithReplyTimeout(cfg.ReplyTimeout),
	}
	if transcripts != nil {
		opts = append(opts, conversation.WithTranscriptStore(transcripts))
	}
	if m != nil {
		opts = append(opts, conversation.WithEngineMetrics(m))
	}

	engine := conversation.NewEngine(llm, messenger, logger.Component("engine"), opts...)
	return conversation.NewDispatcher(engine, logger.Component("dispatcher"), m), nil
}
