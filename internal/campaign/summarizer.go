package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// ErrEmptyCampaignInput indicates there was nothing to summarize.
var ErrEmptyCampaignInput = errors.New("campaign: initial message required")

// Input is the campaign questionnaire collected by the frontend.
type Input struct {
	InitialMessage string   `json:"initialMessage"`
	Answers        []string `json:"answers"`
}

// Summarizer condenses the campaign questionnaire into the context string
// that drives lead matching and outreach prompts.
type Summarizer struct {
	llm    conversation.LLMClient
	model  string
	logger *logging.Logger
}

// NewSummarizer creates a summarizer over the text-completion port.
func NewSummarizer(llm conversation.LLMClient, model string, logger *logging.Logger) *Summarizer {
	if llm == nil {
		panic("campaign: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Summarizer{
		llm:    llm,
		model:  model,
		logger: logger,
	}
}

// Summarize runs the marketing-strategist prompt over the questionnaire.
func (s *Summarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.InitialMessage) == "" {
		return "", ErrEmptyCampaignInput
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Initial message: %s\n\n", input.InitialMessage)
	for i, answer := range input.Answers {
		fmt.Fprintf(&sb, "Answer %d: %s\n", i+1, answer)
	}

	prompt := fmt.Sprintf(`You are a marketing strategist AI.
Based on the following inputs, summarize the user's campaign context in a concise way:

%s

Provide a clear summary that highlights the target audience, their problem, budget, and preferred channels.`, sb.String())

	resp, err := s.llm.Complete(ctx, conversation.LLMRequest{
		Model:     s.model,
		System:    []string{"You are a helpful marketing strategist."},
		Messages:  []conversation.ChatMessage{conversation.UserMessage(prompt)},
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("campaign: failed to summarize context: %w", err)
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return "", errors.New("campaign: empty summary from model")
	}
	return summary, nil
}
