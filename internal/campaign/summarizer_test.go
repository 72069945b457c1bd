package campaign

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

type stubLLM struct {
	response string
	err      error
	lastReq  conversation.LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req conversation.LLMRequest) (conversation.LLMResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return conversation.LLMResponse{}, s.err
	}
	return conversation.LLMResponse{Text: s.response}, nil
}

func TestSummarizeBuildsStrategistPrompt(t *testing.T) {
	llm := &stubLLM{response: "Gym owners in Austin struggling with no-shows, $500 budget, prefer Telegram."}
	s := NewSummarizer(llm, "test-model", logging.Default())

	summary, err := s.Summarize(context.Background(), Input{
		InitialMessage: "I built a no-show prediction tool for gyms",
		Answers:        []string{"gym owners", "$500 per month"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != llm.response {
		t.Errorf("unexpected summary: %q", summary)
	}

	if len(llm.lastReq.Messages) != 1 {
		t.Fatalf("expected one user message, got %d", len(llm.lastReq.Messages))
	}
	prompt := llm.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "You are a marketing strategist AI.") {
		t.Errorf("prompt missing strategist preamble: %q", prompt)
	}
	if !strings.Contains(prompt, "Initial message: I built a no-show prediction tool for gyms") {
		t.Errorf("prompt missing initial message: %q", prompt)
	}
	if !strings.Contains(prompt, "Answer 1: gym owners") || !strings.Contains(prompt, "Answer 2: $500 per month") {
		t.Errorf("prompt missing numbered answers: %q", prompt)
	}
	if llm.lastReq.MaxTokens != 300 {
		t.Errorf("expected 300 max tokens, got %d", llm.lastReq.MaxTokens)
	}
	if len(llm.lastReq.System) != 1 || llm.lastReq.System[0] != "You are a helpful marketing strategist." {
		t.Errorf("unexpected system prompt: %v", llm.lastReq.System)
	}
}

func TestSummarizeRejectsEmptyInput(t *testing.T) {
	s := NewSummarizer(&stubLLM{response: "x"}, "test-model", logging.Default())
	if _, err := s.Summarize(context.Background(), Input{InitialMessage: "  "}); !errors.Is(err, ErrEmptyCampaignInput) {
		t.Fatalf("expected ErrEmptyCampaignInput, got %v", err)
	}
}

func TestSummarizePropagatesLLMFailure(t *testing.T) {
	s := NewSummarizer(&stubLLM{err: errors.New("model offline")}, "test-model", logging.Default())
	if _, err := s.Summarize(context.Background(), Input{InitialMessage: "something"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummarizeRejectsBlankCompletion(t *testing.T) {
	s := NewSummarizer(&stubLLM{response: "   \n"}, "test-model", logging.Default())
	if _, err := s.Summarize(context.Background(), Input{InitialMessage: "something"}); err == nil {
		t.Fatal("expected error for blank summary")
	}
}
