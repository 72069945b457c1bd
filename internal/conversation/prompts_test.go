package conversation

import (
	"strings"
	"testing"
)

func TestBuildIntroPromptMentionsProductAndTarget(t *testing.T) {
	prompt := buildIntroPrompt("an AI scheduling tool", "owner of a small gym")
	if !strings.Contains(prompt, "an AI scheduling tool") {
		t.Errorf("intro prompt missing product summary: %q", prompt)
	}
	if !strings.Contains(prompt, "owner of a small gym") {
		t.Errorf("intro prompt missing target description: %q", prompt)
	}
}

func TestBuildFollowUpPromptIncludesHistoryAndReply(t *testing.T) {
	history := []Turn{
		{Speaker: SpeakerAgent, Text: "Hi, have you heard of our tool?"},
		{Speaker: SpeakerLead, Text: "No, tell me more"},
	}
	prompt := buildFollowUpPrompt("a tool", "a gym owner", history, "No, tell me more")
	if !strings.Contains(prompt, "AGENT: Hi, have you heard of our tool?") {
		t.Errorf("follow-up prompt missing agent turn: %q", prompt)
	}
	if !strings.Contains(prompt, "LEAD: No, tell me more") {
		t.Errorf("follow-up prompt missing lead turn: %q", prompt)
	}
	if !strings.Contains(prompt, "'No, tell me more'") {
		t.Errorf("follow-up prompt missing the latest reply: %q", prompt)
	}
}

func TestBuildStatusPromptAsksForClosedVerdict(t *testing.T) {
	prompt := buildStatusPrompt("a tool", "a gym owner", nil)
	for _, verdict := range []string{"AGREED", "DISAGREED", "CONTINUE"} {
		if !strings.Contains(prompt, verdict) {
			t.Errorf("status prompt missing verdict %s: %q", verdict, prompt)
		}
	}
}
