package conversation

import (
	"sync"
	"time"

	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/google/uuid"
)

// Speaker identifies which side of the conversation produced a turn.
type Speaker string

const (
	SpeakerAgent Speaker = "AGENT"
	SpeakerLead  Speaker = "LEAD"
)

// Turn is one message in a conversation. Immutable once appended.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Status is the conversation lifecycle state. Transitions are monotonic:
// pending → awaiting_reply → active → one of the four terminal states.
type Status string

const (
	StatusPending       Status = "pending"
	StatusAwaitingReply Status = "awaiting_reply"
	StatusActive        Status = "active"
	StatusAgreed        Status = "agreed"
	StatusDisagreed     Status = "disagreed"
	StatusTimedOut      Status = "timed_out"
	StatusFailed        Status = "failed"
)

// Terminal reports whether the status permits no further turns.
func (s Status) Terminal() bool {
	switch s {
	case StatusAgreed, StatusDisagreed, StatusTimedOut, StatusFailed:
		return true
	}
	return false
}

// Conversation is the single-lead outreach state: immutable campaign inputs
// plus an append-only turn history. Each instance is owned by exactly one
// engine run; the mutex only guards snapshot reads from handles.
type Conversation struct {
	ID                string
	LeadID            string
	Handle            string
	ProductSummary    string
	TargetDescription string

	mu      sync.RWMutex
	history []Turn
	status  Status
}

// NewConversation seeds a conversation for a matched lead.
func NewConversation(campaignSummary string, lead leads.MatchedLead) *Conversation {
	return &Conversation{
		ID:                uuid.NewString(),
		LeadID:            lead.ID,
		Handle:            lead.Handle,
		ProductSummary:    campaignSummary,
		TargetDescription: lead.Description,
		status:            StatusPending,
	}
}

// Status returns the current lifecycle state.
func (c *Conversation) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// History returns a copy of the turn history.
func (c *Conversation) History() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Conversation) setStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.Terminal() {
		return
	}
	c.status = s
}

func (c *Conversation) appendTurn(speaker Speaker, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.Terminal() {
		return
	}
	c.history = append(c.history, Turn{
		Speaker: speaker,
		Text:    text,
		At:      time.Now().UTC(),
	})
}
