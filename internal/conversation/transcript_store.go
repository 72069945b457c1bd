package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTranscriptTTL = 7 * 24 * time.Hour

// TranscriptRecord is the persisted form of a conversation transcript.
type TranscriptRecord struct {
	ConversationID string    `json:"conversation_id"`
	LeadID         string    `json:"lead_id"`
	Status         Status    `json:"status"`
	Turns          []Turn    `json:"turns"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TranscriptStore persists conversation transcripts for inspection after the
// conversation ends.
type TranscriptStore interface {
	Save(ctx context.Context, conversationID, leadID string, status Status, turns []Turn) error
	Load(ctx context.Context, conversationID string) (*TranscriptRecord, error)
}

// ErrTranscriptNotFound is returned when no transcript exists for an ID.
var ErrTranscriptNotFound = fmt.Errorf("conversation: transcript not found")

// RedisTranscriptStore keeps transcripts in Redis with a TTL.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewRedisTranscriptStore creates a transcript store over a Redis client. A
// non-positive ttl falls back to the default retention.
func NewRedisTranscriptStore(client *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &RedisTranscriptStore{
		redis:  client,
		tracer: otel.Tracer("outreach.internal.conversation.transcripts"),
		ttl:    ttl,
	}
}

func (s *RedisTranscriptStore) Save(ctx context.Context, conversationID, leadID string, status Status, turns []Turn) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_transcript")
	defer span.End()

	record := TranscriptRecord{
		ConversationID: conversationID,
		LeadID:         leadID,
		Status:         status,
		Turns:          turns,
		UpdatedAt:      time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal transcript: %w", err)
	}
	if err := s.redis.Set(ctx, transcriptKey(conversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) Load(ctx context.Context, conversationID string) (*TranscriptRecord, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_transcript")
	defer span.End()

	data, err := s.redis.Get(ctx, transcriptKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTranscriptNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load transcript: %w", err)
	}

	var record TranscriptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode transcript: %w", err)
	}
	return &record, nil
}

func transcriptKey(id string) string {
	return fmt.Sprintf("transcript:%s", id)
}
