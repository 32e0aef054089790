package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/memesrized/chatbot-escalation/internal/llm"
)

const transcriptTTL = 24 * time.Hour

// TranscriptStore persists live-session transcripts to Redis so an
// escalated conversation can be handed to a human with its history.
type TranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewTranscriptStore(client *redis.Client, tracer trace.Tracer) *TranscriptStore {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("chatbot-escalation/chat/transcripts")
	}
	return &TranscriptStore{
		redis:  client,
		tracer: tracer,
	}
}

func (s *TranscriptStore) Save(ctx context.Context, conversationID string, history []llm.ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "chat.save_transcript")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to marshal transcript: %w", err)
	}
	if err := s.redis.Set(ctx, transcriptKey(conversationID), data, transcriptTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to persist transcript: %w", err)
	}
	return nil
}

func (s *TranscriptStore) Load(ctx context.Context, conversationID string) ([]llm.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "chat.load_transcript")
	defer span.End()

	data, err := s.redis.Get(ctx, transcriptKey(conversationID)).Bytes()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return nil, fmt.Errorf("chat: unknown conversation %s", conversationID)
		}
		return nil, fmt.Errorf("chat: failed to load transcript: %w", err)
	}

	var history []llm.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to decode transcript: %w", err)
	}
	return history, nil
}

func transcriptKey(id string) string {
	return fmt.Sprintf("transcript:%s", id)
}
