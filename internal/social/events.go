package social

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventTypePostPublished = "post_published"

// PostNotifier is told about every published post.
type PostNotifier interface {
	NotifyPosted(ctx context.Context, result PostResult) error
}

// MessageProducer is the subset of the Kafka producer used for events.
type MessageProducer interface {
	ProduceMessage(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// PostEvent is the payload of a post_published message.
type PostEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	RunID     string         `json:"run_id"`
	PostID    string         `json:"post_id"`
	Text      string         `json:"text"`
	Theme     string         `json:"theme"`
	Fallback  bool           `json:"fallback"`
	Attempts  int            `json:"attempts"`
	CreatedAt time.Time      `json:"created_at"`
	Metrics   map[string]int `json:"public_metrics,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type KafkaNotifier struct {
	producer MessageProducer
	topic    string
	now      func() time.Time
}

func NewKafkaNotifier(producer MessageProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, now: time.Now}
}

func (n *KafkaNotifier) NotifyPosted(ctx context.Context, result PostResult) error {
	event := PostEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypePostPublished,
		RunID:     result.RunID,
		PostID:    result.ID,
		Text:      result.Text,
		Theme:     string(result.Theme),
		Fallback:  result.Fallback,
		Attempts:  result.Attempts,
		CreatedAt: result.CreatedAt,
		Metrics:   result.Metrics,
		Timestamp: n.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal post event: %w", err)
	}
	headers := map[string]string{
		"event_type": EventTypePostPublished,
		"source":     "clara",
	}
	if err := n.producer.ProduceMessage(ctx, n.topic, []byte(result.ID), value, headers); err != nil {
		return fmt.Errorf("produce post event: %w", err)
	}
	return nil
}
