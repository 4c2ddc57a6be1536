package social

import (
	"context"
	"fmt"
)

const conversationsTable = "conversations"

// Inserter is the PostgREST capability used by SupabaseRecordStore.
type Inserter interface {
	Insert(ctx context.Context, table string, rows any) error
}

// SupabaseRecordStore writes archived posts through the Supabase REST API.
type SupabaseRecordStore struct {
	client Inserter
}

func NewSupabaseRecordStore(client Inserter) *SupabaseRecordStore {
	return &SupabaseRecordStore{client: client}
}

type conversationRow struct {
	UserID    string    `json:"user_id"`
	TweetText string    `json:"tweet_text"`
	Response  string    `json:"response"`
	Embedding []float32 `json:"embedding"`
}

func (s *SupabaseRecordStore) Insert(ctx context.Context, record ArchivedRecord) error {
	row := conversationRow{
		UserID:    record.UserID,
		TweetText: record.TweetText,
		Response:  record.Response,
		Embedding: record.Embedding,
	}
	if err := s.client.Insert(ctx, conversationsTable, []conversationRow{row}); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}
