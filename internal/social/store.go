package social

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

const insertConversationSQL = `
	INSERT INTO conversations (user_id, tweet_text, response, embedding)
	VALUES ($1, $2, $3, $4)`

// PostgresRecordStore writes archived posts straight to Postgres.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Insert(ctx context.Context, record ArchivedRecord) error {
	_, err := s.db.ExecContext(ctx, insertConversationSQL,
		record.UserID,
		record.TweetText,
		record.Response,
		pgvector.NewVector(record.Embedding),
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}
