package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperxav/clara/pkg/llm"
	"github.com/hyperxav/clara/pkg/logging"
)

const defaultArchiveTimeout = 30 * time.Second

// RecordStore persists archived posts.
type RecordStore interface {
	Insert(ctx context.Context, record ArchivedRecord) error
}

type ArchiverConfig struct {
	Embedder llm.EmbeddingClient
	Store    RecordStore
	Timeout  time.Duration
	Logger   logging.Logger
	Metrics  *Metrics
}

// Archiver embeds a posted text and stores it. Its errors are reported to
// the caller but never change the outcome of a run.
type Archiver struct {
	embedder llm.EmbeddingClient
	store    RecordStore
	timeout  time.Duration
	logger   logging.Logger
	metrics  *Metrics
}

func NewArchiver(cfg ArchiverConfig) *Archiver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultArchiveTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Archiver{
		embedder: cfg.Embedder,
		store:    cfg.Store,
		timeout:  timeout,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

func (a *Archiver) Archive(ctx context.Context, text string) error {
	if a.store == nil {
		return errors.New("record store not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	embedding, err := llm.EmbedText(ctx, a.embedder, text)
	if err != nil {
		a.metrics.observeArchiveFailure("embed")
		a.logger.WithError(err).Error("Failed to embed posted text")
		return fmt.Errorf("embed post: %w", err)
	}

	record := ArchivedRecord{
		UserID:    BotUserID,
		TweetText: text,
		Response:  "",
		Embedding: embedding,
	}
	if err := a.store.Insert(ctx, record); err != nil {
		a.metrics.observeArchiveFailure("store")
		a.logger.WithError(err).Error("Failed to store post")
		return fmt.Errorf("store post: %w", err)
	}

	a.logger.WithField("dimensions", len(embedding)).Info("Post stored")
	return nil
}
