package cmd

import (
	"context"
	"errors"
	"fmt"

	appconfig "github.com/hyperxav/clara/internal/config"
	"github.com/hyperxav/clara/internal/runlock"
	"github.com/hyperxav/clara/internal/social"
	"github.com/hyperxav/clara/pkg/clients/supabase"
	"github.com/hyperxav/clara/pkg/clients/x"
	"github.com/hyperxav/clara/pkg/database"
	"github.com/hyperxav/clara/pkg/kafka"
	"github.com/hyperxav/clara/pkg/llm"
	"github.com/hyperxav/clara/pkg/logging"
	"github.com/hyperxav/clara/pkg/redis"
)

// runResources holds every capability handle of one run. close releases them in
// reverse order of creation.
type runResources struct {
	flow    *social.Flow
	metrics *social.Metrics
	locker  *runlock.Locker
	closers []func() error
}

func (r *runResources) close(logger logging.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.WithError(err).Warn("Failed to release resource")
		}
	}
}

func buildRuntime(ctx context.Context, cfg appconfig.Config, logger logging.Logger) (*runResources, error) {
	rt := &runResources{metrics: social.NewMetrics()}

	xClient, err := x.NewClient(cfg.Twitter, x.WithBaseURL(cfg.XAPIURL))
	if err != nil {
		return nil, fmt.Errorf("posting client: %w", err)
	}
	me, err := xClient.Me(ctx)
	if err != nil {
		if errors.Is(err, x.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", social.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("verify posting credentials: %w", err)
	}
	logger.WithField("username", me.Username).Info("Posting credentials verified")

	generator, err := buildGenerator(cfg, logger, rt.metrics)
	if err != nil {
		return nil, err
	}
	publisher := social.NewPublisher(social.PublisherConfig{
		Client:      xClient,
		Generator:   generator,
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Logger:      logger,
		Metrics:     rt.metrics,
	})

	archiver, err := buildArchiver(ctx, rt, cfg, logger)
	if err != nil {
		rt.close(logger)
		return nil, err
	}

	var notifier social.PostNotifier
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewKafkaProducer(cfg.KafkaBrokers, serviceName, logger)
		if err != nil {
			rt.close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		rt.closers = append(rt.closers, producer.Close)
		if err := producer.HealthCheck(ctx); err != nil {
			logger.WithError(err).Warn("Kafka brokers unreachable, post events may be lost")
		}
		notifier = social.NewKafkaNotifier(producer, cfg.KafkaTopic)
		logger.WithField("topic", cfg.KafkaTopic).Info("Post events enabled")
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			rt.close(logger)
			return nil, fmt.Errorf("run lock: %w", err)
		}
		rt.closers = append(rt.closers, client.Close)
		rt.locker = runlock.New(client, "", cfg.LockTTL)
	}

	flowCfg := social.FlowConfig{
		Generator: generator,
		Publisher: publisher,
		Notifier:  notifier,
		Logger:    logger,
		Metrics:   rt.metrics,
	}
	// A nil *Archiver stored in the interface would not compare equal to nil.
	if archiver != nil {
		flowCfg.Archiver = archiver
	}
	rt.flow = social.NewFlow(flowCfg)
	return rt, nil
}

func buildGenerator(cfg appconfig.Config, logger logging.Logger, metrics *social.Metrics) (*social.ContentGenerator, error) {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	themes, err := social.NewThemeSelector(cfg.ThemeWeights, nil)
	if err != nil {
		return nil, err
	}
	return social.NewContentGenerator(social.GeneratorConfig{
		LLM:     provider,
		Themes:  themes,
		Options: cfg.Completion,
		Logger:  logger,
		Metrics: metrics,
	}), nil
}

func buildArchiver(ctx context.Context, rt *runResources, cfg appconfig.Config, logger logging.Logger) (*social.Archiver, error) {
	var store social.RecordStore
	switch cfg.ArchiveBackend {
	case appconfig.ArchiveNone:
		logger.Warn("Archiving disabled")
		return nil, nil
	case appconfig.ArchivePostgres:
		dbConfig := database.DefaultConfig()
		dbConfig.URL = cfg.DatabaseURL
		db, err := database.Connect(ctx, dbConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("archive database: %w", err)
		}
		rt.closers = append(rt.closers, db.Close)
		store = social.NewPostgresRecordStore(db)
	default:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("supabase client: %w", err)
		}
		store = social.NewSupabaseRecordStore(client)
	}

	embedder, err := llm.NewEmbeddingClient(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	return social.NewArchiver(social.ArchiverConfig{
		Embedder: embedder,
		Store:    store,
		Logger:   logger,
		Metrics:  rt.metrics,
	}), nil
}
