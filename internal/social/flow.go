package social

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hyperxav/clara/pkg/logging"
)

const (
	runStatusPosted = "posted"
	runStatusFailed = "failed"
)

// Poster is what Flow needs from a Publisher.
type Poster interface {
	Publish(ctx context.Context, gen Generation) (*PostResult, error)
}

// PostArchiver is what Flow needs from an Archiver.
type PostArchiver interface {
	Archive(ctx context.Context, text string) error
}

type FlowConfig struct {
	Generator Generator
	Publisher Poster
	Archiver  PostArchiver
	Notifier  PostNotifier
	Logger    logging.Logger
	Metrics   *Metrics
	Now       func() time.Time
}

// Flow runs one generate, publish and archive cycle.
type Flow struct {
	generator Generator
	publisher Poster
	archiver  PostArchiver
	notifier  PostNotifier
	logger    logging.Logger
	metrics   *Metrics
	now       func() time.Time
}

func NewFlow(cfg FlowConfig) *Flow {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Flow{
		generator: cfg.Generator,
		publisher: cfg.Publisher,
		archiver:  cfg.Archiver,
		notifier:  cfg.Notifier,
		logger:    logger,
		metrics:   cfg.Metrics,
		now:       now,
	}
}

// Run publishes exactly one post. Archive and notification failures are
// logged and do not affect the returned result.
func (f *Flow) Run(ctx context.Context) (*PostResult, error) {
	if f.generator == nil || f.publisher == nil {
		return nil, errors.New("flow requires a generator and a publisher")
	}
	runID := uuid.NewString()
	log := f.logger.WithField("run_id", runID)
	log.Info("Starting posting run")

	gen := f.generator.Generate(ctx)
	result, err := f.publisher.Publish(ctx, gen)
	if err != nil {
		f.metrics.observeRun(runStatusFailed, f.now())
		log.WithError(err).Error("Posting run failed")
		return nil, err
	}
	result.RunID = runID

	if f.archiver != nil {
		if err := f.archiver.Archive(ctx, result.Text); err != nil {
			log.WithError(err).WithField("post_id", result.ID).Warn("Archiving failed, post kept")
		}
	}

	if f.notifier != nil {
		if err := f.notifier.NotifyPosted(ctx, *result); err != nil {
			log.WithError(err).Warn("Failed to publish post event")
		}
	}

	f.metrics.observeRun(runStatusPosted, f.now())
	log.WithFields(logging.Fields{
		"post_id":  result.ID,
		"attempts": result.Attempts,
		"fallback": result.Fallback,
	}).Info("Posting run complete")
	return result, nil
}
