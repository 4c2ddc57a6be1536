package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hyperxav/clara/pkg/clients/x"
	"github.com/hyperxav/clara/pkg/logging"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 60 * time.Second
	maxRateLimitWait   = 15 * time.Minute
)

// PostingClient is the posting capability.
type PostingClient interface {
	CreateTweet(ctx context.Context, text string) (*x.Tweet, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type outcome string

const (
	outcomeSuccess     outcome = "success"
	outcomeRateLimited outcome = "rate_limited"
	outcomeDuplicate   outcome = "duplicate"
	outcomeForbidden   outcome = "permission_denied"
	outcomeAuth        outcome = "unauthorized"
	outcomeMalformed   outcome = "malformed_request"
	outcomeTransient   outcome = "transient"
)

func classify(err error) outcome {
	var rl *x.RateLimitError
	var fb *x.ForbiddenError
	var br *x.BadRequestError
	switch {
	case errors.As(err, &rl):
		return outcomeRateLimited
	case errors.As(err, &fb):
		if fb.IsDuplicate() {
			return outcomeDuplicate
		}
		return outcomeForbidden
	case errors.Is(err, x.ErrUnauthorized):
		return outcomeAuth
	case errors.As(err, &br):
		return outcomeMalformed
	default:
		return outcomeTransient
	}
}

type PublisherConfig struct {
	Client      PostingClient
	Generator   Generator
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       Sleeper
	Now         func() time.Time
	Logger      logging.Logger
	Metrics     *Metrics
}

// Publisher posts text with a bounded number of attempts. Every attempt,
// whatever its outcome, consumes one unit of the bound. Backoff for
// malformed and transient failures is linear: BaseDelay × attempt.
type Publisher struct {
	client      PostingClient
	generator   Generator
	maxAttempts int
	baseDelay   time.Duration
	sleep       Sleeper
	now         func() time.Time
	logger      logging.Logger
	metrics     *Metrics
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	p := &Publisher{
		client:      cfg.Client,
		generator:   cfg.Generator,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       cfg.Sleep,
		now:         cfg.Now,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.baseDelay <= 0 {
		p.baseDelay = DefaultBaseDelay
	}
	if p.sleep == nil {
		p.sleep = SleepContext
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = discardLogger()
	}
	return p
}

// Publish posts gen.Text. A duplicate rejection triggers a new generation;
// the rejected text is never submitted again. Rate-limited attempts always
// wait for the reset, the last one included; other backoff is skipped after
// the final attempt.
func (p *Publisher) Publish(ctx context.Context, gen Generation) (*PostResult, error) {
	if p.client == nil {
		return nil, errors.New("posting client not configured")
	}

	current := gen
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		log := p.entry(attempt, current)
		log.WithField("text", current.Text).Info("Publishing post")

		tweet, err := p.client.CreateTweet(ctx, current.Text)
		if err == nil {
			p.metrics.observeAttempt(string(outcomeSuccess))
			return p.result(tweet, current, attempt), nil
		}
		lastErr = err

		kind := classify(err)
		p.metrics.observeAttempt(string(kind))
		final := attempt == p.maxAttempts

		switch kind {
		case outcomeAuth:
			log.WithError(err).Error("Posting credentials rejected")
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)

		case outcomeForbidden:
			log.WithError(err).Error("Permission error while posting")
			return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)

		case outcomeRateLimited:
			var rl *x.RateLimitError
			errors.As(err, &rl)
			wait := p.rateLimitWait(rl)
			log.WithFields(logging.Fields{
				"remaining": rl.Remaining,
				"limit":     rl.Limit,
				"wait":      wait.String(),
			}).Warn("Rate limit hit, waiting for reset")
			if err := p.wait(ctx, "rate_limited", wait); err != nil {
				return nil, err
			}

		case outcomeDuplicate:
			if final {
				log.Warn("Duplicate post detected on the last attempt")
				break
			}
			log.Warn("Duplicate post detected, generating new content")
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			current = p.regenerate(ctx, current)

		default:
			if kind == outcomeMalformed {
				log.WithError(err).Error("Bad request while posting")
			} else {
				log.WithError(err).Warn("Publish attempt failed")
			}
			if final {
				break
			}
			delay := p.baseDelay * time.Duration(attempt)
			log.WithField("delay", delay.String()).Info("Retrying after backoff")
			if err := p.wait(ctx, string(kind), delay); err != nil {
				return nil, err
			}
		}
	}

	p.logger.WithError(lastErr).WithField("attempts", p.maxAttempts).Error("Failed to publish post")
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, p.maxAttempts, lastErr)
}

func (p *Publisher) rateLimitWait(rl *x.RateLimitError) time.Duration {
	wait := rl.RetryAfter(p.now())
	if wait <= 0 {
		wait = p.baseDelay
	}
	if wait > maxRateLimitWait {
		wait = maxRateLimitWait
	}
	return wait
}

func (p *Publisher) regenerate(ctx context.Context, previous Generation) Generation {
	if p.generator == nil {
		return previous
	}
	return p.generator.Generate(ctx)
}

func (p *Publisher) wait(ctx context.Context, reason string, d time.Duration) error {
	p.metrics.observeWait(reason, d)
	if err := p.sleep(ctx, d); err != nil {
		return fmt.Errorf("publish wait interrupted: %w", err)
	}
	return nil
}

func (p *Publisher) result(tweet *x.Tweet, gen Generation, attempt int) *PostResult {
	res := &PostResult{
		ID:        tweet.ID,
		Text:      gen.Text,
		Theme:     gen.Theme,
		Fallback:  gen.Fallback,
		CreatedAt: tweet.CreatedAt,
		Metrics:   tweet.PublicMetrics,
		Attempts:  attempt,
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = p.now().UTC()
	}
	entry := p.logger.WithFields(logging.Fields{
		"post_id":    res.ID,
		"created_at": res.CreatedAt.Format(time.RFC3339),
		"attempt":    attempt,
	})
	if len(res.Metrics) > 0 {
		entry = entry.WithField("public_metrics", res.Metrics)
	}
	entry.Info("Successfully posted")
	return res
}

func (p *Publisher) entry(attempt int, gen Generation) *logrus.Entry {
	return p.logger.WithFields(logging.Fields{
		"attempt":      attempt,
		"max_attempts": p.maxAttempts,
		"theme":        string(gen.Theme),
		"fallback":     gen.Fallback,
	})
}
