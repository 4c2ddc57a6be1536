package social

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the counters for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	publishAttempts     *prometheus.CounterVec
	runs                *prometheus.CounterVec
	generationFallbacks prometheus.Counter
	generationDuration  prometheus.Histogram
	archiveFailures     *prometheus.CounterVec
	backoffSeconds      *prometheus.CounterVec
	lastSuccess         prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		publishAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clara",
				Name:      "publish_attempts_total",
				Help:      "Publish attempts by outcome",
			},
			[]string{"outcome"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clara",
				Name:      "runs_total",
				Help:      "Posting runs by final status",
			},
			[]string{"status"}, // "posted", "failed"
		),
		generationFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "clara",
				Name:      "generation_fallbacks_total",
				Help:      "Generations replaced by the fallback text",
			},
		),
		generationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "clara",
				Name:      "generation_duration_seconds",
				Help:      "Duration of language model completion calls",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		archiveFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clara",
				Name:      "archive_failures_total",
				Help:      "Archive failures by stage",
			},
			[]string{"stage"}, // "embed", "store"
		),
		backoffSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clara",
				Name:      "publish_wait_seconds_total",
				Help:      "Time spent waiting between publish attempts",
			},
			[]string{"reason"},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "clara",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful post",
			},
		),
	}
}

// Registry exposes the gatherer for pushing or testing.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeAttempt(outcome string) {
	if m == nil {
		return
	}
	m.publishAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeWait(reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.backoffSeconds.WithLabelValues(reason).Add(d.Seconds())
}

func (m *Metrics) observeGeneration(d time.Duration, fallback bool) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
	if fallback {
		m.generationFallbacks.Inc()
	}
}

func (m *Metrics) observeArchiveFailure(stage string) {
	if m == nil {
		return
	}
	m.archiveFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) observeRun(status string, at time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	if status == runStatusPosted {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

// Push sends the registry to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if m == nil || gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
