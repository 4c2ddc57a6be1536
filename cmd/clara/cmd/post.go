package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	appconfig "github.com/hyperxav/clara/internal/config"
	"github.com/hyperxav/clara/internal/runlock"
	"github.com/hyperxav/clara/internal/social"
	"github.com/hyperxav/clara/pkg/logging"
)

const metricsPushTimeout = 10 * time.Second

func newPostCmd() *cobra.Command {
	var maxAttempts int
	var baseDelay time.Duration
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Generate, publish and archive one post",
		Long: `Generate one French post, publish it to X and archive it.

Failures are logged at fatal level and the command still exits 0 so that
schedulers do not retry a run that may already have posted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := appconfig.LoadConfig()
			if err != nil {
				logFatal(logger, err, "Invalid configuration")
				return nil
			}
			if cmd.Flags().Changed("max-attempts") {
				cfg.MaxAttempts = maxAttempts
			}
			if cmd.Flags().Changed("base-delay") {
				cfg.BaseDelay = baseDelay
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if err := cfg.Validate(); err != nil {
				logFatal(logger, err, "Invalid configuration")
				return nil
			}

			if cfg.DryRun {
				gen, err := runDraft(cmd.Context(), cfg, logger)
				if err != nil {
					logFatal(logger, err, "Draft generation failed")
					return nil
				}
				_, _ = color.New(color.FgYellow).Fprint(cmd.OutOrStdout(), "draft ")
				fmt.Fprintf(cmd.OutOrStdout(), "(%s): %s\n", gen.Theme, gen.Text)
				return nil
			}

			res, err := runPost(cmd.Context(), cfg, logger)
			if err != nil {
				logFatal(logger, err, "Posting run failed")
				return nil
			}
			_, _ = color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "posted ")
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, attempt %d)\n", res.ID, res.Theme, res.Attempts)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", social.DefaultMaxAttempts, "maximum publish attempts")
	cmd.Flags().DurationVar(&baseDelay, "base-delay", social.DefaultBaseDelay, "linear backoff step between failed attempts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate and print a post without publishing or archiving it")
	return cmd
}

func runPost(ctx context.Context, cfg appconfig.Config, logger logging.Logger) (*social.PostResult, error) {
	rt, err := buildRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer rt.close(logger)
	defer pushMetrics(rt.metrics, cfg.PushgatewayURL, logger)

	if rt.locker != nil {
		lease, err := rt.locker.Acquire(ctx)
		if err != nil {
			if errors.Is(err, runlock.ErrHeld) {
				logger.Warn("Another run is in progress, skipping")
			}
			return nil, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := lease.Release(releaseCtx); err != nil {
				logger.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	return rt.flow.Run(ctx)
}

// runDraft generates one post without touching the posting account.
func runDraft(ctx context.Context, cfg appconfig.Config, logger logging.Logger) (social.Generation, error) {
	generator, err := buildGenerator(cfg, logger, social.NewMetrics())
	if err != nil {
		return social.Generation{}, err
	}
	gen := generator.Generate(ctx)
	if gen.Fallback {
		logger.WithError(gen.Err).Warn("Draft uses fallback content")
	}
	return gen, nil
}

func pushMetrics(metrics *social.Metrics, gatewayURL string, logger logging.Logger) {
	if gatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), metricsPushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, gatewayURL, serviceName); err != nil {
		logger.WithError(err).Warn("Failed to push metrics")
	}
}

// logFatal records err at fatal level without exiting the process.
func logFatal(logger logging.Logger, err error, msg string) {
	logger.WithError(err).Log(logrus.FatalLevel, msg)
}
