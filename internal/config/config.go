package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperxav/clara/internal/social"
	"github.com/hyperxav/clara/pkg/clients/x"
	"github.com/hyperxav/clara/pkg/config"
	"github.com/hyperxav/clara/pkg/llm"
)

// Archive backends selectable through ARCHIVE_BACKEND.
const (
	ArchiveSupabase = "supabase"
	ArchivePostgres = "postgres"
	ArchiveNone     = "none"
)

// Config stores environment configuration for one posting run.
type Config struct {
	Twitter x.Credentials
	XAPIURL string

	LLM        llm.Config
	Embedding  llm.Config
	Completion llm.CompletionOptions

	ThemeWeights []social.ThemeWeight

	MaxAttempts int
	BaseDelay   time.Duration

	ArchiveBackend string
	SupabaseURL    string
	SupabaseKey    string
	DatabaseURL    string

	RedisURL     string
	LockTTL      time.Duration
	KafkaBrokers []string
	KafkaTopic   string

	PushgatewayURL string

	// DryRun generates content without publishing or archiving it.
	DryRun bool
}

// LoadConfig loads the configuration from environment variables. It only
// fails when CLARA_THEME_WEIGHTS is malformed; use Validate for the rest.
func LoadConfig() (Config, error) {
	weights, err := social.ParseThemeWeights(config.GetEnv("CLARA_THEME_WEIGHTS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("CLARA_THEME_WEIGHTS: %w", err)
	}
	return Config{
		Twitter: x.Credentials{
			ConsumerKey:    config.GetEnv("TWITTER_API_KEY", ""),
			ConsumerSecret: config.GetEnv("TWITTER_API_SECRET", ""),
			AccessToken:    config.GetEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret:   config.GetEnv("TWITTER_ACCESS_SECRET", ""),
		},
		XAPIURL: config.GetEnv("X_API_URL", ""),

		LLM:        llm.LoadConfig(),
		Embedding:  llm.LoadEmbeddingConfig(),
		Completion: loadCompletionOptions(),

		ThemeWeights: weights,

		MaxAttempts: config.GetEnvInt("CLARA_MAX_ATTEMPTS", social.DefaultMaxAttempts),
		BaseDelay:   config.GetEnvDuration("CLARA_BASE_DELAY", social.DefaultBaseDelay),

		ArchiveBackend: strings.ToLower(config.GetEnv("ARCHIVE_BACKEND", ArchiveSupabase)),
		SupabaseURL:    config.GetEnv("SUPABASE_URL", ""),
		SupabaseKey:    config.GetEnv("SUPABASE_KEY", ""),
		DatabaseURL:    config.GetEnv("DATABASE_URL", ""),

		RedisURL:     config.GetEnv("REDIS_URL", ""),
		LockTTL:      config.GetEnvDuration("CLARA_LOCK_TTL", 0),
		KafkaBrokers: config.GetEnvList("KAFKA_BROKERS"),
		KafkaTopic:   config.GetEnv("KAFKA_POST_TOPIC", "clara.posts"),

		PushgatewayURL: config.GetEnv("PUSHGATEWAY_URL", ""),

		DryRun: config.GetEnvBool("CLARA_DRY_RUN", false),
	}, nil
}

func loadCompletionOptions() llm.CompletionOptions {
	defaults := social.DefaultCompletionOptions()
	return llm.CompletionOptions{
		MaxTokens:       config.GetEnvInt("LLM_MAX_TOKENS", defaults.MaxTokens),
		Temperature:     config.GetEnvFloat("LLM_TEMPERATURE", defaults.Temperature),
		PresencePenalty: config.GetEnvFloat("LLM_PRESENCE_PENALTY", defaults.PresencePenalty),
	}
}

// Validate reports every missing setting a posting run needs. A dry run
// only needs the LLM settings.
func (c Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" && strings.ToLower(c.LLM.Provider) != "ollama" {
		errs = append(errs, errors.New("OPENAI_API_KEY (or LLM_API_KEY) is required"))
	}
	if c.Completion.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.Completion.MaxTokens))
	}
	if c.DryRun {
		return errors.Join(errs...)
	}
	if c.Twitter.ConsumerKey == "" || c.Twitter.ConsumerSecret == "" ||
		c.Twitter.AccessToken == "" || c.Twitter.AccessSecret == "" {
		errs = append(errs, errors.New("TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET are required"))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts))
	}
	if c.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("base delay must be positive, got %s", c.BaseDelay))
	}
	switch c.ArchiveBackend {
	case ArchiveSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase archive backend"))
		}
	case ArchivePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres archive backend"))
		}
	case ArchiveNone:
	default:
		errs = append(errs, fmt.Errorf("unknown ARCHIVE_BACKEND %q", c.ArchiveBackend))
	}
	return errors.Join(errs...)
}
