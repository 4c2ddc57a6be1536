package config

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperxav/clara/internal/social"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TWITTER_API_KEY", "ck")
	t.Setenv("TWITTER_API_SECRET", "cs")
	t.Setenv("TWITTER_ACCESS_TOKEN", "at")
	t.Setenv("TWITTER_ACCESS_SECRET", "as")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUPABASE_URL", "https://demo.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
}

func TestLoadConfigDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxAttempts != 3 || cfg.BaseDelay != time.Minute {
		t.Fatalf("unexpected retry defaults %d/%s", cfg.MaxAttempts, cfg.BaseDelay)
	}
	if cfg.ArchiveBackend != ArchiveSupabase {
		t.Fatalf("expected supabase backend, got %q", cfg.ArchiveBackend)
	}
	if cfg.LLM.Model != "gpt-4" || cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Embedding.Model != "text-embedding-ada-002" {
		t.Fatalf("unexpected embedding model %q", cfg.Embedding.Model)
	}
	if len(cfg.ThemeWeights) != len(social.DefaultThemeWeights()) {
		t.Fatalf("expected default theme weights, got %v", cfg.ThemeWeights)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CLARA_THEME_WEIGHTS", "pensee_cosmique=1")
	t.Setenv("CLARA_MAX_ATTEMPTS", "5")
	t.Setenv("CLARA_BASE_DELAY", "30")
	t.Setenv("ARCHIVE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/clara")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxAttempts != 5 || cfg.BaseDelay != 30*time.Second {
		t.Fatalf("unexpected retry overrides %d/%s", cfg.MaxAttempts, cfg.BaseDelay)
	}
	if cfg.ArchiveBackend != ArchivePostgres {
		t.Fatalf("expected postgres backend, got %q", cfg.ArchiveBackend)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	for _, w := range cfg.ThemeWeights {
		if w.Theme != social.ThemePenseeCosmique && w.Weight != 0 {
			t.Fatalf("unexpected weight for %q: %v", w.Theme, w.Weight)
		}
	}
}

func TestLoadConfigRejectsBadThemeWeights(t *testing.T) {
	t.Setenv("CLARA_THEME_WEIGHTS", "vision_future=0.3")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "CLARA_THEME_WEIGHTS") {
		t.Fatalf("expected theme weight error, got %v", err)
	}
}

func TestValidateReportsMissingSettings(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")
	t.Setenv("ARCHIVE_BACKEND", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"TWITTER_API_KEY", "OPENAI_API_KEY", "SUPABASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	cfg.ArchiveBackend = "s3"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown ARCHIVE_BACKEND") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestValidateRejectsZeroBaseDelay(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CLARA_BASE_DELAY", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseDelay != 0 {
		t.Fatalf("expected zero base delay to be kept, got %s", cfg.BaseDelay)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "base delay must be positive") {
		t.Fatalf("expected base delay error, got %v", err)
	}
}

func TestLoadConfigCompletionOptions(t *testing.T) {
	setValidEnv(t)
	t.Setenv("LLM_TEMPERATURE", "")
	t.Setenv("LLM_PRESENCE_PENALTY", "")
	t.Setenv("LLM_MAX_TOKENS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Completion != social.DefaultCompletionOptions() {
		t.Fatalf("expected default completion options, got %+v", cfg.Completion)
	}

	t.Setenv("LLM_TEMPERATURE", "0.4")
	t.Setenv("LLM_PRESENCE_PENALTY", "0.1")
	t.Setenv("LLM_MAX_TOKENS", "80")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Completion.Temperature != 0.4 || cfg.Completion.PresencePenalty != 0.1 || cfg.Completion.MaxTokens != 80 {
		t.Fatalf("unexpected completion options %+v", cfg.Completion)
	}
}

func TestValidateDryRunNeedsOnlyLLM(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")
	t.Setenv("ARCHIVE_BACKEND", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CLARA_DRY_RUN", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.DryRun {
		t.Fatal("expected CLARA_DRY_RUN to enable dry run")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg.DryRun = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a full run to require posting credentials")
	}
}
