package social

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperxav/clara/pkg/llm"
	"github.com/hyperxav/clara/pkg/logging"
)

const (
	maxPostLength         = 280
	defaultComposeTimeout = 45 * time.Second
)

// DefaultCompletionOptions favour diverse, non-repetitive short output.
func DefaultCompletionOptions() llm.CompletionOptions {
	return llm.CompletionOptions{
		MaxTokens:       100,
		Temperature:     0.9,
		PresencePenalty: 0.8,
	}
}

// Generator produces post content. It never fails; failures surface as a
// fallback Generation.
type Generator interface {
	Generate(ctx context.Context) Generation
}

type GeneratorConfig struct {
	LLM     llm.Provider
	Themes  *ThemeSelector
	Persona string
	Options llm.CompletionOptions
	Timeout time.Duration
	Logger  logging.Logger
	Metrics *Metrics
}

type ContentGenerator struct {
	llm     llm.Provider
	themes  *ThemeSelector
	persona string
	options llm.CompletionOptions
	timeout time.Duration
	logger  logging.Logger
	metrics *Metrics
}

func NewContentGenerator(cfg GeneratorConfig) *ContentGenerator {
	persona := cfg.Persona
	if persona == "" {
		persona = Persona
	}
	opts := cfg.Options
	if opts == (llm.CompletionOptions{}) {
		opts = DefaultCompletionOptions()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultComposeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &ContentGenerator{
		llm:     cfg.LLM,
		themes:  cfg.Themes,
		persona: persona,
		options: opts,
		timeout: timeout,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Generate picks a theme and asks the model for a post about it.
func (g *ContentGenerator) Generate(ctx context.Context) Generation {
	theme := ThemeProgresIllimite
	if g.themes != nil {
		theme = g.themes.Pick()
	}
	return g.GenerateFor(ctx, theme)
}

// GenerateFor asks the model for a post on theme.
func (g *ContentGenerator) GenerateFor(ctx context.Context, theme Theme) Generation {
	start := time.Now()
	text, err := g.complete(ctx, theme)
	fallback := err != nil
	g.metrics.observeGeneration(time.Since(start), fallback)

	if fallback {
		g.logger.WithError(err).WithField("theme", string(theme)).Error("Content generation failed, using fallback text")
		return Generation{Text: FallbackText, Theme: theme, Fallback: true, Err: err}
	}

	entry := g.logger.WithFields(logging.Fields{
		"theme":  string(theme),
		"length": utf8.RuneCountInString(text),
	})
	if utf8.RuneCountInString(text) > maxPostLength {
		entry.Warn("Generated text exceeds 280 characters")
	} else {
		entry.Debug("Generated post text")
	}
	return Generation{Text: text, Theme: theme}
}

func (g *ContentGenerator) complete(ctx context.Context, theme Theme) (string, error) {
	if g.llm == nil {
		return "", errors.New("LLM provider not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.llm.Generate(ctx, []llm.Message{
		llm.SystemMessage(g.persona),
		llm.UserMessage(theme.Instruction()),
	}, g.options)
	if err != nil {
		return "", err
	}
	text, err := completion.FirstChoice()
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}
