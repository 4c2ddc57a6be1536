package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers without any choice.
var ErrEmptyCompletion = errors.New("llm: completion returned no choices")

type Provider interface {
	Generate(ctx context.Context, messages []Message, opts CompletionOptions) (Completion, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions carries sampling parameters. Zero values are omitted from
// the request so the provider default applies.
type CompletionOptions struct {
	MaxTokens       int
	Temperature     float64
	PresencePenalty float64
}

type Completion struct {
	Model   string
	Choices []string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FirstChoice returns the text of the first choice.
func (c Completion) FirstChoice() (string, error) {
	if len(c.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return c.Choices[0], nil
}

func SystemMessage(content string) Message { return Message{Role: "system", Content: content} }

func UserMessage(content string) Message { return Message{Role: "user", Content: content} }
