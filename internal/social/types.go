package social

import (
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hyperxav/clara/pkg/logging"
)

// BotUserID is the actor id stored with every archived post.
const BotUserID = "clara_bot"

// Theme biases the generation prompt. The set is closed.
type Theme string

const (
	ThemeProgresIllimite Theme = "progres_illimite"
	ThemeCritiqueSociale Theme = "critique_sociale"
	ThemeVisionFuture    Theme = "vision_future"
	ThemeSatireModerne   Theme = "satire_moderne"
	ThemePenseeCosmique  Theme = "pensee_cosmique"
)

// Generation is the outcome of one content request. Fallback is set when the
// language model failed and Text holds FallbackText; Err keeps the cause.
type Generation struct {
	Text     string
	Theme    Theme
	Fallback bool
	Err      error
}

// PostResult describes a successfully published post.
type PostResult struct {
	RunID     string
	ID        string
	Text      string
	Theme     Theme
	Fallback  bool
	CreatedAt time.Time
	Metrics   map[string]int
	Attempts  int
}

// ArchivedRecord is the row written after a successful post.
type ArchivedRecord struct {
	UserID    string
	TweetText string
	Response  string
	Embedding []float32
}

var (
	// ErrAttemptsExhausted wraps the last publish error once the attempt bound is reached.
	ErrAttemptsExhausted = errors.New("publish attempts exhausted")
	// ErrPermissionDenied is returned for forbidden responses that are not duplicates.
	ErrPermissionDenied = errors.New("posting permission denied")
	// ErrUnauthorized is returned when the posting credentials are rejected.
	ErrUnauthorized = errors.New("posting credentials rejected")
)

func discardLogger() logging.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
