package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperxav/clara/pkg/clients/x"
	"github.com/hyperxav/clara/pkg/llm"
)

type fixedClient struct {
	id    string
	texts []string
}

func (c *fixedClient) CreateTweet(_ context.Context, text string) (*x.Tweet, error) {
	c.texts = append(c.texts, text)
	return &x.Tweet{ID: c.id, Text: text, CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}, nil
}

type failingNotifier struct{ calls int }

func (n *failingNotifier) NotifyPosted(context.Context, PostResult) error {
	n.calls++
	return errors.New("kafka unavailable")
}

func newFlowUnderTest(t *testing.T, client PostingClient, store RecordStore, notifier PostNotifier, metrics *Metrics) *Flow {
	t.Helper()
	weights, err := ParseThemeWeights("progres_illimite=1.0")
	require.NoError(t, err)
	selector, err := NewThemeSelector(weights, nil)
	require.NoError(t, err)

	gen := NewContentGenerator(GeneratorConfig{
		LLM:     &stubLLM{completion: llm.Completion{Choices: []string{"texte de test"}}},
		Themes:  selector,
		Metrics: metrics,
	})
	pub := NewPublisher(PublisherConfig{
		Client:    client,
		Generator: gen,
		Sleep:     func(context.Context, time.Duration) error { return nil },
		Metrics:   metrics,
	})
	arch := NewArchiver(ArchiverConfig{
		Embedder: &stubEmbedder{vector: []float32{0.1, 0.2}},
		Store:    store,
		Metrics:  metrics,
	})
	return NewFlow(FlowConfig{
		Generator: gen,
		Publisher: pub,
		Archiver:  arch,
		Notifier:  notifier,
		Metrics:   metrics,
	})
}

func TestFlowRunPostsAndArchives(t *testing.T) {
	client := &fixedClient{id: "42"}
	store := &memoryStore{}
	metrics := NewMetrics()

	res, err := newFlowUnderTest(t, client, store, nil, metrics).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "42", res.ID)
	assert.Equal(t, "texte de test", res.Text)
	assert.Equal(t, ThemeProgresIllimite, res.Theme)
	assert.Equal(t, 1, res.Attempts)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"texte de test"}, client.texts)

	require.Len(t, store.records, 1)
	assert.Equal(t, "texte de test", store.records[0].TweetText)
	assert.Equal(t, BotUserID, store.records[0].UserID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(runStatusPosted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.publishAttempts.WithLabelValues("success")))
}

func TestFlowRunIgnoresArchiveAndNotifyFailures(t *testing.T) {
	client := &fixedClient{id: "7"}
	notifier := &failingNotifier{}

	res, err := newFlowUnderTest(t, client, &memoryStore{err: errors.New("disk full")}, notifier, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", res.ID)
	assert.Equal(t, "texte de test", res.Text)
	assert.Equal(t, 1, notifier.calls)
}

func TestFlowRunReportsPublishFailure(t *testing.T) {
	metrics := NewMetrics()
	client := &scriptedClient{responses: []func(string) (*x.Tweet, error){
		failing(&x.ForbiddenError{APIError: x.APIError{StatusCode: 403, Detail: "suspended"}}),
	}}
	store := &memoryStore{}

	res, err := newFlowUnderTest(t, client, store, nil, metrics).Run(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, res)
	assert.Empty(t, store.records)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(runStatusFailed)))
}

func TestFlowRunRequiresCapabilities(t *testing.T) {
	_, err := NewFlow(FlowConfig{}).Run(context.Background())
	require.Error(t, err)
}
