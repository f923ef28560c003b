package processor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xaenox/chat-profiler/internal/classifier"
	"github.com/xaenox/chat-profiler/internal/metrics"
	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/nlp"
	"github.com/xaenox/chat-profiler/internal/processor"
	"github.com/xaenox/chat-profiler/internal/storage"
	"github.com/xaenox/chat-profiler/internal/taxonomy"
	"github.com/xaenox/chat-profiler/internal/testhelpers"
)

func ts(v float64) *float64 { return &v }

func userEvent(t float64, text string) models.Event {
	return models.Event{Event: models.EventUser, Timestamp: ts(t), Text: text}
}

func newConversationClassifier(annotator nlp.Annotator) *classifier.ConversationClassifier {
	tax := taxonomy.Default()
	return classifier.NewConversationClassifier(
		nlp.NewExtractor(annotator),
		classifier.NewResolver(tax),
		classifier.NewBrandDetector(tax),
		zap.NewNop(),
	)
}

func seed(t *testing.T, store *storage.MemoryStorage, convs ...*models.Conversation) {
	t.Helper()
	for _, c := range convs {
		require.NoError(t, store.SaveConversation(context.Background(), c))
	}
}

// panicClassifier panics for one sender and delegates otherwise.
type panicClassifier struct {
	next     classifier.Classifier
	senderID string
}

func (c *panicClassifier) Classify(ctx context.Context, conv *models.Conversation) (*models.ClientProfile, error) {
	if conv.SenderID == c.senderID {
		panic("boom")
	}
	return c.next.Classify(ctx, conv)
}

// failingProfiles rejects writes for one client.
type failingProfiles struct {
	storage.ProfileStore
	clientID string
}

func (f *failingProfiles) UpsertProfile(ctx context.Context, p *models.ClientProfile) error {
	if p.ClientID == f.clientID {
		return errors.New("write refused")
	}
	return f.ProfileStore.UpsertProfile(ctx, p)
}

func TestRunPass(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store,
		&models.Conversation{SenderID: "a", Events: []models.Event{userEvent(1, "looking for a bag")}},
		&models.Conversation{SenderID: "b", Events: []models.Event{{Event: "bot", Timestamp: ts(1), Text: "hello"}}},
		&models.Conversation{SenderID: "c", Events: []models.Event{{Event: models.EventUser, Text: "no timestamp"}}},
		&models.Conversation{SenderID: "d", Events: []models.Event{userEvent(5, "I need a new laptop")}},
	)

	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	p := processor.New(store, store, newConversationClassifier(testhelpers.NewAnnotator()), metrics.New(reg), zap.New(core))

	stats, err := p.RunPass(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, stats.PassID)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, store.ProfileCount())

	got, err := store.GetProfile(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, "Électronique", got.CategoryName())
	assert.Equal(t, []string{"laptop"}, got.Items)

	_, err = store.GetProfile(context.Background(), "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	failures := logs.FilterMessage("Failed to process conversation").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "c", failures[0].ContextMap()["sender_id"])
	assert.Equal(t, stats.PassID, failures[0].ContextMap()["pass_id"])

	conversations := func(result string) float64 {
		return testhelpers.CounterValue(t, reg, "profiler_conversations_total", map[string]string{"result": result})
	}
	assert.Equal(t, 2.0, conversations(metrics.ResultProcessed))
	assert.Equal(t, 1.0, conversations(metrics.ResultSkipped))
	assert.Equal(t, 1.0, conversations(metrics.ResultFailed))
	assert.Equal(t, 1.0, testhelpers.CounterValue(t, reg, "profiler_passes_total", nil))
}

func TestRunPass_RecoversFromPanic(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store,
		&models.Conversation{SenderID: "a", Events: []models.Event{userEvent(1, "bag")}},
		&models.Conversation{SenderID: "b", Events: []models.Event{userEvent(1, "shoe")}},
	)

	core, logs := observer.New(zapcore.ErrorLevel)
	clf := &panicClassifier{next: newConversationClassifier(testhelpers.NewAnnotator()), senderID: "a"}
	p := processor.New(store, store, clf, nil, zap.New(core))

	stats, err := p.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Failed)

	_, err = store.GetProfile(context.Background(), "b")
	assert.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ContextMap()["sender_id"])
	assert.Equal(t, "boom", entries[0].ContextMap()["panic"])
}

func TestRunPass_AnnotationAndStoreFailuresAreIsolated(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store,
		&models.Conversation{SenderID: "a", Events: []models.Event{userEvent(1, "broken bag")}},
		&models.Conversation{SenderID: "b", Events: []models.Event{userEvent(1, "shoe")}},
		&models.Conversation{SenderID: "c", Events: []models.Event{userEvent(1, "golf")}},
	)

	annotator := testhelpers.NewAnnotator()
	annotator.FailOn = "broken"
	annotator.Err = errors.New("tagger offline")

	profiles := &failingProfiles{ProfileStore: store, clientID: "b"}
	p := processor.New(store, profiles, newConversationClassifier(annotator), nil, zap.NewNop())

	stats, err := p.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 2, stats.Failed)

	got, err := store.GetProfile(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, "Sport", got.CategoryName())
}

func TestRunPass_Idempotent(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, &models.Conversation{
		SenderID: "a",
		Events: []models.Event{
			userEvent(1, "I love my apple iphone"),
			userEvent(2, "looking for two bags and shoes"),
		},
		Address: "Lyon",
	})

	p := processor.New(store, store, newConversationClassifier(testhelpers.NewAnnotator()), nil, zap.NewNop())

	_, err := p.RunPass(context.Background())
	require.NoError(t, err)
	first, err := store.GetProfile(context.Background(), "a")
	require.NoError(t, err)

	_, err = p.RunPass(context.Background())
	require.NoError(t, err)
	second, err := store.GetProfile(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.ProfileCount())
	assert.Equal(t, []string{"bag", "shoe"}, second.Items)
}

func TestRunPass_CancelledContext(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, &models.Conversation{SenderID: "a", Events: []models.Event{userEvent(1, "bag")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := processor.New(store, store, newConversationClassifier(testhelpers.NewAnnotator()), nil, zap.NewNop())
	_, err := p.RunPass(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.ProfileCount())
}

func TestProcessConversation(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store,
		&models.Conversation{SenderID: "a", Events: []models.Event{userEvent(1, "nike shoes")}},
		&models.Conversation{SenderID: "b"},
	)
	p := processor.New(store, store, newConversationClassifier(testhelpers.NewAnnotator()), nil, zap.NewNop())

	t.Run("classifies and stores", func(t *testing.T) {
		profile, err := p.ProcessConversation(context.Background(), "a")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "Mode", profile.CategoryName())
		assert.Equal(t, []string{"nike"}, profile.Brands)

		stored, err := store.GetProfile(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, profile, stored)
	})

	t.Run("no user messages", func(t *testing.T) {
		profile, err := p.ProcessConversation(context.Background(), "b")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("unknown sender", func(t *testing.T) {
		_, err := p.ProcessConversation(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
