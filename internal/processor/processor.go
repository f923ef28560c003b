// Package processor runs batch passes that re-derive every client profile
// from the conversation store.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/classifier"
	"github.com/xaenox/chat-profiler/internal/metrics"
	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/storage"
)

// PassStats summarizes one batch pass.
type PassStats struct {
	PassID    string
	Processed int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Processor classifies conversations one at a time and writes the
// resulting profiles. It is the only writer of the profile store.
type Processor struct {
	conversations storage.ConversationStore
	profiles      storage.ProfileStore
	classifier    classifier.Classifier
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

func New(
	conversations storage.ConversationStore,
	profiles storage.ProfileStore,
	clf classifier.Classifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Processor {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Processor{
		conversations: conversations,
		profiles:      profiles,
		classifier:    clf,
		metrics:       m,
		logger:        logger,
	}
}

// RunPass scans every conversation once. A failing conversation is logged
// and counted; only failing to list conversations or a cancelled context
// fails the pass.
func (p *Processor) RunPass(ctx context.Context) (PassStats, error) {
	stats := PassStats{PassID: uuid.NewString()}
	logger := p.logger.With(zap.String("pass_id", stats.PassID))
	start := time.Now()

	convs, err := p.conversations.ListConversations(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list conversations: %w", err)
	}

	for _, conv := range convs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if conv == nil {
			continue
		}

		result := p.process(ctx, logger, conv)
		p.metrics.ObserveConversation(result)
		switch result {
		case metrics.ResultProcessed:
			stats.Processed++
		case metrics.ResultSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	stats.Duration = time.Since(start)
	p.metrics.ObservePass(stats.Duration)
	logger.Info("Completed processing all conversations",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

// ProcessConversation classifies and stores the profile of a single client.
// It returns a nil profile when the conversation has no user messages.
func (p *Processor) ProcessConversation(ctx context.Context, senderID string) (*models.ClientProfile, error) {
	conv, err := p.conversations.GetConversation(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", senderID, err)
	}
	return p.classifyAndStore(ctx, conv)
}

// process isolates one conversation: errors and panics become a failed result.
func (p *Processor) process(ctx context.Context, logger *zap.Logger, conv *models.Conversation) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Failed to process conversation",
				zap.String("sender_id", conv.SenderID),
				zap.Any("panic", r))
			result = metrics.ResultFailed
		}
	}()

	profile, err := p.classifyAndStore(ctx, conv)
	if err != nil {
		logger.Error("Failed to process conversation",
			zap.String("sender_id", conv.SenderID),
			zap.Int("events", len(conv.Events)),
			zap.Error(err))
		return metrics.ResultFailed
	}
	if profile == nil {
		logger.Debug("No user messages to process", zap.String("sender_id", conv.SenderID))
		return metrics.ResultSkipped
	}

	logger.Info("Processed and updated conversation",
		zap.String("client_id", profile.ClientID),
		zap.String("category", profile.CategoryName()),
		zap.Strings("items", profile.Items),
		zap.Strings("brands", profile.Brands))
	return metrics.ResultProcessed
}

func (p *Processor) classifyAndStore(ctx context.Context, conv *models.Conversation) (*models.ClientProfile, error) {
	profile, err := p.classifier.Classify(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	if err := p.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, nil
}
