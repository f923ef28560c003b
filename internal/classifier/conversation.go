package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/models"
)

const (
	// recentWindow is how many of the newest messages form the combined text.
	recentWindow = 2
	// textSeparator joins the texts of the recent window, newest first.
	textSeparator = "/"
)

// ErrMissingTimestamp is returned when a user event carries no timestamp.
var ErrMissingTimestamp = errors.New("user event without timestamp")

// KeywordExtractor reduces text to lemmas.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// ConversationClassifier derives a client profile from the newest user
// messages of a conversation, falling back to older messages one at a time
// when the newest ones carry no category or item signal.
type ConversationClassifier struct {
	extractor KeywordExtractor
	resolver  *Resolver
	brands    *BrandDetector
	logger    *zap.Logger
}

func NewConversationClassifier(extractor KeywordExtractor, resolver *Resolver, brands *BrandDetector, logger *zap.Logger) *ConversationClassifier {
	return &ConversationClassifier{
		extractor: extractor,
		resolver:  resolver,
		brands:    brands,
		logger:    logger,
	}
}

// Classify builds the profile for conv. It returns nil, nil when the
// conversation has no user messages.
func (c *ConversationClassifier) Classify(ctx context.Context, conv *models.Conversation) (*models.ClientProfile, error) {
	messages, err := userMessages(conv)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	recent := messages[:min(recentWindow, len(messages))]
	texts := make([]string, len(recent))
	for i, msg := range recent {
		texts[i] = msg.Text
	}
	combined := strings.Join(texts, textSeparator)

	result, err := c.resolve(ctx, combined)
	if err != nil {
		return nil, err
	}

	if !result.Found || len(result.Items) == 0 {
		result, err = c.fallback(ctx, conv.SenderID, messages[len(recent):], result)
		if err != nil {
			return nil, err
		}
	}

	profile := &models.ClientProfile{
		ClientID:          conv.SenderID,
		Items:             result.Items,
		Brands:            c.brands.Detect(messages),
		Text:              combined,
		LatestMessageDate: messages[0].Timestamp,
		Address:           conv.Address,
	}
	if result.Found {
		category := result.Category
		profile.Category = &category
	}

	return profile, nil
}

// fallback walks older messages newest first and stops at the first one that
// yields a category or items. Each field is only taken when the current
// value is still empty. The walk does not continue to fill a field the
// stopping message left empty.
func (c *ConversationClassifier) fallback(ctx context.Context, senderID string, older []models.Message, current Resolution) (Resolution, error) {
	for _, msg := range older {
		candidate, err := c.resolve(ctx, msg.Text)
		if err != nil {
			return Resolution{}, err
		}
		if candidate.Empty() {
			continue
		}

		if !current.Found && candidate.Found {
			current.Category = candidate.Category
			current.Found = true
		}
		if len(current.Items) == 0 && len(candidate.Items) > 0 {
			current.Items = candidate.Items
		}

		c.logger.Debug("Resolved from older message",
			zap.String("sender_id", senderID),
			zap.Time("message_date", msg.Timestamp),
			zap.String("category", current.Category))
		break
	}
	return current, nil
}

func (c *ConversationClassifier) resolve(ctx context.Context, text string) (Resolution, error) {
	lemmas, err := c.extractor.Extract(ctx, text)
	if err != nil {
		return Resolution{}, fmt.Errorf("extract keywords: %w", err)
	}
	return c.resolver.Resolve(lemmas), nil
}

// userMessages returns the user events of conv, newest first. Events with
// equal timestamps keep their conversation order.
func userMessages(conv *models.Conversation) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(conv.Events))
	for i, ev := range conv.Events {
		if !ev.IsUser() {
			continue
		}
		if ev.Timestamp == nil {
			return nil, fmt.Errorf("event %d: %w", i, ErrMissingTimestamp)
		}
		messages = append(messages, models.Message{
			Timestamp: epochToTime(*ev.Timestamp),
			Text:      ev.Text,
			Position:  i,
		})
	}

	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.After(messages[j].Timestamp)
		}
		return messages[i].Position < messages[j].Position
	})
	return messages, nil
}

func epochToTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
