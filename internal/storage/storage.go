package storage

import (
	"context"
	"errors"

	"github.com/xaenox/chat-profiler/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	Close() error

	ConversationStore
	ProfileStore
}

// ConversationStore reads the chat tracker documents. SaveConversation is
// only used to seed the store.
type ConversationStore interface {
	ListConversations(ctx context.Context) ([]*models.Conversation, error)
	GetConversation(ctx context.Context, senderID string) (*models.Conversation, error)
	SaveConversation(ctx context.Context, conv *models.Conversation) error
}

// ProfileStore holds one profile per client id. UpsertProfile replaces
// every field of the record, creating it if needed, so repeating a write
// leaves the store unchanged.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *models.ClientProfile) error
	GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
