package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/chat-profiler/internal/models"
)

type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	profiles      map[string]*models.ClientProfile
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[string]*models.Conversation),
		profiles:      make(map[string]*models.ClientProfile),
	}
}

// Conversation methods
func (s *MemoryStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*models.Conversation, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneConversation(s.conversations[id]))
	}
	return out, nil
}

func (s *MemoryStorage) GetConversation(ctx context.Context, senderID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conv, exists := s.conversations[senderID]; exists {
		return cloneConversation(conv), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.SenderID] = cloneConversation(conv)
	return nil
}

// Profile methods
func (s *MemoryStorage) UpsertProfile(ctx context.Context, profile *models.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.ClientID] = cloneProfile(profile)
	return nil
}

func (s *MemoryStorage) GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if profile, exists := s.profiles[clientID]; exists {
		return cloneProfile(profile), nil
	}
	return nil, ErrNotFound
}

// ProfileCount returns the number of stored profiles.
func (s *MemoryStorage) ProfileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	out := *c
	out.Events = append([]models.Event(nil), c.Events...)
	return &out
}

func cloneProfile(p *models.ClientProfile) *models.ClientProfile {
	out := *p
	if p.Category != nil {
		category := *p.Category
		out.Category = &category
	}
	out.Items = append([]string{}, p.Items...)
	out.Brands = append([]string{}, p.Brands...)
	return &out
}
