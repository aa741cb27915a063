// Package memory provides in-process adapters: a conversation store and
// a workflow loader. Both are safe for concurrent use and are the
// defaults the facade falls back to.
package memory

import (
	"context"
	"sync"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// Store implements ports.ConversationStore in memory.
type Store struct {
	data map[string]domain.Conversation
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Conversation),
	}
}

// Save persists a deep copy so the caller keeps exclusive ownership of
// its value.
func (s *Store) Save(ctx context.Context, conversation *domain.Conversation) error {
	copied := conversation.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conversation.ID] = copied
	return nil
}

// Load retrieves a copy of the conversation.
func (s *Store) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	ret := conv.Clone()
	return &ret, nil
}

// Delete removes the conversation.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored conversation IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
