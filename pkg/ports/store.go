package ports

import (
	"context"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// ConversationStore persists conversation transcripts between sends.
type ConversationStore interface {
	// Save persists the conversation under its ID, replacing any
	// previous version.
	Save(ctx context.Context, conversation *domain.Conversation) error

	// Load retrieves a conversation by ID.
	// Returns domain.ErrConversationNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Conversation, error)

	// Delete removes the conversation.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored conversations.
	List(ctx context.Context) ([]string, error)
}
