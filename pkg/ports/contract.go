package ports

import (
	"context"
	"testing"
	"time"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// RunConversationStoreContract verifies that a ConversationStore
// implementation honors the interface semantics. Adapter test suites
// call it against a fresh, empty store.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	t.Helper()
	ctx := context.Background()

	conv := domain.Conversation{
		ID:        "contract-1",
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Title:     "Contract",
		Messages: []domain.Message{
			domain.NewUserMessage("hello"),
			{
				Role: domain.RoleAssistant,
				Responses: []domain.WorkerResponse{
					{Worker: "alpha", Label: "A", Content: "hi"},
				},
				Synthesis: &domain.SynthesizedResponse{Content: "hi there"},
				Metadata: &domain.MessageMetadata{
					LabelMap: map[string]string{"A": "alpha"},
				},
			},
		},
	}

	t.Run("LoadMissing", func(t *testing.T) {
		if _, err := store.Load(ctx, "does-not-exist"); err != domain.ErrConversationNotFound {
			t.Fatalf("expected ErrConversationNotFound, got %v", err)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		if err := store.Save(ctx, &conv); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, conv.ID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.Title != conv.Title || len(got.Messages) != len(conv.Messages) {
			t.Fatalf("loaded conversation differs: %+v", got)
		}
		if got.Messages[1].Synthesis == nil || got.Messages[1].Synthesis.Content != "hi there" {
			t.Fatalf("assistant message did not round-trip: %+v", got.Messages[1])
		}
	})

	t.Run("Isolation", func(t *testing.T) {
		got, err := store.Load(ctx, conv.ID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		got.Title = "mutated by caller"
		again, err := store.Load(ctx, conv.ID)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if again.Title != "Contract" {
			t.Fatal("store leaked a mutable reference to its internal state")
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == conv.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("saved conversation missing from list: %v", ids)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, conv.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, conv.ID); err != domain.ErrConversationNotFound {
			t.Fatalf("expected ErrConversationNotFound after delete, got %v", err)
		}
	})
}
