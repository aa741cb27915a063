package domain

import "time"

// Conversation is an ordered, append-only message transcript. The value
// is exclusively owned by the caller: the reducer never retains it and
// always returns a fresh copy, so persistence and lifetime are the
// caller's concern.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title,omitempty"`
	Messages  []Message `json:"messages"`
}

// NewConversation creates an empty conversation.
func NewConversation(id string) Conversation {
	return Conversation{ID: id, CreatedAt: time.Now().UTC()}
}

// Clone returns a deep copy of the conversation.
func (c Conversation) Clone() Conversation {
	out := c
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		for i, m := range c.Messages {
			out.Messages[i] = m.Clone()
		}
	}
	return out
}

// LastAssistant returns the index of the most recently appended
// assistant message, or -1 if the transcript has none.
func (c Conversation) LastAssistant() int {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return i
		}
	}
	return -1
}
