package ports

import (
	"context"
	"io"
)

// SendRequest is the initiating call against a conversation-scoped
// endpoint.
type SendRequest struct {
	ConversationID string `json:"-"`
	Content        string `json:"content"`
	WorkflowID     string `json:"workflowId"`
}

// Transport issues the initiating request and exposes the live progress
// stream. A single attempt is made; retry policy is not this layer's
// concern.
type Transport interface {
	// OpenStream performs the send request and returns the raw byte
	// stream of progress events. A non-success response is returned as
	// a *domain.TransportError without any stream body to decode; the
	// caller reacts by rolling back its optimistic state. The caller
	// owns the returned stream and must close it on every exit path.
	OpenStream(ctx context.Context, req SendRequest) (io.ReadCloser, error)
}
