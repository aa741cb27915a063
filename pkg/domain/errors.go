package domain

import (
	"errors"
	"fmt"
)

// ErrConversationNotFound is returned when a conversation ID cannot be
// found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrWorkflowNotFound is returned when a workflow ID is unknown to the
// loader.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrNoPendingSend is returned by Rollback when the transcript does not
// end with an optimistic user/assistant pair.
var ErrNoPendingSend = errors.New("no optimistic message pair to roll back")

// TransportError reports a failed or non-success initiating request.
// It is fatal to the current send and triggers rollback of the
// optimistic message pair.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transport: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("transport: unexpected status %d: %s", e.StatusCode, e.Body)
}

// ProtocolError reports a structural violation: an event referencing an
// unmapped stage, an edge pointing at an unknown node, or a cycle in a
// workflow graph. It is a different severity than StageError, which is
// a reported business failure.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// Protocolf builds a ProtocolError from a format string.
func Protocolf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// StageError is the application-level failure carried by a stage_error
// event. It is surfaced to the caller but does not roll back completed
// stages and does not terminate stream decoding.
type StageError struct {
	StageID string
	Message string
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StageID != "" {
		return fmt.Sprintf("stage %s failed", e.StageID)
	}
	return "workflow stage failed"
}
