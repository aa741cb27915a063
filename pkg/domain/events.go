package domain

// EventKind is the closed set of progress event categories.
type EventKind string

const (
	EventStageStart       EventKind = "stage_start"
	EventStageComplete    EventKind = "stage_complete"
	EventStageError       EventKind = "stage_error"
	EventWorkflowComplete EventKind = "workflow_complete"
)

// ProtocolEvent is one decoded progress notification from the backend.
// Events are immutable once decoded; consumers must not mutate Data or
// Metadata.
type ProtocolEvent struct {
	Kind EventKind `json:"type"`

	// StageID identifies the stage (and, by workflow convention, the
	// graph node) the event refers to. Empty for workflow_complete.
	StageID string `json:"stageId,omitempty"`

	// Data is the opaque stage payload. Its shape depends on the stage:
	// a list of worker responses, a list of evaluator rankings, or a
	// synthesized answer. pkg/transcript decodes it into typed slots.
	Data any `json:"data,omitempty"`

	// Message is human-readable error text, set on stage_error.
	Message string `json:"message,omitempty"`

	// Metadata is attached at stage completion and shallow-merged into
	// the assistant message's metadata record.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StageScoped reports whether the event refers to a single stage.
func (e ProtocolEvent) StageScoped() bool {
	switch e.Kind {
	case EventStageStart, EventStageComplete, EventStageError:
		return true
	}
	return false
}
