package stream

import (
	"encoding/json"
	"fmt"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// TitleStageID is the pseudo-stage carrying the generated conversation
// title. It maps to no display slot; the reducer writes it to the
// conversation title instead.
const TitleStageID = "title"

// wireEvent is the JSON shape carried on the wire. The backend speaks
// two vocabularies: the generic one (type + stageId) and a legacy
// flatter one (stage1_complete, title_complete, complete, error). Both
// are mapped onto the closed internal event set; unknown types are
// rejected, not guessed.
type wireEvent struct {
	Type     string         `json:"type"`
	StageID  string         `json:"stageId,omitempty"`
	Data     any            `json:"data,omitempty"`
	Message  string         `json:"message,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func decodeWireLine(payload []byte) (domain.ProtocolEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return domain.ProtocolEvent{}, fmt.Errorf("parse event line: %w", err)
	}
	return Canonicalize(w.Type, w.StageID, w.Data, w.Message, w.Metadata)
}

// Canonicalize maps a wire event onto the internal vocabulary. The
// mapping is total over the two supported wire vocabularies and returns
// a ProtocolError for anything else.
func Canonicalize(wireType, stageID string, data any, message string, metadata map[string]any) (domain.ProtocolEvent, error) {
	ev := domain.ProtocolEvent{
		StageID:  stageID,
		Data:     data,
		Message:  message,
		Metadata: metadata,
	}

	switch wireType {
	case "stage_start":
		ev.Kind = domain.EventStageStart
	case "stage_complete":
		ev.Kind = domain.EventStageComplete
	case "stage_error":
		ev.Kind = domain.EventStageError
	case "workflow_complete":
		ev.Kind = domain.EventWorkflowComplete

	// Legacy flat vocabulary.
	case "stage1_complete":
		ev.Kind, ev.StageID = domain.EventStageComplete, "stage1"
	case "stage2_complete":
		ev.Kind, ev.StageID = domain.EventStageComplete, "stage2"
	case "stage3_complete":
		ev.Kind, ev.StageID = domain.EventStageComplete, "stage3"
	case "title_complete":
		ev.Kind, ev.StageID = domain.EventStageComplete, TitleStageID
	case "complete":
		ev.Kind = domain.EventWorkflowComplete
	case "error":
		ev.Kind = domain.EventStageError

	default:
		return domain.ProtocolEvent{}, domain.Protocolf("unknown event type %q", wireType)
	}

	if ev.StageID == "" && (ev.Kind == domain.EventStageStart || ev.Kind == domain.EventStageComplete) {
		return domain.ProtocolEvent{}, domain.Protocolf("event type %q requires a stageId", wireType)
	}
	return ev, nil
}
