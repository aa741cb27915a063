// Package transcript folds decoded progress events into conversation
// state. The reducer is a pure transformation: it takes a previous
// conversation value and returns a new one, never mutating the input,
// so the caller keeps exclusive ownership of the authoritative state.
package transcript

import (
	"github.com/quorumlabs/quorum/pkg/domain"
	"github.com/quorumlabs/quorum/pkg/stream"
)

// Reducer applies the per-send message state machine: each assistant
// stage moves idle -> running -> done|errored, tracked by the message's
// loading flag set.
type Reducer struct {
	slots map[string]domain.StageSlot
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithSlots replaces the stage-to-slot mapping table. The table must be
// total over the workflow's stage identifiers: events for stages
// outside it are rejected, not guessed.
func WithSlots(slots map[string]domain.StageSlot) Option {
	return func(r *Reducer) {
		r.slots = slots
	}
}

// DefaultSlots is the canonical three-stage correspondence.
func DefaultSlots() map[string]domain.StageSlot {
	return map[string]domain.StageSlot{
		"stage1": domain.SlotResponses,
		"stage2": domain.SlotRankings,
		"stage3": domain.SlotSynthesis,
	}
}

// New creates a Reducer with the default slot table.
func New(opts ...Option) *Reducer {
	r := &Reducer{slots: DefaultSlots()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin appends the optimistic user/assistant pair: the user's text and
// an empty assistant placeholder with all loading flags false. It runs
// before any network confirmation; Rollback undoes exactly this.
func (r *Reducer) Begin(c domain.Conversation, userText string) domain.Conversation {
	next := c.Clone()
	next.Messages = append(next.Messages, domain.NewUserMessage(userText))
	next.Messages = append(next.Messages, domain.NewAssistantPlaceholder())
	return next
}

// Apply folds one event into the most recently appended assistant
// message and returns the new conversation value.
//
// A stage_error event is applied successfully (it clears every loading
// flag); surfacing the failure to the user is the caller's job, via the
// event's Message. Apply returns a ProtocolError only for structural
// problems: no assistant message in flight, or a stage identifier the
// slot table cannot map.
func (r *Reducer) Apply(c domain.Conversation, ev domain.ProtocolEvent) (domain.Conversation, error) {
	next := c.Clone()
	idx := next.LastAssistant()
	if idx < 0 {
		return c, domain.Protocolf("event %s arrived with no assistant message in flight", ev.Kind)
	}
	msg := &next.Messages[idx]

	switch ev.Kind {
	case domain.EventStageStart:
		if ev.StageID == stream.TitleStageID {
			return next, nil
		}
		slot, ok := r.slots[ev.StageID]
		if !ok {
			return c, domain.Protocolf("stage %q is not mapped to a display slot", ev.StageID)
		}
		setLoading(msg, slot, true)

	case domain.EventStageComplete:
		if ev.StageID == stream.TitleStageID {
			title, err := decodeTitle(ev.Data)
			if err != nil {
				return c, err
			}
			next.Title = title
			return next, nil
		}
		slot, ok := r.slots[ev.StageID]
		if !ok {
			return c, domain.Protocolf("stage %q is not mapped to a display slot", ev.StageID)
		}
		// Last-write-wins on duplicate completion for the same stage.
		if err := writeSlot(msg, slot, ev.Data); err != nil {
			return c, err
		}
		setLoading(msg, slot, false)
		if len(ev.Metadata) > 0 {
			msg.Metadata = mergeMetadata(msg.Metadata, ev.Metadata)
		}

	case domain.EventStageError:
		// A failure at any stage halts the whole in-flight display.
		msg.Loading = domain.LoadingFlags{}

	case domain.EventWorkflowComplete:
		msg.Loading = domain.LoadingFlags{}
		if ev.Data != nil {
			msg.Metadata = mergeFinalSnapshot(msg.Metadata, ev.Data)
		}
		if len(ev.Metadata) > 0 {
			msg.Metadata = mergeMetadata(msg.Metadata, ev.Metadata)
		}

	default:
		return c, domain.Protocolf("unhandled event kind %q", ev.Kind)
	}

	return next, nil
}

// Rollback removes the optimistic user/assistant pair appended by
// Begin, restoring the conversation to exactly its pre-Begin state. It
// is only valid while no stage event has been applied and trusted as
// durable; the caller invokes it when the transport call fails.
func (r *Reducer) Rollback(c domain.Conversation) (domain.Conversation, error) {
	n := len(c.Messages)
	if n < 2 ||
		c.Messages[n-1].Role != domain.RoleAssistant ||
		c.Messages[n-2].Role != domain.RoleUser {
		return c, domain.ErrNoPendingSend
	}
	next := c.Clone()
	next.Messages = next.Messages[:n-2]
	return next, nil
}

func setLoading(msg *domain.Message, slot domain.StageSlot, v bool) {
	switch slot {
	case domain.SlotResponses:
		msg.Loading.Responses = v
	case domain.SlotRankings:
		msg.Loading.Rankings = v
	case domain.SlotSynthesis:
		msg.Loading.Synthesis = v
	}
}
