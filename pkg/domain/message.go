package domain

// Role discriminates the two message variants in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StageSlot identifies one of the three stage slots on an assistant
// message.
type StageSlot int

const (
	SlotNone StageSlot = iota
	// SlotResponses holds the parallel per-worker responses (stage 1).
	SlotResponses
	// SlotRankings holds the per-evaluator peer rankings (stage 2).
	SlotRankings
	// SlotSynthesis holds the single synthesized answer (stage 3).
	SlotSynthesis
)

func (s StageSlot) String() string {
	switch s {
	case SlotResponses:
		return "responses"
	case SlotRankings:
		return "rankings"
	case SlotSynthesis:
		return "synthesis"
	}
	return "none"
}

// WorkerResponse is one worker's answer from the parallel query stage.
type WorkerResponse struct {
	Worker  string `json:"worker" yaml:"worker" mapstructure:"worker"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Content string `json:"content" yaml:"content" mapstructure:"content"`
}

// EvaluatorRanking is one evaluator's ordering of the anonymized
// responses, best first.
type EvaluatorRanking struct {
	Evaluator string   `json:"evaluator" yaml:"evaluator" mapstructure:"evaluator"`
	Ranking   []string `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Rationale string   `json:"rationale,omitempty" yaml:"rationale,omitempty" mapstructure:"rationale"`
}

// SynthesizedResponse is the final answer produced from the ranked
// responses.
type SynthesizedResponse struct {
	Synthesizer string `json:"synthesizer,omitempty" yaml:"synthesizer,omitempty" mapstructure:"synthesizer"`
	Content     string `json:"content" yaml:"content" mapstructure:"content"`
}

// AggregateRanking summarizes the evaluations one labeled response
// received across all evaluators.
type AggregateRanking struct {
	Label       string  `json:"label" mapstructure:"label"`
	MeanRank    float64 `json:"meanRank" mapstructure:"meanRank"`
	Evaluations int     `json:"evaluations" mapstructure:"evaluations"`
}

// MessageMetadata is the metadata record attached to an assistant
// message as completion events arrive.
type MessageMetadata struct {
	// LabelMap maps anonymized response labels back to worker identity,
	// for display only.
	LabelMap map[string]string `json:"labelMap,omitempty" mapstructure:"labelMap"`

	AggregateRankings []AggregateRanking `json:"aggregateRankings,omitempty" mapstructure:"aggregateRankings"`

	// Custom carries open-ended payloads (e.g. the final graph progress
	// snapshot from workflow_complete).
	Custom map[string]any `json:"custom,omitempty" mapstructure:",remain"`
}

// Clone returns a deep copy of the metadata record.
func (m *MessageMetadata) Clone() *MessageMetadata {
	if m == nil {
		return nil
	}
	out := &MessageMetadata{}
	if m.LabelMap != nil {
		out.LabelMap = make(map[string]string, len(m.LabelMap))
		for k, v := range m.LabelMap {
			out.LabelMap[k] = v
		}
	}
	if m.AggregateRankings != nil {
		out.AggregateRankings = append([]AggregateRanking(nil), m.AggregateRankings...)
	}
	if m.Custom != nil {
		out.Custom = make(map[string]any, len(m.Custom))
		for k, v := range m.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

// LoadingFlags tracks which stages are currently running, for display.
// The flags are transient send-time state and are not persisted.
type LoadingFlags struct {
	Responses bool `json:"-"`
	Rankings  bool `json:"-"`
	Synthesis bool `json:"-"`
}

// Any reports whether any stage is still in flight.
func (l LoadingFlags) Any() bool {
	return l.Responses || l.Rankings || l.Synthesis
}

// Message is one entry in a conversation transcript. Role selects the
// variant: user messages carry only Content; assistant messages carry
// the three stage slots, the metadata record, and the loading flags.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`

	Responses []WorkerResponse     `json:"responses,omitempty"`
	Rankings  []EvaluatorRanking   `json:"rankings,omitempty"`
	Synthesis *SynthesizedResponse `json:"synthesis,omitempty"`
	Metadata  *MessageMetadata     `json:"metadata,omitempty"`

	Loading LoadingFlags `json:"-"`
}

// NewUserMessage builds the user variant.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantPlaceholder builds the empty assistant variant appended
// optimistically before any event has been confirmed.
func NewAssistantPlaceholder() Message {
	return Message{Role: RoleAssistant}
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Responses != nil {
		out.Responses = append([]WorkerResponse(nil), m.Responses...)
	}
	if m.Rankings != nil {
		out.Rankings = make([]EvaluatorRanking, len(m.Rankings))
		for i, r := range m.Rankings {
			out.Rankings[i] = r
			if r.Ranking != nil {
				out.Rankings[i].Ranking = append([]string(nil), r.Ranking...)
			}
		}
	}
	if m.Synthesis != nil {
		s := *m.Synthesis
		out.Synthesis = &s
	}
	out.Metadata = m.Metadata.Clone()
	return out
}
