package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastAssistant(t *testing.T) {
	conv := NewConversation("c")
	assert.Equal(t, -1, conv.LastAssistant())

	conv.Messages = append(conv.Messages, NewUserMessage("q1"), NewAssistantPlaceholder())
	assert.Equal(t, 1, conv.LastAssistant())

	conv.Messages = append(conv.Messages, NewUserMessage("q2"))
	assert.Equal(t, 1, conv.LastAssistant())

	conv.Messages = append(conv.Messages, NewAssistantPlaceholder())
	assert.Equal(t, 3, conv.LastAssistant())
}

func TestConversationCloneIsDeep(t *testing.T) {
	conv := NewConversation("c")
	conv.Messages = append(conv.Messages, Message{
		Role:      RoleAssistant,
		Responses: []WorkerResponse{{Worker: "aster", Content: "original"}},
		Rankings:  []EvaluatorRanking{{Evaluator: "birch", Ranking: []string{"A", "B"}}},
		Synthesis: &SynthesizedResponse{Content: "answer"},
		Metadata: &MessageMetadata{
			LabelMap: map[string]string{"A": "aster"},
			Custom:   map[string]any{"round": 1},
		},
	})

	clone := conv.Clone()
	clone.Messages[0].Responses[0].Content = "mutated"
	clone.Messages[0].Rankings[0].Ranking[0] = "Z"
	clone.Messages[0].Synthesis.Content = "mutated"
	clone.Messages[0].Metadata.LabelMap["A"] = "mutated"

	msg := conv.Messages[0]
	assert.Equal(t, "original", msg.Responses[0].Content)
	assert.Equal(t, "A", msg.Rankings[0].Ranking[0])
	assert.Equal(t, "answer", msg.Synthesis.Content)
	assert.Equal(t, "aster", msg.Metadata.LabelMap["A"])
}

func TestMetadataCloneNil(t *testing.T) {
	var m *MessageMetadata
	require.Nil(t, m.Clone())
}
