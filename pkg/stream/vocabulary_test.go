package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/domain"
)

func TestCanonicalizeGenericVocabulary(t *testing.T) {
	cases := []struct {
		wireType string
		stageID  string
		want     domain.EventKind
	}{
		{"stage_start", "stage2", domain.EventStageStart},
		{"stage_complete", "stage2", domain.EventStageComplete},
		{"stage_error", "stage2", domain.EventStageError},
		{"stage_error", "", domain.EventStageError},
		{"workflow_complete", "", domain.EventWorkflowComplete},
	}
	for _, tc := range cases {
		t.Run(tc.wireType+"/"+tc.stageID, func(t *testing.T) {
			ev, err := Canonicalize(tc.wireType, tc.stageID, nil, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ev.Kind)
			assert.Equal(t, tc.stageID, ev.StageID)
		})
	}
}

func TestCanonicalizeLegacyVocabulary(t *testing.T) {
	cases := []struct {
		wireType  string
		wantKind  domain.EventKind
		wantStage string
	}{
		{"stage1_complete", domain.EventStageComplete, "stage1"},
		{"stage2_complete", domain.EventStageComplete, "stage2"},
		{"stage3_complete", domain.EventStageComplete, "stage3"},
		{"title_complete", domain.EventStageComplete, TitleStageID},
		{"complete", domain.EventWorkflowComplete, ""},
		{"error", domain.EventStageError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.wireType, func(t *testing.T) {
			ev, err := Canonicalize(tc.wireType, "", nil, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, ev.Kind)
			assert.Equal(t, tc.wantStage, ev.StageID)
		})
	}
}

func TestCanonicalizePreservesPayload(t *testing.T) {
	data := []any{map[string]any{"worker": "alpha"}}
	meta := map[string]any{"labelMap": map[string]any{"A": "alpha"}}

	ev, err := Canonicalize("stage_complete", "stage1", data, "", meta)
	require.NoError(t, err)
	assert.Equal(t, data, ev.Data)
	assert.Equal(t, meta, ev.Metadata)

	ev, err = Canonicalize("stage_error", "stage2", nil, "evaluator quorum not reached", nil)
	require.NoError(t, err)
	assert.Equal(t, "evaluator quorum not reached", ev.Message)
}

func TestCanonicalizeRejectsUnknownType(t *testing.T) {
	_, err := Canonicalize("heartbeat", "", nil, "", nil)
	require.Error(t, err)

	var perr *domain.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestCanonicalizeRequiresStageID(t *testing.T) {
	for _, wireType := range []string{"stage_start", "stage_complete"} {
		t.Run(wireType, func(t *testing.T) {
			_, err := Canonicalize(wireType, "", nil, "", nil)
			var perr *domain.ProtocolError
			require.ErrorAs(t, err, &perr)
		})
	}
}
