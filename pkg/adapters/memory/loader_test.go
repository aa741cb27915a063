package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/domain"
)

func TestLoader(t *testing.T) {
	ctx := context.Background()

	loader, err := NewFromWorkflows(
		domain.Workflow{ID: "wf-1", Name: "First"},
		domain.Workflow{ID: "wf-2", Name: "Second"},
	)
	require.NoError(t, err)

	w, err := loader.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "First", w.Name)

	_, err = loader.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	ids, err := loader.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wf-1", "wf-2"}, ids)
}

func TestLoaderRejectsDuplicateID(t *testing.T) {
	_, err := NewFromWorkflows(
		domain.Workflow{ID: "wf-1"},
		domain.Workflow{ID: "wf-1"},
	)
	require.Error(t, err)
}

func TestLoaderGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	loader, err := NewFromWorkflows(domain.Workflow{ID: "wf-1", Name: "First"})
	require.NoError(t, err)

	w, err := loader.Get(ctx, "wf-1")
	require.NoError(t, err)
	w.Name = "mutated"

	again, err := loader.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "First", again.Name)
}
