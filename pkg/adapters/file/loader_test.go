package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderReadsYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deliberate.yaml", `
id: deliberate-v1
name: Deliberation
nodes:
  - id: stage1
    label: Workers
    type: worker
  - id: stage2
    label: Evaluators
    type: evaluator
edges:
  - id: e1
    source: stage1
    target: stage2
`)
	writeFile(t, dir, "quick.json", `{
  "id": "quick-v1",
  "name": "Quick",
  "nodes": [{"id": "stage1", "label": "Only stage", "type": "worker"}]
}`)
	writeFile(t, dir, "notes.txt", "not a workflow")

	loader, err := NewLoader(dir)
	require.NoError(t, err)

	ctx := context.Background()
	w, err := loader.Get(ctx, "deliberate-v1")
	require.NoError(t, err)
	assert.Equal(t, "Deliberation", w.Name)
	require.Len(t, w.Nodes, 2)
	assert.Equal(t, domain.NodeTypeEvaluator, w.Nodes[1].Type)
	require.Len(t, w.Edges, 1)
	assert.Equal(t, "stage2", w.Edges[0].Target)

	ids, err := loader.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"deliberate-v1", "quick-v1"}, ids)
}

func TestLoaderRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: same\nname: A\n")
	writeFile(t, dir, "b.yaml", "id: same\nname: B\n")

	_, err := NewLoader(dir)
	require.Error(t, err)
}

func TestLoaderRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nameless.yaml", "name: No identifier\n")

	_, err := NewLoader(dir)
	require.Error(t, err)
}

func TestLoaderMissingDirectory(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestLoaderUnknownWorkflow(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	require.NoError(t, err)

	_, err = loader.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}
