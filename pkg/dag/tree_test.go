package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/domain"
)

func nodesOf(ids ...string) []domain.Node {
	out := make([]domain.Node, len(ids))
	for i, id := range ids {
		out[i] = domain.Node{ID: id, Label: "node " + id}
	}
	return out
}

func edge(source, target string) domain.Edge {
	return domain.Edge{ID: source + "-" + target, Source: source, Target: target}
}

func TestBuildForestLevels(t *testing.T) {
	forest, err := BuildForest(
		nodesOf("a", "b", "c"),
		[]domain.Edge{edge("a", "b"), edge("a", "c")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "a", root.ID)
	assert.Equal(t, 0, root.Level)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "b", root.Children[0].ID)
	assert.Equal(t, "c", root.Children[1].ID)
	assert.Equal(t, 1, root.Children[0].Level)
	assert.Equal(t, 1, root.Children[1].Level)
}

func TestBuildForestLinearChain(t *testing.T) {
	forest, err := BuildForest(
		nodesOf("stage1", "stage2", "stage3"),
		[]domain.Edge{edge("stage1", "stage2"), edge("stage2", "stage3")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, forest, 1)

	stage2 := forest[0].Children[0]
	require.Len(t, stage2.Children, 1)
	assert.Equal(t, "stage3", stage2.Children[0].ID)
	assert.Equal(t, 2, stage2.Children[0].Level)
}

func TestBuildForestMultipleRoots(t *testing.T) {
	forest, err := BuildForest(
		nodesOf("x", "a", "b"),
		[]domain.Edge{edge("a", "b")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	// Roots keep node-declared order.
	assert.Equal(t, "x", forest[0].ID)
	assert.Equal(t, "a", forest[1].ID)
}

func TestBuildForestDiamondDuplicatesSharedNode(t *testing.T) {
	forest, err := BuildForest(
		nodesOf("a", "b", "c", "d"),
		[]domain.Edge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, forest, 1)

	b := forest[0].Children[0]
	c := forest[0].Children[1]
	require.Len(t, b.Children, 1)
	require.Len(t, c.Children, 1)
	// "d" appears once under each incoming path, as distinct instances.
	assert.Equal(t, "d", b.Children[0].ID)
	assert.Equal(t, "d", c.Children[0].ID)
	assert.NotSame(t, b.Children[0], c.Children[0])
	assert.Equal(t, 2, b.Children[0].Level)
}

func TestBuildForestStatusAnnotation(t *testing.T) {
	statuses := StatusMap{"a": domain.StatusSuccess, "b": domain.StatusRunning}
	forest, err := BuildForest(
		nodesOf("a", "b", "c"),
		[]domain.Edge{edge("a", "b"), edge("a", "c")},
		statuses,
	)
	require.NoError(t, err)

	root := forest[0]
	assert.Equal(t, domain.StatusSuccess, root.Status)
	assert.Equal(t, domain.StatusRunning, root.Children[0].Status)
	// Nodes absent from the snapshot default to pending.
	assert.Equal(t, domain.StatusPending, root.Children[1].Status)
}

func TestBuildForestRejectsCycle(t *testing.T) {
	_, err := BuildForest(
		nodesOf("a", "b", "c"),
		[]domain.Edge{edge("a", "b"), edge("b", "c"), edge("c", "b")},
		nil,
	)
	var perr *domain.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestBuildForestRejectsFullyCyclicGraph(t *testing.T) {
	_, err := BuildForest(
		nodesOf("a", "b"),
		[]domain.Edge{edge("a", "b"), edge("b", "a")},
		nil,
	)
	var perr *domain.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestBuildForestRejectsDisconnectedCycle(t *testing.T) {
	// "a" is a valid root, but b<->c is a cycle no root reaches.
	_, err := BuildForest(
		nodesOf("a", "b", "c"),
		[]domain.Edge{edge("b", "c"), edge("c", "b")},
		nil,
	)
	var perr *domain.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestBuildForestRejectsUnknownEdgeEndpoint(t *testing.T) {
	_, err := BuildForest(
		nodesOf("a"),
		[]domain.Edge{edge("a", "ghost")},
		nil,
	)
	var perr *domain.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestBuildForestRejectsDuplicateNodeID(t *testing.T) {
	_, err := BuildForest(nodesOf("a", "a"), nil, nil)
	var perr *domain.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestBuildForestEmptyGraph(t *testing.T) {
	forest, err := BuildForest(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, forest)
}
