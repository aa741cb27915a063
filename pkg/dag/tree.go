// Package dag reconstructs a hierarchical view from a workflow's
// node/edge description and projects live per-node status onto it from
// the progress event stream.
package dag

import (
	"github.com/quorumlabs/quorum/pkg/domain"
)

// BuildForest turns the static graph into a forest of TreeNode. Roots
// are the nodes with no incoming edges, in node-declared order; children
// follow edge-declared order, with nesting level parent+1.
//
// A node reachable through more than one path is instantiated once per
// incoming path: the forest favors readable progress display over a
// bijection with graph nodes. Acyclicity is a precondition enforced
// here: any cycle, edge to an unknown node, or duplicate node ID yields
// a ProtocolError and no forest.
//
// statuses annotates each instance; nodes absent from the snapshot are
// pending. Pass nil for an all-pending forest. The forest is built
// fresh on every call and never mutated in place.
func BuildForest(nodes []domain.Node, edges []domain.Edge, statuses StatusMap) ([]*domain.TreeNode, error) {
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			return nil, domain.Protocolf("duplicate node id %q", n.ID)
		}
		byID[n.ID] = n
	}

	children := make(map[string][]string, len(nodes))
	indegree := make(map[string]int, len(nodes))
	for _, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			return nil, domain.Protocolf("edge %q references unknown source node %q", e.ID, e.Source)
		}
		if _, ok := byID[e.Target]; !ok {
			return nil, domain.Protocolf("edge %q references unknown target node %q", e.ID, e.Target)
		}
		children[e.Source] = append(children[e.Source], e.Target)
		indegree[e.Target]++
	}

	visited := make(map[string]bool, len(nodes))
	var forest []*domain.TreeNode
	for _, n := range nodes {
		if indegree[n.ID] != 0 {
			continue
		}
		root, err := descend(n.ID, byID, children, statuses, visited)
		if err != nil {
			return nil, err
		}
		forest = append(forest, root)
	}

	if len(nodes) > 0 && len(forest) == 0 {
		return nil, domain.Protocolf("graph has no root: every node has an incoming edge")
	}
	for _, n := range nodes {
		if !visited[n.ID] {
			// Unreached nodes can only sit on a cycle disconnected from
			// every root.
			return nil, domain.Protocolf("node %q is unreachable from any root (cycle)", n.ID)
		}
	}
	return forest, nil
}

// frame is one step of the explicit DFS work-stack. The stack bounds
// recursion depth and makes path-based cycle detection direct.
type frame struct {
	id   string
	tree *domain.TreeNode
	next int // index of the next child edge to expand
}

func descend(rootID string, byID map[string]domain.Node, children map[string][]string, statuses StatusMap, visited map[string]bool) (*domain.TreeNode, error) {
	onPath := map[string]bool{}

	root := newTreeNode(byID[rootID], 0, statuses)
	stack := []*frame{{id: rootID, tree: root}}
	onPath[rootID] = true
	visited[rootID] = true

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		kids := children[top.id]
		if top.next >= len(kids) {
			delete(onPath, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		childID := kids[top.next]
		top.next++

		if onPath[childID] {
			return nil, domain.Protocolf("cycle detected through node %q", childID)
		}

		child := newTreeNode(byID[childID], top.tree.Level+1, statuses)
		top.tree.Children = append(top.tree.Children, child)
		visited[childID] = true

		stack = append(stack, &frame{id: childID, tree: child})
		onPath[childID] = true
	}
	return root, nil
}

func newTreeNode(n domain.Node, level int, statuses StatusMap) *domain.TreeNode {
	status := domain.StatusPending
	if s, ok := statuses[n.ID]; ok {
		status = s
	}
	return &domain.TreeNode{
		ID:          n.ID,
		Label:       n.Label,
		Description: n.Description,
		Status:      status,
		Level:       level,
	}
}
