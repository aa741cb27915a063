package domain

// Position is the 2-D layout coordinate of a node. It is opaque to the
// engine and only consumed by visual frontends.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one stage vertex in a workflow graph.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string   `json:"type" yaml:"type"`
	Position    Position `json:"position" yaml:"position"`
}

// Node type tags used by the built-in workflows and the graph renderer.
const (
	NodeTypeInput       = "input"
	NodeTypeWorker      = "worker"
	NodeTypeEvaluator   = "evaluator"
	NodeTypeSynthesizer = "synthesizer"
)

// Edge is a directed connection between two workflow nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Workflow is a named directed acyclic graph of stages plus layout.
// The node and edge sets must form a DAG; pkg/dag rejects cycles at
// construction time.
type Workflow struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// TreeNode is the hierarchical projection of a workflow node. It is
// derived, never persisted: a fresh forest is built from the graph and
// a status snapshot on every update.
type TreeNode struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Status      NodeStatus  `json:"status"`
	Level       int         `json:"level"`
	Children    []*TreeNode `json:"children,omitempty"`
}
