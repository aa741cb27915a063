// Package graph renders a workflow and its live status snapshot as a
// Mermaid flowchart.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quorumlabs/quorum/pkg/dag"
	"github.com/quorumlabs/quorum/pkg/domain"
)

// GenerateMermaid produces Mermaid flowchart syntax (graph TD) for the
// workflow. Node shape follows the stage type:
//   - input: ((circle))
//   - worker: [rectangle]
//   - evaluator: {{hexagon}}
//   - synthesizer: [[subroutine]]
//
// statuses paints each node with its projected execution state; pass
// nil for an unannotated graph.
func GenerateMermaid(w domain.Workflow, statuses dag.StatusMap) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range w.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeInput:
			opener, closer = "((", "))"
		case domain.NodeTypeEvaluator:
			opener, closer = "{{", "}}"
		case domain.NodeTypeSynthesizer:
			opener, closer = "[[", "]]"
		}

		label := node.Label
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))
	}

	for _, edge := range w.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(edge.Source), sanitizeMermaidID(edge.Target)))
	}

	if statuses != nil {
		sb.WriteString("\n    %% Status overlay\n")
		sb.WriteString("    classDef pending fill:#eceff1,stroke:#607d8b,color:#000;\n")
		sb.WriteString("    classDef running fill:#fff8e1,stroke:#ffa000,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef success fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")

		grouped := map[domain.NodeStatus][]string{}
		for _, node := range w.Nodes {
			status, ok := statuses[node.ID]
			if !ok {
				status = domain.StatusPending
			}
			grouped[status] = append(grouped[status], sanitizeMermaidID(node.ID))
		}
		for _, status := range []domain.NodeStatus{domain.StatusPending, domain.StatusRunning, domain.StatusSuccess, domain.StatusFailed} {
			ids := grouped[status]
			if len(ids) == 0 {
				continue
			}
			sort.Strings(ids)
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", strings.Join(ids, ","), status))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer("/", "_", " ", "_", "-", "_", ".", "_")
	return replacer.Replace(id)
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
