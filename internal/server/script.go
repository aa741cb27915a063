package server

import (
	"fmt"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// Frame is one wire event emitted by a script. It marshals to the
// stream's JSON object shape.
type Frame struct {
	Type     string         `json:"type"`
	StageID  string         `json:"stageId,omitempty"`
	Data     any            `json:"data,omitempty"`
	Message  string         `json:"message,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Script produces the event sequence streamed in response to a send.
type Script func(workflow domain.Workflow, content string) []Frame

// DefaultWorkflow is the built-in three-stage deliberation graph:
// parallel worker responses, peer evaluation, synthesis.
func DefaultWorkflow() domain.Workflow {
	return domain.Workflow{
		ID:   "deliberate-v1",
		Name: "Three-stage deliberation",
		Nodes: []domain.Node{
			{ID: "stage1", Label: "Parallel responses", Description: "Query every worker in parallel", Type: domain.NodeTypeWorker, Position: domain.Position{X: 0, Y: 0}},
			{ID: "stage2", Label: "Peer evaluation", Description: "Each evaluator ranks the anonymized responses", Type: domain.NodeTypeEvaluator, Position: domain.Position{X: 0, Y: 140}},
			{ID: "stage3", Label: "Synthesis", Description: "Produce the final answer from the ranked responses", Type: domain.NodeTypeSynthesizer, Position: domain.Position{X: 0, Y: 280}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "stage1", Target: "stage2"},
			{ID: "e2", Source: "stage2", Target: "stage3"},
		},
	}
}

// DefaultScript walks the workflow in topological order and emits a
// plausible run: every stage starts and completes with canned data,
// then a legacy title_complete and a workflow_complete close the
// stream. The mixed vocabularies are deliberate: they mirror the real
// backend and keep the legacy mapping exercised.
func DefaultScript(workflow domain.Workflow, content string) []Frame {
	var frames []Frame
	for _, node := range topoOrder(workflow) {
		frames = append(frames, Frame{Type: "stage_start", StageID: node.ID})
		frame := Frame{Type: "stage_complete", StageID: node.ID, Data: cannedPayload(node, content)}
		if node.ID == "stage2" {
			frame.Metadata = map[string]any{
				"labelMap": map[string]string{"A": "aster", "B": "birch", "C": "cedar"},
				"aggregateRankings": []map[string]any{
					{"label": "B", "meanRank": 1.33, "evaluations": 3},
					{"label": "A", "meanRank": 1.67, "evaluations": 3},
					{"label": "C", "meanRank": 3.0, "evaluations": 3},
				},
			}
		}
		frames = append(frames, frame)
	}
	frames = append(frames,
		Frame{Type: "title_complete", Data: map[string]any{"title": truncateTitle(content)}},
		Frame{Type: "workflow_complete", Data: map[string]any{"workflowId": workflow.ID}},
	)
	return frames
}

func cannedPayload(node domain.Node, content string) any {
	switch node.ID {
	case "stage1":
		return []map[string]any{
			{"worker": "aster", "label": "A", "content": "Response from aster to: " + content},
			{"worker": "birch", "label": "B", "content": "Response from birch to: " + content},
			{"worker": "cedar", "label": "C", "content": "Response from cedar to: " + content},
		}
	case "stage2":
		return []map[string]any{
			{"evaluator": "aster", "ranking": []string{"B", "A", "C"}, "rationale": "B is the most complete"},
			{"evaluator": "birch", "ranking": []string{"A", "B", "C"}},
			{"evaluator": "cedar", "ranking": []string{"B", "A", "C"}},
		}
	case "stage3":
		return map[string]any{
			"synthesizer": "birch",
			"content":     fmt.Sprintf("## Answer\n\nConsidering all responses: %s", content),
		}
	default:
		return map[string]any{"node": node.ID}
	}
}

// topoOrder sorts nodes by in-degree peeling (Kahn), falling back to
// declaration order among ready nodes. Workflows served here are
// validated DAGs, so the loop always drains.
func topoOrder(w domain.Workflow) []domain.Node {
	indegree := make(map[string]int, len(w.Nodes))
	outgoing := make(map[string][]string, len(w.Nodes))
	byID := make(map[string]domain.Node, len(w.Nodes))
	for _, n := range w.Nodes {
		byID[n.ID] = n
	}
	for _, e := range w.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
		indegree[e.Target]++
	}

	var ready []string
	for _, n := range w.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	ordered := make([]domain.Node, 0, len(w.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[id])
		for _, next := range outgoing[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return ordered
}

func truncateTitle(content string) string {
	const max = 48
	if len(content) <= max {
		return content
	}
	return content[:max-1] + "…"
}

// assistantFromFrames folds the scripted frames into the final
// assistant message for the stored transcript.
func assistantFromFrames(frames []Frame) domain.Message {
	msg := domain.NewAssistantPlaceholder()
	for _, f := range frames {
		if f.Type != "stage_complete" {
			continue
		}
		switch f.StageID {
		case "stage1":
			if rows, ok := f.Data.([]map[string]any); ok {
				for _, row := range rows {
					msg.Responses = append(msg.Responses, domain.WorkerResponse{
						Worker:  str(row["worker"]),
						Label:   str(row["label"]),
						Content: str(row["content"]),
					})
				}
			}
		case "stage3":
			if m, ok := f.Data.(map[string]any); ok {
				msg.Synthesis = &domain.SynthesizedResponse{
					Synthesizer: str(m["synthesizer"]),
					Content:     str(m["content"]),
				}
			}
		}
	}
	return msg
}

func titleFromFrames(frames []Frame) string {
	for _, f := range frames {
		if f.Type != "title_complete" {
			continue
		}
		if m, ok := f.Data.(map[string]any); ok {
			return str(m["title"])
		}
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
