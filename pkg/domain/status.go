package domain

// NodeStatus is the per-node execution state projected from the event
// stream. Every node starts pending; transitions are driven exclusively
// by events whose StageID matches the node ID.
type NodeStatus string

const (
	StatusPending NodeStatus = "pending"
	StatusRunning NodeStatus = "running"
	StatusSuccess NodeStatus = "success"
	StatusFailed  NodeStatus = "failed"
)

// StatusForEvent maps an event kind to the node status it implies.
// workflow_complete carries no per-node transition.
func StatusForEvent(kind EventKind) (NodeStatus, bool) {
	switch kind {
	case EventStageStart:
		return StatusRunning, true
	case EventStageComplete:
		return StatusSuccess, true
	case EventStageError:
		return StatusFailed, true
	}
	return "", false
}
