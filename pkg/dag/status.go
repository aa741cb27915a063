package dag

import "github.com/quorumlabs/quorum/pkg/domain"

// StatusMap is a node-id keyed status snapshot.
type StatusMap map[string]domain.NodeStatus

// Clone returns an independent copy of the snapshot.
func (m StatusMap) Clone() StatusMap {
	out := make(StatusMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Projector derives per-node status from the progress event stream,
// using the workflow convention that a stage and a node are the same
// thing when their identifiers match. Events for identifiers outside
// the workflow's node set leave the map untouched.
//
// The projector is display-only state, separate from the authoritative
// conversation: the caller feeds it the same ordered event sequence the
// reducer consumes. It is not safe for concurrent use.
type Projector struct {
	known    map[string]struct{}
	statuses StatusMap
}

// NewProjector initializes every node of the workflow to pending.
func NewProjector(nodes []domain.Node) *Projector {
	p := &Projector{known: make(map[string]struct{}, len(nodes))}
	for _, n := range nodes {
		p.known[n.ID] = struct{}{}
	}
	p.Reset()
	return p
}

// Reset returns every node to pending, as at the start of a new
// execution of the same workflow.
func (p *Projector) Reset() {
	p.statuses = make(StatusMap, len(p.known))
	for id := range p.known {
		p.statuses[id] = domain.StatusPending
	}
}

// Observe applies one event. Later events for the same node supersede
// earlier ones, so ordering is load-bearing.
func (p *Projector) Observe(ev domain.ProtocolEvent) {
	if !ev.StageScoped() {
		return
	}
	if _, ok := p.known[ev.StageID]; !ok {
		return
	}
	if status, ok := domain.StatusForEvent(ev.Kind); ok {
		p.statuses[ev.StageID] = status
	}
}

// Replay resets the map and re-applies the full event history in order.
// Given the same ordered event list, the result is always identical.
func (p *Projector) Replay(events []domain.ProtocolEvent) StatusMap {
	p.Reset()
	for _, ev := range events {
		p.Observe(ev)
	}
	return p.Snapshot()
}

// Snapshot returns a copy of the current status map.
func (p *Projector) Snapshot() StatusMap {
	return p.statuses.Clone()
}
