// Package quorum is the client-side engine for multi-stage deliberation
// workflows: it submits a message to a workflow run, consumes the
// chunked progress-event stream the backend answers with, folds it into
// conversation state with optimistic update and rollback, and projects
// per-node status onto the workflow graph for rendering.
//
// The pipeline is single-threaded per send: the only suspension point
// is waiting for the next stream chunk; the reducer, tree builder and
// status projector are synchronous pure transformations applied in
// exact decode order. At most one send runs per conversation at a time,
// enforced by pkg/flight.
package quorum
