package quorum

import (
	"log/slog"

	"github.com/quorumlabs/quorum/internal/metrics"
	"github.com/quorumlabs/quorum/pkg/flight"
	"github.com/quorumlabs/quorum/pkg/ports"
	"github.com/quorumlabs/quorum/pkg/transcript"
)

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger (default: no-op).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStore injects a conversation store (default: in-memory).
func WithStore(store ports.ConversationStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithWorkflows injects a workflow loader (default: empty in-memory).
func WithWorkflows(loader ports.WorkflowLoader) Option {
	return func(c *Client) {
		c.workflows = loader
	}
}

// WithMetrics wires Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.stats = m
	}
}

// WithFlightManager replaces the per-conversation send serializer, e.g.
// to add a distributed locker for multi-replica deployments.
func WithFlightManager(m *flight.Manager) Option {
	return func(c *Client) {
		c.flights = m
	}
}

// WithReducer replaces the transcript reducer, e.g. to install a
// workflow-specific stage-to-slot mapping table.
func WithReducer(r *transcript.Reducer) Option {
	return func(c *Client) {
		c.reducer = r
	}
}
