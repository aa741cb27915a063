// Package metrics defines the Prometheus instrumentation shared by the
// stream decoder, the send pipeline, and the dev server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine collectors. A nil *Metrics is valid and
// turns every observation into a no-op, so components can be wired
// without a registry (e.g. in unit tests).
type Metrics struct {
	eventsDecoded *prometheus.CounterVec
	linesSkipped  prometheus.Counter
	eventsDropped prometheus.Counter
	sends         *prometheus.CounterVec
	activeStreams prometheus.Gauge
}

// New registers the engine collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		eventsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quorum",
			Subsystem: "stream",
			Name:      "events_decoded_total",
			Help:      "Progress events decoded from the stream, by kind.",
		}, []string{"kind"}),
		linesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quorum",
			Subsystem: "stream",
			Name:      "lines_skipped_total",
			Help:      "Stream lines skipped because their JSON payload failed to parse.",
		}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quorum",
			Subsystem: "stream",
			Name:      "events_dropped_total",
			Help:      "Well-formed lines dropped because their event type or stage could not be mapped.",
		}),
		sends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quorum",
			Subsystem: "client",
			Name:      "sends_total",
			Help:      "Send operations, by outcome.",
		}, []string{"outcome"}),
		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quorum",
			Subsystem: "client",
			Name:      "active_streams",
			Help:      "Progress streams currently being consumed.",
		}),
	}
}

// EventDecoded records one decoded event of the given kind.
func (m *Metrics) EventDecoded(kind string) {
	if m == nil {
		return
	}
	m.eventsDecoded.WithLabelValues(kind).Inc()
}

// LineSkipped records one malformed line recovered from.
func (m *Metrics) LineSkipped() {
	if m == nil {
		return
	}
	m.linesSkipped.Inc()
}

// EventDropped records one rejected wire event.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

// SendFinished records a completed send with the given outcome label.
func (m *Metrics) SendFinished(outcome string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(outcome).Inc()
}

// StreamOpened marks a progress stream as active until the returned
// function is called.
func (m *Metrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.activeStreams.Inc()
	return m.activeStreams.Dec
}
