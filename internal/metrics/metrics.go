// Package metrics exposes prometheus collectors for the sync path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Drop reasons used as the "reason" label.
const (
	ReasonEnvelope  = "envelope"
	ReasonPayload   = "payload"
	ReasonTable     = "table"
	ReasonOperation = "operation"
	ReasonStore     = "store"
)

// Metrics groups the collectors updated by the sync applier and the
// transports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	applied     *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	rows        *prometheus.GaugeVec
	disconnects prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "sync",
			Name:      "messages_applied_total",
			Help:      "Inbound messages applied to the mirror.",
		}, []string{"table", "operation"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "sync",
			Name:      "messages_dropped_total",
			Help:      "Inbound messages discarded without touching the mirror.",
		}, []string{"reason"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "frontdesk",
			Subsystem: "mirror",
			Name:      "rows",
			Help:      "Rows currently held per mirrored table.",
		}, []string{"table"}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "transport",
			Name:      "disconnects_total",
			Help:      "Connection losses reported by the feed.",
		}),
	}
	for _, c := range []prometheus.Collector{m.applied, m.dropped, m.rows, m.disconnects} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Applied counts a message applied to table.
func (m *Metrics) Applied(table types.TableName, op types.MessageOperation) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(string(table), string(op)).Inc()
}

// Dropped counts a discarded message.
func (m *Metrics) Dropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

// DroppedCounter returns the drop counter for reason.
func (m *Metrics) DroppedCounter(reason string) prometheus.Counter {
	if m == nil {
		return detached("messages_dropped_total")
	}
	return m.dropped.WithLabelValues(reason)
}

// SetRows publishes per-table row counts.
func (m *Metrics) SetRows(counts map[types.TableName]int) {
	if m == nil {
		return
	}
	for table, n := range counts {
		m.rows.WithLabelValues(string(table)).Set(float64(n))
	}
}

// Disconnected counts a lost connection.
func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.disconnects.Inc()
}

// DisconnectCounter returns the connection-loss counter.
func (m *Metrics) DisconnectCounter() prometheus.Counter {
	if m == nil {
		return detached("disconnects_total")
	}
	return m.disconnects
}

// detached returns an unregistered counter that reads zero.
func detached(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "frontdesk", Name: name})
}
